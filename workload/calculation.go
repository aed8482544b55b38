/*
calculation.go - The calculation skeleton shared by all modes

PURPOSE:
  A Calculation is built for one employment and one Mode. The caller feeds
  every contribution once (courses, pool entries, theses, postings), then
  calls CalculatePayroll and finally Workload.

FLOW:
  calc := workload.NewCalculation(employment, mode)
  calc.AddCourse(course)              // lessons -> PayrollMap, Courses
  calc.AddPoolEntry(entry)            // percent -> PayrollMap, Pool
  calc.AddThesisEntry(thesis)         // percent -> PayrollMap, Theses
  calc.AddPosting(posting)            // details -> Mode hooks, Postings
  payroll, err := calc.CalculatePayroll()
  wl, err := calc.Workload()

FAILURE:
  The first error (always a configuration error) is kept. Every later call
  returns it, so a failed calculation can never produce a Workload.

CONCURRENCY:
  A Calculation is not safe for concurrent use. Independent calculations
  share no state and may run in parallel.

SEE ALSO:
  - mode.go: The Mode strategy
  - workload.go: The report assembled from a finalized calculation
*/
package workload

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// =============================================================================
// CALCULATION
// =============================================================================

type Calculation struct {
	id         string
	employment *Employment
	mode       Mode
	logger     *zap.Logger

	payrollMap *PayrollMap
	courses    *Courses
	pool       *Pool
	theses     *Theses
	postings   *Postings

	payroll *Payroll
	err     error
}

// Option configures a Calculation.
type Option func(*Calculation)

// WithLogger sets the logger; the default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(c *Calculation) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithID overrides the generated calculation id.
func WithID(id string) Option {
	return func(c *Calculation) { c.id = id }
}

// NewCalculation creates an empty calculation for e using mode.
func NewCalculation(e *Employment, mode Mode, opts ...Option) *Calculation {
	c := &Calculation{
		id:         uuid.NewString(),
		employment: e,
		mode:       mode,
		logger:     zap.NewNop(),
		payrollMap: NewPayrollMap(),
		courses:    NewCourses(),
		pool:       NewPool(),
		theses:     NewTheses(),
		postings:   NewPostings(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(
		zap.String("calculation_id", c.id),
		zap.String("employment_id", e.ID),
		zap.String("mode", mode.Name()),
	)
	return c
}

func (c *Calculation) ID() string              { return c.id }
func (c *Calculation) Employment() *Employment { return c.employment }
func (c *Calculation) Mode() Mode              { return c.mode }
func (c *Calculation) Logger() *zap.Logger     { return c.logger }
func (c *Calculation) PayrollMap() *PayrollMap { return c.payrollMap }
func (c *Calculation) Courses() *Courses       { return c.courses }
func (c *Calculation) Pool() *Pool             { return c.pool }
func (c *Calculation) Theses() *Theses         { return c.theses }
func (c *Calculation) Postings() *Postings     { return c.postings }
func (c *Calculation) Err() error              { return c.err }
func (c *Calculation) Finalized() bool         { return c.payroll != nil }

func (c *Calculation) check() error {
	if c.err != nil {
		return c.err
	}
	if c.payroll != nil {
		return ErrCalculationFinalized
	}
	return nil
}

func (c *Calculation) fail(err error) error {
	c.err = err
	c.logger.Error("calculation aborted", zap.Error(err))
	return err
}

// =============================================================================
// CONTRIBUTIONS
// =============================================================================

// AddCourse books the teacher's lessons of course on the course's payroll
// type and records the course.
func (c *Calculation) AddCourse(course *Course) error {
	if err := c.check(); err != nil {
		return err
	}
	var lessons, percent SemesterValue
	for _, s := range Semesters {
		l := course.LessonsFor(c.employment.TeacherID, s)
		lessons = lessons.With(s, l)
		percent = percent.With(s, course.PercentFor(c.employment.TeacherID, s))
		err := c.mode.AddToPayroll(c, Booking{
			Type: course.PayrollType, Semester: s, Value: l, Lessons: true, Source: "course " + course.ID,
		})
		if err != nil {
			return c.fail(err)
		}
	}
	c.courses.AddItem(course, lessons, percent)
	return nil
}

// AddPoolEntry books a pool entry after the mode normalised its percent.
func (c *Calculation) AddPoolEntry(entry *PoolEntry) error {
	if err := c.check(); err != nil {
		return err
	}
	for _, s := range Semesters {
		percent := c.mode.PoolPercent(c, s, entry.Percent.Get(s))
		err := c.mode.AddToPayroll(c, Booking{
			Type: entry.Type.PayrollType, Semester: s, Value: percent, Source: "pool " + entry.ID,
		})
		if err != nil {
			return c.fail(err)
		}
	}
	c.pool.AddItem(entry, entry.Percent)
	return nil
}

// AddThesisEntry books percent = thesis type percent x count.
func (c *Calculation) AddThesisEntry(entry *ThesisEntry) error {
	if err := c.check(); err != nil {
		return err
	}
	var percent SemesterValue
	for _, s := range Semesters {
		p := entry.PercentFor(s)
		percent = percent.With(s, p)
		err := c.mode.AddToPayroll(c, Booking{
			Type: entry.Type.PayrollType, Semester: s, Value: p, Source: "thesis " + entry.ID,
		})
		if err != nil {
			return c.fail(err)
		}
	}
	c.theses.AddItem(entry, entry.Count, percent)
	return nil
}

// AddPosting records the posting and books each of its details.
func (c *Calculation) AddPosting(p *Posting) error {
	if err := c.check(); err != nil {
		return err
	}
	c.postings.AddItem(p)
	for _, d := range p.Details {
		if err := c.AddPostingDetail(p, d); err != nil {
			return err
		}
	}
	return nil
}

// AddPostingDetail routes d to the mode's lesson or percent hook. A zero
// detail is skipped and leaves the postings untouched.
func (c *Calculation) AddPostingDetail(p *Posting, d *PostingDetail) error {
	if err := c.check(); err != nil {
		return err
	}
	if d.Value == 0 {
		return nil
	}
	if !d.Semester.Valid() {
		return c.fail(fmt.Errorf("posting %s detail %s: invalid semester %s", p.ID, d.ID, d.Semester))
	}
	if d.PayrollType == nil {
		return c.fail(&PayrollTypeError{Semester: d.Semester, Value: d.Value, Source: "posting " + p.ID})
	}
	var err error
	if d.PayrollType.LessonBased {
		err = c.mode.HandlePostingDetailLessons(c, p, d)
	} else {
		err = c.mode.HandlePostingDetailPercent(c, p, d)
	}
	if err != nil {
		return c.fail(err)
	}
	return nil
}

// =============================================================================
// PAYROLL BOOKING
// =============================================================================

// SumPayrollLessons books lessons. Lessons on a percent-only type are a
// configuration error and are never coerced.
func (c *Calculation) SumPayrollLessons(pt *PayrollType, s Semester, lessons float64, source string) error {
	if pt == nil || !pt.LessonBased {
		return &PayrollTypeError{PayrollType: pt, Semester: s, Value: lessons, Source: source}
	}
	c.payrollMap.Add(pt, s, lessons)
	return nil
}

// SumPayrollPercent books percent, converted to lessons for lesson-based
// types.
func (c *Calculation) SumPayrollPercent(pt *PayrollType, s Semester, percent float64, source string) error {
	if pt == nil {
		return &PayrollTypeError{Semester: s, Value: percent, Source: source}
	}
	if pt.LessonBased {
		c.payrollMap.Add(pt, s, pt.Lessons(percent))
		return nil
	}
	c.payrollMap.Add(pt, s, percent)
	return nil
}

// =============================================================================
// FINALIZATION
// =============================================================================

// CalculatePayroll runs the mode's allocation once. Later calls return the
// same result.
func (c *Calculation) CalculatePayroll() (*Payroll, error) {
	if c.err != nil {
		return nil, c.err
	}
	if c.payroll != nil {
		return c.payroll, nil
	}
	payroll, err := c.mode.CalculatePayroll(c)
	if err != nil {
		return nil, c.fail(err)
	}
	c.payroll = payroll
	c.logger.Debug("payroll calculated",
		zap.Float64("total_s1", payroll.TotalPercent().First()),
		zap.Float64("total_s2", payroll.TotalPercent().Second()),
		zap.Float64("payment", payroll.Payment()),
	)
	return payroll, nil
}

// Payroll returns the finalized payroll or nil.
func (c *Calculation) Payroll() *Payroll {
	return c.payroll
}
