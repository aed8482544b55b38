/*
Package percent implements the percent-based calculation modes.

MODES:
  1  Percent                   current regime; stored percents exclude age
                               relief and the payroll reports without it
  2  PercentAgeReliefIncluded  stored pool/posting percents include age
                               relief; the payroll reports with it
  3  LessonsAgeReliefIncluded  like 2, but the saldo follows the school
                               year's saldo resolution order and percents
                               are recomputed from the rounded lessons

ALLOCATION:
  All three use workload.Allocate: the saldo is booked greedily on the
  payroll types in order and no type ever reports a negative percent.
  Lesson-based types are converted back to lessons (rounded to 2 places)
  after the saldo was booked.

SEE ALSO:
  - workload/allocation.go: The fold itself
  - historic/: The legacy mode 99
*/
package percent

import (
	"go.uber.org/zap"

	"github.com/warp/workload-engine/workload"
)

// Mode is one of the percent-based modes. Use the constructors.
type Mode struct {
	id   int
	name string

	// storedWithAgeRelief: pool entries and posting percents already contain
	// the age relief.
	storedWithAgeRelief bool

	// payrollWithAgeRelief: payroll percents are reported including age
	// relief; lessons are derived from the percent without it.
	payrollWithAgeRelief bool

	// lessonsFirst recomputes percent from the rounded lessons.
	lessonsFirst bool

	// saldoOrder books the saldo in the school year's saldo resolution order.
	saldoOrder bool
}

var _ workload.Mode = (*Mode)(nil)

// New returns mode 1.
func New() *Mode {
	return &Mode{id: workload.ModePercent, name: "percent"}
}

// NewAgeReliefIncluded returns mode 2.
func NewAgeReliefIncluded() *Mode {
	return &Mode{
		id:                   workload.ModePercentAgeReliefIncluded,
		name:                 "percent_age_relief_included",
		storedWithAgeRelief:  true,
		payrollWithAgeRelief: true,
	}
}

// NewLessonsAgeReliefIncluded returns mode 3.
func NewLessonsAgeReliefIncluded() *Mode {
	return &Mode{
		id:                   workload.ModeLessonsAgeReliefIncluded,
		name:                 "lessons_age_relief_included",
		storedWithAgeRelief:  true,
		payrollWithAgeRelief: true,
		lessonsFirst:         true,
		saldoOrder:           true,
	}
}

func (m *Mode) ID() int      { return m.id }
func (m *Mode) Name() string { return m.name }

func (m *Mode) AddToPayroll(c *workload.Calculation, b workload.Booking) error {
	return workload.Book(c, b)
}

func (m *Mode) HandlePostingDetailLessons(c *workload.Calculation, p *workload.Posting, d *workload.PostingDetail) error {
	return workload.BookPostingLessons(c, p, d)
}

func (m *Mode) HandlePostingDetailPercent(c *workload.Calculation, p *workload.Posting, d *workload.PostingDetail) error {
	return workload.BookPostingPercent(c, p, d, m.storedWithAgeRelief)
}

func (m *Mode) PoolPercent(c *workload.Calculation, s workload.Semester, percent float64) float64 {
	return workload.StoredPoolPercent(c, s, percent, m.storedWithAgeRelief)
}

// =============================================================================
// PAYROLL
// =============================================================================

func (m *Mode) order(c *workload.Calculation) []*workload.PayrollType {
	pm := c.PayrollMap()
	if m.saldoOrder {
		return pm.TypesIn(c.Employment().SchoolYear.SaldoResolutionOrder)
	}
	return pm.Types()
}

// CalculatePayroll books the saldo and converts lesson-based types back to
// lessons.
func (m *Mode) CalculatePayroll(c *workload.Calculation) (*workload.Payroll, error) {
	e := c.Employment()
	pm := c.PayrollMap()

	order := m.order(c)
	computed := make([]workload.Allocation, len(order))
	for i, pt := range order {
		percent := pm.Percent(pt)
		if m.payrollWithAgeRelief {
			percent = percent.Map(e.WithAgeRelief)
		}
		computed[i] = workload.Allocation{Type: pt, Percent: percent}
	}

	diff := workload.Diff(c, workload.SumAllocations(computed))
	allocated, remaining := workload.Allocate(computed, diff)
	if !remaining.IsZero() {
		c.Logger().Warn("saldo could not be booked",
			zap.Float64("remaining_s1", remaining.First()),
			zap.Float64("remaining_s2", remaining.Second()),
		)
	}

	payroll := workload.NewPayroll()
	for _, a := range allocated {
		for _, s := range workload.Semesters {
			lessons, percent := m.finalize(e, a.Type, s, a.Percent.Get(s))
			payroll.Add(a.Type, s, lessons, percent)
		}
	}
	return payroll, nil
}

func (m *Mode) finalize(e *workload.Employment, pt *workload.PayrollType, s workload.Semester, percent float64) (lessons, reported float64) {
	if !pt.LessonBased {
		if m.payrollWithAgeRelief {
			return 0, workload.RoundPercent(percent)
		}
		return 0, percent
	}

	base := percent
	if m.payrollWithAgeRelief {
		base = e.WithoutAgeRelief(s, percent)
	}
	lessons = workload.RoundLessons(pt.Lessons(base))

	switch {
	case m.lessonsFirst:
		return lessons, workload.RoundPercent(e.WithAgeRelief(s, pt.Percent(lessons)))
	case m.payrollWithAgeRelief:
		return lessons, workload.RoundPercent(percent)
	default:
		return lessons, percent
	}
}
