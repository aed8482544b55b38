/*
Package historic implements calculation mode 99, the legacy regime.

DIFFERENCES TO THE PERCENT MODES:
  - Pool entries and posting percents were stored including age relief;
    the age relief is stripped before booking.
  - The school year's default payroll type always exists in the payroll,
    even without contributions.
  - The whole saldo goes to the default payroll type in a single pass. It is
    not clamped, so the default type may report a negative percent.

The formulas reproduce historic payroll exports; keep them as they are.
*/
package historic

import (
	"github.com/warp/workload-engine/workload"
)

type Mode struct {
	defaultType *workload.PayrollType
}

var _ workload.Mode = (*Mode)(nil)

// New returns mode 99 booking the saldo on defaultType.
func New(defaultType *workload.PayrollType) *Mode {
	return &Mode{defaultType: defaultType}
}

func (m *Mode) ID() int      { return workload.ModeHistoric }
func (m *Mode) Name() string { return "historic" }

func (m *Mode) DefaultType() *workload.PayrollType { return m.defaultType }

func (m *Mode) AddToPayroll(c *workload.Calculation, b workload.Booking) error {
	if m.defaultType != nil {
		c.PayrollMap().Ensure(m.defaultType)
	}
	return workload.Book(c, b)
}

func (m *Mode) HandlePostingDetailLessons(c *workload.Calculation, p *workload.Posting, d *workload.PostingDetail) error {
	return workload.BookPostingLessons(c, p, d)
}

// HandlePostingDetailPercent strips the age relief the legacy percent
// contains: percent = value * 100 / (100 + factor).
func (m *Mode) HandlePostingDetailPercent(c *workload.Calculation, p *workload.Posting, d *workload.PostingDetail) error {
	return workload.BookPostingPercent(c, p, d, true)
}

func (m *Mode) PoolPercent(c *workload.Calculation, s workload.Semester, percent float64) float64 {
	return workload.StoredPoolPercent(c, s, percent, true)
}

// CalculatePayroll adds the entire saldo to the default payroll type and
// converts lesson-based types to lessons.
func (m *Mode) CalculatePayroll(c *workload.Calculation) (*workload.Payroll, error) {
	if m.defaultType == nil {
		return nil, workload.ErrMissingDefaultPayrollType
	}
	pm := c.PayrollMap()
	pm.Ensure(m.defaultType)

	diff := workload.Diff(c, pm.TotalPercent())

	payroll := workload.NewPayroll()
	for _, pt := range pm.Types() {
		percent := pm.Percent(pt)
		if pt == m.defaultType {
			percent = percent.Add(diff)
		}
		for _, s := range workload.Semesters {
			var lessons float64
			if pt.LessonBased {
				lessons = workload.RoundLessons(pt.Lessons(percent.Get(s)))
			}
			payroll.Add(pt, s, lessons, workload.RoundPercent(percent.Get(s)))
		}
	}
	return payroll, nil
}
