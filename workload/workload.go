/*
workload.go - The final workload report

PURPOSE:
  A Workload is the read-only snapshot produced from a finalized
  Calculation. It combines the aggregator totals, the summary, the payroll
  and the balance of the employment.

BALANCE:
  payment = mean(payroll total percent)
  closing = opening + mean(summary total with age relief)
                    + mean(postings total) - payment

  Balance() returns exactly five lines in this order; renderers depend on
  the shape:
    Opening balance, Workload, Postings, Payment (negative), Closing balance

SEE ALSO:
  - summary.go: Rows of the summary
  - workloads.go: Per school year lookup by teacher
*/
package workload

// Balance line labels.
const (
	BalanceOpening  = "Opening balance"
	BalanceWorkload = "Workload"
	BalancePostings = "Postings"
	BalancePayment  = "Payment"
	BalanceClosing  = "Closing balance"
)

// BalanceLine is one labeled line of the balance breakdown.
type BalanceLine struct {
	Label string
	Value float64
}

// Workload is immutable once built.
type Workload struct {
	calculationID string
	modeName      string
	employment    *Employment
	ageRelief     SemesterValue

	courses  *Courses
	pool     *Pool
	theses   *Theses
	postings *Postings
	summary  *Summary
	payroll  *Payroll

	payment        float64
	openingBalance float64
	closingBalance float64
}

// Workload assembles the report. CalculatePayroll must have succeeded.
func (c *Calculation) Workload() (*Workload, error) {
	if c.err != nil {
		return nil, c.err
	}
	if c.payroll == nil {
		return nil, ErrNotFinalized
	}

	summary := NewSummary(c.employment)
	summary.Add(SummaryInstruction, c.courses.TotalPercent())
	summary.Add(SummaryTheses, c.theses.TotalPercent())
	summary.Add(SummaryPool, c.pool.TotalPercent().Map(func(s Semester, p float64) float64 {
		return c.mode.PoolPercent(c, s, p)
	}))

	w := &Workload{
		calculationID:  c.id,
		modeName:       c.mode.Name(),
		employment:     c.employment,
		ageRelief:      c.employment.AgeRelief,
		courses:        c.courses,
		pool:           c.pool,
		theses:         c.theses,
		postings:       c.postings,
		summary:        summary,
		payroll:        c.payroll,
		payment:        c.payroll.Payment(),
		openingBalance: c.employment.OpeningBalance,
	}
	w.closingBalance = w.openingBalance +
		w.WorkloadWithAgeRelief() +
		w.PostingsPercent() -
		w.payment
	return w, nil
}

func (w *Workload) CalculationID() string    { return w.calculationID }
func (w *Workload) ModeName() string         { return w.modeName }
func (w *Workload) Employment() *Employment  { return w.employment }
func (w *Workload) AgeRelief() SemesterValue { return w.ageRelief }
func (w *Workload) Courses() *Courses        { return w.courses }
func (w *Workload) Pool() *Pool              { return w.pool }
func (w *Workload) Theses() *Theses          { return w.theses }
func (w *Workload) Postings() *Postings      { return w.postings }
func (w *Workload) Summary() *Summary        { return w.summary }
func (w *Workload) Payroll() *Payroll        { return w.payroll }
func (w *Workload) Payment() float64         { return w.payment }
func (w *Workload) OpeningBalance() float64  { return w.openingBalance }
func (w *Workload) ClosingBalance() float64  { return w.closingBalance }

// WorkloadWithAgeRelief is the yearly workload including age relief.
func (w *Workload) WorkloadWithAgeRelief() float64 {
	return w.summary.Total().PercentWithAgeRelief().Mean()
}

// PostingsPercent is the yearly postings total including age relief.
func (w *Workload) PostingsPercent() float64 {
	return w.postings.Total().Mean()
}

// Balance returns the five-line balance breakdown.
func (w *Workload) Balance() []BalanceLine {
	return []BalanceLine{
		{Label: BalanceOpening, Value: w.openingBalance},
		{Label: BalanceWorkload, Value: w.WorkloadWithAgeRelief()},
		{Label: BalancePostings, Value: w.PostingsPercent()},
		{Label: BalancePayment, Value: -w.payment},
		{Label: BalanceClosing, Value: w.closingBalance},
	}
}
