package workload

// =============================================================================
// MODE - Strategy for one calculation regime
// =============================================================================

// Mode implements the parts of a calculation that differ between regimes.
// Calculation owns the single pass over the contributions and calls back
// into the Mode for booking, normalisation and the final allocation.
//
// Implementations live in their own packages:
//
//	percent.New()                       // mode 1
//	percent.NewAgeReliefIncluded()      // mode 2
//	percent.NewLessonsAgeReliefIncluded() // mode 3
//	historic.New(defaultType)           // mode 99
type Mode interface {
	// ID is the calculation mode id stored on the school year.
	ID() int
	Name() string

	// AddToPayroll books one contribution into the calculation's PayrollMap.
	AddToPayroll(c *Calculation, b Booking) error

	// CalculatePayroll runs the allocation and returns the final payroll.
	CalculatePayroll(c *Calculation) (*Payroll, error)

	// HandlePostingDetailLessons books a detail of a lesson-based type.
	HandlePostingDetailLessons(c *Calculation, p *Posting, d *PostingDetail) error

	// HandlePostingDetailPercent books a detail of a percent-only type.
	HandlePostingDetailPercent(c *Calculation, p *Posting, d *PostingDetail) error

	// PoolPercent normalises a stored pool percent to percent without age
	// relief.
	PoolPercent(c *Calculation, s Semester, percent float64) float64
}

// Booking is one (payroll type, semester, value) contribution.
type Booking struct {
	Type     *PayrollType
	Semester Semester
	Value    float64
	// Lessons is true when Value is in lessons, false for percent.
	Lessons bool
	Source  string
}

// =============================================================================
// SHARED MODE HELPERS
// =============================================================================

// Book routes b to SumPayrollLessons or SumPayrollPercent.
func Book(c *Calculation, b Booking) error {
	if b.Lessons {
		return c.SumPayrollLessons(b.Type, b.Semester, b.Value, b.Source)
	}
	return c.SumPayrollPercent(b.Type, b.Semester, b.Value, b.Source)
}

// BookPostingLessons books a lesson detail and records it with its percent
// and age relief.
func BookPostingLessons(c *Calculation, p *Posting, d *PostingDetail) error {
	e := c.Employment()
	lessons := d.Value
	percent := d.PayrollType.Percent(lessons)
	err := c.mode.AddToPayroll(c, Booking{
		Type: d.PayrollType, Semester: d.Semester, Value: lessons, Lessons: true, Source: "posting",
	})
	if err != nil {
		return err
	}
	c.postings.AddDetail(p, PostingDetailItem{
		Detail:    d,
		Semester:  d.Semester,
		Lessons:   lessons,
		Percent:   percent,
		AgeRelief: e.AgeReliefFor(d.Semester, percent),
	})
	return nil
}

// BookPostingPercent books a percent detail. storedWithAgeRelief tells
// whether d.Value already contains the age relief.
func BookPostingPercent(c *Calculation, p *Posting, d *PostingDetail, storedWithAgeRelief bool) error {
	e := c.Employment()
	percent := d.Value
	ageRelief := e.AgeReliefFor(d.Semester, percent)
	if storedWithAgeRelief {
		percent = e.WithoutAgeRelief(d.Semester, d.Value)
		ageRelief = d.Value - percent
	}
	err := c.mode.AddToPayroll(c, Booking{
		Type: d.PayrollType, Semester: d.Semester, Value: percent, Source: "posting",
	})
	if err != nil {
		return err
	}
	c.postings.AddDetail(p, PostingDetailItem{
		Detail:    d,
		Semester:  d.Semester,
		Lessons:   d.PayrollType.Lessons(percent),
		Percent:   percent,
		AgeRelief: ageRelief,
	})
	return nil
}

// StoredPoolPercent normalises a stored pool percent.
func StoredPoolPercent(c *Calculation, s Semester, percent float64, storedWithAgeRelief bool) float64 {
	if storedWithAgeRelief {
		return c.Employment().WithoutAgeRelief(s, percent)
	}
	return percent
}

// Diff is the payment target minus the computed percent.
func Diff(c *Calculation, computed SemesterValue) SemesterValue {
	return c.Employment().PaymentTarget.Sub(computed)
}
