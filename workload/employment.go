package workload

// =============================================================================
// SCHOOL YEAR
// =============================================================================

// Calculation mode ids as stored on a school year.
const (
	ModePercent                  = 1
	ModePercentAgeReliefIncluded = 2
	ModeLessonsAgeReliefIncluded = 3
	ModeHistoric                 = 99
)

// SchoolYear carries the configuration a calculation needs from its year.
type SchoolYear struct {
	ID    string
	Name  string
	Weeks int

	// CalculationMode selects the Mode (see the Mode* constants).
	CalculationMode int

	PayrollTypes []*PayrollType

	// DefaultPayrollType receives the whole saldo in the historic mode.
	DefaultPayrollType *PayrollType

	// SaldoResolutionOrder overrides the natural order in which the saldo is
	// booked for the lessons-based age-relief mode. Types not listed follow
	// in natural order.
	SaldoResolutionOrder []*PayrollType
}

// PayrollType returns the school year's payroll type with the given code.
func (sy *SchoolYear) PayrollType(code string) *PayrollType {
	for _, pt := range sy.PayrollTypes {
		if pt.Code == code {
			return pt
		}
	}
	return nil
}

// =============================================================================
// EMPLOYMENT
// =============================================================================

// Employment is one teacher's contract in one school year.
type Employment struct {
	ID          string
	TeacherID   string
	TeacherName string
	SchoolYear  *SchoolYear

	// AgeRelief is the per-semester uplift factor in percent (5 means 5%).
	AgeRelief SemesterValue

	// PaymentTarget is the percent of a full position that is paid.
	PaymentTarget SemesterValue

	// OpeningBalance is the balance carried over from the previous year,
	// in percent of a full position.
	OpeningBalance float64
}

func (e *Employment) AgeReliefFactor(s Semester) float64 {
	return e.AgeRelief.Get(s)
}

// AgeReliefFor returns the age relief earned by percent of workload.
func (e *Employment) AgeReliefFor(s Semester, percent float64) float64 {
	return percent * e.AgeReliefFactor(s) / 100
}

// WithAgeRelief adds the age relief to percent.
func (e *Employment) WithAgeRelief(s Semester, percent float64) float64 {
	return percent * (100 + e.AgeReliefFactor(s)) / 100
}

// WithoutAgeRelief is the inverse of WithAgeRelief.
func (e *Employment) WithoutAgeRelief(s Semester, percent float64) float64 {
	return percent * 100 / (100 + e.AgeReliefFactor(s))
}
