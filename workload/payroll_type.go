package workload

import "sort"

// =============================================================================
// PAYROLL TYPE
// =============================================================================

// PayrollType is a category under which workload is reported and paid.
//
// Identity is by pointer: two payroll types with the same code loaded twice
// are different types. The natural order is (Order, Code) and fixes the
// sequence in which the saldo is booked.
type PayrollType struct {
	ID          string
	Code        string
	Description string

	// LessonBased types track lessons; percent is derived via the factor.
	LessonBased bool

	// LessonPercent is the percent of a full position one weekly lesson is
	// worth. When zero it is derived from WeeklyLessons.
	LessonPercent float64

	// WeeklyLessons is the number of weekly lessons of a full position.
	WeeklyLessons float64

	Order int
}

// Factor returns the percent value of one lesson.
func (pt *PayrollType) Factor() float64 {
	if pt.LessonPercent != 0 {
		return pt.LessonPercent
	}
	if pt.WeeklyLessons != 0 {
		return 100 / pt.WeeklyLessons
	}
	return 0
}

// Percent converts lessons into percent of a full position.
func (pt *PayrollType) Percent(lessons float64) float64 {
	return lessons * pt.Factor()
}

// Lessons converts percent back into lessons. Types without a factor have no
// lesson equivalent and return 0.
func (pt *PayrollType) Lessons(percent float64) float64 {
	f := pt.Factor()
	if f == 0 {
		return 0
	}
	return percent / f
}

// Less reports whether pt sorts before o in the natural order.
func (pt *PayrollType) Less(o *PayrollType) bool {
	if pt.Order != o.Order {
		return pt.Order < o.Order
	}
	if pt.Code != o.Code {
		return pt.Code < o.Code
	}
	return pt.ID < o.ID
}

func (pt *PayrollType) String() string {
	return pt.Code
}

// SortPayrollTypes sorts types in place by their natural order.
func SortPayrollTypes(types []*PayrollType) {
	sort.SliceStable(types, func(i, j int) bool {
		return types[i].Less(types[j])
	})
}
