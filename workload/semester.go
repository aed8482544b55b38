/*
Package workload provides the teacher workload and payroll calculation engine.

PURPOSE:
  Given one employment in a school year, the engine collects every workload
  contribution (courses, pool entries, theses, postings), books it against
  payroll types, reconciles the computed workload with the contractual
  payment target and produces a Workload report with a running balance.

KEY CONCEPTS IN THIS FILE (semester.go):
  - Semester: First or Second half of a school year
  - SemesterValue: a pair of values, one per semester

DESIGN PRINCIPLES:
  1. Per-semester independence: every operation is applied to each semester
     on its own unless it explicitly combines them (Mean, Total)
  2. Value semantics: SemesterValue is copied on assignment, so exposing it
     from an aggregator can never alias internal state
  3. Determinism: no result depends on map iteration order

SEE ALSO:
  - calculation.go: The calculation skeleton and the Mode strategy
  - allocation.go: Difference booking across payroll types
  - workload.go: The final report
*/
package workload

import "fmt"

// =============================================================================
// SEMESTER
// =============================================================================

// Semester identifies one half of a school year.
type Semester int

const (
	First Semester = iota
	Second
)

// Semesters lists both semesters in reporting order.
var Semesters = []Semester{First, Second}

func (s Semester) String() string {
	switch s {
	case First:
		return "S1"
	case Second:
		return "S2"
	default:
		return fmt.Sprintf("Semester(%d)", int(s))
	}
}

// Valid reports whether s is one of the two known semesters.
func (s Semester) Valid() bool {
	return s == First || s == Second
}

// ParseSemester accepts 1/2 as used by the JSON definitions.
func ParseSemester(n int) (Semester, error) {
	switch n {
	case 1:
		return First, nil
	case 2:
		return Second, nil
	default:
		return 0, fmt.Errorf("invalid semester %d", n)
	}
}

// =============================================================================
// SEMESTER VALUE
// =============================================================================

// SemesterValue holds one number per semester.
type SemesterValue struct {
	v [2]float64
}

// NewSemesterValue creates a value from both semester amounts.
func NewSemesterValue(first, second float64) SemesterValue {
	return SemesterValue{v: [2]float64{first, second}}
}

// Uniform creates a value that is the same in both semesters.
func Uniform(value float64) SemesterValue {
	return NewSemesterValue(value, value)
}

func (sv SemesterValue) Get(s Semester) float64 { return sv.v[s] }
func (sv SemesterValue) First() float64         { return sv.v[First] }
func (sv SemesterValue) Second() float64        { return sv.v[Second] }

// With returns a copy with semester s replaced.
func (sv SemesterValue) With(s Semester, value float64) SemesterValue {
	sv.v[s] = value
	return sv
}

// Plus returns a copy with value added to semester s.
func (sv SemesterValue) Plus(s Semester, value float64) SemesterValue {
	sv.v[s] += value
	return sv
}

func (sv SemesterValue) Add(o SemesterValue) SemesterValue {
	return NewSemesterValue(sv.v[First]+o.v[First], sv.v[Second]+o.v[Second])
}

func (sv SemesterValue) Sub(o SemesterValue) SemesterValue {
	return NewSemesterValue(sv.v[First]-o.v[First], sv.v[Second]-o.v[Second])
}

// Map applies fn to each semester.
func (sv SemesterValue) Map(fn func(Semester, float64) float64) SemesterValue {
	return NewSemesterValue(fn(First, sv.v[First]), fn(Second, sv.v[Second]))
}

// Mean is the yearly average of both semesters.
func (sv SemesterValue) Mean() float64 {
	return (sv.v[First] + sv.v[Second]) / 2
}

func (sv SemesterValue) Total() float64 {
	return sv.v[First] + sv.v[Second]
}

func (sv SemesterValue) IsZero() bool {
	return sv.v[First] == 0 && sv.v[Second] == 0
}

func (sv SemesterValue) String() string {
	return fmt.Sprintf("[%g, %g]", sv.v[First], sv.v[Second])
}
