/*
allocation.go - Difference booking across payroll types

PURPOSE:
  Reconciles the computed workload percent with the payment target. The
  difference (saldo) is booked greedily on the payroll types in a fixed
  order, per semester independently.

ALGORITHM:
  diff[s] = target[s] - computed[s]
  for each type in order, for each semester:
      result = stored + diff[s]
      result <  0: type reports 0, diff[s] = result (carried to the next type)
      result >= 0: type reports result, diff[s] = 0

  The carry is an explicit value threaded through every step (Absorb) and
  returned by Allocate. A negative remainder that no type can take is
  returned to the caller.

EXAMPLE:
  A=60, B=60, target 100  ->  diff -20  ->  A=40, B=60
  A=10, B=5,  target 50   ->  diff +35  ->  A=45, B=5

SEE ALSO:
  - percent/: The modes that use Allocate
  - historic/: The single-pass legacy booking
*/
package workload

// Allocation is the percent of one payroll type before or after booking.
type Allocation struct {
	Type    *PayrollType
	Percent SemesterValue
}

// Absorb books diff on a stored percent. It returns the type's final percent
// and the diff left for the next type.
func Absorb(stored, diff float64) (final, remaining float64) {
	result := stored + diff
	if result < 0 {
		return 0, result
	}
	return result, 0
}

// Allocate folds diff over computed in slice order.
func Allocate(computed []Allocation, diff SemesterValue) ([]Allocation, SemesterValue) {
	out := make([]Allocation, len(computed))
	remaining := diff
	for i, a := range computed {
		out[i], remaining = allocateStep(a, remaining)
	}
	return out, remaining
}

func allocateStep(a Allocation, diff SemesterValue) (Allocation, SemesterValue) {
	for _, s := range Semesters {
		final, rest := Absorb(a.Percent.Get(s), diff.Get(s))
		a.Percent = a.Percent.With(s, final)
		diff = diff.With(s, rest)
	}
	return a, diff
}

// SumAllocations totals the percent of all allocations.
func SumAllocations(as []Allocation) SemesterValue {
	var total SemesterValue
	for _, a := range as {
		total = total.Add(a.Percent)
	}
	return total
}
