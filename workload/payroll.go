/*
payroll.go - Payroll accumulation and the finalized payroll result

PURPOSE:
  PayrollMap collects contributions per payroll type and semester while a
  calculation runs. Payroll is the result of the allocation step: final
  lessons and percent per payroll type.

UNITS:
  PayrollMap stores values in the payroll type's native unit: lessons for
  lesson-based types, percent for the others. Percent() converts on read.

ORDERING:
  The set of payroll types is kept as a slice and sorted explicitly. Map
  iteration is never used for anything that reaches a result.

SEE ALSO:
  - allocation.go: Allocate, which turns a PayrollMap into final percents
  - calculation.go: SumPayrollLessons / SumPayrollPercent feed the map
*/
package workload

import "sort"

// =============================================================================
// PAYROLL MAP - Accumulated values during a calculation
// =============================================================================

type PayrollMap struct {
	values map[*PayrollType]SemesterValue
	types  []*PayrollType
}

func NewPayrollMap() *PayrollMap {
	return &PayrollMap{values: make(map[*PayrollType]SemesterValue)}
}

// Ensure registers pt with zero values if it has not been seen.
func (m *PayrollMap) Ensure(pt *PayrollType) {
	if _, ok := m.values[pt]; ok {
		return
	}
	m.values[pt] = SemesterValue{}
	m.types = append(m.types, pt)
}

// Add books value in the type's native unit.
func (m *PayrollMap) Add(pt *PayrollType, s Semester, value float64) {
	m.Ensure(pt)
	m.values[pt] = m.values[pt].Plus(s, value)
}

// Get returns the stored value in the type's native unit.
func (m *PayrollMap) Get(pt *PayrollType) SemesterValue {
	return m.values[pt]
}

// Contains reports whether pt received any booking (or was ensured).
func (m *PayrollMap) Contains(pt *PayrollType) bool {
	_, ok := m.values[pt]
	return ok
}

// Percent returns the stored value converted to percent.
func (m *PayrollMap) Percent(pt *PayrollType) SemesterValue {
	v := m.values[pt]
	if !pt.LessonBased {
		return v
	}
	return v.Map(func(_ Semester, lessons float64) float64 {
		return pt.Percent(lessons)
	})
}

// TotalPercent sums Percent over all types.
func (m *PayrollMap) TotalPercent() SemesterValue {
	var total SemesterValue
	for _, pt := range m.Types() {
		total = total.Add(m.Percent(pt))
	}
	return total
}

// Types returns the booked types in natural order.
func (m *PayrollMap) Types() []*PayrollType {
	out := append([]*PayrollType(nil), m.types...)
	SortPayrollTypes(out)
	return out
}

// TypesIn returns the booked types in the given order. Booked types missing
// from order follow in natural order; types in order that were never booked
// are skipped.
func (m *PayrollMap) TypesIn(order []*PayrollType) []*PayrollType {
	if len(order) == 0 {
		return m.Types()
	}
	seen := make(map[*PayrollType]bool, len(order))
	var out []*PayrollType
	for _, pt := range order {
		if m.Contains(pt) && !seen[pt] {
			out = append(out, pt)
			seen[pt] = true
		}
	}
	for _, pt := range m.Types() {
		if !seen[pt] {
			out = append(out, pt)
		}
	}
	return out
}

// =============================================================================
// PAYROLL - Finalized result
// =============================================================================

type PayrollItem struct {
	Type    *PayrollType
	Lessons SemesterValue
	Percent SemesterValue
}

type Payroll struct {
	items   []*PayrollItem
	index   map[*PayrollType]*PayrollItem
	percent SemesterValue
}

func NewPayroll() *Payroll {
	return &Payroll{index: make(map[*PayrollType]*PayrollItem)}
}

// Add sets the final values of one payroll type in one semester.
func (p *Payroll) Add(pt *PayrollType, s Semester, lessons, percent float64) {
	it, ok := p.index[pt]
	if !ok {
		it = &PayrollItem{Type: pt}
		p.index[pt] = it
		p.items = append(p.items, it)
	}
	it.Lessons = it.Lessons.Plus(s, lessons)
	it.Percent = it.Percent.Plus(s, percent)
	p.percent = p.percent.Plus(s, percent)
}

// Items returns the payroll lines in natural payroll type order, whatever
// order the saldo was resolved in.
func (p *Payroll) Items() []PayrollItem {
	out := make([]PayrollItem, len(p.items))
	for i, it := range p.items {
		out[i] = *it
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Type.Less(out[j].Type) })
	return out
}

func (p *Payroll) Item(pt *PayrollType) (PayrollItem, bool) {
	it, ok := p.index[pt]
	if !ok {
		return PayrollItem{}, false
	}
	return *it, true
}

// TotalPercent is the running total across all payroll types.
func (p *Payroll) TotalPercent() SemesterValue { return p.percent }

// Payment is the yearly mean of the total percent.
func (p *Payroll) Payment() float64 { return p.percent.Mean() }
