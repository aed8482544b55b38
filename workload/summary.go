package workload

import "sort"

// Summary row names.
const (
	SummaryInstruction = "Instruction"
	SummaryTheses      = "Theses"
	SummaryPool        = "Pool"
	SummaryTotal       = "Total"
)

// =============================================================================
// SUMMARY
// =============================================================================

// SummaryItem is one named workload contribution. AgeRelief is derived from
// Percent and the employment's factor.
type SummaryItem struct {
	ID        int
	Name      string
	Percent   SemesterValue
	AgeRelief SemesterValue
	IsTotal   bool
}

func (si SummaryItem) PercentWithAgeRelief() SemesterValue {
	return si.Percent.Add(si.AgeRelief)
}

// Summary lists the contributions in insertion order followed by a Total.
type Summary struct {
	employment *Employment
	items      []SummaryItem
	nextID     int
	total      SummaryItem
}

func NewSummary(e *Employment) *Summary {
	return &Summary{
		employment: e,
		total:      SummaryItem{Name: SummaryTotal, IsTotal: true},
	}
}

// Add appends a row and folds it into the total.
func (s *Summary) Add(name string, percent SemesterValue) SummaryItem {
	s.nextID++
	item := SummaryItem{
		ID:      s.nextID,
		Name:    name,
		Percent: percent,
		AgeRelief: percent.Map(func(sem Semester, p float64) float64 {
			return s.employment.AgeReliefFor(sem, p)
		}),
	}
	s.items = append(s.items, item)
	s.total.Percent = s.total.Percent.Add(item.Percent)
	s.total.AgeRelief = s.total.AgeRelief.Add(item.AgeRelief)
	s.total.ID = s.nextID + 1
	return item
}

// Items returns rows by insertion id with the Total row last.
func (s *Summary) Items() []SummaryItem {
	out := append([]SummaryItem(nil), s.items...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return append(out, s.total)
}

func (s *Summary) Total() SummaryItem { return s.total }
