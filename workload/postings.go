package workload

// =============================================================================
// POSTINGS AGGREGATOR
// =============================================================================

// PostingDetailItem is one booked posting detail. Percent excludes age
// relief; AgeRelief is reported next to it.
type PostingDetailItem struct {
	Detail    *PostingDetail
	Semester  Semester
	Lessons   float64
	Percent   float64
	AgeRelief float64
}

// PostingItem groups the booked details of one posting.
type PostingItem struct {
	Posting   *Posting
	Details   []PostingDetailItem
	Percent   SemesterValue
	AgeRelief SemesterValue
}

// Total is the posting's percent including age relief.
func (p PostingItem) Total() SemesterValue {
	return p.Percent.Add(p.AgeRelief)
}

// Postings keeps postings in the order they were first seen.
type Postings struct {
	items     []*PostingItem
	index     map[*Posting]*PostingItem
	percent   SemesterValue
	ageRelief SemesterValue
}

func NewPostings() *Postings {
	return &Postings{index: make(map[*Posting]*PostingItem)}
}

// AddItem registers a posting without details. Adding the same posting
// twice is a no-op.
func (p *Postings) AddItem(posting *Posting) {
	p.item(posting)
}

func (p *Postings) item(posting *Posting) *PostingItem {
	if it, ok := p.index[posting]; ok {
		return it
	}
	it := &PostingItem{Posting: posting}
	p.index[posting] = it
	p.items = append(p.items, it)
	return it
}

// AddDetail books a detail under its posting.
func (p *Postings) AddDetail(posting *Posting, d PostingDetailItem) {
	it := p.item(posting)
	it.Details = append(it.Details, d)
	it.Percent = it.Percent.Plus(d.Semester, d.Percent)
	it.AgeRelief = it.AgeRelief.Plus(d.Semester, d.AgeRelief)
	p.percent = p.percent.Plus(d.Semester, d.Percent)
	p.ageRelief = p.ageRelief.Plus(d.Semester, d.AgeRelief)
}

// Items returns copies of the posting groups.
func (p *Postings) Items() []PostingItem {
	out := make([]PostingItem, len(p.items))
	for i, it := range p.items {
		out[i] = *it
		out[i].Details = append([]PostingDetailItem(nil), it.Details...)
	}
	return out
}

// Item returns the group of one posting.
func (p *Postings) Item(posting *Posting) (PostingItem, bool) {
	it, ok := p.index[posting]
	if !ok {
		return PostingItem{}, false
	}
	out := *it
	out.Details = append([]PostingDetailItem(nil), it.Details...)
	return out, true
}

func (p *Postings) TotalPercent() SemesterValue   { return p.percent }
func (p *Postings) TotalAgeRelief() SemesterValue { return p.ageRelief }

// Total is the postings' percent including age relief.
func (p *Postings) Total() SemesterValue {
	return p.percent.Add(p.ageRelief)
}
