/*
aggregates.go - Reporting aggregators for courses, pool and theses

PURPOSE:
  Each aggregator keeps the contributions of one source in insertion order
  together with running totals. They exist for reporting; the payroll
  booking of the same contributions happens in PayrollMap.

LIFECYCLE:
  Created fresh by NewCalculation, filled through the Add* methods of
  Calculation during a single pass, then handed read-only to the Workload.

SEE ALSO:
  - postings.go: The postings aggregator (grouped by posting)
  - summary.go: The per-category summary built from these totals
*/
package workload

// =============================================================================
// COURSES
// =============================================================================

type CourseItem struct {
	Course  *Course
	Lessons SemesterValue
	Percent SemesterValue
}

type Courses struct {
	items   []CourseItem
	lessons SemesterValue
	percent SemesterValue
}

func NewCourses() *Courses {
	return &Courses{}
}

func (c *Courses) AddItem(course *Course, lessons, percent SemesterValue) {
	c.items = append(c.items, CourseItem{Course: course, Lessons: lessons, Percent: percent})
	c.lessons = c.lessons.Add(lessons)
	c.percent = c.percent.Add(percent)
}

func (c *Courses) Items() []CourseItem {
	return append([]CourseItem(nil), c.items...)
}

func (c *Courses) TotalLessons() SemesterValue { return c.lessons }
func (c *Courses) TotalPercent() SemesterValue { return c.percent }

// =============================================================================
// POOL
// =============================================================================

type PoolItem struct {
	Entry   *PoolEntry
	Percent SemesterValue
}

type Pool struct {
	items   []PoolItem
	percent SemesterValue
}

func NewPool() *Pool {
	return &Pool{}
}

// AddItem records the entry with its percent as stored, before any age
// relief normalisation.
func (p *Pool) AddItem(entry *PoolEntry, percent SemesterValue) {
	p.items = append(p.items, PoolItem{Entry: entry, Percent: percent})
	p.percent = p.percent.Add(percent)
}

func (p *Pool) Items() []PoolItem {
	return append([]PoolItem(nil), p.items...)
}

func (p *Pool) TotalPercent() SemesterValue { return p.percent }

// =============================================================================
// THESES
// =============================================================================

type ThesisItem struct {
	Entry   *ThesisEntry
	Count   SemesterValue
	Percent SemesterValue
}

type Theses struct {
	items   []ThesisItem
	count   SemesterValue
	percent SemesterValue
}

func NewTheses() *Theses {
	return &Theses{}
}

func (t *Theses) AddItem(entry *ThesisEntry, count, percent SemesterValue) {
	t.items = append(t.items, ThesisItem{Entry: entry, Count: count, Percent: percent})
	t.count = t.count.Add(count)
	t.percent = t.percent.Add(percent)
}

func (t *Theses) Items() []ThesisItem {
	return append([]ThesisItem(nil), t.items...)
}

func (t *Theses) TotalCount() SemesterValue   { return t.count }
func (t *Theses) TotalPercent() SemesterValue { return t.percent }
