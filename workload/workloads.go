package workload

import "sort"

// Workloads maps teachers to their Workload for one school year. It is
// filled once and read-only afterwards.
type Workloads struct {
	schoolYear *SchoolYear
	byTeacher  map[string]*Workload
}

func NewWorkloads(sy *SchoolYear) *Workloads {
	return &Workloads{schoolYear: sy, byTeacher: make(map[string]*Workload)}
}

func (ws *Workloads) SchoolYear() *SchoolYear { return ws.schoolYear }

// Put stores w under its employment's teacher, replacing any previous one.
func (ws *Workloads) Put(w *Workload) {
	ws.byTeacher[w.Employment().TeacherID] = w
}

func (ws *Workloads) Get(teacherID string) (*Workload, bool) {
	w, ok := ws.byTeacher[teacherID]
	return w, ok
}

func (ws *Workloads) Len() int { return len(ws.byTeacher) }

// All returns the workloads sorted by teacher id.
func (ws *Workloads) All() []*Workload {
	out := make([]*Workload, 0, len(ws.byTeacher))
	for _, w := range ws.byTeacher {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Employment().TeacherID < out[j].Employment().TeacherID
	})
	return out
}
