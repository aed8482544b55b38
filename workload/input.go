package workload

import "time"

// =============================================================================
// COURSES
// =============================================================================

// Course is a taught course. Its lessons are split between the teachers
// assigned to it.
type Course struct {
	ID            string
	Subject       string
	SchoolClasses []string
	PayrollType   *PayrollType
	Teachers      []CourseTeacher
}

// CourseTeacher assigns weekly lessons of a course to one teacher.
type CourseTeacher struct {
	TeacherID string
	Lessons   SemesterValue
}

// LessonsFor returns the weekly lessons the teacher gives in semester s.
// Multiple assignments of the same teacher are summed.
func (c *Course) LessonsFor(teacherID string, s Semester) float64 {
	var lessons float64
	for _, t := range c.Teachers {
		if t.TeacherID == teacherID {
			lessons += t.Lessons.Get(s)
		}
	}
	return lessons
}

// PercentFor converts the teacher's lessons into percent via the course's
// payroll type.
func (c *Course) PercentFor(teacherID string, s Semester) float64 {
	if c.PayrollType == nil {
		return 0
	}
	return c.PayrollType.Percent(c.LessonsFor(teacherID, s))
}

// =============================================================================
// POOL
// =============================================================================

// PoolType is a catalog entry for non-course work (administration, ...).
type PoolType struct {
	Code        string
	Description string
	PayrollType *PayrollType
}

// PoolEntry is a teacher's pool workload in percent per semester. Whether
// the stored percent includes age relief depends on the calculation mode.
type PoolEntry struct {
	ID          string
	Type        *PoolType
	Description string
	Percent     SemesterValue
}

// =============================================================================
// THESES
// =============================================================================

// ThesisType is a catalog entry for supervised theses.
type ThesisType struct {
	Code        string
	Description string
	// Percent credited per supervised thesis.
	Percent     float64
	PayrollType *PayrollType
}

// ThesisEntry counts the theses a teacher supervises per semester.
type ThesisEntry struct {
	ID    string
	Type  *ThesisType
	Count SemesterValue
}

func (t *ThesisEntry) PercentFor(s Semester) float64 {
	return t.Type.Percent * t.Count.Get(s)
}

// =============================================================================
// POSTINGS
// =============================================================================

// Posting is a manual workload correction over a date range, broken down
// into details per payroll type and semester.
type Posting struct {
	ID          string
	Description string
	From        time.Time
	To          time.Time
	Details     []*PostingDetail
}

// PostingDetail holds lessons for lesson-based payroll types and percent
// otherwise.
type PostingDetail struct {
	ID          string
	PayrollType *PayrollType
	Semester    Semester
	Value       float64
}
