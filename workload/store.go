/*
store.go - Interfaces between the engine and data access

PURPOSE:
  The engine consumes already-loaded domain objects. Source is what a data
  access layer implements to hand them over; SnapshotStore keeps rendered
  workload reports.

IMPLEMENTATIONS:
  - workload/store/memory.go: In-memory, for tests and dev
  - store/sqlite/sqlite.go: SQLite, definitions stored as JSON

SEE ALSO:
  - factory/workloads.go: BuildWorkloads reads a Source
*/
package workload

import (
	"context"
	"time"
)

// =============================================================================
// CONTRIBUTIONS
// =============================================================================

// EmploymentInput is an employment together with everything it contributes.
type EmploymentInput struct {
	Employment  *Employment
	Courses     []*Course
	PoolEntries []*PoolEntry
	Theses      []*ThesisEntry
	Postings    []*Posting
}

// AddAll feeds every contribution of in, in the order courses, pool,
// theses, postings.
func (c *Calculation) AddAll(in *EmploymentInput) error {
	for _, course := range in.Courses {
		if err := c.AddCourse(course); err != nil {
			return err
		}
	}
	for _, entry := range in.PoolEntries {
		if err := c.AddPoolEntry(entry); err != nil {
			return err
		}
	}
	for _, entry := range in.Theses {
		if err := c.AddThesisEntry(entry); err != nil {
			return err
		}
	}
	for _, p := range in.Postings {
		if err := c.AddPosting(p); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// SOURCE - Read side of the data access layer
// =============================================================================

type Source interface {
	// SchoolYear returns ErrSchoolYearNotFound for unknown ids.
	SchoolYear(ctx context.Context, id string) (*SchoolYear, error)

	// Employments returns all employments of a school year with their
	// contributions, ordered by teacher id.
	Employments(ctx context.Context, schoolYearID string) ([]*EmploymentInput, error)

	// Employment returns ErrEmploymentNotFound if the teacher has none.
	Employment(ctx context.Context, schoolYearID, teacherID string) (*EmploymentInput, error)
}

// =============================================================================
// SNAPSHOTS - Rendered reports
// =============================================================================

type Snapshot struct {
	ID            string
	SchoolYearID  string
	TeacherID     string
	CalculationID string
	Report        []byte // JSON
	CreatedAt     time.Time
}

// SnapshotStore is append-only.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, s Snapshot) error
	LatestSnapshot(ctx context.Context, schoolYearID, teacherID string) (*Snapshot, error)
}
