// Package store provides Source implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/workload-engine/workload"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu          sync.RWMutex
	schoolYears map[string]*workload.SchoolYear
	employments map[key]*workload.EmploymentInput
	snapshots   map[key][]workload.Snapshot
}

type key struct {
	SchoolYearID string
	TeacherID    string
}

func NewMemory() *Memory {
	return &Memory{
		schoolYears: make(map[string]*workload.SchoolYear),
		employments: make(map[key]*workload.EmploymentInput),
		snapshots:   make(map[key][]workload.Snapshot),
	}
}

var (
	_ workload.Source        = (*Memory)(nil)
	_ workload.SnapshotStore = (*Memory)(nil)
)

func (m *Memory) PutSchoolYear(sy *workload.SchoolYear) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.schoolYears[sy.ID] = sy
}

// PutEmployment stores in under its employment's school year and teacher.
func (m *Memory) PutEmployment(in *workload.EmploymentInput) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := in.Employment
	m.employments[key{SchoolYearID: e.SchoolYear.ID, TeacherID: e.TeacherID}] = in
}

func (m *Memory) SchoolYear(_ context.Context, id string) (*workload.SchoolYear, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sy, ok := m.schoolYears[id]
	if !ok {
		return nil, workload.ErrSchoolYearNotFound
	}
	return sy, nil
}

func (m *Memory) Employments(_ context.Context, schoolYearID string) ([]*workload.EmploymentInput, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.schoolYears[schoolYearID]; !ok {
		return nil, workload.ErrSchoolYearNotFound
	}
	var result []*workload.EmploymentInput
	for k, in := range m.employments {
		if k.SchoolYearID == schoolYearID {
			result = append(result, in)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Employment.TeacherID < result[j].Employment.TeacherID
	})
	return result, nil
}

func (m *Memory) Employment(_ context.Context, schoolYearID, teacherID string) (*workload.EmploymentInput, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	in, ok := m.employments[key{SchoolYearID: schoolYearID, TeacherID: teacherID}]
	if !ok {
		return nil, workload.ErrEmploymentNotFound
	}
	return in, nil
}

func (m *Memory) SaveSnapshot(_ context.Context, s workload.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key{SchoolYearID: s.SchoolYearID, TeacherID: s.TeacherID}
	m.snapshots[k] = append(m.snapshots[k], s)
	return nil
}

// LatestSnapshot returns nil without error when none exists.
func (m *Memory) LatestSnapshot(_ context.Context, schoolYearID, teacherID string) (*workload.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	list := m.snapshots[key{SchoolYearID: schoolYearID, TeacherID: teacherID}]
	if len(list) == 0 {
		return nil, nil
	}
	s := list[len(list)-1]
	return &s, nil
}
