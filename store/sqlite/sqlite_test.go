package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/workload-engine/factory"
	"github.com/warp/workload-engine/store/sqlite"
	"github.com/warp/workload-engine/workload"
)

// =============================================================================
// TEST SETUP
// =============================================================================

const schoolYearJSON = `{
	"id": "2025",
	"name": "2025/26",
	"calculation_mode": 1,
	"payroll_types": [
		{"code": "GYM", "lesson_based": true, "weekly_lessons": 28, "order": 1},
		{"code": "ADM", "order": 2}
	],
	"pool_types": [{"code": "CLASS_TEACHER", "payroll_type": "ADM"}]
}`

func employmentJSON(teacherID string) []byte {
	return []byte(`{
		"id": "e-` + teacherID + `", "teacher_id": "` + teacherID + `",
		"payment_target": [100, 100],
		"courses": [{"id": "c-1", "payroll_type": "GYM", "lessons": [20, 20]}],
		"pool": [{"id": "p-1", "type": "CLASS_TEACHER", "percent": [5, 5]}]
	}`)
}

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func newMockStore(t *testing.T) (*sqlite.Store, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlite.Open(db), mock
}

// =============================================================================
// SCHOOL YEARS
// =============================================================================

func TestStore_SaveSchoolYear(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	cat, err := store.SaveSchoolYear(ctx, []byte(schoolYearJSON))
	require.NoError(t, err)
	assert.Equal(t, "2025", cat.SchoolYear.ID)

	rec, err := store.GetSchoolYearRecord(ctx, "2025")
	require.NoError(t, err)
	assert.Equal(t, "2025/26", rec.Name)
	assert.Equal(t, 1, rec.CalculationMode)
	assert.Equal(t, 1, rec.Version)
	assert.False(t, rec.CreatedAt.IsZero())

	// saving again bumps the version
	_, err = store.SaveSchoolYear(ctx, []byte(schoolYearJSON))
	require.NoError(t, err)
	rec, err = store.GetSchoolYearRecord(ctx, "2025")
	require.NoError(t, err)
	assert.Equal(t, 2, rec.Version)

	records, err := store.ListSchoolYears(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestStore_SaveSchoolYear_Invalid(t *testing.T) {
	store := newTestStore(t)
	_, err := store.SaveSchoolYear(context.Background(), []byte(`{"id": "x"}`))
	assert.Error(t, err)

	records, err := store.ListSchoolYears(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestStore_SchoolYear(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	_, err := store.SaveSchoolYear(ctx, []byte(schoolYearJSON))
	require.NoError(t, err)

	sy, err := store.SchoolYear(ctx, "2025")
	require.NoError(t, err)
	assert.Len(t, sy.PayrollTypes, 2)

	_, err = store.SchoolYear(ctx, "1999")
	assert.ErrorIs(t, err, workload.ErrSchoolYearNotFound)
}

// =============================================================================
// EMPLOYMENTS
// =============================================================================

func TestStore_Employments(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	_, err := store.SaveSchoolYear(ctx, []byte(schoolYearJSON))
	require.NoError(t, err)

	for _, teacher := range []string{"t-2", "t-1"} {
		_, err := store.SaveEmployment(ctx, "2025", employmentJSON(teacher))
		require.NoError(t, err)
	}
	// replacing keeps one document per teacher
	_, err = store.SaveEmployment(ctx, "2025", employmentJSON("t-2"))
	require.NoError(t, err)

	inputs, err := store.Employments(ctx, "2025")
	require.NoError(t, err)
	require.Len(t, inputs, 2)
	assert.Equal(t, "t-1", inputs[0].Employment.TeacherID)
	assert.Equal(t, "t-2", inputs[1].Employment.TeacherID)

	// all inputs of one read share the payroll types
	assert.Same(t, inputs[0].Employment.SchoolYear, inputs[1].Employment.SchoolYear)
	assert.Same(t, inputs[0].Courses[0].PayrollType, inputs[1].Courses[0].PayrollType)

	in, err := store.Employment(ctx, "2025", "t-1")
	require.NoError(t, err)
	assert.Same(t, in.Employment.SchoolYear.PayrollType("GYM"), in.Courses[0].PayrollType)

	_, err = store.Employment(ctx, "2025", "t-9")
	assert.ErrorIs(t, err, workload.ErrEmploymentNotFound)
}

func TestStore_SaveEmployment_Errors(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.SaveEmployment(ctx, "2025", employmentJSON("t-1"))
	assert.ErrorIs(t, err, workload.ErrSchoolYearNotFound)

	_, err = store.SaveSchoolYear(ctx, []byte(schoolYearJSON))
	require.NoError(t, err)
	_, err = store.SaveEmployment(ctx, "2025", []byte(`{"id": "e", "teacher_id": "t", "pool": [{"id": "p", "type": "NOPE"}]}`))
	assert.Error(t, err)
}

func TestStore_BuildWorkloads(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	_, err := store.SaveSchoolYear(ctx, []byte(schoolYearJSON))
	require.NoError(t, err)
	_, err = store.SaveEmployment(ctx, "2025", employmentJSON("t-1"))
	require.NoError(t, err)

	ws, err := factory.BuildWorkloads(ctx, store, "2025", factory.BuildOptions{})
	require.NoError(t, err)
	wl, ok := ws.Get("t-1")
	require.True(t, ok)
	assert.InDelta(t, 100.0, wl.Payment(), 1e-9)
}

// =============================================================================
// SNAPSHOTS
// =============================================================================

func TestStore_Snapshots(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	snap, err := store.LatestSnapshot(ctx, "2025", "t-1")
	require.NoError(t, err)
	assert.Nil(t, snap)

	base := time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.SaveSnapshot(ctx, workload.Snapshot{
		ID: "s-1", SchoolYearID: "2025", TeacherID: "t-1", CalculationID: "c-1",
		Report: []byte(`{"v":1}`), CreatedAt: base,
	}))
	require.NoError(t, store.SaveSnapshot(ctx, workload.Snapshot{
		ID: "s-2", SchoolYearID: "2025", TeacherID: "t-1", CalculationID: "c-2",
		Report: []byte(`{"v":2}`), CreatedAt: base.Add(time.Hour),
	}))

	snap, err = store.LatestSnapshot(ctx, "2025", "t-1")
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, "s-2", snap.ID)
	assert.Equal(t, "c-2", snap.CalculationID)
	assert.JSONEq(t, `{"v":2}`, string(snap.Report))
	assert.True(t, base.Add(time.Hour).Equal(snap.CreatedAt))

	err = store.SaveSnapshot(ctx, workload.Snapshot{ID: "s-1", SchoolYearID: "2025", TeacherID: "t-1"})
	assert.Error(t, err)
}

func TestStore_LatestSnapshot_SameSecond(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 10, 1, 10, 0, 0, 0, time.UTC)
	// saved out of order so insertion order cannot decide
	require.NoError(t, store.SaveSnapshot(ctx, workload.Snapshot{
		ID: "newer", SchoolYearID: "2025", TeacherID: "t-1",
		Report: []byte(`{}`), CreatedAt: base.Add(500 * time.Millisecond),
	}))
	require.NoError(t, store.SaveSnapshot(ctx, workload.Snapshot{
		ID: "older", SchoolYearID: "2025", TeacherID: "t-1",
		Report: []byte(`{}`), CreatedAt: base,
	}))

	snap, err := store.LatestSnapshot(ctx, "2025", "t-1")
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, "newer", snap.ID)
	assert.True(t, base.Add(500*time.Millisecond).Equal(snap.CreatedAt))
}

func TestStore_Reset(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	_, err := store.SaveSchoolYear(ctx, []byte(schoolYearJSON))
	require.NoError(t, err)

	require.NoError(t, store.Reset(ctx))
	records, err := store.ListSchoolYears(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}

// =============================================================================
// FAILURE PATHS
// =============================================================================

var errDB = errors.New("database is locked")

func TestStore_SaveSchoolYear_ExecFails(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec("INSERT INTO school_years").WillReturnError(errDB)

	_, err := store.SaveSchoolYear(context.Background(), []byte(schoolYearJSON))
	assert.ErrorIs(t, err, errDB)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Employments_QueryFails(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC().Format(time.RFC3339)
	mock.ExpectQuery("SELECT id, name, calculation_mode, config_json, version, created_at, updated_at FROM school_years").
		WithArgs("2025").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "calculation_mode", "config_json", "version", "created_at", "updated_at"}).
			AddRow("2025", "2025/26", 1, schoolYearJSON, 1, now, now))
	mock.ExpectQuery("SELECT input_json FROM employments").
		WithArgs("2025").
		WillReturnError(errDB)

	_, err := store.Employments(context.Background(), "2025")
	assert.ErrorIs(t, err, errDB)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Employments_CorruptDocument(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC().Format(time.RFC3339)
	mock.ExpectQuery("FROM school_years").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "calculation_mode", "config_json", "version", "created_at", "updated_at"}).
			AddRow("2025", "2025/26", 1, schoolYearJSON, 1, now, now))
	mock.ExpectQuery("SELECT input_json FROM employments").
		WillReturnRows(sqlmock.NewRows([]string{"input_json"}).AddRow(`{not json`))

	_, err := store.Employments(context.Background(), "2025")
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_LatestSnapshot_QueryFails(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery("FROM workload_snapshots").WillReturnError(errDB)

	snap, err := store.LatestSnapshot(context.Background(), "2025", "t-1")
	assert.Nil(t, snap)
	assert.ErrorIs(t, err, errDB)
}
