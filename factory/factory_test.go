package factory_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/workload-engine/factory"
	"github.com/warp/workload-engine/historic"
	"github.com/warp/workload-engine/percent"
	"github.com/warp/workload-engine/workload"
	"github.com/warp/workload-engine/workload/store"
)

// =============================================================================
// TEST FIXTURES
// =============================================================================

const schoolYearJSON = `{
	"id": "2025",
	"name": "2025/26",
	"weeks": 39,
	"calculation_mode": 1,
	"default_payroll_type": "ADM",
	"saldo_resolution_order": ["ADM", "GYM"],
	"payroll_types": [
		{"code": "ADM", "description": "Administration", "order": 2},
		{"code": "GYM", "description": "Gymnasium", "lesson_based": true, "weekly_lessons": 28, "order": 1}
	],
	"pool_types": [{"code": "CLASS_TEACHER", "description": "Class teacher", "payroll_type": "ADM"}],
	"thesis_types": [{"code": "MATURA", "description": "Matura thesis", "percent": 0.5, "payroll_type": "ADM"}]
}`

const employmentJSON = `{
	"id": "e-1", "teacher_id": "t-1", "teacher_name": "A. Muster",
	"age_relief": [5, 5], "payment_target": [100, 100], "opening_balance": 1.5,
	"courses":  [{"id": "c-1", "subject": "Math", "school_classes": ["1a"], "payroll_type": "GYM", "lessons": [20, 20]}],
	"pool":     [{"id": "p-1", "type": "CLASS_TEACHER", "percent": [2, 2]}],
	"theses":   [{"id": "th-1", "type": "MATURA", "count": [3, 0]}],
	"postings": [{"id": "po-1", "description": "Substitution", "from": "2025-09-01", "to": "2025-09-30",
	              "details": [{"payroll_type": "GYM", "semester": 1, "value": 2}, {"payroll_type": "ADM", "semester": 2, "value": 0}]}]
}`

func parse(t *testing.T) (*factory.Catalog, *workload.EmploymentInput) {
	t.Helper()
	f := factory.New()
	cat, err := f.ParseSchoolYear([]byte(schoolYearJSON))
	require.NoError(t, err)
	in, err := f.ParseEmployment(cat, []byte(employmentJSON))
	require.NoError(t, err)
	return cat, in
}

// =============================================================================
// SCHOOL YEAR PARSING
// =============================================================================

func TestParseSchoolYear(t *testing.T) {
	cat, _ := parse(t)
	sy := cat.SchoolYear

	assert.Equal(t, "2025", sy.ID)
	assert.Equal(t, workload.ModePercent, sy.CalculationMode)
	require.Len(t, sy.PayrollTypes, 2)
	// natural order, not declaration order
	assert.Equal(t, "GYM", sy.PayrollTypes[0].Code)
	assert.Equal(t, "ADM", sy.PayrollTypes[1].Code)

	assert.Same(t, sy.PayrollType("ADM"), sy.DefaultPayrollType)
	require.Len(t, sy.SaldoResolutionOrder, 2)
	assert.Same(t, sy.PayrollType("ADM"), sy.SaldoResolutionOrder[0])

	require.NotNil(t, cat.PoolType("CLASS_TEACHER"))
	assert.Same(t, sy.PayrollType("ADM"), cat.PoolType("CLASS_TEACHER").PayrollType)
	assert.Equal(t, 0.5, cat.ThesisType("MATURA").Percent)
	assert.Nil(t, cat.PoolType("NOPE"))
}

func TestParseSchoolYear_Errors(t *testing.T) {
	f := factory.New()
	tests := []struct {
		name string
		json string
	}{
		{"malformed", `{`},
		{"missing id", `{"payroll_types": [{"code": "A"}]}`},
		{"no payroll types", `{"id": "x"}`},
		{"duplicate payroll type", `{"id": "x", "payroll_types": [{"code": "A"}, {"code": "A"}]}`},
		{"lesson based without factor", `{"id": "x", "payroll_types": [{"code": "A", "lesson_based": true}]}`},
		{"unknown default", `{"id": "x", "default_payroll_type": "B", "payroll_types": [{"code": "A"}]}`},
		{"unknown saldo order type", `{"id": "x", "saldo_resolution_order": ["B"], "payroll_types": [{"code": "A"}]}`},
		{"pool type on unknown payroll type", `{"id": "x", "payroll_types": [{"code": "A"}], "pool_types": [{"code": "P", "payroll_type": "B"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ParseSchoolYear([]byte(tt.json))
			assert.Error(t, err)
		})
	}
}

func TestSchoolYear_ToJSONRoundTrip(t *testing.T) {
	f := factory.New()
	cat, _ := parse(t)

	again, err := f.SchoolYearFromJSON(f.ToJSON(cat))
	require.NoError(t, err)
	assert.Equal(t, f.ToJSON(cat), f.ToJSON(again))
}

// =============================================================================
// EMPLOYMENT PARSING
// =============================================================================

func TestParseEmployment(t *testing.T) {
	cat, in := parse(t)
	sy := cat.SchoolYear
	e := in.Employment

	assert.Equal(t, "t-1", e.TeacherID)
	assert.Same(t, sy, e.SchoolYear)
	assert.Equal(t, workload.Uniform(5), e.AgeRelief)
	assert.Equal(t, 1.5, e.OpeningBalance)

	require.Len(t, in.Courses, 1)
	assert.Same(t, sy.PayrollType("GYM"), in.Courses[0].PayrollType)
	assert.Equal(t, 20.0, in.Courses[0].LessonsFor("t-1", workload.First))

	require.Len(t, in.Theses, 1)
	assert.Equal(t, 1.5, in.Theses[0].PercentFor(workload.First))

	require.Len(t, in.Postings, 1)
	p := in.Postings[0]
	assert.Equal(t, time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC), p.From)
	require.Len(t, p.Details, 2)
	assert.Equal(t, "po-1-1", p.Details[0].ID)
	assert.Equal(t, workload.Second, p.Details[1].Semester)
}

func TestParseEmployment_Errors(t *testing.T) {
	f := factory.New()
	cat, err := f.ParseSchoolYear([]byte(schoolYearJSON))
	require.NoError(t, err)

	tests := []struct {
		name string
		json string
	}{
		{"missing teacher", `{"id": "e"}`},
		{"unknown course payroll type", `{"id": "e", "teacher_id": "t", "courses": [{"id": "c", "payroll_type": "X"}]}`},
		{"unknown pool type", `{"id": "e", "teacher_id": "t", "pool": [{"id": "p", "type": "X"}]}`},
		{"unknown thesis type", `{"id": "e", "teacher_id": "t", "theses": [{"id": "th", "type": "X"}]}`},
		{"invalid semester", `{"id": "e", "teacher_id": "t", "postings": [{"id": "p", "details": [{"payroll_type": "ADM", "semester": 3, "value": 1}]}]}`},
		{"invalid date", `{"id": "e", "teacher_id": "t", "postings": [{"id": "p", "from": "01.09.2025"}]}`},
		{"to before from", `{"id": "e", "teacher_id": "t", "postings": [{"id": "p", "from": "2025-09-30", "to": "2025-09-01"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ParseEmployment(cat, []byte(tt.json))
			assert.Error(t, err)
		})
	}
}

// =============================================================================
// MODE SELECTION
// =============================================================================

func TestNewMode(t *testing.T) {
	cat, _ := parse(t)
	sy := cat.SchoolYear

	tests := []struct {
		id   int
		want int
	}{
		{workload.ModePercent, 1},
		{workload.ModePercentAgeReliefIncluded, 2},
		{workload.ModeLessonsAgeReliefIncluded, 3},
		{workload.ModeHistoric, 99},
	}
	for _, tt := range tests {
		sy.CalculationMode = tt.id
		m, err := factory.NewMode(sy)
		require.NoError(t, err)
		assert.Equal(t, tt.want, m.ID())
	}

	sy.CalculationMode = workload.ModePercent
	m, _ := factory.NewMode(sy)
	assert.IsType(t, &percent.Mode{}, m)

	sy.CalculationMode = workload.ModeHistoric
	m, _ = factory.NewMode(sy)
	require.IsType(t, &historic.Mode{}, m)
	assert.Same(t, sy.DefaultPayrollType, m.(*historic.Mode).DefaultType())
}

func TestNewMode_Unknown(t *testing.T) {
	cat, _ := parse(t)
	cat.SchoolYear.CalculationMode = 42

	_, err := factory.NewMode(cat.SchoolYear)
	require.Error(t, err)
	assert.ErrorIs(t, err, workload.ErrUnknownCalculationMode)

	var me *workload.ModeError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, 42, me.ModeID)
	assert.Equal(t, "2025", me.SchoolYearID)
}

func TestNewMode_HistoricWithoutDefault(t *testing.T) {
	cat, _ := parse(t)
	cat.SchoolYear.CalculationMode = workload.ModeHistoric
	cat.SchoolYear.DefaultPayrollType = nil

	_, err := factory.NewMode(cat.SchoolYear)
	assert.ErrorIs(t, err, workload.ErrMissingDefaultPayrollType)
}

// =============================================================================
// CALCULATE
// =============================================================================

func TestCalculate_EndToEnd(t *testing.T) {
	_, in := parse(t)

	wl, err := factory.Calculate(in, workload.WithID("calc-1"))
	require.NoError(t, err)
	assert.Equal(t, "calc-1", wl.CalculationID())
	assert.Equal(t, "percent", wl.ModeName())

	// the zero detail is dropped, the lesson detail kept
	postings := wl.Postings().Items()
	require.Len(t, postings, 1)
	assert.Len(t, postings[0].Details, 1)

	assert.InDelta(t, 100.0, wl.Payment(), 1e-9)
	assert.Len(t, wl.Balance(), 5)
}

func TestCalculate_RecomputeIsIdentical(t *testing.T) {
	modes := []int{
		workload.ModePercent,
		workload.ModePercentAgeReliefIncluded,
		workload.ModeLessonsAgeReliefIncluded,
		workload.ModeHistoric,
	}
	for _, mode := range modes {
		t.Run(fmt.Sprintf("mode %d", mode), func(t *testing.T) {
			_, in := parse(t)
			in.Employment.SchoolYear.CalculationMode = mode

			first, err := factory.Calculate(in)
			require.NoError(t, err)
			second, err := factory.Calculate(in)
			require.NoError(t, err)

			assert.NotEqual(t, first.CalculationID(), second.CalculationID())
			assert.Equal(t, first.ModeName(), second.ModeName())
			assert.Equal(t, first.Courses().Items(), second.Courses().Items())
			assert.Equal(t, first.Pool().Items(), second.Pool().Items())
			assert.Equal(t, first.Theses().Items(), second.Theses().Items())
			assert.Equal(t, first.Postings().Items(), second.Postings().Items())
			assert.Equal(t, first.Summary().Items(), second.Summary().Items())
			assert.Equal(t, first.Payroll().Items(), second.Payroll().Items())
			assert.Equal(t, first.Balance(), second.Balance())
			assert.Equal(t, first.Payment(), second.Payment())
		})
	}
}

type recordingObserver struct {
	mu    sync.Mutex
	modes []string
	errs  []error
}

func (r *recordingObserver) ObserveCalculation(mode string, _ time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.modes = append(r.modes, mode)
	r.errs = append(r.errs, err)
}

func TestCalculateObserved(t *testing.T) {
	_, in := parse(t)
	obs := &recordingObserver{}

	_, err := factory.CalculateObserved(in, obs)
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, obs.modes)
	assert.Equal(t, []error{nil}, obs.errs)
}

// =============================================================================
// BUILD WORKLOADS
// =============================================================================

func newSource(t *testing.T, teachers ...string) *store.Memory {
	t.Helper()
	f := factory.New()
	cat, err := f.ParseSchoolYear([]byte(schoolYearJSON))
	require.NoError(t, err)

	src := store.NewMemory()
	src.PutSchoolYear(cat.SchoolYear)
	for _, teacher := range teachers {
		in, err := f.ParseEmployment(cat, []byte(employmentJSON))
		require.NoError(t, err)
		in.Employment.ID = "e-" + teacher
		in.Employment.TeacherID = teacher
		for _, c := range in.Courses {
			c.Teachers[0].TeacherID = teacher
		}
		src.PutEmployment(in)
	}
	return src
}

func TestBuildWorkloads(t *testing.T) {
	src := newSource(t, "t-3", "t-1", "t-2")
	obs := &recordingObserver{}

	ws, err := factory.BuildWorkloads(context.Background(), src, "2025", factory.BuildOptions{
		Observer:    obs,
		Concurrency: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, ws.Len())
	assert.Equal(t, "2025", ws.SchoolYear().ID)

	all := ws.All()
	assert.Equal(t, "t-1", all[0].Employment().TeacherID)
	for _, wl := range all {
		assert.InDelta(t, 100.0, wl.Payment(), 1e-9)
	}
	assert.Len(t, obs.modes, 3)
}

func TestBuildWorkloads_UnknownSchoolYear(t *testing.T) {
	src := newSource(t)
	_, err := factory.BuildWorkloads(context.Background(), src, "1999", factory.BuildOptions{})
	assert.ErrorIs(t, err, workload.ErrSchoolYearNotFound)
	assert.True(t, workload.IsNotFound(err))
}

func TestBuildWorkloads_UnknownModeAbortsEverything(t *testing.T) {
	src := newSource(t, "t-1")
	sy, err := src.SchoolYear(context.Background(), "2025")
	require.NoError(t, err)
	sy.CalculationMode = 7

	ws, err := factory.BuildWorkloads(context.Background(), src, "2025", factory.BuildOptions{})
	assert.Nil(t, ws)
	assert.ErrorIs(t, err, workload.ErrUnknownCalculationMode)
}

func TestBuildWorkloads_FailingEmploymentAbortsEverything(t *testing.T) {
	src := newSource(t, "t-1", "t-2")
	in, err := src.Employment(context.Background(), "2025", "t-2")
	require.NoError(t, err)
	// a course on the percent-only ADM type
	in.Courses[0].PayrollType = in.Employment.SchoolYear.PayrollType("ADM")

	ws, err := factory.BuildWorkloads(context.Background(), src, "2025", factory.BuildOptions{})
	assert.Nil(t, ws)
	assert.ErrorIs(t, err, workload.ErrPercentOnlyPayrollType)
	assert.Contains(t, err.Error(), "e-t-2")
}

func TestBuildWorkloads_CanceledContext(t *testing.T) {
	src := newSource(t, "t-1")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := factory.BuildWorkloads(ctx, src, "2025", factory.BuildOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}
