/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	school years and employments. Each scenario demonstrates one calculation
	mode or allocation behavior.

AVAILABLE SCENARIOS:

	full-position:     Mode 1, lessons topped up to the payment target
	overbooking:       Mode 1, more workload than paid, saldo shrinks types
	age-relief:        Mode 2, pool and postings stored including age relief
	saldo-order:       Mode 3, explicit saldo resolution order
	historic:          Mode 99, the whole saldo on the default payroll type

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Store the school year via the factory schema
 3. Store the employments of the school year

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "age-relief"}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description
 2. Add a loader returning the school year and its employments
 3. Register the loader in 'scenarioLoaders'

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Router handlers
  - factory/schoolyear.go: JSON definitions
*/
package api

import (
	"context"
	"fmt"
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/warp/workload-engine/factory"
	"github.com/warp/workload-engine/workload"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "full-position",
		Name:        "Full Position",
		Description: "20 of 28 gymnasium lessons topped up to a 100% payment target",
	},
	{
		ID:          "overbooking",
		Name:        "Overbooking",
		Description: "Courses and pool exceed the payment target; the saldo reduces payroll types in order",
	},
	{
		ID:          "age-relief",
		Name:        "Age Relief Included",
		Description: "Pool and postings stored including age relief (mode 2)",
	},
	{
		ID:          "saldo-order",
		Name:        "Saldo Resolution Order",
		Description: "Percent recomputed from rounded lessons, saldo resolved in configured order (mode 3)",
	},
	{
		ID:          "historic",
		Name:        "Historic",
		Description: "Legacy mode 99: the default payroll type takes the whole saldo",
	},
}

type scenarioData struct {
	SchoolYear  factory.SchoolYearJSON
	Employments []factory.EmploymentJSON
}

var scenarioLoaders = map[string]func() scenarioData{
	"full-position": fullPositionScenario,
	"overbooking":   overbookingScenario,
	"age-relief":    ageReliefScenario,
	"saldo-order":   saldoOrderScenario,
	"historic":      historicScenario,
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	current := h.scenario()
	if current == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, ScenarioDTO{ID: current, Name: current})
}

// LoadScenario loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	loader, ok := scenarioLoaders[req.ScenarioID]
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	ctx := r.Context()
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.setCurrentScenario("")

	data := loader()
	if err := h.loadScenario(ctx, data); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}
	h.setCurrentScenario(req.ScenarioID)

	writeJSON(w, http.StatusOK, map[string]string{
		"status":         "loaded",
		"scenario":       req.ScenarioID,
		"school_year_id": data.SchoolYear.ID,
	})
}

func (h *Handler) loadScenario(ctx context.Context, data scenarioData) error {
	syJSON, err := json.Marshal(data.SchoolYear)
	if err != nil {
		return err
	}
	if _, err := h.Store.SaveSchoolYear(ctx, syJSON); err != nil {
		return err
	}
	for _, ej := range data.Employments {
		eJSON, err := json.Marshal(ej)
		if err != nil {
			return err
		}
		if _, err := h.Store.SaveEmployment(ctx, data.SchoolYear.ID, eJSON); err != nil {
			return fmt.Errorf("employment %q: %w", ej.ID, err)
		}
	}
	return nil
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

// demoSchoolYear has a lesson-based gymnasium type (28 weekly lessons), a
// lesson-based secondary school type (25 weekly lessons) and a percent-only
// administration type.
func demoSchoolYear(id string, mode int) factory.SchoolYearJSON {
	return factory.SchoolYearJSON{
		ID:              id,
		Name:            "School year " + id,
		Weeks:           39,
		CalculationMode: mode,
		PayrollTypes: []factory.PayrollTypeJSON{
			{Code: "GYM", Description: "Gymnasium", LessonBased: true, WeeklyLessons: 28, Order: 1},
			{Code: "SEC", Description: "Secondary school", LessonBased: true, WeeklyLessons: 25, Order: 2},
			{Code: "ADM", Description: "Administration", Order: 3},
		},
		PoolTypes: []factory.PoolTypeJSON{
			{Code: "CLASS_TEACHER", Description: "Class teacher", PayrollType: "ADM"},
			{Code: "LIBRARY", Description: "Library", PayrollType: "ADM"},
		},
		ThesisTypes: []factory.ThesisTypeJSON{
			{Code: "MATURA", Description: "Matura thesis", Percent: 0.5, PayrollType: "ADM"},
		},
	}
}

func fullPositionScenario() scenarioData {
	return scenarioData{
		SchoolYear: demoSchoolYear("demo-full", workload.ModePercent),
		Employments: []factory.EmploymentJSON{
			{
				ID: "e-anna", TeacherID: "t-anna", TeacherName: "Anna Keller",
				PaymentTarget: [2]float64{100, 100},
				Courses: []factory.CourseJSON{
					{ID: "c-math-3a", Subject: "Mathematics", SchoolClasses: []string{"3a"}, PayrollType: "GYM", Lessons: [2]float64{12, 12}},
					{ID: "c-phys-4b", Subject: "Physics", SchoolClasses: []string{"4b"}, PayrollType: "GYM", Lessons: [2]float64{8, 8}},
				},
			},
			{
				ID: "e-ben", TeacherID: "t-ben", TeacherName: "Ben Huber",
				PaymentTarget: [2]float64{50, 50},
				Courses: []factory.CourseJSON{
					{ID: "c-ger-1c", Subject: "German", SchoolClasses: []string{"1c"}, PayrollType: "SEC", Lessons: [2]float64{10, 10}},
				},
				Pool: []factory.PoolJSON{
					{ID: "p-ben-1", Type: "CLASS_TEACHER", Percent: [2]float64{5, 5}},
				},
			},
		},
	}
}

func overbookingScenario() scenarioData {
	return scenarioData{
		SchoolYear: demoSchoolYear("demo-over", workload.ModePercent),
		Employments: []factory.EmploymentJSON{
			{
				ID: "e-clara", TeacherID: "t-clara", TeacherName: "Clara Meier",
				PaymentTarget:  [2]float64{80, 80},
				OpeningBalance: 2.5,
				Courses: []factory.CourseJSON{
					{ID: "c-hist-2a", Subject: "History", SchoolClasses: []string{"2a"}, PayrollType: "GYM", Lessons: [2]float64{16.8, 16.8}},
				},
				Pool: []factory.PoolJSON{
					{ID: "p-clara-1", Type: "LIBRARY", Percent: [2]float64{30, 30}},
				},
				Theses: []factory.ThesisJSON{
					{ID: "th-clara-1", Type: "MATURA", Count: [2]float64{4, 0}},
				},
			},
		},
	}
}

func ageReliefScenario() scenarioData {
	return scenarioData{
		SchoolYear: demoSchoolYear("demo-ar", workload.ModePercentAgeReliefIncluded),
		Employments: []factory.EmploymentJSON{
			{
				ID: "e-dora", TeacherID: "t-dora", TeacherName: "Dora Frei",
				AgeRelief:     [2]float64{5, 5},
				PaymentTarget: [2]float64{90, 90},
				Courses: []factory.CourseJSON{
					{ID: "c-eng-5a", Subject: "English", SchoolClasses: []string{"5a"}, PayrollType: "GYM", Lessons: [2]float64{18, 18}},
				},
				Pool: []factory.PoolJSON{
					{ID: "p-dora-1", Type: "CLASS_TEACHER", Percent: [2]float64{10.5, 10.5}},
				},
				Postings: []factory.PostingJSON{
					{
						ID: "po-dora-1", Description: "Project week", From: "2025-10-06", To: "2025-10-10",
						Details: []factory.PostingDetailJSON{
							{PayrollType: "ADM", Semester: 1, Value: 2.1},
						},
					},
				},
			},
		},
	}
}

func saldoOrderScenario() scenarioData {
	sy := demoSchoolYear("demo-saldo", workload.ModeLessonsAgeReliefIncluded)
	sy.SaldoResolutionOrder = []string{"ADM", "SEC", "GYM"}
	return scenarioData{
		SchoolYear: sy,
		Employments: []factory.EmploymentJSON{
			{
				ID: "e-emil", TeacherID: "t-emil", TeacherName: "Emil Roth",
				AgeRelief:     [2]float64{10, 10},
				PaymentTarget: [2]float64{100, 100},
				Courses: []factory.CourseJSON{
					{ID: "c-chem-3b", Subject: "Chemistry", SchoolClasses: []string{"3b"}, PayrollType: "GYM", Lessons: [2]float64{14, 14}},
					{ID: "c-bio-2s", Subject: "Biology", SchoolClasses: []string{"2s"}, PayrollType: "SEC", Lessons: [2]float64{6, 4}},
				},
				Pool: []factory.PoolJSON{
					{ID: "p-emil-1", Type: "LIBRARY", Percent: [2]float64{11, 11}},
				},
			},
		},
	}
}

func historicScenario() scenarioData {
	sy := demoSchoolYear("demo-historic", workload.ModeHistoric)
	sy.DefaultPayrollType = "ADM"
	return scenarioData{
		SchoolYear: sy,
		Employments: []factory.EmploymentJSON{
			{
				ID: "e-fritz", TeacherID: "t-fritz", TeacherName: "Fritz Vogel",
				AgeRelief:     [2]float64{5, 5},
				PaymentTarget: [2]float64{60, 60},
				Courses: []factory.CourseJSON{
					{ID: "c-art-1a", Subject: "Art", SchoolClasses: []string{"1a"}, PayrollType: "GYM", Lessons: [2]float64{14, 14}},
				},
				Postings: []factory.PostingJSON{
					{
						ID: "po-fritz-1", Description: "Substitution",
						Details: []factory.PostingDetailJSON{
							{PayrollType: "GYM", Semester: 2, Value: 1},
						},
					},
				},
			},
		},
	}
}
