/*
Package factory provides JSON to Go conversion for school years and
employments, and selects the calculation mode.

PURPOSE:
  Converts JSON definitions into workload domain objects. School-year
  configuration (payroll types, pool and thesis catalogs, calculation mode)
  and employment inputs can then be stored as documents and loaded without
  code changes.

JSON SCHEMA (school year):
  {
    "id": "2025",
    "name": "2025/26",
    "weeks": 39,
    "calculation_mode": 1,
    "default_payroll_type": "GYM",
    "saldo_resolution_order": ["GYM", "ADM"],
    "payroll_types": [
      {"code": "GYM", "description": "Gymnasium", "lesson_based": true, "weekly_lessons": 28, "order": 1},
      {"code": "ADM", "description": "Administration", "order": 2}
    ],
    "pool_types": [{"code": "CLASS_TEACHER", "description": "Class teacher", "payroll_type": "ADM"}],
    "thesis_types": [{"code": "MATURA", "description": "Matura thesis", "percent": 0.5, "payroll_type": "ADM"}]
  }

JSON SCHEMA (employment):
  {
    "id": "e-1", "teacher_id": "t-1", "teacher_name": "A. Muster",
    "age_relief": [5, 5], "payment_target": [100, 100], "opening_balance": 0,
    "courses":  [{"id": "c-1", "subject": "Math", "school_classes": ["1a"], "payroll_type": "GYM", "lessons": [20, 20]}],
    "pool":     [{"id": "p-1", "type": "CLASS_TEACHER", "percent": [2, 2]}],
    "theses":   [{"id": "th-1", "type": "MATURA", "count": [3, 0]}],
    "postings": [{"id": "po-1", "description": "Substitution", "from": "2025-09-01", "to": "2025-09-30",
                  "details": [{"payroll_type": "GYM", "semester": 1, "value": 2}]}]
  }

KEY FEATURES:
  - Validates JSON structure (go-playground/validator)
  - Resolves payroll type, pool type and thesis type codes
  - Sorts payroll types into their natural order

SEE ALSO:
  - mode.go: Mode selection by calculation mode id
  - workloads.go: Batch calculation of a school year
*/
package factory

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"

	"github.com/warp/workload-engine/workload"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// SchoolYearJSON is the JSON representation of a school year.
type SchoolYearJSON struct {
	ID                   string            `json:"id" validate:"required"`
	Name                 string            `json:"name"`
	Weeks                int               `json:"weeks" validate:"gte=0"`
	CalculationMode      int               `json:"calculation_mode"`
	DefaultPayrollType   string            `json:"default_payroll_type,omitempty"`
	SaldoResolutionOrder []string          `json:"saldo_resolution_order,omitempty"`
	PayrollTypes         []PayrollTypeJSON `json:"payroll_types" validate:"required,min=1,dive"`
	PoolTypes            []PoolTypeJSON    `json:"pool_types,omitempty" validate:"dive"`
	ThesisTypes          []ThesisTypeJSON  `json:"thesis_types,omitempty" validate:"dive"`
}

type PayrollTypeJSON struct {
	ID            string  `json:"id,omitempty"`
	Code          string  `json:"code" validate:"required"`
	Description   string  `json:"description"`
	LessonBased   bool    `json:"lesson_based,omitempty"`
	LessonPercent float64 `json:"lesson_percent,omitempty" validate:"gte=0"`
	WeeklyLessons float64 `json:"weekly_lessons,omitempty" validate:"gte=0"`
	Order         int     `json:"order"`
}

type PoolTypeJSON struct {
	Code        string `json:"code" validate:"required"`
	Description string `json:"description"`
	PayrollType string `json:"payroll_type" validate:"required"`
}

type ThesisTypeJSON struct {
	Code        string  `json:"code" validate:"required"`
	Description string  `json:"description"`
	Percent     float64 `json:"percent"`
	PayrollType string  `json:"payroll_type" validate:"required"`
}

// EmploymentJSON is the JSON representation of an employment with its
// contributions.
type EmploymentJSON struct {
	ID             string        `json:"id" validate:"required"`
	TeacherID      string        `json:"teacher_id" validate:"required"`
	TeacherName    string        `json:"teacher_name"`
	AgeRelief      [2]float64    `json:"age_relief"`
	PaymentTarget  [2]float64    `json:"payment_target"`
	OpeningBalance float64       `json:"opening_balance"`
	Courses        []CourseJSON  `json:"courses,omitempty" validate:"dive"`
	Pool           []PoolJSON    `json:"pool,omitempty" validate:"dive"`
	Theses         []ThesisJSON  `json:"theses,omitempty" validate:"dive"`
	Postings       []PostingJSON `json:"postings,omitempty" validate:"dive"`
}

type CourseJSON struct {
	ID            string     `json:"id" validate:"required"`
	Subject       string     `json:"subject"`
	SchoolClasses []string   `json:"school_classes,omitempty"`
	PayrollType   string     `json:"payroll_type" validate:"required"`
	Lessons       [2]float64 `json:"lessons"`
}

type PoolJSON struct {
	ID          string     `json:"id" validate:"required"`
	Type        string     `json:"type" validate:"required"`
	Description string     `json:"description,omitempty"`
	Percent     [2]float64 `json:"percent"`
}

type ThesisJSON struct {
	ID    string     `json:"id" validate:"required"`
	Type  string     `json:"type" validate:"required"`
	Count [2]float64 `json:"count"`
}

type PostingJSON struct {
	ID          string              `json:"id" validate:"required"`
	Description string              `json:"description"`
	From        string              `json:"from,omitempty"`
	To          string              `json:"to,omitempty"`
	Details     []PostingDetailJSON `json:"details" validate:"dive"`
}

type PostingDetailJSON struct {
	ID          string  `json:"id,omitempty"`
	PayrollType string  `json:"payroll_type" validate:"required"`
	Semester    int     `json:"semester" validate:"oneof=1 2"`
	Value       float64 `json:"value"`
}

// =============================================================================
// CATALOG
// =============================================================================

// Catalog is a parsed school year with its pool and thesis catalogs.
type Catalog struct {
	SchoolYear  *workload.SchoolYear
	PoolTypes   []*workload.PoolType
	ThesisTypes []*workload.ThesisType
}

func (c *Catalog) PoolType(code string) *workload.PoolType {
	for _, t := range c.PoolTypes {
		if t.Code == code {
			return t
		}
	}
	return nil
}

func (c *Catalog) ThesisType(code string) *workload.ThesisType {
	for _, t := range c.ThesisTypes {
		if t.Code == code {
			return t
		}
	}
	return nil
}

// =============================================================================
// FACTORY
// =============================================================================

// Factory converts JSON definitions to domain objects.
type Factory struct {
	validate *validator.Validate
}

func New() *Factory {
	return &Factory{validate: validator.New()}
}

// ParseSchoolYear parses a JSON school year.
func (f *Factory) ParseSchoolYear(data []byte) (*Catalog, error) {
	var sj SchoolYearJSON
	if err := json.Unmarshal(data, &sj); err != nil {
		return nil, fmt.Errorf("failed to parse school year JSON: %w", err)
	}
	return f.SchoolYearFromJSON(sj)
}

// SchoolYearFromJSON converts SchoolYearJSON to a Catalog.
func (f *Factory) SchoolYearFromJSON(sj SchoolYearJSON) (*Catalog, error) {
	if err := f.validate.Struct(sj); err != nil {
		return nil, fmt.Errorf("invalid school year %q: %w", sj.ID, err)
	}

	sy := &workload.SchoolYear{
		ID:              sj.ID,
		Name:            sj.Name,
		Weeks:           sj.Weeks,
		CalculationMode: sj.CalculationMode,
	}

	for _, pj := range sj.PayrollTypes {
		if sy.PayrollType(pj.Code) != nil {
			return nil, fmt.Errorf("duplicate payroll type %q", pj.Code)
		}
		pt := &workload.PayrollType{
			ID:            pj.ID,
			Code:          pj.Code,
			Description:   pj.Description,
			LessonBased:   pj.LessonBased,
			LessonPercent: pj.LessonPercent,
			WeeklyLessons: pj.WeeklyLessons,
			Order:         pj.Order,
		}
		if pt.ID == "" {
			pt.ID = pj.Code
		}
		if pt.LessonBased && pt.Factor() == 0 {
			return nil, fmt.Errorf("lesson-based payroll type %q needs lesson_percent or weekly_lessons", pj.Code)
		}
		sy.PayrollTypes = append(sy.PayrollTypes, pt)
	}
	workload.SortPayrollTypes(sy.PayrollTypes)

	if sj.DefaultPayrollType != "" {
		pt, err := lookupPayrollType(sy, sj.DefaultPayrollType)
		if err != nil {
			return nil, err
		}
		sy.DefaultPayrollType = pt
	}
	for _, code := range sj.SaldoResolutionOrder {
		pt, err := lookupPayrollType(sy, code)
		if err != nil {
			return nil, err
		}
		sy.SaldoResolutionOrder = append(sy.SaldoResolutionOrder, pt)
	}

	cat := &Catalog{SchoolYear: sy}
	for _, pj := range sj.PoolTypes {
		pt, err := lookupPayrollType(sy, pj.PayrollType)
		if err != nil {
			return nil, err
		}
		cat.PoolTypes = append(cat.PoolTypes, &workload.PoolType{
			Code: pj.Code, Description: pj.Description, PayrollType: pt,
		})
	}
	for _, tj := range sj.ThesisTypes {
		pt, err := lookupPayrollType(sy, tj.PayrollType)
		if err != nil {
			return nil, err
		}
		cat.ThesisTypes = append(cat.ThesisTypes, &workload.ThesisType{
			Code: tj.Code, Description: tj.Description, Percent: tj.Percent, PayrollType: pt,
		})
	}
	return cat, nil
}

// ToJSON converts a Catalog back to its JSON representation.
func (f *Factory) ToJSON(cat *Catalog) SchoolYearJSON {
	sy := cat.SchoolYear
	sj := SchoolYearJSON{
		ID:              sy.ID,
		Name:            sy.Name,
		Weeks:           sy.Weeks,
		CalculationMode: sy.CalculationMode,
	}
	if sy.DefaultPayrollType != nil {
		sj.DefaultPayrollType = sy.DefaultPayrollType.Code
	}
	for _, pt := range sy.SaldoResolutionOrder {
		sj.SaldoResolutionOrder = append(sj.SaldoResolutionOrder, pt.Code)
	}
	for _, pt := range sy.PayrollTypes {
		sj.PayrollTypes = append(sj.PayrollTypes, PayrollTypeJSON{
			ID:            pt.ID,
			Code:          pt.Code,
			Description:   pt.Description,
			LessonBased:   pt.LessonBased,
			LessonPercent: pt.LessonPercent,
			WeeklyLessons: pt.WeeklyLessons,
			Order:         pt.Order,
		})
	}
	for _, t := range cat.PoolTypes {
		sj.PoolTypes = append(sj.PoolTypes, PoolTypeJSON{
			Code: t.Code, Description: t.Description, PayrollType: t.PayrollType.Code,
		})
	}
	for _, t := range cat.ThesisTypes {
		sj.ThesisTypes = append(sj.ThesisTypes, ThesisTypeJSON{
			Code: t.Code, Description: t.Description, Percent: t.Percent, PayrollType: t.PayrollType.Code,
		})
	}
	return sj
}

// ParseEmployment parses a JSON employment against a parsed school year.
func (f *Factory) ParseEmployment(cat *Catalog, data []byte) (*workload.EmploymentInput, error) {
	var ej EmploymentJSON
	if err := json.Unmarshal(data, &ej); err != nil {
		return nil, fmt.Errorf("failed to parse employment JSON: %w", err)
	}
	return f.EmploymentFromJSON(cat, ej)
}

// EmploymentFromJSON converts EmploymentJSON to an EmploymentInput.
func (f *Factory) EmploymentFromJSON(cat *Catalog, ej EmploymentJSON) (*workload.EmploymentInput, error) {
	if err := f.validate.Struct(ej); err != nil {
		return nil, fmt.Errorf("invalid employment %q: %w", ej.ID, err)
	}
	sy := cat.SchoolYear

	in := &workload.EmploymentInput{
		Employment: &workload.Employment{
			ID:             ej.ID,
			TeacherID:      ej.TeacherID,
			TeacherName:    ej.TeacherName,
			SchoolYear:     sy,
			AgeRelief:      semesterValue(ej.AgeRelief),
			PaymentTarget:  semesterValue(ej.PaymentTarget),
			OpeningBalance: ej.OpeningBalance,
		},
	}

	for _, cj := range ej.Courses {
		pt, err := lookupPayrollType(sy, cj.PayrollType)
		if err != nil {
			return nil, err
		}
		in.Courses = append(in.Courses, &workload.Course{
			ID:            cj.ID,
			Subject:       cj.Subject,
			SchoolClasses: cj.SchoolClasses,
			PayrollType:   pt,
			Teachers: []workload.CourseTeacher{{
				TeacherID: ej.TeacherID,
				Lessons:   semesterValue(cj.Lessons),
			}},
		})
	}

	for _, pj := range ej.Pool {
		t := cat.PoolType(pj.Type)
		if t == nil {
			return nil, fmt.Errorf("unknown pool type %q", pj.Type)
		}
		in.PoolEntries = append(in.PoolEntries, &workload.PoolEntry{
			ID: pj.ID, Type: t, Description: pj.Description, Percent: semesterValue(pj.Percent),
		})
	}

	for _, tj := range ej.Theses {
		t := cat.ThesisType(tj.Type)
		if t == nil {
			return nil, fmt.Errorf("unknown thesis type %q", tj.Type)
		}
		in.Theses = append(in.Theses, &workload.ThesisEntry{
			ID: tj.ID, Type: t, Count: semesterValue(tj.Count),
		})
	}

	for _, pj := range ej.Postings {
		p, err := parsePosting(sy, pj)
		if err != nil {
			return nil, err
		}
		in.Postings = append(in.Postings, p)
	}
	return in, nil
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

func semesterValue(v [2]float64) workload.SemesterValue {
	return workload.NewSemesterValue(v[0], v[1])
}

func lookupPayrollType(sy *workload.SchoolYear, code string) (*workload.PayrollType, error) {
	pt := sy.PayrollType(code)
	if pt == nil {
		return nil, fmt.Errorf("unknown payroll type %q in school year %q", code, sy.ID)
	}
	return pt, nil
}

func parsePosting(sy *workload.SchoolYear, pj PostingJSON) (*workload.Posting, error) {
	p := &workload.Posting{ID: pj.ID, Description: pj.Description}
	var err error
	if p.From, err = parseDate(pj.From); err != nil {
		return nil, fmt.Errorf("posting %q: invalid from: %w", pj.ID, err)
	}
	if p.To, err = parseDate(pj.To); err != nil {
		return nil, fmt.Errorf("posting %q: invalid to: %w", pj.ID, err)
	}
	if !p.From.IsZero() && !p.To.IsZero() && p.To.Before(p.From) {
		return nil, fmt.Errorf("posting %q: to before from", pj.ID)
	}
	for i, dj := range pj.Details {
		pt, err := lookupPayrollType(sy, dj.PayrollType)
		if err != nil {
			return nil, err
		}
		s, err := workload.ParseSemester(dj.Semester)
		if err != nil {
			return nil, err
		}
		id := dj.ID
		if id == "" {
			id = fmt.Sprintf("%s-%d", pj.ID, i+1)
		}
		p.Details = append(p.Details, &workload.PostingDetail{
			ID: id, PayrollType: pt, Semester: s, Value: dj.Value,
		})
	}
	return p, nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", s)
}
