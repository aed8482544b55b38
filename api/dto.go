/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the workload domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  School years:
    SchoolYearDTO (wraps factory.SchoolYearJSON)

  Calculation:
    CalculateRequest, WorkloadDTO, WorkloadsDTO

  Snapshots:
    SnapshotDTO

  Scenarios:
    ScenarioDTO, LoadScenarioRequest

SEMESTER VALUES:
  Every per-semester number is a two element array [first, second].

SEE ALSO:
  - handlers.go: Uses these types
  - factory/schoolyear.go: SchoolYearJSON and EmploymentJSON
*/
package api

import (
	"time"

	"github.com/warp/workload-engine/factory"
	"github.com/warp/workload-engine/workload"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// SchoolYearDTO represents a stored school year.
type SchoolYearDTO struct {
	ID              string                 `json:"id"`
	Name            string                 `json:"name"`
	CalculationMode int                    `json:"calculation_mode"`
	Config          factory.SchoolYearJSON `json:"config"`
	Version         int                    `json:"version"`
	CreatedAt       string                 `json:"created_at,omitempty"`
	UpdatedAt       string                 `json:"updated_at,omitempty"`
}

// CalculateRequest calculates one employment without storing anything.
type CalculateRequest struct {
	SchoolYear factory.SchoolYearJSON `json:"school_year"`
	Employment factory.EmploymentJSON `json:"employment"`
}

// SemesterDTO is [first, second].
type SemesterDTO [2]float64

type CourseDTO struct {
	ID            string      `json:"id"`
	Subject       string      `json:"subject"`
	SchoolClasses []string    `json:"school_classes,omitempty"`
	PayrollType   string      `json:"payroll_type"`
	Lessons       SemesterDTO `json:"lessons"`
	Percent       SemesterDTO `json:"percent"`
}

type PoolItemDTO struct {
	ID          string      `json:"id"`
	Type        string      `json:"type"`
	Description string      `json:"description,omitempty"`
	Percent     SemesterDTO `json:"percent"`
}

type ThesisItemDTO struct {
	ID      string      `json:"id"`
	Type    string      `json:"type"`
	Count   SemesterDTO `json:"count"`
	Percent SemesterDTO `json:"percent"`
}

type PostingDetailDTO struct {
	ID          string  `json:"id"`
	PayrollType string  `json:"payroll_type"`
	Semester    int     `json:"semester"`
	Lessons     float64 `json:"lessons"`
	Percent     float64 `json:"percent"`
	AgeRelief   float64 `json:"age_relief"`
}

type PostingDTO struct {
	ID          string             `json:"id"`
	Description string             `json:"description"`
	From        string             `json:"from,omitempty"`
	To          string             `json:"to,omitempty"`
	Percent     SemesterDTO        `json:"percent"`
	AgeRelief   SemesterDTO        `json:"age_relief"`
	Total       SemesterDTO        `json:"total"`
	Details     []PostingDetailDTO `json:"details"`
}

type SummaryRowDTO struct {
	ID                   int         `json:"id"`
	Name                 string      `json:"name"`
	Percent              SemesterDTO `json:"percent"`
	AgeRelief            SemesterDTO `json:"age_relief"`
	PercentWithAgeRelief SemesterDTO `json:"percent_with_age_relief"`
	IsTotal              bool        `json:"is_total,omitempty"`
}

type PayrollItemDTO struct {
	PayrollType string      `json:"payroll_type"`
	Description string      `json:"description"`
	LessonBased bool        `json:"lesson_based"`
	Lessons     SemesterDTO `json:"lessons"`
	Percent     SemesterDTO `json:"percent"`
}

type BalanceLineDTO struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// WorkloadDTO is the full report of one employment.
type WorkloadDTO struct {
	CalculationID  string           `json:"calculation_id"`
	Mode           string           `json:"mode"`
	SchoolYearID   string           `json:"school_year_id"`
	EmploymentID   string           `json:"employment_id"`
	TeacherID      string           `json:"teacher_id"`
	TeacherName    string           `json:"teacher_name"`
	AgeRelief      SemesterDTO      `json:"age_relief"`
	PaymentTarget  SemesterDTO      `json:"payment_target"`
	Courses        []CourseDTO      `json:"courses"`
	Pool           []PoolItemDTO    `json:"pool"`
	Theses         []ThesisItemDTO  `json:"theses"`
	ThesesCount    SemesterDTO      `json:"theses_count"`
	Postings       []PostingDTO     `json:"postings"`
	Summary        []SummaryRowDTO  `json:"summary"`
	Payroll        []PayrollItemDTO `json:"payroll"`
	PayrollTotal   SemesterDTO      `json:"payroll_total"`
	Payment        float64          `json:"payment"`
	OpeningBalance float64          `json:"opening_balance"`
	ClosingBalance float64          `json:"closing_balance"`
	Balance        []BalanceLineDTO `json:"balance"`
}

// WorkloadsDTO lists the workloads of a school year.
type WorkloadsDTO struct {
	SchoolYearID string        `json:"school_year_id"`
	Workloads    []WorkloadDTO `json:"workloads"`
}

type SnapshotDTO struct {
	ID            string `json:"id"`
	SchoolYearID  string `json:"school_year_id"`
	TeacherID     string `json:"teacher_id"`
	CalculationID string `json:"calculation_id"`
	CreatedAt     string `json:"created_at"`
}

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func semesterDTO(v workload.SemesterValue) SemesterDTO {
	return SemesterDTO{v.First(), v.Second()}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func toWorkloadDTO(w *workload.Workload) WorkloadDTO {
	e := w.Employment()
	dto := WorkloadDTO{
		CalculationID:  w.CalculationID(),
		Mode:           w.ModeName(),
		SchoolYearID:   e.SchoolYear.ID,
		EmploymentID:   e.ID,
		TeacherID:      e.TeacherID,
		TeacherName:    e.TeacherName,
		AgeRelief:      semesterDTO(e.AgeRelief),
		PaymentTarget:  semesterDTO(e.PaymentTarget),
		Courses:        []CourseDTO{},
		Pool:           []PoolItemDTO{},
		Theses:         []ThesisItemDTO{},
		ThesesCount:    semesterDTO(w.Theses().TotalCount()),
		Postings:       []PostingDTO{},
		Summary:        []SummaryRowDTO{},
		Payroll:        []PayrollItemDTO{},
		PayrollTotal:   semesterDTO(w.Payroll().TotalPercent()),
		Payment:        w.Payment(),
		OpeningBalance: w.OpeningBalance(),
		ClosingBalance: w.ClosingBalance(),
	}

	for _, it := range w.Courses().Items() {
		dto.Courses = append(dto.Courses, CourseDTO{
			ID:            it.Course.ID,
			Subject:       it.Course.Subject,
			SchoolClasses: it.Course.SchoolClasses,
			PayrollType:   it.Course.PayrollType.Code,
			Lessons:       semesterDTO(it.Lessons),
			Percent:       semesterDTO(it.Percent),
		})
	}
	for _, it := range w.Pool().Items() {
		dto.Pool = append(dto.Pool, PoolItemDTO{
			ID:          it.Entry.ID,
			Type:        it.Entry.Type.Code,
			Description: it.Entry.Description,
			Percent:     semesterDTO(it.Percent),
		})
	}
	for _, it := range w.Theses().Items() {
		dto.Theses = append(dto.Theses, ThesisItemDTO{
			ID:      it.Entry.ID,
			Type:    it.Entry.Type.Code,
			Count:   semesterDTO(it.Count),
			Percent: semesterDTO(it.Percent),
		})
	}
	for _, it := range w.Postings().Items() {
		p := PostingDTO{
			ID:          it.Posting.ID,
			Description: it.Posting.Description,
			From:        formatDate(it.Posting.From),
			To:          formatDate(it.Posting.To),
			Percent:     semesterDTO(it.Percent),
			AgeRelief:   semesterDTO(it.AgeRelief),
			Total:       semesterDTO(it.Total()),
			Details:     []PostingDetailDTO{},
		}
		for _, d := range it.Details {
			p.Details = append(p.Details, PostingDetailDTO{
				ID:          d.Detail.ID,
				PayrollType: d.Detail.PayrollType.Code,
				Semester:    int(d.Semester) + 1,
				Lessons:     d.Lessons,
				Percent:     d.Percent,
				AgeRelief:   d.AgeRelief,
			})
		}
		dto.Postings = append(dto.Postings, p)
	}
	for _, row := range w.Summary().Items() {
		dto.Summary = append(dto.Summary, SummaryRowDTO{
			ID:                   row.ID,
			Name:                 row.Name,
			Percent:              semesterDTO(row.Percent),
			AgeRelief:            semesterDTO(row.AgeRelief),
			PercentWithAgeRelief: semesterDTO(row.PercentWithAgeRelief()),
			IsTotal:              row.IsTotal,
		})
	}
	for _, it := range w.Payroll().Items() {
		dto.Payroll = append(dto.Payroll, PayrollItemDTO{
			PayrollType: it.Type.Code,
			Description: it.Type.Description,
			LessonBased: it.Type.LessonBased,
			Lessons:     semesterDTO(it.Lessons),
			Percent:     semesterDTO(it.Percent),
		})
	}
	for _, line := range w.Balance() {
		dto.Balance = append(dto.Balance, BalanceLineDTO{Label: line.Label, Value: line.Value})
	}
	return dto
}

func toWorkloadsDTO(ws *workload.Workloads) WorkloadsDTO {
	dto := WorkloadsDTO{
		SchoolYearID: ws.SchoolYear().ID,
		Workloads:    make([]WorkloadDTO, 0, ws.Len()),
	}
	for _, w := range ws.All() {
		dto.Workloads = append(dto.Workloads, toWorkloadDTO(w))
	}
	return dto
}

func toSnapshotDTO(s workload.Snapshot) SnapshotDTO {
	return SnapshotDTO{
		ID:            s.ID,
		SchoolYearID:  s.SchoolYearID,
		TeacherID:     s.TeacherID,
		CalculationID: s.CalculationID,
		CreatedAt:     s.CreatedAt.Format(time.RFC3339),
	}
}
