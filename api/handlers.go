/*
handlers.go - HTTP API handlers for the workload engine

PURPOSE:
  Exposes the workload engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the factory and the engine.

ENDPOINTS:
  Calculation:
    POST   /api/calculate                                 Calculate one employment, nothing stored

  School years:
    GET    /api/schoolyears                               List school years
    POST   /api/schoolyears                               Create or replace a school year
    GET    /api/schoolyears/{id}                          Get school year definition
    POST   /api/schoolyears/{id}/employments              Create or replace an employment
    GET    /api/schoolyears/{id}/workloads                Calculate all workloads
    GET    /api/schoolyears/{id}/workloads/{teacherID}    Calculate one workload
    GET    /api/schoolyears/{id}/workloads/{teacherID}/snapshot  Latest stored report

  Admin:
    POST   /api/admin/snapshots                           Store reports of all school years

  Scenarios:
    GET    /api/scenarios                                 List demo scenarios
    POST   /api/scenarios/load                            Load a demo scenario

  Workload endpoints accept ?snapshot=true to store the computed reports.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Malformed or invalid definitions
  - 404: Unknown school year or employment
  - 422: Configuration errors (unknown calculation mode, a value with no
         valid payroll type, missing default payroll type)
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/warp/workload-engine/factory"
	"github.com/warp/workload-engine/store/sqlite"
	"github.com/warp/workload-engine/workload"
)

// maxBodyBytes limits definition uploads.
const maxBodyBytes = 4 << 20

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   *sqlite.Store
	Factory *factory.Factory
	Logger  *zap.Logger
	Metrics *Metrics

	// Concurrency for school-year calculations
	Concurrency int

	// Track currently loaded scenario
	scenarioMu      sync.RWMutex
	currentScenario string
}

// NewHandler creates a new handler with the given store. logger and metrics
// may be nil.
func NewHandler(store *sqlite.Store, logger *zap.Logger, metrics *Metrics) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Store:   store,
		Factory: factory.New(),
		Logger:  logger,
		Metrics: metrics,
	}
}

func (h *Handler) scenario() string {
	h.scenarioMu.RLock()
	defer h.scenarioMu.RUnlock()
	return h.currentScenario
}

func (h *Handler) setCurrentScenario(id string) {
	h.scenarioMu.Lock()
	defer h.scenarioMu.Unlock()
	h.currentScenario = id
}

func (h *Handler) buildOptions() factory.BuildOptions {
	return factory.BuildOptions{
		Logger:      h.Logger,
		Observer:    h.Metrics,
		Concurrency: h.Concurrency,
	}
}

// Healthz reports liveness.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// CALCULATION
// =============================================================================

// Calculate computes one workload from inline definitions.
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req CalculateRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	cat, err := h.Factory.SchoolYearFromJSON(req.SchoolYear)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid school year", err)
		return
	}
	in, err := h.Factory.EmploymentFromJSON(cat, req.Employment)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid employment", err)
		return
	}

	wl, err := factory.CalculateObserved(in, h.Metrics, workload.WithLogger(h.Logger))
	if err != nil {
		writeCalculationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toWorkloadDTO(wl))
}

// =============================================================================
// SCHOOL YEAR HANDLERS
// =============================================================================

// ListSchoolYears returns all school years.
func (h *Handler) ListSchoolYears(w http.ResponseWriter, r *http.Request) {
	records, err := h.Store.ListSchoolYears(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list school years", err)
		return
	}

	dtos := make([]SchoolYearDTO, 0, len(records))
	for _, rec := range records {
		dtos = append(dtos, toSchoolYearDTO(rec))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateSchoolYear stores a school-year definition, replacing an existing one
// with the same id.
func (h *Handler) CreateSchoolYear(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	cat, err := h.Store.SaveSchoolYear(r.Context(), body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid school year configuration", err)
		return
	}

	rec, err := h.Store.GetSchoolYearRecord(r.Context(), cat.SchoolYear.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load school year", err)
		return
	}
	h.Logger.Info("school year saved",
		zap.String("school_year_id", rec.ID),
		zap.Int("calculation_mode", rec.CalculationMode),
		zap.Int("version", rec.Version),
	)
	writeJSON(w, http.StatusCreated, toSchoolYearDTO(*rec))
}

// GetSchoolYear returns a single school year.
func (h *Handler) GetSchoolYear(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rec, err := h.Store.GetSchoolYearRecord(r.Context(), id)
	if err != nil {
		writeLookupError(w, "Failed to get school year", err)
		return
	}
	writeJSON(w, http.StatusOK, toSchoolYearDTO(*rec))
}

// CreateEmployment stores an employment document of a school year.
func (h *Handler) CreateEmployment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	in, err := h.Store.SaveEmployment(r.Context(), id, body)
	if err != nil {
		if workload.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "School year not found", err)
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid employment", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"id":             in.Employment.ID,
		"school_year_id": id,
		"teacher_id":     in.Employment.TeacherID,
		"courses":        len(in.Courses),
		"pool":           len(in.PoolEntries),
		"theses":         len(in.Theses),
		"postings":       len(in.Postings),
	})
}

// =============================================================================
// WORKLOAD HANDLERS
// =============================================================================

// ListWorkloads calculates every employment of the school year.
func (h *Handler) ListWorkloads(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ws, err := factory.BuildWorkloads(r.Context(), h.Store, id, h.buildOptions())
	if err != nil {
		writeCalculationError(w, err)
		return
	}

	dto := toWorkloadsDTO(ws)
	if wantSnapshot(r) {
		for _, wl := range dto.Workloads {
			if _, err := h.saveSnapshot(r.Context(), wl); err != nil {
				writeError(w, http.StatusInternalServerError, "Failed to store snapshot", err)
				return
			}
		}
	}
	writeJSON(w, http.StatusOK, dto)
}

// GetWorkload calculates the workload of one teacher.
func (h *Handler) GetWorkload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	teacherID := chi.URLParam(r, "teacherID")

	in, err := h.Store.Employment(r.Context(), id, teacherID)
	if err != nil {
		writeCalculationError(w, err)
		return
	}

	wl, err := factory.CalculateObserved(in, h.Metrics, workload.WithLogger(h.Logger))
	if err != nil {
		writeCalculationError(w, err)
		return
	}

	dto := toWorkloadDTO(wl)
	if wantSnapshot(r) {
		if _, err := h.saveSnapshot(r.Context(), dto); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to store snapshot", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, dto)
}

// GetLatestSnapshot returns the stored report as it was saved.
func (h *Handler) GetLatestSnapshot(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	teacherID := chi.URLParam(r, "teacherID")

	snap, err := h.Store.LatestSnapshot(r.Context(), id, teacherID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load snapshot", err)
		return
	}
	if snap == nil {
		writeError(w, http.StatusNotFound, "Snapshot not found", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Snapshot-ID", snap.ID)
	w.Header().Set("X-Snapshot-Created-At", snap.CreatedAt.Format(time.RFC3339))
	w.WriteHeader(http.StatusOK)
	w.Write(snap.Report)
}

// TriggerSnapshots stores the reports of every school year.
func (h *Handler) TriggerSnapshots(w http.ResponseWriter, r *http.Request) {
	snaps, err := h.SnapshotAll(r.Context())
	if err != nil {
		writeCalculationError(w, err)
		return
	}

	dtos := make([]SnapshotDTO, 0, len(snaps))
	for _, s := range snaps {
		dtos = append(dtos, toSnapshotDTO(s))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "completed",
		"snapshots": dtos,
	})
}

// SnapshotAll calculates all school years and stores one snapshot per
// workload. School years that fail to calculate abort the run.
func (h *Handler) SnapshotAll(ctx context.Context) ([]workload.Snapshot, error) {
	records, err := h.Store.ListSchoolYears(ctx)
	if err != nil {
		return nil, err
	}

	var snaps []workload.Snapshot
	for _, rec := range records {
		ws, err := factory.BuildWorkloads(ctx, h.Store, rec.ID, h.buildOptions())
		if err != nil {
			return nil, fmt.Errorf("school year %q: %w", rec.ID, err)
		}
		for _, wl := range toWorkloadsDTO(ws).Workloads {
			snap, err := h.saveSnapshot(ctx, wl)
			if err != nil {
				return nil, err
			}
			snaps = append(snaps, snap)
		}
	}
	return snaps, nil
}

func (h *Handler) saveSnapshot(ctx context.Context, dto WorkloadDTO) (workload.Snapshot, error) {
	report, err := json.Marshal(dto)
	if err != nil {
		return workload.Snapshot{}, err
	}
	snap := workload.Snapshot{
		ID:            uuid.NewString(),
		SchoolYearID:  dto.SchoolYearID,
		TeacherID:     dto.TeacherID,
		CalculationID: dto.CalculationID,
		Report:        report,
		CreatedAt:     time.Now().UTC(),
	}
	if err := h.Store.SaveSnapshot(ctx, snap); err != nil {
		return workload.Snapshot{}, err
	}
	h.Metrics.SnapshotSaved()
	return snap, nil
}

func wantSnapshot(r *http.Request) bool {
	v := r.URL.Query().Get("snapshot")
	return v == "true" || v == "1"
}

// ResetDatabase clears all data (dev only).
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.setCurrentScenario("")
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// =============================================================================
// HELPERS
// =============================================================================

func toSchoolYearDTO(rec sqlite.SchoolYearRecord) SchoolYearDTO {
	var config factory.SchoolYearJSON
	json.Unmarshal([]byte(rec.ConfigJSON), &config)

	return SchoolYearDTO{
		ID:              rec.ID,
		Name:            rec.Name,
		CalculationMode: rec.CalculationMode,
		Config:          config,
		Version:         rec.Version,
		CreatedAt:       rec.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       rec.UpdatedAt.Format(time.RFC3339),
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

func writeLookupError(w http.ResponseWriter, message string, err error) {
	if workload.IsNotFound(err) {
		writeError(w, http.StatusNotFound, "Not found", err)
		return
	}
	writeError(w, http.StatusInternalServerError, message, err)
}

// writeCalculationError maps engine errors to HTTP status codes.
func writeCalculationError(w http.ResponseWriter, err error) {
	switch {
	case workload.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Not found", err)
	case workload.IsConfigurationError(err):
		writeError(w, http.StatusUnprocessableEntity, "Configuration error", err)
	default:
		writeError(w, http.StatusInternalServerError, "Calculation failed", err)
	}
}
