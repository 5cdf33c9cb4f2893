package rest

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/mux"

	"github.com/fortuna/courtside/internal/backfill"
)

// BackfillService queues and reports import jobs.
type BackfillService interface {
	Enqueue(ctx context.Context, req backfill.Request) (*backfill.Job, error)
	GetStatus(ctx context.Context) (*backfill.StatusSummary, error)
	GetJob(ctx context.Context, jobID string) (*backfill.Job, error)
}

// BackfillHandler serves the import job endpoints.
type BackfillHandler struct {
	service BackfillService
}

// NewBackfillHandler wires the REST layer to the import worker.
// service may be nil when imports are disabled.
func NewBackfillHandler(service BackfillService) *BackfillHandler {
	return &BackfillHandler{service: service}
}

func (h *BackfillHandler) available(w http.ResponseWriter) bool {
	if h.service == nil {
		respondError(w, http.StatusServiceUnavailable, "Backfill worker is disabled", nil)
		return false
	}
	return true
}

// importRequest is the POST body. game_id is shorthand for a single id.
type importRequest struct {
	Season    string   `json:"season_id"`
	StartDate string   `json:"start_date"`
	EndDate   string   `json:"end_date"`
	GameID    string   `json:"game_id"`
	GameIDs   []string `json:"game_ids"`
	DryRun    bool     `json:"dry_run"`
}

func (in importRequest) toRequest() (backfill.Request, error) {
	req := backfill.Request{SeasonID: strings.TrimSpace(in.Season), DryRun: in.DryRun}

	for _, id := range append(in.GameIDs, in.GameID) {
		if id = strings.TrimSpace(id); id != "" {
			req.GameIDs = append(req.GameIDs, id)
		}
	}

	var err error
	if req.StartDate, err = parseDay("start_date", in.StartDate); err != nil {
		return req, err
	}
	if req.EndDate, err = parseDay("end_date", in.EndDate); err != nil {
		return req, err
	}
	return req, nil
}

func parseDay(field, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	day, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q (YYYY-MM-DD)", field, value)
	}
	return &day, nil
}

// HandleBackfillRequest handles POST /api/v1/backfill
func (h *BackfillHandler) HandleBackfillRequest(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}

	var body importRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	req, err := body.toRequest()
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	job, err := h.service.Enqueue(r.Context(), req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failed to enqueue backfill job", err)
		return
	}

	respondJSON(w, http.StatusAccepted, struct {
		Job *backfill.Job `json:"job"`
	}{job})
}

// HandleBackfillStatus handles GET /api/v1/backfill/status. The body
// carries the running job, recent jobs with their own listed, skipped and
// imported counts, and those counts totalled.
func (h *BackfillHandler) HandleBackfillStatus(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}

	summary, err := h.service.GetStatus(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch status", err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

// HandleBackfillJob handles GET /api/v1/backfill/jobs/{jobID}
func (h *BackfillHandler) HandleBackfillJob(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}

	job, err := h.service.GetJob(r.Context(), mux.Vars(r)["jobID"])
	if err != nil {
		respondServiceError(w, "Failed to fetch job", err)
		return
	}
	respondJSON(w, http.StatusOK, job)
}
