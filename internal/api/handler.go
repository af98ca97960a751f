package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"ReachPilot/internal/csvparser"
	"ReachPilot/internal/engine"
	"ReachPilot/internal/models"
)

// Funnel is the slice of the engine the trigger endpoints need.
type Funnel interface {
	RecordAssessment(ctx context.Context, email, name string, score float64) error
	RecordSkillAssessment(ctx context.Context, email string) error
	RecordPayment(ctx context.Context, email string) error
	RecordRejection(ctx context.Context, email string) error
	ImportLeads(ctx context.Context, rows []models.ImportRow) (int, error)
	RunSweep(ctx context.Context) (engine.SweepStats, error)
}

type Handler struct {
	Funnel Funnel
	Log    *zap.Logger
}

// Register wires all routes onto mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /events/assessment", h.AssessmentCompleted)
	mux.HandleFunc("POST /events/skill-assessment", h.SkillAssessmentCompleted)
	mux.HandleFunc("POST /events/payment", h.PaymentCompleted)
	mux.HandleFunc("POST /events/reject", h.RejectLead)
	mux.HandleFunc("POST /leads/import", h.ImportLeads)
	mux.HandleFunc("POST /sweep", h.RunSweep)
	mux.HandleFunc("GET /healthz", h.Healthz)
}

type assessmentEvent struct {
	Email string  `json:"email"`
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

type leadEvent struct {
	Email string `json:"email"`
}

func (h *Handler) AssessmentCompleted(w http.ResponseWriter, r *http.Request) {
	var ev assessmentEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if ev.Email == "" {
		http.Error(w, "email is required", http.StatusBadRequest)
		return
	}

	if err := h.Funnel.RecordAssessment(r.Context(), ev.Email, ev.Name, ev.Score); err != nil {
		h.Log.Error("assessment event failed", zap.String("email", ev.Email), zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) SkillAssessmentCompleted(w http.ResponseWriter, r *http.Request) {
	h.leadEvent(w, r, "skill assessment event", h.Funnel.RecordSkillAssessment)
}

func (h *Handler) PaymentCompleted(w http.ResponseWriter, r *http.Request) {
	h.leadEvent(w, r, "payment event", h.Funnel.RecordPayment)
}

func (h *Handler) RejectLead(w http.ResponseWriter, r *http.Request) {
	h.leadEvent(w, r, "reject event", h.Funnel.RecordRejection)
}

func (h *Handler) leadEvent(w http.ResponseWriter, r *http.Request, what string, fn func(context.Context, string) error) {
	var ev leadEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if ev.Email == "" {
		http.Error(w, "email is required", http.StatusBadRequest)
		return
	}

	if err := fn(r.Context(), ev.Email); err != nil {
		h.Log.Error(what+" failed", zap.String("email", ev.Email), zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ImportLeads accepts a CSV body with an Email column (Name optional)
// and seeds one lead per row.
func (h *Handler) ImportLeads(w http.ResponseWriter, r *http.Request) {
	rows, err := csvparser.ParseLeads(r.Body, 1000)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	imported, err := h.Funnel.ImportLeads(r.Context(), rows)
	if err != nil {
		h.Log.Error("lead import failed", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"imported": imported})
}

// RunSweep triggers one sweep immediately. A sweep already in flight
// is reported as a conflict rather than queued behind.
func (h *Handler) RunSweep(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Funnel.RunSweep(r.Context())
	if err != nil {
		if errors.Is(err, engine.ErrSweepInProgress) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		h.Log.Error("manual sweep failed", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
