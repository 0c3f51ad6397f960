// Package server exposes the minimal HTTP surface needed to invoke
// diagnosis validation.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"

	"prognosis-rag/internal/db"
	"prognosis-rag/internal/models"
	"prognosis-rag/internal/rag"
)

// DiagnosisInput is the request body for diagnosis validation.
type DiagnosisInput struct {
	UserID          string `json:"user_id"`
	DoctorDiagnosis string `json:"doctor_diagnosis"`
	AdditionalNotes string `json:"additional_notes,omitempty"`
}

// PrescreenInput is the request body for recording an intake. The
// stored record becomes the prescreen consulted on the next validation
// for the same user.
type PrescreenInput struct {
	UserID     string            `json:"user_id"`
	Symptoms   []string          `json:"symptoms"`
	Duration   string            `json:"duration"`
	Severity   string            `json:"severity"`
	History    map[string]any    `json:"medical_history,omitempty"`
	VitalSigns map[string]string `json:"vital_signs,omitempty"`
}

// Server wires the validation endpoint to its collaborators. Both are
// constructed by the orchestrator and passed in explicitly.
type Server struct {
	addr   string
	db     *bun.DB
	engine *rag.Engine
}

func New(addr string, database *bun.DB, engine *rag.Engine) *Server {
	return &Server{addr: addr, db: database, engine: engine}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/validate_diagnosis", s.handleValidate)
	mux.HandleFunc("POST /api/prescreen", s.handlePrescreen)
	mux.HandleFunc("GET /health", s.handleHealth)

	srv := &http.Server{Addr: s.addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.addr).Msg("Validation server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var input DiagnosisInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if input.UserID == "" || input.DoctorDiagnosis == "" {
		writeError(w, http.StatusBadRequest, "user_id and doctor_diagnosis are required")
		return
	}

	prescreen, err := db.LatestPrescreen(r.Context(), s.db, input.UserID)
	if err != nil {
		log.Error().Err(err).Str("user_id", input.UserID).Msg("Prescreen lookup failed")
		writeError(w, http.StatusNotFound, "no prescreen data for user")
		return
	}

	resp, err := s.engine.Validate(r.Context(), toModel(prescreen), input.DoctorDiagnosis, input.AdditionalNotes)
	if err != nil {
		log.Error().Err(err).Msg("Diagnosis validation failed")
		writeError(w, http.StatusInternalServerError, "error processing diagnosis validation")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePrescreen(w http.ResponseWriter, r *http.Request) {
	var input PrescreenInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if input.UserID == "" || len(input.Symptoms) == 0 {
		writeError(w, http.StatusBadRequest, "user_id and symptoms are required")
		return
	}

	record := &db.Prescreen{
		UserID:     input.UserID,
		Symptoms:   input.Symptoms,
		Duration:   input.Duration,
		Severity:   input.Severity,
		History:    input.History,
		VitalSigns: input.VitalSigns,
		RecordedAt: time.Now(),
	}
	if err := db.StorePrescreen(r.Context(), s.db, record); err != nil {
		log.Error().Err(err).Str("user_id", input.UserID).Msg("Prescreen store failed")
		writeError(w, http.StatusInternalServerError, "error storing prescreen data")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "recorded"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	code := http.StatusOK
	if err := db.Ping(r.Context(), s.db); err != nil {
		log.Warn().Err(err).Msg("Health check failed")
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]string{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func toModel(ps *db.Prescreen) *models.Prescreen {
	return &models.Prescreen{
		UserID:     ps.UserID,
		Symptoms:   ps.Symptoms,
		Duration:   ps.Duration,
		Severity:   ps.Severity,
		History:    ps.History,
		VitalSigns: ps.VitalSigns,
		RecordedAt: ps.RecordedAt.Format(time.RFC3339),
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Error encoding response")
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"detail": msg})
}
