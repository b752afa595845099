// Package httpapi serves the applicant, confirmation and attendance
// operations as a JSON API.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/tholdem/holdem-staff/pkg/core/attendance"
	"github.com/tholdem/holdem-staff/pkg/core/grouping"
	"github.com/tholdem/holdem-staff/pkg/core/model"
	"github.com/tholdem/holdem-staff/pkg/core/selection"
	"github.com/tholdem/holdem-staff/pkg/core/services"
	"github.com/tholdem/holdem-staff/pkg/db"
)

// Server holds the dependencies shared by every request
type Server struct {
	store      db.Database
	normalizer *selection.Normalizer
	grouper    *grouping.Grouper
	overlay    attendance.Overlay
	notifier   services.Notifier
	logger     *zap.Logger
}

// Options are the optional collaborators of a Server
type Options struct {
	// Overlay shows attendance changes before the store catches up
	Overlay attendance.Overlay
	// Notifier emails confirmed applicants
	Notifier services.Notifier
}

func NewServer(store db.Database, normalizer *selection.Normalizer, grouper *grouping.Grouper, logger *zap.Logger, opts Options) *Server {
	return &Server{
		store:      store,
		normalizer: normalizer,
		grouper:    grouper,
		overlay:    opts.Overlay,
		notifier:   opts.Notifier,
		logger:     logger.Named("http"),
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/postings/{postingID}", func(r chi.Router) {
		r.Get("/applicants", s.handleListApplicants)
		r.Get("/applications/{applicationID}/selections", s.handleViewSelections)
		r.Get("/staff-counts", s.handleStaffCounts)
		r.Get("/attendance/{staffID}/{date}", s.handleGetAttendance)
		r.Put("/attendance/{staffID}/{date}", s.handlePutAttendance)
	})

	r.Route("/applications/{applicationID}", func(r chi.Router) {
		r.Post("/confirm", s.handleConfirm)
		r.Post("/cancel-confirmation", s.handleCancelConfirmation)
		r.Post("/cancel", s.handleCancelApplication)
	})

	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("Handled request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)))
	})
}

// Applicants

func (s *Server) handleListApplicants(w http.ResponseWriter, r *http.Request) {
	summaries, err := services.ListPostingApplicants(r.Context(), s.store, s.normalizer, s.logger, chi.URLParam(r, "postingID"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"applicants": summaries})
}

func (s *Server) handleViewSelections(w http.ResponseWriter, r *http.Request) {
	view, err := services.ViewApplicantSelections(r.Context(), s.store, s.normalizer, s.grouper, s.logger,
		chi.URLParam(r, "postingID"), chi.URLParam(r, "applicationID"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleStaffCounts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	role, timeSlot := q.Get("role"), q.Get("time")
	if role == "" || timeSlot == "" {
		writeError(w, http.StatusBadRequest, "role_and_time_required")
		return
	}

	counts, err := services.StaffCounts(r.Context(), s.store, s.logger, chi.URLParam(r, "postingID"), role, timeSlot, q.Get("date"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

// Confirmations

type confirmRequest struct {
	Assignments []model.Assignment `json:"assignments"`
}

func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	result, err := services.ConfirmApplication(r.Context(), s.store, s.notifier, s.logger, chi.URLParam(r, "applicationID"), req.Assignments)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleCancelConfirmation(w http.ResponseWriter, r *http.Request) {
	app, err := services.CancelConfirmation(r.Context(), s.store, s.logger, chi.URLParam(r, "applicationID"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

func (s *Server) handleCancelApplication(w http.ResponseWriter, r *http.Request) {
	app, err := services.CancelApplication(r.Context(), s.store, s.logger, chi.URLParam(r, "applicationID"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

// Attendance

type attendanceRequest struct {
	Status string `json:"status"`
}

func (s *Server) handleGetAttendance(w http.ResponseWriter, r *http.Request) {
	view, err := services.GetAttendance(r.Context(), s.store, s.overlay, s.logger,
		chi.URLParam(r, "staffID"), chi.URLParam(r, "postingID"), chi.URLParam(r, "date"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handlePutAttendance(w http.ResponseWriter, r *http.Request) {
	var req attendanceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	status, err := model.ParseAttendanceStatus(req.Status)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_status")
		return
	}

	view, err := services.UpdateAttendance(r.Context(), s.store, s.overlay, s.logger,
		chi.URLParam(r, "staffID"), chi.URLParam(r, "postingID"), chi.URLParam(r, "date"), status)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Utilities

var errorCodes = []struct {
	err    error
	status int
	code   string
}{
	{db.ErrNotFound, http.StatusNotFound, "not_found"},
	{services.ErrDuplicateConfirmation, http.StatusConflict, "duplicate_confirmation"},
	{services.ErrRoleFull, http.StatusConflict, "role_full"},
	{services.ErrApplicationCancelled, http.StatusConflict, "application_cancelled"},
	{services.ErrNotConfirmed, http.StatusConflict, "not_confirmed"},
	{services.ErrNoAssignments, http.StatusUnprocessableEntity, "no_assignments"},
	{services.ErrInvalidAssignment, http.StatusUnprocessableEntity, "invalid_assignment"},
	{attendance.ErrInvalidTransition, http.StatusUnprocessableEntity, "invalid_transition"},
}

func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	for _, e := range errorCodes {
		if errors.Is(err, e.err) {
			writeError(w, e.status, e.code)
			return
		}
	}
	s.logger.Error("Request failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal")
}

func decodeJSON(r *http.Request, out interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
