package httpapi

import (
	"net/http"
	"strings"
)

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleInit(w http.ResponseWriter, r *http.Request) {
	if err := s.timers.Initialize(r.Context()); err != nil {
		s.logger.Error(r.Context(), "initialize failed", "error", err)
		writeError(w, http.StatusInternalServerError, "initialization failed")
		return
	}
	writeJSON(w, http.StatusOK, timerResponse{Success: true})
}

func (s *HTTPServer) handleList(w http.ResponseWriter, r *http.Request) {
	timers, err := s.timers.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, timers)
}

func (s *HTTPServer) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req timerRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	days, err := parseDays(req.Days)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	timer, err := s.timers.Create(r.Context(), strings.TrimSpace(req.ID), req.Name, days)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, timerResponse{Success: true, Timer: timer})
}

func (s *HTTPServer) handleReset(w http.ResponseWriter, r *http.Request) {
	var req timerRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	id := r.PathValue("id")
	if id == "" {
		id = req.ID
	}

	timer, err := s.timers.Reset(r.Context(), strings.TrimSpace(id))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, timerResponse{Success: true, Timer: timer})
}

func (s *HTTPServer) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	} else {
		s.logger.Debug(r.Context(), "request rejected", "path", r.URL.Path, "status", status, "error", err)
	}
	writeError(w, status, msg)
}
