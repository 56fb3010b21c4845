package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/countdown/internal/auth"
	"github.com/dmitrijs2005/countdown/internal/common"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *HTTPServer) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		s.logger.Info(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

// requireToken checks the bearer token when a secret is configured.
func (s *HTTPServer) requireToken(next http.Handler) http.Handler {
	if len(s.jwtSecret) == 0 {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(common.AuthorizationHeaderName)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			s.fail(w, r, fmt.Errorf("%w: missing bearer token", common.ErrUnauthorized))
			return
		}

		client, err := auth.ClientFromToken(strings.TrimSpace(token), s.jwtSecret)
		if err != nil {
			s.fail(w, r, err)
			return
		}

		s.logger.Debug(r.Context(), "authenticated", "client", client)
		next.ServeHTTP(w, r)
	})
}
