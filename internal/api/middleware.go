package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-ID"
	maxRequestID    = 128
)

type ctxKey int

const requestIDCtx ctxKey = iota

// RequestIDFrom returns the id the server assigned to the request.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDCtx).(string)
	return id
}

// wrap installs the handling shared by every route. Panic recovery is
// outermost so that it also covers the access log.
func (s *Server) wrap(h http.Handler) http.Handler {
	return s.recoverPanics(s.observe(s.allowCORS(h)))
}

// responseRecorder remembers the first status code sent to the client.
type responseRecorder struct {
	http.ResponseWriter
	code int
}

func (rr *responseRecorder) WriteHeader(code int) {
	if rr.code == 0 {
		rr.code = code
	}
	rr.ResponseWriter.WriteHeader(code)
}

func (rr *responseRecorder) Write(p []byte) (int, error) {
	if rr.code == 0 {
		rr.code = http.StatusOK
	}
	return rr.ResponseWriter.Write(p)
}

func (rr *responseRecorder) status() int {
	if rr.code == 0 {
		return http.StatusOK
	}
	return rr.code
}

// observe tags the request with an id, reusing a sane caller supplied
// X-Request-ID, and writes one access log line once the handler returns.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" || len(id) > maxRequestID {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		r = r.WithContext(context.WithValue(r.Context(), requestIDCtx, id))

		rr := &responseRecorder{ResponseWriter: w}
		began := time.Now()
		next.ServeHTTP(rr, r)

		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rr.status(),
			"took", time.Since(began),
			"request_id", id,
		)
	})
}

func (s *Server) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			s.logger.Error("handler panicked", "path", r.URL.Path, "panic", fmt.Sprint(v))
			writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
		}()
		next.ServeHTTP(w, r)
	})
}

// allowCORS answers preflight requests itself; the site origin comes from
// server.corsOrigin and falls back to any origin.
func (s *Server) allowCORS(next http.Handler) http.Handler {
	origin := s.cfg.CORSOrigin
	if origin == "" {
		origin = "*"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, "+requestIDHeader)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
