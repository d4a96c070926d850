package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/AnuragC07/curatd/internal/infrastructure/mailer"
	"github.com/AnuragC07/curatd/internal/usecase"
)

const (
	livenessMessage = "Productivity Scraper API is running!"
	maxBodyBytes    = 64 << 10
)

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type tagsRequest struct {
	Tags     []string `json:"tags"`
	Articles int      `json:"articles,omitempty"`
	Videos   int      `json:"videos,omitempty"`
}

type newsletterRequest struct {
	Email string   `json:"email"`
	Tags  []string `json:"tags"`
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(livenessMessage))
}

func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	articles, err := countParam(r, "articles", s.deps.DailyArticles)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	videos, err := countParam(r, "videos", s.deps.DailyVideos)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}

	bundle, err := s.deps.Content.SelectDaily(r.Context(), articles, videos)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bundle.View())
}

func (s *Server) handleTags(w http.ResponseWriter, r *http.Request) {
	var req tagsRequest
	if err := decodeBody(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}

	bundle, err := s.deps.Content.SelectByTags(r.Context(), req.Tags, req.Articles, req.Videos)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bundle)
}

func (s *Server) handleNewsletter(w http.ResponseWriter, r *http.Request) {
	var req newsletterRequest
	if err := decodeBody(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}

	err := s.deps.Newsletter.Send(r.Context(), req.Email, req.Tags)
	var upstream *mailer.UpstreamError
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"message": "Newsletter sent!"})
	case errors.Is(err, usecase.ErrMissingFields):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Missing email or tags"})
	case errors.As(err, &upstream):
		s.logger.Warn("newsletter rejected upstream", "status", upstream.Status, "request_id", RequestIDFrom(r.Context()))
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Failed to send newsletter", Details: upstream.Body})
	default:
		s.fail(w, r, err)
	}
}

// fail reports an unexpected error as a 500. The error text is only exposed
// when verbose errors are enabled.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, usecase.ErrInvalidCount) {
		status = http.StatusBadRequest
	}
	s.logger.Error("request failed", "path", r.URL.Path, "error", err, "request_id", RequestIDFrom(r.Context()))

	msg := "internal error"
	if s.cfg.VerboseErrors || status == http.StatusBadRequest {
		msg = err.Error()
	}
	writeJSON(w, status, errorBody{Error: msg})
}

func countParam(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errors.New("invalid " + name + " count")
	}
	return n, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
