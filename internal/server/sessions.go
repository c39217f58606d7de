package server

import (
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmitrymomot/sessioncache/pkg/session"
	"github.com/dmitrymomot/sessioncache/pkg/sessioncache"
)

type createSessionRequest struct {
	UserID     *string        `json:"user_id,omitempty"`
	Values     map[string]any `json:"values,omitempty"`
	TTLSeconds int64          `json:"ttl_seconds"`
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) error {
	var req createSessionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	if req.TTLSeconds <= 0 {
		return errBadRequest("ttl_seconds must be positive", nil)
	}

	now := s.opts.now()
	rec := session.New(uuid.NewString(), now.Add(time.Duration(req.TTLSeconds)*time.Second))
	rec.CreatedAt = now
	rec.LastActiveAt = now
	rec.UserID = req.UserID
	rec.IP = clientIP(r)
	rec.UserAgent = r.UserAgent()
	for k, v := range req.Values {
		rec.SetValue(k, v)
	}

	if err := s.upsert(rec); err != nil {
		return err
	}

	w.Header().Set("Location", "/sessions/"+rec.ID)
	writeJSON(w, http.StatusCreated, rec)
	return nil
}

// getSession answers 404 for sessions that are expired but not yet swept.
func (s *Server) getSession(w http.ResponseWriter, r *http.Request) error {
	rec, ok := s.cache.Get(chi.URLParam(r, "id"))
	if !ok || rec.TTL(s.opts.now()) <= 0 {
		return errNotFound("session not found")
	}

	writeJSON(w, http.StatusOK, rec)
	return nil
}

// putSession stores the body under the path ID, whatever ID the body carries.
func (s *Server) putSession(w http.ResponseWriter, r *http.Request) error {
	var rec session.Session
	if err := decodeJSON(w, r, &rec); err != nil {
		return err
	}
	rec.ID = chi.URLParam(r, "id")

	if rec.ExpiresAt.IsZero() {
		return errBadRequest("expires_at is required", nil)
	}
	if rec.TTL(s.opts.now()) <= 0 {
		return errBadRequest("expires_at must be in the future", nil)
	}

	if err := s.upsert(&rec); err != nil {
		return err
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) error {
	s.cache.Remove(r.Context(), chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (s *Server) upsert(rec *session.Session) error {
	err := s.cache.Upsert(rec)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, session.ErrInvalidRecord):
		return errBadRequest("invalid session", err)
	case errors.Is(err, sessioncache.ErrClosed):
		return errServiceUnavailable("session cache is shutting down", err)
	default:
		return err
	}
}

// clientIP returns the request's remote address without the port.
// RealIP has already replaced it with the forwarded address when present.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
