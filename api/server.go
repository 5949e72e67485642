// Package api exposes the onboarding conversation over HTTP. It renders
// nothing itself: message kind, options and payload drive the client's
// widgets.
package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hrtools/onboardbot/extract"
	"github.com/hrtools/onboardbot/flow"
	"github.com/hrtools/onboardbot/patch"
	"github.com/hrtools/onboardbot/session"
	"github.com/hrtools/onboardbot/sink"
	"github.com/hrtools/onboardbot/types"
)

type Server struct {
	router    *chi.Mux
	manager   *session.Manager
	sink      sink.Sink
	extractor extract.Extractor
}

func NewServer(manager *session.Manager, recordSink sink.Sink, extractor extract.Extractor) *Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:    router,
		manager:   manager,
		sink:      recordSink,
		extractor: extractor,
	}

	router.Get("/healthz", s.health)
	router.Route("/api", func(r chi.Router) {
		r.Post("/sessions", s.createSession)
		r.Get("/sessions/{id}", s.getSession)
		r.Delete("/sessions/{id}", s.endSession)
		r.Post("/sessions/{id}/messages", s.postMessage)
		r.Post("/sessions/{id}/upload", s.upload)
		r.Patch("/sessions/{id}/batch", s.editBatch)
		r.Get("/employees", s.listEmployees)
	})
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

type sessionResponse struct {
	ID       string          `json:"id"`
	Messages []types.Message `json:"messages,omitempty"`
	State    *flow.State     `json:"state,omitempty"`
}

type messageRequest struct {
	Content string `json:"content"`
}

type editRequest struct {
	Ops []patch.Operation `json:"ops"`
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	id, st, err := s.manager.New(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{ID: id, Messages: st.History})
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	st, ok, err := s.manager.State(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, session.ErrUnknownSession)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{ID: id, State: &st})
}

func (s *Server) endSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.manager.End(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) postMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req messageRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Content == "" {
		writeError(w, http.StatusBadRequest, errors.New("content is required"))
		return
	}
	_, messages, err := s.manager.HandleTurn(r.Context(), id, req.Content)
	if err != nil {
		writeManagerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{ID: id, Messages: messages})
}

// upload accepts a CSV body, extracts one record per row and hands the
// results to the conversation.
func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if s.extractor == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("extraction service not configured"))
		return
	}
	rows, err := extract.ReadCSVRows(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	records := extract.All(r.Context(), s.extractor, rows)
	_, messages, err := s.manager.Upload(r.Context(), id, records)
	if err != nil {
		writeManagerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{ID: id, Messages: messages})
}

func (s *Server) editBatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req editRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	st, err := s.manager.Edit(r.Context(), id, req.Ops)
	if err != nil {
		if errors.Is(err, session.ErrUnknownSession) {
			writeManagerError(w, err)
			return
		}
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"batch": st.Batch})
}

func (s *Server) listEmployees(w http.ResponseWriter, r *http.Request) {
	records, err := s.sink.Load(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if records == nil {
		records = []types.EmployeeRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"employees": records})
}

func writeManagerError(w http.ResponseWriter, err error) {
	if errors.Is(err, session.ErrUnknownSession) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeError(w, http.StatusInternalServerError, err)
}

func readJSON(r *http.Request, v any) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	return sonic.Unmarshal(body, v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := sonic.Marshal(v)
	if err != nil {
		slog.Error("marshal response", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
