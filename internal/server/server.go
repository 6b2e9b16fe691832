// Package server exposes the dashboard document over HTTP with the routes
// the dashboard UI expects: the whole document, one collection, one record
// of a collection, and card creation.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/cleared-dev/spendboard/internal/id"
	"github.com/cleared-dev/spendboard/internal/logger"
	"github.com/cleared-dev/spendboard/internal/model"
	"github.com/cleared-dev/spendboard/internal/store"
)

// Server serves one document. The document is re-read on every request,
// so conversions run while serving show up without a restart.
type Server struct {
	store       store.Store
	log         zerolog.Logger
	allowOrigin string

	mu sync.Mutex // serializes read-modify-write of POST handlers
}

// New creates a Server.
func New(st store.Store, allowOrigin string, log zerolog.Logger) *Server {
	if allowOrigin == "" {
		allowOrigin = "*"
	}
	return &Server{store: st, log: log, allowOrigin: allowOrigin}
}

// documentName is the path of file-backed stores, for log context.
func documentName(st store.Store) string {
	if p, ok := st.(interface{ Path() string }); ok {
		return p.Path()
	}
	return fmt.Sprintf("%T", st)
}

// Handler returns the routed, middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(RequestLogger(s.log, documentName(s.store)), Recovery, CORS(s.allowOrigin))

	r.HandleFunc("/health", s.health).Methods(http.MethodGet)
	r.HandleFunc("/db", s.getDocument).Methods(http.MethodGet)
	r.HandleFunc("/cards", s.createCard).Methods(http.MethodPost)
	r.HandleFunc("/{key}", s.getCollection).Methods(http.MethodGet)
	r.HandleFunc("/{key}/{id}", s.getRecord).Methods(http.MethodGet)
	r.PathPrefix("/").Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return r
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.Load(r.Context())
	if err != nil {
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Msg("loading document")
		WriteError(w, r, http.StatusInternalServerError, "failed to load document")
		return
	}
	WriteJSON(w, http.StatusOK, doc)
}

func (s *Server) getCollection(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	doc, err := s.store.Load(r.Context())
	if err != nil {
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Msg("loading document")
		WriteError(w, r, http.StatusInternalServerError, "failed to load document")
		return
	}
	raw, ok := doc[key]
	if !ok {
		WriteError(w, r, http.StatusNotFound, fmt.Sprintf("no collection %q", key))
		return
	}
	WriteJSON(w, http.StatusOK, raw)
}

func (s *Server) getRecord(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	doc, err := s.store.Load(r.Context())
	if err != nil {
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Msg("loading document")
		WriteError(w, r, http.StatusInternalServerError, "failed to load document")
		return
	}

	var records []map[string]json.RawMessage
	if _, err := doc.Get(vars["key"], &records); err != nil {
		WriteError(w, r, http.StatusNotFound, fmt.Sprintf("%q is not a list", vars["key"]))
		return
	}
	for _, rec := range records {
		if recordID(rec["id"]) == vars["id"] {
			WriteJSON(w, http.StatusOK, rec)
			return
		}
	}
	WriteError(w, r, http.StatusNotFound, fmt.Sprintf("no %s with id %q", vars["key"], vars["id"]))
}

// recordID renders a string or numeric id the way it appears in a URL.
func recordID(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func (s *Server) createCard(w http.ResponseWriter, r *http.Request) {
	var card model.Card
	if err := json.NewDecoder(r.Body).Decode(&card); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.store.Load(r.Context())
	if err != nil {
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Msg("loading document")
		WriteError(w, r, http.StatusInternalServerError, "failed to load document")
		return
	}
	var existing []model.Card
	if _, err := doc.Get(store.KeyCards, &existing); err != nil {
		WriteError(w, r, http.StatusConflict, "cards collection is malformed")
		return
	}

	ids := make([]string, len(existing))
	for i, c := range existing {
		if c.ID == card.ID && card.ID != "" {
			WriteError(w, r, http.StatusConflict, fmt.Sprintf("card %q already exists", card.ID))
			return
		}
		ids[i] = c.ID
	}
	if card.ID == "" {
		card.ID = fmt.Sprint(id.NextNumeric(ids))
	}

	if err := doc.Set(store.KeyCards, append(existing, card)); err != nil {
		WriteError(w, r, http.StatusInternalServerError, "failed to encode cards")
		return
	}
	if err := s.store.Save(r.Context(), doc); err != nil {
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Msg("saving document")
		WriteError(w, r, http.StatusInternalServerError, "failed to save document")
		return
	}
	log := logger.FromContext(r.Context())
	log.Info().Str("card", card.ID).Msg("card created")
	WriteJSON(w, http.StatusCreated, card)
}
