package store

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"resdb-tools/internal/metrics"
	"resdb-tools/internal/perm"
	"resdb-tools/internal/record"

	"go.uber.org/zap"
)

// UserHeader carries the acting user id on API requests.
const UserHeader = "X-Resdb-User"

const maxRecordBody = 1 << 20

type apiError struct {
	Code    FailureCode `json:"code"`
	Message string      `json:"message"`
}

type envelope struct {
	Data  json.RawMessage `json:"data,omitempty"`
	Error *apiError       `json:"error,omitempty"`
}

type server struct {
	backend Backend
	log     *zap.Logger
}

// NewHandler exposes backend over the records HTTP API.
//
// Reads are open; writes require the X-Resdb-User header to match the record owner.
func NewHandler(backend Backend, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	s := &server{backend: backend, log: log}
	mux := http.NewServeMux()
	mux.Handle("GET /healthz", metrics.Instrument("/healthz", http.HandlerFunc(s.health)))
	mux.Handle("GET /v1/records/{owner}/{id}", metrics.Instrument("/v1/records/{owner}/{id}", http.HandlerFunc(s.get)))
	mux.Handle("PUT /v1/records/{owner}/{id}", metrics.Instrument("/v1/records/{owner}/{id}", http.HandlerFunc(s.put)))
	mux.Handle("DELETE /v1/records/{owner}/{id}", metrics.Instrument("/v1/records/{owner}/{id}", http.HandlerFunc(s.delete)))
	mux.Handle("GET /v1/records/{owner}", metrics.Instrument("/v1/records/{owner}", http.HandlerFunc(s.list)))
	mux.Handle("POST /v1/records", metrics.Instrument("/v1/records", http.HandlerFunc(s.create)))
	return mux
}

func (s *server) health(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, map[string]string{"status": "ok"})
}

func pathIdentity(r *http.Request) record.Identity {
	return record.Identity{OwnerID: r.PathValue("owner"), RecordID: r.PathValue("id")}
}

func (s *server) sameUser(w http.ResponseWriter, r *http.Request, owner string) bool {
	if perm.CanEditInventory(r.Header.Get(UserHeader), owner) {
		return true
	}
	s.writeErr(w, &FailureInfo{Code: CodeUnauthorized, Message: "Unauthorized"})
	return false
}

func (s *server) get(w http.ResponseWriter, r *http.Request) {
	rec, err := s.backend.Fetch(r.Context(), pathIdentity(r))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeData(w, http.StatusOK, rec)
}

func (s *server) put(w http.ResponseWriter, r *http.Request) {
	id := pathIdentity(r)
	if !s.sameUser(w, r, id.OwnerID) {
		return
	}
	var rec record.Record
	if err := decodeBody(r, &rec); err != nil {
		s.writeErr(w, err)
		return
	}
	if rec.Identity() != id {
		s.writeErr(w, invalid("record identity does not match the URL"))
		return
	}
	if err := s.backend.Persist(r.Context(), rec); err != nil {
		s.writeErr(w, err)
		return
	}
	saved, err := s.backend.Fetch(r.Context(), id)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.log.Info("record saved", zap.String("record", id.String()), zap.String("kind", string(saved.Kind)))
	writeData(w, http.StatusOK, saved)
}

func (s *server) create(w http.ResponseWriter, r *http.Request) {
	var rec record.Record
	if err := decodeBody(r, &rec); err != nil {
		s.writeErr(w, err)
		return
	}
	if !s.sameUser(w, r, rec.OwnerID) {
		return
	}
	created, err := s.backend.Create(r.Context(), rec)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeData(w, http.StatusCreated, created)
}

func (s *server) delete(w http.ResponseWriter, r *http.Request) {
	id := pathIdentity(r)
	if !s.sameUser(w, r, id.OwnerID) {
		return
	}
	if err := s.backend.Delete(r.Context(), id); err != nil {
		s.writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) list(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		path = "Inventory"
	}
	recs, err := s.backend.List(r.Context(), r.PathValue("owner"), path)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeData(w, http.StatusOK, recs)
}

func decodeBody(r *http.Request, v any) error {
	b, err := io.ReadAll(io.LimitReader(r.Body, maxRecordBody))
	if err != nil {
		return invalid("could not read request body")
	}
	if err := json.Unmarshal(b, v); err != nil {
		return invalid("invalid JSON: " + err.Error())
	}
	return nil
}

func writeData(w http.ResponseWriter, status int, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Data: raw})
}

func (s *server) writeErr(w http.ResponseWriter, err error) {
	f, ok := Failure(err)
	if !ok {
		s.log.Error("record api failure", zap.Error(err))
		f = &FailureInfo{Code: CodeUnavailable, Message: "Internal error", Err: err}
	}
	status := f.HTTPStatus()
	if errors.Is(err, ErrNotFound) {
		status = http.StatusNotFound
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Error: &apiError{Code: f.Code, Message: f.Message}})
}
