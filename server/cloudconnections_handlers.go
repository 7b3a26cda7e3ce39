package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/jrsteele09/go-oidc-portal/internal/errors"
	"github.com/rs/zerolog/log"
)

const maxConnectionBody = 1 << 20

// ListCloudConnections returns every connection id as a JSON array.
func (s *Server) ListCloudConnections() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.connections.Keys())
	}
}

// GetCloudConnection returns the stored document, or an empty 200 when the id is unknown.
func (s *Server) GetCloudConnection() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		value, ok := s.connections.Get(r.PathValue("id"))
		if !ok {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.Header().Set("Content-Type", contentTypeJSON)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(value)
	}
}

// PutCloudConnection stores the request body under id: 201 when the id is new, 200 when replaced.
func (s *Server) PutCloudConnection() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxConnectionBody))
		if err != nil {
			writeJSONError(w, http.StatusRequestEntityTooLarge, "invalid_request", "body too large")
			return
		}

		created, err := s.connections.Upsert(id, json.RawMessage(body))
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}

		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		log.Ctx(r.Context()).Info().Str("connection", id).Bool("created", created).Msg("stored cloud connection")

		w.Header().Set("Content-Type", contentTypeJSON)
		w.WriteHeader(status)
		_, _ = w.Write(body)
	}
}

// DeleteCloudConnection removes id: 204 when it existed, 404 when it did not.
func (s *Server) DeleteCloudConnection() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if err := s.connections.Delete(id); err != nil {
			if errors.Is(err, errors.ErrNotFound) {
				writeJSONError(w, http.StatusNotFound, "not_found", err.Error())
				return
			}
			writeJSONError(w, http.StatusInternalServerError, "server_error", err.Error())
			return
		}
		log.Ctx(r.Context()).Info().Str("connection", id).Msg("deleted cloud connection")
		w.WriteHeader(http.StatusNoContent)
	}
}
