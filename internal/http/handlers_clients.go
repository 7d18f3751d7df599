package http

import (
	"log/slog"
	"net/http"

	"furfolio/internal/core"
)

type createClientRequest struct {
	Name        string   `json:"name"`
	DogName     string   `json:"dog_name"`
	Breed       string   `json:"breed"`
	ContactInfo string   `json:"contact_info"`
	Address     string   `json:"address"`
	Notes       string   `json:"notes"`
	Tags        []string `json:"tags"`
}

func (s *Server) handleCreateClient(w http.ResponseWriter, r *http.Request) {
	var req createClientRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	client, err := core.NewClient(
		sanitizeInput(req.Name),
		sanitizeInput(req.DogName),
		sanitizeInput(req.Breed),
		sanitizeInput(req.ContactInfo),
		sanitizeInput(req.Address))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	client.Notes = sanitizeInput(req.Notes)
	client.Tags = sanitizeSlice(req.Tags)

	if err := s.directory.SaveClient(r.Context(), client); err != nil {
		slog.ErrorContext(r.Context(), "Failed to save client", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save client")
		return
	}

	s.invalidateStats()
	writeJSON(w, http.StatusCreated, toClientBody(client))
}

func (s *Server) handleListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := s.directory.ListClients(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list clients", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list clients")
		return
	}

	out := make([]clientBody, 0, len(clients))
	for _, c := range clients {
		out = append(out, toClientBody(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetClient(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	client, err := s.directory.GetClient(r.Context(), id)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load client", "client_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load client")
		return
	}
	if client == nil {
		writeError(w, http.StatusNotFound, "client not found")
		return
	}
	writeJSON(w, http.StatusOK, toClientBody(client))
}

func (s *Server) handleDeleteClient(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.directory.DeleteClient(r.Context(), id); err != nil {
		slog.ErrorContext(r.Context(), "Failed to delete client", "client_id", id, "error", err)
		writeError(w, http.StatusNotFound, "client not found")
		return
	}

	s.invalidateStats()
	w.WriteHeader(http.StatusNoContent)
}

// loadClient is the shared lookup for the nested routes.
func (s *Server) loadClient(w http.ResponseWriter, r *http.Request) *core.Client {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil
	}
	client, err := s.directory.GetClient(r.Context(), id)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load client", "client_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load client")
		return nil
	}
	if client == nil {
		writeError(w, http.StatusNotFound, "client not found")
		return nil
	}
	return client
}
