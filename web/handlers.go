package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/panelkit/flyout/ports"
)

// envelope is the JSON wrapper for all endpoint responses.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, e envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(e); err != nil {
		h.logger.Error().Err(err).Msg("encode response")
	}
}

// handleOpen renders a panel instance bound to ?id= and returns the HTML
// fragment plus title.
func (h *Handler) handleOpen(w http.ResponseWriter, r *http.Request) {
	panel := chi.URLParam(r, "panel")
	id := r.URL.Query().Get("id")

	result, err := h.svc.Open(r.Context(), panel, id)
	if err != nil {
		h.logger.Warn().Err(err).Str("panel", panel).Str("id", id).Msg("open failed")
		status := http.StatusInternalServerError
		if errors.Is(err, ports.ErrNotFound) {
			status = http.StatusNotFound
		}
		h.writeJSON(w, status, envelope{Success: false, Message: err.Error()})
		return
	}

	h.writeJSON(w, http.StatusOK, envelope{Success: true, Data: map[string]any{
		"title": result.Title,
		"html":  string(result.HTML),
	}})
}

// handleSubmit sanitizes and persists a form submission.
func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	panel := chi.URLParam(r, "panel")

	if err := r.ParseForm(); err != nil {
		h.writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: "malformed form data"})
		return
	}

	id := r.PostForm.Get("_id")
	r.PostForm.Del("_id")

	result := h.svc.Submit(r.Context(), panel, id, r.PostForm)
	if !result.OK {
		h.writeJSON(w, http.StatusUnprocessableEntity, envelope{Success: false, Message: result.Message})
		return
	}

	h.writeJSON(w, http.StatusOK, envelope{Success: true, Data: result.Data})
}

// handleDelete removes the record bound to a panel instance.
func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	panel := chi.URLParam(r, "panel")

	if err := r.ParseForm(); err != nil {
		h.writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: "malformed form data"})
		return
	}

	id := r.PostForm.Get("_id")
	if id == "" {
		h.writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: "missing record id"})
		return
	}

	result := h.svc.Delete(r.Context(), panel, id)
	if !result.OK {
		h.writeJSON(w, http.StatusUnprocessableEntity, envelope{Success: false, Message: result.Message})
		return
	}

	h.writeJSON(w, http.StatusOK, envelope{Success: true})
}

// handleSearch proxies a searchable field's callback. Either ?term= (user
// typing) or ?ids=a,b (label hydration) is set, never both; ids wins when
// both arrive.
func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	panel := chi.URLParam(r, "panel")
	field := r.URL.Query().Get("field")
	term := r.URL.Query().Get("term")

	var ids []string
	if raw := r.URL.Query().Get("ids"); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}

	labels, err := h.svc.Search(r.Context(), panel, field, term, ids)
	if err != nil {
		h.logger.Warn().Err(err).Str("panel", panel).Str("field", field).Msg("search failed")
		h.writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: err.Error()})
		return
	}

	h.writeJSON(w, http.StatusOK, envelope{Success: true, Data: labels})
}
