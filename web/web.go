// Package web exposes the flyout service over HTTP: panel rendering, form
// submission, deletion and field search, plus the embedded client script
// that re-evaluates visibility rules in the browser.
package web

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/panelkit/flyout/app"
)

//go:embed static/*
var assets embed.FS

// Handler provides the flyout HTTP endpoints.
type Handler struct {
	svc    *app.Service
	logger zerolog.Logger
}

// NewHandler creates a new web handler.
func NewHandler(svc *app.Service, logger zerolog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Routes returns the router for all flyout endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/flyout/{panel}", h.handleOpen)
	r.Post("/flyout/{panel}/submit", h.handleSubmit)
	r.Post("/flyout/{panel}/delete", h.handleDelete)
	r.Get("/flyout/{panel}/search", h.handleSearch)

	static, _ := fs.Sub(assets, "static")
	r.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.FS(static))))

	return r
}
