package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"lockreact/internal/game"
	"lockreact/views/pages"
)

type HomeHandler struct {
	store *game.Store
}

func NewHomeHandler(store *game.Store) *HomeHandler {
	return &HomeHandler{store: store}
}

func (h *HomeHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.home)
	r.Post("/sessions", h.createSession)
	r.Get("/healthz", h.health)
}

func (h *HomeHandler) home(w http.ResponseWriter, r *http.Request) {
	render(w, r, pages.HomePage())
}

func (h *HomeHandler) createSession(w http.ResponseWriter, r *http.Request) {
	sess := h.store.CreateSession()
	h.store.EnsureTickLoop(sess.ID)
	http.Redirect(w, r, "/session/"+sess.ID, http.StatusSeeOther)
}

func (h *HomeHandler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"status":   "ok",
		"sessions": h.store.Len(),
	})
}
