package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	"lockreact/internal/game"
	"lockreact/internal/viewmodel"
	"lockreact/pkg/realtime"
	"lockreact/views/components"
	"lockreact/views/pages"
)

const keepAliveInterval = 25 * time.Second

// Options configures the session routes.
type Options struct {
	// BaseURL overrides the scheme and host used for share links.
	BaseURL string
	// CORSOrigins are allowed to read the JSON snapshot and open the socket.
	// Empty means any origin.
	CORSOrigins []string
	// RequestTimeout bounds the non-streaming routes. Zero disables it.
	RequestTimeout time.Duration
	Socket         SocketConfig
}

type SessionHandler struct {
	store    *game.Store
	opts     Options
	cors     *cors.Cors
	upgrader websocket.Upgrader
}

func NewSessionHandler(store *game.Store, opts Options) *SessionHandler {
	if opts.Socket == (SocketConfig{}) {
		opts.Socket = DefaultSocketConfig()
	}
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	h := &SessionHandler{
		store: store,
		opts:  opts,
		cors: cors.New(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{http.MethodHead, http.MethodGet},
			AllowedHeaders: []string{"*"},
		}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  opts.Socket.ReadBufferSize,
		WriteBufferSize: opts.Socket.WriteBufferSize,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *SessionHandler) RegisterRoutes(r chi.Router) {
	r.Route("/session/{id}", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if h.opts.RequestTimeout > 0 {
				r.Use(middleware.Timeout(h.opts.RequestTimeout))
			}
			r.Get("/", h.sessionPage)
			r.Post("/input", h.input)
			r.Post("/pause", h.pause)
			r.Post("/reset", h.reset)
			r.Get("/prompt", h.promptFragment)
			r.Get("/stats", h.statsFragment)
			r.With(h.cors.Handler).Get("/snapshot", h.snapshot)
			r.With(h.cors.Handler).Options("/snapshot", func(w http.ResponseWriter, r *http.Request) {})
		})
		r.Get("/stream", h.stream)
		r.Get("/ws", h.socket)
	})
}

func (h *SessionHandler) lookup(w http.ResponseWriter, r *http.Request) (*game.Session, bool) {
	sess, ok := h.store.GetSession(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return nil, false
	}
	return sess, true
}

func (h *SessionHandler) sessionPage(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}
	h.store.EnsureTickLoop(sess.ID)
	snap := sess.Snapshot()
	data := viewmodel.SessionPage{
		Title:     "Lock Light Reaction",
		SessionID: sess.ID,
		ShareURL:  h.buildShareURL(r, sess.ID),
		Prompt:    viewmodel.NewPromptFragment(snap),
		Stats:     viewmodel.NewStatsFragment(snap),
	}
	render(w, r, pages.SessionPage(data))
}

func (h *SessionHandler) input(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	source := strings.TrimSpace(r.FormValue("source"))
	outcome := sess.OnInput(source)
	log.Debug().
		Str("session_id", sess.ID).
		Str("source", source).
		Str("outcome", string(outcome)).
		Msg("input")
	h.respond(w, r, sess.ID)
}

func (h *SessionHandler) pause(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}
	sess.TogglePause()
	h.respond(w, r, sess.ID)
}

func (h *SessionHandler) reset(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}
	sess.Reset()
	h.respond(w, r, sess.ID)
}

// respond finishes a command: scripted callers get 204, plain form posts a redirect.
func (h *SessionHandler) respond(w http.ResponseWriter, r *http.Request, id string) {
	if r.Header.Get("Hx-Request") == "true" {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, "/session/"+id, http.StatusSeeOther)
}

func (h *SessionHandler) promptFragment(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}
	render(w, r, components.PromptFragment(viewmodel.NewPromptFragment(sess.Snapshot())))
}

func (h *SessionHandler) statsFragment(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}
	render(w, r, components.StatsFragment(viewmodel.NewStatsFragment(sess.Snapshot())))
}

func (h *SessionHandler) snapshot(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, sess.Snapshot())
}

func (h *SessionHandler) stream(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}
	hub, ok := h.store.Broadcaster(sess.ID)
	if !ok {
		http.NotFound(w, r)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	sub := hub.Subscribe()
	defer hub.Unsubscribe(sub)
	h.store.EnsureTickLoop(sess.ID)

	send := func(includePrompt, includeStats bool) {
		snap := sess.Snapshot()
		if includePrompt {
			writeSSE(w, "prompt", renderToString(r, components.PromptFragment(viewmodel.NewPromptFragment(snap))))
		}
		if includeStats {
			writeSSE(w, "stats", renderToString(r, components.StatsFragment(viewmodel.NewStatsFragment(snap))))
		}
		flusher.Flush()
	}

	send(true, true)

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, open := <-sub:
			if !open {
				return
			}
			prompt, statsPanel := fragmentsFor(event)
			send(prompt, statsPanel)
		case <-keepAlive.C:
			_, _ = w.Write([]byte(": keepalive\n\n"))
			flusher.Flush()
		}
	}
}

// fragmentsFor reports which panels an event invalidates.
func fragmentsFor(event realtime.Event) (prompt, statsPanel bool) {
	switch event {
	case game.EventRound, game.EventPause:
		return true, false
	case game.EventStats, game.EventTick:
		return false, true
	case game.EventReset:
		return true, true
	}
	return false, false
}

func (h *SessionHandler) buildShareURL(r *http.Request, id string) string {
	if base := strings.TrimSpace(h.opts.BaseURL); base != "" {
		return strings.TrimRight(base, "/") + "/session/" + id
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + "/session/" + id
}

func (h *SessionHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(h.opts.CORSOrigins) == 0 {
		return true
	}
	if strings.TrimPrefix(strings.TrimPrefix(origin, "https://"), "http://") == r.Host {
		return true
	}
	for _, allowed := range h.opts.CORSOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}
