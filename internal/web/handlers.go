package web

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/MetalTurtle18/tic-tac-toe/internal/app"
	"github.com/MetalTurtle18/tic-tac-toe/internal/view"
	"github.com/go-chi/chi/v5"
)

type handlers struct {
	svc       *app.Service
	tpl       *templates
	log       *slog.Logger
	heartbeat time.Duration
}

// renderGame renders the game fragment for a session. It is also the
// broadcast renderer, so it must not call back into the service.
func (h *handlers) renderGame(sess app.Session) []byte {
	b, err := renderTemplate(h.tpl.game, "", gameData{ID: sess.ID, Tree: view.Build(sess.Game)})
	if err != nil {
		h.log.Error("render game fragment", "id", sess.ID, "error", err)
		return nil
	}
	return b
}

func writeHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func (h *handlers) index(w http.ResponseWriter, r *http.Request) {
	b, err := renderTemplate(h.tpl.index, "base", nil)
	if err != nil {
		h.log.Error("render index", "error", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	writeHTML(w, http.StatusOK, b)
}

func (h *handlers) healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok")
}

func (h *handlers) create(w http.ResponseWriter, r *http.Request) {
	sess := h.svc.CreateGame()
	http.Redirect(w, r, "/game/"+sess.ID, http.StatusSeeOther)
}

func (h *handlers) page(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, ok := h.svc.Get(id)
	if !ok {
		http.NotFound(w, r)
		return
	}
	b, err := renderTemplate(h.tpl.page, "base", gameData{ID: sess.ID, Tree: view.Build(sess.Game)})
	if err != nil {
		h.log.Error("render page", "id", id, "error", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	writeHTML(w, http.StatusOK, b)
}

// action builds a handler dispatching kind with the integer form field
// named field. An empty field name means the action takes no argument.
func (h *handlers) action(kind view.Kind, field string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var arg int
		if field != "" {
			if err := r.ParseForm(); err != nil {
				http.Error(w, "invalid form: "+err.Error(), http.StatusBadRequest)
				return
			}
			n, err := strconv.Atoi(r.Form.Get(field))
			if err != nil {
				http.Error(w, "invalid "+field, http.StatusBadRequest)
				return
			}
			arg = n
		}
		a, err := view.ParseAction(string(kind), arg)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		sess, err := h.svc.Dispatch(id, a)
		switch {
		case errors.Is(err, app.ErrNotFound):
			http.NotFound(w, r)
			return
		case err != nil:
			h.log.Error("dispatch", "id", id, "action", kind, "error", err)
			http.Error(w, "dispatch failed", http.StatusInternalServerError)
			return
		}
		writeHTML(w, http.StatusOK, h.renderGame(sess))
	}
}

func (h *handlers) events(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.svc.Get(id); !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	// In tests or non-EventSource requests, just acknowledge headers and return
	if r.Header.Get("Accept") != "text/event-stream" {
		w.WriteHeader(http.StatusOK)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		w.WriteHeader(http.StatusOK)
		return
	}
	ctx := r.Context()
	ch, unsub, err := h.svc.Subscribe(ctx, id)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer unsub()
	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()
	// Initial flush of headers
	w.WriteHeader(http.StatusOK)
	flusher.Flush()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = io.WriteString(w, ": ping\n\n")
			flusher.Flush()
		case b, ok := <-ch:
			if !ok {
				return
			}
			writeEvent(w, "game", b)
			flusher.Flush()
		}
	}
}

// writeEvent emits one SSE event, one data line per payload line.
func writeEvent(w io.Writer, name string, payload []byte) {
	_, _ = io.WriteString(w, "event: "+name+"\n")
	for _, line := range bytes.Split(payload, []byte("\n")) {
		_, _ = io.WriteString(w, "data: ")
		_, _ = w.Write(line)
		_, _ = io.WriteString(w, "\n")
	}
	_, _ = io.WriteString(w, "\n")
}
