package web

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/MetalTurtle18/tic-tac-toe/internal/app"
	"github.com/MetalTurtle18/tic-tac-toe/internal/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*app.Service, http.Handler) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := app.NewService(logger)
	h := NewServer(s, logger, time.Second)
	return s, h
}

func post(t *testing.T, h http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestIndexPage(t *testing.T) {
	_, h := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()

	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "<html")
	assert.Contains(t, body, "htmx.org")
	assert.Contains(t, body, "<form")
	assert.Contains(t, body, `action="/game"`)
}

func TestHealthz(t *testing.T) {
	_, h := newTestServer(t)
	rr := httptest.NewRecorder()

	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())
}

func TestCreateRedirectsToGame(t *testing.T) {
	svc, h := newTestServer(t)

	rr := post(t, h, "/game", nil)

	require.Equal(t, http.StatusSeeOther, rr.Code)
	loc := rr.Result().Header.Get("Location")
	require.True(t, strings.HasPrefix(loc, "/game/"), "location %q", loc)
	_, ok := svc.Get(strings.TrimPrefix(loc, "/game/"))
	assert.True(t, ok)
}

func TestGamePage(t *testing.T) {
	svc, h := newTestServer(t)
	sess := svc.CreateGame()
	rr := httptest.NewRecorder()

	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/game/"+url.PathEscape(sess.ID), nil))

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.True(t, strings.HasPrefix(body, "<!doctype html>"), "page must render the full document")
	assert.Contains(t, body, "<html")
	assert.Contains(t, body, "htmx.org@1.9.12/dist/ext/sse.js")
	assert.Contains(t, body, ".winner{")
	assert.Contains(t, body, `hx-post="/game/`+sess.ID+`/move"`)
	assert.Contains(t, body, `hx-ext="sse"`)
	assert.Contains(t, body, "/game/"+sess.ID+"/events")
	assert.Contains(t, body, `id="game"`)
	assert.Contains(t, body, "Next player: X")
	assert.Contains(t, body, "Go to game start")
	assert.Contains(t, body, "Show reversed")
	assert.Equal(t, 9, strings.Count(body, `class="square`))
}

func TestGamePageUnknownID(t *testing.T) {
	_, h := newTestServer(t)
	rr := httptest.NewRecorder()

	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/game/nope", nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestMoveEndpoint(t *testing.T) {
	t.Run("Applies the move and returns the fragment", func(t *testing.T) {
		svc, h := newTestServer(t)
		sess := svc.CreateGame()

		rr := post(t, h, "/game/"+sess.ID+"/move", url.Values{"i": {"4"}})

		require.Equal(t, http.StatusOK, rr.Code)
		body := rr.Body.String()
		assert.True(t, strings.HasPrefix(body, `<div id="game"`))
		assert.Contains(t, body, "Next player: O")
		assert.Contains(t, body, "Go to move #1 - (1,1)")
		assert.Contains(t, body, `class="current"`)
		latest, _ := svc.Get(sess.ID)
		assert.Equal(t, 2, latest.Game.Len())
	})

	t.Run("Occupied cell leaves the game unchanged", func(t *testing.T) {
		svc, h := newTestServer(t)
		sess := svc.CreateGame()
		post(t, h, "/game/"+sess.ID+"/move", url.Values{"i": {"4"}})

		rr := post(t, h, "/game/"+sess.ID+"/move", url.Values{"i": {"4"}})

		require.Equal(t, http.StatusOK, rr.Code)
		latest, _ := svc.Get(sess.ID)
		assert.Equal(t, 2, latest.Game.Len())
		assert.Contains(t, rr.Body.String(), "Next player: O")
	})

	t.Run("Winning line is highlighted", func(t *testing.T) {
		svc, h := newTestServer(t)
		sess := svc.CreateGame()
		var rr *httptest.ResponseRecorder
		for _, i := range []string{"0", "4", "1", "5", "2"} {
			rr = post(t, h, "/game/"+sess.ID+"/move", url.Values{"i": {i}})
		}

		body := rr.Body.String()
		assert.Contains(t, body, "Winner: X")
		assert.Equal(t, 3, strings.Count(body, "square winner"))
	})

	t.Run("Malformed index", func(t *testing.T) {
		svc, h := newTestServer(t)
		sess := svc.CreateGame()

		rr := post(t, h, "/game/"+sess.ID+"/move", url.Values{"i": {"x"}})

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Unparseable form body", func(t *testing.T) {
		svc, h := newTestServer(t)
		sess := svc.CreateGame()
		req := httptest.NewRequest(http.MethodPost, "/game/"+sess.ID+"/move", strings.NewReader("i=%zz"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rr := httptest.NewRecorder()

		h.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "invalid form")
		latest, _ := svc.Get(sess.ID)
		assert.Equal(t, 1, latest.Game.Len())
	})

	t.Run("Unknown game", func(t *testing.T) {
		_, h := newTestServer(t)

		rr := post(t, h, "/game/nope/move", url.Values{"i": {"0"}})

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestJumpAndToggleEndpoints(t *testing.T) {
	svc, h := newTestServer(t)
	sess := svc.CreateGame()
	for _, a := range []view.Action{{Kind: view.Move, Arg: 0}, {Kind: view.Move, Arg: 4}, {Kind: view.Move, Arg: 8}} {
		_, err := svc.Dispatch(sess.ID, a)
		require.NoError(t, err)
	}

	rr := post(t, h, "/game/"+sess.ID+"/jump", url.Values{"step": {"1"}})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Next player: O")

	rr = post(t, h, "/game/"+sess.ID+"/toggle", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "<ol reversed>")
	assert.Contains(t, body, "Show normal")
	assert.Less(t, strings.Index(body, "Go to move #3"), strings.Index(body, "Go to game start"))

	latest, _ := svc.Get(sess.ID)
	assert.Equal(t, 1, latest.Game.Step())
	assert.True(t, latest.Game.Reversed())

	rr = post(t, h, "/game/"+sess.ID+"/jump", url.Values{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestEventsEndpointSSEHeaders(t *testing.T) {
	_, h := newTestServer(t)
	rrCreate := post(t, h, "/game", nil)
	loc := rrCreate.Result().Header.Get("Location")
	require.NotEmpty(t, loc)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, loc+"/events", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.HasPrefix(rr.Result().Header.Get("Content-Type"), "text/event-stream"))
}

func TestEventsStreamsFrames(t *testing.T) {
	svc, h := newTestServer(t)
	srv := httptest.NewServer(h)
	defer srv.Close()
	sess := svc.CreateGame()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/game/"+sess.ID+"/events", nil)
	require.NoError(t, err)
	req.Header.Set("Accept", "text/event-stream")
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The handler subscribes before flushing headers, so the frame is not missed.
	_, err = svc.Dispatch(sess.ID, view.Action{Kind: view.Move, Arg: 0})
	require.NoError(t, err)

	sc := bufio.NewScanner(resp.Body)
	var sawEvent bool
	for sc.Scan() {
		line := sc.Text()
		if line == "event: game" {
			sawEvent = true
			continue
		}
		if sawEvent && strings.Contains(line, "Next player: O") {
			return
		}
	}
	t.Fatalf("no game frame received (event seen: %v, err: %v)", sawEvent, sc.Err())
}

func TestEventsUnknownID(t *testing.T) {
	_, h := newTestServer(t)
	rr := httptest.NewRecorder()

	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/game/nope/events", nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
}
