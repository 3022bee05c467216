package web

import (
	"bytes"
	"html/template"

	"github.com/MetalTurtle18/tic-tac-toe/internal/view"
)

type templates struct {
	base  *template.Template
	page  *template.Template
	game  *template.Template
	index *template.Template
}

// gameData feeds the game fragment.
type gameData struct {
	ID   string
	Tree view.Tree
}

func loadTemplates() *templates {
	base := template.Must(template.New("base").Parse(`<!doctype html><html><head>
<meta charset="utf-8"/>
<title>Tic-Tac-Toe</title>
<script src="https://unpkg.com/htmx.org@1.9.12"></script>
<script src="https://unpkg.com/htmx.org@1.9.12/dist/ext/sse.js"></script>
<style>.square{width:3em;height:3em}.winner{background:#fd6}.current{font-weight:bold}</style>
</head><body>{{template "content" .}}</body></html>`))
	// Define the game fragment within the same set so the page can include it
	template.Must(base.New("game").Parse(gameTemplate))
	index := template.Must(template.Must(base.Clone()).New("content").Parse(`<h1>Tic-Tac-Toe</h1><form action="/game" method="post"><button>New game</button></form>`))
	page := template.Must(template.Must(base.Clone()).New("content").Parse(`
<div hx-ext="sse" hx-sse="connect:/game/{{.ID}}/events">
  <div id="frame" hx-sse="swap:game">{{template "game" .}}</div>
</div>`))
	// Standalone fragment used for htmx swaps and SSE frames
	game := template.Must(template.New("game_only").Parse(gameTemplate))
	return &templates{base: base, page: page, game: game, index: index}
}

func renderTemplate(t *template.Template, name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	if name == "" {
		err = t.Execute(&buf, data)
	} else {
		err = t.ExecuteTemplate(&buf, name, data)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

const gameTemplate = `<div id="game" class="game">
<div class="game-board">
<div id="board">
{{- range $row := .Tree.Rows}}
<div class="board-row">
{{- range $row}}
<form hx-post="/game/{{$.ID}}/move" hx-target="#game" hx-swap="outerHTML" method="post" style="display:inline">
<input type="hidden" name="i" value="{{.Index}}">
<button type="submit" class="square{{if .Winning}} winner{{end}}">{{.Mark}}</button>
</form>
{{- end}}
</div>
{{- end}}
</div>
<form hx-post="/game/{{.ID}}/toggle" hx-target="#game" hx-swap="outerHTML" method="post">
<button type="submit" class="toggle">{{.Tree.Toggle.Label}}</button>
</form>
</div>
<div class="game-info">
<div class="status">{{.Tree.Status}}</div>
{{if .Tree.Reversed}}<ol reversed>{{else}}<ol>{{end}}
{{- range .Tree.Moves}}
<li value="{{.Number}}">
<form hx-post="/game/{{$.ID}}/jump" hx-target="#game" hx-swap="outerHTML" method="post">
<input type="hidden" name="step" value="{{.Step}}">
<button type="submit"{{if .Current}} class="current"{{end}}>{{.Label}}</button>
</form>
</li>
{{- end}}
</ol>
</div>
</div>`
