package terminal

import (
	"fmt"
	"io"
	"strings"

	"github.com/MetalTurtle18/tic-tac-toe/internal/view"
	"github.com/charmbracelet/lipgloss"
)

var (
	clrBorder = lipgloss.Color("#30363d")
	clrSubtle = lipgloss.Color("#8b949e")
	clrGold   = lipgloss.Color("#e3b341")
	clrX      = lipgloss.Color("#58a6ff")
	clrO      = lipgloss.Color("#f85149")
)

// Renderer draws view trees as text for one output.
type Renderer struct {
	cell    lipgloss.Style
	winner  lipgloss.Style
	markX   lipgloss.Style
	markO   lipgloss.Style
	subtle  lipgloss.Style
	current lipgloss.Style
	board   lipgloss.Style
	status  lipgloss.Style
}

// NewRenderer picks colors supported by w.
func NewRenderer(w io.Writer) *Renderer {
	r := lipgloss.NewRenderer(w)
	return &Renderer{
		cell:    r.NewStyle().Width(3).Align(lipgloss.Center),
		winner:  r.NewStyle().Foreground(clrGold).Bold(true).Underline(true),
		markX:   r.NewStyle().Foreground(clrX).Bold(true),
		markO:   r.NewStyle().Foreground(clrO).Bold(true),
		subtle:  r.NewStyle().Foreground(clrSubtle),
		current: r.NewStyle().Bold(true),
		board:   r.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(clrBorder),
		status:  r.NewStyle().Bold(true).MarginBottom(1),
	}
}

func (r *Renderer) mark(c view.Cell) string {
	var s string
	switch {
	case c.Mark == "":
		s = " "
	case c.Winning:
		s = r.winner.Render(c.Mark)
	case c.Mark == "X":
		s = r.markX.Render(c.Mark)
	default:
		s = r.markO.Render(c.Mark)
	}
	return r.cell.Render(s)
}

func (r *Renderer) renderBoard(t view.Tree) string {
	sep := r.subtle.Render("│")
	rule := r.subtle.Render("───┼───┼───")
	lines := make([]string, 0, 5)
	for i, row := range t.Rows() {
		if i > 0 {
			lines = append(lines, rule)
		}
		cells := make([]string, len(row))
		for j, c := range row {
			cells[j] = r.mark(c)
		}
		lines = append(lines, strings.Join(cells, sep))
	}
	return r.board.Render(strings.Join(lines, "\n"))
}

func (r *Renderer) renderMoves(t view.Tree) string {
	lines := make([]string, 0, len(t.Moves)+1)
	for _, m := range t.Moves {
		line := fmt.Sprintf("%2d. %s", m.Number, m.Label)
		if m.Current {
			line = r.current.Render("> " + line)
		} else {
			line = "  " + line
		}
		lines = append(lines, line)
	}
	lines = append(lines, "", r.subtle.Render("[toggle] "+t.Toggle.Label))
	return strings.Join(lines, "\n")
}

// Render draws the board next to the status and move list.
func (r *Renderer) Render(t view.Tree) string {
	info := lipgloss.JoinVertical(lipgloss.Left, r.status.Render(t.Status), r.renderMoves(t))
	return lipgloss.JoinHorizontal(lipgloss.Top, r.renderBoard(t), "  ", info)
}
