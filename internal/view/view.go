// Package view turns a game snapshot into a host-independent visual tree and
// maps user actions back onto game transitions.
package view

import (
	"errors"
	"fmt"

	"github.com/MetalTurtle18/tic-tac-toe/internal/domain"
)

// ErrUnknownAction is returned by ParseAction for an unrecognised kind.
var ErrUnknownAction = errors.New("unknown action")

// Kind names an action a host can dispatch.
type Kind string

const (
	Move   Kind = "move"
	Jump   Kind = "jump"
	Toggle Kind = "toggle"
)

// Action is a user intent carried back from the host.
type Action struct {
	Kind Kind
	Arg  int
}

// ParseAction decodes host input. Arg is ignored for Toggle.
func ParseAction(kind string, arg int) (Action, error) {
	switch k := Kind(kind); k {
	case Move, Jump:
		return Action{Kind: k, Arg: arg}, nil
	case Toggle:
		return Action{Kind: Toggle}, nil
	default:
		return Action{}, fmt.Errorf("%w: %q", ErrUnknownAction, kind)
	}
}

// Update applies an action and returns the next snapshot.
func Update(g domain.Game, a Action) domain.Game {
	switch a.Kind {
	case Move:
		return g.ApplyMove(a.Arg)
	case Jump:
		return g.JumpTo(a.Arg)
	case Toggle:
		return g.ToggleReversed()
	default:
		return g
	}
}

// Cell is one square of the rendered board.
type Cell struct {
	Index   int
	Mark    string
	Winning bool
	Action  Action
}

// Item is one entry of the rendered move list.
type Item struct {
	Step    int
	Number  int
	Label   string
	Current bool
	Action  Action
}

// ToggleButton switches the move list order.
type ToggleButton struct {
	Label  string
	Action Action
}

// Tree is everything a host needs to draw one frame.
type Tree struct {
	Status   string
	Cells    [domain.Size]Cell
	Moves    []Item
	Reversed bool
	Toggle   ToggleButton
}

// Rows returns the board cells grouped by row.
func (t Tree) Rows() [3][3]Cell {
	var rows [3][3]Cell
	for i, c := range t.Cells {
		rows[i/3][i%3] = c
	}
	return rows
}

// Build renders a snapshot.
func Build(g domain.Game) Tree {
	board := g.Current()
	line, won := g.WinLine()

	t := Tree{
		Status:   g.Status().String(),
		Reversed: g.Reversed(),
		Toggle:   ToggleButton{Label: "Show reversed", Action: Action{Kind: Toggle}},
	}
	if t.Reversed {
		t.Toggle.Label = "Show normal"
	}

	for i, c := range board {
		t.Cells[i] = Cell{
			Index:   i,
			Mark:    c.String(),
			Winning: won && line.Contains(i),
			Action:  Action{Kind: Move, Arg: i},
		}
	}

	history := g.History()
	t.Moves = make([]Item, len(history))
	for step, entry := range history {
		item := Item{
			Step:    step,
			Number:  step + 1,
			Label:   MoveLabel(step, entry),
			Current: step == g.Step(),
			Action:  Action{Kind: Jump, Arg: step},
		}
		if t.Reversed {
			t.Moves[len(history)-1-step] = item
		} else {
			t.Moves[step] = item
		}
	}
	return t
}

// MoveLabel describes a history entry in the move list.
func MoveLabel(step int, e domain.HistoryEntry) string {
	if step == 0 || !e.Moved {
		return "Go to game start"
	}
	return fmt.Sprintf("Go to move #%d - (%s)", step, e.Coords)
}
