// Package terminal hosts the game on a text terminal: it draws the view tree
// and reads one command per line.
package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/MetalTurtle18/tic-tac-toe/internal/domain"
	"github.com/MetalTurtle18/tic-tac-toe/internal/view"
)

// ErrUsage is returned for a line that is not a valid command.
var ErrUsage = errors.New("usage: move <0-8> | jump <step> | toggle | quit")

const help = "cells are numbered 0-8 row by row; commands: move N, jump N, toggle, quit"

// Host runs one game against a reader and writer.
type Host struct {
	in   io.Reader
	out  io.Writer
	draw *Renderer
	log  *slog.Logger
	game domain.Game
}

func NewHost(in io.Reader, out io.Writer, logger *slog.Logger) *Host {
	if logger == nil {
		logger = slog.Default()
	}
	return &Host{
		in:   in,
		out:  out,
		draw: NewRenderer(out),
		log:  logger.With("component", "terminal"),
		game: domain.New(),
	}
}

// Game returns the current snapshot.
func (h *Host) Game() domain.Game { return h.game }

// ParseCommand decodes one input line. ok is false for "quit".
func ParseCommand(line string) (a view.Action, ok bool, err error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return view.Action{}, true, ErrUsage
	}
	switch fields[0] {
	case "quit", "exit", "q":
		return view.Action{}, false, nil
	case "m":
		fields[0] = string(view.Move)
	case "j":
		fields[0] = string(view.Jump)
	case "t":
		fields[0] = string(view.Toggle)
	}

	var arg int
	if fields[0] != string(view.Toggle) {
		if len(fields) != 2 {
			return view.Action{}, true, ErrUsage
		}
		if arg, err = strconv.Atoi(fields[1]); err != nil {
			return view.Action{}, true, fmt.Errorf("%w: %q is not a number", ErrUsage, fields[1])
		}
	}
	a, err = view.ParseAction(fields[0], arg)
	if err != nil {
		return view.Action{}, true, fmt.Errorf("%w: %w", ErrUsage, err)
	}
	return a, true, nil
}

func (h *Host) frame() {
	fmt.Fprintln(h.out, h.draw.Render(view.Build(h.game)))
	fmt.Fprint(h.out, "> ")
}

// readLines feeds input lines to the returned channel. The error channel
// receives the scanner error, or nil, once input ends.
func readLines(ctx context.Context, in io.Reader) (<-chan string, <-chan error) {
	lines := make(chan string)
	done := make(chan error, 1)
	go func() {
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		done <- sc.Err()
	}()
	return lines, done
}

// Run draws the game and applies commands until quit, end of input, or ctx is done.
// A read blocked on input is abandoned when ctx is done.
func (h *Host) Run(ctx context.Context) error {
	fmt.Fprintln(h.out, help)
	h.frame()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	lines, done := readLines(ctx, h.in)
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-done:
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			return nil
		case line := <-lines:
			a, ok, err := ParseCommand(line)
			if !ok {
				return nil
			}
			if err != nil {
				fmt.Fprintln(h.out, err)
				fmt.Fprint(h.out, "> ")
				continue
			}
			h.game = view.Update(h.game, a)
			h.log.Debug("action applied", "kind", a.Kind, "arg", a.Arg, "step", h.game.Step())
			h.frame()
		}
	}
}
