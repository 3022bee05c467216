package domain

// HistoryEntry is the board after a move. The initial entry has no coords.
type HistoryEntry struct {
	Board  Board
	Coords Coords
	Moved  bool
}

// Game is an immutable snapshot of a match and its move history.
// Transitions return a new Game and leave the receiver untouched.
type Game struct {
	history  []HistoryEntry
	step     int
	xIsNext  bool
	reversed bool
}

// New returns a game with an empty board and X to move.
func New() Game {
	return Game{
		history: []HistoryEntry{{}},
		xIsNext: true,
	}
}

// Current returns the board at the current step.
func (g Game) Current() Board { return g.history[g.step].Board }

// Step returns the index of the displayed history entry.
func (g Game) Step() int { return g.step }

// XIsNext reports whether X moves next.
func (g Game) XIsNext() bool { return g.xIsNext }

// Reversed reports whether the move list is shown newest first.
func (g Game) Reversed() bool { return g.reversed }

// Len returns the number of history entries, including the initial one.
func (g Game) Len() int { return len(g.history) }

// History returns a copy of the move history.
func (g Game) History() []HistoryEntry {
	return append([]HistoryEntry(nil), g.history...)
}

// Turn returns the mark of the player to move.
func (g Game) Turn() Cell {
	if g.xIsNext {
		return X
	}
	return O
}

// WinLine returns the winning line on the current board, if any.
func (g Game) WinLine() (Line, bool) { return DetectWin(g.Current()) }

// ApplyMove places the active mark at index. Moves on an occupied cell,
// after a win, or outside the board are ignored and g is returned as is.
// Moving from an earlier step discards the entries after it.
func (g Game) ApplyMove(index int) Game {
	if index < 0 || index >= Size {
		return g
	}
	board := g.Current()
	if _, won := DetectWin(board); won || board[index] != Empty {
		return g
	}
	board[index] = g.Turn()

	history := make([]HistoryEntry, g.step+1, g.step+2)
	copy(history, g.history[:g.step+1])
	history = append(history, HistoryEntry{Board: board, Coords: CoordsOf(index), Moved: true})

	return Game{
		history:  history,
		step:     len(history) - 1,
		xIsNext:  !g.xIsNext,
		reversed: g.reversed,
	}
}

// JumpTo displays history entry step. Steps outside the history are ignored.
func (g Game) JumpTo(step int) Game {
	if step < 0 || step >= len(g.history) {
		return g
	}
	g.step = step
	g.xIsNext = step%2 == 0
	return g
}

// ToggleReversed flips the move list order.
func (g Game) ToggleReversed() Game {
	g.reversed = !g.reversed
	return g
}

// Outcome classifies the status line.
type Outcome uint8

const (
	Playing Outcome = iota
	Won
	Drawn
)

// Status is the derived game status at the current step.
type Status struct {
	Outcome Outcome
	// Mark is the winner when Won, otherwise the player to move.
	Mark Cell
}

// Status derives the status of the current step.
func (g Game) Status() Status {
	if ln, won := g.WinLine(); won {
		return Status{Outcome: Won, Mark: g.Current()[ln[0]]}
	}
	// Nine moves fill the board exactly.
	if g.step == 9 {
		return Status{Outcome: Drawn}
	}
	return Status{Outcome: Playing, Mark: g.Turn()}
}

func (s Status) String() string {
	switch s.Outcome {
	case Won:
		return "Winner: " + s.Mark.String()
	case Drawn:
		return "Draw"
	default:
		return "Next player: " + s.Mark.String()
	}
}
