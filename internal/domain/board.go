package domain

import "fmt"

// Cell represents a board cell state.
type Cell uint8

const (
	Empty Cell = iota
	X
	O
)

// String returns the mark shown for the cell, or "" when empty.
func (c Cell) String() string {
	switch c {
	case X:
		return "X"
	case O:
		return "O"
	default:
		return ""
	}
}

// Size is the number of cells on the board.
const Size = 9

// Board is a fixed 3x3 board stored row-major.
type Board [Size]Cell

// Line is a triple of cell indices that wins when all three hold the same mark.
type Line [3]int

// Contains reports whether cell i lies on the line.
func (l Line) Contains(i int) bool {
	return l[0] == i || l[1] == i || l[2] == i
}

// Lines lists every winning triple in the order DetectWin checks them.
var Lines = [8]Line{
	// rows
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	// cols
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	// diags
	{0, 4, 8}, {2, 4, 6},
}

// DetectWin returns the first line fully held by one mark.
func DetectWin(b Board) (Line, bool) {
	for _, ln := range Lines {
		a := b[ln[0]]
		if a != Empty && a == b[ln[1]] && a == b[ln[2]] {
			return ln, true
		}
	}
	return Line{}, false
}

// Coords locates a move as (col, row).
type Coords struct {
	Col int
	Row int
}

// CoordsOf converts a row-major cell index to coordinates.
func CoordsOf(index int) Coords {
	return Coords{Col: index % 3, Row: index / 3}
}

// String formats the coordinates as "col,row".
func (c Coords) String() string {
	return fmt.Sprintf("%d,%d", c.Col, c.Row)
}
