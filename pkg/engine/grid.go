package engine

import (
	"encoding/json"
	"fmt"
)

// Cell is a grid coordinate. It serializes as a two-element array [x,y] so
// that stored snapshots stay compact and byte-stable across versions.
type Cell struct {
	X int
	Y int
}

// MarshalJSON encodes the cell as [x,y].
func (c Cell) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{c.X, c.Y})
}

// UnmarshalJSON decodes [x,y] into the cell.
func (c *Cell) UnmarshalJSON(b []byte) error {
	var a [2]int
	if err := json.Unmarshal(b, &a); err != nil {
		return fmt.Errorf("cell: %w", err)
	}
	c.X, c.Y = a[0], a[1]
	return nil
}

// Manhattan returns the L1 distance between two cells.
func Manhattan(a, b Cell) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

// StraightLine reports whether two cells share a row or column.
func StraightLine(a, b Cell) bool {
	return a.X == b.X || a.Y == b.Y
}

// DiagonalLine reports whether two cells lie on an exact diagonal.
func DiagonalLine(a, b Cell) bool {
	return abs(a.X-b.X) == abs(a.Y-b.Y)
}

// InBounds reports whether the cell lies within a w*h grid.
func InBounds(c Cell, w, h int) bool {
	return c.X >= 0 && c.Y >= 0 && c.X < w && c.Y < h
}

// WallBlocksLine reports whether any wall sits strictly between a and b on
// their shared row or column. Cells that are not in a straight line are
// never considered blocked.
func WallBlocksLine(walls []Wall, a, b Cell) bool {
	for _, wl := range walls {
		p := wl.Pos
		if a.Y == b.Y && p.Y == a.Y {
			lo, hi := minmax(a.X, b.X)
			if p.X > lo && p.X < hi {
				return true
			}
		}
		if a.X == b.X && p.X == a.X {
			lo, hi := minmax(a.Y, b.Y)
			if p.Y > lo && p.Y < hi {
				return true
			}
		}
	}
	return false
}

// Ring returns the in-bounds cells at exact Manhattan distance dist from
// center, in a fixed enumeration order (dx ascending, -dy before +dy).
func Ring(center Cell, dist, w, h int) []Cell {
	if dist <= 0 {
		return nil
	}
	var cells []Cell
	for dx := -dist; dx <= dist; dx++ {
		rem := dist - abs(dx)
		candidates := []Cell{{center.X + dx, center.Y - rem}}
		if rem != 0 {
			candidates = append(candidates, Cell{center.X + dx, center.Y + rem})
		}
		for _, c := range candidates {
			if InBounds(c, w, h) {
				cells = append(cells, c)
			}
		}
	}
	return cells
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func minmax(a, b int) (int, int) {
	if a < b {
		return a, b
	}
	return b, a
}
