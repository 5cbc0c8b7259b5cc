package engine

// neighborOffsets are the 4-connected step directions in enumeration order.
var neighborOffsets = [4]Cell{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}

type pathNode struct {
	cell   Cell
	g      int
	f      int
	seq    int // insertion order, for LIFO tie-breaking
	parent *pathNode
}

// FindPath runs A* over the grid from start to goal with unit step cost and
// Manhattan heuristic. blocked reports impassable cells; the start cell is
// always passable. When two open nodes share f, the one inserted later wins,
// which keeps the reported minimal path a deterministic function of input.
// Returns nil when the goal is unreachable; otherwise the path includes both
// endpoints.
func FindPath(w, h int, start, goal Cell, blocked func(Cell) bool) []Cell {
	if !InBounds(goal, w, h) || blocked(goal) {
		return nil
	}
	if start == goal {
		return []Cell{start}
	}

	seq := 0
	open := []*pathNode{{cell: start, g: 0, f: Manhattan(start, goal), seq: seq}}
	closed := make(map[Cell]bool)
	bestG := map[Cell]int{start: 0}

	for len(open) > 0 {
		best := 0
		for i := 1; i < len(open); i++ {
			if open[i].f < open[best].f || (open[i].f == open[best].f && open[i].seq > open[best].seq) {
				best = i
			}
		}
		cur := open[best]
		open = append(open[:best], open[best+1:]...)

		if cur.cell == goal {
			var path []Cell
			for n := cur; n != nil; n = n.parent {
				path = append(path, n.cell)
			}
			for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
				path[i], path[j] = path[j], path[i]
			}
			return path
		}
		closed[cur.cell] = true

		for _, off := range neighborOffsets {
			next := Cell{cur.cell.X + off.X, cur.cell.Y + off.Y}
			if !InBounds(next, w, h) || closed[next] {
				continue
			}
			if blocked(next) {
				continue
			}
			g := cur.g + 1
			if prev, ok := bestG[next]; ok && g >= prev {
				continue
			}
			bestG[next] = g
			seq++
			open = append(open, &pathNode{
				cell:   next,
				g:      g,
				f:      g + Manhattan(next, goal),
				seq:    seq,
				parent: cur,
			})
		}
	}
	return nil
}

// OptimalPath computes the shortest A* path from the moving side's position
// to any in-bounds neighbor of its opponent. Walls and the opponent's own
// cell block; the mover's cell does not. Returns nil when the opponent is
// unreachable.
func OptimalPath(m *Match, side string) []Cell {
	me := m.Actor(side)
	opp := m.Opponent(side)
	if me == nil || opp == nil {
		return nil
	}
	w, h := m.GridSize.W, m.GridSize.H

	blocked := func(c Cell) bool {
		if c == opp.Pos {
			return true
		}
		return m.WallAt(c) != nil
	}

	var best []Cell
	for _, off := range neighborOffsets {
		goal := Cell{opp.Pos.X + off.X, opp.Pos.Y + off.Y}
		if !InBounds(goal, w, h) {
			continue
		}
		path := FindPath(w, h, me.Pos, goal, blocked)
		if path == nil {
			continue
		}
		if best == nil || len(path) < len(best) {
			best = path
		}
	}
	return best
}

// HasStraightLOS reports whether from has an unobstructed straight line to
// to (shared row or column with no wall strictly between).
func (m *Match) HasStraightLOS(from, to Cell) bool {
	return StraightLine(from, to) && !WallBlocksLine(m.Entities.Walls, from, to)
}
