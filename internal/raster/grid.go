package raster

import "fmt"

// Grid is an immutable square matrix of QR modules; true means dark.
type Grid struct {
	n     int
	cells []bool
}

// NewGrid copies rows into a Grid. Rows must form a non-empty square.
func NewGrid(rows [][]bool) (Grid, error) {
	n := len(rows)
	if n == 0 {
		return Grid{}, ErrEmptyGrid
	}
	cells := make([]bool, n*n)
	for y, row := range rows {
		if len(row) != n {
			return Grid{}, fmt.Errorf("%w: row %d has %d modules, want %d", ErrNotSquare, y, len(row), n)
		}
		copy(cells[y*n:(y+1)*n], row)
	}
	return Grid{n: n, cells: cells}, nil
}

// Size returns the number of modules per side.
func (g Grid) Size() int { return g.n }

// Dark reports whether the module at (x, y) is dark. Coordinates outside the grid are light.
func (g Grid) Dark(x, y int) bool {
	if x < 0 || y < 0 || x >= g.n || y >= g.n {
		return false
	}
	return g.cells[y*g.n+x]
}

// DarkCount returns the number of dark modules.
func (g Grid) DarkCount() int {
	count := 0
	for _, c := range g.cells {
		if c {
			count++
		}
	}
	return count
}
