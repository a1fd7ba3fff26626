package geom

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Grid is a structured array of points indexed by (i, j). Rows counts the
// chordwise (or radial) index i, Cols the spanwise (or longitudinal) index
// j. Column j is one slice of the surface: a closed section loop for a
// lofted wing, a ring for a fuselage.
type Grid struct {
	Rows   int
	Cols   int
	Points []r3.Vec // column-major: Points[j*Rows+i]
}

// NewGrid allocates a zeroed rows x cols grid.
func NewGrid(rows, cols int) *Grid {
	return &Grid{Rows: rows, Cols: cols, Points: make([]r3.Vec, rows*cols)}
}

// GridFromSlices builds a grid whose columns are copies of slices. All
// slices must have the same length.
func GridFromSlices(slices [][]r3.Vec) (*Grid, error) {
	if len(slices) == 0 {
		return nil, fmt.Errorf("geom: grid needs at least one slice: %w", ErrInputContract)
	}
	rows := len(slices[0])
	g := NewGrid(rows, len(slices))
	for j, s := range slices {
		if len(s) != rows {
			return nil, fmt.Errorf("geom: slice %d has %d points, want %d: %w", j, len(s), rows, ErrInputContract)
		}
		copy(g.Points[j*rows:(j+1)*rows], s)
	}
	return g, nil
}

// Index returns the flat index of (i, j).
func (g *Grid) Index(i, j int) int { return j*g.Rows + i }

// At returns the point at (i, j).
func (g *Grid) At(i, j int) r3.Vec { return g.Points[g.Index(i, j)] }

// Set stores p at (i, j).
func (g *Grid) Set(i, j int, p r3.Vec) { g.Points[g.Index(i, j)] = p }

// Slice returns a copy of column j.
func (g *Grid) Slice(j int) []r3.Vec {
	out := make([]r3.Vec, g.Rows)
	copy(out, g.Points[j*g.Rows:(j+1)*g.Rows])
	return out
}

// Clone returns a deep copy of g.
func (g *Grid) Clone() *Grid {
	c := &Grid{Rows: g.Rows, Cols: g.Cols, Points: make([]r3.Vec, len(g.Points))}
	copy(c.Points, g.Points)
	return c
}

// Map returns a new grid with fn applied to every point.
func (g *Grid) Map(fn func(r3.Vec) r3.Vec) *Grid {
	c := &Grid{Rows: g.Rows, Cols: g.Cols, Points: make([]r3.Vec, len(g.Points))}
	for k, p := range g.Points {
		c.Points[k] = fn(p)
	}
	return c
}

// Translate returns g moved by d.
func (g *Grid) Translate(d r3.Vec) *Grid {
	return g.Map(func(p r3.Vec) r3.Vec { return r3.Add(p, d) })
}

// Rotate returns g rotated by deg degrees about axis through the origin.
func (g *Grid) Rotate(deg float64, axis r3.Vec) *Grid {
	return &Grid{Rows: g.Rows, Cols: g.Cols, Points: RotatePoints(g.Points, deg, axis)}
}

// ReverseRows returns g with the row (chordwise) index reversed in every
// column. Applying it twice restores the original ordering.
func (g *Grid) ReverseRows() *Grid {
	c := NewGrid(g.Rows, g.Cols)
	for j := 0; j < g.Cols; j++ {
		for i := 0; i < g.Rows; i++ {
			c.Set(i, j, g.At(g.Rows-1-i, j))
		}
	}
	return c
}

// Quads returns the implicit faces of the grid as index loops into Points.
// Face (i, j) winds (i,j) -> (i+1,j) -> (i+1,j+1) -> (i,j+1).
func (g *Grid) Quads() [][]int {
	if g.Rows < 2 || g.Cols < 2 {
		return nil
	}
	faces := make([][]int, 0, (g.Rows-1)*(g.Cols-1))
	for j := 0; j < g.Cols-1; j++ {
		for i := 0; i < g.Rows-1; i++ {
			faces = append(faces, []int{
				g.Index(i, j),
				g.Index(i+1, j),
				g.Index(i+1, j+1),
				g.Index(i, j+1),
			})
		}
	}
	return faces
}

// Surface returns the grid as an open polygon mesh of quads. Vertices are
// copied; the seam duplicates of closed loops are kept until Clean.
func (g *Grid) Surface() *Solid {
	s := &Solid{Vertices: make([]r3.Vec, len(g.Points))}
	copy(s.Vertices, g.Points)
	s.Faces = g.Quads()
	return s
}
