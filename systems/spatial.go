// Package systems provides the toroidal geometry used by the simulation.
package systems

import (
	"cmp"
	"math"
	"slices"
)

// Point is a position on the torus.
type Point struct {
	X, Y float64
}

// Neighbor holds a nearby reference with precomputed spatial data.
// This avoids recomputing toroidal delta and distance in sensing.
type Neighbor struct {
	Ref    int
	DX, DY float64 // Toroidal delta from query origin
	DistSq float64 // Squared distance (avoid sqrt in hot path)
}

// SpatialGrid provides neighbor lookups using a cell-based grid that wraps
// on both axes. Refs are caller-defined indices (usually into a snapshot slice).
type SpatialGrid struct {
	cellW  float64
	cellH  float64
	cols   int
	rows   int
	width  float64
	height float64
	cells  [][]int
}

// NewSpatialGrid creates a spatial grid covering the given world size.
func NewSpatialGrid(width, height, cellSize float64) *SpatialGrid {
	if cellSize <= 0 {
		cellSize = math.Max(width, height)
	}
	// Cells are stretched so they tile each axis exactly; a partial last
	// column would let the wrap seam skip a cell during queries.
	cols := int(width / cellSize)
	rows := int(height / cellSize)
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}

	cells := make([][]int, cols*rows)
	for i := range cells {
		cells[i] = make([]int, 0, 8)
	}

	return &SpatialGrid{
		cellW:  width / float64(cols),
		cellH:  height / float64(rows),
		cols:   cols,
		rows:   rows,
		width:  width,
		height: height,
		cells:  cells,
	}
}

// Clear removes all refs from the grid.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Insert adds a ref to the grid at the given position.
// Refs must be inserted in ascending order for queries to return sorted results.
func (g *SpatialGrid) Insert(ref int, x, y float64) {
	idx := g.cellIndex(x, y)
	g.cells[idx] = append(g.cells[idx], ref)
}

// QueryRadiusInto appends every ref strictly within radius of (x, y) to dst,
// skipping exclude. positions maps a ref to its inserted position.
// Results are sorted by ref so callers see a stable, insertion-ordered view.
func (g *SpatialGrid) QueryRadiusInto(dst []Neighbor, x, y, radius float64, exclude int, positions []Point) []Neighbor {
	start := len(dst)
	radiusSq := radius * radius

	colRadius := int(radius/g.cellW) + 1
	rowRadius := int(radius/g.cellH) + 1
	colSpan := 2*colRadius + 1
	rowSpan := 2*rowRadius + 1
	firstCol := int(x/g.cellW) - colRadius
	firstRow := int(y/g.cellH) - rowRadius

	// A span covering the whole torus must visit each cell exactly once.
	if colSpan >= g.cols {
		colSpan = g.cols
		firstCol = 0
	}
	if rowSpan >= g.rows {
		rowSpan = g.rows
		firstRow = 0
	}

	for dc := 0; dc < colSpan; dc++ {
		col := wrapIndex(firstCol+dc, g.cols)
		for dr := 0; dr < rowSpan; dr++ {
			row := wrapIndex(firstRow+dr, g.rows)
			for _, ref := range g.cells[row*g.cols+col] {
				if ref == exclude {
					continue
				}
				p := positions[ref]
				dx, dy := ToroidalDelta(x, y, p.X, p.Y, g.width, g.height)
				distSq := dx*dx + dy*dy
				if distSq < radiusSq {
					dst = append(dst, Neighbor{Ref: ref, DX: dx, DY: dy, DistSq: distSq})
				}
			}
		}
	}

	slices.SortFunc(dst[start:], func(a, b Neighbor) int { return cmp.Compare(a.Ref, b.Ref) })
	return dst
}

// cellIndex returns the flat index for a world position.
func (g *SpatialGrid) cellIndex(x, y float64) int {
	col := int(x / g.cellW)
	row := int(y / g.cellH)

	// Clamp to valid range
	if col < 0 {
		col = 0
	} else if col >= g.cols {
		col = g.cols - 1
	}
	if row < 0 {
		row = 0
	} else if row >= g.rows {
		row = g.rows - 1
	}

	return row*g.cols + col
}

func wrapIndex(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}
