package geospatial

import (
	"math"
	"slices"

	"github.com/golang/geo/r2"
)

// gridThreshold is the input size above which the grid index replaces the
// pairwise scan.
const gridThreshold = 128

// minGridEpsilon keeps grid cell coordinates well inside int64 range.
const minGridEpsilon = 1e-9

// neighbourIndex answers epsilon-neighbourhood queries over a fixed point set.
// query returns indices in ascending order, the point itself included.
type neighbourIndex interface {
	query(i int) []int
}

func newNeighbourIndex(plane []r2.Point, epsilon float64) neighbourIndex {
	if len(plane) >= gridThreshold && epsilon >= minGridEpsilon {
		return newGridIndex(plane, epsilon)
	}
	return &scanIndex{plane: plane, epsilon: epsilon}
}

// within reports whether a and b are closer than epsilon in the degree plane.
func within(a, b r2.Point, epsilon float64) bool {
	d := a.Sub(b)
	return math.Sqrt(d.Dot(d)) < epsilon
}

// scanIndex compares every pair: O(n) per query.
type scanIndex struct {
	plane   []r2.Point
	epsilon float64
}

func (s *scanIndex) query(i int) []int {
	var out []int
	for j := range s.plane {
		if within(s.plane[i], s.plane[j], s.epsilon) {
			out = append(out, j)
		}
	}
	return out
}

type cellKey struct {
	x, y int64
}

// gridIndex buckets points into square cells slightly wider than epsilon, so
// every neighbour of a point lies in its own cell or one of the eight around it.
type gridIndex struct {
	plane    []r2.Point
	epsilon  float64
	cellSize float64
	cells    map[cellKey][]int
}

func newGridIndex(plane []r2.Point, epsilon float64) *gridIndex {
	g := &gridIndex{
		plane:    plane,
		epsilon:  epsilon,
		cellSize: epsilon * (1 + 1e-9),
		cells:    make(map[cellKey][]int, len(plane)/4),
	}
	for i, p := range plane {
		k := g.key(p)
		g.cells[k] = append(g.cells[k], i)
	}
	return g
}

func (g *gridIndex) key(p r2.Point) cellKey {
	return cellKey{
		x: int64(math.Floor(p.X / g.cellSize)),
		y: int64(math.Floor(p.Y / g.cellSize)),
	}
}

func (g *gridIndex) query(i int) []int {
	p := g.plane[i]
	k := g.key(p)

	var out []int
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for _, j := range g.cells[cellKey{x: k.x + dx, y: k.y + dy}] {
				if within(p, g.plane[j], g.epsilon) {
					out = append(out, j)
				}
			}
		}
	}
	// Same order as the pairwise scan so cluster discovery is unchanged.
	slices.Sort(out)
	return out
}
