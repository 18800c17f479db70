package geospatial

import (
	"fmt"
	"math"

	"github.com/golang/geo/r2"

	"github.com/samirrijal/fleetspot/internal/core/domain"
)

// DBSCAN groups points by density and returns the member indices of each
// cluster in discovery order. Points that never fall inside a core point's
// neighbourhood are noise and appear in no group.
//
// Distance is Euclidean in (latitude, longitude) degree space and epsilon is
// in degrees; this flat approximation only holds for city-sized regions.
// A neighbourhood holds every point strictly closer than epsilon, the point
// itself included.
func DBSCAN(points []domain.Point, epsilon float64, minPoints int) ([][]int, error) {
	if err := validateParams(epsilon, minPoints); err != nil {
		return nil, err
	}
	n := len(points)
	if n == 0 {
		return nil, nil
	}

	plane := make([]r2.Point, n)
	for i, p := range points {
		plane[i] = r2.Point{X: p.Latitude, Y: p.Longitude}
	}
	return expand(newNeighbourIndex(plane, epsilon), n, minPoints), nil
}

// expand runs the cluster expansion loop over n indexed points.
func expand(index neighbourIndex, n, minPoints int) [][]int {
	visited := make([]bool, n)
	assigned := make([]bool, n)
	// queued[i] == c+1 once point i joined cluster c's frontier.
	queued := make([]int, n)

	var clusters [][]int
	for i := 0; i < n; i++ {
		if visited[i] {
			continue
		}
		visited[i] = true

		neighbours := index.query(i)
		if len(neighbours) < minPoints {
			continue
		}

		stamp := len(clusters) + 1
		members := []int{i}
		assigned[i] = true

		frontier := make([]int, 0, len(neighbours))
		for _, j := range neighbours {
			queued[j] = stamp
			frontier = append(frontier, j)
		}

		for k := 0; k < len(frontier); k++ {
			q := frontier[k]
			if !visited[q] {
				visited[q] = true
				if expansion := index.query(q); len(expansion) >= minPoints {
					for _, j := range expansion {
						if queued[j] != stamp {
							queued[j] = stamp
							frontier = append(frontier, j)
						}
					}
				}
			}
			if !assigned[q] {
				assigned[q] = true
				members = append(members, q)
			}
		}

		clusters = append(clusters, members)
	}
	return clusters
}

func validateParams(epsilon float64, minPoints int) error {
	if math.IsNaN(epsilon) || math.IsInf(epsilon, 0) || epsilon <= 0 {
		return fmt.Errorf("%w: epsilon must be a positive finite number, got %v", ErrDegenerateParameters, epsilon)
	}
	if minPoints < 1 {
		return fmt.Errorf("%w: minPoints must be at least 1, got %d", ErrDegenerateParameters, minPoints)
	}
	return nil
}
