package geospatial_test

import (
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/fleetspot/internal/core/domain"
	"github.com/samirrijal/fleetspot/internal/pkg/geospatial"
)

func pts(coords ...[2]float64) []domain.Point {
	out := make([]domain.Point, len(coords))
	for i, c := range coords {
		out[i] = domain.Point{Latitude: c[0], Longitude: c[1]}
	}
	return out
}

func TestDBSCAN_DenseGroupAndNoise(t *testing.T) {
	points := pts(
		[2]float64{0, 0},
		[2]float64{0, 0.001},
		[2]float64{0, 0.002},
		[2]float64{10, 10},
	)

	got, err := geospatial.DBSCAN(points, 0.01, 3)
	require.NoError(t, err)

	if diff := cmp.Diff([][]int{{0, 1, 2}}, got); diff != "" {
		t.Errorf("clusters mismatch (-want +got):\n%s", diff)
	}
}

func TestDBSCAN_EmptyInput(t *testing.T) {
	got, err := geospatial.DBSCAN(nil, 0.01, 2)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDBSCAN_DegenerateParameters(t *testing.T) {
	points := pts([2]float64{0, 0}, [2]float64{0, 0.001})

	tests := []struct {
		name      string
		epsilon   float64
		minPoints int
	}{
		{"zero epsilon", 0, 2},
		{"negative epsilon", -0.1, 2},
		{"zero minPoints", 0.01, 0},
		{"negative minPoints", 0.01, -3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := geospatial.DBSCAN(points, tt.epsilon, tt.minPoints)
			assert.ErrorIs(t, err, geospatial.ErrDegenerateParameters)
		})
	}
}

func TestDBSCAN_EpsilonIsExclusive(t *testing.T) {
	// The two points are exactly 0.5 apart, which is not "closer than" 0.5.
	points := pts([2]float64{0, 0}, [2]float64{0, 0.5})

	got, err := geospatial.DBSCAN(points, 0.5, 2)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = geospatial.DBSCAN(points, 0.5000001, 2)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{0, 1}}, got)
}

func TestDBSCAN_MinPointsOneMakesEveryPointACluster(t *testing.T) {
	points := pts([2]float64{0, 0}, [2]float64{5, 5}, [2]float64{-5, 5})

	got, err := geospatial.DBSCAN(points, 0.01, 1)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{0}, {1}, {2}}, got)
}

func TestDBSCAN_BorderPointJoinsButDoesNotExpand(t *testing.T) {
	// 0..3 are dense. 4 is only close to 3, so it is a border point.
	// 5 is close to 4 alone and stays noise.
	points := pts(
		[2]float64{0, 0},
		[2]float64{0, 0.001},
		[2]float64{0, 0.002},
		[2]float64{0, 0.003},
		[2]float64{0, 0.011},
		[2]float64{0, 0.019},
	)

	got, err := geospatial.DBSCAN(points, 0.009, 4)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{0, 1, 2, 3, 4}}, got)
}

func TestDBSCAN_InvariantsOnRandomInput(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	points := make([]domain.Point, 400)
	for i := range points {
		points[i] = domain.Point{Latitude: 43.2 + rng.Float64()*0.1, Longitude: -3.0 + rng.Float64()*0.1}
	}
	const eps, minPts = 0.006, 4

	got, err := geospatial.DBSCAN(points, eps, minPts)
	require.NoError(t, err)
	require.NotEmpty(t, got)

	seen := make(map[int]bool)
	for c, members := range got {
		require.NotEmpty(t, members, "cluster %d", c)

		for _, idx := range members {
			assert.False(t, seen[idx], "point %d appears in more than one cluster", idx)
			seen[idx] = true
		}

		// Every cluster holds at least one core point.
		var hasCore bool
		for _, idx := range members {
			if neighbourCount(points, idx, eps) >= minPts {
				hasCore = true
				break
			}
		}
		assert.True(t, hasCore, "cluster %d has no core point", c)
	}

	// Every core point is clustered.
	for i := range points {
		if neighbourCount(points, i, eps) >= minPts {
			assert.True(t, seen[i], "core point %d is noise", i)
		}
	}
}

func neighbourCount(points []domain.Point, i int, eps float64) int {
	var n int
	for j := range points {
		dLat := points[i].Latitude - points[j].Latitude
		dLon := points[i].Longitude - points[j].Longitude
		if dLat*dLat+dLon*dLon < eps*eps {
			n++
		}
	}
	return n
}
