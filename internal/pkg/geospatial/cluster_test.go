package geospatial_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/fleetspot/internal/core/domain"
	"github.com/samirrijal/fleetspot/internal/pkg/geospatial"
)

func TestFinalize_CentreAndOrder(t *testing.T) {
	small := pts([2]float64{1, 1}, [2]float64{3, 3})
	large := pts([2]float64{0, 0}, [2]float64{0, 2}, [2]float64{2, 0}, [2]float64{2, 2})

	got := geospatial.Finalize([][]domain.Point{small, large})

	want := []domain.Cluster{
		{Center: domain.Point{Latitude: 1, Longitude: 1}, Points: large},
		{Center: domain.Point{Latitude: 2, Longitude: 2}, Points: small},
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("Finalize mismatch (-want +got):\n%s", diff)
	}
}

func TestFinalize_TiesKeepDiscoveryOrder(t *testing.T) {
	a := pts([2]float64{1, 1}, [2]float64{1, 1.001})
	b := pts([2]float64{5, 5}, [2]float64{5, 5.001})
	c := pts([2]float64{9, 9}, [2]float64{9, 9.001})

	got := geospatial.Finalize([][]domain.Point{a, b, c})
	require.Len(t, got, 3)
	assert.Equal(t, a, got[0].Points)
	assert.Equal(t, b, got[1].Points)
	assert.Equal(t, c, got[2].Points)
}

func TestFinalize_DropsEmptyGroups(t *testing.T) {
	got := geospatial.Finalize([][]domain.Point{nil, pts([2]float64{1, 2}), {}})
	require.Len(t, got, 1)
	assert.Equal(t, domain.Point{Latitude: 1, Longitude: 2}, got[0].Center)
}

func TestFinalize_SizesNonIncreasing(t *testing.T) {
	raw := [][]domain.Point{
		pts([2]float64{0, 0}),
		pts([2]float64{0, 0}, [2]float64{0, 0}, [2]float64{0, 0}),
		pts([2]float64{0, 0}, [2]float64{0, 0}),
		pts([2]float64{0, 0}, [2]float64{0, 0}, [2]float64{0, 0}, [2]float64{0, 0}),
	}
	got := geospatial.Finalize(raw)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, len(got[i-1].Points), len(got[i].Points))
	}
}

func TestHotspots(t *testing.T) {
	points := pts(
		[2]float64{0, 0},
		[2]float64{0, 0.001},
		[2]float64{0, 0.002},
		[2]float64{10, 10},
	)

	got, err := geospatial.Hotspots(points, geospatial.Params{Epsilon: 0.01, MinPoints: 3})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.InDelta(t, 0, got[0].Center.Latitude, 1e-12)
	assert.InDelta(t, 0.001, got[0].Center.Longitude, 1e-12)
	assert.Equal(t, points[:3], got[0].Points)
}

func TestHotspots_PropagatesParameterErrors(t *testing.T) {
	_, err := geospatial.Hotspots(pts([2]float64{0, 0}), geospatial.Params{Epsilon: 0, MinPoints: 2})
	assert.ErrorIs(t, err, geospatial.ErrDegenerateParameters)
}

func TestParamsForTier(t *testing.T) {
	tests := []struct {
		tier string
		want geospatial.Params
	}{
		{"", geospatial.Tight},
		{"tight", geospatial.Tight},
		{"Broad", geospatial.Broad},
		{" broad ", geospatial.Broad},
	}
	for _, tt := range tests {
		got, err := geospatial.ParamsForTier(tt.tier)
		require.NoError(t, err, tt.tier)
		assert.Equal(t, tt.want, got, tt.tier)
	}

	_, err := geospatial.ParamsForTier("medium")
	assert.ErrorIs(t, err, geospatial.ErrUnknownTier)
}
