// Package geospatial is the analytics engine: great-circle distance,
// per-driver distance aggregation, DBSCAN hotspot clustering and
// synthetic sample generation. Everything here is pure and does no I/O.
package geospatial

import (
	"fmt"
	"math"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/r2"

	"github.com/samirrijal/fleetspot/internal/core/domain"
)

// EarthRadiusMeters is the mean radius of the spherical Earth model.
const EarthRadiusMeters = 6371000.0

// Distance returns the great-circle distance in meters between a and b.
func Distance(a, b domain.Point) float64 {
	lat1 := toRad(a.Latitude)
	lat2 := toRad(b.Latitude)
	dLat := lat2 - lat1
	dLon := toRad(b.Longitude - a.Longitude)

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon

	// sqrt(h) can overshoot 1 by an ulp for antipodal points.
	return 2 * EarthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}

// Contains reports whether p lies inside box, edges included.
// An inverted box contains nothing.
func Contains(box domain.BoundingBox, p domain.Point) bool {
	return boxRect(box).ContainsPoint(r2.Point{X: p.Latitude, Y: p.Longitude})
}

// ValidatePoint checks that p is a finite coordinate within WGS 84 ranges.
func ValidatePoint(p domain.Point) error {
	if math.IsNaN(p.Latitude) || math.IsNaN(p.Longitude) {
		return fmt.Errorf("%w: coordinate is NaN", ErrInvalidGeometry)
	}
	if p.Latitude < -90 || p.Latitude > 90 {
		return fmt.Errorf("%w: latitude %f out of range [-90, 90]", ErrInvalidGeometry, p.Latitude)
	}
	if p.Longitude < -180 || p.Longitude > 180 {
		return fmt.Errorf("%w: longitude %f out of range [-180, 180]", ErrInvalidGeometry, p.Longitude)
	}
	return nil
}

// ValidateBox rejects boxes with south > north or west > east, and boxes
// whose corners are not valid coordinates.
func ValidateBox(box domain.BoundingBox) error {
	if err := ValidatePoint(domain.Point{Latitude: box.South, Longitude: box.West}); err != nil {
		return err
	}
	if err := ValidatePoint(domain.Point{Latitude: box.North, Longitude: box.East}); err != nil {
		return err
	}
	if box.South > box.North {
		return fmt.Errorf("%w: south %f > north %f", ErrInvalidGeometry, box.South, box.North)
	}
	if box.West > box.East {
		return fmt.Errorf("%w: west %f > east %f", ErrInvalidGeometry, box.West, box.East)
	}
	return nil
}

func boxRect(box domain.BoundingBox) r2.Rect {
	return r2.Rect{
		X: r1.Interval{Lo: box.South, Hi: box.North},
		Y: r1.Interval{Lo: box.West, Hi: box.East},
	}
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
