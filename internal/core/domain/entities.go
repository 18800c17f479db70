package domain

import (
	"errors"
	"path"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned by repositories when a record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput marks a request that failed validation.
	ErrInvalidInput = errors.New("invalid input")
)

// Driver is a tracked agent that reports location samples.
type Driver struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Sample is a single timestamped location reading for a driver.
type Sample struct {
	ID        string    `json:"id,omitempty"`
	Point     Point     `json:"coords"`
	DriverID  string    `json:"driverId"`
	Timestamp time.Time `json:"createdAt"`
}

// DistanceReport is the distance a driver travelled during one day.
type DistanceReport struct {
	DriverID      string  `json:"driverId"`
	Date          string  `json:"date"`
	Samples       int     `json:"samples"`
	TotalDistance float64 `json:"totalDistance"`
	Unit          string  `json:"unit"`
}

// HotspotSnapshot is an archived hotspot result for a region and day.
type HotspotSnapshot struct {
	City        string    `json:"city"`
	State       string    `json:"state"`
	Date        string    `json:"date"`
	Tier        string    `json:"tier"`
	GeneratedAt time.Time `json:"generatedAt"`
	Clusters    []Cluster `json:"clusters"`
}

// Key is the object key the snapshot is archived under.
func (s HotspotSnapshot) Key() string {
	return SnapshotKey(s.City, s.State, s.Date, s.Tier)
}

// SnapshotKey builds hotspots/<state>/<city>/<date>/<tier>.json.
func SnapshotKey(city, state, date, tier string) string {
	norm := func(v string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(v)), " ", "-")
	}
	return path.Join("hotspots", norm(state), norm(city), date, norm(tier)+".json")
}
