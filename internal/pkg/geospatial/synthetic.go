package geospatial

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/samirrijal/fleetspot/internal/core/domain"
)

// SamplesPerDay is the number of samples Generate produces.
const SamplesPerDay = 10

// Generator produces random samples for seeding and tests.
// It is safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator returns a deterministic generator for the given seed.
func NewGenerator(seed uint64) *Generator {
	return &Generator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewRandomGenerator returns a generator seeded from the runtime's random source.
func NewRandomGenerator() *Generator {
	return NewGenerator(rand.Uint64())
}

// Generate returns SamplesPerDay samples drawn uniformly inside box.
// Sample i is stamped with day's date at hour i; the minute, second,
// nanosecond and location of day are kept as given.
func (g *Generator) Generate(box domain.BoundingBox, day time.Time, driverID string) ([]domain.Sample, error) {
	if err := ValidateBox(box); err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	samples := make([]domain.Sample, SamplesPerDay)
	for i := range samples {
		lat := box.South + g.rng.Float64()*(box.North-box.South)
		lon := box.West + g.rng.Float64()*(box.East-box.West)
		samples[i] = domain.Sample{
			Point:    domain.Point{Latitude: lat, Longitude: lon},
			DriverID: driverID,
			Timestamp: time.Date(day.Year(), day.Month(), day.Day(), i,
				day.Minute(), day.Second(), day.Nanosecond(), day.Location()),
		}
	}
	return samples, nil
}
