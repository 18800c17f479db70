package geospatial

import (
	"fmt"

	"github.com/samirrijal/fleetspot/internal/core/domain"
)

// TotalDistance sums the great-circle distance between consecutive samples.
//
// samples must belong to one driver and be ordered by non-decreasing
// timestamp; the order is trusted, not re-sorted. Fewer than two samples
// yield 0. Builds tagged fleetspot_debug panic on out-of-order input.
func TotalDistance(samples []domain.Sample) float64 {
	if debugChecks {
		if err := ValidateOrder(samples); err != nil {
			panic(err)
		}
	}

	var total float64
	for i := 0; i+1 < len(samples); i++ {
		total += Distance(samples[i].Point, samples[i+1].Point)
	}
	return total
}

// ValidateOrder returns ErrUnordered if any sample is older than its predecessor.
func ValidateOrder(samples []domain.Sample) error {
	for i := 1; i < len(samples); i++ {
		if samples[i].Timestamp.Before(samples[i-1].Timestamp) {
			return fmt.Errorf("%w: sample %d at %s precedes sample %d at %s", ErrUnordered,
				i, samples[i].Timestamp.Format("15:04:05.000"),
				i-1, samples[i-1].Timestamp.Format("15:04:05.000"))
		}
	}
	return nil
}
