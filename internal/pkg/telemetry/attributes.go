package telemetry

// Span attribute keys.
const (
	AttrCity     = "fleetspot.city"
	AttrState    = "fleetspot.state"
	AttrDate     = "fleetspot.date"
	AttrTier     = "fleetspot.tier"
	AttrDriverID = "fleetspot.driver_id"
	AttrPoints   = "fleetspot.points"
	AttrClusters = "fleetspot.clusters"
)
