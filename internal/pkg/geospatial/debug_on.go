//go:build fleetspot_debug

package geospatial

const debugChecks = true
