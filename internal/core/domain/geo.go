package domain

// Point is a geographic coordinate (WGS 84) in decimal degrees.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// BoundingBox is an axis-aligned latitude/longitude rectangle.
// A valid box has South <= North and West <= East.
type BoundingBox struct {
	South float64 `json:"south"`
	North float64 `json:"north"`
	West  float64 `json:"west"`
	East  float64 `json:"east"`
}

// Cluster is a hotspot: a dense group of points and their mean centre.
// Center is the arithmetic mean of the member coordinates, not a geodesic centroid.
type Cluster struct {
	Center Point   `json:"center"`
	Points []Point `json:"points"`
}
