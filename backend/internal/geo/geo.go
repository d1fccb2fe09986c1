// Package geo holds coordinate checks and the GeoJSON shapes returned to callers.
package geo

import (
	"fmt"
	"math"
)

const (
	TypePoint   = "Point"
	TypePolygon = "Polygon"

	// MinRingSize is three distinct vertices plus the closing repeat.
	MinRingSize = 4
)

// Coordinates is a WGS-84 latitude/longitude pair.
type Coordinates struct {
	Latitude  float64 `json:"latitude" yaml:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" yaml:"longitude" validate:"gte=-180,lte=180"`
}

// LonLat returns the pair in GeoJSON axis order.
func (c Coordinates) LonLat() [2]float64 {
	return [2]float64{c.Longitude, c.Latitude}
}

// FromLonLat is the inverse of LonLat.
func FromLonLat(p [2]float64) Coordinates {
	return Coordinates{Latitude: p[1], Longitude: p[0]}
}

// Valid reports whether both axes are finite and in range.
func (c Coordinates) Valid() bool {
	if math.IsNaN(c.Latitude) || math.IsNaN(c.Longitude) {
		return false
	}
	return c.Latitude >= -90 && c.Latitude <= 90 && c.Longitude >= -180 && c.Longitude <= 180
}

// PointGeometry is a GeoJSON Point.
type PointGeometry struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// PolygonGeometry is a GeoJSON Polygon with a single exterior ring.
type PolygonGeometry struct {
	Type        string         `json:"type"`
	Coordinates [][][2]float64 `json:"coordinates"`
}

func NewPoint(c Coordinates) PointGeometry {
	return PointGeometry{Type: TypePoint, Coordinates: c.LonLat()}
}

func NewPolygon(ring []Coordinates) PolygonGeometry {
	exterior := make([][2]float64, 0, len(ring))
	for _, c := range ring {
		exterior = append(exterior, c.LonLat())
	}
	return PolygonGeometry{Type: TypePolygon, Coordinates: [][][2]float64{exterior}}
}

// ValidateRing checks that ring is a closed linear ring: at least MinRingSize
// pairs, first equal to last, three or more distinct vertices, all in range.
func ValidateRing(ring []Coordinates) error {
	if len(ring) < MinRingSize {
		return fmt.Errorf("needs at least %d coordinate pairs, got %d", MinRingSize, len(ring))
	}
	for i, c := range ring {
		if !c.Valid() {
			return fmt.Errorf("vertex %d is out of range", i)
		}
	}
	if ring[0] != ring[len(ring)-1] {
		return fmt.Errorf("is not closed: first and last vertex differ")
	}
	distinct := make(map[Coordinates]struct{}, len(ring))
	for _, c := range ring[:len(ring)-1] {
		distinct[c] = struct{}{}
	}
	if len(distinct) < MinRingSize-1 {
		return fmt.Errorf("needs at least %d distinct vertices, got %d", MinRingSize-1, len(distinct))
	}
	return nil
}
