package geo

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square() []Coordinates {
	return []Coordinates{
		{Latitude: 55.0, Longitude: 37.0},
		{Latitude: 55.0, Longitude: 37.1},
		{Latitude: 55.1, Longitude: 37.1},
		{Latitude: 55.1, Longitude: 37.0},
		{Latitude: 55.0, Longitude: 37.0},
	}
}

func TestValidateRing(t *testing.T) {
	tests := []struct {
		name    string
		ring    []Coordinates
		wantErr string
	}{
		{name: "closed square", ring: square()},
		{name: "triangle", ring: []Coordinates{{1, 1}, {1, 2}, {2, 2}, {1, 1}}},
		{name: "too short", ring: []Coordinates{{1, 1}, {1, 2}, {1, 1}}, wantErr: "at least 4"},
		{name: "open", ring: []Coordinates{{1, 1}, {1, 2}, {2, 2}, {2, 1}}, wantErr: "not closed"},
		{name: "degenerate", ring: []Coordinates{{1, 1}, {1, 2}, {1, 1}, {1, 1}}, wantErr: "distinct"},
		{name: "out of range", ring: []Coordinates{{91, 1}, {1, 2}, {2, 2}, {91, 1}}, wantErr: "out of range"},
		{name: "nan", ring: []Coordinates{{math.NaN(), 1}, {1, 2}, {2, 2}, {1, 1}}, wantErr: "out of range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRing(tt.ring)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewPoint_LonLatOrder(t *testing.T) {
	p := NewPoint(Coordinates{Latitude: 55.75, Longitude: 37.61})

	raw, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"Point","coordinates":[37.61,55.75]}`, string(raw))
	assert.Equal(t, Coordinates{Latitude: 55.75, Longitude: 37.61}, FromLonLat(p.Coordinates))
}

func TestNewPolygon_SingleRing(t *testing.T) {
	poly := NewPolygon(square())

	assert.Equal(t, TypePolygon, poly.Type)
	require.Len(t, poly.Coordinates, 1)
	ring := poly.Coordinates[0]
	assert.Len(t, ring, 5)
	assert.Equal(t, ring[0], ring[len(ring)-1])
	assert.Equal(t, [2]float64{37.1, 55.0}, ring[1])
}
