package graph

import (
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"lakemap/backend/internal/geo"
	"lakemap/backend/internal/ident"
)

// ============================================================================
// Helper Functions
// ============================================================================

// wgs84 is the SRID Neo4j assigns to point({latitude, longitude}).
const wgs84 = 4326

func getStringFromRecord(record *neo4j.Record, key string) string {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return ""
	}
	if str, ok := val.(string); ok {
		return str
	}
	return ""
}

func getFloat64FromRecord(record *neo4j.Record, key string) float64 {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return 0.0
	}
	return toFloat64(val)
}

// toFloat64 renders integer-valued scores as floats; Cypher keeps 1 and 1.0 apart.
func toFloat64(val any) float64 {
	switch v := val.(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	}
	return 0.0
}

func getInt64FromRecord(record *neo4j.Record, key string) int64 {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return 0
	}
	if i, ok := val.(int64); ok {
		return i
	}
	if i, ok := val.(int); ok {
		return int64(i)
	}
	return 0
}

func getStringSliceFromRecord(record *neo4j.Record, key string) []string {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return []string{}
	}
	if slice, ok := val.([]interface{}); ok {
		result := make([]string, 0, len(slice))
		for _, v := range slice {
			if str, ok := v.(string); ok {
				result = append(result, str)
			}
		}
		return result
	}
	if slice, ok := val.([]string); ok {
		return append([]string{}, slice...)
	}
	return []string{}
}

func getTimeFromRecord(record *neo4j.Record, key string) time.Time {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return time.Time{}
	}
	return toTime(val)
}

// Neo4j datetime values come as time.Time
func toTime(val any) time.Time {
	switch v := val.(type) {
	case time.Time:
		return v
	case dbtype.LocalDateTime:
		return time.Time(v)
	case string:
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

func getRefFromRecord(record *neo4j.Record, key string) ident.Ref {
	id := getStringFromRecord(record, key)
	if id == "" {
		return ident.Absent()
	}
	return ident.Present(id)
}

func getCoordinatesFromRecord(record *neo4j.Record, key string) geo.Coordinates {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return geo.Coordinates{}
	}
	return toCoordinates(val)
}

// toCoordinates reads a WGS-84 point. Cartesian points carry no latitude and
// longitude and read as the zero value.
func toCoordinates(val any) geo.Coordinates {
	var p neo4j.Point2D
	switch v := val.(type) {
	case neo4j.Point2D:
		p = v
	case *neo4j.Point2D:
		if v == nil {
			return geo.Coordinates{}
		}
		p = *v
	default:
		return geo.Coordinates{}
	}
	if p.SpatialRefId != wgs84 {
		return geo.Coordinates{}
	}
	return geo.Coordinates{Latitude: p.Y, Longitude: p.X}
}

func getRingFromRecord(record *neo4j.Record, key string) []geo.Coordinates {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return []geo.Coordinates{}
	}
	list, ok := val.([]interface{})
	if !ok {
		return []geo.Coordinates{}
	}
	ring := make([]geo.Coordinates, 0, len(list))
	for _, v := range list {
		ring = append(ring, toCoordinates(v))
	}
	return ring
}

func getStringFromMap(m map[string]interface{}, key, defaultValue string) string {
	val, ok := m[key]
	if !ok || val == nil {
		return defaultValue
	}
	if str, ok := val.(string); ok {
		return str
	}
	return defaultValue
}

func coordinateParams(c geo.Coordinates) map[string]any {
	return map[string]any{"latitude": c.Latitude, "longitude": c.Longitude}
}

func ringParams(ring []geo.Coordinates) []any {
	out := make([]any, 0, len(ring))
	for _, c := range ring {
		out = append(out, coordinateParams(c))
	}
	return out
}

func stringsParam(values []string) []any {
	out := make([]any, 0, len(values))
	for _, v := range values {
		out = append(out, v)
	}
	return out
}

func nowParam() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
