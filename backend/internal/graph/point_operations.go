package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// ============================================================================
// Point Operations
// ============================================================================

const createPointQuery = `
	CREATE (p:Point {
		id: $id,
		location: point({latitude: $latitude, longitude: $longitude}),
		description: $description,
		availability: $availability
	})
	RETURN p.id AS id
`

const pointProjection = `
	RETURN p.id AS id, p.location AS location, p.description AS description,
	       p.availability AS availability
`

const getPointQuery = `
	MATCH (p:Point {id: $id})` + pointProjection

const listPointsQuery = `
	MATCH (p:Point)` + pointProjection

// CreatePoint creates a point node and returns its id
func (r *Repository) CreatePoint(ctx context.Context, req CreatePointRequest) (string, error) {
	if err := validateRequest("point", req); err != nil {
		return "", err
	}

	id := r.newID()
	err := r.createNode(ctx, createPointQuery, map[string]any{
		"id":           id,
		"latitude":     req.Coordinates.Latitude,
		"longitude":    req.Coordinates.Longitude,
		"description":  req.Description,
		"availability": req.Availability,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create point: %w", err)
	}

	r.logger.Info("Point created", zap.String("point_id", id))
	return id, nil
}

// GetPoint fetches one point by id
func (r *Repository) GetPoint(ctx context.Context, id string) (*Point, error) {
	record, err := r.fetchOne(ctx, "point", id, getPointQuery)
	if err != nil {
		return nil, err
	}
	point := pointFromRecord(record)
	return &point, nil
}

// ListPoints returns every point in store order
func (r *Repository) ListPoints(ctx context.Context) ([]Point, error) {
	records, err := r.fetchAll(ctx, listPointsQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to list points: %w", err)
	}
	points := make([]Point, 0, len(records))
	for _, record := range records {
		points = append(points, pointFromRecord(record))
	}
	return points, nil
}

func pointFromRecord(record *neo4j.Record) Point {
	return Point{
		ID:           getStringFromRecord(record, "id"),
		Coordinates:  getCoordinatesFromRecord(record, "location"),
		Description:  getStringFromRecord(record, "description"),
		Availability: getFloat64FromRecord(record, "availability"),
	}
}
