package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"lakemap/backend/internal/geo"
	apperrors "lakemap/backend/pkg/errors"
)

// ============================================================================
// Lake Operations
// ============================================================================

const createLakeQuery = `
	CREATE (l:Lake {
		id: $id,
		name: $name,
		description: $description,
		boundary: [c IN $boundary | point({latitude: c.latitude, longitude: c.longitude})],
		availability_score: $availabilityScore,
		max_depth: $maxDepth,
		salinity: $salinity,
		inflowing_rivers: $inflowingRivers,
		outflowing_rivers: $outflowingRivers
	})
	RETURN l.id AS id
`

const lakeProjection = `
	RETURN l.id AS id, l.name AS name, l.description AS description, l.boundary AS boundary,
	       l.availability_score AS availability_score, l.max_depth AS max_depth,
	       l.salinity AS salinity, l.inflowing_rivers AS inflowing_rivers,
	       l.outflowing_rivers AS outflowing_rivers
`

const getLakeQuery = `
	MATCH (l:Lake {id: $id})` + lakeProjection

const listLakesQuery = `
	MATCH (l:Lake)` + lakeProjection

// CreateLake creates a lake node after checking that its boundary is a
// closed ring.
func (r *Repository) CreateLake(ctx context.Context, req CreateLakeRequest) (string, error) {
	if err := validateRequest("lake", req); err != nil {
		return "", err
	}
	if err := geo.ValidateRing(req.Boundary); err != nil {
		return "", apperrors.NewValidation("lake", "coordinates_boundary", err.Error())
	}

	id := r.newID()
	err := r.createNode(ctx, createLakeQuery, map[string]any{
		"id":                id,
		"name":              req.Name,
		"description":       req.Description,
		"boundary":          ringParams(req.Boundary),
		"availabilityScore": req.AvailabilityScore,
		"maxDepth":          req.MaxDepth,
		"salinity":          req.Salinity,
		"inflowingRivers":   stringsParam(req.InflowingRivers),
		"outflowingRivers":  stringsParam(req.OutflowingRivers),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create lake: %w", err)
	}

	r.logger.Info("Lake created", zap.String("lake_id", id), zap.String("name", req.Name))
	return id, nil
}

// GetLake fetches one lake by id
func (r *Repository) GetLake(ctx context.Context, id string) (*Lake, error) {
	record, err := r.fetchOne(ctx, "lake", id, getLakeQuery)
	if err != nil {
		return nil, err
	}
	lake := lakeFromRecord(record)
	return &lake, nil
}

// ListLakes returns every lake in store order
func (r *Repository) ListLakes(ctx context.Context) ([]Lake, error) {
	records, err := r.fetchAll(ctx, listLakesQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to list lakes: %w", err)
	}
	lakes := make([]Lake, 0, len(records))
	for _, record := range records {
		lakes = append(lakes, lakeFromRecord(record))
	}
	return lakes, nil
}

func lakeFromRecord(record *neo4j.Record) Lake {
	return Lake{
		ID:                getStringFromRecord(record, "id"),
		Name:              getStringFromRecord(record, "name"),
		Description:       getStringFromRecord(record, "description"),
		Boundary:          getRingFromRecord(record, "boundary"),
		AvailabilityScore: getFloat64FromRecord(record, "availability_score"),
		MaxDepth:          getFloat64FromRecord(record, "max_depth"),
		Salinity:          getFloat64FromRecord(record, "salinity"),
		InflowingRivers:   getStringSliceFromRecord(record, "inflowing_rivers"),
		OutflowingRivers:  getStringSliceFromRecord(record, "outflowing_rivers"),
	}
}
