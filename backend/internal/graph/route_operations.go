package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// ============================================================================
// Route Operations
// ============================================================================

const createRouteQuery = `
	CREATE (r:Route {
		id: $id,
		popularity_score: $popularityScore,
		created_at: datetime($now)
	})
	RETURN r.id AS id
`

// routeProjection collects point ids in HAS_POINT.position order so a route
// reads back in the order it was created with.
const routeProjection = `
	OPTIONAL MATCH (r)-[hp:HAS_POINT]->(p:Point)
	WITH r, hp, p
	ORDER BY hp.position
	WITH r, collect(p.id) AS point_ids
	OPTIONAL MATCH (r)-[:CREATED_BY]->(u:User)
	RETURN r.id AS id, point_ids, u.id AS author_id,
	       r.popularity_score AS popularity_score, r.created_at AS created_at
`

const getRouteQuery = `
	MATCH (r:Route {id: $id})` + routeProjection

const listRoutesQuery = `
	MATCH (r:Route)` + routeProjection

// CreateRoute creates a route together with its CREATED_BY and HAS_POINT
// edges. Nothing is written unless the author and every point exist.
func (r *Repository) CreateRoute(ctx context.Context, req CreateRouteRequest) (string, error) {
	if err := validateRequest("route", req); err != nil {
		return "", err
	}
	authorKey, err := referenceKey("route", "author_id", req.AuthorID)
	if err != nil {
		return "", err
	}
	pointKeys, err := referenceKeys("route", "point_ids", req.PointIDs)
	if err != nil {
		return "", err
	}

	id := r.newID()
	err = r.store.WriteTx(ctx, func(ctx context.Context, tx Tx) error {
		return createRouteGraph(ctx, tx, id, authorKey, pointKeys, req)
	})
	if err != nil {
		return "", fmt.Errorf("failed to create route: %w", err)
	}

	r.logger.Info("Route created",
		zap.String("route_id", id),
		zap.String("author_id", authorKey),
		zap.Int("points", len(pointKeys)),
	)
	return id, nil
}

// GetRoute fetches one route with its point ids and author
func (r *Repository) GetRoute(ctx context.Context, id string) (*Route, error) {
	record, err := r.fetchOne(ctx, "route", id, getRouteQuery)
	if err != nil {
		return nil, err
	}
	route := routeFromRecord(record)
	return &route, nil
}

// ListRoutes returns every route in store order
func (r *Repository) ListRoutes(ctx context.Context) ([]Route, error) {
	records, err := r.fetchAll(ctx, listRoutesQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to list routes: %w", err)
	}
	routes := make([]Route, 0, len(records))
	for _, record := range records {
		routes = append(routes, routeFromRecord(record))
	}
	return routes, nil
}

func routeFromRecord(record *neo4j.Record) Route {
	return Route{
		ID:              getStringFromRecord(record, "id"),
		PointIDs:        getStringSliceFromRecord(record, "point_ids"),
		AuthorID:        getStringFromRecord(record, "author_id"),
		PopularityScore: getFloat64FromRecord(record, "popularity_score"),
		CreatedAt:       getTimeFromRecord(record, "created_at"),
	}
}
