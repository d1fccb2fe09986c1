package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"lakemap/backend/internal/ident"
	apperrors "lakemap/backend/pkg/errors"
)

// ============================================================================
// Relationship Resolver
// ============================================================================
//
// Every function here runs inside the caller's transaction. Any error aborts
// that transaction, so a node is never left with a partial edge set.

const attachRoutePointsQuery = `
	MATCH (r:Route {id: $routeID})
	UNWIND $points AS pt
	MATCH (p:Point {id: pt.id})
	CREATE (r)-[:HAS_POINT {position: pt.position}]->(p)
	RETURN count(*) AS created
`

// referenceKey turns caller input into a storage key. Input that is not an
// identifier cannot name an existing node and is rejected up front.
func referenceKey(entity, field, raw string) (string, error) {
	key, err := ident.Key(strings.TrimSpace(raw))
	if err != nil {
		return "", apperrors.NewValidation(entity, field, fmt.Sprintf("%q is not an identifier", raw))
	}
	return key, nil
}

// referenceKeys is referenceKey over a list; repeated ids are rejected since
// each one would otherwise produce a second edge to the same node.
func referenceKeys(entity, field string, raws []string) ([]string, error) {
	keys := make([]string, 0, len(raws))
	seen := make(map[string]int, len(raws))
	for i, raw := range raws {
		key, err := referenceKey(entity, fmt.Sprintf("%s[%d]", field, i), raw)
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[key]; dup {
			return nil, apperrors.NewValidation(entity, field,
				fmt.Sprintf("repeats %s at positions %d and %d", ident.External(key), prev, i))
		}
		seen[key] = i
		keys = append(keys, key)
	}
	return keys, nil
}

// nodeExists resolves a single reference by id.
func nodeExists(ctx context.Context, tx Tx, label, key string) (bool, error) {
	records, err := tx.Run(ctx, existsQuery(label), map[string]any{"id": key})
	if err != nil {
		return false, err
	}
	return len(records) > 0, nil
}

// requireNode fails with a validation error when the reference is missing.
func requireNode(ctx context.Context, tx Tx, entity, field, label, key string) error {
	ok, err := nodeExists(ctx, tx, label, key)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NewValidation(entity, field,
			fmt.Sprintf("references missing %s %s", entityName(label), ident.External(key)))
	}
	return nil
}

// missingKeys resolves keys in one batched lookup and returns the ones with
// no node, preserving request order.
func missingKeys(ctx context.Context, tx Tx, label string, keys []string) ([]string, error) {
	records, err := tx.Run(ctx, resolveIDsQuery(label), map[string]any{"ids": stringsParam(keys)})
	if err != nil {
		return nil, err
	}
	found := make(map[string]struct{}, len(records))
	for _, rec := range records {
		found[getStringFromRecord(rec, "id")] = struct{}{}
	}
	if len(found) == len(keys) {
		return nil, nil
	}
	var missing []string
	for _, key := range keys {
		if _, ok := found[key]; !ok {
			missing = append(missing, key)
		}
	}
	return missing, nil
}

// attach creates one edge and verifies that exactly one was created.
func attach(ctx context.Context, tx Tx, e edge, from, to string) error {
	records, err := tx.Run(ctx, e.attachQuery(), map[string]any{"from": from, "to": to})
	if err != nil {
		return err
	}
	return expectCreated(e.String(), records, 1)
}

func expectCreated(what string, records []*neo4j.Record, want int64) error {
	var created int64
	if len(records) > 0 {
		created = getInt64FromRecord(records[0], "created")
	}
	if created != want {
		return apperrors.NewGraphQueryFailed(what, fmt.Errorf("expected %d edges, created %d", want, created))
	}
	return nil
}

// createRouteGraph writes a route node with its author and point edges.
func createRouteGraph(ctx context.Context, tx Tx, id, authorKey string, pointKeys []string, req CreateRouteRequest) error {
	if err := requireNode(ctx, tx, "route", "author_id", LabelUser, authorKey); err != nil {
		return err
	}

	missing, err := missingKeys(ctx, tx, LabelPoint, pointKeys)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		external := make([]string, 0, len(missing))
		for _, key := range missing {
			external = append(external, ident.External(key))
		}
		return apperrors.NewValidation("route", "point_ids",
			fmt.Sprintf("references %d missing point(s): %s", len(missing), strings.Join(external, ", ")))
	}

	if _, err := tx.Run(ctx, createRouteQuery, map[string]any{
		"id":              id,
		"popularityScore": req.PopularityScore,
		"now":             nowParam(),
	}); err != nil {
		return err
	}

	if err := attach(ctx, tx, routeAuthor, id, authorKey); err != nil {
		return err
	}

	points := make([]any, 0, len(pointKeys))
	for i, key := range pointKeys {
		points = append(points, map[string]any{"id": key, "position": int64(i)})
	}
	records, err := tx.Run(ctx, attachRoutePointsQuery, map[string]any{"routeID": id, "points": points})
	if err != nil {
		return err
	}
	return expectCreated(fmt.Sprintf("(:%s)-[:%s]->(:%s)", LabelRoute, RelHasPoint, LabelPoint), records, int64(len(pointKeys)))
}

// resolvedRefs holds the storage keys of a ticket's references after parsing.
type resolvedRefs struct {
	author string
	route  ident.Ref
	lake   ident.Ref
}

func parseTicketRefs(req CreateTicketRequest) (resolvedRefs, error) {
	var refs resolvedRefs
	var err error
	if refs.author, err = referenceKey("ticket", "author_id", req.AuthorID); err != nil {
		return refs, err
	}
	if refs.route, err = optionalKey("ticket", "route_reference", req.RouteReference); err != nil {
		return refs, err
	}
	if refs.lake, err = optionalKey("ticket", "lake_reference", req.LakeReference); err != nil {
		return refs, err
	}
	return refs, nil
}

func optionalKey(entity, field string, ref ident.Ref) (ident.Ref, error) {
	raw, ok := ref.Get()
	if !ok {
		return ident.Absent(), nil
	}
	key, err := referenceKey(entity, field, raw)
	if err != nil {
		return ident.Absent(), err
	}
	return ident.Present(key), nil
}

// createTicketGraph writes a ticket with its author edge and whichever
// optional reference edges are present. Absent references add nothing.
func createTicketGraph(ctx context.Context, tx Tx, id string, refs resolvedRefs, req CreateTicketRequest) error {
	if err := requireNode(ctx, tx, "ticket", "author_id", LabelUser, refs.author); err != nil {
		return err
	}

	optional := []struct {
		ref   ident.Ref
		field string
		edge  edge
	}{
		{refs.route, "route_reference", ticketRoute},
		{refs.lake, "lake_reference", ticketLake},
	}
	for _, o := range optional {
		if key, ok := o.ref.Get(); ok {
			if err := requireNode(ctx, tx, "ticket", o.field, o.edge.to, key); err != nil {
				return err
			}
		}
	}

	if _, err := tx.Run(ctx, createTicketQuery, map[string]any{
		"id":      id,
		"subject": req.Subject,
		"text":    req.Text,
		"now":     nowParam(),
	}); err != nil {
		return err
	}

	if err := attach(ctx, tx, ticketAuthor, id, refs.author); err != nil {
		return err
	}
	for _, o := range optional {
		if key, ok := o.ref.Get(); ok {
			if err := attach(ctx, tx, o.edge, id, key); err != nil {
				return err
			}
		}
	}
	return nil
}
