package graph

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	apperrors "lakemap/backend/pkg/errors"
)

// memStore is an in-memory Store for unit tests. It understands exactly the
// statements this package issues. Writes go to a copy of the graph that is
// swapped in only when the work function succeeds.
type memStore struct {
	mu       sync.Mutex
	g        *memGraph
	handlers map[string]memHandler

	beginErr  error
	failQuery string
	failErr   error

	readTxs  int
	writeTxs int
	queries  []string
}

type memHandler func(g *memGraph, params map[string]any) ([]*neo4j.Record, error)

type memEdge struct {
	fromLabel, from string
	rel             string
	toLabel, to     string
	props           map[string]any
}

type memGraph struct {
	nodes map[string]map[string]map[string]any // label -> id -> props
	order map[string][]string
	edges []memEdge
	meta  map[string]any
}

func newMemStore() *memStore {
	s := &memStore{g: newMemGraph()}
	s.handlers = s.buildHandlers()
	return s
}

func newMemGraph() *memGraph {
	return &memGraph{
		nodes: make(map[string]map[string]map[string]any),
		order: make(map[string][]string),
		meta:  make(map[string]any),
	}
}

func (g *memGraph) clone() *memGraph {
	c := newMemGraph()
	for label, byID := range g.nodes {
		c.nodes[label] = make(map[string]map[string]any, len(byID))
		for id, props := range byID {
			cp := make(map[string]any, len(props))
			for k, v := range props {
				cp[k] = v
			}
			c.nodes[label][id] = cp
		}
	}
	for label, ids := range g.order {
		c.order[label] = append([]string(nil), ids...)
	}
	c.edges = append([]memEdge(nil), g.edges...)
	for k, v := range g.meta {
		c.meta[k] = v
	}
	return c
}

func (g *memGraph) node(label, id string) (map[string]any, bool) {
	props, ok := g.nodes[label][id]
	return props, ok
}

func (g *memGraph) addNode(label string, props map[string]any) error {
	id, _ := props["id"].(string)
	if _, exists := g.nodes[label][id]; exists {
		return &neo4j.Neo4jError{
			Code: constraintViolationCode,
			Msg:  fmt.Sprintf("Node(%d) already exists with label `%s` and property `id` = '%s'", len(g.order[label]), label, id),
		}
	}
	if g.nodes[label] == nil {
		g.nodes[label] = make(map[string]map[string]any)
	}
	g.nodes[label][id] = props
	g.order[label] = append(g.order[label], id)
	return nil
}

func (g *memGraph) outgoing(from, rel, toLabel string) []memEdge {
	var out []memEdge
	for _, e := range g.edges {
		if e.from == from && e.rel == rel && e.toLabel == toLabel {
			out = append(out, e)
		}
	}
	return out
}

// Assertion helpers used by tests.

func (s *memStore) count(label string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.g.order[label])
}

func (s *memStore) edgeCount(rel string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.g.edges {
		if e.rel == rel {
			n++
		}
	}
	return n
}

func (s *memStore) edgesFrom(id string) []memEdge {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []memEdge
	for _, e := range s.g.edges {
		if e.from == id {
			out = append(out, e)
		}
	}
	return out
}

func (s *memStore) txCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readTxs + s.writeTxs
}

// Store implementation

func (s *memStore) ReadTx(ctx context.Context, work Work) error {
	return s.execute(ctx, false, work)
}

func (s *memStore) WriteTx(ctx context.Context, work Work) error {
	return s.execute(ctx, true, work)
}

func (s *memStore) execute(ctx context.Context, write bool, work Work) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if write {
		s.writeTxs++
	} else {
		s.readTxs++
	}
	if s.beginErr != nil {
		return apperrors.NewStoreUnavailable("begin transaction", s.beginErr)
	}

	tx := &memTx{store: s, g: s.g.clone(), write: write}
	if err := work(ctx, tx); err != nil {
		return classifyStoreError("run", err)
	}
	if write {
		s.g = tx.g
	}
	return nil
}

type memTx struct {
	store *memStore
	g     *memGraph
	write bool
}

func (t *memTx) Run(ctx context.Context, cypher string, params map[string]any) ([]*neo4j.Record, error) {
	t.store.queries = append(t.store.queries, cypher)
	if t.store.failQuery != "" && cypher == t.store.failQuery {
		return nil, t.store.failErr
	}
	h, ok := t.store.handlers[cypher]
	if !ok {
		return nil, fmt.Errorf("memstore: unexpected query:\n%s", cypher)
	}
	return h(t.g, params)
}

func rec(keys []string, values ...any) *neo4j.Record {
	return &neo4j.Record{Keys: keys, Values: values}
}

func paramTime(params map[string]any) time.Time {
	s, _ := params["now"].(string)
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

func wgsPoint(lat, lon float64) neo4j.Point2D {
	return neo4j.Point2D{X: lon, Y: lat, SpatialRefId: wgs84}
}

func (s *memStore) buildHandlers() map[string]memHandler {
	h := map[string]memHandler{}

	for _, label := range Labels {
		label := label
		h[constraintQuery(label)] = func(g *memGraph, _ map[string]any) ([]*neo4j.Record, error) {
			g.meta["constraint:"+label] = true
			return nil, nil
		}
		h[existsQuery(label)] = func(g *memGraph, params map[string]any) ([]*neo4j.Record, error) {
			id, _ := params["id"].(string)
			if _, ok := g.node(label, id); !ok {
				return nil, nil
			}
			return []*neo4j.Record{rec([]string{"id"}, id)}, nil
		}
		h[resolveIDsQuery(label)] = func(g *memGraph, params map[string]any) ([]*neo4j.Record, error) {
			var out []*neo4j.Record
			ids, _ := params["ids"].([]any)
			for _, raw := range ids {
				id, _ := raw.(string)
				if _, ok := g.node(label, id); ok {
					out = append(out, rec([]string{"id"}, id))
				}
			}
			return out, nil
		}
	}

	h[markSchemaQuery] = func(g *memGraph, params map[string]any) ([]*neo4j.Record, error) {
		g.meta["schema_version"] = params["version"]
		return []*neo4j.Record{rec([]string{"version"}, params["version"])}, nil
	}

	h[schemaAppliedQuery] = func(g *memGraph, params map[string]any) ([]*neo4j.Record, error) {
		if v, ok := g.meta["schema_version"]; ok && v == params["version"] {
			return []*neo4j.Record{rec([]string{"version"}, v)}, nil
		}
		return nil, nil
	}

	for _, e := range []edge{routeAuthor, ticketAuthor, ticketRoute, ticketLake, ticketReview} {
		e := e
		h[e.attachQuery()] = func(g *memGraph, params map[string]any) ([]*neo4j.Record, error) {
			from, _ := params["from"].(string)
			to, _ := params["to"].(string)
			_, okFrom := g.node(e.from, from)
			_, okTo := g.node(e.to, to)
			if !okFrom || !okTo {
				return []*neo4j.Record{rec([]string{"created"}, int64(0))}, nil
			}
			g.edges = append(g.edges, memEdge{fromLabel: e.from, from: from, rel: e.rel, toLabel: e.to, to: to})
			return []*neo4j.Record{rec([]string{"created"}, int64(1))}, nil
		}
	}

	h[attachRoutePointsQuery] = func(g *memGraph, params map[string]any) ([]*neo4j.Record, error) {
		routeID, _ := params["routeID"].(string)
		if _, ok := g.node(LabelRoute, routeID); !ok {
			return []*neo4j.Record{rec([]string{"created"}, int64(0))}, nil
		}
		var created int64
		points, _ := params["points"].([]any)
		for _, raw := range points {
			pt, _ := raw.(map[string]any)
			id, _ := pt["id"].(string)
			if _, ok := g.node(LabelPoint, id); !ok {
				continue
			}
			g.edges = append(g.edges, memEdge{
				fromLabel: LabelRoute, from: routeID, rel: RelHasPoint, toLabel: LabelPoint, to: id,
				props: map[string]any{"position": pt["position"]},
			})
			created++
		}
		return []*neo4j.Record{rec([]string{"created"}, created)}, nil
	}

	create := func(label string, build func(params map[string]any) map[string]any) memHandler {
		return func(g *memGraph, params map[string]any) ([]*neo4j.Record, error) {
			props := build(params)
			if err := g.addNode(label, props); err != nil {
				return nil, err
			}
			return []*neo4j.Record{rec([]string{"id"}, props["id"])}, nil
		}
	}

	h[createUserQuery] = create(LabelUser, func(p map[string]any) map[string]any {
		now := paramTime(p)
		return map[string]any{
			"id": p["id"], "name": p["name"], "email": p["email"], "avatar_url": p["avatarURL"],
			"created_at": now, "updated_at": now,
		}
	})
	h[createPointQuery] = create(LabelPoint, func(p map[string]any) map[string]any {
		return map[string]any{
			"id":           p["id"],
			"location":     wgsPoint(p["latitude"].(float64), p["longitude"].(float64)),
			"description":  p["description"],
			"availability": p["availability"],
		}
	})
	h[createRouteQuery] = create(LabelRoute, func(p map[string]any) map[string]any {
		return map[string]any{"id": p["id"], "popularity_score": p["popularityScore"], "created_at": paramTime(p)}
	})
	h[createLakeQuery] = create(LabelLake, func(p map[string]any) map[string]any {
		var boundary []any
		for _, raw := range p["boundary"].([]any) {
			c := raw.(map[string]any)
			boundary = append(boundary, wgsPoint(c["latitude"].(float64), c["longitude"].(float64)))
		}
		return map[string]any{
			"id": p["id"], "name": p["name"], "description": p["description"], "boundary": boundary,
			"availability_score": p["availabilityScore"], "max_depth": p["maxDepth"], "salinity": p["salinity"],
			"inflowing_rivers": p["inflowingRivers"], "outflowing_rivers": p["outflowingRivers"],
		}
	})
	h[createTicketQuery] = create(LabelTicket, func(p map[string]any) map[string]any {
		return map[string]any{"id": p["id"], "subject": p["subject"], "text": p["text"], "created_at": paramTime(p)}
	})
	h[createReviewQuery] = create(LabelReview, func(p map[string]any) map[string]any {
		return map[string]any{"id": p["id"], "text": p["text"], "photo_url": p["photoURL"], "created_at": paramTime(p)}
	})

	reads := func(label string, project func(g *memGraph, props map[string]any) *neo4j.Record) (memHandler, memHandler) {
		get := func(g *memGraph, params map[string]any) ([]*neo4j.Record, error) {
			id, _ := params["id"].(string)
			props, ok := g.node(label, id)
			if !ok {
				return nil, nil
			}
			return []*neo4j.Record{project(g, props)}, nil
		}
		list := func(g *memGraph, _ map[string]any) ([]*neo4j.Record, error) {
			var out []*neo4j.Record
			for _, id := range g.order[label] {
				out = append(out, project(g, g.nodes[label][id]))
			}
			return out, nil
		}
		return get, list
	}

	h[getUserQuery], h[listUsersQuery] = reads(LabelUser, func(_ *memGraph, p map[string]any) *neo4j.Record {
		return rec([]string{"id", "name", "email", "avatar_url", "created_at", "updated_at"},
			p["id"], p["name"], p["email"], p["avatar_url"], p["created_at"], p["updated_at"])
	})
	h[getPointQuery], h[listPointsQuery] = reads(LabelPoint, func(_ *memGraph, p map[string]any) *neo4j.Record {
		return rec([]string{"id", "location", "description", "availability"},
			p["id"], p["location"], p["description"], p["availability"])
	})
	h[getRouteQuery], h[listRoutesQuery] = reads(LabelRoute, func(g *memGraph, p map[string]any) *neo4j.Record {
		id := p["id"].(string)
		hasPoint := g.outgoing(id, RelHasPoint, LabelPoint)
		sort.SliceStable(hasPoint, func(i, j int) bool {
			return hasPoint[i].props["position"].(int64) < hasPoint[j].props["position"].(int64)
		})
		pointIDs := make([]any, 0, len(hasPoint))
		for _, e := range hasPoint {
			pointIDs = append(pointIDs, e.to)
		}
		var author any
		if edges := g.outgoing(id, RelCreatedBy, LabelUser); len(edges) > 0 {
			author = edges[0].to
		}
		return rec([]string{"id", "point_ids", "author_id", "popularity_score", "created_at"},
			id, pointIDs, author, p["popularity_score"], p["created_at"])
	})
	h[getLakeQuery], h[listLakesQuery] = reads(LabelLake, func(_ *memGraph, p map[string]any) *neo4j.Record {
		return rec([]string{"id", "name", "description", "boundary", "availability_score", "max_depth",
			"salinity", "inflowing_rivers", "outflowing_rivers"},
			p["id"], p["name"], p["description"], p["boundary"], p["availability_score"], p["max_depth"],
			p["salinity"], p["inflowing_rivers"], p["outflowing_rivers"])
	})
	h[getTicketQuery], h[listTicketsQuery] = reads(LabelTicket, func(g *memGraph, p map[string]any) *neo4j.Record {
		id := p["id"].(string)
		first := func(rel, toLabel string) any {
			if edges := g.outgoing(id, rel, toLabel); len(edges) > 0 {
				return edges[0].to
			}
			return nil
		}
		var reviews []any
		for _, e := range g.outgoing(id, RelHasReview, LabelReview) {
			rv, _ := g.node(LabelReview, e.to)
			reviews = append(reviews, map[string]any{
				"id": rv["id"], "text": rv["text"], "photo_url": rv["photo_url"], "created_at": rv["created_at"],
			})
		}
		if reviews == nil {
			reviews = []any{}
		}
		return rec([]string{"id", "author_id", "subject", "text", "created_at", "route_reference", "lake_reference", "reviews"},
			id, first(RelCreatedBy, LabelUser), p["subject"], p["text"], p["created_at"],
			first(RelReferencedBy, LabelRoute), first(RelReferencedBy, LabelLake), reviews)
	})

	return h
}
