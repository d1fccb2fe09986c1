package graph

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Node labels
const (
	LabelUser   = "User"
	LabelPoint  = "Point"
	LabelRoute  = "Route"
	LabelLake   = "Lake"
	LabelTicket = "SupportTicket"
	LabelReview = "Review"
)

// Relationship types
const (
	RelCreatedBy    = "CREATED_BY"
	RelHasPoint     = "HAS_POINT"
	RelReferencedBy = "REFERENCED_BY"
	RelHasReview    = "HAS_REVIEW"
)

// SchemaVersion is recorded on the Migration node once constraints exist.
const SchemaVersion = "lakemap_schema_v1"

// Labels lists every label that carries a unique id.
var Labels = []string{LabelUser, LabelPoint, LabelRoute, LabelLake, LabelTicket, LabelReview}

var entityNames = map[string]string{
	LabelUser:   "user",
	LabelPoint:  "point",
	LabelRoute:  "route",
	LabelLake:   "lake",
	LabelTicket: "ticket",
	LabelReview: "review",
}

func entityName(label string) string {
	if name, ok := entityNames[label]; ok {
		return name
	}
	return strings.ToLower(label)
}

func constraintQuery(label string) string {
	return fmt.Sprintf("CREATE CONSTRAINT %s_id_unique IF NOT EXISTS FOR (n:%s) REQUIRE n.id IS UNIQUE",
		strings.ToLower(label), label)
}

const markSchemaQuery = `
	MERGE (m:Migration {version: $version})
	ON CREATE SET m.applied_at = datetime()
	RETURN m.version AS version
`

const schemaAppliedQuery = `
	MATCH (m:Migration {version: $version})
	RETURN m.version AS version
`

// SchemaApplied reports whether EnsureConstraints has completed against store.
func SchemaApplied(ctx context.Context, store Store) (bool, error) {
	var applied bool
	err := store.ReadTx(ctx, func(ctx context.Context, tx Tx) error {
		records, err := tx.Run(ctx, schemaAppliedQuery, map[string]any{"version": SchemaVersion})
		if err != nil {
			return err
		}
		applied = len(records) > 0
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to check schema version: %w", err)
	}
	return applied, nil
}

// EnsureConstraints creates the id uniqueness constraint for every label and
// records the schema version. Safe to run repeatedly.
func EnsureConstraints(ctx context.Context, store Store, log *zap.Logger) error {
	for i, label := range Labels {
		log.Info("Ensuring constraint",
			zap.Int("step", i+1),
			zap.Int("total", len(Labels)),
			zap.String("label", label),
		)
		query := constraintQuery(label)
		// Schema statements cannot share a transaction with data writes.
		err := store.WriteTx(ctx, func(ctx context.Context, tx Tx) error {
			_, err := tx.Run(ctx, query, nil)
			return err
		})
		if err != nil {
			return fmt.Errorf("failed to create constraint for %s: %w", label, err)
		}
	}

	err := store.WriteTx(ctx, func(ctx context.Context, tx Tx) error {
		_, err := tx.Run(ctx, markSchemaQuery, map[string]any{"version": SchemaVersion})
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to mark schema version: %w", err)
	}

	log.Info("Schema constraints in place", zap.String("version", SchemaVersion))
	return nil
}

// edge describes one relationship type between two labels.
type edge struct {
	from string
	rel  string
	to   string
}

var (
	routeAuthor  = edge{from: LabelRoute, rel: RelCreatedBy, to: LabelUser}
	ticketAuthor = edge{from: LabelTicket, rel: RelCreatedBy, to: LabelUser}
	ticketRoute  = edge{from: LabelTicket, rel: RelReferencedBy, to: LabelRoute}
	ticketLake   = edge{from: LabelTicket, rel: RelReferencedBy, to: LabelLake}
	ticketReview = edge{from: LabelTicket, rel: RelHasReview, to: LabelReview}
)

func (e edge) String() string {
	return fmt.Sprintf("(:%s)-[:%s]->(:%s)", e.from, e.rel, e.to)
}

// attachQuery creates a single edge and reports how many were created, which
// is zero when either endpoint is missing.
func (e edge) attachQuery() string {
	return fmt.Sprintf(`
	MATCH (a:%s {id: $from})
	MATCH (b:%s {id: $to})
	CREATE (a)-[e:%s]->(b)
	RETURN count(e) AS created
`, e.from, e.to, e.rel)
}

func existsQuery(label string) string {
	return fmt.Sprintf("MATCH (n:%s {id: $id}) RETURN n.id AS id", label)
}

func resolveIDsQuery(label string) string {
	return fmt.Sprintf("MATCH (n:%s) WHERE n.id IN $ids RETURN n.id AS id", label)
}
