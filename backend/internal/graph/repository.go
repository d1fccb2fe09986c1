package graph

import (
	"context"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"lakemap/backend/internal/ident"
	apperrors "lakemap/backend/pkg/errors"
	"lakemap/backend/pkg/logger"
)

// Repository handles all graph reads and writes for the lakemap entities.
// It holds no state between calls; every operation opens its own transaction.
type Repository struct {
	store  Store
	logger *zap.Logger
	newID  func() string
}

// NewRepository creates a new graph repository
func NewRepository(store Store) *Repository {
	return &Repository{
		store:  store,
		logger: logger.Named("graph"),
		newID:  ident.NewKey,
	}
}

// fetchOne runs a single-record read. A malformed id or an empty result is
// reported as NotFound for entity.
func (r *Repository) fetchOne(ctx context.Context, entity, rawID, query string) (*neo4j.Record, error) {
	key, err := ident.Key(strings.TrimSpace(rawID))
	if err != nil {
		return nil, apperrors.NewNotFound(entity, rawID)
	}

	var record *neo4j.Record
	err = r.store.ReadTx(ctx, func(ctx context.Context, tx Tx) error {
		records, err := tx.Run(ctx, query, map[string]any{"id": key})
		if err != nil {
			return err
		}
		if len(records) == 0 {
			return apperrors.NewNotFound(entity, rawID)
		}
		record = records[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// fetchAll runs a list read. No rows is an empty, non-nil slice.
func (r *Repository) fetchAll(ctx context.Context, query string) ([]*neo4j.Record, error) {
	records := []*neo4j.Record{}
	err := r.store.ReadTx(ctx, func(ctx context.Context, tx Tx) error {
		rows, err := tx.Run(ctx, query, nil)
		if err != nil {
			return err
		}
		records = append(records, rows...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// createNode runs a single node-creating statement in its own transaction.
func (r *Repository) createNode(ctx context.Context, query string, params map[string]any) error {
	return r.store.WriteTx(ctx, func(ctx context.Context, tx Tx) error {
		_, err := tx.Run(ctx, query, params)
		return err
	})
}
