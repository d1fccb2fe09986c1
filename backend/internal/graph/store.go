package graph

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	apperrors "lakemap/backend/pkg/errors"
	"lakemap/backend/pkg/logger"
)

const constraintViolationCode = "Neo.ClientError.Schema.ConstraintValidationFailed"

// Tx is the unit of work a repository operation runs inside.
type Tx interface {
	Run(ctx context.Context, cypher string, params map[string]any) ([]*neo4j.Record, error)
}

// Work is executed inside a single transaction. Returning an error rolls the
// transaction back.
type Work func(ctx context.Context, tx Tx) error

// Store hands out one transaction per call. The session behind it is
// acquired for the duration of the call and released on every exit path.
type Store interface {
	ReadTx(ctx context.Context, work Work) error
	WriteTx(ctx context.Context, work Work) error
}

// Neo4jStore is the Store backed by a Neo4j driver pool.
type Neo4jStore struct {
	driver   neo4j.DriverWithContext
	database string
	logger   *zap.Logger
	tracer   trace.Tracer
}

// NewNeo4jStore wraps a driver. database may be empty for the server default.
func NewNeo4jStore(driver neo4j.DriverWithContext, database string) *Neo4jStore {
	return &Neo4jStore{
		driver:   driver,
		database: database,
		logger:   logger.Named("graph.store"),
		tracer:   otel.Tracer("lakemap/graph"),
	}
}

// Open creates the driver and verifies connectivity before returning.
func Open(ctx context.Context, uri, user, password, database string, maxPool int, timeout time.Duration) (*Neo4jStore, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""), func(cfg *neo4j.Config) {
		cfg.MaxConnectionPoolSize = maxPool
		cfg.SocketConnectTimeout = timeout
	})
	if err != nil {
		return nil, apperrors.NewGraphConnectionFailed(uri, err)
	}

	verifyCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := driver.VerifyConnectivity(verifyCtx); err != nil {
		_ = driver.Close(ctx)
		return nil, apperrors.NewGraphConnectionFailed(uri, err)
	}

	return NewNeo4jStore(driver, database), nil
}

// Close closes the Neo4j driver connection
func (s *Neo4jStore) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

func (s *Neo4jStore) ReadTx(ctx context.Context, work Work) error {
	return s.execute(ctx, neo4j.AccessModeRead, work)
}

func (s *Neo4jStore) WriteTx(ctx context.Context, work Work) error {
	return s.execute(ctx, neo4j.AccessModeWrite, work)
}

// execute runs work in an explicit transaction so the driver never retries on
// its own; retry decisions belong to the caller.
func (s *Neo4jStore) execute(ctx context.Context, mode neo4j.AccessMode, work Work) (err error) {
	modeName := "read"
	if mode == neo4j.AccessModeWrite {
		modeName = "write"
	}
	ctx, span := s.tracer.Start(ctx, "graph.tx", trace.WithAttributes(attribute.String("graph.access_mode", modeName)))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: mode, DatabaseName: s.database})
	defer session.Close(ctx)

	tx, err := session.BeginTransaction(ctx)
	if err != nil {
		return apperrors.NewStoreUnavailable("begin transaction", err)
	}
	// Close rolls back anything that was not committed.
	defer tx.Close(ctx)

	if err := work(ctx, explicitTx{tx: tx}); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			s.logger.Debug("Rollback failed", zap.String("mode", modeName), zap.Error(rbErr))
		} else {
			s.logger.Debug("Transaction rolled back", zap.String("mode", modeName), zap.Error(err))
		}
		return classifyStoreError("run", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return classifyStoreError("commit", err)
	}
	return nil
}

type explicitTx struct {
	tx neo4j.ExplicitTransaction
}

func (t explicitTx) Run(ctx context.Context, cypher string, params map[string]any) ([]*neo4j.Record, error) {
	result, err := t.tx.Run(ctx, cypher, params)
	if err != nil {
		return nil, err
	}
	return result.Collect(ctx)
}

// classifyStoreError maps driver failures onto the access layer taxonomy.
// Errors that already carry a kind pass through unchanged.
func classifyStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperrors.TypeOf(err); ok {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewStoreUnavailable(op, err)
	}

	var neoErr *neo4j.Neo4jError
	if errors.As(err, &neoErr) {
		switch {
		case neoErr.Code == constraintViolationCode:
			return apperrors.NewConflict(labelFromMessage(neoErr.Msg), err)
		case strings.HasPrefix(neoErr.Code, "Neo.TransientError."):
			return apperrors.NewStoreUnavailable(op, err)
		default:
			return apperrors.NewGraphQueryFailed(op, err)
		}
	}
	if neo4j.IsUsageError(err) {
		return apperrors.NewGraphQueryFailed(op, err)
	}
	// Connectivity errors and anything else the driver raises outside the server.
	return apperrors.NewStoreUnavailable(op, err)
}

// labelFromMessage picks the node label out of a constraint violation message,
// e.g. "Node(12) already exists with label `Route` and property `id` = '...'".
func labelFromMessage(msg string) string {
	const marker = "label `"
	i := strings.Index(msg, marker)
	if i < 0 {
		return "node"
	}
	rest := msg[i+len(marker):]
	if j := strings.Index(rest, "`"); j > 0 {
		return entityName(rest[:j])
	}
	return "node"
}
