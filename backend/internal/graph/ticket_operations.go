package graph

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"lakemap/backend/internal/ident"
	apperrors "lakemap/backend/pkg/errors"
)

// ============================================================================
// Support Ticket Operations
// ============================================================================

const createTicketQuery = `
	CREATE (s:SupportTicket {
		id: $id,
		subject: $subject,
		text: $text,
		created_at: datetime($now)
	})
	RETURN s.id AS id
`

const createReviewQuery = `
	CREATE (rv:Review {
		id: $id,
		text: $text,
		photo_url: $photoURL,
		created_at: datetime($now)
	})
	RETURN rv.id AS id
`

const ticketProjection = `
	OPTIONAL MATCH (s)-[:CREATED_BY]->(u:User)
	OPTIONAL MATCH (s)-[:REFERENCED_BY]->(r:Route)
	OPTIONAL MATCH (s)-[:REFERENCED_BY]->(l:Lake)
	OPTIONAL MATCH (s)-[:HAS_REVIEW]->(rv:Review)
	WITH s, u, r, l, rv
	ORDER BY rv.created_at
	WITH s, u, r, l, collect(rv {.id, .text, .photo_url, .created_at}) AS reviews
	RETURN s.id AS id, u.id AS author_id, s.subject AS subject, s.text AS text,
	       s.created_at AS created_at, r.id AS route_reference, l.id AS lake_reference, reviews
`

const getTicketQuery = `
	MATCH (s:SupportTicket {id: $id})` + ticketProjection

const listTicketsQuery = `
	MATCH (s:SupportTicket)` + ticketProjection

// CreateTicket creates a support ticket. The author must exist; route and lake
// references are attached only when present, and must exist when they are.
func (r *Repository) CreateTicket(ctx context.Context, req CreateTicketRequest) (string, error) {
	if err := validateRequest("ticket", req); err != nil {
		return "", err
	}
	refs, err := parseTicketRefs(req)
	if err != nil {
		return "", err
	}

	id := r.newID()
	err = r.store.WriteTx(ctx, func(ctx context.Context, tx Tx) error {
		return createTicketGraph(ctx, tx, id, refs, req)
	})
	if err != nil {
		return "", fmt.Errorf("failed to create ticket: %w", err)
	}

	r.logger.Info("Support ticket created",
		zap.String("ticket_id", id),
		zap.String("author_id", refs.author),
		zap.Bool("route_reference", refs.route.IsPresent()),
		zap.Bool("lake_reference", refs.lake.IsPresent()),
	)
	return id, nil
}

// AddTicketReview attaches a new review to an existing ticket
func (r *Repository) AddTicketReview(ctx context.Context, ticketID string, req CreateReviewRequest) (string, error) {
	if err := validateRequest("review", req); err != nil {
		return "", err
	}
	ticketKey, err := ident.Key(strings.TrimSpace(ticketID))
	if err != nil {
		return "", apperrors.NewNotFound("ticket", ticketID)
	}

	id := r.newID()
	err = r.store.WriteTx(ctx, func(ctx context.Context, tx Tx) error {
		ok, err := nodeExists(ctx, tx, LabelTicket, ticketKey)
		if err != nil {
			return err
		}
		if !ok {
			return apperrors.NewNotFound("ticket", ticketID)
		}
		if _, err := tx.Run(ctx, createReviewQuery, map[string]any{
			"id":       id,
			"text":     req.Text,
			"photoURL": req.PhotoURL,
			"now":      nowParam(),
		}); err != nil {
			return err
		}
		return attach(ctx, tx, ticketReview, ticketKey, id)
	})
	if err != nil {
		return "", fmt.Errorf("failed to add review: %w", err)
	}

	r.logger.Info("Review added", zap.String("ticket_id", ticketKey), zap.String("review_id", id))
	return id, nil
}

// GetTicket fetches one ticket with its references and reviews
func (r *Repository) GetTicket(ctx context.Context, id string) (*SupportTicket, error) {
	record, err := r.fetchOne(ctx, "ticket", id, getTicketQuery)
	if err != nil {
		return nil, err
	}
	ticket := ticketFromRecord(record)
	return &ticket, nil
}

// ListTickets returns every ticket in store order
func (r *Repository) ListTickets(ctx context.Context) ([]SupportTicket, error) {
	records, err := r.fetchAll(ctx, listTicketsQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	tickets := make([]SupportTicket, 0, len(records))
	for _, record := range records {
		tickets = append(tickets, ticketFromRecord(record))
	}
	return tickets, nil
}

func ticketFromRecord(record *neo4j.Record) SupportTicket {
	return SupportTicket{
		ID:             getStringFromRecord(record, "id"),
		AuthorID:       getStringFromRecord(record, "author_id"),
		Subject:        getStringFromRecord(record, "subject"),
		Text:           getStringFromRecord(record, "text"),
		CreatedAt:      getTimeFromRecord(record, "created_at"),
		RouteReference: getRefFromRecord(record, "route_reference"),
		LakeReference:  getRefFromRecord(record, "lake_reference"),
		Reviews:        reviewsFromRecord(record, "reviews"),
	}
}

func reviewsFromRecord(record *neo4j.Record, key string) []Review {
	reviews := []Review{}
	val, ok := record.Get(key)
	if !ok || val == nil {
		return reviews
	}
	list, ok := val.([]interface{})
	if !ok {
		return reviews
	}
	for _, item := range list {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		id := getStringFromMap(m, "id", "")
		if id == "" {
			continue
		}
		reviews = append(reviews, Review{
			ID:        id,
			Text:      getStringFromMap(m, "text", ""),
			PhotoURL:  getStringFromMap(m, "photo_url", ""),
			CreatedAt: toTime(m["created_at"]),
		})
	}
	// The query orders by created_at already; keep it stable for equal stamps.
	sort.SliceStable(reviews, func(i, j int) bool {
		return reviews[i].CreatedAt.Before(reviews[j].CreatedAt)
	})
	return reviews
}
