package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// ============================================================================
// User Operations
// ============================================================================

const createUserQuery = `
	CREATE (u:User {
		id: $id,
		name: $name,
		email: $email,
		avatar_url: $avatarURL,
		created_at: datetime($now),
		updated_at: datetime($now)
	})
	RETURN u.id AS id
`

const userProjection = `
	RETURN u.id AS id, u.name AS name, u.email AS email, u.avatar_url AS avatar_url,
	       u.created_at AS created_at, u.updated_at AS updated_at
`

const getUserQuery = `
	MATCH (u:User {id: $id})` + userProjection

const listUsersQuery = `
	MATCH (u:User)` + userProjection

// CreateUser creates a user node and returns its id
func (r *Repository) CreateUser(ctx context.Context, req CreateUserRequest) (string, error) {
	if err := validateRequest("user", req); err != nil {
		return "", err
	}

	id := r.newID()
	err := r.createNode(ctx, createUserQuery, map[string]any{
		"id":        id,
		"name":      req.Name,
		"email":     req.Email,
		"avatarURL": req.AvatarURL,
		"now":       nowParam(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create user: %w", err)
	}

	r.logger.Info("User created", zap.String("user_id", id))
	return id, nil
}

// GetUser fetches one user by id
func (r *Repository) GetUser(ctx context.Context, id string) (*User, error) {
	record, err := r.fetchOne(ctx, "user", id, getUserQuery)
	if err != nil {
		return nil, err
	}
	user := userFromRecord(record)
	return &user, nil
}

// ListUsers returns every user in store order
func (r *Repository) ListUsers(ctx context.Context) ([]User, error) {
	records, err := r.fetchAll(ctx, listUsersQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	users := make([]User, 0, len(records))
	for _, record := range records {
		users = append(users, userFromRecord(record))
	}
	return users, nil
}

func userFromRecord(record *neo4j.Record) User {
	return User{
		ID:        getStringFromRecord(record, "id"),
		Name:      getStringFromRecord(record, "name"),
		Email:     getStringFromRecord(record, "email"),
		AvatarURL: getStringFromRecord(record, "avatar_url"),
		CreatedAt: getTimeFromRecord(record, "created_at"),
		UpdatedAt: getTimeFromRecord(record, "updated_at"),
	}
}
