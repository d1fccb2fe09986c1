// Package dataset snapshots the whole lakemap graph into a portable document
// and recreates a snapshot in another graph.
package dataset

import (
	"context"
	"time"

	"lakemap/backend/internal/geo"
	"lakemap/backend/internal/graph"
)

// Version is the document layout written by Export.
const Version = 1

// Dataset is one snapshot of every entity kind. Ids are in external form.
type Dataset struct {
	Version    int       `json:"version" yaml:"version"`
	ExportedAt time.Time `json:"exported_at" yaml:"exported_at"`
	Users      []User    `json:"users" yaml:"users"`
	Points     []Point   `json:"points" yaml:"points"`
	Lakes      []Lake    `json:"lakes" yaml:"lakes"`
	Routes     []Route   `json:"routes" yaml:"routes"`
	Tickets    []Ticket  `json:"tickets" yaml:"tickets"`
}

type User struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Email     string    `json:"email" yaml:"email"`
	AvatarURL string    `json:"avatar_url,omitempty" yaml:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

type Point struct {
	ID           string          `json:"id" yaml:"id"`
	Coordinates  geo.Coordinates `json:"coordinates" yaml:"coordinates"`
	Description  string          `json:"description,omitempty" yaml:"description,omitempty"`
	Availability float64         `json:"availability" yaml:"availability"`
}

type Lake struct {
	ID                string            `json:"id" yaml:"id"`
	Name              string            `json:"name" yaml:"name"`
	Description       string            `json:"description,omitempty" yaml:"description,omitempty"`
	Boundary          []geo.Coordinates `json:"coordinates_boundary" yaml:"coordinates_boundary"`
	AvailabilityScore float64           `json:"availability_score" yaml:"availability_score"`
	MaxDepth          float64           `json:"max_depth" yaml:"max_depth"`
	Salinity          float64           `json:"salinity" yaml:"salinity"`
	InflowingRivers   []string          `json:"inflowing_rivers,omitempty" yaml:"inflowing_rivers,omitempty"`
	OutflowingRivers  []string          `json:"outflowing_rivers,omitempty" yaml:"outflowing_rivers,omitempty"`
}

type Route struct {
	ID              string    `json:"id" yaml:"id"`
	PointIDs        []string  `json:"point_ids" yaml:"point_ids"`
	AuthorID        string    `json:"author_id" yaml:"author_id"`
	PopularityScore float64   `json:"popularity_score" yaml:"popularity_score"`
	CreatedAt       time.Time `json:"created_at" yaml:"created_at"`
}

// Ticket references are empty when absent.
type Ticket struct {
	ID             string    `json:"id" yaml:"id"`
	AuthorID       string    `json:"author_id" yaml:"author_id"`
	Subject        string    `json:"subject" yaml:"subject"`
	Text           string    `json:"text" yaml:"text"`
	RouteReference string    `json:"route_reference,omitempty" yaml:"route_reference,omitempty"`
	LakeReference  string    `json:"lake_reference,omitempty" yaml:"lake_reference,omitempty"`
	CreatedAt      time.Time `json:"created_at" yaml:"created_at"`
	Reviews        []Review  `json:"reviews,omitempty" yaml:"reviews,omitempty"`
}

type Review struct {
	ID        string    `json:"id" yaml:"id"`
	Text      string    `json:"text" yaml:"text"`
	PhotoURL  string    `json:"photo_url,omitempty" yaml:"photo_url,omitempty"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// Source is the read side a snapshot is taken from.
type Source interface {
	ListUsers(ctx context.Context) ([]graph.User, error)
	ListPoints(ctx context.Context) ([]graph.Point, error)
	ListRoutes(ctx context.Context) ([]graph.Route, error)
	ListLakes(ctx context.Context) ([]graph.Lake, error)
	ListTickets(ctx context.Context) ([]graph.SupportTicket, error)
}

// Sink is the write side a snapshot is imported into.
type Sink interface {
	CreateUser(ctx context.Context, req graph.CreateUserRequest) (string, error)
	CreatePoint(ctx context.Context, req graph.CreatePointRequest) (string, error)
	CreateRoute(ctx context.Context, req graph.CreateRouteRequest) (string, error)
	CreateLake(ctx context.Context, req graph.CreateLakeRequest) (string, error)
	CreateTicket(ctx context.Context, req graph.CreateTicketRequest) (string, error)
	AddTicketReview(ctx context.Context, ticketID string, req graph.CreateReviewRequest) (string, error)
}
