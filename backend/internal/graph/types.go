package graph

import (
	"time"

	"lakemap/backend/internal/geo"
	"lakemap/backend/internal/ident"
)

// ============================================================================
// Graph Entities
// ============================================================================
//
// Identifiers held by these types are storage keys (see ident.Canonicalize).

// User represents a user in the graph
type User struct {
	ID        string
	Name      string
	Email     string
	AvatarURL string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Point is a geographic point of interest
type Point struct {
	ID           string
	Coordinates  geo.Coordinates
	Description  string
	Availability float64
}

// Route is an ordered walk over existing points
type Route struct {
	ID              string
	PointIDs        []string // ordered by HAS_POINT.position
	AuthorID        string
	PopularityScore float64
	CreatedAt       time.Time
}

// Lake with its boundary ring
type Lake struct {
	ID                string
	Name              string
	Description       string
	Boundary          []geo.Coordinates
	AvailabilityScore float64
	MaxDepth          float64
	Salinity          float64
	InflowingRivers   []string
	OutflowingRivers  []string
}

// SupportTicket is a support request optionally pointing at a route or lake
type SupportTicket struct {
	ID             string
	AuthorID       string
	Subject        string
	Text           string
	CreatedAt      time.Time
	RouteReference ident.Ref
	LakeReference  ident.Ref
	Reviews        []Review // oldest first
}

// Review is a follow-up attached to a ticket
type Review struct {
	ID        string
	Text      string
	PhotoURL  string
	CreatedAt time.Time
}

// ============================================================================
// Create Requests
// ============================================================================

type CreateUserRequest struct {
	Name      string `validate:"required,max=200"`
	Email     string `validate:"required,email"`
	AvatarURL string `validate:"omitempty,url"`
}

type CreatePointRequest struct {
	Coordinates  geo.Coordinates
	Description  string
	Availability float64 `validate:"finite"`
}

type CreateRouteRequest struct {
	PointIDs        []string `validate:"min=1,dive,required"`
	AuthorID        string   `validate:"required"`
	PopularityScore float64  `validate:"finite"`
}

type CreateLakeRequest struct {
	Name              string            `validate:"required,max=200"`
	Description       string
	Boundary          []geo.Coordinates `validate:"min=4"`
	AvailabilityScore float64           `validate:"finite"`
	MaxDepth          float64           `validate:"finite,gte=0"`
	Salinity          float64           `validate:"finite,gte=0"`
	InflowingRivers   []string          `validate:"dive,required"`
	OutflowingRivers  []string          `validate:"dive,required"`
}

type CreateTicketRequest struct {
	AuthorID       string `validate:"required"`
	Subject        string `validate:"required,max=300"`
	Text           string `validate:"required"`
	RouteReference ident.Ref
	LakeReference  ident.Ref
}

type CreateReviewRequest struct {
	Text     string `validate:"required"`
	PhotoURL string `validate:"omitempty,url"`
}
