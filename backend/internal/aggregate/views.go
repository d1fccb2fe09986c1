// Package aggregate turns graph entities into the views returned to callers
// and exposes every lakemap operation through Service.
package aggregate

import (
	"time"

	"lakemap/backend/internal/geo"
)

// UserView is the external representation of a user
type UserView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type PointView struct {
	ID           string            `json:"id"`
	Coordinates  geo.PointGeometry `json:"coordinates"`
	Description  string            `json:"description"`
	Availability float64           `json:"availability"`
}

type RouteView struct {
	ID              string    `json:"id"`
	PointIDs        []string  `json:"point_ids"`
	AuthorID        string    `json:"author_id"`
	PopularityScore float64   `json:"popularity_score"`
	CreatedAt       time.Time `json:"created_at"`
}

type LakeView struct {
	ID                  string              `json:"id"`
	Name                string              `json:"name"`
	Description         string              `json:"description"`
	CoordinatesBoundary geo.PolygonGeometry `json:"coordinates_boundary"`
	AvailabilityScore   float64             `json:"availability_score"`
	MaxDepth            float64             `json:"max_depth"`
	Salinity            float64             `json:"salinity"`
	InflowingRivers     []string            `json:"inflowing_rivers"`
	OutflowingRivers    []string            `json:"outflowing_rivers"`
}

// TicketView carries optional references as nullable strings.
type TicketView struct {
	ID             string       `json:"id"`
	AuthorID       string       `json:"author_id"`
	Subject        string       `json:"subject"`
	Text           string       `json:"text"`
	CreatedAt      time.Time    `json:"created_at"`
	RouteReference *string      `json:"route_reference"`
	LakeReference  *string      `json:"lake_reference"`
	Reviews        []ReviewView `json:"reviews"`
}

type ReviewView struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	PhotoURL  string    `json:"photo_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
