package aggregate

import (
	"lakemap/backend/internal/geo"
	"lakemap/backend/internal/graph"
	"lakemap/backend/internal/ident"
)

// Create inputs as callers send them. Identifiers may be in any form
// ident.Parse accepts.

type CreateUserInput struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

func (in CreateUserInput) request() graph.CreateUserRequest {
	return graph.CreateUserRequest{Name: in.Name, Email: in.Email, AvatarURL: in.AvatarURL}
}

type CreatePointInput struct {
	Coordinates  geo.Coordinates `json:"coordinates"`
	Description  string          `json:"description"`
	Availability float64         `json:"availability"`
}

func (in CreatePointInput) request() graph.CreatePointRequest {
	return graph.CreatePointRequest{Coordinates: in.Coordinates, Description: in.Description, Availability: in.Availability}
}

type CreateRouteInput struct {
	PointIDs        []string `json:"point_ids"`
	AuthorID        string   `json:"author_id"`
	PopularityScore float64  `json:"popularity_score"`
}

func (in CreateRouteInput) request() graph.CreateRouteRequest {
	return graph.CreateRouteRequest{PointIDs: in.PointIDs, AuthorID: in.AuthorID, PopularityScore: in.PopularityScore}
}

type CreateLakeInput struct {
	Name                string            `json:"name"`
	Description         string            `json:"description"`
	CoordinatesBoundary []geo.Coordinates `json:"coordinates_boundary"`
	AvailabilityScore   float64           `json:"availability_score"`
	MaxDepth            float64           `json:"max_depth"`
	Salinity            float64           `json:"salinity"`
	InflowingRivers     []string          `json:"inflowing_rivers"`
	OutflowingRivers    []string          `json:"outflowing_rivers"`
}

func (in CreateLakeInput) request() graph.CreateLakeRequest {
	return graph.CreateLakeRequest{
		Name:              in.Name,
		Description:       in.Description,
		Boundary:          in.CoordinatesBoundary,
		AvailabilityScore: in.AvailabilityScore,
		MaxDepth:          in.MaxDepth,
		Salinity:          in.Salinity,
		InflowingRivers:   in.InflowingRivers,
		OutflowingRivers:  in.OutflowingRivers,
	}
}

// CreateTicketInput treats a null or empty reference as absent.
type CreateTicketInput struct {
	AuthorID       string  `json:"author_id"`
	Subject        string  `json:"subject"`
	Text           string  `json:"text"`
	RouteReference *string `json:"route_reference"`
	LakeReference  *string `json:"lake_reference"`
}

func (in CreateTicketInput) request() graph.CreateTicketRequest {
	return graph.CreateTicketRequest{
		AuthorID:       in.AuthorID,
		Subject:        in.Subject,
		Text:           in.Text,
		RouteReference: ident.RefFromPtr(in.RouteReference),
		LakeReference:  ident.RefFromPtr(in.LakeReference),
	}
}

type CreateReviewInput struct {
	Text     string `json:"text"`
	PhotoURL string `json:"photo_url"`
}

func (in CreateReviewInput) request() graph.CreateReviewRequest {
	return graph.CreateReviewRequest{Text: in.Text, PhotoURL: in.PhotoURL}
}
