package aggregate

import (
	"time"

	"lakemap/backend/internal/geo"
	"lakemap/backend/internal/graph"
	"lakemap/backend/internal/ident"
)

// Assembler maps graph entities onto views. It never validates; whatever the
// repository returned is rendered as is.
type Assembler struct{}

func (Assembler) User(u graph.User) UserView {
	return UserView{
		ID:        ident.External(u.ID),
		Name:      u.Name,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
		CreatedAt: utc(u.CreatedAt),
		UpdatedAt: utc(u.UpdatedAt),
	}
}

func (Assembler) Point(p graph.Point) PointView {
	return PointView{
		ID:           ident.External(p.ID),
		Coordinates:  geo.NewPoint(p.Coordinates),
		Description:  p.Description,
		Availability: p.Availability,
	}
}

func (Assembler) Route(r graph.Route) RouteView {
	return RouteView{
		ID:              ident.External(r.ID),
		PointIDs:        externalAll(r.PointIDs),
		AuthorID:        ident.External(r.AuthorID),
		PopularityScore: r.PopularityScore,
		CreatedAt:       utc(r.CreatedAt),
	}
}

func (Assembler) Lake(l graph.Lake) LakeView {
	return LakeView{
		ID:                  ident.External(l.ID),
		Name:                l.Name,
		Description:         l.Description,
		CoordinatesBoundary: geo.NewPolygon(l.Boundary),
		AvailabilityScore:   l.AvailabilityScore,
		MaxDepth:            l.MaxDepth,
		Salinity:            l.Salinity,
		InflowingRivers:     nonNil(l.InflowingRivers),
		OutflowingRivers:    nonNil(l.OutflowingRivers),
	}
}

func (a Assembler) Ticket(t graph.SupportTicket) TicketView {
	reviews := make([]ReviewView, 0, len(t.Reviews))
	for _, rv := range t.Reviews {
		reviews = append(reviews, a.Review(rv))
	}
	return TicketView{
		ID:             ident.External(t.ID),
		AuthorID:       ident.External(t.AuthorID),
		Subject:        t.Subject,
		Text:           t.Text,
		CreatedAt:      utc(t.CreatedAt),
		RouteReference: t.RouteReference.Map(ident.External).Ptr(),
		LakeReference:  t.LakeReference.Map(ident.External).Ptr(),
		Reviews:        reviews,
	}
}

func (Assembler) Review(rv graph.Review) ReviewView {
	return ReviewView{
		ID:        ident.External(rv.ID),
		Text:      rv.Text,
		PhotoURL:  rv.PhotoURL,
		CreatedAt: utc(rv.CreatedAt),
	}
}

func utc(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

func externalAll(keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, ident.External(k))
	}
	return out
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

// mapAll applies fn over a list. The result is never nil.
func mapAll[T, V any](items []T, fn func(T) V) []V {
	out := make([]V, 0, len(items))
	for _, item := range items {
		out = append(out, fn(item))
	}
	return out
}
