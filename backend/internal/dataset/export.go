package dataset

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"lakemap/backend/internal/graph"
	"lakemap/backend/internal/ident"
)

// Export lists every entity kind concurrently and assembles a snapshot. Each
// list is its own read transaction, so the snapshot is not a single point in
// time when writes run alongside it.
func Export(ctx context.Context, src Source) (*Dataset, error) {
	var (
		users   []graph.User
		points  []graph.Point
		routes  []graph.Route
		lakes   []graph.Lake
		tickets []graph.SupportTicket
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		users, err = src.ListUsers(gctx)
		return wrapList("users", err)
	})
	g.Go(func() (err error) {
		points, err = src.ListPoints(gctx)
		return wrapList("points", err)
	})
	g.Go(func() (err error) {
		routes, err = src.ListRoutes(gctx)
		return wrapList("routes", err)
	})
	g.Go(func() (err error) {
		lakes, err = src.ListLakes(gctx)
		return wrapList("lakes", err)
	})
	g.Go(func() (err error) {
		tickets, err = src.ListTickets(gctx)
		return wrapList("tickets", err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ds := &Dataset{
		Version:    Version,
		ExportedAt: time.Now().UTC(),
		Users:      make([]User, 0, len(users)),
		Points:     make([]Point, 0, len(points)),
		Lakes:      make([]Lake, 0, len(lakes)),
		Routes:     make([]Route, 0, len(routes)),
		Tickets:    make([]Ticket, 0, len(tickets)),
	}
	for _, u := range users {
		ds.Users = append(ds.Users, User{
			ID:        ident.External(u.ID),
			Name:      u.Name,
			Email:     u.Email,
			AvatarURL: u.AvatarURL,
			CreatedAt: u.CreatedAt.UTC(),
		})
	}
	for _, p := range points {
		ds.Points = append(ds.Points, Point{
			ID:           ident.External(p.ID),
			Coordinates:  p.Coordinates,
			Description:  p.Description,
			Availability: p.Availability,
		})
	}
	for _, l := range lakes {
		ds.Lakes = append(ds.Lakes, Lake{
			ID:                ident.External(l.ID),
			Name:              l.Name,
			Description:       l.Description,
			Boundary:          l.Boundary,
			AvailabilityScore: l.AvailabilityScore,
			MaxDepth:          l.MaxDepth,
			Salinity:          l.Salinity,
			InflowingRivers:   l.InflowingRivers,
			OutflowingRivers:  l.OutflowingRivers,
		})
	}
	for _, r := range routes {
		pointIDs := make([]string, 0, len(r.PointIDs))
		for _, id := range r.PointIDs {
			pointIDs = append(pointIDs, ident.External(id))
		}
		ds.Routes = append(ds.Routes, Route{
			ID:              ident.External(r.ID),
			PointIDs:        pointIDs,
			AuthorID:        ident.External(r.AuthorID),
			PopularityScore: r.PopularityScore,
			CreatedAt:       r.CreatedAt.UTC(),
		})
	}
	for _, t := range tickets {
		ds.Tickets = append(ds.Tickets, ticketRecord(t))
	}
	return ds, nil
}

func ticketRecord(t graph.SupportTicket) Ticket {
	rec := Ticket{
		ID:        ident.External(t.ID),
		AuthorID:  ident.External(t.AuthorID),
		Subject:   t.Subject,
		Text:      t.Text,
		CreatedAt: t.CreatedAt.UTC(),
	}
	if id, ok := t.RouteReference.Get(); ok {
		rec.RouteReference = ident.External(id)
	}
	if id, ok := t.LakeReference.Get(); ok {
		rec.LakeReference = ident.External(id)
	}
	for _, rv := range t.Reviews {
		rec.Reviews = append(rec.Reviews, Review{
			ID:        ident.External(rv.ID),
			Text:      rv.Text,
			PhotoURL:  rv.PhotoURL,
			CreatedAt: rv.CreatedAt.UTC(),
		})
	}
	return rec
}

func wrapList(kind string, err error) error {
	if err != nil {
		return fmt.Errorf("failed to export %s: %w", kind, err)
	}
	return nil
}
