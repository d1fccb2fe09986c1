package dataset

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"lakemap/backend/internal/graph"
	"lakemap/backend/internal/ident"
	"lakemap/backend/pkg/logger"
)

// Report counts what an import created and maps each id in the document to
// the id it was created under.
type Report struct {
	Users   int               `json:"users"`
	Points  int               `json:"points"`
	Lakes   int               `json:"lakes"`
	Routes  int               `json:"routes"`
	Tickets int               `json:"tickets"`
	Reviews int               `json:"reviews"`
	IDs     map[string]string `json:"ids"`
}

type importer struct {
	dst    Sink
	report *Report
	// document key -> created storage key
	remap map[string]string
}

// Import recreates ds in dst in dependency order. Every entity is its own
// write, so a failure leaves the entities created before it in place; the
// returned report says how far the import got.
func Import(ctx context.Context, dst Sink, ds *Dataset) (*Report, error) {
	log := logger.Named("dataset")
	im := &importer{
		dst:    dst,
		report: &Report{IDs: make(map[string]string)},
		remap:  make(map[string]string),
	}

	steps := []struct {
		kind string
		run  func(context.Context, *Dataset) error
	}{
		{"users", im.users},
		{"points", im.points},
		{"lakes", im.lakes},
		{"routes", im.routes},
		{"tickets", im.tickets},
	}
	for _, step := range steps {
		if err := step.run(ctx, ds); err != nil {
			log.Warn("Dataset import stopped",
				zap.String("step", step.kind),
				zap.Int("users", im.report.Users),
				zap.Int("points", im.report.Points),
				zap.Int("lakes", im.report.Lakes),
				zap.Int("routes", im.report.Routes),
				zap.Int("tickets", im.report.Tickets),
				zap.Error(err),
			)
			return im.report, err
		}
	}

	log.Info("Dataset imported",
		zap.Int("users", im.report.Users),
		zap.Int("points", im.report.Points),
		zap.Int("lakes", im.report.Lakes),
		zap.Int("routes", im.report.Routes),
		zap.Int("tickets", im.report.Tickets),
		zap.Int("reviews", im.report.Reviews),
	)
	return im.report, nil
}

func (im *importer) users(ctx context.Context, ds *Dataset) error {
	for _, u := range ds.Users {
		id, err := im.dst.CreateUser(ctx, graph.CreateUserRequest{
			Name:      u.Name,
			Email:     u.Email,
			AvatarURL: u.AvatarURL,
		})
		if err != nil {
			return fmt.Errorf("failed to import user %s: %w", u.ID, err)
		}
		im.record(u.ID, id)
		im.report.Users++
	}
	return nil
}

func (im *importer) points(ctx context.Context, ds *Dataset) error {
	for _, p := range ds.Points {
		id, err := im.dst.CreatePoint(ctx, graph.CreatePointRequest{
			Coordinates:  p.Coordinates,
			Description:  p.Description,
			Availability: p.Availability,
		})
		if err != nil {
			return fmt.Errorf("failed to import point %s: %w", p.ID, err)
		}
		im.record(p.ID, id)
		im.report.Points++
	}
	return nil
}

func (im *importer) lakes(ctx context.Context, ds *Dataset) error {
	for _, l := range ds.Lakes {
		id, err := im.dst.CreateLake(ctx, graph.CreateLakeRequest{
			Name:              l.Name,
			Description:       l.Description,
			Boundary:          l.Boundary,
			AvailabilityScore: l.AvailabilityScore,
			MaxDepth:          l.MaxDepth,
			Salinity:          l.Salinity,
			InflowingRivers:   l.InflowingRivers,
			OutflowingRivers:  l.OutflowingRivers,
		})
		if err != nil {
			return fmt.Errorf("failed to import lake %s: %w", l.ID, err)
		}
		im.record(l.ID, id)
		im.report.Lakes++
	}
	return nil
}

func (im *importer) routes(ctx context.Context, ds *Dataset) error {
	for _, r := range ds.Routes {
		pointIDs := make([]string, 0, len(r.PointIDs))
		for _, p := range r.PointIDs {
			pointIDs = append(pointIDs, im.resolve(p))
		}
		id, err := im.dst.CreateRoute(ctx, graph.CreateRouteRequest{
			PointIDs:        pointIDs,
			AuthorID:        im.resolve(r.AuthorID),
			PopularityScore: r.PopularityScore,
		})
		if err != nil {
			return fmt.Errorf("failed to import route %s: %w", r.ID, err)
		}
		im.record(r.ID, id)
		im.report.Routes++
	}
	return nil
}

func (im *importer) tickets(ctx context.Context, ds *Dataset) error {
	for _, t := range ds.Tickets {
		id, err := im.dst.CreateTicket(ctx, graph.CreateTicketRequest{
			AuthorID:       im.resolve(t.AuthorID),
			Subject:        t.Subject,
			Text:           t.Text,
			RouteReference: im.optional(t.RouteReference),
			LakeReference:  im.optional(t.LakeReference),
		})
		if err != nil {
			return fmt.Errorf("failed to import ticket %s: %w", t.ID, err)
		}
		im.record(t.ID, id)
		im.report.Tickets++

		for _, rv := range t.Reviews {
			reviewID, err := im.dst.AddTicketReview(ctx, id, graph.CreateReviewRequest{
				Text:     rv.Text,
				PhotoURL: rv.PhotoURL,
			})
			if err != nil {
				return fmt.Errorf("failed to import review %s of ticket %s: %w", rv.ID, t.ID, err)
			}
			im.record(rv.ID, reviewID)
			im.report.Reviews++
		}
	}
	return nil
}

// record remembers that docID was created as key.
func (im *importer) record(docID, key string) {
	im.remap[documentKey(docID)] = key
	im.report.IDs[docID] = ident.External(key)
}

// resolve maps a document id to the created key. Ids the document does not
// define pass through so they can name entities already in the target graph.
func (im *importer) resolve(docID string) string {
	if key, ok := im.remap[documentKey(docID)]; ok {
		return key
	}
	return docID
}

func (im *importer) optional(docID string) ident.Ref {
	if strings.TrimSpace(docID) == "" {
		return ident.Absent()
	}
	return ident.Present(im.resolve(docID))
}

// documentKey normalises the spellings of one identifier to a single map key.
func documentKey(docID string) string {
	trimmed := strings.TrimSpace(docID)
	if key, err := ident.Key(trimmed); err == nil {
		return key
	}
	return trimmed
}
