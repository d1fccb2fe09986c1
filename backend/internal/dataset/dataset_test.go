package dataset

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lakemap/backend/internal/geo"
	"lakemap/backend/internal/graph"
	"lakemap/backend/internal/ident"
	apperrors "lakemap/backend/pkg/errors"
)

// fakeGraph is a Source and Sink that checks references the way the
// repository does.
type fakeGraph struct {
	mu      sync.Mutex
	users   []graph.User
	points  []graph.Point
	routes  []graph.Route
	lakes   []graph.Lake
	tickets []graph.SupportTicket

	listErr   error
	failRoute bool
}

func (f *fakeGraph) ListUsers(context.Context) ([]graph.User, error) {
	return f.users, f.listErr
}
func (f *fakeGraph) ListPoints(context.Context) ([]graph.Point, error) {
	return f.points, nil
}
func (f *fakeGraph) ListRoutes(context.Context) ([]graph.Route, error) {
	return f.routes, nil
}
func (f *fakeGraph) ListLakes(context.Context) ([]graph.Lake, error) {
	return f.lakes, nil
}
func (f *fakeGraph) ListTickets(context.Context) ([]graph.SupportTicket, error) {
	return f.tickets, nil
}

func (f *fakeGraph) CreateUser(_ context.Context, req graph.CreateUserRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := ident.NewKey()
	f.users = append(f.users, graph.User{ID: id, Name: req.Name, Email: req.Email, AvatarURL: req.AvatarURL, CreatedAt: time.Now()})
	return id, nil
}

func (f *fakeGraph) CreatePoint(_ context.Context, req graph.CreatePointRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := ident.NewKey()
	f.points = append(f.points, graph.Point{ID: id, Coordinates: req.Coordinates, Description: req.Description, Availability: req.Availability})
	return id, nil
}

func (f *fakeGraph) CreateRoute(_ context.Context, req graph.CreateRouteRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failRoute {
		return "", apperrors.NewStoreUnavailable("commit", errors.New("connection reset"))
	}
	for _, p := range req.PointIDs {
		if !f.hasPoint(p) {
			return "", apperrors.NewValidation("route", "point_ids", "references missing point "+p)
		}
	}
	id := ident.NewKey()
	f.routes = append(f.routes, graph.Route{ID: id, PointIDs: req.PointIDs, AuthorID: req.AuthorID, PopularityScore: req.PopularityScore, CreatedAt: time.Now()})
	return id, nil
}

func (f *fakeGraph) CreateLake(_ context.Context, req graph.CreateLakeRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := ident.NewKey()
	f.lakes = append(f.lakes, graph.Lake{
		ID: id, Name: req.Name, Description: req.Description, Boundary: req.Boundary,
		AvailabilityScore: req.AvailabilityScore, MaxDepth: req.MaxDepth, Salinity: req.Salinity,
		InflowingRivers: req.InflowingRivers, OutflowingRivers: req.OutflowingRivers,
	})
	return id, nil
}

func (f *fakeGraph) CreateTicket(_ context.Context, req graph.CreateTicketRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := ident.NewKey()
	f.tickets = append(f.tickets, graph.SupportTicket{
		ID: id, AuthorID: req.AuthorID, Subject: req.Subject, Text: req.Text, CreatedAt: time.Now(),
		RouteReference: req.RouteReference, LakeReference: req.LakeReference,
	})
	return id, nil
}

func (f *fakeGraph) AddTicketReview(_ context.Context, ticketID string, req graph.CreateReviewRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tickets {
		if f.tickets[i].ID == ticketID {
			id := ident.NewKey()
			f.tickets[i].Reviews = append(f.tickets[i].Reviews, graph.Review{ID: id, Text: req.Text, PhotoURL: req.PhotoURL, CreatedAt: time.Now()})
			return id, nil
		}
	}
	return "", apperrors.NewNotFound("ticket", ticketID)
}

func (f *fakeGraph) hasPoint(id string) bool {
	for _, p := range f.points {
		if p.ID == id {
			return true
		}
	}
	return false
}

func seededGraph(t *testing.T) *fakeGraph {
	t.Helper()
	ctx := context.Background()
	f := &fakeGraph{}

	author, err := f.CreateUser(ctx, graph.CreateUserRequest{Name: gofakeit.Name(), Email: gofakeit.Email()})
	require.NoError(t, err)
	var points []string
	for i := 0; i < 3; i++ {
		id, err := f.CreatePoint(ctx, graph.CreatePointRequest{
			Coordinates: geo.Coordinates{Latitude: 60 + float64(i), Longitude: 30},
			Description: gofakeit.Sentence(4),
		})
		require.NoError(t, err)
		points = append(points, id)
	}
	lake, err := f.CreateLake(ctx, graph.CreateLakeRequest{
		Name: "Ilmen",
		Boundary: []geo.Coordinates{
			{Latitude: 58.2, Longitude: 31.1}, {Latitude: 58.2, Longitude: 31.6},
			{Latitude: 58.4, Longitude: 31.6}, {Latitude: 58.2, Longitude: 31.1},
		},
		MaxDepth:        10,
		InflowingRivers: []string{"Msta", "Lovat"},
	})
	require.NoError(t, err)
	route, err := f.CreateRoute(ctx, graph.CreateRouteRequest{PointIDs: []string{points[2], points[0]}, AuthorID: author, PopularityScore: 0.4})
	require.NoError(t, err)
	ticket, err := f.CreateTicket(ctx, graph.CreateTicketRequest{
		AuthorID: author, Subject: "Ice", Text: "Thin ice near the shore",
		RouteReference: ident.Present(route), LakeReference: ident.Present(lake),
	})
	require.NoError(t, err)
	_, err = f.AddTicketReview(ctx, ticket, graph.CreateReviewRequest{Text: "Signs posted"})
	require.NoError(t, err)
	_, err = f.CreateTicket(ctx, graph.CreateTicketRequest{AuthorID: author, Subject: "Parking", Text: "Full"})
	require.NoError(t, err)

	return f
}

// shape strips ids and timestamps, replacing references with list positions.
func shape(ds *Dataset) *Dataset {
	index := map[string]string{}
	for i, u := range ds.Users {
		index[u.ID] = "user#" + string(rune('0'+i))
	}
	for i, p := range ds.Points {
		index[p.ID] = "point#" + string(rune('0'+i))
	}
	for i, l := range ds.Lakes {
		index[l.ID] = "lake#" + string(rune('0'+i))
	}
	for i, r := range ds.Routes {
		index[r.ID] = "route#" + string(rune('0'+i))
	}

	out := *ds
	out.Routes = nil
	for _, r := range ds.Routes {
		var pts []string
		for _, p := range r.PointIDs {
			pts = append(pts, index[p])
		}
		r.PointIDs = pts
		r.AuthorID = index[r.AuthorID]
		out.Routes = append(out.Routes, r)
	}
	out.Tickets = nil
	for _, t := range ds.Tickets {
		t.AuthorID = index[t.AuthorID]
		t.RouteReference = index[t.RouteReference]
		t.LakeReference = index[t.LakeReference]
		out.Tickets = append(out.Tickets, t)
	}
	return &out
}

var ignoreVolatile = cmp.Options{
	cmpopts.IgnoreFields(Dataset{}, "ExportedAt"),
	cmpopts.IgnoreFields(User{}, "ID", "CreatedAt"),
	cmpopts.IgnoreFields(Point{}, "ID"),
	cmpopts.IgnoreFields(Lake{}, "ID"),
	cmpopts.IgnoreFields(Route{}, "ID", "CreatedAt"),
	cmpopts.IgnoreFields(Ticket{}, "ID", "CreatedAt"),
	cmpopts.IgnoreFields(Review{}, "ID", "CreatedAt"),
	cmpopts.EquateEmpty(),
}

func TestExport(t *testing.T) {
	f := seededGraph(t)

	ds, err := Export(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, Version, ds.Version)
	assert.Len(t, ds.Users, 1)
	assert.Len(t, ds.Points, 3)
	assert.Len(t, ds.Lakes, 1)
	require.Len(t, ds.Routes, 1)
	require.Len(t, ds.Tickets, 2)

	// Ids leave in external form.
	assert.Equal(t, ident.External(f.users[0].ID), ds.Users[0].ID)
	assert.Equal(t, []string{ident.External(f.points[2].ID), ident.External(f.points[0].ID)}, ds.Routes[0].PointIDs)
	assert.Equal(t, ident.External(f.routes[0].ID), ds.Tickets[0].RouteReference)
	assert.Len(t, ds.Tickets[0].Reviews, 1)
	assert.Empty(t, ds.Tickets[1].RouteReference)
	assert.Empty(t, ds.Tickets[1].LakeReference)
}

func TestExport_ListFailure(t *testing.T) {
	f := &fakeGraph{listErr: apperrors.NewStoreUnavailable("begin transaction", errors.New("refused"))}

	_, err := Export(context.Background(), f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to export users")
	assert.True(t, apperrors.IsRetryable(err))
}

func TestRoundTrip(t *testing.T) {
	for _, format := range []string{"yaml", "json"} {
		t.Run(format, func(t *testing.T) {
			ctx := context.Background()
			src := seededGraph(t)

			exported, err := Export(ctx, src)
			require.NoError(t, err)

			codec, err := CodecFor(format)
			require.NoError(t, err)

			var buf bytes.Buffer
			require.NoError(t, codec.Export(exported, &buf))

			decoded, err := codec.Parse(&buf)
			require.NoError(t, err)

			dst := &fakeGraph{}
			report, err := Import(ctx, dst, decoded)
			require.NoError(t, err)
			assert.Equal(t, 1, report.Users)
			assert.Equal(t, 3, report.Points)
			assert.Equal(t, 1, report.Lakes)
			assert.Equal(t, 1, report.Routes)
			assert.Equal(t, 2, report.Tickets)
			assert.Equal(t, 1, report.Reviews)
			assert.Len(t, report.IDs, 9)

			reexported, err := Export(ctx, dst)
			require.NoError(t, err)

			if diff := cmp.Diff(shape(exported), shape(reexported), ignoreVolatile); diff != "" {
				t.Errorf("graph shape changed across import (-want +got):\n%s", diff)
			}
			assert.NotEqual(t, exported.Users[0].ID, reexported.Users[0].ID, "import creates fresh ids")
		})
	}
}

func TestImport_StopsAndReports(t *testing.T) {
	ctx := context.Background()
	exported, err := Export(ctx, seededGraph(t))
	require.NoError(t, err)

	dst := &fakeGraph{failRoute: true}
	report, err := Import(ctx, dst, exported)
	require.Error(t, err)
	assert.True(t, apperrors.IsRetryable(err))
	assert.Contains(t, err.Error(), "failed to import route")

	assert.Equal(t, 1, report.Users)
	assert.Equal(t, 3, report.Points)
	assert.Equal(t, 1, report.Lakes)
	assert.Equal(t, 0, report.Routes)
	assert.Equal(t, 0, report.Tickets)
	assert.Empty(t, dst.tickets)
}

func TestImport_PassesUnknownReferencesThrough(t *testing.T) {
	ds := &Dataset{
		Version: Version,
		Routes:  []Route{{ID: "r1", PointIDs: []string{"missing-point"}, AuthorID: "someone"}},
	}

	_, err := Import(context.Background(), &fakeGraph{}, ds)
	require.Error(t, err)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeValidation))
	assert.Contains(t, err.Error(), "missing-point")
}

func TestCodecFor(t *testing.T) {
	for _, in := range []string{"", "yaml", "YML", " json "} {
		_, err := CodecFor(in)
		assert.NoError(t, err, in)
	}

	_, err := CodecFor("xml")
	require.Error(t, err)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeValidation))
}

func TestParse_RejectsBadDocuments(t *testing.T) {
	tests := []struct {
		name   string
		format string
		doc    string
	}{
		{"yaml wrong version", "yaml", "version: 7\n"},
		{"yaml unknown field", "yaml", "version: 1\nrivers: []\n"},
		{"yaml garbage", "yaml", "version: [\n"},
		{"json wrong version", "json", `{"version": 2}`},
		{"json unknown field", "json", `{"version": 1, "boats": []}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codec, err := CodecFor(tt.format)
			require.NoError(t, err)

			_, err = codec.Parse(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeValidation))
		})
	}
}

func TestParse_RejectsNonFiniteNumbers(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		field string
	}{
		{"point availability", "version: 1\npoints:\n  - id: p1\n    coordinates: {latitude: 1, longitude: 2}\n    availability: .nan\n", "points[0]"},
		{"route popularity", "version: 1\nroutes:\n  - id: r1\n    point_ids: [p1]\n    author_id: u1\n    popularity_score: .inf\n", "routes[0]"},
		{"lake depth", "version: 1\nlakes:\n  - id: l1\n    name: Ladoga\n    max_depth: -.inf\n", "lakes[0]"},
		{"lake vertex", "version: 1\nlakes:\n  - id: l1\n    name: Ladoga\n    coordinates_boundary:\n      - {latitude: .nan, longitude: 30}\n", "lakes[0].coordinates_boundary"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := YAMLCodec{}.Parse(strings.NewReader(tt.doc))
			require.Error(t, err)

			var v *apperrors.ErrValidation
			require.True(t, errors.As(err, &v), err.Error())
			assert.Equal(t, tt.field, v.Field)
			assert.Equal(t, "must be a finite number", v.Reason)
		})
	}
}

func TestYAMLLayout(t *testing.T) {
	ds := &Dataset{
		Version: Version,
		Points:  []Point{{ID: "p", Coordinates: geo.Coordinates{Latitude: 1.5, Longitude: 2.5}}},
	}
	var buf bytes.Buffer
	require.NoError(t, YAMLCodec{}.Export(ds, &buf))

	out := buf.String()
	assert.Contains(t, out, "version: 1")
	assert.Contains(t, out, "latitude: 1.5")
	assert.Contains(t, out, "longitude: 2.5")
}
