package aggregate

import (
	"context"

	"lakemap/backend/internal/dataset"
	"lakemap/backend/internal/graph"
	"lakemap/backend/internal/ident"
)

// Repository is the graph access the service needs. *graph.Repository
// satisfies it.
type Repository interface {
	CreateUser(ctx context.Context, req graph.CreateUserRequest) (string, error)
	GetUser(ctx context.Context, id string) (*graph.User, error)
	ListUsers(ctx context.Context) ([]graph.User, error)

	CreatePoint(ctx context.Context, req graph.CreatePointRequest) (string, error)
	GetPoint(ctx context.Context, id string) (*graph.Point, error)
	ListPoints(ctx context.Context) ([]graph.Point, error)

	CreateRoute(ctx context.Context, req graph.CreateRouteRequest) (string, error)
	GetRoute(ctx context.Context, id string) (*graph.Route, error)
	ListRoutes(ctx context.Context) ([]graph.Route, error)

	CreateLake(ctx context.Context, req graph.CreateLakeRequest) (string, error)
	GetLake(ctx context.Context, id string) (*graph.Lake, error)
	ListLakes(ctx context.Context) ([]graph.Lake, error)

	CreateTicket(ctx context.Context, req graph.CreateTicketRequest) (string, error)
	AddTicketReview(ctx context.Context, ticketID string, req graph.CreateReviewRequest) (string, error)
	GetTicket(ctx context.Context, id string) (*graph.SupportTicket, error)
	ListTickets(ctx context.Context) ([]graph.SupportTicket, error)
}

// Service runs each operation against the repository and renders the result.
// Returned ids are in external form.
type Service struct {
	repo     Repository
	assemble Assembler
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Users

func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (string, error) {
	return external(s.repo.CreateUser(ctx, in.request()))
}

func (s *Service) GetUser(ctx context.Context, id string) (*UserView, error) {
	u, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	view := s.assemble.User(*u)
	return &view, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]UserView, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	return mapAll(users, s.assemble.User), nil
}

// Points

func (s *Service) CreatePoint(ctx context.Context, in CreatePointInput) (string, error) {
	return external(s.repo.CreatePoint(ctx, in.request()))
}

func (s *Service) GetPoint(ctx context.Context, id string) (*PointView, error) {
	p, err := s.repo.GetPoint(ctx, id)
	if err != nil {
		return nil, err
	}
	view := s.assemble.Point(*p)
	return &view, nil
}

func (s *Service) ListPoints(ctx context.Context) ([]PointView, error) {
	points, err := s.repo.ListPoints(ctx)
	if err != nil {
		return nil, err
	}
	return mapAll(points, s.assemble.Point), nil
}

// Routes

func (s *Service) CreateRoute(ctx context.Context, in CreateRouteInput) (string, error) {
	return external(s.repo.CreateRoute(ctx, in.request()))
}

func (s *Service) GetRoute(ctx context.Context, id string) (*RouteView, error) {
	r, err := s.repo.GetRoute(ctx, id)
	if err != nil {
		return nil, err
	}
	view := s.assemble.Route(*r)
	return &view, nil
}

func (s *Service) ListRoutes(ctx context.Context) ([]RouteView, error) {
	routes, err := s.repo.ListRoutes(ctx)
	if err != nil {
		return nil, err
	}
	return mapAll(routes, s.assemble.Route), nil
}

// Lakes

func (s *Service) CreateLake(ctx context.Context, in CreateLakeInput) (string, error) {
	return external(s.repo.CreateLake(ctx, in.request()))
}

func (s *Service) GetLake(ctx context.Context, id string) (*LakeView, error) {
	l, err := s.repo.GetLake(ctx, id)
	if err != nil {
		return nil, err
	}
	view := s.assemble.Lake(*l)
	return &view, nil
}

func (s *Service) ListLakes(ctx context.Context) ([]LakeView, error) {
	lakes, err := s.repo.ListLakes(ctx)
	if err != nil {
		return nil, err
	}
	return mapAll(lakes, s.assemble.Lake), nil
}

// Tickets

func (s *Service) CreateTicket(ctx context.Context, in CreateTicketInput) (string, error) {
	return external(s.repo.CreateTicket(ctx, in.request()))
}

func (s *Service) AddTicketReview(ctx context.Context, ticketID string, in CreateReviewInput) (string, error) {
	return external(s.repo.AddTicketReview(ctx, ticketID, in.request()))
}

func (s *Service) GetTicket(ctx context.Context, id string) (*TicketView, error) {
	t, err := s.repo.GetTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	view := s.assemble.Ticket(*t)
	return &view, nil
}

func (s *Service) ListTickets(ctx context.Context) ([]TicketView, error) {
	tickets, err := s.repo.ListTickets(ctx)
	if err != nil {
		return nil, err
	}
	return mapAll(tickets, s.assemble.Ticket), nil
}

// Datasets

// Export snapshots the whole graph.
func (s *Service) Export(ctx context.Context) (*dataset.Dataset, error) {
	return dataset.Export(ctx, s.repo)
}

// Import recreates a snapshot; see dataset.Import for partial failure.
func (s *Service) Import(ctx context.Context, ds *dataset.Dataset) (*dataset.Report, error) {
	return dataset.Import(ctx, s.repo, ds)
}

func external(key string, err error) (string, error) {
	if err != nil {
		return "", err
	}
	return ident.External(key), nil
}
