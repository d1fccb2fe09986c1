package main

import (
	"errors"
	"math"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"lakemap/backend/internal/dataset"
	"lakemap/backend/internal/geo"
)

type options struct {
	Users   int
	Points  int
	Lakes   int
	Routes  int
	Tickets int
	Seed    int64
}

func (o options) validate() error {
	switch {
	case o.Users < 0 || o.Points < 0 || o.Lakes < 0 || o.Routes < 0 || o.Tickets < 0:
		return errors.New("counts must not be negative")
	case (o.Routes > 0 || o.Tickets > 0) && o.Users == 0:
		return errors.New("routes and tickets need at least one user")
	case o.Routes > 0 && o.Points == 0:
		return errors.New("routes need at least one point")
	}
	return nil
}

// generate builds a self-consistent dataset. The same options always give
// the same document.
func generate(opts options, now time.Time) (*dataset.Dataset, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	f := gofakeit.New(opts.Seed)
	now = now.UTC()

	ds := &dataset.Dataset{Version: dataset.Version, ExportedAt: now}

	for i := 0; i < opts.Users; i++ {
		ds.Users = append(ds.Users, dataset.User{
			ID:        f.UUID(),
			Name:      f.Name(),
			Email:     f.Email(),
			AvatarURL: f.URL(),
			CreatedAt: now,
		})
	}

	for i := 0; i < opts.Points; i++ {
		ds.Points = append(ds.Points, dataset.Point{
			ID: f.UUID(),
			Coordinates: geo.Coordinates{
				Latitude:  f.Float64Range(-60, 70),
				Longitude: f.Float64Range(-179, 179),
			},
			Description:  f.Sentence(6),
			Availability: f.Float64Range(0, 1),
		})
	}

	for i := 0; i < opts.Lakes; i++ {
		ds.Lakes = append(ds.Lakes, dataset.Lake{
			ID:                f.UUID(),
			Name:              "Lake " + f.LastName(),
			Description:       f.Sentence(10),
			Boundary:          ring(f),
			AvailabilityScore: f.Float64Range(0, 1),
			MaxDepth:          f.Float64Range(2, 300),
			Salinity:          f.Float64Range(0, 35),
			InflowingRivers:   rivers(f),
			OutflowingRivers:  rivers(f),
		})
	}

	for i := 0; i < opts.Routes; i++ {
		ds.Routes = append(ds.Routes, dataset.Route{
			ID:              f.UUID(),
			PointIDs:        pickPoints(f, ds.Points),
			AuthorID:        ds.Users[f.Number(0, len(ds.Users)-1)].ID,
			PopularityScore: f.Float64Range(0, 100),
			CreatedAt:       now,
		})
	}

	for i := 0; i < opts.Tickets; i++ {
		t := dataset.Ticket{
			ID:        f.UUID(),
			AuthorID:  ds.Users[f.Number(0, len(ds.Users)-1)].ID,
			Subject:   f.Sentence(4),
			Text:      f.Paragraph(1, 3, 12, " "),
			CreatedAt: now,
		}
		if len(ds.Routes) > 0 && f.Bool() {
			t.RouteReference = ds.Routes[f.Number(0, len(ds.Routes)-1)].ID
		}
		if len(ds.Lakes) > 0 && f.Bool() {
			t.LakeReference = ds.Lakes[f.Number(0, len(ds.Lakes)-1)].ID
		}
		for r := f.Number(0, 2); r > 0; r-- {
			t.Reviews = append(t.Reviews, dataset.Review{
				ID:        f.UUID(),
				Text:      f.Sentence(8),
				PhotoURL:  f.URL(),
				CreatedAt: now,
			})
		}
		ds.Tickets = append(ds.Tickets, t)
	}

	return ds, nil
}

// ring draws a closed polygon around a random centre.
func ring(f *gofakeit.Faker) []geo.Coordinates {
	center := geo.Coordinates{Latitude: f.Float64Range(-60, 70), Longitude: f.Float64Range(-170, 170)}
	radius := f.Float64Range(0.02, 0.3)
	n := f.Number(3, 8)

	out := make([]geo.Coordinates, 0, n+1)
	for i := 0; i < n; i++ {
		angle := 2 * math.Pi * float64(i) / float64(n)
		out = append(out, geo.Coordinates{
			Latitude:  center.Latitude + radius*math.Sin(angle),
			Longitude: center.Longitude + radius*math.Cos(angle),
		})
	}
	return append(out, out[0])
}

func rivers(f *gofakeit.Faker) []string {
	var out []string
	for i := f.Number(0, 3); i > 0; i-- {
		out = append(out, f.LastName()+" River")
	}
	return out
}

// pickPoints returns between one and five distinct point ids.
func pickPoints(f *gofakeit.Faker, points []dataset.Point) []string {
	k := f.Number(1, 5)
	if k > len(points) {
		k = len(points)
	}
	perm := f.Rand.Perm(len(points))
	out := make([]string, 0, k)
	for _, i := range perm[:k] {
		out = append(out, points[i].ID)
	}
	return out
}
