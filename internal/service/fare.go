package service

import (
	"context"
	"fmt"

	"github.com/iliyamo/metro-ticketing/internal/model"
)

// Fare walk strategies.
const (
	// FareLegacy steps to the destination when it is adjacent, otherwise to
	// the largest station id below the destination id.  It assumes ids grow
	// along the line.
	FareLegacy = "legacy"
	// FareBFS counts the shortest path in hops.
	FareBFS = "bfs"
)

// Fare is the result of a price lookup.  StationsCount counts the origin
// plus one per step taken, so adjacent stations give 2.
type Fare struct {
	StationsCount int `json:"stationsCount"`
	Price         int `json:"price"`
}

// FareService prices trips by walking the route graph.
type FareService struct {
	store    Store
	strategy string
}

// NewFareService returns a FareService using strategy, defaulting to
// FareLegacy.
func NewFareService(store Store, strategy string) *FareService {
	if strategy != FareBFS {
		strategy = FareLegacy
	}
	return &FareService{store: store, strategy: strategy}
}

// PriceForCount maps a station count to its price tier.  A count of
// exactly 9 matches neither of the first two tiers and costs 20.
func PriceForCount(count int) int {
	switch {
	case count < 9:
		return 5
	case count > 9 && count < 16:
		return 15
	}
	return 20
}

// Price walks from origin to destination.  The walk ends with ErrNotFound
// when the destination cannot be reached; the visited set grows on every
// step, so it always terminates.
func (f *FareService) Price(ctx context.Context, origin, destination uint64) (Fare, error) {
	if origin == 0 || destination == 0 {
		return Fare{}, fmt.Errorf("%w: origin and destination are required", model.ErrValidation)
	}
	if origin == destination {
		return Fare{}, fmt.Errorf("%w: origin and destination must differ", model.ErrValidation)
	}
	repos := f.store.Repos()
	if _, err := repos.Stations.GetByID(ctx, origin); err != nil {
		return Fare{}, fmt.Errorf("origin station: %w", err)
	}
	if _, err := repos.Stations.GetByID(ctx, destination); err != nil {
		return Fare{}, fmt.Errorf("destination station: %w", err)
	}

	var (
		count int
		err   error
	)
	if f.strategy == FareBFS {
		count, err = shortestCount(ctx, repos.Routes, origin, destination)
	} else {
		count, err = legacyCount(ctx, repos.Routes, origin, destination)
	}
	if err != nil {
		return Fare{}, err
	}
	return Fare{StationsCount: count, Price: PriceForCount(count)}, nil
}

// PriceByName resolves station names before pricing.
func (f *FareService) PriceByName(ctx context.Context, origin, destination string) (Fare, error) {
	repos := f.store.Repos()
	o, err := repos.Stations.GetByName(ctx, origin)
	if err != nil {
		return Fare{}, fmt.Errorf("origin station: %w", err)
	}
	d, err := repos.Stations.GetByName(ctx, destination)
	if err != nil {
		return Fare{}, fmt.Errorf("destination station: %w", err)
	}
	return f.Price(ctx, o.ID, d.ID)
}

func legacyCount(ctx context.Context, routes RouteRepo, origin, destination uint64) (int, error) {
	count := 1
	visited := map[uint64]bool{origin: true}
	current := origin
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		edges, err := routes.ListFrom(ctx, current)
		if err != nil {
			return 0, err
		}
		count++

		var furthest uint64
		for _, e := range edges {
			to := e.ToStationID
			if visited[to] {
				continue
			}
			visited[to] = true
			if to == destination {
				return count, nil
			}
			if to < destination && to > furthest {
				furthest = to
			}
		}
		if furthest == 0 {
			return 0, fmt.Errorf("%w: no path from station %d to station %d", model.ErrNotFound, origin, destination)
		}
		current = furthest
	}
}

func shortestCount(ctx context.Context, routes RouteRepo, origin, destination uint64) (int, error) {
	depth := map[uint64]int{origin: 0}
	frontier := []uint64{origin}
	for len(frontier) > 0 {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		current := frontier[0]
		frontier = frontier[1:]
		edges, err := routes.ListFrom(ctx, current)
		if err != nil {
			return 0, err
		}
		for _, e := range edges {
			if _, seen := depth[e.ToStationID]; seen {
				continue
			}
			depth[e.ToStationID] = depth[current] + 1
			if e.ToStationID == destination {
				return depth[e.ToStationID] + 1, nil
			}
			frontier = append(frontier, e.ToStationID)
		}
	}
	return 0, fmt.Errorf("%w: no path from station %d to station %d", model.ErrNotFound, origin, destination)
}
