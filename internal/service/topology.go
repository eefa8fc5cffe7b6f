package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/metro-ticketing/internal/model"
)

// Route deletion modes.
const (
	// RouteDeleteLegacy marks the source station of the edge entering each
	// endpoint of the deleted route as "start".
	RouteDeleteLegacy = "legacy"
	// RouteDeleteDegree recomputes both endpoints from their remaining edges.
	RouteDeleteDegree = "degree"
)

// TopologyService maintains the station chain: stations, routes between
// them and zone prices.  Callers are expected to have checked the admin
// permission before calling any mutating method.
type TopologyService struct {
	store      Store
	deleteMode string
}

// NewTopologyService returns a TopologyService.  Unknown delete modes fall
// back to RouteDeleteLegacy.
func NewTopologyService(store Store, deleteMode string) *TopologyService {
	if deleteMode != RouteDeleteDegree {
		deleteMode = RouteDeleteLegacy
	}
	return &TopologyService{store: store, deleteMode: deleteMode}
}

// CreateStation inserts an unconnected station.  stationType defaults to
// normal.
func (s *TopologyService) CreateStation(ctx context.Context, name, stationType string) (model.Station, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Station{}, fmt.Errorf("%w: station name is required", model.ErrValidation)
	}
	switch stationType {
	case "":
		stationType = model.StationNormal
	case model.StationNormal, model.StationTransfer:
	default:
		return model.Station{}, fmt.Errorf("%w: unknown station type %q", model.ErrValidation, stationType)
	}
	st := model.Station{
		Name:     name,
		Type:     stationType,
		Position: model.PositionNotConnected,
		Status:   model.StationStatusNew,
	}
	err := s.store.WithinTx(ctx, func(ctx context.Context, r Repos) error {
		if _, err := r.Stations.GetByName(ctx, name); err == nil {
			return fmt.Errorf("%w: station %q already exists", model.ErrConflict, name)
		} else if !errors.Is(err, model.ErrNotFound) {
			return err
		}
		return r.Stations.Create(ctx, &st)
	})
	return st, err
}

// AddRouteInput carries the parameters of AddRoute.
type AddRouteInput struct {
	NewStationID       uint64
	ConnectedStationID uint64
	RouteName          string
}

// AddRoute attaches a station to the chain through connected.  Connecting
// at a "start" station creates connected->new and makes new the "end";
// connecting at an "end" station creates new->connected and makes new the
// "start".  A "not connected" station starts a new line.  Middle stations
// are rejected.  The route name is checked before anything is written.
func (s *TopologyService) AddRoute(ctx context.Context, in AddRouteInput) (model.Route, error) {
	name := strings.TrimSpace(in.RouteName)
	if name == "" {
		return model.Route{}, fmt.Errorf("%w: route name is required", model.ErrValidation)
	}
	if in.NewStationID == 0 || in.ConnectedStationID == 0 {
		return model.Route{}, fmt.Errorf("%w: newStationId and connectedStationId are required", model.ErrValidation)
	}
	if in.NewStationID == in.ConnectedStationID {
		return model.Route{}, fmt.Errorf("%w: a station cannot be connected to itself", model.ErrValidation)
	}

	var route model.Route
	err := s.store.WithinTx(ctx, func(ctx context.Context, r Repos) error {
		taken, err := r.Routes.ExistsByName(ctx, name)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("%w: route name %q already exists", model.ErrConflict, name)
		}

		newSt, err := r.Stations.GetByID(ctx, in.NewStationID)
		if err != nil {
			return fmt.Errorf("new station: %w", err)
		}
		if newSt.Status == model.StationStatusOld {
			return fmt.Errorf("%w: station %d is an old station and cannot get a new route", model.ErrValidation, newSt.ID)
		}
		connected, err := r.Stations.GetByID(ctx, in.ConnectedStationID)
		if err != nil {
			return fmt.Errorf("connected station: %w", err)
		}

		var newPosition string
		switch connected.Position {
		case model.PositionStart:
			route = model.Route{Name: name, FromStationID: connected.ID, ToStationID: newSt.ID}
			newPosition = model.PositionEnd
		case model.PositionEnd:
			route = model.Route{Name: name, FromStationID: newSt.ID, ToStationID: connected.ID}
			newPosition = model.PositionStart
		case model.PositionNotConnected:
			if err := r.Stations.UpdatePosition(ctx, connected.ID, model.PositionStart); err != nil {
				return err
			}
			route = model.Route{Name: name, FromStationID: connected.ID, ToStationID: newSt.ID}
			newPosition = model.PositionEnd
		default:
			return fmt.Errorf("%w: cannot add station in middle of route", model.ErrValidation)
		}

		if err := r.Stations.UpdatePosition(ctx, newSt.ID, newPosition); err != nil {
			return err
		}
		if err := r.Routes.Create(ctx, &route); err != nil {
			return err
		}
		for _, sid := range []uint64{route.FromStationID, route.ToStationID} {
			if err := r.StationRoutes.Create(ctx, &model.StationRoute{StationID: sid, RouteID: route.ID}); err != nil {
				return err
			}
		}
		return nil
	})
	return route, err
}

// DeleteStation removes a station and repairs the chain around it
// according to the station's type and position.
func (s *TopologyService) DeleteStation(ctx context.Context, id uint64) error {
	return s.store.WithinTx(ctx, func(ctx context.Context, r Repos) error {
		st, err := r.Stations.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("station: %w", err)
		}
		prev, hasPrev, err := optionalRoute(r.Routes.FirstTo(ctx, id))
		if err != nil {
			return err
		}
		next, hasNext, err := optionalRoute(r.Routes.FirstFrom(ctx, id))
		if err != nil {
			return err
		}

		switch {
		case st.Type == model.StationNormal && st.Position == model.PositionStart:
			if err := removeStation(ctx, r, id); err != nil {
				return err
			}
			if hasNext {
				return r.Stations.UpdatePosition(ctx, next.ToStationID, model.PositionStart)
			}

		case st.Type == model.StationNormal && st.Position == model.PositionMiddle:
			if err := removeStation(ctx, r, id); err != nil {
				return err
			}
			if hasPrev && hasNext {
				// The incoming edge is gone, so its name is free for the splice.
				splice := model.Route{Name: prev.Name, FromStationID: prev.FromStationID, ToStationID: next.ToStationID}
				if err := r.Routes.Create(ctx, &splice); err != nil {
					return err
				}
				return r.StationRoutes.Create(ctx, &model.StationRoute{StationID: next.ToStationID, RouteID: splice.ID})
			}

		case st.Type == model.StationTransfer && st.Position == model.PositionMiddle:
			if hasPrev && hasNext {
				if err := r.Routes.UpdateTarget(ctx, prev.ID, next.ToStationID); err != nil {
					return err
				}
				if err := r.StationRoutes.DeleteByRoute(ctx, next.ID); err != nil {
					return err
				}
				if err := r.Routes.Delete(ctx, next.ID); err != nil {
					return err
				}
				if err := r.StationRoutes.Create(ctx, &model.StationRoute{StationID: next.ToStationID, RouteID: prev.ID}); err != nil {
					return err
				}
			}
			return removeStation(ctx, r, id)

		case st.Type == model.StationNormal && st.Position == model.PositionEnd:
			if err := removeStation(ctx, r, id); err != nil {
				return err
			}
			if hasPrev {
				return r.Stations.UpdatePosition(ctx, prev.FromStationID, model.PositionEnd)
			}

		default:
			return removeStation(ctx, r, id)
		}
		return nil
	})
}

// DeleteRoute removes an edge and repositions its neighbourhood according
// to the configured mode.
func (s *TopologyService) DeleteRoute(ctx context.Context, id uint64) error {
	return s.store.WithinTx(ctx, func(ctx context.Context, r Repos) error {
		rt, err := r.Routes.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("route: %w", err)
		}

		if s.deleteMode == RouteDeleteLegacy {
			// Both lookups promote the source of an entering edge, which for
			// the downstream endpoint is usually this route's own source.
			for _, endpoint := range []uint64{rt.FromStationID, rt.ToStationID} {
				entering, ok, err := optionalRoute(r.Routes.FirstTo(ctx, endpoint))
				if err != nil {
					return err
				}
				if ok {
					if err := r.Stations.UpdatePosition(ctx, entering.FromStationID, model.PositionStart); err != nil {
						return err
					}
				}
			}
		}

		if err := r.StationRoutes.DeleteByRoute(ctx, rt.ID); err != nil {
			return err
		}
		if err := r.Routes.Delete(ctx, rt.ID); err != nil {
			return err
		}

		if s.deleteMode == RouteDeleteDegree {
			for _, endpoint := range []uint64{rt.FromStationID, rt.ToStationID} {
				in, out, err := r.Routes.CountEdges(ctx, endpoint)
				if err != nil {
					return err
				}
				if err := r.Stations.UpdatePosition(ctx, endpoint, PositionForDegree(in, out)); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// PositionForDegree derives a chain position from a station's in/out degree.
func PositionForDegree(in, out int) string {
	switch {
	case in == 0 && out == 0:
		return model.PositionNotConnected
	case in == 0:
		return model.PositionStart
	case out == 0:
		return model.PositionEnd
	}
	return model.PositionMiddle
}

// UpdateRouteName renames a route; names stay globally unique.
func (s *TopologyService) UpdateRouteName(ctx context.Context, id uint64, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: route name is required", model.ErrValidation)
	}
	return s.store.WithinTx(ctx, func(ctx context.Context, r Repos) error {
		rt, err := r.Routes.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("route: %w", err)
		}
		if rt.Name == name {
			return nil
		}
		taken, err := r.Routes.ExistsByName(ctx, name)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("%w: route name %q already exists", model.ErrConflict, name)
		}
		return r.Routes.UpdateName(ctx, id, name)
	})
}

// UpdateStationName renames a station; names stay unique.
func (s *TopologyService) UpdateStationName(ctx context.Context, id uint64, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: station name is required", model.ErrValidation)
	}
	return s.store.WithinTx(ctx, func(ctx context.Context, r Repos) error {
		if _, err := r.Stations.GetByID(ctx, id); err != nil {
			return fmt.Errorf("station: %w", err)
		}
		other, err := r.Stations.GetByName(ctx, name)
		switch {
		case err == nil && other.ID != id:
			return fmt.Errorf("%w: station %q already exists", model.ErrConflict, name)
		case err != nil && !errors.Is(err, model.ErrNotFound):
			return err
		}
		return r.Stations.UpdateName(ctx, id, name)
	})
}

// UpdateZonePrice sets a zone's price.
func (s *TopologyService) UpdateZonePrice(ctx context.Context, id uint64, price int64) error {
	if price < 0 {
		return fmt.Errorf("%w: price must not be negative", model.ErrValidation)
	}
	repos := s.store.Repos()
	if _, err := repos.Zones.GetByID(ctx, id); err != nil {
		return fmt.Errorf("zone: %w", err)
	}
	return repos.Zones.UpdatePrice(ctx, id, price)
}

func (s *TopologyService) ListStations(ctx context.Context) ([]model.Station, error) {
	return s.store.Repos().Stations.List(ctx)
}

func (s *TopologyService) ListRoutes(ctx context.Context) ([]model.RouteView, error) {
	return s.store.Repos().Routes.List(ctx)
}

func (s *TopologyService) ListZones(ctx context.Context) ([]model.Zone, error) {
	return s.store.Repos().Zones.List(ctx)
}

func removeStation(ctx context.Context, r Repos, id uint64) error {
	if err := r.StationRoutes.DeleteByStation(ctx, id); err != nil {
		return err
	}
	if err := r.Routes.DeleteTouching(ctx, id); err != nil {
		return err
	}
	return r.Stations.Delete(ctx, id)
}

// optionalRoute turns ErrNotFound into ok=false.
func optionalRoute(rt model.Route, err error) (model.Route, bool, error) {
	if errors.Is(err, model.ErrNotFound) {
		return model.Route{}, false, nil
	}
	if err != nil {
		return model.Route{}, false, err
	}
	return rt, true, nil
}
