package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/metro-ticketing/internal/model"
	"github.com/iliyamo/metro-ticketing/internal/repository/memory"
	"github.com/iliyamo/metro-ticketing/internal/service"
)

func station(t *testing.T, store *memory.Store, id uint64) model.Station {
	t.Helper()
	st, err := store.Repos().Stations.GetByID(context.Background(), id)
	require.NoError(t, err)
	return st
}

func TestCreateStation(t *testing.T) {
	ctx := context.Background()
	svc := service.NewTopologyService(memory.NewStore(), "")

	st, err := svc.CreateStation(ctx, " Tahrir ", "")
	require.NoError(t, err)
	require.Equal(t, "Tahrir", st.Name)
	require.Equal(t, model.StationNormal, st.Type)
	require.Equal(t, model.PositionNotConnected, st.Position)

	_, err = svc.CreateStation(ctx, "Tahrir", model.StationTransfer)
	require.ErrorIs(t, err, model.ErrConflict)
	_, err = svc.CreateStation(ctx, "X", "express")
	require.ErrorIs(t, err, model.ErrValidation)
}

func TestAddRouteBootstrapsLine(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := service.NewTopologyService(store, "")
	a, _ := svc.CreateStation(ctx, "A", "")
	b, _ := svc.CreateStation(ctx, "B", "")

	rt, err := svc.AddRoute(ctx, service.AddRouteInput{NewStationID: b.ID, ConnectedStationID: a.ID, RouteName: "A-B"})
	require.NoError(t, err)
	require.Equal(t, a.ID, rt.FromStationID)
	require.Equal(t, b.ID, rt.ToStationID)
	require.Equal(t, model.PositionStart, station(t, store, a.ID).Position)
	require.Equal(t, model.PositionEnd, station(t, store, b.ID).Position)
	require.Len(t, store.StationRoutes(), 2)
}

func TestAddRouteAtStartAndEnd(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := service.NewTopologyService(store, "")
	a, _ := svc.CreateStation(ctx, "A", "")
	b, _ := svc.CreateStation(ctx, "B", "")
	c, _ := svc.CreateStation(ctx, "C", "")
	d, _ := svc.CreateStation(ctx, "D", "")
	_, err := svc.AddRoute(ctx, service.AddRouteInput{NewStationID: b.ID, ConnectedStationID: a.ID, RouteName: "A-B"})
	require.NoError(t, err)

	// B is the end: the new edge points at it and C becomes a start.
	rt, err := svc.AddRoute(ctx, service.AddRouteInput{NewStationID: c.ID, ConnectedStationID: b.ID, RouteName: "C-B"})
	require.NoError(t, err)
	require.Equal(t, c.ID, rt.FromStationID)
	require.Equal(t, b.ID, rt.ToStationID)
	require.Equal(t, model.PositionStart, station(t, store, c.ID).Position)

	// A is a start: the new edge leaves it and D becomes an end.
	rt, err = svc.AddRoute(ctx, service.AddRouteInput{NewStationID: d.ID, ConnectedStationID: a.ID, RouteName: "A-D"})
	require.NoError(t, err)
	require.Equal(t, a.ID, rt.FromStationID)
	require.Equal(t, model.PositionEnd, station(t, store, d.ID).Position)
}

func TestAddRouteRejections(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := service.NewTopologyService(store, "")
	ids := seedChain(t, store, 3)
	x, _ := svc.CreateStation(ctx, "X", "")

	_, err := svc.AddRoute(ctx, service.AddRouteInput{NewStationID: x.ID, ConnectedStationID: ids[1], RouteName: "mid"})
	require.ErrorIs(t, err, model.ErrValidation)
	require.Equal(t, model.PositionNotConnected, station(t, store, x.ID).Position)

	_, err = svc.AddRoute(ctx, service.AddRouteInput{NewStationID: x.ID, ConnectedStationID: ids[0], RouteName: "R1"})
	require.ErrorIs(t, err, model.ErrConflict)
	require.Equal(t, model.PositionNotConnected, station(t, store, x.ID).Position)

	_, err = svc.AddRoute(ctx, service.AddRouteInput{NewStationID: x.ID, ConnectedStationID: x.ID, RouteName: "self"})
	require.ErrorIs(t, err, model.ErrValidation)

	_, err = svc.AddRoute(ctx, service.AddRouteInput{NewStationID: 999, ConnectedStationID: ids[0], RouteName: "ghost"})
	require.ErrorIs(t, err, model.ErrNotFound)

	old := model.Station{Name: "Old", Type: model.StationNormal, Status: model.StationStatusOld}
	require.NoError(t, store.Repos().Stations.Create(ctx, &old))
	_, err = svc.AddRoute(ctx, service.AddRouteInput{NewStationID: old.ID, ConnectedStationID: ids[0], RouteName: "old"})
	require.ErrorIs(t, err, model.ErrValidation)
}

func TestAddThenDeleteRouteRestoresStart(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := service.NewTopologyService(store, service.RouteDeleteLegacy)
	a, _ := svc.CreateStation(ctx, "A", "")
	b, _ := svc.CreateStation(ctx, "B", "")
	rt, err := svc.AddRoute(ctx, service.AddRouteInput{NewStationID: b.ID, ConnectedStationID: a.ID, RouteName: "A-B"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteRoute(ctx, rt.ID))
	require.Equal(t, model.PositionStart, station(t, store, a.ID).Position)
	require.Empty(t, store.StationRoutes())

	require.ErrorIs(t, svc.DeleteRoute(ctx, rt.ID), model.ErrNotFound)
}

func TestDeleteRouteDegreeMode(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := service.NewTopologyService(store, service.RouteDeleteDegree)
	ids := seedChain(t, store, 3)
	routes, err := svc.ListRoutes(ctx)
	require.NoError(t, err)
	require.Len(t, routes, 2)

	require.NoError(t, svc.DeleteRoute(ctx, routes[1].ID))
	require.Equal(t, model.PositionEnd, station(t, store, ids[1]).Position)
	require.Equal(t, model.PositionNotConnected, station(t, store, ids[2]).Position)
	require.Equal(t, model.PositionStart, station(t, store, ids[0]).Position)
}

func TestPositionForDegree(t *testing.T) {
	require.Equal(t, model.PositionNotConnected, service.PositionForDegree(0, 0))
	require.Equal(t, model.PositionStart, service.PositionForDegree(0, 2))
	require.Equal(t, model.PositionEnd, service.PositionForDegree(1, 0))
	require.Equal(t, model.PositionMiddle, service.PositionForDegree(1, 1))
}

func TestDeleteStartStation(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := service.NewTopologyService(store, "")
	ids := seedChain(t, store, 3)

	require.NoError(t, svc.DeleteStation(ctx, ids[0]))
	require.Equal(t, model.PositionStart, station(t, store, ids[1]).Position)
	routes, _ := svc.ListRoutes(ctx)
	require.Len(t, routes, 1)
}

func TestDeleteEndStation(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := service.NewTopologyService(store, "")
	ids := seedChain(t, store, 3)

	require.NoError(t, svc.DeleteStation(ctx, ids[2]))
	require.Equal(t, model.PositionEnd, station(t, store, ids[1]).Position)
}

func TestDeleteNormalMiddleSplices(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := service.NewTopologyService(store, "")
	ids := seedChain(t, store, 3)

	require.NoError(t, svc.DeleteStation(ctx, ids[1]))
	routes, err := svc.ListRoutes(ctx)
	require.NoError(t, err)
	require.Len(t, routes, 1)
	require.Equal(t, "R1", routes[0].Name)
	require.Equal(t, ids[0], routes[0].FromStationID)
	require.Equal(t, ids[2], routes[0].ToStationID)
	require.Equal(t, "S3", routes[0].ToStationName)

	links := store.StationRoutes()
	require.Len(t, links, 1)
	require.Equal(t, ids[2], links[0].StationID)
	require.Equal(t, routes[0].ID, links[0].RouteID)
}

func TestDeleteTransferMiddleRewritesIncoming(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	r := store.Repos()
	a := model.Station{Name: "A", Type: model.StationNormal, Position: model.PositionStart}
	b := model.Station{Name: "B", Type: model.StationTransfer, Position: model.PositionMiddle}
	c := model.Station{Name: "C", Type: model.StationNormal, Position: model.PositionEnd}
	for _, st := range []*model.Station{&a, &b, &c} {
		require.NoError(t, r.Stations.Create(ctx, st))
	}
	in := model.Route{Name: "AB", FromStationID: a.ID, ToStationID: b.ID}
	out := model.Route{Name: "BC", FromStationID: b.ID, ToStationID: c.ID}
	require.NoError(t, r.Routes.Create(ctx, &in))
	require.NoError(t, r.Routes.Create(ctx, &out))

	svc := service.NewTopologyService(store, "")
	require.NoError(t, svc.DeleteStation(ctx, b.ID))

	routes, err := svc.ListRoutes(ctx)
	require.NoError(t, err)
	require.Len(t, routes, 1)
	require.Equal(t, in.ID, routes[0].ID)
	require.Equal(t, c.ID, routes[0].ToStationID)
	require.Equal(t, model.PositionEnd, station(t, store, c.ID).Position)

	links := store.StationRoutes()
	require.Len(t, links, 1)
	require.Equal(t, model.StationRoute{ID: links[0].ID, StationID: c.ID, RouteID: in.ID}, links[0])

	_, err = r.Stations.GetByID(ctx, b.ID)
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestDeleteUnknownStation(t *testing.T) {
	svc := service.NewTopologyService(memory.NewStore(), "")
	require.ErrorIs(t, svc.DeleteStation(context.Background(), 42), model.ErrNotFound)
}

func TestRenames(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := service.NewTopologyService(store, "")
	ids := seedChain(t, store, 3)
	routes, _ := svc.ListRoutes(ctx)

	require.ErrorIs(t, svc.UpdateRouteName(ctx, routes[0].ID, "R2"), model.ErrConflict)
	require.NoError(t, svc.UpdateRouteName(ctx, routes[0].ID, "Blue"))
	require.NoError(t, svc.UpdateRouteName(ctx, routes[0].ID, "Blue"))
	require.ErrorIs(t, svc.UpdateRouteName(ctx, 99, "Red"), model.ErrNotFound)

	require.ErrorIs(t, svc.UpdateStationName(ctx, ids[0], "S2"), model.ErrConflict)
	require.NoError(t, svc.UpdateStationName(ctx, ids[0], "Opera"))
	require.Equal(t, "Opera", station(t, store, ids[0]).Name)
}

func TestUpdateZonePrice(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := service.NewTopologyService(store, "")

	require.NoError(t, svc.UpdateZonePrice(ctx, 2, 30))
	zones, err := svc.ListZones(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(30), zones[1].Price)

	require.ErrorIs(t, svc.UpdateZonePrice(ctx, 9, 1), model.ErrNotFound)
	require.ErrorIs(t, svc.UpdateZonePrice(ctx, 1, -1), model.ErrValidation)
}
