package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/metro-ticketing/internal/model"
	"github.com/iliyamo/metro-ticketing/internal/repository/memory"
	"github.com/iliyamo/metro-ticketing/internal/service"
)

func TestPriceForCount(t *testing.T) {
	cases := map[int]int{2: 5, 8: 5, 9: 20, 10: 15, 15: 15, 16: 20, 30: 20}
	for count, want := range cases {
		require.Equal(t, want, service.PriceForCount(count), "count %d", count)
	}
}

func TestFareAlongChain(t *testing.T) {
	ctx := context.Background()
	for _, strategy := range []string{service.FareLegacy, service.FareBFS} {
		store := memory.NewStore()
		ids := seedChain(t, store, 17)
		fares := service.NewFareService(store, strategy)

		f, err := fares.Price(ctx, ids[0], ids[1])
		require.NoError(t, err, strategy)
		require.Equal(t, service.Fare{StationsCount: 2, Price: 5}, f, strategy)

		f, err = fares.Price(ctx, ids[0], ids[8])
		require.NoError(t, err)
		require.Equal(t, service.Fare{StationsCount: 9, Price: 20}, f, strategy)

		f, err = fares.Price(ctx, ids[0], ids[9])
		require.NoError(t, err)
		require.Equal(t, service.Fare{StationsCount: 10, Price: 15}, f, strategy)

		f, err = fares.Price(ctx, ids[0], ids[16])
		require.NoError(t, err)
		require.Equal(t, service.Fare{StationsCount: 17, Price: 20}, f, strategy)
	}
}

func TestFareUnreachableTerminates(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	ids := seedChain(t, store, 4)
	// close the chain into a cycle so a naive walk would never stop
	require.NoError(t, store.Repos().Routes.Create(ctx, &model.Route{Name: "loop", FromStationID: ids[3], ToStationID: ids[0]}))
	lone := model.Station{Name: "Lone", Type: model.StationNormal}
	require.NoError(t, store.Repos().Stations.Create(ctx, &lone))

	for _, strategy := range []string{service.FareLegacy, service.FareBFS} {
		_, err := service.NewFareService(store, strategy).Price(ctx, ids[0], lone.ID)
		require.ErrorIs(t, err, model.ErrNotFound, strategy)
	}
}

func TestFareValidation(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	ids := seedChain(t, store, 2)
	fares := service.NewFareService(store, "")

	_, err := fares.Price(ctx, ids[0], ids[0])
	require.ErrorIs(t, err, model.ErrValidation)
	_, err = fares.Price(ctx, ids[0], 999)
	require.ErrorIs(t, err, model.ErrNotFound)
	_, err = fares.PriceByName(ctx, "S1", "nowhere")
	require.ErrorIs(t, err, model.ErrNotFound)

	f, err := fares.PriceByName(ctx, "S1", "S2")
	require.NoError(t, err)
	require.Equal(t, 2, f.StationsCount)
}

func TestFareBFSFindsShorterBranch(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	ids := seedChain(t, store, 6)
	// shortcut from the first station straight to the fifth
	require.NoError(t, store.Repos().Routes.Create(ctx, &model.Route{Name: "express", FromStationID: ids[0], ToStationID: ids[4]}))

	f, err := service.NewFareService(store, service.FareBFS).Price(ctx, ids[0], ids[5])
	require.NoError(t, err)
	require.Equal(t, 3, f.StationsCount)
}
