package handler

import (
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/metro-ticketing/internal/service"
)

// TopologyHandler exposes station, route and zone management.  Every write
// is mounted behind RequireAction(auth.ManageTopology) or ManageZones.
type TopologyHandler struct {
    Topology *service.TopologyService
    Timeout  time.Duration
}

func NewTopologyHandler(topology *service.TopologyService, timeout time.Duration) *TopologyHandler {
    if topology == nil {
        panic("nil topology service passed to NewTopologyHandler")
    }
    return &TopologyHandler{Topology: topology, Timeout: timeout}
}

type createStationReq struct {
    StationName string `json:"stationName"`
    StationType string `json:"stationType"`
}
type addRouteReq struct {
    NewStationID       uint64 `json:"newStationId"`
    ConnectedStationID uint64 `json:"connectedStationId"`
    RouteName          string `json:"routeName"`
}
type renameRouteReq struct {
    RouteName string `json:"routeName"`
}
type renameStationReq struct {
    StationName string `json:"stationName"`
}
type zonePriceReq struct {
    Price *int64 `json:"price"`
}

// CreateStation: POST /api/v1/station
func (h *TopologyHandler) CreateStation(c echo.Context) error {
    var req createStationReq
    if err := bind(c, &req); err != nil {
        return writeError(c, err)
    }
    ctx, cancel := requestCtx(c, h.Timeout)
    defer cancel()

    st, err := h.Topology.CreateStation(ctx, req.StationName, req.StationType)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusCreated, st)
}

// AddRoute: POST /api/v1/route
func (h *TopologyHandler) AddRoute(c echo.Context) error {
    var req addRouteReq
    if err := bind(c, &req); err != nil {
        return writeError(c, err)
    }
    ctx, cancel := requestCtx(c, h.Timeout)
    defer cancel()

    rt, err := h.Topology.AddRoute(ctx, service.AddRouteInput{
        NewStationID:       req.NewStationID,
        ConnectedStationID: req.ConnectedStationID,
        RouteName:          req.RouteName,
    })
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusCreated, rt)
}

// DeleteStation: DELETE /api/v1/station/:stationId
func (h *TopologyHandler) DeleteStation(c echo.Context) error {
    id, err := parseID(c, "stationId")
    if err != nil {
        return writeError(c, err)
    }
    ctx, cancel := requestCtx(c, h.Timeout)
    defer cancel()

    if err := h.Topology.DeleteStation(ctx, id); err != nil {
        return writeError(c, err)
    }
    return message(c, http.StatusOK, "station deleted")
}

// DeleteRoute: DELETE /api/v1/route/:routeId
func (h *TopologyHandler) DeleteRoute(c echo.Context) error {
    id, err := parseID(c, "routeId")
    if err != nil {
        return writeError(c, err)
    }
    ctx, cancel := requestCtx(c, h.Timeout)
    defer cancel()

    if err := h.Topology.DeleteRoute(ctx, id); err != nil {
        return writeError(c, err)
    }
    return message(c, http.StatusOK, "route deleted")
}

// UpdateRouteName: PUT /api/v1/route/:routeId
func (h *TopologyHandler) UpdateRouteName(c echo.Context) error {
    id, err := parseID(c, "routeId")
    if err != nil {
        return writeError(c, err)
    }
    var req renameRouteReq
    if err := bind(c, &req); err != nil {
        return writeError(c, err)
    }
    ctx, cancel := requestCtx(c, h.Timeout)
    defer cancel()

    if err := h.Topology.UpdateRouteName(ctx, id, req.RouteName); err != nil {
        return writeError(c, err)
    }
    return message(c, http.StatusOK, "route updated")
}

// UpdateStationName: PUT /api/v1/station/:stationId
func (h *TopologyHandler) UpdateStationName(c echo.Context) error {
    id, err := parseID(c, "stationId")
    if err != nil {
        return writeError(c, err)
    }
    var req renameStationReq
    if err := bind(c, &req); err != nil {
        return writeError(c, err)
    }
    ctx, cancel := requestCtx(c, h.Timeout)
    defer cancel()

    if err := h.Topology.UpdateStationName(ctx, id, req.StationName); err != nil {
        return writeError(c, err)
    }
    return message(c, http.StatusOK, "station updated")
}

// UpdateZonePrice: PUT /api/v1/zones/:zoneId
func (h *TopologyHandler) UpdateZonePrice(c echo.Context) error {
    id, err := parseID(c, "zoneId")
    if err != nil {
        return writeError(c, err)
    }
    var req zonePriceReq
    if err := bind(c, &req); err != nil {
        return writeError(c, err)
    }
    if req.Price == nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "price is required"})
    }
    ctx, cancel := requestCtx(c, h.Timeout)
    defer cancel()

    if err := h.Topology.UpdateZonePrice(ctx, id, *req.Price); err != nil {
        return writeError(c, err)
    }
    return message(c, http.StatusOK, "zone updated")
}

func (h *TopologyHandler) ListStations(c echo.Context) error {
    ctx, cancel := requestCtx(c, h.Timeout)
    defer cancel()

    stations, err := h.Topology.ListStations(ctx)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, stations)
}

// ListRoutes includes the endpoint station names.
func (h *TopologyHandler) ListRoutes(c echo.Context) error {
    ctx, cancel := requestCtx(c, h.Timeout)
    defer cancel()

    routes, err := h.Topology.ListRoutes(ctx)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, routes)
}

func (h *TopologyHandler) ListZones(c echo.Context) error {
    ctx, cancel := requestCtx(c, h.Timeout)
    defer cancel()

    zones, err := h.Topology.ListZones(ctx)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, zones)
}
