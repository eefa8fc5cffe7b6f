package model

// Station types.
const (
    StationNormal   = "normal"
    StationTransfer = "transfer"
)

// Station positions inside a linear route chain.
const (
    PositionStart        = "start"
    PositionMiddle       = "middle"
    PositionEnd          = "end"
    PositionNotConnected = "not connected"
)

// Station statuses.  Stations are created "new"; an "old" station can no
// longer be attached to a route.
const (
    StationStatusNew = "new"
    StationStatusOld = "old"
)

// Station mirrors the `stations` table.
type Station struct {
    ID       uint64 `json:"id"`       // stations.id
    Name     string `json:"name"`     // stations.name (unique)
    Type     string `json:"type"`     // stations.type
    Position string `json:"position"` // stations.position
    Status   string `json:"status"`   // stations.status
}

// Route is a directed edge between two stations.
type Route struct {
    ID            uint64 `json:"id"`              // routes.id
    Name          string `json:"name"`            // routes.name (unique)
    FromStationID uint64 `json:"from_station_id"` // routes.from_station_id
    ToStationID   uint64 `json:"to_station_id"`   // routes.to_station_id
}

// RouteView is a route joined with the names of its endpoints.
type RouteView struct {
    Route
    FromStationName string `json:"from_station_name"`
    ToStationName   string `json:"to_station_name"`
}

// StationRoute records a station-route association in `stationroutes`.
type StationRoute struct {
    ID        uint64 `json:"id"`
    StationID uint64 `json:"station_id"`
    RouteID   uint64 `json:"route_id"`
}

// Zone mirrors the `zones` table.
type Zone struct {
    ID       uint64 `json:"id"`        // zones.id
    ZoneType string `json:"zone_type"` // zones.zone_type
    Price    int64  `json:"price"`     // zones.price
}
