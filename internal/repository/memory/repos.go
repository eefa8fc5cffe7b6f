package memory

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/iliyamo/metro-ticketing/internal/model"
)

// ordered returns the values of m sorted by id, filtered by keep.
func ordered[V any](m map[uint64]V, keep func(V) bool) []V {
	var out []V
	for _, id := range slices.Sorted(maps.Keys(m)) {
		if keep == nil || keep(m[id]) {
			out = append(out, m[id])
		}
	}
	return out
}

func notFound(what string, id any) error {
	return fmt.Errorf("%s %v: %w", what, id, model.ErrNotFound)
}

type userRepo struct{ c conn }

func (r userRepo) Create(_ context.Context, u *model.User) error {
	return r.c.do(func(st *state) error {
		u.Email = strings.ToLower(strings.TrimSpace(u.Email))
		for _, other := range st.users {
			if other.Email == u.Email {
				return model.ErrConflict
			}
		}
		if u.RoleID == 0 {
			u.RoleID = model.RoleNormal
		}
		u.ID = st.next("users")
		u.RoleName = u.RoleID.String()
		if u.CreatedAt.IsZero() {
			u.CreatedAt = time.Now().UTC()
		}
		st.users[u.ID] = *u
		return nil
	})
}

func (r userRepo) GetByID(_ context.Context, id uint64) (u model.User, err error) {
	err = r.c.do(func(st *state) error {
		var ok bool
		if u, ok = st.users[id]; !ok {
			return notFound("user", id)
		}
		return nil
	})
	return u, err
}

func (r userRepo) GetByEmail(_ context.Context, email string) (u model.User, err error) {
	email = strings.ToLower(strings.TrimSpace(email))
	err = r.c.do(func(st *state) error {
		for _, other := range st.users {
			if other.Email == email {
				u = other
				return nil
			}
		}
		return notFound("user", email)
	})
	return u, err
}

func (r userRepo) List(_ context.Context) (out []model.User, err error) {
	err = r.c.do(func(st *state) error {
		out = ordered(st.users, nil)
		return nil
	})
	return out, err
}

func (r userRepo) UpdatePassword(_ context.Context, id uint64, hash string) error {
	return r.c.do(func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return notFound("user", id)
		}
		u.PasswordHash = hash
		st.users[id] = u
		return nil
	})
}

func (r userRepo) UpdateRole(_ context.Context, id uint64, role model.Role) error {
	return r.c.do(func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return notFound("user", id)
		}
		u.RoleID = role
		u.RoleName = role.String()
		st.users[id] = u
		return nil
	})
}

// LockForUpdate only checks the user exists: transactions are serialized.
func (r userRepo) LockForUpdate(_ context.Context, id uint64) error {
	return r.c.do(func(st *state) error {
		if _, ok := st.users[id]; !ok {
			return notFound("user", id)
		}
		return nil
	})
}

type sessionRepo struct{ c conn }

func (r sessionRepo) Create(_ context.Context, s model.Session) error {
	return r.c.do(func(st *state) error {
		if _, ok := st.sessions[s.Token]; ok {
			return model.ErrConflict
		}
		st.sessions[s.Token] = s
		return nil
	})
}

func (r sessionRepo) UserByToken(_ context.Context, token string, now time.Time) (u model.User, err error) {
	err = r.c.do(func(st *state) error {
		s, ok := st.sessions[token]
		if !ok || !s.ExpiresAt.After(now) {
			return notFound("session", "token")
		}
		if u, ok = st.users[s.UserID]; !ok {
			return notFound("user", s.UserID)
		}
		return nil
	})
	return u, err
}

func (r sessionRepo) Delete(_ context.Context, token string) error {
	return r.c.do(func(st *state) error {
		delete(st.sessions, token)
		return nil
	})
}

type stationRepo struct{ c conn }

func (r stationRepo) Create(_ context.Context, s *model.Station) error {
	return r.c.do(func(st *state) error {
		for _, other := range st.stations {
			if other.Name == s.Name {
				return model.ErrConflict
			}
		}
		if s.Position == "" {
			s.Position = model.PositionNotConnected
		}
		if s.Status == "" {
			s.Status = model.StationStatusNew
		}
		s.ID = st.next("stations")
		st.stations[s.ID] = *s
		return nil
	})
}

func (r stationRepo) GetByID(_ context.Context, id uint64) (s model.Station, err error) {
	err = r.c.do(func(st *state) error {
		var ok bool
		if s, ok = st.stations[id]; !ok {
			return notFound("station", id)
		}
		return nil
	})
	return s, err
}

func (r stationRepo) GetByName(_ context.Context, name string) (s model.Station, err error) {
	err = r.c.do(func(st *state) error {
		for _, id := range slices.Sorted(maps.Keys(st.stations)) {
			if st.stations[id].Name == name {
				s = st.stations[id]
				return nil
			}
		}
		return notFound("station", name)
	})
	return s, err
}

func (r stationRepo) List(_ context.Context) (out []model.Station, err error) {
	err = r.c.do(func(st *state) error {
		out = ordered(st.stations, nil)
		return nil
	})
	return out, err
}

func (r stationRepo) update(id uint64, fn func(*model.Station)) error {
	return r.c.do(func(st *state) error {
		s, ok := st.stations[id]
		if !ok {
			return nil
		}
		fn(&s)
		st.stations[id] = s
		return nil
	})
}

func (r stationRepo) UpdatePosition(_ context.Context, id uint64, position string) error {
	return r.update(id, func(s *model.Station) { s.Position = position })
}

func (r stationRepo) UpdateName(_ context.Context, id uint64, name string) error {
	return r.update(id, func(s *model.Station) { s.Name = name })
}

// Delete removes the station together with the routes and association
// rows that reference it, as the foreign keys cascade in SQL.
func (r stationRepo) Delete(_ context.Context, id uint64) error {
	return r.c.do(func(st *state) error {
		if _, ok := st.stations[id]; !ok {
			return notFound("station", id)
		}
		delete(st.stations, id)
		for rid, rt := range st.routes {
			if rt.FromStationID == id || rt.ToStationID == id {
				delete(st.routes, rid)
				dropStationRoutes(st, func(sr model.StationRoute) bool { return sr.RouteID == rid })
			}
		}
		dropStationRoutes(st, func(sr model.StationRoute) bool { return sr.StationID == id })
		return nil
	})
}

func dropStationRoutes(st *state, match func(model.StationRoute) bool) {
	for id, sr := range st.stationRoutes {
		if match(sr) {
			delete(st.stationRoutes, id)
		}
	}
}

type routeRepo struct{ c conn }

func (r routeRepo) Create(_ context.Context, rt *model.Route) error {
	return r.c.do(func(st *state) error {
		for _, other := range st.routes {
			if other.Name == rt.Name {
				return model.ErrConflict
			}
		}
		if _, ok := st.stations[rt.FromStationID]; !ok {
			return notFound("station", rt.FromStationID)
		}
		if _, ok := st.stations[rt.ToStationID]; !ok {
			return notFound("station", rt.ToStationID)
		}
		rt.ID = st.next("routes")
		st.routes[rt.ID] = *rt
		return nil
	})
}

func (r routeRepo) GetByID(_ context.Context, id uint64) (rt model.Route, err error) {
	err = r.c.do(func(st *state) error {
		var ok bool
		if rt, ok = st.routes[id]; !ok {
			return notFound("route", id)
		}
		return nil
	})
	return rt, err
}

func (r routeRepo) ExistsByName(_ context.Context, name string) (exists bool, err error) {
	err = r.c.do(func(st *state) error {
		for _, rt := range st.routes {
			if rt.Name == name {
				exists = true
				break
			}
		}
		return nil
	})
	return exists, err
}

func (r routeRepo) first(stationID uint64, match func(model.Route) bool) (rt model.Route, err error) {
	err = r.c.do(func(st *state) error {
		found := ordered(st.routes, match)
		if len(found) == 0 {
			return notFound("route touching station", stationID)
		}
		rt = found[0]
		return nil
	})
	return rt, err
}

func (r routeRepo) FirstFrom(_ context.Context, stationID uint64) (model.Route, error) {
	return r.first(stationID, func(rt model.Route) bool { return rt.FromStationID == stationID })
}

func (r routeRepo) FirstTo(_ context.Context, stationID uint64) (model.Route, error) {
	return r.first(stationID, func(rt model.Route) bool { return rt.ToStationID == stationID })
}

func (r routeRepo) ListFrom(_ context.Context, stationID uint64) (out []model.Route, err error) {
	err = r.c.do(func(st *state) error {
		out = ordered(st.routes, func(rt model.Route) bool { return rt.FromStationID == stationID })
		return nil
	})
	return out, err
}

func (r routeRepo) CountEdges(_ context.Context, stationID uint64) (in, out int, err error) {
	err = r.c.do(func(st *state) error {
		for _, rt := range st.routes {
			if rt.ToStationID == stationID {
				in++
			}
			if rt.FromStationID == stationID {
				out++
			}
		}
		return nil
	})
	return in, out, err
}

func (r routeRepo) List(_ context.Context) (out []model.RouteView, err error) {
	err = r.c.do(func(st *state) error {
		for _, rt := range ordered(st.routes, nil) {
			out = append(out, model.RouteView{
				Route:           rt,
				FromStationName: st.stations[rt.FromStationID].Name,
				ToStationName:   st.stations[rt.ToStationID].Name,
			})
		}
		return nil
	})
	return out, err
}

func (r routeRepo) update(id uint64, fn func(*model.Route)) error {
	return r.c.do(func(st *state) error {
		rt, ok := st.routes[id]
		if !ok {
			return nil
		}
		fn(&rt)
		st.routes[id] = rt
		return nil
	})
}

func (r routeRepo) UpdateName(_ context.Context, id uint64, name string) error {
	return r.update(id, func(rt *model.Route) { rt.Name = name })
}

func (r routeRepo) UpdateTarget(_ context.Context, id, toStationID uint64) error {
	return r.update(id, func(rt *model.Route) { rt.ToStationID = toStationID })
}

func (r routeRepo) Delete(_ context.Context, id uint64) error {
	return r.c.do(func(st *state) error {
		if _, ok := st.routes[id]; !ok {
			return notFound("route", id)
		}
		delete(st.routes, id)
		dropStationRoutes(st, func(sr model.StationRoute) bool { return sr.RouteID == id })
		return nil
	})
}

func (r routeRepo) DeleteTouching(_ context.Context, stationID uint64) error {
	return r.c.do(func(st *state) error {
		for id, rt := range st.routes {
			if rt.FromStationID == stationID || rt.ToStationID == stationID {
				delete(st.routes, id)
				dropStationRoutes(st, func(sr model.StationRoute) bool { return sr.RouteID == id })
			}
		}
		return nil
	})
}

type stationRouteRepo struct{ c conn }

func (r stationRouteRepo) Create(_ context.Context, sr *model.StationRoute) error {
	return r.c.do(func(st *state) error {
		sr.ID = st.next("stationroutes")
		st.stationRoutes[sr.ID] = *sr
		return nil
	})
}

func (r stationRouteRepo) DeleteByStation(_ context.Context, stationID uint64) error {
	return r.c.do(func(st *state) error {
		touching := map[uint64]bool{}
		for id, rt := range st.routes {
			if rt.FromStationID == stationID || rt.ToStationID == stationID {
				touching[id] = true
			}
		}
		dropStationRoutes(st, func(sr model.StationRoute) bool {
			return sr.StationID == stationID || touching[sr.RouteID]
		})
		return nil
	})
}

func (r stationRouteRepo) DeleteByRoute(_ context.Context, routeID uint64) error {
	return r.c.do(func(st *state) error {
		dropStationRoutes(st, func(sr model.StationRoute) bool { return sr.RouteID == routeID })
		return nil
	})
}

// StationRoutes returns every association row, ordered by id.  It exists
// for tests and has no SQL counterpart.
func (s *Store) StationRoutes() []model.StationRoute {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ordered(s.state.stationRoutes, nil)
}

type zoneRepo struct{ c conn }

func (r zoneRepo) GetByID(_ context.Context, id uint64) (z model.Zone, err error) {
	err = r.c.do(func(st *state) error {
		var ok bool
		if z, ok = st.zones[id]; !ok {
			return notFound("zone", id)
		}
		return nil
	})
	return z, err
}

func (r zoneRepo) List(_ context.Context) (out []model.Zone, err error) {
	err = r.c.do(func(st *state) error {
		out = ordered(st.zones, nil)
		return nil
	})
	return out, err
}

func (r zoneRepo) UpdatePrice(_ context.Context, id uint64, price int64) error {
	return r.c.do(func(st *state) error {
		z, ok := st.zones[id]
		if !ok {
			return notFound("zone", id)
		}
		z.Price = price
		st.zones[id] = z
		return nil
	})
}
