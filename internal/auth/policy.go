package auth

import "github.com/iliyamo/metro-ticketing/internal/model"

// Action names something a caller may attempt.
type Action int

const (
	ManageTopology Action = iota + 1 // stations and routes
	ManageZones
	DecideRefund
	DecideSenior
	ListUsers
	ListAllRequests
	BuyTicket
	BuySubscription
	RequestRefund
	RequestSenior
	ViewOwn
)

var adminOnly = map[Action]bool{
	ManageTopology:  true,
	ManageZones:     true,
	DecideRefund:    true,
	DecideSenior:    true,
	ListUsers:       true,
	ListAllRequests: true,
}

// Can reports whether role may perform action.  Administrative actions are
// admin-only; passenger actions are open to every known role.
func Can(role model.Role, action Action) bool {
	if !role.Valid() {
		return false
	}
	if adminOnly[action] {
		return role == model.RoleAdmin
	}
	switch action {
	case BuyTicket, BuySubscription, RequestRefund, RequestSenior, ViewOwn:
		return true
	}
	return false
}
