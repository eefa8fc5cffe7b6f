// Package model holds the entities persisted by the repositories and the
// sentinel errors shared by every layer.  Services wrap these sentinels
// with detail (fmt.Errorf("%w: ...")) and handlers translate them into
// HTTP status codes with errors.Is.
package model

import "errors"

var (
    // ErrUnauthenticated means no valid session accompanies the request (401).
    ErrUnauthenticated = errors.New("unauthenticated")
    // ErrUnauthorized means the caller's role may not perform the action (403).
    ErrUnauthorized = errors.New("unauthorized")
    // ErrNotFound is returned for a missing station, route, ticket, etc. (404).
    ErrNotFound = errors.New("not found")
    // ErrConflict signals duplicate requests/names or a state that forbids the change (409).
    ErrConflict = errors.New("conflict")
    // ErrValidation marks malformed input such as a bad payment amount (400).
    ErrValidation = errors.New("validation failed")
)
