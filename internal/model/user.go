package model

import "time"

// Role is the numeric role identifier stored in users.role_id.  The
// values match the rows seeded into the `roles` table.
type Role uint8

const (
    RoleNormal Role = 1 // regular passenger
    RoleAdmin  Role = 2 // operator managing topology and requests
    RoleSenior Role = 3 // passenger with an approved senior request
)

// String returns the role name as stored in roles.name.
func (r Role) String() string {
    switch r {
    case RoleNormal:
        return "normal"
    case RoleAdmin:
        return "admin"
    case RoleSenior:
        return "senior"
    }
    return "unknown"
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool { return r == RoleNormal || r == RoleAdmin || r == RoleSenior }

// User represents a row of the `users` table joined with its role.
// The boolean flags are derived from RoleID by the identity resolver
// and are never persisted.
//
// Fields:
//  ID           – primary key identifier.
//  FirstName    – given name.
//  LastName     – family name.
//  Email        – unique, lower-cased email address.
//  PasswordHash – bcrypt hash; never serialized.
//  RoleID       – foreign key into roles.
//  RoleName     – roles.name, filled when the row is joined.
type User struct {
    ID           uint64    `json:"id"`            // users.id
    FirstName    string    `json:"first_name"`    // users.first_name
    LastName     string    `json:"last_name"`     // users.last_name
    Email        string    `json:"email"`         // users.email
    PasswordHash string    `json:"-"`             // users.password
    RoleID       Role      `json:"role_id"`       // users.role_id
    RoleName     string    `json:"role,omitempty"`
    CreatedAt    time.Time `json:"created_at"`    // users.created_at

    IsNormal bool `json:"is_normal"`
    IsAdmin  bool `json:"is_admin"`
    IsSenior bool `json:"is_senior"`
}

// WithRoleFlags sets the IsNormal/IsAdmin/IsSenior flags from RoleID.
func (u *User) WithRoleFlags() *User {
    u.IsNormal = u.RoleID == RoleNormal
    u.IsAdmin = u.RoleID == RoleAdmin
    u.IsSenior = u.RoleID == RoleSenior
    if u.RoleName == "" {
        u.RoleName = u.RoleID.String()
    }
    return u
}

// Session models an entry in the `sessions` table.  A session maps an
// opaque token to the user who owns it.
type Session struct {
    Token     string    // sessions.token
    UserID    uint64    // sessions.user_id
    ExpiresAt time.Time // sessions.expires_at
    CreatedAt time.Time // sessions.created_at
}
