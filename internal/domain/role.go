package domain

import (
	"strings"
	"time"
)

// Role is the single access tier an actor holds. The set is closed: every
// switch over Role must handle all four values.
type Role string

const (
	RoleUser       Role = "user"
	RoleAstrologer Role = "astrologer"
	RolePriest     Role = "priest"
	RoleAdmin      Role = "admin"
)

// Roles lists every valid role in display order.
var Roles = []Role{RoleUser, RoleAstrologer, RolePriest, RoleAdmin}

func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", false
	}
	return r, true
}

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAstrologer, RolePriest, RoleAdmin:
		return true
	default:
		return false
	}
}

// IsProvider reports whether the role fulfils bookings (astrologer or priest).
func (r Role) IsProvider() bool {
	switch r {
	case RoleAstrologer, RolePriest:
		return true
	case RoleUser, RoleAdmin:
		return false
	default:
		return false
	}
}

// ServiceType returns the booking service a provider role may claim.
func (r Role) ServiceType() (ServiceType, bool) {
	switch r {
	case RoleAstrologer:
		return ServiceConsultation, true
	case RolePriest:
		return ServicePooja, true
	case RoleUser, RoleAdmin:
		return "", false
	default:
		return "", false
	}
}

// Actor is an authenticated identity paired with its resolved role.
// The zero value is the anonymous actor.
type Actor struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

func (a Actor) Anonymous() bool {
	return a.ID == ""
}

// Is reports whether the actor has the given id. Empty ids never match.
func (a Actor) Is(id *string) bool {
	return a.ID != "" && id != nil && *id == a.ID
}

// UserRole is the authoritative role record. Absence of a row means RoleUser.
type UserRole struct {
	UserID    string `gorm:"column:user_id;primaryKey;size:36"`
	Role      Role   `gorm:"column:role;size:16;not null"`
	UpdatedAt time.Time
}

func (UserRole) TableName() string { return "user_roles" }
