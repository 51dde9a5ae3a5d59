/**
 * @description
 * Core identity and session models shared across the client. The Session is
 * the single unit of authenticated state: a token pair plus the user profile
 * the backend reported when the pair was issued.
 */

package domain

import "time"

// Role identifies which product surface a user belongs to.
type Role string

const (
	RoleCustomer Role = "customer"
	RolePartner  Role = "partner"
	RoleAgent    Role = "agent"
)

// User is the authenticated user's profile as reported by the backend.
type User struct {
	ID           string    `json:"id"`
	Phone        string    `json:"phone"`
	FullName     string    `json:"full_name"`
	Email        *string   `json:"email,omitempty"`
	Role         Role      `json:"role"`
	IsActive     bool      `json:"is_active"`
	DateJoined   time.Time `json:"date_joined"`
	ProfilePhoto *string   `json:"profile_photo,omitempty"`
}

// HasRole reports whether the user carries the given role.
func (u *User) HasRole(r Role) bool {
	return u != nil && u.Role == r
}

// TokenPair is the access/refresh pair issued by the auth endpoints.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Session is the unit of authenticated state. It is created whole on login
// and replaced whole on refresh; callers never observe a partially filled
// session.
type Session struct {
	Tokens   TokenPair `json:"tokens"`
	User     User      `json:"user"`
	DeviceID string    `json:"device_id"`
	IssuedAt time.Time `json:"issued_at"`
}
