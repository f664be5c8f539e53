package domain

import "time"

// Role determines which portal surface a user may operate.
type Role string

const (
	RoleDoctor  Role = "doctor"
	RoleLabTech Role = "lab"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleDoctor || r == RoleLabTech
}

// User models a portal account: a submitting doctor or a lab technician.
// Role is immutable after creation.
type User struct {
	ID                string    `json:"id" bson:"_id,omitempty"`
	Username          string    `json:"username" bson:"username"`
	PasswordHash      string    `json:"-" bson:"password_hash"`
	Role              Role      `json:"role" bson:"role"`
	FullName          string    `json:"full_name" bson:"full_name"`
	ReadingCentreCode string    `json:"reading_centre_code,omitempty" bson:"reading_centre_code,omitempty"`
	Active            bool      `json:"active" bson:"active"`
	CreatedAt         time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" bson:"updated_at"`
}

// Actor identifies the authenticated user performing an operation.
// State-changing service methods take it explicitly rather than reading
// ambient request state.
type Actor struct {
	ID       string
	Username string
	Role     Role
	FullName string
}
