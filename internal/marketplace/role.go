// Package marketplace implements the job marketplace core: the job catalog,
// the application workflow, and the role and ownership rules guarding both.
package marketplace

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Role is the fixed role a user registers with.
type Role int

const (
	// RoleEmployer posts and manages jobs.
	RoleEmployer Role = iota + 1
	// RoleJobSeeker applies to jobs.
	RoleJobSeeker
)

// Wire names for roles.
const (
	roleEmployerName  = "employer"
	roleJobSeekerName = "jobSeeker"
)

// ParseRole converts a wire name into a Role.
func ParseRole(s string) (Role, error) {
	switch s {
	case roleEmployerName:
		return RoleEmployer, nil
	case roleJobSeekerName:
		return RoleJobSeeker, nil
	default:
		return 0, &ErrValidation{Field: "role", Message: fmt.Sprintf("must be %s or %s", roleEmployerName, roleJobSeekerName)}
	}
}

func (r Role) String() string {
	switch r {
	case RoleEmployer:
		return roleEmployerName
	case RoleJobSeeker:
		return roleJobSeekerName
	default:
		return "unknown"
	}
}

// Valid reports whether r is one of the defined roles.
func (r Role) Valid() bool {
	switch r {
	case RoleEmployer, RoleJobSeeker:
		return true
	default:
		return false
	}
}

// MarshalJSON implements json.Marshaler
func (r Role) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// UnmarshalJSON implements json.Unmarshaler
func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// User is a registered marketplace participant
type User struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	Company   string    `json:"company,omitempty"` // employers only
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsEmployer reports whether the user registered as an employer.
func (u *User) IsEmployer() bool {
	return u != nil && u.Role == RoleEmployer
}

// IsJobSeeker reports whether the user registered as a job seeker.
func (u *User) IsJobSeeker() bool {
	return u != nil && u.Role == RoleJobSeeker
}
