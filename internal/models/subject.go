package models

import "time"

// Role is the authority a credential check grants.
type Role string

const (
	RoleMaster Role = "master"
	RoleGuest  Role = "guest"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleMaster || r == RoleGuest
}

// Subject is the security record a control panel acts on behalf of.
type Subject struct {
	ID         string    `json:"id"`
	MasterHash string    `json:"-"`
	GuestHash  string    `json:"-"`
	Powered    bool      `json:"powered"`
	Armed      bool      `json:"armed"`
	UpdatedAt  time.Time `json:"updated_at"`
}
