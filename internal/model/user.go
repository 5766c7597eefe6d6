package model

import "time"

// Role is the only authorization discriminator: a user is either a master or a player
type Role int

const (
	RolePlayer Role = iota
	RoleMaster
)

// RoleFromMaster derives the role from the stored master flag
func RoleFromMaster(isMaster bool) Role {
	if isMaster {
		return RoleMaster
	}
	return RolePlayer
}

func (r Role) String() string {
	if r == RoleMaster {
		return "MASTER"
	}
	return "PLAYER"
}

// User is a stored account
type User struct {
	ID           ID
	Name         Name
	Email        string // login handle, unique
	PasswordHash string // bcrypt hash
	IsMaster     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Principal is the authenticated identity for a single request
type Principal struct {
	ID    ID
	Name  Name
	Email string
	Role  Role
}

// NewPrincipal builds the principal for a user, computing the role once
func NewPrincipal(u *User) Principal {
	return Principal{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  RoleFromMaster(u.IsMaster),
	}
}

// IsMaster reports whether the principal holds the master role
func (p Principal) IsMaster() bool {
	return p.Role == RoleMaster
}

// Ref returns the weak reference stored on characters
func (p Principal) Ref() UserRef {
	return UserRef{ID: p.ID, Name: p.Name}
}
