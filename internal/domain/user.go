package domain

import (
	"fmt"
	"strings"
	"time"
)

// Role represents what a user is allowed to do.
type Role string

const (
	RoleCandidate Role = "candidate"
	RoleRecruiter Role = "recruiter"
	RoleAdmin     Role = "admin"
)

func (r Role) String() string { return string(r) }

func (r Role) IsValid() bool {
	switch r {
	case RoleCandidate, RoleRecruiter, RoleAdmin:
		return true
	}
	return false
}

func ParseRoleFromString(s string) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(s)))
	if !role.IsValid() {
		return "", fmt.Errorf("%w: invalid role %q", ErrValidation, s)
	}
	return role, nil
}

// User is an authenticated principal: a candidate, a recruiter, or an admin.
type User struct {
	ID        string
	Name      string
	Email     string
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (u *User) Validate() error {
	if u == nil {
		return fmt.Errorf("%w: user is required", ErrValidation)
	}
	if strings.TrimSpace(u.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if strings.TrimSpace(u.Email) == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}
	if !u.Role.IsValid() {
		return fmt.Errorf("%w: invalid role %q", ErrValidation, u.Role)
	}
	return nil
}
