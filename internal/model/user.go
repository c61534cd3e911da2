package model

import (
	"slices"
	"strings"
)

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"

	rolePrefix = "ROLE_"
)

// User is an API principal. Authorities is stored as "ROLE_USER,ROLE_ADMIN".
type User struct {
	ID          int64  `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Username    string `json:"username" db:"username"`
	Password    string `json:"-" db:"password"`
	Authorities string `json:"authorities" db:"authorities"`
}

// Roles parses Authorities into roles, dropping the ROLE_ prefix.
func (u *User) Roles() []Role {
	var roles []Role
	for _, part := range strings.Split(u.Authorities, ",") {
		part = strings.ToUpper(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		roles = append(roles, Role(strings.TrimPrefix(part, rolePrefix)))
	}
	return roles
}

func (u *User) HasRole(role Role) bool {
	return slices.Contains(u.Roles(), role)
}

// FormatAuthorities renders roles the way they are stored.
func FormatAuthorities(roles []Role) string {
	parts := make([]string, 0, len(roles))
	for _, role := range roles {
		r := strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(string(role)), rolePrefix))
		if r == "" {
			continue
		}
		if name := rolePrefix + r; !slices.Contains(parts, name) {
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, ",")
}

// CreateUserInput is used by the user management command.
type CreateUserInput struct {
	Name     string `validate:"required"`
	Username string `validate:"required,max=64"`
	Password string `validate:"required,min=6"`
	Roles    []Role `validate:"required,min=1,dive,oneof=USER ADMIN"`
}

func (i *CreateUserInput) Validate() error {
	return validate.Struct(i)
}
