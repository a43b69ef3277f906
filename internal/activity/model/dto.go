package model

import "fmt"

// Role selects which user field a by-user query matches.
type Role string

// Supported roles.
const (
	RoleCreator  Role = "creator"
	RoleAssignee Role = "assignee"
	RoleAll      Role = "all"
)

// ParseRole parses a role, defaulting to RoleAll when empty.
func ParseRole(value string) (Role, error) {
	switch Role(value) {
	case "":
		return RoleAll, nil
	case RoleCreator, RoleAssignee, RoleAll:
		return Role(value), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, value)
	}
}

// UserQuery selects entities of one user within a repository and window.
type UserQuery struct {
	Username   string
	Repository Repository
	Role       Role
	Window     Window
}

// DataResponse wraps query results as {"data": [...]}.
type DataResponse[T any] struct {
	Data []T `json:"data"`
}
