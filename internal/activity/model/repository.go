package model

import (
	"fmt"
	"strings"
)

// Repository identifies a GitHub repository, optionally a fork of another one.
type Repository struct {
	Owner  string `json:"owner"`
	Name   string `json:"name"`
	Fork   bool   `json:"fork"`
	Parent string `json:"parent,omitempty"`
}

// FullName returns owner/name.
func (r Repository) FullName() string {
	return r.Owner + "/" + r.Name
}

// Names returns the repository names whose entities belong to r:
// the repository itself and, for a fork, its upstream.
func (r Repository) Names() []string {
	names := []string{r.FullName()}
	if r.Parent != "" && r.Parent != r.FullName() {
		names = append(names, r.Parent)
	}
	return names
}

// FromFork returns the fork of upstreamOwner/name owned by forkOwner.
// When both owners are equal the upstream repository itself is returned.
func FromFork(forkOwner, upstreamOwner, name string) Repository {
	if forkOwner == upstreamOwner {
		return Repository{Owner: upstreamOwner, Name: name}
	}
	return Repository{
		Owner:  forkOwner,
		Name:   name,
		Fork:   true,
		Parent: upstreamOwner + "/" + name,
	}
}

// ParseRepository parses owner/name.
func ParseRepository(fullName string) (Repository, error) {
	parts := strings.Split(strings.TrimSpace(fullName), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Repository{}, fmt.Errorf("%w: %q", ErrInvalidRepository, fullName)
	}
	return Repository{Owner: parts[0], Name: parts[1]}, nil
}
