package collector

import "errors"

var (
	// ErrNoScopes indicates that no organization, user or repository is configured.
	ErrNoScopes = errors.New("no organizations, users or repositories configured")
	// ErrUnknownKind indicates an entity kind that is not collected.
	ErrUnknownKind = errors.New("unknown entity kind")
)
