// Package service provides the temporal query engine over stored issues and pull requests.
package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/festy23/github_reporting/internal/activity/model"
	"github.com/festy23/github_reporting/internal/activity/repository"
)

// Service answers windowed queries for one entity kind.
type Service[T model.Entity] interface {
	// Active returns entities active during the window in the given repositories (all when empty).
	Active(ctx context.Context, repositories []string, window model.Window) ([]T, error)

	// ByUser returns entities of one user in one repository, including its upstream when it is a fork.
	ByUser(ctx context.Context, query model.UserQuery) ([]T, error)
}

type service[T model.Entity] struct {
	repo   repository.Repository[T]
	logger *zap.SugaredLogger
	now    func() time.Time
}

// New creates a query engine for entity kind T.
func New[T model.Entity](repo repository.Repository[T], logger *zap.SugaredLogger) Service[T] {
	return NewWithClock(repo, logger, time.Now)
}

// NewWithClock creates a query engine that uses now as the current time.
func NewWithClock[T model.Entity](
	repo repository.Repository[T],
	logger *zap.SugaredLogger,
	now func() time.Time,
) Service[T] {
	return &service[T]{repo: repo, logger: logger, now: now}
}

// Active returns entities active during the window.
func (s *service[T]) Active(
	ctx context.Context,
	repositories []string,
	window model.Window,
) ([]T, error) {
	if window.IsEmpty() {
		return []T{}, nil
	}

	candidates, err := s.repo.FindInWindow(ctx, repositories, window)
	if err != nil {
		return nil, fmt.Errorf("find entities in window: %w", err)
	}

	return s.filter(candidates, window), nil
}

// ByUser returns the active entities of one user in one repository.
func (s *service[T]) ByUser(ctx context.Context, query model.UserQuery) ([]T, error) {
	if query.Username == "" {
		return nil, fmt.Errorf("%w: username is required", model.ErrInvalidEntity)
	}
	if query.Role == "" {
		query.Role = model.RoleAll
	}
	if query.Window.IsEmpty() {
		return []T{}, nil
	}

	candidates, err := s.repo.FindByUser(
		ctx,
		query.Repository.Names(),
		query.Username,
		query.Role,
		query.Window,
	)
	if err != nil {
		return nil, fmt.Errorf("find entities of %s: %w", query.Username, err)
	}

	return s.filter(candidates, query.Window), nil
}

func (s *service[T]) filter(candidates []T, window model.Window) []T {
	now := s.now()
	active := make([]T, 0, len(candidates))
	for _, e := range candidates {
		if model.IsActiveDuring(e, window.Start, window.End, now) {
			active = append(active, e)
		}
	}

	s.logger.Debugw("Window query filtered",
		"candidates", len(candidates),
		"active", len(active),
		"start", window.Start,
		"end", window.End,
	)
	return active
}
