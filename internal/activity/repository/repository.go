// Package repository provides data access layer for issues and pull requests.
package repository

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/festy23/github_reporting/internal/activity/model"
)

const upsertBatchSize = 100

// Repository defines data access operations for one entity kind.
type Repository[T model.Entity] interface {
	// Upsert inserts the entity or overwrites every field of the stored one with the same URL.
	Upsert(ctx context.Context, entity T) error

	// UpsertBatch upserts entities in batches.
	UpsertBatch(ctx context.Context, entities []T) error

	// FindActiveDuring returns entities updated within [start, end] or currently open.
	// An empty repository matches all repositories.
	FindActiveDuring(ctx context.Context, repository string, start, end time.Time) ([]T, error)

	// FindInWindow returns a superset of the entities active during the window
	// in the given repositories (all when empty).
	FindInWindow(ctx context.Context, repositories []string, window model.Window) ([]T, error)

	// FindByUser returns the window candidates that belong to username in the given role.
	FindByUser(
		ctx context.Context,
		repositories []string,
		username string,
		role model.Role,
		window model.Window,
	) ([]T, error)

	// FindAll returns every stored entity.
	FindAll(ctx context.Context) ([]T, error)

	// EarliestCreatedAt returns the oldest creation time, or nil when empty.
	EarliestCreatedAt(ctx context.Context) (*time.Time, error)

	// Count returns the number of stored entities.
	Count(ctx context.Context) (int64, error)
}

type repository[T model.Entity] struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

// New creates a repository for entity kind T.
func New[T model.Entity](db *gorm.DB, logger *zap.SugaredLogger) Repository[T] {
	return &repository[T]{db: db, logger: logger}
}

// NewIssues creates the issue repository.
func NewIssues(db *gorm.DB, logger *zap.SugaredLogger) Repository[model.Issue] {
	return New[model.Issue](db, logger)
}

// NewPullRequests creates the pull request repository.
func NewPullRequests(db *gorm.DB, logger *zap.SugaredLogger) Repository[model.PullRequest] {
	return New[model.PullRequest](db, logger)
}

func upsertClause() clause.OnConflict {
	return clause.OnConflict{
		Columns:   []clause.Column{{Name: "url"}},
		UpdateAll: true,
	}
}

// Upsert inserts the entity or overwrites the stored one with the same URL.
func (r *repository[T]) Upsert(ctx context.Context, entity T) error {
	if err := r.db.WithContext(ctx).Clauses(upsertClause()).Create(&entity).Error; err != nil {
		return fmt.Errorf("upsert %s: %w", entity.GetURL(), err)
	}
	return nil
}

// UpsertBatch upserts entities in batches.
func (r *repository[T]) UpsertBatch(ctx context.Context, entities []T) error {
	if len(entities) == 0 {
		return nil
	}

	err := r.db.WithContext(ctx).
		Clauses(upsertClause()).
		CreateInBatches(&entities, upsertBatchSize).Error
	if err != nil {
		return fmt.Errorf("upsert batch of %d: %w", len(entities), err)
	}

	r.logger.Debugw("Entities upserted", "count", len(entities))
	return nil
}

// FindActiveDuring returns entities updated within [start, end] or currently open.
func (r *repository[T]) FindActiveDuring(
	ctx context.Context,
	repository string,
	start, end time.Time,
) ([]T, error) {
	query := r.db.WithContext(ctx).
		Where("((updated_at BETWEEN ? AND ?) OR open = ?)", start, end, true)
	if repository != "" {
		query = query.Where("repository = ?", repository)
	}

	var entities []T
	if err := ordered(query).Find(&entities).Error; err != nil {
		return nil, err
	}
	return entities, nil
}

// FindInWindow returns a superset of the entities active during the window.
func (r *repository[T]) FindInWindow(
	ctx context.Context,
	repositories []string,
	window model.Window,
) ([]T, error) {
	var entities []T
	err := ordered(r.windowQuery(ctx, repositories, window)).Find(&entities).Error
	if err != nil {
		return nil, err
	}
	return entities, nil
}

// FindByUser returns window candidates that belong to username in the given role.
func (r *repository[T]) FindByUser(
	ctx context.Context,
	repositories []string,
	username string,
	role model.Role,
	window model.Window,
) ([]T, error) {
	query := r.windowQuery(ctx, repositories, window)

	switch role {
	case model.RoleCreator:
		query = query.Where("creator = ?", username)
	case model.RoleAssignee:
		query = query.Where("assignee = ?", username)
	case model.RoleAll:
		query = query.Where("(creator = ? OR assignee = ?)", username, username)
	default:
		return nil, fmt.Errorf("%w: %q", model.ErrInvalidRole, role)
	}

	var entities []T
	if err := ordered(query).Find(&entities).Error; err != nil {
		return nil, err
	}
	return entities, nil
}

// FindAll returns every stored entity.
func (r *repository[T]) FindAll(ctx context.Context) ([]T, error) {
	var entities []T
	if err := ordered(r.db.WithContext(ctx)).Find(&entities).Error; err != nil {
		return nil, err
	}
	return entities, nil
}

// EarliestCreatedAt returns the oldest creation time, or nil when empty.
func (r *repository[T]) EarliestCreatedAt(ctx context.Context) (*time.Time, error) {
	// A row is loaded instead of MIN(created_at): sqlite returns aggregates as text.
	var entities []T
	err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Limit(1).
		Find(&entities).Error
	if err != nil {
		return nil, err
	}
	if len(entities) == 0 {
		return nil, nil
	}

	earliest := entities[0].GetCreatedAt()
	return &earliest, nil
}

// Count returns the number of stored entities.
func (r *repository[T]) Count(ctx context.Context) (int64, error) {
	var count int64
	var zero T
	if err := r.db.WithContext(ctx).Model(&zero).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repository[T]) windowQuery(
	ctx context.Context,
	repositories []string,
	window model.Window,
) *gorm.DB {
	query := r.db.WithContext(ctx).Where(
		"(open = ? OR (updated_at BETWEEN ? AND ?) OR "+
			"(created_at <= ? AND (closed_at IS NULL OR closed_at >= ?)))",
		true, window.Start, window.End, window.End, window.Start,
	)
	if len(repositories) > 0 {
		query = query.Where("repository IN ?", repositories)
	}
	return query
}

func ordered(query *gorm.DB) *gorm.DB {
	return query.Order("created_at ASC").Order("number ASC").Order("url ASC")
}
