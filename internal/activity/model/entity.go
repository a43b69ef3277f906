// Package model provides the tracked GitHub entities and their temporal rules.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Kind names a tracked entity kind.
type Kind string

// Tracked entity kinds.
const (
	KindIssues       Kind = "issues"
	KindPullRequests Kind = "pull-requests"
)

// Temporal is the capability set shared by issues and pull requests.
type Temporal interface {
	GetURL() string
	GetRepository() string
	IsOpen() bool
	GetCreatedAt() time.Time
	GetUpdatedAt() time.Time
	GetClosedAt() *time.Time
}

// Entity constrains generic code to the persisted entity kinds.
type Entity interface {
	Issue | PullRequest
	Temporal
	Validate() error
	Anomalies() []string
}

// Record holds the fields common to issues and pull requests.
// Automatic timestamps are disabled: every timestamp comes from GitHub and an
// upsert overwrites all of them.
type Record struct {
	URL        string     `gorm:"primaryKey;column:url;type:varchar(512)"        json:"url"`
	Repository string     `gorm:"column:repository;type:varchar(255);not null;index" json:"repository"`
	Number     int        `gorm:"column:number;not null"                         json:"number"`
	Title      string     `gorm:"column:title;type:text;not null"                json:"title"`
	Creator    string     `gorm:"column:creator;type:varchar(255);not null;index" json:"creator"`
	Assignee   *string    `gorm:"column:assignee;type:varchar(255);index"        json:"assignee"`
	Open       bool       `gorm:"column:open;not null"                           json:"open"`
	CreatedAt  time.Time  `gorm:"column:created_at;not null;autoCreateTime:false" json:"createdAt"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;not null;index;autoUpdateTime:false" json:"updatedAt"`
	ClosedAt   *time.Time `gorm:"column:closed_at"                               json:"closedAt"`
}

// GetURL returns the unique URL.
func (r Record) GetURL() string { return r.URL }

// GetRepository returns the owning repository as owner/name.
func (r Record) GetRepository() string { return r.Repository }

// IsOpen reports the lifecycle state.
func (r Record) IsOpen() bool { return r.Open }

// GetCreatedAt returns the creation time.
func (r Record) GetCreatedAt() time.Time { return r.CreatedAt }

// GetUpdatedAt returns the last update time.
func (r Record) GetUpdatedAt() time.Time { return r.UpdatedAt }

// GetClosedAt returns the closing time or nil while open.
func (r Record) GetClosedAt() *time.Time { return r.ClosedAt }

// AssigneeName returns the assignee or an empty string.
func (r Record) AssigneeName() string {
	if r.Assignee == nil {
		return ""
	}
	return *r.Assignee
}

// Status returns the textual lifecycle state.
func (r Record) Status() string {
	if r.Open {
		return "open"
	}
	return "closed"
}

// Normalize converts timestamps to UTC and enforces the open/closedAt invariant.
// An open record never keeps a closing time; a record with a closing time is closed.
func (r *Record) Normalize() {
	r.CreatedAt = r.CreatedAt.UTC()
	r.UpdatedAt = r.UpdatedAt.UTC()
	if r.Open {
		r.ClosedAt = nil
	}
	if r.ClosedAt != nil {
		closed := r.ClosedAt.UTC()
		r.ClosedAt = &closed
		r.Open = false
	}
	if r.Assignee != nil && *r.Assignee == "" {
		r.Assignee = nil
	}
}

// Validate rejects records that cannot be stored.
func (r Record) Validate() error {
	switch {
	case strings.TrimSpace(r.URL) == "":
		return fmt.Errorf("%w: url is required", ErrInvalidEntity)
	case strings.TrimSpace(r.Repository) == "":
		return fmt.Errorf("%w: repository is required for %s", ErrInvalidEntity, r.URL)
	case r.CreatedAt.IsZero():
		return fmt.Errorf("%w: createdAt is required for %s", ErrInvalidEntity, r.URL)
	}
	return nil
}

// Anomalies lists ordering violations between timestamps.
// They are reported, never rejected.
func (r Record) Anomalies() []string {
	var anomalies []string
	if r.UpdatedAt.Before(r.CreatedAt) {
		anomalies = append(anomalies, "updatedAt before createdAt")
	}
	if r.ClosedAt != nil && r.ClosedAt.Before(r.CreatedAt) {
		anomalies = append(anomalies, "closedAt before createdAt")
	}
	if r.ClosedAt != nil && r.UpdatedAt.After(*r.ClosedAt) {
		anomalies = append(anomalies, "updatedAt after closedAt")
	}
	return anomalies
}

// IsActiveDuring reports whether the record is active in [start, end],
// using the current time as the end of an interval that has not closed.
func (r Record) IsActiveDuring(start, end time.Time) bool {
	return IsActiveDuring(r, start, end, time.Now())
}

// IsActiveDuring reports whether e is active in [start, end].
// Open entities are always active. Closed entities are active when
// [createdAt, closedAt] intersects the window; a missing closedAt is taken as now.
func IsActiveDuring(e Temporal, start, end, now time.Time) bool {
	if e.IsOpen() {
		return true
	}
	closedAt := now
	if c := e.GetClosedAt(); c != nil {
		closedAt = *c
	}
	return !e.GetCreatedAt().After(end) && !closedAt.Before(start)
}
