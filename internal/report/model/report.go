// Package model provides weekly report and summary types.
package model

import (
	"errors"

	activity "github.com/festy23/github_reporting/internal/activity/model"
)

// Recency markers.
const (
	MarkerClosed = "gray"
	MarkerStale  = "red"
	MarkerAging  = "orange"
	MarkerFresh  = "green"
)

// Group names used when an issue has no assignee or no label.
// Parentheses are not allowed in GitHub logins, so Unassigned never names a user.
const (
	Unassigned = "(unassigned)"
	NoLabel    = "(no label)"
)

// ErrMalformedEntry indicates an issue that cannot be rendered as a report entry.
var ErrMalformedEntry = errors.New("malformed report entry")

// Request selects the issues of a weekly report.
type Request struct {
	Window activity.Window
	// Users limits the report to these assignees. Empty means everyone.
	Users []string
}

// Entry is one rendered issue line.
type Entry struct {
	Issue  activity.Issue `json:"issue"`
	Marker string         `json:"marker"`
	Text   string         `json:"text"`
}

// LabelGroup holds the entries of one label.
type LabelGroup struct {
	Label   string  `json:"label"`
	Entries []Entry `json:"entries"`
}

// AssigneeGroup holds the label groups of one assignee.
type AssigneeGroup struct {
	Assignee string       `json:"assignee"`
	Labels   []LabelGroup `json:"labels"`
}

// Report is the weekly development report.
type Report struct {
	Window   activity.Window `json:"window"`
	Groups   []AssigneeGroup `json:"groups"`
	Skipped  int             `json:"skipped"`
	Markdown string          `json:"markdown"`
}

// LeadTimeSummary summarizes pull requests active in a window.
// Hours are measured from creation to close over closed pull requests.
type LeadTimeSummary struct {
	Window      activity.Window `json:"window"`
	Open        int             `json:"open"`
	Closed      int             `json:"closed"`
	MeanHours   float64         `json:"mean_hours"`
	MedianHours float64         `json:"median_hours"`
	P90Hours    float64         `json:"p90_hours"`
}
