// Package service builds the weekly development report and pull request summaries.
package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/montanaflynn/stats"
	"go.uber.org/zap"

	activity "github.com/festy23/github_reporting/internal/activity/model"
	activityService "github.com/festy23/github_reporting/internal/activity/service"
	"github.com/festy23/github_reporting/internal/config"
	reportModel "github.com/festy23/github_reporting/internal/report/model"
)

var entryTemplate = template.Must(template.New("entry").Parse(
	`<span style="color:{{.Marker}}">[{{.Status}}]</span> {{.Title}} - [{{.URL}}]({{.URL}})`,
))

// Service defines report operations.
type Service interface {
	// WeeklyReport groups the issues active in the window by assignee and label.
	WeeklyReport(ctx context.Context, req reportModel.Request) (*reportModel.Report, error)

	// PullRequestSummary counts the pull requests active in the window and their lead times.
	PullRequestSummary(ctx context.Context, window activity.Window) (*reportModel.LeadTimeSummary, error)
}

type service struct {
	issues       activityService.Service[activity.Issue]
	pullRequests activityService.Service[activity.PullRequest]
	cfg          config.ReportConfig
	logger       *zap.SugaredLogger
	now          func() time.Time
}

// New creates a new report service instance.
func New(
	issues activityService.Service[activity.Issue],
	pullRequests activityService.Service[activity.PullRequest],
	cfg config.ReportConfig,
	logger *zap.SugaredLogger,
) Service {
	return NewWithClock(issues, pullRequests, cfg, logger, time.Now)
}

// NewWithClock creates a report service that uses now for recency markers.
func NewWithClock(
	issues activityService.Service[activity.Issue],
	pullRequests activityService.Service[activity.PullRequest],
	cfg config.ReportConfig,
	logger *zap.SugaredLogger,
	now func() time.Time,
) Service {
	return &service{
		issues:       issues,
		pullRequests: pullRequests,
		cfg:          cfg,
		logger:       logger,
		now:          now,
	}
}

// Marker returns the recency color of an issue at now.
// Closed issues are gray. Open issues are red after a month, orange after two weeks, green before.
func Marker(issue activity.Issue, now time.Time) string {
	if !issue.Open {
		return reportModel.MarkerClosed
	}
	switch {
	case issue.CreatedAt.Before(monthBefore(now)):
		return reportModel.MarkerStale
	case issue.CreatedAt.Before(now.AddDate(0, 0, -14)):
		return reportModel.MarkerAging
	default:
		return reportModel.MarkerFresh
	}
}

// monthBefore returns the same day of the previous month, clamped to that
// month's last day when it is shorter.
func monthBefore(now time.Time) time.Time {
	cutoff := now.AddDate(0, -1, 0)
	if cutoff.Day() != now.Day() {
		cutoff = cutoff.AddDate(0, 0, -cutoff.Day())
	}
	return cutoff
}

// RenderEntry renders one report line of issue.
func RenderEntry(issue activity.Issue, marker string) (string, error) {
	if strings.TrimSpace(issue.URL) == "" || strings.TrimSpace(issue.Title) == "" {
		return "", fmt.Errorf("%w: issue #%d of %s needs a url and a title",
			reportModel.ErrMalformedEntry, issue.Number, issue.Repository)
	}

	var sb strings.Builder
	err := entryTemplate.Execute(&sb, struct {
		Marker string
		Status string
		Title  string
		URL    string
	}{marker, issue.Status(), issue.Title, issue.URL})
	if err != nil {
		return "", fmt.Errorf("%w: %w", reportModel.ErrMalformedEntry, err)
	}
	return sb.String(), nil
}

// WeeklyReport groups the issues active in the window by assignee and label.
func (s *service) WeeklyReport(
	ctx context.Context,
	req reportModel.Request,
) (*reportModel.Report, error) {
	var repos []string
	if s.cfg.Repository != "" {
		repos = []string{s.cfg.Repository}
	}

	issues, err := s.issues.Active(ctx, repos, req.Window)
	if err != nil {
		return nil, fmt.Errorf("query report issues: %w", err)
	}

	users := make(map[string]bool, len(req.Users))
	for _, u := range req.Users {
		users[u] = true
	}

	now := s.now()
	report := &reportModel.Report{Window: req.Window}
	groups := make(map[string]map[string][]reportModel.Entry)
	for _, issue := range issues {
		if s.cfg.ExcludedLabel != "" && issue.LabelName() == s.cfg.ExcludedLabel {
			continue
		}
		if len(users) > 0 && !users[issue.AssigneeName()] {
			continue
		}

		marker := Marker(issue, now)
		text, err := RenderEntry(issue, marker)
		if err != nil {
			s.logger.Warnw("Skipping report entry",
				"url", issue.URL,
				"error", err,
			)
			report.Skipped++
			continue
		}

		assignee, label := issue.AssigneeName(), issue.LabelName()
		if groups[assignee] == nil {
			groups[assignee] = make(map[string][]reportModel.Entry)
		}
		groups[assignee][label] = append(groups[assignee][label], reportModel.Entry{
			Issue:  issue,
			Marker: marker,
			Text:   text,
		})
	}

	for _, assignee := range sortedKeys(groups) {
		group := reportModel.AssigneeGroup{Assignee: orDefault(assignee, reportModel.Unassigned)}
		for _, label := range sortedKeys(groups[assignee]) {
			group.Labels = append(group.Labels, reportModel.LabelGroup{
				Label:   orDefault(label, reportModel.NoLabel),
				Entries: groups[assignee][label],
			})
		}
		report.Groups = append(report.Groups, group)
	}

	report.Markdown = renderMarkdown(report.Groups)
	return report, nil
}

// PullRequestSummary counts the pull requests active in the window and their lead times.
func (s *service) PullRequestSummary(
	ctx context.Context,
	window activity.Window,
) (*reportModel.LeadTimeSummary, error) {
	prs, err := s.pullRequests.Active(ctx, nil, window)
	if err != nil {
		return nil, fmt.Errorf("query summary pull requests: %w", err)
	}

	summary := &reportModel.LeadTimeSummary{Window: window}
	var hours stats.Float64Data
	for _, pr := range prs {
		if h, ok := pr.LeadTimeHours(); ok {
			summary.Closed++
			hours = append(hours, h)
			continue
		}
		summary.Open++
	}

	if len(hours) == 0 {
		return summary, nil
	}
	if summary.MeanHours, err = stats.Mean(hours); err != nil {
		return nil, fmt.Errorf("mean lead time: %w", err)
	}
	if summary.MedianHours, err = stats.Median(hours); err != nil {
		return nil, fmt.Errorf("median lead time: %w", err)
	}
	if summary.P90Hours, err = stats.Percentile(hours, 90); err != nil {
		return nil, fmt.Errorf("p90 lead time: %w", err)
	}
	return summary, nil
}

// sortedKeys sorts names ascending with the empty name last.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i] == "" || keys[j] == "" {
			return keys[j] == "" && keys[i] != ""
		}
		return keys[i] < keys[j]
	})
	return keys
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func renderMarkdown(groups []reportModel.AssigneeGroup) string {
	var sb strings.Builder
	for _, group := range groups {
		sb.WriteString("## ")
		sb.WriteString(group.Assignee)
		sb.WriteString("\n\n")
		for _, label := range group.Labels {
			sb.WriteString("- ")
			sb.WriteString(label.Label)
			sb.WriteString("\n")
			for _, entry := range label.Entries {
				sb.WriteString("    - ")
				sb.WriteString(entry.Text)
				sb.WriteString("\n")
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
