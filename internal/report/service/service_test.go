package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	activity "github.com/festy23/github_reporting/internal/activity/model"
	"github.com/festy23/github_reporting/internal/config"
	reportModel "github.com/festy23/github_reporting/internal/report/model"
)

type mockActivity[T activity.Entity] struct {
	mock.Mock
}

func (m *mockActivity[T]) Active(ctx context.Context, repositories []string, window activity.Window) ([]T, error) {
	args := m.Called(ctx, repositories, window)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]T), args.Error(1)
}

func (m *mockActivity[T]) ByUser(ctx context.Context, query activity.UserQuery) ([]T, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]T), args.Error(1)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T { return &v }

var (
	now    = date(2024, 6, 15)
	window = activity.Window{Start: date(2024, 6, 10), End: date(2024, 6, 16)}
)

func issue(number int, assignee, label string, open bool, created time.Time) activity.Issue {
	i := activity.Issue{
		Record: activity.Record{
			URL:        "https://github.com/acme/weekly/issues/" + string(rune('0'+number)),
			Repository: "acme/weekly",
			Number:     number,
			Title:      "issue " + string(rune('0'+number)),
			Creator:    "bob",
			Open:       open,
			CreatedAt:  created,
			UpdatedAt:  created,
		},
	}
	if assignee != "" {
		i.Assignee = ptr(assignee)
	}
	if label != "" {
		i.Label = ptr(label)
	}
	if !open {
		i.ClosedAt = ptr(date(2024, 6, 12))
	}
	return i
}

func newService(
	issues *mockActivity[activity.Issue],
	prs *mockActivity[activity.PullRequest],
	cfg config.ReportConfig,
) Service {
	return NewWithClock(issues, prs, cfg, zap.NewNop().Sugar(), func() time.Time { return now })
}

func TestMarker(t *testing.T) {
	tests := []struct {
		name  string
		issue activity.Issue
		want  string
	}{
		{"closed", issue(1, "", "", false, date(2024, 6, 1)), reportModel.MarkerClosed},
		{"open older than a month", issue(2, "", "", true, date(2024, 5, 1)), reportModel.MarkerStale},
		{"open older than two weeks", issue(3, "", "", true, date(2024, 5, 25)), reportModel.MarkerAging},
		{"open this week", issue(4, "", "", true, date(2024, 6, 10)), reportModel.MarkerFresh},
		{"open ten days ago", issue(5, "", "", true, date(2024, 6, 5)), reportModel.MarkerFresh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Marker(tt.issue, now))
		})
	}
}

func TestMarker_MonthEnd(t *testing.T) {
	endOfMarch := time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		created time.Time
		want    string
	}{
		{"first of march is aging", time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC), reportModel.MarkerAging},
		{"last of february is aging", time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC), reportModel.MarkerAging},
		{"before last of february is stale", time.Date(2024, 2, 29, 11, 0, 0, 0, time.UTC), reportModel.MarkerStale},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Marker(issue(1, "", "", true, tt.created), endOfMarch))
		})
	}
}

func TestMonthBefore(t *testing.T) {
	tests := []struct {
		now  time.Time
		want time.Time
	}{
		{date(2024, 6, 15), date(2024, 5, 15)},
		{date(2024, 3, 31), date(2024, 2, 29)},
		{date(2023, 3, 30), date(2023, 2, 28)},
		{date(2024, 5, 31), date(2024, 4, 30)},
		{date(2024, 1, 31), date(2023, 12, 31)},
	}

	for _, tt := range tests {
		t.Run(tt.now.Format(time.DateOnly), func(t *testing.T) {
			assert.Equal(t, tt.want, monthBefore(tt.now))
		})
	}
}

func TestRenderEntry(t *testing.T) {
	t.Run("renders status title and link", func(t *testing.T) {
		i := issue(1, "alice", "bug", true, date(2024, 6, 10))
		i.Title = "Fix flaky build"
		i.URL = "https://github.com/acme/weekly/issues/1"

		text, err := RenderEntry(i, reportModel.MarkerFresh)

		require.NoError(t, err)
		assert.Equal(t,
			`<span style="color:green">[open]</span> Fix flaky build - `+
				`[https://github.com/acme/weekly/issues/1](https://github.com/acme/weekly/issues/1)`,
			text)
	})

	t.Run("missing title", func(t *testing.T) {
		i := issue(1, "alice", "bug", true, date(2024, 6, 10))
		i.Title = "  "

		_, err := RenderEntry(i, reportModel.MarkerFresh)

		assert.ErrorIs(t, err, reportModel.ErrMalformedEntry)
	})

	t.Run("missing url", func(t *testing.T) {
		i := issue(1, "alice", "bug", false, date(2024, 6, 10))
		i.URL = ""

		_, err := RenderEntry(i, reportModel.MarkerClosed)

		assert.ErrorIs(t, err, reportModel.ErrMalformedEntry)
	})
}

func TestWeeklyReport(t *testing.T) {
	ctx := context.Background()

	t.Run("groups by assignee then label", func(t *testing.T) {
		issues := new(mockActivity[activity.Issue])
		svc := newService(issues, new(mockActivity[activity.PullRequest]), config.ReportConfig{})

		stored := []activity.Issue{
			issue(1, "carol", "bug", true, date(2024, 6, 10)),
			issue(2, "", "docs", true, date(2024, 5, 1)),
			issue(3, "alice", "", false, date(2024, 6, 1)),
			issue(4, "alice", "bug", true, date(2024, 5, 25)),
			issue(5, "alice", "bug", true, date(2024, 6, 11)),
		}
		issues.On("Active", ctx, []string(nil), window).Return(stored, nil)

		report, err := svc.WeeklyReport(ctx, reportModel.Request{Window: window})

		require.NoError(t, err)
		require.Len(t, report.Groups, 3)
		assert.Equal(t, "alice", report.Groups[0].Assignee)
		assert.Equal(t, "carol", report.Groups[1].Assignee)
		assert.Equal(t, reportModel.Unassigned, report.Groups[2].Assignee)

		alice := report.Groups[0]
		require.Len(t, alice.Labels, 2)
		assert.Equal(t, "bug", alice.Labels[0].Label)
		assert.Equal(t, reportModel.NoLabel, alice.Labels[1].Label)
		require.Len(t, alice.Labels[0].Entries, 2)
		assert.Equal(t, 4, alice.Labels[0].Entries[0].Issue.Number)
		assert.Equal(t, reportModel.MarkerAging, alice.Labels[0].Entries[0].Marker)
		assert.Equal(t, 5, alice.Labels[0].Entries[1].Issue.Number)
		assert.Equal(t, reportModel.MarkerClosed, alice.Labels[1].Entries[0].Marker)

		seen := make(map[int]int)
		for _, g := range report.Groups {
			for _, l := range g.Labels {
				for _, e := range l.Entries {
					seen[e.Issue.Number]++
				}
			}
		}
		assert.Equal(t, map[int]int{1: 1, 2: 1, 3: 1, 4: 1, 5: 1}, seen)

		assert.Equal(t, 1, strings.Count(report.Markdown, "## alice\n"))
		assert.Equal(t, 1, strings.Count(report.Markdown, "## carol\n"))
		assert.Equal(t, 1, strings.Count(report.Markdown, "## (unassigned)\n"))
		assert.Less(t, strings.Index(report.Markdown, "## alice"), strings.Index(report.Markdown, "## carol"))
		assert.Contains(t, report.Markdown, "- bug\n    - <span style=\"color:orange\">[open]</span>")
		issues.AssertExpectations(t)
	})

	t.Run("user named unassigned keeps its own group", func(t *testing.T) {
		issues := new(mockActivity[activity.Issue])
		svc := newService(issues, new(mockActivity[activity.PullRequest]), config.ReportConfig{})

		stored := []activity.Issue{
			issue(1, "unassigned", "bug", true, date(2024, 6, 10)),
			issue(2, "", "bug", true, date(2024, 6, 10)),
		}
		issues.On("Active", ctx, []string(nil), window).Return(stored, nil)

		report, err := svc.WeeklyReport(ctx, reportModel.Request{Window: window})

		require.NoError(t, err)
		require.Len(t, report.Groups, 2)
		assert.Equal(t, "unassigned", report.Groups[0].Assignee)
		assert.Equal(t, 1, report.Groups[0].Labels[0].Entries[0].Issue.Number)
		assert.Equal(t, reportModel.Unassigned, report.Groups[1].Assignee)
		assert.Equal(t, 2, report.Groups[1].Labels[0].Entries[0].Issue.Number)
		assert.Equal(t, 1, strings.Count(report.Markdown, "## unassigned\n"))
		assert.Equal(t, 1, strings.Count(report.Markdown, "## (unassigned)\n"))
		issues.AssertExpectations(t)
	})

	t.Run("reads the configured repository", func(t *testing.T) {
		issues := new(mockActivity[activity.Issue])
		svc := newService(issues, new(mockActivity[activity.PullRequest]),
			config.ReportConfig{Repository: "acme/weekly"})

		issues.On("Active", ctx, []string{"acme/weekly"}, window).Return([]activity.Issue{}, nil)

		report, err := svc.WeeklyReport(ctx, reportModel.Request{Window: window})

		require.NoError(t, err)
		assert.Empty(t, report.Groups)
		assert.Empty(t, report.Markdown)
		issues.AssertExpectations(t)
	})

	t.Run("drops the excluded label", func(t *testing.T) {
		issues := new(mockActivity[activity.Issue])
		svc := newService(issues, new(mockActivity[activity.PullRequest]),
			config.ReportConfig{ExcludedLabel: "report"})

		issues.On("Active", ctx, []string(nil), window).Return([]activity.Issue{
			issue(1, "alice", "report", true, date(2024, 6, 10)),
			issue(2, "alice", "bug", true, date(2024, 6, 10)),
		}, nil)

		report, err := svc.WeeklyReport(ctx, reportModel.Request{Window: window})

		require.NoError(t, err)
		require.Len(t, report.Groups, 1)
		require.Len(t, report.Groups[0].Labels, 1)
		assert.Equal(t, "bug", report.Groups[0].Labels[0].Label)
		assert.NotContains(t, report.Markdown, "- report")
	})

	t.Run("limits to requested users", func(t *testing.T) {
		issues := new(mockActivity[activity.Issue])
		svc := newService(issues, new(mockActivity[activity.PullRequest]), config.ReportConfig{})

		issues.On("Active", ctx, []string(nil), window).Return([]activity.Issue{
			issue(1, "alice", "bug", true, date(2024, 6, 10)),
			issue(2, "carol", "bug", true, date(2024, 6, 10)),
			issue(3, "", "bug", true, date(2024, 6, 10)),
		}, nil)

		report, err := svc.WeeklyReport(ctx, reportModel.Request{Window: window, Users: []string{"carol"}})

		require.NoError(t, err)
		require.Len(t, report.Groups, 1)
		assert.Equal(t, "carol", report.Groups[0].Assignee)
	})

	t.Run("skips malformed entries", func(t *testing.T) {
		issues := new(mockActivity[activity.Issue])
		svc := newService(issues, new(mockActivity[activity.PullRequest]), config.ReportConfig{})

		broken := issue(2, "alice", "bug", true, date(2024, 6, 10))
		broken.Title = ""
		issues.On("Active", ctx, []string(nil), window).Return([]activity.Issue{
			issue(1, "alice", "bug", true, date(2024, 6, 10)),
			broken,
			issue(3, "alice", "bug", true, date(2024, 6, 10)),
		}, nil)

		report, err := svc.WeeklyReport(ctx, reportModel.Request{Window: window})

		require.NoError(t, err)
		assert.Equal(t, 1, report.Skipped)
		require.Len(t, report.Groups, 1)
		entries := report.Groups[0].Labels[0].Entries
		require.Len(t, entries, 2)
		assert.Equal(t, 1, entries[0].Issue.Number)
		assert.Equal(t, 3, entries[1].Issue.Number)
	})

	t.Run("store error", func(t *testing.T) {
		issues := new(mockActivity[activity.Issue])
		svc := newService(issues, new(mockActivity[activity.PullRequest]), config.ReportConfig{})

		storeErr := errors.New("connection refused")
		issues.On("Active", ctx, []string(nil), window).Return(nil, storeErr)

		report, err := svc.WeeklyReport(ctx, reportModel.Request{Window: window})

		assert.Nil(t, report)
		assert.ErrorIs(t, err, storeErr)
	})
}

func TestPullRequestSummary(t *testing.T) {
	ctx := context.Background()

	pr := func(number int, created time.Time, closed *time.Time) activity.PullRequest {
		return activity.PullRequest{Record: activity.Record{
			URL:        "https://github.com/acme/api/pull/" + string(rune('0'+number)),
			Repository: "acme/api",
			Number:     number,
			Open:       closed == nil,
			CreatedAt:  created,
			UpdatedAt:  created,
			ClosedAt:   closed,
		}}
	}

	t.Run("lead times over closed pull requests", func(t *testing.T) {
		prs := new(mockActivity[activity.PullRequest])
		svc := newService(new(mockActivity[activity.Issue]), prs, config.ReportConfig{})

		start := date(2024, 6, 10)
		prs.On("Active", ctx, []string(nil), window).Return([]activity.PullRequest{
			pr(1, start, ptr(start.Add(2*time.Hour))),
			pr(2, start, ptr(start.Add(4*time.Hour))),
			pr(3, start, ptr(start.Add(12*time.Hour))),
			pr(4, start, nil),
		}, nil)

		summary, err := svc.PullRequestSummary(ctx, window)

		require.NoError(t, err)
		assert.Equal(t, 1, summary.Open)
		assert.Equal(t, 3, summary.Closed)
		assert.InDelta(t, 6.0, summary.MeanHours, 1e-9)
		assert.InDelta(t, 4.0, summary.MedianHours, 1e-9)
		assert.Greater(t, summary.P90Hours, 4.0)
	})

	t.Run("only open pull requests", func(t *testing.T) {
		prs := new(mockActivity[activity.PullRequest])
		svc := newService(new(mockActivity[activity.Issue]), prs, config.ReportConfig{})

		prs.On("Active", ctx, []string(nil), window).Return([]activity.PullRequest{
			pr(1, date(2024, 6, 10), nil),
		}, nil)

		summary, err := svc.PullRequestSummary(ctx, window)

		require.NoError(t, err)
		assert.Equal(t, 1, summary.Open)
		assert.Zero(t, summary.Closed)
		assert.Zero(t, summary.MeanHours)
	})
}
