// Package gateway provides the GitHub source of issues, pull requests and repositories,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/festy23/github_reporting/internal/activity/model"
	"github.com/festy23/github_reporting/internal/config"
)

// PageOptions selects one page of a listing.
type PageOptions struct {
	// Page is the 1-based page number; zero means the first page.
	Page int
	// PerPage is the page size.
	PerPage int
	// Since limits issue listings to items updated at or after it. Zero means no limit.
	Since time.Time
}

// Page is one page of a listing.
type Page[T any] struct {
	Items []T
	// NextPage is the next page number, zero on the last page.
	NextPage int
}

// Source defines the paged GitHub data source.
type Source interface {
	// ListRepositories returns the repositories owned by an organization or user.
	ListRepositories(ctx context.Context, owner string) ([]model.Repository, error)
	// ListIssues returns one page of issues of repo, pull requests excluded, oldest update first.
	ListIssues(ctx context.Context, repo model.Repository, opts PageOptions) (Page[model.Issue], error)
	// ListPullRequests returns one page of pull requests of repo, most recent update first.
	ListPullRequests(ctx context.Context, repo model.Repository, opts PageOptions) (Page[model.PullRequest], error)
}

// GitHubGateway is the Source backed by the GitHub REST and GraphQL APIs.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	logger        *zap.SugaredLogger
}

// repositoriesQuery lists the repositories of an organization or user.
type repositoriesQuery struct {
	RepositoryOwner struct {
		Repositories struct {
			PageInfo struct {
				HasNextPage bool
				EndCursor   githubv4.String
			}
			Nodes []struct {
				Name   string
				IsFork bool
				Owner  struct {
					Login string
				}
				Parent struct {
					Name  string
					Owner struct {
						Login string
					}
				}
			}
		} `graphql:"repositories(first: 100, after: $cursor)"`
	} `graphql:"repositoryOwner(login: $login)"`
}

// New creates a GitHubGateway authenticated with the configured token.
// Requests that hit the secondary rate limit sleep until it resets.
func New(cfg config.GitHubConfig, logger *zap.SugaredLogger) (*GitHubGateway, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil,
		github_ratelimit.WithSingleSleepLimit(1*time.Hour, func(ctx *github_ratelimit.CallbackContext) {
			logger.Warnw("GitHub rate limit sleep exceeds limit",
				"sleep_until", ctx.SleepUntil,
			)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}

	var transport http.RoundTripper = rateLimitWaiter
	if cfg.Token != "" {
		transport = &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token}),
		}
	}
	httpClient := &http.Client{Transport: transport}

	restClient := github.NewClient(httpClient)
	if cfg.APIURL != "" {
		restClient, err = restClient.WithEnterpriseURLs(cfg.APIURL, cfg.APIURL)
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub API URL: %w", err)
		}
	}

	graphqlClient := githubv4.NewClient(httpClient)
	if cfg.GraphQLURL != "" {
		graphqlClient = githubv4.NewEnterpriseClient(cfg.GraphQLURL, httpClient)
	}

	return &GitHubGateway{
		restClient:    restClient,
		graphqlClient: graphqlClient,
		logger:        logger,
	}, nil
}

// ListRepositories returns the repositories owned by an organization or user.
func (g *GitHubGateway) ListRepositories(ctx context.Context, owner string) ([]model.Repository, error) {
	variables := map[string]interface{}{
		"login":  githubv4.String(owner),
		"cursor": (*githubv4.String)(nil),
	}

	var repos []model.Repository
	for {
		var q repositoriesQuery
		if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
			return nil, fmt.Errorf("failed to list repositories of %s: %w", owner, err)
		}

		for _, node := range q.RepositoryOwner.Repositories.Nodes {
			if node.IsFork && node.Parent.Name != "" {
				repos = append(repos, model.FromFork(node.Owner.Login, node.Parent.Owner.Login, node.Parent.Name))
				continue
			}
			repos = append(repos, model.Repository{Owner: node.Owner.Login, Name: node.Name})
		}

		if !q.RepositoryOwner.Repositories.PageInfo.HasNextPage {
			break
		}
		variables["cursor"] = githubv4.NewString(q.RepositoryOwner.Repositories.PageInfo.EndCursor)
		g.logger.Debugw("Fetching next page of repositories", "owner", owner)
	}

	g.logger.Debugw("Repositories listed", "owner", owner, "count", len(repos))
	return repos, nil
}

// ListIssues returns one page of issues of repo.
func (g *GitHubGateway) ListIssues(
	ctx context.Context,
	repo model.Repository,
	opts PageOptions,
) (Page[model.Issue], error) {
	listOpts := &github.IssueListByRepoOptions{
		State:       "all",
		Sort:        "updated",
		Direction:   "asc",
		Since:       opts.Since,
		ListOptions: github.ListOptions{Page: opts.Page, PerPage: opts.PerPage},
	}

	issues, resp, err := g.restClient.Issues.ListByRepo(ctx, repo.Owner, repo.Name, listOpts)
	if err != nil {
		return Page[model.Issue]{}, fmt.Errorf("failed to list issues of %s: %w", repo.FullName(), classify(err))
	}

	page := Page[model.Issue]{Items: make([]model.Issue, 0, len(issues)), NextPage: resp.NextPage}
	for _, issue := range issues {
		// The issues endpoint also returns pull requests.
		if issue.IsPullRequest() {
			continue
		}
		page.Items = append(page.Items, toIssue(repo.FullName(), issue))
	}
	return page, nil
}

// ListPullRequests returns one page of pull requests of repo.
func (g *GitHubGateway) ListPullRequests(
	ctx context.Context,
	repo model.Repository,
	opts PageOptions,
) (Page[model.PullRequest], error) {
	listOpts := &github.PullRequestListOptions{
		State:       "all",
		Sort:        "updated",
		Direction:   "desc",
		ListOptions: github.ListOptions{Page: opts.Page, PerPage: opts.PerPage},
	}

	prs, resp, err := g.restClient.PullRequests.List(ctx, repo.Owner, repo.Name, listOpts)
	if err != nil {
		return Page[model.PullRequest]{}, fmt.Errorf("failed to list pull requests of %s: %w", repo.FullName(), classify(err))
	}

	page := Page[model.PullRequest]{Items: make([]model.PullRequest, 0, len(prs)), NextPage: resp.NextPage}
	for _, pr := range prs {
		page.Items = append(page.Items, toPullRequest(repo.FullName(), pr))
	}
	return page, nil
}

func toIssue(repository string, issue *github.Issue) model.Issue {
	i := model.Issue{
		Record: model.Record{
			URL:        issue.GetHTMLURL(),
			Repository: repository,
			Number:     issue.GetNumber(),
			Title:      issue.GetTitle(),
			Creator:    issue.GetUser().GetLogin(),
			Assignee:   login(issue.Assignee),
			Open:       issue.GetState() == "open",
			CreatedAt:  issue.GetCreatedAt().Time,
			UpdatedAt:  issue.GetUpdatedAt().Time,
			ClosedAt:   timestamp(issue.ClosedAt),
		},
	}
	if len(issue.Labels) > 0 {
		i.Label = github.String(issue.Labels[0].GetName())
	}
	i.Normalize()
	return i
}

func toPullRequest(repository string, pr *github.PullRequest) model.PullRequest {
	p := model.PullRequest{
		Record: model.Record{
			URL:        pr.GetHTMLURL(),
			Repository: repository,
			Number:     pr.GetNumber(),
			Title:      pr.GetTitle(),
			Creator:    pr.GetUser().GetLogin(),
			Assignee:   login(pr.Assignee),
			Open:       pr.GetState() == "open",
			CreatedAt:  pr.GetCreatedAt().Time,
			UpdatedAt:  pr.GetUpdatedAt().Time,
			ClosedAt:   timestamp(pr.ClosedAt),
		},
	}
	p.Normalize()
	return p
}

func login(user *github.User) *string {
	if user == nil || user.GetLogin() == "" {
		return nil
	}
	return github.String(user.GetLogin())
}

func timestamp(ts *github.Timestamp) *time.Time {
	if ts == nil || ts.IsZero() {
		return nil
	}
	t := ts.Time
	return &t
}
