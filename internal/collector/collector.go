// Package collector pulls issues and pull requests from GitHub into the store
// and tracks the recommended query window.
package collector

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/festy23/github_reporting/internal/activity/model"
	"github.com/festy23/github_reporting/internal/activity/repository"
	"github.com/festy23/github_reporting/internal/config"
	"github.com/festy23/github_reporting/internal/gateway"
	"github.com/festy23/github_reporting/pkg/retry"
)

const discoveryConcurrency = 4

// Collector runs collection passes per entity kind.
// At most one pass per kind runs at a time; a trigger during a pass joins it.
type Collector struct {
	source       gateway.Source
	issues       repository.Repository[model.Issue]
	pullRequests repository.Repository[model.PullRequest]
	github       config.GitHubConfig
	cfg          config.CollectorConfig
	logger       *zap.SugaredLogger
	now          func() time.Time

	enabled atomic.Bool
	passes  singleflight.Group

	mu       sync.RWMutex
	lifetime context.Context
	lastRun  map[model.Kind]time.Time
	repos    map[string][]model.Repository
	statuses map[model.Kind]*broadcaster
}

// New creates a Collector. Scheduled collection starts enabled when cfg.Enabled is set.
func New(
	source gateway.Source,
	issues repository.Repository[model.Issue],
	pullRequests repository.Repository[model.PullRequest],
	githubCfg config.GitHubConfig,
	cfg config.CollectorConfig,
	logger *zap.SugaredLogger,
) *Collector {
	c := &Collector{
		source:       source,
		issues:       issues,
		pullRequests: pullRequests,
		github:       githubCfg,
		cfg:          cfg,
		logger:       logger,
		now:          time.Now,
		lifetime:     context.Background(),
		lastRun:      make(map[model.Kind]time.Time),
		statuses: map[model.Kind]*broadcaster{
			model.KindIssues:       newBroadcaster(model.KindIssues),
			model.KindPullRequests: newBroadcaster(model.KindPullRequests),
		},
	}
	if cfg.Enabled {
		c.Enable()
	}
	return c
}

// Enable turns scheduled collection on. It is idempotent and returns the new state.
func (c *Collector) Enable() bool {
	c.setEnabled(true)
	return true
}

// Disable turns scheduled collection off. It is idempotent and returns the new state.
func (c *Collector) Disable() bool {
	c.setEnabled(false)
	return false
}

// Enabled reports whether scheduled collection is on.
func (c *Collector) Enabled() bool {
	return c.enabled.Load()
}

func (c *Collector) setEnabled(enabled bool) {
	if c.enabled.Swap(enabled) == enabled {
		return
	}
	for _, b := range c.statuses {
		b.update(func(s *Status) { s.Enabled = enabled })
	}
	c.logger.Infow("Scheduled collection toggled", "enabled", enabled)
}

// Status returns the current status of kind.
func (c *Collector) Status(kind model.Kind) (Status, error) {
	b, ok := c.statuses[kind]
	if !ok {
		return Status{}, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	return b.snapshot(), nil
}

// Subscribe returns a stream of status snapshots of kind, starting with the current one.
// The caller must invoke cancel when done; cancel closes the channel.
func (c *Collector) Subscribe(kind model.Kind) (<-chan Status, func(), error) {
	b, ok := c.statuses[kind]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	ch, cancel := b.subscribe()
	return ch, cancel, nil
}

// Organizations returns the configured organizations.
func (c *Collector) Organizations() []string {
	return append([]string{}, c.github.Organizations...)
}

// Users returns the configured users.
func (c *Collector) Users() []string {
	return append([]string{}, c.github.Users...)
}

// Repositories returns the known repositories grouped by owner.
// They are discovered on first use and refreshed by every pass.
func (c *Collector) Repositories(ctx context.Context) (map[string][]model.Repository, error) {
	c.mu.RLock()
	cached := c.repos
	c.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}
	return c.discover(ctx)
}

// RepositoriesOf returns the repositories of one owner.
// Owners outside the configured scopes are looked up directly.
func (c *Collector) RepositoriesOf(ctx context.Context, owner string) ([]model.Repository, error) {
	all, err := c.Repositories(ctx)
	if err != nil {
		return nil, err
	}
	if repos, ok := all[owner]; ok {
		return repos, nil
	}
	return c.listRepositories(ctx, owner)
}

// StartTime returns the recommended window start of kind: the earliest stored
// creation time, bounded below by the configured floor.
func (c *Collector) StartTime(ctx context.Context, kind model.Kind) (time.Time, error) {
	var (
		earliest *time.Time
		err      error
	)
	switch kind {
	case model.KindIssues:
		earliest, err = c.issues.EarliestCreatedAt(ctx)
	case model.KindPullRequests:
		earliest, err = c.pullRequests.EarliestCreatedAt(ctx)
	default:
		return time.Time{}, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("find earliest %s: %w", kind, err)
	}

	start := c.now().Add(-c.cfg.DefaultWindow)
	if earliest != nil {
		start = *earliest
	}
	if !c.cfg.StartFloor.IsZero() && start.Before(c.cfg.StartFloor) {
		start = c.cfg.StartFloor
	}
	return start.UTC(), nil
}

// EndTime returns the recommended window end of kind: the time of the last
// successful pass, or now when there was none.
func (c *Collector) EndTime(kind model.Kind) time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if last, ok := c.lastRun[kind]; ok {
		return last
	}
	return c.now().UTC()
}

// DefaultWindow returns [StartTime, EndTime] of kind.
func (c *Collector) DefaultWindow(ctx context.Context, kind model.Kind) (model.Window, error) {
	start, err := c.StartTime(ctx, kind)
	if err != nil {
		return model.Window{}, err
	}
	return model.Window{Start: start, End: c.EndTime(kind)}, nil
}

// CollectIssues runs an issue pass, or joins the one in progress, and waits for it.
func (c *Collector) CollectIssues(ctx context.Context) error {
	return c.collect(ctx, model.KindIssues, func(ctx context.Context, repo model.Repository, since time.Time, p *passState) error {
		return collectRepository(ctx, c, p, c.issues, false,
			func(ctx context.Context, page int) (gateway.Page[model.Issue], error) {
				return c.source.ListIssues(ctx, repo, gateway.PageOptions{
					Page:    page,
					PerPage: c.github.PerPage,
					Since:   since,
				})
			}, since)
	})
}

// CollectPullRequests runs a pull request pass, or joins the one in progress, and waits for it.
func (c *Collector) CollectPullRequests(ctx context.Context) error {
	return c.collect(ctx, model.KindPullRequests, func(ctx context.Context, repo model.Repository, since time.Time, p *passState) error {
		return collectRepository(ctx, c, p, c.pullRequests, true,
			func(ctx context.Context, page int) (gateway.Page[model.PullRequest], error) {
				return c.source.ListPullRequests(ctx, repo, gateway.PageOptions{
					Page:    page,
					PerPage: c.github.PerPage,
				})
			}, since)
	})
}

// CollectAll runs an issue pass and then a pull request pass.
// A failed issue pass does not prevent the pull request pass.
func (c *Collector) CollectAll(ctx context.Context) error {
	issuesErr := c.CollectIssues(ctx)
	return errors.Join(issuesErr, c.CollectPullRequests(ctx))
}

type repositoryPass func(ctx context.Context, repo model.Repository, since time.Time, p *passState) error

// passState tracks one running pass.
type passState struct {
	status *broadcaster
	items  int
}

func (p *passState) progress(fn func(*Progress)) {
	p.status.update(func(s *Status) { fn(&s.Progress) })
}

// collect runs one pass per kind at a time. The pass is detached from the
// triggering caller and ends only with the collector's lifetime; each caller
// stops waiting when its own context is done.
func (c *Collector) collect(ctx context.Context, kind model.Kind, run repositoryPass) error {
	results := c.passes.DoChan(string(kind), func() (interface{}, error) {
		passCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		defer cancel()
		stop := context.AfterFunc(c.lifetimeContext(), cancel)
		defer stop()
		return nil, c.runPass(passCtx, kind, run)
	})

	select {
	case res := <-results:
		if res.Shared {
			c.logger.Debugw("Joined running collection pass", "kind", kind)
		}
		return res.Err
	case <-ctx.Done():
		c.logger.Debugw("Stopped waiting for collection pass", "kind", kind, "error", ctx.Err())
		return ctx.Err()
	}
}

func (c *Collector) lifetimeContext() context.Context {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lifetime
}

func (c *Collector) runPass(ctx context.Context, kind model.Kind, run repositoryPass) error {
	runID := uuid.NewString()
	startedAt := c.now().UTC()
	c.mu.RLock()
	since := c.lastRun[kind]
	c.mu.RUnlock()

	state := &passState{status: c.statuses[kind]}
	state.status.update(func(s *Status) {
		s.Running = true
		s.RunID = runID
		s.Progress = Progress{}
		s.LastError = ""
	})

	logger := c.logger.With("kind", kind, "run_id", runID)
	logger.Infow("Collection pass started", "since", since)

	err := c.runRepositories(ctx, since, state, run)
	if err != nil {
		state.status.update(func(s *Status) {
			s.Running = false
			s.LastError = err.Error()
		})
		logger.Errorw("Collection pass failed",
			"error", err,
			"items", state.items,
		)
		return fmt.Errorf("%s pass %s: %w", kind, runID, err)
	}

	c.mu.Lock()
	c.lastRun[kind] = startedAt
	c.mu.Unlock()

	state.status.update(func(s *Status) {
		s.Running = false
		s.LastRun = &startedAt
		s.Progress.Repository = ""
	})
	logger.Infow("Collection pass completed",
		"items", state.items,
		"duration", c.now().Sub(startedAt),
	)
	return nil
}

func (c *Collector) runRepositories(
	ctx context.Context,
	since time.Time,
	state *passState,
	run repositoryPass,
) error {
	if !c.github.HasScopes() {
		return ErrNoScopes
	}

	discovered, err := c.discover(ctx)
	if err != nil {
		return err
	}
	repos := flatten(discovered)

	state.progress(func(p *Progress) { p.RepositoriesTotal = len(repos) })
	for i, repo := range repos {
		state.progress(func(p *Progress) {
			p.Repository = repo.FullName()
			p.Page = 0
		})
		if err := run(ctx, repo, since, state); err != nil {
			return err
		}
		state.progress(func(p *Progress) { p.RepositoriesDone = i + 1 })
	}
	return nil
}

// discover lists the repositories of every configured owner concurrently
// and adds the explicitly configured repositories.
func (c *Collector) discover(ctx context.Context) (map[string][]model.Repository, error) {
	owners := append(c.Organizations(), c.Users()...)
	results := make([][]model.Repository, len(owners))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(discoveryConcurrency)
	for i, owner := range owners {
		g.Go(func() error {
			repos, err := c.listRepositories(gctx, owner)
			if err != nil {
				return err
			}
			results[i] = repos
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	discovered := make(map[string][]model.Repository, len(owners))
	for i, owner := range owners {
		discovered[owner] = append(discovered[owner], results[i]...)
	}
	for _, name := range c.github.Repositories {
		repo, err := model.ParseRepository(name)
		if err != nil {
			return nil, err
		}
		discovered[repo.Owner] = append(discovered[repo.Owner], repo)
	}

	c.mu.Lock()
	c.repos = discovered
	c.mu.Unlock()
	return discovered, nil
}

func (c *Collector) listRepositories(ctx context.Context, owner string) ([]model.Repository, error) {
	return fetchPage(ctx, c, func(ctx context.Context) ([]model.Repository, error) {
		return c.source.ListRepositories(ctx, owner)
	})
}

// flatten returns the repositories of all owners once each, sorted by full name.
func flatten(byOwner map[string][]model.Repository) []model.Repository {
	seen := make(map[string]bool)
	var repos []model.Repository
	for _, list := range byOwner {
		for _, repo := range list {
			if seen[repo.FullName()] {
				continue
			}
			seen[repo.FullName()] = true
			repos = append(repos, repo)
		}
	}
	sort.Slice(repos, func(i, j int) bool { return repos[i].FullName() < repos[j].FullName() })
	return repos
}

// fetchPage runs fetch with the page timeout and retries transient failures.
// Missing repositories and rejected credentials fail at once.
func fetchPage[T any](ctx context.Context, c *Collector, fetch func(context.Context) (T, error)) (T, error) {
	return retry.DoWithResult(ctx, retry.GitHubConfig(c.github.RetryAttempts), func() (T, error) {
		pageCtx, cancel := context.WithTimeout(ctx, c.github.PageTimeout)
		defer cancel()
		page, err := fetch(pageCtx)
		if errors.Is(err, gateway.ErrNotFound) || errors.Is(err, gateway.ErrUnauthorized) {
			return page, retry.Permanent(err)
		}
		return page, err
	})
}

// collectRepository pages through one repository and upserts every valid entity.
// With stopWhenStale, paging stops at the first page that holds nothing updated since the last run.
func collectRepository[T model.Entity](
	ctx context.Context,
	c *Collector,
	state *passState,
	store repository.Repository[T],
	stopWhenStale bool,
	list func(ctx context.Context, page int) (gateway.Page[T], error),
	since time.Time,
) error {
	page := 1
	for {
		result, err := fetchPage(ctx, c, func(ctx context.Context) (gateway.Page[T], error) {
			return list(ctx, page)
		})
		if err != nil {
			return err
		}

		fresh := make([]T, 0, len(result.Items))
		stale := 0
		for _, item := range result.Items {
			if stopWhenStale && !since.IsZero() && item.GetUpdatedAt().Before(since) {
				stale++
				continue
			}
			if err := item.Validate(); err != nil {
				c.logger.Warnw("Skipping invalid entity", "error", err)
				continue
			}
			if anomalies := item.Anomalies(); len(anomalies) > 0 {
				c.logger.Debugw("Entity timestamps out of order",
					"url", item.GetURL(),
					"anomalies", anomalies,
				)
			}
			fresh = append(fresh, item)
		}

		if err := store.UpsertBatch(ctx, fresh); err != nil {
			return err
		}

		state.items += len(fresh)
		state.progress(func(p *Progress) {
			p.Page = page
			p.Items = state.items
		})

		if result.NextPage == 0 || (len(result.Items) > 0 && stale == len(result.Items)) {
			return nil
		}
		page = result.NextPage
	}
}
