package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/festy23/github_reporting/internal/activity/model"
	"github.com/festy23/github_reporting/internal/collector"
)

const collectAll = "all"

func newCollectCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "collect [issues|pull-requests|all]",
		Short:     "Run one collection pass and exit",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{string(model.KindIssues), string(model.KindPullRequests), collectAll},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := collectAll
			if len(args) == 1 {
				target = args[0]
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.migrate(); err != nil {
				return err
			}
			c, err := a.newCollector()
			if err != nil {
				return err
			}

			err = runCollect(cmd, c, target)
			for _, kind := range collectKinds(target) {
				status, statusErr := c.Status(kind)
				if statusErr != nil {
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d items from %d repositories\n",
					kind, status.Progress.Items, status.Progress.RepositoriesDone)
			}
			return err
		},
	}
}

func runCollect(cmd *cobra.Command, c *collector.Collector, target string) error {
	ctx := cmd.Context()
	switch target {
	case string(model.KindIssues):
		return c.CollectIssues(ctx)
	case string(model.KindPullRequests):
		return c.CollectPullRequests(ctx)
	default:
		return c.CollectAll(ctx)
	}
}

func collectKinds(target string) []model.Kind {
	if target == collectAll {
		return []model.Kind{model.KindIssues, model.KindPullRequests}
	}
	return []model.Kind{model.Kind(target)}
}
