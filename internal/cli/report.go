package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/festy23/github_reporting/internal/activity/model"
	"github.com/festy23/github_reporting/internal/activity/repository"
	activityService "github.com/festy23/github_reporting/internal/activity/service"
	reportModel "github.com/festy23/github_reporting/internal/report/model"
	reportService "github.com/festy23/github_reporting/internal/report/service"
)

func newReportCommand() *cobra.Command {
	var (
		start, end string
		users      []string
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the weekly development report from stored issues",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
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

			fallback, err := c.DefaultWindow(cmd.Context(), model.KindIssues)
			if err != nil {
				return err
			}
			window, err := model.ParseWindow(start, end, fallback)
			if err != nil {
				return err
			}

			svc := reportService.New(
				activityService.New(repository.NewIssues(a.db, a.logger), a.logger),
				activityService.New(repository.NewPullRequests(a.db, a.logger), a.logger),
				a.cfg.Report,
				a.logger,
			)
			report, err := svc.WeeklyReport(cmd.Context(), reportModel.Request{Window: window, Users: users})
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), report.Markdown)
			return err
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "Window start (dd/mm/yyyy)")
	cmd.Flags().StringVar(&end, "end", "", "Window end, inclusive (dd/mm/yyyy)")
	cmd.Flags().StringSliceVar(&users, "users", nil, "Only these assignees (comma separated)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the grouped report as JSON")
	return cmd
}
