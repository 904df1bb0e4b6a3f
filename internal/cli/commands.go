package cli

import (
	"fmt"
	"strings"

	"timecard/internal/timer"

	"github.com/spf13/cobra"
)

func optionalName(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func (a *app) checkoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "checkout [project]",
		Aliases:           []string{"out"},
		Short:             "Start working on the current project",
		Long:              "Records the current time as the checkout of the current project, or of the named project.",
		Example:           "  timecard checkout\n  timecard checkout website",
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: a.projectCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.tracker.Checkout(optionalName(args))
			if err != nil {
				return err
			}
			printf(cmd, "%s %s at %s.\n",
				successColor.Sprint("Checked out"),
				identifierColor.Sprint(p.Name),
				p.CheckoutAt.Local().Format("15:04:05"),
			)
			return nil
		},
	}
}

func (a *app) checkinCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "checkin [project]",
		Aliases:           []string{"in"},
		Short:             "Stop working on the current project and record the session",
		Example:           "  timecard checkin\n  timecard checkin website",
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: a.projectCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := a.tracker.Checkin(optionalName(args))
			if err != nil {
				return err
			}
			p, err := a.tracker.Get(rec.Project)
			if err != nil {
				return err
			}
			printf(cmd, "%s %s after %s (total %s).\n",
				successColor.Sprint("Checked in"),
				identifierColor.Sprint(rec.Project),
				rec.Breakdown,
				timer.Format(p.Total),
			)
			return nil
		},
	}
}

func (a *app) createCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "create <project>",
		Aliases: []string{"new"},
		Short:   "Create a project",
		Example: "  timecard create website",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.tracker.Create(args[0])
			if err != nil {
				return err
			}
			printf(cmd, "%s %s.\n", successColor.Sprint("Created project"), identifierColor.Sprint(p.Name))

			status, err := a.tracker.Status()
			if err != nil {
				return err
			}
			if status.Project != nil && status.Project.Name == p.Name {
				printf(cmd, "%s is now the current project.\n", identifierColor.Sprint(p.Name))
			}
			return nil
		},
	}
}

func (a *app) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all projects with their accumulated time",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := a.tracker.List()
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				printf(cmd, "No projects yet. Create one with 'timecard create <project>'.\n")
				return nil
			}

			now := a.tracker.Now()
			printf(cmd, "  %-25s %12s  %s\n", "PROJECT", "TOTAL", "STATUS")
			printf(cmd, "  %-25s %12s  %s\n", strings.Repeat("-", 25), strings.Repeat("-", 12), strings.Repeat("-", 6))
			for _, e := range entries {
				marker := " "
				if e.Current {
					marker = "*"
				}
				status := "-"
				if e.CheckedOut() {
					status = runningColor.Sprintf("checked out %s", timer.Format(e.Running(now)))
				}
				printf(cmd, "%s %-25s %12s  %s\n", marker, e.Name, timer.Format(e.Total), status)
			}
			return nil
		},
	}
}

func (a *app) switchCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "switch <project>",
		Aliases:           []string{"use"},
		Short:             "Make a project the current one",
		Example:           "  timecard switch website",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: a.projectCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.tracker.Switch(args[0])
			if err != nil {
				return err
			}
			printf(cmd, "%s %s.\n", successColor.Sprint("Switched to"), identifierColor.Sprint(p.Name))
			return nil
		},
	}
}

func (a *app) deleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "delete <project>",
		Aliases:           []string{"rm"},
		Short:             "Delete a project; its records are kept",
		Example:           "  timecard delete website",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: a.projectCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			if err := a.tracker.Delete(name); err != nil {
				return err
			}
			printf(cmd, "%s %s.\n", successColor.Sprint("Deleted project"), identifierColor.Sprint(name))
			return nil
		},
	}
}

func (a *app) statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current project and the running session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := a.tracker.Status()
			if err != nil {
				return err
			}
			if status.Project == nil {
				printf(cmd, "You do not have a current project.\n")
				return nil
			}

			p := status.Project
			printf(cmd, "%s %s (total %s)\n", statusColor.Sprint("Current project:"), identifierColor.Sprint(p.Name), timer.Format(p.Total))
			if p.CheckedOut() {
				printf(cmd, "%s since %s, %s so far.\n",
					runningColor.Sprint("Checked out"),
					p.CheckoutAt.Local().Format("Jan 02 15:04:05"),
					timer.Format(status.Running),
				)
			} else {
				printf(cmd, "Not checked out.\n")
			}
			return nil
		},
	}
}

func (a *app) logCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:               "log [project]",
		Aliases:           []string{"records"},
		Short:             "Show recorded sessions, newest first",
		Example:           "  timecard log\n  timecard log website --limit 5",
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: a.projectCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 0 {
				return fmt.Errorf("--limit must not be negative")
			}
			records, err := a.tracker.Records(optionalName(args))
			if err != nil {
				return err
			}
			if len(records) == 0 {
				printf(cmd, "No records.\n")
				return nil
			}
			if limit > 0 && len(records) > limit {
				records = records[:limit]
			}

			printf(cmd, "%-20s %-16s %-16s %10s\n", "PROJECT", "CHECKOUT", "CHECKIN", "DURATION")
			for _, rec := range records {
				printf(cmd, "%-20s %-16s %-16s %10s\n",
					rec.Project,
					rec.CheckoutAt.Local().Format("Jan 02 15:04"),
					rec.CheckinAt.Local().Format("Jan 02 15:04"),
					rec.Breakdown,
				)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show at most this many records (0 for all)")
	return cmd
}
