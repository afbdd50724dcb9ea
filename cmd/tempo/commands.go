package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mbaren/tempo/internal/app"
	"github.com/mbaren/tempo/internal/billing"
	"github.com/mbaren/tempo/internal/db"
	"github.com/mbaren/tempo/internal/model"
	"github.com/mbaren/tempo/internal/report"
	"github.com/mbaren/tempo/internal/timer"
	"github.com/mbaren/tempo/internal/track"
)

var flagStartProject string

var startCmd = &cobra.Command{
	Use:   "start <description>",
	Short: "Start a timer from the command line",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := app.New(appConfig())
		if err != nil {
			return err
		}
		defer application.Close()

		description := strings.Join(args, " ")
		params := track.StartParams{Title: description, Description: description}

		if flagStartProject != "" {
			project, err := findProject(application.DB, flagStartProject)
			if err != nil {
				return err
			}
			params.ProjectID = &project.ID
		}

		entry, err := application.Tracker.StartTimer(params)
		if err != nil {
			if errors.Is(err, track.ErrTimerRunning) {
				return fmt.Errorf("a timer is already running; stop it first")
			}
			return err
		}

		fmt.Printf("Started: %s\n", entry.Title)
		if entry.IsBillable {
			fmt.Printf("Billing: $%.2f/h\n", entry.HourlyRate)
		}
		return nil
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running timer",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := app.New(appConfig())
		if err != nil {
			return err
		}
		defer application.Close()

		running, err := findRunning(application.DB)
		if err != nil {
			return err
		}
		if running == nil {
			return fmt.Errorf("no timer is running")
		}

		entry, err := application.Tracker.StopTimer(running.ID, 0)
		if err != nil {
			return err
		}

		fmt.Printf("Stopped: %s\n", entry.Title)
		fmt.Printf("Tracked: %s\n", billing.FormatDuration(entry.DurationSeconds))
		if entry.IsBillable {
			fmt.Printf("Amount:  $%.2f\n", entry.BillableAmount)
		}
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the running timer, if any",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Read-only; opens the database directly so it works while the
		// TUI holds the instance lock
		database, err := db.Open(appConfig().DBPath)
		if err != nil {
			return err
		}
		defer database.Close()

		running, err := findRunning(database)
		if err != nil {
			return err
		}
		if running == nil {
			fmt.Println("No timer running.")
			return nil
		}

		elapsed := timer.Elapsed(running, time.Now())
		fmt.Printf("Tracking: %s\n", running.Title)
		fmt.Printf("Elapsed:  %s\n", billing.FormatDuration(elapsed))
		if running.IsBillable {
			amount := billing.ComputeBillableAmount(elapsed, running.HourlyRate, true)
			fmt.Printf("Earned:   $%.2f so far\n", amount)
		}
		return nil
	},
}

var flagReportSince string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print tracked hours, utilization, and revenue",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := db.Open(appConfig().DBPath)
		if err != nil {
			return err
		}
		defer database.Close()

		var since time.Time
		if flagReportSince != "" {
			since, err = time.ParseInLocation("2006-01-02", flagReportSince, time.Local)
			if err != nil {
				return fmt.Errorf("--since must be YYYY-MM-DD")
			}
		}

		entries, err := database.ListEntries(track.EntryFilter{Since: since})
		if err != nil {
			return err
		}
		projects, err := database.GetProjects()
		if err != nil {
			return err
		}

		summary := report.Summarize(entries)
		fmt.Printf("Tracked:     %.1fh (%d entries)\n", summary.TotalHours, summary.EntryCount)
		fmt.Printf("Billable:    %.1fh (%.0f%% utilization)\n", summary.BillableHours, summary.Utilization)
		fmt.Printf("Revenue:     $%.2f\n", summary.Revenue)
		if summary.PendingReview > 0 {
			fmt.Printf("In review:   %d entries\n", summary.PendingReview)
		}

		usage := report.ByProject(entries, projects)
		if len(usage) > 0 {
			fmt.Println()
			for _, u := range usage {
				if u.Hours == 0 && u.Spent == 0 {
					continue
				}
				line := fmt.Sprintf("  %-24.24s %6.1fh  $%10.2f", u.Project.Name, u.Hours, u.Spent)
				if u.OverBudget {
					line += "  over budget"
				}
				fmt.Println(line)
			}
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tempo v%s\n", version)
	},
}

func init() {
	startCmd.Flags().StringVarP(&flagStartProject, "project", "p", "", "Project name to bill against")
	reportCmd.Flags().StringVar(&flagReportSince, "since", "", "Only include entries starting on or after this date (YYYY-MM-DD)")
}

// findRunning loads the single running entry, surfacing the conflict when the
// store somehow holds more than one
func findRunning(database *db.DB) (*model.TimeEntry, error) {
	entries, err := database.ListEntries(track.EntryFilter{Status: model.StatusRunning})
	if err != nil {
		return nil, err
	}
	return timer.FindRunning(entries)
}

// findProject resolves a project by case-insensitive name
func findProject(database *db.DB, name string) (*model.Project, error) {
	projects, err := database.GetProjects()
	if err != nil {
		return nil, err
	}
	for _, p := range projects {
		if strings.EqualFold(p.Name, name) {
			return &p, nil
		}
	}
	return nil, fmt.Errorf("no project named %q", name)
}
