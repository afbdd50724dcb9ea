package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/mbaren/tempo/internal/app"
	"github.com/mbaren/tempo/internal/ui"
	"github.com/mbaren/tempo/internal/ui/theme"
)

var version = "0.1.0"

var (
	flagDataDir string
	flagTheme   string
)

var rootCmd = &cobra.Command{
	Use:   "tempo",
	Short: "Terminal time tracker with billing and approval workflow",
	Long: `tempo tracks billable time from your terminal.

Start a timer, stop it, and the entry picks up your project's hourly
rate. Stopped entries can be submitted for review, approved or
rejected, and locked once invoiced.

Run with no arguments to open the TUI.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "Data directory (default ~/.local/share/tempo)")
	rootCmd.Flags().StringVar(&flagTheme, "theme", "", "Theme name (nord, catppuccin)")

	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// appConfig builds the application config from the persistent flags
func appConfig() *app.Config {
	if flagDataDir == "" {
		return app.DefaultConfig()
	}
	return app.ConfigForDir(flagDataDir)
}

func runTUI() error {
	application, err := app.New(appConfig())
	if err != nil {
		return err
	}
	defer application.Close()

	if flagTheme != "" {
		for _, t := range theme.All() {
			if t.Name == flagTheme {
				theme.SetTheme(t)
			}
		}
	}

	model := ui.NewRootModel(application)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err = p.Run()
	return err
}
