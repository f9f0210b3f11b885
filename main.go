package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/jdevries/workbridge/pkg/bridge"
	"github.com/jdevries/workbridge/pkg/config"
	"github.com/jdevries/workbridge/pkg/freshbooks"
	"github.com/jdevries/workbridge/pkg/logbook"
	"github.com/jdevries/workbridge/pkg/prompt"
	"github.com/jdevries/workbridge/pkg/toggl"
	"github.com/jdevries/workbridge/pkg/zendesk"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		configPath string
		verbose    bool
	)

	root := &cobra.Command{
		Use:   "workbridge",
		Short: "Bridge Zendesk tickets and Toggl time entries into FreshBooks",
		Long: `workbridge mirrors Zendesk support tickets into Toggl projects and
reconciles Toggl time entries into FreshBooks invoice lines.

Both workflows run on demand (cron or by hand) and append every decision
to a run log under ~/.config/workbridge/.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config.json (default ~/.config/workbridge/config.json)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug detail")

	var syncDays int
	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Turn recent Zendesk tickets into Toggl projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, cleanup, err := newBridge(configPath, verbose)
			if err != nil {
				return err
			}
			defer cleanup()
			return b.Sync(syncDays)
		},
	}
	syncCmd.Flags().IntVar(&syncDays, "days", 1, "how many days of tickets to sync")

	var trackDays int
	trackCmd := &cobra.Command{
		Use:   "track",
		Short: "Book recent Toggl time entries into FreshBooks interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, cleanup, err := newBridge(configPath, verbose)
			if err != nil {
				return err
			}
			defer cleanup()
			err = b.Track(trackDays)
			if errors.Is(err, bridge.ErrAborted) {
				// A clean operator abort: already reported on the terminal.
				cmd.SilenceErrors = true
			}
			return err
		},
	}
	trackCmd.Flags().IntVar(&trackDays, "days", 0, "how many days of time entries to review (0 asks)")

	root.AddCommand(syncCmd, trackCmd)
	return root
}

func newBridge(configPath string, verbose bool) (*bridge.Bridge, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	logPath, err := config.GetLogPath()
	if err != nil {
		return nil, nil, err
	}
	book, err := logbook.Open(logPath, verbose)
	if err != nil {
		return nil, nil, err
	}

	b := bridge.New(cfg, book.Logger, prompt.NewTerminal(),
		zendesk.NewClient(cfg, book.Logger),
		toggl.NewClient(cfg, book.Logger),
		freshbooks.NewClient(cfg, book.Logger),
	)
	return b, func() { _ = book.Close() }, nil
}
