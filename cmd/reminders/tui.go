package main

import (
	"context"
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"reminders/internal/tui"
)

func tuiCmd() *cobra.Command {
	var logPath string

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the terminal UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(true)
			if err != nil {
				return err
			}
			defer a.Close()

			if logPath == "" {
				logPath = filepath.Join(filepath.Dir(a.cfg.Storage.Path), "tui.log")
			}
			f, err := tea.LogToFile(logPath, "reminders")
			if err != nil {
				return fmt.Errorf("open log file: %w", err)
			}
			defer f.Close()

			events := tui.NewEvents()
			model := tui.New(a.store, events)
			a.scheduler.SetDeliverer(events)
			if err := a.load(context.Background()); err != nil {
				return err
			}

			p := tea.NewProgram(model, tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("run ui: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&logPath, "log", "", "log file (default next to the database)")
	return cmd
}
