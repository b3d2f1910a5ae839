package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"reminders/internal/service"
)

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the reminder summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(false)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.load(context.Background()); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), service.Digest(a.store.List(), a.now(), service.PlainMarkup))
			return nil
		},
	}
}

func exportCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all reminders as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(false)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.load(context.Background()); err != nil {
				return err
			}

			data, err := json.MarshalIndent(a.store.List(), "", "  ")
			if err != nil {
				return fmt.Errorf("marshal reminders: %w", err)
			}

			if file == "" || file == "-" {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return err
			}
			if err := os.WriteFile(file, append(data, '\n'), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", file, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d reminders to %s\n", len(a.store.List()), file)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "output file (default stdout)")
	return cmd
}
