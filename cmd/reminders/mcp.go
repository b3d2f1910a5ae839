package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"reminders/internal/mcpserver"
	"reminders/internal/service"
)

func mcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve reminder tools over MCP (stdio)",
		Long: `Serve reminder tools over MCP on stdin/stdout.

Tools: list_reminders, get_reminder, create_reminder, update_reminder,
toggle_completed, toggle_todo_item, delete_reminder, get_digest.

Fired notifications are written to the log on stderr.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// stdout carries the protocol.
			log.SetOutput(os.Stderr)

			a, err := openApp(true)
			if err != nil {
				return err
			}
			defer a.Close()

			a.scheduler.SetDeliverer(service.LogDeliverer{})
			if err := a.load(context.Background()); err != nil {
				return err
			}

			s := mcpserver.NewServer(a.store)
			if err := server.ServeStdio(s.MCPServer()); err != nil {
				return fmt.Errorf("mcp server: %w", err)
			}
			return nil
		},
	}
}
