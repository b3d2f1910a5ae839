package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"reminders/internal/config"
	"reminders/internal/repository"
	"reminders/internal/service"
)

var Version = "dev"

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:     "reminders",
		Short:   "Reminders with notes, checklists and scheduled alerts",
		Version: Version,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default ~/.reminders/config.yaml)")

	rootCmd.AddCommand(botCmd())
	rootCmd.AddCommand(tuiCmd())
	rootCmd.AddCommand(mcpCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(exportCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app holds the pieces every mode shares.
type app struct {
	cfg       *config.Config
	loc       *time.Location
	db        *gorm.DB
	scheduler *service.SchedulerService
	store     *service.ReminderStore
}

// openApp loads config, opens storage and builds the store. Notifications
// are armed only when notify is set and the config enables them.
func openApp(notify bool) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	db, err := repository.NewDB(cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("db: %w", err)
	}

	entries := repository.NewEntryRepository(db)
	reminders := repository.NewReminderRepository(entries, cfg.Storage.Key)
	clock := func() time.Time { return time.Now().In(loc) }
	scheduler := service.NewSchedulerService(loc, notify && cfg.Notifications.Enabled, service.WithSchedulerClock(clock))
	store := service.NewReminderStore(reminders, scheduler, service.WithClock(clock))

	return &app{cfg: cfg, loc: loc, db: db, scheduler: scheduler, store: store}, nil
}

// load reads the collection and starts the notification engine.
func (a *app) load(ctx context.Context) error {
	if err := a.store.Load(ctx); err != nil {
		return fmt.Errorf("load reminders: %w", err)
	}
	a.scheduler.Start()
	return nil
}

func (a *app) Close() {
	a.scheduler.Stop()
	if sqlDB, err := a.db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("close db: %v", err)
		}
	}
}

func (a *app) now() time.Time {
	return time.Now().In(a.loc)
}
