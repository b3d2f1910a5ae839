package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"reminders/internal/bot"
)

func botCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Run the Telegram bot for the owner chat",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := openApp(true)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.cfg.ValidateBot(); err != nil {
				return err
			}

			telegramBot, err := bot.New(a.cfg.Telegram.Token, a.store, a.cfg.Telegram.ChatID)
			if err != nil {
				return err
			}
			a.scheduler.SetDeliverer(telegramBot)

			if err := scheduleDigest(a, telegramBot); err != nil {
				return err
			}
			if err := a.load(ctx); err != nil {
				return err
			}

			log.Println("Reminders bot started.")
			if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			log.Println("Shutdown complete.")
			return nil
		},
	}
}

func scheduleDigest(a *app, telegramBot *bot.Bot) error {
	job := func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := telegramBot.SendDigest(jobCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("digest: %v", err)
		}
	}

	switch {
	case a.cfg.Digest.At != "":
		if _, err := a.scheduler.ScheduleDaily(a.cfg.Digest.At, job); err != nil {
			return err
		}
		log.Printf("[info] daily digest at %s", a.cfg.Digest.At)
	case a.cfg.Digest.Interval > 0:
		if _, err := a.scheduler.ScheduleInterval(a.cfg.Digest.Interval, job); err != nil {
			return err
		}
		log.Printf("[info] digest every %s", a.cfg.Digest.Interval)
	}
	return nil
}
