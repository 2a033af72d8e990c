package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"issue-classifier/internal/api/rest"
	"issue-classifier/internal/api/telegram"
	"issue-classifier/internal/logging"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and, when TELEGRAM_TOKEN is set, the Telegram bot",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, c, cleanup, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer cleanup()
	log := logging.New("main")

	g, ctx := errgroup.WithContext(ctx)

	server := rest.NewServer(cfg.HTTPAddr, c.ClassificationService, cfg.MaxImageBytes)
	g.Go(func() error {
		return server.Run(ctx)
	})

	if cfg.TelegramToken != "" {
		bot, err := telegram.NewBot(cfg.TelegramToken, c.SessionService, c.ClassificationService)
		if err != nil {
			return err
		}
		g.Go(func() error {
			log.Info("bot is running")
			return bot.Run(ctx)
		})
	} else {
		log.Info("telegram bot disabled, TELEGRAM_TOKEN is not set")
	}

	return g.Wait()
}
