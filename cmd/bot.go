package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"factlens/pkg/analysis"
	"factlens/pkg/bot"
	"factlens/pkg/bot/telegram"
	"factlens/pkg/bus"
	"factlens/pkg/config"
	"factlens/pkg/llm"
	"factlens/pkg/logger"
	"factlens/pkg/prefs"
	"factlens/pkg/service"

	"github.com/spf13/cobra"
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the Telegram fact-checking bot",
	Long:  "Runs FactLens as a long-polling Telegram bot with health and readiness endpoints.",
	Run: func(cmd *cobra.Command, args []string) {
		_ = args

		cfg, err := config.LoadConfig()
		if err != nil {
			fmt.Printf("failed to load config: %v\n", err)
			return
		}

		appLogger, err := logger.New(cfg.Logging)
		if err != nil {
			fmt.Printf("failed to initialize logger: %v\n", err)
			return
		}
		slog.SetDefault(appLogger)
		log := slog.Default().With("component", "cmd.bot")

		if err := cfg.Validate(); err != nil {
			log.Error("Bot configuration invalid", "error", err)
			return
		}

		store, err := prefs.Open(cfg.Storage.Path, log)
		if err != nil {
			log.Error("Failed to open preference store", "path", cfg.Storage.Path, "error", err)
			return
		}
		defer func() {
			if err := store.Close(); err != nil {
				log.Error("Failed to close preference store", "error", err)
			}
		}()

		provider, err := llm.New(cfg)
		if err != nil {
			log.Error("Failed to initialize model provider", "error", err)
			return
		}

		events := bus.New()
		defer events.Close()

		router, err := bot.NewRouter(store, analysis.New(provider, log), events, log)
		if err != nil {
			log.Error("Failed to initialize router", "error", err)
			return
		}

		adapter, err := telegram.NewAdapter(cfg.Telegram, log)
		if err != nil {
			log.Error("Failed to configure telegram channel", "error", err)
			return
		}

		runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		svc, err := service.New(cfg, router.Handle, []bot.Adapter{adapter}, provider, events, log)
		if err != nil {
			log.Error("Failed to initialize service", "error", err)
			return
		}

		log.Info("Bot started", "channel", adapter.Name(), "model", cfg.OpenAI.Model, "storage", cfg.Storage.Path)
		if err := svc.Run(runCtx); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			log.Error("Bot runtime failed", "error", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(botCmd)
}
