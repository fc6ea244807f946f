package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/kotoba/backend/config"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "kotoba",
		Short: "Kotoba Japanese learning backend",
		Long: `kotoba serves the Japanese learning API: quizzes, leaderboards,
pronunciation practice, AI conversation and speech.

Examples:
  kotoba                                # start the API server (same as "serve")
  kotoba migrate                        # create database tables
  kotoba import-questions seed.yaml     # load quiz questions from YAML
  kotoba hash-password 'secret'         # print a bcrypt hash for auth.admin_password_hash`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	root.AddCommand(
		newServeCommand(),
		newMigrateCommand(),
		newImportQuestionsCommand(),
		newHashPasswordCommand(),
	)
	return root
}

// loadConfig loads configuration and configures the global logger from it
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	setupLogging(cfg)
	return cfg, nil
}

// setupLogging uses human-readable output in development and JSON elsewhere
func setupLogging(cfg *config.Config) {
	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.IsDevelopment() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
		return
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Str("service", "kotoba-backend").Logger()
}
