package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kotoba/backend/internal/domain"
	"github.com/kotoba/backend/internal/infrastructure/auth"
	"github.com/kotoba/backend/internal/infrastructure/postgres"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(contextOrBackground(cmd), time.Minute)
			defer cancel()

			store, err := postgres.Open(ctx, cfg.Database.URL, cfg.Database.MaxConns)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Migrate(ctx); err != nil {
				return err
			}
			log.Info().Msg("schema is up to date")
			return nil
		},
	}
}

func newImportQuestionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import-questions <file.yaml>",
		Short: "Load quiz questions from a YAML file",
		Long: `Load quiz questions from a YAML file. The file is either a list of
questions or a mapping with a "questions" list. Each question has
category, question, option_a..option_d and correct_answer.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			questions, err := readQuestionFile(args[0])
			if err != nil {
				return err
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(contextOrBackground(cmd), 5*time.Minute)
			defer cancel()

			store, err := postgres.Open(ctx, cfg.Database.URL, cfg.Database.MaxConns)
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.Migrate(ctx); err != nil {
				return err
			}

			tokens := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
			n, err := newAdminService(cfg, store, tokens).ImportQuestions(ctx, questions)
			log.Info().Int("imported", n).Int("total", len(questions)).Str("file", args[0]).Msg("import finished")
			return err
		},
	}
}

func newHashPasswordCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print a bcrypt hash for auth.admin_password_hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := auth.HashPassword(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

type questionFile struct {
	Questions []domain.Question `yaml:"questions"`
}

// readQuestionFile parses a YAML list of questions, bare or under a "questions" key
func readQuestionFile(path string) ([]domain.Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var list []domain.Question
	if err := yaml.Unmarshal(data, &list); err == nil {
		if len(list) == 0 {
			return nil, errors.New("question file is empty")
		}
		return list, nil
	}

	var wrapped questionFile
	if err := yaml.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(wrapped.Questions) == 0 {
		return nil, errors.New("question file is empty")
	}
	return wrapped.Questions, nil
}

func contextOrBackground(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
