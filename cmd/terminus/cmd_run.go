package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/camel-ai/terminus/config"
	"github.com/camel-ai/terminus/llm"
	"github.com/camel-ai/terminus/logger"
	"github.com/camel-ai/terminus/terminal"
	"github.com/camel-ai/terminus/terminus"
)

func newRunCommand() *cobra.Command {
	var (
		workDir     string
		loggingDir  string
		maxEpisodes int
	)

	cmd := &cobra.Command{
		Use:   "run [instruction...]",
		Short: "Run a task through the batched command protocol",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			instruction := strings.Join(args, " ")

			cfg, log, err := loadConfigAndLogger(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			if maxEpisodes > 0 {
				cfg.Agent.MaxEpisodes = maxEpisodes
			}

			backend, err := newBackend(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = backend.Client.Close() }()

			sess, err := terminal.NewLocalSession(workDir)
			if err != nil {
				return fmt.Errorf("create session: %w", err)
			}

			agent := terminus.New(backend, terminus.Config{
				MaxEpisodes:  cfg.Agent.MaxEpisodes,
				Attempts:     cfg.Agent.Attempts,
				SummaryPath:  cfg.Agent.SummaryPath,
				PaneMaxChars: cfg.Agent.PaneMaxChars,
				PaneMaxLines: cfg.Agent.PaneMaxLines,
				RepeatWindow: cfg.Agent.RepeatWindow,
				Logger:       log,
			})
			defer agent.Close()

			go drainEvents(agent.Events(), log)

			result, err := agent.PerformTask(cmd.Context(), instruction, sess, loggingDir)
			if err != nil {
				return fmt.Errorf("task failed: %w", err)
			}
			sess.Wait()

			return reportResult(result)
		},
	}

	cmd.Flags().StringVar(&workDir, "workdir", "", "Working directory for the terminal session")
	cmd.Flags().StringVar(&loggingDir, "logging-dir", "", "Directory for per-episode prompt/response logs")
	cmd.Flags().IntVar(&maxEpisodes, "max-episodes", 0, "Override the episode budget")

	return cmd
}

func loadConfigAndLogger(cmd *cobra.Command) (*config.Config, *zap.Logger, error) {
	configPath, _ := cmd.Flags().GetString("config")
	debug, _ := cmd.Flags().GetBool("debug")

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	if debug {
		cfg.Log.Level = "debug"
	}

	log, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

func newBackend(cfg *config.Config) (*llm.Backend, error) {
	opts := []llm.BackendOption{
		llm.WithBackendMaxTokens(cfg.Model.MaxTokens),
		llm.WithBackendTemperature(cfg.Model.Temperature),
	}
	if cfg.Model.APIKey != "" {
		opts = append(opts, llm.WithBackendAPIKey(cfg.Model.APIKey))
	}
	return llm.NewBackend(llm.Platform(cfg.Model.Platform), cfg.Model.Name, opts...)
}

func drainEvents(events <-chan terminus.TaskEvent, log *zap.Logger) {
	for ev := range events {
		log.Debug("task event",
			zap.String("kind", string(ev.Kind)),
			zap.Any("data", ev.Data))
	}
}

func reportResult(result *terminus.AgentResult) error {
	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, string(out))

	if result.FailureMode != terminus.FailureModeNone {
		return &TaskFailureError{Message: fmt.Sprintf("task ended with failure mode %q", result.FailureMode)}
	}
	return nil
}
