package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/camel-ai/terminus/terminal"
	"github.com/camel-ai/terminus/terminus"
)

func newDevCommand() *cobra.Command {
	var workDir string

	cmd := &cobra.Command{
		Use:   "dev [instruction...]",
		Short: "Run a task through the tool-calling developer agent",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			instruction := strings.Join(args, " ")

			cfg, log, err := loadConfigAndLogger(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			backend, err := newBackend(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = backend.Client.Close() }()

			if workDir == "" {
				workDir = cfg.Developer.WorkingDir
			}

			sess, err := terminal.NewLocalSession(workDir)
			if err != nil {
				return fmt.Errorf("create session: %w", err)
			}

			agent, err := terminus.NewDeveloperAgent(backend, terminus.DeveloperConfig{
				WorkingDir:            workDir,
				InContainer:           cfg.Developer.InContainer,
				MaxToolTurns:          cfg.Developer.MaxToolTurns,
				DefaultCommandTimeout: time.Duration(cfg.Developer.CommandTimeoutSec * float64(time.Second)),
				Logger:                log,
			})
			if err != nil {
				return err
			}
			defer agent.Close()

			go drainEvents(agent.Events(), log)

			result, err := agent.PerformTask(cmd.Context(), instruction, sess)
			if err != nil {
				return fmt.Errorf("task failed: %w", err)
			}
			sess.Wait()

			return reportResult(result)
		},
	}

	cmd.Flags().StringVar(&workDir, "workdir", "", "Working directory for the session and agent notes")

	return cmd
}
