// File: cmd/run.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/deskpilot/internal/agent"
	"github.com/xkilldash9x/deskpilot/internal/config"
	"github.com/xkilldash9x/deskpilot/internal/desktop"
	"github.com/xkilldash9x/deskpilot/internal/llmclient"
	"github.com/xkilldash9x/deskpilot/internal/observability"
	"github.com/xkilldash9x/deskpilot/internal/session"
)

// InstructionRunner executes one instruction to a final outcome.
type InstructionRunner interface {
	Run(ctx context.Context, instruction string) (agent.Outcome, error)
}

// runnerFactory assembles the agent for one session directory.
type runnerFactory func(ctx context.Context, cfg config.Interface, opts runOptions, logger *zap.Logger) (InstructionRunner, error)

// runOptions are the per-run inputs of a runnerFactory.
type runOptions struct {
	sessionDir  string
	journal     agent.Journal
	showDesktop bool
}

// buildInstructionRunner wires the model client, the OS input driver and the
// screen capturer into an agent.Runner.
func buildInstructionRunner(ctx context.Context, cfg config.Interface, opts runOptions, logger *zap.Logger) (InstructionRunner, error) {
	model, err := llmclient.NewClient(cfg.LLM(), logger)
	if err != nil {
		return nil, err
	}
	driver, err := desktop.NewSystemDriver()
	if err != nil {
		return nil, fmt.Errorf("failed to create input driver: %w", err)
	}
	executor := desktop.NewExecutor(driver, cfg.Desktop(), logger)
	screens, err := desktop.NewScreenCapturer(cfg.Desktop(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create screen capturer: %w", err)
	}

	if opts.showDesktop {
		if err := executor.ShowDesktop(ctx); err != nil {
			logger.Warn("Could not minimize windows.", zap.Error(err))
		}
	}

	controller := agent.NewController(agent.LimitsFromConfig(cfg.Agent()), executor, logger)
	stepper := agent.New(opts.sessionDir, screens, model, controller, logger)
	return agent.NewRunner(stepper, opts.journal, cfg.Agent(), logger), nil
}

func newRunCmd(a *app) *cobra.Command {
	var parentID string
	var showDesktop bool

	cmd := &cobra.Command{
		Use:   "run <instruction>",
		Short: "Run a single instruction against the desktop",
		Long: `Run sends the instruction to the model step by step until the model
finishes, asks for authentication or hands control back to the user.

Exit codes: 0 finished, 1 user intervention needed, 2 error,
3 authentication (OTP/mobile number) required, 130 interrupted.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			instruction := strings.TrimSpace(strings.Join(args, " "))
			out := console{out: cmd.OutOrStdout()}
			if instruction == "" {
				out.Error("Error: Empty instruction provided.")
				return exitWith(agent.ExitInternal)
			}
			return exitWith(a.runInstruction(cmd.Context(), out, instruction, parentID, showDesktop))
		},
	}
	cmd.Flags().StringVar(&parentID, "session-id", "", "group this run under session_<ID> (used by batch runs)")
	cmd.Flags().BoolVar(&showDesktop, "show-desktop", false, "minimize all windows before the first step")
	return cmd
}

// runInstruction performs one instruction run in its own session directory
// and returns the process exit code.
func (a *app) runInstruction(ctx context.Context, out console, instruction, parentID string, showDesktop bool) int {
	layout, err := session.NewLayout(a.cfg.Session().Root)
	if err != nil {
		out.Error("Error: %v", err)
		return agent.ExitInternal
	}
	dir, err := layout.Create(parentID, time.Now())
	if err != nil {
		out.Error("Error: %v", err)
		return agent.ExitInternal
	}

	sessionLog := observability.OpenSessionLog(a.logger, filepath.Join(dir, observability.SessionLogName), a.cfg.Logger())
	defer sessionLog.Close()
	logger := sessionLog.Logger.With(zap.String("session", filepath.Base(dir)))
	out = out.withMirror(sessionLog)

	out.Info("Session data will be saved in: %s", dir)

	journal, err := session.OpenJournal(dir)
	if err != nil {
		out.Error("Error: %v", err)
		return agent.ExitInternal
	}
	defer journal.Close()

	runner, err := a.newRunner(ctx, a.cfg, runOptions{sessionDir: dir, journal: journal, showDesktop: showDesktop}, logger)
	if err != nil {
		logger.Error("Failed to set up the agent.", zap.Error(err))
		out.Error("Error: %v", err)
		return agent.ExitInternal
	}

	outcome, err := runner.Run(ctx, instruction)
	switch {
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		out.Warn("Operation interrupted by user.")
		return agent.ExitInterrupted
	case err != nil:
		out.Error("Exception from agent step: %v", err)
		return outcome.ExitCode()
	}

	switch outcome {
	case agent.OutcomeFinished:
		out.Success("Instruction finished successfully.")
	case agent.OutcomeAuthenticateRequested:
		out.Warn("Instruction requested user authentication (OTP/mobile number). Exiting with code %d.", outcome.ExitCode())
	case agent.OutcomeCallUserRequested:
		out.Warn("Instruction requested user intervention. Exiting with code %d.", outcome.ExitCode())
	default:
		out.Error("Instruction stopped after repeated failures (%s). Exiting with code %d.", outcome, outcome.ExitCode())
	}
	return outcome.ExitCode()
}
