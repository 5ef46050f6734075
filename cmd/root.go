// File: cmd/root.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/deskpilot/internal/agent"
	"github.com/xkilldash9x/deskpilot/internal/config"
	"github.com/xkilldash9x/deskpilot/internal/llmclient"
	"github.com/xkilldash9x/deskpilot/internal/observability"
)

// envPrefix is prepended to every configuration key read from the environment.
const envPrefix = "DESKPILOT"

// exitError carries a process exit code out of a RunE. Its message has
// already been shown to the user.
type exitError struct {
	code int
}

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

// exitWith converts an exit code into the error a RunE returns.
func exitWith(code int) error {
	if code == 0 {
		return nil
	}
	return &exitError{code: code}
}

// app is the state shared by the command tree of one invocation.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
	logger  *zap.Logger

	// Replaced in tests.
	newRunner runnerFactory
	newModel  func(cfg config.LLMConfig, logger *zap.Logger) (llmclient.Client, error)
}

func newApp() *app {
	return &app{
		v:         viper.New(),
		logger:    zap.NewNop(),
		newRunner: buildInstructionRunner,
		newModel:  llmclient.NewClient,
	}
}

// NewRootCommand builds a fresh command tree with its own configuration.
func NewRootCommand() *cobra.Command {
	return newRootCommand(newApp())
}

func newRootCommand(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "deskpilot",
		Short: "DeskPilot drives the desktop with a vision language model.",
		Long: `DeskPilot runs natural language instructions against the local desktop.
Every step it captures the screen, asks a UI-TARS style model for the next
action and replays it as real mouse and keyboard input.`,
		Version:       Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig()
		},
	}
	rootCmd.SetVersionTemplate(`{{printf "%s version %s\n" .Name .Version}}`)

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&a.cfgFile, "config", "c", "", "config file (default is ./config.yaml)")
	pf.String("log-level", "", "log level (debug, info, warn, error)")
	pf.String("provider", "", "model provider (openai, gemini, ollama)")
	pf.String("endpoint", "", "model server base URL")
	pf.String("model", "", "model identifier")
	pf.String("session-root", "", "directory that receives session folders")
	for key, flag := range map[string]string{
		"logger.level": "log-level",
		"llm.provider": "provider",
		"llm.endpoint": "endpoint",
		"llm.model":    "model",
		"session.root": "session-root",
	} {
		// The flag names are fixed, so binding cannot fail.
		_ = a.v.BindPFlag(key, pf.Lookup(flag))
	}

	rootCmd.AddCommand(
		newRunCmd(a),
		newBatchCmd(a),
		newRefineCmd(a),
		newLogsCmd(a),
		newConfigCmd(a),
		newVersionCmd(),
	)
	return rootCmd
}

// loadConfig reads file, environment and flags into a validated Config and
// starts the global logger.
func (a *app) loadConfig() error {
	if err := initializeConfig(a.v, a.cfgFile); err != nil {
		return err
	}
	cfg, err := config.NewConfigFromViper(a.v)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	a.cfg = cfg

	observability.InitializeLogger(cfg.Logger())
	a.logger = observability.GetLogger()
	a.logger.Debug("Starting DeskPilot", zap.String("version", Version))
	return nil
}

// initializeConfig wires defaults, the config file and DESKPILOT_ variables
// into v.
func initializeConfig(v *viper.Viper, cfgFile string) error {
	config.SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context) int {
	return execute(ctx, NewRootCommand(), os.Args[1:], os.Stderr)
}

func execute(ctx context.Context, rootCmd *cobra.Command, args []string, stderr io.Writer) int {
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(ctx)
	defer observability.Sync()
	return exitCode(err, stderr)
}

// exitCode maps the error of a command onto the exit code contract. Usage and
// setup errors are internal errors.
func exitCode(err error, stderr io.Writer) int {
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(stderr, "Operation interrupted by user.")
		return agent.ExitInterrupted
	}
	fmt.Fprintln(stderr, "Error:", err)
	return agent.ExitInternal
}
