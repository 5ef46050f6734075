// File: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/spf13/viper"
)

// Interface defines the contract for accessing application configuration.
// This allows for dependency injection and mocking in tests.
type Interface interface {
	Logger() LoggerConfig
	Agent() AgentConfig
	LLM() LLMConfig
	Desktop() DesktopConfig
	Session() SessionConfig
	Batch() BatchConfig
}

// Config holds the entire application configuration.
type Config struct {
	LoggerCfg  LoggerConfig  `mapstructure:"logger" yaml:"logger" json:"logger"`
	AgentCfg   AgentConfig   `mapstructure:"agent" yaml:"agent" json:"agent"`
	LLMCfg     LLMConfig     `mapstructure:"llm" yaml:"llm" json:"llm"`
	DesktopCfg DesktopConfig `mapstructure:"desktop" yaml:"desktop" json:"desktop"`
	SessionCfg SessionConfig `mapstructure:"session" yaml:"session" json:"session"`
	BatchCfg   BatchConfig   `mapstructure:"batch" yaml:"batch" json:"batch"`
}

var _ Interface = (*Config)(nil)

// --- Interface Method Implementations (Getters) ---

func (c *Config) Logger() LoggerConfig   { return c.LoggerCfg }
func (c *Config) Agent() AgentConfig     { return c.AgentCfg }
func (c *Config) LLM() LLMConfig         { return c.LLMCfg }
func (c *Config) Desktop() DesktopConfig { return c.DesktopCfg }
func (c *Config) Session() SessionConfig { return c.SessionCfg }
func (c *Config) Batch() BatchConfig     { return c.BatchCfg }

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level" json:"level"`
	Format      string      `mapstructure:"format" yaml:"format" json:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source" json:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name" json:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file" json:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size" json:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups" json:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age" json:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress" json:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors" json:"colors"`
}

// ColorConfig defines the color names for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug" json:"debug"`
	Info   string `mapstructure:"info" yaml:"info" json:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn" json:"warn"`
	Error  string `mapstructure:"error" yaml:"error" json:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic" json:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic" json:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal" json:"fatal"`
}

// AgentConfig holds the loop guard thresholds and the pacing of the
// instruction loop.
type AgentConfig struct {
	MaxTotalSteps        int           `mapstructure:"max_total_steps" yaml:"max_total_steps" json:"max_total_steps"`
	MaxActionFrequency   int           `mapstructure:"max_action_frequency" yaml:"max_action_frequency" json:"max_action_frequency"`
	MaxSameAction        int           `mapstructure:"max_same_action" yaml:"max_same_action" json:"max_same_action"`
	MaxWait              int           `mapstructure:"max_wait" yaml:"max_wait" json:"max_wait"`
	MaxConsecutiveErrors int           `mapstructure:"max_consecutive_errors" yaml:"max_consecutive_errors" json:"max_consecutive_errors"`
	StartDelay           time.Duration `mapstructure:"start_delay" yaml:"start_delay" json:"start_delay"`
	StepDelay            time.Duration `mapstructure:"step_delay" yaml:"step_delay" json:"step_delay"`
}

// LLMProvider names a model transport.
type LLMProvider string

const (
	ProviderOpenAI LLMProvider = "openai"
	ProviderGemini LLMProvider = "gemini"
	ProviderOllama LLMProvider = "ollama"
)

// LLMConfig configures the vision model client.
type LLMConfig struct {
	Provider        LLMProvider   `mapstructure:"provider" yaml:"provider" json:"provider"`
	Endpoint        string        `mapstructure:"endpoint" yaml:"endpoint" json:"endpoint"`
	APIKey          string        `mapstructure:"api_key" yaml:"-" json:"-"`
	Model           string        `mapstructure:"model" yaml:"model" json:"model"`
	Temperature     float32       `mapstructure:"temperature" yaml:"temperature" json:"temperature"`
	MaxTokens       int           `mapstructure:"max_tokens" yaml:"max_tokens" json:"max_tokens"`
	RefineMaxTokens int           `mapstructure:"refine_max_tokens" yaml:"refine_max_tokens" json:"refine_max_tokens"`
	APITimeout      time.Duration `mapstructure:"api_timeout" yaml:"api_timeout" json:"api_timeout"`
	Retry           RetryConfig   `mapstructure:"retry" yaml:"retry" json:"retry"`
}

// RetryConfig bounds transport level retries. A zero MaxElapsed disables them.
type RetryConfig struct {
	MaxElapsed  time.Duration `mapstructure:"max_elapsed" yaml:"max_elapsed" json:"max_elapsed"`
	MaxInterval time.Duration `mapstructure:"max_interval" yaml:"max_interval" json:"max_interval"`
}

// DesktopConfig tunes the OS input executor and the screenshot capturer.
type DesktopConfig struct {
	MoveDuration       time.Duration `mapstructure:"move_duration" yaml:"move_duration" json:"move_duration"`
	ClickHold          time.Duration `mapstructure:"click_hold" yaml:"click_hold" json:"click_hold"`
	DragDuration       time.Duration `mapstructure:"drag_duration" yaml:"drag_duration" json:"drag_duration"`
	SettleDelay        time.Duration `mapstructure:"settle_delay" yaml:"settle_delay" json:"settle_delay"`
	WaitDuration       time.Duration `mapstructure:"wait_duration" yaml:"wait_duration" json:"wait_duration"`
	KeyDelay           time.Duration `mapstructure:"key_delay" yaml:"key_delay" json:"key_delay"`
	TypeInterval       time.Duration `mapstructure:"type_interval" yaml:"type_interval" json:"type_interval"`
	ScrollAmount       int           `mapstructure:"scroll_amount" yaml:"scroll_amount" json:"scroll_amount"`
	PasteTyping        bool          `mapstructure:"paste_typing" yaml:"paste_typing" json:"paste_typing"`
	SelectAllKeys      string        `mapstructure:"select_all_keys" yaml:"select_all_keys" json:"select_all_keys"`
	PasteKeys          string        `mapstructure:"paste_keys" yaml:"paste_keys" json:"paste_keys"`
	ShowDesktopKeys    string        `mapstructure:"show_desktop_keys" yaml:"show_desktop_keys" json:"show_desktop_keys"`
	LogicalWidth       int           `mapstructure:"logical_width" yaml:"logical_width" json:"logical_width"`
	LogicalHeight      int           `mapstructure:"logical_height" yaml:"logical_height" json:"logical_height"`
	ScreenshotCommands []string      `mapstructure:"screenshot_commands" yaml:"screenshot_commands" json:"screenshot_commands"`
}

// SessionConfig controls where run artifacts land.
type SessionConfig struct {
	Root string `mapstructure:"root" yaml:"root" json:"root"`
}

// BatchConfig paces batch runs.
type BatchConfig struct {
	StartDelay time.Duration `mapstructure:"start_delay" yaml:"start_delay" json:"start_delay"`
	BlockDelay time.Duration `mapstructure:"block_delay" yaml:"block_delay" json:"block_delay"`
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// This should not happen with defaults, but good to be safe.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "deskpilot")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "magenta")

	// -- Agent --
	v.SetDefault("agent.max_total_steps", 30)
	v.SetDefault("agent.max_action_frequency", 15)
	v.SetDefault("agent.max_same_action", 5)
	v.SetDefault("agent.max_wait", 5)
	v.SetDefault("agent.max_consecutive_errors", 3)
	v.SetDefault("agent.start_delay", "5s")
	v.SetDefault("agent.step_delay", "800ms")

	// -- LLM --
	v.SetDefault("llm.provider", string(ProviderOpenAI))
	v.SetDefault("llm.endpoint", "http://localhost:8000/v1")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "ByteDance-Seed/UI-TARS-1.5-7B")
	v.SetDefault("llm.temperature", 0.0)
	v.SetDefault("llm.max_tokens", 4096)
	v.SetDefault("llm.refine_max_tokens", 2048)
	v.SetDefault("llm.api_timeout", "300s")
	v.SetDefault("llm.retry.max_elapsed", "0s")
	v.SetDefault("llm.retry.max_interval", "10s")

	// -- Desktop --
	v.SetDefault("desktop.move_duration", "200ms")
	v.SetDefault("desktop.click_hold", "100ms")
	v.SetDefault("desktop.drag_duration", "1s")
	v.SetDefault("desktop.settle_delay", "2s")
	v.SetDefault("desktop.wait_duration", "5s")
	v.SetDefault("desktop.key_delay", "100ms")
	v.SetDefault("desktop.type_interval", "10ms")
	v.SetDefault("desktop.scroll_amount", 500)
	v.SetDefault("desktop.paste_typing", runtime.GOOS == "windows")
	v.SetDefault("desktop.logical_width", 0)
	v.SetDefault("desktop.logical_height", 0)
	setPlatformDefaults(v, runtime.GOOS)

	// -- Session --
	v.SetDefault("session.root", "session")

	// -- Batch --
	v.SetDefault("batch.start_delay", "2s")
	v.SetDefault("batch.block_delay", "2s")
}

// setPlatformDefaults fills in key combos and screenshot tools that differ
// between operating systems.
func setPlatformDefaults(v *viper.Viper, goos string) {
	switch goos {
	case "darwin":
		v.SetDefault("desktop.select_all_keys", "cmd a")
		v.SetDefault("desktop.paste_keys", "cmd v")
		v.SetDefault("desktop.show_desktop_keys", "cmd f3")
		v.SetDefault("desktop.screenshot_commands", []string{
			"screencapture -x -t png {path}",
		})
	default:
		v.SetDefault("desktop.select_all_keys", "ctrl a")
		v.SetDefault("desktop.paste_keys", "ctrl v")
		v.SetDefault("desktop.show_desktop_keys", "super d")
		v.SetDefault("desktop.screenshot_commands", []string{
			"gnome-screenshot -f {path}",
			"scrot -o {path}",
			"import -window root {path}",
		})
	}
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config

	// Bind environment variables for sensitive data
	_ = v.BindEnv("llm.api_key", "DESKPILOT_LLM_API_KEY")

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Gemini clients are usually configured through the SDK's own variable.
	if cfg.LLMCfg.Provider == ProviderGemini && cfg.LLMCfg.APIKey == "" {
		cfg.LLMCfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if err := c.AgentCfg.Validate(); err != nil {
		return fmt.Errorf("agent configuration invalid: %w", err)
	}
	if err := c.LLMCfg.Validate(); err != nil {
		return fmt.Errorf("llm configuration invalid: %w", err)
	}
	if err := c.DesktopCfg.Validate(); err != nil {
		return fmt.Errorf("desktop configuration invalid: %w", err)
	}
	if c.SessionCfg.Root == "" {
		return fmt.Errorf("session.root must not be empty")
	}
	if c.BatchCfg.StartDelay < 0 || c.BatchCfg.BlockDelay < 0 {
		return fmt.Errorf("batch delays must not be negative")
	}
	return nil
}

// Validate checks the loop guard thresholds and pacing.
func (a *AgentConfig) Validate() error {
	if a.MaxTotalSteps <= 0 {
		return fmt.Errorf("max_total_steps must be a positive integer")
	}
	if a.MaxActionFrequency <= 0 {
		return fmt.Errorf("max_action_frequency must be a positive integer")
	}
	if a.MaxSameAction <= 0 {
		return fmt.Errorf("max_same_action must be a positive integer")
	}
	if a.MaxWait <= 0 {
		return fmt.Errorf("max_wait must be a positive integer")
	}
	if a.MaxConsecutiveErrors <= 0 {
		return fmt.Errorf("max_consecutive_errors must be a positive integer")
	}
	if a.StartDelay < 0 || a.StepDelay < 0 {
		return fmt.Errorf("start_delay and step_delay must not be negative")
	}
	return nil
}

// Validate checks the model client settings.
func (l *LLMConfig) Validate() error {
	switch l.Provider {
	case ProviderOpenAI, ProviderGemini, ProviderOllama:
	default:
		return fmt.Errorf("unknown provider '%s'", l.Provider)
	}
	if l.Model == "" {
		return fmt.Errorf("model is required")
	}
	if l.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be a positive integer")
	}
	if l.APITimeout <= 0 {
		return fmt.Errorf("api_timeout must be a positive duration")
	}
	if l.Retry.MaxElapsed < 0 {
		return fmt.Errorf("retry.max_elapsed must not be negative")
	}
	if l.Retry.MaxElapsed > 0 && l.Retry.MaxInterval <= 0 {
		return fmt.Errorf("retry.max_interval must be positive when retries are enabled")
	}
	return nil
}

// Validate checks the executor timings and screenshot geometry.
func (d *DesktopConfig) Validate() error {
	for name, dur := range map[string]time.Duration{
		"move_duration": d.MoveDuration,
		"click_hold":    d.ClickHold,
		"drag_duration": d.DragDuration,
		"settle_delay":  d.SettleDelay,
		"wait_duration": d.WaitDuration,
		"key_delay":     d.KeyDelay,
		"type_interval": d.TypeInterval,
	} {
		if dur < 0 {
			return fmt.Errorf("%s must not be negative", name)
		}
	}
	if d.ScrollAmount <= 0 {
		return fmt.Errorf("scroll_amount must be a positive integer")
	}
	if d.LogicalWidth < 0 || d.LogicalHeight < 0 {
		return fmt.Errorf("logical_width and logical_height must not be negative")
	}
	if (d.LogicalWidth == 0) != (d.LogicalHeight == 0) {
		return fmt.Errorf("logical_width and logical_height must be set together")
	}
	return nil
}
