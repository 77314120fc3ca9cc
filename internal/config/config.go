// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Interface defines the contract for accessing application configuration.
// This allows for dependency injection and mocking in tests.
type Interface interface {
	Logger() LoggerConfig
	Browser() BrowserConfig
	Wait() WaitConfig
	Target() TargetConfig
	Scenario() ScenarioConfig
	Report() ReportConfig

	// Setters used by command line overrides.
	SetBrowserHeadless(bool)
	SetTargetURL(string)
	SetScenarioSecretText(string)
	SetReportFormats([]string)
}

// Config holds the entire application configuration. Fields are exported so
// viper can unmarshal into them; callers go through the Interface getters.
type Config struct {
	LoggerCfg   LoggerConfig   `mapstructure:"logger" yaml:"logger"`
	BrowserCfg  BrowserConfig  `mapstructure:"browser" yaml:"browser"`
	WaitCfg     WaitConfig     `mapstructure:"wait" yaml:"wait"`
	TargetCfg   TargetConfig   `mapstructure:"target" yaml:"target"`
	ScenarioCfg ScenarioConfig `mapstructure:"scenario" yaml:"scenario"`
	ReportCfg   ReportConfig   `mapstructure:"report" yaml:"report"`
}

var _ Interface = (*Config)(nil)

// --- Interface Method Implementations (Getters) ---

func (c *Config) Logger() LoggerConfig     { return c.LoggerCfg }
func (c *Config) Browser() BrowserConfig   { return c.BrowserCfg }
func (c *Config) Wait() WaitConfig         { return c.WaitCfg }
func (c *Config) Target() TargetConfig     { return c.TargetCfg }
func (c *Config) Scenario() ScenarioConfig { return c.ScenarioCfg }
func (c *Config) Report() ReportConfig     { return c.ReportCfg }

// --- Interface Method Implementations (Setters) ---

func (c *Config) SetBrowserHeadless(b bool)          { c.BrowserCfg.Headless = b }
func (c *Config) SetTargetURL(u string)              { c.TargetCfg.URL = u }
func (c *Config) SetScenarioSecretText(s string)     { c.ScenarioCfg.SecretText = s }
func (c *Config) SetReportFormats(formats []string) { c.ReportCfg.Formats = formats }

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	// LogDir receives one timestamped log file per run. Empty disables the file sink.
	LogDir     string      `mapstructure:"log_dir" yaml:"log_dir"`
	MaxSize    int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge     int         `mapstructure:"max_age" yaml:"max_age"`
	Compress   bool        `mapstructure:"compress" yaml:"compress"`
	Colors     ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// BrowserConfig holds the fixed environment options applied to every session.
type BrowserConfig struct {
	Headless             bool   `mapstructure:"headless" yaml:"headless"`
	StartMaximized       bool   `mapstructure:"start_maximized" yaml:"start_maximized"`
	Incognito            bool   `mapstructure:"incognito" yaml:"incognito"`
	DisableNotifications bool   `mapstructure:"disable_notifications" yaml:"disable_notifications"`
	DisableExtensions    bool   `mapstructure:"disable_extensions" yaml:"disable_extensions"`
	NoSandbox            bool   `mapstructure:"no_sandbox" yaml:"no_sandbox"`
	ExecPath             string `mapstructure:"exec_path" yaml:"exec_path"`
	// ImplicitWait bounds every single driver call that has no tighter deadline.
	ImplicitWait time.Duration  `mapstructure:"implicit_wait" yaml:"implicit_wait"`
	Args         []string       `mapstructure:"args" yaml:"args"`
	Viewport     map[string]int `mapstructure:"viewport" yaml:"viewport"`
	Persona      PersonaConfig  `mapstructure:"persona" yaml:"persona"`
}

// PersonaConfig overrides what the page sees of the browser. Empty fields
// keep Chrome's own value.
type PersonaConfig struct {
	UserAgent string `mapstructure:"user_agent" yaml:"user_agent"`
	Locale    string `mapstructure:"locale" yaml:"locale"`
	Timezone  string `mapstructure:"timezone" yaml:"timezone"`
	// HideWebdriver removes navigator.webdriver before any page script runs.
	HideWebdriver bool `mapstructure:"hide_webdriver" yaml:"hide_webdriver"`
}

// WaitConfig tunes the element polling helpers.
type WaitConfig struct {
	Timeout           time.Duration `mapstructure:"timeout" yaml:"timeout"`
	PollInterval      time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
}

// TargetConfig points at the page under test.
type TargetConfig struct {
	URL string `mapstructure:"url" yaml:"url"`
}

// ScenarioConfig holds the round trip input and the UI settle delays.
type ScenarioConfig struct {
	SecretText   string        `mapstructure:"secret_text" yaml:"secret_text"`
	ToggleSettle time.Duration `mapstructure:"toggle_settle" yaml:"toggle_settle"`
	PickSettle   time.Duration `mapstructure:"pick_settle" yaml:"pick_settle"`
}

// ReportConfig controls where run artifacts land and how the report is labelled.
type ReportConfig struct {
	Dir           string   `mapstructure:"dir" yaml:"dir"`
	ScreenshotDir string   `mapstructure:"screenshot_dir" yaml:"screenshot_dir"`
	Formats       []string `mapstructure:"formats" yaml:"formats"`
	Thumbnails    bool     `mapstructure:"thumbnails" yaml:"thumbnails"`
	ProjectName   string   `mapstructure:"project_name" yaml:"project_name"`
	Module        string   `mapstructure:"module" yaml:"module"`
	Tester        string   `mapstructure:"tester" yaml:"tester"`
	Browser       string   `mapstructure:"browser" yaml:"browser"`
}

// DefaultTargetURL is the public deployment of the emoji encoder.
const DefaultTargetURL = "https://emojiencoder.netlify.app/"

// DefaultSecretText is the round trip input used when none is configured.
const DefaultSecretText = "This is my secret text."

// NewDefaultConfig creates a new configuration populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)
	var cfg Config
	// Defaults are static; a failure here is a programming error.
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("config: failed to unmarshal defaults: %v", err))
	}
	return &cfg
}

// SetDefaults registers every default value on the given viper instance.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "emojicheck")
	v.SetDefault("logger.log_dir", "reports/logs")
	v.SetDefault("logger.max_size", 20)
	v.SetDefault("logger.max_backups", 10)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", false)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "magenta")

	// -- Browser --
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.start_maximized", true)
	v.SetDefault("browser.incognito", true)
	v.SetDefault("browser.disable_notifications", true)
	v.SetDefault("browser.disable_extensions", true)
	v.SetDefault("browser.no_sandbox", false)
	v.SetDefault("browser.implicit_wait", "10s")
	v.SetDefault("browser.viewport", map[string]int{"width": 1920, "height": 1080})
	v.SetDefault("browser.persona.user_agent", "")
	v.SetDefault("browser.persona.locale", "en-US")
	v.SetDefault("browser.persona.timezone", "")
	v.SetDefault("browser.persona.hide_webdriver", true)

	// -- Wait --
	v.SetDefault("wait.timeout", "10s")
	v.SetDefault("wait.poll_interval", "100ms")
	v.SetDefault("wait.navigation_timeout", "30s")

	// -- Target --
	v.SetDefault("target.url", DefaultTargetURL)

	// -- Scenario --
	v.SetDefault("scenario.secret_text", DefaultSecretText)
	v.SetDefault("scenario.toggle_settle", "1s")
	v.SetDefault("scenario.pick_settle", "500ms")

	// -- Report --
	v.SetDefault("report.dir", "reports")
	v.SetDefault("report.screenshot_dir", "reports/screenshots")
	v.SetDefault("report.formats", []string{"html"})
	v.SetDefault("report.thumbnails", true)
	v.SetDefault("report.project_name", "Emoji Encoder Automation")
	v.SetDefault("report.module", "Encode/Decode Validation")
	v.SetDefault("report.tester", "Automation Framework")
	v.SetDefault("report.browser", "Chrome (chromedp)")
}

// NewConfigFromViper unmarshals a fully loaded viper instance and validates the result.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// expandPaths resolves a leading "~" in every filesystem path.
func (c *Config) expandPaths() error {
	paths := []*string{
		&c.LoggerCfg.LogDir,
		&c.ReportCfg.Dir,
		&c.ReportCfg.ScreenshotDir,
		&c.BrowserCfg.ExecPath,
	}
	for _, p := range paths {
		if *p == "" {
			continue
		}
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return fmt.Errorf("failed to expand path %q: %w", *p, err)
		}
		*p = expanded
	}
	return nil
}

// supportedFormats lists the report renderers available in internal/reporting.
var supportedFormats = map[string]bool{"html": true, "junit": true, "json": true}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.TargetCfg.URL == "" {
		return errors.New("target.url is a required configuration field")
	}
	if strings.TrimSpace(c.ScenarioCfg.SecretText) == "" {
		return errors.New("scenario.secret_text must not be blank")
	}
	if c.WaitCfg.Timeout <= 0 {
		return errors.New("wait.timeout must be positive")
	}
	if c.WaitCfg.PollInterval <= 0 {
		return errors.New("wait.poll_interval must be positive")
	}
	if c.WaitCfg.PollInterval > c.WaitCfg.Timeout {
		return errors.New("wait.poll_interval must not exceed wait.timeout")
	}
	if c.BrowserCfg.ImplicitWait < 0 {
		return errors.New("browser.implicit_wait must not be negative")
	}
	if c.ScenarioCfg.ToggleSettle < 0 || c.ScenarioCfg.PickSettle < 0 {
		return errors.New("scenario settle delays must not be negative")
	}
	if c.ReportCfg.Dir == "" {
		return errors.New("report.dir is a required configuration field")
	}
	for _, f := range c.ReportCfg.Formats {
		if !supportedFormats[strings.ToLower(f)] {
			return fmt.Errorf("report.formats contains unsupported format %q", f)
		}
	}
	return nil
}
