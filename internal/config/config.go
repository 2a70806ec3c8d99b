package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/tidwall/sjson"
	"gopkg.in/yaml.v3"
)

const (
	BackendSelenium   = "selenium"
	BackendRod        = "rod"
	BackendChromedp   = "chromedp"
	BackendPlaywright = "playwright"
)

var SupportedBackends = []string{BackendSelenium, BackendRod, BackendChromedp, BackendPlaywright}

// Browser holds the options a session is opened with. Absent keys keep the
// values from DefaultBrowser; the switches that default to on are pointers so
// an explicit false can be told apart from an absent key.
type Browser struct {
	Backend            string   `yaml:"backend" json:"backend"`
	Headless           bool     `yaml:"headless" json:"headless"`
	Maximized          *bool    `yaml:"maximized" json:"maximized"`
	NoSandbox          *bool    `yaml:"no_sandbox" json:"no_sandbox"`
	DisableGPU         *bool    `yaml:"disable_gpu" json:"disable_gpu"`
	DisableDevShmUsage *bool    `yaml:"disable_dev_shm_usage" json:"disable_dev_shm_usage"`
	ExtraArgs          []string `yaml:"extra_args" json:"extra_args"`
	BinaryPath         string   `yaml:"binary_path" json:"binary_path"`
	DriverPath         string   `yaml:"driver_path" json:"driver_path"`
	DriverPort         int      `yaml:"driver_port" json:"driver_port"`
}

type Wait struct {
	Timeout  time.Duration `yaml:"timeout" json:"timeout"`
	Interval time.Duration `yaml:"interval" json:"interval"`
}

type Artifacts struct {
	ScreenshotDir string `yaml:"screenshot_dir" json:"screenshot_dir"`
}

type Log struct {
	Level       string `yaml:"level" json:"level"`
	Development bool   `yaml:"development" json:"development"`
}

type Config struct {
	BaseURL   string    `yaml:"base_url" json:"base_url"`
	Browser   Browser   `yaml:"browser" json:"browser"`
	Wait      Wait      `yaml:"wait" json:"wait"`
	Artifacts Artifacts `yaml:"artifacts" json:"artifacts"`
	Log       Log       `yaml:"log" json:"log"`
}

func DefaultBrowser() Browser {
	return Browser{
		Backend:            BackendSelenium,
		Headless:           false,
		Maximized:          Bool(true),
		NoSandbox:          Bool(true),
		DisableGPU:         Bool(true),
		DisableDevShmUsage: Bool(true),
		DriverPath:         "chromedriver",
	}
}

func Bool(v bool) *bool {
	return &v
}

func enabled(v *bool) bool {
	return v != nil && *v
}

// WithDefaults fills every absent key from DefaultBrowser.
func (b Browser) WithDefaults() Browser {
	defaults := DefaultBrowser()
	if b.Backend == "" {
		b.Backend = defaults.Backend
	}
	if b.Maximized == nil {
		b.Maximized = defaults.Maximized
	}
	if b.NoSandbox == nil {
		b.NoSandbox = defaults.NoSandbox
	}
	if b.DisableGPU == nil {
		b.DisableGPU = defaults.DisableGPU
	}
	if b.DisableDevShmUsage == nil {
		b.DisableDevShmUsage = defaults.DisableDevShmUsage
	}
	if b.DriverPath == "" {
		b.DriverPath = defaults.DriverPath
	}
	return b
}

// ShouldMaximize reports whether the window is maximized after launch. A
// headless browser has no window to maximize.
func (b Browser) ShouldMaximize() bool {
	return enabled(b.WithDefaults().Maximized) && !b.Headless
}

func Default() Config {
	return Config{
		BaseURL: "https://www.google.com",
		Browser: DefaultBrowser(),
		Wait: Wait{
			Timeout:  10 * time.Second,
			Interval: 500 * time.Millisecond,
		},
		Artifacts: Artifacts{ScreenshotDir: filepath.Join("target", "screenshots")},
		Log:       Log{Level: "info"},
	}
}

// Flags returns the chrome command line switches without leading dashes.
// Absent keys take their default.
func (b Browser) Flags() []string {
	b = b.WithDefaults()
	var flags []string
	if b.Headless {
		flags = append(flags, "headless")
	}
	if enabled(b.Maximized) {
		flags = append(flags, "start-maximized")
	}
	if enabled(b.DisableGPU) {
		flags = append(flags, "disable-gpu")
	}
	if enabled(b.NoSandbox) {
		flags = append(flags, "no-sandbox")
	}
	if enabled(b.DisableDevShmUsage) {
		flags = append(flags, "disable-dev-shm-usage")
	}
	for _, arg := range b.ExtraArgs {
		flags = append(flags, strings.TrimLeft(arg, "-"))
	}
	return flags
}

func (c Config) Validate() error {
	supported := false
	for _, backend := range SupportedBackends {
		if c.Browser.Backend == backend {
			supported = true
		}
	}
	if !supported {
		return fmt.Errorf("unsupported backend %q, expected one of %s", c.Browser.Backend, strings.Join(SupportedBackends, ", "))
	}
	if c.Wait.Timeout <= 0 {
		return errors.New("wait.timeout must be positive")
	}
	if c.Wait.Interval <= 0 {
		return errors.New("wait.interval must be positive")
	}
	if c.Artifacts.ScreenshotDir == "" {
		return errors.New("artifacts.screenshot_dir is required")
	}
	return nil
}

// Load builds the configuration from, in order: defaults, the YAML file named
// by HARNESS_CONFIG (harness.yaml when unset, skipped if missing), a .env file
// in the working directory, HARNESS_* environment variables and finally the
// HARNESS_SET overrides.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("error loading .env: %w", err)
	}
	return LoadFrom(os.Getenv)
}

func LoadFrom(getenv func(string) string) (Config, error) {
	cfg := Default()

	path := getenv("HARNESS_CONFIG")
	explicit := path != ""
	if !explicit {
		path = "harness.yaml"
	}
	content, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(content, &cfg); err != nil {
			return Config{}, fmt.Errorf("error parsing %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return Config{}, fmt.Errorf("error reading %s: %w", path, err)
	}

	if err := applyEnv(&cfg, getenv); err != nil {
		return Config{}, err
	}
	if err := ApplyOverrides(&cfg, getenv("HARNESS_SET")); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	if v := getenv("HARNESS_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := getenv("HARNESS_BACKEND"); v != "" {
		cfg.Browser.Backend = v
	}
	if v := getenv("HARNESS_HEADLESS"); v != "" {
		headless, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("HARNESS_HEADLESS: %w", err)
		}
		cfg.Browser.Headless = headless
	}
	if v := getenv("CHROME_DRIVER_PATH"); v != "" {
		cfg.Browser.DriverPath = v
	}
	if v := getenv("CHROME_BROWSER_PATH"); v != "" {
		cfg.Browser.BinaryPath = v
	}
	if v := getenv("HARNESS_SCREENSHOT_DIR"); v != "" {
		cfg.Artifacts.ScreenshotDir = v
	}
	if v := getenv("HARNESS_WAIT_TIMEOUT"); v != "" {
		timeout, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("HARNESS_WAIT_TIMEOUT: %w", err)
		}
		cfg.Wait.Timeout = timeout
	}
	return nil
}

var durationPaths = map[string]bool{
	"wait.timeout":  true,
	"wait.interval": true,
}

// ApplyOverrides applies "path=value" pairs separated by ';' using the json
// tag paths of Config, e.g. "browser.headless=true;wait.timeout=15s".
func ApplyOverrides(cfg *Config, overrides string) error {
	overrides = strings.TrimSpace(overrides)
	if overrides == "" {
		return nil
	}
	doc := "{}"
	for _, pair := range strings.Split(overrides, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		path, raw, ok := strings.Cut(pair, "=")
		if !ok || path == "" {
			return fmt.Errorf("invalid override %q, expected path=value", pair)
		}
		path, raw = strings.TrimSpace(path), strings.TrimSpace(raw)
		value := overrideValue(raw)
		if durationPaths[path] {
			if _, err := time.ParseDuration(raw); err != nil {
				return fmt.Errorf("invalid override %q: %s takes a duration with a unit, e.g. 15s", pair, path)
			}
			value = raw
		}
		var err error
		doc, err = sjson.Set(doc, path, value)
		if err != nil {
			return fmt.Errorf("invalid override %q: %w", pair, err)
		}
	}
	// JSON is a subset of YAML, which lets durations like "15s" decode.
	if err := yaml.Unmarshal([]byte(doc), cfg); err != nil {
		return fmt.Errorf("error applying overrides %s: %w", doc, err)
	}
	return nil
}

func overrideValue(raw string) interface{} {
	if i, err := strconv.Atoi(raw); err == nil {
		return i
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	if strings.HasPrefix(raw, "[") {
		var list []string
		if err := json.Unmarshal([]byte(raw), &list); err == nil {
			return list
		}
	}
	return raw
}
