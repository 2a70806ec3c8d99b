package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envFrom(values map[string]string) func(string) string {
	return func(key string) string {
		return values[key]
	}
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "https://www.google.com", cfg.BaseURL)
	assert.Equal(t, BackendSelenium, cfg.Browser.Backend)
	assert.Equal(t, 10*time.Second, cfg.Wait.Timeout)
	assert.Equal(t, filepath.Join("target", "screenshots"), cfg.Artifacts.ScreenshotDir)
}

func TestBrowserFlags(t *testing.T) {
	b := DefaultBrowser()
	assert.Equal(t, []string{"start-maximized", "disable-gpu", "no-sandbox", "disable-dev-shm-usage"}, b.Flags())

	b.Headless = true
	b.Maximized = Bool(false)
	b.ExtraArgs = []string{"--lang=pt-BR", "incognito"}
	assert.Equal(t, []string{"headless", "disable-gpu", "no-sandbox", "disable-dev-shm-usage", "lang=pt-BR", "incognito"}, b.Flags())
}

func TestWithDefaultsFillsAbsentKeys(t *testing.T) {
	assert.Equal(t, DefaultBrowser(), Browser{}.WithDefaults())
	assert.Equal(t, DefaultBrowser().Flags(), Browser{}.Flags())

	b := Browser{Backend: BackendRod, DisableGPU: Bool(false)}.WithDefaults()
	assert.Equal(t, BackendRod, b.Backend)
	assert.False(t, *b.DisableGPU, "an explicit false is kept")
	assert.True(t, *b.NoSandbox)
	assert.True(t, b.ShouldMaximize())

	b.Headless = true
	assert.False(t, b.ShouldMaximize())
}

func TestLoadFromMissingDefaultFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFrom(envFrom(nil))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFromExplicitMissingFileFails(t *testing.T) {
	_, err := LoadFrom(envFrom(map[string]string{"HARNESS_CONFIG": filepath.Join(t.TempDir(), "nope.yaml")}))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadFromYAMLKeepsAbsentKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "harness.yaml")
	content := `
browser:
  backend: rod
  headless: true
wait:
  timeout: 20s
artifacts:
  screenshot_dir: out/shots
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := LoadFrom(envFrom(map[string]string{"HARNESS_CONFIG": path}))
	require.NoError(t, err)

	assert.Equal(t, BackendRod, cfg.Browser.Backend)
	assert.True(t, cfg.Browser.Headless)
	assert.True(t, *cfg.Browser.Maximized, "absent keys keep their defaults")
	assert.True(t, *cfg.Browser.NoSandbox)
	assert.Equal(t, 20*time.Second, cfg.Wait.Timeout)
	assert.Equal(t, 500*time.Millisecond, cfg.Wait.Interval)
	assert.Equal(t, "out/shots", cfg.Artifacts.ScreenshotDir)
}

func TestLoadFromEnv(t *testing.T) {
	cfg, err := LoadFrom(envFrom(map[string]string{
		"HARNESS_BACKEND":        BackendChromedp,
		"HARNESS_HEADLESS":       "true",
		"CHROME_DRIVER_PATH":     "/opt/chromedriver",
		"CHROME_BROWSER_PATH":    "/opt/chrome",
		"HARNESS_SCREENSHOT_DIR": "shots",
		"HARNESS_WAIT_TIMEOUT":   "3s",
		"HARNESS_BASE_URL":       "http://localhost:3000",
	}))
	require.NoError(t, err)

	assert.Equal(t, BackendChromedp, cfg.Browser.Backend)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, "/opt/chromedriver", cfg.Browser.DriverPath)
	assert.Equal(t, "/opt/chrome", cfg.Browser.BinaryPath)
	assert.Equal(t, "shots", cfg.Artifacts.ScreenshotDir)
	assert.Equal(t, 3*time.Second, cfg.Wait.Timeout)
	assert.Equal(t, "http://localhost:3000", cfg.BaseURL)
}

func TestLoadFromInvalidEnv(t *testing.T) {
	_, err := LoadFrom(envFrom(map[string]string{"HARNESS_HEADLESS": "maybe"}))
	assert.ErrorContains(t, err, "HARNESS_HEADLESS")

	_, err = LoadFrom(envFrom(map[string]string{"HARNESS_WAIT_TIMEOUT": "soon"}))
	assert.ErrorContains(t, err, "HARNESS_WAIT_TIMEOUT")

	_, err = LoadFrom(envFrom(map[string]string{"HARNESS_BACKEND": "netscape"}))
	assert.ErrorContains(t, err, "unsupported backend")
}

func TestApplyOverrides(t *testing.T) {
	cfg := Default()
	err := ApplyOverrides(&cfg, `browser.headless=true; browser.driver_port=9515; wait.timeout=15s; browser.extra_args=["--lang=en"]; log.level=debug`)
	require.NoError(t, err)

	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 9515, cfg.Browser.DriverPort)
	assert.Equal(t, 15*time.Second, cfg.Wait.Timeout)
	assert.Equal(t, []string{"--lang=en"}, cfg.Browser.ExtraArgs)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, *cfg.Browser.Maximized)
	assert.Equal(t, BackendSelenium, cfg.Browser.Backend)
}

func TestApplyOverridesRejectsMalformedPairs(t *testing.T) {
	cfg := Default()
	assert.Error(t, ApplyOverrides(&cfg, "browser.headless"))
	assert.Error(t, ApplyOverrides(&cfg, "=true"))
	assert.NoError(t, ApplyOverrides(&cfg, "  "))
}

func TestApplyOverridesDurationsNeedAUnit(t *testing.T) {
	cfg := Default()
	err := ApplyOverrides(&cfg, "wait.timeout=15")
	assert.ErrorContains(t, err, "wait.timeout takes a duration with a unit")
	assert.Equal(t, 10*time.Second, cfg.Wait.Timeout, "a rejected override leaves the config untouched")

	assert.ErrorContains(t, ApplyOverrides(&cfg, "wait.interval=soon"), "wait.interval")

	require.NoError(t, ApplyOverrides(&cfg, "wait.timeout=15s;wait.interval=250ms"))
	assert.Equal(t, 15*time.Second, cfg.Wait.Timeout)
	assert.Equal(t, 250*time.Millisecond, cfg.Wait.Interval)

	_, err = LoadFrom(envFrom(map[string]string{"HARNESS_SET": "wait.timeout=15"}))
	assert.ErrorContains(t, err, "takes a duration with a unit")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"zero timeout", func(c *Config) { c.Wait.Timeout = 0 }, "wait.timeout"},
		{"zero interval", func(c *Config) { c.Wait.Interval = 0 }, "wait.interval"},
		{"no screenshot dir", func(c *Config) { c.Artifacts.ScreenshotDir = "" }, "screenshot_dir"},
		{"bad backend", func(c *Config) { c.Browser.Backend = "lynx" }, "unsupported backend"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.errMsg)
		})
	}
}
