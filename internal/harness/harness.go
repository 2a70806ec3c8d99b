// Package harness ties a browser session and a failure watcher to the
// lifetime of a single test.
//
// Every test gets its own session. When the test ends, the watcher sees the
// outcome first, so a failing test is photographed while its browser is still
// open. The session is closed afterwards on every exit path.
package harness

import (
	"context"
	"fmt"
	"path"
	"sync"

	"go.uber.org/zap"

	"github.com/padaiyal/webdriver-exercises/internal/browser"
	"github.com/padaiyal/webdriver-exercises/internal/browser/cdpdriver"
	"github.com/padaiyal/webdriver-exercises/internal/browser/pwdriver"
	"github.com/padaiyal/webdriver-exercises/internal/browser/roddriver"
	"github.com/padaiyal/webdriver-exercises/internal/browser/seleniumdriver"
	"github.com/padaiyal/webdriver-exercises/internal/config"
	"github.com/padaiyal/webdriver-exercises/internal/session"
	"github.com/padaiyal/webdriver-exercises/internal/wait"
	"github.com/padaiyal/webdriver-exercises/internal/watcher"
)

// TB is the part of testing.TB the harness needs.
type TB interface {
	Name() string
	Helper()
	Cleanup(func())
	Failed() bool
	Skipped() bool
	Fatalf(format string, args ...any)
	Logf(format string, args ...any)
}

// Env is shared by all tests of a run.
type Env struct {
	Config config.Config
	Logger *zap.Logger

	launchers map[string]browser.Launcher
}

func NewEnv(cfg config.Config, logger *zap.Logger) *Env {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Env{
		Config: cfg,
		Logger: logger,
		launchers: map[string]browser.Launcher{
			config.BackendSelenium:   browser.LauncherFunc(seleniumdriver.Launch),
			config.BackendRod:        browser.LauncherFunc(roddriver.Launch),
			config.BackendChromedp:   browser.LauncherFunc(cdpdriver.Launch),
			config.BackendPlaywright: browser.LauncherFunc(pwdriver.Launch),
		},
	}
}

// Use replaces the launcher of backend.
func (e *Env) Use(backend string, l browser.Launcher) {
	e.launchers[backend] = l
}

// Launcher returns the launcher of the configured backend.
func (e *Env) Launcher() (browser.Launcher, error) {
	backend := e.Config.Browser.Backend
	if backend == "" {
		backend = config.DefaultBrowser().Backend
	}
	l, ok := e.launchers[backend]
	if !ok {
		return nil, fmt.Errorf("unsupported browser backend %q", backend)
	}
	return l, nil
}

// Case is one running test with its own browser session.
type Case struct {
	t      TB
	env    *Env
	ctx    context.Context
	cancel context.CancelFunc
	logger *zap.Logger

	session *session.Session
	watcher *watcher.Watcher
	waiter  *wait.Waiter

	mu    sync.Mutex
	cause error
	once  sync.Once
}

// Begin opens a session for t and arms a watcher. It fails t when the browser
// cannot be started, in which case it returns nil. The case ends through
// t.Cleanup if End is not called before.
func Begin(t TB, env *Env) *Case {
	t.Helper()
	name := TestName(t)
	logger := env.Logger.With(zap.String("test", name))

	launcher, err := env.Launcher()
	if err != nil {
		t.Fatalf("Error getting driver: %s", err)
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	s, err := session.Open(ctx, launcher, env.Config.Browser, logger)
	if err != nil {
		cancel()
		t.Fatalf("Error getting driver: %s", err)
		return nil
	}

	c := &Case{
		t:       t,
		env:     env,
		ctx:     ctx,
		cancel:  cancel,
		logger:  logger,
		session: s,
		watcher: watcher.New(env.Config.Artifacts.ScreenshotDir, logger),
		waiter: wait.New(s.Driver(), env.Config.Wait.Timeout,
			wait.WithInterval(env.Config.Wait.Interval),
			wait.WithLogger(logger)),
	}
	t.Cleanup(c.End)
	return c
}

// TestName is the last element of t.Name(), so suite methods and subtests are
// named after the function that ran.
func TestName(t TB) string {
	return path.Base(t.Name())
}

func (c *Case) Context() context.Context {
	return c.ctx
}

func (c *Case) Session() *session.Session {
	return c.session
}

func (c *Case) Driver() browser.Driver {
	return c.session.Driver()
}

func (c *Case) Wait() *wait.Waiter {
	return c.waiter
}

func (c *Case) Logger() *zap.Logger {
	return c.logger
}

func (c *Case) Config() config.Config {
	return c.env.Config
}

// Watcher is exposed for inspection; End feeds it.
func (c *Case) Watcher() *watcher.Watcher {
	return c.watcher
}

// Require fails the test when err is not nil and records err as the cause
// reported to the watcher.
func (c *Case) Require(err error, step string) {
	c.t.Helper()
	if err == nil {
		return
	}
	c.fail(err)
	c.t.Fatalf("%s: %s", step, err)
}

func (c *Case) fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cause == nil {
		c.cause = err
	}
}

func (c *Case) outcome() (watcher.Outcome, error) {
	c.mu.Lock()
	cause := c.cause
	c.mu.Unlock()
	switch {
	case c.t.Failed() || cause != nil:
		return watcher.Failed, cause
	case c.t.Skipped():
		return watcher.Aborted, nil
	default:
		return watcher.Passed, nil
	}
}

// End reports the outcome to the watcher and closes the session. Only the
// first call has an effect.
func (c *Case) End() {
	c.once.Do(func() {
		defer c.cancel()
		outcome, cause := c.outcome()

		// A nil source makes the watcher log that screenshots are unsupported.
		var source browser.Screenshotter
		if shooter, ok := c.session.Screenshotter(); ok {
			source = shooter
		}
		report := watcher.Report{TestName: TestName(c.t), Outcome: outcome, Cause: cause}
		artifact, err := c.watcher.Observe(c.ctx, report, source)
		if err != nil {
			c.t.Logf("Could not save screenshot: %s", err)
		} else if artifact != nil {
			c.t.Logf("Screenshot saved: %s", artifact.Path)
		}

		if err := c.session.Close(); err != nil {
			c.t.Logf("Error closing browser session: %s", err)
		}
	})
}

// Run executes body with a fresh case. A panic in body fails the case, so the
// screenshot is taken before the panic continues.
func Run(t TB, env *Env, body func(c *Case)) {
	t.Helper()
	c := Begin(t, env)
	if c == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			c.fail(fmt.Errorf("panic: %v", r))
			c.End()
			panic(r)
		}
		c.End()
	}()
	body(c)
}
