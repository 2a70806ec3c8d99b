// Package session owns the lifetime of one browser automation handle per test.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/padaiyal/webdriver-exercises/internal/browser"
	"github.com/padaiyal/webdriver-exercises/internal/config"
)

type State int

const (
	StateOpen State = iota
	StateClosed
)

func (s State) String() string {
	if s == StateOpen {
		return "open"
	}
	return "closed"
}

type Session struct {
	id     string
	opts   config.Browser
	driver browser.Driver
	logger *zap.Logger

	mu    sync.Mutex
	state State
}

// Open launches a browser with opts. Absent keys are filled from
// config.DefaultBrowser before the launcher sees them.
func Open(ctx context.Context, launcher browser.Launcher, opts config.Browser, logger *zap.Logger) (*Session, error) {
	opts = opts.WithDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}

	id := uuid.NewString()
	logger = logger.With(zap.String("session_id", id), zap.String("backend", opts.Backend))

	driver, err := launcher.Launch(ctx, opts)
	if err != nil {
		logger.Error("browser failed to launch", zap.Error(err))
		return nil, &browser.SessionStartError{Backend: opts.Backend, Err: err}
	}

	s := &Session{id: id, opts: opts, driver: driver, logger: logger, state: StateOpen}

	if opts.ShouldMaximize() {
		if err := driver.MaximizeWindow(ctx); err != nil {
			// Not fatal: the page is still usable at the default size.
			logger.Warn("could not maximize window", zap.Error(err))
		}
	}

	version, err := driver.BrowserVersion(ctx)
	if err != nil {
		logger.Debug("could not read browser version", zap.Error(err))
	}
	logger.Info("browser session opened", zap.String("browser_version", version), zap.Strings("flags", opts.Flags()))
	return s, nil
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Options() config.Browser {
	return s.opts
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Driver returns the underlying handle. It must not be used after Close.
func (s *Session) Driver() browser.Driver {
	return s.driver
}

// Screenshotter returns the screenshot capability of the driver, if any, as
// long as the session is open.
func (s *Session) Screenshotter() (browser.Screenshotter, bool) {
	if s.State() != StateOpen {
		return nil, false
	}
	shooter, ok := s.driver.(browser.Screenshotter)
	return shooter, ok
}

// Close quits the browser. Only the first call reaches the driver; closing a
// closed session is a no-op.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return nil
	}
	s.state = StateClosed
	if err := s.driver.Quit(); err != nil {
		s.logger.Warn("browser did not quit cleanly", zap.Error(err))
		return fmt.Errorf("error quitting browser session %s: %w", s.id, err)
	}
	s.logger.Info("browser session closed")
	return nil
}
