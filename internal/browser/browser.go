// Package browser describes the automation capability the harness drives.
// Backends live in the sub-packages; tests use browsertest.
package browser

import (
	"context"

	"github.com/padaiyal/webdriver-exercises/internal/config"
)

// Driver is one live browser automation handle.
type Driver interface {
	Navigate(ctx context.Context, url string) error
	Title(ctx context.Context) (string, error)
	CurrentURL(ctx context.Context) (string, error)

	// FindElement fails with ErrNoSuchElement when nothing matches.
	FindElement(ctx context.Context, sel Selector) (Element, error)
	// FindElements returns an empty slice, not an error, when nothing matches.
	FindElements(ctx context.Context, sel Selector) ([]Element, error)

	Back(ctx context.Context) error
	Forward(ctx context.Context) error
	Refresh(ctx context.Context) error

	MaximizeWindow(ctx context.Context) error
	BrowserVersion(ctx context.Context) (string, error)

	// Quit terminates the browser process. Callers go through session.Close,
	// which guarantees a single call.
	Quit() error
}

type Element interface {
	SendKeys(ctx context.Context, text string) error
	Click(ctx context.Context) error
	Submit(ctx context.Context) error
	IsDisplayed(ctx context.Context) (bool, error)
	IsEnabled(ctx context.Context) (bool, error)
	Text(ctx context.Context) (string, error)
}

// Screenshotter is implemented by drivers able to capture the viewport as PNG.
// It is kept apart from Driver so callers have to check for it.
type Screenshotter interface {
	Screenshot(ctx context.Context) ([]byte, error)
}

// Launcher starts a browser for one backend.
type Launcher interface {
	Launch(ctx context.Context, opts config.Browser) (Driver, error)
}

type LauncherFunc func(ctx context.Context, opts config.Browser) (Driver, error)

func (f LauncherFunc) Launch(ctx context.Context, opts config.Browser) (Driver, error) {
	return f(ctx, opts)
}
