// Package navigate holds the navigation patterns the exercises share: ordered
// fallback chains and the back/forward/refresh history protocol.
package navigate

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/padaiyal/webdriver-exercises/internal/browser"
	"github.com/padaiyal/webdriver-exercises/internal/wait"
)

// Attempt is one tier of a fallback chain.
type Attempt struct {
	Name string
	Try  func(ctx context.Context) error
}

// FirstOf runs attempts in order until one succeeds and returns its name.
// When every attempt fails the errors are joined in attempt order.
func FirstOf(ctx context.Context, logger *zap.Logger, attempts ...Attempt) (string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var errs []error
	for i, attempt := range attempts {
		err := attempt.Try(ctx)
		if err == nil {
			if i > 0 {
				logger.Info("fallback succeeded", zap.String("attempt", attempt.Name), zap.Int("tier", i+1))
			}
			return attempt.Name, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		logger.Info("attempt failed, trying next", zap.String("attempt", attempt.Name), zap.Error(err))
		errs = append(errs, fmt.Errorf("%s: %w", attempt.Name, err))
	}
	if len(errs) == 0 {
		return "", errors.New("no navigation attempts given")
	}
	return "", errors.Join(errs...)
}

// ClickLink waits for sel to become clickable and clicks it.
func ClickLink(w *wait.Waiter, sel browser.Selector) Attempt {
	return Attempt{
		Name: fmt.Sprintf("click %s", sel),
		Try: func(ctx context.Context) error {
			link, err := wait.Until(ctx, w, wait.ElementClickable(sel))
			if err != nil {
				return err
			}
			return link.Click(ctx)
		},
	}
}

// Direct loads url without interacting with the page. It is meant as the last
// tier of a chain.
func Direct(d browser.Driver, url string) Attempt {
	return Attempt{
		Name: fmt.Sprintf("open %s", url),
		Try: func(ctx context.Context) error {
			return d.Navigate(ctx, url)
		},
	}
}
