package seleniumdriver

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tebeka/selenium"

	"github.com/padaiyal/webdriver-exercises/internal/browser"
	"github.com/padaiyal/webdriver-exercises/internal/config"
)

func TestCapabilities(t *testing.T) {
	opts := config.DefaultBrowser()
	opts.Headless = true
	opts.BinaryPath = "/opt/chrome/chrome"
	opts.ExtraArgs = []string{"--lang=en-US"}

	caps := Capabilities(opts)
	assert.Equal(t, "/opt/chrome/chrome", caps.Path)
	assert.Equal(t, []string{
		"--headless",
		"--start-maximized",
		"--disable-gpu",
		"--no-sandbox",
		"--disable-dev-shm-usage",
		"--lang=en-US",
	}, caps.Args)
}

func TestVersion(t *testing.T) {
	tests := []struct {
		name string
		caps selenium.Capabilities
		want string
	}{
		{"w3c", selenium.Capabilities{"browserName": "chrome", "browserVersion": "126.0.6478.126"}, "126.0.6478.126"},
		{"legacy", selenium.Capabilities{"browserName": "chrome", "version": "99.0.4844.51"}, "99.0.4844.51"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			version, err := Version(tt.caps)
			require.NoError(t, err)
			assert.Equal(t, tt.want, version)
		})
	}

	_, err := Version(selenium.Capabilities{"browserName": "chrome"})
	assert.Error(t, err)
}

func TestLookupError(t *testing.T) {
	sel := browser.Name("q")

	notFound := lookupError(sel, fmt.Errorf("find: %w", &selenium.Error{Err: "no such element", Message: "Unable to locate element"}))
	assert.True(t, browser.IsNotFound(notFound))
	var nf *browser.NotFoundError
	require.ErrorAs(t, notFound, &nf)
	assert.Equal(t, sel, nf.Selector)

	stale := &selenium.Error{Err: "stale element reference"}
	assert.Same(t, stale, lookupError(sel, stale))

	other := errors.New("connection refused")
	assert.Equal(t, other, lookupError(sel, other))
}

// lookupWebDriver answers element lookups from fixed results. Any other
// method panics on the nil embedded interface.
type lookupWebDriver struct {
	selenium.WebDriver
	found []selenium.WebElement
	err   error
}

func (w *lookupWebDriver) FindElement(_, _ string) (selenium.WebElement, error) {
	if w.err != nil {
		return nil, w.err
	}
	if len(w.found) == 0 {
		return nil, &selenium.Error{Err: "no such element"}
	}
	return w.found[0], nil
}

func (w *lookupWebDriver) FindElements(_, _ string) ([]selenium.WebElement, error) {
	return w.found, w.err
}

// detachedElement fails every check the way chromedriver does once the node
// has left the document.
type detachedElement struct {
	selenium.WebElement
}

func (detachedElement) IsDisplayed() (bool, error) {
	return false, &selenium.Error{Err: "stale element reference", Message: "element is not attached to the page document"}
}

func (detachedElement) IsEnabled() (bool, error) {
	return false, &selenium.Error{Err: "stale element reference"}
}

func (detachedElement) Click() error {
	return &selenium.Error{Err: "stale element reference"}
}

func TestFindElementsWithoutMatches(t *testing.T) {
	ctx := context.Background()
	sel := browser.XPath("//a[contains(@href, 'selenium.dev')]")
	tests := []struct {
		name string
		wd   *lookupWebDriver
	}{
		{"empty result", &lookupWebDriver{found: []selenium.WebElement{}}},
		{"nil result", &lookupWebDriver{}},
		{"no such element error", &lookupWebDriver{err: &selenium.Error{Err: "no such element"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &Driver{wd: tt.wd}
			elements, err := d.FindElements(ctx, sel)
			require.NoError(t, err)
			assert.NotNil(t, elements)
			assert.Empty(t, elements)
		})
	}

	d := &Driver{wd: &lookupWebDriver{}}
	_, err := d.FindElement(ctx, sel)
	assert.ErrorIs(t, err, browser.ErrNoSuchElement)

	d = &Driver{wd: &lookupWebDriver{err: errors.New("invalid session id")}}
	_, err = d.FindElements(ctx, sel)
	assert.EqualError(t, err, "invalid session id")
}

func TestStaleElementErrors(t *testing.T) {
	ctx := context.Background()
	d := &Driver{wd: &lookupWebDriver{found: []selenium.WebElement{detachedElement{}}}}

	el, err := d.FindElement(ctx, browser.Name("q"))
	require.NoError(t, err)

	_, err = el.IsDisplayed(ctx)
	assert.ErrorIs(t, err, browser.ErrStaleElement)
	_, err = el.IsEnabled(ctx)
	assert.ErrorIs(t, err, browser.ErrStaleElement)
	assert.ErrorIs(t, el.Click(ctx), browser.ErrStaleElement)

	other := &selenium.Error{Err: "element not interactable"}
	assert.Same(t, other, elementError(other))
	assert.NoError(t, elementError(nil))
}

func TestFreePort(t *testing.T) {
	port, err := freePort()
	require.NoError(t, err)
	assert.Greater(t, port, 0)
}
