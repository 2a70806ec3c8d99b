// Package pwdriver drives Chromium through Playwright.
package pwdriver

import (
	"context"
	"errors"
	"fmt"

	"github.com/playwright-community/playwright-go"

	"github.com/padaiyal/webdriver-exercises/internal/browser"
	"github.com/padaiyal/webdriver-exercises/internal/config"
)

const submitJS = `el => {
	const form = el.form || el.closest("form");
	if (!form) {
		throw new Error("element is not in a form");
	}
	form.requestSubmit ? form.requestSubmit() : form.submit();
}`

const screenJS = `() => ({width: screen.availWidth, height: screen.availHeight})`

func LaunchOptions(opts config.Browser) playwright.BrowserTypeLaunchOptions {
	args := make([]string, 0, len(opts.Flags()))
	for _, flag := range opts.Flags() {
		if flag == "headless" {
			continue
		}
		args = append(args, "--"+flag)
	}
	launch := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args:     args,
	}
	if opts.BinaryPath != "" {
		launch.ExecutablePath = playwright.String(opts.BinaryPath)
	}
	return launch
}

// Launch starts the Playwright driver and a Chromium browser with one page.
// The driver and browsers have to be installed beforehand.
func Launch(_ context.Context, opts config.Browser) (browser.Driver, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("error starting playwright: %w", err)
	}
	b, err := pw.Chromium.Launch(LaunchOptions(opts))
	if err != nil {
		return nil, errors.Join(fmt.Errorf("error launching chromium: %w", err), pw.Stop())
	}
	// Without a fixed viewport the page follows the window size.
	page, err := b.NewPage(playwright.BrowserNewPageOptions{NoViewport: playwright.Bool(opts.ShouldMaximize())})
	if err != nil {
		return nil, errors.Join(fmt.Errorf("error opening page: %w", err), b.Close(), pw.Stop())
	}
	return &Driver{pw: pw, browser: b, page: page}, nil
}

type Driver struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	page    playwright.Page
}

func (d *Driver) Navigate(_ context.Context, url string) error {
	_, err := d.page.Goto(url)
	return err
}

func (d *Driver) Title(_ context.Context) (string, error) {
	return d.page.Title()
}

func (d *Driver) CurrentURL(_ context.Context) (string, error) {
	return d.page.URL(), nil
}

// Locator returns the Playwright selector engine string for sel.
func Locator(sel browser.Selector) (string, error) {
	if sel.IsCSS() {
		return "css=" + sel.Value, nil
	}
	xpath, err := sel.XPath()
	if err != nil {
		return "", err
	}
	return "xpath=" + xpath, nil
}

func (d *Driver) FindElement(ctx context.Context, sel browser.Selector) (browser.Element, error) {
	elements, err := d.FindElements(ctx, sel)
	if err != nil {
		return nil, err
	}
	if len(elements) == 0 {
		return nil, &browser.NotFoundError{Selector: sel}
	}
	return elements[0], nil
}

func (d *Driver) FindElements(_ context.Context, sel browser.Selector) ([]browser.Element, error) {
	query, err := Locator(sel)
	if err != nil {
		return nil, err
	}
	locator := d.page.Locator(query)
	count, err := locator.Count()
	if err != nil {
		return nil, err
	}
	elements := make([]browser.Element, 0, count)
	for i := 0; i < count; i++ {
		elements = append(elements, &Element{locator: locator.Nth(i)})
	}
	return elements, nil
}

func (d *Driver) Back(_ context.Context) error {
	_, err := d.page.GoBack()
	return err
}

func (d *Driver) Forward(_ context.Context) error {
	_, err := d.page.GoForward()
	return err
}

func (d *Driver) Refresh(_ context.Context) error {
	_, err := d.page.Reload()
	return err
}

// MaximizeWindow resizes the viewport to the available screen area.
func (d *Driver) MaximizeWindow(_ context.Context) error {
	screen, err := d.page.Evaluate(screenJS)
	if err != nil {
		return err
	}
	size, ok := screen.(map[string]interface{})
	if !ok {
		return fmt.Errorf("unexpected screen size %v", screen)
	}
	width, height := number(size["width"]), number(size["height"])
	if width <= 0 || height <= 0 {
		return fmt.Errorf("unexpected screen size %v", screen)
	}
	return d.page.SetViewportSize(width, height)
}

func number(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

func (d *Driver) BrowserVersion(_ context.Context) (string, error) {
	return d.browser.Version(), nil
}

func (d *Driver) Screenshot(_ context.Context) ([]byte, error) {
	return d.page.Screenshot(playwright.PageScreenshotOptions{Type: playwright.ScreenshotTypePng})
}

func (d *Driver) Quit() error {
	var errs []error
	if err := d.browser.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing browser: %w", err))
	}
	if err := d.pw.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("error stopping playwright: %w", err))
	}
	return errors.Join(errs...)
}

type Element struct {
	locator playwright.Locator
}

// detached lists the Playwright messages for an element that left the DOM
// between resolving the locator and acting on it.
var detached = []string{
	"Element is not attached to the DOM",
	"element is not attached to the DOM",
}

func elementError(err error) error {
	return browser.StaleIf(err, detached...)
}

func (e *Element) SendKeys(_ context.Context, text string) error {
	return elementError(e.locator.PressSequentially(text))
}

func (e *Element) Click(_ context.Context) error {
	return elementError(e.locator.Click())
}

func (e *Element) Submit(_ context.Context) error {
	_, err := e.locator.Evaluate(submitJS, nil)
	return elementError(err)
}

func (e *Element) IsDisplayed(_ context.Context) (bool, error) {
	visible, err := e.locator.IsVisible()
	return visible, elementError(err)
}

func (e *Element) IsEnabled(_ context.Context) (bool, error) {
	enabled, err := e.locator.IsEnabled()
	return enabled, elementError(err)
}

func (e *Element) Text(_ context.Context) (string, error) {
	text, err := e.locator.InnerText()
	return text, elementError(err)
}
