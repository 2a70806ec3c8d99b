// Package seleniumdriver drives Chrome over the W3C WebDriver protocol through
// a locally started chromedriver.
package seleniumdriver

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/PaesslerAG/jsonpath"
	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"

	"github.com/padaiyal/webdriver-exercises/internal/browser"
	"github.com/padaiyal/webdriver-exercises/internal/config"
)

// webdriver error codes
const (
	noSuchElement = "no such element"
	staleElement  = "stale element reference"
)

// Launch starts chromedriver and opens a Chrome session through it.
func Launch(_ context.Context, opts config.Browser) (browser.Driver, error) {
	port := opts.DriverPort
	if port == 0 {
		var err error
		if port, err = freePort(); err != nil {
			return nil, err
		}
	}

	service, err := selenium.NewChromeDriverService(opts.DriverPath, port)
	if err != nil {
		return nil, fmt.Errorf("error starting chromedriver %s: %w", opts.DriverPath, err)
	}

	caps := selenium.Capabilities{"browserName": "chrome"}
	caps.AddChrome(Capabilities(opts))

	wd, err := selenium.NewRemote(caps, fmt.Sprintf("http://localhost:%d", port))
	if err != nil {
		if stopErr := service.Stop(); stopErr != nil {
			err = errors.Join(err, stopErr)
		}
		return nil, fmt.Errorf("error opening webdriver session: %w", err)
	}
	return &Driver{wd: wd, service: service}, nil
}

// Capabilities maps the session options onto goog:chromeOptions.
func Capabilities(opts config.Browser) chrome.Capabilities {
	args := make([]string, 0, len(opts.Flags()))
	for _, flag := range opts.Flags() {
		args = append(args, "--"+flag)
	}
	return chrome.Capabilities{Path: opts.BinaryPath, Args: args}
}

func freePort() (int, error) {
	l, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		return 0, fmt.Errorf("error picking a port for chromedriver: %w", err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

type Driver struct {
	wd      selenium.WebDriver
	service *selenium.Service
}

func (d *Driver) Navigate(_ context.Context, url string) error {
	return d.wd.Get(url)
}

func (d *Driver) Title(_ context.Context) (string, error) {
	return d.wd.Title()
}

func (d *Driver) CurrentURL(_ context.Context) (string, error) {
	return d.wd.CurrentURL()
}

func (d *Driver) FindElement(_ context.Context, sel browser.Selector) (browser.Element, error) {
	el, err := d.wd.FindElement(string(sel.By), sel.Value)
	if err != nil {
		return nil, lookupError(sel, err)
	}
	return &Element{el: el}, nil
}

func (d *Driver) FindElements(_ context.Context, sel browser.Selector) ([]browser.Element, error) {
	found, err := d.wd.FindElements(string(sel.By), sel.Value)
	if err != nil {
		if browser.IsNotFound(lookupError(sel, err)) {
			return []browser.Element{}, nil
		}
		return nil, err
	}
	elements := make([]browser.Element, 0, len(found))
	for _, el := range found {
		elements = append(elements, &Element{el: el})
	}
	return elements, nil
}

// lookupError turns the webdriver "no such element" error into a
// browser.NotFoundError and leaves every other error untouched.
func lookupError(sel browser.Selector, err error) error {
	var wdErr *selenium.Error
	if errors.As(err, &wdErr) && wdErr.Err == noSuchElement {
		return &browser.NotFoundError{Selector: sel}
	}
	return err
}

// elementError turns the webdriver "stale element reference" error into a
// browser.StaleElementError.
func elementError(err error) error {
	var wdErr *selenium.Error
	if errors.As(err, &wdErr) && wdErr.Err == staleElement {
		return &browser.StaleElementError{Err: err}
	}
	return err
}

func (d *Driver) Back(_ context.Context) error {
	return d.wd.Back()
}

func (d *Driver) Forward(_ context.Context) error {
	return d.wd.Forward()
}

func (d *Driver) Refresh(_ context.Context) error {
	return d.wd.Refresh()
}

func (d *Driver) MaximizeWindow(_ context.Context) error {
	// An empty name is the current window.
	return d.wd.MaximizeWindow("")
}

func (d *Driver) BrowserVersion(_ context.Context) (string, error) {
	caps, err := d.wd.Capabilities()
	if err != nil {
		return "", err
	}
	return Version(caps)
}

// Version reads the browser version from the capabilities the session was
// created with. W3C drivers report browserVersion, legacy ones version.
func Version(caps selenium.Capabilities) (string, error) {
	document := map[string]interface{}(caps)
	for _, path := range []string{"$.browserVersion", "$.version"} {
		value, err := jsonpath.Get(path, document)
		if err != nil {
			continue
		}
		if version, ok := value.(string); ok && version != "" {
			return version, nil
		}
	}
	return "", errors.New("session capabilities carry no browser version")
}

func (d *Driver) Screenshot(_ context.Context) ([]byte, error) {
	return d.wd.Screenshot()
}

// Quit ends the webdriver session and stops chromedriver.
func (d *Driver) Quit() error {
	var errs []error
	if err := d.wd.Quit(); err != nil {
		errs = append(errs, fmt.Errorf("error quitting driver: %w", err))
	}
	if err := d.service.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("error stopping service: %w", err))
	}
	return errors.Join(errs...)
}

type Element struct {
	el selenium.WebElement
}

func (e *Element) SendKeys(_ context.Context, text string) error {
	return elementError(e.el.SendKeys(text))
}

func (e *Element) Click(_ context.Context) error {
	return elementError(e.el.Click())
}

func (e *Element) Submit(_ context.Context) error {
	return elementError(e.el.Submit())
}

func (e *Element) IsDisplayed(_ context.Context) (bool, error) {
	displayed, err := e.el.IsDisplayed()
	return displayed, elementError(err)
}

func (e *Element) IsEnabled(_ context.Context) (bool, error) {
	enabled, err := e.el.IsEnabled()
	return enabled, elementError(err)
}

func (e *Element) Text(_ context.Context) (string, error) {
	text, err := e.el.Text()
	return text, elementError(err)
}
