// Package roddriver drives Chrome over the DevTools protocol with go-rod.
package roddriver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/cdp"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"

	"github.com/padaiyal/webdriver-exercises/internal/browser"
	"github.com/padaiyal/webdriver-exercises/internal/config"
)

// submitJS submits the form owning the element, firing submit handlers like a
// user pressing enter would.
const submitJS = `function() {
	const form = this.form || this.closest("form");
	if (!form) {
		throw new Error("element is not in a form");
	}
	form.requestSubmit ? form.requestSubmit() : form.submit();
}`

// Launcher builds the chrome launcher for opts.
func Launcher(opts config.Browser) *launcher.Launcher {
	l := launcher.New().Headless(opts.Headless)
	if opts.BinaryPath != "" {
		l = l.Bin(opts.BinaryPath)
	}
	for _, flag := range opts.Flags() {
		if flag == "headless" {
			continue
		}
		name, value, _ := strings.Cut(flag, "=")
		if value == "" {
			l = l.Set(flags.Flag(name))
		} else {
			l = l.Set(flags.Flag(name), value)
		}
	}
	return l
}

// Launch starts Chrome and opens a blank page.
func Launch(ctx context.Context, opts config.Browser) (browser.Driver, error) {
	l := Launcher(opts).Context(ctx)
	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("error launching chrome: %w", err)
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("error connecting to chrome: %w", err)
	}
	page, err := b.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		b.Close()
		l.Kill()
		return nil, fmt.Errorf("error opening page: %w", err)
	}
	return &Driver{launcher: l, browser: b, page: page}, nil
}

type Driver struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
}

func (d *Driver) Navigate(ctx context.Context, url string) error {
	page := d.page.Context(ctx)
	if err := page.Navigate(url); err != nil {
		return err
	}
	return page.WaitLoad()
}

func (d *Driver) Title(ctx context.Context) (string, error) {
	info, err := d.page.Context(ctx).Info()
	if err != nil {
		return "", err
	}
	return info.Title, nil
}

func (d *Driver) CurrentURL(ctx context.Context) (string, error) {
	info, err := d.page.Context(ctx).Info()
	if err != nil {
		return "", err
	}
	return info.URL, nil
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

// FindElements queries the page once without waiting for matches to appear.
func (d *Driver) FindElements(ctx context.Context, sel browser.Selector) ([]browser.Element, error) {
	page := d.page.Context(ctx)
	var found rod.Elements
	var err error
	if sel.IsCSS() {
		found, err = page.Elements(sel.Value)
	} else {
		xpath, xerr := sel.XPath()
		if xerr != nil {
			return nil, xerr
		}
		found, err = page.ElementsX(xpath)
	}
	if err != nil {
		return nil, err
	}
	elements := make([]browser.Element, 0, len(found))
	for _, el := range found {
		elements = append(elements, &Element{el: el})
	}
	return elements, nil
}

func (d *Driver) Back(ctx context.Context) error {
	return d.page.Context(ctx).NavigateBack()
}

func (d *Driver) Forward(ctx context.Context) error {
	return d.page.Context(ctx).NavigateForward()
}

func (d *Driver) Refresh(ctx context.Context) error {
	return d.page.Context(ctx).Reload()
}

func (d *Driver) MaximizeWindow(ctx context.Context) error {
	page := d.page.Context(ctx)
	window, err := proto.BrowserGetWindowForTarget{}.Call(page)
	if err != nil {
		return err
	}
	return proto.BrowserSetWindowBounds{
		WindowID: window.WindowID,
		Bounds:   &proto.BrowserBounds{WindowState: proto.BrowserWindowStateMaximized},
	}.Call(page)
}

func (d *Driver) BrowserVersion(ctx context.Context) (string, error) {
	version, err := proto.BrowserGetVersion{}.Call(d.browser.Context(ctx))
	if err != nil {
		return "", err
	}
	return version.Product, nil
}

func (d *Driver) Screenshot(ctx context.Context) ([]byte, error) {
	return d.page.Context(ctx).Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
}

func (d *Driver) Quit() error {
	err := d.browser.Close()
	d.launcher.Kill()
	d.launcher.Cleanup()
	return err
}

type Element struct {
	el *rod.Element
}

// objectError marks the errors of a remote object that is gone, either
// released or lost with the page's execution context, as stale.
func objectError(err error) error {
	if errors.Is(err, cdp.ErrObjNotFound) || errors.Is(err, cdp.ErrCtxDestroyed) || errors.Is(err, cdp.ErrCtxNotFound) {
		return &browser.StaleElementError{Err: err}
	}
	return err
}

func (e *Element) SendKeys(ctx context.Context, text string) error {
	return objectError(e.el.Context(ctx).Input(text))
}

func (e *Element) Click(ctx context.Context) error {
	return objectError(e.el.Context(ctx).Click(proto.InputMouseButtonLeft, 1))
}

func (e *Element) Submit(ctx context.Context) error {
	_, err := e.el.Context(ctx).Eval(submitJS)
	return objectError(err)
}

func (e *Element) IsDisplayed(ctx context.Context) (bool, error) {
	visible, err := e.el.Context(ctx).Visible()
	return visible, objectError(err)
}

func (e *Element) IsEnabled(ctx context.Context) (bool, error) {
	disabled, err := e.el.Context(ctx).Property("disabled")
	if err != nil {
		return false, objectError(err)
	}
	return !disabled.Bool(), nil
}

func (e *Element) Text(ctx context.Context) (string, error) {
	text, err := e.el.Context(ctx).Text()
	return text, objectError(err)
}
