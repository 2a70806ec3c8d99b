// Package cdpdriver drives Chrome over the DevTools protocol with chromedp.
package cdpdriver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	cdpbrowser "github.com/chromedp/cdproto/browser"
	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/chromedp"

	"github.com/padaiyal/webdriver-exercises/internal/browser"
	"github.com/padaiyal/webdriver-exercises/internal/config"
)

// Flags maps the session options onto chrome switches. Boolean switches map
// to true, headless to its configured value so it can be switched off.
func Flags(opts config.Browser) map[string]interface{} {
	out := map[string]interface{}{"headless": opts.Headless}
	for _, flag := range opts.Flags() {
		name, value, ok := strings.Cut(flag, "=")
		if ok {
			out[name] = value
		} else {
			out[name] = true
		}
	}
	return out
}

func allocatorOptions(opts config.Browser) []chromedp.ExecAllocatorOption {
	options := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	for name, value := range Flags(opts) {
		options = append(options, chromedp.Flag(name, value))
	}
	if opts.BinaryPath != "" {
		options = append(options, chromedp.ExecPath(opts.BinaryPath))
	}
	return options
}

// Launch starts Chrome and attaches to its first tab. The browser lives until
// Quit, independently of ctx.
func Launch(ctx context.Context, opts config.Browser) (browser.Driver, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocatorOptions(opts)...)
	tab, tabCancel := chromedp.NewContext(allocCtx)
	d := &Driver{tab: tab, cancel: func() {
		tabCancel()
		allocCancel()
	}}
	// Running no actions starts the browser.
	if err := d.run(ctx); err != nil {
		d.cancel()
		return nil, fmt.Errorf("error launching chrome: %w", err)
	}
	return d, nil
}

type Driver struct {
	tab    context.Context
	cancel context.CancelFunc
}

// run executes actions on the tab, aborting when ctx is done.
func (d *Driver) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(d.tab)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

func (d *Driver) Navigate(ctx context.Context, url string) error {
	return d.run(ctx, chromedp.Navigate(url))
}

func (d *Driver) Title(ctx context.Context) (string, error) {
	var title string
	err := d.run(ctx, chromedp.Title(&title))
	return title, err
}

func (d *Driver) CurrentURL(ctx context.Context) (string, error) {
	var url string
	err := d.run(ctx, chromedp.Location(&url))
	return url, err
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

// FindElements returns the current matches without waiting for more.
func (d *Driver) FindElements(ctx context.Context, sel browser.Selector) ([]browser.Element, error) {
	query, by, err := Query(sel)
	if err != nil {
		return nil, err
	}
	var nodes []*cdp.Node
	if err := d.run(ctx, chromedp.Nodes(query, &nodes, by, chromedp.AtLeast(0))); err != nil {
		return nil, err
	}
	elements := make([]browser.Element, 0, len(nodes))
	for _, n := range nodes {
		elements = append(elements, &Element{driver: d, node: n})
	}
	return elements, nil
}

// Query returns the chromedp query for sel: CSS selectors run through
// querySelectorAll, everything else is translated to XPath.
func Query(sel browser.Selector) (string, chromedp.QueryOption, error) {
	if sel.IsCSS() {
		return sel.Value, chromedp.ByQueryAll, nil
	}
	xpath, err := sel.XPath()
	if err != nil {
		return "", nil, err
	}
	return xpath, chromedp.BySearch, nil
}

func (d *Driver) Back(ctx context.Context) error {
	return d.run(ctx, chromedp.NavigateBack())
}

func (d *Driver) Forward(ctx context.Context) error {
	return d.run(ctx, chromedp.NavigateForward())
}

func (d *Driver) Refresh(ctx context.Context) error {
	return d.run(ctx, chromedp.Reload())
}

func (d *Driver) MaximizeWindow(ctx context.Context) error {
	return d.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		windowID, _, err := cdpbrowser.GetWindowForTarget().Do(ctx)
		if err != nil {
			return err
		}
		return cdpbrowser.SetWindowBounds(windowID, &cdpbrowser.Bounds{WindowState: cdpbrowser.WindowStateMaximized}).Do(ctx)
	}))
}

func (d *Driver) BrowserVersion(ctx context.Context) (string, error) {
	var product string
	err := d.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		_, product, _, _, _, err = cdpbrowser.GetVersion().Do(ctx)
		return err
	}))
	return product, err
}

func (d *Driver) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	err := d.run(ctx, chromedp.CaptureScreenshot(&buf))
	return buf, err
}

// Quit closes the tab gracefully and then stops the browser process.
func (d *Driver) Quit() error {
	err := chromedp.Cancel(d.tab)
	d.cancel()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

type Element struct {
	driver *Driver
	node   *cdp.Node
}

func (e *Element) ids() []cdp.NodeID {
	return []cdp.NodeID{e.node.NodeID}
}

// staleNode lists the DevTools messages for a node id that no longer belongs
// to the document.
var staleNode = []string{
	"No node with given id found",
	"Could not find node with given id",
	"Node with given id does not belong to the document",
}

func nodeError(err error) error {
	return browser.StaleIf(err, staleNode...)
}

func (e *Element) SendKeys(ctx context.Context, text string) error {
	return nodeError(e.driver.run(ctx, chromedp.SendKeys(e.ids(), text, chromedp.ByNodeID)))
}

func (e *Element) Click(ctx context.Context) error {
	return nodeError(e.driver.run(ctx, chromedp.Click(e.ids(), chromedp.ByNodeID)))
}

func (e *Element) Submit(ctx context.Context) error {
	return nodeError(e.driver.run(ctx, chromedp.Submit(e.ids(), chromedp.ByNodeID)))
}

// IsDisplayed reports whether the node has a layout box. Nodes that are not
// rendered have none; nodes that left the document are stale.
func (e *Element) IsDisplayed(ctx context.Context) (bool, error) {
	visible := false
	err := e.driver.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		_, err := dom.GetBoxModel().WithNodeID(e.node.NodeID).Do(ctx)
		if browser.IsStale(nodeError(err)) {
			return err
		}
		visible = err == nil
		return nil
	}))
	return visible, nodeError(err)
}

// IsEnabled reads the attributes of the node directly; a selector query by
// node id would wait for a removed node to come back.
func (e *Element) IsEnabled(ctx context.Context) (bool, error) {
	disabled := false
	err := e.driver.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		attributes, err := dom.GetAttributes(e.node.NodeID).Do(ctx)
		if err != nil {
			return err
		}
		disabled = Disabled(attributes)
		return nil
	}))
	return !disabled, nodeError(err)
}

// Disabled reports whether the flat name, value, name, value... attribute
// list of a node carries the disabled attribute.
func Disabled(attributes []string) bool {
	for i := 0; i < len(attributes); i += 2 {
		if attributes[i] == "disabled" {
			return true
		}
	}
	return false
}

func (e *Element) Text(ctx context.Context) (string, error) {
	var text string
	err := e.driver.run(ctx, chromedp.Text(e.ids(), &text, chromedp.ByNodeID))
	return text, nodeError(err)
}
