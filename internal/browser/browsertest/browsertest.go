// Package browsertest provides a scripted in-memory browser for unit tests.
package browsertest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sync"

	"github.com/padaiyal/webdriver-exercises/internal/browser"
	"github.com/padaiyal/webdriver-exercises/internal/config"
)

var ErrQuit = errors.New("browsertest: browser already quit")

type Page struct {
	URL      string
	Title    string
	Elements []*Element
}

type Element struct {
	Selectors []browser.Selector
	Label     string
	Hidden    bool
	Disabled  bool
	// VisibleAfter makes the element report hidden for that many checks.
	VisibleAfter int
	// StaleFor makes that many IsDisplayed or IsEnabled calls fail with
	// browser.ErrStaleElement, as if the page re-rendered the node.
	StaleFor int
	// Href is followed on Click.
	Href string
	// OnClick and OnSubmit return the URL to load, "" to stay on the page.
	OnClick  func() string
	OnSubmit func() string

	driver *Driver
	value  string
	checks int
	stale  int
}

func (e *Element) staleCheck() error {
	if e.stale >= e.StaleFor {
		return nil
	}
	e.stale++
	return &browser.StaleElementError{Err: fmt.Errorf("browsertest: element %v was re-rendered", e.Selectors)}
}

func (e *Element) matches(sel browser.Selector) bool {
	for _, s := range e.Selectors {
		if s == sel {
			return true
		}
	}
	return false
}

// Value returns the text typed into the element so far.
func (e *Element) Value() string {
	e.driver.mu.Lock()
	defer e.driver.mu.Unlock()
	return e.value
}

func (e *Element) SendKeys(_ context.Context, text string) error {
	d := e.driver
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.check("SendKeys"); err != nil {
		return err
	}
	e.value += text
	return nil
}

func (e *Element) Click(_ context.Context) error {
	d := e.driver
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.check("Click"); err != nil {
		return err
	}
	target := e.Href
	if e.OnClick != nil {
		target = e.OnClick()
	}
	if target == "" {
		return nil
	}
	return d.load(target, true)
}

func (e *Element) Submit(_ context.Context) error {
	d := e.driver
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.check("Submit"); err != nil {
		return err
	}
	if e.OnSubmit == nil {
		return fmt.Errorf("browsertest: element %v is not in a form", e.Selectors)
	}
	if target := e.OnSubmit(); target != "" {
		return d.load(target, true)
	}
	return nil
}

func (e *Element) IsDisplayed(_ context.Context) (bool, error) {
	d := e.driver
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.check("IsDisplayed"); err != nil {
		return false, err
	}
	if err := e.staleCheck(); err != nil {
		return false, err
	}
	e.checks++
	return !e.Hidden && e.checks > e.VisibleAfter, nil
}

func (e *Element) IsEnabled(_ context.Context) (bool, error) {
	d := e.driver
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.check("IsEnabled"); err != nil {
		return false, err
	}
	if err := e.staleCheck(); err != nil {
		return false, err
	}
	return !e.Disabled, nil
}

func (e *Element) Text(_ context.Context) (string, error) {
	d := e.driver
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.check("Text"); err != nil {
		return "", err
	}
	return e.Label, nil
}

// Driver is a browser.Driver backed by a fixed set of pages and a history
// stack that behaves like a real tab.
type Driver struct {
	// LoadDelay is how many Title or FindElements calls still observe the
	// previous page after each navigation, mimicking an asynchronous load.
	LoadDelay int
	// ScreenshotErr makes Screenshot fail.
	ScreenshotErr error
	// Route resolves URLs that were not registered with a Page.
	Route func(url string) *Page

	mu       sync.Mutex
	pages    map[string]*Page
	history  []*Page
	index    int
	previous *Page
	pending  int
	quits    int
	calls    []string
}

func New(pages ...*Page) *Driver {
	d := &Driver{pages: make(map[string]*Page), index: -1}
	for _, p := range pages {
		d.AddPage(p)
	}
	return d
}

func (d *Driver) AddPage(p *Page) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, e := range p.Elements {
		e.driver = d
	}
	d.pages[p.URL] = p
}

// Quits reports how many times Quit was called.
func (d *Driver) Quits() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.quits
}

func (d *Driver) Calls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.calls...)
}

func (d *Driver) check(call string) error {
	d.calls = append(d.calls, call)
	if d.quits > 0 {
		return ErrQuit
	}
	return nil
}

func (d *Driver) current() *Page {
	if d.index < 0 {
		return nil
	}
	return d.history[d.index]
}

func (d *Driver) lookup(url string) (*Page, error) {
	if p, ok := d.pages[url]; ok {
		return p, nil
	}
	if d.Route != nil {
		if p := d.Route(url); p != nil {
			for _, e := range p.Elements {
				e.driver = d
			}
			return p, nil
		}
	}
	return nil, fmt.Errorf("browsertest: navigating to %s: net::ERR_NAME_NOT_RESOLVED", url)
}

// load is called with d.mu held.
func (d *Driver) load(url string, push bool) error {
	p, err := d.lookup(url)
	if err != nil {
		return err
	}
	d.previous = d.current()
	if push {
		d.history = append(d.history[:d.index+1], p)
		d.index++
	}
	d.pending = d.LoadDelay
	return nil
}

func (d *Driver) move(step int) {
	next := d.index + step
	if next < 0 || next >= len(d.history) {
		return
	}
	d.previous = d.current()
	d.index = next
	d.pending = d.LoadDelay
}

func (d *Driver) Navigate(_ context.Context, url string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.check("Navigate"); err != nil {
		return err
	}
	return d.load(url, true)
}

func (d *Driver) Title(_ context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.check("Title"); err != nil {
		return "", err
	}
	if d.pending > 0 {
		d.pending--
		if d.previous != nil {
			return d.previous.Title, nil
		}
		return "", nil
	}
	if p := d.current(); p != nil {
		return p.Title, nil
	}
	return "", nil
}

func (d *Driver) CurrentURL(_ context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.check("CurrentURL"); err != nil {
		return "", err
	}
	if p := d.current(); p != nil {
		return p.URL, nil
	}
	return "about:blank", nil
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
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.check("FindElements"); err != nil {
		return nil, err
	}
	elements := []browser.Element{}
	if d.pending > 0 {
		d.pending--
		return elements, nil
	}
	p := d.current()
	if p == nil {
		return elements, nil
	}
	for _, e := range p.Elements {
		if e.matches(sel) {
			elements = append(elements, e)
		}
	}
	return elements, nil
}

func (d *Driver) Back(_ context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.check("Back"); err != nil {
		return err
	}
	d.move(-1)
	return nil
}

func (d *Driver) Forward(_ context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.check("Forward"); err != nil {
		return err
	}
	d.move(1)
	return nil
}

func (d *Driver) Refresh(_ context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.check("Refresh"); err != nil {
		return err
	}
	d.move(0)
	return nil
}

func (d *Driver) MaximizeWindow(_ context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.check("MaximizeWindow")
}

func (d *Driver) BrowserVersion(_ context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.check("BrowserVersion"); err != nil {
		return "", err
	}
	return "browsertest/1.0", nil
}

func (d *Driver) Screenshot(_ context.Context) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.check("Screenshot"); err != nil {
		return nil, err
	}
	if d.ScreenshotErr != nil {
		return nil, d.ScreenshotErr
	}
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 66, G: 133, B: 244, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (d *Driver) Quit() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, "Quit")
	d.quits++
	return nil
}

type blind struct {
	browser.Driver
}

// WithoutScreenshots hides the Screenshotter capability of d.
func WithoutScreenshots(d browser.Driver) browser.Driver {
	return blind{Driver: d}
}

// Launcher returns a launcher handing out d, or err when it is non-nil.
func Launcher(d browser.Driver, err error) browser.LauncherFunc {
	return func(_ context.Context, _ config.Browser) (browser.Driver, error) {
		if err != nil {
			return nil, err
		}
		return d, nil
	}
}
