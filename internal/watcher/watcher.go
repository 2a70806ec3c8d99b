// Package watcher captures a screenshot when a test fails.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/padaiyal/webdriver-exercises/internal/browser"
)

// TimestampLayout is yyyyMMdd_HHmmss.
const TimestampLayout = "20060102_150405"

type Outcome int

const (
	Passed Outcome = iota
	Failed
	Aborted
)

func (o Outcome) String() string {
	switch o {
	case Passed:
		return "passed"
	case Failed:
		return "failed"
	case Aborted:
		return "aborted"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

type State int

const (
	Armed State = iota
	Reported
)

// Report is what the test framework tells the watcher once a test concludes.
type Report struct {
	TestName string
	Outcome  Outcome
	// Cause is the failure reason when the framework knows it.
	Cause error
}

type Artifact struct {
	Name string
	Path string
	Size int
}

type ScreenshotCaptureError struct {
	TestName string
	Err      error
}

func (e *ScreenshotCaptureError) Error() string {
	return fmt.Sprintf("error saving screenshot for %s: %s", e.TestName, e.Err)
}

func (e *ScreenshotCaptureError) Unwrap() error {
	return e.Err
}

// ErrNoScreenshotSupport is reported when the failing test's browser cannot
// take screenshots.
var ErrNoScreenshotSupport = errors.New("browser does not support screenshots")

// Watcher observes exactly one test outcome. It is armed until Observe is
// called and reported afterwards; further reports are ignored.
type Watcher struct {
	Dir    string
	Now    func() time.Time
	Logger *zap.Logger

	mu    sync.Mutex
	state State
}

func New(dir string, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{Dir: dir, Now: time.Now, Logger: logger}
}

func (w *Watcher) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Observe handles the outcome of the test. On failure it captures a
// screenshot from source when source can take one. The returned artifact is
// nil when nothing was written. Capture errors are logged and returned for
// inspection only; they must not change the outcome of the test.
func (w *Watcher) Observe(ctx context.Context, report Report, source browser.Screenshotter) (*Artifact, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == Reported {
		return nil, nil
	}
	w.state = Reported

	if report.Outcome != Failed {
		return nil, nil
	}

	logger := w.Logger.With(zap.String("test", report.TestName))
	fields := []zap.Field{}
	if report.Cause != nil {
		fields = append(fields, zap.NamedError("cause", report.Cause))
	}
	logger.Info("test failed, capturing screenshot", fields...)

	if source == nil {
		err := &ScreenshotCaptureError{TestName: report.TestName, Err: ErrNoScreenshotSupport}
		logger.Warn("current browser does not support screenshots")
		return nil, err
	}

	artifact, err := w.capture(ctx, report.TestName, source)
	if err != nil {
		captureErr := &ScreenshotCaptureError{TestName: report.TestName, Err: err}
		logger.Error("error saving screenshot", zap.Error(err))
		return nil, captureErr
	}
	logger.Info("screenshot saved", zap.String("path", artifact.Path), zap.Int("bytes", artifact.Size))
	return artifact, nil
}

func (w *Watcher) capture(ctx context.Context, testName string, source browser.Screenshotter) (*Artifact, error) {
	image, err := source.Screenshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("error capturing screenshot: %w", err)
	}

	now := time.Now
	if w.Now != nil {
		now = w.Now
	}
	name := FileName(testName, now())

	dir, err := filepath.Abs(w.Dir)
	if err != nil {
		return nil, fmt.Errorf("error getting absolute path of %s: %w", w.Dir, err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("error creating %s: %w", dir, err)
	}

	f, name, err := create(dir, name)
	if err != nil {
		return nil, err
	}
	path := f.Name()
	if _, err := f.Write(image); err != nil {
		f.Close()
		return nil, fmt.Errorf("error writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("error closing %s: %w", path, err)
	}
	return &Artifact{Name: name, Path: path, Size: len(image)}, nil
}

// maxCollisions bounds the _2, _3, ... suffixes tried for one name.
const maxCollisions = 1000

// create opens a new file for name in dir. An existing file is never
// replaced: when name is taken, the next free numbered name is used.
func create(dir, name string) (*os.File, string, error) {
	candidate := name
	for n := 2; ; n++ {
		path := filepath.Join(dir, candidate)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		switch {
		case err == nil:
			return f, candidate, nil
		case !errors.Is(err, os.ErrExist) || n > maxCollisions:
			return nil, "", fmt.Errorf("error creating %s: %w", path, err)
		}
		candidate = Numbered(name, n)
	}
}

// Numbered returns name with _n inserted before its extension.
func Numbered(name string, n int) string {
	ext := filepath.Ext(name)
	return fmt.Sprintf("%s_%d%s", strings.TrimSuffix(name, ext), n, ext)
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// FileName returns screenshot_{testName}_{yyyyMMdd_HHmmss}.png. Characters
// that are unsafe in file names, like the '/' of subtests, become '_'.
func FileName(testName string, at time.Time) string {
	name := unsafeChars.ReplaceAllString(testName, "_")
	if name == "" {
		name = "unknown_test"
	}
	return fmt.Sprintf("screenshot_%s_%s.png", name, at.Format(TimestampLayout))
}
