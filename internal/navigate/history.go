package navigate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
	"go.uber.org/zap"

	"github.com/padaiyal/webdriver-exercises/internal/wait"
)

type Step string

const (
	StepLoad    Step = "load"
	StepAdvance Step = "advance"
	StepBack    Step = "back"
	StepForward Step = "forward"
	StepRefresh Step = "refresh"
)

type Visit struct {
	Step  Step
	Title string
}

// Trace records the title seen after each step of the history protocol.
type Trace []Visit

func (tr Trace) Titles() []string {
	titles := make([]string, len(tr))
	for i, v := range tr {
		titles[i] = v.Title
	}
	return titles
}

func (tr Trace) Title(step Step) string {
	for _, v := range tr {
		if v.Step == step {
			return v.Title
		}
	}
	return ""
}

// Diff returns a unified diff between want and the observed titles, one line
// per step. It is empty when they match.
func (tr Trace) Diff(want []string) string {
	expected := renderTitles(want)
	observed := renderTitles(tr.Titles())
	if expected == observed {
		return ""
	}
	edits := myers.ComputeEdits(span.URIFromPath("expected"), expected, observed)
	return fmt.Sprint(gotextdiff.ToUnified("expected", "observed", expected, edits))
}

func renderTitles(titles []string) string {
	var b strings.Builder
	for _, title := range titles {
		b.WriteString(title)
		b.WriteString("\n")
	}
	return b.String()
}

// HistoryPlan describes one run of the history protocol.
type HistoryPlan struct {
	URL string
	// InitialTitle is the title the first page must have.
	InitialTitle string
	// Advance moves the browser to a second page, usually through a fallback
	// chain ending in Direct.
	Advance []Attempt
	Logger  *zap.Logger
}

var ErrUnexpectedTitle = errors.New("unexpected title")

// History runs: load URL and check the initial title, advance to a second
// page and wait for the title to change, then back, forward and refresh,
// waiting after each step for the title the step must produce. The trace
// holds every step reached, including the failing one.
func History(ctx context.Context, w *wait.Waiter, plan HistoryPlan) (Trace, error) {
	logger := plan.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	d := w.Driver
	var trace Trace
	record := func(step Step, title string) {
		trace = append(trace, Visit{Step: step, Title: title})
		logger.Info("history step", zap.String("step", string(step)), zap.String("title", title))
	}

	if err := d.Navigate(ctx, plan.URL); err != nil {
		return trace, fmt.Errorf("loading %s: %w", plan.URL, err)
	}
	initial, err := wait.Until(ctx, w, wait.TitleIs(plan.InitialTitle))
	if err != nil {
		return trace, fmt.Errorf("%s: %w", StepLoad, err)
	}
	record(StepLoad, initial)

	if _, err := FirstOf(ctx, logger, plan.Advance...); err != nil {
		return trace, fmt.Errorf("%s: %w", StepAdvance, err)
	}
	second, err := wait.Until(ctx, w, wait.TitleChangedFrom(initial))
	if err != nil {
		return trace, fmt.Errorf("%s: %w", StepAdvance, err)
	}
	record(StepAdvance, second)
	if strings.TrimSpace(second) == "" {
		return trace, fmt.Errorf("%s: %w: second page has an empty title", StepAdvance, ErrUnexpectedTitle)
	}

	steps := []struct {
		step Step
		move func(context.Context) error
		want string
	}{
		{StepBack, d.Back, initial},
		{StepForward, d.Forward, second},
		{StepRefresh, d.Refresh, second},
	}
	for _, s := range steps {
		if err := s.move(ctx); err != nil {
			return trace, fmt.Errorf("%s: %w", s.step, err)
		}
		title, err := wait.Until(ctx, w, wait.TitleIs(s.want))
		if err != nil {
			return trace, fmt.Errorf("%s: %w", s.step, err)
		}
		record(s.step, title)
	}
	return trace, nil
}

// Expected returns the title sequence a successful run produces.
func Expected(initial, second string) []string {
	return []string{initial, second, initial, second, second}
}
