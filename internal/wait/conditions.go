package wait

import (
	"context"
	"fmt"
	"strings"

	"github.com/padaiyal/webdriver-exercises/internal/browser"
)

func titleCondition(description, want string, met func(title string) bool) Condition[string] {
	return Condition[string]{
		Description: description,
		Want:        want,
		Eval: func(ctx context.Context, d browser.Driver) (Observation[string], error) {
			title, err := d.Title(ctx)
			if err != nil {
				return Observation[string]{}, err
			}
			return Observation[string]{Value: title, Met: met(title), State: title}, nil
		},
	}
}

func TitleIs(title string) Condition[string] {
	return titleCondition(fmt.Sprintf("title to be %q", title), title, func(got string) bool {
		return got == title
	})
}

func TitleContains(fragment string) Condition[string] {
	return titleCondition(fmt.Sprintf("title to contain %q", fragment), fragment, func(got string) bool {
		return strings.Contains(got, fragment)
	})
}

// TitleChangedFrom holds once the title differs from previous. The wanted value
// is left empty since any other title satisfies it.
func TitleChangedFrom(previous string) Condition[string] {
	return titleCondition(fmt.Sprintf("title to change from %q", previous), "", func(got string) bool {
		return got != previous
	})
}

func elementCondition(description string, sel browser.Selector, met func(ctx context.Context, el browser.Element) (bool, string, error)) Condition[browser.Element] {
	return Condition[browser.Element]{
		Description: description,
		Eval: func(ctx context.Context, d browser.Driver) (Observation[browser.Element], error) {
			el, err := d.FindElement(ctx, sel)
			if err != nil {
				return Observation[browser.Element]{}, err
			}
			ok, state, err := met(ctx, el)
			if err != nil {
				return Observation[browser.Element]{}, err
			}
			return Observation[browser.Element]{Value: el, Met: ok, State: state}, nil
		},
	}
}

// ElementVisible holds once the first element matching sel is displayed.
func ElementVisible(sel browser.Selector) Condition[browser.Element] {
	return elementCondition(fmt.Sprintf("element %s to be visible", sel), sel, func(ctx context.Context, el browser.Element) (bool, string, error) {
		visible, err := el.IsDisplayed(ctx)
		if err != nil {
			return false, "", err
		}
		if !visible {
			return false, "present but hidden", nil
		}
		return true, "visible", nil
	})
}

// ElementClickable holds once the first element matching sel is displayed and
// enabled.
func ElementClickable(sel browser.Selector) Condition[browser.Element] {
	return elementCondition(fmt.Sprintf("element %s to be clickable", sel), sel, func(ctx context.Context, el browser.Element) (bool, string, error) {
		visible, err := el.IsDisplayed(ctx)
		if err != nil {
			return false, "", err
		}
		if !visible {
			return false, "present but hidden", nil
		}
		enabled, err := el.IsEnabled(ctx)
		if err != nil {
			return false, "", err
		}
		if !enabled {
			return false, "visible but disabled", nil
		}
		return true, "clickable", nil
	})
}

// Not inverts cond. An absent element satisfies the inverted condition.
func Not[T any](cond Condition[T]) Condition[T] {
	return Condition[T]{
		Description: "not " + cond.Description,
		Eval: func(ctx context.Context, d browser.Driver) (Observation[T], error) {
			obs, err := cond.Eval(ctx, d)
			if browser.IsNotFound(err) {
				return Observation[T]{Met: true, State: err.Error()}, nil
			}
			if err != nil {
				return Observation[T]{}, err
			}
			return Observation[T]{Value: obs.Value, Met: !obs.Met, State: obs.State}, nil
		},
	}
}
