package browser

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectorXPath(t *testing.T) {
	tests := []struct {
		sel  Selector
		want string
	}{
		{Name("q"), `//*[@name="q"]`},
		{ID("APjFqb"), `//*[@id="APjFqb"]`},
		{LinkText(" About "), `//a[normalize-space(.)="About"]`},
		{XPath("//a[contains(@href, 'selenium.dev')]"), "//a[contains(@href, 'selenium.dev')]"},
		{Name(`say "hi"`), `//*[@name='say "hi"']`},
		{Name(`it's "x"`), `//*[@name=concat("it's ", '"', "x", '"', "")]`},
	}
	for _, tt := range tests {
		t.Run(tt.sel.String(), func(t *testing.T) {
			got, err := tt.sel.XPath()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSelectorCSSHasNoXPath(t *testing.T) {
	sel := CSS("textarea[name='q']")
	assert.True(t, sel.IsCSS())
	_, err := sel.XPath()
	assert.Error(t, err)
}

func TestNotFoundErrorMatchesSentinel(t *testing.T) {
	err := fmt.Errorf("lookup: %w", &NotFoundError{Selector: Name("q")})
	assert.ErrorIs(t, err, ErrNoSuchElement)
	assert.Equal(t, "lookup: no such element: name=q", err.Error())
}

func TestSessionStartErrorUnwraps(t *testing.T) {
	cause := errors.New("exec: chromedriver not found")
	err := &SessionStartError{Backend: "selenium", Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "selenium")
}

func TestStaleIf(t *testing.T) {
	cause := errors.New("Could not find node with given id (-32000)")

	err := StaleIf(cause, "No node with given id", "Could not find node with given id")
	assert.ErrorIs(t, err, ErrStaleElement)
	assert.ErrorIs(t, err, cause)
	assert.True(t, IsStale(fmt.Errorf("click: %w", err)))
	assert.False(t, IsNotFound(err))

	assert.Same(t, err, StaleIf(err, "anything"), "already stale errors are kept")

	other := errors.New("net::ERR_CONNECTION_RESET")
	assert.Same(t, other, StaleIf(other, "Could not find node with given id"))
	assert.NoError(t, StaleIf(nil, "Could not find node with given id"))
}
