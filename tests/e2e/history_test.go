//go:build e2e

package e2e

import (
	"strings"

	"github.com/padaiyal/webdriver-exercises/internal/navigate"
)

func (suite *BrowserTestsSuite) TestBrowserHistoryNavigation() {
	c := suite.Case

	trace, err := navigate.History(c.Context(), c.Wait(), navigate.HistoryPlan{
		URL:          c.Config().BaseURL,
		InitialTitle: "Google",
		Advance:      AboutPageChain(c),
		Logger:       c.Logger(),
	})
	for i, visit := range trace {
		suite.t.Logf("%d. %s: %s", i+1, visit.Step, visit.Title)
	}
	c.Require(err, "History navigation failed")

	second := trace.Title(navigate.StepAdvance)
	suite.True(strings.Contains(strings.ToLower(second), "google"), "Second page title does not contain 'google': %q", second)

	expected := navigate.Expected("Google", second)
	suite.Equal(expected, trace.Titles(), trace.Diff(expected))
}
