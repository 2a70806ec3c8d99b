//go:build e2e

package e2e

import (
	"github.com/padaiyal/webdriver-exercises/internal/wait"
)

func (suite *BrowserTestsSuite) TestGoogleSearchInteraction() {
	c := suite.Case
	ctx := c.Context()
	c.Require(OpenHomePage(c), "Error opening home page")

	searchBox, err := wait.Until(ctx, c.Wait(), wait.ElementVisible(SearchBox()))
	c.Require(err, "Search field not visible")
	c.Require(searchBox.SendKeys(ctx, SearchTerm), "Error typing search term")
	suite.t.Logf("Text '%s' entered into search field.", SearchTerm)

	searchButton, err := wait.Until(ctx, c.Wait(), wait.ElementClickable(SearchButton()))
	c.Require(err, "Search button not clickable")
	c.Require(searchButton.Click(ctx), "Error clicking search button")

	title, err := wait.Until(ctx, c.Wait(), wait.TitleContains(SearchTerm))
	c.Require(err, "Results page did not load")
	suite.t.Logf("Results page loaded. Title: %s", title)
}
