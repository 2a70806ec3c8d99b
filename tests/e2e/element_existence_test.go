//go:build e2e

package e2e

import (
	"errors"

	"github.com/padaiyal/webdriver-exercises/internal/browser"
)

// TestElementExistenceUsingFindElement expects the link to be there and fails
// on ErrNoSuchElement.
func (suite *BrowserTestsSuite) TestElementExistenceUsingFindElement() {
	c := suite.Case
	ctx := c.Context()
	c.Require(SearchBySubmit(c, SearchTerm), "Error searching")

	seleniumLink, err := c.Driver().FindElement(ctx, SeleniumLink())
	if errors.Is(err, browser.ErrNoSuchElement) {
		suite.t.Fatalf("Link to %s not found on the page: %s", ExpectedLinkHrefPart, err)
	}
	c.Require(err, "Error finding link")

	displayed, err := seleniumLink.IsDisplayed(ctx)
	c.Require(err, "Error checking link visibility")
	suite.True(displayed, "Selenium link found, but not visible.")
}

// TestElementExistenceUsingFindElements treats absence as an empty list.
func (suite *BrowserTestsSuite) TestElementExistenceUsingFindElements() {
	c := suite.Case
	ctx := c.Context()
	c.Require(SearchBySubmit(c, SearchTerm), "Error searching")

	seleniumLinks, err := c.Driver().FindElements(ctx, SeleniumLink())
	c.Require(err, "Error finding links")
	suite.Require().NotEmpty(seleniumLinks, "No link to %s was found (list empty).", ExpectedLinkHrefPart)

	anyDisplayed := false
	for _, link := range seleniumLinks {
		displayed, err := link.IsDisplayed(ctx)
		c.Require(err, "Error checking link visibility")
		if displayed {
			anyDisplayed = true
			break
		}
	}
	suite.True(anyDisplayed, "Link(s) to %s found, but none are visible.", ExpectedLinkHrefPart)
	suite.t.Logf("At least one link to %s found. List size: %d", ExpectedLinkHrefPart, len(seleniumLinks))
}
