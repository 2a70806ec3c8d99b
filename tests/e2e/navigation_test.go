//go:build e2e

package e2e

func (suite *BrowserTestsSuite) TestGoogleTitle() {
	c := suite.Case
	c.Require(OpenHomePage(c), "Error opening home page")

	pageTitle, err := c.Driver().Title(c.Context())
	c.Require(err, "Error reading title")
	suite.t.Logf("Page title: %s", pageTitle)

	suite.Equal("Google", pageTitle, "The page title is not as expected!")
}
