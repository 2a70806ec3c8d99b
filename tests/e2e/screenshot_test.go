//go:build e2e

package e2e

func (suite *BrowserTestsSuite) TestGoogleTitleSuccess() {
	c := suite.Case
	c.Require(OpenHomePage(c), "Error opening home page")

	pageTitle, err := c.Driver().Title(c.Context())
	c.Require(err, "Error reading title")
	suite.Equal("Google", pageTitle, "The page title is not as expected!")
}

// TestGoogleTitleFailure fails on purpose so a screenshot is written for it.
// It only runs with E2E_DEMO_FAILURE=1.
func (suite *BrowserTestsSuite) TestGoogleTitleFailure() {
	if !DemoFailureEnabled() {
		suite.T().Skipf("set %s=1 to run the intentional failure", DemoFailureEnv)
	}
	c := suite.Case
	c.Require(OpenHomePage(c), "Error opening home page")

	pageTitle, err := c.Driver().Title(c.Context())
	c.Require(err, "Error reading title")
	suite.Equal("Gooogle", pageTitle, "The page title is not as expected (intentional failure)!")
}
