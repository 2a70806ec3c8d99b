//go:build e2e

package e2e

import (
	"time"

	"github.com/padaiyal/webdriver-exercises/internal/session"
	"github.com/padaiyal/webdriver-exercises/internal/wait"
)

// TestOpenWaitAndCloseBrowser keeps the browser open for a fixed five seconds.
// A fixed sleep is how not to wait for a page; every other test waits on a
// condition instead.
func (suite *BrowserTestsSuite) TestOpenWaitAndCloseBrowser() {
	c := suite.Case
	suite.Require().NotNil(c.Driver(), "WebDriver should be initialized.")
	suite.Equal(session.StateOpen, c.Session().State())

	suite.t.Log("Waiting for 5 seconds...")
	if err := wait.Sleep(c.Context(), 5*time.Second); err != nil {
		suite.t.Logf("Wait interrupted: %s", err)
	}
	suite.t.Log("Test logic completed, browser will be closed.")
}
