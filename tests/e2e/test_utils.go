//go:build e2e

package e2e

import (
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/padaiyal/webdriver-exercises/internal/browser"
	"github.com/padaiyal/webdriver-exercises/internal/config"
	"github.com/padaiyal/webdriver-exercises/internal/harness"
	"github.com/padaiyal/webdriver-exercises/internal/logging"
	"github.com/padaiyal/webdriver-exercises/internal/navigate"
	"github.com/padaiyal/webdriver-exercises/internal/wait"
)

const (
	SearchTerm           = "Selenium WebDriver"
	ExpectedLinkHrefPart = "selenium.dev"
	AboutLinkTextPT      = "Sobre"
	AboutLinkTextEN      = "About"
	AboutURL             = "https://about.google/"

	// DemoFailureEnv enables the test that fails on purpose to produce a
	// screenshot.
	DemoFailureEnv = "E2E_DEMO_FAILURE"
)

var Env *harness.Env

/*
Generic methods for running the tests
*/

func SetUp() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Could not load harness configuration: ", err)
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatal("Could not create logger: ", err)
	}
	logger.Info("Setting up the e2e environment",
		zap.String("backend", cfg.Browser.Backend),
		zap.String("base_url", cfg.BaseURL),
		zap.String("screenshot_dir", cfg.Artifacts.ScreenshotDir))
	Env = harness.NewEnv(cfg, logger)
}

func TearDown() {
	if Env == nil {
		return
	}
	// Syncing stderr fails on some platforms; there is nothing left to flush.
	_ = Env.Logger.Sync()
}

func DemoFailureEnabled() bool {
	return os.Getenv(DemoFailureEnv) == "1"
}

/*
Locators
*/

func SearchBox() browser.Selector {
	return browser.Name("q")
}

// SearchButton matches the "Google Search" button in both page layouts Google
// serves: the second btnK input or a button labelled Google Search.
func SearchButton() browser.Selector {
	return browser.XPath("(//input[@name='btnK' and @type='submit'])[2] | //button[contains(@aria-label, 'Google Search')]")
}

func SeleniumLink() browser.Selector {
	return browser.XPath(fmt.Sprintf("//a[contains(@href, '%s')]", ExpectedLinkHrefPart))
}

/*
Methods for interacting with the UI
*/

// OpenHomePage loads the base URL and logs where the browser ended up.
func OpenHomePage(c *harness.Case) error {
	if err := c.Driver().Navigate(c.Context(), c.Config().BaseURL); err != nil {
		return fmt.Errorf("error opening %s: %w", c.Config().BaseURL, err)
	}
	url, err := c.Driver().CurrentURL(c.Context())
	if err != nil {
		return err
	}
	c.Logger().Info("Navigated", zap.String("url", url))
	return nil
}

// SearchBySubmit types term into the search box, submits its form and waits
// for the results page.
func SearchBySubmit(c *harness.Case, term string) error {
	if err := OpenHomePage(c); err != nil {
		return err
	}
	searchBox, err := wait.Until(c.Context(), c.Wait(), wait.ElementVisible(SearchBox()))
	if err != nil {
		return err
	}
	if err := searchBox.SendKeys(c.Context(), term); err != nil {
		return err
	}
	if err := searchBox.Submit(c.Context()); err != nil {
		return err
	}
	if _, err := wait.Until(c.Context(), c.Wait(), wait.TitleContains(term)); err != nil {
		return err
	}
	c.Logger().Info("Results page loaded", zap.String("term", term))
	return nil
}

// AboutPageChain tries the Portuguese link, then the English one, and finally
// opens the page directly.
func AboutPageChain(c *harness.Case) []navigate.Attempt {
	return []navigate.Attempt{
		navigate.ClickLink(c.Wait(), browser.LinkText(AboutLinkTextPT)),
		navigate.ClickLink(c.Wait(), browser.LinkText(AboutLinkTextEN)),
		navigate.Direct(c.Driver(), AboutURL),
	}
}
