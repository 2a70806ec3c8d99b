//go:build e2e

// Package e2e drives a real browser against the live Google search page.
//
// The tests are excluded from the standard test run by the e2e build tag.
// They need Chrome plus the driver of the configured backend (chromedriver for
// the default selenium backend, installed Playwright browsers for playwright).
//
// Running the exercises:
//
//	go test -tags=e2e ./tests/e2e/...
//
// Configuration comes from harness.yaml (or HARNESS_CONFIG), .env and HARNESS_*
// variables, for example:
//
//	HARNESS_BACKEND=rod HARNESS_HEADLESS=true go test -tags=e2e ./tests/e2e/...
//
// Set E2E_DEMO_FAILURE=1 to run the test that fails on purpose; its screenshot
// lands in target/screenshots.
package e2e
