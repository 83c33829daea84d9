package testutil

import (
	"fmt"
	"os"
	"strings"
	"testing"
)

// UseTestEnvironment sets GO_ENV=test for the duration of the test.
// It refuses to run when the process was started with GO_ENV=production so a test can
// never touch a production database.
func UseTestEnvironment(t *testing.T) {
	t.Helper()

	if env := os.Getenv("GO_ENV"); env == "production" {
		t.Fatalf("SAFETY CHECK FAILED: refusing to run tests with GO_ENV=%q. %s", env, DescribeEnvironment())
	}
	t.Setenv("GO_ENV", "test")
}

// RequireTestEnvironment fails the test immediately unless GO_ENV is "test"
func RequireTestEnvironment(t *testing.T) {
	t.Helper()

	if env := os.Getenv("GO_ENV"); env != "test" {
		t.Fatalf("SAFETY CHECK FAILED: Tests must run with GO_ENV=test to prevent data loss. Current GO_ENV=%q.", env)
	}
}

// DescribeEnvironment summarizes the environment a test runs in, with credentials masked
func DescribeEnvironment() string {
	return fmt.Sprintf("GO_ENV=%s DATABASE_URL=%s REDIS_URL=%s",
		os.Getenv("GO_ENV"),
		maskURL(os.Getenv("DATABASE_URL")),
		maskURL(os.Getenv("REDIS_URL")))
}

// maskURL hides the userinfo of a connection URL
func maskURL(url string) string {
	if url == "" {
		return "(not set)"
	}
	scheme, rest, ok := strings.Cut(url, "://")
	if !ok {
		return "***"
	}
	if at := strings.LastIndex(rest, "@"); at >= 0 {
		rest = "***@" + rest[at+1:]
	}
	return scheme + "://" + rest
}
