package http

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestSetLinkHeaders(t *testing.T) {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Get("/items", func(c *fiber.Ctx) error {
		SetLinkHeaders(c, Pagination{Offset: 0, Limit: 10, Total: 25})
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/items?sort=name", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	want := `</items?limit=10&offset=0&sort=name>; rel="first", ` +
		`</items?limit=10&offset=10&sort=name>; rel="next", ` +
		`</items?limit=10&offset=15&sort=name>; rel="last"`
	if got := resp.Header.Get("Link"); got != want {
		t.Errorf("Link header:\n got %s\nwant %s", got, want)
	}
}

func TestETagMatches(t *testing.T) {
	etag := `W/"abc"`
	tests := []struct {
		header string
		want   bool
	}{
		{"", false},
		{`W/"abc"`, true},
		{`"abc"`, true},
		{`W/"x", W/"abc"`, true},
		{"*", true},
		{`"other"`, false},
	}
	for _, tt := range tests {
		if got := etagMatches(tt.header, etag); got != tt.want {
			t.Errorf("etagMatches(%q) = %v, want %v", tt.header, got, tt.want)
		}
	}
}

func TestCacheControlFor(t *testing.T) {
	tests := map[string]string{
		"/v1/health":                       "public, max-age=10",
		"/metrics":                         "no-cache",
		"/api/v1/get-hotspots":             "public, max-age=60",
		"/api/v1/random-points":            "no-store",
		"/api/v1/drivers/d1/last-location": "no-cache",
		"/api/v1/all-drivers":              "private, max-age=0",
		"/docs":                            "public, max-age=3600",
		"/unknown":                         "",
	}
	for path, want := range tests {
		if got := cacheControlFor(path); got != want {
			t.Errorf("cacheControlFor(%q) = %q, want %q", path, got, want)
		}
	}
}
