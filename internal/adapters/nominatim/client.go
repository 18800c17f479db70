package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/samirrijal/fleetspot/internal/core/domain"
	"github.com/samirrijal/fleetspot/internal/core/ports"
)

// DefaultBaseURL is the public OpenStreetMap instance.
const DefaultBaseURL = "https://nominatim.openstreetmap.org"

// searchResult is the part of a /search result the resolver reads.
type searchResult struct {
	DisplayName string   `json:"display_name"`
	BoundingBox []string `json:"boundingbox"`
}

// Client resolves a city/state pair to its bounding box.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
}

// New creates a client. An empty baseURL uses DefaultBaseURL.
func New(baseURL, userAgent string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		http:      &http.Client{Timeout: timeout},
	}
}

// Resolve returns the bounding box of the first search result.
func (c *Client) Resolve(ctx context.Context, city, state string) (domain.BoundingBox, error) {
	params := url.Values{}
	params.Set("city", city)
	params.Set("state", state)
	params.Set("format", "json")
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return domain.BoundingBox{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.BoundingBox{}, fmt.Errorf("nominatim search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.BoundingBox{}, fmt.Errorf("nominatim search: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return domain.BoundingBox{}, fmt.Errorf("decode nominatim response: %w", err)
	}
	if len(results) == 0 {
		return domain.BoundingBox{}, fmt.Errorf("%s, %s: %w", city, state, ports.ErrRegionNotFound)
	}
	return parseBoundingBox(results[0].BoundingBox)
}

// parseBoundingBox reads Nominatim's [south, north, west, east] strings.
func parseBoundingBox(raw []string) (domain.BoundingBox, error) {
	if len(raw) != 4 {
		return domain.BoundingBox{}, fmt.Errorf("boundingbox has %d values, want 4", len(raw))
	}
	var v [4]float64
	for i, s := range raw {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return domain.BoundingBox{}, fmt.Errorf("boundingbox[%d]: %w", i, err)
		}
		v[i] = f
	}
	return domain.BoundingBox{South: v[0], North: v[1], West: v[2], East: v[3]}, nil
}
