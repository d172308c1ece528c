package view

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"annonces-abidjan/models"
)

// API is the backend the view reads from.
type API interface {
	Statistics(ctx context.Context) (models.Statistics, error)
	TodayListings(ctx context.Context, f models.Filters) ([]*models.Listing, error)
}

// Client calls the listings JSON API over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a Client for the API rooted at baseURL. A nil hc
// uses http.DefaultClient; deadlines come from the request context.
func NewClient(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

// Statistics fetches GET /api/statistiques.
func (c *Client) Statistics(ctx context.Context) (models.Statistics, error) {
	var body struct {
		Statistics *models.Statistics `json:"statistiques"`
	}
	if err := c.getJSON(ctx, c.baseURL+"/api/statistiques", &body); err != nil {
		return models.Statistics{}, err
	}
	if body.Statistics == nil {
		return models.Statistics{}, fmt.Errorf("view: statistiques missing from response")
	}
	return *body.Statistics, nil
}

// TodayListings fetches GET /api/annonces/du-jour with the non-empty
// filters. The date filter is not sent.
func (c *Client) TodayListings(ctx context.Context, f models.Filters) ([]*models.Listing, error) {
	var body struct {
		Listings *[]*models.Listing `json:"annonces"`
	}
	if err := c.getJSON(ctx, c.TodayListingsURL(f), &body); err != nil {
		return nil, err
	}
	if body.Listings == nil {
		return nil, fmt.Errorf("view: annonces missing from response")
	}
	return *body.Listings, nil
}

// TodayListingsURL is the request URL TodayListings issues for f.
func (c *Client) TodayListingsURL(f models.Filters) string {
	u := c.baseURL + "/api/annonces/du-jour"
	if q := filterQuery(f).Encode(); q != "" {
		u += "?" + q
	}
	return u
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("view: build request %s: %w", url, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("view: GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("view: GET %s: unexpected status %s", url, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("view: decode %s: %w", url, err)
	}
	return nil
}
