// Package trending fetches the trending repository feed used to seed the
// nightly idea pipeline.
package trending

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Repo is one entry of the trending feed.
type Repo struct {
	Author      string `json:"author"`
	Name        string `json:"name"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Language    string `json:"language"`
	Stars       int    `json:"stars"`
	Forks       int    `json:"forks"`
}

// FullName joins author and repository name the way the feed displays them.
func (r Repo) FullName() string {
	if r.Author == "" {
		return r.Name
	}
	return r.Author + "/" + r.Name
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Fetch returns trending repos for a language and period (daily, weekly,
// monthly). Empty language means all languages.
func (c *Client) Fetch(ctx context.Context, language, period string) ([]Repo, error) {
	params := url.Values{}
	if language != "" {
		params.Set("language", language)
	}
	if period != "" {
		params.Set("since", period)
	}

	endpoint := c.baseURL + "/repositories"
	if enc := params.Encode(); enc != "" {
		endpoint += "?" + enc
	}
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch trending: %w", err)
	}
	defer resp.Body.Close()

	respBytes, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("trending feed returned status %d: %s", resp.StatusCode, string(respBytes))
	}

	var repos []Repo
	if err := json.Unmarshal(respBytes, &repos); err != nil {
		return nil, fmt.Errorf("decode trending feed: %w", err)
	}
	return repos, nil
}
