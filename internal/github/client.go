// Package github provides a thin client for the GitHub repository
// listing API used by the profile views.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"devconnector/internal/apperr"
)

const (
	defaultBaseURL = "https://api.github.com"
	// the profile page shows the five most recently created repos
	reposPerPage = 5
)

// Repo is the subset of GitHub repository fields relayed to clients.
type Repo struct {
	Name        string `json:"name"`
	HTMLURL     string `json:"html_url"`
	Description string `json:"description"`
	Stargazers  int    `json:"stargazers_count"`
	Watchers    int    `json:"watchers_count"`
	Forks       int    `json:"forks_count"`
}

// Client calls the GitHub API. A token is optional and only raises rate
// limits.
type Client struct {
	httpClient *http.Client
	baseURL    string // overridable for tests
	token      string
}

func NewClient(httpClient *http.Client, token string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    defaultBaseURL,
		token:      token,
	}
}

// ListRepos fetches the newest public repositories of a username. An
// unknown username maps to a not-found error; any other non-200 response
// degrades to an internal error without exposing upstream detail.
func (c *Client) ListRepos(ctx context.Context, username string) ([]Repo, error) {
	if username == "" {
		return nil, apperr.InvalidArg("github username is required")
	}

	endpoint := fmt.Sprintf("%s/users/%s/repos?per_page=%d&sort=created&direction=desc",
		c.baseURL, url.PathEscape(username), reposPerPage)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, apperr.Internal("build github request", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", "devconnector")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperr.Internal("call github", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, apperr.NotFound("no github profile found")
	case resp.StatusCode != http.StatusOK:
		return nil, apperr.Internal("github response", fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, apperr.Internal("read github response", err)
	}

	var repos []Repo
	if err := json.Unmarshal(body, &repos); err != nil {
		return nil, apperr.Internal("decode github response", err)
	}
	return repos, nil
}
