package github

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/relpub/pkg/domain/interfaces"
	"github.com/m-mizutani/relpub/pkg/domain/model"
)

const releasesPerPage = 100

type client struct {
	githubClient *github.Client
	httpClient   *http.Client
	token        string
}

// Option is a functional option for the GitHub client
type Option func(*config)

type config struct {
	baseURL    string
	httpClient *http.Client
}

// WithBaseURL points the client at a GitHub Enterprise or test API endpoint
func WithBaseURL(baseURL string) Option {
	return func(c *config) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets the HTTP client used for API calls and asset downloads
func WithHTTPClient(hc *http.Client) Option {
	return func(c *config) {
		c.httpClient = hc
	}
}

// NewClient creates a new GitHub client authenticated with a personal or
// workflow token. An empty token makes unauthenticated requests.
func NewClient(token string, opts ...Option) (interfaces.GitHubClient, error) {
	cfg := &config{
		httpClient: &http.Client{Timeout: 5 * time.Minute},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	githubClient := github.NewClient(cfg.httpClient)
	if token != "" {
		githubClient = githubClient.WithAuthToken(token)
	}

	if cfg.baseURL != "" {
		baseURL := cfg.baseURL
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to parse GitHub API base URL", goerr.V("base_url", baseURL))
		}
		githubClient.BaseURL = u
	}

	return &client{
		githubClient: githubClient,
		httpClient:   cfg.httpClient,
		token:        token,
	}, nil
}

// ListReleases returns all releases, following pagination
func (c *client) ListReleases(ctx context.Context, owner, repo string) ([]model.RawRelease, error) {
	var releases []model.RawRelease

	opt := &github.ListOptions{PerPage: releasesPerPage}
	for {
		page, resp, err := c.githubClient.Repositories.ListReleases(ctx, owner, repo, opt)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list releases",
				goerr.V("owner", owner), goerr.V("repo", repo), goerr.V("page", opt.Page))
		}
		if resp.StatusCode != http.StatusOK {
			return nil, goerr.New("unexpected status code from releases API",
				goerr.V("status", resp.StatusCode), goerr.V("owner", owner), goerr.V("repo", repo))
		}

		for _, r := range page {
			raw, err := toRawRelease(r)
			if err != nil {
				return nil, err
			}
			releases = append(releases, raw)
		}

		if resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
	}

	return releases, nil
}

// GetLatestReleaseTag returns the tag name of the latest release
func (c *client) GetLatestReleaseTag(ctx context.Context, owner, repo string) (string, error) {
	release, resp, err := c.githubClient.Repositories.GetLatestRelease(ctx, owner, repo)
	if err != nil {
		return "", goerr.Wrap(err, "failed to get latest release",
			goerr.V("owner", owner), goerr.V("repo", repo))
	}
	if resp.StatusCode != http.StatusOK {
		return "", goerr.New("unexpected status code from latest release API",
			goerr.V("status", resp.StatusCode), goerr.V("owner", owner), goerr.V("repo", repo))
	}
	if release.GetTagName() == "" {
		return "", goerr.New("latest release has no tag_name", goerr.V("owner", owner), goerr.V("repo", repo))
	}

	return release.GetTagName(), nil
}

// toRawRelease converts an API release. A release without tag_name means the
// payload is not what we expect.
func toRawRelease(r *github.RepositoryRelease) (model.RawRelease, error) {
	if r == nil || r.GetTagName() == "" {
		return model.RawRelease{}, goerr.New("unexpected response from GitHub API: release without tag_name",
			goerr.V("id", r.GetID()))
	}

	raw := model.RawRelease{
		TagName: r.GetTagName(),
		Assets:  make([]model.Asset, 0, len(r.Assets)),
	}
	if r.PublishedAt != nil {
		raw.PublishedAt = r.PublishedAt.UTC().Format(time.RFC3339)
	}
	for _, a := range r.Assets {
		raw.Assets = append(raw.Assets, model.Asset{
			Name:               a.GetName(),
			BrowserDownloadURL: a.GetBrowserDownloadURL(),
		})
	}

	return raw, nil
}

// DownloadAsset downloads a release asset following redirects. The token is
// sent as a bearer header; net/http drops it when a redirect leaves the host.
func (c *client) DownloadAsset(ctx context.Context, assetURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, assetURL, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create download request", goerr.V("url", assetURL))
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/octet-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to download asset", goerr.V("url", assetURL))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, goerr.New("unexpected status code for asset download",
			goerr.V("status", resp.StatusCode), goerr.V("url", assetURL))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read asset body", goerr.V("url", assetURL))
	}

	return data, nil
}
