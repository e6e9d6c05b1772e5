package config

import (
	"strings"

	"github.com/urfave/cli/v3"
)

// GitHub holds the hosting API configuration. Variable names follow those
// GitHub Actions provides to a workflow.
type GitHub struct {
	Token      string `masq:"secret"`
	Repository string
	Owner      string
	APIURL     string
}

// Flags returns CLI flags for GitHub configuration
func (c *GitHub) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "github-token",
			Usage:       "Token for the GitHub API and asset downloads",
			Destination: &c.Token,
			Sources:     cli.EnvVars("GITHUB_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "github-repository",
			Usage:       "Repository to publish, as owner/repo",
			Destination: &c.Repository,
			Sources:     cli.EnvVars("GITHUB_REPOSITORY"),
		},
		&cli.StringFlag{
			Name:        "github-repository-owner",
			Usage:       "Owner of the repository",
			Destination: &c.Owner,
			Sources:     cli.EnvVars("GITHUB_REPOSITORY_OWNER"),
		},
		&cli.StringFlag{
			Name:        "github-api-url",
			Usage:       "GitHub API base URL (GitHub Enterprise)",
			Destination: &c.APIURL,
			Sources:     cli.EnvVars("GITHUB_API_URL"),
		},
	}
}

// RepoName returns the repository name without owner
func (c *GitHub) RepoName() string {
	if i := strings.LastIndex(c.Repository, "/"); i >= 0 {
		return c.Repository[i+1:]
	}
	return c.Repository
}

// FullName returns owner/repo
func (c *GitHub) FullName() string {
	return c.Owner + "/" + c.RepoName()
}
