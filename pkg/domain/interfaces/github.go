package interfaces

import (
	"context"

	"github.com/m-mizutani/relpub/pkg/domain/model"
)

// GitHubClient defines operations for interacting with GitHub API
type GitHubClient interface {
	// ListReleases returns every release of the repository in the order the API lists them
	ListReleases(ctx context.Context, owner, repo string) ([]model.RawRelease, error)

	// GetLatestReleaseTag returns the tag name GitHub reports as the latest release
	GetLatestReleaseTag(ctx context.Context, owner, repo string) (string, error)

	// DownloadAsset downloads a release asset from its browser download URL
	DownloadAsset(ctx context.Context, url string) ([]byte, error)
}
