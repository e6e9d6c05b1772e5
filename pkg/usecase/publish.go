package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/relpub/pkg/domain/interfaces"
	"github.com/m-mizutani/relpub/pkg/domain/model"
	"github.com/m-mizutani/relpub/pkg/domain/types"
)

const (
	ManifestFileName = "manifest.json"
	LatestFileName   = "latest.json"

	jsonIndent = "  "
)

type publishUseCase struct {
	githubClient interfaces.GitHubClient
	storage      interfaces.Storage
	selector     *Selector
	notifiers    []interfaces.Notifier

	owner     string
	repo      string
	outputDir string
}

// PublishOption is a functional option for the publish use case
type PublishOption func(*publishUseCase)

// WithNotifier adds a notifier that runs at the end of Publish
func WithNotifier(n interfaces.Notifier) PublishOption {
	return func(uc *publishUseCase) {
		uc.notifiers = append(uc.notifiers, n)
	}
}

// WithOutputDir sets the directory manifest.json and latest.json are written to
func WithOutputDir(dir string) PublishOption {
	return func(uc *publishUseCase) {
		uc.outputDir = dir
	}
}

// NewPublish creates a new instance of PublishUseCase
func NewPublish(
	githubClient interfaces.GitHubClient,
	storage interfaces.Storage,
	selector *Selector,
	owner, repo string,
	opts ...PublishOption,
) interfaces.PublishUseCase {
	uc := &publishUseCase{
		githubClient: githubClient,
		storage:      storage,
		selector:     selector,
		owner:        owner,
		repo:         repo,
		outputDir:    ".",
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

func (uc *publishUseCase) fullName() string {
	return uc.owner + "/" + uc.repo
}

// Publish runs the whole pipeline. A returned error is fatal for the run.
func (uc *publishUseCase) Publish(ctx context.Context) (*model.PublishReport, error) {
	report := &model.PublishReport{
		RunID:      uuid.NewString(),
		Repository: uc.fullName(),
		StartedAt:  time.Now(),
		Uploaded:   []string{},
	}
	logger := ctxlog.From(ctx).With("run_id", report.RunID)
	ctx = ctxlog.With(ctx, logger)

	logger.Info("Starting publish run",
		"repository", report.Repository,
		"base_url", uc.selector.BaseURL(),
	)

	sel, err := uc.selectReleases(ctx)
	if err != nil {
		return nil, err
	}
	report.FetchedCount = sel.fetched
	report.PublishedCount = len(sel.Releases)

	manifest, err := uc.writeManifest(sel.Selection)
	if err != nil {
		return nil, err
	}
	logger.Info("Wrote manifest", "path", uc.outputPath(ManifestFileName), "releases", len(sel.Releases))

	if sel.Latest != nil {
		latest, err := uc.writeLatest(sel.Latest)
		if err != nil {
			return nil, err
		}
		report.Latest = sel.Latest.Name
		report.LatestWritten = true
		logger.Info("Wrote latest", "path", uc.outputPath(LatestFileName), "tag", sel.Latest.Name)

		uc.uploadDescriptor(ctx, ManifestFileName, manifest, report)
		uc.uploadDescriptor(ctx, LatestFileName, latest, report)
	} else {
		logger.Error("All releases were filtered, or not found in response. Unable to find latest release version.",
			"fetched", report.FetchedCount,
		)
	}

	if err := uc.uploadAssets(ctx, sel.Resolved, report); err != nil {
		return report, err
	}

	uc.notify(ctx, manifest, report)

	logger.Info("Publish run finished",
		"published", report.PublishedCount,
		"latest", report.Latest,
		"uploaded", len(report.Uploaded),
		"failures", len(report.Failures),
	)

	return report, nil
}

type fetchedSelection struct {
	*model.Selection
	fetched int
}

// selectReleases fetches releases and the latest tag and runs the selector.
// Only a failure to list releases is returned as an error.
func (uc *publishUseCase) selectReleases(ctx context.Context) (*fetchedSelection, error) {
	logger := ctxlog.From(ctx)

	raw, err := uc.githubClient.ListReleases(ctx, uc.owner, uc.repo)
	if err != nil {
		return nil, goerr.Wrap(err, "unable to request GitHub API data",
			goerr.V("repository", uc.fullName()), goerr.T(types.ErrTagUpstream))
	}
	logger.Info("Fetched releases", "count", len(raw))

	latestTag, err := uc.githubClient.GetLatestReleaseTag(ctx, uc.owner, uc.repo)
	if err != nil {
		logger.Warn("Failed to fetch latest release, falling back to newest release", "error", err)
		latestTag = ""
	}

	sel, err := uc.selector.Select(raw, latestTag)
	if err != nil && !errors.Is(err, types.ErrNoLatestRelease) {
		return nil, err
	}

	if len(sel.Incomplete) > 0 {
		logger.Warn("Skipped releases without all required assets", "tags", sel.Incomplete)
	}
	if latestTag != "" && sel.Latest != nil && sel.Latest.Name != latestTag {
		logger.Warn("Could not find latest release version tag in releases, using newest release",
			"latest_tag", latestTag,
			"fallback", sel.Latest.Name,
		)
	}

	return &fetchedSelection{Selection: sel, fetched: len(raw)}, nil
}

func (uc *publishUseCase) outputPath(name string) string {
	return filepath.Join(uc.outputDir, name)
}

func (uc *publishUseCase) writeManifest(sel *model.Selection) ([]byte, error) {
	return uc.writeJSON(ManifestFileName, sel.Releases)
}

func (uc *publishUseCase) writeLatest(latest *model.PublishableRelease) ([]byte, error) {
	return uc.writeJSON(LatestFileName, latest)
}

func (uc *publishUseCase) writeJSON(name string, v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", jsonIndent)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal descriptor", goerr.V("file", name))
	}

	path := uc.outputPath(name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, goerr.Wrap(err, "failed to write descriptor", goerr.V("path", path))
	}
	return data, nil
}

// uploadDescriptor uploads manifest.json or latest.json. Failures are logged only.
func (uc *publishUseCase) uploadDescriptor(ctx context.Context, key string, data []byte, report *model.PublishReport) {
	logger := ctxlog.From(ctx)

	if err := uc.storage.Put(ctx, key, data, model.MIMEJSON); err != nil {
		logger.Error("Failed to upload descriptor", "key", key, "error", err)
		report.Failures = append(report.Failures, model.UploadFailure{
			Key:    key,
			Source: uc.outputPath(key),
			Reason: err.Error(),
		})
		return
	}

	report.Uploaded = append(report.Uploaded, key)
	logger.Info("Uploaded descriptor", "key", key)
}

// uploadAssets republishes every asset of every resolved release. A download
// failure skips the asset; a storage failure aborts the run.
func (uc *publishUseCase) uploadAssets(ctx context.Context, releases []model.ResolvedRelease, report *model.PublishReport) error {
	logger := ctxlog.From(ctx)

	for _, release := range releases {
		for _, kr := range release.Refs() {
			key := ObjectKey(release.Name, kr.Ref.Name)

			data, err := uc.githubClient.DownloadAsset(ctx, kr.Ref.DownloadURL)
			if err != nil {
				logger.Error("Failed to download asset",
					"url", kr.Ref.DownloadURL,
					"release", release.Name,
					"error", err,
				)
				report.Failures = append(report.Failures, model.UploadFailure{
					Key:    key,
					Source: kr.Ref.DownloadURL,
					Reason: err.Error(),
				})
				continue
			}

			if err := uc.storage.Put(ctx, key, data, uc.selector.ContentType(kr.Kind)); err != nil {
				return goerr.Wrap(err, "failed to upload asset",
					goerr.V("key", key),
					goerr.V("source", kr.Ref.DownloadURL),
					goerr.T(types.ErrTagStorage),
				)
			}

			report.Uploaded = append(report.Uploaded, key)
			logger.Info("Uploaded asset", "key", key, "size_bytes", len(data))
		}
	}

	return nil
}

// notify sends the summary to every notifier. Errors are logged only.
func (uc *publishUseCase) notify(ctx context.Context, manifest []byte, report *model.PublishReport) {
	logger := ctxlog.From(ctx)

	n := &model.Notification{
		Repository: uc.fullName(),
		BaseURL:    uc.selector.BaseURL(),
		Report:     report,
		Manifest:   manifest,
	}

	for _, notifier := range uc.notifiers {
		if err := notifier.Notify(ctx, n); err != nil {
			logger.Error("Failed to send notification", "error", err)
		}
	}
}

// Plan fetches and selects releases and reports the storage objects Publish
// would write, marking those that already exist.
func (uc *publishUseCase) Plan(ctx context.Context) (*model.Plan, error) {
	sel, err := uc.selectReleases(ctx)
	if err != nil {
		return nil, err
	}

	existing, err := uc.existingKeys(ctx)
	if err != nil {
		return nil, err
	}

	plan := &model.Plan{Selection: sel.Selection}
	if sel.Latest != nil {
		for _, name := range []string{ManifestFileName, LatestFileName} {
			plan.Entries = append(plan.Entries, model.PlanEntry{
				Key:         name,
				Source:      uc.outputPath(name),
				ContentType: model.MIMEJSON,
				Exists:      slices.Contains(existing, name),
			})
		}
	}

	for _, release := range sel.Resolved {
		for _, kr := range release.Refs() {
			key := ObjectKey(release.Name, kr.Ref.Name)
			plan.Entries = append(plan.Entries, model.PlanEntry{
				Key:         key,
				Source:      kr.Ref.DownloadURL,
				ContentType: uc.selector.ContentType(kr.Kind),
				Exists:      slices.Contains(existing, key),
			})
		}
	}

	return plan, nil
}

func (uc *publishUseCase) existingKeys(ctx context.Context) ([]string, error) {
	keys, err := uc.storage.List(ctx, "")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list storage objects", goerr.T(types.ErrTagStorage))
	}
	return keys, nil
}
