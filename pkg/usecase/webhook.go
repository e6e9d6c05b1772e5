package usecase

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/relpub/pkg/domain/interfaces"
	"github.com/m-mizutani/relpub/pkg/domain/model"
	"github.com/m-mizutani/relpub/pkg/utils/async"
)

// Dispatcher runs handler outside of the request that triggered it
type Dispatcher func(ctx context.Context, handler func(ctx context.Context) error)

type webhookUseCase struct {
	publishUC  interfaces.PublishUseCase
	repository string
	dispatch   Dispatcher

	// publish runs write to the same output files
	mu sync.Mutex
}

// WebhookOption is a functional option for the webhook use case
type WebhookOption func(*webhookUseCase)

// WithDispatcher replaces async.Dispatch
func WithDispatcher(d Dispatcher) WebhookOption {
	return func(uc *webhookUseCase) {
		uc.dispatch = d
	}
}

// NewWebhook creates a new instance of WebhookUseCase. Only releases of
// repository (owner/repo) trigger a publish run.
func NewWebhook(publishUC interfaces.PublishUseCase, repository string, opts ...WebhookOption) *webhookUseCase {
	uc := &webhookUseCase{
		publishUC:  publishUC,
		repository: repository,
		dispatch:   async.Dispatch,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// ProcessEvent processes a webhook event. A released event of the configured
// repository starts a publish run in the background.
func (uc *webhookUseCase) ProcessEvent(ctx context.Context, event *model.WebhookEvent) error {
	logger := ctxlog.From(ctx)

	logger.Info("Processing webhook event",
		"id", event.ID,
		"type", event.Type,
		"action", event.Action,
		"repository", event.Repository,
		"sender", event.Sender,
		"supported", event.IsSupportedEvent(),
	)

	if !event.IsSupportedEvent() {
		logger.Debug("Ignoring unsupported event",
			"type", event.Type,
			"action", event.Action,
		)
		return nil
	}

	var releaseEvent github.ReleaseEvent
	if err := json.Unmarshal(event.RawPayload, &releaseEvent); err != nil {
		return goerr.Wrap(err, "failed to unmarshal release event", goerr.V("id", event.ID))
	}

	info, err := extractReleaseInfo(&releaseEvent)
	if err != nil {
		return err
	}

	if !strings.EqualFold(info.FullName(), uc.repository) {
		logger.Warn("Ignoring release of other repository",
			"repository", info.FullName(),
			"expected", uc.repository,
		)
		return nil
	}

	logger.Info("Release published, starting publish run",
		"repository", info.FullName(),
		"tag", info.TagName,
	)

	uc.dispatch(ctx, func(ctx context.Context) error {
		uc.mu.Lock()
		defer uc.mu.Unlock()

		if _, err := uc.publishUC.Publish(ctx); err != nil {
			return goerr.Wrap(err, "publish run triggered by webhook failed", goerr.V("tag", info.TagName))
		}
		return nil
	})

	return nil
}

// extractReleaseInfo extracts release information from a GitHub release event
func extractReleaseInfo(event *github.ReleaseEvent) (*model.ReleaseInfo, error) {
	if event.GetRepo() == nil {
		return nil, goerr.New("missing repository information in release event")
	}

	if event.GetRelease() == nil {
		return nil, goerr.New("missing release information in release event")
	}

	// Use Get*() helper methods for concise and nil-safe field access
	owner := event.GetRepo().GetOwner().GetLogin()
	repo := event.GetRepo().GetName()
	tagName := event.GetRelease().GetTagName()

	if owner == "" || repo == "" || tagName == "" {
		return nil, goerr.New("missing required fields in release event",
			goerr.V("owner", owner), goerr.V("repo", repo), goerr.V("tag_name", tagName))
	}

	return &model.ReleaseInfo{
		Owner:   owner,
		Repo:    repo,
		TagName: tagName,
	}, nil
}
