package cli

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/relpub/pkg/cli/config"
	"github.com/m-mizutani/relpub/pkg/domain/interfaces"
	"github.com/m-mizutani/relpub/pkg/infra/github"
	"github.com/m-mizutani/relpub/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// pipeline is the configuration shared by publish, plan and serve
type pipeline struct {
	github  config.GitHub
	storage config.Storage
	notify  config.Notify
	rules   config.Rules
	output  config.Output
}

func (p *pipeline) Flags() []cli.Flag {
	var flags []cli.Flag
	flags = append(flags, p.github.Flags()...)
	flags = append(flags, p.storage.Flags()...)
	flags = append(flags, p.notify.Flags()...)
	flags = append(flags, p.rules.Flags()...)
	flags = append(flags, p.output.Flags()...)
	return flags
}

// build validates configuration and wires the publish use case. The returned
// function releases storage clients.
func (p *pipeline) build(ctx context.Context) (interfaces.PublishUseCase, func(), error) {
	if err := config.Validate(&p.storage, &p.github); err != nil {
		return nil, nil, err
	}

	ctxlog.From(ctx).Debug("Configuration",
		slog.Any("github", p.github),
		slog.Any("storage", p.storage),
		slog.Any("notify", p.notify),
		slog.String("rules", p.rules.Path),
		slog.String("output_dir", p.output.Dir),
	)

	rules, err := p.rules.Load()
	if err != nil {
		return nil, nil, err
	}
	selector, err := usecase.NewSelector(rules, p.storage.BaseURL)
	if err != nil {
		return nil, nil, err
	}

	if err := p.output.Prepare(); err != nil {
		return nil, nil, err
	}

	var ghOpts []github.Option
	if p.github.APIURL != "" {
		ghOpts = append(ghOpts, github.WithBaseURL(p.github.APIURL))
	}
	ghClient, err := github.NewClient(p.github.Token, ghOpts...)
	if err != nil {
		return nil, nil, err
	}

	store, closeStorage, err := p.storage.New(ctx)
	if err != nil {
		return nil, nil, err
	}

	notifiers, err := p.notify.Notifiers(ctx)
	if err != nil {
		closeStorage()
		return nil, nil, err
	}

	opts := []usecase.PublishOption{usecase.WithOutputDir(p.output.Dir)}
	for _, n := range notifiers {
		opts = append(opts, usecase.WithNotifier(n))
	}

	uc := usecase.NewPublish(ghClient, store, selector, p.github.Owner, p.github.RepoName(), opts...)
	return uc, closeStorage, nil
}
