package types

import (
	"errors"

	"github.com/m-mizutani/goerr/v2"
)

// Tags classify errors so that the CLI can pick a process exit code
var (
	ErrTagMissingBucket     = goerr.NewTag("missing_bucket")
	ErrTagMissingBaseURL    = goerr.NewTag("missing_base_url")
	ErrTagMissingRepository = goerr.NewTag("missing_repository")
	ErrTagMissingOwner      = goerr.NewTag("missing_owner")
	ErrTagConfig            = goerr.NewTag("config")
	ErrTagUpstream          = goerr.NewTag("upstream")
	ErrTagStorage           = goerr.NewTag("storage")
)

var (
	// ErrNoLatestRelease is returned when no release survives selection
	ErrNoLatestRelease = errors.New("no release available to mark as latest")

	// ErrIncompleteRelease is returned when a release lacks a required asset
	ErrIncompleteRelease = errors.New("release does not have all required assets")
)
