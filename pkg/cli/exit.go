package cli

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/relpub/pkg/domain/types"
)

const (
	ExitOK                = 0
	ExitFailure           = 1
	ExitMissingBucket     = 3
	ExitMissingBaseURL    = 4
	ExitMissingRepository = 5
	ExitMissingOwner      = 6
)

// ExitCode maps an error returned by Run to the process exit code. When
// several required values are missing, the first in the order bucket, base
// URL, repository, owner decides.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case goerr.HasTag(err, types.ErrTagMissingBucket):
		return ExitMissingBucket
	case goerr.HasTag(err, types.ErrTagMissingBaseURL):
		return ExitMissingBaseURL
	case goerr.HasTag(err, types.ErrTagMissingRepository):
		return ExitMissingRepository
	case goerr.HasTag(err, types.ErrTagMissingOwner):
		return ExitMissingOwner
	default:
		return ExitFailure
	}
}
