package config

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/relpub/pkg/domain/types"
)

type requirement struct {
	name  string
	value string
	tag   goerr.Option
}

// Validate checks every value a publish or plan run needs and reports all
// missing ones in a single error. The error carries one tag per missing
// value.
func Validate(storage *Storage, gh *GitHub) error {
	reqs := []requirement{
		{name: "TARGET_BUCKET", value: storage.Bucket, tag: goerr.T(types.ErrTagMissingBucket)},
		{name: "S3_BASE_URL", value: storage.BaseURL, tag: goerr.T(types.ErrTagMissingBaseURL)},
		{name: "GITHUB_REPOSITORY", value: gh.RepoName(), tag: goerr.T(types.ErrTagMissingRepository)},
		{name: "GITHUB_REPOSITORY_OWNER", value: gh.Owner, tag: goerr.T(types.ErrTagMissingOwner)},
	}

	var missing []string
	opts := []goerr.Option{goerr.T(types.ErrTagConfig)}
	for _, r := range reqs {
		if r.value == "" {
			missing = append(missing, r.name)
			opts = append(opts, r.tag)
		}
	}

	if len(missing) == 0 {
		return nil
	}

	opts = append(opts, goerr.V("missing", missing))
	return goerr.New("required configuration is not set", opts...)
}
