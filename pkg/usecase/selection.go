package usecase

import (
	"regexp"
	"slices"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/relpub/pkg/domain/model"
	"github.com/m-mizutani/relpub/pkg/domain/types"
)

// Selector turns the raw release list into the releases to publish
type Selector struct {
	excludeTags  []string
	patterns     map[model.AssetKind]*regexp.Regexp
	contentTypes map[model.AssetKind]string
	baseURL      string
}

// NewSelector compiles rules. baseURL is the public URL prefix of the storage
// bucket and must end with "/" if a separator is wanted.
func NewSelector(rules *model.Rules, baseURL string) (*Selector, error) {
	if rules == nil {
		rules = model.DefaultRules()
	}

	s := &Selector{
		excludeTags:  slices.Clone(rules.ExcludeTags),
		patterns:     make(map[model.AssetKind]*regexp.Regexp, len(model.AssetKinds)),
		contentTypes: make(map[model.AssetKind]string, len(model.AssetKinds)),
		baseURL:      baseURL,
	}

	for _, kind := range model.AssetKinds {
		rule, ok := rules.Assets[kind]
		if !ok || rule.Pattern == "" {
			return nil, goerr.New("asset pattern is not defined",
				goerr.V("kind", kind), goerr.T(types.ErrTagConfig))
		}
		re, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to compile asset pattern",
				goerr.V("kind", kind), goerr.V("pattern", rule.Pattern), goerr.T(types.ErrTagConfig))
		}
		s.patterns[kind] = re
		s.contentTypes[kind] = rule.ContentType
	}

	return s, nil
}

// BaseURL returns the storage URL prefix used by Rewrite
func (s *Selector) BaseURL() string {
	return s.baseURL
}

// ContentType returns the MIME type an asset kind is stored with
func (s *Selector) ContentType(kind model.AssetKind) string {
	if ct := s.contentTypes[kind]; ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// Filter drops releases whose tag contains any excluded substring. Order is
// preserved.
func (s *Selector) Filter(releases []model.RawRelease) []model.RawRelease {
	filtered := make([]model.RawRelease, 0, len(releases))
	for _, r := range releases {
		if s.isExcluded(r.TagName) {
			continue
		}
		filtered = append(filtered, r)
	}
	return filtered
}

func (s *Selector) isExcluded(tag string) bool {
	for _, sub := range s.excludeTags {
		if sub != "" && strings.Contains(tag, sub) {
			return true
		}
	}
	return false
}

// SortByPublished returns a copy of releases ordered newest first. The
// timestamps are compared as strings, which matches chronological order for
// the fixed-width UTC format GitHub returns. Ties keep their input order.
func SortByPublished(releases []model.RawRelease) []model.RawRelease {
	sorted := slices.Clone(releases)
	slices.SortStableFunc(sorted, func(a, b model.RawRelease) int {
		return strings.Compare(b.PublishedAt, a.PublishedAt)
	})
	return sorted
}

// Resolve finds the first asset matching each pattern
func (s *Selector) Resolve(release model.RawRelease) model.ResolvedRelease {
	return model.ResolvedRelease{
		Name:          release.TagName,
		Jar:           findAsset(release.Assets, s.patterns[model.AssetKindJar]),
		Configuration: findAsset(release.Assets, s.patterns[model.AssetKindConfiguration]),
		JVMRun:        findAsset(release.Assets, s.patterns[model.AssetKindJVMRun]),
	}
}

func findAsset(assets []model.Asset, re *regexp.Regexp) *model.AssetRef {
	for _, a := range assets {
		if re.MatchString(a.Name) {
			return &model.AssetRef{Name: a.Name, DownloadURL: a.BrowserDownloadURL}
		}
	}
	return nil
}

// Rewrite returns the release with download URLs pointing at the storage
// location {baseURL}{release}/{asset}. The input is not modified.
func (s *Selector) Rewrite(release model.ResolvedRelease) (model.PublishableRelease, error) {
	if !release.IsComplete() {
		return model.PublishableRelease{}, goerr.Wrap(types.ErrIncompleteRelease, "cannot rewrite release",
			goerr.V("release", release.Name))
	}

	return model.PublishableRelease{
		Name:          release.Name,
		Jar:           s.rewriteRef(release.Name, *release.Jar),
		Configuration: s.rewriteRef(release.Name, *release.Configuration),
		JVMRun:        s.rewriteRef(release.Name, *release.JVMRun),
	}, nil
}

func (s *Selector) rewriteRef(releaseName string, ref model.AssetRef) model.AssetRef {
	return model.AssetRef{
		Name:        ref.Name,
		DownloadURL: s.baseURL + ObjectKey(releaseName, ref.Name),
	}
}

// ObjectKey is the storage key of an asset of a release
func ObjectKey(releaseName, assetName string) string {
	return releaseName + "/" + assetName
}

// SelectLatest picks the release named latestTag. If latestTag is empty or not
// in releases, the first release is used, which is the newest one when
// releases come from SortByPublished.
func SelectLatest(releases []model.PublishableRelease, latestTag string) (*model.PublishableRelease, error) {
	if latestTag != "" {
		if idx := slices.IndexFunc(releases, func(r model.PublishableRelease) bool {
			return r.Name == latestTag
		}); idx >= 0 {
			latest := releases[idx]
			return &latest, nil
		}
	}

	if len(releases) == 0 {
		return nil, goerr.Wrap(types.ErrNoLatestRelease, "all releases were filtered out",
			goerr.V("latest_tag", latestTag))
	}

	latest := releases[0]
	return &latest, nil
}

// Select runs filter, sort, resolve and rewrite over releases and picks the
// latest one. A nil Latest with a non-nil error wrapping ErrNoLatestRelease
// means no release survived; the returned selection is still usable.
func (s *Selector) Select(releases []model.RawRelease, latestTag string) (*model.Selection, error) {
	sel := &model.Selection{
		Resolved: []model.ResolvedRelease{},
		Releases: []model.PublishableRelease{},
	}

	for _, raw := range SortByPublished(s.Filter(releases)) {
		resolved := s.Resolve(raw)
		if !resolved.IsComplete() {
			sel.Incomplete = append(sel.Incomplete, resolved.Name)
			continue
		}
		published, err := s.Rewrite(resolved)
		if err != nil {
			return nil, err
		}
		sel.Resolved = append(sel.Resolved, resolved)
		sel.Releases = append(sel.Releases, published)
	}

	latest, err := SelectLatest(sel.Releases, latestTag)
	if err != nil {
		return sel, err
	}
	sel.Latest = latest
	return sel, nil
}
