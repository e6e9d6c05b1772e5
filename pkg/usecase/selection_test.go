package usecase_test

import (
	"errors"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/relpub/pkg/domain/model"
	"github.com/m-mizutani/relpub/pkg/domain/types"
	"github.com/m-mizutani/relpub/pkg/usecase"
)

const testBaseURL = "https://bucket.example.com/"

func newSelector(t *testing.T) *usecase.Selector {
	t.Helper()
	s, err := usecase.NewSelector(model.DefaultRules(), testBaseURL)
	gt.NoError(t, err)
	return s
}

// fullAssets returns the three required assets for a release tag
func fullAssets(tag string) []model.Asset {
	return []model.Asset{
		{Name: "connector-1.0.0-full.jar", BrowserDownloadURL: "https://github.com/o/r/releases/download/" + tag + "/connector-1.0.0-full.jar"},
		{Name: "CumulocityConnectorConfig.json", BrowserDownloadURL: "https://github.com/o/r/releases/download/" + tag + "/CumulocityConnectorConfig.json"},
		{Name: "jvmrun", BrowserDownloadURL: "https://github.com/o/r/releases/download/" + tag + "/jvmrun"},
	}
}

func release(tag, publishedAt string, assets []model.Asset) model.RawRelease {
	return model.RawRelease{TagName: tag, PublishedAt: publishedAt, Assets: assets}
}

func tags(releases []model.RawRelease) []string {
	var out []string
	for _, r := range releases {
		out = append(out, r.TagName)
	}
	return out
}

func TestNewSelector(t *testing.T) {
	t.Run("nil rules uses defaults", func(t *testing.T) {
		s, err := usecase.NewSelector(nil, testBaseURL)
		gt.NoError(t, err)
		gt.Value(t, s.ContentType(model.AssetKindJar)).Equal(model.MIMEJar)
	})

	t.Run("invalid pattern", func(t *testing.T) {
		rules := model.DefaultRules()
		rules.Assets[model.AssetKindJVMRun] = model.AssetRule{Pattern: "(unclosed"}
		_, err := usecase.NewSelector(rules, testBaseURL)
		gt.Error(t, err)
	})

	t.Run("missing pattern", func(t *testing.T) {
		rules := model.DefaultRules()
		delete(rules.Assets, model.AssetKindConfiguration)
		_, err := usecase.NewSelector(rules, testBaseURL)
		gt.Error(t, err)
	})
}

func TestSelector_Filter(t *testing.T) {
	s := newSelector(t)

	input := []model.RawRelease{
		release("v1.2.0", "2024-03-01T00:00:00Z", nil),
		release("v1.2.0-beta", "2024-02-01T00:00:00Z", nil),
		release("v1.1.0-alpha.1", "2024-01-01T00:00:00Z", nil),
		release("v1.1.0-pre", "2023-12-01T00:00:00Z", nil),
		release("v1.0.0", "2023-11-01T00:00:00Z", nil),
		release("v0.9.0-BETA", "2023-10-01T00:00:00Z", nil),
		release("prerelease-1", "2023-09-01T00:00:00Z", nil),
	}

	t.Run("drops disqualified tags and keeps order", func(t *testing.T) {
		got := s.Filter(input)
		// matching is case sensitive, so -BETA survives
		gt.Value(t, tags(got)).Equal([]string{"v1.2.0", "v1.0.0", "v0.9.0-BETA"})
	})

	t.Run("idempotent", func(t *testing.T) {
		once := s.Filter(input)
		twice := s.Filter(once)
		gt.Value(t, twice).Equal(once)
	})

	t.Run("does not modify input", func(t *testing.T) {
		_ = s.Filter(input)
		gt.Number(t, len(input)).Equal(7)
		gt.Value(t, input[1].TagName).Equal("v1.2.0-beta")
	})

	t.Run("empty input", func(t *testing.T) {
		gt.Number(t, len(s.Filter(nil))).Equal(0)
	})
}

func TestSortByPublished(t *testing.T) {
	input := []model.RawRelease{
		release("v1.0.0", "2023-11-01T00:00:00Z", nil),
		release("v1.2.0", "2024-03-01T00:00:00Z", nil),
		release("tie-a", "2024-01-01T00:00:00Z", nil),
		release("v0.9.0", "2023-10-01T00:00:00Z", nil),
		release("tie-b", "2024-01-01T00:00:00Z", nil),
	}

	t.Run("newest first with stable ties", func(t *testing.T) {
		got := usecase.SortByPublished(input)
		gt.Value(t, tags(got)).Equal([]string{"v1.2.0", "tie-a", "tie-b", "v1.0.0", "v0.9.0"})
	})

	t.Run("idempotent", func(t *testing.T) {
		once := usecase.SortByPublished(input)
		twice := usecase.SortByPublished(once)
		gt.Value(t, twice).Equal(once)
	})

	t.Run("input is untouched", func(t *testing.T) {
		_ = usecase.SortByPublished(input)
		gt.Value(t, input[0].TagName).Equal("v1.0.0")
	})
}

func TestSelector_Resolve(t *testing.T) {
	s := newSelector(t)

	t.Run("all assets found", func(t *testing.T) {
		r := s.Resolve(release("v1.0.0", "2024-01-01T00:00:00Z", fullAssets("v1.0.0")))
		gt.True(t, r.IsComplete())
		gt.Value(t, r.Name).Equal("v1.0.0")
		gt.Value(t, r.Jar.Name).Equal("connector-1.0.0-full.jar")
		gt.Value(t, r.Configuration.Name).Equal("CumulocityConnectorConfig.json")
		gt.Value(t, r.JVMRun.Name).Equal("jvmrun")
		gt.Value(t, r.JVMRun.DownloadURL).Equal("https://github.com/o/r/releases/download/v1.0.0/jvmrun")
	})

	t.Run("first match wins", func(t *testing.T) {
		assets := append([]model.Asset{
			{Name: "jvmrun-debug", BrowserDownloadURL: "https://example.com/jvmrun-debug"},
		}, fullAssets("v1.0.0")...)
		r := s.Resolve(release("v1.0.0", "", assets))
		gt.Value(t, r.JVMRun.Name).Equal("jvmrun-debug")
	})

	t.Run("jar needs a versioned name", func(t *testing.T) {
		r := s.Resolve(release("v1.0.0", "", []model.Asset{
			{Name: "connector.jar"},
			{Name: "connector-1.0-full.jar"},
			{Name: "sources-1.0.0.jar"},
		}))
		gt.Value(t, r.Jar).Nil()
	})

	t.Run("run script must be a prefix", func(t *testing.T) {
		r := s.Resolve(release("v1.0.0", "", []model.Asset{{Name: "start-jvmrun"}}))
		gt.Value(t, r.JVMRun).Nil()
	})

	t.Run("only a jar", func(t *testing.T) {
		r := s.Resolve(release("v1.0.0", "", fullAssets("v1.0.0")[:1]))
		gt.Value(t, r.Jar).NotNil()
		gt.Value(t, r.Configuration).Nil()
		gt.Value(t, r.JVMRun).Nil()
		gt.Value(t, r.IsComplete()).Equal(false)
	})

	t.Run("deterministic", func(t *testing.T) {
		in := release("v1.0.0", "", fullAssets("v1.0.0"))
		gt.Value(t, s.Resolve(in)).Equal(s.Resolve(in))
	})
}

func TestSelector_Rewrite(t *testing.T) {
	s := newSelector(t)

	t.Run("points urls at storage", func(t *testing.T) {
		resolved := s.Resolve(release("v1.0.0", "", fullAssets("v1.0.0")))
		got, err := s.Rewrite(resolved)
		gt.NoError(t, err)

		gt.Value(t, got.Name).Equal("v1.0.0")
		gt.Value(t, got.Jar).Equal(model.AssetRef{
			Name:        "connector-1.0.0-full.jar",
			DownloadURL: "https://bucket.example.com/v1.0.0/connector-1.0.0-full.jar",
		})
		gt.Value(t, got.Configuration.DownloadURL).Equal("https://bucket.example.com/v1.0.0/CumulocityConnectorConfig.json")
		gt.Value(t, got.JVMRun.DownloadURL).Equal("https://bucket.example.com/v1.0.0/jvmrun")
	})

	t.Run("input is not mutated", func(t *testing.T) {
		resolved := s.Resolve(release("v1.0.0", "", fullAssets("v1.0.0")))
		before := resolved.Clone()

		got, err := s.Rewrite(resolved)
		gt.NoError(t, err)
		gt.Value(t, resolved).Equal(before)

		// changes to either side do not leak into the other
		got.Jar.DownloadURL = "changed"
		resolved.JVMRun.Name = "changed"
		gt.Value(t, before.Jar.DownloadURL).Equal(resolved.Jar.DownloadURL)
		gt.Value(t, got.JVMRun.Name).Equal("jvmrun")
	})

	t.Run("incomplete release is rejected", func(t *testing.T) {
		resolved := s.Resolve(release("v1.0.0", "", fullAssets("v1.0.0")[:2]))
		_, err := s.Rewrite(resolved)
		gt.Error(t, err)
		gt.True(t, errors.Is(err, types.ErrIncompleteRelease))
	})
}

func TestSelectLatest(t *testing.T) {
	releases := []model.PublishableRelease{
		{Name: "v1.2.0"},
		{Name: "v1.1.0"},
		{Name: "v1.0.0"},
	}

	t.Run("reported latest is in list", func(t *testing.T) {
		got, err := usecase.SelectLatest(releases, "v1.1.0")
		gt.NoError(t, err)
		gt.Value(t, got.Name).Equal("v1.1.0")
	})

	t.Run("reported latest is missing", func(t *testing.T) {
		got, err := usecase.SelectLatest(releases, "v2.0.0-beta")
		gt.NoError(t, err)
		gt.Value(t, got.Name).Equal("v1.2.0")
	})

	t.Run("no reported latest", func(t *testing.T) {
		got, err := usecase.SelectLatest(releases, "")
		gt.NoError(t, err)
		gt.Value(t, got.Name).Equal("v1.2.0")
	})

	t.Run("empty list fails", func(t *testing.T) {
		got, err := usecase.SelectLatest(nil, "v1.0.0")
		gt.Error(t, err)
		gt.True(t, errors.Is(err, types.ErrNoLatestRelease))
		gt.Value(t, got).Nil()
	})

	t.Run("returned value is a copy", func(t *testing.T) {
		got, err := usecase.SelectLatest(releases, "v1.0.0")
		gt.NoError(t, err)
		got.Name = "changed"
		gt.Value(t, releases[2].Name).Equal("v1.0.0")
	})
}

func TestSelector_Select(t *testing.T) {
	s := newSelector(t)

	t.Run("beta release is excluded", func(t *testing.T) {
		sel, err := s.Select([]model.RawRelease{
			release("v1.0.0-beta", "2024-02-01T00:00:00Z", fullAssets("v1.0.0-beta")),
			release("v1.0.0", "2024-01-01T00:00:00Z", fullAssets("v1.0.0")),
		}, "v1.0.0")
		gt.NoError(t, err)
		gt.Number(t, len(sel.Releases)).Equal(1)
		gt.Value(t, sel.Releases[0].Name).Equal("v1.0.0")
		gt.Value(t, sel.Latest.Name).Equal("v1.0.0")
	})

	t.Run("incomplete release is dropped", func(t *testing.T) {
		sel, err := s.Select([]model.RawRelease{
			release("v1.1.0", "2024-02-01T00:00:00Z", fullAssets("v1.1.0")[:1]),
			release("v1.0.0", "2024-01-01T00:00:00Z", fullAssets("v1.0.0")),
		}, "")
		gt.NoError(t, err)
		gt.Number(t, len(sel.Releases)).Equal(1)
		gt.Number(t, len(sel.Resolved)).Equal(1)
		gt.Value(t, sel.Incomplete).Equal([]string{"v1.1.0"})
		gt.Value(t, sel.Latest.Name).Equal("v1.0.0")
	})

	t.Run("resolved and releases line up", func(t *testing.T) {
		sel, err := s.Select([]model.RawRelease{
			release("v1.0.0", "2024-01-01T00:00:00Z", fullAssets("v1.0.0")),
			release("v1.1.0", "2024-02-01T00:00:00Z", fullAssets("v1.1.0")),
		}, "")
		gt.NoError(t, err)
		gt.Number(t, len(sel.Releases)).Equal(2)
		for i := range sel.Releases {
			gt.Value(t, sel.Resolved[i].Name).Equal(sel.Releases[i].Name)
		}
		gt.Value(t, sel.Releases[0].Name).Equal("v1.1.0")
		gt.String(t, sel.Resolved[0].Jar.DownloadURL).Contains("github.com")
		gt.String(t, sel.Releases[0].Jar.DownloadURL).Contains(testBaseURL)
	})

	t.Run("nothing survives", func(t *testing.T) {
		sel, err := s.Select([]model.RawRelease{
			release("v1.0.0", "2024-01-01T00:00:00Z", fullAssets("v1.0.0")[:1]),
		}, "v1.0.0")
		gt.Error(t, err)
		gt.True(t, errors.Is(err, types.ErrNoLatestRelease))
		gt.Value(t, sel).NotNil()
		gt.Number(t, len(sel.Releases)).Equal(0)
		gt.Value(t, sel.Latest).Nil()
	})
}
