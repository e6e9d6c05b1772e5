package model

// Asset is a single downloadable file attached to a release
type Asset struct {
	Name               string
	BrowserDownloadURL string
}

// RawRelease is a release as reported by the hosting API. It is not modified
// after it is fetched.
type RawRelease struct {
	TagName     string
	PublishedAt string // ISO-8601, UTC, e.g. 2024-01-02T03:04:05Z
	Assets      []Asset
}

// AssetRef points to a resolved asset and the location it can be downloaded from
type AssetRef struct {
	Name        string `json:"name"`
	DownloadURL string `json:"download_url"`
}

// ResolvedRelease holds the required assets found in a RawRelease. Missing
// assets are nil.
type ResolvedRelease struct {
	Name          string    `json:"name"`
	Jar           *AssetRef `json:"jar,omitempty"`
	Configuration *AssetRef `json:"configuration,omitempty"`
	JVMRun        *AssetRef `json:"jvmRun,omitempty"`
}

// IsComplete reports whether all three required assets were resolved
func (r *ResolvedRelease) IsComplete() bool {
	return r != nil && r.Jar != nil && r.Configuration != nil && r.JVMRun != nil
}

// Refs returns the resolved assets paired with their kind, in upload order.
// Missing assets are skipped.
func (r *ResolvedRelease) Refs() []KindRef {
	var refs []KindRef
	for _, kr := range []KindRef{
		{Kind: AssetKindJar, Ref: r.Jar},
		{Kind: AssetKindConfiguration, Ref: r.Configuration},
		{Kind: AssetKindJVMRun, Ref: r.JVMRun},
	} {
		if kr.Ref != nil {
			refs = append(refs, kr)
		}
	}
	return refs
}

// Clone returns a copy of r that shares no memory with it
func (r ResolvedRelease) Clone() ResolvedRelease {
	return ResolvedRelease{
		Name:          r.Name,
		Jar:           cloneRef(r.Jar),
		Configuration: cloneRef(r.Configuration),
		JVMRun:        cloneRef(r.JVMRun),
	}
}

func cloneRef(ref *AssetRef) *AssetRef {
	if ref == nil {
		return nil
	}
	c := *ref
	return &c
}

// KindRef pairs an asset reference with the kind of asset it is
type KindRef struct {
	Kind AssetKind
	Ref  *AssetRef
}

// PublishableRelease is a complete release whose download URLs point at the
// storage location. This is the entry written to manifest.json and latest.json.
type PublishableRelease struct {
	Name          string   `json:"name"`
	Jar           AssetRef `json:"jar"`
	Configuration AssetRef `json:"configuration"`
	JVMRun        AssetRef `json:"jvmRun"`
}

// Selection is the output of release selection. Resolved[i] and Releases[i]
// describe the same release: the former with hosting URLs, the latter with
// storage URLs.
type Selection struct {
	Resolved   []ResolvedRelease
	Releases   []PublishableRelease
	Latest     *PublishableRelease
	Incomplete []string // tags dropped for missing assets
}
