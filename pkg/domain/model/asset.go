package model

// AssetKind identifies one of the three assets a release must carry
type AssetKind string

const (
	AssetKindJar           AssetKind = "jar"
	AssetKindConfiguration AssetKind = "configuration"
	AssetKindJVMRun        AssetKind = "jvmRun"
)

// AssetKinds lists all required asset kinds in resolution order
var AssetKinds = []AssetKind{AssetKindJar, AssetKindConfiguration, AssetKindJVMRun}

const (
	MIMEJSON = "application/json"
	MIMEJar  = "application/java-archive"
	MIMEText = "text/plain"
)

// AssetRule describes how an asset kind is found and how it is stored
type AssetRule struct {
	Pattern     string `toml:"pattern"`
	ContentType string `toml:"content_type"`
}

// Rules controls which releases are published and which assets they need
type Rules struct {
	ExcludeTags []string                `toml:"exclude_tags"`
	Assets      map[AssetKind]AssetRule `toml:"assets"`
}

// DefaultRules returns the rules used when no rules file is given
func DefaultRules() *Rules {
	return &Rules{
		ExcludeTags: []string{"pre", "beta", "alpha"},
		Assets: map[AssetKind]AssetRule{
			AssetKindJar: {
				Pattern:     `^[\s\S-]*-\d\.\d\.\d-\w+\.jar\b`,
				ContentType: MIMEJar,
			},
			AssetKindConfiguration: {
				Pattern:     `^[\s\S]*ConnectorConfig.json`,
				ContentType: MIMEJSON,
			},
			AssetKindJVMRun: {
				Pattern:     `^jvmrun`,
				ContentType: MIMEText,
			},
		},
	}
}
