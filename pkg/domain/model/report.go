package model

import "time"

// UploadFailure records an asset that could not be republished
type UploadFailure struct {
	Key    string `json:"key"`
	Source string `json:"source"`
	Reason string `json:"reason"`
}

// PublishReport summarizes a single publish run
type PublishReport struct {
	RunID          string          `json:"run_id"`
	Repository     string          `json:"repository"`
	StartedAt      time.Time       `json:"started_at"`
	FetchedCount   int             `json:"fetched_count"`
	PublishedCount int             `json:"published_count"`
	Latest         string          `json:"latest,omitempty"`
	LatestWritten  bool            `json:"latest_written"`
	Uploaded       []string        `json:"uploaded"`
	Failures       []UploadFailure `json:"failures,omitempty"`
}

// Notification is the message sent to subscribers at the end of a run
type Notification struct {
	Repository string
	BaseURL    string
	Report     *PublishReport
	Manifest   []byte
}

// PlanEntry is a storage object the publish command would write
type PlanEntry struct {
	Key         string
	Source      string
	ContentType string
	Exists      bool
}

// Plan is the result of a dry run
type Plan struct {
	Selection *Selection
	Entries   []PlanEntry
}

// Subject is the title used for the notification
func (n *Notification) Subject() string {
	return "Connector update for " + n.Repository
}
