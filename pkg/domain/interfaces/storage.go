package interfaces

import "context"

// Storage is the object storage that release assets are republished to
type Storage interface {
	// Put writes body to key with public-read access
	Put(ctx context.Context, key string, body []byte, contentType string) error

	// List returns keys that start with prefix
	List(ctx context.Context, prefix string) ([]string, error)
}
