package usecase_test

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/m-mizutani/relpub/pkg/domain/model"
)

type mockGitHubClient struct {
	releases  []model.RawRelease
	listErr   error
	latestTag string
	latestErr error

	// downloads maps a download URL to its content; a missing URL fails
	downloads map[string][]byte

	mu         sync.Mutex
	downloaded []string
}

func (m *mockGitHubClient) ListReleases(ctx context.Context, owner, repo string) ([]model.RawRelease, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.releases, nil
}

func (m *mockGitHubClient) GetLatestReleaseTag(ctx context.Context, owner, repo string) (string, error) {
	if m.latestErr != nil {
		return "", m.latestErr
	}
	return m.latestTag, nil
}

func (m *mockGitHubClient) DownloadAsset(ctx context.Context, url string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.downloaded = append(m.downloaded, url)

	data, ok := m.downloads[url]
	if !ok {
		return nil, errors.New("404 Not Found")
	}
	return data, nil
}

type storedObject struct {
	Body        []byte
	ContentType string
}

type mockStorage struct {
	mu      sync.Mutex
	objects map[string]storedObject
	calls   int

	// failKeys makes Put fail for the given keys
	failKeys map[string]bool
	listErr  error
}

func newMockStorage() *mockStorage {
	return &mockStorage{objects: map[string]storedObject{}}
}

func (m *mockStorage) Put(ctx context.Context, key string, body []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	if m.failKeys[key] {
		return errors.New("access denied")
	}
	m.objects[key] = storedObject{Body: body, ContentType: contentType}
	return nil
}

func (m *mockStorage) List(ctx context.Context, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	if m.listErr != nil {
		return nil, m.listErr
	}
	var keys []string
	for k := range m.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

type mockNotifier struct {
	received []*model.Notification
	err      error
}

func (m *mockNotifier) Notify(ctx context.Context, n *model.Notification) error {
	m.received = append(m.received, n)
	return m.err
}
