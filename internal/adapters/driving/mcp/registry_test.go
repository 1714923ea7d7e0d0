package mcp

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbridge/kbridge/internal/core/domain"
)

// fakeHandle records messages and replies with a canned response.
type fakeHandle struct {
	mu       sync.Mutex
	sent     [][]byte
	response *Response
	err      error
	closed   bool
}

func (h *fakeHandle) Send(_ context.Context, body []byte, _ string) (*Response, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sent = append(h.sent, body)
	if h.err != nil {
		return nil, h.err
	}
	if h.response != nil {
		return h.response, nil
	}
	return &Response{Status: 200, ContentType: "application/json", Body: []byte(`{}`)}, nil
}

func (h *fakeHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	return nil
}

func testCreds() domain.Credentials {
	return domain.Credentials{
		StoreURL:    "postgres://localhost/kb",
		StoreKey:    "svc-key",
		ProviderKey: "sk-test",
	}
}

func fakeFactory(h *fakeHandle) HandleFactory {
	return func(domain.Credentials) (TransportHandle, error) {
		return h, nil
	}
}

func TestRegistry_CreateAndGet(t *testing.T) {
	r := NewRegistry(0)

	sess, err := r.Create(testCreds(), fakeFactory(&fakeHandle{}))
	require.NoError(t, err)
	require.NotEmpty(t, sess.ID)

	got, ok := r.Get(sess.ID)
	require.True(t, ok)
	assert.Same(t, sess, got)
	assert.Equal(t, testCreds(), got.Credentials())

	_, ok = r.Get("unknown")
	assert.False(t, ok)
}

func TestRegistry_ConcurrentCreatesUniqueIDs(t *testing.T) {
	r := NewRegistry(0)

	const n = 50
	ids := make(chan string, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sess, err := r.Create(testCreds(), fakeFactory(&fakeHandle{}))
			require.NoError(t, err)
			ids <- sess.ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate session id %s", id)
		seen[id] = true
	}
	assert.Equal(t, n, r.Len())
}

func TestRegistry_TouchCredentialsOverwrites(t *testing.T) {
	r := NewRegistry(0)

	sess, err := r.Create(testCreds(), fakeFactory(&fakeHandle{}))
	require.NoError(t, err)

	updated := domain.Credentials{
		StoreURL:    "postgres://other/kb",
		StoreKey:    "other-key",
		ProviderKey: "sk-other",
	}
	r.TouchCredentials(sess.ID, updated)

	got, ok := r.Get(sess.ID)
	require.True(t, ok)
	assert.Equal(t, updated, got.Credentials())

	// Unknown ids are ignored, not created.
	r.TouchCredentials("unknown", updated)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_IdleEviction(t *testing.T) {
	r := NewRegistry(time.Minute)
	now := time.Now()
	r.now = func() time.Time { return now }

	sess, err := r.Create(testCreds(), fakeFactory(&fakeHandle{}))
	require.NoError(t, err)

	_, ok := r.Get(sess.ID)
	require.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok = r.Get(sess.ID)
	assert.False(t, ok)
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_ZeroTTLNeverEvicts(t *testing.T) {
	r := NewRegistry(0)
	now := time.Now()
	r.now = func() time.Time { return now }

	sess, err := r.Create(testCreds(), fakeFactory(&fakeHandle{}))
	require.NoError(t, err)

	now = now.Add(24 * time.Hour)
	_, ok := r.Get(sess.ID)
	assert.True(t, ok)
}

func TestRegistry_CloseReleasesHandles(t *testing.T) {
	r := NewRegistry(0)
	h := &fakeHandle{}

	_, err := r.Create(testCreds(), fakeFactory(h))
	require.NoError(t, err)

	require.NoError(t, r.Close())
	assert.True(t, h.closed)
	assert.Equal(t, 0, r.Len())
}
