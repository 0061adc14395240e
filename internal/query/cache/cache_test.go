package cache

import (
	"context"
	"errors"
	"path"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/pkg/errors"
)

type fakeBackend struct {
	mu   sync.Mutex
	data map[string]string
	fail error
	gets int
	ttl  time.Duration
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{data: make(map[string]string)}
}

func (f *fakeBackend) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.fail != nil {
		return "", f.fail
	}
	v, ok := f.data[key]
	if !ok {
		return "", goredis.Nil
	}
	return v, nil
}

func (f *fakeBackend) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	f.ttl = ttl
	f.data[key] = string(value.([]byte))
	return nil
}

func (f *fakeBackend) FlushByPattern(ctx context.Context, pattern string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for k := range f.data {
		if ok, _ := path.Match(pattern, k); ok {
			delete(f.data, k)
			n++
		}
	}
	return n, nil
}

type answer struct {
	Words []string `json:"words"`
}

func TestGetOrComputeCachesResult(t *testing.T) {
	backend := newFakeBackend()
	c := New(backend, time.Minute, nil)
	key := Key("anagram", "cat", "")
	calls := 0
	compute := func() (*answer, error) {
		calls++
		return &answer{Words: []string{"act", "tac"}}, nil
	}

	v, hit, err := GetOrCompute(context.Background(), c, key, compute)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, []string{"act", "tac"}, v.Words)

	v, hit, err = GetOrCompute(context.Background(), c, key, compute)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []string{"act", "tac"}, v.Words)
	assert.Equal(t, 1, calls)
	assert.Equal(t, time.Minute, backend.ttl)

	st := c.Stats()
	assert.Equal(t, int64(1), st.Hits)
	assert.Equal(t, int64(1), st.Misses)
	assert.Equal(t, "closed", st.Breaker)
}

func TestGetOrComputeDoesNotCacheErrors(t *testing.T) {
	c := New(newFakeBackend(), time.Minute, nil)
	key := Key("anagram", "c4t", "")
	boom := errors.New("boom")
	calls := 0
	compute := func() (*answer, error) {
		calls++
		return nil, boom
	}
	_, _, err := GetOrCompute(context.Background(), c, key, compute)
	assert.ErrorIs(t, err, boom)
	_, _, err = GetOrCompute(context.Background(), c, key, compute)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
}

func TestGetOrComputeCollapsesConcurrentMisses(t *testing.T) {
	c := New(newFakeBackend(), time.Minute, nil)
	key := Key("phrase", "dormitory", "limit=10")
	var calls atomic.Int32
	release := make(chan struct{})
	compute := func() (*answer, error) {
		calls.Add(1)
		<-release
		return &answer{Words: []string{"dirty", "room"}}, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, _, err := GetOrCompute(context.Background(), c, key, compute)
			assert.NoError(t, err)
			assert.Equal(t, []string{"dirty", "room"}, v.Words)
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()
	assert.LessOrEqual(t, calls.Load(), int32(8))
	assert.GreaterOrEqual(t, calls.Load(), int32(1))
}

func TestBackendFailureFallsBackToCompute(t *testing.T) {
	backend := newFakeBackend()
	backend.fail = errors.New("connection refused")
	c := New(backend, time.Minute, nil)

	for i := 0; i < 10; i++ {
		v, hit, err := GetOrCompute(context.Background(), c, Key("anagram", "dog", ""), func() (*answer, error) {
			return &answer{Words: []string{"god"}}, nil
		})
		require.NoError(t, err)
		assert.False(t, hit)
		assert.Equal(t, []string{"god"}, v.Words)
	}
	assert.Equal(t, "open", c.Stats().Breaker)
	gets := backend.gets
	_, _, _ = GetOrCompute(context.Background(), c, Key("anagram", "dog", ""), func() (*answer, error) {
		return &answer{}, nil
	})
	assert.Equal(t, gets, backend.gets, "open breaker must not reach the backend")
}

func TestNilCacheComputes(t *testing.T) {
	var c *QueryCache
	v, hit, err := GetOrCompute(context.Background(), c, "k", func() (int, error) { return 3, nil })
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 3, v)

	_, err = c.Invalidate(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrCacheUnavailable)
}

func TestInvalidate(t *testing.T) {
	backend := newFakeBackend()
	backend.data["other:key"] = "x"
	c := New(backend, time.Minute, nil)
	_, _, err := GetOrCompute(context.Background(), c, Key("anagram", "cat", ""), func() (int, error) { return 1, nil })
	require.NoError(t, err)

	n, err := c.Invalidate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Contains(t, backend.data, "other:key")
}

func TestKeyNormalizesWhitespace(t *testing.T) {
	assert.Equal(t, Key("solve", "cat  dog", ""), Key("solve", " cat dog ", ""))
	assert.NotEqual(t, Key("solve", "cat dog", ""), Key("anagram", "cat dog", ""))
	assert.NotEqual(t, Key("phrase", "cat", "limit=1"), Key("phrase", "cat", "limit=2"))
}
