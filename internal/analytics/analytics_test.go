package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/pkg/kafka"
)

func TestAggregatorStats(t *testing.T) {
	agg := NewAggregator()
	agg.Record(QueryEvent{Kind: KindAnagram, Query: "cat", Matches: 2, LatencyUs: 1000})
	agg.Record(QueryEvent{Kind: KindAnagram, Query: "cat", Matches: 2, LatencyUs: 3000, CacheHit: true})
	agg.Record(QueryEvent{Kind: KindBlanks, Query: "z-z", Matches: 0, LatencyUs: 2000})
	agg.Record(QueryEvent{Kind: KindAnagram, Query: "c4t", Failed: true, LatencyUs: 10})

	st := agg.Stats()
	assert.Equal(t, int64(4), st.TotalQueries)
	assert.Equal(t, int64(3), st.QueriesByKind[KindAnagram])
	assert.Equal(t, int64(1), st.CacheHits)
	assert.Equal(t, int64(3), st.CacheMisses)
	assert.Equal(t, int64(1), st.Failures)
	assert.Equal(t, int64(1), st.NoMatchCount)
	require.NotEmpty(t, st.TopQueries)
	assert.Equal(t, QueryCount{Kind: KindAnagram, Query: "cat", Count: 2}, st.TopQueries[0])
	assert.Equal(t, []QueryCount{{Kind: KindBlanks, Query: "z-z", Count: 1}}, st.NoMatchQueries)
	assert.InDelta(t, 1.5025, st.AvgLatencyMs, 0.0001)
	assert.Equal(t, 2.0, st.P50LatencyMs)
}

func TestAggregatorLatencyWindow(t *testing.T) {
	agg := NewAggregator()
	for i := 0; i < latencyWindow+10; i++ {
		agg.Record(QueryEvent{Kind: KindAnagram, Query: "x", LatencyUs: 1000})
	}
	assert.Len(t, agg.latencies, latencyWindow)
	assert.Equal(t, int64(latencyWindow+10), agg.Stats().TotalQueries)
}

func TestAggregatorBoundsDistinctQueries(t *testing.T) {
	agg := NewAggregator()
	agg.maxQueries = 10
	for i := 0; i < 5; i++ {
		agg.Record(QueryEvent{Kind: KindAnagram, Query: "cat", Matches: 2})
	}
	for i := 0; i < 50; i++ {
		agg.Record(QueryEvent{Kind: KindBlanks, Query: fmt.Sprintf("q%d", i)})
	}

	assert.LessOrEqual(t, len(agg.queryCounts), 10)
	assert.LessOrEqual(t, len(agg.noMatchQueries), 10)

	stats := agg.Stats()
	assert.Equal(t, int64(55), stats.TotalQueries)
	assert.Equal(t, int64(50), stats.NoMatchCount)
	require.NotEmpty(t, stats.TopQueries)
	assert.Equal(t, QueryCount{Kind: KindAnagram, Query: "cat", Count: 5}, stats.TopQueries[0])
}

func TestHandleEvent(t *testing.T) {
	agg := NewAggregator()
	handle := HandleEvent(agg)
	data, err := json.Marshal(QueryEvent{Kind: KindRot, Query: "green", Matches: 1})
	require.NoError(t, err)

	require.NoError(t, handle(context.Background(), []byte("rot"), data))
	require.NoError(t, handle(context.Background(), nil, []byte("not json")))
	assert.Equal(t, int64(1), agg.Stats().TotalQueries)
}

type fakePublisher struct {
	mu     sync.Mutex
	events []kafka.Event
	err    error
}

func (p *fakePublisher) PublishBatch(ctx context.Context, events []kafka.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return p.err
}

func TestCollectorForwardsOnClose(t *testing.T) {
	pub := &fakePublisher{}
	agg := NewAggregator()
	c := NewCollector(pub, agg, 16, nil)
	c.Start(context.Background())

	c.Track(QueryEvent{Kind: KindAnagram, Query: "cat"})
	c.Track(QueryEvent{Kind: KindCaesar, Query: "cheer"})
	c.Close()

	assert.Len(t, pub.events, 2)
	assert.Equal(t, KindAnagram, pub.events[0].Key)
	assert.Equal(t, int64(2), agg.Stats().TotalQueries)
}

func TestCollectorSurvivesPublishErrors(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	agg := NewAggregator()
	c := NewCollector(pub, agg, 16, nil)
	c.Start(context.Background())
	c.Track(QueryEvent{Kind: KindAnagram, Query: "cat"})
	c.Close()
	assert.Equal(t, int64(1), agg.Stats().TotalQueries)
}

func TestCollectorDropsWhenFull(t *testing.T) {
	c := NewCollector(nil, nil, 1, nil)
	c.Track(QueryEvent{Kind: KindAnagram})
	c.Track(QueryEvent{Kind: KindAnagram})
	assert.Equal(t, int64(1), c.Dropped())
}

func TestCollectorTrackAfterClose(t *testing.T) {
	agg := NewAggregator()
	c := NewCollector(nil, agg, 16, nil)
	c.Start(context.Background())
	c.Track(QueryEvent{Kind: KindAnagram, Query: "cat"})
	c.Close()

	assert.NotPanics(t, func() {
		c.Track(QueryEvent{Kind: KindAnagram, Query: "dog"})
		c.Close()
	})
	assert.Equal(t, int64(1), c.Dropped())
	assert.Equal(t, int64(1), agg.Stats().TotalQueries)
}

func TestCollectorConcurrentTrackAndClose(t *testing.T) {
	c := NewCollector(nil, NewAggregator(), 64, nil)
	c.Start(context.Background())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Track(QueryEvent{Kind: KindAnagram, Query: "cat"})
			}
		}()
	}
	c.Close()
	wg.Wait()
}

func TestCollectorFlushesOnContextDone(t *testing.T) {
	agg := NewAggregator()
	c := NewCollector(nil, agg, 16, nil)
	ctx, cancel := context.WithCancel(context.Background())
	c.Start(ctx)
	c.Track(QueryEvent{Kind: KindAnagram})
	time.Sleep(10 * time.Millisecond)
	cancel()
	<-c.done
	assert.Equal(t, int64(1), agg.Stats().TotalQueries)
}

type fakeHistory struct {
	snaps []Snapshot
	limit int
}

func (f *fakeHistory) ListSnapshots(ctx context.Context, limit int) ([]Snapshot, error) {
	f.limit = limit
	return f.snaps, nil
}

func TestHandler(t *testing.T) {
	agg := NewAggregator()
	agg.Record(QueryEvent{Kind: KindAnagram, Query: "cat", Matches: 2})
	hist := &fakeHistory{snaps: []Snapshot{{CapturedAt: time.Unix(0, 0).UTC()}}}
	h := NewHandler(agg, hist)

	rec := httptest.NewRecorder()
	h.Stats(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analytics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var st AggregatedStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, int64(1), st.TotalQueries)

	rec = httptest.NewRecorder()
	h.History(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analytics/history?limit=500", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, maxHistory, hist.limit)

	rec = httptest.NewRecorder()
	h.History(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analytics/history?limit=0", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	NewHandler(agg, nil).History(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analytics/history", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
