package catalog

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gutendexPage = `{
	"count": 3,
	"results": [
		{
			"id": 2701,
			"title": "Moby Dick; Or, The Whale",
			"authors": [{"name": "Melville, Herman"}],
			"subjects": ["Whaling -- Fiction", "Sea stories"],
			"formats": {"image/jpeg": "https://example.com/2701.jpg", "text/plain": "https://example.com/2701.txt"}
		},
		{
			"id": 1342,
			"title": "Pride and Prejudice",
			"authors": [],
			"subjects": [],
			"formats": {}
		},
		{
			"id": 84,
			"title": "Frankenstein",
			"authors": [{"name": "Shelley, Mary"}],
			"subjects": ["Horror tales"],
			"formats": {"image/jpeg": "https://example.com/84.jpg"}
		}
	]
}`

func testClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := DefaultConfig()
	cfg.BaseURL = server.URL
	cfg.RequestTimeout = 2 * time.Second
	cfg.RequestsPerSecond = 1000
	cfg.Burst = 1000

	return NewClient(cfg, slog.New(slog.DiscardHandler)), server
}

func TestFetch_MapsRecords(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "whale", r.URL.Query().Get("topic"))
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		assert.Empty(t, r.URL.Query().Get("search"))
		w.Write([]byte(gutendexPage))
	}))

	records := client.Fetch(context.Background(), "", 1, 10, "whale")

	require.Len(t, records, 3)

	moby := records[0]
	assert.Equal(t, "2701", moby.ID)
	assert.Equal(t, "Moby Dick; Or, The Whale", moby.Title)
	require.NotNil(t, moby.Author)
	assert.Equal(t, "Melville, Herman", *moby.Author)
	require.NotNil(t, moby.CoverURL)
	assert.Equal(t, "https://example.com/2701.jpg", *moby.CoverURL)
	assert.Equal(t, []string{"Whaling -- Fiction", "Sea stories"}, moby.Subjects)

	// Missing author and cover degrade to nil, subjects never do.
	pride := records[1]
	assert.Nil(t, pride.Author)
	assert.Nil(t, pride.CoverURL)
	assert.NotNil(t, pride.Subjects)
}

func TestFetch_QueryParameter(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "whale hunting", r.URL.Query().Get("search"))
		assert.Empty(t, r.URL.Query().Get("topic"))
		w.Write([]byte(gutendexPage))
	}))

	records := client.Fetch(context.Background(), "whale hunting", 1, 10, "")
	assert.Len(t, records, 3)
}

func TestFetch_TruncatesToLimit(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(gutendexPage))
	}))

	records := client.Fetch(context.Background(), "", 1, 2, "whale")
	assert.Len(t, records, 2)
}

func TestFetch_CacheServesRepeatCalls(t *testing.T) {
	var calls atomic.Int32
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Write([]byte(gutendexPage))
	}))

	first := client.Fetch(context.Background(), "", 1, 10, "whale")
	second := client.Fetch(context.Background(), "", 1, 10, "whale")

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), calls.Load(), "second call must be served from cache")

	// A different parameter tuple goes back to the network.
	client.Fetch(context.Background(), "", 2, 10, "whale")
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetch_UpstreamErrorYieldsEmptySlice(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	records := client.Fetch(context.Background(), "", 1, 10, "whale")
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestFetch_MalformedResponseYieldsEmptySlice(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("not json"))
	}))

	records := client.Fetch(context.Background(), "", 1, 10, "whale")
	assert.Empty(t, records)
}

func TestFetch_TimeoutYieldsEmptySlice(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.Write([]byte(gutendexPage))
	}))
	client.cfg.RequestTimeout = 50 * time.Millisecond
	client.http.Timeout = 50 * time.Millisecond

	records := client.Fetch(context.Background(), "", 1, 10, "whale")
	assert.Empty(t, records)
}

func TestFetch_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var calls atomic.Int32
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))

	// Use distinct tuples so the cache never short-circuits.
	for page := 1; page <= breakerFailureThreshold; page++ {
		records := client.Fetch(context.Background(), "", page, 10, "whale")
		assert.Empty(t, records)
	}
	assert.Equal(t, int32(breakerFailureThreshold), calls.Load())

	// Breaker is open now: no more upstream calls, still an empty result.
	records := client.Fetch(context.Background(), "", 99, 10, "whale")
	assert.Empty(t, records)
	assert.Equal(t, int32(breakerFailureThreshold), calls.Load())
}

func TestFetch_ErrorsAreNotCached(t *testing.T) {
	var calls atomic.Int32
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(gutendexPage))
	}))

	assert.Empty(t, client.Fetch(context.Background(), "", 1, 10, "whale"))

	records := client.Fetch(context.Background(), "", 1, 10, "whale")
	assert.Len(t, records, 3)
}
