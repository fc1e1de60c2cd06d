package patentscope

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// statusServer serves a canned status sequence, then repeats the last
// entry.
func statusServer(t *testing.T, requests *atomic.Int32, statuses ...int) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		i := int(requests.Add(1)) - 1
		if i >= len(statuses) {
			i = len(statuses) - 1
		}
		w.WriteHeader(statuses[i])
		if statuses[i] == 200 {
			w.Write([]byte("<html>ok</html>"))
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func testClient(t *testing.T, baseURL string) (*Client, *[]time.Duration) {
	client, err := NewClient(context.Background(), ClientOptions{
		BaseURL:  baseURL,
		MinDelay: time.Millisecond,
		MaxDelay: 110 * time.Millisecond,
	})
	require.NoError(t, err)

	// keep the test fast: no per-attempt backoff, and capture cooldown
	// sleeps instead of serving them
	var slept []time.Duration
	client.backoffUnit = 0
	client.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	return client, &slept
}

func TestFetchWithRetryEventualSuccess(t *testing.T) {
	var requests atomic.Int32
	server := statusServer(t, &requests, 500, 500, 200)
	client, _ := testClient(t, server.URL)

	body, err := client.FetchWithRetry(context.Background(), searchPath, nil)
	require.NoError(t, err)
	require.Equal(t, "<html>ok</html>", string(body))
	require.EqualValues(t, 3, requests.Load())

	// two errors then exactly one recorded success: the limiter delay
	// sits at maxDelay shrunk by one streak step
	require.InDelta(t, float64(100*time.Millisecond), float64(client.limiter.Delay()), 5)
}

func TestFetchWithRetryExhausted(t *testing.T) {
	var requests atomic.Int32
	server := statusServer(t, &requests, 500)
	client, _ := testClient(t, server.URL)

	_, err := client.FetchWithRetry(context.Background(), searchPath, nil)
	require.Error(t, err)
	require.EqualValues(t, 3, requests.Load())

	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	require.Equal(t, FailRetriesExhausted, fe.Reason)
	require.Equal(t, 500, fe.Status)
}

func TestFetchWithRetryRateLimited(t *testing.T) {
	var requests atomic.Int32
	server := statusServer(t, &requests, 429)
	client, slept := testClient(t, server.URL)

	_, err := client.FetchWithRetry(context.Background(), searchPath, nil)
	require.Error(t, err)

	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	require.Equal(t, FailRateLimited, fe.Reason)
	require.Equal(t, 429, fe.Status)

	// every 429 triggers the flat cooldown
	cooldowns := 0
	for _, d := range *slept {
		if d == rateLimitedCooldown {
			cooldowns++
		}
	}
	require.Equal(t, 3, cooldowns)
}

func TestFetchWithRetryRecoversAfterRateLimit(t *testing.T) {
	var requests atomic.Int32
	server := statusServer(t, &requests, 429, 200)
	client, _ := testClient(t, server.URL)

	body, err := client.FetchWithRetry(context.Background(), searchPath, nil)
	require.NoError(t, err)
	require.Equal(t, "<html>ok</html>", string(body))
	require.EqualValues(t, 2, requests.Load())
}

func TestFetchWithRetryCancellation(t *testing.T) {
	var requests atomic.Int32
	server := statusServer(t, &requests, 429)
	client, _ := testClient(t, server.URL)

	ctx, cancel := context.WithCancel(context.Background())
	client.sleep = func(ctx context.Context, _ time.Duration) error {
		cancel()
		return ctx.Err()
	}

	_, err := client.FetchWithRetry(ctx, searchPath, nil)
	require.ErrorIs(t, err, context.Canceled)
}
