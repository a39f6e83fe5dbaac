package etherscan

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(t *testing.T, w http.ResponseWriter, v interface{}) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestClient_FetchNative(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "account", q.Get("module"))
		assert.Equal(t, "txlist", q.Get("action"))
		assert.Equal(t, "desc", q.Get("sort"))
		assert.Equal(t, "1", q.Get("chainid"))
		assert.Equal(t, "0", q.Get("startblock"))
		assert.Equal(t, "9999999999", q.Get("endblock"))
		assert.Equal(t, "key", q.Get("apikey"))
		assert.Equal(t, "0xabc", q.Get("address"))

		writeJSON(t, w, map[string]interface{}{
			"status":  "1",
			"message": "OK",
			"result": []map[string]string{
				{
					"hash":      "0x01",
					"timeStamp": "1700000000",
					"from":      "0xabc",
					"to":        "0xdef",
					"value":     "1000000000000000000",
					"isError":   "0",
					"input":     "0x",
				},
			},
		})
	}))
	defer server.Close()

	client := NewClient("key", WithBaseURL(server.URL))

	records, err := client.FetchNative(context.Background(), "0xabc")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "0x01", records[0].Hash)
	assert.Equal(t, "1000000000000000000", records[0].Value)
	assert.Equal(t, "0", records[0].IsError)
}

func TestClient_FetchToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "tokentx", q.Get("action"))
		assert.Equal(t, "asc", q.Get("sort"))
		assert.Equal(t, "137", q.Get("chainid"))

		writeJSON(t, w, map[string]interface{}{
			"status":  "1",
			"message": "OK",
			"result": []map[string]string{
				{
					"hash":            "0x02",
					"timeStamp":       "1700000000",
					"from":            "0xdef",
					"to":              "0xabc",
					"value":           "2500000",
					"contractAddress": "0xtoken",
					"tokenName":       "USD Coin",
					"tokenSymbol":     "USDC",
					"tokenDecimal":    "6",
				},
			},
		})
	}))
	defer server.Close()

	client := NewClient("key", WithBaseURL(server.URL), WithChainID(137))

	records, err := client.FetchToken(context.Background(), "0xabc")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "USD Coin", records[0].TokenName)
	assert.Equal(t, "6", records[0].TokenDecimal)
	assert.Equal(t, "0xtoken", records[0].ContractAddress)
}

func TestClient_NoTransactions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]interface{}{
			"status":  "0",
			"message": "No transactions found",
			"result":  []interface{}{},
		})
	}))
	defer server.Close()

	client := NewClient("key", WithBaseURL(server.URL))

	records, err := client.FetchToken(context.Background(), "0xabc")
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestClient_APIError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(t, w, map[string]interface{}{
			"status":  "0",
			"message": "NOTOK",
			"result":  "Invalid API Key",
		})
	}))
	defer server.Close()

	client := NewClient("bad", WithBaseURL(server.URL), WithRetryDelay(time.Millisecond))

	_, err := client.FetchNative(context.Background(), "0xabc")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAPI))
	assert.Contains(t, err.Error(), "Invalid API Key")
	assert.Equal(t, int32(1), calls.Load(), "API errors are not retried")
}

func TestClient_RetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch calls.Add(1) {
		case 1:
			w.WriteHeader(http.StatusTooManyRequests)
		case 2:
			writeJSON(t, w, map[string]interface{}{
				"status":  "0",
				"message": "NOTOK",
				"result":  "Max rate limit reached",
			})
		default:
			writeJSON(t, w, map[string]interface{}{
				"status":  "1",
				"message": "OK",
				"result":  []map[string]string{{"hash": "0x03"}},
			})
		}
	}))
	defer server.Close()

	client := NewClient("key",
		WithBaseURL(server.URL),
		WithRetryDelay(time.Millisecond),
		WithMaxDelay(5*time.Millisecond),
	)

	records, err := client.FetchNative(context.Background(), "0xabc")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_MaxRetriesExceeded(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient("key",
		WithBaseURL(server.URL),
		WithMaxRetries(2),
		WithRetryDelay(time.Millisecond),
	)

	_, err := client.FetchNative(context.Background(), "0xabc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max retries exceeded")
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient("key", WithBaseURL(server.URL), WithRetryDelay(time.Second))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.FetchNative(ctx, "0xabc")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_ErrorsOmitAPIKey(t *testing.T) {
	const apiKey = "SECRETKEY123"

	server := httptest.NewServer(http.NotFoundHandler())
	unreachable := server.URL
	server.Close()

	tests := []struct {
		name    string
		baseURL string
	}{
		{name: "connection refused", baseURL: unreachable + "/api"},
		{name: "malformed url", baseURL: "http://[::1/api"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewClient(apiKey,
				WithBaseURL(tt.baseURL),
				WithMaxRetries(0),
				WithTimeout(time.Second),
			)

			_, err := client.FetchNative(context.Background(), "0xabc")
			require.Error(t, err)
			assert.False(t, strings.Contains(err.Error(), apiKey), "error leaks api key: %v", err)
		})
	}
}

func TestClient_TransportErrorKeepsCause(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := NewClient("key", WithBaseURL(server.URL), WithMaxRetries(0))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.FetchNative(ctx, "0xabc")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotContains(t, err.Error(), "apikey=")
}
