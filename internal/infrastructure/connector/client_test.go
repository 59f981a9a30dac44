package connector

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compareit/backend/internal/domain"
)

func TestNewClient(t *testing.T) {
	client := NewClient("zepto", "http://localhost:7101", 60)

	assert.NotNil(t, client)
	assert.Equal(t, "zepto", client.Source())
	assert.Equal(t, "http://localhost:7101", client.baseURL)
	assert.NotNil(t, client.httpClient)
	assert.NotNil(t, client.rateLimiter)
	assert.False(t, client.debug)
}

func TestFetch_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "tata salt", r.URL.Query().Get("q"))
		assert.Equal(t, "CompareIt/1.0", r.Header.Get("User-Agent"))

		payload := map[string]interface{}{
			"listings": []domain.RawListing{
				{Name: "Tata Salt", Price: 28, Weight: "1kg", InStock: true, ProductURL: "https://zepto.example.com/p/1"},
				{Name: "Tata Salt Lite", Price: 40, Weight: "1kg", InStock: false, Source: "spoofed"},
			},
		}
		json.NewEncoder(w).Encode(payload)
	}))
	defer server.Close()

	client := NewClient("zepto", server.URL, 0)

	listings, err := client.Fetch(context.Background(), "tata salt")
	require.NoError(t, err)
	require.Len(t, listings, 2)

	assert.Equal(t, "Tata Salt", listings[0].Name)
	assert.Equal(t, 28.0, listings[0].Price)
	// Source labels from the wire are overridden with this client's source.
	assert.Equal(t, "zepto", listings[0].Source)
	assert.Equal(t, "zepto", listings[1].Source)
}

func TestFetch_EmptyListings(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"listings": []}`))
	}))
	defer server.Close()

	client := NewClient("zepto", server.URL, 0)

	listings, err := client.Fetch(context.Background(), "nothing sold here")
	require.NoError(t, err)
	assert.Empty(t, listings)
}

func TestFetch_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient("zepto", server.URL, 0)

	_, err := client.Fetch(context.Background(), "tata salt")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSourceNetwork)
}

func TestFetch_MalformedPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"listings": [{"name": `))
	}))
	defer server.Close()

	client := NewClient("zepto", server.URL, 0)

	_, err := client.Fetch(context.Background(), "tata salt")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSourceParse)
}

func TestFetch_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := NewClient("zepto", server.URL, 0)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.Fetch(ctx, "tata salt")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSourceTimeout)
}

func TestFetch_ConnectionRefused(t *testing.T) {
	// Grab a port that nothing listens on.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadURL := server.URL
	server.Close()

	client := NewClient("zepto", deadURL, 0)

	_, err := client.Fetch(context.Background(), "tata salt")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSourceNetwork)
}
