package transport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Post(t *testing.T) {
	var gotContentType, gotUserAgent string
	var gotBody []byte

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotUserAgent = r.Header.Get("User-Agent")
		gotBody, _ = io.ReadAll(r.Body)
		w.Write([]byte("<ebicsKeyManagementResponse/>"))
	}))
	defer server.Close()

	client := NewClient(nil)
	body, err := client.Post(context.Background(), server.URL, []byte("<ebicsUnsecuredRequest/>"))
	require.NoError(t, err)

	assert.Equal(t, []byte("<ebicsKeyManagementResponse/>"), body)
	assert.Equal(t, ContentType, gotContentType)
	assert.Equal(t, "go-ebics/1.0", gotUserAgent)
	assert.Equal(t, []byte("<ebicsUnsecuredRequest/>"), gotBody)
}

func TestClient_Post_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "backend unavailable", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(DefaultConfig())
	_, err := client.Post(context.Background(), server.URL, []byte("<x/>"))
	require.Error(t, err)

	var terr *TransportError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, server.URL, terr.URL)
	assert.Contains(t, terr.Error(), "502")
	assert.Contains(t, terr.Error(), "backend unavailable")
}

func TestClient_Post_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient(nil)
	_, err := client.Post(context.Background(), url, []byte("<x/>"))

	var terr *TransportError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, url, terr.URL)
}

func TestClient_Post_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	client := NewClient(nil)
	_, err := client.Post(ctx, server.URL, []byte("<x/>"))

	var terr *TransportError
	require.ErrorAs(t, err, &terr)
	assert.ErrorIs(t, terr.Err, context.DeadlineExceeded)
}
