package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient() *Client {
	return New(time.Second, 1000, 100)
}

func TestClient_GetJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "/apis/site/v2/sports/football/nfl/teams", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Write([]byte(`{"sports": []}`))
	}))
	defer server.Close()

	body, err := newTestClient().GetJSON(context.Background(), server.URL+"/apis/site/v2/sports/football/nfl/teams")

	require.NoError(t, err)
	assert.JSONEq(t, `{"sports": []}`, string(body))
}

func TestClient_GetJSON_status(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newTestClient().GetJSON(context.Background(), server.URL+"/missing")

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 404, se.StatusCode)
}

func TestClient_GetJSON_invalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>maintenance</html>`))
	}))
	defer server.Close()

	_, err := newTestClient().GetJSON(context.Background(), server.URL)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON")
}

func TestClient_GetJSON_timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	c := New(50*time.Millisecond, 1000, 100)

	start := time.Now()
	_, err := c.GetJSON(context.Background(), server.URL)

	assert.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestClient_GetJSON_breakerOpens(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	c := newTestClient()
	for i := 0; i < 5; i++ {
		_, err := c.GetJSON(context.Background(), server.URL)
		assert.Error(t, err)
	}

	_, err := c.GetJSON(context.Background(), server.URL)
	assert.Equal(t, gobreaker.ErrOpenState, errors.Cause(err))
	assert.Equal(t, int32(5), atomic.LoadInt32(&calls))
}

func TestClient_GetJSON_clientErrorsDoNotTrip(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := newTestClient()
	for i := 0; i < 8; i++ {
		_, err := c.GetJSON(context.Background(), server.URL)
		assert.Error(t, err)
	}

	assert.Equal(t, int32(8), atomic.LoadInt32(&calls))
}

func TestClient_GetJSON_badURL(t *testing.T) {
	_, err := newTestClient().GetJSON(context.Background(), "http://[::1")
	assert.Error(t, err)
}
