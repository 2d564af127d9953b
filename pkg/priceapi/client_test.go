package priceapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/recipe-cost/internal/resilience"
)

func TestPrice_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/prices", r.URL.Path)
		assert.Equal(t, "olive oil", r.URL.Query().Get("ingredient"))
		assert.Equal(t, "secret", r.Header.Get("X-API-Key"))
		w.Write([]byte(`{"price":12.5,"unit":"l","source":"grocer"}`)) //nolint:errcheck
	}))
	defer srv.Close()

	q, err := NewClient("secret", WithBaseURL(srv.URL)).Price(context.Background(), "olive oil")
	require.NoError(t, err)
	require.NotNil(t, q.Price)
	assert.InDelta(t, 12.5, *q.Price, 1e-9)
	assert.Equal(t, "l", q.Unit)
	assert.Equal(t, "grocer", q.Source)
}

func TestPrice_NullPriceIsNoData(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"price":null,"unit":""}`)) //nolint:errcheck
	}))
	defer srv.Close()

	q, err := NewClient("", WithBaseURL(srv.URL)).Price(context.Background(), "saffron")
	require.NoError(t, err)
	assert.Nil(t, q.Price)
	assert.Equal(t, "priceapi", q.Source)
}

func TestPrice_NotFoundIsNoData(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	q, err := NewClient("", WithBaseURL(srv.URL)).Price(context.Background(), "saffron")
	require.NoError(t, err)
	assert.Nil(t, q.Price)
}

func TestPrice_RateLimitedIsTransient(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewClient("", WithBaseURL(srv.URL)).Price(context.Background(), "saffron")
	require.Error(t, err)
	assert.True(t, resilience.IsTransient(err))
}
