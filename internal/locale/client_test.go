package locale

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpclient "github.com/kosarica/offer-service/internal/http"
	"github.com/kosarica/offer-service/internal/ranking"
)

func TestCountryCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/8.8.8.8", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"success","countryCode":"us"}`))
	}))
	defer srv.Close()

	client := NewClient(httpclient.NewClientDefault(), srv.URL)
	code, err := client.CountryCode(context.Background(), "8.8.8.8")
	require.NoError(t, err)
	assert.Equal(t, "US", code)
	assert.Equal(t, ranking.UnitMiles, client.UnitFor(context.Background(), "8.8.8.8"))
}

func TestUnitForFallsBackToKilometers(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"status":"fail","message":"reserved range"}`))
	}))
	defer srv.Close()

	client := NewClient(httpclient.NewClientDefault(), srv.URL)

	tests := []string{"", "not-an-ip", "127.0.0.1", "10.1.2.3", "192.168.0.7", "::1", "1.1.1.1"}
	for _, ip := range tests {
		assert.Equal(t, ranking.UnitKilometers, client.UnitFor(context.Background(), ip), "ip %q", ip)
	}
	// Only the public address reaches the upstream.
	assert.Equal(t, int32(1), calls.Load())
}

func TestCountryCodeUpstreamDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(httpclient.NewClientDefault(), srv.URL)
	_, err := client.CountryCode(context.Background(), "8.8.4.4")
	assert.ErrorIs(t, err, httpclient.ErrUpstreamStatus)
}
