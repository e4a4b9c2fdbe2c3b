package routing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kosarica/offer-service/internal/geo"
	httpclient "github.com/kosarica/offer-service/internal/http"
	"github.com/kosarica/offer-service/internal/ranking"
)

var origin = geo.Coordinate{Latitude: 45.815, Longitude: 15.9819}

func newRoutesServer(t *testing.T, handler http.HandlerFunc) *RoutesClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewRoutesClient(httpclient.NewClientDefault(), srv.URL, "routes-key")
}

func TestRoutesClientResolve(t *testing.T) {
	client := newRoutesServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "routes-key", r.Header.Get("X-Goog-Api-Key"))
		assert.Equal(t, "routes.distanceMeters,routes.duration", r.Header.Get("X-Goog-FieldMask"))

		var req computeRoutesRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "45.815,15.9819", req.Origin.Address)
		assert.Equal(t, "Ilica 1, Zagreb", req.Destination.Address)
		assert.Equal(t, "BICYCLE", req.TravelMode)

		_, _ = w.Write([]byte(`{"routes":[{"distanceMeters":2450,"duration":"612s"},{"distanceMeters":1,"duration":"1s"}]}`))
	})

	route, err := client.Resolve(context.Background(), origin, "Ilica 1, Zagreb", ranking.ModeBiking)
	require.NoError(t, err)
	assert.Equal(t, ranking.Route{DistanceMeters: 2450, DurationSeconds: 612}, route)
}

func TestRoutesClientNoRoute(t *testing.T) {
	client := newRoutesServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	_, err := client.Resolve(context.Background(), origin, "Atlantis", ranking.ModeDriving)
	assert.ErrorIs(t, err, ErrNoRoute)
}

func TestRoutesClientUpstreamError(t *testing.T) {
	client := newRoutesServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	_, err := client.Resolve(context.Background(), origin, "Ilica 1", ranking.ModeDriving)
	assert.ErrorIs(t, err, httpclient.ErrUpstreamStatus)
}

func TestRoutesClientBadDuration(t *testing.T) {
	client := newRoutesServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"routes":[{"distanceMeters":10,"duration":"soon"}]}`))
	})

	_, err := client.Resolve(context.Background(), origin, "Ilica 1", ranking.ModeDriving)
	assert.Error(t, err)
}

func TestWireTravelMode(t *testing.T) {
	tests := map[ranking.TravelMode]string{
		ranking.ModeWalking: "WALK",
		ranking.ModeDriving: "DRIVE",
		ranking.ModeBiking:  "BICYCLE",
		ranking.ModeTransit: "TWO_WHEELER",
	}
	for mode, want := range tests {
		got, err := WireTravelMode(mode)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := WireTravelMode("teleport")
	assert.ErrorIs(t, err, ErrUnsupportedMode)
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{in: "754s", want: 754},
		{in: "12.5s", want: 12.5},
		{in: "0s", want: 0},
		{in: "", want: 0},
		{in: "754", wantErr: true},
		{in: "-3s", wantErr: true},
		{in: "abcs", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDuration(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
