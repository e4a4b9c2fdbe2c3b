// Package routing resolves travel distance and duration between a shopper and a store.
package routing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/kosarica/offer-service/internal/geo"
	httpclient "github.com/kosarica/offer-service/internal/http"
	"github.com/kosarica/offer-service/internal/ranking"
)

// DefaultRoutesURL is the Google Routes API computeRoutes endpoint.
const DefaultRoutesURL = "https://routes.googleapis.com/directions/v2:computeRoutes"

const fieldMask = "routes.distanceMeters,routes.duration"

var (
	// ErrNoRoute is returned when the upstream found no route between the endpoints.
	ErrNoRoute = errors.New("no route found")
	// ErrUnsupportedMode is returned for a travel mode without a wire mapping.
	ErrUnsupportedMode = errors.New("unsupported travel mode")
)

// WireTravelMode maps a travel mode to the routing API enum.
// Transit is sent as TWO_WHEELER, the closest mode the API resolves by address.
func WireTravelMode(mode ranking.TravelMode) (string, error) {
	switch mode {
	case ranking.ModeWalking:
		return "WALK", nil
	case ranking.ModeDriving:
		return "DRIVE", nil
	case ranking.ModeBiking:
		return "BICYCLE", nil
	case ranking.ModeTransit:
		return "TWO_WHEELER", nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedMode, mode)
}

type waypoint struct {
	Address string `json:"address"`
}

type computeRoutesRequest struct {
	Origin      waypoint `json:"origin"`
	Destination waypoint `json:"destination"`
	TravelMode  string   `json:"travelMode"`
}

type computeRoutesResponse struct {
	Routes []struct {
		DistanceMeters float64 `json:"distanceMeters"`
		Duration       string  `json:"duration"`
	} `json:"routes"`
}

// RoutesClient resolves travel through the Routes API.
type RoutesClient struct {
	http    *httpclient.Client
	baseURL string
	apiKey  string
	logger  zerolog.Logger
}

// NewRoutesClient creates a Routes API resolver. An empty baseURL selects DefaultRoutesURL.
func NewRoutesClient(client *httpclient.Client, baseURL, apiKey string) *RoutesClient {
	if baseURL == "" {
		baseURL = DefaultRoutesURL
	}
	return &RoutesClient{
		http:    client,
		baseURL: baseURL,
		apiKey:  apiKey,
		logger:  log.With().Str("component", "routes_client").Logger(),
	}
}

// Resolve returns the distance and duration of the first route the API returns.
func (c *RoutesClient) Resolve(ctx context.Context, origin geo.Coordinate, destination string, mode ranking.TravelMode) (ranking.Route, error) {
	wireMode, err := WireTravelMode(mode)
	if err != nil {
		return ranking.Route{}, err
	}

	req := computeRoutesRequest{
		Origin:      waypoint{Address: origin.String()},
		Destination: waypoint{Address: destination},
		TravelMode:  wireMode,
	}
	header := http.Header{}
	header.Set("X-Goog-Api-Key", c.apiKey)
	header.Set("X-Goog-FieldMask", fieldMask)

	var resp computeRoutesResponse
	if err := c.http.PostJSON(ctx, c.baseURL, header, req, &resp); err != nil {
		upstreamCalls.WithLabelValues("routes", "error").Inc()
		return ranking.Route{}, fmt.Errorf("compute route to %q: %w", destination, err)
	}

	if len(resp.Routes) == 0 {
		upstreamCalls.WithLabelValues("routes", "no_route").Inc()
		return ranking.Route{}, ErrNoRoute
	}

	first := resp.Routes[0]
	seconds, err := ParseDuration(first.Duration)
	if err != nil {
		upstreamCalls.WithLabelValues("routes", "error").Inc()
		return ranking.Route{}, fmt.Errorf("compute route to %q: %w", destination, err)
	}

	upstreamCalls.WithLabelValues("routes", "ok").Inc()
	return ranking.Route{DistanceMeters: first.DistanceMeters, DurationSeconds: seconds}, nil
}

// ParseDuration parses a protobuf JSON duration such as "754s" or "12.5s" into seconds.
// An empty string is zero.
func ParseDuration(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(s, "s"), 64)
	if err != nil || v < 0 || !strings.HasSuffix(s, "s") {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return v, nil
}
