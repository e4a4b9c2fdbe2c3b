// Package geocoding resolves free-text addresses to coordinates.
package geocoding

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/kosarica/offer-service/internal/geo"
	httpclient "github.com/kosarica/offer-service/internal/http"
)

// DefaultBaseURL is the Google Geocoding API endpoint.
const DefaultBaseURL = "https://maps.googleapis.com/maps/api/geocode/json"

var (
	// ErrNoResult is returned when the address does not geocode to any location.
	ErrNoResult = errors.New("address has no geocoding result")
	// ErrEmptyAddress is returned for blank input.
	ErrEmptyAddress = errors.New("address is empty")
)

// Result is a geocoded address.
type Result struct {
	Location         geo.Coordinate `json:"location"`
	FormattedAddress string         `json:"formattedAddress"`
}

type geocodeResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Client is a geocoding API client.
type Client struct {
	http    *httpclient.Client
	baseURL string
	apiKey  string
	logger  zerolog.Logger
}

// NewClient creates a geocoding client. An empty baseURL selects DefaultBaseURL.
func NewClient(client *httpclient.Client, baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		http:    client,
		baseURL: baseURL,
		apiKey:  apiKey,
		logger:  log.With().Str("component", "geocoding").Logger(),
	}
}

// Geocode returns the first result for address.
func (c *Client) Geocode(ctx context.Context, address string) (*Result, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, ErrEmptyAddress
	}

	q := url.Values{}
	q.Set("address", address)
	if c.apiKey != "" {
		q.Set("key", c.apiKey)
	}

	var resp geocodeResponse
	if err := c.http.GetJSON(ctx, c.baseURL+"?"+q.Encode(), http.Header{}, &resp); err != nil {
		return nil, fmt.Errorf("geocode %q: %w", address, err)
	}

	switch resp.Status {
	case "OK":
	case "ZERO_RESULTS":
		return nil, ErrNoResult
	default:
		c.logger.Warn().
			Str("status", resp.Status).
			Str("error_message", resp.ErrorMessage).
			Msg("Geocoding request rejected")
		return nil, fmt.Errorf("geocode %q: status %s: %w", address, resp.Status, httpclient.ErrUpstreamStatus)
	}

	if len(resp.Results) == 0 {
		return nil, ErrNoResult
	}

	first := resp.Results[0]
	result := &Result{
		Location: geo.Coordinate{
			Latitude:  first.Geometry.Location.Lat,
			Longitude: first.Geometry.Location.Lng,
		},
		FormattedAddress: first.FormattedAddress,
	}
	if err := result.Location.Validate(); err != nil {
		return nil, fmt.Errorf("geocode %q: %w", address, err)
	}
	return result, nil
}
