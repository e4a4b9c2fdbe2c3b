// Package locale looks up the shopper's country from their IP address.
package locale

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/netip"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpclient "github.com/kosarica/offer-service/internal/http"
	"github.com/kosarica/offer-service/internal/ranking"
)

// DefaultBaseURL is the ip-api.com JSON endpoint.
const DefaultBaseURL = "http://ip-api.com/json"

// ErrNoCountry is returned when the lookup yields no country.
var ErrNoCountry = errors.New("no country for address")

type lookupResponse struct {
	Status      string `json:"status"`
	Message     string `json:"message"`
	CountryCode string `json:"countryCode"`
}

// Client is an IP-to-country lookup client.
type Client struct {
	http    *httpclient.Client
	baseURL string
	logger  zerolog.Logger
}

// NewClient creates a locale client. An empty baseURL selects DefaultBaseURL.
func NewClient(client *httpclient.Client, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		http:    client,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  log.With().Str("component", "locale").Logger(),
	}
}

// CountryCode returns the ISO 3166-1 alpha-2 country of ip.
// Private, loopback and unparsable addresses are never sent upstream.
func (c *Client) CountryCode(ctx context.Context, ip string) (string, error) {
	addr, err := netip.ParseAddr(strings.TrimSpace(ip))
	if err != nil {
		return "", fmt.Errorf("parse ip %q: %w", ip, ErrNoCountry)
	}
	if addr.IsLoopback() || addr.IsPrivate() || addr.IsUnspecified() || addr.IsLinkLocalUnicast() {
		return "", ErrNoCountry
	}

	endpoint := c.baseURL + "/" + url.PathEscape(addr.String()) + "?fields=status,message,countryCode"

	var resp lookupResponse
	if err := c.http.GetJSON(ctx, endpoint, http.Header{}, &resp); err != nil {
		return "", fmt.Errorf("lookup %s: %w", addr, err)
	}
	if resp.Status != "success" || resp.CountryCode == "" {
		return "", fmt.Errorf("lookup %s: %s: %w", addr, resp.Message, ErrNoCountry)
	}
	return strings.ToUpper(resp.CountryCode), nil
}

// UnitFor returns the distance unit for ip. Any lookup failure yields kilometers.
func (c *Client) UnitFor(ctx context.Context, ip string) ranking.DistanceUnit {
	country, err := c.CountryCode(ctx, ip)
	if err != nil {
		c.logger.Debug().Err(err).Str("ip", ip).Msg("Locale lookup failed, defaulting to km")
		return ranking.UnitKilometers
	}
	return ranking.UnitForCountry(country)
}
