package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kosarica/offer-service/internal/app"
	"github.com/kosarica/offer-service/internal/geo"
	"github.com/kosarica/offer-service/internal/ranking"
	"github.com/kosarica/offer-service/internal/routing"
)

var resolveMode string

// resolveCmd represents the resolve command
var resolveCmd = &cobra.Command{
	Use:   "resolve <lat,lng> <address>",
	Short: "Resolve travel from a point to an address",
	Long: `Resolve the travel distance and duration from a coordinate to a store address
through the configured routing provider, including its cache and circuit breaker.`,
	Example: `  offer-service resolve 45.815,15.9819 "Ilica 1, Zagreb"
  offer-service resolve 45.815,15.9819 "Savska 20, Zagreb" --mode walking`,
	Args: cobra.ExactArgs(2),
	RunE: runResolve,
}

// geocodeCmd represents the geocode command
var geocodeCmd = &cobra.Command{
	Use:     "geocode <address>",
	Short:   "Geocode a street address",
	Example: `  offer-service geocode "Ilica 1, Zagreb"`,
	Args:    cobra.MinimumNArgs(1),
	RunE:    runGeocode,
}

// localeCmd represents the locale command
var localeCmd = &cobra.Command{
	Use:     "locale <ip>",
	Short:   "Look up the country and distance unit of an IP address",
	Example: `  offer-service locale 8.8.8.8`,
	Args:    cobra.ExactArgs(1),
	RunE:    runLocale,
}

func init() {
	rootCmd.AddCommand(resolveCmd, geocodeCmd, localeCmd)

	resolveCmd.Flags().StringVar(&resolveMode, "mode", string(ranking.ModeDriving), "Travel mode: walking, driving, biking or transit")
}

func parseCoordinate(s string) (geo.Coordinate, error) {
	lat, lng, ok := strings.Cut(s, ",")
	if !ok {
		return geo.Coordinate{}, fmt.Errorf("coordinate %q must be lat,lng", s)
	}
	var c geo.Coordinate
	var err error
	if c.Latitude, err = strconv.ParseFloat(strings.TrimSpace(lat), 64); err != nil {
		return geo.Coordinate{}, fmt.Errorf("invalid latitude: %w", err)
	}
	if c.Longitude, err = strconv.ParseFloat(strings.TrimSpace(lng), 64); err != nil {
		return geo.Coordinate{}, fmt.Errorf("invalid longitude: %w", err)
	}
	return c, c.Validate()
}

func runResolve(cmd *cobra.Command, args []string) error {
	origin, err := parseCoordinate(args[0])
	if err != nil {
		return err
	}
	mode := ranking.TravelMode(resolveMode)
	if _, err := routing.WireTravelMode(mode); err != nil {
		return err
	}

	upstreams := app.NewUpstreams(cfg)
	defer upstreams.Close()

	route, err := upstreams.Resolver.Resolve(cmd.Context(), origin, args[1], mode)
	if err != nil {
		return fmt.Errorf("resolve failed: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Provider:  %s\n", cfg.Routing.Provider)
	fmt.Fprintf(out, "Distance:  %.2f km (%.2f mi)\n", ranking.MetersToUnit(route.DistanceMeters, ranking.UnitKilometers), ranking.MetersToUnit(route.DistanceMeters, ranking.UnitMiles))
	fmt.Fprintf(out, "Duration:  %.1f min\n", route.DurationSeconds/60)
	return nil
}

func runGeocode(cmd *cobra.Command, args []string) error {
	address := strings.Join(args, " ")

	upstreams := app.NewUpstreams(cfg)
	defer upstreams.Close()

	result, err := upstreams.Geocoder.Geocode(cmd.Context(), address)
	if err != nil {
		return fmt.Errorf("geocode failed: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Address:   %s\n", result.FormattedAddress)
	fmt.Fprintf(out, "Location:  %s\n", result.Location)
	return nil
}

func runLocale(cmd *cobra.Command, args []string) error {
	upstreams := app.NewUpstreams(cfg)
	defer upstreams.Close()

	if upstreams.Locale == nil {
		return fmt.Errorf("locale lookup is disabled (locale.enabled=false)")
	}

	country, err := upstreams.Locale.CountryCode(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("lookup failed: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Country:   %s\n", country)
	fmt.Fprintf(out, "Unit:      %s\n", ranking.UnitForCountry(country))
	return nil
}
