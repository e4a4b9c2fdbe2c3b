package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kosarica/offer-service/config"
	"github.com/kosarica/offer-service/internal/app"
	"github.com/kosarica/offer-service/internal/catalog"
	"github.com/kosarica/offer-service/internal/database"
	"github.com/kosarica/offer-service/internal/geo"
	"github.com/kosarica/offer-service/internal/handlers"
	"github.com/kosarica/offer-service/internal/ranking"
)

var (
	rankFile       string
	rankLat        float64
	rankLng        float64
	rankUnit       string
	rankMode       string
	rankMetric     string
	rankLimit      float64
	rankQuery      string
	rankSearchType string
	rankSort       string
	rankOrder      string
	rankOffline    bool
	rankOutput     string
)

// rankCmd represents the rank command
var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Run one ranking pass and print the products",
	Long: `Run one ranking pass over the configured catalog, or over an XLSX workbook
or CSV directory when --file is given. Travel is resolved from --lat/--lng through the configured
routing provider unless --offline is set, in which case every offer is unresolved.`,
	Example: `  offer-service rank --file catalog.xlsx --lat 45.815 --lng 15.9819 --limit 5
  offer-service rank --mode walking --metric time --limit 20 --query mlijeko --sort price
  offer-service rank --file catalog.xlsx --offline --search-type store --query spar --output json`,
	Args: cobra.NoArgs,
	RunE: runRank,
}

func init() {
	rootCmd.AddCommand(rankCmd)

	f := rankCmd.Flags()
	f.StringVar(&rankFile, "file", "", "Rank this workbook or CSV directory instead of the configured catalog")
	f.Float64Var(&rankLat, "lat", 0, "Shopper latitude")
	f.Float64Var(&rankLng, "lng", 0, "Shopper longitude")
	f.StringVar(&rankUnit, "unit", "km", "Distance unit: km or mi")
	f.StringVar(&rankMode, "mode", string(ranking.ModeDriving), "Travel mode: walking, driving, biking or transit")
	f.StringVar(&rankMetric, "metric", string(ranking.MetricDistance), "Constraint metric: distance or time")
	f.Float64Var(&rankLimit, "limit", 10, "Constraint limit in the unit or in minutes")
	f.StringVar(&rankQuery, "query", "", "Free-text query")
	f.StringVar(&rankSearchType, "search-type", string(ranking.SearchProduct), "Search type: product or store")
	f.StringVar(&rankSort, "sort", string(ranking.SortByDistance), "Offer sort key: distance, price or score")
	f.StringVar(&rankOrder, "order", "insertion", "Product order: insertion or score")
	f.BoolVar(&rankOffline, "offline", false, "Do not call the routing provider")
	f.StringVar(&rankOutput, "output", "table", "Output format: table or json")
}

func runRank(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	shopper := ranking.ShopperContext{
		Unit: ranking.DistanceUnit(rankUnit),
		Constraint: ranking.TravelConstraint{
			Mode:   ranking.TravelMode(rankMode),
			Metric: ranking.TravelMetric(rankMetric),
			Limit:  rankLimit,
		},
	}
	if cmd.Flags().Changed("lat") || cmd.Flags().Changed("lng") {
		shopper.Location = &geo.Coordinate{Latitude: rankLat, Longitude: rankLng}
	}
	if err := shopper.Validate(); err != nil {
		return err
	}

	q, err := rankQueryFromFlags()
	if err != nil {
		return err
	}
	if err := cfg.Ranking.Validate(); err != nil {
		return fmt.Errorf("%w: ranking.%w", config.ErrInvalidConfig, err)
	}

	var source ranking.CatalogSource
	if rankFile != "" {
		source, err = fileSource(rankFile, catalog.EncodingAuto)
		if err != nil {
			return err
		}
	} else {
		source, err = app.OpenSource(ctx, cfg)
		if err != nil {
			return err
		}
		defer database.Close()
	}

	var resolver ranking.Resolver
	if !rankOffline && shopper.Location != nil {
		upstreams := app.NewUpstreams(cfg)
		defer upstreams.Close()
		resolver = upstreams.Resolver
	}

	result, err := ranking.NewService(source, resolver, &cfg.Ranking).Rank(ctx, shopper, q)
	if err != nil {
		return fmt.Errorf("ranking failed: %w", err)
	}

	logger.Info().Int("results", result.ResultsCount).Str("status", string(result.Status)).Msg("Ranking complete")

	switch strings.ToLower(rankOutput) {
	case "json":
		return outputRankJSON(cmd.OutOrStdout(), result, shopper.Unit)
	case "table":
		outputRankTable(cmd.OutOrStdout(), result, shopper.Unit)
		return nil
	default:
		return fmt.Errorf("invalid output format: %s (use 'table' or 'json')", rankOutput)
	}
}

func rankQueryFromFlags() (ranking.Query, error) {
	q := ranking.Query{
		Text:       rankQuery,
		SearchType: ranking.SearchType(rankSearchType),
		SortKey:    ranking.SortKey(rankSort),
	}
	switch q.SearchType {
	case ranking.SearchProduct, ranking.SearchStore:
	default:
		return q, fmt.Errorf("invalid search type: %s", rankSearchType)
	}
	switch q.SortKey {
	case ranking.SortByDistance, ranking.SortByPrice, ranking.SortByScore:
	default:
		return q, fmt.Errorf("invalid sort key: %s", rankSort)
	}
	switch rankOrder {
	case "insertion":
	case "score":
		q.Order = ranking.OrderBestScore
	default:
		return q, fmt.Errorf("invalid product order: %s", rankOrder)
	}
	return q, nil
}

func outputRankTable(out io.Writer, result *ranking.Result, unit ranking.DistanceUnit) {
	if len(result.Products) == 0 {
		fmt.Fprintln(out, result.Message)
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintf(w, "SKU\tPRODUCT\tSTORE\tPRICE\tDISTANCE (%s)\tMINUTES\tSCORE\n", unit)
	fmt.Fprintln(w, "---\t-------\t-----\t-----\t--------\t-------\t-----")

	for _, p := range result.Products {
		for _, o := range p.Offers {
			distance, minutes := "-", "-"
			if o.Travel.Resolved {
				distance = fmt.Sprintf("%.2f", o.Distance())
				minutes = fmt.Sprintf("%.0f", o.TravelTimeMinutes())
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%s\t%s\t%.0f\n", p.SKU, p.Name, o.SellerName, o.Price, distance, minutes, o.Score)
		}
	}

	w.Flush()
	fmt.Fprintf(out, "\n%d products\n", result.ResultsCount)
}

func outputRankJSON(out io.Writer, result *ranking.Result, unit ranking.DistanceUnit) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(handlers.NewResultResponse(result, unit))
}
