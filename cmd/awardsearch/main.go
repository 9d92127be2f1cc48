package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/satriawan/awardsearch/internal/aggregator"
	"github.com/satriawan/awardsearch/internal/cache"
	"github.com/satriawan/awardsearch/internal/models"
	"github.com/satriawan/awardsearch/internal/providers"
	"github.com/satriawan/awardsearch/internal/search"
)

var (
	flagOrigin      string
	flagDestination string
	flagDate        string
	flagReturnDate  string
	flagPassengers  int
	flagCabin       string
	flagTimeout     time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "awardsearch",
	Short: "Search award availability across airline programs",
	Long:  "awardsearch fans one search out to every configured airline program and prints the merged, points-ranked award fares.",
	RunE:  runSearch,
}

func init() {
	rootCmd.Flags().StringVar(&flagOrigin, "origin", "", "origin airport code (required)")
	rootCmd.Flags().StringVar(&flagDestination, "destination", "", "destination airport code (required)")
	rootCmd.Flags().StringVar(&flagDate, "date", "", "departure date YYYY-MM-DD (required)")
	rootCmd.Flags().StringVar(&flagReturnDate, "return", "", "return date YYYY-MM-DD for round trips")
	rootCmd.Flags().IntVar(&flagPassengers, "passengers", 1, "number of passengers")
	rootCmd.Flags().StringVar(&flagCabin, "cabin", "", "only show one cabin (economy, premium_economy, business, first)")
	rootCmd.Flags().DurationVar(&flagTimeout, "timeout", 25*time.Second, "per-provider timeout")
}

func runSearch(cmd *cobra.Command, args []string) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	providerList, err := buildProviders()
	if err != nil {
		return err
	}

	aggConfig := aggregator.DefaultConfig()
	aggConfig.ProviderTimeout = flagTimeout

	agg := aggregator.NewAggregator(providerList, cache.NewMemoryStore(), aggConfig, nil, logger)
	service := search.NewService(agg, nil, logger)

	criteria := models.SearchCriteria{
		Origin:        flagOrigin,
		Destination:   flagDestination,
		DepartureDate: flagDate,
		Passengers:    flagPassengers,
	}
	if flagReturnDate != "" {
		criteria.ReturnDate = &flagReturnDate
	}
	if flagCabin != "" {
		criteria.Filters = &models.SearchFilters{
			CabinClasses: []models.CabinClass{models.CabinClass(flagCabin)},
		}
	}

	if criteria.ReturnDate != nil {
		resp, err := service.AggregateRoundTrip(context.Background(), criteria)
		if err != nil {
			return err
		}
		fmt.Println("Outbound:")
		printOffers(resp.OutboundOffers)
		fmt.Println("\nReturn:")
		printOffers(resp.ReturnOffers)
		printDiagnostics(resp.Diagnostics)
		return nil
	}

	resp, err := service.Aggregate(context.Background(), criteria)
	if err != nil {
		return err
	}
	printOffers(resp.Offers)
	printDiagnostics(resp.Diagnostics)
	return nil
}

func buildProviders() ([]providers.Provider, error) {
	american := providers.NewAmericanProvider(providers.Config{
		BaseURL: envOr("AA_BASE_URL", "https://www.aa.com"),
		Credentials: providers.Credentials{
			Cookie:    os.Getenv("AA_COOKIE"),
			XSRFToken: os.Getenv("AA_XSRF_TOKEN"),
		},
	})

	alaska := providers.NewAlaskaProvider(providers.Config{
		BaseURL: envOr("AS_BASE_URL", "https://www.alaskaair.com"),
		Credentials: providers.Credentials{
			Cookie:    os.Getenv("AS_COOKIE"),
			SessionID: os.Getenv("AS_SESSION_ID"),
		},
	})

	virgin := providers.NewVirginProvider(providers.Config{
		BaseURL: envOr("VS_BASE_URL", "https://www.virginatlantic.com"),
		Credentials: providers.Credentials{
			Cookie:        os.Getenv("VS_COOKIE"),
			Authorization: os.Getenv("VS_AUTHORIZATION"),
		},
	})

	airfrance, err := providers.NewAirFranceProvider()
	if err != nil {
		return nil, err
	}

	return []providers.Provider{american, alaska, virgin, airfrance}, nil
}

func printOffers(offers []models.Offer) {
	if len(offers) == 0 {
		fmt.Println("no award availability found")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ROUTE\tPROVIDER\tCABIN\tPOINTS\tTAX\tDEPART\tDURATION\tSEATS")
	for _, offer := range offers {
		seats := "-"
		if offer.SeatsRemaining != nil {
			seats = fmt.Sprintf("%d", *offer.SeatsRemaining)
		}
		if offer.SoldOut {
			seats = "sold out"
		}
		fmt.Fprintf(w, "%s-%s\t%s\t%s\t%s\t%s\t%s\t%dm\t%s\n",
			offer.Route.Origin, offer.Route.Destination,
			offer.ProviderCode,
			offer.CabinClass,
			offer.PointsFormatted,
			offer.Tax.Formatted,
			offer.DepartureTime.Format("2006-01-02 15:04"),
			offer.DurationMinutes,
			seats)
	}
	w.Flush()
}

func printDiagnostics(diagnostics []models.ProviderDiagnostic) {
	for _, diag := range diagnostics {
		if diag.Outcome == models.OutcomeSuccess {
			continue
		}
		fmt.Fprintf(os.Stderr, "warning: %s (%s) %s", diag.Provider, diag.ProviderCode, diag.Outcome)
		if diag.Reason != "" {
			fmt.Fprintf(os.Stderr, ": %s", diag.Reason)
		}
		if diag.CapturedAt != nil {
			fmt.Fprintf(os.Stderr, " (cached %s)", diag.CapturedAt.Format(time.RFC3339))
		}
		fmt.Fprintln(os.Stderr)
	}
}

func envOr(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
