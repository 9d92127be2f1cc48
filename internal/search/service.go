package search

import (
	"context"
	"log/slog"
	"time"

	"github.com/satriawan/awardsearch/internal/aggregator"
	"github.com/satriawan/awardsearch/internal/filter"
	"github.com/satriawan/awardsearch/internal/models"
	"github.com/satriawan/awardsearch/internal/obs"
	"github.com/satriawan/awardsearch/internal/ranking"
)

// Service is the single entry point for one logical award search: validate,
// fan out, rank, filter. Only a ValidationError fails the whole call;
// provider trouble is returned as diagnostics on a normal response.
type Service struct {
	agg     *aggregator.Aggregator
	metrics *obs.Metrics
	logger  *slog.Logger
}

func NewService(agg *aggregator.Aggregator, metrics *obs.Metrics, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		agg:     agg,
		metrics: metrics,
		logger:  logger,
	}
}

func (s *Service) Aggregate(ctx context.Context, criteria models.SearchCriteria) (*models.SearchResponse, error) {
	start := time.Now()

	if err := criteria.Validate(); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncSearches()
	}

	result := s.agg.Search(ctx, criteria)
	offers := filter.Apply(ranking.Rank(result.Offers), criteria.Filters)

	metadata := buildMetadata(result.Diagnostics, len(offers), time.Since(start))
	s.logSearch(criteria, metadata)

	return &models.SearchResponse{
		SearchCriteria: criteria,
		Metadata:       metadata,
		Diagnostics:    result.Diagnostics,
		Offers:         offers,
	}, nil
}

func (s *Service) AggregateRoundTrip(ctx context.Context, criteria models.SearchCriteria) (*models.RoundTripResponse, error) {
	start := time.Now()

	if err := criteria.Validate(); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncSearches()
	}

	outbound, returnResult := s.agg.SearchRoundTrip(ctx, criteria)

	outboundOffers := filter.Apply(ranking.Rank(outbound.Offers), criteria.Filters)

	diagnostics := outbound.Diagnostics
	var returnOffers []models.Offer
	if returnResult != nil {
		returnOffers = filter.Apply(ranking.Rank(returnResult.Offers), criteria.Filters)
		diagnostics = append(diagnostics, returnResult.Diagnostics...)
	}

	metadata := buildMetadata(diagnostics, len(outboundOffers)+len(returnOffers), time.Since(start))
	s.logSearch(criteria, metadata)

	return &models.RoundTripResponse{
		SearchCriteria: criteria,
		Metadata:       metadata,
		Diagnostics:    diagnostics,
		OutboundOffers: outboundOffers,
		ReturnOffers:   returnOffers,
	}, nil
}

func buildMetadata(diagnostics []models.ProviderDiagnostic, totalResults int, elapsed time.Duration) models.SearchMetadata {
	metadata := models.SearchMetadata{
		TotalResults:     totalResults,
		ProvidersQueried: len(diagnostics),
		SearchTimeMs:     elapsed.Milliseconds(),
	}

	for _, diag := range diagnostics {
		switch diag.Outcome {
		case models.OutcomeSuccess:
			metadata.ProvidersSucceeded++
		case models.OutcomeDegraded:
			metadata.ProvidersDegraded++
		case models.OutcomeFailed:
			metadata.ProvidersFailed++
		}
	}

	return metadata
}

func (s *Service) logSearch(criteria models.SearchCriteria, metadata models.SearchMetadata) {
	s.logger.Info("award search completed",
		slog.String("origin", criteria.Origin),
		slog.String("destination", criteria.Destination),
		slog.String("departure_date", criteria.DepartureDate),
		slog.Int("results", metadata.TotalResults),
		slog.Int("succeeded", metadata.ProvidersSucceeded),
		slog.Int("degraded", metadata.ProvidersDegraded),
		slog.Int("failed", metadata.ProvidersFailed),
		slog.Int64("elapsed_ms", metadata.SearchTimeMs))
}
