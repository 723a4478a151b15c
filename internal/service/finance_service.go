package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-hod-api/internal/models"
)

// FinanceFetcher fetches the live financial overview.
type FinanceFetcher interface {
	FinancialOverview(ctx context.Context, term string) (*models.FinancialOverview, error)
}

// FinanceService serves the fee collection overview with mock fallback.
type FinanceService struct {
	fetcher FinanceFetcher
	source  *FallbackSource[models.FinancialOverview]
	logger  *zap.Logger
}

// NewFinanceService constructs the service. A nil fetcher always serves the mock overview.
func NewFinanceService(fetcher FinanceFetcher, source *FallbackSource[models.FinancialOverview], logger *zap.Logger) *FinanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if source == nil {
		source = NewFallbackSource[models.FinancialOverview](FallbackSourceParams{Name: "finance", Logger: logger})
	}
	return &FinanceService{fetcher: fetcher, source: source, logger: logger}
}

// Overview returns the overview for term, or the current term when empty.
func (s *FinanceService) Overview(ctx context.Context, term string) models.Sourced[models.FinancialOverview] {
	term = strings.TrimSpace(term)
	key := term
	if key == "" {
		key = "current"
	}

	var live FetchFunc[models.FinancialOverview]
	if s.fetcher != nil {
		live = func(ctx context.Context) (models.FinancialOverview, error) {
			overview, err := s.fetcher.FinancialOverview(ctx, term)
			if err != nil {
				return models.FinancialOverview{}, err
			}
			if overview == nil {
				return models.FinancialOverview{}, errEmptyUpstream
			}
			return *overview, nil
		}
	}
	return s.source.Fetch(ctx, key, live, func() models.FinancialOverview {
		return MockFinancialOverview(term)
	})
}

// MockFinancialOverview is the static overview shown while the finance system is unreachable.
func MockFinancialOverview(term string) models.FinancialOverview {
	if term == "" {
		term = "2024/2025-1"
	}
	categories := []models.FeeCategorySummary{
		{Category: "Tuition", Billed: 1250000, Collected: 1087500},
		{Category: "Activities", Billed: 180000, Collected: 151200},
		{Category: "Transport", Billed: 96000, Collected: 88300},
	}
	var billed, collected float64
	for _, c := range categories {
		billed += c.Billed
		collected += c.Collected
	}
	return models.FinancialOverview{
		Term:            term,
		Currency:        "USD",
		TotalBilled:     billed,
		TotalCollected:  collected,
		Outstanding:     billed - collected,
		CollectionRate:  roundTo(collected/billed*100, 1),
		OverdueAccounts: 37,
		Categories:      categories,
	}
}
