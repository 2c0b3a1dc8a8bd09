package services

import (
	"fmt"
	"sync"
	"time"

	"lapak/internal/models"
	"lapak/internal/repositories"
)

// rateCacheTTL bounds how stale the in-process copy of the rate table may get.
const rateCacheTTL = 5 * time.Minute

// CurrencyService converts base-currency prices using the exchange-rate cache.
// The rate table itself is refreshed in the database by an external scheduled
// job; this service only reads it, with a short in-process cache on top.
type CurrencyService struct {
	rateRepo repositories.ExchangeRateRepository

	mu        sync.Mutex
	cached    *models.ExchangeRate
	fetchedAt time.Time
}

// NewCurrencyService creates a new CurrencyService.
func NewCurrencyService(rateRepo repositories.ExchangeRateRepository) *CurrencyService {
	return &CurrencyService{
		rateRepo: rateRepo,
	}
}

// Convert converts a base-currency price into the target currency, returning
// the converted price and the rate used.
func (s *CurrencyService) Convert(basePrice float64, currency string) (float64, float64, error) {
	rates, err := s.latest()
	if err != nil {
		return 0, 0, err
	}
	if currency == rates.Base {
		return basePrice, 1, nil
	}
	rate, ok := rates.Rates[currency]
	if !ok {
		return 0, 0, fmt.Errorf("%w: exchange rate for %s not available", ErrInvalidInput, currency)
	}
	return basePrice * rate, rate, nil
}

func (s *CurrencyService) latest() (*models.ExchangeRate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != nil && time.Since(s.fetchedAt) < rateCacheTTL {
		return s.cached, nil
	}

	rates, err := s.rateRepo.Latest()
	if err != nil {
		if isRecordNotFound(err) {
			return nil, fmt.Errorf("%w: exchange rates not available", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load exchange rates: %w", err)
	}
	s.cached = rates
	s.fetchedAt = time.Now()
	return rates, nil
}
