package services_test

import (
	"sync"
	"testing"

	"lapak/internal/models"
	"lapak/internal/services"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

// countingRateRepo serves a fixed rate table and counts database reads.
type countingRateRepo struct {
	mu    sync.Mutex
	rate  *models.ExchangeRate
	reads int
}

func (r *countingRateRepo) Latest() (*models.ExchangeRate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reads++
	if r.rate == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return r.rate, nil
}

func (r *countingRateRepo) Upsert(rate *models.ExchangeRate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rate = rate
	return nil
}

func TestCurrencyService_Convert(t *testing.T) {
	repo := &countingRateRepo{rate: &models.ExchangeRate{
		Base:  "USD",
		Rates: map[string]float64{"EUR": 0.9, "IDR": 16000},
	}}
	service := services.NewCurrencyService(repo)

	converted, rate, err := service.Convert(10.0, "EUR")
	assert.NoError(t, err)
	assert.Equal(t, 9.0, converted)
	assert.Equal(t, 0.9, rate)

	// Base currency is identity.
	converted, rate, err = service.Convert(10.0, "USD")
	assert.NoError(t, err)
	assert.Equal(t, 10.0, converted)
	assert.Equal(t, 1.0, rate)
}

func TestCurrencyService_UnknownCurrency(t *testing.T) {
	repo := &countingRateRepo{rate: &models.ExchangeRate{
		Base:  "USD",
		Rates: map[string]float64{"EUR": 0.9},
	}}
	service := services.NewCurrencyService(repo)

	_, _, err := service.Convert(10.0, "XYZ")

	assert.ErrorIs(t, err, services.ErrInvalidInput)
}

func TestCurrencyService_NoRatesAvailable(t *testing.T) {
	service := services.NewCurrencyService(&countingRateRepo{})

	_, _, err := service.Convert(10.0, "EUR")

	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestCurrencyService_CachesRateTable(t *testing.T) {
	repo := &countingRateRepo{rate: &models.ExchangeRate{
		Base:  "USD",
		Rates: map[string]float64{"EUR": 0.9},
	}}
	service := services.NewCurrencyService(repo)

	for i := 0; i < 5; i++ {
		_, _, err := service.Convert(10.0, "EUR")
		assert.NoError(t, err)
	}

	assert.Equal(t, 1, repo.reads, "repeated conversions inside the TTL hit the in-process cache")
}
