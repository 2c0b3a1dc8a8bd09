package repositories

import (
	"fmt"
	"lapak/internal/models"
	"time"

	"gorm.io/gorm"
)

// ExchangeRateRepository defines read/write access to the exchange-rate cache.
// Writes come from an external scheduled job; the application itself only reads.
type ExchangeRateRepository interface {
	Latest() (*models.ExchangeRate, error)
	Upsert(rate *models.ExchangeRate) error
}

// GORMExchangeRateRepository is a GORM implementation of ExchangeRateRepository.
type GORMExchangeRateRepository struct {
	db *gorm.DB
}

// NewGORMExchangeRateRepository creates a new instance of GORMExchangeRateRepository.
func NewGORMExchangeRateRepository(db *gorm.DB) *GORMExchangeRateRepository {
	return &GORMExchangeRateRepository{
		db: db,
	}
}

// Latest returns the most recently updated rate row.
func (r *GORMExchangeRateRepository) Latest() (*models.ExchangeRate, error) {
	var rate models.ExchangeRate
	if err := r.db.Order("updated_at DESC").First(&rate).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("exchange rates not available: %w", gorm.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to get latest exchange rates: %w", err)
	}
	return &rate, nil
}

// Upsert replaces the single rate row, creating it when absent.
func (r *GORMExchangeRateRepository) Upsert(rate *models.ExchangeRate) error {
	var existing models.ExchangeRate
	err := r.db.First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		rate.UpdatedAt = time.Now()
		if err := r.db.Create(rate).Error; err != nil {
			return fmt.Errorf("failed to create exchange rates: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to look up exchange rates: %w", err)
	}

	existing.Base = rate.Base
	existing.Rates = rate.Rates
	existing.UpdatedAt = time.Now()
	if err := r.db.Save(&existing).Error; err != nil {
		return fmt.Errorf("failed to update exchange rates: %w", err)
	}
	*rate = existing
	return nil
}
