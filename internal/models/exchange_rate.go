package models

import "time"

// ExchangeRate is a read-only cache of currency rates against a base currency.
// Rows are upserted by an external scheduled job; the application only reads
// the most recent one.
type ExchangeRate struct {
	ID        uint               `json:"-" gorm:"primaryKey;autoIncrement"`
	Base      string             `json:"base" gorm:"type:varchar(3);default:USD"`
	Rates     map[string]float64 `json:"rates" gorm:"serializer:json"`
	UpdatedAt time.Time          `json:"updated_at"`
}
