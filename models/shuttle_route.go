package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ShuttleRoute struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Name          string          `gorm:"size:255;not null" json:"name"`
	Origin        string          `gorm:"size:255" json:"origin"`
	Destination   string          `gorm:"size:255" json:"destination"`
	BasePrice     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"basePrice"`
	Currency      string          `gorm:"size:3" json:"currency"`
	MaxPassengers int             `gorm:"not null" json:"maxPassengers"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
