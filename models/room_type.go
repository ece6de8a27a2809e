package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Hotel owns room types and the physical rooms behind them.
type Hotel struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"size:255;not null" json:"name"`
	Location string `gorm:"size:255" json:"location"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// RoomType is priced per room-night. Capacity is the number of Rooms of the type.
type RoomType struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	HotelID uint `gorm:"index;not null" json:"hotelId"`

	Name         string          `gorm:"size:120" json:"name"`
	Description  string          `gorm:"type:text" json:"description"`
	BaseRate     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"baseRate"`
	Currency     string          `gorm:"size:3" json:"currency"`
	MaxOccupancy int             `json:"maxOccupancy"`

	CreatedAt time.Time      `json:"createdAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Hotel Hotel `gorm:"foreignKey:HotelID" json:"-"`
}
