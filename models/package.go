package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Package is read-only reference data. Its hotels and activities drive the
// decomposition of a package booking into component line items.
type Package struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	Name         string          `gorm:"size:255;not null" json:"name"`
	Description  string          `gorm:"type:text" json:"description"`
	BasePrice    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"basePrice"`
	Currency     string          `gorm:"size:3" json:"currency"`
	DurationDays int             `json:"durationDays"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Hotels     []PackageHotel    `gorm:"foreignKey:PackageID" json:"hotels"`
	Activities []PackageActivity `gorm:"foreignKey:PackageID" json:"activities"`
}

// PackageHotel is a stay embedded in a package. CheckInDay is 1-based relative
// to the package start date.
type PackageHotel struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	PackageID  uint `gorm:"index;not null" json:"packageId"`
	HotelID    uint `gorm:"not null" json:"hotelId"`
	RoomTypeID uint `gorm:"not null" json:"roomTypeId"`
	Nights     int  `gorm:"not null" json:"nights"`
	CheckInDay int  `gorm:"not null;default:1" json:"checkInDay"`

	Hotel    Hotel    `gorm:"foreignKey:HotelID" json:"hotel"`
	RoomType RoomType `gorm:"foreignKey:RoomTypeID" json:"roomType"`
}

// PackageActivity is an activity embedded in a package. DayNumber is 1-based.
type PackageActivity struct {
	ID                   uint `gorm:"primaryKey" json:"id"`
	PackageID            uint `gorm:"index;not null" json:"packageId"`
	ActivityID           uint `gorm:"not null" json:"activityId"`
	DayNumber            int  `gorm:"not null;default:1" json:"dayNumber"`
	ParticipantsIncluded int  `json:"participantsIncluded"`

	Activity Activity `gorm:"foreignKey:ActivityID" json:"activity"`
}
