package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Activity struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	Name            string          `gorm:"size:255;not null" json:"name"`
	Description     string          `gorm:"type:text" json:"description"`
	BasePrice       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"basePrice"`
	Currency        string          `gorm:"size:3" json:"currency"`
	DurationMinutes int             `json:"durationMinutes"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ActivitySchedule is a dated departure of an activity with a finite number of
// spots. AvailableSpots is only ever changed by a conditional UPDATE.
type ActivitySchedule struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	ActivityID uint `gorm:"index:idx_schedule_activity_date;not null" json:"activityId"`

	Date           time.Time `gorm:"type:date;index:idx_schedule_activity_date" json:"date"`
	StartTime      string    `gorm:"size:5" json:"startTime"`
	Capacity       int       `json:"capacity"`
	AvailableSpots int       `gorm:"not null" json:"availableSpots"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Activity Activity `gorm:"foreignKey:ActivityID" json:"-"`
}
