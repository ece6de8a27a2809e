// models/reservation.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ItemTypeAccommodation = "ACCOMMODATION"
	ItemTypeActivity      = "ACTIVITY"
	ItemTypePackage       = "PACKAGE"
	ItemTypeShuttle       = "SHUTTLE"
)

const (
	ReservationStatusPending   = "PENDING"
	ReservationStatusConfirmed = "CONFIRMED"
	ReservationStatusCancelled = "CANCELLED"

	PaymentStatusPending = "PENDING"
	PaymentStatusPaid    = "PAID"

	SourcePublic = "PUBLIC"
	SourceStaff  = "STAFF"
)

// Reservation is the booking header. TotalAmount equals the sum of Amount over
// the top-level items (ParentItemID == nil) once the reservation is committed.
type Reservation struct {
	ID uint `gorm:"primaryKey" json:"id"`

	GuestID            uint   `gorm:"index;not null" json:"guestId"`
	ConfirmationNumber string `gorm:"size:32;uniqueIndex;not null" json:"confirmationNumber"`

	CheckInDate  time.Time       `gorm:"type:date" json:"checkInDate"`
	CheckOutDate time.Time       `gorm:"type:date" json:"checkOutDate"`
	TotalAmount  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"totalAmount"`
	Currency     string          `gorm:"size:3" json:"currency"`

	Status          string `gorm:"size:32;index" json:"status"`
	PaymentStatus   string `gorm:"size:32" json:"paymentStatus"`
	Source          string `gorm:"size:16" json:"source"`
	SpecialRequests string `gorm:"type:text" json:"specialRequests,omitempty"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Guest Guest             `gorm:"foreignKey:GuestID" json:"guest"`
	Items []ReservationItem `gorm:"foreignKey:ReservationID" json:"items"`
}

// ReservationItem is one priced line. Package components point at the package
// line through ParentItemID.
type ReservationItem struct {
	ID            uint  `gorm:"primaryKey" json:"id"`
	ReservationID uint  `gorm:"index;not null" json:"reservationId"`
	ParentItemID  *uint `gorm:"index" json:"parentItemId,omitempty"`

	ItemType  string          `gorm:"size:16;index" json:"itemType"`
	Title     string          `gorm:"size:255" json:"title"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unitPrice"`
	Amount    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Currency  string          `gorm:"size:3" json:"currency"`

	Meta datatypes.JSON `gorm:"column:meta" json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AccommodationStay is the 1:1 detail row of an ACCOMMODATION item.
type AccommodationStay struct {
	ID                uint `gorm:"primaryKey" json:"id"`
	ReservationItemID uint `gorm:"uniqueIndex;not null" json:"reservationItemId"`

	HotelID      uint      `gorm:"index:idx_stay_inventory;not null" json:"hotelId"`
	RoomTypeID   uint      `gorm:"index:idx_stay_inventory;not null" json:"roomTypeId"`
	CheckInDate  time.Time `gorm:"type:date;index:idx_stay_inventory" json:"checkInDate"`
	CheckOutDate time.Time `gorm:"type:date" json:"checkOutDate"`
	Nights       int       `json:"nights"`
	GuestName    string    `gorm:"size:255" json:"guestName"`
	Adults       int       `json:"adults"`
	Children     int       `json:"children"`

	CreatedAt time.Time `json:"createdAt"`
}

// ActivityBooking is the 1:1 detail row of an ACTIVITY item. ScheduleID is nil
// for package activities that have no schedule on their day.
type ActivityBooking struct {
	ID                uint  `gorm:"primaryKey" json:"id"`
	ReservationItemID uint  `gorm:"uniqueIndex;not null" json:"reservationItemId"`
	ActivityID        uint  `gorm:"index;not null" json:"activityId"`
	ScheduleID        *uint `gorm:"index" json:"scheduleId,omitempty"`

	Date             time.Time      `gorm:"type:date" json:"date"`
	StartTime        string         `gorm:"size:5" json:"startTime,omitempty"`
	Participants     int            `gorm:"not null" json:"participants"`
	ParticipantNames datatypes.JSON `json:"participantNames,omitempty"`
	EmergencyContact string         `gorm:"size:255" json:"emergencyContact,omitempty"`
	EmergencyPhone   string         `gorm:"size:50" json:"emergencyPhone,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// PackageBooking is the 1:1 detail row of a PACKAGE item.
type PackageBooking struct {
	ID                uint `gorm:"primaryKey" json:"id"`
	ReservationItemID uint `gorm:"uniqueIndex;not null" json:"reservationItemId"`
	PackageID         uint `gorm:"index;not null" json:"packageId"`

	StartDate        time.Time      `json:"startDate"`
	EndDate          time.Time      `json:"endDate"`
	Participants     int            `gorm:"not null" json:"participants"`
	ParticipantNames datatypes.JSON `json:"participantNames,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}
