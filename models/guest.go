package models

import "time"

// Guest is identified by email. Repeat bookings update the contact fields in place.
type Guest struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	Email       string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	FirstName   string `gorm:"size:120" json:"firstName"`
	LastName    string `gorm:"size:120" json:"lastName"`
	Phone       string `gorm:"size:50" json:"phone"`
	Nationality string `gorm:"size:64" json:"nationality"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FullName joins first and last name for display.
func (g Guest) FullName() string {
	switch {
	case g.FirstName == "":
		return g.LastName
	case g.LastName == "":
		return g.FirstName
	}
	return g.FirstName + " " + g.LastName
}
