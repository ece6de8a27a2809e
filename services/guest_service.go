package services

import (
	"context"
	"errors"
	"strings"

	"reservation-backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GuestInfo is the contact block of a booking request.
type GuestInfo struct {
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	Nationality string
}

// GuestService finds or creates guests by email.
type GuestService struct {
	DB                 *gorm.DB
	DefaultNationality string
}

func NewGuestService(db *gorm.DB, defaultNationality string) *GuestService {
	return &GuestService{DB: db, DefaultNationality: defaultNationality}
}

// Resolve returns the guest owning info.Email, creating it on first sight and
// otherwise overwriting its contact fields. Blank fields keep the stored value.
// Pass the booking transaction as tx; nil runs on the service DB.
func (s *GuestService) Resolve(ctx context.Context, tx *gorm.DB, info GuestInfo) (models.Guest, error) {
	if tx == nil {
		tx = s.DB
	}
	tx = tx.WithContext(ctx)

	email := strings.TrimSpace(info.Email)
	if email == "" {
		return models.Guest{}, validationError("guest email is required")
	}

	var guest models.Guest
	err := tx.Where("email = ?", email).First(&guest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		nationality := strings.TrimSpace(info.Nationality)
		if nationality == "" {
			nationality = s.DefaultNationality
		}
		guest = models.Guest{
			Email:       email,
			FirstName:   strings.TrimSpace(info.FirstName),
			LastName:    strings.TrimSpace(info.LastName),
			Phone:       strings.TrimSpace(info.Phone),
			Nationality: nationality,
		}
		// a concurrent booking may insert the same email between the lookup and here
		res := tx.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "email"}}, DoNothing: true}).Create(&guest)
		if res.Error != nil {
			return models.Guest{}, storageError("create guest", res.Error)
		}
		if res.RowsAffected == 1 && guest.ID != 0 {
			return guest, nil
		}
		if err := tx.Where("email = ?", email).First(&guest).Error; err != nil {
			return models.Guest{}, storageError("load guest", err)
		}
	} else if err != nil {
		return models.Guest{}, storageError("find guest", err)
	}

	updates := map[string]interface{}{}
	setIfPresent := func(column, incoming string, stored *string) {
		incoming = strings.TrimSpace(incoming)
		if incoming == "" || incoming == *stored {
			return
		}
		updates[column] = incoming
		*stored = incoming
	}
	setIfPresent("first_name", info.FirstName, &guest.FirstName)
	setIfPresent("last_name", info.LastName, &guest.LastName)
	setIfPresent("phone", info.Phone, &guest.Phone)
	setIfPresent("nationality", info.Nationality, &guest.Nationality)

	if len(updates) == 0 {
		return guest, nil
	}
	if err := tx.Model(&models.Guest{}).Where("id = ?", guest.ID).Updates(updates).Error; err != nil {
		return models.Guest{}, storageError("update guest", err)
	}
	return guest, nil
}

// FindByEmail loads a guest by exact email.
func (s *GuestService) FindByEmail(ctx context.Context, email string) (models.Guest, error) {
	var guest models.Guest
	err := s.DB.WithContext(ctx).Where("email = ?", strings.TrimSpace(email)).First(&guest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Guest{}, notFoundError("guest %s not found", email)
	}
	if err != nil {
		return models.Guest{}, storageError("find guest", err)
	}
	return guest, nil
}
