package services

import (
	"context"
	"errors"
	"time"

	"reservation-backend/models"
	"reservation-backend/utils"

	"gorm.io/gorm"
)

// CatalogService reads the reference data bookings point at. Every lookup maps
// a missing row to ErrNotFound with the entity named in the message.
type CatalogService struct {
	DB *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{DB: db}
}

// WithTx returns a copy bound to the booking transaction.
func (s *CatalogService) WithTx(tx *gorm.DB) *CatalogService {
	return &CatalogService{DB: tx}
}

func (s *CatalogService) Hotel(ctx context.Context, id uint) (models.Hotel, error) {
	var hotel models.Hotel
	err := s.DB.WithContext(ctx).First(&hotel, id).Error
	return hotel, lookupError(err, "hotel", id)
}

// RoomType loads a room type belonging to hotelID.
func (s *CatalogService) RoomType(ctx context.Context, hotelID, id uint) (models.RoomType, error) {
	var rt models.RoomType
	err := s.DB.WithContext(ctx).
		Preload("Hotel").
		Where("id = ? AND hotel_id = ?", id, hotelID).
		First(&rt).Error
	return rt, lookupError(err, "room type", id)
}

func (s *CatalogService) Activity(ctx context.Context, id uint) (models.Activity, error) {
	var activity models.Activity
	err := s.DB.WithContext(ctx).First(&activity, id).Error
	return activity, lookupError(err, "activity", id)
}

// Schedule loads a schedule of activityID.
func (s *CatalogService) Schedule(ctx context.Context, activityID, id uint) (models.ActivitySchedule, error) {
	var schedule models.ActivitySchedule
	err := s.DB.WithContext(ctx).
		Where("id = ? AND activity_id = ?", id, activityID).
		First(&schedule).Error
	return schedule, lookupError(err, "activity schedule", id)
}

// ScheduleOn returns the first schedule of an activity on a date, or nil when
// the activity is not scheduled that day.
func (s *CatalogService) ScheduleOn(ctx context.Context, activityID uint, date time.Time) (*models.ActivitySchedule, error) {
	day := utils.DateOnly(date)
	var schedule models.ActivitySchedule
	err := s.DB.WithContext(ctx).
		Where("activity_id = ? AND date >= ? AND date < ?", activityID, day, day.AddDate(0, 0, 1)).
		Order("start_time ASC, id ASC").
		First(&schedule).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storageError("load activity schedule", err)
	}
	return &schedule, nil
}

// Package loads a package with its hotels, room types and activities.
func (s *CatalogService) Package(ctx context.Context, id uint) (models.Package, error) {
	var pkg models.Package
	err := s.DB.WithContext(ctx).
		Preload("Hotels", func(db *gorm.DB) *gorm.DB { return db.Order("check_in_day ASC, id ASC") }).
		Preload("Hotels.Hotel").
		Preload("Hotels.RoomType").
		Preload("Activities", func(db *gorm.DB) *gorm.DB { return db.Order("day_number ASC, id ASC") }).
		Preload("Activities.Activity").
		First(&pkg, id).Error
	if err := lookupError(err, "package", id); err != nil {
		return models.Package{}, err
	}

	// preloads silently leave zero values for dangling references
	for _, h := range pkg.Hotels {
		if h.Hotel.ID == 0 {
			return models.Package{}, notFoundError("hotel %d of package %d not found", h.HotelID, id)
		}
		if h.RoomType.ID == 0 || h.RoomType.HotelID != h.HotelID {
			return models.Package{}, notFoundError("room type %d of package %d not found", h.RoomTypeID, id)
		}
	}
	for _, a := range pkg.Activities {
		if a.Activity.ID == 0 {
			return models.Package{}, notFoundError("activity %d of package %d not found", a.ActivityID, id)
		}
	}
	return pkg, nil
}

func (s *CatalogService) ShuttleRoute(ctx context.Context, id uint) (models.ShuttleRoute, error) {
	var route models.ShuttleRoute
	err := s.DB.WithContext(ctx).First(&route, id).Error
	return route, lookupError(err, "shuttle route", id)
}

// RoomCount is the number of physical rooms of a room type in a hotel.
func (s *CatalogService) RoomCount(ctx context.Context, hotelID, roomTypeID uint) (int64, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&models.Room{}).
		Where("hotel_id = ? AND room_type_id = ?", hotelID, roomTypeID).
		Count(&n).Error
	if err != nil {
		return 0, storageError("count rooms", err)
	}
	return n, nil
}

func lookupError(err error, entity string, id uint) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFoundError("%s %d not found", entity, id)
	}
	return storageError("load "+entity, err)
}
