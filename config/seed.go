package config

import (
	"fmt"
	"log/slog"
	"time"

	"reservation-backend/models"
	"reservation-backend/utils"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const scheduleSeedDays = 30

// SeedDemoData fills empty reference tables with a small demo catalogue. Each
// table is only seeded when it has no rows.
func SeedDemoData(db *gorm.DB, lg *slog.Logger) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var hotelCount int64
		if err := tx.Model(&models.Hotel{}).Count(&hotelCount).Error; err != nil {
			return err
		}
		if hotelCount > 0 {
			lg.Info("demo data already seeded")
			return nil
		}

		hotels := []models.Hotel{
			{Name: "Riverside Hotel", Location: "Chiang Mai"},
			{Name: "Beach Resort", Location: "Krabi"},
		}
		if err := tx.Create(&hotels).Error; err != nil {
			return fmt.Errorf("hotels: %w", err)
		}

		roomTypes := []models.RoomType{
			{HotelID: hotels[0].ID, Name: "Standard", Description: "Standard Room", BaseRate: decimal.NewFromInt(1200), Currency: "THB", MaxOccupancy: 2},
			{HotelID: hotels[0].ID, Name: "Deluxe", Description: "Deluxe Room", BaseRate: decimal.NewFromInt(2200), Currency: "THB", MaxOccupancy: 3},
			{HotelID: hotels[1].ID, Name: "Bungalow", Description: "Beach Bungalow", BaseRate: decimal.NewFromInt(3500), Currency: "THB", MaxOccupancy: 4},
		}
		if err := tx.Create(&roomTypes).Error; err != nil {
			return fmt.Errorf("room types: %w", err)
		}

		var rooms []models.Room
		for i, rt := range roomTypes {
			for n := 1; n <= 4; n++ {
				rooms = append(rooms, models.Room{
					HotelID:    rt.HotelID,
					RoomTypeID: rt.ID,
					RoomNumber: fmt.Sprintf("%d%02d", i+1, n),
					Floor:      fmt.Sprintf("%d", i+1),
				})
			}
		}
		if err := tx.Create(&rooms).Error; err != nil {
			return fmt.Errorf("rooms: %w", err)
		}

		activities := []models.Activity{
			{Name: "Elephant Sanctuary Visit", BasePrice: decimal.NewFromInt(1800), Currency: "THB", DurationMinutes: 240},
			{Name: "Island Hopping", BasePrice: decimal.NewFromInt(1500), Currency: "THB", DurationMinutes: 360},
			{Name: "Cooking Class", BasePrice: decimal.NewFromInt(900), Currency: "THB", DurationMinutes: 180},
		}
		if err := tx.Create(&activities).Error; err != nil {
			return fmt.Errorf("activities: %w", err)
		}

		today := utils.DateOnly(time.Now())
		var schedules []models.ActivitySchedule
		for _, a := range activities {
			for d := 0; d < scheduleSeedDays; d++ {
				schedules = append(schedules, models.ActivitySchedule{
					ActivityID:     a.ID,
					Date:           utils.AddDays(today, d),
					StartTime:      "09:00",
					Capacity:       12,
					AvailableSpots: 12,
				})
			}
		}
		if err := tx.CreateInBatches(&schedules, 100).Error; err != nil {
			return fmt.Errorf("activity schedules: %w", err)
		}

		packages := []models.Package{
			{
				Name:         "Northern Escape",
				Description:  "Two nights in Chiang Mai with a sanctuary visit and a cooking class",
				BasePrice:    decimal.NewFromInt(9000),
				Currency:     "THB",
				DurationDays: 3,
				Hotels: []models.PackageHotel{
					{HotelID: hotels[0].ID, RoomTypeID: roomTypes[1].ID, Nights: 2, CheckInDay: 1},
				},
				Activities: []models.PackageActivity{
					{ActivityID: activities[0].ID, DayNumber: 1, ParticipantsIncluded: 2},
					{ActivityID: activities[2].ID, DayNumber: 2, ParticipantsIncluded: 2},
				},
			},
			{
				Name:         "Andaman Island Week",
				Description:  "Three nights on the beach with island hopping",
				BasePrice:    decimal.NewFromInt(14000),
				Currency:     "THB",
				DurationDays: 4,
				Hotels: []models.PackageHotel{
					{HotelID: hotels[1].ID, RoomTypeID: roomTypes[2].ID, Nights: 3, CheckInDay: 1},
				},
				Activities: []models.PackageActivity{
					{ActivityID: activities[1].ID, DayNumber: 2, ParticipantsIncluded: 2},
				},
			},
		}
		if err := tx.Create(&packages).Error; err != nil {
			return fmt.Errorf("packages: %w", err)
		}

		routes := []models.ShuttleRoute{
			{Name: "Airport Transfer CNX", Origin: "Chiang Mai Airport", Destination: "Riverside Hotel", BasePrice: decimal.NewFromInt(350), Currency: "THB", MaxPassengers: 10},
			{Name: "Airport Transfer KBV", Origin: "Krabi Airport", Destination: "Beach Resort", BasePrice: decimal.NewFromInt(500), Currency: "THB", MaxPassengers: 12},
		}
		if err := tx.Create(&routes).Error; err != nil {
			return fmt.Errorf("shuttle routes: %w", err)
		}

		lg.Info("demo data seeded",
			"hotels", len(hotels),
			"rooms", len(rooms),
			"activities", len(activities),
			"schedules", len(schedules),
			"packages", len(packages),
			"shuttle_routes", len(routes),
		)
		return nil
	})
}
