package services

import (
	"context"
	"fmt"
	"testing"

	"reservation-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var stayCodes int

// bookStay writes a reservation holding one stay, bypassing the composer.
func bookStay(t *testing.T, db *gorm.DB, f fixture, checkIn, checkOut, status string) {
	t.Helper()
	stayCodes++
	r := models.Reservation{
		GuestID:            1,
		ConfirmationNumber: fmt.Sprintf("TST-%08d", stayCodes),
		CheckInDate:        day(checkIn),
		CheckOutDate:       day(checkOut),
		TotalAmount:        dec(0),
		Status:             status,
	}
	require.NoError(t, db.Create(&r).Error)
	item := models.ReservationItem{ReservationID: r.ID, ItemType: models.ItemTypeAccommodation, Quantity: 1, UnitPrice: dec(0), Amount: dec(0)}
	require.NoError(t, db.Create(&item).Error)
	require.NoError(t, db.Create(&models.AccommodationStay{
		ReservationItemID: item.ID,
		HotelID:           f.Hotel.ID,
		RoomTypeID:        f.RoomType.ID,
		CheckInDate:       day(checkIn),
		CheckOutDate:      day(checkOut),
	}).Error)
}

func TestRoomCapacity_HalfOpenOverlap(t *testing.T) {
	db := newTestDB(t)
	f := seedFixture(t, db, fixtureOpts{Rooms: 1})
	bookStay(t, db, f, "2026-05-10", "2026-05-13", models.ReservationStatusConfirmed)
	checker := NewAvailabilityChecker(NewCatalogService(db), true)

	tests := []struct {
		name      string
		in, out   string
		available bool
	}{
		{"ends on arrival day", "2026-05-08", "2026-05-10", true},
		{"starts on departure day", "2026-05-13", "2026-05-15", true},
		{"same window", "2026-05-10", "2026-05-13", false},
		{"straddles arrival", "2026-05-09", "2026-05-11", false},
		{"straddles departure", "2026-05-12", "2026-05-14", false},
		{"inside", "2026-05-11", "2026-05-12", false},
		{"encloses", "2026-05-01", "2026-05-20", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := checker.RoomCapacity(context.Background(), f.Hotel, f.RoomType.ID, day(tt.in), day(tt.out))
			require.NoError(t, err)
			assert.Equal(t, tt.available, got.Available, got.Reason)
		})
	}
}

func TestRoomCapacity_IgnoresCancelledAndDeleted(t *testing.T) {
	db := newTestDB(t)
	f := seedFixture(t, db, fixtureOpts{Rooms: 1})
	bookStay(t, db, f, "2026-05-10", "2026-05-13", models.ReservationStatusCancelled)
	bookStay(t, db, f, "2026-05-10", "2026-05-13", models.ReservationStatusConfirmed)
	require.NoError(t, db.Where("status = ?", models.ReservationStatusConfirmed).Delete(&models.Reservation{}).Error)
	checker := NewAvailabilityChecker(NewCatalogService(db), true)

	got, err := checker.RoomCapacity(context.Background(), f.Hotel, f.RoomType.ID, day("2026-05-10"), day("2026-05-13"))
	require.NoError(t, err)
	assert.True(t, got.Available)
}

func TestRoomCapacity_CountsAgainstRooms(t *testing.T) {
	db := newTestDB(t)
	f := seedFixture(t, db, fixtureOpts{Rooms: 2})
	checker := NewAvailabilityChecker(NewCatalogService(db), true)
	ctx := context.Background()

	bookStay(t, db, f, "2026-05-10", "2026-05-13", models.ReservationStatusConfirmed)
	got, err := checker.RoomCapacity(ctx, f.Hotel, f.RoomType.ID, day("2026-05-10"), day("2026-05-13"))
	require.NoError(t, err)
	assert.True(t, got.Available)

	bookStay(t, db, f, "2026-05-11", "2026-05-12", models.ReservationStatusPending)
	got, err = checker.RoomCapacity(ctx, f.Hotel, f.RoomType.ID, day("2026-05-10"), day("2026-05-13"))
	require.NoError(t, err)
	assert.False(t, got.Available)
	assert.Equal(t, "No rooms available at Riverside Hotel from 2026-05-10 to 2026-05-13", got.Reason)
}

func TestCheckPackage_PlacesComponentsOnTheCalendar(t *testing.T) {
	db := newTestDB(t)
	f := seedFixture(t, db, fixtureOpts{})
	checker := NewAvailabilityChecker(NewCatalogService(db), false)

	target, verdict, err := checker.CheckPackage(context.Background(), PackageRequest{
		PackageID:    f.Package.ID,
		StartDate:    day("2026-04-01"),
		EndDate:      day("2026-04-03"),
		Participants: 2,
	})
	require.NoError(t, err)
	require.True(t, verdict.Available)

	require.Len(t, target.Hotels, 1)
	assert.Equal(t, "2026-04-01", target.Hotels[0].CheckIn.Format("2006-01-02"))
	assert.Equal(t, "2026-04-03", target.Hotels[0].CheckOut.Format("2006-01-02"))
	require.Len(t, target.Activities, 1)
	require.NotNil(t, target.Activities[0].Schedule)
	assert.Equal(t, f.PackageSchedule.ID, target.Activities[0].Schedule.ID)
}

func TestCheckPackage_ActivitySpotsAreChecked(t *testing.T) {
	db := newTestDB(t)
	f := seedFixture(t, db, fixtureOpts{})
	checker := NewAvailabilityChecker(NewCatalogService(db), false)

	_, verdict, err := checker.CheckPackage(context.Background(), PackageRequest{
		PackageID:    f.Package.ID,
		StartDate:    day("2026-04-01"),
		EndDate:      day("2026-04-03"),
		Participants: 11,
	})
	require.NoError(t, err)
	assert.False(t, verdict.Available)
	assert.Contains(t, verdict.Reason, "Only 10 spots left for Elephant Sanctuary")
}

func TestCheckPackage_DanglingComponent(t *testing.T) {
	db := newTestDB(t)
	f := seedFixture(t, db, fixtureOpts{})
	require.NoError(t, db.Delete(&models.Activity{}, f.PackageActivity.ID).Error)
	checker := NewAvailabilityChecker(NewCatalogService(db), false)

	_, _, err := checker.CheckPackage(context.Background(), PackageRequest{PackageID: f.Package.ID, StartDate: day("2026-04-01"), EndDate: day("2026-04-01"), Participants: 1})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCheckActivity_ScheduleMustBelongToActivity(t *testing.T) {
	db := newTestDB(t)
	f := seedFixture(t, db, fixtureOpts{})
	checker := NewAvailabilityChecker(NewCatalogService(db), false)

	_, _, err := checker.CheckActivity(context.Background(), ActivityRequest{
		ActivityID:   f.Activity.ID,
		ScheduleID:   f.PackageSchedule.ID,
		Participants: 1,
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClaimSpots(t *testing.T) {
	db := newTestDB(t)
	f := seedFixture(t, db, fixtureOpts{ScheduleSpots: 3})
	checker := NewAvailabilityChecker(NewCatalogService(db), false)
	ctx := context.Background()

	require.NoError(t, checker.ClaimSpots(ctx, f.Activity, f.Schedule, 3))

	err := checker.ClaimSpots(ctx, f.Activity, f.Schedule, 1)
	assert.ErrorIs(t, err, ErrCapacity)

	var s models.ActivitySchedule
	require.NoError(t, db.First(&s, f.Schedule.ID).Error)
	assert.Equal(t, 0, s.AvailableSpots)
}

func TestLockRoomTypesInsideTransaction(t *testing.T) {
	db := newTestDB(t)
	f := seedFixture(t, db, fixtureOpts{})
	checker := NewAvailabilityChecker(NewCatalogService(db), true)

	err := db.Transaction(func(tx *gorm.DB) error {
		_, verdict, err := checker.WithTx(tx).CheckAccommodation(context.Background(), AccommodationRequest{
			HotelID: f.Hotel.ID, RoomTypeID: f.RoomType.ID,
			CheckIn: day("2026-05-01"), CheckOut: day("2026-05-02"), Adults: 1,
		})
		if err != nil {
			return err
		}
		assert.True(t, verdict.Available)
		return nil
	})
	require.NoError(t, err)
}
