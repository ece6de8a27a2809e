package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"reservation-backend/models"
	"reservation-backend/queue"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

// newTestDB opens a private in-memory SQLite database. One connection runs
// whole transactions one after another, so snapshot visibility under MySQL
// isolation levels is not exercised here; TestCreate_UsesReadCommitted pins
// the level the booking transaction asks for.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.Hotel{}, &models.RoomType{}, &models.Room{},
		&models.Activity{}, &models.ActivitySchedule{},
		&models.Package{}, &models.PackageHotel{}, &models.PackageActivity{},
		&models.ShuttleRoute{}, &models.Guest{},
		&models.Reservation{}, &models.ReservationItem{},
		&models.AccommodationStay{}, &models.ActivityBooking{}, &models.PackageBooking{},
	))
	return db
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

// fixture is a small catalogue: one hotel with rooms, an activity with a
// schedule, a package of one stay and one activity, and a shuttle route.
type fixture struct {
	Hotel           models.Hotel
	RoomType        models.RoomType
	Activity        models.Activity
	Schedule        models.ActivitySchedule
	PackageActivity models.Activity
	PackageSchedule models.ActivitySchedule
	Package         models.Package
	Route           models.ShuttleRoute
}

type fixtureOpts struct {
	Rooms         int
	ScheduleSpots int
}

func seedFixture(t *testing.T, db *gorm.DB, opts fixtureOpts) fixture {
	t.Helper()
	if opts.Rooms == 0 {
		opts.Rooms = 3
	}
	if opts.ScheduleSpots == 0 {
		opts.ScheduleSpots = 3
	}

	var f fixture
	f.Hotel = models.Hotel{Name: "Riverside Hotel", Location: "Chiang Mai"}
	require.NoError(t, db.Create(&f.Hotel).Error)

	f.RoomType = models.RoomType{HotelID: f.Hotel.ID, Name: "Deluxe", BaseRate: dec(100), Currency: "THB", MaxOccupancy: 2}
	require.NoError(t, db.Create(&f.RoomType).Error)
	for i := 0; i < opts.Rooms; i++ {
		room := models.Room{HotelID: f.Hotel.ID, RoomTypeID: f.RoomType.ID, RoomNumber: fmt.Sprintf("10%d", i+1)}
		require.NoError(t, db.Create(&room).Error)
	}

	f.Activity = models.Activity{Name: "Cooking Class", BasePrice: dec(50), Currency: "THB", DurationMinutes: 180}
	require.NoError(t, db.Create(&f.Activity).Error)
	f.Schedule = models.ActivitySchedule{ActivityID: f.Activity.ID, Date: day("2026-03-10"), StartTime: "09:00", Capacity: opts.ScheduleSpots, AvailableSpots: opts.ScheduleSpots}
	require.NoError(t, db.Create(&f.Schedule).Error)

	f.PackageActivity = models.Activity{Name: "Elephant Sanctuary", BasePrice: dec(40), Currency: "THB", DurationMinutes: 240}
	require.NoError(t, db.Create(&f.PackageActivity).Error)
	f.PackageSchedule = models.ActivitySchedule{ActivityID: f.PackageActivity.ID, Date: day("2026-04-01"), StartTime: "08:00", Capacity: 10, AvailableSpots: 10}
	require.NoError(t, db.Create(&f.PackageSchedule).Error)

	f.Package = models.Package{
		Name:         "Northern Escape",
		BasePrice:    dec(500),
		Currency:     "THB",
		DurationDays: 3,
		Hotels: []models.PackageHotel{
			{HotelID: f.Hotel.ID, RoomTypeID: f.RoomType.ID, Nights: 2, CheckInDay: 1},
		},
		Activities: []models.PackageActivity{
			{ActivityID: f.PackageActivity.ID, DayNumber: 1, ParticipantsIncluded: 2},
		},
	}
	require.NoError(t, db.Create(&f.Package).Error)

	f.Route = models.ShuttleRoute{Name: "Airport Transfer", Origin: "CNX", Destination: "Riverside Hotel", BasePrice: dec(25), Currency: "THB", MaxPassengers: 4}
	require.NoError(t, db.Create(&f.Route).Error)
	return f
}

func testConfig() ReservationConfig {
	return ReservationConfig{
		DefaultNationality:    "TH",
		DefaultCurrency:       "THB",
		ConfirmationPrefix:    "RES",
		InitialStatus:         models.ReservationStatusConfirmed,
		PaymentStatus:         models.PaymentStatusPending,
		NotificationTransport: "test",
	}
}

func guest(email string) GuestInfo {
	return GuestInfo{FirstName: "Somchai", LastName: "Jaidee", Email: email, Phone: "+66812345678"}
}

func activityRequest(f fixture, participants int) ReservationRequest {
	return ReservationRequest{
		ItemType: models.ItemTypeActivity,
		Guest:    guest("somchai@example.com"),
		Activity: &ActivityRequest{
			ActivityID:       f.Activity.ID,
			ScheduleID:       f.Schedule.ID,
			Participants:     participants,
			ParticipantNames: []string{"Somchai", "Malee"}[:min(participants, 2)],
		},
	}
}

func packageRequest(f fixture, participants int) ReservationRequest {
	return ReservationRequest{
		ItemType: models.ItemTypePackage,
		Guest:    guest("malee@example.com"),
		Package: &PackageRequest{
			PackageID:    f.Package.ID,
			StartDate:    day("2026-04-01"),
			EndDate:      day("2026-04-03"),
			Participants: participants,
		},
	}
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) NotifyReservationCreated(ctx context.Context, event queue.ReservationCreatedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func waitNotifications(t *testing.T, svc *ReservationService) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, svc.WaitNotifications(ctx))
}
