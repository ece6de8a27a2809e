package config

import (
	"io"
	"log/slog"
	"testing"

	"reservation-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestLoadDefaults(t *testing.T) {
	s, err := Load()
	require.NoError(t, err)

	assert.Equal(t, models.ReservationStatusConfirmed, s.Reservations.InitialStatus)
	assert.Equal(t, models.PaymentStatusPending, s.Reservations.PaymentStatus)
	assert.Equal(t, TransportLog, s.Notifications.Transport)
	assert.False(t, s.Reservations.EnforceRoomCapacity)
	assert.False(t, s.RateLimit.Enabled)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("RESERVATION_INITIAL_STATUS", "pending")
	t.Setenv("ENFORCE_ROOM_CAPACITY", "true")
	t.Setenv("NOTIFICATION_TRANSPORT", "Kafka")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("CONFIRMATION_PREFIX", "bk")

	s, err := Load()
	require.NoError(t, err)

	assert.Equal(t, models.ReservationStatusPending, s.Reservations.InitialStatus)
	assert.True(t, s.Reservations.EnforceRoomCapacity)
	assert.Equal(t, TransportKafka, s.Notifications.Transport)
	assert.Equal(t, TransportKafka, s.Reservations.NotificationTransport)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, s.Notifications.KafkaBrokers)
	assert.Equal(t, "cache:6380", s.Redis.Addr)
	assert.Equal(t, "BK", s.Reservations.ConfirmationPrefix)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := map[string]string{
		"RESERVATION_INITIAL_STATUS": "CANCELLED",
		"PAYMENT_INITIAL_STATUS":     "REFUNDED",
		"NOTIFICATION_TRANSPORT":     "sqs",
		"DEFAULT_CURRENCY":           "BAHT",
		"RATE_LIMIT_CAPACITY":        "0",
		"CONFIRMATION_PREFIX":        "AH-RES",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Load()
			assert.ErrorContains(t, err, key)
		})
	}
}

func TestLoadRejectsLongConfirmationPrefix(t *testing.T) {
	t.Setenv("CONFIRMATION_PREFIX", "antiguahotels")
	_, err := Load()
	assert.ErrorContains(t, err, "CONFIRMATION_PREFIX")
}

func TestResolveMySQLDSN(t *testing.T) {
	dsn, name, err := ResolveMySQLDSN(DatabaseSettings{URL: "mysql://app:pw@db.internal/bookings"})
	require.NoError(t, err)
	assert.Equal(t, "bookings", name)
	assert.Contains(t, dsn, "app:pw@tcp(db.internal:3306)/bookings?")
	assert.Contains(t, dsn, "parseTime=True")
	assert.Contains(t, dsn, "loc=UTC")

	dsn, name, err = ResolveMySQLDSN(DatabaseSettings{User: "root", Password: "x", Host: "127.0.0.1", Port: "3307", Name: "reservations"})
	require.NoError(t, err)
	assert.Equal(t, "reservations", name)
	assert.Equal(t, "root:x@tcp(127.0.0.1:3307)/reservations?charset=utf8mb4&parseTime=True&loc=UTC", dsn)

	_, _, err = ResolveMySQLDSN(DatabaseSettings{URL: "mysql://app:pw@db.internal/"})
	assert.Error(t, err)
}

func TestPrepareMigratesAndSeedsOnce(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:prepare_test?mode=memory&cache=shared"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	lg := slog.New(slog.NewTextHandler(io.Discard, nil))
	settings := DatabaseSettings{AutoMigrate: true, SeedDemo: true}

	require.NoError(t, Prepare(db, settings, lg))
	require.NoError(t, Prepare(db, settings, lg))

	var hotels, packages, schedules int64
	require.NoError(t, db.Model(&models.Hotel{}).Count(&hotels).Error)
	require.NoError(t, db.Model(&models.Package{}).Count(&packages).Error)
	require.NoError(t, db.Model(&models.ActivitySchedule{}).Count(&schedules).Error)
	assert.EqualValues(t, 2, hotels)
	assert.Positive(t, packages)
	assert.EqualValues(t, 3*scheduleSeedDays, schedules)
}
