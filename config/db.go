package config

import (
	"fmt"
	"log"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"reservation-backend/models"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Models lists every table in parent to child order for AutoMigrate.
func Models() []interface{} {
	return []interface{}{
		&models.Hotel{},
		&models.RoomType{},
		&models.Room{},
		&models.Activity{},
		&models.ActivitySchedule{},
		&models.Package{},
		&models.PackageHotel{},
		&models.PackageActivity{},
		&models.ShuttleRoute{},
		&models.Guest{},
		&models.Reservation{},
		&models.ReservationItem{},
		&models.AccommodationStay{},
		&models.ActivityBooking{},
		&models.PackageBooking{},
	}
}

func mysqlDSNFromURL(raw string) (string, string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", err
	}

	user := u.User.Username()
	pass, _ := u.User.Password()
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "3306"
	}

	dbName := strings.TrimPrefix(u.Path, "/")
	if dbName == "" {
		return "", "", fmt.Errorf("mysql url missing database name")
	}

	q := u.Query()
	if q.Get("charset") == "" {
		q.Set("charset", "utf8mb4")
	}
	if q.Get("parseTime") == "" {
		q.Set("parseTime", "True")
	}
	if q.Get("loc") == "" {
		q.Set("loc", "UTC")
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?%s", user, pass, host, port, dbName, q.Encode())
	return dsn, dbName, nil
}

// ResolveMySQLDSN prefers a connection URL and falls back to the DB_* parts.
// Dates are stored as calendar days, so the session runs in UTC.
func ResolveMySQLDSN(db DatabaseSettings) (string, string, error) {
	raw := strings.TrimSpace(db.URL)
	if raw != "" {
		if strings.HasPrefix(raw, "mysql://") {
			return mysqlDSNFromURL(raw)
		}
		return raw, db.Name, nil
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		db.User, db.Password, db.Host, db.Port, db.Name,
	)
	return dsn, db.Name, nil
}

func gormLogLevel(raw string) logger.LogLevel {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

// NewGormLogger writes SQL logs through the standard logger at the given level.
func NewGormLogger(level string) logger.Interface {
	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormLogLevel(level),
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

// ConnectDatabase opens MySQL, sizes the pool, migrates and optionally seeds.
func ConnectDatabase(s DatabaseSettings, lg *slog.Logger) (*gorm.DB, error) {
	dsn, dbName, err := ResolveMySQLDSN(s)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:         NewGormLogger(s.LogLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open mysql %s: %w", dbName, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(s.MaxOpen)
	sqlDB.SetMaxIdleConns(s.MaxIdle)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := Prepare(db, s, lg); err != nil {
		return nil, err
	}
	lg.Info("database ready", "database", dbName, "auto_migrate", s.AutoMigrate, "seed_demo", s.SeedDemo)
	return db, nil
}

// Prepare runs migrations and the demo seed according to s. Tests call it on
// SQLite.
func Prepare(db *gorm.DB, s DatabaseSettings, lg *slog.Logger) error {
	if s.AutoMigrate {
		if err := db.AutoMigrate(Models()...); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
	}
	if s.SeedDemo {
		if err := SeedDemoData(db, lg); err != nil {
			return fmt.Errorf("seed demo data: %w", err)
		}
	}
	return nil
}
