package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"reservation-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// isolationRecorder hands gorm the shared pool and remembers what each
// transaction asked for.
type isolationRecorder struct {
	*sql.DB

	mu     sync.Mutex
	levels []sql.IsolationLevel
}

func (r *isolationRecorder) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	level := sql.LevelDefault
	if opts != nil {
		level = opts.Isolation
	}
	r.mu.Lock()
	r.levels = append(r.levels, level)
	r.mu.Unlock()
	return r.DB.BeginTx(ctx, opts)
}

func (r *isolationRecorder) recorded() []sql.IsolationLevel {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]sql.IsolationLevel(nil), r.levels...)
}

func recordingDB(t *testing.T, db *gorm.DB) (*gorm.DB, *isolationRecorder) {
	t.Helper()
	sqlDB, err := db.DB()
	require.NoError(t, err)
	rec := &isolationRecorder{DB: sqlDB}
	wrapped, err := gorm.Open(&sqlite.Dialector{Conn: rec}, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	return wrapped, rec
}

func TestCreate_UsesReadCommitted(t *testing.T) {
	db := newTestDB(t)
	f := seedFixture(t, db, fixtureOpts{Rooms: 1})
	wrapped, rec := recordingDB(t, db)
	svc := newService(t, wrapped, testConfig(), nil)

	_, err := svc.Create(context.Background(), packageRequest(f, 2))
	require.NoError(t, err)

	assert.Equal(t, []sql.IsolationLevel{sql.LevelReadCommitted}, rec.recorded())
}

func TestCreate_LastRoomGoesToOneBooking(t *testing.T) {
	db := newTestDB(t)
	f := seedFixture(t, db, fixtureOpts{Rooms: 1})
	svc := newService(t, db, testConfig(), nil)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		booked   int
		rejected int
	)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create(context.Background(), packageRequest(f, 2))
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				booked++
				return
			}
			if assert.ErrorIs(t, err, ErrCapacity) {
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, booked)
	assert.Equal(t, 3, rejected)
	assert.EqualValues(t, 1, countRows(t, db, &models.AccommodationStay{}))
}
