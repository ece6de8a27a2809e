package services

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"testing"
	"time"

	"reservation-backend/models"
	"reservation-backend/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var confirmationFormat = regexp.MustCompile(`^RES-[0-9]{8}-[A-Z0-9]{4}$`)

func TestConfirmationGenerator_Format(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
	g := &ConfirmationGenerator{Prefix: "res", Now: func() time.Time { return now }}

	code, err := g.Next()
	require.NoError(t, err)

	assert.Regexp(t, confirmationFormat, code)
	assert.Contains(t, code, fmt.Sprintf("-%08d-", now.UnixMilli()%100_000_000))
}

func TestConfirmationGenerator_AcceptedPrefixesCanBeLookedUp(t *testing.T) {
	for _, prefix := range []string{"RES", "AH", "ANTIGUAHOTEL"} {
		require.True(t, utils.IsValidConfirmationPrefix(prefix), prefix)
		code, err := NewConfirmationGenerator(prefix).Next()
		require.NoError(t, err)
		assert.True(t, utils.IsValidConfirmationNumber(code), code)
		assert.LessOrEqual(t, len(code), 32)
	}
}

func TestConfirmationGenerator_SameMillisecondDiffers(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
	g := &ConfirmationGenerator{Prefix: "RES", Now: func() time.Time { return now }}

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		code, err := g.Next()
		require.NoError(t, err)
		seen[code] = true
	}
	assert.Greater(t, len(seen), 40)
}

func TestConfirmationGenerator_ReserveGivesUpOnCollisions(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
	// an all-zero random source always yields the suffix AAAA
	g := &ConfirmationGenerator{Prefix: "RES", Now: func() time.Time { return now }, Rand: bytes.NewReader(make([]byte, 64))}

	taken := fmt.Sprintf("RES-%08d-AAAA", now.UnixMilli()%100_000_000)
	require.NoError(t, db.Create(&models.Reservation{ConfirmationNumber: taken, GuestID: 1, TotalAmount: dec(0)}).Error)

	_, err := g.Reserve(context.Background(), db)
	assert.ErrorIs(t, err, ErrStorage)
}

func TestConfirmationGenerator_ReserveReturnsFreeNumber(t *testing.T) {
	db := newTestDB(t)
	g := NewConfirmationGenerator("RES")

	code, err := g.Reserve(context.Background(), db)
	require.NoError(t, err)
	assert.Regexp(t, confirmationFormat, code)
}
