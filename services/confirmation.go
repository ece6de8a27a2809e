package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"reservation-backend/models"
	"reservation-backend/utils"

	"gorm.io/gorm"
)

const confirmationAttempts = 5

// ConfirmationGenerator produces PREFIX-12345678-ABCD numbers: the last eight
// digits of the unix millisecond clock followed by a random suffix.
type ConfirmationGenerator struct {
	Prefix string
	Now    func() time.Time
	Rand   io.Reader
}

func NewConfirmationGenerator(prefix string) *ConfirmationGenerator {
	return &ConfirmationGenerator{Prefix: prefix, Now: time.Now}
}

func (g *ConfirmationGenerator) Next() (string, error) {
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	prefix := strings.ToUpper(strings.TrimSpace(g.Prefix))
	if prefix == "" {
		prefix = "RES"
	}
	suffix, err := utils.RandomCode(g.Rand, 4)
	if err != nil {
		return "", fmt.Errorf("generate confirmation suffix: %w", err)
	}
	return fmt.Sprintf("%s-%08d-%s", prefix, now().UnixMilli()%100_000_000, suffix), nil
}

// Reserve returns a number not yet used by any reservation visible to tx.
// The unique index on the column remains the final guard.
func (g *ConfirmationGenerator) Reserve(ctx context.Context, tx *gorm.DB) (string, error) {
	for attempt := 0; attempt < confirmationAttempts; attempt++ {
		code, err := g.Next()
		if err != nil {
			return "", err
		}
		var n int64
		err = tx.WithContext(ctx).Unscoped().Model(&models.Reservation{}).
			Where("confirmation_number = ?", code).
			Count(&n).Error
		if err != nil {
			return "", storageError("check confirmation number", err)
		}
		if n == 0 {
			return code, nil
		}
	}
	return "", storageError("generate confirmation number",
		fmt.Errorf("no free confirmation number after %d attempts", confirmationAttempts))
}
