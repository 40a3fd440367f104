package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// ==================== BOOKING ID ====================

const (
	bookingIDMin = 100000
	bookingIDMax = 999999
)

var bookingIDSpan = big.NewInt(bookingIDMax - bookingIDMin + 1)

// GenerateBookingID creates an ID shaped BK-YYYYMMDD-NNNNNN.
// The date is now's UTC calendar day, the number is drawn from crypto/rand.
func GenerateBookingID(now time.Time) (string, error) {
	n, err := rand.Int(rand.Reader, bookingIDSpan)
	if err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}

	datePart := now.UTC().Format("20060102")
	return fmt.Sprintf("BK-%s-%06d", datePart, n.Int64()+bookingIDMin), nil
}
