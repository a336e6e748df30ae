package repository

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// GenerateRFQNumber builds a human-readable RFQ number like RFQ-20250601-4821.
// The date groups RFQs by day; the random suffix keeps numbers distinct within
// a day. Uniqueness is enforced by the database constraint, not here.
func GenerateRFQNumber(now time.Time) string {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	return fmt.Sprintf("RFQ-%s-%04d", now.Format("20060102"), rng.Intn(9000)+1000)
}

// GeneratePortalToken mints the opaque identifier embedded in a supplier
// portal link. The token is stored against the RFQ and resolved server-side.
func GeneratePortalToken() string {
	return uuid.New().String()
}
