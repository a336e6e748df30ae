package repository

import (
	"regexp"
	"testing"
	"time"
)

func TestGenerateRFQNumberFormat(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)
	pattern := regexp.MustCompile(`^RFQ-20250601-\d{4}$`)

	for i := 0; i < 20; i++ {
		got := GenerateRFQNumber(now)
		if !pattern.MatchString(got) {
			t.Fatalf("GenerateRFQNumber(%v) = %q, want format RFQ-20250601-NNNN", now, got)
		}
	}
}

func TestGeneratePortalTokenIsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token := GeneratePortalToken()
		if len(token) != 36 {
			t.Fatalf("GeneratePortalToken() = %q, want 36-char UUID", token)
		}
		if seen[token] {
			t.Fatalf("GeneratePortalToken() returned duplicate %q", token)
		}
		seen[token] = true
	}
}
