package services

import (
	"backend/models"
	"strings"
	"testing"
	"time"
)

func intPtr(n int) *int { return &n }

func TestFilterRFQCandidates(t *testing.T) {
	candidates := []RFQCandidate{
		{
			Item:            models.BOQItem{ID: 1, RequiredQty: 10, AllocatedQty: 0, NeedsQuote: true},
			StockSupplierID: intPtr(5),
		},
		{
			// fully allocated, nothing left to quote
			Item:            models.BOQItem{ID: 2, RequiredQty: 10, AllocatedQty: 10, NeedsQuote: true},
			StockSupplierID: intPtr(5),
		},
		{
			// partially allocated, remaining 5
			Item:            models.BOQItem{ID: 3, RequiredQty: 10, AllocatedQty: 5, NeedsQuote: true},
			StockSupplierID: intPtr(5),
		},
		{
			// not flagged for quoting
			Item:            models.BOQItem{ID: 4, RequiredQty: 10, AllocatedQty: 0, NeedsQuote: false},
			StockSupplierID: intPtr(5),
		},
		{
			// stock sourced from a different supplier
			Item:            models.BOQItem{ID: 5, RequiredQty: 10, AllocatedQty: 0, NeedsQuote: true},
			StockSupplierID: intPtr(9),
		},
		{
			// no stock link at all, qualifies for any supplier
			Item: models.BOQItem{ID: 6, RequiredQty: 10, AllocatedQty: 0, NeedsQuote: true},
		},
	}

	selected := FilterRFQCandidates(candidates, 5)
	if len(selected) != 3 {
		t.Fatalf("selected %d items, want 3", len(selected))
	}
	wantIDs := []int{1, 3, 6}
	wantRemaining := []int{10, 5, 10}
	for i, item := range selected {
		if item.ID != wantIDs[i] {
			t.Errorf("selected[%d].ID = %d, want %d", i, item.ID, wantIDs[i])
		}
		if item.RemainingQty != wantRemaining[i] {
			t.Errorf("selected[%d].RemainingQty = %d, want %d", i, item.RemainingQty, wantRemaining[i])
		}
	}
}

func TestFilterRFQCandidatesDoesNotMutateInput(t *testing.T) {
	candidates := []RFQCandidate{
		{Item: models.BOQItem{ID: 1, RequiredQty: 10, AllocatedQty: 3, NeedsQuote: true}},
	}
	FilterRFQCandidates(candidates, 5)
	FilterRFQCandidates(candidates, 5)
	if candidates[0].Item.AllocatedQty != 3 || candidates[0].Item.RequiredQty != 10 {
		t.Errorf("filter mutated its input: %+v", candidates[0].Item)
	}
}

func TestBuildRFQ(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	items := []models.BOQItem{
		{ID: 1, ItemCode: "DC-48F", Description: "48F drop cable", UoM: "m", RemainingQty: 600, UnitPrice: 12.5},
		{ID: 2, ItemCode: "SPL-1X8", Description: "1x8 splitter", UoM: "ea", RemainingQty: 20, UnitPrice: 45},
	}

	rfq, err := BuildRFQ(3, 5, items, now)
	if err != nil {
		t.Fatalf("BuildRFQ failed: %v", err)
	}

	if rfq.Status != models.RFQStatusOpen {
		t.Errorf("status = %q, want %q", rfq.Status, models.RFQStatusOpen)
	}
	wantDue := now.AddDate(0, 0, 14)
	if !rfq.DueDate.Equal(wantDue) {
		t.Errorf("due date = %v, want %v", rfq.DueDate, wantDue)
	}
	if rfq.PortalToken == "" {
		t.Error("portal token is empty")
	}
	if !strings.HasPrefix(rfq.RFQNumber, "RFQ-") {
		t.Errorf("RFQ number %q missing RFQ- prefix", rfq.RFQNumber)
	}
	if len(rfq.Items) != 2 {
		t.Fatalf("got %d RFQ items, want 2", len(rfq.Items))
	}
	if rfq.Items[0].Quantity != 600 || rfq.Items[0].EstimatedPrice != 12.5 {
		t.Errorf("item snapshot = qty %d price %v, want 600 / 12.5", rfq.Items[0].Quantity, rfq.Items[0].EstimatedPrice)
	}
	wantTotal := 600*12.5 + 20*45.0
	if rfq.TotalEstimatedAmount != wantTotal {
		t.Errorf("total estimated = %v, want %v", rfq.TotalEstimatedAmount, wantTotal)
	}
}

func TestBuildRFQRejectsEmptyItemSet(t *testing.T) {
	if _, err := BuildRFQ(3, 5, nil, time.Now()); err == nil {
		t.Fatal("expected an error for an empty item set")
	}
}

func TestPortalLink(t *testing.T) {
	got := PortalLink("https://ops.example.com", "4f8a1b2c", 5)
	want := "https://ops.example.com/supplier-portal/4f8a1b2c?supplier=5"
	if got != want {
		t.Errorf("PortalLink = %q, want %q", got, want)
	}
}

func TestValidRFQTransition(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{models.RFQStatusOpen, models.RFQStatusReceived, true},
		{models.RFQStatusOpen, models.RFQStatusClosed, true},
		{models.RFQStatusOpen, models.RFQStatusEvaluated, false},
		{models.RFQStatusReceived, models.RFQStatusEvaluated, true},
		{models.RFQStatusReceived, models.RFQStatusClosed, true},
		{models.RFQStatusReceived, models.RFQStatusOpen, false},
		{models.RFQStatusEvaluated, models.RFQStatusClosed, true},
		{models.RFQStatusEvaluated, models.RFQStatusReceived, false},
		{models.RFQStatusClosed, models.RFQStatusOpen, false},
		{models.RFQStatusClosed, models.RFQStatusReceived, false},
	}
	for _, tt := range tests {
		if got := ValidRFQTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("ValidRFQTransition(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestValidateQuoteItems(t *testing.T) {
	rfqQuantities := map[int]int{10: 600, 11: 20, 12: 4}

	tests := []struct {
		name    string
		items   []models.QuoteSubmissionItem
		wantErr string
	}{
		{
			name: "every item priced",
			items: []models.QuoteSubmissionItem{
				{RFQItemID: 10, UnitPrice: 12.5},
				{RFQItemID: 11, UnitPrice: 45},
				{RFQItemID: 12, UnitPrice: 310},
			},
		},
		{
			name: "missing an item",
			items: []models.QuoteSubmissionItem{
				{RFQItemID: 10, UnitPrice: 12.5},
				{RFQItemID: 11, UnitPrice: 45},
			},
			wantErr: "must price all 3 RFQ items",
		},
		{
			name: "item from another RFQ",
			items: []models.QuoteSubmissionItem{
				{RFQItemID: 10, UnitPrice: 12.5},
				{RFQItemID: 11, UnitPrice: 45},
				{RFQItemID: 99, UnitPrice: 310},
			},
			wantErr: "RFQ item 99 does not belong",
		},
		{
			name: "same item priced twice",
			items: []models.QuoteSubmissionItem{
				{RFQItemID: 10, UnitPrice: 12.5},
				{RFQItemID: 10, UnitPrice: 13},
				{RFQItemID: 11, UnitPrice: 45},
			},
			wantErr: "RFQ item 10 is priced more than once",
		},
		{
			name: "zero unit price",
			items: []models.QuoteSubmissionItem{
				{RFQItemID: 10, UnitPrice: 0},
				{RFQItemID: 11, UnitPrice: 45},
				{RFQItemID: 12, UnitPrice: 310},
			},
			wantErr: "unit_price for RFQ item 10 must be positive",
		},
		{
			name: "negative unit price",
			items: []models.QuoteSubmissionItem{
				{RFQItemID: 10, UnitPrice: 12.5},
				{RFQItemID: 11, UnitPrice: -1},
				{RFQItemID: 12, UnitPrice: 310},
			},
			wantErr: "unit_price for RFQ item 11 must be positive",
		},
		{
			name:    "empty submission against a non-empty RFQ",
			items:   nil,
			wantErr: "must price all 3 RFQ items",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateQuoteItems(tt.items, rfqQuantities)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidQuoteTransition(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{models.QuoteStatusSubmitted, models.QuoteStatusUnderReview, true},
		{models.QuoteStatusSubmitted, models.QuoteStatusAccepted, false},
		{models.QuoteStatusUnderReview, models.QuoteStatusAccepted, true},
		{models.QuoteStatusUnderReview, models.QuoteStatusRejected, true},
		{models.QuoteStatusAccepted, models.QuoteStatusRejected, false},
		{models.QuoteStatusRejected, models.QuoteStatusUnderReview, false},
	}
	for _, tt := range tests {
		if got := ValidQuoteTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("ValidQuoteTransition(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}
