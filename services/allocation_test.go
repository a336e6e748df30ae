package services

import (
	"backend/models"
	"testing"
	"time"
)

func TestStockStatus(t *testing.T) {
	tests := []struct {
		name     string
		quantity int
		minimum  int
		want     string
	}{
		{"above minimum", 100, 20, models.StockStatusInStock},
		{"at minimum", 20, 20, models.StockStatusLowStock},
		{"below minimum", 5, 20, models.StockStatusLowStock},
		{"zero", 0, 20, models.StockStatusOutOfStock},
		{"negative treated as out", -3, 20, models.StockStatusOutOfStock},
		{"zero with zero minimum", 0, 0, models.StockStatusOutOfStock},
		{"one with zero minimum", 1, 0, models.StockStatusInStock},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StockStatus(tt.quantity, tt.minimum); got != tt.want {
				t.Errorf("StockStatus(%d, %d) = %q, want %q", tt.quantity, tt.minimum, got, tt.want)
			}
		})
	}
}

func TestBOQStatus(t *testing.T) {
	tests := []struct {
		name      string
		required  int
		allocated int
		override  string
		want      string
	}{
		{"nothing allocated", 1000, 0, "", models.BOQStatusPlanned},
		{"partial", 1000, 400, "", models.BOQStatusPartiallyAllocated},
		{"fully allocated", 1000, 1000, "", models.BOQStatusFullyAllocated},
		{"over-allocated still full", 1000, 1200, "", models.BOQStatusFullyAllocated},
		{"zero required stays planned", 0, 0, "", models.BOQStatusPlanned},
		{"ordered override wins", 1000, 400, models.BOQStatusOrdered, models.BOQStatusOrdered},
		{"delivered override wins", 1000, 1000, models.BOQStatusDelivered, models.BOQStatusDelivered},
		{"derived status is not an override", 1000, 400, models.BOQStatusPartiallyAllocated, models.BOQStatusPartiallyAllocated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BOQStatus(tt.required, tt.allocated, tt.override); got != tt.want {
				t.Errorf("BOQStatus(%d, %d, %q) = %q, want %q", tt.required, tt.allocated, tt.override, got, tt.want)
			}
		})
	}
}

func TestValidateAllocation(t *testing.T) {
	boq := models.BOQItem{RequiredQty: 1000, AllocatedQty: 400}
	stock := models.StockItem{ItemCode: "DC-48F", QuantityInStock: 500}

	tests := []struct {
		name     string
		quantity int
		wantErr  bool
	}{
		{"valid", 100, false},
		{"exactly available stock", 500, false},
		{"zero", 0, true},
		{"negative", -10, true},
		{"more than stock", 501, true},
		{"more than remaining requirement", 601, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAllocation(boq, stock, tt.quantity)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAllocation(quantity=%d) error = %v, wantErr %v", tt.quantity, err, tt.wantErr)
			}
		})
	}
}

func TestApplyAllocationConservesQuantity(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	boq := models.BOQItem{ID: 7, ProjectID: 3, RequiredQty: 1000, AllocatedQty: 400, UnitPrice: 12.5}
	stock := models.StockItem{ID: 11, ItemCode: "DC-48F", QuantityInStock: 800, MinimumStock: 100}

	before := stock.QuantityInStock + boq.AllocatedQty

	movement, err := ApplyAllocation(&boq, &stock, 200, "admin", now)
	if err != nil {
		t.Fatalf("ApplyAllocation failed: %v", err)
	}

	if after := stock.QuantityInStock + boq.AllocatedQty; after != before {
		t.Errorf("quantity not conserved: before %d, after %d", before, after)
	}
	if boq.AllocatedQty != 600 {
		t.Errorf("AllocatedQty = %d, want 600", boq.AllocatedQty)
	}
	if boq.RemainingQty != 400 {
		t.Errorf("RemainingQty = %d, want 400", boq.RemainingQty)
	}
	if boq.Status != models.BOQStatusPartiallyAllocated {
		t.Errorf("BOQ status = %q, want %q", boq.Status, models.BOQStatusPartiallyAllocated)
	}
	if stock.QuantityInStock != 600 {
		t.Errorf("QuantityInStock = %d, want 600", stock.QuantityInStock)
	}
	if stock.Status != models.StockStatusInStock {
		t.Errorf("stock status = %q, want %q", stock.Status, models.StockStatusInStock)
	}

	if movement.Quantity != -200 {
		t.Errorf("movement quantity = %d, want -200", movement.Quantity)
	}
	if movement.MovementType != models.MovementSiteAllocation {
		t.Errorf("movement type = %q, want %q", movement.MovementType, models.MovementSiteAllocation)
	}
	if movement.Reference != "BOQ-7" {
		t.Errorf("movement reference = %q, want BOQ-7", movement.Reference)
	}
	if movement.ProjectID == nil || *movement.ProjectID != 3 {
		t.Errorf("movement project = %v, want 3", movement.ProjectID)
	}
}

func TestApplyAllocationToFull(t *testing.T) {
	boq := models.BOQItem{ID: 1, RequiredQty: 1000, AllocatedQty: 400}
	stock := models.StockItem{ID: 2, QuantityInStock: 600, MinimumStock: 50}

	if _, err := ApplyAllocation(&boq, &stock, 600, "admin", time.Now()); err != nil {
		t.Fatalf("ApplyAllocation failed: %v", err)
	}

	if boq.Status != models.BOQStatusFullyAllocated {
		t.Errorf("BOQ status = %q, want %q", boq.Status, models.BOQStatusFullyAllocated)
	}
	if boq.RemainingQty != 0 {
		t.Errorf("RemainingQty = %d, want 0", boq.RemainingQty)
	}
	if stock.Status != models.StockStatusOutOfStock {
		t.Errorf("stock status = %q, want %q", stock.Status, models.StockStatusOutOfStock)
	}
}

func TestApplyAllocationRejectionLeavesInputsUntouched(t *testing.T) {
	boq := models.BOQItem{RequiredQty: 100, AllocatedQty: 90}
	stock := models.StockItem{QuantityInStock: 500, MinimumStock: 10}

	if _, err := ApplyAllocation(&boq, &stock, 50, "admin", time.Now()); err == nil {
		t.Fatal("expected over-allocation to be rejected")
	}
	if boq.AllocatedQty != 90 || stock.QuantityInStock != 500 {
		t.Errorf("rejected allocation mutated inputs: allocated=%d stock=%d", boq.AllocatedQty, stock.QuantityInStock)
	}
}
