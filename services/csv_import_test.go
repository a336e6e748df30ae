package services

import (
	"backend/models"
	"strings"
	"testing"
)

func TestResolveColumns(t *testing.T) {
	header := []string{"Item Name", " item code ", "CATEGORY", "Unit", "Quantity"}
	columns := ResolveColumns(header, stockColumnAliases)

	want := map[string]int{
		"name":      0,
		"item_code": 1,
		"category":  2,
		"uom":       3,
		"quantity":  4,
	}
	for logical, idx := range want {
		if got, ok := columns[logical]; !ok || got != idx {
			t.Errorf("columns[%q] = %d (found %v), want %d", logical, got, ok, idx)
		}
	}
	if _, ok := columns["minimum_stock"]; ok {
		t.Error("minimum_stock should not resolve from this header")
	}
}

func TestParseBoolFlag(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"true", true}, {"TRUE", true}, {"Yes", true}, {"1", true}, {" yes ", true},
		{"false", false}, {"no", false}, {"0", false}, {"", false}, {"maybe", false},
	}
	for _, tt := range tests {
		if got := ParseBoolFlag(tt.in); got != tt.want {
			t.Errorf("ParseBoolFlag(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseStockCSV(t *testing.T) {
	csv := strings.Join([]string{
		`Item Name,Item No,Category,Unit,Quantity In Stock,Min Stock,Price`,
		`"Drop Cable, 48F",DC-48F,Cable,m,800,100,12.50`,
		`1x8 Splitter,SPL-1X8,Passive,ea,5,20,45`,
		`,MISSING,Cable,m,10,1,1`,
		`Bad Quantity,BQ-1,Cable,m,lots,1,1`,
	}, "\n")

	items, rowErrors, err := ParseStockCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ParseStockCSV failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if len(rowErrors) != 2 {
		t.Fatalf("got %d row errors, want 2: %v", len(rowErrors), rowErrors)
	}

	first := items[0]
	if first.Name != "Drop Cable, 48F" {
		t.Errorf("quoted name mangled: %q", first.Name)
	}
	if first.ItemCode != "DC-48F" || first.QuantityInStock != 800 || first.MinimumStock != 100 {
		t.Errorf("unexpected first item: %+v", first)
	}
	if first.LastPurchasePrice != 12.5 {
		t.Errorf("price = %v, want 12.5", first.LastPurchasePrice)
	}
	if first.Status != models.StockStatusInStock {
		t.Errorf("first status = %q, want %q", first.Status, models.StockStatusInStock)
	}
	if items[1].Status != models.StockStatusLowStock {
		t.Errorf("second status = %q, want %q", items[1].Status, models.StockStatusLowStock)
	}
}

func TestParseStockCSVMissingNameColumn(t *testing.T) {
	csv := "Item Code,Quantity\nDC-48F,10\n"
	if _, _, err := ParseStockCSV(strings.NewReader(csv)); err == nil {
		t.Fatal("expected an error for a header without a name column")
	}
}

func TestParseBOQCSV(t *testing.T) {
	csv := strings.Join([]string{
		`Description,Item No,Required Quantity,Price,Unit,Quote Required`,
		`48F drop cable,DC-48F,1000,12.50,m,Yes`,
		`1x8 splitter,SPL-1X8,20,45,ea,no`,
		`Zero quantity,ZQ-1,0,1,ea,no`,
	}, "\n")

	items, rowErrors, err := ParseBOQCSV(strings.NewReader(csv), 3)
	if err != nil {
		t.Fatalf("ParseBOQCSV failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if len(rowErrors) != 1 {
		t.Fatalf("got %d row errors, want 1: %v", len(rowErrors), rowErrors)
	}

	first := items[0]
	if first.ProjectID != 3 {
		t.Errorf("project = %d, want 3", first.ProjectID)
	}
	if first.RequiredQty != 1000 || first.RemainingQty != 1000 || first.AllocatedQty != 0 {
		t.Errorf("unexpected quantities: %+v", first)
	}
	if !first.NeedsQuote {
		t.Error("Yes flag should map to NeedsQuote=true")
	}
	if first.TotalPrice != 12500 {
		t.Errorf("total price = %v, want 12500", first.TotalPrice)
	}
	if first.Status != models.BOQStatusPlanned {
		t.Errorf("status = %q, want %q", first.Status, models.BOQStatusPlanned)
	}
	if items[1].NeedsQuote {
		t.Error("no flag should map to NeedsQuote=false")
	}
}

func TestParseBOQCSVAliasHeaders(t *testing.T) {
	csv := "Item Description,Quantity,Unit Price,UoM,RFQ\nTrench spoil removal,40,150,m3,1\n"
	items, rowErrors, err := ParseBOQCSV(strings.NewReader(csv), 1)
	if err != nil {
		t.Fatalf("ParseBOQCSV failed: %v", err)
	}
	if len(rowErrors) != 0 {
		t.Fatalf("unexpected row errors: %v", rowErrors)
	}
	if len(items) != 1 || items[0].RequiredQty != 40 || items[0].UnitPrice != 150 || !items[0].NeedsQuote {
		t.Errorf("alias headers not resolved: %+v", items)
	}
}

func TestParseBOQCSVMissingRequiredColumns(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"no description", "Quantity,Unit Price\n10,1\n"},
		{"no quantity", "Description,Unit Price\nThing,1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := ParseBOQCSV(strings.NewReader(tt.header), 1); err == nil {
				t.Fatal("expected a missing-column error")
			}
		})
	}
}
