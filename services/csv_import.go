package services

import (
	"backend/models"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Column aliases accepted in import files. Spreadsheet exports are not
// consistent about header naming, so each logical column matches a list of
// case-insensitive aliases.
var stockColumnAliases = map[string][]string{
	"name":          {"Name", "Item Name"},
	"item_code":     {"Item Code", "Item No"},
	"category":      {"Item Category", "Category"},
	"uom":           {"UoM", "Unit"},
	"quantity":      {"Quantity", "Quantity In Stock"},
	"minimum_stock": {"Minimum Stock", "Min Stock"},
	"price":         {"Last Purchase Price", "Price"},
}

var boqColumnAliases = map[string][]string{
	"description": {"Item Description", "Description"},
	"item_code":   {"Item Code", "Item No"},
	"quantity":    {"Quantity", "Required Quantity"},
	"unit_price":  {"Unit Price", "Price"},
	"uom":         {"UoM", "Unit"},
	"needs_quote": {"Needs Quote", "Quote Required", "RFQ"},
}

// ResolveColumns maps logical column names onto header indices using the
// alias table. Matching is case-insensitive and ignores surrounding spaces.
func ResolveColumns(header []string, aliases map[string][]string) map[string]int {
	normalized := make(map[string]int, len(header))
	for i, col := range header {
		normalized[strings.ToLower(strings.TrimSpace(col))] = i
	}

	columns := make(map[string]int)
	for logical, names := range aliases {
		for _, name := range names {
			if idx, ok := normalized[strings.ToLower(name)]; ok {
				columns[logical] = idx
				break
			}
		}
	}
	return columns
}

// ParseBoolFlag recognizes the spreadsheet spellings of "yes".
func ParseBoolFlag(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "1":
		return true
	}
	return false
}

func cell(row []string, columns map[string]int, logical string) string {
	idx, ok := columns[logical]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// ParseStockCSV reads a stock import file and returns the valid rows plus a
// per-row error report. The reader is RFC 4180 aware, so quoted fields with
// embedded commas survive round trips through spreadsheet tools.
func ParseStockCSV(r io.Reader) ([]models.StockItem, []string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	columns := ResolveColumns(header, stockColumnAliases)
	if _, ok := columns["name"]; !ok {
		return nil, nil, fmt.Errorf("missing required column: Name (or Item Name)")
	}

	var items []models.StockItem
	var rowErrors []string
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			rowErrors = append(rowErrors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}

		item := models.StockItem{
			Name:     cell(row, columns, "name"),
			ItemCode: cell(row, columns, "item_code"),
			Category: cell(row, columns, "category"),
			UoM:      cell(row, columns, "uom"),
		}
		if item.Name == "" {
			rowErrors = append(rowErrors, fmt.Sprintf("line %d: name is required", line))
			continue
		}

		if q := cell(row, columns, "quantity"); q != "" {
			item.QuantityInStock, err = strconv.Atoi(q)
			if err != nil || item.QuantityInStock < 0 {
				rowErrors = append(rowErrors, fmt.Sprintf("line %d: invalid quantity %q", line, q))
				continue
			}
		}
		if m := cell(row, columns, "minimum_stock"); m != "" {
			item.MinimumStock, err = strconv.Atoi(m)
			if err != nil || item.MinimumStock < 0 {
				rowErrors = append(rowErrors, fmt.Sprintf("line %d: invalid minimum stock %q", line, m))
				continue
			}
		}
		if p := cell(row, columns, "price"); p != "" {
			item.LastPurchasePrice, err = strconv.ParseFloat(p, 64)
			if err != nil || item.LastPurchasePrice < 0 {
				rowErrors = append(rowErrors, fmt.Sprintf("line %d: invalid price %q", line, p))
				continue
			}
		}

		item.Status = StockStatus(item.QuantityInStock, item.MinimumStock)
		items = append(items, item)
	}
	return items, rowErrors, nil
}

// ParseBOQCSV reads a BOQ import file for one project. Imported items start
// life as Planned with nothing allocated.
func ParseBOQCSV(r io.Reader, projectID int) ([]models.BOQItem, []string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	columns := ResolveColumns(header, boqColumnAliases)
	if _, ok := columns["description"]; !ok {
		return nil, nil, fmt.Errorf("missing required column: Item Description (or Description)")
	}
	if _, ok := columns["quantity"]; !ok {
		return nil, nil, fmt.Errorf("missing required column: Quantity (or Required Quantity)")
	}

	var items []models.BOQItem
	var rowErrors []string
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			rowErrors = append(rowErrors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}

		item := models.BOQItem{
			ProjectID:   projectID,
			Description: cell(row, columns, "description"),
			ItemCode:    cell(row, columns, "item_code"),
			UoM:         cell(row, columns, "uom"),
			NeedsQuote:  ParseBoolFlag(cell(row, columns, "needs_quote")),
			Status:      models.BOQStatusPlanned,
		}
		if item.Description == "" {
			rowErrors = append(rowErrors, fmt.Sprintf("line %d: description is required", line))
			continue
		}

		q := cell(row, columns, "quantity")
		item.RequiredQty, err = strconv.Atoi(q)
		if err != nil || item.RequiredQty <= 0 {
			rowErrors = append(rowErrors, fmt.Sprintf("line %d: invalid quantity %q", line, q))
			continue
		}
		if p := cell(row, columns, "unit_price"); p != "" {
			item.UnitPrice, err = strconv.ParseFloat(p, 64)
			if err != nil || item.UnitPrice < 0 {
				rowErrors = append(rowErrors, fmt.Sprintf("line %d: invalid unit price %q", line, p))
				continue
			}
		}

		item.RemainingQty = item.RequiredQty
		item.TotalPrice = float64(item.RequiredQty) * item.UnitPrice
		items = append(items, item)
	}
	return items, rowErrors, nil
}
