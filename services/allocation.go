package services

import (
	"backend/models"
	"database/sql"
	"fmt"
	"time"
)

// StockStatus derives the display status of a stock item. Status is never
// stored; every read path computes it from the two quantities.
func StockStatus(quantityInStock, minimumStock int) string {
	switch {
	case quantityInStock <= 0:
		return models.StockStatusOutOfStock
	case quantityInStock <= minimumStock:
		return models.StockStatusLowStock
	default:
		return models.StockStatusInStock
	}
}

// BOQStatus derives the status of a BOQ item from its quantities. An
// operator-set override (Ordered or Delivered) wins and never regresses to an
// allocation-derived state.
func BOQStatus(requiredQty, allocatedQty int, override string) string {
	if override == models.BOQStatusOrdered || override == models.BOQStatusDelivered {
		return override
	}
	switch {
	case requiredQty > 0 && allocatedQty >= requiredQty:
		return models.BOQStatusFullyAllocated
	case allocatedQty > 0:
		return models.BOQStatusPartiallyAllocated
	default:
		return models.BOQStatusPlanned
	}
}

// ValidateAllocation checks the preconditions for moving quantity from a
// stock item onto a BOQ item. A violation is reported as an error rather than
// silently ignored.
func ValidateAllocation(boq models.BOQItem, stock models.StockItem, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("allocation quantity must be positive, got %d", quantity)
	}
	if quantity > stock.QuantityInStock {
		return fmt.Errorf("insufficient stock for %s: requested %d, available %d",
			stock.ItemCode, quantity, stock.QuantityInStock)
	}
	remaining := boq.RequiredQty - boq.AllocatedQty
	if quantity > remaining {
		return fmt.Errorf("allocation exceeds BOQ requirement: requested %d, remaining %d",
			quantity, remaining)
	}
	return nil
}

// ApplyAllocation moves quantity from the stock item's on-hand balance onto
// the BOQ item's allocated balance and recomputes every derived field. Stock
// is decremented here: the on-hand balance is the single source of truth, so
// an allocation out to site must reduce it. Returns the movement record to be
// appended to the ledger.
func ApplyAllocation(boq *models.BOQItem, stock *models.StockItem, quantity int, createdBy string, now time.Time) (models.StockMovement, error) {
	if err := ValidateAllocation(*boq, *stock, quantity); err != nil {
		return models.StockMovement{}, err
	}

	boq.AllocatedQty += quantity
	boq.RemainingQty = boq.RequiredQty - boq.AllocatedQty
	boq.TotalPrice = float64(boq.RequiredQty) * boq.UnitPrice
	boq.Status = BOQStatus(boq.RequiredQty, boq.AllocatedQty, boq.Status)

	stock.QuantityInStock -= quantity
	stock.Status = StockStatus(stock.QuantityInStock, stock.MinimumStock)

	projectID := boq.ProjectID
	return models.StockMovement{
		StockItemID:  stock.ID,
		ProjectID:    &projectID,
		MovementType: models.MovementSiteAllocation,
		Quantity:     -quantity,
		Reference:    fmt.Sprintf("BOQ-%d", boq.ID),
		MovementDate: now,
		CreatedBy:    createdBy,
	}, nil
}

// AllocateStock runs the allocation inside a single transaction, locking
// both rows so two concurrent allocations cannot both pass the precondition
// check against stale balances.
func AllocateStock(db *sql.DB, input models.AllocationInput, createdBy string) (*models.BOQItem, *models.StockItem, error) {
	tx, err := db.Begin()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin allocation transaction: %w", err)
	}
	defer tx.Rollback()

	var boq models.BOQItem
	var override sql.NullString
	err = tx.QueryRow(`
		SELECT id, project_id, stock_item_id, item_code, description, uom,
		       required_qty, allocated_qty, unit_price, needs_quote, status_override
		FROM boq_items
		WHERE id = $1 AND deleted_at IS NULL
		FOR UPDATE`, input.BOQItemID).Scan(
		&boq.ID, &boq.ProjectID, &boq.StockItemID, &boq.ItemCode, &boq.Description,
		&boq.UoM, &boq.RequiredQty, &boq.AllocatedQty, &boq.UnitPrice, &boq.NeedsQuote, &override,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, fmt.Errorf("BOQ item %d not found", input.BOQItemID)
		}
		return nil, nil, fmt.Errorf("failed to fetch BOQ item: %w", err)
	}
	boq.Status = BOQStatus(boq.RequiredQty, boq.AllocatedQty, override.String)
	boq.RemainingQty = boq.RequiredQty - boq.AllocatedQty
	boq.TotalPrice = float64(boq.RequiredQty) * boq.UnitPrice

	var stock models.StockItem
	err = tx.QueryRow(`
		SELECT id, item_code, name, category, uom, quantity_in_stock, minimum_stock,
		       supplier_id, last_purchase_price
		FROM stock_items
		WHERE id = $1 AND deleted_at IS NULL
		FOR UPDATE`, input.StockItemID).Scan(
		&stock.ID, &stock.ItemCode, &stock.Name, &stock.Category, &stock.UoM,
		&stock.QuantityInStock, &stock.MinimumStock, &stock.SupplierID, &stock.LastPurchasePrice,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, fmt.Errorf("stock item %d not found", input.StockItemID)
		}
		return nil, nil, fmt.Errorf("failed to fetch stock item: %w", err)
	}
	stock.Status = StockStatus(stock.QuantityInStock, stock.MinimumStock)

	movement, err := ApplyAllocation(&boq, &stock, input.Quantity, createdBy, time.Now())
	if err != nil {
		return nil, nil, err
	}

	if _, err := tx.Exec(`
		UPDATE boq_items SET allocated_qty = $1, updated_at = $2 WHERE id = $3`,
		boq.AllocatedQty, time.Now(), boq.ID); err != nil {
		return nil, nil, fmt.Errorf("failed to update BOQ item: %w", err)
	}

	if _, err := tx.Exec(`
		UPDATE stock_items SET quantity_in_stock = $1, updated_at = $2 WHERE id = $3`,
		stock.QuantityInStock, time.Now(), stock.ID); err != nil {
		return nil, nil, fmt.Errorf("failed to update stock item: %w", err)
	}

	if _, err := tx.Exec(`
		INSERT INTO stock_movements (stock_item_id, project_id, movement_type, quantity, reference, movement_date, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		movement.StockItemID, movement.ProjectID, movement.MovementType,
		movement.Quantity, movement.Reference, movement.MovementDate, movement.CreatedBy); err != nil {
		return nil, nil, fmt.Errorf("failed to record stock movement: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit allocation: %w", err)
	}
	return &boq, &stock, nil
}
