package models

import "time"

// Stock item statuses, always derived from quantity_in_stock and
// minimum_stock. Never stored or set directly.
const (
	StockStatusInStock    = "In Stock"
	StockStatusLowStock   = "Low Stock"
	StockStatusOutOfStock = "Out of Stock"
)

// BOQ item statuses. The first three are derived from required/allocated
// quantities; Ordered and Delivered are operator-set and never regress to a
// derived state.
const (
	BOQStatusPlanned            = "Planned"
	BOQStatusPartiallyAllocated = "Partially Allocated"
	BOQStatusFullyAllocated     = "Fully Allocated"
	BOQStatusOrdered            = "Ordered"
	BOQStatusDelivered          = "Delivered"
)

// Stock movement types.
const (
	MovementIncoming       = "Incoming"
	MovementSiteAllocation = "Site Allocation"
	MovementAdjustment     = "Adjustment"
	MovementReturn         = "Return"
)

// StockItem represents the stock_items table. Status is computed on read.
type StockItem struct {
	ID                int       `json:"id" example:"1"`
	ItemCode          string    `json:"item_code" example:"FIB-ADSS-96"`
	Name              string    `json:"name" example:"ADSS Fibre Cable 96F"`
	Category          string    `json:"category" example:"Cable"`
	UoM               string    `json:"uom" example:"m"`
	QuantityInStock   int       `json:"quantity_in_stock" example:"12000"`
	MinimumStock      int       `json:"minimum_stock" example:"2000"`
	SupplierID        *int      `json:"supplier_id,omitempty" example:"1"`
	SupplierName      string    `json:"supplier_name,omitempty" example:"CableTech (Pty) Ltd"`
	LastPurchasePrice float64   `json:"last_purchase_price" example:"18.50"`
	Status            string    `json:"status" example:"In Stock"`
	CreatedAt         time.Time `json:"created_at" example:"2024-01-15T10:30:00Z"`
	UpdatedAt         time.Time `json:"updated_at" example:"2024-01-15T10:30:00Z"`
}

// StockMovement is the append-only movement ledger for a stock item.
// Quantity is signed: negative for allocations out of the store.
type StockMovement struct {
	ID            int       `json:"id" example:"1"`
	StockItemID   int       `json:"stock_item_id" example:"1"`
	StockItemName string    `json:"stock_item_name,omitempty" example:"ADSS Fibre Cable 96F"`
	ProjectID     *int      `json:"project_id,omitempty" example:"1"`
	MovementType  string    `json:"movement_type" example:"Site Allocation"`
	Quantity      int       `json:"quantity" example:"-400"`
	Reference     string    `json:"reference" example:"BOQ-102"`
	MovementDate  time.Time `json:"movement_date" example:"2024-01-15T10:30:00Z"`
	CreatedBy     string    `json:"created_by" example:"John Doe"`
}

// BOQItem represents the boq_items table. RemainingQty, TotalPrice and the
// allocation-derived Status are computed on read, never stored.
type BOQItem struct {
	ID            int       `json:"id" example:"1"`
	ProjectID     int       `json:"project_id" example:"1"`
	StockItemID   *int      `json:"stock_item_id,omitempty" example:"1"`
	ItemCode      string    `json:"item_code" example:"FIB-ADSS-96"`
	Description   string    `json:"description" example:"ADSS Fibre Cable 96F"`
	Specification string    `json:"specification" example:"96 core, span 120m"`
	UoM           string    `json:"uom" example:"m"`
	RequiredQty   int       `json:"required_quantity" example:"1000"`
	AllocatedQty  int       `json:"allocated_quantity" example:"400"`
	RemainingQty  int       `json:"remaining_quantity" example:"600"`
	UnitPrice     float64   `json:"unit_price" example:"18.50"`
	TotalPrice    float64   `json:"total_price" example:"18500"`
	NeedsQuote    bool      `json:"needs_quote" example:"true"`
	Status        string    `json:"status" example:"Partially Allocated"`
	CreatedAt     time.Time `json:"created_at" example:"2024-01-15T10:30:00Z"`
	UpdatedAt     time.Time `json:"updated_at" example:"2024-01-15T10:30:00Z"`
	CreatedBy     string    `json:"created_by,omitempty" example:"John Doe"`
}

// AllocationInput is the request body for the allocate endpoint.
type AllocationInput struct {
	BOQItemID   int `json:"boq_item_id" binding:"required" example:"1"`
	StockItemID int `json:"stock_item_id" binding:"required" example:"1"`
	Quantity    int `json:"quantity" binding:"required" example:"400"`
}
