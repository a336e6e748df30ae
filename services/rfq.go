package services

import (
	"backend/models"
	"backend/repository"
	"database/sql"
	"fmt"
	"net/url"
	"time"
)

// RFQDueDays is the fixed response window granted to a supplier.
const RFQDueDays = 14

// RFQCandidate is a BOQ item joined with the supplier of its linked stock
// item, if any. Items without a stock link have no preferred supplier and
// qualify for any RFQ.
type RFQCandidate struct {
	Item            models.BOQItem
	StockSupplierID *int
}

// FilterRFQCandidates selects the BOQ items that belong on an RFQ for the
// given supplier: outstanding quantity, flagged for quoting, and either
// linked to stock sourced from that supplier or not linked to stock at all.
// Pure filter; the BOQ is never mutated by RFQ generation.
func FilterRFQCandidates(candidates []RFQCandidate, supplierID int) []models.BOQItem {
	var selected []models.BOQItem
	for _, c := range candidates {
		remaining := c.Item.RequiredQty - c.Item.AllocatedQty
		if remaining <= 0 || !c.Item.NeedsQuote {
			continue
		}
		if c.StockSupplierID != nil && *c.StockSupplierID != supplierID {
			continue
		}
		item := c.Item
		item.RemainingQty = remaining
		selected = append(selected, item)
	}
	return selected
}

// BuildRFQ assembles an RFQ from the selected BOQ items. Each RFQ item
// snapshots the BOQ item's remaining quantity and unit price at generation
// time. Returns an error when no items qualify: an empty RFQ is never
// created.
func BuildRFQ(projectID, supplierID int, items []models.BOQItem, now time.Time) (models.RFQ, error) {
	if len(items) == 0 {
		return models.RFQ{}, fmt.Errorf("no BOQ items qualify for an RFQ to supplier %d on project %d", supplierID, projectID)
	}

	rfq := models.RFQ{
		RFQNumber:   repository.GenerateRFQNumber(now),
		ProjectID:   projectID,
		SupplierID:  supplierID,
		RFQDate:     now,
		DueDate:     now.AddDate(0, 0, RFQDueDays),
		Status:      models.RFQStatusOpen,
		PortalToken: repository.GeneratePortalToken(),
	}

	for _, item := range items {
		rfqItem := models.RFQItem{
			BOQItemID:      item.ID,
			ItemCode:       item.ItemCode,
			Description:    item.Description,
			Specification:  item.Specification,
			UoM:            item.UoM,
			Quantity:       item.RemainingQty,
			EstimatedPrice: item.UnitPrice,
		}
		rfq.TotalEstimatedAmount += float64(rfqItem.Quantity) * rfqItem.EstimatedPrice
		rfq.Items = append(rfq.Items, rfqItem)
	}
	return rfq, nil
}

// PortalLink builds the supplier-facing quote submission URL. The token is a
// minted identifier stored against the RFQ and looked up server-side; the
// supplier id in the query string is informational only.
func PortalLink(baseURL, token string, supplierID int) string {
	return fmt.Sprintf("%s/supplier-portal/%s?supplier=%d", baseURL, url.PathEscape(token), supplierID)
}

// GenerateRFQFromBOQ selects the qualifying BOQ items for the project and
// supplier, snapshots them into a new RFQ and persists it. Generation is
// read-only over the BOQ: running it twice before any allocation yields the
// same item set.
func GenerateRFQFromBOQ(db *sql.DB, projectID, supplierID int, createdBy string) (*models.RFQ, error) {
	var exists bool
	if err := db.QueryRow(`SELECT EXISTS(SELECT 1 FROM suppliers WHERE id = $1 AND deleted_at IS NULL)`, supplierID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check supplier: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("supplier %d not found", supplierID)
	}

	rows, err := db.Query(`
		SELECT b.id, b.project_id, b.stock_item_id, b.item_code, b.description,
		       b.specification, b.uom, b.required_qty, b.allocated_qty, b.unit_price,
		       b.needs_quote, s.supplier_id
		FROM boq_items b
		LEFT JOIN stock_items s ON b.stock_item_id = s.id
		WHERE b.project_id = $1 AND b.deleted_at IS NULL
		ORDER BY b.id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch BOQ items: %w", err)
	}
	defer rows.Close()

	var candidates []RFQCandidate
	for rows.Next() {
		var c RFQCandidate
		var spec, itemCode, uom sql.NullString
		err := rows.Scan(
			&c.Item.ID, &c.Item.ProjectID, &c.Item.StockItemID, &itemCode,
			&c.Item.Description, &spec, &uom, &c.Item.RequiredQty,
			&c.Item.AllocatedQty, &c.Item.UnitPrice, &c.Item.NeedsQuote, &c.StockSupplierID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan BOQ item: %w", err)
		}
		c.Item.ItemCode = itemCode.String
		c.Item.Specification = spec.String
		c.Item.UoM = uom.String
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading BOQ items: %w", err)
	}

	selected := FilterRFQCandidates(candidates, supplierID)
	rfq, err := BuildRFQ(projectID, supplierID, selected, time.Now())
	if err != nil {
		return nil, err
	}
	rfq.CreatedBy = createdBy

	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin RFQ transaction: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRow(`
		INSERT INTO rfqs (rfq_number, project_id, supplier_id, rfq_date, due_date, status, total_estimated_amount, portal_token, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		rfq.RFQNumber, rfq.ProjectID, rfq.SupplierID, rfq.RFQDate, rfq.DueDate,
		rfq.Status, rfq.TotalEstimatedAmount, rfq.PortalToken, rfq.CreatedBy,
	).Scan(&rfq.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert RFQ: %w", err)
	}

	for i := range rfq.Items {
		rfq.Items[i].RFQID = rfq.ID
		err = tx.QueryRow(`
			INSERT INTO rfq_items (rfq_id, boq_item_id, item_code, description, specification, uom, quantity, estimated_price)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id`,
			rfq.ID, rfq.Items[i].BOQItemID, rfq.Items[i].ItemCode, rfq.Items[i].Description,
			rfq.Items[i].Specification, rfq.Items[i].UoM, rfq.Items[i].Quantity, rfq.Items[i].EstimatedPrice,
		).Scan(&rfq.Items[i].ID)
		if err != nil {
			return nil, fmt.Errorf("failed to insert RFQ item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit RFQ: %w", err)
	}
	return &rfq, nil
}

// CloseExpiredRFQs transitions every Open RFQ past its due date to Closed.
// Run daily by the maintenance cron.
func CloseExpiredRFQs(db *sql.DB) (int, error) {
	res, err := db.Exec(`
		UPDATE rfqs SET status = $1
		WHERE status = $2 AND due_date < $3`,
		models.RFQStatusClosed, models.RFQStatusOpen, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to close expired RFQs: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// ValidRFQTransition reports whether an RFQ may move between the two states.
// Open → Received → Evaluated → Closed, with Closed reachable from any
// non-terminal state (early close, or due-date expiry).
func ValidRFQTransition(from, to string) bool {
	switch from {
	case models.RFQStatusOpen:
		return to == models.RFQStatusReceived || to == models.RFQStatusClosed
	case models.RFQStatusReceived:
		return to == models.RFQStatusEvaluated || to == models.RFQStatusClosed
	case models.RFQStatusEvaluated:
		return to == models.RFQStatusClosed
	default:
		return false
	}
}

// ValidateQuoteItems checks a portal submission against the RFQ's item
// snapshot. Every RFQ item must be priced exactly once with a positive unit
// price; partial quotes are rejected so quote totals stay comparable.
func ValidateQuoteItems(items []models.QuoteSubmissionItem, rfqQuantities map[int]int) error {
	seen := make(map[int]bool, len(items))
	for _, item := range items {
		if _, ok := rfqQuantities[item.RFQItemID]; !ok {
			return fmt.Errorf("RFQ item %d does not belong to this RFQ", item.RFQItemID)
		}
		if seen[item.RFQItemID] {
			return fmt.Errorf("RFQ item %d is priced more than once", item.RFQItemID)
		}
		seen[item.RFQItemID] = true
		if item.UnitPrice <= 0 {
			return fmt.Errorf("unit_price for RFQ item %d must be positive", item.RFQItemID)
		}
	}
	if len(seen) != len(rfqQuantities) {
		return fmt.Errorf("quote must price all %d RFQ items, got %d", len(rfqQuantities), len(seen))
	}
	return nil
}

// ValidQuoteTransition reports whether a quote may move between the two
// states. Submitted → Under Review → {Accepted, Rejected}.
func ValidQuoteTransition(from, to string) bool {
	switch from {
	case models.QuoteStatusSubmitted:
		return to == models.QuoteStatusUnderReview
	case models.QuoteStatusUnderReview:
		return to == models.QuoteStatusAccepted || to == models.QuoteStatusRejected
	default:
		return false
	}
}
