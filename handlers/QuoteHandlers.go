package handlers

import (
	"backend/models"
	"backend/services"
	"database/sql"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// SubmitQuoteHandler accepts a supplier's quote through the portal.
// No session is required; the portal token identifies the RFQ and supplier.
// @Summary Submit quote via supplier portal
// @Description Records the supplier's prices for the RFQ items. One quote per supplier per RFQ; a second submission is rejected. The first quote moves the RFQ from Open to Received.
// @Tags Supplier Portal
// @Accept json
// @Produce json
// @Param token path string true "Portal token"
// @Param body body models.QuoteSubmission true "Quote"
// @Success 201 {object} models.Quote
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 410 {object} models.ErrorResponse
// @Router /portal/rfqs/{token}/quote [post]
func SubmitQuoteHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")
		if token == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Portal token is required"})
			return
		}

		var submission models.QuoteSubmission
		if err := c.ShouldBindJSON(&submission); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quote submission", "details": err.Error()})
			return
		}
		if submission.LeadTimeDays <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "lead_time_days must be positive"})
			return
		}
		var rfqID, supplierID int
		var status string
		err := db.QueryRow(`SELECT id, supplier_id, status FROM rfqs WHERE portal_token = $1 AND deleted_at IS NULL`, token).
			Scan(&rfqID, &supplierID, &status)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "RFQ not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if status == models.RFQStatusClosed {
			c.JSON(http.StatusGone, gin.H{"error": "This RFQ is closed and no longer accepts quotes"})
			return
		}

		var alreadyQuoted bool
		err = db.QueryRow(`SELECT EXISTS(SELECT 1 FROM quotes WHERE rfq_id = $1 AND supplier_id = $2 AND deleted_at IS NULL)`,
			rfqID, supplierID).Scan(&alreadyQuoted)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if alreadyQuoted {
			c.JSON(http.StatusConflict, gin.H{"error": "A quote has already been submitted for this RFQ"})
			return
		}

		// Quantities come from the RFQ snapshot, never from the submission.
		quantities := map[int]int{}
		rows, err := db.Query(`SELECT id, quantity FROM rfq_items WHERE rfq_id = $1`, rfqID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		for rows.Next() {
			var id, qty int
			if err := rows.Scan(&id, &qty); err != nil {
				rows.Close()
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			quantities[id] = qty
		}
		rows.Close()

		if err := services.ValidateQuoteItems(submission.Items, quantities); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		quote := models.Quote{
			RFQID:         rfqID,
			SupplierID:    supplierID,
			SubmittedDate: time.Now(),
			ValidUntil:    submission.ValidUntil,
			LeadTimeDays:  submission.LeadTimeDays,
			PaymentTerms:  submission.PaymentTerms,
			Status:        models.QuoteStatusSubmitted,
			Notes:         submission.Notes,
		}
		for _, item := range submission.Items {
			qty := quantities[item.RFQItemID]
			quoteItem := models.QuoteItem{
				RFQItemID:  item.RFQItemID,
				UnitPrice:  item.UnitPrice,
				TotalPrice: float64(qty) * item.UnitPrice,
			}
			quote.TotalAmount += quoteItem.TotalPrice
			quote.Items = append(quote.Items, quoteItem)
		}

		tx, err := db.Begin()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		defer tx.Rollback()

		err = tx.QueryRow(`
			INSERT INTO quotes (rfq_id, supplier_id, submitted_date, valid_until, lead_time_days,
			                    payment_terms, total_amount, status, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id`,
			quote.RFQID, quote.SupplierID, quote.SubmittedDate, quote.ValidUntil.ToTime(),
			quote.LeadTimeDays, quote.PaymentTerms, quote.TotalAmount, quote.Status, quote.Notes,
		).Scan(&quote.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to insert quote", "details": err.Error()})
			return
		}

		for i := range quote.Items {
			quote.Items[i].QuoteID = quote.ID
			err = tx.QueryRow(`
				INSERT INTO quote_items (quote_id, rfq_item_id, unit_price, total_price)
				VALUES ($1, $2, $3, $4)
				RETURNING id`,
				quote.ID, quote.Items[i].RFQItemID, quote.Items[i].UnitPrice, quote.Items[i].TotalPrice,
			).Scan(&quote.Items[i].ID)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to insert quote item", "details": err.Error()})
				return
			}
		}

		if status == models.RFQStatusOpen {
			if _, err := tx.Exec(`UPDATE rfqs SET status = $1, updated_at = $2 WHERE id = $3`,
				models.RFQStatusReceived, time.Now(), rfqID); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
		}

		if err := tx.Commit(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, quote)
	}
}

// GetQuotesHandler lists the quotes submitted against an RFQ.
// @Summary List quotes for an RFQ
// @Tags Quotes
// @Produce json
// @Param rfq_id query int true "RFQ ID"
// @Success 200 {array} models.Quote
// @Failure 400 {object} models.ErrorResponse
// @Router /api/quotes [get]
func GetQuotesHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		rfqID, err := strconv.Atoi(c.Query("rfq_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "rfq_id query parameter is required"})
			return
		}

		rows, err := db.Query(`
			SELECT q.id, q.rfq_id, q.supplier_id, s.name, s.rating, q.submitted_date, q.valid_until,
			       q.lead_time_days, q.payment_terms, q.total_amount, q.status, q.notes
			FROM quotes q
			LEFT JOIN suppliers s ON q.supplier_id = s.id
			WHERE q.rfq_id = $1 AND q.deleted_at IS NULL
			ORDER BY q.submitted_date`, rfqID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		defer rows.Close()

		weights := services.DefaultScoreWeights()
		var quotes []models.Quote
		var ratings []float64
		for rows.Next() {
			var quote models.Quote
			var supplierName, paymentTerms, notes sql.NullString
			var rating sql.NullFloat64
			var validUntil sql.NullTime
			if err := rows.Scan(
				&quote.ID, &quote.RFQID, &quote.SupplierID, &supplierName, &rating,
				&quote.SubmittedDate, &validUntil, &quote.LeadTimeDays, &paymentTerms,
				&quote.TotalAmount, &quote.Status, &notes,
			); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			quote.SupplierName = getStringOrEmpty(supplierName)
			quote.PaymentTerms = getStringOrEmpty(paymentTerms)
			quote.Notes = getStringOrEmpty(notes)
			if validUntil.Valid {
				quote.ValidUntil = models.DateOnly{Time: validUntil.Time}
			}
			quotes = append(quotes, quote)
			ratings = append(ratings, rating.Float64)
		}

		for i := range quotes {
			itemRows, err := db.Query(`
				SELECT id, quote_id, rfq_item_id, unit_price, total_price
				FROM quote_items WHERE quote_id = $1 ORDER BY id`, quotes[i].ID)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			for itemRows.Next() {
				var item models.QuoteItem
				if err := itemRows.Scan(&item.ID, &item.QuoteID, &item.RFQItemID, &item.UnitPrice, &item.TotalPrice); err != nil {
					itemRows.Close()
					c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
					return
				}
				quotes[i].Items = append(quotes[i].Items, item)
			}
			itemRows.Close()
			quotes[i].Score = services.ScoreQuote(quotes[i], models.Supplier{Rating: ratings[i]}, weights)
		}

		c.JSON(http.StatusOK, quotes)
	}
}

// UpdateQuoteStatusHandler moves a quote through review.
// @Summary Update quote status
// @Description Submitted moves to Under Review; Under Review moves to Accepted or Rejected. Accepting a quote marks its BOQ items as Ordered and the RFQ as Evaluated.
// @Tags Quotes
// @Accept json
// @Produce json
// @Param id path int true "Quote ID"
// @Param body body object true "New status" SchemaExample({"status": "Accepted"})
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/quotes/{id}/status [put]
func UpdateQuoteStatusHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		if sessionID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "session-id header is required"})
			return
		}

		session, userName, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session", "details": err.Error()})
			return
		}

		quoteID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quote ID"})
			return
		}

		var body struct {
			Status string `json:"status" binding:"required"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
			return
		}

		var current string
		var rfqID int
		err = db.QueryRow(`SELECT status, rfq_id FROM quotes WHERE id = $1 AND deleted_at IS NULL`, quoteID).Scan(&current, &rfqID)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Quote not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		if !services.ValidQuoteTransition(current, body.Status) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("Cannot move quote from %s to %s", current, body.Status),
			})
			return
		}

		tx, err := db.Begin()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		defer tx.Rollback()

		if _, err := tx.Exec(`UPDATE quotes SET status = $1, updated_at = $2 WHERE id = $3`,
			body.Status, time.Now(), quoteID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		var projectID int
		if body.Status == models.QuoteStatusAccepted {
			// The quoted BOQ items are now on order with the supplier.
			if _, err := tx.Exec(`
				UPDATE boq_items SET status_override = $1, updated_at = $2
				WHERE id IN (
					SELECT ri.boq_item_id
					FROM quote_items qi
					JOIN rfq_items ri ON qi.rfq_item_id = ri.id
					WHERE qi.quote_id = $3
				)`, models.BOQStatusOrdered, time.Now(), quoteID); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			if _, err := tx.Exec(`UPDATE rfqs SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`,
				models.RFQStatusEvaluated, time.Now(), rfqID, models.RFQStatusReceived); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			if err := tx.QueryRow(`SELECT project_id FROM rfqs WHERE id = $1`, rfqID).Scan(&projectID); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
		}

		if err := tx.Commit(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Quote status updated"})

		log := models.ActivityLog{
			EventContext: "Quote",
			EventName:    body.Status,
			Description:  fmt.Sprintf("Quote %d moved from %s to %s", quoteID, current, body.Status),
			UserName:     userName,
			HostName:     session.HostName,
			IPAddress:    session.IPAddress,
			CreatedAt:    time.Now(),
			ProjectID:    projectID,
		}

		if logErr := SaveActivityLog(db, log); logErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Failed to log activity",
				"details": logErr.Error(),
			})
			return
		}
	}
}

// CompareQuotesHandler ranks all quotes on an RFQ item by item.
// @Summary Compare quotes on an RFQ
// @Description Scores every supplier offer per RFQ item on price, lead time, supplier rating and reliability. Weights default to 40/20/25/15 and can be overridden with query parameters; any positive mix is accepted and normalized.
// @Tags Quotes
// @Produce json
// @Param id path int true "RFQ ID"
// @Param price query number false "Price weight"
// @Param lead_time query number false "Lead time weight"
// @Param quality query number false "Quality weight"
// @Param reliability query number false "Reliability weight"
// @Success 200 {object} object
// @Failure 400 {object} models.ErrorResponse
// @Router /api/rfqs/{id}/compare [get]
func CompareQuotesHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		rfqID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid RFQ ID"})
			return
		}

		weights := services.DefaultScoreWeights()
		if v := c.Query("price"); v != "" {
			weights.Price, _ = strconv.ParseFloat(v, 64)
		}
		if v := c.Query("lead_time"); v != "" {
			weights.LeadTime, _ = strconv.ParseFloat(v, 64)
		}
		if v := c.Query("quality"); v != "" {
			weights.Quality, _ = strconv.ParseFloat(v, 64)
		}
		if v := c.Query("reliability"); v != "" {
			weights.Reliability, _ = strconv.ParseFloat(v, 64)
		}
		weights, err = weights.Normalize()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid score weights", "details": err.Error()})
			return
		}

		itemRows, err := db.Query(`
			SELECT id, item_code, description FROM rfq_items WHERE rfq_id = $1 ORDER BY id`, rfqID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		type rfqItemRef struct {
			ID          int
			ItemCode    string
			Description string
		}
		var rfqItems []rfqItemRef
		for itemRows.Next() {
			var ref rfqItemRef
			var itemCode sql.NullString
			if err := itemRows.Scan(&ref.ID, &itemCode, &ref.Description); err != nil {
				itemRows.Close()
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			ref.ItemCode = getStringOrEmpty(itemCode)
			rfqItems = append(rfqItems, ref)
		}
		itemRows.Close()

		lineRows, err := db.Query(`
			SELECT qi.rfq_item_id, q.id, q.supplier_id, s.name, qi.unit_price,
			       q.lead_time_days, s.rating, q.status
			FROM quote_items qi
			JOIN quotes q ON qi.quote_id = q.id
			LEFT JOIN suppliers s ON q.supplier_id = s.id
			WHERE q.rfq_id = $1 AND q.deleted_at IS NULL AND q.status != $2
			ORDER BY qi.rfq_item_id, q.supplier_id`, rfqID, models.QuoteStatusRejected)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		defer lineRows.Close()

		linesByItem := map[int][]services.QuoteLine{}
		for lineRows.Next() {
			var rfqItemID int
			var line services.QuoteLine
			var supplierName sql.NullString
			var rating sql.NullFloat64
			if err := lineRows.Scan(
				&rfqItemID, &line.QuoteID, &line.SupplierID, &supplierName,
				&line.UnitPrice, &line.LeadTimeDays, &rating, &line.QuoteStatus,
			); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			line.SupplierName = getStringOrEmpty(supplierName)
			line.SupplierRating = rating.Float64
			linesByItem[rfqItemID] = append(linesByItem[rfqItemID], line)
		}

		var comparisons []services.ItemComparison
		for _, ref := range rfqItems {
			lines := linesByItem[ref.ID]
			if len(lines) == 0 {
				continue
			}
			comparisons = append(comparisons, services.CompareItem(ref.ID, ref.ItemCode, ref.Description, lines, weights))
		}

		c.JSON(http.StatusOK, gin.H{
			"rfq_id":      rfqID,
			"weights":     weights,
			"comparisons": comparisons,
			"summary":     services.ComparisonSummary(comparisons),
		})
	}
}
