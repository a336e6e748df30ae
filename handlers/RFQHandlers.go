package handlers

import (
	"backend/models"
	"backend/services"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// portalBaseURL is where the supplier portal frontend is served.
func portalBaseURL() string {
	if base := os.Getenv("PORTAL_BASE_URL"); base != "" {
		return base
	}
	return "http://localhost:3000"
}

// GenerateRFQHandler builds an RFQ from a project's open BOQ items.
// @Summary Generate RFQ from BOQ
// @Description Collects the project's BOQ items that are flagged for quoting and still have outstanding quantity, filters them to the given supplier, and creates an RFQ with a 14-day due date and a supplier portal link. The BOQ itself is not modified.
// @Tags RFQ
// @Accept json
// @Produce json
// @Param body body object true "Generation input" SchemaExample({"project_id": 1, "supplier_id": 2})
// @Success 201 {object} models.RFQ
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /api/rfqs/generate [post]
func GenerateRFQHandler(db *sql.DB) gin.HandlerFunc {
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

		var input struct {
			ProjectID  int `json:"project_id" binding:"required"`
			SupplierID int `json:"supplier_id" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "project_id and supplier_id are required", "details": err.Error()})
			return
		}

		rfq, err := services.GenerateRFQFromBOQ(db, input.ProjectID, input.SupplierID, userName)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "RFQ generation failed", "details": err.Error()})
			return
		}
		rfq.SupplierPortalLink = services.PortalLink(portalBaseURL(), rfq.PortalToken, rfq.SupplierID)

		c.JSON(http.StatusCreated, rfq)

		// Mail the portal link; a delivery failure never fails the RFQ.
		var supplier models.Supplier
		err = db.QueryRow(`SELECT id, name, email FROM suppliers WHERE id = $1`, rfq.SupplierID).
			Scan(&supplier.ID, &supplier.Name, &supplier.Email)
		if err == nil && supplier.Email != "" {
			go func(s models.Supplier, r models.RFQ) {
				if mailErr := services.NewEmailService().SendRFQEmail(s, r); mailErr != nil {
					log.Printf("Failed to email RFQ %s to supplier %d: %v", r.RFQNumber, s.ID, mailErr)
				}
			}(supplier, *rfq)
		}

		log := models.ActivityLog{
			EventContext: "RFQ",
			EventName:    "Generate",
			Description:  fmt.Sprintf("Generated %s for supplier %d with %d items", rfq.RFQNumber, rfq.SupplierID, len(rfq.Items)),
			UserName:     userName,
			HostName:     session.HostName,
			IPAddress:    session.IPAddress,
			CreatedAt:    time.Now(),
			ProjectID:    rfq.ProjectID,
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

// GetRFQsHandler lists RFQs with optional filters.
// @Summary List RFQs
// @Tags RFQ
// @Produce json
// @Param project_id query int false "Filter by project"
// @Param supplier_id query int false "Filter by supplier"
// @Param status query string false "Filter by status"
// @Success 200 {array} models.RFQ
// @Failure 500 {object} models.ErrorResponse
// @Router /api/rfqs [get]
func GetRFQsHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := `
			SELECT r.id, r.rfq_number, r.project_id, p.name, r.supplier_id, s.name,
			       r.rfq_date, r.due_date, r.status, r.total_estimated_amount, r.portal_token,
			       (SELECT COUNT(*) FROM quotes q WHERE q.rfq_id = r.id AND q.deleted_at IS NULL)
			FROM rfqs r
			LEFT JOIN project p ON r.project_id = p.project_id
			LEFT JOIN suppliers s ON r.supplier_id = s.id
			WHERE r.deleted_at IS NULL`
		args := []interface{}{}
		placeholderIndex := 1

		if projectIDStr := c.Query("project_id"); projectIDStr != "" {
			projectID, err := strconv.Atoi(projectIDStr)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project_id"})
				return
			}
			query += fmt.Sprintf(" AND r.project_id = $%d", placeholderIndex)
			args = append(args, projectID)
			placeholderIndex++
		}
		if supplierIDStr := c.Query("supplier_id"); supplierIDStr != "" {
			supplierID, err := strconv.Atoi(supplierIDStr)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid supplier_id"})
				return
			}
			query += fmt.Sprintf(" AND r.supplier_id = $%d", placeholderIndex)
			args = append(args, supplierID)
			placeholderIndex++
		}
		if status := c.Query("status"); status != "" {
			query += fmt.Sprintf(" AND r.status = $%d", placeholderIndex)
			args = append(args, status)
			placeholderIndex++
		}
		query += ` ORDER BY r.rfq_date DESC, r.id DESC`

		rows, err := db.Query(query, args...)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		defer rows.Close()

		base := portalBaseURL()
		type rfqRow struct {
			models.RFQ
			QuoteCount int `json:"quote_count"`
		}
		var rfqs []rfqRow
		for rows.Next() {
			var r rfqRow
			var projectName, supplierName sql.NullString
			if err := rows.Scan(
				&r.ID, &r.RFQNumber, &r.ProjectID, &projectName, &r.SupplierID, &supplierName,
				&r.RFQDate, &r.DueDate, &r.Status, &r.TotalEstimatedAmount, &r.PortalToken,
				&r.QuoteCount,
			); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			r.ProjectName = getStringOrEmpty(projectName)
			r.SupplierName = getStringOrEmpty(supplierName)
			r.SupplierPortalLink = services.PortalLink(base, r.PortalToken, r.SupplierID)
			rfqs = append(rfqs, r)
		}

		c.JSON(http.StatusOK, rfqs)
	}
}

// GetRFQByIDHandler returns one RFQ with its line items.
// @Summary Get RFQ by ID
// @Tags RFQ
// @Produce json
// @Param id path int true "RFQ ID"
// @Success 200 {object} models.RFQ
// @Failure 404 {object} models.ErrorResponse
// @Router /api/rfqs/{id} [get]
func GetRFQByIDHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		rfqID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid RFQ ID"})
			return
		}

		rfq, err := fetchRFQ(db, `r.id = $1`, rfqID)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "RFQ not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, rfq)
	}
}

// GetRFQByTokenHandler is the public supplier-portal view of an RFQ.
// No session is required; the token is the credential.
// @Summary Get RFQ by portal token
// @Tags Supplier Portal
// @Produce json
// @Param token path string true "Portal token"
// @Success 200 {object} models.RFQ
// @Failure 404 {object} models.ErrorResponse
// @Failure 410 {object} models.ErrorResponse
// @Router /portal/rfqs/{token} [get]
func GetRFQByTokenHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")
		if token == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Portal token is required"})
			return
		}

		rfq, err := fetchRFQ(db, `r.portal_token = $1`, token)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "RFQ not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if rfq.Status == models.RFQStatusClosed {
			c.JSON(http.StatusGone, gin.H{"error": "This RFQ is closed and no longer accepts quotes"})
			return
		}

		c.JSON(http.StatusOK, rfq)
	}
}

// fetchRFQ loads one RFQ and its items by an arbitrary single-value filter.
func fetchRFQ(db *sql.DB, where string, arg interface{}) (*models.RFQ, error) {
	var rfq models.RFQ
	var projectName, supplierName sql.NullString
	err := db.QueryRow(`
		SELECT r.id, r.rfq_number, r.project_id, p.name, r.supplier_id, s.name,
		       r.rfq_date, r.due_date, r.status, r.total_estimated_amount, r.portal_token
		FROM rfqs r
		LEFT JOIN project p ON r.project_id = p.project_id
		LEFT JOIN suppliers s ON r.supplier_id = s.id
		WHERE `+where+` AND r.deleted_at IS NULL`, arg).Scan(
		&rfq.ID, &rfq.RFQNumber, &rfq.ProjectID, &projectName, &rfq.SupplierID, &supplierName,
		&rfq.RFQDate, &rfq.DueDate, &rfq.Status, &rfq.TotalEstimatedAmount, &rfq.PortalToken,
	)
	if err != nil {
		return nil, err
	}
	rfq.ProjectName = getStringOrEmpty(projectName)
	rfq.SupplierName = getStringOrEmpty(supplierName)
	rfq.SupplierPortalLink = services.PortalLink(portalBaseURL(), rfq.PortalToken, rfq.SupplierID)

	rows, err := db.Query(`
		SELECT id, rfq_id, boq_item_id, item_code, description, specification, uom, quantity, estimated_price
		FROM rfq_items
		WHERE rfq_id = $1
		ORDER BY id`, rfq.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item models.RFQItem
		var itemCode, specification, uom sql.NullString
		if err := rows.Scan(
			&item.ID, &item.RFQID, &item.BOQItemID, &itemCode, &item.Description,
			&specification, &uom, &item.Quantity, &item.EstimatedPrice,
		); err != nil {
			return nil, err
		}
		item.ItemCode = getStringOrEmpty(itemCode)
		item.Specification = getStringOrEmpty(specification)
		item.UoM = getStringOrEmpty(uom)
		rfq.Items = append(rfq.Items, item)
	}
	return &rfq, rows.Err()
}

// UpdateRFQStatusHandler moves an RFQ through its lifecycle.
// @Summary Update RFQ status
// @Description Allowed moves are Open to Received, Received to Evaluated, and any non-terminal state to Closed.
// @Tags RFQ
// @Accept json
// @Produce json
// @Param id path int true "RFQ ID"
// @Param body body object true "New status" SchemaExample({"status": "Closed"})
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/rfqs/{id}/status [put]
func UpdateRFQStatusHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		rfqID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid RFQ ID"})
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
		err = db.QueryRow(`SELECT status FROM rfqs WHERE id = $1 AND deleted_at IS NULL`, rfqID).Scan(&current)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "RFQ not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		if !services.ValidRFQTransition(current, body.Status) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("Cannot move RFQ from %s to %s", current, body.Status),
			})
			return
		}

		if _, err := db.Exec(`UPDATE rfqs SET status = $1, updated_at = $2 WHERE id = $3`,
			body.Status, time.Now(), rfqID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "RFQ status updated"})
	}
}

// CloseExpiredRFQsHandler closes every open RFQ past its due date.
// The daily cron runs the same sweep; this endpoint exists for manual runs.
// @Summary Close expired RFQs
// @Tags RFQ
// @Produce json
// @Success 200 {object} object
// @Failure 500 {object} models.ErrorResponse
// @Router /api/rfqs/close_expired [post]
func CloseExpiredRFQsHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		closed, err := services.CloseExpiredRFQs(db)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Expired RFQs closed", "closed": closed})
	}
}
