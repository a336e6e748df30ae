package handlers

import (
	"backend/models"
	"backend/services"
	"database/sql"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// CreateBOQItemHandler adds an item to a project's bill of quantities.
// @Summary Create BOQ item
// @Tags BOQ
// @Accept json
// @Produce json
// @Param body body models.BOQItem true "BOQ item data"
// @Success 201 {object} models.BOQItem
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /api/boq_items [post]
func CreateBOQItemHandler(db *sql.DB) gin.HandlerFunc {
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

		var item models.BOQItem
		if err := c.ShouldBindJSON(&item); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON input", "details": err.Error()})
			return
		}
		if item.ProjectID == 0 || item.Description == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "project_id and description are required"})
			return
		}
		if item.RequiredQty <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "required_quantity must be positive"})
			return
		}
		if item.UnitPrice < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unit_price must not be negative"})
			return
		}

		item.CreatedAt = time.Now()
		item.UpdatedAt = time.Now()
		item.CreatedBy = userName

		query := `
			INSERT INTO boq_items (project_id, stock_item_id, item_code, description, specification,
			                       uom, required_qty, allocated_qty, unit_price, needs_quote,
			                       created_at, updated_at, created_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7, 0, $8, $9, $10, $11, $12)
			RETURNING id`

		err = db.QueryRow(query,
			item.ProjectID, item.StockItemID, item.ItemCode, item.Description, item.Specification,
			item.UoM, item.RequiredQty, item.UnitPrice, item.NeedsQuote,
			item.CreatedAt, item.UpdatedAt, item.CreatedBy,
		).Scan(&item.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to insert BOQ item", "details": err.Error()})
			return
		}

		item.AllocatedQty = 0
		item.RemainingQty = item.RequiredQty
		item.TotalPrice = float64(item.RequiredQty) * item.UnitPrice
		item.Status = services.BOQStatus(item.RequiredQty, 0, "")
		c.JSON(http.StatusCreated, item)

		log := models.ActivityLog{
			EventContext: "BOQ",
			EventName:    "Create",
			Description:  "Create BOQ Item " + item.Description,
			UserName:     userName,
			HostName:     session.HostName,
			IPAddress:    session.IPAddress,
			CreatedAt:    time.Now(),
			ProjectID:    item.ProjectID,
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

// GetBOQItemsHandler lists a project's BOQ with derived fields.
// @Summary List BOQ items for a project
// @Tags BOQ
// @Produce json
// @Param project_id query int true "Project ID"
// @Param status query string false "Filter by derived status"
// @Param needs_quote query bool false "Filter by quote flag"
// @Success 200 {object} object
// @Failure 400 {object} models.ErrorResponse
// @Router /api/boq_items [get]
func GetBOQItemsHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, err := strconv.Atoi(c.Query("project_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "project_id query parameter is required"})
			return
		}

		query := `
			SELECT id, project_id, stock_item_id, item_code, description, specification, uom,
			       required_qty, allocated_qty, unit_price, needs_quote, status_override,
			       created_at, updated_at
			FROM boq_items
			WHERE project_id = $1 AND deleted_at IS NULL`
		args := []interface{}{projectID}

		if needsQuote := c.Query("needs_quote"); needsQuote != "" {
			query += ` AND needs_quote = $2`
			args = append(args, strings.EqualFold(needsQuote, "true"))
		}
		query += ` ORDER BY id`

		rows, err := db.Query(query, args...)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		defer rows.Close()

		statusFilter := c.Query("status")
		var items []models.BOQItem
		var totalValue float64
		for rows.Next() {
			var item models.BOQItem
			var itemCode, specification, uom, override sql.NullString
			if err := rows.Scan(
				&item.ID, &item.ProjectID, &item.StockItemID, &itemCode, &item.Description,
				&specification, &uom, &item.RequiredQty, &item.AllocatedQty, &item.UnitPrice,
				&item.NeedsQuote, &override, &item.CreatedAt, &item.UpdatedAt,
			); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			item.ItemCode = getStringOrEmpty(itemCode)
			item.Specification = getStringOrEmpty(specification)
			item.UoM = getStringOrEmpty(uom)
			item.RemainingQty = item.RequiredQty - item.AllocatedQty
			item.TotalPrice = float64(item.RequiredQty) * item.UnitPrice
			item.Status = services.BOQStatus(item.RequiredQty, item.AllocatedQty, override.String)

			if statusFilter != "" && item.Status != statusFilter {
				continue
			}
			totalValue += item.TotalPrice
			items = append(items, item)
		}

		c.JSON(http.StatusOK, gin.H{
			"boq_items":   items,
			"total_value": totalValue,
		})
	}
}

// AllocateStockHandler moves stock onto a BOQ item.
// @Summary Allocate stock to BOQ item
// @Description Moves quantity from a stock item's on-hand balance onto a BOQ item. Quantity is conserved: allocated + remaining always equals required, and the movement ledger records the transfer.
// @Tags BOQ
// @Accept json
// @Produce json
// @Param body body models.AllocationInput true "Allocation"
// @Success 200 {object} object
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /api/boq_items/allocate [post]
func AllocateStockHandler(db *sql.DB) gin.HandlerFunc {
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

		var input models.AllocationInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON input", "details": err.Error()})
			return
		}

		boq, stock, err := services.AllocateStock(db, input, userName)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Allocation failed", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message":    "Stock allocated successfully",
			"boq_item":   boq,
			"stock_item": stock,
		})

		log := models.ActivityLog{
			EventContext: "BOQ",
			EventName:    "Allocate",
			Description:  fmt.Sprintf("Allocated %d of stock item %d to BOQ item %d", input.Quantity, input.StockItemID, input.BOQItemID),
			UserName:     userName,
			HostName:     session.HostName,
			IPAddress:    session.IPAddress,
			CreatedAt:    time.Now(),
			ProjectID:    boq.ProjectID,
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

// SetBOQStatusHandler sets or clears the Ordered/Delivered override.
// @Summary Set BOQ item status override
// @Description Only Ordered and Delivered can be set; the allocation-derived statuses are computed and cannot be written. An empty status clears the override.
// @Tags BOQ
// @Accept json
// @Produce json
// @Param id path int true "BOQ item ID"
// @Param body body object true "Status" SchemaExample({"status": "Ordered"})
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/boq_items/{id}/status [put]
func SetBOQStatusHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		itemID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid BOQ item ID"})
			return
		}

		var body struct {
			Status string `json:"status"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON input"})
			return
		}

		var override interface{}
		switch body.Status {
		case models.BOQStatusOrdered, models.BOQStatusDelivered:
			override = body.Status
		case "":
			override = nil
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Only Ordered or Delivered can be set; other statuses are derived"})
			return
		}

		res, err := db.Exec(`UPDATE boq_items SET status_override = $1, updated_at = $2 WHERE id = $3 AND deleted_at IS NULL`,
			override, time.Now(), itemID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if n, _ := res.RowsAffected(); n == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "BOQ item not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "BOQ item status updated"})
	}
}

// UpdateBOQItemHandler updates BOQ item master data.
// @Summary Update BOQ item
// @Description Updates description, pricing and the quote flag. required_quantity cannot drop below the already-allocated quantity.
// @Tags BOQ
// @Accept json
// @Produce json
// @Param id path int true "BOQ item ID"
// @Param body body models.BOQItem true "BOQ item data"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/boq_items/{id} [put]
func UpdateBOQItemHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		itemID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid BOQ item ID"})
			return
		}

		var item models.BOQItem
		if err := c.ShouldBindJSON(&item); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var allocated int
		err = db.QueryRow(`SELECT allocated_qty FROM boq_items WHERE id = $1 AND deleted_at IS NULL`, itemID).Scan(&allocated)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "BOQ item not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if item.RequiredQty > 0 && item.RequiredQty < allocated {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("required_quantity %d is below already-allocated %d", item.RequiredQty, allocated),
			})
			return
		}

		res, err := db.Exec(`
			UPDATE boq_items
			SET item_code = COALESCE(NULLIF($1, ''), item_code),
			    description = COALESCE(NULLIF($2, ''), description),
			    specification = COALESCE(NULLIF($3, ''), specification),
			    uom = COALESCE(NULLIF($4, ''), uom),
			    required_qty = CASE WHEN $5 > 0 THEN $5 ELSE required_qty END,
			    unit_price = CASE WHEN $6 >= 0 THEN $6 ELSE unit_price END,
			    needs_quote = $7,
			    stock_item_id = COALESCE($8, stock_item_id),
			    updated_at = $9
			WHERE id = $10 AND deleted_at IS NULL`,
			item.ItemCode, item.Description, item.Specification, item.UoM,
			item.RequiredQty, item.UnitPrice, item.NeedsQuote, item.StockItemID,
			time.Now(), itemID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if n, _ := res.RowsAffected(); n == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "BOQ item not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "BOQ item updated successfully"})
	}
}

// DeleteBOQItemHandler soft deletes a BOQ item.
// @Summary Delete BOQ item
// @Tags BOQ
// @Produce json
// @Param id path int true "BOQ item ID"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/boq_items/{id} [delete]
func DeleteBOQItemHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		itemID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid BOQ item ID"})
			return
		}

		var allocated int
		err = db.QueryRow(`SELECT allocated_qty FROM boq_items WHERE id = $1 AND deleted_at IS NULL`, itemID).Scan(&allocated)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "BOQ item not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if allocated > 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "BOQ item has allocated stock; return it before deleting"})
			return
		}

		res, err := db.Exec(`UPDATE boq_items SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL`, time.Now(), itemID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if n, _ := res.RowsAffected(); n == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "BOQ item not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "BOQ item deleted successfully"})
	}
}
