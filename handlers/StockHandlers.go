package handlers

import (
	"backend/models"
	"backend/services"
	"backend/utils"
	"database/sql"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// CreateStockItemHandler creates a new stock item.
// @Summary Create stock item
// @Description Creates a stock item. Status is derived from quantities and never accepted from the client. Requires Authorization header.
// @Tags Stock
// @Accept json
// @Produce json
// @Param body body models.StockItem true "Stock item data"
// @Success 201 {object} models.StockItem
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /api/stock_items [post]
func CreateStockItemHandler(db *sql.DB) gin.HandlerFunc {
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

		var item models.StockItem
		if err := c.ShouldBindJSON(&item); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON input", "details": err.Error()})
			return
		}
		if item.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Item name is required"})
			return
		}
		if item.QuantityInStock < 0 || item.MinimumStock < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Quantities must not be negative"})
			return
		}

		item.CreatedAt = time.Now()
		item.UpdatedAt = time.Now()

		query := `
			INSERT INTO stock_items (item_code, name, category, uom, quantity_in_stock,
			                         minimum_stock, supplier_id, last_purchase_price, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING id`

		err = db.QueryRow(query,
			item.ItemCode, item.Name, item.Category, item.UoM, item.QuantityInStock,
			item.MinimumStock, item.SupplierID, item.LastPurchasePrice, item.CreatedAt, item.UpdatedAt,
		).Scan(&item.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to insert stock item", "details": err.Error()})
			return
		}

		// Opening balance goes on the movement ledger too
		if item.QuantityInStock > 0 {
			if _, err := db.Exec(`
				INSERT INTO stock_movements (stock_item_id, movement_type, quantity, reference, movement_date, created_by)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				item.ID, models.MovementIncoming, item.QuantityInStock, "Opening balance", time.Now(), userName); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record opening movement", "details": err.Error()})
				return
			}
		}

		item.Status = services.StockStatus(item.QuantityInStock, item.MinimumStock)
		c.JSON(http.StatusCreated, item)

		log := models.ActivityLog{
			EventContext: "Stock",
			EventName:    "Create",
			Description:  "Create Stock Item " + item.Name,
			UserName:     userName,
			HostName:     session.HostName,
			IPAddress:    session.IPAddress,
			CreatedAt:    time.Now(),
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

// GetStockItemsHandler lists stock items with pagination, search and status filter.
// @Summary List stock items
// @Tags Stock
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Limit"
// @Param q query string false "Search by name or item code"
// @Param category query string false "Filter by category"
// @Param status query string false "Filter by derived status (In Stock, Low Stock, Out of Stock)"
// @Success 200 {object} object
// @Failure 500 {object} models.ErrorResponse
// @Router /api/stock_items [get]
func GetStockItemsHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
		if page < 1 {
			page = 1
		}
		if limit < 1 {
			limit = 10
		}
		offset := (page - 1) * limit

		whereClauses := []string{"s.deleted_at IS NULL"}
		args := []interface{}{}
		argIndex := 1

		if q := strings.TrimSpace(c.Query("q")); q != "" {
			whereClauses = append(whereClauses, fmt.Sprintf("(s.name ILIKE $%d OR s.item_code ILIKE $%d)", argIndex, argIndex))
			args = append(args, "%"+q+"%")
			argIndex++
		}
		if category := strings.TrimSpace(c.Query("category")); category != "" {
			whereClauses = append(whereClauses, fmt.Sprintf("s.category = $%d", argIndex))
			args = append(args, category)
			argIndex++
		}

		// The status filter is expressed over the same quantity comparison the
		// derived status uses, since status is never stored
		switch c.Query("status") {
		case models.StockStatusOutOfStock:
			whereClauses = append(whereClauses, "s.quantity_in_stock <= 0")
		case models.StockStatusLowStock:
			whereClauses = append(whereClauses, "s.quantity_in_stock > 0 AND s.quantity_in_stock <= s.minimum_stock")
		case models.StockStatusInStock:
			whereClauses = append(whereClauses, "s.quantity_in_stock > s.minimum_stock")
		}

		whereSQL := "WHERE " + strings.Join(whereClauses, " AND ")

		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		var totalRecords int
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM stock_items s %s", whereSQL)
		if err := db.QueryRowContext(ctx, countQuery, args...).Scan(&totalRecords); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error counting stock items"})
			return
		}
		totalPages := int(math.Ceil(float64(totalRecords) / float64(limit)))

		query := fmt.Sprintf(`
			SELECT s.id, s.item_code, s.name, s.category, s.uom, s.quantity_in_stock,
			       s.minimum_stock, s.supplier_id, sup.name, s.last_purchase_price,
			       s.created_at, s.updated_at
			FROM stock_items s
			LEFT JOIN suppliers sup ON s.supplier_id = sup.id
			%s
			ORDER BY s.name
			LIMIT $%d OFFSET $%d`, whereSQL, argIndex, argIndex+1)
		args = append(args, limit, offset)

		rows, err := db.QueryContext(ctx, query, args...)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error querying stock items", "details": err.Error()})
			return
		}
		defer rows.Close()

		var items []models.StockItem
		for rows.Next() {
			var item models.StockItem
			var itemCode, category, uom, supplierName sql.NullString
			if err := rows.Scan(
				&item.ID, &itemCode, &item.Name, &category, &uom, &item.QuantityInStock,
				&item.MinimumStock, &item.SupplierID, &supplierName, &item.LastPurchasePrice,
				&item.CreatedAt, &item.UpdatedAt,
			); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Error scanning stock items"})
				return
			}
			item.ItemCode = getStringOrEmpty(itemCode)
			item.Category = getStringOrEmpty(category)
			item.UoM = getStringOrEmpty(uom)
			item.SupplierName = getStringOrEmpty(supplierName)
			item.Status = services.StockStatus(item.QuantityInStock, item.MinimumStock)
			items = append(items, item)
		}

		c.JSON(http.StatusOK, gin.H{
			"stock_items": items,
			"pagination": gin.H{
				"current_page":  page,
				"page_size":     limit,
				"total_records": totalRecords,
				"total_pages":   totalPages,
				"has_next":      page < totalPages,
				"has_prev":      page > 1,
			},
		})
	}
}

// GetLowStockItemsHandler lists items at or below their minimum level.
// @Summary List low stock items
// @Tags Stock
// @Produce json
// @Success 200 {array} models.StockItem
// @Failure 500 {object} models.ErrorResponse
// @Router /api/stock_items/low [get]
func GetLowStockItemsHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := db.Query(`
			SELECT id, item_code, name, category, uom, quantity_in_stock, minimum_stock,
			       supplier_id, last_purchase_price, created_at, updated_at
			FROM stock_items
			WHERE deleted_at IS NULL AND quantity_in_stock <= minimum_stock
			ORDER BY quantity_in_stock - minimum_stock`)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		defer rows.Close()

		var items []models.StockItem
		for rows.Next() {
			var item models.StockItem
			var itemCode, category, uom sql.NullString
			if err := rows.Scan(
				&item.ID, &itemCode, &item.Name, &category, &uom, &item.QuantityInStock,
				&item.MinimumStock, &item.SupplierID, &item.LastPurchasePrice,
				&item.CreatedAt, &item.UpdatedAt,
			); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			item.ItemCode = getStringOrEmpty(itemCode)
			item.Category = getStringOrEmpty(category)
			item.UoM = getStringOrEmpty(uom)
			item.Status = services.StockStatus(item.QuantityInStock, item.MinimumStock)
			items = append(items, item)
		}

		c.JSON(http.StatusOK, items)
	}
}

// UpdateStockItemHandler updates stock item master data. Quantity changes go
// through the movement endpoint, not here.
// @Summary Update stock item
// @Tags Stock
// @Accept json
// @Produce json
// @Param id path int true "Stock item ID"
// @Param body body models.StockItem true "Stock item data"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/stock_items/{id} [put]
func UpdateStockItemHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		itemID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid stock item ID"})
			return
		}

		var item models.StockItem
		if err := c.ShouldBindJSON(&item); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if item.MinimumStock < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Minimum stock must not be negative"})
			return
		}

		res, err := db.Exec(`
			UPDATE stock_items
			SET item_code = COALESCE(NULLIF($1, ''), item_code),
			    name = COALESCE(NULLIF($2, ''), name),
			    category = COALESCE(NULLIF($3, ''), category),
			    uom = COALESCE(NULLIF($4, ''), uom),
			    minimum_stock = CASE WHEN $5 > 0 THEN $5 ELSE minimum_stock END,
			    supplier_id = COALESCE($6, supplier_id),
			    last_purchase_price = CASE WHEN $7 > 0 THEN $7 ELSE last_purchase_price END,
			    updated_at = $8
			WHERE id = $9 AND deleted_at IS NULL`,
			item.ItemCode, item.Name, item.Category, item.UoM, item.MinimumStock,
			item.SupplierID, item.LastPurchasePrice, time.Now(), itemID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if n, _ := res.RowsAffected(); n == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Stock item not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Stock item updated successfully"})
	}
}

// CreateStockMovementHandler records an incoming delivery, adjustment or
// return and applies it to the on-hand balance.
// @Summary Record stock movement
// @Description Records a signed stock movement. Site allocations go through the BOQ allocate endpoint instead.
// @Tags Stock
// @Accept json
// @Produce json
// @Param body body models.StockMovement true "Movement data"
// @Success 201 {object} models.StockMovement
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /api/stock_movements [post]
func CreateStockMovementHandler(db *sql.DB) gin.HandlerFunc {
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

		var movement models.StockMovement
		if err := c.ShouldBindJSON(&movement); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON input", "details": err.Error()})
			return
		}
		if movement.StockItemID == 0 || movement.Quantity == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "stock_item_id and a non-zero quantity are required"})
			return
		}

		switch movement.MovementType {
		case models.MovementIncoming, models.MovementAdjustment, models.MovementReturn:
		case models.MovementSiteAllocation:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Site allocations are recorded via the BOQ allocate endpoint"})
			return
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid movement type"})
			return
		}

		tx, err := db.Begin()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to begin transaction", "details": err.Error()})
			return
		}
		defer tx.Rollback()

		var quantityInStock int
		err = tx.QueryRow(`SELECT quantity_in_stock FROM stock_items WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`,
			movement.StockItemID).Scan(&quantityInStock)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Stock item not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		newQuantity := quantityInStock + movement.Quantity
		if newQuantity < 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("Movement would drive stock negative: on hand %d, movement %d", quantityInStock, movement.Quantity),
			})
			return
		}

		movement.MovementDate = time.Now()
		movement.CreatedBy = userName

		err = tx.QueryRow(`
			INSERT INTO stock_movements (stock_item_id, project_id, movement_type, quantity, reference, movement_date, created_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id`,
			movement.StockItemID, movement.ProjectID, movement.MovementType, movement.Quantity,
			movement.Reference, movement.MovementDate, movement.CreatedBy,
		).Scan(&movement.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record movement", "details": err.Error()})
			return
		}

		if _, err := tx.Exec(`UPDATE stock_items SET quantity_in_stock = $1, updated_at = $2 WHERE id = $3`,
			newQuantity, time.Now(), movement.StockItemID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update stock balance", "details": err.Error()})
			return
		}

		if err := tx.Commit(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit movement", "details": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, movement)

		log := models.ActivityLog{
			EventContext: "Stock",
			EventName:    movement.MovementType,
			Description:  fmt.Sprintf("Stock movement of %d on item %d", movement.Quantity, movement.StockItemID),
			UserName:     userName,
			HostName:     session.HostName,
			IPAddress:    session.IPAddress,
			CreatedAt:    time.Now(),
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

// GetStockMovementsHandler lists the movement ledger for one stock item.
// @Summary List stock movements
// @Tags Stock
// @Produce json
// @Param id path int true "Stock item ID"
// @Success 200 {array} models.StockMovement
// @Failure 400 {object} models.ErrorResponse
// @Router /api/stock_items/{id}/movements [get]
func GetStockMovementsHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		itemID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid stock item ID"})
			return
		}

		rows, err := db.Query(`
			SELECT m.id, m.stock_item_id, s.name, m.project_id, m.movement_type,
			       m.quantity, m.reference, m.movement_date, m.created_by
			FROM stock_movements m
			JOIN stock_items s ON m.stock_item_id = s.id
			WHERE m.stock_item_id = $1
			ORDER BY m.movement_date DESC, m.id DESC`, itemID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		defer rows.Close()

		var movements []models.StockMovement
		for rows.Next() {
			var m models.StockMovement
			var reference, createdBy sql.NullString
			if err := rows.Scan(
				&m.ID, &m.StockItemID, &m.StockItemName, &m.ProjectID, &m.MovementType,
				&m.Quantity, &reference, &m.MovementDate, &createdBy,
			); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			m.Reference = getStringOrEmpty(reference)
			m.CreatedBy = getStringOrEmpty(createdBy)
			movements = append(movements, m)
		}

		c.JSON(http.StatusOK, movements)
	}
}

// DeleteStockItemHandler soft deletes a stock item.
// @Summary Delete stock item
// @Tags Stock
// @Produce json
// @Param id path int true "Stock item ID"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/stock_items/{id} [delete]
func DeleteStockItemHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		itemID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid stock item ID"})
			return
		}

		var linkedBOQ int
		if err := db.QueryRow(`SELECT COUNT(*) FROM boq_items WHERE stock_item_id = $1 AND deleted_at IS NULL`, itemID).Scan(&linkedBOQ); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if linkedBOQ > 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "Stock item is linked to BOQ items and cannot be deleted"})
			return
		}

		res, err := db.Exec(`UPDATE stock_items SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL`, time.Now(), itemID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if n, _ := res.RowsAffected(); n == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Stock item not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Stock item deleted successfully"})
	}
}
