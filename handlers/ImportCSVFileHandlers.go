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

// ImportStockCSV godoc
// @Summary      Import stock items from CSV
// @Description  Accepts a CSV with flexible column headers (name, item code, category, UoM, quantity, minimum stock, price). Rows that fail validation are skipped and reported; valid rows are inserted in one transaction.
// @Tags         import
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "CSV file"
// @Success      200  {object}  models.ImportResult
// @Failure      400  {object}  models.ErrorResponse
// @Failure      401  {object}  models.ErrorResponse
// @Router       /api/import_csv_stock [post]
func ImportStockCSV(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		if sessionID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "session_id header is missing"})
			return
		}
		session, userName, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session", "details": err.Error()})
			return
		}

		file, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file not found"})
			return
		}
		src, err := file.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to open file"})
			return
		}
		defer src.Close()

		items, rowErrors, err := services.ParseStockCSV(src)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse CSV", "details": err.Error()})
			return
		}

		tx, err := db.Begin()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start transaction"})
			return
		}
		defer tx.Rollback()

		result := models.ImportResult{Failed: len(rowErrors), Errors: rowErrors}
		for _, item := range items {
			var id int
			err := tx.QueryRow(`
				INSERT INTO stock_items (item_code, name, category, uom, quantity_in_stock,
				                         minimum_stock, last_purchase_price, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
				RETURNING id`,
				item.ItemCode, item.Name, item.Category, item.UoM, item.QuantityInStock,
				item.MinimumStock, item.LastPurchasePrice, time.Now(), time.Now(),
			).Scan(&id)
			if err != nil {
				result.Failed++
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", item.Name, err))
				continue
			}
			if item.QuantityInStock > 0 {
				if _, err := tx.Exec(`
					INSERT INTO stock_movements (stock_item_id, movement_type, quantity, reference, movement_date, created_by)
					VALUES ($1, $2, $3, $4, $5, $6)`,
					id, models.MovementIncoming, item.QuantityInStock, "CSV import", time.Now(), userName,
				); err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record opening stock", "details": err.Error()})
					return
				}
			}
			result.Imported++
		}

		if err := tx.Commit(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to commit import"})
			return
		}

		c.JSON(http.StatusOK, result)

		log := models.ActivityLog{
			EventContext: "Stock",
			EventName:    "Import",
			Description:  fmt.Sprintf("Imported %d stock item(s) from %s, %d failed", result.Imported, file.Filename, result.Failed),
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

// ImportBOQCSV godoc
// @Summary      Import BOQ items from CSV
// @Description  Loads a bill of quantities for a project from a CSV. Flexible headers; description and quantity are required. Invalid rows are skipped and reported.
// @Tags         import
// @Accept       multipart/form-data
// @Produce      json
// @Param        project_id  path      int   true  "Project ID"
// @Param        file        formData  file  true  "CSV file"
// @Success      200  {object}  models.ImportResult
// @Failure      400  {object}  models.ErrorResponse
// @Failure      401  {object}  models.ErrorResponse
// @Router       /api/import_csv_boq/{project_id} [post]
func ImportBOQCSV(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		if sessionID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "session_id header is missing"})
			return
		}
		session, userName, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session", "details": err.Error()})
			return
		}

		projectID, err := strconv.Atoi(c.Param("project_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project_id"})
			return
		}

		var exists bool
		if err := db.QueryRow(`SELECT EXISTS(SELECT 1 FROM project WHERE project_id = $1 AND deleted_at IS NULL)`, projectID).Scan(&exists); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if !exists {
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
			return
		}

		file, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file not found"})
			return
		}
		src, err := file.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to open file"})
			return
		}
		defer src.Close()

		items, rowErrors, err := services.ParseBOQCSV(src, projectID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse CSV", "details": err.Error()})
			return
		}

		tx, err := db.Begin()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start transaction"})
			return
		}
		defer tx.Rollback()

		result := models.ImportResult{Failed: len(rowErrors), Errors: rowErrors}
		for _, item := range items {
			_, err := tx.Exec(`
				INSERT INTO boq_items (project_id, item_code, description, specification, uom,
				                       required_qty, allocated_qty, unit_price, needs_quote,
				                       created_at, updated_at, created_by)
				VALUES ($1, $2, $3, $4, $5, $6, 0, $7, $8, $9, $10, $11)`,
				item.ProjectID, item.ItemCode, item.Description, item.Specification, item.UoM,
				item.RequiredQty, item.UnitPrice, item.NeedsQuote, time.Now(), time.Now(), userName)
			if err != nil {
				result.Failed++
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", item.Description, err))
				continue
			}
			result.Imported++
		}

		if err := tx.Commit(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to commit import"})
			return
		}

		c.JSON(http.StatusOK, result)

		log := models.ActivityLog{
			EventContext: "BOQ",
			EventName:    "Import",
			Description:  fmt.Sprintf("Imported %d BOQ item(s) from %s, %d failed", result.Imported, file.Filename, result.Failed),
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
