package handlers

import (
	"backend/models"
	"backend/services"
	"database/sql"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// GetDashboardSummary godoc
// @Summary      Operations dashboard summary
// @Description  Headline numbers for the landing dashboard: projects by status, stock health, open procurement and recent activity.
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  object
// @Failure      500  {object}  models.ErrorResponse
// @Router       /api/dashboard/summary [get]
func GetDashboardSummary(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectCounts := map[string]int{}
		rows, err := db.Query(`
			SELECT status, COUNT(*) FROM project
			WHERE deleted_at IS NULL
			GROUP BY status`)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		for rows.Next() {
			var status string
			var count int
			if err := rows.Scan(&status, &count); err != nil {
				rows.Close()
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			projectCounts[status] = count
		}
		rows.Close()

		var totalStockItems, lowStock, outOfStock int
		err = db.QueryRow(`
			SELECT COUNT(*),
			       COUNT(*) FILTER (WHERE quantity_in_stock > 0 AND quantity_in_stock <= minimum_stock),
			       COUNT(*) FILTER (WHERE quantity_in_stock <= 0)
			FROM stock_items
			WHERE deleted_at IS NULL`).Scan(&totalStockItems, &lowStock, &outOfStock)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		var openRFQs, pendingQuotes int
		err = db.QueryRow(`SELECT COUNT(*) FROM rfqs WHERE status IN ($1, $2) AND deleted_at IS NULL`,
			models.RFQStatusOpen, models.RFQStatusReceived).Scan(&openRFQs)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		err = db.QueryRow(`SELECT COUNT(*) FROM quotes WHERE status IN ($1, $2) AND deleted_at IS NULL`,
			models.QuoteStatusSubmitted, models.QuoteStatusUnderReview).Scan(&pendingQuotes)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		var boqItemsNeedingQuotes int
		err = db.QueryRow(`
			SELECT COUNT(*) FROM boq_items
			WHERE needs_quote = true AND allocated_qty < required_qty AND deleted_at IS NULL`).
			Scan(&boqItemsNeedingQuotes)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		var totalBOQValue sql.NullFloat64
		err = db.QueryRow(`
			SELECT SUM(required_qty * unit_price) FROM boq_items WHERE deleted_at IS NULL`).
			Scan(&totalBOQValue)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"projects_by_status": projectCounts,
			"stock": gin.H{
				"total_items":  totalStockItems,
				"low_stock":    lowStock,
				"out_of_stock": outOfStock,
			},
			"procurement": gin.H{
				"open_rfqs":            openRFQs,
				"pending_quotes":       pendingQuotes,
				"items_needing_quotes": boqItemsNeedingQuotes,
			},
			"total_boq_value": totalBOQValue.Float64,
		})
	}
}

// GetProjectDashboard godoc
// @Summary      Per-project dashboard
// @Description  BOQ progress, task counts and procurement status for one project.
// @Tags         dashboard
// @Produce      json
// @Param        project_id  path  int  true  "Project ID"
// @Success      200  {object}  object
// @Failure      400  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/dashboard/project/{project_id} [get]
func GetProjectDashboard(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, err := strconv.Atoi(c.Param("project_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID"})
			return
		}

		var projectName, projectStatus string
		err = db.QueryRow(`SELECT name, status FROM project WHERE project_id = $1 AND deleted_at IS NULL`, projectID).
			Scan(&projectName, &projectStatus)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		// Status is derived per item, so counts are aggregated in Go.
		rows, err := db.Query(`
			SELECT required_qty, allocated_qty, COALESCE(status_override, ''), unit_price
			FROM boq_items
			WHERE project_id = $1 AND deleted_at IS NULL`, projectID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		boqStatusCounts := map[string]int{}
		var totalRequired, totalAllocated int
		var boqValue float64
		for rows.Next() {
			var required, allocated int
			var override string
			var unitPrice float64
			if err := rows.Scan(&required, &allocated, &override, &unitPrice); err != nil {
				rows.Close()
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			boqStatusCounts[services.BOQStatus(required, allocated, override)]++
			totalRequired += required
			totalAllocated += allocated
			boqValue += float64(required) * unitPrice
		}
		rows.Close()

		taskCounts := map[string]int{}
		rows, err = db.Query(`
			SELECT status, COUNT(*) FROM tasks
			WHERE project_id = $1 AND deleted_at IS NULL
			GROUP BY status`, projectID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		for rows.Next() {
			var status string
			var count int
			if err := rows.Scan(&status, &count); err != nil {
				rows.Close()
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			taskCounts[status] = count
		}
		rows.Close()

		rfqCounts := map[string]int{}
		rows, err = db.Query(`
			SELECT status, COUNT(*) FROM rfqs
			WHERE project_id = $1 AND deleted_at IS NULL
			GROUP BY status`, projectID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		for rows.Next() {
			var status string
			var count int
			if err := rows.Scan(&status, &count); err != nil {
				rows.Close()
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			rfqCounts[status] = count
		}
		rows.Close()

		allocationPct := 0.0
		if totalRequired > 0 {
			allocationPct = float64(totalAllocated) / float64(totalRequired) * 100
		}

		c.JSON(http.StatusOK, gin.H{
			"project_id":     projectID,
			"project_name":   projectName,
			"project_status": projectStatus,
			"boq": gin.H{
				"status_counts":      boqStatusCounts,
				"total_required":     totalRequired,
				"total_allocated":    totalAllocated,
				"allocation_percent": allocationPct,
				"total_value":        boqValue,
			},
			"tasks": taskCounts,
			"rfqs":  rfqCounts,
		})
	}
}
