package handlers

import (
	"backend/models"
	"database/sql"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// CreateProjectHandler creates a new fiber deployment project.
// @Summary Create project
// @Description Creates a new project. Requires Authorization header.
// @Tags Projects
// @Accept json
// @Produce json
// @Param body body models.Project true "Project data"
// @Success 201 {object} models.Project
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/projects [post]
func CreateProjectHandler(db *sql.DB) gin.HandlerFunc {
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

		var project models.Project
		if err := c.ShouldBindJSON(&project); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON input", "details": err.Error()})
			return
		}
		if project.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Project name is required"})
			return
		}

		project.CreatedAt = time.Now()
		project.UpdatedAt = time.Now()
		project.CreatedBy = userName
		if project.Status == "" {
			project.Status = "Active"
		}

		query := `
			INSERT INTO project (name, customer_id, region, status, start_date, end_date,
			                     homes_passed, homes_target, budget, project_manager, description,
			                     created_at, updated_at, created_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			RETURNING project_id`

		err = db.QueryRow(query,
			project.Name, project.CustomerID, project.Region, project.Status,
			project.StartDate.ToTime(), project.EndDate.ToTime(),
			project.HomesPassed, project.HomesTarget, project.Budget,
			project.ProjectManager, project.Description,
			project.CreatedAt, project.UpdatedAt, project.CreatedBy,
		).Scan(&project.ProjectID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to insert project", "details": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, project)

		log := models.ActivityLog{
			EventContext: "Project",
			EventName:    "Create",
			Description:  "Create Project " + project.Name,
			UserName:     userName,
			HostName:     session.HostName,
			IPAddress:    session.IPAddress,
			CreatedAt:    time.Now(),
			ProjectID:    project.ProjectID,
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

// GetProjectsHandler lists projects with pagination and optional filters.
// @Summary List projects
// @Tags Projects
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Limit"
// @Param status query string false "Filter by status"
// @Param region query string false "Filter by region"
// @Success 200 {object} object
// @Failure 500 {object} models.ErrorResponse
// @Router /api/projects [get]
func GetProjectsHandler(db *sql.DB) gin.HandlerFunc {
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

		whereClauses := []string{"p.deleted_at IS NULL"}
		args := []interface{}{}
		argIndex := 1

		if status := strings.TrimSpace(c.Query("status")); status != "" {
			whereClauses = append(whereClauses, fmt.Sprintf("p.status = $%d", argIndex))
			args = append(args, status)
			argIndex++
		}
		if region := strings.TrimSpace(c.Query("region")); region != "" {
			whereClauses = append(whereClauses, fmt.Sprintf("p.region ILIKE $%d", argIndex))
			args = append(args, "%"+region+"%")
			argIndex++
		}

		whereSQL := "WHERE " + strings.Join(whereClauses, " AND ")

		var totalRecords int
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM project p %s", whereSQL)
		if err := db.QueryRow(countQuery, args...).Scan(&totalRecords); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error counting projects"})
			return
		}
		totalPages := int(math.Ceil(float64(totalRecords) / float64(limit)))

		query := fmt.Sprintf(`
			SELECT p.project_id, p.name, p.customer_id, c.name, p.region, p.status,
			       p.start_date, p.end_date, p.homes_passed, p.homes_target, p.budget,
			       p.project_manager, p.description, p.created_at, p.updated_at
			FROM project p
			LEFT JOIN customers c ON p.customer_id = c.id
			%s
			ORDER BY p.project_id DESC
			LIMIT $%d OFFSET $%d`, whereSQL, argIndex, argIndex+1)
		args = append(args, limit, offset)

		rows, err := db.Query(query, args...)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error querying projects", "details": err.Error()})
			return
		}
		defer rows.Close()

		var projects []models.Project
		for rows.Next() {
			var p models.Project
			var customerName, region, manager, description sql.NullString
			var startDate, endDate sql.NullTime
			if err := rows.Scan(
				&p.ProjectID, &p.Name, &p.CustomerID, &customerName, &region, &p.Status,
				&startDate, &endDate, &p.HomesPassed, &p.HomesTarget, &p.Budget,
				&manager, &description, &p.CreatedAt, &p.UpdatedAt,
			); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Error scanning projects"})
				return
			}
			p.CustomerName = getStringOrEmpty(customerName)
			p.Region = getStringOrEmpty(region)
			p.ProjectManager = getStringOrEmpty(manager)
			p.Description = getStringOrEmpty(description)
			if startDate.Valid {
				p.StartDate = models.DateOnly{Time: startDate.Time}
			}
			if endDate.Valid {
				p.EndDate = models.DateOnly{Time: endDate.Time}
			}
			projects = append(projects, p)
		}

		c.JSON(http.StatusOK, gin.H{
			"projects": projects,
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

// GetProjectByIDHandler returns one project with its BOQ rollup.
// @Summary Get project by ID
// @Tags Projects
// @Produce json
// @Param id path int true "Project ID"
// @Success 200 {object} object
// @Failure 404 {object} models.ErrorResponse
// @Router /api/projects/{id} [get]
func GetProjectByIDHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID"})
			return
		}

		query := `
			SELECT p.project_id, p.name, p.customer_id, c.name, p.region, p.status,
			       p.start_date, p.end_date, p.homes_passed, p.homes_target, p.budget,
			       p.project_manager, p.description, p.created_at, p.updated_at
			FROM project p
			LEFT JOIN customers c ON p.customer_id = c.id
			WHERE p.project_id = $1 AND p.deleted_at IS NULL`

		var p models.Project
		var customerName, region, manager, description sql.NullString
		var startDate, endDate sql.NullTime
		err = db.QueryRow(query, id).Scan(
			&p.ProjectID, &p.Name, &p.CustomerID, &customerName, &region, &p.Status,
			&startDate, &endDate, &p.HomesPassed, &p.HomesTarget, &p.Budget,
			&manager, &description, &p.CreatedAt, &p.UpdatedAt,
		)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		p.CustomerName = getStringOrEmpty(customerName)
		p.Region = getStringOrEmpty(region)
		p.ProjectManager = getStringOrEmpty(manager)
		p.Description = getStringOrEmpty(description)
		if startDate.Valid {
			p.StartDate = models.DateOnly{Time: startDate.Time}
		}
		if endDate.Valid {
			p.EndDate = models.DateOnly{Time: endDate.Time}
		}

		// BOQ rollup for the project header card
		var boqItems int
		var boqValue float64
		err = db.QueryRow(`
			SELECT COUNT(*), COALESCE(SUM(required_qty * unit_price), 0)
			FROM boq_items WHERE project_id = $1 AND deleted_at IS NULL`, id).Scan(&boqItems, &boqValue)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error summarizing BOQ", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"project": p,
			"boq_summary": gin.H{
				"item_count":  boqItems,
				"total_value": boqValue,
			},
		})
	}
}

// UpdateProjectHandler updates a project by ID.
// @Summary Update project
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path int true "Project ID"
// @Param body body models.Project true "Project data"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/projects/{id} [put]
func UpdateProjectHandler(db *sql.DB) gin.HandlerFunc {
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

		projectID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID"})
			return
		}

		var project models.Project
		if err := c.ShouldBindJSON(&project); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var existingID int
		err = db.QueryRow("SELECT project_id FROM project WHERE project_id = $1 AND deleted_at IS NULL", projectID).Scan(&existingID)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		updates := []string{}
		fields := []interface{}{}
		placeholderIndex := 1

		addUpdate := func(column string, value interface{}) {
			updates = append(updates, fmt.Sprintf("%s = $%d", column, placeholderIndex))
			fields = append(fields, value)
			placeholderIndex++
		}

		if project.Name != "" {
			addUpdate("name", project.Name)
		}
		if project.CustomerID != 0 {
			addUpdate("customer_id", project.CustomerID)
		}
		if project.Region != "" {
			addUpdate("region", project.Region)
		}
		if project.Status != "" {
			addUpdate("status", project.Status)
		}
		if !project.StartDate.IsZero() {
			addUpdate("start_date", project.StartDate.ToTime())
		}
		if !project.EndDate.IsZero() {
			addUpdate("end_date", project.EndDate.ToTime())
		}
		if project.HomesPassed != 0 {
			addUpdate("homes_passed", project.HomesPassed)
		}
		if project.HomesTarget != 0 {
			addUpdate("homes_target", project.HomesTarget)
		}
		if project.Budget != 0 {
			addUpdate("budget", project.Budget)
		}
		if project.ProjectManager != "" {
			addUpdate("project_manager", project.ProjectManager)
		}
		if project.Description != "" {
			addUpdate("description", project.Description)
		}

		if len(updates) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No valid fields to update"})
			return
		}

		addUpdate("updated_at", time.Now())

		sqlStatement := fmt.Sprintf("UPDATE project SET %s WHERE project_id = $%d", strings.Join(updates, ", "), placeholderIndex)
		fields = append(fields, projectID)

		if _, err := db.Exec(sqlStatement, fields...); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Project updated successfully"})

		log := models.ActivityLog{
			EventContext: "Project",
			EventName:    "Update",
			Description:  "Update Project",
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

// DeleteProjectHandler soft deletes a project.
// @Summary Delete project
// @Tags Projects
// @Produce json
// @Param id path int true "Project ID"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/projects/{id} [delete]
func DeleteProjectHandler(db *sql.DB) gin.HandlerFunc {
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

		projectID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID"})
			return
		}

		res, err := db.Exec(`UPDATE project SET deleted_at = $1 WHERE project_id = $2 AND deleted_at IS NULL`, time.Now(), projectID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if n, _ := res.RowsAffected(); n == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Project deleted successfully"})

		log := models.ActivityLog{
			EventContext: "Project",
			EventName:    "Delete",
			Description:  "Delete Project",
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
