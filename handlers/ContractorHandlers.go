package handlers

import (
	"backend/models"
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// CreateContractorHandler creates a new contractor.
// @Summary Create contractor
// @Tags Contractors
// @Accept json
// @Produce json
// @Param body body models.Contractor true "Contractor data"
// @Success 201 {object} models.Contractor
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /api/contractors [post]
func CreateContractorHandler(db *sql.DB) gin.HandlerFunc {
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

		var contractor models.Contractor
		if err := c.ShouldBindJSON(&contractor); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON input", "details": err.Error()})
			return
		}
		if contractor.CompanyName == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Company name is required"})
			return
		}

		contractor.CreatedAt = time.Now()
		contractor.UpdatedAt = time.Now()
		if contractor.Status == "" {
			contractor.Status = "Active"
		}

		query := `
			INSERT INTO contractors (company_name, contact_person, email, phone, specialization,
			                         team_size, status, project_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING id`

		err = db.QueryRow(query,
			contractor.CompanyName, contractor.ContactPerson, contractor.Email, contractor.Phone,
			contractor.Specialization, contractor.TeamSize, contractor.Status, contractor.ProjectID,
			contractor.CreatedAt, contractor.UpdatedAt,
		).Scan(&contractor.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to insert contractor", "details": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, contractor)

		projectID := 0
		if contractor.ProjectID != nil {
			projectID = *contractor.ProjectID
		}
		log := models.ActivityLog{
			EventContext:      "Contractor",
			EventName:         "Create",
			Description:       "Create Contractor " + contractor.CompanyName,
			UserName:          userName,
			HostName:          session.HostName,
			IPAddress:         session.IPAddress,
			CreatedAt:         time.Now(),
			ProjectID:         projectID,
			AffectedUserName:  contractor.ContactPerson,
			AffectedUserEmail: contractor.Email,
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

// GetContractorsHandler lists contractors, optionally filtered by project.
// @Summary List contractors
// @Tags Contractors
// @Produce json
// @Param project_id query int false "Filter by project"
// @Success 200 {array} models.Contractor
// @Failure 500 {object} models.ErrorResponse
// @Router /api/contractors [get]
func GetContractorsHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := `
			SELECT id, company_name, contact_person, email, phone, specialization,
			       team_size, status, project_id, created_at, updated_at
			FROM contractors
			WHERE deleted_at IS NULL`
		args := []interface{}{}

		if projectIDStr := c.Query("project_id"); projectIDStr != "" {
			projectID, err := strconv.Atoi(projectIDStr)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project_id"})
				return
			}
			query += ` AND project_id = $1`
			args = append(args, projectID)
		}
		query += ` ORDER BY company_name`

		rows, err := db.Query(query, args...)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		defer rows.Close()

		var contractors []models.Contractor
		for rows.Next() {
			var ct models.Contractor
			var contact, email, phone, specialization sql.NullString
			if err := rows.Scan(
				&ct.ID, &ct.CompanyName, &contact, &email, &phone, &specialization,
				&ct.TeamSize, &ct.Status, &ct.ProjectID, &ct.CreatedAt, &ct.UpdatedAt,
			); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			ct.ContactPerson = getStringOrEmpty(contact)
			ct.Email = getStringOrEmpty(email)
			ct.Phone = getStringOrEmpty(phone)
			ct.Specialization = getStringOrEmpty(specialization)
			contractors = append(contractors, ct)
		}

		c.JSON(http.StatusOK, contractors)
	}
}

// UpdateContractorHandler updates a contractor by ID.
// @Summary Update contractor
// @Tags Contractors
// @Accept json
// @Produce json
// @Param id path int true "Contractor ID"
// @Param body body models.Contractor true "Contractor data"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/contractors/{id} [put]
func UpdateContractorHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		contractorID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid contractor ID"})
			return
		}

		var contractor models.Contractor
		if err := c.ShouldBindJSON(&contractor); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		res, err := db.Exec(`
			UPDATE contractors
			SET company_name = COALESCE(NULLIF($1, ''), company_name),
			    contact_person = COALESCE(NULLIF($2, ''), contact_person),
			    email = COALESCE(NULLIF($3, ''), email),
			    phone = COALESCE(NULLIF($4, ''), phone),
			    specialization = COALESCE(NULLIF($5, ''), specialization),
			    team_size = CASE WHEN $6 > 0 THEN $6 ELSE team_size END,
			    status = COALESCE(NULLIF($7, ''), status),
			    project_id = COALESCE($8, project_id),
			    updated_at = $9
			WHERE id = $10 AND deleted_at IS NULL`,
			contractor.CompanyName, contractor.ContactPerson, contractor.Email, contractor.Phone,
			contractor.Specialization, contractor.TeamSize, contractor.Status, contractor.ProjectID,
			time.Now(), contractorID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if n, _ := res.RowsAffected(); n == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Contractor not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Contractor updated successfully"})
	}
}

// DeleteContractorHandler soft deletes a contractor.
// @Summary Delete contractor
// @Tags Contractors
// @Produce json
// @Param id path int true "Contractor ID"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/contractors/{id} [delete]
func DeleteContractorHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		contractorID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid contractor ID"})
			return
		}

		res, err := db.Exec(`UPDATE contractors SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL`, time.Now(), contractorID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if n, _ := res.RowsAffected(); n == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Contractor not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Contractor deleted successfully"})
	}
}
