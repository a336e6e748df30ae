package handlers

import (
	"backend/models"
	"database/sql"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// CreateSupplierHandler creates a new supplier.
// @Summary Create supplier
// @Description Creates a new supplier. Rating is 1-5 and feeds quote scoring. Requires Authorization header.
// @Tags Suppliers
// @Accept json
// @Produce json
// @Param body body models.Supplier true "Supplier data"
// @Success 201 {object} models.Supplier
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/suppliers [post]
func CreateSupplierHandler(db *sql.DB) gin.HandlerFunc {
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

		var supplier models.Supplier
		if err := c.ShouldBindJSON(&supplier); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON input", "details": err.Error()})
			return
		}
		if supplier.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Supplier name is required"})
			return
		}
		if supplier.Rating < 0 || supplier.Rating > 5 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Rating must be between 0 and 5"})
			return
		}

		supplier.CreatedAt = time.Now()
		supplier.UpdatedAt = time.Now()
		if supplier.Status == "" {
			supplier.Status = "Active"
		}

		query := `
			INSERT INTO suppliers (name, contact_person, email, phone, address, rating,
			                       payment_terms, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING id`

		err = db.QueryRow(query,
			supplier.Name, supplier.ContactPerson, supplier.Email, supplier.Phone,
			supplier.Address, supplier.Rating, supplier.PaymentTerms, supplier.Status,
			supplier.CreatedAt, supplier.UpdatedAt,
		).Scan(&supplier.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to insert supplier", "details": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, supplier)

		log := models.ActivityLog{
			EventContext:      "Supplier",
			EventName:         "Create",
			Description:       "Create Supplier " + supplier.Name,
			UserName:          userName,
			HostName:          session.HostName,
			IPAddress:         session.IPAddress,
			CreatedAt:         time.Now(),
			AffectedUserName:  supplier.ContactPerson,
			AffectedUserEmail: supplier.Email,
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

// GetSuppliersHandler lists suppliers with optional search.
// @Summary List suppliers
// @Tags Suppliers
// @Produce json
// @Param q query string false "Search by name"
// @Param status query string false "Filter by status"
// @Success 200 {array} models.Supplier
// @Failure 500 {object} models.ErrorResponse
// @Router /api/suppliers [get]
func GetSuppliersHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		whereClauses := []string{"deleted_at IS NULL"}
		args := []interface{}{}
		argIndex := 1

		if q := strings.TrimSpace(c.Query("q")); q != "" {
			whereClauses = append(whereClauses, fmt.Sprintf("name ILIKE $%d", argIndex))
			args = append(args, "%"+q+"%")
			argIndex++
		}
		if status := strings.TrimSpace(c.Query("status")); status != "" {
			whereClauses = append(whereClauses, fmt.Sprintf("status = $%d", argIndex))
			args = append(args, status)
			argIndex++
		}

		query := fmt.Sprintf(`
			SELECT id, name, contact_person, email, phone, address, rating,
			       payment_terms, status, created_at, updated_at
			FROM suppliers
			WHERE %s
			ORDER BY name`, strings.Join(whereClauses, " AND "))

		rows, err := db.Query(query, args...)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		defer rows.Close()

		var suppliers []models.Supplier
		for rows.Next() {
			var s models.Supplier
			var contact, email, phone, address, terms sql.NullString
			if err := rows.Scan(
				&s.ID, &s.Name, &contact, &email, &phone, &address, &s.Rating,
				&terms, &s.Status, &s.CreatedAt, &s.UpdatedAt,
			); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			s.ContactPerson = getStringOrEmpty(contact)
			s.Email = getStringOrEmpty(email)
			s.Phone = getStringOrEmpty(phone)
			s.Address = getStringOrEmpty(address)
			s.PaymentTerms = getStringOrEmpty(terms)
			suppliers = append(suppliers, s)
		}

		c.JSON(http.StatusOK, suppliers)
	}
}

// GetSupplierByIDHandler returns one supplier with its RFQ history.
// @Summary Get supplier by ID
// @Tags Suppliers
// @Produce json
// @Param id path int true "Supplier ID"
// @Success 200 {object} object
// @Failure 404 {object} models.ErrorResponse
// @Router /api/suppliers/{id} [get]
func GetSupplierByIDHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid supplier ID"})
			return
		}

		var s models.Supplier
		var contact, email, phone, address, terms sql.NullString
		err = db.QueryRow(`
			SELECT id, name, contact_person, email, phone, address, rating,
			       payment_terms, status, created_at, updated_at
			FROM suppliers
			WHERE id = $1 AND deleted_at IS NULL`, id).Scan(
			&s.ID, &s.Name, &contact, &email, &phone, &address, &s.Rating,
			&terms, &s.Status, &s.CreatedAt, &s.UpdatedAt,
		)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Supplier not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		s.ContactPerson = getStringOrEmpty(contact)
		s.Email = getStringOrEmpty(email)
		s.Phone = getStringOrEmpty(phone)
		s.Address = getStringOrEmpty(address)
		s.PaymentTerms = getStringOrEmpty(terms)

		rows, err := db.Query(`
			SELECT id, rfq_number, project_id, rfq_date, due_date, status, total_estimated_amount
			FROM rfqs
			WHERE supplier_id = $1
			ORDER BY rfq_date DESC
			LIMIT 20`, id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		defer rows.Close()

		var rfqs []models.RFQ
		for rows.Next() {
			var rfq models.RFQ
			if err := rows.Scan(&rfq.ID, &rfq.RFQNumber, &rfq.ProjectID, &rfq.RFQDate,
				&rfq.DueDate, &rfq.Status, &rfq.TotalEstimatedAmount); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			rfq.SupplierID = id
			rfqs = append(rfqs, rfq)
		}

		c.JSON(http.StatusOK, gin.H{
			"supplier": s,
			"rfqs":     rfqs,
		})
	}
}

// UpdateSupplierHandler updates a supplier by ID.
// @Summary Update supplier
// @Tags Suppliers
// @Accept json
// @Produce json
// @Param id path int true "Supplier ID"
// @Param body body models.Supplier true "Supplier data"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/suppliers/{id} [put]
func UpdateSupplierHandler(db *sql.DB) gin.HandlerFunc {
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

		supplierID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid supplier ID"})
			return
		}

		var supplier models.Supplier
		if err := c.ShouldBindJSON(&supplier); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if supplier.Rating < 0 || supplier.Rating > 5 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Rating must be between 0 and 5"})
			return
		}

		var existingID int
		err = db.QueryRow("SELECT id FROM suppliers WHERE id = $1 AND deleted_at IS NULL", supplierID).Scan(&existingID)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Supplier not found"})
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

		if supplier.Name != "" {
			addUpdate("name", supplier.Name)
		}
		if supplier.ContactPerson != "" {
			addUpdate("contact_person", supplier.ContactPerson)
		}
		if supplier.Email != "" {
			addUpdate("email", supplier.Email)
		}
		if supplier.Phone != "" {
			addUpdate("phone", supplier.Phone)
		}
		if supplier.Address != "" {
			addUpdate("address", supplier.Address)
		}
		if supplier.Rating > 0 {
			addUpdate("rating", supplier.Rating)
		}
		if supplier.PaymentTerms != "" {
			addUpdate("payment_terms", supplier.PaymentTerms)
		}
		if supplier.Status != "" {
			addUpdate("status", supplier.Status)
		}

		if len(updates) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No valid fields to update"})
			return
		}

		addUpdate("updated_at", time.Now())

		sqlStatement := fmt.Sprintf("UPDATE suppliers SET %s WHERE id = $%d", strings.Join(updates, ", "), placeholderIndex)
		fields = append(fields, supplierID)

		if _, err := db.Exec(sqlStatement, fields...); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Supplier updated successfully"})

		log := models.ActivityLog{
			EventContext:      "Supplier",
			EventName:         "Update",
			Description:       "Update Supplier",
			UserName:          userName,
			HostName:          session.HostName,
			IPAddress:         session.IPAddress,
			CreatedAt:         time.Now(),
			AffectedUserName:  supplier.ContactPerson,
			AffectedUserEmail: supplier.Email,
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

// DeleteSupplierHandler soft deletes a supplier.
// @Summary Delete supplier
// @Tags Suppliers
// @Produce json
// @Param id path int true "Supplier ID"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/suppliers/{id} [delete]
func DeleteSupplierHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		supplierID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid supplier ID"})
			return
		}

		var openRFQs int
		if err := db.QueryRow(`SELECT COUNT(*) FROM rfqs WHERE supplier_id = $1 AND status = $2`,
			supplierID, models.RFQStatusOpen).Scan(&openRFQs); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if openRFQs > 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "Supplier has open RFQs and cannot be deleted"})
			return
		}

		res, err := db.Exec(`UPDATE suppliers SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL`, time.Now(), supplierID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if n, _ := res.RowsAffected(); n == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Supplier not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Supplier deleted successfully"})
	}
}
