package handlers

import (
	"backend/models"
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// CreateCustomerHandler creates a new customer.
// @Summary Create customer
// @Tags Customers
// @Accept json
// @Produce json
// @Param body body models.Customer true "Customer data"
// @Success 201 {object} models.Customer
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /api/customers [post]
func CreateCustomerHandler(db *sql.DB) gin.HandlerFunc {
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

		var customer models.Customer
		if err := c.ShouldBindJSON(&customer); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON input", "details": err.Error()})
			return
		}
		if customer.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Customer name is required"})
			return
		}

		customer.CreatedAt = time.Now()
		customer.UpdatedAt = time.Now()
		if customer.Status == "" {
			customer.Status = "Active"
		}

		query := `
			INSERT INTO customers (name, contact_person, email, phone, address, vat_number, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id`

		err = db.QueryRow(query,
			customer.Name, customer.ContactPerson, customer.Email, customer.Phone,
			customer.Address, customer.VATNumber, customer.Status, customer.CreatedAt, customer.UpdatedAt,
		).Scan(&customer.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to insert customer", "details": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, customer)

		log := models.ActivityLog{
			EventContext:      "Customer",
			EventName:         "Create",
			Description:       "Create Customer",
			UserName:          userName,
			HostName:          session.HostName,
			IPAddress:         session.IPAddress,
			CreatedAt:         time.Now(),
			AffectedUserName:  customer.ContactPerson,
			AffectedUserEmail: customer.Email,
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

// GetCustomersHandler lists all customers.
// @Summary List customers
// @Tags Customers
// @Produce json
// @Success 200 {array} models.Customer
// @Failure 500 {object} models.ErrorResponse
// @Router /api/customers [get]
func GetCustomersHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := db.Query(`
			SELECT id, name, contact_person, email, phone, address, vat_number, status, created_at, updated_at
			FROM customers
			WHERE deleted_at IS NULL
			ORDER BY name`)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		defer rows.Close()

		var customers []models.Customer
		for rows.Next() {
			var cust models.Customer
			var contact, email, phone, address, vat sql.NullString
			if err := rows.Scan(
				&cust.ID, &cust.Name, &contact, &email, &phone, &address, &vat,
				&cust.Status, &cust.CreatedAt, &cust.UpdatedAt,
			); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			cust.ContactPerson = getStringOrEmpty(contact)
			cust.Email = getStringOrEmpty(email)
			cust.Phone = getStringOrEmpty(phone)
			cust.Address = getStringOrEmpty(address)
			cust.VATNumber = getStringOrEmpty(vat)
			customers = append(customers, cust)
		}

		c.JSON(http.StatusOK, customers)
	}
}

// UpdateCustomerHandler updates a customer by ID.
// @Summary Update customer
// @Tags Customers
// @Accept json
// @Produce json
// @Param id path int true "Customer ID"
// @Param body body models.Customer true "Customer data"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/customers/{id} [put]
func UpdateCustomerHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		customerID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid customer ID"})
			return
		}

		var customer models.Customer
		if err := c.ShouldBindJSON(&customer); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		res, err := db.Exec(`
			UPDATE customers
			SET name = COALESCE(NULLIF($1, ''), name),
			    contact_person = COALESCE(NULLIF($2, ''), contact_person),
			    email = COALESCE(NULLIF($3, ''), email),
			    phone = COALESCE(NULLIF($4, ''), phone),
			    address = COALESCE(NULLIF($5, ''), address),
			    vat_number = COALESCE(NULLIF($6, ''), vat_number),
			    status = COALESCE(NULLIF($7, ''), status),
			    updated_at = $8
			WHERE id = $9 AND deleted_at IS NULL`,
			customer.Name, customer.ContactPerson, customer.Email, customer.Phone,
			customer.Address, customer.VATNumber, customer.Status, time.Now(), customerID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if n, _ := res.RowsAffected(); n == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Customer updated successfully"})
	}
}

// DeleteCustomerHandler soft deletes a customer.
// @Summary Delete customer
// @Tags Customers
// @Produce json
// @Param id path int true "Customer ID"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/customers/{id} [delete]
func DeleteCustomerHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		customerID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid customer ID"})
			return
		}

		var inUse int
		if err := db.QueryRow(`SELECT COUNT(*) FROM project WHERE customer_id = $1 AND deleted_at IS NULL`, customerID).Scan(&inUse); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if inUse > 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "Customer has active projects and cannot be deleted"})
			return
		}

		res, err := db.Exec(`UPDATE customers SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL`, time.Now(), customerID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if n, _ := res.RowsAffected(); n == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Customer deleted successfully"})
	}
}
