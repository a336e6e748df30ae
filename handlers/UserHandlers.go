package handlers

import (
	"backend/models"
	"backend/utils"
	"database/sql"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// CreateUserHandler creates a new user.
// @Summary Create user
// @Description Creates a new user with a hashed password. Requires Authorization header.
// @Tags Users
// @Accept json
// @Produce json
// @Param body body models.User true "User data"
// @Success 201 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/users [post]
func CreateUserHandler(db *sql.DB) gin.HandlerFunc {
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

		var user models.User
		if err := c.ShouldBindJSON(&user); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON input", "details": err.Error()})
			return
		}

		if user.Email == "" || user.Password == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
			return
		}

		hashed, err := utils.HashPassword(user.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}

		user.CreatedAt = time.Now()
		user.UpdatedAt = time.Now()

		query := `
			INSERT INTO users (employee_id, email, password, first_name, last_name, role_id,
			                   is_admin, address, city, state, country, zip_code, phone_no,
			                   created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
			RETURNING id`

		err = db.QueryRow(query,
			user.EmployeeId, user.Email, hashed, user.FirstName, user.LastName, user.RoleID,
			user.IsAdmin, user.Address, user.City, user.State, user.Country, user.ZipCode,
			user.PhoneNo, user.CreatedAt, user.UpdatedAt,
		).Scan(&user.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to insert user", "details": err.Error()})
			return
		}

		user.Password = ""
		c.JSON(http.StatusCreated, user)

		log := models.ActivityLog{
			EventContext:      "User",
			EventName:         "Create",
			Description:       "Create User",
			UserName:          userName,
			HostName:          session.HostName,
			IPAddress:         session.IPAddress,
			CreatedAt:         time.Now(),
			AffectedUserName:  user.FirstName + " " + user.LastName,
			AffectedUserEmail: user.Email,
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

// GetUsersHandler lists users with pagination.
// @Summary List users
// @Tags Users
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Limit"
// @Success 200 {object} object
// @Failure 500 {object} models.ErrorResponse
// @Router /api/users [get]
func GetUsersHandler(db *sql.DB) gin.HandlerFunc {
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

		var totalRecords int
		if err := db.QueryRow(`SELECT COUNT(*) FROM users WHERE deleted_at IS NULL`).Scan(&totalRecords); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error counting users"})
			return
		}
		totalPages := int(math.Ceil(float64(totalRecords) / float64(limit)))

		query := `
			SELECT u.id, u.employee_id, u.email, u.first_name, u.last_name, u.is_admin,
			       u.phone_no, u.role_id, r.role_name, u.suspended, u.created_at, u.updated_at
			FROM users u
			JOIN roles r ON u.role_id = r.role_id
			WHERE u.deleted_at IS NULL
			ORDER BY u.id
			LIMIT $1 OFFSET $2`

		rows, err := db.Query(query, limit, offset)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error querying users", "details": err.Error()})
			return
		}
		defer rows.Close()

		var users []models.User
		for rows.Next() {
			var user models.User
			var employeeID, phoneNo sql.NullString
			if err := rows.Scan(
				&user.ID, &employeeID, &user.Email, &user.FirstName, &user.LastName,
				&user.IsAdmin, &phoneNo, &user.RoleID, &user.RoleName, &user.Suspended,
				&user.CreatedAt, &user.UpdatedAt,
			); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Error scanning users"})
				return
			}
			user.EmployeeId = getStringOrEmpty(employeeID)
			user.PhoneNo = getStringOrEmpty(phoneNo)
			users = append(users, user)
		}

		c.JSON(http.StatusOK, gin.H{
			"users": users,
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

// GetUserByIDHandler returns one user.
// @Summary Get user by ID
// @Tags Users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} models.User
// @Failure 404 {object} models.ErrorResponse
// @Router /api/users/{id} [get]
func GetUserByIDHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
			return
		}

		query := `
			SELECT u.id, u.employee_id, u.email, u.first_name, u.last_name, u.is_admin,
			       u.address, u.city, u.state, u.country, u.zip_code, u.phone_no,
			       u.role_id, r.role_name, u.suspended, u.created_at, u.updated_at
			FROM users u
			JOIN roles r ON u.role_id = r.role_id
			WHERE u.id = $1 AND u.deleted_at IS NULL`

		var user models.User
		var employeeID, address, city, state, country, zipCode, phoneNo sql.NullString
		err = db.QueryRow(query, id).Scan(
			&user.ID, &employeeID, &user.Email, &user.FirstName, &user.LastName, &user.IsAdmin,
			&address, &city, &state, &country, &zipCode, &phoneNo,
			&user.RoleID, &user.RoleName, &user.Suspended, &user.CreatedAt, &user.UpdatedAt,
		)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		user.EmployeeId = getStringOrEmpty(employeeID)
		user.Address = getStringOrEmpty(address)
		user.City = getStringOrEmpty(city)
		user.State = getStringOrEmpty(state)
		user.Country = getStringOrEmpty(country)
		user.ZipCode = getStringOrEmpty(zipCode)
		user.PhoneNo = getStringOrEmpty(phoneNo)

		c.JSON(http.StatusOK, user)
	}
}

// UpdateUserHandler updates a user by ID.
// @Summary Update user
// @Description Updates user by id. Send user fields in body; id in path. Requires Authorization header.
// @Tags Users
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param body body models.User true "User data"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/users/{id} [put]
func UpdateUserHandler(db *sql.DB) gin.HandlerFunc {
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

		userID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
			return
		}

		var user models.User
		if err := c.ShouldBindJSON(&user); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var existingID int
		err = db.QueryRow("SELECT id FROM users WHERE id = $1 AND deleted_at IS NULL", userID).Scan(&existingID)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
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
			updates = append(updates, column+" = $"+strconv.Itoa(placeholderIndex))
			fields = append(fields, value)
			placeholderIndex++
		}

		if user.FirstName != "" {
			addUpdate("first_name", user.FirstName)
		}
		if user.LastName != "" {
			addUpdate("last_name", user.LastName)
		}
		if user.Email != "" {
			addUpdate("email", user.Email)
		}
		if user.EmployeeId != "" {
			addUpdate("employee_id", user.EmployeeId)
		}
		if user.PhoneNo != "" {
			addUpdate("phone_no", user.PhoneNo)
		}
		if user.Address != "" {
			addUpdate("address", user.Address)
		}
		if user.City != "" {
			addUpdate("city", user.City)
		}
		if user.State != "" {
			addUpdate("state", user.State)
		}
		if user.Country != "" {
			addUpdate("country", user.Country)
		}
		if user.ZipCode != "" {
			addUpdate("zip_code", user.ZipCode)
		}
		if user.RoleID != 0 {
			addUpdate("role_id", user.RoleID)
		}
		if user.Password != "" {
			hashed, err := utils.HashPassword(user.Password)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
				return
			}
			addUpdate("password", hashed)
		}

		if len(updates) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No valid fields to update"})
			return
		}

		addUpdate("updated_at", time.Now())

		sqlStatement := "UPDATE users SET " + strings.Join(updates, ", ") + " WHERE id = $" + strconv.Itoa(placeholderIndex)
		fields = append(fields, userID)

		if _, err := db.Exec(sqlStatement, fields...); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "User updated successfully"})

		log := models.ActivityLog{
			EventContext:      "User",
			EventName:         "Update",
			Description:       "Update User",
			UserName:          userName,
			HostName:          session.HostName,
			IPAddress:         session.IPAddress,
			CreatedAt:         time.Now(),
			AffectedUserName:  user.FirstName + " " + user.LastName,
			AffectedUserEmail: user.Email,
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

// SuspendUserHandler toggles a user's suspended flag.
// @Summary Suspend or unsuspend user
// @Tags Users
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param body body object true "Suspend flag" SchemaExample({"suspended": true})
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /api/users/{id}/suspend [put]
func SuspendUserHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
			return
		}

		var body struct {
			Suspended *bool `json:"suspended" binding:"required"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "suspended flag is required"})
			return
		}

		res, err := db.Exec(`UPDATE users SET suspended = $1, updated_at = $2 WHERE id = $3 AND deleted_at IS NULL`,
			*body.Suspended, time.Now(), userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if n, _ := res.RowsAffected(); n == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}

		// Drop active sessions when suspending
		if *body.Suspended {
			_, _ = db.Exec(`DELETE FROM session WHERE user_id = $1`, userID)
		}

		c.JSON(http.StatusOK, gin.H{"message": "User suspension updated"})
	}
}

// DeleteUserHandler soft deletes a user.
// @Summary Delete user
// @Tags Users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/users/{id} [delete]
func DeleteUserHandler(db *sql.DB) gin.HandlerFunc {
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

		userID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
			return
		}

		res, err := db.Exec(`UPDATE users SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL`, time.Now(), userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if n, _ := res.RowsAffected(); n == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}

		_, _ = db.Exec(`DELETE FROM session WHERE user_id = $1`, userID)

		c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})

		log := models.ActivityLog{
			EventContext: "User",
			EventName:    "Delete",
			Description:  "Delete User",
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
