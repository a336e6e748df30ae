package handlers

import (
	"backend/models"
	"database/sql"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// GetSettingsHandler returns the per-user settings.
// @Summary Get user settings
// @Tags Settings
// @Produce json
// @Param user_id path int true "User ID"
// @Success 200 {object} models.Setting
// @Failure 404 {object} models.ErrorResponse
// @Router /api/settings/{user_id} [get]
func GetSettingsHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := strconv.Atoi(c.Param("user_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
			return
		}

		var setting models.Setting
		err = db.QueryRow(`SELECT user_id, allow_multiple_sessions FROM settings WHERE user_id = $1`, userID).
			Scan(&setting.UserID, &setting.AllowMultipleSessions)
		if err == sql.ErrNoRows {
			// No stored setting yet; report the defaults
			setting = models.Setting{UserID: userID, AllowMultipleSessions: true}
		} else if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, setting)
	}
}

// UpdateSettingsHandler upserts the per-user settings.
// @Summary Update user settings
// @Tags Settings
// @Accept json
// @Produce json
// @Param body body models.Setting true "Settings"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /api/settings [put]
func UpdateSettingsHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var setting models.Setting
		if err := c.ShouldBindJSON(&setting); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON input", "details": err.Error()})
			return
		}
		if setting.UserID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
			return
		}

		query := `
			INSERT INTO settings (user_id, allow_multiple_sessions)
			VALUES ($1, $2)
			ON CONFLICT (user_id) DO UPDATE SET allow_multiple_sessions = EXCLUDED.allow_multiple_sessions`
		if _, err := db.Exec(query, setting.UserID, setting.AllowMultipleSessions); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Settings updated successfully"})
	}
}

// GetRolesHandler lists all roles.
// @Summary List roles
// @Tags Settings
// @Produce json
// @Success 200 {array} models.Role
// @Failure 500 {object} models.ErrorResponse
// @Router /api/roles [get]
func GetRolesHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := db.Query(`SELECT role_id, role_name FROM roles ORDER BY role_id`)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		defer rows.Close()

		var roles []models.Role
		for rows.Next() {
			var role models.Role
			if err := rows.Scan(&role.RoleID, &role.RoleName); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			roles = append(roles, role)
		}

		c.JSON(http.StatusOK, roles)
	}
}

// CreateRoleHandler creates a new role.
// @Summary Create role
// @Tags Settings
// @Accept json
// @Produce json
// @Param body body models.Role true "Role data"
// @Success 201 {object} models.Role
// @Failure 400 {object} models.ErrorResponse
// @Router /api/roles [post]
func CreateRoleHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var role models.Role
		if err := c.ShouldBindJSON(&role); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON input", "details": err.Error()})
			return
		}
		if role.RoleName == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "role_name is required"})
			return
		}

		err := db.QueryRow(`INSERT INTO roles (role_name) VALUES ($1) RETURNING role_id`, role.RoleName).Scan(&role.RoleID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to insert role", "details": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, role)
	}
}

// DeleteRoleHandler deletes a role if no user references it.
// @Summary Delete role
// @Tags Settings
// @Produce json
// @Param id path int true "Role ID"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/roles/{id} [delete]
func DeleteRoleHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role ID"})
			return
		}

		var inUse int
		if err := db.QueryRow(`SELECT COUNT(*) FROM users WHERE role_id = $1 AND deleted_at IS NULL`, roleID).Scan(&inUse); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if inUse > 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "Role is assigned to users and cannot be deleted"})
			return
		}

		res, err := db.Exec(`DELETE FROM roles WHERE role_id = $1`, roleID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if n, _ := res.RowsAffected(); n == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Role not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Role deleted successfully"})
	}
}
