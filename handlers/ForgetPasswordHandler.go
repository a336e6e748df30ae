package handlers

import (
	"backend/models"
	"backend/services"
	"backend/utils"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ForgetPasswordHandler godoc
// @Summary      Forgot password
// @Description  Emails a reset link valid for 15 minutes.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      object  true  "email" SchemaExample({"email": "user@example.com"})
// @Success      200   {object}  models.MessageResponse
// @Failure      400   {object}  models.ErrorResponse
// @Failure      404   {object}  models.ErrorResponse
// @Router       /api/auth/forgot-password [post]
func ForgetPasswordHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Email string `json:"email" binding:"required,email"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email"})
			return
		}

		var userID int
		var firstName, lastName string
		err := db.QueryRow(`SELECT id, first_name, last_name FROM users WHERE email = $1 AND deleted_at IS NULL`, req.Email).
			Scan(&userID, &firstName, &lastName)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Email not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}

		token := uuid.New().String()
		expiry := time.Now().Add(15 * time.Minute)

		if _, err := db.Exec(`UPDATE users SET reset_token = $1, reset_token_expiry = $2 WHERE id = $3`,
			token, expiry, userID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save token"})
			return
		}

		base := os.Getenv("FRONTEND_BASE_URL")
		if base == "" {
			base = portalBaseURL()
		}
		resetLink := fmt.Sprintf("%s/reset-password/%s", base, token)

		userName := firstName + " " + lastName
		if err := services.NewEmailService().SendPasswordResetEmail(req.Email, userName, resetLink, expiry); err != nil {
			log.Printf("Failed to send reset email to %s: %v", req.Email, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send reset email"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Reset link sent to email"})
	}
}

// ResetPasswordHandler godoc
// @Summary      Reset password with token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        token   path      string  true  "Reset token"
// @Param        body    body      object  true  "new_password" SchemaExample({"new_password": "secret123"})
// @Success      200     {object}  models.MessageResponse
// @Failure      400     {object}  models.ErrorResponse
// @Router       /api/auth/reset-password/{token} [post]
func ResetPasswordHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")
		if token == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Token is required"})
			return
		}

		var req struct {
			NewPassword string `json:"new_password" binding:"required,min=6"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid password format"})
			return
		}

		var userID int
		var expiry time.Time
		err := db.QueryRow(`SELECT id, reset_token_expiry FROM users WHERE reset_token = $1`, token).
			Scan(&userID, &expiry)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired token"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}

		if time.Now().After(expiry) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Token has expired"})
			return
		}

		hashed, err := utils.HashPassword(req.NewPassword)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}

		if _, err := db.Exec(`UPDATE users SET password = $1, reset_token = NULL, reset_token_expiry = NULL WHERE id = $2`,
			hashed, userID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update password"})
			return
		}

		// Any open sessions belong to the old credentials.
		if _, err := db.Exec(`DELETE FROM session WHERE user_id = $1`, userID); err != nil {
			log.Printf("Failed to clear sessions for user %d after password reset: %v", userID, err)
		}

		c.JSON(http.StatusOK, gin.H{"message": "Password reset successful"})
	}
}

// ChangePasswordHandler godoc
// @Summary      Change password (authenticated user)
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  object  true  "old_password, new_password"
// @Success      200  {object}  models.MessageResponse
// @Failure      400  {object}  models.ErrorResponse
// @Failure      401  {object}  models.ErrorResponse
// @Router       /api/change_password [post]
func ChangePasswordHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			OldPassword string `json:"old_password" binding:"required"`
			NewPassword string `json:"new_password" binding:"required,min=6"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
			return
		}

		sessionID := c.GetHeader("Authorization")
		if sessionID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization token (session_id) required"})
			return
		}

		session, userName, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session", "details": err.Error()})
			return
		}

		var userID int
		err = db.QueryRow(`SELECT user_id FROM session WHERE session_id = $1`, sessionID).Scan(&userID)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}

		var currentPassword string
		err = db.QueryRow(`SELECT password FROM users WHERE id = $1`, userID).Scan(&currentPassword)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}

		if !utils.ValidatePassword(currentPassword, req.OldPassword) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Old password is incorrect"})
			return
		}

		hashed, err := utils.HashPassword(req.NewPassword)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}

		if _, err := db.Exec(`UPDATE users SET password = $1 WHERE id = $2`, hashed, userID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update password"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})

		log := models.ActivityLog{
			EventContext: "Change Password",
			EventName:    "Update",
			Description:  "User changed password",
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
