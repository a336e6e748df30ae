package handlers

import (
	"backend/services"
	"context"
	"database/sql"
	"log"
)

// Global FCM service - set from main.go once credentials are loaded.
var GlobalFCMService *services.FCMService

// SetFCMService sets the global FCM service
func SetFCMService(fcmService *services.FCMService) {
	GlobalFCMService = fcmService
}

// SendNotificationHelper sends a push notification and records it in the
// database. Safe to call from any handler; a missing FCM service still
// records the in-app notification.
func SendNotificationHelper(db *sql.DB, userID int, title, body string, data map[string]string, action string) {
	if GlobalFCMService == nil {
		_, err := db.Exec(`
			INSERT INTO notifications (user_id, message, status, action, created_at, updated_at)
			VALUES ($1, $2, 'unread', $3, NOW(), NOW())`,
			userID, body, action)
		if err != nil {
			log.Printf("Error saving notification for user %d: %v", userID, err)
		}
		return
	}

	if err := GlobalFCMService.SendNotificationWithDB(context.Background(), userID, title, body, data, action); err != nil {
		log.Printf("Error sending notification to user %d: %v", userID, err)
	}
}

// NotifyProjectTeam notifies every user with a task on the project.
func NotifyProjectTeam(db *sql.DB, projectID int, title, body string, data map[string]string, action string) {
	rows, err := db.Query(`
		SELECT DISTINCT assigned_to FROM tasks
		WHERE project_id = $1 AND assigned_to IS NOT NULL AND deleted_at IS NULL`, projectID)
	if err != nil {
		log.Printf("Error fetching project team for notification: %v", err)
		return
	}
	defer rows.Close()

	var userIDs []int
	for rows.Next() {
		var userID int
		if err := rows.Scan(&userID); err != nil {
			continue
		}
		userIDs = append(userIDs, userID)
	}

	for _, userID := range userIDs {
		SendNotificationHelper(db, userID, title, body, data, action)
	}
}
