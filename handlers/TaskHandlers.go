package handlers

import (
	"backend/models"
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// CreateTaskHandler creates a new task on a project.
// @Summary Create task
// @Tags Tasks
// @Accept json
// @Produce json
// @Param body body models.Task true "Task data"
// @Success 201 {object} models.Task
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /api/tasks [post]
func CreateTaskHandler(db *sql.DB) gin.HandlerFunc {
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

		var task models.Task
		if err := c.ShouldBindJSON(&task); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON input", "details": err.Error()})
			return
		}
		if task.Name == "" || task.ProjectID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Task name and project_id are required"})
			return
		}

		task.CreatedAt = time.Now()
		task.UpdatedAt = time.Now()
		if task.Status == "" {
			task.Status = "Pending"
		}
		if task.Priority == "" {
			task.Priority = "Medium"
		}

		query := `
			INSERT INTO tasks (project_id, name, description, priority, assigned_to, contractor_id,
			                   start_date, end_date, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			RETURNING task_id`

		err = db.QueryRow(query,
			task.ProjectID, task.Name, task.Description, task.Priority, task.AssignedTo,
			task.ContractorID, task.StartDate.ToTime(), task.EndDate.ToTime(), task.Status,
			task.CreatedAt, task.UpdatedAt,
		).Scan(&task.TaskID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to insert task", "details": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, task)

		// Notify the assignee
		if task.AssignedTo != 0 {
			SendNotificationHelper(db, task.AssignedTo, "New task assigned",
				task.Name, map[string]string{"task_id": strconv.Itoa(task.TaskID)}, "/tasks/"+strconv.Itoa(task.TaskID))
		}

		log := models.ActivityLog{
			EventContext: "Task",
			EventName:    "Create",
			Description:  "Create Task " + task.Name,
			UserName:     userName,
			HostName:     session.HostName,
			IPAddress:    session.IPAddress,
			CreatedAt:    time.Now(),
			ProjectID:    task.ProjectID,
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

// GetTasksHandler lists tasks for a project.
// @Summary List tasks
// @Tags Tasks
// @Produce json
// @Param project_id query int true "Project ID"
// @Param status query string false "Filter by status"
// @Success 200 {array} models.Task
// @Failure 400 {object} models.ErrorResponse
// @Router /api/tasks [get]
func GetTasksHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, err := strconv.Atoi(c.Query("project_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "project_id query parameter is required"})
			return
		}

		query := `
			SELECT t.task_id, t.project_id, t.name, t.description, t.priority, t.assigned_to,
			       CONCAT(u.first_name, ' ', u.last_name), t.contractor_id,
			       t.start_date, t.end_date, t.status, t.created_at, t.updated_at
			FROM tasks t
			LEFT JOIN users u ON t.assigned_to = u.id
			WHERE t.project_id = $1 AND t.deleted_at IS NULL`
		args := []interface{}{projectID}

		if status := c.Query("status"); status != "" {
			query += ` AND t.status = $2`
			args = append(args, status)
		}
		query += ` ORDER BY t.task_id`

		rows, err := db.Query(query, args...)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		defer rows.Close()

		var tasks []models.Task
		for rows.Next() {
			var task models.Task
			var description, assignee sql.NullString
			var assignedTo sql.NullInt64
			var startDate, endDate sql.NullTime
			if err := rows.Scan(
				&task.TaskID, &task.ProjectID, &task.Name, &description, &task.Priority,
				&assignedTo, &assignee, &task.ContractorID,
				&startDate, &endDate, &task.Status, &task.CreatedAt, &task.UpdatedAt,
			); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			task.Description = getStringOrEmpty(description)
			task.AssigneeName = getStringOrEmpty(assignee)
			task.AssignedTo = getIntOrZero(assignedTo)
			if startDate.Valid {
				task.StartDate = models.DateOnly{Time: startDate.Time}
			}
			if endDate.Valid {
				task.EndDate = models.DateOnly{Time: endDate.Time}
			}
			tasks = append(tasks, task)
		}

		c.JSON(http.StatusOK, tasks)
	}
}

// UpdateTaskStatusHandler moves a task between statuses.
// @Summary Update task status
// @Tags Tasks
// @Accept json
// @Produce json
// @Param id path int true "Task ID"
// @Param body body object true "New status" SchemaExample({"status": "In Progress"})
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/tasks/{id}/status [put]
func UpdateTaskStatusHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		taskID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID"})
			return
		}

		var body struct {
			Status string `json:"status" binding:"required"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
			return
		}

		res, err := db.Exec(`UPDATE tasks SET status = $1, updated_at = $2 WHERE task_id = $3 AND deleted_at IS NULL`,
			body.Status, time.Now(), taskID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if n, _ := res.RowsAffected(); n == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Task status updated"})
	}
}

// UpdateTaskHandler updates task fields by ID.
// @Summary Update task
// @Tags Tasks
// @Accept json
// @Produce json
// @Param id path int true "Task ID"
// @Param body body models.Task true "Task data"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/tasks/{id} [put]
func UpdateTaskHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		taskID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID"})
			return
		}

		var task models.Task
		if err := c.ShouldBindJSON(&task); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var startDate, endDate interface{}
		if !task.StartDate.IsZero() {
			startDate = task.StartDate.ToTime()
		}
		if !task.EndDate.IsZero() {
			endDate = task.EndDate.ToTime()
		}

		res, err := db.Exec(`
			UPDATE tasks
			SET name = COALESCE(NULLIF($1, ''), name),
			    description = COALESCE(NULLIF($2, ''), description),
			    priority = COALESCE(NULLIF($3, ''), priority),
			    assigned_to = CASE WHEN $4 > 0 THEN $4 ELSE assigned_to END,
			    contractor_id = COALESCE($5, contractor_id),
			    start_date = COALESCE($6, start_date),
			    end_date = COALESCE($7, end_date),
			    status = COALESCE(NULLIF($8, ''), status),
			    updated_at = $9
			WHERE task_id = $10 AND deleted_at IS NULL`,
			task.Name, task.Description, task.Priority, task.AssignedTo, task.ContractorID,
			startDate, endDate, task.Status, time.Now(), taskID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if n, _ := res.RowsAffected(); n == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Task updated successfully"})
	}
}

// DeleteTaskHandler soft deletes a task.
// @Summary Delete task
// @Tags Tasks
// @Produce json
// @Param id path int true "Task ID"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/tasks/{id} [delete]
func DeleteTaskHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		taskID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID"})
			return
		}

		res, err := db.Exec(`UPDATE tasks SET deleted_at = $1 WHERE task_id = $2 AND deleted_at IS NULL`, time.Now(), taskID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if n, _ := res.RowsAffected(); n == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
	}
}
