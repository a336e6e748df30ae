// @title           FiberOps API
// @version         1.0
// @description     FiberOps Backend API - stock, BOQ and procurement operations for fiber deployment projects.
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support
// @contact.url    https://fiberops.blueinvent.com

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      https://fiberops.blueinvent.com

// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// @schemes http https
package main

import (
	_ "backend/docs"
	"backend/handlers"
	"backend/services"
	"backend/storage"
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func CORSConfig() cors.Config {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{
		"https://fiberops.blueinvent.com",
		"http://localhost:9000",
		"http://localhost:8080",
		"http://localhost:3000",
	}
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{
		"Content-Type", "Content-Length", "Accept-Encoding", "X-XSRF-TOKEN",
		"Accept", "Origin", "X-Requested-With", "Authorization", "User-Agent",
		"Cache-Control", "Referer",
		"Access-Control-Request-Method", "Access-Control-Request-Headers",
		"Accept-Language", "Accept-Charset", "DNT", "Connection",
	}
	corsConfig.AllowMethods = []string{
		"GET", "POST", "PUT", "DELETE", "OPTIONS", "HEAD", "PATCH",
	}
	corsConfig.ExposeHeaders = []string{
		"Content-Length", "Authorization", "Content-Type", "Content-Disposition",
		"X-Total-Count",
	}
	corsConfig.MaxAge = 12 * time.Hour
	return corsConfig
}

// IsAdminByRoleID checks if a user is an admin based on their role ID.
func IsAdminByRoleID(db *sql.DB, roleID int) (bool, error) {
	var roleName string
	err := db.QueryRow("SELECT role_name FROM roles WHERE role_id = $1", roleID).Scan(&roleName)
	if err == sql.ErrNoRows {
		return false, nil
	} else if err != nil {
		return false, err
	}
	return strings.EqualFold(roleName, "superadmin") || strings.EqualFold(roleName, "admin"), nil
}

// RequireAdmin guards user and role management routes. The raw Authorization
// header carries the session ID, same as the handlers expect.
func RequireAdmin(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		if sessionID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Session ID required"})
			c.Abort()
			return
		}

		user, err := storage.GetUserBySessionID(db, sessionID)
		if err != nil || user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			c.Abort()
			return
		}

		isAdmin, err := IsAdminByRoleID(db, user.RoleID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve role"})
			c.Abort()
			return
		}
		if !isAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			c.Abort()
			return
		}

		c.Next()
	}
}

var cronRunning int32

// runLowStockSweep notifies admins about stock items at or below their
// minimum level so reordering is not missed between dashboard visits.
func runLowStockSweep(db *sql.DB) error {
	rows, err := db.Query(`
		SELECT name, quantity_in_stock, minimum_stock
		FROM stock_items
		WHERE quantity_in_stock <= minimum_stock AND deleted_at IS NULL
		ORDER BY quantity_in_stock ASC`)
	if err != nil {
		return fmt.Errorf("low stock query failed: %w", err)
	}
	defer rows.Close()

	var lines []string
	for rows.Next() {
		var name string
		var qty, minimum int
		if err := rows.Scan(&name, &qty, &minimum); err != nil {
			return err
		}
		lines = append(lines, fmt.Sprintf("%s (%d in stock, minimum %d)", name, qty, minimum))
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if len(lines) == 0 {
		return nil
	}

	userRows, err := db.Query(`
		SELECT u.id FROM users u
		JOIN roles r ON r.role_id = u.role_id
		WHERE LOWER(r.role_name) IN ('superadmin', 'admin') AND u.deleted_at IS NULL`)
	if err != nil {
		return fmt.Errorf("admin lookup failed: %w", err)
	}
	defer userRows.Close()

	title := fmt.Sprintf("%d stock item(s) at or below minimum", len(lines))
	body := strings.Join(lines, "; ")
	if len(body) > 500 {
		body = body[:497] + "..."
	}

	for userRows.Next() {
		var userID int
		if err := userRows.Scan(&userID); err != nil {
			return err
		}
		handlers.SendNotificationHelper(db, userID, title, body,
			map[string]string{"type": "low_stock"}, "/stock?filter=low")
	}
	return userRows.Err()
}

func safeGo(
	ctx context.Context,
	wg *sync.WaitGroup,
	name string,
	fn func(context.Context) error,
	cronLogger *log.Logger,
) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				log.Printf("PANIC in %s: %v\n%s", name, r, debug.Stack())
				if cronLogger != nil {
					cronLogger.Printf("PANIC in %s: %v\n%s", name, r, debug.Stack())
				}
			}
		}()

		if err := fn(ctx); err != nil {
			log.Printf("%s failed: %v", name, err)
			if cronLogger != nil {
				cronLogger.Printf("%s failed: %v", name, err)
			}
		} else {
			log.Printf("%s completed successfully", name)
			if cronLogger != nil {
				cronLogger.Printf("%s completed successfully", name)
			}
		}
	}()
}

func main() {
	db := storage.InitDB()
	// Initialize GORM database (runs schema migration)
	_ = storage.InitGormDB()

	db.SetMaxOpenConns(15)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Initialize Firebase Cloud Messaging service using HTTP v1 API
	credentialsPath := os.Getenv("FCM_CREDENTIALS_PATH")
	if credentialsPath == "" {
		credentialsPath = "firebase-credentials.json" // Default path
	}
	fcmService, err := services.NewFCMService(credentialsPath, db)
	if err != nil {
		log.Printf("Warning: Failed to initialize FCM service: %v. Push notifications will be disabled.", err)
		fcmService = nil
	} else {
		log.Println("FCM service initialized successfully")
	}

	// Set global FCM service for handlers
	handlers.SetFCMService(fcmService)

	// Setup cron for the daily maintenance cycle
	c := cron.New(
		cron.WithLogger(cron.VerbosePrintfLogger(log.New(os.Stdout, "cron: ", log.LstdFlags))),
	)

	// Open a file for cron error logging
	cronLogFile, err := os.OpenFile("cron_errors.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Printf("Failed to open cron error log file: %v", err)
	}
	cronLogger := log.New(cronLogFile, "CRON_ERROR: ", log.LstdFlags)

	_, err = c.AddFunc("30 6 * * *", func() {
		// ------------------ CRON LOCK ------------------
		if !atomic.CompareAndSwapInt32(&cronRunning, 0, 1) {
			log.Println("Previous cron still running. Skipping this run.")
			if cronLogger != nil {
				cronLogger.Println("Previous cron still running. Skipping this run.")
			}
			return
		}
		defer atomic.StoreInt32(&cronRunning, 0)

		log.Println("Starting daily maintenance cron job (6:30 AM)")
		if cronLogger != nil {
			cronLogger.Println("Starting daily maintenance cron job (6:30 AM)")
		}

		// ------------------ TIMEOUT CONTEXT ------------------
		ctx, cancel := context.WithTimeout(context.Background(), 25*time.Minute)
		defer cancel()

		var wg sync.WaitGroup

		safeGo(ctx, &wg, "CleanupExpiredSessions", func(ctx context.Context) error {
			return storage.CleanupExpiredSessions(db)
		}, cronLogger)

		safeGo(ctx, &wg, "CloseExpiredRFQs", func(ctx context.Context) error {
			closed, err := services.CloseExpiredRFQs(db)
			if err != nil {
				return err
			}
			log.Printf("Closed %d RFQ(s) past their due date", closed)
			return nil
		}, cronLogger)

		safeGo(ctx, &wg, "LowStockSweep", func(ctx context.Context) error {
			return runLowStockSweep(db)
		}, cronLogger)

		// ------------------ WAIT WITH CANCELLATION ------------------

		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()

		select {
		case <-done:
			log.Println("All cron jobs finished")
			if cronLogger != nil {
				cronLogger.Println("All cron jobs finished")
			}
		case <-ctx.Done():
			log.Println("Cron timeout reached, jobs cancelled")
			if cronLogger != nil {
				cronLogger.Println("Cron timeout reached, jobs cancelled")
			}
		}

		log.Println("Daily cron cycle completed")
		if cronLogger != nil {
			cronLogger.Println("Daily cron cycle completed")
		}
	})
	if err != nil {
		log.Fatalf("Failed to schedule daily maintenance cron job: %v", err)
	}

	c.Start()

	r := gin.Default()
	r.MaxMultipartMemory = 8 << 20

	r.Use(cors.New(CORSConfig()))

	// ==================== 1. AUTH & LOGIN ====================
	r.POST("/api/login", handlers.LoginHandler(db))
	r.POST("/api/refresh-token", handlers.RefreshTokenHandler(db))
	r.POST("/api/validate-session", handlers.ValidateSession(db))
	r.DELETE("/api/session/:user_id", handlers.DeleteSessionHandler(db))
	r.GET("/api/active-devices", handlers.GetActiveDevicesHandler(db))
	r.POST("/api/logout-device", handlers.LogoutDeviceHandler(db))

	// ==================== 2. AUTH - FORGOT/RESET PASSWORD ====================
	r.POST("/api/auth/forgot-password", handlers.ForgetPasswordHandler(db))
	r.POST("/api/auth/reset-password/:token", handlers.ResetPasswordHandler(db))
	r.POST("/api/change_password", handlers.ChangePasswordHandler(db))

	// ==================== 3. USERS ====================
	r.POST("/api/users", RequireAdmin(db), handlers.CreateUserHandler(db))
	r.GET("/api/users", handlers.GetUsersHandler(db))
	r.GET("/api/users/:id", handlers.GetUserByIDHandler(db))
	r.PUT("/api/users/:id", handlers.UpdateUserHandler(db))
	r.PUT("/api/users/:id/suspend", RequireAdmin(db), handlers.SuspendUserHandler(db))
	r.DELETE("/api/users/:id", RequireAdmin(db), handlers.DeleteUserHandler(db))

	// ==================== 4. SETTINGS & ROLES ====================
	r.GET("/api/settings/:user_id", handlers.GetSettingsHandler(db))
	r.PUT("/api/settings", handlers.UpdateSettingsHandler(db))
	r.GET("/api/roles", handlers.GetRolesHandler(db))
	r.POST("/api/roles", RequireAdmin(db), handlers.CreateRoleHandler(db))
	r.DELETE("/api/roles/:id", RequireAdmin(db), handlers.DeleteRoleHandler(db))

	// ==================== 5. PROJECTS ====================
	r.POST("/api/projects", handlers.CreateProjectHandler(db))
	r.GET("/api/projects", handlers.GetProjectsHandler(db))
	r.GET("/api/projects/:id", handlers.GetProjectByIDHandler(db))
	r.PUT("/api/projects/:id", handlers.UpdateProjectHandler(db))
	r.DELETE("/api/projects/:id", handlers.DeleteProjectHandler(db))

	// ==================== 6. CUSTOMERS ====================
	r.POST("/api/customers", handlers.CreateCustomerHandler(db))
	r.GET("/api/customers", handlers.GetCustomersHandler(db))
	r.PUT("/api/customers/:id", handlers.UpdateCustomerHandler(db))
	r.DELETE("/api/customers/:id", handlers.DeleteCustomerHandler(db))

	// ==================== 7. CONTRACTORS ====================
	r.POST("/api/contractors", handlers.CreateContractorHandler(db))
	r.GET("/api/contractors", handlers.GetContractorsHandler(db))
	r.PUT("/api/contractors/:id", handlers.UpdateContractorHandler(db))
	r.DELETE("/api/contractors/:id", handlers.DeleteContractorHandler(db))

	// ==================== 8. TASKS ====================
	r.POST("/api/tasks", handlers.CreateTaskHandler(db))
	r.GET("/api/tasks", handlers.GetTasksHandler(db))
	r.PUT("/api/tasks/:id/status", handlers.UpdateTaskStatusHandler(db))
	r.PUT("/api/tasks/:id", handlers.UpdateTaskHandler(db))
	r.DELETE("/api/tasks/:id", handlers.DeleteTaskHandler(db))

	// ==================== 9. SUPPLIERS ====================
	r.POST("/api/suppliers", handlers.CreateSupplierHandler(db))
	r.GET("/api/suppliers", handlers.GetSuppliersHandler(db))
	r.GET("/api/suppliers/:id", handlers.GetSupplierByIDHandler(db))
	r.PUT("/api/suppliers/:id", handlers.UpdateSupplierHandler(db))
	r.DELETE("/api/suppliers/:id", handlers.DeleteSupplierHandler(db))

	// ==================== 10. STOCK ====================
	r.POST("/api/stock_items", handlers.CreateStockItemHandler(db))
	r.GET("/api/stock_items", handlers.GetStockItemsHandler(db))
	r.GET("/api/stock_items/low", handlers.GetLowStockItemsHandler(db))
	r.PUT("/api/stock_items/:id", handlers.UpdateStockItemHandler(db))
	r.DELETE("/api/stock_items/:id", handlers.DeleteStockItemHandler(db))
	r.POST("/api/stock_movements", handlers.CreateStockMovementHandler(db))
	r.GET("/api/stock_items/:id/movements", handlers.GetStockMovementsHandler(db))

	// ==================== 11. BOQ ====================
	r.POST("/api/boq_items", handlers.CreateBOQItemHandler(db))
	r.GET("/api/boq_items", handlers.GetBOQItemsHandler(db))
	r.POST("/api/boq_items/allocate", handlers.AllocateStockHandler(db))
	r.PUT("/api/boq_items/:id/status", handlers.SetBOQStatusHandler(db))
	r.PUT("/api/boq_items/:id", handlers.UpdateBOQItemHandler(db))
	r.DELETE("/api/boq_items/:id", handlers.DeleteBOQItemHandler(db))

	// ==================== 12. RFQ ====================
	r.POST("/api/rfqs/generate", handlers.GenerateRFQHandler(db))
	r.GET("/api/rfqs", handlers.GetRFQsHandler(db))
	r.GET("/api/rfqs/:id", handlers.GetRFQByIDHandler(db))
	r.PUT("/api/rfqs/:id/status", handlers.UpdateRFQStatusHandler(db))
	r.POST("/api/rfqs/close_expired", handlers.CloseExpiredRFQsHandler(db))
	r.GET("/api/rfqs/:id/compare", handlers.CompareQuotesHandler(db))
	r.GET("/api/rfqs/:id/qr", handlers.GenerateRFQPortalQR(db))
	r.GET("/api/rfqs/:id/pdf", handlers.GenerateRFQPDF(db))

	// ==================== 13. QUOTES ====================
	r.GET("/api/quotes", handlers.GetQuotesHandler(db))
	r.PUT("/api/quotes/:id/status", handlers.UpdateQuoteStatusHandler(db))

	// ==================== 14. SUPPLIER PORTAL (PUBLIC) ====================
	r.GET("/portal/rfqs/:token", handlers.GetRFQByTokenHandler(db))
	r.POST("/portal/rfqs/:token/quote", handlers.SubmitQuoteHandler(db))

	// ==================== 15. NOTIFICATIONS ====================
	r.GET("/api/notifications", handlers.GetMyNotificationsHandler(db))
	r.PUT("/api/notifications/:id/read", handlers.MarkNotificationAsReadHandler(db))
	r.PUT("/api/notifications/read-all", handlers.MarkAllNotificationsAsReadHandler(db))
	r.DELETE("/api/notifications/:id", handlers.DeleteNotificationHandler(db))
	r.POST("/api/fcm/register-token", handlers.RegisterFCMTokenHandler(db, fcmService))
	r.DELETE("/api/fcm/remove-token", handlers.RemoveFCMTokenHandler(db, fcmService))

	// ==================== 16. CSV IMPORT ====================
	r.POST("/api/import_csv_stock", handlers.ImportStockCSV(db))
	r.POST("/api/import_csv_boq/:project_id", handlers.ImportBOQCSV(db))
	r.GET("/api/templates/stock_csv", handlers.DownloadStockTemplate)
	r.GET("/api/templates/boq_csv", handlers.DownloadBOQTemplate)

	// ==================== 17. EXPORT (CSV/EXCEL) ====================
	r.GET("/api/export_csv_stock", handlers.ExportCSVStock)
	r.GET("/api/export_csv_boq/:project_id", handlers.ExportCSVBOQ)
	r.GET("/api/export_xlsx_stock_movements/:stock_item_id", handlers.ExportXLSXStockMovements)
	r.GET("/api/export_xlsx_quote_comparison/:rfq_id", handlers.ExportXLSXQuoteComparison)

	// ==================== 18. DASHBOARD ====================
	r.GET("/api/dashboard/summary", handlers.GetDashboardSummary(db))
	r.GET("/api/dashboard/project/:project_id", handlers.GetProjectDashboard(db))

	// ==================== 19. ACTIVITY LOGS ====================
	r.GET("/api/logs", handlers.GetActivityLogsHandler(db))
	r.GET("/api/log/search", handlers.SearchActivityLogsHandler(db))

	// ==================== 20. SWAGGER ====================
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	// Get port from environment variable or use default
	port := os.Getenv("PORT")
	if port == "" {
		port = "9000"
	}

	portInt, err := strconv.Atoi(port)
	if err != nil {
		log.Fatalf("Invalid PORT environment variable: %s. Must be a number.", port)
	}
	if portInt < 0 || portInt > 65535 {
		log.Fatalf("Invalid PORT: %d. Must be between 0 and 65535.", portInt)
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	c.Stop()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exiting")
}
