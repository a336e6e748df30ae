package storage

import (
	"backend/models"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var gormDB *gorm.DB

// InitGormDB initializes the GORM connection used for schema migration.
// Request handlers stay on the database/sql connection from InitDB.
func InitGormDB() *gorm.DB {
	if err := godotenv.Load(); err != nil {
		log.Fatal("Error loading .env file")
	}

	user := os.Getenv("DB_USER")
	password := os.Getenv("DB_PASSWORD")
	dbname := os.Getenv("DB_NAME")
	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=Africa/Johannesburg",
		host, user, password, dbname, port)

	var err error
	gormDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Warn),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		log.Fatal("Failed to connect to database with GORM:", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatal("Failed to get underlying sql.DB:", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(10 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	autoMigrateModels()

	return gormDB
}

// GetGormDB returns the GORM database instance
func GetGormDB() *gorm.DB {
	return gormDB
}

func autoMigrateModels() {
	err := gormDB.AutoMigrate(
		&models.RoleGorm{},
		&models.UserGorm{},
		&models.SessionGorm{},
		&models.SettingGorm{},
		&models.ActivityLogGorm{},
		&models.NotificationGorm{},
		&models.CustomerGorm{},
		&models.ContractorGorm{},
		&models.ProjectGorm{},
		&models.TaskGorm{},
		&models.SupplierGorm{},
		&models.StockItemGorm{},
		&models.StockMovementGorm{},
		&models.BOQItemGorm{},
		&models.RFQGorm{},
		&models.RFQItemGorm{},
		&models.QuoteGorm{},
		&models.QuoteItemGorm{},
	)
	if err != nil {
		log.Fatal("Failed to migrate database schema:", err)
	}
}
