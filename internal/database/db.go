package database

import (
	"fmt"

	"github.com/jinzhu/gorm"
	_ "github.com/lib/pq"           // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"bakehouse/internal/models"
)

// Open connects to the configured database. The desktop build uses a
// local SQLite file; driver "postgres" is supported for shared
// deployments.
func Open(driver, dsn string) (*gorm.DB, error) {
	switch driver {
	case "sqlite3", "postgres":
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", driver, err)
	}
	db.LogMode(false)

	if driver == "sqlite3" {
		// single writer; keep readers from hitting SQLITE_BUSY
		db.DB().SetMaxOpenConns(1)
	}
	return db, nil
}

// Migrate creates and updates all tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Ingredient{},
		&models.IngredientVariant{},
		&models.InventoryLot{},
		&models.Purchase{},
		&models.Recipe{},
		&models.RecipeIngredient{},
	).Error
}
