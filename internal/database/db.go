package database

import (
	"fmt"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres" // PostgreSQL dialect
	_ "github.com/jinzhu/gorm/dialects/sqlite"   // SQLite driver
)

var DB *gorm.DB

// InitDB opens the database connection. Supported dialects are
// "sqlite3" and "postgres"; args is the file path or the DSN.
func InitDB(dialect, args string) error {
	switch dialect {
	case "sqlite3", "postgres":
	default:
		return fmt.Errorf("unsupported database dialect %q", dialect)
	}
	var err error
	DB, err = gorm.Open(dialect, args)
	if err != nil {
		return err
	}
	return nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}

// SetTestDB swaps in a database for tests.
func SetTestDB(db *gorm.DB) {
	DB = db
}

// CloseDB closes the database connection
func CloseDB() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}
