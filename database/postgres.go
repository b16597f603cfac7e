package database

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/lib/pq"
)

var DB *sql.DB

// InitDatabase initializes the database connection
func InitDatabase() error {
	// Get database connection string from environment
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}

	var err error
	DB, err = sql.Open("postgres", dbURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %v", err)
	}

	// Test the connection
	if err := DB.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %v", err)
	}

	log.Println("Successfully connected to database")
	return nil
}

// CreateTables creates the necessary tables if they don't exist
func CreateTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS click_events (
			id SERIAL PRIMARY KEY,
			store TEXT NOT NULL,
			product_url TEXT NOT NULL,
			product_name TEXT,
			price TEXT,
			gtin TEXT,
			mpn TEXT,
			referring_url TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS comparison_history (
			id SERIAL PRIMARY KEY,
			page_url TEXT NOT NULL,
			identifier TEXT NOT NULL,
			identifier_type VARCHAR(20) NOT NULL,
			product_name TEXT,
			page_price_eur DECIMAL(10,2) DEFAULT 0,
			quotes_found INTEGER DEFAULT 0,
			quotes_mismatch INTEGER DEFAULT 0,
			quotes_not_found INTEGER DEFAULT 0,
			checked_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_click_events_store ON click_events (store)`,
		`CREATE INDEX IF NOT EXISTS idx_click_events_created ON click_events (created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_comparison_history_url ON comparison_history (page_url)`,
		`CREATE INDEX IF NOT EXISTS idx_comparison_history_identifier ON comparison_history (identifier)`,
	}

	for _, query := range queries {
		_, err := DB.Exec(query)
		if err != nil {
			return fmt.Errorf("failed to create table: %v", err)
		}
	}

	return nil
}

// CloseDatabase closes the database connection
func CloseDatabase() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}
