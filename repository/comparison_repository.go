package repository

import (
	"fmt"
	"time"

	"crossprice/database"
	"crossprice/models"
)

type ComparisonRepository struct{}

func NewComparisonRepository() *ComparisonRepository {
	return &ComparisonRepository{}
}

// AddSnapshot persists the summary of one comparison run
func (r *ComparisonRepository) AddSnapshot(snapshot *models.ComparisonSnapshot) error {
	query := `
		INSERT INTO comparison_history (page_url, identifier, identifier_type, product_name, page_price_eur, quotes_found, quotes_mismatch, quotes_not_found, checked_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	if snapshot.CheckedAt.IsZero() {
		snapshot.CheckedAt = time.Now()
	}

	err := database.DB.QueryRow(query,
		snapshot.PageURL, snapshot.Identifier, snapshot.IdentifierType,
		snapshot.ProductName, snapshot.PagePriceEUR,
		snapshot.QuotesFound, snapshot.QuotesMismatch, snapshot.QuotesNotFound,
		snapshot.CheckedAt,
	).Scan(&snapshot.ID)

	if err != nil {
		return fmt.Errorf("failed to add comparison snapshot: %v", err)
	}

	return nil
}

// GetHistoryForURL returns the comparison history for one page
func (r *ComparisonRepository) GetHistoryForURL(pageURL string, limit int) ([]models.ComparisonSnapshot, error) {
	if limit <= 0 {
		limit = 50 // default limit
	}

	query := `
		SELECT id, page_url, identifier, identifier_type, product_name, page_price_eur, quotes_found, quotes_mismatch, quotes_not_found, checked_at
		FROM comparison_history
		WHERE page_url = $1
		ORDER BY checked_at DESC
		LIMIT $2
	`

	rows, err := database.DB.Query(query, pageURL, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get comparison history: %v", err)
	}
	defer rows.Close()

	var history []models.ComparisonSnapshot
	for rows.Next() {
		var entry models.ComparisonSnapshot
		err := rows.Scan(
			&entry.ID, &entry.PageURL, &entry.Identifier, &entry.IdentifierType,
			&entry.ProductName, &entry.PagePriceEUR,
			&entry.QuotesFound, &entry.QuotesMismatch, &entry.QuotesNotFound,
			&entry.CheckedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comparison snapshot: %v", err)
		}
		history = append(history, entry)
	}

	return history, nil
}

// GetRecentSnapshots returns the latest runs across all pages
func (r *ComparisonRepository) GetRecentSnapshots(limit int) ([]models.ComparisonSnapshot, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, page_url, identifier, identifier_type, product_name, page_price_eur, quotes_found, quotes_mismatch, quotes_not_found, checked_at
		FROM comparison_history
		ORDER BY checked_at DESC
		LIMIT $1
	`

	rows, err := database.DB.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent snapshots: %v", err)
	}
	defer rows.Close()

	var history []models.ComparisonSnapshot
	for rows.Next() {
		var entry models.ComparisonSnapshot
		err := rows.Scan(
			&entry.ID, &entry.PageURL, &entry.Identifier, &entry.IdentifierType,
			&entry.ProductName, &entry.PagePriceEUR,
			&entry.QuotesFound, &entry.QuotesMismatch, &entry.QuotesNotFound,
			&entry.CheckedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comparison snapshot: %v", err)
		}
		history = append(history, entry)
	}

	return history, nil
}
