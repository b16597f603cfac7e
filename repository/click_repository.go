package repository

import (
	"fmt"
	"time"

	"crossprice/database"
	"crossprice/models"
)

type ClickRepository struct{}

func NewClickRepository() *ClickRepository {
	return &ClickRepository{}
}

// AddClickEvent stores one outbound-link click
func (r *ClickRepository) AddClickEvent(event *models.ClickEvent) (*models.ClickEvent, error) {
	query := `
		INSERT INTO click_events (store, product_url, product_name, price, gtin, mpn, referring_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`

	err := database.DB.QueryRow(query,
		event.Store, event.ProductURL, event.ProductName,
		event.Price, event.GTIN, event.MPN, event.ReferringURL, time.Now(),
	).Scan(&event.ID, &event.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to add click event: %v", err)
	}

	return event, nil
}

// GetClickEvents returns the most recent click events
func (r *ClickRepository) GetClickEvents(limit int) ([]models.ClickEvent, error) {
	if limit <= 0 {
		limit = 100 // default limit
	}

	query := `
		SELECT id, store, product_url, product_name, price, gtin, mpn, referring_url, created_at
		FROM click_events
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := database.DB.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get click events: %v", err)
	}
	defer rows.Close()

	var events []models.ClickEvent
	for rows.Next() {
		var event models.ClickEvent
		err := rows.Scan(
			&event.ID, &event.Store, &event.ProductURL, &event.ProductName,
			&event.Price, &event.GTIN, &event.MPN, &event.ReferringURL, &event.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan click event: %v", err)
		}
		events = append(events, event)
	}

	return events, nil
}

// GetClickCountByStore returns how many clicks each store received
func (r *ClickRepository) GetClickCountByStore() (map[string]int, error) {
	query := `
		SELECT store, COUNT(*)
		FROM click_events
		GROUP BY store
	`

	rows, err := database.DB.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to count click events: %v", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var store string
		var count int
		if err := rows.Scan(&store, &count); err != nil {
			return nil, fmt.Errorf("failed to scan click count: %v", err)
		}
		counts[store] = count
	}

	return counts, nil
}
