package database

import (
	"database/sql"
	"fmt"
	"time"

	"kamatrack/internal/models"
)

// HistoryDay is the calendar-day format used as the second half of the
// history composite key.
const HistoryDay = "2006-01-02"

func upsertHistory(tx *sql.Tx, id int, at time.Time, value float64) error {
	query := `
		INSERT INTO resource_history (id, date, value)
		VALUES (?, ?, ?)
		ON CONFLICT(id, date) DO UPDATE SET value = excluded.value
	`

	if _, err := tx.Exec(query, id, at.Format(HistoryDay), value); err != nil {
		return fmt.Errorf("failed to upsert history entry: %w", err)
	}

	return nil
}

// GetResourceHistory returns the per-day price snapshots for a resource,
// oldest first.
func GetResourceHistory(db *sql.DB, id int) ([]models.HistoryEntry, error) {
	query := `
		SELECT id, date, value
		FROM resource_history
		WHERE id = ?
		ORDER BY date
	`

	rows, err := db.Query(query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query resource history: %w", err)
	}
	defer rows.Close()

	var entries []models.HistoryEntry
	for rows.Next() {
		var entry models.HistoryEntry
		if err := rows.Scan(&entry.ID, &entry.Date, &entry.Value); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history entries: %w", err)
	}

	return entries, nil
}
