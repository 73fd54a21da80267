package database

import (
	"database/sql"
	"fmt"
	"time"

	"kamatrack/internal/models"
	"kamatrack/internal/pricing"
)

// GetResource returns the stored record for id, or nil when no record exists.
func GetResource(db *sql.DB, id int) (*models.ResourceRecord, error) {
	query := `
		SELECT id, name, xp, value, updated_at, first_affordable_at
		FROM resources
		WHERE id = ?
	`

	record, err := scanResource(db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query resource: %w", err)
	}

	return record, nil
}

// GetResources returns every stored record, unordered.
func GetResources(db *sql.DB) ([]models.ResourceRecord, error) {
	query := `
		SELECT id, name, xp, value, updated_at, first_affordable_at
		FROM resources
	`

	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query resources: %w", err)
	}
	defer rows.Close()

	var records []models.ResourceRecord
	for rows.Next() {
		record, err := scanResource(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan resource: %w", err)
		}
		records = append(records, *record)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating resources: %w", err)
	}

	return records, nil
}

// CreateOrUpdateResource upserts a record and snapshots its price into the
// per-day history table. Once first_affordable_at is set it is preserved;
// otherwise it is set now when the written price is at or below the
// affordability threshold for the written experience. Both writes commit in
// a single transaction.
func CreateOrUpdateResource(db *sql.DB, calc *pricing.Calculator, record models.ResourceRecord) (*models.ResourceRecord, error) {
	prior, err := GetResource(db, record.ID)
	if err != nil {
		return nil, err
	}

	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = time.Now()
	}

	record.FirstAffordableAt = nil
	if prior != nil && prior.FirstAffordableAt != nil {
		record.FirstAffordableAt = prior.FirstAffordableAt
	} else if record.Value != nil && record.XP != nil && *record.XP > 0 {
		threshold, err := calc.AffordabilityThreshold(*record.XP)
		if err != nil {
			return nil, err
		}
		if *record.Value <= threshold {
			now := time.Now()
			record.FirstAffordableAt = &now
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	upsert := `
		INSERT INTO resources (id, name, xp, value, updated_at, first_affordable_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			xp = excluded.xp,
			value = excluded.value,
			updated_at = excluded.updated_at,
			first_affordable_at = excluded.first_affordable_at
	`

	_, err = tx.Exec(upsert, record.ID, record.Name, record.XP, record.Value,
		record.UpdatedAt, record.FirstAffordableAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert resource: %w", err)
	}

	if record.Value != nil {
		if err := upsertHistory(tx, record.ID, record.UpdatedAt, *record.Value); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit resource update: %w", err)
	}

	return &record, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanResource(row rowScanner) (*models.ResourceRecord, error) {
	var record models.ResourceRecord
	var xp, value sql.NullFloat64
	var firstAffordableAt sql.NullTime

	err := row.Scan(
		&record.ID,
		&record.Name,
		&xp,
		&value,
		&record.UpdatedAt,
		&firstAffordableAt,
	)
	if err != nil {
		return nil, err
	}

	if xp.Valid {
		record.XP = &xp.Float64
	}
	if value.Valid {
		record.Value = &value.Float64
	}
	if firstAffordableAt.Valid {
		record.FirstAffordableAt = &firstAffordableAt.Time
	}

	return &record, nil
}
