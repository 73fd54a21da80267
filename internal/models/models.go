package models

import (
	"time"
)

// ResourceRecord is a locally saved price/experience entry for a catalog
// item. ID always equals the catalog item identifier (ankama_id).
type ResourceRecord struct {
	ID                int        `json:"id" db:"id"`
	Name              string     `json:"name" db:"name"`
	XP                *float64   `json:"xp" db:"xp"`
	Value             *float64   `json:"value" db:"value"`
	UpdatedAt         time.Time  `json:"updated_at" db:"updated_at"`
	FirstAffordableAt *time.Time `json:"first_affordable_at" db:"first_affordable_at"`
}

// HistoryEntry is a once-per-day snapshot of a resource's recorded price.
// Date is a calendar day string; later writes the same day overwrite.
type HistoryEntry struct {
	ID    int     `json:"id" db:"id"`
	Date  string  `json:"date" db:"date"`
	Value float64 `json:"value" db:"value"`
}

// CatalogItem is an item as returned by the remote catalog. Never persisted.
type CatalogItem struct {
	AnkamaID int    `json:"ankama_id"`
	Name     string `json:"name"`
	Level    int    `json:"level"`
	Type     struct {
		Name string `json:"name"`
	} `json:"type"`
	ImageURLs struct {
		SD string `json:"sd"`
	} `json:"image_urls"`
}

// Resource is the display join of a CatalogItem and its ResourceRecord,
// built per request and never stored.
type Resource struct {
	ID                int        `json:"id"`
	Name              string     `json:"name"`
	Level             int        `json:"lvl"`
	Type              string     `json:"type"`
	Icon              string     `json:"icon"`
	XP                *float64   `json:"xp"`
	Value             *float64   `json:"value"`
	UpdatedAt         *time.Time `json:"updated_at"`
	FirstAffordableAt *time.Time `json:"first_affordable_at"`

	// Derived columns, nil when xp is missing.
	Threshold *float64 `json:"threshold"`
	Total     *float64 `json:"total"`
	Units     *int     `json:"units"`
}
