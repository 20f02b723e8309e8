package models

import "time"

// Category is reference data for classifying line items, seeded per asset
// kind at startup. The ledger core never mutates it.
type Category struct {
	ID           string `gorm:"primaryKey;size:64"` // slug, e.g. "council-rates"
	Kind         string `gorm:"size:16;index;not null"`
	Name         string `gorm:"size:64;not null"`
	DisplayOrder int    `gorm:"default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
