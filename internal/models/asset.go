package models

import "time"

// Asset kinds.
const (
	AssetKindProperty   = "property"
	AssetKindInvestment = "investment"
	AssetKindEmployment = "employment"
)

// Asset is one tracked holding: a property, an investment, or an employment
// position. Its recurring expense/income entries live in AssetItem rows.
type Asset struct {
	ID     string `gorm:"primaryKey;size:36"` // UUID
	UserID uint   `gorm:"index;not null"`
	Name   string `gorm:"size:64;not null"`
	Kind   string `gorm:"size:16;index;not null"` // property / investment / employment

	// Annual income attributed to the asset (salary, rent, dividends),
	// decimal string. Empty means unknown, which is not the same as zero.
	ExternalIncome string `gorm:"size:32"`

	CreatedAt time.Time
	UpdatedAt time.Time

	User User `gorm:"constraint:OnDelete:CASCADE"`
}

// AssetItem is the persisted form of one ledger line item. AnnualTotal is
// deliberately absent: it is derived and recomputed locally after load,
// never trusted from storage.
type AssetItem struct {
	ID         uint   `gorm:"primaryKey"`
	AssetID    string `gorm:"size:36;index;uniqueIndex:idx_asset_item;not null"`
	ItemID     string `gorm:"size:36;uniqueIndex:idx_asset_item;not null"` // client-generated UUID
	CategoryID string `gorm:"size:64;not null"`
	Label      string `gorm:"size:255"`
	Amount     string `gorm:"size:32;not null"` // decimal string
	Frequency  string `gorm:"size:16;not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Asset Asset `gorm:"constraint:OnDelete:CASCADE"`
}
