// Package storage persists ledger snapshots with gorm. It implements the
// ledger Saver and Loader ports; the ledger core itself never sees gorm.
package storage

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mpancino/myassetplace/internal/ledger"
	"github.com/mpancino/myassetplace/internal/models"
)

// AssetStore reads and writes an asset's line items.
type AssetStore struct {
	DB *gorm.DB
}

func NewAssetStore(db *gorm.DB) *AssetStore {
	return &AssetStore{DB: db}
}

// Save replaces the asset's persisted items with the snapshot and returns the
// rows as the store now sees them. The whole write is one transaction.
func (s *AssetStore) Save(ctx context.Context, assetID string, items []ledger.LineItem) ([]ledger.LineItem, error) {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("asset_id = ?", assetID).Delete(&models.AssetItem{}).Error; err != nil {
			return fmt.Errorf("clear items: %w", err)
		}
		for _, it := range items {
			row := models.AssetItem{
				AssetID:    assetID,
				ItemID:     it.ID,
				CategoryID: it.CategoryID,
				Label:      it.Label,
				Amount:     it.Amount.String(),
				Frequency:  string(it.Frequency),
			}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("insert item %s: %w", it.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Load(ctx, assetID)
}

// Load fetches the persisted snapshot. Annual totals are not stored; the
// ledger recomputes them when the items enter a snapshot.
func (s *AssetStore) Load(ctx context.Context, assetID string) ([]ledger.LineItem, error) {
	var rows []models.AssetItem
	if err := s.DB.WithContext(ctx).
		Where("asset_id = ?", assetID).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}

	items := make([]ledger.LineItem, 0, len(rows))
	for _, row := range rows {
		amt, err := decimal.NewFromString(row.Amount)
		if err != nil {
			return nil, fmt.Errorf("item %s: bad stored amount %q: %w", row.ItemID, row.Amount, err)
		}
		items = append(items, ledger.LineItem{
			ID:         row.ItemID,
			CategoryID: row.CategoryID,
			Label:      row.Label,
			Amount:     amt,
			Frequency:  ledger.Frequency(row.Frequency),
		})
	}
	return items, nil
}
