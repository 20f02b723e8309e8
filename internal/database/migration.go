package database

import (
	"fmt"

	"github.com/mpancino/myassetplace/internal/models"

	"gorm.io/gorm"
)

// AutoMigrate runs database schema migrations for all models.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Asset{},
		&models.AssetItem{},
		&models.Category{},
		&models.AuditLog{},
		&models.Backup{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

var defaultCategories = []models.Category{
	{ID: "council-rates", Kind: models.AssetKindProperty, Name: "Council rates", DisplayOrder: 1},
	{ID: "water-rates", Kind: models.AssetKindProperty, Name: "Water rates", DisplayOrder: 2},
	{ID: "home-insurance", Kind: models.AssetKindProperty, Name: "Insurance", DisplayOrder: 3},
	{ID: "maintenance", Kind: models.AssetKindProperty, Name: "Maintenance", DisplayOrder: 4},
	{ID: "strata-fees", Kind: models.AssetKindProperty, Name: "Strata fees", DisplayOrder: 5},
	{ID: "property-mgmt", Kind: models.AssetKindProperty, Name: "Property management", DisplayOrder: 6},
	{ID: "platform-fees", Kind: models.AssetKindInvestment, Name: "Platform fees", DisplayOrder: 1},
	{ID: "advice-fees", Kind: models.AssetKindInvestment, Name: "Advice fees", DisplayOrder: 2},
	{ID: "fund-mgmt-fees", Kind: models.AssetKindInvestment, Name: "Fund management fees", DisplayOrder: 3},
	{ID: "base-salary", Kind: models.AssetKindEmployment, Name: "Base salary", DisplayOrder: 1},
	{ID: "bonus", Kind: models.AssetKindEmployment, Name: "Bonus", DisplayOrder: 2},
	{ID: "super", Kind: models.AssetKindEmployment, Name: "Superannuation", DisplayOrder: 3},
	{ID: "allowances", Kind: models.AssetKindEmployment, Name: "Allowances", DisplayOrder: 4},
}

// SeedCategories inserts the default category reference data, keeping any
// rows an operator has already customized.
func SeedCategories(db *gorm.DB) error {
	for _, cat := range defaultCategories {
		var count int64
		if err := db.Model(&models.Category{}).Where("id = ?", cat.ID).Count(&count).Error; err != nil {
			return fmt.Errorf("check category %s: %w", cat.ID, err)
		}
		if count > 0 {
			continue
		}
		if err := db.Create(&cat).Error; err != nil {
			return fmt.Errorf("seed category %s: %w", cat.ID, err)
		}
	}
	return nil
}
