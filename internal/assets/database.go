package assets

import (
	"errors"

	"gorm.io/gorm"

	"github.com/RWAworkteam/ZeroCarbon-OS-1/internal/types"
)

type Database struct {
	db *gorm.DB
}

func NewDatabase(db *gorm.DB) *Database {
	return &Database{db: db}
}

func (d *Database) CreateAsset(asset *CarbonAsset) error {
	return d.db.Create(asset).Error
}

func (d *Database) GetAsset(assetID string) (*CarbonAsset, error) {
	return getAsset(d.db, assetID)
}

// getAsset works against either the base connection or a transaction.
func getAsset(db *gorm.DB, assetID string) (*CarbonAsset, error) {
	var asset CarbonAsset
	if err := db.Where("asset_id = ?", assetID).First(&asset).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NewNotFoundError("asset", assetID)
		}
		return nil, err
	}
	return &asset, nil
}

func (d *Database) ListAssets(status, owner string) ([]CarbonAsset, error) {
	query := d.db.Order("created_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if owner != "" {
		query = query.Where("owner = ?", owner)
	}

	var assetList []CarbonAsset
	if err := query.Find(&assetList).Error; err != nil {
		return nil, err
	}
	return assetList, nil
}

func (d *Database) UpdateAsset(asset *CarbonAsset) error {
	return d.db.Save(asset).Error
}
