package enterprise

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

func (d *Database) CreateEnterprise(enterprise *Enterprise) error {
	return d.db.Create(enterprise).Error
}

func (d *Database) GetEnterprise(enterpriseID string) (*Enterprise, error) {
	var enterprise Enterprise
	if err := d.db.Where("enterprise_id = ?", enterpriseID).First(&enterprise).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NewNotFoundError("enterprise", enterpriseID)
		}
		return nil, err
	}
	return &enterprise, nil
}

func (d *Database) ListEnterprises(complianceStatus string) ([]Enterprise, error) {
	query := d.db.Order("created_at DESC")
	if complianceStatus != "" {
		query = query.Where("compliance_status = ?", complianceStatus)
	}

	var enterprises []Enterprise
	if err := query.Find(&enterprises).Error; err != nil {
		return nil, err
	}
	return enterprises, nil
}

func (d *Database) UpdateEnterprise(enterprise *Enterprise) error {
	return d.db.Save(enterprise).Error
}
