package market

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

func (d *Database) CreateOrder(order *MarketOrder) error {
	return d.db.Create(order).Error
}

func (d *Database) GetOrder(orderID string) (*MarketOrder, error) {
	var order MarketOrder
	if err := d.db.Where("order_id = ?", orderID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NewNotFoundError("market order", orderID)
		}
		return nil, err
	}
	return &order, nil
}

func (d *Database) ListOrders(orderType string) ([]MarketOrder, error) {
	query := d.db.Order("time DESC")
	if orderType != "" {
		query = query.Where("type = ?", orderType)
	}

	var orders []MarketOrder
	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (d *Database) DeleteOrder(orderID string) error {
	result := d.db.Where("order_id = ?", orderID).Delete(&MarketOrder{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return types.NewNotFoundError("market order", orderID)
	}
	return nil
}

func (d *Database) CreatePlatform(platform *TradingPlatform) error {
	return d.db.Create(platform).Error
}

func (d *Database) GetPlatform(platformID string) (*TradingPlatform, error) {
	var platform TradingPlatform
	if err := d.db.Where("platform_id = ?", platformID).First(&platform).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NewNotFoundError("trading platform", platformID)
		}
		return nil, err
	}
	return &platform, nil
}

func (d *Database) ListPlatforms(status string) ([]TradingPlatform, error) {
	query := d.db.Order("created_at ASC")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var platforms []TradingPlatform
	if err := query.Find(&platforms).Error; err != nil {
		return nil, err
	}
	return platforms, nil
}

func (d *Database) UpdatePlatform(platform *TradingPlatform) error {
	return d.db.Save(platform).Error
}

func (d *Database) CountPlatforms() (int64, error) {
	var count int64
	if err := d.db.Model(&TradingPlatform{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
