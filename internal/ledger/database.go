package ledger

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

func (d *Database) LatestBlocks(limit int) ([]Block, error) {
	var blocks []Block
	if err := d.db.Order("height DESC").Limit(limit).Find(&blocks).Error; err != nil {
		return nil, err
	}
	return blocks, nil
}

func (d *Database) GetBlockByHeight(height int64) (*Block, error) {
	var block Block
	if err := d.db.Where("height = ?", height).First(&block).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NewNotFoundError("block", "")
		}
		return nil, err
	}
	return &block, nil
}

func (d *Database) GetBlockByHash(hash string) (*Block, error) {
	var block Block
	if err := d.db.Where("hash = ?", hash).First(&block).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NewNotFoundError("block", hash)
		}
		return nil, err
	}
	return &block, nil
}

func (d *Database) GetEvent(eventID string) (*ContractEvent, error) {
	var event ContractEvent
	if err := d.db.Where("event_id = ?", eventID).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NewNotFoundError("contract event", eventID)
		}
		return nil, err
	}
	return &event, nil
}

func (d *Database) ListEvents(contractName, status string, limit int) ([]ContractEvent, error) {
	query := d.db.Order("created_at DESC").Limit(limit)
	if contractName != "" {
		query = query.Where("contract_name = ?", contractName)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var events []ContractEvent
	if err := query.Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (d *Database) CountBlocks() (int64, error) {
	var count int64
	err := d.db.Model(&Block{}).Count(&count).Error
	return count, err
}

func (d *Database) CountEvents() (int64, error) {
	var count int64
	err := d.db.Model(&ContractEvent{}).Count(&count).Error
	return count, err
}

func (d *Database) MaxHeight() (int64, error) {
	var height int64
	err := d.db.Model(&Block{}).Select("COALESCE(MAX(height), 0)").Scan(&height).Error
	return height, err
}

func (d *Database) GetWallet() (*Wallet, error) {
	var wallet Wallet
	if err := d.db.First(&wallet).Error; err != nil {
		return nil, err
	}
	return &wallet, nil
}
