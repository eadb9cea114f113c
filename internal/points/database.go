package points

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

func (d *Database) GetAccount(accountID string) (*CarbonPointsAccount, error) {
	return getAccount(d.db, accountID)
}

func getAccount(db *gorm.DB, accountID string) (*CarbonPointsAccount, error) {
	var account CarbonPointsAccount
	if err := db.Where("account_id = ?", accountID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NewNotFoundError("points account", accountID)
		}
		return nil, err
	}
	return &account, nil
}

func (d *Database) GetAccountByOwner(ownerID string) (*CarbonPointsAccount, error) {
	var account CarbonPointsAccount
	if err := d.db.Where("owner_id = ?", ownerID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NewNotFoundError("points account for owner", ownerID)
		}
		return nil, err
	}
	return &account, nil
}

func (d *Database) ListAccounts(ownerType string) ([]CarbonPointsAccount, error) {
	query := d.db.Order("created_at")
	if ownerType != "" {
		query = query.Where("owner_type = ?", ownerType)
	}

	var accounts []CarbonPointsAccount
	if err := query.Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

func (d *Database) ListTransactions(accountID, txType string) ([]CarbonPointsTransaction, error) {
	query := d.db.Order("created_at DESC")
	if accountID != "" {
		query = query.Where("account_id = ?", accountID)
	}
	if txType != "" {
		query = query.Where("type = ?", txType)
	}

	var transactions []CarbonPointsTransaction
	if err := query.Find(&transactions).Error; err != nil {
		return nil, err
	}
	return transactions, nil
}

func (d *Database) GetReward(rewardID string) (*PointsReward, error) {
	var reward PointsReward
	if err := d.db.Where("reward_id = ?", rewardID).First(&reward).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NewNotFoundError("reward", rewardID)
		}
		return nil, err
	}
	return &reward, nil
}

func (d *Database) ListRewards(availableOnly bool) ([]PointsReward, error) {
	query := d.db.Order("points_required")
	if availableOnly {
		query = query.Where("available = ?", true)
	}

	var rewards []PointsReward
	if err := query.Find(&rewards).Error; err != nil {
		return nil, err
	}
	return rewards, nil
}
