package lending

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

func (d *Database) GetLoan(loanID string) (*ActiveLoan, error) {
	var loan ActiveLoan
	if err := d.db.Where("loan_id = ?", loanID).First(&loan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NewNotFoundError("loan", loanID)
		}
		return nil, err
	}
	return &loan, nil
}

func (d *Database) ListLoans(status string) ([]ActiveLoan, error) {
	query := d.db.Order("created_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var loans []ActiveLoan
	if err := query.Find(&loans).Error; err != nil {
		return nil, err
	}
	return loans, nil
}

func (d *Database) ListLoansByAsset(assetID string) ([]ActiveLoan, error) {
	var loans []ActiveLoan
	if err := d.db.Where("asset_id = ?", assetID).Order("created_at DESC").Find(&loans).Error; err != nil {
		return nil, err
	}
	return loans, nil
}
