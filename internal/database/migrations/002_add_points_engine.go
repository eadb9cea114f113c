package migrations

import (
	"github.com/RWAworkteam/ZeroCarbon-OS-1/internal/points"
	"gorm.io/gorm"
)

// AddPointsEngine creates the points account, transaction and reward
// catalog tables with the indexes the transaction history queries on.
func AddPointsEngine(db *gorm.DB) error {
	if err := db.AutoMigrate(&points.CarbonPointsAccount{}); err != nil {
		return err
	}

	if err := db.AutoMigrate(&points.CarbonPointsTransaction{}); err != nil {
		return err
	}

	if err := db.AutoMigrate(&points.PointsReward{}); err != nil {
		return err
	}

	indexes := []string{
		// Composite index for per-account history filtered by type
		`CREATE INDEX IF NOT EXISTS idx_points_transactions_account_type
		 ON carbon_points_transactions(account_id, type)`,

		// Index for timestamp ordering
		`CREATE INDEX IF NOT EXISTS idx_points_transactions_timestamp
		 ON carbon_points_transactions(timestamp)`,

		// Index for reward catalog availability filtering
		`CREATE INDEX IF NOT EXISTS idx_points_rewards_available
		 ON points_rewards(available)`,
	}

	for _, idx := range indexes {
		if err := db.Exec(idx).Error; err != nil {
			return err
		}
	}

	return nil
}
