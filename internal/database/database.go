package database

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/RWAworkteam/ZeroCarbon-OS-1/internal/assets"
	"github.com/RWAworkteam/ZeroCarbon-OS-1/internal/database/migrations"
	"github.com/RWAworkteam/ZeroCarbon-OS-1/internal/enterprise"
	"github.com/RWAworkteam/ZeroCarbon-OS-1/internal/lending"
	"github.com/RWAworkteam/ZeroCarbon-OS-1/internal/market"
	"github.com/RWAworkteam/ZeroCarbon-OS-1/internal/trading"
)

// NewDatabase initializes and returns a new GORM DB connection
func NewDatabase(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// Run migrations
	if err := migrations.AddChainLedger(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := migrations.AddPointsEngine(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Auto-migrate other schemas
	err = db.AutoMigrate(
		&assets.CarbonAsset{},
		&enterprise.Enterprise{},
		&lending.ActiveLoan{},
		&trading.TradeRecord{},
		&trading.IdempotencyRecord{},
		&market.MarketOrder{},
		&market.TradingPlatform{},
	)
	if err != nil {
		return nil, err
	}

	return db, nil
}
