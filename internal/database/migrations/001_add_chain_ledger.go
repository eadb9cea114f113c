package migrations

import (
	"github.com/RWAworkteam/ZeroCarbon-OS-1/internal/ledger"
	"gorm.io/gorm"
)

// AddChainLedger creates the block, contract event and wallet tables
// with the indexes the explorer endpoints query on.
func AddChainLedger(db *gorm.DB) error {
	// Create the ledger tables
	if err := db.AutoMigrate(&ledger.Block{}); err != nil {
		return err
	}

	if err := db.AutoMigrate(&ledger.ContractEvent{}); err != nil {
		return err
	}

	if err := db.AutoMigrate(&ledger.Wallet{}); err != nil {
		return err
	}

	// Add indexes for better query performance
	// Using raw SQL for index creation to have more control over index types
	indexes := []string{
		// Index for contract name lookups
		`CREATE INDEX IF NOT EXISTS idx_contract_events_contract_name
		 ON contract_events(contract_name)`,

		// Index for status filtering
		`CREATE INDEX IF NOT EXISTS idx_contract_events_status
		 ON contract_events(status)`,

		// Index for timestamp (explorer lists most-recent-first)
		`CREATE INDEX IF NOT EXISTS idx_contract_events_timestamp
		 ON contract_events(timestamp)`,

		// Index for block correlation lookups
		`CREATE INDEX IF NOT EXISTS idx_contract_events_block_number
		 ON contract_events(block_number)`,

		// Index for validator filtering on blocks
		`CREATE INDEX IF NOT EXISTS idx_blocks_validator
		 ON blocks(validator)`,
	}

	// Execute each index creation
	for _, idx := range indexes {
		if err := db.Exec(idx).Error; err != nil {
			return err
		}
	}

	return nil
}
