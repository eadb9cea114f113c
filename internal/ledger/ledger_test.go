package ledger

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/RWAworkteam/ZeroCarbon-OS-1/pkg/identifier"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&Block{}, &ContractEvent{}, &Wallet{}))

	require.NoError(t, db.Create(&Wallet{Balance: OpeningBalance, UpdatedAt: time.Now()}).Error)
	require.NoError(t, db.Create(&Block{
		Height:       GenesisHeight,
		Hash:         "0xgenesis",
		Timestamp:    time.Now(),
		Transactions: 4,
		Validator:    ValidatorParkOperator,
	}).Error)

	return NewService(db, identifier.NewSequential())
}

func TestAppendBlockHeightsAreGapless(t *testing.T) {
	service := newTestService(t)

	validators := []string{
		ValidatorThirdPartyVerifier,
		ValidatorFinancialInstitution,
		ValidatorTradingCenter,
		ValidatorSmartContract,
	}

	for i, validator := range validators {
		err := service.RunAtomic(func(tx *gorm.DB) error {
			block, err := service.AppendBlock(tx, validator, 1)
			if err != nil {
				return err
			}
			assert.Equal(t, GenesisHeight+int64(i)+1, block.Height)
			assert.Equal(t, validator, block.Validator)
			return nil
		})
		require.NoError(t, err)
	}

	height, err := service.Height()
	require.NoError(t, err)
	assert.Equal(t, int64(GenesisHeight+4), height)

	blocks, err := service.LatestBlocks(10)
	require.NoError(t, err)
	require.Len(t, blocks, 5)

	// Most-recent-first with no gaps and no duplicate hashes
	seen := make(map[string]bool)
	for i, block := range blocks {
		assert.Equal(t, GenesisHeight+int64(4-i), block.Height)
		assert.False(t, seen[block.Hash], "duplicate block hash %s", block.Hash)
		seen[block.Hash] = true
	}
}

func TestAdjustWalletReplaysToSameBalance(t *testing.T) {
	service := newTestService(t)

	deltas := []float64{300000, -60500, 50, -350000, 200000}
	expected := OpeningBalance
	for _, delta := range deltas {
		expected += delta
		err := service.RunAtomic(func(tx *gorm.DB) error {
			balance, err := service.AdjustWallet(tx, delta)
			if err != nil {
				return err
			}
			assert.Equal(t, expected, balance)
			return nil
		})
		require.NoError(t, err)
	}

	balance, err := service.Balance()
	require.NoError(t, err)
	assert.Equal(t, expected, balance)
}

func TestAdjustWalletAllowsNegativeBalance(t *testing.T) {
	service := newTestService(t)

	err := service.RunAtomic(func(tx *gorm.DB) error {
		balance, err := service.AdjustWallet(tx, -(OpeningBalance + 100000))
		if err != nil {
			return err
		}
		assert.Equal(t, -100000.0, balance)
		return nil
	})
	require.NoError(t, err)
}

func TestAppendEventAssignsDefaults(t *testing.T) {
	service := newTestService(t)

	var event *ContractEvent
	err := service.RunAtomic(func(tx *gorm.DB) error {
		var err error
		event, err = service.AppendEvent(tx, &ContractEvent{
			ContractName: "lending-contract",
			Event:        "LoanDisbursed",
			Amount:       300000,
		})
		return err
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(event.EventID, "SC-"))
	assert.NotEmpty(t, event.Hash)
	assert.Equal(t, EventStatusSuccess, event.Status)
	assert.False(t, event.Timestamp.IsZero())

	fetched, err := service.GetEvent(event.EventID)
	require.NoError(t, err)
	assert.Equal(t, "LoanDisbursed", fetched.Event)
}

func TestRunAtomicRollsBackOnError(t *testing.T) {
	service := newTestService(t)

	err := service.RunAtomic(func(tx *gorm.DB) error {
		if _, err := service.AdjustWallet(tx, 99999); err != nil {
			return err
		}
		if _, err := service.AppendBlock(tx, ValidatorSmartContract, 1); err != nil {
			return err
		}
		return assert.AnError
	})
	require.Error(t, err)

	balance, err := service.Balance()
	require.NoError(t, err)
	assert.Equal(t, OpeningBalance, balance)

	height, err := service.Height()
	require.NoError(t, err)
	assert.Equal(t, int64(GenesisHeight), height)
}

func TestChainStatus(t *testing.T) {
	service := newTestService(t)

	err := service.RunAtomic(func(tx *gorm.DB) error {
		if _, err := service.AdjustWallet(tx, 500); err != nil {
			return err
		}
		block, err := service.AppendBlock(tx, ValidatorSmartContract, 1)
		if err != nil {
			return err
		}
		_, err = service.AppendEvent(tx, &ContractEvent{
			ContractName: "subsidy-contract",
			Event:        "SubsidyTransfer",
			Amount:       500,
			BlockNumber:  block.Height,
		})
		return err
	})
	require.NoError(t, err)

	status, err := service.ChainStatus()
	require.NoError(t, err)
	assert.Equal(t, int64(GenesisHeight+1), status.Height)
	assert.Equal(t, int64(2), status.Blocks)
	assert.Equal(t, int64(1), status.Events)
	assert.Equal(t, OpeningBalance+500, status.WalletBalance)
}
