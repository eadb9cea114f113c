package database

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/RWAworkteam/ZeroCarbon-OS-1/internal/ledger"
	"github.com/RWAworkteam/ZeroCarbon-OS-1/internal/market"
	"github.com/RWAworkteam/ZeroCarbon-OS-1/internal/points"
	"github.com/RWAworkteam/ZeroCarbon-OS-1/pkg/identifier"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := NewDatabase(dsn)
	require.NoError(t, err)
	return db
}

func TestSeedCreatesWalletAndGenesis(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, Seed(db, identifier.NewSequential(), false))

	var wallet ledger.Wallet
	require.NoError(t, db.First(&wallet).Error)
	assert.Equal(t, ledger.OpeningBalance, wallet.Balance)

	var block ledger.Block
	require.NoError(t, db.First(&block).Error)
	assert.Equal(t, int64(ledger.GenesisHeight), block.Height)
	assert.Equal(t, ledger.ValidatorParkOperator, block.Validator)

	// Without demo mode no reference data is inserted
	var rewards int64
	require.NoError(t, db.Model(&points.PointsReward{}).Count(&rewards).Error)
	assert.Zero(t, rewards)
}

func TestSeedDemoData(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, Seed(db, identifier.NewSequential(), true))

	var rewards int64
	require.NoError(t, db.Model(&points.PointsReward{}).Count(&rewards).Error)
	assert.Equal(t, int64(5), rewards)

	var accounts int64
	require.NoError(t, db.Model(&points.CarbonPointsAccount{}).Count(&accounts).Error)
	assert.Equal(t, int64(2), accounts)

	// Every seeded points account satisfies the conservation law
	var rows []points.CarbonPointsAccount
	require.NoError(t, db.Find(&rows).Error)
	for _, account := range rows {
		assert.Equal(t, account.TotalPoints, account.AvailablePoints+account.UsedPoints)
	}

	var platforms int64
	require.NoError(t, db.Model(&market.TradingPlatform{}).Count(&platforms).Error)
	assert.Equal(t, int64(2), platforms)
}

func TestSeedIsIdempotent(t *testing.T) {
	db := newTestDB(t)

	gen := identifier.NewSequential()
	require.NoError(t, Seed(db, gen, true))
	require.NoError(t, Seed(db, gen, true))

	var wallets int64
	require.NoError(t, db.Model(&ledger.Wallet{}).Count(&wallets).Error)
	assert.Equal(t, int64(1), wallets)

	var blocks int64
	require.NoError(t, db.Model(&ledger.Block{}).Count(&blocks).Error)
	assert.Equal(t, int64(1), blocks)

	var rewards int64
	require.NoError(t, db.Model(&points.PointsReward{}).Count(&rewards).Error)
	assert.Equal(t, int64(5), rewards)
}
