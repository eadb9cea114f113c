package trading

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/RWAworkteam/ZeroCarbon-OS-1/internal/assets"
	"github.com/RWAworkteam/ZeroCarbon-OS-1/internal/ledger"
	"github.com/RWAworkteam/ZeroCarbon-OS-1/internal/types"
	"github.com/RWAworkteam/ZeroCarbon-OS-1/pkg/identifier"
)

func newTestService(t *testing.T) (*Service, *ledger.Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&TradeRecord{}, &IdempotencyRecord{},
		&assets.CarbonAsset{},
		&ledger.Block{}, &ledger.ContractEvent{}, &ledger.Wallet{},
	))
	require.NoError(t, db.Create(&ledger.Wallet{Balance: ledger.OpeningBalance, UpdatedAt: time.Now()}).Error)
	require.NoError(t, db.Create(&ledger.Block{
		Height:    ledger.GenesisHeight,
		Hash:      "0xgenesis",
		Timestamp: time.Now(),
		Validator: ledger.ValidatorParkOperator,
	}).Error)

	gen := identifier.NewSequential()
	ledgerService := ledger.NewService(db, gen)
	assetService := assets.NewService(db, ledgerService, gen)
	return NewService(db, assetService, ledgerService, gen), ledgerService, db
}

func TestSellCreditsWallet(t *testing.T) {
	service, ledgerService, _ := newTestService(t)

	resp, err := service.CreateTrade(&CreateTradeRequest{
		Side:     SideSell,
		Quantity: 1000,
		Price:    60.5,
		Venue:    "carbon-trading-center",
	}, "")
	require.NoError(t, err)

	assert.Equal(t, StatusSettled, resp.Trade.Status)
	assert.Equal(t, ledger.OpeningBalance+60500, resp.WalletBalance)

	// Exactly one block from the trading center, no contract event
	height, err := ledgerService.Height()
	require.NoError(t, err)
	assert.Equal(t, int64(ledger.GenesisHeight+1), height)

	block, err := ledgerService.GetBlockByHeight(height)
	require.NoError(t, err)
	assert.Equal(t, ledger.ValidatorTradingCenter, block.Validator)

	events, err := ledgerService.ListEvents("", "", 10)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestBuyDebitsWalletWithoutSufficiencyCheck(t *testing.T) {
	service, ledgerService, _ := newTestService(t)

	// A buy far larger than the balance settles anyway
	total := ledger.OpeningBalance + 500000
	resp, err := service.CreateTrade(&CreateTradeRequest{
		Side:     SideBuy,
		Quantity: 1,
		Price:    total,
	}, "")
	require.NoError(t, err)

	assert.Equal(t, StatusSettled, resp.Trade.Status)
	assert.Equal(t, -500000.0, resp.WalletBalance)

	balance, err := ledgerService.Balance()
	require.NoError(t, err)
	assert.Equal(t, -500000.0, balance)
}

func TestTradeAgainstUnknownAssetUsesPlaceholder(t *testing.T) {
	service, _, _ := newTestService(t)

	resp, err := service.CreateTrade(&CreateTradeRequest{
		AssetID:  "A-missing",
		Side:     SideSell,
		Quantity: 10,
		Price:    60,
	}, "")
	require.NoError(t, err)

	assert.Equal(t, "Unknown Asset", resp.Trade.TokenName)
	assert.Equal(t, StatusSettled, resp.Trade.Status)
}

func TestTradeResolvesAssetName(t *testing.T) {
	service, ledgerService, db := newTestService(t)
	_ = ledgerService

	require.NoError(t, db.Create(&assets.CarbonAsset{
		AssetID:     "A-001",
		ProjectName: "Rooftop Solar Plant",
		Status:      assets.StatusTokenized,
	}).Error)

	resp, err := service.CreateTrade(&CreateTradeRequest{
		AssetID:  "A-001",
		Side:     SideSell,
		Quantity: 10,
		Price:    60,
	}, "")
	require.NoError(t, err)
	assert.Equal(t, "Rooftop Solar Plant", resp.Trade.TokenName)
}

func TestIdempotentReplayReturnsOriginalTrade(t *testing.T) {
	service, ledgerService, db := newTestService(t)

	first, err := service.CreateTrade(&CreateTradeRequest{
		Side:     SideSell,
		Quantity: 100,
		Price:    60,
	}, "replay-key")
	require.NoError(t, err)

	second, err := service.CreateTrade(&CreateTradeRequest{
		Side:     SideSell,
		Quantity: 100,
		Price:    60,
	}, "replay-key")
	require.NoError(t, err)

	assert.Equal(t, first.Trade.TradeID, second.Trade.TradeID)

	// Only one trade record and one wallet adjustment
	var count int64
	require.NoError(t, db.Model(&TradeRecord{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	balance, err := ledgerService.Balance()
	require.NoError(t, err)
	assert.Equal(t, ledger.OpeningBalance+6000, balance)
}

func TestTradeValidation(t *testing.T) {
	service, _, _ := newTestService(t)

	cases := []struct {
		name string
		req  CreateTradeRequest
	}{
		{"invalid side", CreateTradeRequest{Side: "short", Quantity: 10, Price: 60}},
		{"zero quantity", CreateTradeRequest{Side: SideBuy, Quantity: 0, Price: 60}},
		{"zero price", CreateTradeRequest{Side: SideSell, Quantity: 10, Price: 0}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.CreateTrade(&tc.req, "")
			var verr *types.ValidationError
			require.ErrorAs(t, err, &verr)
		})
	}
}

func TestListTradesFiltersBySide(t *testing.T) {
	service, _, _ := newTestService(t)

	_, err := service.CreateTrade(&CreateTradeRequest{Side: SideSell, Quantity: 10, Price: 60}, "")
	require.NoError(t, err)
	_, err = service.CreateTrade(&CreateTradeRequest{Side: SideBuy, Quantity: 5, Price: 55}, "")
	require.NoError(t, err)

	sells, err := service.ListTrades(SideSell, "")
	require.NoError(t, err)
	assert.Len(t, sells, 1)

	all, err := service.ListTrades("", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
