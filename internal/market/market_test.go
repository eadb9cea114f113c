package market

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
	"github.com/RWAworkteam/ZeroCarbon-OS-1/internal/types"
	"github.com/RWAworkteam/ZeroCarbon-OS-1/pkg/identifier"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&MarketOrder{}, &TradingPlatform{}))
	return NewService(db, identifier.NewSequential())
}

func TestCreateOrderComputesTotal(t *testing.T) {
	service := newTestService(t)

	order, err := service.CreateOrder(&CreateMarketOrderRequest{
		AssetName:    "Solar Reduction 2024Q1",
		Amount:       100,
		PricePerUnit: 52.5,
		Seller:       "zero-carbon-park",
		Type:         OrderAsk,
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(order.OrderID, "MO-"))
	assert.Equal(t, 5250.0, order.TotalPrice)
	assert.Equal(t, OrderAsk, order.Type)
}

func TestCreateOrderDefaultsToBenchmarkPrice(t *testing.T) {
	service := newTestService(t)

	order, err := service.CreateOrder(&CreateMarketOrderRequest{
		AssetName: "Retrofit Carbon Sink",
		Amount:    200,
		Type:      OrderBid,
	})
	require.NoError(t, err)

	assert.Equal(t, assets.UnitPrice, order.PricePerUnit)
	assert.Equal(t, 200*assets.UnitPrice, order.TotalPrice)
	assert.Equal(t, "zero-carbon-park", order.Seller)
}

func TestCreateOrderValidation(t *testing.T) {
	service := newTestService(t)

	cases := []struct {
		name string
		req  CreateMarketOrderRequest
	}{
		{"bad type", CreateMarketOrderRequest{AssetName: "X", Amount: 10, Type: "short"}},
		{"zero amount", CreateMarketOrderRequest{AssetName: "X", Amount: 0, Type: OrderAsk}},
		{"negative price", CreateMarketOrderRequest{AssetName: "X", Amount: 10, PricePerUnit: -1, Type: OrderAsk}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.CreateOrder(&tc.req)
			var verr *types.ValidationError
			require.ErrorAs(t, err, &verr)
		})
	}
}

func TestCancelOrder(t *testing.T) {
	service := newTestService(t)

	order, err := service.CreateOrder(&CreateMarketOrderRequest{
		AssetName: "Solar Reduction",
		Amount:    50,
		Type:      OrderAsk,
	})
	require.NoError(t, err)

	require.NoError(t, service.CancelOrder(order.OrderID))

	_, err = service.GetOrder(order.OrderID)
	var nferr *types.NotFoundError
	require.ErrorAs(t, err, &nferr)

	err = service.CancelOrder(order.OrderID)
	require.ErrorAs(t, err, &nferr)
}

func TestListOrdersFiltersByType(t *testing.T) {
	service := newTestService(t)

	_, err := service.CreateOrder(&CreateMarketOrderRequest{AssetName: "A", Amount: 10, Type: OrderAsk})
	require.NoError(t, err)
	_, err = service.CreateOrder(&CreateMarketOrderRequest{AssetName: "B", Amount: 20, Type: OrderBid})
	require.NoError(t, err)

	asks, err := service.ListOrders(OrderAsk)
	require.NoError(t, err)
	assert.Len(t, asks, 1)

	all, err := service.ListOrders("")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSyncPlatformRecordsOutcome(t *testing.T) {
	service := newTestService(t)

	require.NoError(t, service.db.CreatePlatform(&TradingPlatform{
		PlatformID: "TP-001",
		Name:       "Carbon Asset Trading Center",
		Type:       PlatformCarbonExchange,
		Status:     StatusPending,
	}))

	synced, err := service.SyncPlatform("TP-001")
	require.NoError(t, err)
	assert.Contains(t, []string{StatusConnected, StatusDisconnected}, synced.Status)
	if synced.Status == StatusConnected {
		assert.WithinDuration(t, time.Now(), synced.LastSync, 5*time.Second)
	}

	_, err = service.SyncPlatform("TP-missing")
	var nferr *types.NotFoundError
	require.ErrorAs(t, err, &nferr)
}
