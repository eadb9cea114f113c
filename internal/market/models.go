package market

import (
	"time"

	"gorm.io/gorm"
)

// Platform types.
const (
	PlatformCarbonExchange = "carbon_exchange"
	PlatformDigitalRMB     = "digital_rmb_platform"
)

// Platform connection statuses.
const (
	StatusConnected    = "connected"
	StatusDisconnected = "disconnected"
	StatusPending      = "pending"
)

// Order book sides.
const (
	OrderAsk = "ask"
	OrderBid = "bid"
)

// TradingPlatform is an external venue the park routes trades to.
type TradingPlatform struct {
	gorm.Model  `json:"-"`
	PlatformID  string    `gorm:"uniqueIndex" json:"id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Status      string    `json:"status"`
	APIEndpoint string    `json:"api_endpoint,omitempty"`
	LastSync    time.Time `json:"last_sync,omitempty"`
}

// MarketOrder is an open ask or bid on the park's order book. Orders
// are quotes only; settlement happens through the trading engine.
type MarketOrder struct {
	gorm.Model   `json:"-"`
	OrderID      string    `gorm:"uniqueIndex" json:"id"`
	AssetName    string    `json:"asset_name"`
	Amount       float64   `json:"amount"`
	PricePerUnit float64   `json:"price_per_unit"`
	TotalPrice   float64   `json:"total_price"`
	Seller       string    `json:"seller"`
	Time         time.Time `json:"time"`
	Type         string    `json:"type"`
}

// CreateMarketOrderRequest is the payload for posting a quote.
type CreateMarketOrderRequest struct {
	AssetName    string  `json:"asset_name" binding:"required"`
	Amount       float64 `json:"amount" binding:"required"`
	PricePerUnit float64 `json:"price_per_unit"`
	Seller       string  `json:"seller"`
	Type         string  `json:"type" binding:"required"`
}
