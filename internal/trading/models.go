package trading

import (
	"time"

	"gorm.io/gorm"
)

// Trade sides.
const (
	SideBuy  = "buy"
	SideSell = "sell"
)

// StatusSettled is the only trade status: no partial fills are modeled,
// every accepted trade settles immediately.
const StatusSettled = "SETTLED"

// TradeRecord is a settled buy/sell event. Creation is atomic with the
// wallet delta and one block append.
type TradeRecord struct {
	gorm.Model        `json:"-"`
	TradeID           string    `gorm:"uniqueIndex" json:"id"`
	Time              time.Time `json:"time"`
	AssetID           string    `json:"asset_id,omitempty"`
	TokenName         string    `json:"token_name"`
	Side              string    `json:"side"`
	Quantity          float64   `json:"quantity"`
	Price             float64   `json:"price"`
	Venue             string    `json:"venue"`
	SettlementChannel string    `json:"settlement_channel"`
	Status            string    `json:"status"`
}

// IdempotencyRecord prevents duplicate trade creation on retried
// requests.
type IdempotencyRecord struct {
	gorm.Model
	IdempotencyKey string    `gorm:"uniqueIndex" json:"idempotency_key"`
	ResourceID     string    `json:"resource_id"`
	ResourceType   string    `json:"resource_type"`
	ExpiresAt      time.Time `json:"expires_at"`
}

// CreateTradeRequest is the payload for trade settlement.
type CreateTradeRequest struct {
	AssetID           string  `json:"asset_id"`
	Side              string  `json:"side" binding:"required"`
	Quantity          float64 `json:"quantity" binding:"required"`
	Price             float64 `json:"price" binding:"required"`
	Venue             string  `json:"venue"`
	SettlementChannel string  `json:"settlement_channel"`
}

// TradeResponse is returned on trade settlement.
type TradeResponse struct {
	Trade         *TradeRecord `json:"trade"`
	WalletBalance float64      `json:"wallet_balance"`
}
