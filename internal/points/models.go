package points

import (
	"time"

	"gorm.io/gorm"
)

// Points transaction types.
const (
	TypeEarn     = "earn"
	TypeRedeem   = "redeem"
	TypeExpire   = "expire"
	TypeTransfer = "transfer"
)

// Reward types. Only digital_rmb carries a monetary credit to the
// wallet on redemption.
const (
	RewardTypeDigitalRMB = "digital_rmb"
	RewardTypeCoupon     = "coupon"
	RewardTypeDiscount   = "discount"
	RewardTypeService    = "service"
)

const (
	TxStatusCompleted = "completed"
	TxStatusPending   = "pending"
	TxStatusFailed    = "failed"
)

// CarbonPointsAccount is a per-owner point balance. The conservation
// law totalPoints == availablePoints + usedPoints holds after every
// mutation; redemption moves points from available to used and never
// reduces the total.
type CarbonPointsAccount struct {
	gorm.Model      `json:"-"`
	AccountID       string    `gorm:"uniqueIndex" json:"id"`
	OwnerID         string    `gorm:"index" json:"owner_id"`
	OwnerType       string    `json:"owner_type"` // enterprise or individual
	OwnerName       string    `json:"owner_name"`
	TotalPoints     int64     `json:"total_points"`
	AvailablePoints int64     `json:"available_points"`
	UsedPoints      int64     `json:"used_points"`
	LastUpdated     time.Time `json:"last_updated"`
}

// CarbonPointsTransaction is an append-only record of a points
// mutation. Points is always a positive magnitude; the type carries the
// direction.
type CarbonPointsTransaction struct {
	gorm.Model  `json:"-"`
	TxID        string    `gorm:"uniqueIndex" json:"id"`
	AccountID   string    `gorm:"index" json:"account_id"`
	Type        string    `json:"type"`
	Points      int64     `json:"points"`
	Description string    `json:"description"`
	Source      string    `json:"source"`
	Timestamp   time.Time `json:"timestamp"`
	Status      string    `json:"status"`
	TxHash      string    `json:"tx_hash,omitempty"`
}

// PointsReward is a catalog entry. Static reference data; the engine
// reads it but never mutates it.
type PointsReward struct {
	gorm.Model     `json:"-"`
	RewardID       string  `gorm:"uniqueIndex" json:"id"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	PointsRequired int64   `json:"points_required"`
	RewardType     string  `json:"reward_type"`
	RewardValue    float64 `json:"reward_value"`
	RewardUnit     string  `json:"reward_unit"`
	Available      bool    `json:"available"`
}

// EarnRequest is the payload for points accrual.
type EarnRequest struct {
	AccountID   string `json:"account_id" binding:"required"`
	Points      int64  `json:"points" binding:"required"`
	Source      string `json:"source"`
	Description string `json:"description"`
}

// RedeemRequest is the payload for reward redemption.
type RedeemRequest struct {
	AccountID string `json:"account_id" binding:"required"`
	RewardID  string `json:"reward_id" binding:"required"`
}

// RedeemResponse is returned on redemption. WalletBalance is populated
// when the reward carried a monetary credit.
type RedeemResponse struct {
	Transaction   *CarbonPointsTransaction `json:"transaction"`
	Account       *CarbonPointsAccount     `json:"account"`
	WalletBalance float64                  `json:"wallet_balance,omitempty"`
}
