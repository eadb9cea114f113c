package lending

import (
	"time"

	"gorm.io/gorm"
)

// Loan statuses. REPAID is representable for the future repayment flow
// but no current operation produces it.
const (
	StatusNormal        = "NORMAL"
	StatusPendingReview = "PENDING_REVIEW"
	StatusRepaid        = "REPAID"
)

// ReviewThresholdPercent is the loan-to-value ceiling for automatic
// disbursement. Above it the loan is created unfunded and routed to
// manual review.
const ReviewThresholdPercent = 70

// ActiveLoan is a financing instrument collateralized by one tokenized
// asset. LTVPercent reflects approval-time risk and never changes.
type ActiveLoan struct {
	gorm.Model        `json:"-"`
	LoanID            string    `gorm:"uniqueIndex" json:"id"`
	AssetID           string    `json:"asset_id"`
	TokenID           string    `json:"token_id"`
	TokenName         string    `json:"token_name"`
	Principal         float64   `json:"principal"`
	Currency          string    `json:"currency"`
	Rate              float64   `json:"rate"`
	Tenor             int       `json:"tenor"` // months
	LTVPercent        int       `json:"ltv_percent"`
	Status            string    `json:"status"`
	SettlementChannel string    `json:"settlement_channel"`
	CreateDate        time.Time `json:"create_date"`
}

// CreateLoanRequest is the payload for pledge financing.
type CreateLoanRequest struct {
	AssetID           string  `json:"asset_id" binding:"required"`
	Principal         float64 `json:"principal" binding:"required"`
	Rate              float64 `json:"rate"`
	Tenor             int     `json:"tenor"`
	SettlementChannel string  `json:"settlement_channel"`
}

// LoanResponse is returned on loan creation. Funded reports whether the
// principal was disbursed or the loan went to manual review.
type LoanResponse struct {
	Loan          *ActiveLoan `json:"loan"`
	Funded        bool        `json:"funded"`
	WalletBalance float64     `json:"wallet_balance"`
}
