package ledger

import (
	"time"

	"gorm.io/gorm"
)

// Chain seed values. The simulated ledger continues from the height the
// park chain had reached before this system took over record keeping,
// and the wallet opens with the operator's existing e-CNY balance.
const (
	GenesisHeight  = 12054
	OpeningBalance = 1240500.00
)

// Validator labels identifying which collaborator role produced a block.
const (
	ValidatorParkOperator         = "park-operator"
	ValidatorThirdPartyVerifier   = "third-party-verifier"
	ValidatorFinancialInstitution = "financial-institution"
	ValidatorTradingCenter        = "trading-center"
	ValidatorSmartContract        = "smart-contract"
)

// Contract event statuses.
const (
	EventStatusSuccess    = "SUCCESS"
	EventStatusProcessing = "PROCESSING"
	EventStatusFailed     = "FAILED"
)

// Block is one entry in the append-only ledger. Heights are strictly
// increasing with no gaps; rows are never updated once written.
type Block struct {
	gorm.Model   `json:"-"`
	Height       int64     `gorm:"uniqueIndex" json:"height"`
	Hash         string    `gorm:"uniqueIndex" json:"hash"`
	Timestamp    time.Time `json:"timestamp"`
	Transactions int       `json:"transactions"`
	Validator    string    `json:"validator"`
}

// ContractEvent is an append-only business event correlated with a
// block, simulating smart-contract execution output. BlockNumber is set
// when the event represents an on-ledger monetary effect.
type ContractEvent struct {
	gorm.Model   `json:"-"`
	EventID      string    `gorm:"uniqueIndex" json:"id"`
	ContractName string    `json:"contract_name"`
	Event        string    `json:"event"`
	Status       string    `json:"status"`
	Timestamp    time.Time `json:"timestamp"`
	Hash         string    `json:"hash"`
	Amount       float64   `json:"amount,omitempty"`
	Description  string    `json:"description,omitempty"`
	FromAddr     string    `json:"from,omitempty"`
	ToAddr       string    `json:"to,omitempty"`
	BlockNumber  int64     `json:"block_number,omitempty"`
}

// Wallet is the platform's single e-CNY balance. Exactly one row
// exists; every mutation goes through Service.AdjustWallet inside an
// engine transaction.
type Wallet struct {
	gorm.Model `json:"-"`
	Balance    float64   `json:"balance"`
	UpdatedAt  time.Time `json:"updated_at"`
}
