package assets

import (
	"time"

	"gorm.io/gorm"
)

// UnitPrice is the reference value of one tCO2e in e-CNY, used to derive
// estimated asset values at registration and mint time.
const UnitPrice = 60.0

// Asset lifecycle statuses.
const (
	StatusPending   = "PENDING"
	StatusAudited   = "AUDITED"
	StatusTokenized = "TOKENIZED"
	StatusPledged   = "PLEDGED"
	StatusListed    = "LISTED"
	StatusFrozen    = "FROZEN"
	StatusRetired   = "RETIRED"
)

// allowedTransitions is the legal lifecycle table. Cross-jumps (e.g.
// PENDING straight to PLEDGED) are rejected. RETIRED is terminal.
var allowedTransitions = map[string][]string{
	StatusPending:   {StatusAudited, StatusRetired},
	StatusAudited:   {StatusTokenized, StatusRetired},
	StatusTokenized: {StatusPledged, StatusListed, StatusRetired},
	StatusPledged:   {StatusTokenized, StatusRetired},
	StatusListed:    {StatusTokenized, StatusRetired},
	StatusFrozen:    {StatusRetired},
	StatusRetired:   {},
}

// CanTransition reports whether a status transition is legal.
func CanTransition(from, to string) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// CarbonAsset is a unit of claimed emission reduction. TokenID and the
// ledger reference (BlockHash/BlockHeight) are present iff the asset
// has been tokenized.
type CarbonAsset struct {
	gorm.Model         `json:"-"`
	AssetID            string    `gorm:"uniqueIndex" json:"id"`
	ProjectName        string    `json:"project_name"`
	Category           string    `json:"category"`
	Location           string    `json:"location"`
	DeviceID           string    `json:"device_id"`
	BaselineEmission   float64   `json:"baseline_emission"`
	Amount             float64   `json:"amount"` // claimed reduction volume in tCO2e
	Unit               string    `json:"unit"`
	Status             string    `json:"status"`
	Owner              string    `json:"owner"`
	EstimatedValue     float64   `json:"estimated_value"`
	TokenID            string    `json:"token_id,omitempty"`
	BlockHash          string    `json:"block_hash,omitempty"`
	BlockHeight        int64     `json:"block_height,omitempty"`
	ContractAddress    string    `json:"contract_address,omitempty"`
	TokenStandard      string    `json:"token_standard,omitempty"`
	MetadataURI        string    `json:"metadata_uri,omitempty"`
	VerificationStatus string    `json:"verification_status,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// CreateAssetRequest is the payload for asset registration.
type CreateAssetRequest struct {
	ProjectName      string  `json:"project_name" binding:"required"`
	Category         string  `json:"category"`
	Location         string  `json:"location"`
	DeviceID         string  `json:"device_id"`
	BaselineEmission float64 `json:"baseline_emission"`
	Amount           float64 `json:"amount" binding:"required"`
	Owner            string  `json:"owner"`
}

// TokenizeRequest is the payload for minting an audited asset. Volume
// allows operator correction of the claimed amount at mint time.
type TokenizeRequest struct {
	Volume float64 `json:"volume" binding:"required"`
}
