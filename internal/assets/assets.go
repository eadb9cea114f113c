package assets

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/RWAworkteam/ZeroCarbon-OS-1/internal/ledger"
	"github.com/RWAworkteam/ZeroCarbon-OS-1/internal/types"
	"github.com/RWAworkteam/ZeroCarbon-OS-1/pkg/identifier"
	"github.com/RWAworkteam/ZeroCarbon-OS-1/pkg/response"
)

// Service owns carbon asset records and enforces the lifecycle state
// machine. Tokenization is the only asset operation that writes to the
// chain; registration, audit and retirement are pure registry updates.
type Service struct {
	db     *Database
	ledger *ledger.Service
	gen    identifier.Generator
}

// NewService creates an asset registry service.
func NewService(gormDB *gorm.DB, ledgerService *ledger.Service, gen identifier.Generator) *Service {
	return &Service{
		db:     NewDatabase(gormDB),
		ledger: ledgerService,
		gen:    gen,
	}
}

// RegisterAsset creates a new asset in PENDING status. The estimated
// value is derived from the claimed reduction volume at the reference
// unit price. No other aggregate is touched.
func (s *Service) RegisterAsset(req *CreateAssetRequest) (*CarbonAsset, error) {
	if req.Amount <= 0 {
		return nil, types.NewValidationError("amount", "must be positive")
	}

	owner := req.Owner
	if owner == "" {
		owner = "park-operator"
	}

	asset := &CarbonAsset{
		AssetID:          s.gen.EntityID("A-"),
		ProjectName:      req.ProjectName,
		Category:         req.Category,
		Location:         req.Location,
		DeviceID:         req.DeviceID,
		BaselineEmission: req.BaselineEmission,
		Amount:           req.Amount,
		Unit:             "tCO2e/yr",
		Status:           StatusPending,
		Owner:            owner,
		EstimatedValue:   req.Amount * UnitPrice,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}

	if err := s.db.CreateAsset(asset); err != nil {
		return nil, err
	}

	log.Info().
		Str("asset_id", asset.AssetID).
		Str("project", asset.ProjectName).
		Float64("amount", asset.Amount).
		Str("service", "assets").
		Msg("registered new carbon asset")

	return asset, nil
}

// Tokenize mints an audited asset onto the simulated chain. It assigns
// a token id, refreshes the estimated value from the corrected volume,
// and appends exactly one block signed by the third-party verifier.
// The asset update and block append commit as a unit.
func (s *Service) Tokenize(assetID string, volume float64) (*CarbonAsset, error) {
	logger := log.With().
		Str("asset_id", assetID).
		Str("service", "assets").
		Logger()

	if volume <= 0 {
		return nil, types.NewValidationError("volume", "must be positive")
	}

	var minted *CarbonAsset
	err := s.ledger.RunAtomic(func(tx *gorm.DB) error {
		asset, err := getAsset(tx, assetID)
		if err != nil {
			return err
		}
		if asset.Status != StatusAudited {
			return types.NewInvalidStateError("asset", assetID, asset.Status, StatusTokenized)
		}

		block, err := s.ledger.AppendBlock(tx, ledger.ValidatorThirdPartyVerifier, 1)
		if err != nil {
			return err
		}

		asset.Status = StatusTokenized
		asset.TokenID = s.gen.TokenID()
		asset.Amount = volume
		asset.EstimatedValue = volume * UnitPrice
		asset.BlockHash = block.Hash
		asset.BlockHeight = block.Height
		asset.ContractAddress = "0x7f3a2b1c4d5e6f7a8b9c0d1e2f3a4b5c6d7e8f9a0"
		asset.TokenStandard = "ERC-721"
		asset.MetadataURI = "ipfs://" + s.gen.Hash()
		asset.VerificationStatus = "verified"
		asset.UpdatedAt = time.Now()

		if err := tx.Save(asset).Error; err != nil {
			return err
		}

		minted = asset
		return nil
	})
	if err != nil {
		logger.Error().Err(err).Msg("tokenization failed")
		return nil, err
	}

	logger.Info().
		Str("token_id", minted.TokenID).
		Int64("block_height", minted.BlockHeight).
		Float64("estimated_value", minted.EstimatedValue).
		Msg("asset tokenized")

	return minted, nil
}

// Audit moves a pending asset to AUDITED. This is the interface for the
// external audit collaborator; the engine itself never audits.
func (s *Service) Audit(assetID string) (*CarbonAsset, error) {
	return s.transition(assetID, StatusAudited)
}

// Retire moves an asset to its terminal RETIRED status.
func (s *Service) Retire(assetID string) (*CarbonAsset, error) {
	return s.transition(assetID, StatusRetired)
}

func (s *Service) transition(assetID, target string) (*CarbonAsset, error) {
	asset, err := s.db.GetAsset(assetID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(asset.Status, target) {
		return nil, types.NewInvalidStateError("asset", assetID, asset.Status, target)
	}

	asset.Status = target
	asset.UpdatedAt = time.Now()
	if err := s.db.UpdateAsset(asset); err != nil {
		return nil, err
	}

	log.Info().
		Str("asset_id", assetID).
		Str("status", target).
		Str("service", "assets").
		Msg("asset status updated")

	return asset, nil
}

// MarkPledged flips a tokenized asset to PLEDGED inside the caller's
// transaction. Used by the lending engine only.
func (s *Service) MarkPledged(tx *gorm.DB, assetID string) error {
	return markStatus(tx, assetID, StatusPledged)
}

// MarkUnpledged releases a pledged asset back to TOKENIZED inside the
// caller's transaction. No current operation drives this; it exists so
// repayment can be represented when it lands.
func (s *Service) MarkUnpledged(tx *gorm.DB, assetID string) error {
	return markStatus(tx, assetID, StatusTokenized)
}

func markStatus(tx *gorm.DB, assetID, target string) error {
	asset, err := getAsset(tx, assetID)
	if err != nil {
		return err
	}
	if !CanTransition(asset.Status, target) {
		return types.NewInvalidStateError("asset", assetID, asset.Status, target)
	}

	asset.Status = target
	asset.UpdatedAt = time.Now()
	return tx.Save(asset).Error
}

// GetAsset retrieves an asset by its ID.
func (s *Service) GetAsset(assetID string) (*CarbonAsset, error) {
	return s.db.GetAsset(assetID)
}

// ListAssets retrieves assets with optional status and owner filters.
func (s *Service) ListAssets(status, owner string) ([]CarbonAsset, error) {
	return s.db.ListAssets(status, owner)
}

// GinHandlers contains HTTP handlers for asset endpoints
type GinHandlers struct {
	service *Service
}

// NewGinHandlers creates a new set of HTTP handlers for asset endpoints
func NewGinHandlers(service *Service) *GinHandlers {
	return &GinHandlers{
		service: service,
	}
}

// CreateAssetHandler handles POST requests to register new assets
func (h *GinHandlers) CreateAssetHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateAssetRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, err.Error())
			return
		}

		asset, err := h.service.RegisterAsset(&req)
		response.Handle(c, asset, err)
	}
}

// GetAssetHandler handles GET requests for a single asset
func (h *GinHandlers) GetAssetHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		asset, err := h.service.GetAsset(c.Param("asset_id"))
		response.Handle(c, asset, err)
	}
}

// ListAssetsHandler handles GET requests for the asset list with
// optional status and owner query filters
func (h *GinHandlers) ListAssetsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		assetList, err := h.service.ListAssets(c.Query("status"), c.Query("owner"))
		if err != nil {
			response.Handle(c, nil, err)
			return
		}
		response.Success(c, types.ListResponse{Items: assetList, Total: int64(len(assetList))})
	}
}

// TokenizeAssetHandler handles POST requests to mint audited assets
func (h *GinHandlers) TokenizeAssetHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req TokenizeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, err.Error())
			return
		}

		asset, err := h.service.Tokenize(c.Param("asset_id"), req.Volume)
		response.Handle(c, asset, err)
	}
}

// AuditAssetHandler handles POST requests from the audit collaborator
// Requires internal authentication
func (h *GinHandlers) AuditAssetHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		asset, err := h.service.Audit(c.Param("asset_id"))
		response.Handle(c, asset, err)
	}
}

// RetireAssetHandler handles POST requests to retire assets
// Requires internal authentication
func (h *GinHandlers) RetireAssetHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		asset, err := h.service.Retire(c.Param("asset_id"))
		response.Handle(c, asset, err)
	}
}
