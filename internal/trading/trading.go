package trading

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/RWAworkteam/ZeroCarbon-OS-1/internal/assets"
	"github.com/RWAworkteam/ZeroCarbon-OS-1/internal/ledger"
	"github.com/RWAworkteam/ZeroCarbon-OS-1/internal/types"
	"github.com/RWAworkteam/ZeroCarbon-OS-1/pkg/identifier"
	"github.com/RWAworkteam/ZeroCarbon-OS-1/pkg/response"
)

// Service settles carbon certificate trades against the wallet ledger.
type Service struct {
	db     *Database
	assets *assets.Service
	ledger *ledger.Service
	gen    identifier.Generator
}

// NewService creates a trade settlement service.
func NewService(gormDB *gorm.DB, assetService *assets.Service, ledgerService *ledger.Service, gen identifier.Generator) *Service {
	return &Service{
		db:     NewDatabase(gormDB),
		assets: assetService,
		ledger: ledgerService,
		gen:    gen,
	}
}

// CreateTrade settles a buy or sell in one transaction: the trade
// record, the signed wallet delta (sell credits, buy debits) and one
// block from the trading center commit together.
//
// Asset lookup is best-effort: a trade against an unknown asset id is
// still recorded under a placeholder token name. Buys carry no balance
// sufficiency check and may drive the wallet negative; both behaviors
// mirror the trading center's permissive contract.
func (s *Service) CreateTrade(req *CreateTradeRequest, idempotencyKey string) (*TradeResponse, error) {
	logger := log.With().
		Str("side", req.Side).
		Float64("quantity", req.Quantity).
		Float64("price", req.Price).
		Str("service", "trading").
		Logger()

	// Replay of a previously settled trade returns the original record
	if idempotencyKey != "" {
		record, err := s.db.GetIdempotencyRecord(idempotencyKey)
		if err != nil {
			return nil, err
		}
		if record != nil && record.ExpiresAt.After(time.Now()) {
			existing, err := s.db.GetTrade(record.ResourceID)
			if err != nil {
				return nil, err
			}
			balance, err := s.ledger.Balance()
			if err != nil {
				return nil, err
			}
			logger.Info().Str("trade_id", existing.TradeID).Msg("returning idempotent trade")
			return &TradeResponse{Trade: existing, WalletBalance: balance}, nil
		}
	}

	if req.Side != SideBuy && req.Side != SideSell {
		return nil, types.NewValidationError("side", "must be buy or sell")
	}
	if req.Quantity <= 0 {
		return nil, types.NewValidationError("quantity", "must be positive")
	}
	if req.Price <= 0 {
		return nil, types.NewValidationError("price", "must be positive")
	}

	tokenName := "Unknown Asset"
	if req.AssetID != "" {
		if asset, err := s.assets.GetAsset(req.AssetID); err == nil {
			tokenName = asset.ProjectName
		}
	}

	total := req.Quantity * req.Price
	delta := total
	if req.Side == SideBuy {
		delta = -total
	}

	trade := &TradeRecord{
		TradeID:           s.gen.EntityID("TR-"),
		Time:              time.Now(),
		AssetID:           req.AssetID,
		TokenName:         tokenName,
		Side:              req.Side,
		Quantity:          req.Quantity,
		Price:             req.Price,
		Venue:             req.Venue,
		SettlementChannel: req.SettlementChannel,
		Status:            StatusSettled,
	}

	var balance float64
	err := s.ledger.RunAtomic(func(tx *gorm.DB) error {
		if err := tx.Create(trade).Error; err != nil {
			return err
		}

		if idempotencyKey != "" {
			record := IdempotencyRecord{
				IdempotencyKey: idempotencyKey,
				ResourceID:     trade.TradeID,
				ResourceType:   "trade",
				ExpiresAt:      time.Now().Add(24 * time.Hour),
			}
			if err := tx.Create(&record).Error; err != nil {
				return err
			}
		}

		newBalance, err := s.ledger.AdjustWallet(tx, delta)
		if err != nil {
			return err
		}
		balance = newBalance

		_, err = s.ledger.AppendBlock(tx, ledger.ValidatorTradingCenter, 1)
		return err
	})
	if err != nil {
		logger.Error().Err(err).Msg("trade settlement failed")
		return nil, err
	}

	logger.Info().
		Str("trade_id", trade.TradeID).
		Str("token_name", tokenName).
		Float64("total", total).
		Float64("wallet_balance", balance).
		Msg("trade settled")

	return &TradeResponse{Trade: trade, WalletBalance: balance}, nil
}

// GetTrade retrieves a trade record by its ID.
func (s *Service) GetTrade(tradeID string) (*TradeRecord, error) {
	return s.db.GetTrade(tradeID)
}

// ListTrades retrieves trade records with optional side and venue filters.
func (s *Service) ListTrades(side, venue string) ([]TradeRecord, error) {
	return s.db.ListTrades(side, venue)
}

// GinHandlers contains HTTP handlers for trading endpoints
type GinHandlers struct {
	service *Service
}

// NewGinHandlers creates a new set of HTTP handlers for trading endpoints
func NewGinHandlers(service *Service) *GinHandlers {
	return &GinHandlers{
		service: service,
	}
}

// CreateTradeHandler handles POST requests to settle trades
// Supports an optional Idempotency-Key header
func (h *GinHandlers) CreateTradeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateTradeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, err.Error())
			return
		}

		tradeResponse, err := h.service.CreateTrade(&req, c.GetHeader("Idempotency-Key"))
		response.Handle(c, tradeResponse, err)
	}
}

// GetTradeHandler handles GET requests for a single trade record
func (h *GinHandlers) GetTradeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		trade, err := h.service.GetTrade(c.Param("trade_id"))
		response.Handle(c, trade, err)
	}
}

// ListTradesHandler handles GET requests for trade records with
// optional side and venue query filters
func (h *GinHandlers) ListTradesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		trades, err := h.service.ListTrades(c.Query("side"), c.Query("venue"))
		if err != nil {
			response.Handle(c, nil, err)
			return
		}
		response.Success(c, types.ListResponse{Items: trades, Total: int64(len(trades))})
	}
}
