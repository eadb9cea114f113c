package market

import (
	"math/rand"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/RWAworkteam/ZeroCarbon-OS-1/internal/assets"
	"github.com/RWAworkteam/ZeroCarbon-OS-1/internal/types"
	"github.com/RWAworkteam/ZeroCarbon-OS-1/pkg/identifier"
	"github.com/RWAworkteam/ZeroCarbon-OS-1/pkg/response"
)

// Connectivity simulation bounds for platform sync.
const (
	minSyncLatencyMs = 5
	maxSyncLatencyMs = 80
	syncSuccessRate  = 0.95
)

// Service owns the order book and the venue registry.
type Service struct {
	db  *Database
	gen identifier.Generator
}

// NewService creates a market service.
func NewService(gormDB *gorm.DB, gen identifier.Generator) *Service {
	return &Service{
		db:  NewDatabase(gormDB),
		gen: gen,
	}
}

// CreateOrder posts an ask or bid to the park order book. A zero price
// falls back to the benchmark unit price.
func (s *Service) CreateOrder(req *CreateMarketOrderRequest) (*MarketOrder, error) {
	if req.Type != OrderAsk && req.Type != OrderBid {
		return nil, types.NewValidationError("type", "must be ask or bid")
	}
	if req.Amount <= 0 {
		return nil, types.NewValidationError("amount", "must be greater than zero")
	}
	if req.PricePerUnit < 0 {
		return nil, types.NewValidationError("price_per_unit", "must not be negative")
	}

	price := req.PricePerUnit
	if price == 0 {
		price = assets.UnitPrice
	}

	seller := req.Seller
	if seller == "" {
		seller = "zero-carbon-park"
	}

	order := &MarketOrder{
		OrderID:      s.gen.EntityID("MO-"),
		AssetName:    req.AssetName,
		Amount:       req.Amount,
		PricePerUnit: price,
		TotalPrice:   req.Amount * price,
		Seller:       seller,
		Time:         time.Now(),
		Type:         req.Type,
	}

	if err := s.db.CreateOrder(order); err != nil {
		return nil, err
	}

	log.Info().
		Str("order_id", order.OrderID).
		Str("type", order.Type).
		Float64("amount", order.Amount).
		Float64("total_price", order.TotalPrice).
		Str("service", "market").
		Msg("market order posted")

	return order, nil
}

// GetOrder retrieves a single order book entry.
func (s *Service) GetOrder(orderID string) (*MarketOrder, error) {
	return s.db.GetOrder(orderID)
}

// ListOrders retrieves the order book with an optional side filter.
func (s *Service) ListOrders(orderType string) ([]MarketOrder, error) {
	return s.db.ListOrders(orderType)
}

// CancelOrder removes a quote from the book.
func (s *Service) CancelOrder(orderID string) error {
	if err := s.db.DeleteOrder(orderID); err != nil {
		return err
	}

	log.Info().
		Str("order_id", orderID).
		Str("service", "market").
		Msg("market order cancelled")

	return nil
}

// ListPlatforms retrieves the venue registry with an optional status
// filter.
func (s *Service) ListPlatforms(status string) ([]TradingPlatform, error) {
	return s.db.ListPlatforms(status)
}

// SyncPlatform simulates a connectivity check against one venue and
// records the outcome.
func (s *Service) SyncPlatform(platformID string) (*TradingPlatform, error) {
	platform, err := s.db.GetPlatform(platformID)
	if err != nil {
		return nil, err
	}

	logger := log.With().
		Str("platform_id", platform.PlatformID).
		Str("name", platform.Name).
		Str("service", "market").
		Logger()

	// Simulate network latency to the venue
	latency := rand.Intn(maxSyncLatencyMs-minSyncLatencyMs+1) + minSyncLatencyMs
	time.Sleep(time.Duration(latency) * time.Millisecond)

	if rand.Float64() > syncSuccessRate {
		platform.Status = StatusDisconnected
		logger.Warn().Int("latency_ms", latency).Msg("platform sync failed")
	} else {
		platform.Status = StatusConnected
		platform.LastSync = time.Now()
		logger.Info().Int("latency_ms", latency).Msg("platform sync completed")
	}

	if err := s.db.UpdatePlatform(platform); err != nil {
		return nil, err
	}
	return platform, nil
}

// GetDB exposes the database layer for seeding.
func (s *Service) GetDB() *Database {
	return s.db
}

// GinHandlers contains HTTP handlers for market endpoints
type GinHandlers struct {
	service *Service
}

// NewGinHandlers creates a new set of HTTP handlers for market endpoints
func NewGinHandlers(service *Service) *GinHandlers {
	return &GinHandlers{
		service: service,
	}
}

// CreateOrderHandler handles POST requests to post order book quotes
func (h *GinHandlers) CreateOrderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateMarketOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, err.Error())
			return
		}

		order, err := h.service.CreateOrder(&req)
		response.Handle(c, order, err)
	}
}

// GetOrderHandler handles GET requests for a single order
func (h *GinHandlers) GetOrderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		order, err := h.service.GetOrder(c.Param("order_id"))
		response.Handle(c, order, err)
	}
}

// ListOrdersHandler handles GET requests for the order book
func (h *GinHandlers) ListOrdersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		orders, err := h.service.ListOrders(c.Query("type"))
		if err != nil {
			response.Handle(c, nil, err)
			return
		}
		response.Success(c, types.ListResponse{Items: orders, Total: int64(len(orders))})
	}
}

// CancelOrderHandler handles DELETE requests to withdraw a quote
func (h *GinHandlers) CancelOrderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID := c.Param("order_id")
		if err := h.service.CancelOrder(orderID); err != nil {
			response.Handle(c, nil, err)
			return
		}
		response.Success(c, gin.H{"id": orderID, "cancelled": true})
	}
}

// ListPlatformsHandler handles GET requests for the venue registry
func (h *GinHandlers) ListPlatformsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		platforms, err := h.service.ListPlatforms(c.Query("status"))
		if err != nil {
			response.Handle(c, nil, err)
			return
		}
		response.Success(c, types.ListResponse{Items: platforms, Total: int64(len(platforms))})
	}
}

// SyncPlatformHandler handles POST requests to refresh venue connectivity
func (h *GinHandlers) SyncPlatformHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		platform, err := h.service.SyncPlatform(c.Param("platform_id"))
		response.Handle(c, platform, err)
	}
}
