package ledger

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/RWAworkteam/ZeroCarbon-OS-1/internal/types"
	"github.com/RWAworkteam/ZeroCarbon-OS-1/pkg/identifier"
	"github.com/RWAworkteam/ZeroCarbon-OS-1/pkg/response"
)

// Service owns the block store, the contract-event store and the wallet
// ledger. Every business engine appends through it, which keeps height
// assignment and balance mutation in one place.
type Service struct {
	db  *Database
	gdb *gorm.DB
	gen identifier.Generator

	// Serializes engine transactions. Height assignment reads MAX(height)
	// before inserting, so concurrent writers must not interleave.
	mu sync.Mutex
}

// NewService creates a ledger service with the given database
// connection and identifier generator.
func NewService(gormDB *gorm.DB, gen identifier.Generator) *Service {
	return &Service{
		db:  NewDatabase(gormDB),
		gdb: gormDB,
		gen: gen,
	}
}

// RunAtomic executes fn inside a single database transaction while
// holding the engine write lock. Business operations that touch more
// than one aggregate (asset + wallet + chain) must go through here so
// no partial state is ever observable.
func (s *Service) RunAtomic(fn func(tx *gorm.DB) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gdb.Transaction(fn)
}

// AppendBlock assigns the next height and writes one block inside the
// caller's transaction. Blocks are never updated or removed afterwards.
func (s *Service) AppendBlock(tx *gorm.DB, validator string, transactions int) (*Block, error) {
	var lastHeight int64
	if err := tx.Model(&Block{}).Select("COALESCE(MAX(height), 0)").Scan(&lastHeight).Error; err != nil {
		return nil, err
	}

	block := &Block{
		Height:       lastHeight + 1,
		Hash:         s.gen.Hash(),
		Timestamp:    time.Now(),
		Transactions: transactions,
		Validator:    validator,
	}

	if err := tx.Create(block).Error; err != nil {
		return nil, err
	}

	log.Debug().
		Int64("height", block.Height).
		Str("validator", validator).
		Str("service", "ledger").
		Msg("appended block")

	return block, nil
}

// AppendEvent writes one contract event inside the caller's
// transaction, assigning id, timestamp and hash when absent.
func (s *Service) AppendEvent(tx *gorm.DB, event *ContractEvent) (*ContractEvent, error) {
	if event.EventID == "" {
		event.EventID = s.gen.EntityID("SC-")
	}
	if event.Hash == "" {
		event.Hash = s.gen.Hash()
	}
	if event.Status == "" {
		event.Status = EventStatusSuccess
	}
	event.Timestamp = time.Now()

	if err := tx.Create(event).Error; err != nil {
		return nil, err
	}
	return event, nil
}

// AdjustWallet applies a signed delta to the wallet balance inside the
// caller's transaction and returns the resulting balance. Negative
// balances are permitted; buy-side trades carry no sufficiency check.
func (s *Service) AdjustWallet(tx *gorm.DB, delta float64) (float64, error) {
	var wallet Wallet
	if err := tx.First(&wallet).Error; err != nil {
		return 0, err
	}

	wallet.Balance += delta
	wallet.UpdatedAt = time.Now()
	if err := tx.Save(&wallet).Error; err != nil {
		return 0, err
	}

	log.Debug().
		Float64("delta", delta).
		Float64("balance", wallet.Balance).
		Str("service", "ledger").
		Msg("adjusted wallet balance")

	return wallet.Balance, nil
}

// Balance returns the current wallet balance.
func (s *Service) Balance() (float64, error) {
	wallet, err := s.db.GetWallet()
	if err != nil {
		return 0, err
	}
	return wallet.Balance, nil
}

// Height returns the current chain height.
func (s *Service) Height() (int64, error) {
	return s.db.MaxHeight()
}

// LatestBlocks returns blocks most-recent-first.
func (s *Service) LatestBlocks(limit int) ([]Block, error) {
	return s.db.LatestBlocks(limit)
}

// GetBlockByHeight returns the block at the given height.
func (s *Service) GetBlockByHeight(height int64) (*Block, error) {
	return s.db.GetBlockByHeight(height)
}

// GetBlockByHash returns the block with the given hash.
func (s *Service) GetBlockByHash(hash string) (*Block, error) {
	return s.db.GetBlockByHash(hash)
}

// ListEvents returns contract events most-recent-first with optional
// contract-name and status filters.
func (s *Service) ListEvents(contractName, status string, limit int) ([]ContractEvent, error) {
	return s.db.ListEvents(contractName, status, limit)
}

// GetEvent returns a single contract event by id.
func (s *Service) GetEvent(eventID string) (*ContractEvent, error) {
	return s.db.GetEvent(eventID)
}

// ChainStatus summarizes the ledger tail for dashboard consumers.
func (s *Service) ChainStatus() (*types.ChainStatus, error) {
	height, err := s.db.MaxHeight()
	if err != nil {
		return nil, err
	}
	blocks, err := s.db.CountBlocks()
	if err != nil {
		return nil, err
	}
	events, err := s.db.CountEvents()
	if err != nil {
		return nil, err
	}
	balance, err := s.Balance()
	if err != nil {
		return nil, err
	}

	return &types.ChainStatus{
		Height:        height,
		Blocks:        blocks,
		Events:        events,
		WalletBalance: balance,
	}, nil
}

// GinHandlers contains HTTP handlers for ledger read endpoints
type GinHandlers struct {
	service *Service
}

// NewGinHandlers creates a new set of HTTP handlers for ledger endpoints
func NewGinHandlers(service *Service) *GinHandlers {
	return &GinHandlers{
		service: service,
	}
}

func listLimit(c *gin.Context) int {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 500 {
			limit = parsed
		}
	}
	return limit
}

// GetBlocksHandler handles GET requests for the block list,
// most-recent-first.
func (h *GinHandlers) GetBlocksHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		blocks, err := h.service.LatestBlocks(listLimit(c))
		if err != nil {
			response.Handle(c, nil, err)
			return
		}
		response.Success(c, types.ListResponse{Items: blocks, Total: int64(len(blocks))})
	}
}

// GetBlockByHeightHandler handles GET requests for a single block by height.
func (h *GinHandlers) GetBlockByHeightHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		height, err := strconv.ParseInt(c.Param("height"), 10, 64)
		if err != nil {
			response.BadRequest(c, "invalid block height")
			return
		}

		block, err := h.service.GetBlockByHeight(height)
		response.Handle(c, block, err)
	}
}

// GetBlockByHashHandler handles GET requests for a single block by hash.
func (h *GinHandlers) GetBlockByHashHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		block, err := h.service.GetBlockByHash(c.Param("hash"))
		response.Handle(c, block, err)
	}
}

// GetEventsHandler handles GET requests for contract events with
// optional contract_name and status filters.
func (h *GinHandlers) GetEventsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		events, err := h.service.ListEvents(c.Query("contract_name"), c.Query("status"), listLimit(c))
		if err != nil {
			response.Handle(c, nil, err)
			return
		}
		response.Success(c, types.ListResponse{Items: events, Total: int64(len(events))})
	}
}

// GetEventHandler handles GET requests for a single contract event.
func (h *GinHandlers) GetEventHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		event, err := h.service.GetEvent(c.Param("id"))
		response.Handle(c, event, err)
	}
}

// GetWalletHandler handles GET requests for the wallet balance.
func (h *GinHandlers) GetWalletHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		balance, err := h.service.Balance()
		if err != nil {
			response.Handle(c, nil, err)
			return
		}
		response.Success(c, gin.H{"balance": balance})
	}
}

// GetChainStatusHandler handles GET requests for the chain summary.
func (h *GinHandlers) GetChainStatusHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		status, err := h.service.ChainStatus()
		response.Handle(c, status, err)
	}
}
