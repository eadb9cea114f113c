package points

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/RWAworkteam/ZeroCarbon-OS-1/internal/ledger"
	"github.com/RWAworkteam/ZeroCarbon-OS-1/internal/types"
	"github.com/RWAworkteam/ZeroCarbon-OS-1/pkg/identifier"
	"github.com/RWAworkteam/ZeroCarbon-OS-1/pkg/response"
)

// Service owns carbon points accounts, their transaction log and the
// reward catalog.
type Service struct {
	db     *Database
	ledger *ledger.Service
	gen    identifier.Generator
}

// NewService creates a points service.
func NewService(gormDB *gorm.DB, ledgerService *ledger.Service, gen identifier.Generator) *Service {
	return &Service{
		db:     NewDatabase(gormDB),
		ledger: ledgerService,
		gen:    gen,
	}
}

// EarnPoints credits an account with newly earned points. Accrual is
// off-chain: both total and available grow, no block or event is
// written.
func (s *Service) EarnPoints(req *EarnRequest) (*CarbonPointsTransaction, error) {
	if req.Points <= 0 {
		return nil, types.NewValidationError("points", "must be positive")
	}
	if _, err := s.db.GetAccount(req.AccountID); err != nil {
		return nil, err
	}

	transaction := &CarbonPointsTransaction{
		TxID:        s.gen.EntityID("PT-"),
		AccountID:   req.AccountID,
		Type:        TypeEarn,
		Points:      req.Points,
		Description: req.Description,
		Source:      req.Source,
		Timestamp:   time.Now(),
		Status:      TxStatusCompleted,
	}

	err := s.ledger.RunAtomic(func(tx *gorm.DB) error {
		account, err := getAccount(tx, req.AccountID)
		if err != nil {
			return err
		}

		account.TotalPoints += req.Points
		account.AvailablePoints += req.Points
		account.LastUpdated = time.Now()
		if err := tx.Save(account).Error; err != nil {
			return err
		}

		return tx.Create(transaction).Error
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("account_id", req.AccountID).
		Int64("points", req.Points).
		Str("source", req.Source).
		Str("service", "points").
		Msg("points earned")

	return transaction, nil
}

// RedeemPoints exchanges available points for a catalog reward.
//
// Points only move from available to used, so the account total is
// conserved. A digital_rmb reward additionally credits the wallet and
// writes one block plus one PointsRedeemed event; the deduction and the
// cash leg commit together or not at all.
func (s *Service) RedeemPoints(req *RedeemRequest) (*RedeemResponse, error) {
	logger := log.With().
		Str("account_id", req.AccountID).
		Str("reward_id", req.RewardID).
		Str("service", "points").
		Logger()

	reward, err := s.db.GetReward(req.RewardID)
	if err != nil {
		return nil, err
	}
	if !reward.Available {
		return nil, types.NewValidationError("reward_id", "reward is not available")
	}

	account, err := s.db.GetAccount(req.AccountID)
	if err != nil {
		return nil, err
	}
	if account.AvailablePoints < reward.PointsRequired {
		logger.Warn().
			Int64("available", account.AvailablePoints).
			Int64("required", reward.PointsRequired).
			Msg("redemption rejected")
		return nil, types.NewInsufficientBalanceError("points",
			float64(reward.PointsRequired), float64(account.AvailablePoints))
	}

	transaction := &CarbonPointsTransaction{
		TxID:        s.gen.EntityID("PT-"),
		AccountID:   req.AccountID,
		Type:        TypeRedeem,
		Points:      reward.PointsRequired,
		Description: fmt.Sprintf("redeemed %s", reward.Name),
		Source:      "rewards-store",
		Timestamp:   time.Now(),
		Status:      TxStatusCompleted,
		TxHash:      s.gen.Hash(),
	}

	result := &RedeemResponse{Transaction: transaction}
	err = s.ledger.RunAtomic(func(tx *gorm.DB) error {
		current, err := getAccount(tx, req.AccountID)
		if err != nil {
			return err
		}
		if current.AvailablePoints < reward.PointsRequired {
			return types.NewInsufficientBalanceError("points",
				float64(reward.PointsRequired), float64(current.AvailablePoints))
		}

		current.AvailablePoints -= reward.PointsRequired
		current.UsedPoints += reward.PointsRequired
		current.LastUpdated = time.Now()
		if err := tx.Save(current).Error; err != nil {
			return err
		}

		if err := tx.Create(transaction).Error; err != nil {
			return err
		}

		result.Account = current

		if reward.RewardType != RewardTypeDigitalRMB {
			return nil
		}

		balance, err := s.ledger.AdjustWallet(tx, reward.RewardValue)
		if err != nil {
			return err
		}
		result.WalletBalance = balance

		block, err := s.ledger.AppendBlock(tx, ledger.ValidatorSmartContract, 1)
		if err != nil {
			return err
		}

		_, err = s.ledger.AppendEvent(tx, &ledger.ContractEvent{
			ContractName: "points-redeem-contract",
			Event:        "PointsRedeemed",
			Amount:       reward.RewardValue,
			Description:  fmt.Sprintf("digital RMB payout for %s", reward.Name),
			Hash:         transaction.TxHash,
			BlockNumber:  block.Height,
		})
		return err
	})
	if err != nil {
		logger.Error().Err(err).Msg("redemption failed")
		return nil, err
	}

	logger.Info().
		Int64("points", reward.PointsRequired).
		Str("reward_type", reward.RewardType).
		Msg("reward redeemed")

	return result, nil
}

// GetAccount retrieves a points account by its ID.
func (s *Service) GetAccount(accountID string) (*CarbonPointsAccount, error) {
	return s.db.GetAccount(accountID)
}

// GetAccountByOwner retrieves a points account by its owner ID.
func (s *Service) GetAccountByOwner(ownerID string) (*CarbonPointsAccount, error) {
	return s.db.GetAccountByOwner(ownerID)
}

// ListAccounts retrieves accounts with an optional owner-type filter.
func (s *Service) ListAccounts(ownerType string) ([]CarbonPointsAccount, error) {
	return s.db.ListAccounts(ownerType)
}

// ListTransactions retrieves the points transaction log.
func (s *Service) ListTransactions(accountID, txType string) ([]CarbonPointsTransaction, error) {
	return s.db.ListTransactions(accountID, txType)
}

// ListRewards retrieves the reward catalog.
func (s *Service) ListRewards(availableOnly bool) ([]PointsReward, error) {
	return s.db.ListRewards(availableOnly)
}

// GetReward retrieves a reward by its ID.
func (s *Service) GetReward(rewardID string) (*PointsReward, error) {
	return s.db.GetReward(rewardID)
}

// GinHandlers contains HTTP handlers for points endpoints
type GinHandlers struct {
	service *Service
}

// NewGinHandlers creates a new set of HTTP handlers for points endpoints
func NewGinHandlers(service *Service) *GinHandlers {
	return &GinHandlers{
		service: service,
	}
}

// EarnPointsHandler handles POST requests to accrue points
func (h *GinHandlers) EarnPointsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req EarnRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, err.Error())
			return
		}

		transaction, err := h.service.EarnPoints(&req)
		response.Handle(c, transaction, err)
	}
}

// RedeemPointsHandler handles POST requests to redeem rewards
func (h *GinHandlers) RedeemPointsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RedeemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, err.Error())
			return
		}

		redeemResponse, err := h.service.RedeemPoints(&req)
		response.Handle(c, redeemResponse, err)
	}
}

// GetAccountHandler handles GET requests for a single points account
func (h *GinHandlers) GetAccountHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		account, err := h.service.GetAccount(c.Param("account_id"))
		response.Handle(c, account, err)
	}
}

// GetAccountByOwnerHandler handles GET requests for an owner's account
func (h *GinHandlers) GetAccountByOwnerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		account, err := h.service.GetAccountByOwner(c.Param("owner_id"))
		response.Handle(c, account, err)
	}
}

// ListAccountsHandler handles GET requests for the account list
func (h *GinHandlers) ListAccountsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		accounts, err := h.service.ListAccounts(c.Query("owner_type"))
		if err != nil {
			response.Handle(c, nil, err)
			return
		}
		response.Success(c, types.ListResponse{Items: accounts, Total: int64(len(accounts))})
	}
}

// ListTransactionsHandler handles GET requests for the points
// transaction log
func (h *GinHandlers) ListTransactionsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		transactions, err := h.service.ListTransactions(c.Query("account_id"), c.Query("type"))
		if err != nil {
			response.Handle(c, nil, err)
			return
		}
		response.Success(c, types.ListResponse{Items: transactions, Total: int64(len(transactions))})
	}
}

// ListRewardsHandler handles GET requests for the reward catalog
func (h *GinHandlers) ListRewardsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		rewards, err := h.service.ListRewards(c.Query("available") == "true")
		if err != nil {
			response.Handle(c, nil, err)
			return
		}
		response.Success(c, types.ListResponse{Items: rewards, Total: int64(len(rewards))})
	}
}

// GetRewardHandler handles GET requests for a single reward
func (h *GinHandlers) GetRewardHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		reward, err := h.service.GetReward(c.Param("reward_id"))
		response.Handle(c, reward, err)
	}
}
