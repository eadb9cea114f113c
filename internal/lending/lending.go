package lending

import (
	"fmt"
	"math"
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

// Service handles pledge financing against tokenized carbon assets. It
// computes the loan-to-value ratio at approval time and routes the loan
// either to immediate disbursement or to manual review.
type Service struct {
	db     *Database
	assets *assets.Service
	ledger *ledger.Service
	gen    identifier.Generator
}

// NewService creates a lending service.
func NewService(gormDB *gorm.DB, assetService *assets.Service, ledgerService *ledger.Service, gen identifier.Generator) *Service {
	return &Service{
		db:     NewDatabase(gormDB),
		assets: assetService,
		ledger: ledgerService,
		gen:    gen,
	}
}

// CreateLoan underwrites a loan against a tokenized asset.
//
// LTV above the review threshold creates the loan unfunded and pending
// manual review: the asset is still pledged but no money moves and
// nothing is written to the chain. At or below the threshold the
// principal is credited to the wallet, one block is appended by the
// financial institution and one LoanDisbursed event is logged — all in
// the same transaction as the loan and asset writes.
func (s *Service) CreateLoan(req *CreateLoanRequest) (*LoanResponse, error) {
	logger := log.With().
		Str("asset_id", req.AssetID).
		Float64("principal", req.Principal).
		Str("service", "lending").
		Logger()

	logger.Info().Msg("starting loan underwriting")

	if req.Principal <= 0 {
		return nil, types.NewValidationError("principal", "must be positive")
	}

	asset, err := s.assets.GetAsset(req.AssetID)
	if err != nil {
		logger.Error().Err(err).Msg("collateral lookup failed")
		return nil, err
	}
	if asset.Status != assets.StatusTokenized {
		logger.Warn().Str("status", asset.Status).Msg("collateral not tokenized")
		return nil, types.NewInvalidStateError("asset", asset.AssetID, asset.Status, assets.StatusPledged)
	}

	// A zero-valued collateral rounds to 0% rather than faulting; the
	// loan then funds below threshold.
	ltv := 0.0
	if asset.EstimatedValue > 0 {
		ltv = req.Principal / asset.EstimatedValue
	}
	ltvPercent := int(math.Round(ltv * 100))

	loan := &ActiveLoan{
		LoanID:            s.gen.EntityID("L-"),
		AssetID:           asset.AssetID,
		TokenID:           asset.TokenID,
		TokenName:         asset.ProjectName + " carbon certificate",
		Principal:         req.Principal,
		Currency:          "CNY",
		Rate:              req.Rate,
		Tenor:             req.Tenor,
		LTVPercent:        ltvPercent,
		Status:            StatusNormal,
		SettlementChannel: req.SettlementChannel,
		CreateDate:        time.Now(),
	}

	funded := ltvPercent <= ReviewThresholdPercent
	if !funded {
		loan.Status = StatusPendingReview
	}

	logger.Debug().
		Int("ltv_percent", ltvPercent).
		Float64("estimated_value", asset.EstimatedValue).
		Bool("funded", funded).
		Msg("computed loan-to-value")

	var balance float64
	err = s.ledger.RunAtomic(func(tx *gorm.DB) error {
		if err := tx.Create(loan).Error; err != nil {
			return err
		}
		if err := s.assets.MarkPledged(tx, asset.AssetID); err != nil {
			return err
		}

		if !funded {
			// Deliberate asymmetry: an unfunded loan leaves the wallet
			// and the chain untouched until manual review releases it.
			return nil
		}

		newBalance, err := s.ledger.AdjustWallet(tx, req.Principal)
		if err != nil {
			return err
		}
		balance = newBalance

		block, err := s.ledger.AppendBlock(tx, ledger.ValidatorFinancialInstitution, 1)
		if err != nil {
			return err
		}

		_, err = s.ledger.AppendEvent(tx, &ledger.ContractEvent{
			ContractName: "lending-contract",
			Event:        "LoanDisbursed",
			Amount:       req.Principal,
			Description:  fmt.Sprintf("disbursed via %s", req.SettlementChannel),
			BlockNumber:  block.Height,
		})
		return err
	})
	if err != nil {
		logger.Error().Err(err).Msg("loan transaction failed")
		return nil, err
	}

	if funded {
		logger.Info().
			Str("loan_id", loan.LoanID).
			Int("ltv_percent", ltvPercent).
			Float64("wallet_balance", balance).
			Msg("loan disbursed")
	} else {
		logger.Info().
			Str("loan_id", loan.LoanID).
			Int("ltv_percent", ltvPercent).
			Msg("loan routed to manual review")
	}

	return &LoanResponse{Loan: loan, Funded: funded, WalletBalance: balance}, nil
}

// GetLoan retrieves a loan by its ID.
func (s *Service) GetLoan(loanID string) (*ActiveLoan, error) {
	return s.db.GetLoan(loanID)
}

// ListLoans retrieves loans with an optional status filter.
func (s *Service) ListLoans(status string) ([]ActiveLoan, error) {
	return s.db.ListLoans(status)
}

// GinHandlers contains HTTP handlers for lending endpoints
type GinHandlers struct {
	service *Service
}

// NewGinHandlers creates a new set of HTTP handlers for lending endpoints
func NewGinHandlers(service *Service) *GinHandlers {
	return &GinHandlers{
		service: service,
	}
}

// CreateLoanHandler handles POST requests to create pledge loans
func (h *GinHandlers) CreateLoanHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateLoanRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, err.Error())
			return
		}

		loanResponse, err := h.service.CreateLoan(&req)
		response.Handle(c, loanResponse, err)
	}
}

// GetLoanHandler handles GET requests for a single loan
func (h *GinHandlers) GetLoanHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		loan, err := h.service.GetLoan(c.Param("loan_id"))
		response.Handle(c, loan, err)
	}
}

// ListLoansHandler handles GET requests for the loan list
func (h *GinHandlers) ListLoansHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		loans, err := h.service.ListLoans(c.Query("status"))
		if err != nil {
			response.Handle(c, nil, err)
			return
		}
		response.Success(c, types.ListResponse{Items: loans, Total: int64(len(loans))})
	}
}
