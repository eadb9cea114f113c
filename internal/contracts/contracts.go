package contracts

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/RWAworkteam/ZeroCarbon-OS-1/internal/ledger"
	"github.com/RWAworkteam/ZeroCarbon-OS-1/internal/types"
	"github.com/RWAworkteam/ZeroCarbon-OS-1/pkg/response"
)

// Scenario names accepted by the simulator.
const (
	ScenarioAutoRepay       = "autoRepay"
	ScenarioRevenueSharing  = "revenueSharing"
	ScenarioComplianceCheck = "complianceCheck"
	ScenarioSubsidyPayment  = "subsidyPayment"
)

// scenario is one fixed, named financial effect. This is a closed
// enumeration: new scenarios require a new entry, not configuration.
type scenario struct {
	contractName string
	event        string
	description  string
	amount       float64 // amount shown on the event
	delta        float64 // signed wallet effect, may be zero
	fromAddr     string
	toAddr       string
}

var scenarios = map[string]scenario{
	ScenarioAutoRepay: {
		contractName: "loan-repayment-contract",
		event:        "AutoRepayment",
		description:  "automatic loan repayment from station carbon revenue",
		amount:       350000,
		delta:        -350000,
		fromAddr:     "0xpark-carbon-revenue-account",
		toAddr:       "0xlender-repayment-account",
	},
	ScenarioRevenueSharing: {
		contractName: "revenue-share-contract",
		event:        "SplitTransfer",
		description:  "carbon revenue split between park, ESCO and fund",
		amount:       500000,
		delta:        0, // split happens between third parties; platform wallet unaffected
		fromAddr:     "0xcarbon-revenue-pool",
		toAddr:       "0xmulti-party-split-contract",
	},
	ScenarioComplianceCheck: {
		contractName: "compliance-contract",
		event:        "QuotaPurchase",
		description:  "quota compliance check with automatic top-up purchase",
		amount:       120000,
		delta:        -120000,
		fromAddr:     "0xpark-operating-account",
		toAddr:       "0xquota-trading-center",
	},
	ScenarioSubsidyPayment: {
		contractName: "subsidy-contract",
		event:        "SubsidyTransfer",
		description:  "government zero-carbon subsidy paid through digital RMB contract",
		amount:       200000,
		delta:        200000,
		fromAddr:     "0xgovernment-subsidy-account",
		toAddr:       "0xpark-operating-account",
	},
}

// SimulationResponse is returned for a simulated scenario.
type SimulationResponse struct {
	Event         *ledger.ContractEvent `json:"event"`
	BlockHeight   int64                 `json:"block_height"`
	WalletBalance float64               `json:"wallet_balance"`
}

// Service applies named smart-contract scenarios as wallet deltas plus
// chain records.
type Service struct {
	ledger *ledger.Service
}

// NewService creates a scenario simulation service.
func NewService(ledgerService *ledger.Service) *Service {
	return &Service{ledger: ledgerService}
}

// SimulateScenario runs one named scenario: its signed wallet delta,
// one block from the smart-contract validator and one contract event
// commit as a unit. Unknown names are rejected.
func (s *Service) SimulateScenario(name string) (*SimulationResponse, error) {
	sc, ok := scenarios[name]
	if !ok {
		return nil, types.NewValidationError("scenario", "unknown scenario "+name)
	}

	logger := log.With().
		Str("scenario", name).
		Str("contract", sc.contractName).
		Str("service", "contracts").
		Logger()

	result := &SimulationResponse{}
	err := s.ledger.RunAtomic(func(tx *gorm.DB) error {
		balance, err := s.ledger.AdjustWallet(tx, sc.delta)
		if err != nil {
			return err
		}
		result.WalletBalance = balance

		block, err := s.ledger.AppendBlock(tx, ledger.ValidatorSmartContract, 1)
		if err != nil {
			return err
		}
		result.BlockHeight = block.Height

		event, err := s.ledger.AppendEvent(tx, &ledger.ContractEvent{
			ContractName: sc.contractName,
			Event:        sc.event,
			Amount:       sc.amount,
			Description:  sc.description,
			FromAddr:     sc.fromAddr,
			ToAddr:       sc.toAddr,
			BlockNumber:  block.Height,
		})
		if err != nil {
			return err
		}
		result.Event = event
		return nil
	})
	if err != nil {
		logger.Error().Err(err).Msg("scenario simulation failed")
		return nil, err
	}

	logger.Info().
		Float64("delta", sc.delta).
		Int64("block_height", result.BlockHeight).
		Float64("wallet_balance", result.WalletBalance).
		Msg("scenario executed")

	return result, nil
}

// Scenarios lists the accepted scenario names.
func (s *Service) Scenarios() []string {
	return []string{ScenarioAutoRepay, ScenarioRevenueSharing, ScenarioComplianceCheck, ScenarioSubsidyPayment}
}

// GinHandlers contains HTTP handlers for scenario endpoints
type GinHandlers struct {
	service *Service
}

// NewGinHandlers creates a new set of HTTP handlers for scenario endpoints
func NewGinHandlers(service *Service) *GinHandlers {
	return &GinHandlers{
		service: service,
	}
}

// SimulateScenarioHandler handles POST requests to run a named scenario
func (h *GinHandlers) SimulateScenarioHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Scenario string `json:"scenario" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, err.Error())
			return
		}

		simulationResponse, err := h.service.SimulateScenario(req.Scenario)
		response.Handle(c, simulationResponse, err)
	}
}

// ListScenariosHandler handles GET requests for the scenario catalog
func (h *GinHandlers) ListScenariosHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		response.Success(c, gin.H{"scenarios": h.service.Scenarios()})
	}
}
