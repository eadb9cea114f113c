package contracts

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/RWAworkteam/ZeroCarbon-OS-1/internal/ledger"
	"github.com/RWAworkteam/ZeroCarbon-OS-1/internal/types"
	"github.com/RWAworkteam/ZeroCarbon-OS-1/pkg/identifier"
)

func newTestService(t *testing.T) (*Service, *ledger.Service) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&ledger.Block{}, &ledger.ContractEvent{}, &ledger.Wallet{}))
	require.NoError(t, db.Create(&ledger.Wallet{Balance: ledger.OpeningBalance, UpdatedAt: time.Now()}).Error)
	require.NoError(t, db.Create(&ledger.Block{
		Height:    ledger.GenesisHeight,
		Hash:      "0xgenesis",
		Timestamp: time.Now(),
		Validator: ledger.ValidatorParkOperator,
	}).Error)

	ledgerService := ledger.NewService(db, identifier.NewSequential())
	return NewService(ledgerService), ledgerService
}

func TestSimulateScenarios(t *testing.T) {
	cases := []struct {
		scenario     string
		contractName string
		event        string
		amount       float64
		delta        float64
	}{
		{ScenarioAutoRepay, "loan-repayment-contract", "AutoRepayment", 350000, -350000},
		{ScenarioRevenueSharing, "revenue-share-contract", "SplitTransfer", 500000, 0},
		{ScenarioComplianceCheck, "compliance-contract", "QuotaPurchase", 120000, -120000},
		{ScenarioSubsidyPayment, "subsidy-contract", "SubsidyTransfer", 200000, 200000},
	}

	for _, tc := range cases {
		t.Run(tc.scenario, func(t *testing.T) {
			service, ledgerService := newTestService(t)

			resp, err := service.SimulateScenario(tc.scenario)
			require.NoError(t, err)

			assert.Equal(t, ledger.OpeningBalance+tc.delta, resp.WalletBalance)
			assert.Equal(t, int64(ledger.GenesisHeight+1), resp.BlockHeight)

			require.NotNil(t, resp.Event)
			assert.Equal(t, tc.contractName, resp.Event.ContractName)
			assert.Equal(t, tc.event, resp.Event.Event)
			assert.Equal(t, tc.amount, resp.Event.Amount)
			assert.Equal(t, resp.BlockHeight, resp.Event.BlockNumber)
			assert.Equal(t, ledger.EventStatusSuccess, resp.Event.Status)
			assert.NotEmpty(t, resp.Event.FromAddr)
			assert.NotEmpty(t, resp.Event.ToAddr)

			// The block comes from the smart-contract validator
			block, err := ledgerService.GetBlockByHeight(resp.BlockHeight)
			require.NoError(t, err)
			assert.Equal(t, ledger.ValidatorSmartContract, block.Validator)
		})
	}
}

func TestRevenueSharingShowsAmountWithoutWalletEffect(t *testing.T) {
	service, ledgerService := newTestService(t)

	resp, err := service.SimulateScenario(ScenarioRevenueSharing)
	require.NoError(t, err)

	// The split amount is visible on the event but the platform wallet
	// is not a party to it
	assert.Equal(t, 500000.0, resp.Event.Amount)
	assert.Equal(t, ledger.OpeningBalance, resp.WalletBalance)

	balance, err := ledgerService.Balance()
	require.NoError(t, err)
	assert.Equal(t, ledger.OpeningBalance, balance)
}

func TestScenariosCompose(t *testing.T) {
	service, ledgerService := newTestService(t)

	_, err := service.SimulateScenario(ScenarioAutoRepay)
	require.NoError(t, err)
	_, err = service.SimulateScenario(ScenarioSubsidyPayment)
	require.NoError(t, err)
	_, err = service.SimulateScenario(ScenarioComplianceCheck)
	require.NoError(t, err)

	balance, err := ledgerService.Balance()
	require.NoError(t, err)
	assert.Equal(t, ledger.OpeningBalance-350000+200000-120000, balance)

	height, err := ledgerService.Height()
	require.NoError(t, err)
	assert.Equal(t, int64(ledger.GenesisHeight+3), height)
}

func TestUnknownScenarioRejected(t *testing.T) {
	service, ledgerService := newTestService(t)

	_, err := service.SimulateScenario("marginCall")
	var verr *types.ValidationError
	require.ErrorAs(t, err, &verr)

	// Nothing was written
	height, err := ledgerService.Height()
	require.NoError(t, err)
	assert.Equal(t, int64(ledger.GenesisHeight), height)

	balance, err := ledgerService.Balance()
	require.NoError(t, err)
	assert.Equal(t, ledger.OpeningBalance, balance)
}

func TestScenarioCatalog(t *testing.T) {
	service, _ := newTestService(t)

	names := service.Scenarios()
	assert.ElementsMatch(t, []string{
		ScenarioAutoRepay, ScenarioRevenueSharing, ScenarioComplianceCheck, ScenarioSubsidyPayment,
	}, names)
}
