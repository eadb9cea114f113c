package lending

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/RWAworkteam/ZeroCarbon-OS-1/internal/assets"
	"github.com/RWAworkteam/ZeroCarbon-OS-1/internal/ledger"
	"github.com/RWAworkteam/ZeroCarbon-OS-1/internal/types"
	"github.com/RWAworkteam/ZeroCarbon-OS-1/pkg/identifier"
)

type fixture struct {
	lending *Service
	assets  *assets.Service
	ledger  *ledger.Service
	db      *gorm.DB
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&ActiveLoan{},
		&assets.CarbonAsset{},
		&ledger.Block{}, &ledger.ContractEvent{}, &ledger.Wallet{},
	))
	require.NoError(t, db.Create(&ledger.Wallet{Balance: ledger.OpeningBalance, UpdatedAt: time.Now()}).Error)
	require.NoError(t, db.Create(&ledger.Block{
		Height:    ledger.GenesisHeight,
		Hash:      "0xgenesis",
		Timestamp: time.Now(),
		Validator: ledger.ValidatorParkOperator,
	}).Error)

	gen := identifier.NewSequential()
	ledgerService := ledger.NewService(db, gen)
	assetService := assets.NewService(db, ledgerService, gen)

	return &fixture{
		lending: NewService(db, assetService, ledgerService, gen),
		assets:  assetService,
		ledger:  ledgerService,
		db:      db,
	}
}

// mintCollateral registers, audits and tokenizes an asset worth
// volume * 60 CNY. The mint appends one block.
func (f *fixture) mintCollateral(t *testing.T, volume float64) *assets.CarbonAsset {
	t.Helper()

	asset, err := f.assets.RegisterAsset(&assets.CreateAssetRequest{
		ProjectName: "Rooftop Solar Plant",
		Amount:      volume,
	})
	require.NoError(t, err)

	_, err = f.assets.Audit(asset.AssetID)
	require.NoError(t, err)

	minted, err := f.assets.Tokenize(asset.AssetID, volume)
	require.NoError(t, err)
	return minted
}

func (f *fixture) countEvents(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, f.db.Model(&ledger.ContractEvent{}).Count(&count).Error)
	return count
}

func TestLoanFundedBelowThreshold(t *testing.T) {
	f := newFixture(t)
	asset := f.mintCollateral(t, 10000) // collateral worth 600000

	heightBefore, err := f.ledger.Height()
	require.NoError(t, err)

	resp, err := f.lending.CreateLoan(&CreateLoanRequest{
		AssetID:           asset.AssetID,
		Principal:         300000,
		Rate:              3.85,
		Tenor:             12,
		SettlementChannel: "e-CNY",
	})
	require.NoError(t, err)

	assert.True(t, resp.Funded)
	assert.Equal(t, 50, resp.Loan.LTVPercent)
	assert.Equal(t, StatusNormal, resp.Loan.Status)
	assert.Equal(t, "CNY", resp.Loan.Currency)
	assert.Equal(t, ledger.OpeningBalance+300000, resp.WalletBalance)

	// Collateral pledged
	pledged, err := f.assets.GetAsset(asset.AssetID)
	require.NoError(t, err)
	assert.Equal(t, assets.StatusPledged, pledged.Status)

	// Exactly one block from the financial institution and one
	// disbursement event
	heightAfter, err := f.ledger.Height()
	require.NoError(t, err)
	assert.Equal(t, heightBefore+1, heightAfter)

	block, err := f.ledger.GetBlockByHeight(heightAfter)
	require.NoError(t, err)
	assert.Equal(t, ledger.ValidatorFinancialInstitution, block.Validator)

	events, err := f.ledger.ListEvents("lending-contract", "", 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "LoanDisbursed", events[0].Event)
	assert.Equal(t, 300000.0, events[0].Amount)
	assert.Equal(t, heightAfter, events[0].BlockNumber)
}

func TestLoanAboveThresholdGoesToReview(t *testing.T) {
	f := newFixture(t)
	asset := f.mintCollateral(t, 10000) // collateral worth 600000

	heightBefore, err := f.ledger.Height()
	require.NoError(t, err)
	eventsBefore := f.countEvents(t)

	resp, err := f.lending.CreateLoan(&CreateLoanRequest{
		AssetID:   asset.AssetID,
		Principal: 500000, // 83% LTV
	})
	require.NoError(t, err)

	assert.False(t, resp.Funded)
	assert.Equal(t, 83, resp.Loan.LTVPercent)
	assert.Equal(t, StatusPendingReview, resp.Loan.Status)
	assert.Zero(t, resp.WalletBalance)

	// The asset is pledged even though no money moved
	pledged, err := f.assets.GetAsset(asset.AssetID)
	require.NoError(t, err)
	assert.Equal(t, assets.StatusPledged, pledged.Status)

	// Wallet and chain untouched
	balance, err := f.ledger.Balance()
	require.NoError(t, err)
	assert.Equal(t, ledger.OpeningBalance, balance)

	heightAfter, err := f.ledger.Height()
	require.NoError(t, err)
	assert.Equal(t, heightBefore, heightAfter)
	assert.Equal(t, eventsBefore, f.countEvents(t))

	// The loan record itself is queryable
	loans, err := f.lending.ListLoans(StatusPendingReview)
	require.NoError(t, err)
	require.Len(t, loans, 1)
	assert.Equal(t, resp.Loan.LoanID, loans[0].LoanID)
}

func TestLoanAtExactThresholdIsFunded(t *testing.T) {
	f := newFixture(t)
	asset := f.mintCollateral(t, 10000) // collateral worth 600000

	resp, err := f.lending.CreateLoan(&CreateLoanRequest{
		AssetID:   asset.AssetID,
		Principal: 420000, // exactly 70%
	})
	require.NoError(t, err)

	assert.True(t, resp.Funded)
	assert.Equal(t, ReviewThresholdPercent, resp.Loan.LTVPercent)
}

func TestLoanRequiresTokenizedCollateral(t *testing.T) {
	f := newFixture(t)

	asset, err := f.assets.RegisterAsset(&assets.CreateAssetRequest{
		ProjectName: "Pending Project",
		Amount:      1000,
	})
	require.NoError(t, err)

	_, err = f.lending.CreateLoan(&CreateLoanRequest{
		AssetID:   asset.AssetID,
		Principal: 10000,
	})
	var serr *types.InvalidStateError
	require.ErrorAs(t, err, &serr)
}

func TestLoanRejectsUnknownAsset(t *testing.T) {
	f := newFixture(t)

	_, err := f.lending.CreateLoan(&CreateLoanRequest{
		AssetID:   "A-missing",
		Principal: 10000,
	})
	var nferr *types.NotFoundError
	require.ErrorAs(t, err, &nferr)
}

func TestLoanRejectsNonPositivePrincipal(t *testing.T) {
	f := newFixture(t)

	_, err := f.lending.CreateLoan(&CreateLoanRequest{
		AssetID:   "A-any",
		Principal: 0,
	})
	var verr *types.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestSecondLoanAgainstPledgedCollateralFails(t *testing.T) {
	f := newFixture(t)
	asset := f.mintCollateral(t, 10000)

	_, err := f.lending.CreateLoan(&CreateLoanRequest{
		AssetID:   asset.AssetID,
		Principal: 100000,
	})
	require.NoError(t, err)

	_, err = f.lending.CreateLoan(&CreateLoanRequest{
		AssetID:   asset.AssetID,
		Principal: 100000,
	})
	var serr *types.InvalidStateError
	require.ErrorAs(t, err, &serr)

	// The rejected loan left no trace
	loans, err := f.lending.ListLoans("")
	require.NoError(t, err)
	assert.Len(t, loans, 1)
}
