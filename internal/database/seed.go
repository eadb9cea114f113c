package database

import (
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/RWAworkteam/ZeroCarbon-OS-1/internal/assets"
	"github.com/RWAworkteam/ZeroCarbon-OS-1/internal/enterprise"
	"github.com/RWAworkteam/ZeroCarbon-OS-1/internal/ledger"
	"github.com/RWAworkteam/ZeroCarbon-OS-1/internal/market"
	"github.com/RWAworkteam/ZeroCarbon-OS-1/internal/points"
	"github.com/RWAworkteam/ZeroCarbon-OS-1/pkg/identifier"
)

// Seed prepares the database for first use. The wallet row and genesis
// block are always ensured; demo reference data (assets, enterprises,
// points accounts, reward catalog, venues, order book) is inserted only
// when demo is set and the store is empty.
//
// Demo data deliberately contains no loans or trades: monetary history
// must always be explainable by the chain, and seeded records would
// carry no blocks behind them.
func Seed(db *gorm.DB, gen identifier.Generator, demo bool) error {
	if err := ensureWallet(db); err != nil {
		return err
	}
	if err := ensureGenesis(db, gen); err != nil {
		return err
	}

	if !demo {
		return nil
	}

	var count int64
	if err := db.Model(&assets.CarbonAsset{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	log.Info().Str("component", "seed").Msg("seeding demo reference data")

	if err := seedAssets(db); err != nil {
		return err
	}
	if err := seedEnterprises(db); err != nil {
		return err
	}
	if err := seedPoints(db); err != nil {
		return err
	}
	if err := seedMarket(db); err != nil {
		return err
	}

	return nil
}

func ensureWallet(db *gorm.DB) error {
	var count int64
	if err := db.Model(&ledger.Wallet{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return db.Create(&ledger.Wallet{
		Balance:   ledger.OpeningBalance,
		UpdatedAt: time.Now(),
	}).Error
}

func ensureGenesis(db *gorm.DB, gen identifier.Generator) error {
	var count int64
	if err := db.Model(&ledger.Block{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return db.Create(&ledger.Block{
		Height:       ledger.GenesisHeight,
		Hash:         gen.Hash(),
		Timestamp:    time.Now(),
		Transactions: 4,
		Validator:    ledger.ValidatorParkOperator,
	}).Error
}

func seedAssets(db *gorm.DB) error {
	rows := []assets.CarbonAsset{
		{
			AssetID:            "A-001",
			ProjectName:        "Phase One Rooftop Solar Plant",
			Category:           "solar",
			Location:           "Zero Carbon Park, Building 1 rooftop",
			DeviceID:           "PV-INV-001",
			BaselineEmission:   12000,
			Amount:             9500,
			Unit:               "tCO2e/yr",
			Status:             assets.StatusTokenized,
			Owner:              "park-operator",
			EstimatedValue:     570000,
			TokenID:            "T-882910",
			BlockHash:          "0x7f3a2b1c4d5e6f7a8b9c0d1e2f3a4b5c6d7e8f9a0b1c2d3e4f5a6b7c8d9e0",
			BlockHeight:        ledger.GenesisHeight,
			ContractAddress:    "0x7f3a2b1c4d5e6f7a8b9c0d1e2f3a4b5c6d7e8f9a0",
			TokenStandard:      "ERC-721",
			MetadataURI:        "ipfs://QmXx2b1c4d5e6f7a8b9c0d1e2f3a4b5c6d7e8f9a0b1c2d3e4f5a6b7c8d9e0",
			VerificationStatus: "verified",
		},
		{
			AssetID:          "A-002",
			ProjectName:      "Centralized Energy Storage Station",
			Category:         "storage",
			Location:         "Zero Carbon Park, west substation",
			DeviceID:         "ESS-PCS-01",
			BaselineEmission: 6800,
			Amount:           5200,
			Unit:             "tCO2e/yr",
			Status:           assets.StatusAudited,
			Owner:            "park-operator",
			EstimatedValue:   312000,
		},
		{
			AssetID:          "A-003",
			ProjectName:      "Legacy Plant Retrofit Project",
			Category:         "efficiency",
			Location:         "Zero Carbon Park, old plant zone",
			DeviceID:         "EMS-LOAD-01",
			BaselineEmission: 4300,
			Amount:           2600,
			Unit:             "tCO2e/yr",
			Status:           assets.StatusPending,
			Owner:            "Alpha Precision Manufacturing",
			EstimatedValue:   156000,
		},
	}

	for i := range rows {
		if err := db.Create(&rows[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func seedEnterprises(db *gorm.DB) error {
	rows := []enterprise.Enterprise{
		{
			EnterpriseID:                "E-001",
			Name:                        "Alpha Precision Manufacturing",
			ComplianceStatus:            enterprise.StatusCompliant,
			TotalElectricityConsumption: 45000,
			GreenElectricityRatio:       35,
			HoldingQuota:                1250,
			CarbonEmission:              2800,
			CarbonReduction:             1250,
			RegistrationDate:            time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC),
			Industry:                    "precision manufacturing",
			Address:                     "Zero Carbon Park, Zone A No.1",
			EmployeeCount:               320,
			AnnualRevenue:               8500,
		},
		{
			EnterpriseID:                "E-002",
			Name:                        "Beta Logistics",
			ComplianceStatus:            enterprise.StatusWarning,
			TotalElectricityConsumption: 12000,
			GreenElectricityRatio:       15,
			HoldingQuota:                400,
			CarbonEmission:              1800,
			CarbonReduction:             400,
			RegistrationDate:            time.Date(2023, 8, 20, 0, 0, 0, 0, time.UTC),
			Industry:                    "logistics",
			Address:                     "Zero Carbon Park, Zone B No.3",
			EmployeeCount:               150,
			AnnualRevenue:               3200,
		},
		{
			EnterpriseID:                "E-003",
			Name:                        "Gamma Data Center",
			ComplianceStatus:            enterprise.StatusCompliant,
			TotalElectricityConsumption: 120000,
			GreenElectricityRatio:       80,
			HoldingQuota:                8500,
			CarbonEmission:              5200,
			CarbonReduction:             8500,
			RegistrationDate:            time.Date(2023, 5, 10, 0, 0, 0, 0, time.UTC),
			Industry:                    "data center",
			Address:                     "Zero Carbon Park, Zone C No.5",
			EmployeeCount:               85,
			AnnualRevenue:               12000,
		},
	}

	for i := range rows {
		if err := db.Create(&rows[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func seedPoints(db *gorm.DB) error {
	accounts := []points.CarbonPointsAccount{
		{
			AccountID:       "PA-001",
			OwnerID:         "E-001",
			OwnerType:       "enterprise",
			OwnerName:       "Alpha Precision Manufacturing",
			TotalPoints:     12500,
			AvailablePoints: 8500,
			UsedPoints:      4000,
			LastUpdated:     time.Now(),
		},
		{
			AccountID:       "PA-002",
			OwnerID:         "IND-001",
			OwnerType:       "individual",
			OwnerName:       "Zhang San",
			TotalPoints:     3200,
			AvailablePoints: 2800,
			UsedPoints:      400,
			LastUpdated:     time.Now(),
		},
	}
	for i := range accounts {
		if err := db.Create(&accounts[i]).Error; err != nil {
			return err
		}
	}

	rewards := []points.PointsReward{
		{
			RewardID:       "RW-001",
			Name:           "Digital RMB Red Packet",
			Description:    "Credited to the park wallet automatically on redemption",
			PointsRequired: 1000,
			RewardType:     points.RewardTypeDigitalRMB,
			RewardValue:    50,
			RewardUnit:     "CNY",
			Available:      true,
		},
		{
			RewardID:       "RW-002",
			Name:           "Parking Coupon",
			Description:    "Park parking fee waiver, valid 30 days",
			PointsRequired: 500,
			RewardType:     points.RewardTypeCoupon,
			RewardValue:    1,
			RewardUnit:     "coupon",
			Available:      true,
		},
		{
			RewardID:       "RW-003",
			Name:           "Property Fee Discount",
			Description:    "10% off the current month's property fee",
			PointsRequired: 2000,
			RewardType:     points.RewardTypeDiscount,
			RewardValue:    10,
			RewardUnit:     "%",
			Available:      true,
		},
		{
			RewardID:       "RW-004",
			Name:           "Digital RMB Red Packet (Large)",
			Description:    "Credited to the park wallet automatically on redemption",
			PointsRequired: 5000,
			RewardType:     points.RewardTypeDigitalRMB,
			RewardValue:    300,
			RewardUnit:     "CNY",
			Available:      true,
		},
		{
			RewardID:       "RW-005",
			Name:           "Park Services Bundle",
			Description:    "Bundle of park service discounts, valid 60 days",
			PointsRequired: 3000,
			RewardType:     points.RewardTypeService,
			RewardValue:    1,
			RewardUnit:     "bundle",
			Available:      true,
		},
	}
	for i := range rewards {
		if err := db.Create(&rewards[i]).Error; err != nil {
			return err
		}
	}

	return nil
}

func seedMarket(db *gorm.DB) error {
	platforms := []market.TradingPlatform{
		{
			PlatformID:  "TP-001",
			Name:        "Carbon Asset Trading Center",
			Type:        market.PlatformCarbonExchange,
			Status:      market.StatusConnected,
			APIEndpoint: "https://api.carbon-exchange.example.com/v2",
			LastSync:    time.Now(),
		},
		{
			PlatformID:  "TP-002",
			Name:        "Shanghai Digital RMB International Platform",
			Type:        market.PlatformDigitalRMB,
			Status:      market.StatusConnected,
			APIEndpoint: "https://api.ecny-intl.example.com/v1",
			LastSync:    time.Now(),
		},
	}
	for i := range platforms {
		if err := db.Create(&platforms[i]).Error; err != nil {
			return err
		}
	}

	orders := []market.MarketOrder{
		{
			OrderID:      "MO-001",
			AssetName:    "Zero Carbon Park Solar Reduction 2024Q1",
			Amount:       100,
			PricePerUnit: 52.5,
			TotalPrice:   5250,
			Seller:       "zero-carbon-park",
			Time:         time.Now(),
			Type:         market.OrderAsk,
		},
		{
			OrderID:      "MO-002",
			AssetName:    "Building B Retrofit Carbon Sink",
			Amount:       200,
			PricePerUnit: 50.0,
			TotalPrice:   10000,
			Seller:       "Alpha Precision Manufacturing",
			Time:         time.Now(),
			Type:         market.OrderAsk,
		},
		{
			OrderID:      "MO-003",
			AssetName:    "Wanted: solar category carbon assets",
			Amount:       500,
			PricePerUnit: 51.0,
			TotalPrice:   25500,
			Seller:       "Shanghai export enterprise",
			Time:         time.Now(),
			Type:         market.OrderBid,
		},
	}
	for i := range orders {
		if err := db.Create(&orders[i]).Error; err != nil {
			return err
		}
	}

	return nil
}
