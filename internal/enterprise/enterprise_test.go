package enterprise

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/RWAworkteam/ZeroCarbon-OS-1/internal/types"
	"github.com/RWAworkteam/ZeroCarbon-OS-1/pkg/identifier"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&Enterprise{}))
	return NewService(db, identifier.NewSequential())
}

func TestRegisterEnterpriseStartsAtWarning(t *testing.T) {
	service := newTestService(t)

	enterprise, err := service.RegisterEnterprise(&CreateEnterpriseRequest{
		Name:                  "Alpha Precision Manufacturing",
		GreenElectricityRatio: 35,
		HoldingQuota:          1250,
		CarbonEmission:        900,
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(enterprise.EnterpriseID, "E-"))
	assert.Equal(t, StatusWarning, enterprise.ComplianceStatus)
	assert.False(t, enterprise.RegistrationDate.IsZero())
}

func TestRegisterEnterpriseRequiresName(t *testing.T) {
	service := newTestService(t)

	_, err := service.RegisterEnterprise(&CreateEnterpriseRequest{})
	var verr *types.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestGrade(t *testing.T) {
	cases := []struct {
		name     string
		e        Enterprise
		expected string
	}{
		{
			"within quota and clean power",
			Enterprise{HoldingQuota: 1000, CarbonEmission: 800, GreenElectricityRatio: 40},
			StatusCompliant,
		},
		{
			"within quota but dirty power",
			Enterprise{HoldingQuota: 1000, CarbonEmission: 800, GreenElectricityRatio: 10},
			StatusWarning,
		},
		{
			"slightly over quota with some green power",
			Enterprise{HoldingQuota: 1000, CarbonEmission: 1050, GreenElectricityRatio: 20},
			StatusWarning,
		},
		{
			"far over quota",
			Enterprise{HoldingQuota: 1000, CarbonEmission: 1500, GreenElectricityRatio: 40},
			StatusNonCompliant,
		},
		{
			"slightly over quota but dirty power",
			Enterprise{HoldingQuota: 1000, CarbonEmission: 1050, GreenElectricityRatio: 5},
			StatusNonCompliant,
		},
		{
			"exactly at quota boundary",
			Enterprise{HoldingQuota: 1000, CarbonEmission: 1000, GreenElectricityRatio: 30},
			StatusCompliant,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Grade(&tc.e))
		})
	}
}

func TestSweepRegrades(t *testing.T) {
	service := newTestService(t)
	processor := NewProcessor(service.GetDB(), time.Minute)

	compliant, err := service.RegisterEnterprise(&CreateEnterpriseRequest{
		Name:                  "Gamma Data Center",
		GreenElectricityRatio: 80,
		HoldingQuota:          8500,
		CarbonEmission:        5200,
	})
	require.NoError(t, err)

	overQuota, err := service.RegisterEnterprise(&CreateEnterpriseRequest{
		Name:                  "Beta Logistics",
		GreenElectricityRatio: 10,
		HoldingQuota:          400,
		CarbonEmission:        1800,
	})
	require.NoError(t, err)

	// No quota registered, must be skipped
	unquoted, err := service.RegisterEnterprise(&CreateEnterpriseRequest{
		Name: "Fresh Tenant",
	})
	require.NoError(t, err)

	require.NoError(t, processor.Sweep())

	graded, err := service.GetEnterprise(compliant.EnterpriseID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompliant, graded.ComplianceStatus)

	graded, err = service.GetEnterprise(overQuota.EnterpriseID)
	require.NoError(t, err)
	assert.Equal(t, StatusNonCompliant, graded.ComplianceStatus)

	graded, err = service.GetEnterprise(unquoted.EnterpriseID)
	require.NoError(t, err)
	assert.Equal(t, StatusWarning, graded.ComplianceStatus)
}

func TestListEnterprisesFiltersByCompliance(t *testing.T) {
	service := newTestService(t)

	_, err := service.RegisterEnterprise(&CreateEnterpriseRequest{Name: "One"})
	require.NoError(t, err)
	_, err = service.RegisterEnterprise(&CreateEnterpriseRequest{Name: "Two"})
	require.NoError(t, err)

	warned, err := service.ListEnterprises(StatusWarning)
	require.NoError(t, err)
	assert.Len(t, warned, 2)

	compliant, err := service.ListEnterprises(StatusCompliant)
	require.NoError(t, err)
	assert.Empty(t, compliant)
}
