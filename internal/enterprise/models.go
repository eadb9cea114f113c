package enterprise

import (
	"time"

	"gorm.io/gorm"
)

// Compliance grades.
const (
	StatusCompliant    = "COMPLIANT"
	StatusWarning      = "WARNING"
	StatusNonCompliant = "NON_COMPLIANT"
)

// Enterprise is a registered park tenant holding a compliance grade and
// quota/consumption figures. The transaction engine reads it for risk
// context; only registration and the compliance sweep mutate it.
type Enterprise struct {
	gorm.Model                  `json:"-"`
	EnterpriseID                string    `gorm:"uniqueIndex" json:"id"`
	Name                        string    `json:"name"`
	ComplianceStatus            string    `json:"compliance_status"`
	TotalElectricityConsumption float64   `json:"total_electricity_consumption"` // KWH
	GreenElectricityRatio       float64   `json:"green_electricity_ratio"`       // percentage
	HoldingQuota                float64   `json:"holding_quota"`                 // tCO2e
	CarbonEmission              float64   `json:"carbon_emission"`               // tCO2e
	CarbonReduction             float64   `json:"carbon_reduction"`              // tCO2e
	RegistrationDate            time.Time `json:"registration_date"`
	ContactPerson               string    `json:"contact_person,omitempty"`
	ContactPhone                string    `json:"contact_phone,omitempty"`
	Industry                    string    `json:"industry,omitempty"`
	Address                     string    `json:"address,omitempty"`
	EmployeeCount               int       `json:"employee_count,omitempty"`
	AnnualRevenue               float64   `json:"annual_revenue,omitempty"`
}

// CreateEnterpriseRequest is the payload for enterprise registration.
type CreateEnterpriseRequest struct {
	Name                        string  `json:"name" binding:"required"`
	TotalElectricityConsumption float64 `json:"total_electricity_consumption"`
	GreenElectricityRatio       float64 `json:"green_electricity_ratio"`
	HoldingQuota                float64 `json:"holding_quota"`
	CarbonEmission              float64 `json:"carbon_emission"`
	CarbonReduction             float64 `json:"carbon_reduction"`
	ContactPerson               string  `json:"contact_person"`
	ContactPhone                string  `json:"contact_phone"`
	Industry                    string  `json:"industry"`
	Address                     string  `json:"address"`
	EmployeeCount               int     `json:"employee_count"`
	AnnualRevenue               float64 `json:"annual_revenue"`
}
