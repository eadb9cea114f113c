package enterprise

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/RWAworkteam/ZeroCarbon-OS-1/internal/types"
	"github.com/RWAworkteam/ZeroCarbon-OS-1/pkg/identifier"
	"github.com/RWAworkteam/ZeroCarbon-OS-1/pkg/response"
)

// Service owns the enterprise registry. The core transaction engine
// only reads it; mutation comes from registration and the compliance
// sweep.
type Service struct {
	db  *Database
	gen identifier.Generator
}

// NewService creates an enterprise registry service.
func NewService(gormDB *gorm.DB, gen identifier.Generator) *Service {
	return &Service{
		db:  NewDatabase(gormDB),
		gen: gen,
	}
}

// RegisterEnterprise creates a new enterprise. New registrations start
// at WARNING until the first compliance sweep grades them.
func (s *Service) RegisterEnterprise(req *CreateEnterpriseRequest) (*Enterprise, error) {
	if req.Name == "" {
		return nil, types.NewValidationError("name", "must not be empty")
	}

	enterprise := &Enterprise{
		EnterpriseID:                s.gen.EntityID("E-"),
		Name:                        req.Name,
		ComplianceStatus:            StatusWarning,
		TotalElectricityConsumption: req.TotalElectricityConsumption,
		GreenElectricityRatio:       req.GreenElectricityRatio,
		HoldingQuota:                req.HoldingQuota,
		CarbonEmission:              req.CarbonEmission,
		CarbonReduction:             req.CarbonReduction,
		RegistrationDate:            time.Now(),
		ContactPerson:               req.ContactPerson,
		ContactPhone:                req.ContactPhone,
		Industry:                    req.Industry,
		Address:                     req.Address,
		EmployeeCount:               req.EmployeeCount,
		AnnualRevenue:               req.AnnualRevenue,
	}

	if err := s.db.CreateEnterprise(enterprise); err != nil {
		return nil, err
	}

	log.Info().
		Str("enterprise_id", enterprise.EnterpriseID).
		Str("name", enterprise.Name).
		Str("service", "enterprise").
		Msg("registered new enterprise")

	return enterprise, nil
}

// GetEnterprise retrieves an enterprise by its ID.
func (s *Service) GetEnterprise(enterpriseID string) (*Enterprise, error) {
	return s.db.GetEnterprise(enterpriseID)
}

// ListEnterprises retrieves enterprises with an optional compliance
// status filter.
func (s *Service) ListEnterprises(complianceStatus string) ([]Enterprise, error) {
	return s.db.ListEnterprises(complianceStatus)
}

// GetDB exposes the database layer for the compliance processor.
func (s *Service) GetDB() *Database {
	return s.db
}

// GinHandlers contains HTTP handlers for enterprise endpoints
type GinHandlers struct {
	service *Service
}

// NewGinHandlers creates a new set of HTTP handlers for enterprise endpoints
func NewGinHandlers(service *Service) *GinHandlers {
	return &GinHandlers{
		service: service,
	}
}

// CreateEnterpriseHandler handles POST requests to register enterprises
func (h *GinHandlers) CreateEnterpriseHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateEnterpriseRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, err.Error())
			return
		}

		enterprise, err := h.service.RegisterEnterprise(&req)
		response.Handle(c, enterprise, err)
	}
}

// GetEnterpriseHandler handles GET requests for a single enterprise
func (h *GinHandlers) GetEnterpriseHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		enterprise, err := h.service.GetEnterprise(c.Param("enterprise_id"))
		response.Handle(c, enterprise, err)
	}
}

// ListEnterprisesHandler handles GET requests for the enterprise list
func (h *GinHandlers) ListEnterprisesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		enterprises, err := h.service.ListEnterprises(c.Query("compliance_status"))
		if err != nil {
			response.Handle(c, nil, err)
			return
		}
		response.Success(c, types.ListResponse{Items: enterprises, Total: int64(len(enterprises))})
	}
}
