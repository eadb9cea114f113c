package enterprise

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Grading thresholds for the periodic compliance sweep.
const (
	compliantGreenRatio = 30.0 // percent green electricity for a clean grade
	warningGreenRatio   = 15.0
	quotaWarningMargin  = 1.1 // emissions up to 10% over quota degrade to WARNING
)

// Processor re-grades enterprise compliance on a fixed interval. It
// stands in for the external compliance collaborator: the transaction
// engine itself never changes an enterprise's grade.
type Processor struct {
	db       *Database
	interval time.Duration
}

func NewProcessor(db *Database, interval time.Duration) *Processor {
	return &Processor{
		db:       db,
		interval: interval,
	}
}

// Start begins the compliance sweep loop
func (p *Processor) Start(ctx context.Context) {
	logger := log.With().Str("component", "compliance_processor").Logger()
	logger.Info().Dur("interval", p.interval).Msg("starting compliance processor")

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("shutting down compliance processor")
			return
		case <-ticker.C:
			if err := p.Sweep(); err != nil {
				logger.Error().Err(err).Msg("compliance sweep failed")
			}
		}
	}
}

// Sweep grades every registered enterprise from its green-electricity
// ratio and quota utilization.
func (p *Processor) Sweep() error {
	logger := log.With().Str("component", "compliance_processor").Logger()

	enterprises, err := p.db.ListEnterprises("")
	if err != nil {
		return err
	}

	logger.Info().Int("enterprises", len(enterprises)).Msg("running compliance sweep")

	for _, enterprise := range enterprises {
		// No quota registered yet, nothing to grade against
		if enterprise.HoldingQuota == 0 {
			continue
		}

		grade := Grade(&enterprise)
		if grade == enterprise.ComplianceStatus {
			continue
		}

		logger.Info().
			Str("enterprise_id", enterprise.EnterpriseID).
			Str("previous", enterprise.ComplianceStatus).
			Str("grade", grade).
			Msg("compliance grade changed")

		enterprise.ComplianceStatus = grade
		if err := p.db.UpdateEnterprise(&enterprise); err != nil {
			logger.Error().
				Err(err).
				Str("enterprise_id", enterprise.EnterpriseID).
				Msg("failed to update compliance grade")
			continue
		}
	}

	return nil
}

// Grade computes the compliance status for one enterprise.
func Grade(e *Enterprise) string {
	withinQuota := e.CarbonEmission <= e.HoldingQuota

	switch {
	case withinQuota && e.GreenElectricityRatio >= compliantGreenRatio:
		return StatusCompliant
	case e.CarbonEmission <= e.HoldingQuota*quotaWarningMargin && e.GreenElectricityRatio >= warningGreenRatio:
		return StatusWarning
	case withinQuota:
		return StatusWarning
	default:
		return StatusNonCompliant
	}
}
