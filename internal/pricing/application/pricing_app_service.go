package application

import (
	"github.com/rs/zerolog"
)

// Pricing kinds used for metrics labels.
const (
	kindEnergy      = "energy"
	kindService     = "service"
	kindCorrection  = "correction"
	kindTotal       = "total"
	kindRateVersion = "rate_version"
)

// PricingApplicationService turns station sheets and tariff tables into
// finalized per-station schedule texts.
type PricingApplicationService struct {
	logger zerolog.Logger
}

// Option configures the service.
type Option func(*PricingApplicationService)

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *PricingApplicationService) {
		s.logger = logger
	}
}

// NewPricingApplicationService constructs the service.
func NewPricingApplicationService(opts ...Option) *PricingApplicationService {
	s := &PricingApplicationService{logger: zerolog.Nop()}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}
