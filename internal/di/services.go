package di

import (
	"fmt"

	"github.com/aristath/riskalloc/internal/config"
	"github.com/aristath/riskalloc/internal/modules/allocation"
	"github.com/aristath/riskalloc/internal/modules/settings"
	"github.com/aristath/riskalloc/internal/services"
	"github.com/rs/zerolog"
)

// InitializeServices creates all services and stores them in the container.
// Stored market overrides are applied to cfg before the allocator is built;
// an invalid override is logged and the environment values are kept.
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	if container == nil {
		return fmt.Errorf("container cannot be nil")
	}

	container.SettingsService = settings.NewService(container.SettingsRepo, cfg.Slider, log)

	if err := cfg.UpdateFromSettings(container.SettingsService); err != nil {
		log.Warn().Err(err).Msg("Ignoring stored market overrides")
	}

	allocationService, err := allocation.NewService(cfg.Market, log)
	if err != nil {
		return fmt.Errorf("failed to create allocation service: %w", err)
	}
	container.AllocationService = allocationService

	viewService, err := services.NewAllocationViewService(allocationService, cfg.DefaultSweep(), log)
	if err != nil {
		return fmt.Errorf("failed to create allocation view service: %w", err)
	}
	container.ViewService = viewService

	log.Info().
		Float64("expected_return", cfg.Market.ExpectedReturn).
		Float64("volatility", cfg.Market.Volatility).
		Float64("risk_free_rate", cfg.Market.RiskFreeRate).
		Msg("Allocation services initialized")
	return nil
}
