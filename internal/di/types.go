package di

import (
	"github.com/aristath/riskalloc/internal/database"
	"github.com/aristath/riskalloc/internal/modules/allocation"
	"github.com/aristath/riskalloc/internal/modules/settings"
	"github.com/aristath/riskalloc/internal/scheduler"
	"github.com/aristath/riskalloc/internal/services"
)

// Container holds all dependencies for the application.
//
// It is the single source of truth for service instances: Wire builds it and
// the server hands its members to handlers.
type Container struct {
	// Databases
	ConfigDB *database.DB // Settings (risk aversion, market overrides)

	// Repositories
	SettingsRepo *settings.Repository

	// Services
	SettingsService   *settings.Service
	AllocationService *allocation.Service
	ViewService       *services.AllocationViewService

	// Background maintenance (started by main, not by Wire)
	Scheduler *scheduler.Scheduler
}

// Close releases the container's databases.
func (c *Container) Close() error {
	if c == nil || c.ConfigDB == nil {
		return nil
	}
	return c.ConfigDB.Close()
}
