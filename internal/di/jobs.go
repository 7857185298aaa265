package di

import (
	"fmt"

	"github.com/aristath/riskalloc/internal/config"
	"github.com/aristath/riskalloc/internal/scheduler"
	"github.com/rs/zerolog"
)

// RegisterJobs creates the scheduler and registers maintenance jobs on it.
// The scheduler is not started here.
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) error {
	if container == nil {
		return fmt.Errorf("container cannot be nil")
	}

	sched := scheduler.New(log)

	walJob := scheduler.NewCheckWALCheckpointsJob(container.ConfigDB, log)
	if err := sched.AddJob(cfg.MaintenanceSchedule, walJob); err != nil {
		return fmt.Errorf("invalid maintenance schedule %q: %w", cfg.MaintenanceSchedule, err)
	}

	container.Scheduler = sched
	return nil
}
