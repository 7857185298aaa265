package di

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterJobs(t *testing.T) {
	cfg := testConfig(t)

	container, err := InitializeDatabases(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Close() })

	require.NoError(t, RegisterJobs(container, cfg, zerolog.Nop()))
	require.NotNil(t, container.Scheduler)
	assert.Equal(t, 1, container.Scheduler.Jobs())
}

func TestRegisterJobs_InvalidSchedule(t *testing.T) {
	cfg := testConfig(t)
	cfg.MaintenanceSchedule = "whenever"

	container, err := InitializeDatabases(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Close() })

	assert.Error(t, RegisterJobs(container, cfg, zerolog.Nop()))
	assert.Nil(t, container.Scheduler)
}

func TestRegisterJobs_NilContainer(t *testing.T) {
	assert.Error(t, RegisterJobs(nil, testConfig(t), zerolog.Nop()))
}
