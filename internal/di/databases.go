package di

import (
	"fmt"
	"path/filepath"

	"github.com/aristath/riskalloc/internal/config"
	"github.com/aristath/riskalloc/internal/database"
	"github.com/rs/zerolog"
)

// InitializeDatabases opens config.db and applies its schema
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{}

	configDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "config.db"),
		Profile: database.ProfileStandard,
		Name:    "config",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize config database: %w", err)
	}

	if err := configDB.Migrate(); err != nil {
		configDB.Close()
		return nil, fmt.Errorf("failed to migrate config database: %w", err)
	}
	container.ConfigDB = configDB

	log.Info().Str("path", configDB.Path()).Msg("Config database ready")
	return container, nil
}
