package di

import (
	"fmt"

	"github.com/aristath/riskalloc/internal/modules/settings"
	"github.com/rs/zerolog"
)

// InitializeRepositories creates all repositories and stores them in the container
func InitializeRepositories(container *Container, log zerolog.Logger) error {
	if container == nil {
		return fmt.Errorf("container cannot be nil")
	}

	container.SettingsRepo = settings.NewRepository(container.ConfigDB.Conn(), log)
	return nil
}
