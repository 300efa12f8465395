package repositories

import (
	"context"

	"github.com/satriahrh/arunika/satellite/domain/entities"
)

// SettingsProvider gives access to the current satellite settings.
type SettingsProvider interface {
	Settings() entities.Settings
	// Subscribe returns a channel receiving the latest settings after every
	// change, and a function to stop the subscription.
	Subscribe() (<-chan entities.Settings, func())
	// Update applies fn to a copy of the settings and persists the result.
	Update(ctx context.Context, fn func(*entities.Settings)) error
}
