package seed

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/yigit/coursehub/internal/app/models"
)

// AdminEnsurer creates or promotes the bootstrap admin account
type AdminEnsurer interface {
	EnsureAdmin(ctx context.Context, username, password string) (*models.Identity, bool, error)
}

// CreateDefaultData makes sure an ADMIN account exists. Registration only
// creates students, so without it nobody could manage the catalog.
// Missing credentials skip seeding.
func CreateDefaultData(ctx context.Context, admins AdminEnsurer, username, password string, lgr zerolog.Logger) error {
	if username == "" || password == "" {
		lgr.Warn().Msg("Admin credentials not configured, skipping admin seed")
		return nil
	}

	lgr.Info().Str("username", username).Msg("Checking/Creating default admin account...")
	admin, created, err := admins.EnsureAdmin(ctx, username, password)
	if err != nil {
		lgr.Error().Err(err).Str("username", username).Msg("Error ensuring admin account")
		return err
	}

	if created {
		lgr.Info().Int64("identityID", admin.ID).Msg("Default admin account created")
	} else {
		lgr.Info().Int64("identityID", admin.ID).Msg("Default admin account already present")
	}
	return nil
}
