package conf

import (
	"github.com/featherquest/featherquest-go/internal/errors"
)

// ValidateSettings checks the loaded settings for invalid combinations.
func ValidateSettings(settings *Settings) error {
	if settings.EBird.LookbackDays < 1 || settings.EBird.LookbackDays > 30 {
		// eBird caps the recent observations window at 30 days
		return errors.Newf("ebird.lookbackdays must be between 1 and 30, got %d", settings.EBird.LookbackDays).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}

	if settings.EBird.RateLimitMS < 0 {
		return errors.Newf("ebird.ratelimitms must not be negative, got %d", settings.EBird.RateLimitMS).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}

	if !settings.Output.SQLite.Enabled && !settings.Output.MySQL.Enabled {
		return errors.Newf("no observation store enabled, enable output.sqlite or output.mysql").
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}

	return nil
}
