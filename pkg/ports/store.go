package ports

import "context"

// ConfigStore persists parameter values by profile name.
// Only values of persistent parameters are ever handed to a store.
type ConfigStore interface {
	// Save replaces the values stored under profile.
	Save(ctx context.Context, profile string, values map[string]any) error

	// Load retrieves the values stored under profile.
	// Returns domain.ErrProfileNotFound if the profile does not exist.
	Load(ctx context.Context, profile string) (map[string]any, error)

	// Delete removes a profile. Deleting a missing profile is not an error.
	Delete(ctx context.Context, profile string) error

	// List returns the stored profile names.
	List(ctx context.Context) ([]string, error)
}
