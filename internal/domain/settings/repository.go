package settings

import "context"

// Repository defines persistence for the singleton settings record.
type Repository interface {
	// Get returns the current settings. Implementations return defaults
	// when the record has never been written.
	Get(ctx context.Context) (*Settings, error)
	Update(ctx context.Context, s *Settings) error
}
