package timers

import (
	"context"

	"github.com/dmitrijs2005/countdown/internal/server/models"
)

// Repository owns the canonical, ordered collection of timers.
type Repository interface {
	// Initialize creates an empty collection if none exists. Storage
	// failures are logged, never returned.
	Initialize(ctx context.Context) error
	// LoadAll returns the collection, or an empty one when storage fails.
	LoadAll(ctx context.Context) ([]models.Timer, error)
	// Get returns the timer with id or common.ErrNotFound.
	Get(ctx context.Context, id string) (*models.Timer, error)
	// Append adds timer at the end of the collection.
	Append(ctx context.Context, timer models.Timer) error
	// Replace swaps the timer with id in place, or returns common.ErrNotFound.
	Replace(ctx context.Context, id string, timer models.Timer) error
}
