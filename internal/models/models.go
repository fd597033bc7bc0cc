// package models defines the domain entities for the movie watchlist service
package models

import "context"

// Model defines the base interface for all persistent models.
// Implementations include User, Movie, Watchlist, etc.
type Model interface {
	Key() int64      // Key returns the unique identifier for this model, zero before insert
	Validate() error // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(ctx context.Context, model T) error                      // Create inserts a new model and assigns its ID
	Get(ctx context.Context, id int64) (T, error)                   // Get retrieves a model by its ID
	Update(ctx context.Context, model T) error                      // Update modifies an existing model
	Delete(ctx context.Context, id int64) error                     // Delete removes a model by its ID
	List(ctx context.Context, criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}
