package shared

import "context"

// Repository is the base contract every entity store implements.
// FindAll returns records ordered by ID ascending. Update and Delete return
// ErrNotFound when the record does not exist.
type Repository[T any] interface {
	Create(ctx context.Context, entity *T) error
	FindByID(ctx context.Context, id uint) (*T, error)
	FindAll(ctx context.Context) ([]T, error)
	Update(ctx context.Context, entity *T) error
	Delete(ctx context.Context, id uint) error
}
