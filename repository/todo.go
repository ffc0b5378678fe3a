package repository

import (
	"context"

	"github.com/tasknest/backend/domain"
)

type TodoRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Todo, error)
	// List returns every record, newest first.
	List(ctx context.Context) ([]domain.Todo, error)
	Create(ctx context.Context, todo *domain.Todo) (*domain.Todo, error)
	Update(ctx context.Context, todo *domain.Todo) error
	Delete(ctx context.Context, id string) error
}

// ListCache caches the full listing between mutations. Implementations
// absorb their own failures; a cold or broken cache just means a database
// read.
type ListCache interface {
	Get(ctx context.Context) ([]domain.Todo, bool)
	Set(ctx context.Context, todos []domain.Todo)
	Invalidate(ctx context.Context)
}
