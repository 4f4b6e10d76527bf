package record

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists records into their per-variant tables. All methods
// honor an enclosing transaction placed in the context by db.TxRunner.
type Repository interface {
	Insert(ctx context.Context, rec *Record) error
	Update(ctx context.Context, rec *Record) error
	Delete(ctx context.Context, t Type, id uuid.UUID) error
	GetByID(ctx context.Context, t Type, id uuid.UUID) (*Record, error)
	ListByType(ctx context.Context, t Type) ([]*Record, error)
	Exists(ctx context.Context, t Type, id uuid.UUID) (bool, error)
	DeleteAll(ctx context.Context, t Type) error
}

// EdgeRepository persists relationship edges.
type EdgeRepository interface {
	Insert(ctx context.Context, edges []Edge) error
	List(ctx context.Context) ([]Edge, error)
	ListByRecord(ctx context.Context, id uuid.UUID) ([]Edge, error)
	DeleteBySource(ctx context.Context, sourceID uuid.UUID) error
	DeleteByRecord(ctx context.Context, id uuid.UUID) error
	DeleteByID(ctx context.Context, id uuid.UUID) error
	DeleteAll(ctx context.Context) error
}
