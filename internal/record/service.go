package record

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/medgraph/medgraph/internal/platform/db"
)

// Service owns record writes. Every mutation derives title and summary
// from the payload and keeps the record's outgoing derived edges in step,
// inside a single transaction.
type Service struct {
	repo  Repository
	edges EdgeRepository
	tx    db.TxRunner
}

func NewService(repo Repository, edges EdgeRepository, tx db.TxRunner) *Service {
	return &Service{repo: repo, edges: edges, tx: tx}
}

func (s *Service) Create(ctx context.Context, t Type, data Data, metadata map[string]string) (*Record, error) {
	if !t.Valid() {
		return nil, &UnsupportedTypeError{Type: string(t)}
	}
	if data == nil {
		return nil, validationf("record data is required")
	}
	if data.Kind() != t {
		return nil, validationf("data payload is %s, expected %s", data.Kind(), t)
	}

	now := time.Now().UTC()
	rec := &Record{
		ID:        uuid.New(),
		Type:      t,
		Title:     DeriveTitle(data),
		Summary:   DeriveSummary(data),
		Data:      data,
		Metadata:  metadata,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Insert(ctx, rec); err != nil {
			return err
		}
		if edges := DeriveEdges(rec.ID, data); len(edges) > 0 {
			return s.edges.Insert(ctx, edges)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Update replaces a record's payload. Type and ID are immutable. The
// record's previously derived outgoing edges are discarded and re-derived
// so that a cleared reference field drops its edge.
func (s *Service) Update(ctx context.Context, t Type, id uuid.UUID, data Data, metadata map[string]string) (*Record, error) {
	if !t.Valid() {
		return nil, &UnsupportedTypeError{Type: string(t)}
	}
	if data == nil {
		return nil, validationf("record data is required")
	}
	if data.Kind() != t {
		return nil, validationf("data payload is %s, expected %s", data.Kind(), t)
	}

	var updated *Record
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		existing, err := s.repo.GetByID(ctx, t, id)
		if err != nil {
			return err
		}
		rec := &Record{
			ID:        id,
			Type:      t,
			Title:     DeriveTitle(data),
			Summary:   DeriveSummary(data),
			Data:      data,
			Metadata:  metadata,
			CreatedAt: existing.CreatedAt,
			UpdatedAt: time.Now().UTC(),
		}
		if rec.Metadata == nil {
			rec.Metadata = existing.Metadata
		}
		if err := s.repo.Update(ctx, rec); err != nil {
			return err
		}
		if err := s.edges.DeleteBySource(ctx, id); err != nil {
			return err
		}
		if edges := DeriveEdges(id, data); len(edges) > 0 {
			if err := s.edges.Insert(ctx, edges); err != nil {
				return err
			}
		}
		updated = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a record together with every edge touching it, in either
// direction, so no orphaned edges are left behind.
func (s *Service) Delete(ctx context.Context, t Type, id uuid.UUID) error {
	if !t.Valid() {
		return &UnsupportedTypeError{Type: string(t)}
	}
	return s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Delete(ctx, t, id); err != nil {
			return err
		}
		return s.edges.DeleteByRecord(ctx, id)
	})
}

func (s *Service) Get(ctx context.Context, t Type, id uuid.UUID) (*Record, error) {
	if !t.Valid() {
		return nil, &UnsupportedTypeError{Type: string(t)}
	}
	return s.repo.GetByID(ctx, t, id)
}

func (s *Service) ListByType(ctx context.Context, t Type) ([]*Record, error) {
	if !t.Valid() {
		return nil, &UnsupportedTypeError{Type: string(t)}
	}
	return s.repo.ListByType(ctx, t)
}
