package record

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medgraph/medgraph/internal/platform/db"
)

type edgeRepoPG struct {
	pool *pgxpool.Pool
}

func NewEdgeRepo(pool *pgxpool.Pool) EdgeRepository {
	return &edgeRepoPG{pool: pool}
}

func (r *edgeRepoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const edgeCols = `id, source_type, source_id, target_type, target_id, relationship_type, metadata`

// Insert writes edges one by one, skipping duplicates. The unique
// constraint on (source_id, target_id, relationship_type) makes repeated
// derivation runs idempotent.
func (r *edgeRepoPG) Insert(ctx context.Context, edges []Edge) error {
	for i := range edges {
		e := &edges[i]
		if e.ID == uuid.Nil {
			e.ID = uuid.New()
		}
		meta := e.Metadata
		if meta == nil {
			meta = map[string]string{}
		}
		metaJSON, err := json.Marshal(meta)
		if err != nil {
			return fmt.Errorf("encode edge metadata: %w", err)
		}
		_, err = r.conn(ctx).Exec(ctx, `
			INSERT INTO graph_edge (id, source_type, source_id, target_type, target_id, relationship_type, metadata)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (source_id, target_id, relationship_type) DO NOTHING`,
			e.ID, e.SourceType, e.SourceID, e.TargetType, e.TargetID, e.RelationshipType, metaJSON,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *edgeRepoPG) List(ctx context.Context) ([]Edge, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+edgeCols+` FROM graph_edge ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEdges(rows)
}

func (r *edgeRepoPG) ListByRecord(ctx context.Context, id uuid.UUID) ([]Edge, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+edgeCols+` FROM graph_edge WHERE source_id = $1 OR target_id = $1 ORDER BY created_at ASC`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEdges(rows)
}

func (r *edgeRepoPG) DeleteBySource(ctx context.Context, sourceID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM graph_edge WHERE source_id = $1`, sourceID)
	return err
}

func (r *edgeRepoPG) DeleteByRecord(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM graph_edge WHERE source_id = $1 OR target_id = $1`, id)
	return err
}

func (r *edgeRepoPG) DeleteByID(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM graph_edge WHERE id = $1`, id)
	return err
}

func (r *edgeRepoPG) DeleteAll(ctx context.Context) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM graph_edge`)
	return err
}

func collectEdges(rows pgx.Rows) ([]Edge, error) {
	var edges []Edge
	for rows.Next() {
		var e Edge
		var meta []byte
		if err := rows.Scan(&e.ID, &e.SourceType, &e.SourceID, &e.TargetType, &e.TargetID, &e.RelationshipType, &meta); err != nil {
			return nil, err
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &e.Metadata); err != nil {
				return nil, fmt.Errorf("decode edge metadata: %w", err)
			}
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}
