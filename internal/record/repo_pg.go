package record

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medgraph/medgraph/internal/platform/db"
)

var tables = map[Type]string{
	TypePatient:      "patient_record",
	TypePractitioner: "practitioner_record",
	TypeEncounter:    "encounter_record",
	TypeCondition:    "condition_record",
	TypeMedication:   "medication_record",
	TypeProcedure:    "procedure_record",
	TypeObservation:  "observation_record",
	TypeDocument:     "document_record",
}

// Table returns the collection name for a variant.
func Table(t Type) (string, error) {
	table, ok := tables[t]
	if !ok {
		return "", &UnsupportedTypeError{Type: string(t)}
	}
	return table, nil
}

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func (r *repoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const recCols = `id, title, summary, data, metadata, created_at, updated_at`

func (r *repoPG) Insert(ctx context.Context, rec *Record) error {
	table, err := Table(rec.Type)
	if err != nil {
		return err
	}
	data, meta, err := encodePayload(rec)
	if err != nil {
		return err
	}
	_, err = r.conn(ctx).Exec(ctx, `
		INSERT INTO `+table+` (id, title, summary, data, metadata)
		VALUES ($1, $2, $3, $4, $5)`,
		rec.ID, rec.Title, rec.Summary, data, meta,
	)
	return err
}

func (r *repoPG) Update(ctx context.Context, rec *Record) error {
	table, err := Table(rec.Type)
	if err != nil {
		return err
	}
	data, meta, err := encodePayload(rec)
	if err != nil {
		return err
	}
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE `+table+` SET title=$2, summary=$3, data=$4, metadata=$5, updated_at=NOW()
		WHERE id = $1`,
		rec.ID, rec.Title, rec.Summary, data, meta,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, t Type, id uuid.UUID) error {
	table, err := Table(t)
	if err != nil {
		return err
	}
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, t Type, id uuid.UUID) (*Record, error) {
	table, err := Table(t)
	if err != nil {
		return nil, err
	}
	return scanRecord(t, r.conn(ctx).QueryRow(ctx, `SELECT `+recCols+` FROM `+table+` WHERE id = $1`, id))
}

func (r *repoPG) ListByType(ctx context.Context, t Type) ([]*Record, error) {
	table, err := Table(t)
	if err != nil {
		return nil, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+recCols+` FROM `+table+` ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []*Record
	for rows.Next() {
		rec, err := scanRecordRows(t, rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func (r *repoPG) Exists(ctx context.Context, t Type, id uuid.UUID) (bool, error) {
	table, err := Table(t)
	if err != nil {
		return false, err
	}
	var exists bool
	err = r.conn(ctx).QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM `+table+` WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

func (r *repoPG) DeleteAll(ctx context.Context, t Type) error {
	table, err := Table(t)
	if err != nil {
		return err
	}
	_, err = r.conn(ctx).Exec(ctx, `DELETE FROM `+table)
	return err
}

func encodePayload(rec *Record) ([]byte, []byte, error) {
	data, err := json.Marshal(rec.Data)
	if err != nil {
		return nil, nil, fmt.Errorf("encode %s data: %w", rec.Type, err)
	}
	meta := rec.Metadata
	if meta == nil {
		meta = map[string]string{}
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return nil, nil, fmt.Errorf("encode %s metadata: %w", rec.Type, err)
	}
	return data, metaJSON, nil
}

func scanRecord(t Type, row pgx.Row) (*Record, error) {
	rec := Record{Type: t}
	var data, meta []byte
	err := row.Scan(&rec.ID, &rec.Title, &rec.Summary, &data, &meta, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodePayload(&rec, data, meta)
}

func scanRecordRows(t Type, rows pgx.Rows) (*Record, error) {
	rec := Record{Type: t}
	var data, meta []byte
	if err := rows.Scan(&rec.ID, &rec.Title, &rec.Summary, &data, &meta, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	return decodePayload(&rec, data, meta)
}

func decodePayload(rec *Record, data, meta []byte) (*Record, error) {
	d, err := UnmarshalData(rec.Type, data)
	if err != nil {
		return nil, err
	}
	rec.Data = d
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &rec.Metadata); err != nil {
			return nil, fmt.Errorf("decode %s metadata: %w", rec.Type, err)
		}
	}
	return rec, nil
}
