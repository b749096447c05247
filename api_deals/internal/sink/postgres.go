package sink

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"gfdeals/api_deals/internal/deals"
)

//go:embed schema.sql
var schemaSQL string

const (
	selectDealsSQL = `SELECT deal FROM gf_deals ORDER BY position`
	deleteDealsSQL = `DELETE FROM gf_deals`
	insertDealSQL  = `INSERT INTO gf_deals
		(content_hash, position, title, link, store, brand, category, ai_quality_score, diagnostics, deal)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
)

// PostgresSink stores one row per content hash and replaces the table in a
// single transaction.
type PostgresSink struct {
	db *sql.DB
}

func NewPostgresSink(db *sql.DB) *PostgresSink {
	return &PostgresSink{db: db}
}

// EnsureSchema creates the table and indexes if they are missing.
func (s *PostgresSink) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (s *PostgresSink) Load(ctx context.Context) ([]deals.Deal, error) {
	rows, err := s.db.QueryContext(ctx, selectDealsSQL)
	if err != nil {
		return nil, fmt.Errorf("query deals: %w", err)
	}
	defer rows.Close()

	var out []deals.Deal
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan deal: %w", err)
		}
		var d deals.Deal
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("decode deal: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate deals: %w", err)
	}
	return out, nil
}

func (s *PostgresSink) Persist(ctx context.Context, ds []deals.Deal) (res Result, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Result{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	deleted, err := tx.ExecContext(ctx, deleteDealsSQL)
	if err != nil {
		return Result{}, fmt.Errorf("clear deals: %w", err)
	}
	n, err := deleted.RowsAffected()
	if err != nil {
		return Result{}, fmt.Errorf("clear deals: %w", err)
	}
	res.Deleted = int(n)

	stmt, err := tx.PrepareContext(ctx, insertDealSQL)
	if err != nil {
		return Result{}, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, kd := range byContentHash(ds) {
		payload, err := json.Marshal(kd.deal)
		if err != nil {
			return Result{}, fmt.Errorf("encode deal %s: %w", kd.hash, err)
		}
		d := kd.deal
		diagnostics := d.Diagnostics
		if diagnostics == nil {
			diagnostics = []string{}
		}
		if _, err := stmt.ExecContext(ctx,
			kd.hash, i, d.Title, d.Link, d.Store, d.Brand, d.Category, d.AIQualityScore,
			pq.Array(diagnostics), payload,
		); err != nil {
			return Result{}, fmt.Errorf("insert deal %s: %w", kd.hash, err)
		}
		res.Inserted++
	}

	if err := tx.Commit(); err != nil {
		return Result{}, fmt.Errorf("commit: %w", err)
	}
	return res, nil
}
