package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/deal-pipeline/internal/model"
)

const dealColumns = "id,name,company_url,owner,stage,round,check_size,status,created_by,created_at,updated_at"

// DealRepo is the query surface over the `deals` table. Stage values are
// validated by callers against the fixed enumeration; the repository treats
// them as opaque strings.
type DealRepo struct{ DB *sql.DB }

func NewDealRepo(db *sql.DB) *DealRepo { return &DealRepo{DB: db} }

func scanDeal(s scanner) (model.Deal, error) {
	var d model.Deal
	err := s.Scan(&d.ID, &d.Name, &d.CompanyURL, &d.Owner, &d.Stage,
		&d.Round, &d.CheckSize, &d.Status, &d.CreatedBy, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

// Create inserts the deal and fills in its assigned ID.
func (r *DealRepo) Create(ctx context.Context, d *model.Deal) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO deals (name, company_url, owner, stage, round, check_size, status, created_by) VALUES (?,?,?,?,?,?,?,?)",
		d.Name, d.CompanyURL, d.Owner, d.Stage, d.Round, d.CheckSize, d.Status, d.CreatedBy)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	d.ID = uint64(id)
	return nil
}

// GetByID fetches a deal by id.
func (r *DealRepo) GetByID(ctx context.Context, id uint64) (model.Deal, error) {
	d, err := scanDeal(r.DB.QueryRowContext(ctx,
		"SELECT "+dealColumns+" FROM deals WHERE id=? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Deal{}, ErrNotFound
	}
	return d, err
}

// List returns deals ordered by id, optionally filtered by stage.
func (r *DealRepo) List(ctx context.Context, stage string, offset, limit int) ([]model.Deal, error) {
	query := "SELECT " + dealColumns + " FROM deals"
	args := []any{}
	if stage != "" {
		query += " WHERE stage=?"
		args = append(args, stage)
	}
	query += " ORDER BY id LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deals []model.Deal
	for rows.Next() {
		d, err := scanDeal(rows)
		if err != nil {
			return nil, err
		}
		deals = append(deals, d)
	}
	return deals, rows.Err()
}

// Update rewrites the editable fields of a deal.
func (r *DealRepo) Update(ctx context.Context, d model.Deal) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE deals SET name=?, company_url=?, owner=?, round=?, check_size=?, status=? WHERE id=?",
		d.Name, d.CompanyURL, d.Owner, d.Round, d.CheckSize, d.Status, d.ID)
	return err
}

// UpdateStage moves a deal to another pipeline stage.
func (r *DealRepo) UpdateStage(ctx context.Context, id uint64, stage string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE deals SET stage=? WHERE id=?", stage, id)
	return err
}

// Delete removes a deal row.
func (r *DealRepo) Delete(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM deals WHERE id=?", id)
	return err
}

// StageCounts returns the number of deals per pipeline stage. Every known
// stage appears in the result, empty ones with a zero count, so the board
// always renders all columns.
func (r *DealRepo) StageCounts(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int, len(model.Stages))
	for _, stage := range model.Stages {
		counts[stage] = 0
	}

	rows, err := r.DB.QueryContext(ctx,
		"SELECT stage, COUNT(*) FROM deals GROUP BY stage")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var stage string
		var n int
		if err := rows.Scan(&stage, &n); err != nil {
			return nil, err
		}
		counts[stage] = n
	}
	return counts, rows.Err()
}
