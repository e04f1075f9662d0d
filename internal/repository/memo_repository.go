package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/deal-pipeline/internal/model"
)

const memoColumns = "id,deal_id,created_by,last_updated_by,current_version,summary,market,product,traction,risks,open_questions,created_at,updated_at"

const memoVersionColumns = "id,memo_id,deal_id,version_number,created_by,summary,market,product,traction,risks,open_questions,change_summary,created_at"

// MemoRepo is the query surface over the `ic_memos` and `ic_memo_versions`
// tables. A deal holds at most one memo; every save writes the content to
// the memo row and appends an immutable snapshot to the versions table in
// the same transaction.
type MemoRepo struct{ DB *sql.DB }

func NewMemoRepo(db *sql.DB) *MemoRepo { return &MemoRepo{DB: db} }

func scanMemo(s scanner) (model.Memo, error) {
	var m model.Memo
	err := s.Scan(&m.ID, &m.DealID, &m.CreatedBy, &m.LastUpdatedBy, &m.CurrentVersion,
		&m.Summary, &m.Market, &m.Product, &m.Traction, &m.Risks, &m.OpenQuestions,
		&m.CreatedAt, &m.UpdatedAt)
	return m, err
}

func scanMemoVersion(s scanner) (model.MemoVersion, error) {
	var v model.MemoVersion
	err := s.Scan(&v.ID, &v.MemoID, &v.DealID, &v.VersionNumber, &v.CreatedBy,
		&v.Summary, &v.Market, &v.Product, &v.Traction, &v.Risks, &v.OpenQuestions,
		&v.ChangeSummary, &v.CreatedAt)
	return v, err
}

// GetByDealID fetches the current memo for a deal.
func (r *MemoRepo) GetByDealID(ctx context.Context, dealID uint64) (model.Memo, error) {
	m, err := scanMemo(r.DB.QueryRowContext(ctx,
		"SELECT "+memoColumns+" FROM ic_memos WHERE deal_id=? LIMIT 1", dealID))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Memo{}, ErrNotFound
	}
	return m, err
}

// Save creates the memo on first write and bumps the version on every
// later one, appending a content snapshot to the versions table in the same
// transaction. The memo row is locked while the snapshot is written so two
// concurrent saves cannot claim the same version number. On return m holds
// the assigned ID and current version.
func (r *MemoRepo) Save(ctx context.Context, m *model.Memo, changeSummary *string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	existing, err := scanMemo(tx.QueryRowContext(ctx,
		"SELECT "+memoColumns+" FROM ic_memos WHERE deal_id=? LIMIT 1 FOR UPDATE", m.DealID))
	switch {
	case errors.Is(err, sql.ErrNoRows):
		m.CurrentVersion = 1
		m.LastUpdatedBy = m.CreatedBy
		res, err := tx.ExecContext(ctx,
			"INSERT INTO ic_memos (deal_id, created_by, last_updated_by, current_version, summary, market, product, traction, risks, open_questions) VALUES (?,?,?,?,?,?,?,?,?,?)",
			m.DealID, m.CreatedBy, m.LastUpdatedBy, m.CurrentVersion,
			m.Summary, m.Market, m.Product, m.Traction, m.Risks, m.OpenQuestions)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		m.ID = uint64(id)
	case err != nil:
		return err
	default:
		m.ID = existing.ID
		m.CreatedBy = existing.CreatedBy
		m.CurrentVersion = existing.CurrentVersion + 1
		if _, err := tx.ExecContext(ctx,
			"UPDATE ic_memos SET last_updated_by=?, current_version=?, summary=?, market=?, product=?, traction=?, risks=?, open_questions=? WHERE id=?",
			m.LastUpdatedBy, m.CurrentVersion,
			m.Summary, m.Market, m.Product, m.Traction, m.Risks, m.OpenQuestions, m.ID); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO ic_memo_versions (memo_id, deal_id, version_number, created_by, summary, market, product, traction, risks, open_questions, change_summary) VALUES (?,?,?,?,?,?,?,?,?,?,?)",
		m.ID, m.DealID, m.CurrentVersion, m.LastUpdatedBy,
		m.Summary, m.Market, m.Product, m.Traction, m.Risks, m.OpenQuestions, changeSummary); err != nil {
		return err
	}
	return tx.Commit()
}

// ListVersions returns every snapshot of a memo, latest first.
func (r *MemoRepo) ListVersions(ctx context.Context, memoID uint64) ([]model.MemoVersion, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+memoVersionColumns+" FROM ic_memo_versions WHERE memo_id=? ORDER BY version_number DESC", memoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []model.MemoVersion
	for rows.Next() {
		v, err := scanMemoVersion(rows)
		if err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// GetVersion fetches one snapshot by memo and version number.
func (r *MemoRepo) GetVersion(ctx context.Context, memoID uint64, versionNumber int) (model.MemoVersion, error) {
	v, err := scanMemoVersion(r.DB.QueryRowContext(ctx,
		"SELECT "+memoVersionColumns+" FROM ic_memo_versions WHERE memo_id=? AND version_number=? LIMIT 1",
		memoID, versionNumber))
	if errors.Is(err, sql.ErrNoRows) {
		return model.MemoVersion{}, ErrNotFound
	}
	return v, err
}
