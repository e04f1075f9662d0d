package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/deal-pipeline/internal/model"
)

// RoleRepo reads the `roles` reference table. Authorization never consults
// it; the rows exist so clients can render role metadata.
type RoleRepo struct{ DB *sql.DB }

func NewRoleRepo(db *sql.DB) *RoleRepo { return &RoleRepo{DB: db} }

// ListActive returns all assignable roles ordered by privilege level.
func (r *RoleRepo) ListActive(ctx context.Context) ([]model.Role, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,name,description,level,is_active,created_at,updated_at FROM roles WHERE is_active=1 ORDER BY level DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []model.Role
	for rows.Next() {
		var ro model.Role
		if err := rows.Scan(&ro.ID, &ro.Name, &ro.Description, &ro.Level,
			&ro.IsActive, &ro.CreatedAt, &ro.UpdatedAt); err != nil {
			return nil, err
		}
		roles = append(roles, ro)
	}
	return roles, rows.Err()
}
