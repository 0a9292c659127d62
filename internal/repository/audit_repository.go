package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/iliyamo/user-management/internal/model"
)

// AuditRepo persists audit entries (append-only 'audit_logs' table).
type AuditRepo struct{ DB *sql.DB }

func NewAuditRepo(db *sql.DB) *AuditRepo { return &AuditRepo{DB: db} }

// Insert appends one entry. Details are stored as a JSON column.
func (r *AuditRepo) Insert(ctx context.Context, e model.AuditEntry) error {
	var details sql.NullString
	if len(e.Details) > 0 {
		b, err := json.Marshal(e.Details)
		if err != nil {
			return err
		}
		details = sql.NullString{String: string(b), Valid: true}
	}
	ts := e.CreatedAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO audit_logs (actor_user_id, action, resource, details, created_at) VALUES (?,?,?,?,?)",
		e.ActorUserID, e.Action, e.Resource, details, ts)
	return err
}

// List returns one page of entries matching the query plus the total
// count, newest first.
func (r *AuditRepo) List(ctx context.Context, q model.AuditQuery) ([]model.AuditEntry, int, error) {
	var where []string
	var args []any
	if q.ActorUserID != 0 {
		where = append(where, "actor_user_id=?")
		args = append(args, q.ActorUserID)
	}
	if q.Action != "" {
		where = append(where, "action=?")
		args = append(args, q.Action)
	}
	if !q.From.IsZero() {
		where = append(where, "created_at>=?")
		args = append(args, q.From)
	}
	if !q.To.IsZero() {
		where = append(where, "created_at<=?")
		args = append(args, q.To)
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM audit_logs"+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page, limit := q.Page, q.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,actor_user_id,action,resource,details,created_at FROM audit_logs"+clause+
			" ORDER BY created_at DESC LIMIT ? OFFSET ?",
		append(args, limit, (page-1)*limit)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var entries []model.AuditEntry
	for rows.Next() {
		var e model.AuditEntry
		var resource, details sql.NullString
		if err := rows.Scan(&e.ID, &e.ActorUserID, &e.Action, &resource, &details, &e.CreatedAt); err != nil {
			return nil, 0, err
		}
		e.Resource = resource.String
		if details.Valid {
			// A corrupt details blob should not hide the entry itself.
			_ = json.Unmarshal([]byte(details.String), &e.Details)
		}
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}
