package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/user-management/internal/model"
)

// UserRepo mirrors the 'users' table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,email,password_hash,first_name,last_name,role,is_active,refresh_token_hash,created_at,updated_at"

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.Role, &u.IsActive, &u.RefreshTokenHash, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// Create inserts a user and returns the stored row. Emails are
// normalized to lowercase before insert; the unique index enforces
// case-insensitive uniqueness.
func (r *UserRepo) Create(ctx context.Context, u model.User) (model.User, error) {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, first_name, last_name, role, is_active) VALUES (?,?,?,?,?,?)",
		u.Email, u.PasswordHash, u.FirstName, u.LastName, u.Role, u.IsActive)
	if err != nil {
		if isDuplicate(err) {
			return model.User{}, ErrEmailExists
		}
		return model.User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, err
	}
	return r.FindByID(ctx, uint64(id))
}

// FindByEmail fetches a user by normalized email.
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// FindByID fetches a user by id.
func (r *UserRepo) FindByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// SetRefreshToken overwrites the stored refresh-token hash in a single
// statement. The row's previous token becomes invalid at that moment.
func (r *UserRepo) SetRefreshToken(ctx context.Context, userID uint64, tokenHash string) error {
	return r.updateToken(ctx, userID, sql.NullString{String: tokenHash, Valid: true})
}

// ClearRefreshToken nulls the stored hash. Clearing twice is a no-op.
func (r *UserRepo) ClearRefreshToken(ctx context.Context, userID uint64) error {
	return r.updateToken(ctx, userID, sql.NullString{})
}

func (r *UserRepo) updateToken(ctx context.Context, userID uint64, hash sql.NullString) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET refresh_token_hash=? WHERE id=?", hash, userID)
	if err != nil {
		return err
	}
	// A zero row count can mean either a missing row or an unchanged
	// value; only the former is an error.
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		if _, err := r.FindByID(ctx, userID); err != nil {
			return err
		}
	}
	return nil
}

// List returns one page of users matching the query plus the total
// match count, newest first.
func (r *UserRepo) List(ctx context.Context, q model.UserQuery) ([]model.User, int, error) {
	var where []string
	var args []any
	if s := strings.TrimSpace(q.Search); s != "" {
		like := "%" + s + "%"
		where = append(where, "(email LIKE ? OR first_name LIKE ? OR last_name LIKE ?)")
		args = append(args, like, like, like)
	}
	if q.Role != "" {
		where = append(where, "role=?")
		args = append(args, q.Role)
	}
	if q.IsActive != nil {
		where = append(where, "is_active=?")
		args = append(args, *q.IsActive)
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM users"+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page, limit := q.Page, q.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users"+clause+" ORDER BY created_at DESC LIMIT ? OFFSET ?",
		append(args, limit, (page-1)*limit)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
			&u.Role, &u.IsActive, &u.RefreshTokenHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

// Update applies a patch to one row, touching only present fields.
// The patch's Password field must already be a bcrypt hash by the time
// it reaches the repository.
func (r *UserRepo) Update(ctx context.Context, id uint64, p model.UserPatch) (model.User, error) {
	if p.Empty() {
		return r.FindByID(ctx, id)
	}
	var sets []string
	var args []any
	if p.Email != nil {
		sets = append(sets, "email=?")
		args = append(args, strings.ToLower(strings.TrimSpace(*p.Email)))
	}
	if p.Password != nil {
		sets = append(sets, "password_hash=?")
		args = append(args, *p.Password)
	}
	if p.FirstName != nil {
		sets = append(sets, "first_name=?")
		args = append(args, *p.FirstName)
	}
	if p.LastName != nil {
		sets = append(sets, "last_name=?")
		args = append(args, *p.LastName)
	}
	if p.Role != nil {
		sets = append(sets, "role=?")
		args = append(args, *p.Role)
	}
	if p.IsActive != nil {
		sets = append(sets, "is_active=?")
		args = append(args, *p.IsActive)
	}
	args = append(args, id)
	if _, err := r.DB.ExecContext(ctx,
		fmt.Sprintf("UPDATE users SET %s WHERE id=?", strings.Join(sets, ",")), args...); err != nil {
		if isDuplicate(err) {
			return model.User{}, ErrEmailExists
		}
		return model.User{}, err
	}
	return r.FindByID(ctx, id)
}

// SetActive flips the is_active flag.
func (r *UserRepo) SetActive(ctx context.Context, id uint64, active bool) error {
	res, err := r.DB.ExecContext(ctx, "UPDATE users SET is_active=? WHERE id=?", active, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		if _, err := r.FindByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a user row permanently.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// Stats aggregates the dashboard counters in one pass over the table.
func (r *UserRepo) Stats(ctx context.Context) (model.DashboardStats, error) {
	var st model.DashboardStats
	now := time.Now().UTC()
	err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(is_active),0),
		       COALESCE(SUM(role='ADMIN'),0),
		       COALESCE(SUM(role='USER'),0),
		       COALESCE(SUM(role='VIEWER'),0),
		       COALESCE(SUM(created_at>=?),0),
		       COALESCE(SUM(created_at>=?),0)
		FROM users`,
		now.AddDate(0, 0, -7), now.AddDate(0, 0, -30)).
		Scan(&st.Users.Total, &st.Users.Active, &st.Users.Admins, &st.Users.Users,
			&st.Users.Viewers, &st.RecentActivity.NewUsersThisWeek, &st.RecentActivity.NewUsersThisMonth)
	if err != nil {
		return model.DashboardStats{}, err
	}
	st.Users.Inactive = st.Users.Total - st.Users.Active
	st.GeneratedAt = now
	return st, nil
}

// isDuplicate detects MySQL error 1062 (duplicate key).
func isDuplicate(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
