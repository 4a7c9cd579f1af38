package postgres

import (
	"context"
	"database/sql"
	"time"

	"tourapi/internal/model"
	"tourapi/internal/query"
	"tourapi/internal/repository"
)

// UserPostgres implements repository.UserRepository.
type UserPostgres struct {
	db *sql.DB
}

func NewUserPostgres(db *sql.DB) *UserPostgres {
	return &UserPostgres{db: db}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

const userSelect = `SELECT u.id, u.name, u.email, u.photo, u.role, u.password_hash, u.password_changed_at,
	u.password_reset_token, u.password_reset_expires, u.active, u.created_at FROM users u`

func scanUser(s scanner) (*model.User, error) {
	var (
		u                model.User
		changed, expires sql.NullTime
		resetToken       sql.NullString
	)
	if err := s.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.Photo,
		&u.Role,
		&u.PasswordHash,
		&changed,
		&resetToken,
		&expires,
		&u.Active,
		&u.CreatedAt,
	); err != nil {
		return nil, err
	}
	if changed.Valid {
		u.PasswordChangedAt = &changed.Time
	}
	if expires.Valid {
		u.PasswordResetExpires = &expires.Time
	}
	u.PasswordResetToken = resetToken.String
	return &u, nil
}

func (r *UserPostgres) List(ctx context.Context, q *query.Query) ([]model.User, error) {
	where, args := q.Where([]string{"u.active"}, nil)
	page, args := q.LimitOffset(args)
	rows, err := r.db.QueryContext(ctx, userSelect+where+q.OrderBy()+page, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *UserPostgres) findOne(ctx context.Context, cond string, args ...any) (*model.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, userSelect+` WHERE `+cond+` AND u.active`, args...))
	if err != nil {
		return nil, notFound(err)
	}
	return u, nil
}

func (r *UserPostgres) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.findOne(ctx, `u.id = $1`, id)
}

func (r *UserPostgres) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, `u.email = $1`, model.NormalizeEmail(email))
}

func (r *UserPostgres) FindByResetToken(ctx context.Context, hashed string, now time.Time) (*model.User, error) {
	return r.findOne(ctx, `u.password_reset_token = $1 AND u.password_reset_expires > $2`, hashed, now)
}

func (r *UserPostgres) Create(ctx context.Context, u *model.User) (*model.User, error) {
	const q = `
		INSERT INTO users (name, email, photo, role, password_hash, password_changed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, active, created_at
	`
	out := *u
	var changed sql.NullTime
	if u.PasswordChangedAt != nil {
		changed = sql.NullTime{Time: *u.PasswordChangedAt, Valid: true}
	}
	if err := r.db.QueryRowContext(ctx, q,
		u.Name,
		model.NormalizeEmail(u.Email),
		u.Photo,
		string(u.Role),
		u.PasswordHash,
		changed,
	).Scan(&out.ID, &out.Active, &out.CreatedAt); err != nil {
		return nil, err
	}
	out.Email = model.NormalizeEmail(u.Email)
	return &out, nil
}

func (r *UserPostgres) Update(ctx context.Context, u *model.User) (*model.User, error) {
	const q = `
		UPDATE users SET name = $2, email = $3, photo = $4, role = $5
		WHERE id = $1 AND active
		RETURNING id, name, email, photo, role, password_hash, password_changed_at,
			password_reset_token, password_reset_expires, active, created_at
	`
	out, err := scanUser(r.db.QueryRowContext(ctx, q, u.ID, u.Name, model.NormalizeEmail(u.Email), u.Photo, string(u.Role)))
	if err != nil {
		return nil, notFound(err)
	}
	return out, nil
}

func (r *UserPostgres) UpdatePassword(ctx context.Context, id, hash string, changedAt time.Time) error {
	const q = `
		UPDATE users SET password_hash = $2, password_changed_at = $3,
			password_reset_token = NULL, password_reset_expires = NULL
		WHERE id = $1 AND active
	`
	res, err := r.db.ExecContext(ctx, q, id, hash, changedAt)
	if err != nil {
		return err
	}
	return expectOne(res)
}

func (r *UserPostgres) SetResetToken(ctx context.Context, id, hashed string, expires *time.Time) error {
	const q = `UPDATE users SET password_reset_token = $2, password_reset_expires = $3 WHERE id = $1`
	token := sql.NullString{String: hashed, Valid: hashed != ""}
	var exp sql.NullTime
	if expires != nil && token.Valid {
		exp = sql.NullTime{Time: *expires, Valid: true}
	}
	res, err := r.db.ExecContext(ctx, q, id, token, exp)
	if err != nil {
		return err
	}
	return expectOne(res)
}

func (r *UserPostgres) Deactivate(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET active = FALSE WHERE id = $1 AND active`, id)
	if err != nil {
		return err
	}
	return expectOne(res)
}

func (r *UserPostgres) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectOne(res)
}
