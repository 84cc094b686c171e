package postgres

import (
	"strings"

	"github.com/fairyhunter13/smart-resume-matcher/internal/domain"
)

// UserRepo persists accounts.
type UserRepo struct{ Pool PgxPool }

// NewUserRepo constructs a UserRepo with the given pool.
func NewUserRepo(p PgxPool) *UserRepo { return &UserRepo{Pool: p} }

const userColumns = `id, name, email, password_hash, role, created_at`

// Create inserts a user and returns its id. A duplicate email yields domain.ErrConflict.
func (r *UserRepo) Create(ctx domain.Context, u domain.User) (int64, error) {
	ctx, span := startSpan(ctx, "users", "Create", "INSERT")
	defer span.End()
	if u.Role == "" {
		u.Role = domain.RoleCandidate
	}
	var id int64
	err := r.Pool.QueryRow(ctx,
		`INSERT INTO users (name, email, password_hash, role) VALUES ($1,$2,$3,$4) RETURNING id`,
		u.Name, strings.ToLower(strings.TrimSpace(u.Email)), u.PasswordHash, string(u.Role),
	).Scan(&id)
	if err != nil {
		return 0, mapErr("user.create", err)
	}
	return id, nil
}

// Get loads a user by id.
func (r *UserRepo) Get(ctx domain.Context, id int64) (domain.User, error) {
	ctx, span := startSpan(ctx, "users", "Get", "SELECT")
	defer span.End()
	u, err := scanUser(r.Pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id))
	if err != nil {
		return domain.User{}, mapErr("user.get", err)
	}
	return u, nil
}

// GetByEmail loads a user by email, case-insensitively.
func (r *UserRepo) GetByEmail(ctx domain.Context, email string) (domain.User, error) {
	ctx, span := startSpan(ctx, "users", "GetByEmail", "SELECT")
	defer span.End()
	u, err := scanUser(r.Pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email=$1`, strings.ToLower(strings.TrimSpace(email))))
	if err != nil {
		return domain.User{}, mapErr("user.get_by_email", err)
	}
	return u, nil
}

// List returns every user ordered by id.
func (r *UserRepo) List(ctx domain.Context) ([]domain.User, error) {
	ctx, span := startSpan(ctx, "users", "List", "SELECT")
	defer span.End()
	rows, err := r.Pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, mapErr("user.list", err)
	}
	defer rows.Close()
	out := make([]domain.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, mapErr("user.list", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr("user.list", err)
	}
	return out, nil
}

type scanner interface{ Scan(dest ...any) error }

func scanUser(s scanner) (domain.User, error) {
	var u domain.User
	var role string
	if err := s.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &u.CreatedAt); err != nil {
		return domain.User{}, err
	}
	u.Role = domain.Role(role)
	return u, nil
}
