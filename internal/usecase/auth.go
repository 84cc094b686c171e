package usecase

import (
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/fairyhunter13/smart-resume-matcher/internal/domain"
	"github.com/fairyhunter13/smart-resume-matcher/internal/observability"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

// AuthService registers, authenticates and resolves users.
type AuthService struct {
	Users  domain.UserRepository
	Hasher domain.PasswordHasher
	Tokens domain.TokenIssuer
}

// NewAuthService constructs an AuthService.
func NewAuthService(u domain.UserRepository, h domain.PasswordHasher, t domain.TokenIssuer) AuthService {
	return AuthService{Users: u, Hasher: h, Tokens: t}
}

// Register creates a candidate account. A taken email is domain.ErrConflict.
func (s AuthService) Register(ctx domain.Context, name, email, password string) (domain.User, error) {
	return s.create(ctx, name, email, password, domain.RoleCandidate)
}

func (s AuthService) create(ctx domain.Context, name, email, password string, role domain.Role) (domain.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" {
		return domain.User{}, fmt.Errorf("%w: name is required", domain.ErrInvalidArgument)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return domain.User{}, fmt.Errorf("%w: invalid email", domain.ErrInvalidArgument)
	}
	if len(password) < MinPasswordLength {
		return domain.User{}, fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidArgument, MinPasswordLength)
	}
	hash, err := s.Hasher.Hash(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("%w: %w", domain.ErrInternal, err)
	}
	u := domain.User{Name: name, Email: email, PasswordHash: hash, Role: role}
	id, err := s.Users.Create(ctx, u)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return domain.User{}, fmt.Errorf("%w: email already registered", domain.ErrConflict)
		}
		return domain.User{}, storeErr(err)
	}
	u.ID = id
	return u, nil
}

// Login verifies credentials and issues a token. With requireAdmin set, a
// valid non-admin login is domain.ErrForbidden.
func (s AuthService) Login(ctx domain.Context, email, password string, requireAdmin bool) (string, domain.User, error) {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.User{}, fmt.Errorf("%w: invalid email or password", domain.ErrUnauthorized)
		}
		return "", domain.User{}, storeErr(err)
	}
	if !s.Hasher.Verify(password, u.PasswordHash) {
		return "", domain.User{}, fmt.Errorf("%w: invalid email or password", domain.ErrUnauthorized)
	}
	if requireAdmin && !u.IsAdmin() {
		return "", domain.User{}, fmt.Errorf("%w: admin role required", domain.ErrForbidden)
	}
	tok, err := s.Tokens.Issue(u)
	if err != nil {
		return "", domain.User{}, fmt.Errorf("%w: %w", domain.ErrInternal, err)
	}
	return tok, u, nil
}

// Authenticate resolves a bearer token to its user.
func (s AuthService) Authenticate(ctx domain.Context, token string) (domain.User, error) {
	id, err := s.Tokens.Validate(token)
	if err != nil {
		return domain.User{}, err
	}
	u, err := s.Users.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, fmt.Errorf("%w: user no longer exists", domain.ErrUnauthorized)
		}
		return domain.User{}, storeErr(err)
	}
	return u, nil
}

// ListUsers returns every account; admins only.
func (s AuthService) ListUsers(ctx domain.Context, actor domain.User) ([]domain.User, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: admin role required", domain.ErrForbidden)
	}
	out, err := s.Users.List(ctx)
	if err != nil {
		return nil, storeErr(err)
	}
	return out, nil
}

// EnsureSeedData creates the bootstrap admin when its email is not taken.
// Calling it again is a no-op.
func (s AuthService) EnsureSeedData(ctx domain.Context, admin domain.SeedAdmin) error {
	lg := observability.LoggerFromContext(ctx)
	if strings.TrimSpace(admin.Email) == "" {
		lg.Info("seed admin not configured; skipping")
		return nil
	}
	_, err := s.Users.GetByEmail(ctx, admin.Email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return storeErr(err)
	}
	u, err := s.create(ctx, admin.Name, admin.Email, admin.Password, domain.RoleAdmin)
	if errors.Is(err, domain.ErrConflict) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("op=auth.ensure_seed: %w", err)
	}
	lg.Info("seed admin created", slog.Int64("user_id", u.ID), slog.String("email", u.Email))
	return nil
}
