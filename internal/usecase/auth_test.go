package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/smart-resume-matcher/internal/domain"
	"github.com/fairyhunter13/smart-resume-matcher/internal/usecase"
)

func TestAuthService_RegisterAndLogin(t *testing.T) {
	users := newMemUsers()
	svc := usecase.NewAuthService(users, plainHasher{}, fakeTokens{})
	ctx := context.Background()

	u, err := svc.Register(ctx, "Ann", " Ann@Example.com ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", u.Email)
	assert.Equal(t, domain.RoleCandidate, u.Role)

	_, err = svc.Register(ctx, "Ann again", "ann@example.com", "secret1")
	assert.ErrorIs(t, err, domain.ErrConflict)

	tok, got, err := svc.Login(ctx, "ann@example.com", "secret1", false)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	me, err := svc.Authenticate(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, "Ann", me.Name)

	_, _, err = svc.Login(ctx, "ann@example.com", "wrong", false)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, _, err = svc.Login(ctx, "nobody@example.com", "secret1", false)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, _, err = svc.Login(ctx, "ann@example.com", "secret1", true)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	svc := usecase.NewAuthService(newMemUsers(), plainHasher{}, fakeTokens{})
	ctx := context.Background()
	for name, in := range map[string][3]string{
		"no name":        {"", "a@b.io", "secret1"},
		"bad email":      {"A", "not-an-email", "secret1"},
		"short password": {"A", "a@b.io", "123"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Register(ctx, in[0], in[1], in[2])
			assert.ErrorIs(t, err, domain.ErrInvalidArgument)
		})
	}
}

func TestAuthService_Authenticate_Errors(t *testing.T) {
	svc := usecase.NewAuthService(newMemUsers(), plainHasher{}, fakeTokens{})
	_, err := svc.Authenticate(context.Background(), "garbage")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = svc.Authenticate(context.Background(), "tok-5")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAuthService_EnsureSeedData_Idempotent(t *testing.T) {
	users := newMemUsers()
	svc := usecase.NewAuthService(users, plainHasher{}, fakeTokens{})
	ctx := context.Background()
	seed := domain.SeedAdmin{Name: "Admin", Email: "admin@matcher.local", Password: "admin123"}

	require.NoError(t, svc.EnsureSeedData(ctx, seed))
	require.NoError(t, svc.EnsureSeedData(ctx, seed))
	all, _ := users.List(ctx)
	require.Len(t, all, 1)
	assert.True(t, all[0].IsAdmin())

	require.NoError(t, svc.EnsureSeedData(ctx, domain.SeedAdmin{}))

	listed, err := svc.ListUsers(ctx, all[0])
	require.NoError(t, err)
	assert.Len(t, listed, 1)
	_, err = svc.ListUsers(ctx, domain.User{ID: 2, Role: domain.RoleCandidate})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
