package service

import (
	"context"
	"encoding/hex"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cookbookapp/cookbook-server/internal/auth"
	domainerrors "github.com/cookbookapp/cookbook-server/internal/errors"
	"github.com/cookbookapp/cookbook-server/internal/store/sqlite"
)

// testEnv bundles the services wired against a throwaway database.
type testEnv struct {
	store   *sqlite.Store
	auth    *AuthService
	recipes *RecipeService
	labels  *LabelService
	tokens  *auth.TokenService
}

// setupTest creates services backed by a temporary store.
func setupTest(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := sqlite.Open(dbPath, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	authKey, err := auth.LoadOrGenerateKey(t.TempDir())
	require.NoError(t, err)

	tokenService, err := auth.NewTokenService(
		hex.EncodeToString(authKey),
		15*time.Minute,
		30*24*time.Hour,
	)
	require.NoError(t, err)

	return &testEnv{
		store:   s,
		auth:    NewAuthService(s, tokenService, logger),
		recipes: NewRecipeService(s, logger),
		labels:  NewLabelService(s, logger),
		tokens:  tokenService,
	}
}

func TestAuthService_Register_Success(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	user, err := env.auth.Register(ctx, RegisterRequest{
		Email:    "Alice@Example.com",
		Password: "correct-horse",
		Name:     "Alice",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, user.ID)
	// Emails are stored lowercase.
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, "Alice", user.Name)
	assert.True(t, user.IsActive)
	assert.False(t, user.IsStaff)
	assert.False(t, user.IsSuperuser)
	// The raw password never persists.
	assert.NotContains(t, user.PasswordHash, "correct-horse")
}

func TestAuthService_Register_Validation(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  RegisterRequest
	}{
		{"missing email", RegisterRequest{Password: "long-enough", Name: "A"}},
		{"malformed email", RegisterRequest{Email: "not-an-email", Password: "long-enough", Name: "A"}},
		{"short password", RegisterRequest{Email: "a@example.com", Password: "short", Name: "A"}},
		{"missing name", RegisterRequest{Email: "a@example.com", Password: "long-enough"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.auth.Register(ctx, tt.req)
			require.Error(t, err)
			var domainErr *domainerrors.Error
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)
		})
	}
}

func TestAuthService_Register_FieldDetails(t *testing.T) {
	env := setupTest(t)

	// Two bad fields at once: the message names one failure, the details
	// map carries them all.
	_, err := env.auth.Register(context.Background(), RegisterRequest{
		Password: "short",
		Name:     "A",
	})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)

	details, ok := domainErr.Details.(map[string]string)
	require.True(t, ok)
	assert.Contains(t, details, "email")
	assert.Contains(t, details, "password")
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	_, err := env.auth.Register(ctx, RegisterRequest{
		Email: "dup@example.com", Password: "long-enough", Name: "First",
	})
	require.NoError(t, err)

	// Same address in different case is still taken, and the failure is a
	// validation error, not a conflict.
	_, err = env.auth.Register(ctx, RegisterRequest{
		Email: "DUP@example.com", Password: "long-enough", Name: "Second",
	})
	require.Error(t, err)
	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)
}

func TestAuthService_Login_Success(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	_, err := env.auth.Register(ctx, RegisterRequest{
		Email: "bob@example.com", Password: "super-secret", Name: "Bob",
	})
	require.NoError(t, err)

	resp, err := env.auth.Login(ctx, LoginRequest{
		Email: "BOB@example.com", Password: "super-secret",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, int64((15 * time.Minute).Seconds()), resp.ExpiresIn)
	assert.Equal(t, "bob@example.com", resp.User.Email)

	// The access token verifies and names the user.
	claims, err := env.tokens.VerifyAccessToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
}

func TestAuthService_Login_OpaqueFailures(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	user, err := env.auth.Register(ctx, RegisterRequest{
		Email: "carol@example.com", Password: "super-secret", Name: "Carol",
	})
	require.NoError(t, err)

	// Unknown email, wrong password, and disabled account must be
	// indistinguishable to the caller.
	_, errUnknown := env.auth.Login(ctx, LoginRequest{Email: "ghost@example.com", Password: "whatever1"})
	_, errWrongPw := env.auth.Login(ctx, LoginRequest{Email: "carol@example.com", Password: "wrong-password"})

	require.NoError(t, env.store.SetUserActive(ctx, user.ID, false))
	_, errDisabled := env.auth.Login(ctx, LoginRequest{Email: "carol@example.com", Password: "super-secret"})

	for _, err := range []error{errUnknown, errWrongPw, errDisabled} {
		require.Error(t, err)
		var domainErr *domainerrors.Error
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domainerrors.CodeInvalidCredentials, domainErr.Code)
		assert.Equal(t, "invalid email or password", domainErr.Message)
	}
}

func TestAuthService_Refresh_Success(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	user, err := env.auth.Register(ctx, RegisterRequest{
		Email: "dave@example.com", Password: "super-secret", Name: "Dave",
	})
	require.NoError(t, err)

	resp, err := env.auth.Login(ctx, LoginRequest{Email: "dave@example.com", Password: "super-secret"})
	require.NoError(t, err)

	accessToken, err := env.auth.Refresh(ctx, resp.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, accessToken)

	claims, err := env.tokens.VerifyAccessToken(accessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
}

func TestAuthService_Refresh_InvalidToken(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-refresh-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.auth.Refresh(ctx, tt.token)
			require.Error(t, err)
			var domainErr *domainerrors.Error
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, domainerrors.CodeInvalidToken, domainErr.Code)
		})
	}
}

func TestAuthService_Refresh_DisabledAccount(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	user, err := env.auth.Register(ctx, RegisterRequest{
		Email: "erin@example.com", Password: "super-secret", Name: "Erin",
	})
	require.NoError(t, err)

	resp, err := env.auth.Login(ctx, LoginRequest{Email: "erin@example.com", Password: "super-secret"})
	require.NoError(t, err)

	require.NoError(t, env.store.SetUserActive(ctx, user.ID, false))

	_, err = env.auth.Refresh(ctx, resp.RefreshToken)
	require.Error(t, err)
	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeInvalidToken, domainErr.Code)
}

func TestAuthService_UpdateProfile(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	user, err := env.auth.Register(ctx, RegisterRequest{
		Email: "frank@example.com", Password: "super-secret", Name: "Frank",
	})
	require.NoError(t, err)

	newName := "Franklin"
	updated, err := env.auth.UpdateProfile(ctx, user.ID, UpdateProfileRequest{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, "Franklin", updated.Name)
	assert.Equal(t, "frank@example.com", updated.Email)

	newEmail := "franklin@example.com"
	updated, err = env.auth.UpdateProfile(ctx, user.ID, UpdateProfileRequest{Email: &newEmail})
	require.NoError(t, err)
	assert.Equal(t, "franklin@example.com", updated.Email)

	// The new address works for login, the old one doesn't.
	_, err = env.auth.Login(ctx, LoginRequest{Email: "franklin@example.com", Password: "super-secret"})
	assert.NoError(t, err)
	_, err = env.auth.Login(ctx, LoginRequest{Email: "frank@example.com", Password: "super-secret"})
	assert.Error(t, err)
}

func TestAuthService_UpdateProfile_TakenEmail(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	_, err := env.auth.Register(ctx, RegisterRequest{
		Email: "taken@example.com", Password: "super-secret", Name: "One",
	})
	require.NoError(t, err)
	user, err := env.auth.Register(ctx, RegisterRequest{
		Email: "mover@example.com", Password: "super-secret", Name: "Two",
	})
	require.NoError(t, err)

	taken := "taken@example.com"
	_, err = env.auth.UpdateProfile(ctx, user.ID, UpdateProfileRequest{Email: &taken})
	require.Error(t, err)
	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)
}

func TestAuthService_VerifyAccessToken(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	user, err := env.auth.Register(ctx, RegisterRequest{
		Email: "grace@example.com", Password: "super-secret", Name: "Grace",
	})
	require.NoError(t, err)

	resp, err := env.auth.Login(ctx, LoginRequest{Email: "grace@example.com", Password: "super-secret"})
	require.NoError(t, err)

	got, claims, err := env.auth.VerifyAccessToken(ctx, resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, user.ID, claims.UserID)

	// Garbage tokens and disabled accounts are both rejected.
	_, _, err = env.auth.VerifyAccessToken(ctx, "v4.local.garbage")
	assert.Error(t, err)

	require.NoError(t, env.store.SetUserActive(ctx, user.ID, false))
	_, _, err = env.auth.VerifyAccessToken(ctx, resp.AccessToken)
	assert.Error(t, err)
}

func TestAuthService_Provision(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	user, err := env.auth.Provision(ctx, ProvisionRequest{
		Email:     "admin@example.com",
		Password:  "super-secret",
		Name:      "Admin",
		Staff:     true,
		Superuser: true,
	})
	require.NoError(t, err)
	assert.True(t, user.IsStaff)
	assert.True(t, user.IsSuperuser)
	assert.True(t, user.IsAdmin())
}
