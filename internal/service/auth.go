package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/cookbookapp/cookbook-server/internal/auth"
	"github.com/cookbookapp/cookbook-server/internal/domain"
	domainerrors "github.com/cookbookapp/cookbook-server/internal/errors"
	"github.com/cookbookapp/cookbook-server/internal/id"
	"github.com/cookbookapp/cookbook-server/internal/store"
)

// validate is a shared validator instance for request validation.
var validate = func() *validator.Validate {
	v := validator.New()
	// Use JSON tag names for field names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("json")
		if name == "" {
			return fld.Name
		}
		// Remove any options (like omitempty, -)
		for i := 0; i < len(name); i++ {
			if name[i] == ',' {
				return name[:i]
			}
		}
		return name
	})
	return v
}()

// AuthService handles registration, login, token refresh, and profile
// management.
type AuthService struct {
	store        store.Store
	tokenService *auth.TokenService
	logger       *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(store store.Store, tokenService *auth.TokenService, logger *slog.Logger) *AuthService {
	return &AuthService{
		store:        store,
		tokenService: tokenService,
		logger:       logger,
	}
}

// RegisterRequest contains self-service user registration data.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=1024"`
	Name     string `json:"name" validate:"required"`
}

// LoginRequest contains user credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse contains the authenticated user and both tokens.
type LoginResponse struct {
	User         *domain.User
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64 // access token lifetime in seconds
}

// ProvisionRequest contains administratively created account data. Unlike
// registration it may grant staff and superuser flags.
type ProvisionRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8,max=1024"`
	Name      string `json:"name" validate:"required"`
	Staff     bool   `json:"is_staff"`
	Superuser bool   `json:"is_superuser"`
}

// UpdateProfileRequest contains profile fields mutable by the user.
// Only name and email can change via this path; nil leaves a field as is.
type UpdateProfileRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=1"`
	Email *string `json:"email" validate:"omitempty,email"`
}

// Register creates a new non-privileged user account.
// An already-taken email is reported as a validation failure.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	userID, err := id.Generate("user")
	if err != nil {
		return nil, fmt.Errorf("generate user ID: %w", err)
	}

	user := &domain.User{
		ID:           userID,
		Email:        domain.NormalizeEmail(req.Email),
		Name:         req.Name,
		PasswordHash: passwordHash,
		IsActive:     true,
	}
	user.InitTimestamps()

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.Validation("email is already in use")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user registered", "user_id", userID, "email", user.Email)

	return user, nil
}

// Provision creates a user account with optional staff/superuser flags.
// Used by administrative tooling, never exposed over HTTP.
func (s *AuthService) Provision(ctx context.Context, req ProvisionRequest) (*domain.User, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	userID, err := id.Generate("user")
	if err != nil {
		return nil, fmt.Errorf("generate user ID: %w", err)
	}

	user := &domain.User{
		ID:           userID,
		Email:        domain.NormalizeEmail(req.Email),
		Name:         req.Name,
		PasswordHash: passwordHash,
		IsActive:     true,
		IsStaff:      req.Staff,
		IsSuperuser:  req.Superuser,
	}
	user.InitTimestamps()

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExists("email is already in use")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user provisioned",
		"user_id", userID,
		"email", user.Email,
		"staff", req.Staff,
		"superuser", req.Superuser,
	)

	return user, nil
}

// Login authenticates a user and opens a session. Unknown email, wrong
// password, and disabled account all produce the same opaque failure for
// the caller; the distinction exists only in the logs.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	user, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.logger.Info("login failed: unknown email", "email", domain.NormalizeEmail(req.Email))
			return nil, domainerrors.InvalidCredentials("invalid email or password")
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	valid, err := auth.VerifyPassword(user.PasswordHash, req.Password)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !valid {
		s.logger.Info("login failed: wrong password", "user_id", user.ID)
		return nil, domainerrors.InvalidCredentials("invalid email or password")
	}

	if !user.IsActive {
		s.logger.Info("login failed: account disabled", "user_id", user.ID)
		return nil, domainerrors.InvalidCredentials("invalid email or password")
	}

	accessToken, err := s.tokenService.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	refreshToken, err := s.tokenService.GenerateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	sessionID, err := id.Generate("session")
	if err != nil {
		return nil, fmt.Errorf("generate session ID: %w", err)
	}

	now := time.Now()
	session := &domain.Session{
		ID:               sessionID,
		UserID:           user.ID,
		RefreshTokenHash: auth.HashRefreshToken(refreshToken),
		ExpiresAt:        now.Add(s.tokenService.RefreshTokenDuration()),
		CreatedAt:        now,
		LastSeenAt:       now,
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.logger.Info("user logged in", "user_id", user.ID)

	return &LoginResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.tokenService.AccessTokenDuration().Seconds()),
	}, nil
}

// Refresh exchanges a valid refresh token for a new access token.
// The refresh token itself is not rotated. Expired sessions are removed
// on sight.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", domainerrors.InvalidToken("refresh token is required")
	}

	session, err := s.store.GetSessionByRefreshToken(ctx, auth.HashRefreshToken(refreshToken))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", domainerrors.InvalidToken("invalid refresh token")
		}
		return "", fmt.Errorf("lookup session: %w", err)
	}

	if session.IsExpired() {
		if err := s.store.DeleteSession(ctx, session.ID); err != nil {
			s.logger.Warn("failed to delete expired session", "session_id", session.ID, "error", err)
		}
		return "", domainerrors.InvalidToken("refresh token expired")
	}

	user, err := s.store.GetUser(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", domainerrors.InvalidToken("invalid refresh token")
		}
		return "", fmt.Errorf("get user: %w", err)
	}
	if !user.IsActive {
		s.logger.Info("refresh rejected: account disabled", "user_id", user.ID)
		return "", domainerrors.InvalidToken("invalid refresh token")
	}

	accessToken, err := s.tokenService.GenerateAccessToken(user)
	if err != nil {
		return "", fmt.Errorf("generate access token: %w", err)
	}

	session.Touch()
	if err := s.store.TouchSession(ctx, session); err != nil {
		s.logger.Warn("failed to touch session", "session_id", session.ID, "error", err)
	}

	return accessToken, nil
}

// GetProfile returns the user's own profile.
func (s *AuthService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// UpdateProfile changes the user's name and/or email. A taken email is
// reported as a validation failure, matching registration.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*domain.User, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		user.Email = domain.NormalizeEmail(*req.Email)
	}
	user.Touch()

	if err := s.store.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.Validation("email is already in use")
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	return user, nil
}

// VerifyAccessToken validates a bearer token and returns the associated
// active user. Used by the authentication middleware.
func (s *AuthService) VerifyAccessToken(ctx context.Context, tokenString string) (*domain.User, *auth.AccessClaims, error) {
	claims, err := s.tokenService.VerifyAccessToken(tokenString)
	if err != nil {
		return nil, nil, domainerrors.Unauthorized("invalid or expired token")
	}

	user, err := s.store.GetUser(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, domainerrors.Unauthorized("invalid or expired token")
		}
		return nil, nil, fmt.Errorf("get user: %w", err)
	}
	if !user.IsActive {
		return nil, nil, domainerrors.Unauthorized("invalid or expired token")
	}

	return user, claims, nil
}

// formatValidationError converts validator errors to user-friendly domain
// errors. The message carries the first failure; every failed field is
// reported in the details map.
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}
	if len(validationErrs) == 0 {
		return err
	}

	details := make(map[string]string, len(validationErrs))
	for _, e := range validationErrs {
		details[e.Field()] = fieldErrorMessage(e)
	}

	return domainerrors.ValidationWithDetails(fieldErrorMessage(validationErrs[0]), details)
}

func fieldErrorMessage(e validator.FieldError) string {
	field := e.Field()
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, e.Param())
	case "max":
		return fmt.Sprintf("%s exceeds maximum length of %s characters", field, e.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
