package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/cookbookapp/cookbook-server/internal/domain"
	domainerrors "github.com/cookbookapp/cookbook-server/internal/errors"
	"github.com/cookbookapp/cookbook-server/internal/service"
)

func (s *Server) registerAuthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "register",
		Method:        http.MethodPost,
		Path:          "/users",
		Summary:       "Register new user",
		Description:   "Creates a new non-privileged user account.",
		Tags:          []string{"Users"},
		DefaultStatus: http.StatusCreated,
	}, s.handleRegister)

	huma.Register(s.api, huma.Operation{
		OperationID: "createSession",
		Method:      http.MethodPost,
		Path:        "/sessions",
		Summary:     "Log in or refresh",
		Description: "Authenticates with email and password, or exchanges a refresh token for a new access token when the refresh field is present.",
		Tags:        []string{"Sessions"},
	}, s.handleCreateSession)

	huma.Register(s.api, huma.Operation{
		OperationID: "getProfile",
		Method:      http.MethodGet,
		Path:        "/users/me",
		Summary:     "Get own profile",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetProfile)

	huma.Register(s.api, huma.Operation{
		OperationID: "replaceProfile",
		Method:      http.MethodPut,
		Path:        "/users/me",
		Summary:     "Replace own profile",
		Description: "Full update of the mutable profile fields (name and email).",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleReplaceProfile)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateProfile",
		Method:      http.MethodPatch,
		Path:        "/users/me",
		Summary:     "Update own profile",
		Description: "Partial update; only supplied fields change.",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateProfile)
}

// === DTOs ===

// RegisterRequest is the request body for user registration.
type RegisterRequest struct {
	Email    string `json:"email,omitempty" doc:"Email address, stored lowercase"`
	Password string `json:"password,omitempty" doc:"Password, at least 8 characters"`
	Name     string `json:"name,omitempty" doc:"Display name"`
}

// RegisterInput wraps the register request for Huma.
type RegisterInput struct {
	Body RegisterRequest
}

// UserResponse contains user information in API responses.
// The password credential is never included.
type UserResponse struct {
	ID        string    `json:"id" doc:"User ID"`
	Email     string    `json:"email" doc:"Email address"`
	Name      string    `json:"name" doc:"Display name"`
	IsActive  bool      `json:"is_active" doc:"Whether the account can log in"`
	CreatedAt time.Time `json:"created_at" doc:"Creation timestamp"`
	UpdatedAt time.Time `json:"updated_at" doc:"Last update timestamp"`
}

// UserOutput wraps a user response for Huma.
type UserOutput struct {
	Body UserResponse
}

// SessionRequest is the request body for POST /sessions. A non-empty
// refresh field selects the token refresh flow; otherwise it is a login.
type SessionRequest struct {
	Email    string `json:"email,omitempty" doc:"User email (login)"`
	Password string `json:"password,omitempty" doc:"User password (login)"`
	Refresh  string `json:"refresh,omitempty" doc:"Refresh token (refresh flow)"`
}

// SessionInput wraps the session request with forwarding headers for Huma.
type SessionInput struct {
	Body          SessionRequest
	XForwardedFor string `header:"X-Forwarded-For"`
	XRealIP       string `header:"X-Real-IP"`
}

// SessionResponse contains tokens issued by POST /sessions. The refresh
// flow returns only a new access token.
type SessionResponse struct {
	Access    string        `json:"access" doc:"PASETO access token"`
	Refresh   string        `json:"refresh,omitempty" doc:"Refresh token"`
	ExpiresIn int64         `json:"expires_in,omitempty" doc:"Access token lifetime in seconds"`
	User      *UserResponse `json:"user,omitempty" doc:"Authenticated user"`
}

// SessionOutput wraps the session response for Huma.
type SessionOutput struct {
	Body SessionResponse
}

// ReplaceProfileRequest is the request body for PUT /users/me.
type ReplaceProfileRequest struct {
	Name  string `json:"name,omitempty" doc:"Display name"`
	Email string `json:"email,omitempty" doc:"Email address, stored lowercase"`
}

// ReplaceProfileInput wraps the full profile update for Huma.
type ReplaceProfileInput struct {
	Body ReplaceProfileRequest
}

// UpdateProfileRequest is the request body for PATCH /users/me.
type UpdateProfileRequest struct {
	Name  *string `json:"name,omitempty" doc:"Display name"`
	Email *string `json:"email,omitempty" doc:"Email address, stored lowercase"`
}

// UpdateProfileInput wraps the partial profile update for Huma.
type UpdateProfileInput struct {
	Body UpdateProfileRequest
}

// === Handlers ===

func (s *Server) handleRegister(ctx context.Context, input *RegisterInput) (*UserOutput, error) {
	user, err := s.services.Auth.Register(ctx, service.RegisterRequest{
		Email:    input.Body.Email,
		Password: input.Body.Password,
		Name:     input.Body.Name,
	})
	if err != nil {
		return nil, err
	}

	return &UserOutput{Body: mapUser(user)}, nil
}

func (s *Server) handleCreateSession(ctx context.Context, input *SessionInput) (*SessionOutput, error) {
	if !s.loginLimiter.Allow(clientIP(input.XForwardedFor, input.XRealIP)) {
		return nil, domainerrors.RateLimited("too many attempts, try again later")
	}

	if input.Body.Refresh != "" {
		access, err := s.services.Auth.Refresh(ctx, input.Body.Refresh)
		if err != nil {
			return nil, err
		}
		return &SessionOutput{Body: SessionResponse{Access: access}}, nil
	}

	resp, err := s.services.Auth.Login(ctx, service.LoginRequest{
		Email:    input.Body.Email,
		Password: input.Body.Password,
	})
	if err != nil {
		return nil, err
	}

	user := mapUser(resp.User)
	return &SessionOutput{
		Body: SessionResponse{
			Access:    resp.AccessToken,
			Refresh:   resp.RefreshToken,
			ExpiresIn: resp.ExpiresIn,
			User:      &user,
		},
	}, nil
}

func (s *Server) handleGetProfile(ctx context.Context, _ *struct{}) (*UserOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.services.Auth.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &UserOutput{Body: mapUser(user)}, nil
}

func (s *Server) handleReplaceProfile(ctx context.Context, input *ReplaceProfileInput) (*UserOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	// PUT expects the complete mutable field set.
	user, err := s.services.Auth.UpdateProfile(ctx, userID, service.UpdateProfileRequest{
		Name:  &input.Body.Name,
		Email: &input.Body.Email,
	})
	if err != nil {
		return nil, err
	}

	return &UserOutput{Body: mapUser(user)}, nil
}

func (s *Server) handleUpdateProfile(ctx context.Context, input *UpdateProfileInput) (*UserOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.services.Auth.UpdateProfile(ctx, userID, service.UpdateProfileRequest{
		Name:  input.Body.Name,
		Email: input.Body.Email,
	})
	if err != nil {
		return nil, err
	}

	return &UserOutput{Body: mapUser(user)}, nil
}

// === Helpers ===

func mapUser(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
