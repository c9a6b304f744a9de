package domain

import (
	"context"
	"errors"
)

type RegisterRequest struct {
	Name      string
	Email     string
	AvatarURL string
}

type UpdateProfileRequest struct {
	Name      *string
	AvatarURL *string
}

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (User, error)
	// Authenticate resolves an API token to its account.
	Authenticate(ctx context.Context, apiToken string) (User, error)
	Me(ctx context.Context) (User, error)
	UpdateProfile(ctx context.Context, req UpdateProfileRequest) (User, error)
}

var (
	ErrInvalidUser     = errors.New("invalid_user")
	ErrInvalidName     = errors.New("invalid_name")
	ErrInvalidEmail    = errors.New("invalid_email")
	ErrInvalidToken    = errors.New("invalid_token")
	ErrEmailTaken      = errors.New("email_taken")
	ErrNotFound        = errors.New("not_found")
	ErrUnauthenticated = errors.New("unauthenticated")
)
