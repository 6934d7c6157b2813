package service

import (
	"context"
	"user-service/shared/models"
)

// UserService defines account registration, session and profile operations.
type UserService interface {
	Register(ctx context.Context, req models.CreateUserRequest) (string, error)
	Login(ctx context.Context, username, password string) (string, error)
	Logout(ctx context.Context, token string) error
	VerifyToken(ctx context.Context, username string) (*models.User, error)
	Profile(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, user models.User) (*models.User, error)
	Delete(ctx context.Context, cert models.Certificate) error
	VerifyCertificate(ctx context.Context, cert models.Certificate) error
}
