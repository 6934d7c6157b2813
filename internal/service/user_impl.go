package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"user-service/shared/interfaces"
	"user-service/shared/models"
	"user-service/shared/utils"

	"go.uber.org/zap"
)

// Compile-time check to ensure userServiceImpl implements UserService
var _ UserService = (*userServiceImpl)(nil)

type userServiceImpl struct {
	userRepo  interfaces.UserRepository
	hasher    PasswordHasher
	publisher interfaces.AccountEventPublisher
	tokenTTL  time.Duration
	now       func() time.Time
	logger    *zap.Logger
}

// NewUserService creates a UserService. Tokens issued on login stay valid for tokenTTL.
func NewUserService(
	userRepo interfaces.UserRepository,
	hasher PasswordHasher,
	publisher interfaces.AccountEventPublisher,
	tokenTTL time.Duration,
	logger *zap.Logger,
) UserService {
	return &userServiceImpl{
		userRepo:  userRepo,
		hasher:    hasher,
		publisher: publisher,
		tokenTTL:  tokenTTL,
		now:       time.Now,
		logger:    logger.Named("UserService"),
	}
}

// Register creates the account and logs it in with the same credentials.
func (s *userServiceImpl) Register(ctx context.Context, req models.CreateUserRequest) (string, error) {
	logFields := []zap.Field{zap.String("username", req.Username)}
	s.logger.Info("Registering new user", logFields...)

	if req.Username == "" || req.Password == "" {
		s.logger.Warn("Registration attempt with empty username or password", logFields...)
		return "", models.ErrInvalidInput
	}

	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		s.logger.Error("Failed to hash password during registration", append(logFields, zap.Error(err))...)
		return "", models.ErrInternalServer.Wrap(err)
	}

	user := models.NewUser(req, s.now())
	user.Password = hashed

	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		// Duplicate and database errors are already mapped by the repository.
		return "", err
	}

	s.publish(ctx, models.AccountRegistered, req.Username)

	return s.Login(ctx, req.Username, req.Password)
}

// Login checks the credentials and stores a fresh token on the account.
func (s *userServiceImpl) Login(ctx context.Context, username, password string) (string, error) {
	s.logger.Info("Login attempt", zap.String("username", username))

	user, err := s.userRepo.GetActiveUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			s.logger.Warn("Login failed: user not found", zap.String("username", username))
			return "", models.ErrInvalidCredentials
		}
		return "", fmt.Errorf("failed to get user: %w", err)
	}

	if !s.hasher.Compare(user.Password, password) {
		s.logger.Warn("Login failed: invalid password", zap.String("username", username))
		return "", models.ErrInvalidCredentials
	}

	token := utils.GenerateToken()
	validUntil := s.now().Add(s.tokenTTL).Unix()

	matched, err := s.userRepo.SetSession(ctx, username, token, validUntil)
	if err != nil {
		return "", fmt.Errorf("failed to save session: %w", err)
	}
	if !matched {
		// Account was deprecated between the read and the write.
		s.logger.Warn("Login failed: session update matched no user", zap.String("username", username))
		return "", models.ErrInvalidCredentials
	}

	s.logger.Info("User logged in successfully", zap.String("username", username))
	return token, nil
}

// Logout clears the session holding token.
func (s *userServiceImpl) Logout(ctx context.Context, token string) error {
	if token == "" {
		return models.ErrTokenInvalid
	}

	matched, err := s.userRepo.ClearSessionByToken(ctx, token)
	if err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	if !matched {
		s.logger.Warn("Logout with unknown token")
		return models.ErrTokenInvalid
	}

	s.logger.Info("User logged out")
	return nil
}

// VerifyToken returns the active account of username if it holds a live token.
// An expired token is cleared before ErrTokenExpired is returned.
func (s *userServiceImpl) VerifyToken(ctx context.Context, username string) (*models.User, error) {
	log := s.logger.With(zap.String("username", username))

	user, err := s.userRepo.GetActiveUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			log.Debug("Token verification for unknown user")
			return nil, models.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if user.Token == "" {
		return nil, models.ErrNotLoggedIn
	}

	if !user.HasLiveToken(s.now()) {
		log.Info("Token expired, clearing session", zap.Int64("validTokenTime", user.ValidTokenTime))
		if err := s.userRepo.ClearSessionByUsername(ctx, username); err != nil {
			return nil, fmt.Errorf("failed to clear expired session: %w", err)
		}
		return nil, models.ErrTokenExpired
	}

	return user, nil
}

// Profile returns the public view of username's account.
func (s *userServiceImpl) Profile(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return user.Sanitized(), nil
}

// Update overwrites the profile fields of the account. Identity, password
// and session fields of the incoming user are ignored apart from the token check.
func (s *userServiceImpl) Update(ctx context.Context, user models.User) (*models.User, error) {
	stored, err := s.VerifyToken(ctx, user.Username)
	if err != nil {
		return nil, err
	}
	if stored.Token != user.Token {
		s.logger.Warn("Update rejected: token mismatch", zap.String("username", user.Username))
		return nil, models.ErrTokenMismatch
	}

	updated, err := s.userRepo.UpdateProfile(ctx, user.Username, user.Profile)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			// Deprecated concurrently.
			return nil, models.ErrUnauthorized
		}
		return nil, err
	}
	return updated.Sanitized(), nil
}

// Delete soft-deletes the account identified by the certificate.
func (s *userServiceImpl) Delete(ctx context.Context, cert models.Certificate) error {
	log := s.logger.With(zap.String("username", cert.Username))

	if cert.Token == "" {
		return models.ErrCertificateInvalid
	}

	matched, err := s.userRepo.DeprecateUser(ctx, cert.Username, cert.Token)
	if err != nil {
		return fmt.Errorf("failed to deprecate user: %w", err)
	}
	if !matched {
		log.Warn("Delete rejected: certificate matched no active user")
		return models.ErrCertificateInvalid
	}

	log.Info("User deleted")
	s.publish(ctx, models.AccountDeleted, cert.Username)
	return nil
}

// VerifyCertificate checks that the certificate names a live session.
func (s *userServiceImpl) VerifyCertificate(ctx context.Context, cert models.Certificate) error {
	user, err := s.VerifyToken(ctx, cert.Username)
	if err != nil {
		return err
	}
	if user.Token != cert.Token {
		return models.ErrTokenMismatch
	}
	return nil
}

// publish is best effort: a broker failure never fails the request.
func (s *userServiceImpl) publish(ctx context.Context, event models.AccountEventType, username string) {
	err := s.publisher.PublishAccountEvent(ctx, models.AccountEvent{
		Event:      event,
		Username:   username,
		OccurredAt: s.now().UTC(),
	})
	if err != nil {
		s.logger.Error("Failed to publish account event",
			zap.String("event", string(event)),
			zap.String("username", username),
			zap.Error(err),
		)
	}
}
