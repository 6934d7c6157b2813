package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"

	"user-service/internal/config"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher turns passwords into their stored form and checks them.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(stored, password string) bool
}

// NewPasswordHasher picks the hasher named by the PASSWORD_HASHING setting.
func NewPasswordHasher(mode, pepper string) (PasswordHasher, error) {
	switch mode {
	case config.PasswordHashingBcrypt:
		return NewBcryptHasher(pepper, bcrypt.DefaultCost), nil
	case config.PasswordHashingPlain:
		return plainHasher{}, nil
	default:
		return nil, fmt.Errorf("unknown password hashing mode %q", mode)
	}
}

type bcryptHasher struct {
	pepper string
	cost   int
}

// NewBcryptHasher hashes HMAC-SHA256(pepper, password) with bcrypt.
func NewBcryptHasher(pepper string, cost int) PasswordHasher {
	return &bcryptHasher{pepper: pepper, cost: cost}
}

// applyPepper keeps the bcrypt input at 32 bytes regardless of password length.
func applyPepper(password, pepper string) []byte {
	h := hmac.New(sha256.New, []byte(pepper))
	h.Write([]byte(password))
	return h.Sum(nil)
}

func (h *bcryptHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword(applyPepper(password, h.pepper), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func (h *bcryptHasher) Compare(stored, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), applyPepper(password, h.pepper)) == nil
}

// plainHasher stores passwords verbatim. It exists only to read accounts
// written before hashing was introduced.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) {
	return password, nil
}

func (plainHasher) Compare(stored, password string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(password)) == 1
}
