package utils

import gonanoid "github.com/matoous/go-nanoid/v2"

// TokenLength is the length of every session token.
const TokenLength = 32

// GenerateToken returns a random URL-safe session token of TokenLength characters.
func GenerateToken() string {
	return gonanoid.Must(TokenLength)
}
