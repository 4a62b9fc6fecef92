package service

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Clock lets tests pin "now".
type Clock func() time.Time

func systemClock() time.Time {
	return time.Now()
}

// MaxSecretBytes is the longest input bcrypt accepts.
const MaxSecretBytes = 72

func hashSecret(secret string) (string, error) {
	if secret == "" {
		return "", errors.New("secret cannot be empty")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash secret: %w", err)
	}

	return string(hashed), nil
}

// secretMatches reports whether secret hashes to hash. A malformed hash never matches.
func secretMatches(secret, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}
