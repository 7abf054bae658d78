package helpers

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}

// VerifyPassword compares a plaintext password with a stored hash.
func VerifyPassword(userPassword string, providedHash string) (bool, string) {
	if err := bcrypt.CompareHashAndPassword([]byte(providedHash), []byte(userPassword)); err != nil {
		return false, "email or password is incorrect"
	}
	return true, ""
}
