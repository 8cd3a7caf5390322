package utils

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// IDSize matches the VARCHAR(32) primary keys.
const IDSize = 32

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewID returns a fresh row id. It is also used for report object names.
func NewID() string {
	return gonanoid.MustGenerate(idAlphabet, IDSize)
}

// Token returns a random alphanumeric string of size characters.
func Token(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("token size must be positive, got %d", size)
	}

	token, err := gonanoid.Generate(idAlphabet, size)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return token, nil
}
