package utils

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// GenerateState returns an URL-safe random string for the OAuth state
// parameter.
func GenerateState() (string, error) {
	return gonanoid.New(21)
}
