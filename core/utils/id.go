package utils

import (
	"crypto/rand"
	"encoding/base64"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const idAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

const teamIDLength = 10

// GenerateTeamID returns a short url-safe team identifier.
func GenerateTeamID() string {
	id, err := gonanoid.Generate(idAlphabet, teamIDLength)
	if err != nil {
		return ""
	}
	return id
}

func GenerateRequestID() string {
	return uuid.NewString()
}

// GenerateRandomString generates a cryptographically secure random string
func GenerateRandomString(length int) string {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to nanoid if crypto/rand fails
		id, _ := gonanoid.Generate(idAlphabet, length)
		return id
	}
	return base64.URLEncoding.EncodeToString(bytes)[:length]
}
