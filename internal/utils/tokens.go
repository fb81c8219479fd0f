package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// NewOpaqueToken returns a hex-encoded random token of nBytes entropy.
func NewOpaqueToken(nBytes int) (string, error) {
	if nBytes <= 0 {
		nBytes = 32
	}
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
