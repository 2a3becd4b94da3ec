package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// GenerateInviteCode returns a random workspace invite code: three dash-
// separated groups of four hex characters, e.g. "3f9a-0c41-b7d2".
func GenerateInviteCode() (string, error) {
	raw := make([]byte, 6)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	code := hex.EncodeToString(raw)
	return strings.Join([]string{code[0:4], code[4:8], code[8:12]}, "-"), nil
}
