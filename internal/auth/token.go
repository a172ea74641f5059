package auth

import (
	"crypto/rand"
	"fmt"
)

const (
	resetTokenLength   = 32
	resetTokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// GenerateResetToken returns a 32-character random token drawn from the
// 62-symbol alphanumeric alphabet using a cryptographically secure source.
func GenerateResetToken() (string, error) {
	buf := make([]byte, resetTokenLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	out := make([]byte, resetTokenLength)
	for i, b := range buf {
		// 256 is not a multiple of 62, so reject bytes above the largest
		// multiple to keep the distribution uniform.
		for b >= 248 {
			one := make([]byte, 1)
			if _, err := rand.Read(one); err != nil {
				return "", fmt.Errorf("failed to generate token: %w", err)
			}
			b = one[0]
		}
		out[i] = resetTokenAlphabet[int(b)%len(resetTokenAlphabet)]
	}
	return string(out), nil
}
