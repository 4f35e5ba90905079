package security

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// GenerateOTP produces a zero-padded numeric one-time code of the requested
// number of digits.
func GenerateOTP(digits int) (string, error) {
	if digits <= 0 || digits > 10 {
		return "", fmt.Errorf("invalid otp length %d", digits)
	}

	max := big.NewInt(1)
	for i := 0; i < digits; i++ {
		max.Mul(max, big.NewInt(10))
	}

	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("generating otp: %w", err)
	}
	return fmt.Sprintf("%0*d", digits, n), nil
}
