package auth

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	referralCodeLength   = 8
	referralCodeAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

	// Generation is retried against the store before giving up; the unique
	// column on users.referral_code remains the backstop for races.
	referralCodeMaxAttempts = 5
)

// GenerateReferralCode produces a random 8-character lowercase-alphanumeric
// referral code.
func GenerateReferralCode() (string, error) {
	code := make([]byte, referralCodeLength)
	max := big.NewInt(int64(len(referralCodeAlphabet)))
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate referral code: %w", err)
		}
		code[i] = referralCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}

// uniqueReferralCode generates a referral code not yet claimed by any user.
func uniqueReferralCode(ctx context.Context, users UserStore) (string, error) {
	for attempt := 0; attempt < referralCodeMaxAttempts; attempt++ {
		code, err := GenerateReferralCode()
		if err != nil {
			return "", err
		}
		exists, err := users.ExistsByReferralCode(ctx, code)
		if err != nil {
			return "", fmt.Errorf("check referral code: %w", err)
		}
		if !exists {
			return code, nil
		}
	}
	return "", fmt.Errorf("could not generate a unique referral code after %d attempts", referralCodeMaxAttempts)
}
