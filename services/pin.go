package services

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

// GeneratePIN returns a random 4-digit PIN as a string, preserving leading
// zeros.
func GeneratePIN() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", fmt.Errorf("failed to generate PIN: %w", err)
	}
	return fmt.Sprintf("%04d", n.Int64()), nil
}

// HashPIN produces a salted one-way hash of the PIN. bcrypt embeds a fresh
// salt on every call, so the same PIN hashes differently each time.
func HashPIN(pin string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash PIN: %w", err)
	}
	return string(hash), nil
}

// VerifyPIN reports whether pin matches the stored hash. The comparison
// inside bcrypt is constant-time over the recomputed digest, so response
// timing does not leak which digit mismatched. Failure is a boolean, never
// an error; callers translate false into ErrInvalidPin.
func VerifyPIN(pin, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)) == nil
}
