package utils

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrBadPIN rejects PINs that are not 4 to 8 digits.
var ErrBadPIN = errors.New("pin must be 4 to 8 digits")

// ValidPIN reports whether pin is 4 to 8 ASCII digits.
func ValidPIN(pin string) bool {
	if len(pin) < 4 || len(pin) > 8 {
		return false
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// HashPIN returns the bcrypt hash of pin using the given cost.
func HashPIN(pin string, cost int) (string, error) {
	if !ValidPIN(pin) {
		return "", ErrBadPIN
	}
	b, err := bcrypt.GenerateFromPassword([]byte(pin), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPIN safely compares bcrypt hash and plain PIN.
func VerifyPIN(hash, pin string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)) == nil
}
