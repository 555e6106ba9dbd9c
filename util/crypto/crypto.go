// Package crypto provides password hashing, verification and the password
// strength policy.
package crypto

import (
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// SpecialChars is the symbol set a strong password must draw from.
const SpecialChars = "!@#$%^&*()-_=+[]{};:'\",.<>/?\\|`~"

// MinPasswordLength is the shortest password IsStrongPassword accepts.
const MinPasswordLength = 8

// MaxPasswordLength is the bcrypt input limit in bytes.
const MaxPasswordLength = 72

// WeakPasswordMessage describes the policy to clients.
const WeakPasswordMessage = "Password too weak. Must be 8+ chars, include uppercase, lowercase, number & special char."

// HashPasswordAsBcrypt generates a salted bcrypt hash of the given password.
func HashPasswordAsBcrypt(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(hash), err
}

// FitsBcrypt reports whether password is short enough to be hashed.
func FitsBcrypt(password string) bool {
	return len(password) <= MaxPasswordLength
}

// CheckPasswordHash verifies if the given password matches the bcrypt hash.
func CheckPasswordHash(hash, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// IsStrongPassword reports whether password has at least MinPasswordLength
// characters and contains an uppercase letter, a lowercase letter, a digit
// and a symbol from SpecialChars.
func IsStrongPassword(password string) bool {
	if len([]rune(password)) < MinPasswordLength {
		return false
	}
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(SpecialChars, r):
			special = true
		}
	}
	return upper && lower && digit && special
}
