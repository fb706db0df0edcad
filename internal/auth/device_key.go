package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrDeviceKeyTooShort is returned when the device key is too short
	ErrDeviceKeyTooShort = errors.New("device key must be at least 16 characters")
	// ErrDeviceKeyTooLong is returned when the device key is too long
	ErrDeviceKeyTooLong = errors.New("device key must be at most 72 characters")
	// ErrDeviceKeyEmpty is returned when the device key is empty
	ErrDeviceKeyEmpty = errors.New("device key cannot be empty")
)

// HashDeviceKey hashes a plaintext device pairing key using bcrypt. The hash
// is what gets stored in configuration; the plaintext key lives only on the
// paired phone.
func HashDeviceKey(key string) (string, error) {
	if len(key) == 0 {
		return "", ErrDeviceKeyEmpty
	}
	if len(key) < 16 {
		return "", ErrDeviceKeyTooShort
	}
	if len(key) > 72 {
		// bcrypt has a maximum input length of 72 bytes
		return "", ErrDeviceKeyTooLong
	}

	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	return string(hashedBytes), nil
}

// VerifyDeviceKey compares a plaintext device key with a stored hash.
func VerifyDeviceKey(key, hash string) bool {
	if key == "" || hash == "" {
		return false
	}

	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)) == nil
}
