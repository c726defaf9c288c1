// Package passwordhash keeps the pairing passphrase as a bcrypt hash
package passwordhash

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrEmptyPassphrase is returned when there is nothing to hash
	ErrEmptyPassphrase = errors.New("passphrase is empty")
	// ErrMismatch is returned when a passphrase does not match the hash
	ErrMismatch = errors.New("passphrase does not match")
)

// HashPassphrase хеширует фразу для сопряжения устройств
func HashPassphrase(passphrase string) (string, error) {
	if passphrase == "" {
		return "", ErrEmptyPassphrase
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(passphrase), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckPassphrase проверяет, соответствует ли фраза хешу
func CheckPassphrase(passphrase, hash string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(passphrase))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrMismatch
	}
	return err
}
