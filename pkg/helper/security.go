package helper

import (
	"regexp"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

func HashPasswordBcrypt(password string) (hashedPassword string, err error) {
	if password == "" {
		return "", nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// CheckPasswordBcrypt reports whether password matches the stored hash.
func CheckPasswordBcrypt(hashedPassword, password string) bool {
	if hashedPassword == "" || password == "" {
		return false
	}

	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}

var (
	hasLetter = regexp.MustCompile(`[A-Za-z]`)
	hasDigit  = regexp.MustCompile(`\d`)
)

// ValidPassword rejects passwords shorter than 8 characters or without both a letter and a digit.
func ValidPassword(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters long")
	}
	if !hasLetter.MatchString(password) {
		return errors.New("password must contain a letter")
	}
	if !hasDigit.MatchString(password) {
		return errors.New("password must contain a digit")
	}

	return nil
}
