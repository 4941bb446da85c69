package utils

import (
	"crypto/rand"
	"regexp"

	"golang.org/x/crypto/bcrypt"
)

// BcryptCost matches the reference backend's cost factor.
const BcryptCost = 10

const teamCodeLength = 6
const teamCodeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// GenerateTeamCode returns a 6-character join code from [A-Z0-9].
// Uniqueness is enforced by the teams.team_code constraint; callers retry
// on conflict.
func GenerateTeamCode() (string, error) {
	randomBytes := make([]byte, teamCodeLength)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", err
	}
	code := make([]byte, teamCodeLength)
	for i, rb := range randomBytes {
		code[i] = teamCodeCharset[int(rb)%len(teamCodeCharset)]
	}
	return string(code), nil
}
