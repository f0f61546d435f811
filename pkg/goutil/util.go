package goutil

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

func ContainsStr(arr []string, str string) bool {
	for _, v := range arr {
		if v == str {
			return true
		}
	}
	return false
}

func ContainsUint64(arr []uint64, i uint64) bool {
	for _, v := range arr {
		if v == i {
			return true
		}
	}
	return false
}

// JoinName builds a display name from first and last name,
// returning "" when both are empty.
func JoinName(firstName, lastName string) string {
	return strings.TrimSpace(strings.TrimSpace(firstName) + " " + strings.TrimSpace(lastName))
}

func BCrypt(s string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(s), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CompareBCrypt(hash, s string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(s))
}
