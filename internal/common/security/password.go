package security

import (
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt work factor for stored passwords.
const PasswordCost = 10

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

var dummyHash = sync.OnceValue(func() []byte {
	hash, _ := bcrypt.GenerateFromPassword([]byte(RandomPassword()), PasswordCost)
	return hash
})

// RejectPassword runs a full bcrypt comparison against a hash nobody
// knows and always reports a mismatch. Logins for unknown accounts call it
// so they cost as much as a wrong password.
func RejectPassword(password string) bool {
	_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
	return false
}

// RandomPassword returns a throwaway secret for accounts created without
// one. Nobody learns it, so such an account cannot log in until a
// password is set.
func RandomPassword() string {
	return uuid.NewString() + uuid.NewString()
}
