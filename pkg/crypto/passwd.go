// pkg/crypto/passwd.go

package crypto

import (
	"crypto/rand"
	"math/big"

	cerr "github.com/cockroachdb/errors"
)

const passwordAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-_"

// GeneratePassword returns a random password of the given length drawn from a
// URL-safe alphabet. Lengths below 12 are refused; these end up in .env files.
func GeneratePassword(length int) (string, error) {
	if length < 12 {
		return "", cerr.Newf("password length %d is too short (minimum 12)", length)
	}

	out := make([]byte, length)
	alphabetLen := big.NewInt(int64(len(passwordAlphabet)))
	for i := range out {
		n, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", cerr.Wrap(err, "failed to read randomness")
		}
		out[i] = passwordAlphabet[n.Int64()]
	}
	return string(out), nil
}
