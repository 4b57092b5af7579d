package provisioning

import (
	"crypto/rand"
	"math/big"

	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/errx"
)

// PasswordLength is the size of generated temporary passwords. 12
// characters over the 70-symbol alphabet clears the 10-alphanumeric
// entropy floor.
const PasswordLength = 12

const passwordAlphabet = "abcdefghijklmnopqrstuvwxyz" +
	"ABCDEFGHIJKLMNOPQRSTUVWXYZ" +
	"0123456789" +
	"!@#$%^&*"

// GeneratePassword produces a cryptographically random temporary password.
// The result is returned to the caller exactly once and must never be
// logged or persisted.
func GeneratePassword() (string, error) {
	max := big.NewInt(int64(len(passwordAlphabet)))
	buf := make([]byte, PasswordLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", errx.Wrap(err, "failed to generate password", errx.TypeInternal)
		}
		buf[i] = passwordAlphabet[n.Int64()]
	}
	return string(buf), nil
}
