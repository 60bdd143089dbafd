package accounts

import (
	"crypto/rand"
	"math/big"

	goerrors "github.com/goliatone/go-errors"
)

// codeAlphabet is the character set for emailed one time codes. Uppercase
// only so codes survive clients that shout-case user input.
const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// CodeLength is the number of characters in a verification or reset code.
const CodeLength = 6

// CodeGenerator produces one time codes. Handlers take one so tests can
// substitute a deterministic generator.
type CodeGenerator func() (string, error)

// GenerateCode returns a CodeLength character code drawn uniformly from
// codeAlphabet using crypto/rand.
func GenerateCode() (string, error) {
	max := big.NewInt(int64(len(codeAlphabet)))
	buf := make([]byte, CodeLength)

	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate one time code")
		}
		buf[i] = codeAlphabet[n.Int64()]
	}

	return string(buf), nil
}
