package utils

import (
	"crypto/rand"
	"math/big"
	"strings"
)

const base62Chars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// recordIDLength gives ~142 bits of entropy per external record id.
const recordIDLength = 24

// GenerateKey
// A prefix can be passed in to generate a random string.
func GenerateKey(prefix string) (string, error) {
	return randomBase62(prefix, 48)
}

// GenerateRecordID returns a new external record identifier such as "tsk_3fQ...".
func GenerateRecordID(prefix string) (string, error) {
	return randomBase62(prefix+"_", recordIDLength)
}

func randomBase62(prefix string, n int) (string, error) {
	var sb strings.Builder
	sb.Grow(len(prefix) + n)
	sb.WriteString(prefix)

	max := big.NewInt(int64(len(base62Chars)))
	for range n {
		num, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		sb.WriteByte(base62Chars[num.Int64()])
	}

	return sb.String(), nil
}
