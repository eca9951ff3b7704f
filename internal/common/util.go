package common

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateRandByteArray returns size bytes from the system CSPRNG.
// A failing CSPRNG is unrecoverable, so errors panic.
func GenerateRandByteArray(size int) []byte {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}

// MakeRandHexString generates a random hexadecimal string from size random
// bytes. The resulting string length is twice the size, since each byte
// expands to two hex characters.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// WipeByteArray overwrites the contents of the provided byte slice with
// zeros. Used to remove passwords and key material from memory after use.
// A nil slice is a no-op.
func WipeByteArray(b []byte) {
	if b == nil {
		return
	}
	for i := range b {
		b[i] = 0
	}
}
