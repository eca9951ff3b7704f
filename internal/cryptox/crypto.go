// Package cryptox implements the envelope cipher used to protect account
// secrets at rest. Each call produces a self-contained envelope: a fresh
// random salt, a fresh nonce, the AES-256-GCM ciphertext and its
// authentication tag, all hex-encoded.
//
// The symmetric key is derived from the caller's key string with
// PBKDF2-SHA512 so that brute-forcing a weak wrapping key stays expensive.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha512"
	"encoding/hex"
	"errors"

	"golang.org/x/crypto/pbkdf2"

	"github.com/dmitrijs2005/proofpay/internal/common"
)

const (
	saltLength    = 16
	nonceLength   = 12
	tagLength     = 16
	keyLength     = 32
	kdfIterations = 100000
)

// ErrDecryptionFailed is returned for every decryption failure: wrong key,
// tampered ciphertext, or a malformed envelope. The causes are deliberately
// indistinguishable.
var ErrDecryptionFailed = errors.New("decryption failed: wrong key or corrupted data")

// Envelope is one encrypted blob at rest. All fields are hex strings.
// Envelopes are immutable once produced.
type Envelope struct {
	Salt       string `json:"salt"`
	IV         string `json:"iv"`
	AuthTag    string `json:"authTag"`
	Ciphertext string `json:"ciphertext"`
}

func deriveKey(key string, salt []byte) []byte {
	return pbkdf2.Key([]byte(key), salt, kdfIterations, keyLength, sha512.New)
}

// Encrypt seals plaintext under a key derived from key and a fresh random
// salt. Salt and nonce are generated per call and never reused.
func Encrypt(plaintext string, key string) (*Envelope, error) {
	salt := common.GenerateRandByteArray(saltLength)
	nonce := common.GenerateRandByteArray(nonceLength)

	derived := deriveKey(key, salt)
	defer common.WipeByteArray(derived)

	block, err := aes.NewCipher(derived)
	if err != nil {
		return nil, err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	// Seal appends the tag to the ciphertext; store the two separately.
	sealed := aesgcm.Seal(nil, nonce, []byte(plaintext), nil)
	ciphertext := sealed[:len(sealed)-tagLength]
	tag := sealed[len(sealed)-tagLength:]

	return &Envelope{
		Salt:       hex.EncodeToString(salt),
		IV:         hex.EncodeToString(nonce),
		AuthTag:    hex.EncodeToString(tag),
		Ciphertext: hex.EncodeToString(ciphertext),
	}, nil
}

// Decrypt re-derives the key from the stored salt and opens the envelope.
// Any authentication failure yields ErrDecryptionFailed; partially decrypted
// data is never returned.
func Decrypt(env *Envelope, key string) (string, error) {
	salt, err := hex.DecodeString(env.Salt)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	nonce, err := hex.DecodeString(env.IV)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	tag, err := hex.DecodeString(env.AuthTag)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	ciphertext, err := hex.DecodeString(env.Ciphertext)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	if len(nonce) != nonceLength || len(tag) != tagLength {
		return "", ErrDecryptionFailed
	}

	derived := deriveKey(key, salt)
	defer common.WipeByteArray(derived)

	block, err := aes.NewCipher(derived)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", ErrDecryptionFailed
	}

	plaintext, err := aesgcm.Open(nil, nonce, append(ciphertext, tag...), nil)
	if err != nil {
		return "", ErrDecryptionFailed
	}

	return string(plaintext), nil
}
