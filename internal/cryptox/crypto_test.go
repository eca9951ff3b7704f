package cryptox

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	tests := []struct {
		name      string
		plaintext string
		key       string
	}{
		{"simple", "hello world", "password123"},
		{"empty plaintext", "", "password123"},
		{"long plaintext", string(make([]byte, 4096)), "k"},
		{"hex seed", "c2a1f3e4b5d60718293a4b5c6d7e8f90c2a1f3e4b5d60718293a4b5c6d7e8f90", "Abc12345!"},
		{"unicode", "пароль-密码-🔑", "ключ-钥匙"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			env, err := Encrypt(tc.plaintext, tc.key)
			require.NoError(t, err)

			got, err := Decrypt(env, tc.key)
			require.NoError(t, err)
			assert.Equal(t, tc.plaintext, got)
		})
	}
}

func TestEncrypt_FieldShapes(t *testing.T) {
	env, err := Encrypt("secret", "key")
	require.NoError(t, err)

	salt, err := hex.DecodeString(env.Salt)
	require.NoError(t, err)
	assert.Len(t, salt, saltLength)

	iv, err := hex.DecodeString(env.IV)
	require.NoError(t, err)
	assert.Len(t, iv, nonceLength)

	tag, err := hex.DecodeString(env.AuthTag)
	require.NoError(t, err)
	assert.Len(t, tag, tagLength)

	_, err = hex.DecodeString(env.Ciphertext)
	require.NoError(t, err)
}

func TestDecrypt_WrongKeyFails(t *testing.T) {
	env, err := Encrypt("secret", "right-key")
	require.NoError(t, err)

	got, err := Decrypt(env, "wrong-key")
	require.ErrorIs(t, err, ErrDecryptionFailed)
	assert.Empty(t, got)
}

// flipHexByte flips one bit of the byte at index i of a hex-encoded field.
func flipHexByte(t *testing.T, s string, i int) string {
	t.Helper()
	raw, err := hex.DecodeString(s)
	require.NoError(t, err)
	require.Less(t, i, len(raw))
	raw[i] ^= 0x01
	return hex.EncodeToString(raw)
}

func TestDecrypt_TamperedCiphertextFails(t *testing.T) {
	env, err := Encrypt("a reasonably long secret value", "key")
	require.NoError(t, err)

	tampered := *env
	tampered.Ciphertext = flipHexByte(t, env.Ciphertext, 0)

	_, err = Decrypt(&tampered, "key")
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestDecrypt_TamperedAuthTagFails(t *testing.T) {
	env, err := Encrypt("secret", "key")
	require.NoError(t, err)

	for i := 0; i < tagLength; i++ {
		tampered := *env
		tampered.AuthTag = flipHexByte(t, env.AuthTag, i)

		_, err = Decrypt(&tampered, "key")
		assert.ErrorIs(t, err, ErrDecryptionFailed, "byte %d", i)
	}
}

func TestDecrypt_TamperedSaltFails(t *testing.T) {
	env, err := Encrypt("secret", "key")
	require.NoError(t, err)

	tampered := *env
	tampered.Salt = flipHexByte(t, env.Salt, 3)

	_, err = Decrypt(&tampered, "key")
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestDecrypt_MalformedEnvelopeFails(t *testing.T) {
	env, err := Encrypt("secret", "key")
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(e *Envelope)
	}{
		{"non-hex salt", func(e *Envelope) { e.Salt = "zz" + e.Salt[2:] }},
		{"non-hex iv", func(e *Envelope) { e.IV = "not-hex" }},
		{"truncated tag", func(e *Envelope) { e.AuthTag = e.AuthTag[:8] }},
		{"empty ciphertext with tag intact", func(e *Envelope) { e.Ciphertext = "" }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			broken := *env
			tc.mutate(&broken)
			_, err := Decrypt(&broken, "key")
			assert.ErrorIs(t, err, ErrDecryptionFailed)
		})
	}
}

func TestEncrypt_SaltAndNonceUnique(t *testing.T) {
	const trials = 16

	salts := make(map[string]struct{}, trials)
	ivs := make(map[string]struct{}, trials)

	for i := 0; i < trials; i++ {
		env, err := Encrypt("same plaintext", "same key")
		require.NoError(t, err)
		salts[env.Salt] = struct{}{}
		ivs[env.IV] = struct{}{}
	}

	assert.Len(t, salts, trials, "salts must be unique per call")
	assert.Len(t, ivs, trials, "nonces must be unique per call")
}
