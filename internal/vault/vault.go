// Package vault holds the symmetric encryption and credential primitives used
// by the wallet stores. Metadata documents are sealed with AES-256-GCM under a
// key derived from the user's passphrase; the per-wallet salt lives next to
// the blob, never inside it.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/tinoosan/wallet/internal/errs"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// SaltSize is the per-wallet salt length in bytes.
	SaltSize = 16

	kdfIterations = 100_000
	keySize       = 32
)

// secretAlphabet is the restricted character set for generated secrets.
const secretAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-_+."

// NewSalt returns a fresh random salt for key derivation.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	return salt, nil
}

// deriveKey stretches the passphrase into a 32-byte AES key. The passphrase is
// never used as key material directly.
func deriveKey(passphrase string, salt []byte) []byte {
	return pbkdf2.Key([]byte(passphrase), salt, kdfIterations, keySize, sha256.New)
}

// EncryptJSON serializes v to JSON and seals it with AES-256-GCM under a key
// derived from passphrase and salt. The result is base64(nonce||ciphertext),
// safe to store as a single text blob.
func EncryptJSON(v any, passphrase string, salt []byte) (string, error) {
	plain, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal: %w", err)
	}
	block, err := aes.NewCipher(deriveKey(passphrase, salt))
	if err != nil {
		return "", fmt.Errorf("new cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("new gcm: %w", err)
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("nonce: %w", err)
	}
	sealed := aead.Seal(nonce, nonce, plain, nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// DecryptJSON is the inverse of EncryptJSON. Every failure mode, including a
// wrong passphrase, truncated blob or non-JSON plaintext, surfaces as
// errs.ErrDecrypt so callers cannot tell wrong-password from corruption.
func DecryptJSON(blob, passphrase string, salt []byte, out any) error {
	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return errs.ErrDecrypt
	}
	block, err := aes.NewCipher(deriveKey(passphrase, salt))
	if err != nil {
		return errs.ErrDecrypt
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return errs.ErrDecrypt
	}
	if len(raw) < aead.NonceSize() {
		return errs.ErrDecrypt
	}
	nonce, ciphertext := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return errs.ErrDecrypt
	}
	if err := json.Unmarshal(plain, out); err != nil {
		return errs.ErrDecrypt
	}
	return nil
}

// GenerateSecret draws n characters from the restricted alphabet using
// rejection sampling, so the distribution stays uniform.
func GenerateSecret(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("length must be positive")
	}
	out := make([]byte, 0, n)
	buf := make([]byte, n)
	// reject bytes outside the largest multiple of len(alphabet) to avoid
	// modulo bias
	limit := byte(256 - 256%len(secretAlphabet))
	for len(out) < n {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("read random: %w", err)
		}
		for _, b := range buf {
			if b >= limit {
				continue
			}
			out = append(out, secretAlphabet[int(b)%len(secretAlphabet)])
			if len(out) == n {
				break
			}
		}
	}
	return string(out), nil
}

// HashPassword hashes a credential for the secondary credential channel. It is
// not used for the wallet-encryption passphrase.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password is empty")
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// CheckPassword verifies a plaintext password against a stored hash.
func CheckPassword(password, stored string) bool {
	if password == "" || stored == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
}
