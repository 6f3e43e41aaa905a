package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	pbkdf2Iterations = 100000
	keyLength        = 32 // AES-256
	saltLength       = 16
)

// ErrDecrypt is returned for any authentication failure during decryption.
// It deliberately carries no detail about whether the key or the ciphertext
// was at fault.
var ErrDecrypt = errors.New("decryption failed: invalid key or corrupted data")

// Envelope is one encrypted payload. All fields are hex-encoded. A fresh
// salt and IV are generated for every encryption, so re-encrypting the same
// plaintext never yields the same envelope.
type Envelope struct {
	Ciphertext string `json:"ciphertext"`
	IV         string `json:"iv"`
	Tag        string `json:"tag"`
	Salt       string `json:"salt"`
}

// Cipher encrypts and decrypts note content under per-user key material.
// The actual AES key is derived per call with PBKDF2-SHA512 over the
// envelope's salt.
type Cipher struct{}

func NewCipher() *Cipher {
	return &Cipher{}
}

func deriveKey(keyMaterial string, salt []byte) []byte {
	return pbkdf2.Key([]byte(keyMaterial), salt, pbkdf2Iterations, keyLength, sha512.New)
}

// Encrypt seals plaintext under keyMaterial with AES-256-GCM.
func (c *Cipher) Encrypt(plaintext, keyMaterial string) (Envelope, error) {
	salt := make([]byte, saltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return Envelope{}, fmt.Errorf("generate salt: %w", err)
	}

	block, err := aes.NewCipher(deriveKey(keyMaterial, salt))
	if err != nil {
		return Envelope{}, fmt.Errorf("create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return Envelope{}, fmt.Errorf("create GCM: %w", err)
	}

	iv := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return Envelope{}, fmt.Errorf("generate IV: %w", err)
	}

	sealed := gcm.Seal(nil, iv, []byte(plaintext), nil)

	// gcm.Seal appends the auth tag to the ciphertext; the envelope keeps
	// them as separate fields.
	tagStart := len(sealed) - gcm.Overhead()

	return Envelope{
		Ciphertext: hex.EncodeToString(sealed[:tagStart]),
		IV:         hex.EncodeToString(iv),
		Tag:        hex.EncodeToString(sealed[tagStart:]),
		Salt:       hex.EncodeToString(salt),
	}, nil
}

// Decrypt opens an envelope. Tag verification failure, a wrong key and
// corrupted fields all collapse into ErrDecrypt.
func (c *Cipher) Decrypt(env Envelope, keyMaterial string) (string, error) {
	salt, err := hex.DecodeString(env.Salt)
	if err != nil {
		return "", ErrDecrypt
	}
	iv, err := hex.DecodeString(env.IV)
	if err != nil {
		return "", ErrDecrypt
	}
	tag, err := hex.DecodeString(env.Tag)
	if err != nil {
		return "", ErrDecrypt
	}
	ciphertext, err := hex.DecodeString(env.Ciphertext)
	if err != nil {
		return "", ErrDecrypt
	}

	block, err := aes.NewCipher(deriveKey(keyMaterial, salt))
	if err != nil {
		return "", fmt.Errorf("create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("create GCM: %w", err)
	}

	if len(iv) != gcm.NonceSize() {
		return "", ErrDecrypt
	}

	plaintext, err := gcm.Open(nil, iv, append(ciphertext, tag...), nil)
	if err != nil {
		return "", ErrDecrypt
	}

	return string(plaintext), nil
}

// EqualSecrets compares two shared secrets in constant time.
func EqualSecrets(a, b string) bool {
	return hmac.Equal([]byte(a), []byte(b))
}
