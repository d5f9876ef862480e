package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// KeySize is the required length of cookie encryption keys (AES-256).
const KeySize = 32

// codec seals JSON values into URL-safe AES-256-GCM cookie values.
type codec struct {
	aead cipher.AEAD
}

func newCodec(key []byte) (*codec, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("cookie key must be %d bytes, got %d", KeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &codec{aead: aead}, nil
}

// seal serializes v and encrypts it with a fresh nonce.
func (c *codec) seal(v any) (string, error) {
	plaintext, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal cookie value: %w", err)
	}

	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	ciphertext := c.aead.Seal(nonce, nonce, plaintext, nil)
	return base64.RawURLEncoding.EncodeToString(ciphertext), nil
}

// open decrypts a sealed value into v.
func (c *codec) open(value string, v any) error {
	ciphertext, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return fmt.Errorf("failed to decode cookie: %w", err)
	}

	if len(ciphertext) < c.aead.NonceSize() {
		return fmt.Errorf("invalid cookie data")
	}

	nonce := ciphertext[:c.aead.NonceSize()]
	ciphertext = ciphertext[c.aead.NonceSize():]

	plaintext, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return fmt.Errorf("failed to decrypt cookie: %w", err)
	}

	if err := json.Unmarshal(plaintext, v); err != nil {
		return fmt.Errorf("failed to unmarshal cookie: %w", err)
	}
	return nil
}
