// Package cryptox implements the credential codec used during login:
// RSA encryption of individual credential fields keyed to the server
// certificate, and the password digest used for storage and comparison.
package cryptox

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"unicode/utf8"

	"github.com/Hashith00/tlschat/internal/common"
)

// EncryptField encrypts a single credential field (email or password) with
// the server's RSA public key and encodes the result as standard base64 so it
// can travel as one text line.
//
// PKCS#1 v1.5 padding matches the peer implementation. It is malleable and
// should be replaced with OAEP if the wire format is ever versioned.
func EncryptField(field string, pub *rsa.PublicKey) (string, error) {
	ciphertext, err := rsa.EncryptPKCS1v15(rand.Reader, pub, []byte(field))
	if err != nil {
		return "", fmt.Errorf("rsa encrypt: %w", err)
	}
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// DecryptField reverses EncryptField on the server side. Malformed base64,
// a wrong key, or a payload that is not valid UTF-8 after decryption all
// yield common.ErrDecryption.
func DecryptField(ciphertext string, priv *rsa.PrivateKey) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", common.ErrDecryption
	}

	plaintext, err := rsa.DecryptPKCS1v15(rand.Reader, priv, raw)
	if err != nil {
		return "", common.ErrDecryption
	}

	if !utf8.Valid(plaintext) {
		return "", common.ErrDecryption
	}

	return string(plaintext), nil
}

// HashSecret returns the hex-encoded SHA-256 digest of a password.
//
// The digest is deterministic and unsalted: stored rows and login attempts
// compare equal digests directly. This mirrors the stored credential format
// and cannot be changed without migrating the users table.
func HashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}
