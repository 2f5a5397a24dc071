package models

import "time"

// User is one row of the users relation. PasswordHash holds the hex-encoded
// SHA-256 digest of the password; plaintext never reaches storage.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
