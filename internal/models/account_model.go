package models

import (
	"time"
)

// Account holds the connection to a single Pixelfed instance: the registered
// OAuth client and the (encrypted) token pair. There is at most one row.
type Account struct {
	ID              int64     `db:"id" json:"id"`
	Host            string    `db:"host" json:"host"`
	ClientID        string    `db:"client_id" json:"client_id"`
	ClientSecret    string    `db:"client_secret" json:"-"`
	AccessToken     string    `db:"access_token" json:"-"`
	RefreshToken    string    `db:"refresh_token" json:"-"`
	TokenExpiresAt  time.Time `db:"token_expires_at" json:"token_expires_at"`
	AccountID       string    `db:"account_id" json:"account_id"`
	AccountUsername string    `db:"account_username" json:"account_username"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}
