package transfer

import "time"

// Status is a single Pixelfed status as returned by
// /api/v1/accounts/{id}/statuses.
type Status struct {
	ID               string            `json:"id"`
	Content          string            `json:"content"`
	CreatedAt        time.Time         `json:"created_at"`
	URL              string            `json:"url"`
	Account          *StatusAccount    `json:"account"`
	Reblog           *Status           `json:"reblog"`
	MediaAttachments []MediaAttachment `json:"media_attachments"`
}

type StatusAccount struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Acct     string `json:"acct"`
}

type MediaAttachment struct {
	Type        string `json:"type"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	Scope        string `json:"scope"`
	ExpiresIn    int    `json:"expires_in"`
}

type AppResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

type CredentialsResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Acct     string `json:"acct"`
}
