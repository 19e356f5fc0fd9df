package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/janboddez/import-from-pixelfed/internal/transfer"
	"golang.org/x/oauth2"
)

// Pixelfed recommends short timeouts for background polling; a hung instance
// should not stall the whole cycle.
const requestTimeout = 11 * time.Second

const clientName = "Import From Pixelfed"

// StatusQuery holds the parameters for a statuses list call.
type StatusQuery struct {
	Limit          int
	ExcludeReplies bool
	ExcludeReblogs bool
	MinID          string
	Tags           []string
}

type PixelfedService interface {
	VerifyCredentials(ctx context.Context, host, accessToken string) (*transfer.CredentialsResponse, error)
	ListStatuses(ctx context.Context, host, accessToken, accountID string, q StatusQuery) ([]*transfer.Status, error)
	RegisterApp(ctx context.Context, host, redirectURI, website string) (*transfer.AppResponse, error)
	BuildAuthorizeURL(host, clientID, redirectURI, state string) string
	ExchangeCode(ctx context.Context, host, clientID, clientSecret, redirectURI, code string) (*transfer.TokenResponse, error)
	RefreshToken(ctx context.Context, host, clientID, clientSecret, refreshToken string) (*transfer.TokenResponse, error)
	RevokeToken(ctx context.Context, host, accessToken string) error
	DownloadMedia(ctx context.Context, mediaURL string) ([]byte, error)
}

type pixelfedService struct {
	client *http.Client
}

func NewPixelfedService() PixelfedService {
	return &pixelfedService{
		client: &http.Client{Timeout: requestTimeout},
	}
}

func oauthEndpoint(host string) oauth2.Endpoint {
	return oauth2.Endpoint{
		AuthURL:  host + "/oauth/authorize",
		TokenURL: host + "/oauth/token",
	}
}

func (s *pixelfedService) VerifyCredentials(ctx context.Context, host, accessToken string) (*transfer.CredentialsResponse, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", host+"/api/v1/accounts/verify_credentials", nil)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Info("verify_credentials returned non-200 status")
		return nil, fmt.Errorf("verify_credentials returned status %d", resp.StatusCode)
	}

	var credentials transfer.CredentialsResponse
	if err := json.NewDecoder(resp.Body).Decode(&credentials); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return &credentials, nil
}

func (s *pixelfedService) ListStatuses(ctx context.Context, host, accessToken, accountID string, q StatusQuery) ([]*transfer.Status, error) {
	params := url.Values{}
	params.Add("limit", strconv.Itoa(q.Limit))
	params.Add("exclude_replies", strconv.FormatBool(q.ExcludeReplies))
	params.Add("exclude_reblogs", strconv.FormatBool(q.ExcludeReblogs))
	if q.MinID != "" {
		params.Add("min_id", q.MinID)
	}
	for _, tag := range q.Tags {
		params.Add("tagged[]", tag)
	}

	listURL := fmt.Sprintf("%s/api/v1/accounts/%s/statuses?%s", host, accountID, params.Encode())

	req, err := http.NewRequestWithContext(ctx, "GET", listURL, nil)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Info("statuses endpoint returned non-200 status")
		return nil, fmt.Errorf("statuses endpoint returned status %d", resp.StatusCode)
	}

	var statuses []*transfer.Status
	if err := json.NewDecoder(resp.Body).Decode(&statuses); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return statuses, nil
}

func (s *pixelfedService) RegisterApp(ctx context.Context, host, redirectURI, website string) (*transfer.AppResponse, error) {
	data := url.Values{}
	data.Add("client_name", clientName)
	data.Add("redirect_uris", redirectURI)
	data.Add("scopes", "read")
	data.Add("website", website)

	req, err := http.NewRequestWithContext(ctx, "POST", host+"/api/v1/apps", strings.NewReader(data.Encode()))
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("app registration failed: %w", err)
	}
	defer resp.Body.Close()

	var app transfer.AppResponse
	if err := json.NewDecoder(resp.Body).Decode(&app); err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("failed to decode app response: %w", err)
	}

	if app.ClientID == "" || app.ClientSecret == "" {
		slog.Info("app registration returned no client credentials")
		return nil, errors.New("app registration returned no client credentials")
	}

	return &app, nil
}

func (s *pixelfedService) BuildAuthorizeURL(host, clientID, redirectURI, state string) string {
	oauth2Config := &oauth2.Config{
		ClientID:    clientID,
		RedirectURL: redirectURI,
		Scopes:      []string{"read"},
		Endpoint:    oauthEndpoint(host),
	}

	return oauth2Config.AuthCodeURL(state)
}

func (s *pixelfedService) ExchangeCode(ctx context.Context, host, clientID, clientSecret, redirectURI, code string) (*transfer.TokenResponse, error) {
	if code == "" {
		err := errors.New("authorization code is empty")
		slog.Info(err.Error())
		return nil, err
	}

	oauth2Config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes:       []string{"read"},
		Endpoint:     oauthEndpoint(host),
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.client)
	token, err := oauth2Config.Exchange(ctx, code)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	tokenResponse := transfer.TokenResponse{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
	}
	if !token.Expiry.IsZero() {
		tokenResponse.ExpiresIn = int(time.Until(token.Expiry).Seconds())
	}

	return &tokenResponse, nil
}

func (s *pixelfedService) RefreshToken(ctx context.Context, host, clientID, clientSecret, refreshToken string) (*transfer.TokenResponse, error) {
	data := url.Values{}
	data.Set("client_id", clientID)
	data.Set("client_secret", clientSecret)
	data.Set("grant_type", "refresh_token")
	data.Set("refresh_token", refreshToken)
	data.Set("scope", "read")

	req, err := http.NewRequestWithContext(ctx, "POST", host+"/oauth/token", strings.NewReader(data.Encode()))
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Info("token endpoint returned non-200 status")
		return nil, fmt.Errorf("token endpoint returned status %d", resp.StatusCode)
	}

	var tokenResponse transfer.TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResponse); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	if tokenResponse.AccessToken == "" {
		slog.Info("token refresh returned no access token")
		return nil, errors.New("token refresh returned no access token")
	}

	return &tokenResponse, nil
}

func (s *pixelfedService) RevokeToken(ctx context.Context, host, accessToken string) error {
	// Pixelfed differs from plain OAuth 2 here: tokens are revoked with a
	// DELETE on /oauth/tokens/{token} rather than a POST to /oauth/revoke.
	req, err := http.NewRequestWithContext(ctx, "DELETE", host+"/oauth/tokens/"+accessToken, nil)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Info("token revocation returned non-200 status")
		return fmt.Errorf("token revocation returned status %d", resp.StatusCode)
	}

	return nil
}

func (s *pixelfedService) DownloadMedia(ctx context.Context, mediaURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", mediaURL, nil)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Info("media download returned non-200 status")
		return nil, fmt.Errorf("media download returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	if len(body) == 0 {
		return nil, errors.New("media download returned an empty body")
	}

	return body, nil
}
