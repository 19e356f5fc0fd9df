package service

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	config "github.com/janboddez/import-from-pixelfed/configs"
	"github.com/janboddez/import-from-pixelfed/internal/models"
	"github.com/janboddez/import-from-pixelfed/internal/repository"
	"github.com/janboddez/import-from-pixelfed/internal/transfer"
	"github.com/janboddez/import-from-pixelfed/pkg/utils"
)

// Tokens get refreshed once they expire within this window.
const refreshWindow = 2 * 24 * time.Hour

type TokenService interface {
	Account(ctx context.Context) (*models.Account, error)
	// Connection returns the instance host and a decrypted access token, or
	// empty strings when no instance is connected.
	Connection(ctx context.Context) (host, accessToken string, err error)
	// EnsureAccountID returns the remote account ID, fetching and persisting
	// it on first use.
	EnsureAccountID(ctx context.Context) (string, error)
	RegisterApp(ctx context.Context) error
	AuthorizeURL(ctx context.Context) (string, error)
	ExchangeCode(ctx context.Context, code, state string) error
	RefreshIfNeeded(ctx context.Context, now time.Time) error
	Revoke(ctx context.Context) error
	UpdateHost(ctx context.Context, host string) error
}

type tokenService struct {
	cfg config.Config
	ar  repository.AccountRepository
	pf  PixelfedService

	mu           sync.Mutex
	pendingState string
}

func NewTokenService(cfg config.Config, ar repository.AccountRepository, pf PixelfedService) TokenService {
	return &tokenService{
		cfg: cfg,
		ar:  ar,
		pf:  pf,
	}
}

func (s *tokenService) redirectURI() string {
	return s.cfg.BaseURL + "/auth/pixelfed/callback"
}

func (s *tokenService) Account(ctx context.Context) (*models.Account, error) {
	return s.ar.Get(ctx)
}

func (s *tokenService) Connection(ctx context.Context) (string, string, error) {
	account, err := s.ar.Get(ctx)
	if err != nil {
		return "", "", err
	}

	if account == nil || account.Host == "" || account.AccessToken == "" {
		return "", "", nil
	}

	accessToken, err := utils.Decrypt(account.AccessToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return "", "", err
	}

	return account.Host, accessToken, nil
}

func (s *tokenService) EnsureAccountID(ctx context.Context) (string, error) {
	account, err := s.ar.Get(ctx)
	if err != nil {
		return "", err
	}
	if account == nil {
		return "", errors.New("no instance connected")
	}

	if account.AccountID != "" {
		return account.AccountID, nil
	}

	accessToken, err := utils.Decrypt(account.AccessToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return "", err
	}

	credentials, err := s.pf.VerifyCredentials(ctx, account.Host, accessToken)
	if err != nil {
		return "", err
	}

	account.AccountID = credentials.ID
	account.AccountUsername = credentials.Username
	if err := s.ar.Save(ctx, account); err != nil {
		return "", err
	}

	return account.AccountID, nil
}

func (s *tokenService) RegisterApp(ctx context.Context) error {
	account, err := s.ar.Get(ctx)
	if err != nil {
		return err
	}
	if account == nil || account.Host == "" {
		err = errors.New("no instance host configured")
		slog.Info(err.Error())
		return err
	}

	if account.ClientID != "" && account.ClientSecret != "" {
		// Already registered. Registering again would create a second app
		// server-side.
		return nil
	}

	app, err := s.pf.RegisterApp(ctx, account.Host, s.redirectURI(), s.cfg.BaseURL)
	if err != nil {
		return err
	}

	account.ClientID = app.ClientID
	account.ClientSecret = app.ClientSecret

	return s.ar.Save(ctx, account)
}

func (s *tokenService) AuthorizeURL(ctx context.Context) (string, error) {
	if err := s.RegisterApp(ctx); err != nil {
		return "", err
	}

	account, err := s.ar.Get(ctx)
	if err != nil {
		return "", err
	}

	state, err := utils.GenerateState()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.pendingState = state
	s.mu.Unlock()

	return s.pf.BuildAuthorizeURL(account.Host, account.ClientID, s.redirectURI(), state), nil
}

func (s *tokenService) ExchangeCode(ctx context.Context, code, state string) error {
	s.mu.Lock()
	pendingState := s.pendingState
	s.pendingState = ""
	s.mu.Unlock()

	if pendingState == "" || state != pendingState {
		err := errors.New("state mismatch")
		slog.Info(err.Error())
		return err
	}

	account, err := s.ar.Get(ctx)
	if err != nil {
		return err
	}
	if account == nil || account.ClientID == "" || account.ClientSecret == "" {
		err = errors.New("no registered app")
		slog.Info(err.Error())
		return err
	}

	tokenResponse, err := s.pf.ExchangeCode(ctx, account.Host, account.ClientID, account.ClientSecret, s.redirectURI(), code)
	if err != nil {
		return err
	}

	if err := s.applyTokenResponse(account, tokenResponse); err != nil {
		return err
	}

	// Resolve the account behind the token right away; the sync engine needs
	// its ID for the statuses endpoint.
	credentials, err := s.pf.VerifyCredentials(ctx, account.Host, tokenResponse.AccessToken)
	if err == nil {
		account.AccountID = credentials.ID
		account.AccountUsername = credentials.Username
	}

	return s.ar.Save(ctx, account)
}

func (s *tokenService) RefreshIfNeeded(ctx context.Context, now time.Time) error {
	account, err := s.ar.Get(ctx)
	if err != nil {
		return err
	}
	if account == nil || account.RefreshToken == "" {
		return nil
	}

	if account.TokenExpiresAt.IsZero() {
		// No expiry on record; nothing to do.
		return nil
	}

	if account.TokenExpiresAt.After(now.Add(refreshWindow)) {
		return nil
	}

	refreshToken, err := utils.Decrypt(account.RefreshToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}
	tokenResponse, err := s.pf.RefreshToken(ctx, account.Host, account.ClientID, account.ClientSecret, refreshToken)
	if err != nil {
		// Keep the old token; calls may start failing with authorization
		// errors until the user reauthorizes.
		slog.Info(err.Error())
		return err
	}

	if err := s.applyTokenResponse(account, tokenResponse); err != nil {
		return err
	}

	return s.ar.Save(ctx, account)
}

// applyTokenResponse replaces the access token and, only when the server
// returned them, the refresh token and the expiry.
func (s *tokenService) applyTokenResponse(account *models.Account, tokenResponse *transfer.TokenResponse) error {
	encryptedAccessToken, err := utils.Encrypt([]byte(tokenResponse.AccessToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}
	account.AccessToken = encryptedAccessToken

	if tokenResponse.RefreshToken != "" {
		encryptedRefreshToken, err := utils.Encrypt([]byte(tokenResponse.RefreshToken), []byte(s.cfg.SecretKey))
		if err != nil {
			return err
		}
		account.RefreshToken = encryptedRefreshToken
	}

	if tokenResponse.ExpiresIn > 0 {
		account.TokenExpiresAt = GetExpiresAt(tokenResponse.ExpiresIn)
	}

	return nil
}

func (s *tokenService) Revoke(ctx context.Context) error {
	account, err := s.ar.Get(ctx)
	if err != nil {
		return err
	}

	if account != nil && account.Host != "" && account.AccessToken != "" {
		accessToken, err := utils.Decrypt(account.AccessToken, []byte(s.cfg.SecretKey))
		if err == nil {
			// Best effort; the local state is what decides whether we're
			// still connected.
			if err := s.pf.RevokeToken(ctx, account.Host, accessToken); err != nil {
				slog.Info("unable to revoke token server-side")
			}
		}
	}

	return s.ar.ClearTokens(ctx)
}

func (s *tokenService) UpdateHost(ctx context.Context, host string) error {
	host, err := normalizeHost(host)
	if err != nil {
		return err
	}

	account, err := s.ar.Get(ctx)
	if err != nil {
		return err
	}

	if account != nil && account.Host == host {
		return nil
	}

	if host == "" {
		// Clearing the host might be done to temporarily disable imports.
		// Keep the tokens around.
		if account == nil {
			return nil
		}
		account.Host = ""
		return s.ar.Save(ctx, account)
	}

	if account != nil && account.Host != "" {
		// Changed instance. Try to revoke the old token, then forget the
		// client altogether; a new app gets registered on the next authorize.
		if err := s.Revoke(ctx); err != nil {
			slog.Info(err.Error())
		}
	}

	return s.ar.Save(ctx, &models.Account{Host: host})
}

func normalizeHost(host string) (string, error) {
	host = strings.TrimRight(strings.TrimSpace(host), "/")
	if host == "" {
		// Clearing the host temporarily disables imports; not an error.
		return "", nil
	}

	if !strings.HasPrefix(host, "https://") && !strings.HasPrefix(host, "http://") {
		host = "https://" + host
	}

	parsed, err := url.Parse(host)
	if err != nil || parsed.Host == "" {
		return "", errors.New("invalid instance URL")
	}

	return host, nil
}
