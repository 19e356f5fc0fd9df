package service

import (
	"context"
	"errors"
	"testing"
	"time"

	config "github.com/janboddez/import-from-pixelfed/configs"
	"github.com/janboddez/import-from-pixelfed/internal/models"
	"github.com/janboddez/import-from-pixelfed/internal/transfer"
	"github.com/janboddez/import-from-pixelfed/pkg/utils"
)

func encrypt(t *testing.T, plain string) string {
	t.Helper()
	out, err := utils.Encrypt([]byte(plain), []byte(testSecretKey))
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func decrypt(t *testing.T, cipher string) string {
	t.Helper()
	out, err := utils.Decrypt(cipher, []byte(testSecretKey))
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func newTokenFixture(account *models.Account) (TokenService, *fakeAccountRepo, *fakePixelfed) {
	cfg := config.Config{SecretKey: testSecretKey, BaseURL: "http://localhost:3000"}
	accounts := &fakeAccountRepo{account: account}
	pixelfed := &fakePixelfed{}
	return NewTokenService(cfg, accounts, pixelfed), accounts, pixelfed
}

func refreshableAccount(t *testing.T, expiresAt time.Time) *models.Account {
	t.Helper()
	return &models.Account{
		ID:             1,
		Host:           "https://pixelfed.example",
		ClientID:       "client-id",
		ClientSecret:   "client-secret",
		AccessToken:    encrypt(t, "old-access"),
		RefreshToken:   encrypt(t, "old-refresh"),
		TokenExpiresAt: expiresAt,
	}
}

func TestRefreshIfNeededWindow(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name        string
		expiresAt   time.Time
		wantRefresh bool
	}{
		{"no expiry on record", time.Time{}, false},
		{"expires in three days", now.Add(72 * time.Hour), false},
		{"expires in two days", now.Add(48 * time.Hour), true},
		{"already expired", now.Add(-time.Hour), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, _, pixelfed := newTokenFixture(refreshableAccount(t, tt.expiresAt))
			pixelfed.refreshResp = &transfer.TokenResponse{
				AccessToken:  "new-access",
				RefreshToken: "new-refresh",
				ExpiresIn:    3600 * 24 * 30,
			}

			if err := ts.RefreshIfNeeded(context.Background(), now); err != nil {
				t.Fatal(err)
			}

			refreshed := pixelfed.refreshCalls > 0
			if refreshed != tt.wantRefresh {
				t.Errorf("refresh called = %v, want %v", refreshed, tt.wantRefresh)
			}
		})
	}
}

func TestRefreshIfNeededRotatesTokens(t *testing.T) {
	now := time.Now()
	ts, accounts, pixelfed := newTokenFixture(refreshableAccount(t, now.Add(time.Hour)))
	pixelfed.refreshResp = &transfer.TokenResponse{
		AccessToken:  "new-access",
		RefreshToken: "new-refresh",
		ExpiresIn:    3600,
	}

	if err := ts.RefreshIfNeeded(context.Background(), now); err != nil {
		t.Fatal(err)
	}

	if got := decrypt(t, accounts.account.AccessToken); got != "new-access" {
		t.Errorf("access token = %q, want new-access", got)
	}
	if got := decrypt(t, accounts.account.RefreshToken); got != "new-refresh" {
		t.Errorf("refresh token = %q, want new-refresh", got)
	}
	if accounts.account.TokenExpiresAt.Before(now) {
		t.Error("expected a future expiry after refresh")
	}
}

func TestRefreshIfNeededKeepsRefreshTokenWhenOmitted(t *testing.T) {
	now := time.Now()
	ts, accounts, pixelfed := newTokenFixture(refreshableAccount(t, now.Add(time.Hour)))
	pixelfed.refreshResp = &transfer.TokenResponse{AccessToken: "new-access"}

	if err := ts.RefreshIfNeeded(context.Background(), now); err != nil {
		t.Fatal(err)
	}

	if got := decrypt(t, accounts.account.RefreshToken); got != "old-refresh" {
		t.Errorf("refresh token = %q, want old-refresh", got)
	}
}

func TestRefreshIfNeededFailureKeepsState(t *testing.T) {
	now := time.Now()
	account := refreshableAccount(t, now.Add(time.Hour))
	oldAccess := account.AccessToken

	ts, accounts, pixelfed := newTokenFixture(account)
	pixelfed.refreshErr = errors.New("invalid_grant")

	if err := ts.RefreshIfNeeded(context.Background(), now); err == nil {
		t.Fatal("expected an error")
	}

	if accounts.account.AccessToken != oldAccess {
		t.Error("a failed refresh must leave the stored token untouched")
	}
}

func TestRevokeClearsLocalStateOnRemoteError(t *testing.T) {
	ts, accounts, pixelfed := newTokenFixture(refreshableAccount(t, time.Now().Add(time.Hour)))
	pixelfed.revokeErr = errors.New("500 Internal Server Error")

	if err := ts.Revoke(context.Background()); err != nil {
		t.Fatal(err)
	}

	if pixelfed.revokeCalls != 1 {
		t.Errorf("revoke calls = %d, want 1", pixelfed.revokeCalls)
	}
	if accounts.account.AccessToken != "" || accounts.account.RefreshToken != "" {
		t.Error("expected local tokens to be cleared regardless of the remote outcome")
	}
	// The registered client survives so a reauthorize needs no new app.
	if accounts.account.ClientID == "" {
		t.Error("expected the client registration to survive a revoke")
	}
}

func TestUpdateHostChangeRevokesAndForgetsClient(t *testing.T) {
	ts, accounts, pixelfed := newTokenFixture(refreshableAccount(t, time.Now().Add(time.Hour)))

	if err := ts.UpdateHost(context.Background(), "pixelfed.other"); err != nil {
		t.Fatal(err)
	}

	if pixelfed.revokeCalls != 1 {
		t.Errorf("revoke calls = %d, want 1", pixelfed.revokeCalls)
	}
	if accounts.account.Host != "https://pixelfed.other" {
		t.Errorf("host = %q, want https://pixelfed.other", accounts.account.Host)
	}
	if accounts.account.ClientID != "" || accounts.account.AccessToken != "" {
		t.Error("expected client and tokens to be wiped on an instance change")
	}
}

func TestUpdateHostUnchangedIsNoOp(t *testing.T) {
	ts, _, pixelfed := newTokenFixture(refreshableAccount(t, time.Now().Add(time.Hour)))

	if err := ts.UpdateHost(context.Background(), "https://pixelfed.example/"); err != nil {
		t.Fatal(err)
	}

	if pixelfed.revokeCalls != 0 {
		t.Error("an unchanged host must not trigger a revoke")
	}
}

func TestUpdateHostClearedKeepsTokens(t *testing.T) {
	ts, accounts, pixelfed := newTokenFixture(refreshableAccount(t, time.Now().Add(time.Hour)))

	if err := ts.UpdateHost(context.Background(), ""); err != nil {
		t.Fatal(err)
	}

	if pixelfed.revokeCalls != 0 {
		t.Error("clearing the host must not revoke the token")
	}
	if accounts.account.Host != "" {
		t.Errorf("host = %q, want empty", accounts.account.Host)
	}
	if accounts.account.AccessToken == "" {
		t.Error("expected tokens to survive a cleared host")
	}
}

func TestUpdateHostInvalid(t *testing.T) {
	ts, _, _ := newTokenFixture(nil)

	if err := ts.UpdateHost(context.Background(), "https://"); err == nil {
		t.Fatal("expected an error for an invalid instance URL")
	}
}

func TestConnectionRoundtrip(t *testing.T) {
	ts, _, _ := newTokenFixture(connectedAccount(t))

	host, accessToken, err := ts.Connection(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if host != "https://pixelfed.example" {
		t.Errorf("host = %q", host)
	}
	if accessToken != "access-token" {
		t.Errorf("access token = %q", accessToken)
	}
}

func TestConnectionNotConnected(t *testing.T) {
	ts, _, _ := newTokenFixture(nil)

	host, accessToken, err := ts.Connection(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if host != "" || accessToken != "" {
		t.Error("expected empty connection details")
	}
}

func TestExchangeCodeStateMismatch(t *testing.T) {
	ts, _, _ := newTokenFixture(connectedAccount(t))

	if err := ts.ExchangeCode(context.Background(), "code", "bogus-state"); err == nil {
		t.Fatal("expected a state mismatch error")
	}
}

func TestRegisterAppSkipsExistingClient(t *testing.T) {
	ts, _, pixelfed := newTokenFixture(connectedAccount(t))
	pixelfed.registerErr = errors.New("must not be called")

	if err := ts.RegisterApp(context.Background()); err != nil {
		t.Fatal(err)
	}
}
