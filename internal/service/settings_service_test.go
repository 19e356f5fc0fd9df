package service

import (
	"context"
	"testing"

	config "github.com/janboddez/import-from-pixelfed/configs"
	"github.com/janboddez/import-from-pixelfed/internal/transfer"
)

func newSettingsFixture(t *testing.T) (SettingsService, *fakeSettingsRepo, *fakeAccountRepo, *fakePixelfed) {
	t.Helper()

	cfg := config.Config{SecretKey: testSecretKey, BaseURL: "http://localhost:3000"}
	accounts := &fakeAccountRepo{account: connectedAccount(t)}
	pixelfed := &fakePixelfed{}
	settings := &fakeSettingsRepo{}

	return NewSettingsService(settings, NewTokenService(cfg, accounts, pixelfed)), settings, accounts, pixelfed
}

func TestUpdateSettingsReservedPostType(t *testing.T) {
	ss, settings, _, _ := newSettingsFixture(t)

	err := ss.UpdateSettings(context.Background(), &transfer.SettingsUpdate{PostType: "attachment"})
	if err == nil {
		t.Fatal("expected an error for a reserved post type")
	}
	if settings.settings != nil {
		t.Error("expected nothing to be persisted")
	}
}

func TestUpdateSettingsInvalidPostStatus(t *testing.T) {
	ss, _, _, _ := newSettingsFixture(t)

	if err := ss.UpdateSettings(context.Background(), &transfer.SettingsUpdate{PostStatus: "trash"}); err == nil {
		t.Fatal("expected an error for an unsupported post status")
	}
}

func TestUpdateSettingsNormalizesDenylist(t *testing.T) {
	ss, settings, _, _ := newSettingsFixture(t)

	err := ss.UpdateSettings(context.Background(), &transfer.SettingsUpdate{
		Denylist: "spoiler\r\nnsfw\r",
	})
	if err != nil {
		t.Fatal(err)
	}

	if got := settings.settings.Denylist; got != "spoiler\nnsfw" {
		t.Errorf("denylist = %q, want %q", got, "spoiler\nnsfw")
	}
}

func TestUpdateSettingsClampsFetchLimit(t *testing.T) {
	ss, settings, _, _ := newSettingsFixture(t)

	if err := ss.UpdateSettings(context.Background(), &transfer.SettingsUpdate{FetchLimit: 100}); err != nil {
		t.Fatal(err)
	}

	if got := settings.settings.FetchLimit; got != maxFetchLimit {
		t.Errorf("fetch limit = %d, want %d", got, maxFetchLimit)
	}
}

func TestUpdateSettingsHostChange(t *testing.T) {
	ss, _, accounts, pixelfed := newSettingsFixture(t)

	host := "pixelfed.other"
	if err := ss.UpdateSettings(context.Background(), &transfer.SettingsUpdate{Host: &host}); err != nil {
		t.Fatal(err)
	}

	if pixelfed.revokeCalls != 1 {
		t.Errorf("revoke calls = %d, want 1", pixelfed.revokeCalls)
	}
	if accounts.account.Host != "https://pixelfed.other" {
		t.Errorf("host = %q, want https://pixelfed.other", accounts.account.Host)
	}
}

func TestUpdateSettingsOmittedHostUntouched(t *testing.T) {
	ss, _, accounts, _ := newSettingsFixture(t)

	if err := ss.UpdateSettings(context.Background(), &transfer.SettingsUpdate{Category: "photos"}); err != nil {
		t.Fatal(err)
	}

	if accounts.account.Host != "https://pixelfed.example" {
		t.Errorf("host = %q, want https://pixelfed.example", accounts.account.Host)
	}
}
