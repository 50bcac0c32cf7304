package storefront_test

import (
	"context"
	"testing"

	storefront "github.com/goliatone/go-storefront"
	"github.com/goliatone/go-storefront/pkg/snapshot"
)

func TestPreferencesDefaults(t *testing.T) {
	session := newTestSession(t)

	got := session.Preferences.Current()
	want := storefront.DefaultPreferences()
	if got != want {
		t.Fatalf("expected defaults %+v, got %+v", want, got)
	}
	if got.Language != "en" || got.Currency != "USD" {
		t.Fatalf("unexpected default locale: %+v", got)
	}
	if !got.Notifications.Email || !got.Notifications.Push || got.Notifications.SMS {
		t.Fatalf("unexpected default notification prefs: %+v", got.Notifications)
	}
}

func TestPreferencesUpdateAndReload(t *testing.T) {
	ctx := context.Background()
	store := snapshot.NewMemoryStore[storefront.PreferencesSnapshot]()

	first := newTestSession(t, storefront.WithPreferencesStore(store))
	prefs := first.Preferences.Current()
	prefs.Currency = "EUR"
	prefs.Language = "fr"
	prefs.Notifications.SMS = true
	first.Preferences.Update(ctx, prefs)

	second := newTestSession(t, storefront.WithPreferencesStore(store))
	got := second.Preferences.Current()
	if got.Currency != "EUR" || got.Language != "fr" || !got.Notifications.SMS {
		t.Fatalf("expected persisted preferences to reload, got %+v", got)
	}
}

func TestPreferencesFallBackToDefaultsOnLoadError(t *testing.T) {
	store := &failingPrefsStore{}
	session := newTestSession(t, storefront.WithPreferencesStore(store))

	if got := session.Preferences.Current(); got != storefront.DefaultPreferences() {
		t.Fatalf("expected defaults when the store cannot load, got %+v", got)
	}
}

type failingPrefsStore struct{}

func (failingPrefsStore) Load(context.Context, snapshot.Ref) (storefront.PreferencesSnapshot, snapshot.Meta, bool, error) {
	return storefront.PreferencesSnapshot{}, snapshot.Meta{}, false, context.DeadlineExceeded
}

func (failingPrefsStore) Save(context.Context, snapshot.Ref, storefront.PreferencesSnapshot, snapshot.Meta) (snapshot.Meta, error) {
	return snapshot.Meta{}, nil
}
