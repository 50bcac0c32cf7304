package storefront

import (
	"context"
	"sync"

	"github.com/goliatone/go-storefront/pkg/snapshot"
)

// Preferences holds per-user display and notification settings with the same
// write-through persistence as the cart and wishlist.
type Preferences struct {
	mu     sync.Mutex
	prefs  PreferencesSnapshot
	store  snapshot.Store[PreferencesSnapshot]
	ref    snapshot.Ref
	meta   snapshot.Meta
	logger Logger
}

func newPreferences(ctx context.Context, cfg config) *Preferences {
	p := &Preferences{
		prefs:  DefaultPreferences(),
		store:  cfg.prefsStore,
		ref:    snapshot.Ref{Name: PreferencesSnapshotName, Session: cfg.sessionID},
		logger: cfg.logger,
	}
	snap, meta, ok, err := p.store.Load(ctx, p.ref)
	if err != nil {
		p.logger.LogStoreEvent(LogEvent{Store: "preferences", Op: "load", Err: err})
		return p
	}
	if ok {
		p.prefs = snap
		p.meta = meta
	}
	return p
}

// Current returns the active preference set.
func (p *Preferences) Current() PreferencesSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.prefs
}

// Update replaces the preference set wholesale and writes it through.
func (p *Preferences) Update(ctx context.Context, prefs PreferencesSnapshot) {
	p.mu.Lock()
	p.prefs = prefs
	meta, err := p.store.Save(ctx, p.ref, p.prefs, p.meta)
	if err != nil {
		p.logger.LogStoreEvent(LogEvent{Store: "preferences", Op: "save", Err: err})
	} else {
		p.meta = meta
	}
	p.mu.Unlock()
}
