// Package storefront provides explicit, constructible session state stores
// for a thrift-store UI: cart, wishlist, search, panel visibility and user
// preferences, with injected snapshot persistence and activity fan-out.
package storefront

import (
	"context"
	"time"

	"github.com/goliatone/go-storefront/pkg/activity"
	"github.com/goliatone/go-storefront/pkg/snapshot"
)

// Session aggregates the storefront state stores for one browser/session
// context. Build one per session via New and hand it to the UI layer by
// explicit composition; there are no package-level singletons.
type Session struct {
	Cart        *Cart
	Wishlist    *Wishlist
	Search      *SearchSession
	UI          *Visibility
	Preferences *Preferences
}

type config struct {
	sessionID     string
	actorID       string
	cartStore     snapshot.Store[CartSnapshot]
	wishlistStore snapshot.Store[WishlistSnapshot]
	prefsStore    snapshot.Store[PreferencesSnapshot]
	hooks         activity.Hooks
	logger        Logger
	clock         func() time.Time
}

// Option configures a Session.
type Option func(*config)

// WithSessionID namespaces the persisted snapshots per session context.
// The default is the shared, unnamespaced key space where the last
// writer wins, exactly like a browser profile's local storage.
func WithSessionID(id string) Option {
	return func(cfg *config) {
		cfg.sessionID = id
	}
}

// WithActor sets the caller identity attached to emitted activity events.
func WithActor(actorID string) Option {
	return func(cfg *config) {
		cfg.actorID = actorID
	}
}

// WithCartStore injects the cart persistence port.
func WithCartStore(store snapshot.Store[CartSnapshot]) Option {
	return func(cfg *config) {
		cfg.cartStore = store
	}
}

// WithWishlistStore injects the wishlist persistence port.
func WithWishlistStore(store snapshot.Store[WishlistSnapshot]) Option {
	return func(cfg *config) {
		cfg.wishlistStore = store
	}
}

// WithPreferencesStore injects the preferences persistence port.
func WithPreferencesStore(store snapshot.Store[PreferencesSnapshot]) Option {
	return func(cfg *config) {
		cfg.prefsStore = store
	}
}

// WithActivityHooks fans store mutations out to hooks.
func WithActivityHooks(hooks activity.Hooks) Option {
	return func(cfg *config) {
		cfg.hooks = hooks
	}
}

// WithLogger records store events (failed snapshot writes, hook errors).
func WithLogger(logger Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithClock overrides the timestamp source, mainly for tests.
func WithClock(clock func() time.Time) Option {
	return func(cfg *config) {
		if clock != nil {
			cfg.clock = clock
		}
	}
}

// New builds a Session, loading persisted snapshots for the cart, wishlist
// and preferences stores. A snapshot that fails to load is logged and the
// store starts from defaults; a corrupt snapshot never blocks the session.
func New(ctx context.Context, opts ...Option) (*Session, error) {
	cfg := config{
		cartStore:     snapshot.NewMemoryStore[CartSnapshot](),
		wishlistStore: snapshot.NewMemoryStore[WishlistSnapshot](),
		prefsStore:    snapshot.NewMemoryStore[PreferencesSnapshot](),
		logger:        noopLogger{},
		clock:         time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	emitter := activity.NewEmitter(cfg.hooks, activity.Config{Enabled: len(cfg.hooks) > 0})

	session := &Session{
		Cart:        newCart(ctx, cfg, emitter),
		Wishlist:    newWishlist(ctx, cfg, emitter),
		Search:      NewSearchSession(),
		UI:          NewVisibility(),
		Preferences: newPreferences(ctx, cfg),
	}
	return session, nil
}

// Reset tears the whole session back to defaults: cart and wishlist emptied
// (and persisted empty), search and panel state cleared, preferences
// restored to the defaults.
func (s *Session) Reset(ctx context.Context) {
	s.Cart.Clear(ctx)
	s.Wishlist.Clear(ctx)
	s.Search.ClearSearch()
	s.UI.CloseAll()
	s.Preferences.Update(ctx, DefaultPreferences())
}
