package storefront

import (
	"context"
	"sync"
	"time"

	"github.com/goliatone/go-storefront/pkg/activity"
	"github.com/goliatone/go-storefront/pkg/snapshot"
)

// Wishlist is a uniqueness-enforced set of product references with the same
// write-through persistence as the cart.
type Wishlist struct {
	mu      sync.Mutex
	items   []*Product
	store   snapshot.Store[WishlistSnapshot]
	ref     snapshot.Ref
	meta    snapshot.Meta
	emitter *activity.Emitter
	logger  Logger
	clock   func() time.Time
	actorID string
}

func newWishlist(ctx context.Context, cfg config, emitter *activity.Emitter) *Wishlist {
	w := &Wishlist{
		store:   cfg.wishlistStore,
		ref:     snapshot.Ref{Name: WishlistSnapshotName, Session: cfg.sessionID},
		emitter: emitter,
		logger:  cfg.logger,
		clock:   cfg.clock,
		actorID: cfg.actorID,
	}
	snap, meta, ok, err := w.store.Load(ctx, w.ref)
	if err != nil {
		w.logger.LogStoreEvent(LogEvent{Store: "wishlist", Op: "load", Err: err})
		return w
	}
	if ok {
		w.items = append(w.items, snap.Items...)
		w.meta = meta
	}
	return w
}

// AddItem appends product unless its id is already present; duplicates are a
// silent no-op.
func (w *Wishlist) AddItem(ctx context.Context, product *Product) {
	if product == nil || product.ID == "" {
		return
	}

	w.mu.Lock()
	for _, item := range w.items {
		if item.ID == product.ID {
			w.mu.Unlock()
			return
		}
	}
	w.items = append(w.items, product)
	w.persistLocked(ctx)
	w.mu.Unlock()

	w.emit(ctx, activity.VerbWishlistAdded, product.ID, nil)
}

// RemoveItem deletes the entry for productID; absent entries are a silent
// no-op.
func (w *Wishlist) RemoveItem(ctx context.Context, productID string) {
	w.mu.Lock()
	removed := false
	for i := range w.items {
		if w.items[i].ID == productID {
			w.items = append(w.items[:i], w.items[i+1:]...)
			removed = true
			break
		}
	}
	if removed {
		w.persistLocked(ctx)
	}
	w.mu.Unlock()

	if removed {
		w.emit(ctx, activity.VerbWishlistRemoved, productID, nil)
	}
}

// Contains reports whether productID is wishlisted.
func (w *Wishlist) Contains(productID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, item := range w.items {
		if item.ID == productID {
			return true
		}
	}
	return false
}

// Clear empties the wishlist.
func (w *Wishlist) Clear(ctx context.Context) {
	w.mu.Lock()
	w.items = nil
	w.persistLocked(ctx)
	w.mu.Unlock()

	w.emit(ctx, activity.VerbWishlistCleared, "wishlist", nil)
}

// Items returns a copy of the wishlist in insertion order.
func (w *Wishlist) Items() []*Product {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]*Product, len(w.items))
	copy(out, w.items)
	return out
}

// Len is the number of wishlisted products.
func (w *Wishlist) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.items)
}

func (w *Wishlist) persistLocked(ctx context.Context) {
	snap := WishlistSnapshot{Items: make([]*Product, len(w.items))}
	copy(snap.Items, w.items)
	meta, err := w.store.Save(ctx, w.ref, snap, w.meta)
	if err != nil {
		w.logger.LogStoreEvent(LogEvent{Store: "wishlist", Op: "save", Err: err})
		return
	}
	w.meta = meta
}

func (w *Wishlist) emit(ctx context.Context, verb, objectID string, metadata map[string]any) {
	if !w.emitter.Enabled() {
		return
	}
	if err := w.emitter.Emit(ctx, activity.Event{
		Verb:       verb,
		ActorID:    w.actorID,
		ObjectType: "product",
		ObjectID:   objectID,
		Metadata:   metadata,
		OccurredAt: w.clock(),
	}); err != nil {
		w.logger.LogStoreEvent(LogEvent{Store: "wishlist", Op: "emit", Detail: verb, Err: err})
	}
}
