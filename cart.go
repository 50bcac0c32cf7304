package storefront

import (
	"context"
	"sync"
	"time"

	"github.com/goliatone/go-storefront/pkg/activity"
	"github.com/goliatone/go-storefront/pkg/snapshot"
)

// Cart aggregates product lines with quantities. At most one line exists per
// product id. Every mutation is written through to the snapshot store; a
// failed write is logged and the in-memory mutation stands.
type Cart struct {
	mu      sync.Mutex
	lines   []CartLine
	store   snapshot.Store[CartSnapshot]
	ref     snapshot.Ref
	meta    snapshot.Meta
	emitter *activity.Emitter
	logger  Logger
	clock   func() time.Time
	actorID string
}

func newCart(ctx context.Context, cfg config, emitter *activity.Emitter) *Cart {
	c := &Cart{
		store:   cfg.cartStore,
		ref:     snapshot.Ref{Name: CartSnapshotName, Session: cfg.sessionID},
		emitter: emitter,
		logger:  cfg.logger,
		clock:   cfg.clock,
		actorID: cfg.actorID,
	}
	snap, meta, ok, err := c.store.Load(ctx, c.ref)
	if err != nil {
		c.logger.LogStoreEvent(LogEvent{Store: "cart", Op: "load", Err: err})
		return c
	}
	if ok {
		c.lines = append(c.lines, snap.Lines...)
		c.meta = meta
	}
	return c
}

// AddItem adds quantity units of product to the cart. An existing line for
// the product accumulates; a new line records AddedAt. Repeated identical
// calls add more, they do not set. Non-positive quantities and nil products
// are caller errors and are ignored without side effects.
func (c *Cart) AddItem(ctx context.Context, product *Product, quantity int) {
	if product == nil || product.ID == "" || quantity <= 0 {
		return
	}

	c.mu.Lock()
	found := false
	for i := range c.lines {
		if c.lines[i].Product.ID == product.ID {
			c.lines[i].Quantity += quantity
			found = true
			break
		}
	}
	if !found {
		c.lines = append(c.lines, CartLine{
			Product:  product,
			Quantity: quantity,
			AddedAt:  c.clock(),
		})
	}
	c.persistLocked(ctx)
	c.mu.Unlock()

	c.emit(ctx, activity.VerbCartItemAdded, product.ID, map[string]any{"quantity": quantity})
}

// RemoveItem deletes the line for productID. Removing an absent product is a
// silent no-op, not an error.
func (c *Cart) RemoveItem(ctx context.Context, productID string) {
	c.mu.Lock()
	removed := false
	for i := range c.lines {
		if c.lines[i].Product.ID == productID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			removed = true
			break
		}
	}
	if removed {
		c.persistLocked(ctx)
	}
	c.mu.Unlock()

	if removed {
		c.emit(ctx, activity.VerbCartItemRemoved, productID, nil)
	}
}

// UpdateQuantity sets the line's quantity outright. A quantity of zero or
// less is equivalent to RemoveItem.
func (c *Cart) UpdateQuantity(ctx context.Context, productID string, quantity int) {
	if quantity <= 0 {
		c.RemoveItem(ctx, productID)
		return
	}

	c.mu.Lock()
	updated := false
	for i := range c.lines {
		if c.lines[i].Product.ID == productID {
			c.lines[i].Quantity = quantity
			updated = true
			break
		}
	}
	if updated {
		c.persistLocked(ctx)
	}
	c.mu.Unlock()

	if updated {
		c.emit(ctx, activity.VerbCartItemUpdated, productID, map[string]any{"quantity": quantity})
	}
}

// Clear empties the cart.
func (c *Cart) Clear(ctx context.Context) {
	c.mu.Lock()
	c.lines = nil
	c.persistLocked(ctx)
	c.mu.Unlock()

	c.emit(ctx, activity.VerbCartCleared, "cart", nil)
}

// TotalItems is the sum of quantities across lines, not the line count.
func (c *Cart) TotalItems() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := 0
	for _, line := range c.lines {
		total += line.Quantity
	}
	return total
}

// TotalPrice sums unit price times quantity across lines. The price is read
// from the shared product reference at query time, so price changes made
// elsewhere are reflected live.
func (c *Cart) TotalPrice() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := 0.0
	for _, line := range c.lines {
		total += line.Product.Price * float64(line.Quantity)
	}
	return total
}

// Items returns a copy of the cart lines in insertion order.
func (c *Cart) Items() []CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

// Len is the number of distinct lines.
func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines)
}

// persistLocked writes the full snapshot through to the store. Callers hold
// c.mu. Failures are logged; the in-memory state is never rolled back.
func (c *Cart) persistLocked(ctx context.Context) {
	snap := CartSnapshot{Lines: make([]CartLine, len(c.lines))}
	copy(snap.Lines, c.lines)
	meta, err := c.store.Save(ctx, c.ref, snap, c.meta)
	if err != nil {
		c.logger.LogStoreEvent(LogEvent{Store: "cart", Op: "save", Err: err})
		return
	}
	c.meta = meta
}

func (c *Cart) emit(ctx context.Context, verb, objectID string, metadata map[string]any) {
	if !c.emitter.Enabled() {
		return
	}
	if err := c.emitter.Emit(ctx, activity.Event{
		Verb:       verb,
		ActorID:    c.actorID,
		ObjectType: "product",
		ObjectID:   objectID,
		Metadata:   metadata,
		OccurredAt: c.clock(),
	}); err != nil {
		c.logger.LogStoreEvent(LogEvent{Store: "cart", Op: "emit", Detail: verb, Err: err})
	}
}
