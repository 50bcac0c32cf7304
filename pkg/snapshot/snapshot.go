package snapshot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidRef = errors.New("snapshot: invalid ref")

// Ref identifies one persisted snapshot for one named store.
type Ref struct {
	// Name is the snapshot name, e.g. "cart-storage" or "wishlist-storage".
	Name string
	// Session optionally isolates snapshots per browser/session context.
	// Empty means the default session.
	Session string
}

// Meta is storage-owned metadata attached to a persisted snapshot.
type Meta struct {
	SnapshotID string            `json:"snapshot_id,omitempty"`
	UpdatedAt  time.Time         `json:"updated_at,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// Store loads/saves the full snapshot for a single Ref. Every Save overwrites
// the whole snapshot; there is no incremental or delta persistence.
type Store[T any] interface {
	Load(ctx context.Context, ref Ref) (snapshot T, meta Meta, ok bool, err error)
	Save(ctx context.Context, ref Ref, snapshot T, meta Meta) (Meta, error)
}

// Identifier returns the deterministic storage key for the ref.
func (r Ref) Identifier() (string, error) {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", ErrInvalidRef)
	}
	session := strings.TrimSpace(r.Session)
	if session == "" {
		return name, nil
	}
	return fmt.Sprintf("%s/%s", session, name), nil
}

func cloneMeta(meta Meta) Meta {
	out := meta
	if meta.Extra == nil {
		return out
	}
	out.Extra = make(map[string]string, len(meta.Extra))
	for k, v := range meta.Extra {
		out.Extra[k] = v
	}
	return out
}
