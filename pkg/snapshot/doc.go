// Package snapshot defines the persistence port for storefront session
// stores: a Store[T] loads and saves one full snapshot per named ref.
//
// Responsibilities:
//   - Store[T] only loads/saves a single snapshot for a single Ref.
//   - Saves are whole-snapshot overwrites (write-through); callers that want
//     batching or deltas layer that on top in their own adapter.
//   - Consumers own the failure policy. The storefront stores log a failed
//     Save and keep the in-memory mutation.
//
// Two implementations ship with the package: MemoryStore for tests and
// examples, and FileStore which writes one JSON document per snapshot under
// a base directory. Anything else (browser localStorage bridges, redis,
// sqlite) is an adapter supplied by the consumer.
//
// Deterministic keys:
//
//	Ref.Identifier() is "<name>" or "<session>/<name>". Stores share one
//	key space, so snapshot names must be unique per session ("cart-storage",
//	"wishlist-storage", ...).
package snapshot
