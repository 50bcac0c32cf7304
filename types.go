package storefront

import "time"

// Product is the catalog reference the session stores operate on. Cart lines
// and wishlist entries hold the shared *Product, so price edits made
// elsewhere are visible to totals immediately rather than being frozen at
// add time.
type Product struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Category string  `json:"category,omitempty"`
	Image    string  `json:"image,omitempty"`
}

// CartLine is one product entry in the cart. At most one line exists per
// product id; Quantity is always >= 1 (zero triggers removal).
type CartLine struct {
	Product  *Product  `json:"product"`
	Quantity int       `json:"quantity"`
	AddedAt  time.Time `json:"addedAt"`
}

// CartSnapshot is the persisted form of the cart.
type CartSnapshot struct {
	Lines []CartLine `json:"lines"`
}

// WishlistSnapshot is the persisted form of the wishlist.
type WishlistSnapshot struct {
	Items []*Product `json:"items"`
}

// NotificationPrefs are the per-channel notification toggles.
type NotificationPrefs struct {
	Email bool `json:"email"`
	Push  bool `json:"push"`
	SMS   bool `json:"sms"`
}

// PreferencesSnapshot is the persisted form of the user preferences store.
type PreferencesSnapshot struct {
	Language      string            `json:"language"`
	Currency      string            `json:"currency"`
	Notifications NotificationPrefs `json:"notifications"`
}

// DefaultPreferences returns the out-of-the-box preference set.
func DefaultPreferences() PreferencesSnapshot {
	return PreferencesSnapshot{
		Language: "en",
		Currency: "USD",
		Notifications: NotificationPrefs{
			Email: true,
			Push:  true,
			SMS:   false,
		},
	}
}

// Snapshot names used with the persistence port.
const (
	CartSnapshotName        = "cart-storage"
	WishlistSnapshotName    = "wishlist-storage"
	PreferencesSnapshotName = "user-storage"
)
