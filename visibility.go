package storefront

import "sync"

// Visibility tracks the overlay panel toggles. The flags are independent:
// nothing stops multiple panels being open at once, which is intentional
// simplicity rather than an oversight.
type Visibility struct {
	mu         sync.Mutex
	mobileMenu bool
	cartPanel  bool
	search     bool
}

func NewVisibility() *Visibility {
	return &Visibility{}
}

// ToggleMobileMenu flips the mobile menu flag.
func (v *Visibility) ToggleMobileMenu() {
	v.mu.Lock()
	v.mobileMenu = !v.mobileMenu
	v.mu.Unlock()
}

// ToggleCart flips the cart panel flag.
func (v *Visibility) ToggleCart() {
	v.mu.Lock()
	v.cartPanel = !v.cartPanel
	v.mu.Unlock()
}

// ToggleSearch flips the search panel flag.
func (v *Visibility) ToggleSearch() {
	v.mu.Lock()
	v.search = !v.search
	v.mu.Unlock()
}

// CloseAll resets every toggle to closed.
func (v *Visibility) CloseAll() {
	v.mu.Lock()
	v.mobileMenu = false
	v.cartPanel = false
	v.search = false
	v.mu.Unlock()
}

// MobileMenuOpen reports the mobile menu flag.
func (v *Visibility) MobileMenuOpen() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.mobileMenu
}

// CartOpen reports the cart panel flag.
func (v *Visibility) CartOpen() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cartPanel
}

// SearchOpen reports the search panel flag.
func (v *Visibility) SearchOpen() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.search
}
