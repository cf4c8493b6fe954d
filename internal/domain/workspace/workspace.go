// Package workspace binds together everything one client instance owns: its
// session, its cart and checkout, and an API client carrying its token.
package workspace

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/agri-oasis/storefront/internal/domain/cart"
	"github.com/agri-oasis/storefront/internal/domain/catalog"
	"github.com/agri-oasis/storefront/internal/domain/checkout"
	"github.com/agri-oasis/storefront/internal/domain/order"
	"github.com/agri-oasis/storefront/internal/domain/session"
	"github.com/agri-oasis/storefront/internal/infrastructure/marketapi"
)

// ErrNotAuthenticated is returned by operations that need a session
var ErrNotAuthenticated = errors.New("not authenticated")

// Workspace is the state of one client instance
type Workspace struct {
	ID       string
	Session  *session.Store
	Checkout *checkout.Orchestrator
	API      *marketapi.Client

	lastUsed      atomic.Int64
	lastKeepAlive atomic.Int64
}

// CartView is a read-only snapshot of the cart and checkout
type CartView struct {
	Items           []cart.Line `json:"items"`
	Totals          cart.Totals `json:"totals"`
	ShippingAddress string      `json:"shippingAddress"`
	CheckoutState   string      `json:"checkoutState"`
}

// Touch records activity at now
func (w *Workspace) Touch(now time.Time) {
	w.lastUsed.Store(now.UnixNano())
}

// LastUsed returns the time of the last recorded activity
func (w *Workspace) LastUsed() time.Time {
	return time.Unix(0, w.lastUsed.Load())
}

// Cart returns a snapshot of the cart
func (w *Workspace) Cart() CartView {
	var view CartView
	w.Checkout.ViewCart(func(c *cart.Cart) {
		view.Items = c.Lines()
		view.Totals = c.Totals()
	})
	view.ShippingAddress = w.Checkout.ShippingAddress()
	view.CheckoutState = w.Checkout.State().String()
	return view
}

// AddToCart adds one unit of p
func (w *Workspace) AddToCart(p catalog.Product) error {
	return w.Checkout.UpdateCart(func(c *cart.Cart) { c.AddItem(p) })
}

// RemoveFromCart drops the line for productID
func (w *Workspace) RemoveFromCart(productID string) error {
	return w.Checkout.UpdateCart(func(c *cart.Cart) { c.RemoveItem(productID) })
}

// SetQuantity changes a line quantity; below 1 removes the line
func (w *Workspace) SetQuantity(productID string, q int) error {
	return w.Checkout.UpdateCart(func(c *cart.Cart) { c.SetQuantity(productID, q) })
}

// ClearCart empties the cart
func (w *Workspace) ClearCart() error {
	return w.Checkout.UpdateCart(func(c *cart.Cart) { c.Clear() })
}

// SetShippingAddress records the address for the next checkout
func (w *Workspace) SetShippingAddress(address string) error {
	return w.Checkout.SetShippingAddress(address)
}

// PlaceOrder checks out the cart as the signed-in identity
func (w *Workspace) PlaceOrder(ctx context.Context) (*order.Order, error) {
	sess := w.Session.Current()
	if sess == nil {
		return nil, ErrNotAuthenticated
	}
	return w.Checkout.Checkout(ctx, sess.Identity)
}

// Login signs in through the session store. A cart built by a different
// signed-in identity is discarded; an anonymous cart is kept.
func (w *Workspace) Login(ctx context.Context, email, password string, role session.Role) error {
	previous := w.currentUserID()
	if err := w.Session.Login(ctx, email, password, role); err != nil {
		return err
	}
	w.resetOnIdentityChange(previous)
	return nil
}

// Signup registers through the session store with the same cart rule as Login
func (w *Workspace) Signup(ctx context.Context, name, email, password string, role session.Role) error {
	previous := w.currentUserID()
	if err := w.Session.Signup(ctx, name, email, password, role); err != nil {
		return err
	}
	w.resetOnIdentityChange(previous)
	return nil
}

func (w *Workspace) currentUserID() string {
	if sess := w.Session.Current(); sess != nil {
		return sess.Identity.ID
	}
	return ""
}

func (w *Workspace) resetOnIdentityChange(previous string) {
	if previous == "" || previous == w.currentUserID() {
		return
	}
	_ = w.Checkout.UpdateCart(func(c *cart.Cart) { c.Clear() })
	_ = w.Checkout.SetShippingAddress("")
}

// Logout ends the session. The cart is emptied too unless a checkout is
// still running, in which case it is left for that attempt to settle.
func (w *Workspace) Logout(ctx context.Context) {
	w.Session.Logout(ctx)
	_ = w.Checkout.UpdateCart(func(c *cart.Cart) { c.Clear() })
	_ = w.Checkout.SetShippingAddress("")
}
