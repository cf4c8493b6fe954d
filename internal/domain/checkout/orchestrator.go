// internal/domain/checkout/orchestrator.go
package checkout

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/agri-oasis/storefront/internal/domain/cart"
	"github.com/agri-oasis/storefront/internal/domain/order"
	"github.com/agri-oasis/storefront/internal/domain/session"
)

// OrderSubmitter creates orders on the marketplace API
type OrderSubmitter interface {
	SubmitOrder(ctx context.Context, req order.Request) (*order.Order, error)
}

// Orchestrator turns a cart and a shipping address into a placed order.
// It owns the cart: while an attempt is in flight the cart cannot change.
type Orchestrator struct {
	mu        sync.Mutex
	cart      *cart.Cart
	address   string
	state     State
	lastOrder *order.Order
	submitter OrderSubmitter
	timeout   time.Duration
	logger    *logrus.Entry
	now       func() time.Time
}

// NewOrchestrator creates an idle orchestrator for c. A zero timeout means
// attempts are bounded only by the caller's context.
func NewOrchestrator(c *cart.Cart, submitter OrderSubmitter, timeout time.Duration, logger *logrus.Entry) *Orchestrator {
	if c == nil {
		c = cart.New()
	}
	return &Orchestrator{
		cart:      c,
		submitter: submitter,
		timeout:   timeout,
		logger:    logger,
		now:       time.Now,
	}
}

// SetShippingAddress records the address as entered
func (o *Orchestrator) SetShippingAddress(address string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state.InFlight() {
		return ErrCheckoutInProgress
	}
	o.address = address
	return nil
}

// ShippingAddress returns the address as entered
func (o *Orchestrator) ShippingAddress() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.address
}

// State returns the current checkout state
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// InFlight reports whether an attempt is running
func (o *Orchestrator) InFlight() bool {
	return o.State().InFlight()
}

// LastOrder returns the order placed by the most recent successful attempt
func (o *Orchestrator) LastOrder() *order.Order {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastOrder
}

// ViewCart runs fn with the cart under the orchestrator lock. fn must not
// retain the cart.
func (o *Orchestrator) ViewCart(fn func(c *cart.Cart)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	fn(o.cart)
}

// UpdateCart runs fn with the cart unless an attempt is in flight
func (o *Orchestrator) UpdateCart(fn func(c *cart.Cart)) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state.InFlight() {
		return ErrCheckoutInProgress
	}
	fn(o.cart)
	return nil
}

// Checkout places one order for the cart on behalf of buyer. On success the
// cart and the address are cleared. On failure both are left untouched.
// Nothing is retried.
func (o *Orchestrator) Checkout(ctx context.Context, buyer session.Identity) (*order.Order, error) {
	req, err := o.begin(buyer)
	if err != nil {
		return nil, err
	}

	logger := o.logger.WithFields(logrus.Fields{
		"buyer_id": buyer.ID,
		"items":    len(req.Items),
		"total":    req.TotalAmount,
	})
	logger.Info("Submitting order")

	submitCtx := ctx
	if o.timeout > 0 {
		var cancel context.CancelFunc
		submitCtx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	placed, err := o.submitter.SubmitOrder(submitCtx, req)
	if err == nil && placed == nil {
		err = errors.New("empty order response")
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if err != nil {
		o.state = mustTransition(o.state, StateFailed)
		serr := newSubmissionError(err)
		logger.WithError(err).WithField("status", serr.Status).Warn("Order submission failed")
		return nil, serr
	}

	o.state = mustTransition(o.state, StateSucceeded)
	o.cart.Clear()
	o.address = ""
	o.lastOrder = placed
	logger.WithField("order_id", placed.ID).Info("Order placed")
	return placed, nil
}

// begin validates the attempt and moves to Submitting, returning the
// request snapshot.
func (o *Orchestrator) begin(buyer session.Identity) (order.Request, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state.InFlight() {
		return order.Request{}, ErrCheckoutInProgress
	}
	o.state = mustTransition(o.state, StateValidating)

	if strings.TrimSpace(o.address) == "" {
		o.state = mustTransition(o.state, StateFailed)
		return order.Request{}, ErrEmptyShippingAddress
	}
	if o.cart.IsEmpty() {
		o.state = mustTransition(o.state, StateFailed)
		return order.Request{}, ErrEmptyCart
	}

	req := o.buildRequest(buyer)
	o.state = mustTransition(o.state, StateSubmitting)
	return req, nil
}

func (o *Orchestrator) buildRequest(buyer session.Identity) order.Request {
	lines := o.cart.Lines()
	items := make([]order.Item, 0, len(lines))
	for _, l := range lines {
		items = append(items, order.Item{
			ProductID: l.ProductID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			Price:     l.UnitPrice,
		})
	}

	return order.Request{
		BuyerID:         buyer.ID,
		BuyerName:       buyer.Name,
		BuyerContact:    buyer.Email,
		ShippingAddress: o.address,
		Items:           items,
		TotalAmount:     o.cart.Subtotal(),
		FarmerID:        lines[0].FarmerID,
		Status:          order.StatusPending,
		CreatedAt:       o.now().UTC().Format(time.RFC3339),
	}
}
