package workspace

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/agri-oasis/storefront/internal/devapi"
	"github.com/agri-oasis/storefront/internal/domain/cart"
	"github.com/agri-oasis/storefront/internal/domain/catalog"
	"github.com/agri-oasis/storefront/internal/domain/checkout"
	"github.com/agri-oasis/storefront/internal/domain/order"
	"github.com/agri-oasis/storefront/internal/domain/session"
	"github.com/agri-oasis/storefront/internal/infrastructure/marketapi"
	"github.com/agri-oasis/storefront/internal/infrastructure/storage"
	"github.com/agri-oasis/storefront/internal/pkg/logger"
)

func newTestAPI(t *testing.T) *marketapi.Client {
	t.Helper()
	gin.SetMode(gin.TestMode)

	srv, err := devapi.NewSeeded(devapi.Options{
		JWTSecret:   "workspace-test-secret-that-is-long-enough",
		TokenExpiry: time.Hour,
		BcryptCost:  bcrypt.MinCost,
		Seed:        true,
	}, logger.Component(logger.Discard(), "devapi"))
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return marketapi.New(ts.URL + "/api")
}

func newTestRegistry(api *marketapi.Client, backend storage.Backend) *Registry {
	return NewRegistry(Options{
		Storage:         backend,
		API:             api,
		Validator:       session.MustIdentityValidator(),
		CheckoutTimeout: 5 * time.Second,
		IdleTTL:         time.Hour,
		SweepSchedule:   "@every 1m",
		Logger:          logger.Discard(),
	})
}

var apples = catalog.Product{ID: "p1", Name: "Organic Apples", Price: 2.99, FarmerID: "farmer-1"}

func TestRegistry_GetReturnsSameWorkspace(t *testing.T) {
	r := newTestRegistry(newTestAPI(t), storage.NewMemory())
	ctx := context.Background()

	a, err := r.Get(ctx, "client-a")
	require.NoError(t, err)
	again, err := r.Get(ctx, "client-a")
	require.NoError(t, err)
	b, err := r.Get(ctx, "client-b")
	require.NoError(t, err)

	assert.Same(t, a, again)
	assert.NotSame(t, a, b)
	assert.Equal(t, 2, r.Len())
	assert.False(t, a.Session.IsAuthenticated())
}

func TestRegistry_StorageErrorIsNotCached(t *testing.T) {
	r := newTestRegistry(newTestAPI(t), storage.NewMemory())

	_, err := r.Get(context.Background(), "")
	assert.ErrorIs(t, err, storage.ErrMissingClientID)
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_RestoresPersistedSession(t *testing.T) {
	api := newTestAPI(t)
	backend := storage.NewMemory()
	ctx := context.Background()

	first, err := newTestRegistry(api, backend).Get(ctx, "client-a")
	require.NoError(t, err)
	require.NoError(t, first.Session.Login(ctx, devapi.SeedBuyerEmail, devapi.SeedBuyerPassword, session.RoleBuyer))

	restored, err := newTestRegistry(api, backend).Get(ctx, "client-a")
	require.NoError(t, err)
	require.True(t, restored.Session.IsAuthenticated())
	assert.Equal(t, "user-1", restored.Session.Current().Identity.ID)

	// the restored token authorizes API calls
	orders, err := restored.API.OrdersByBuyer(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestWorkspace_PlaceOrder(t *testing.T) {
	r := newTestRegistry(newTestAPI(t), storage.NewMemory())
	ctx := context.Background()
	ws, err := r.Get(ctx, "client-a")
	require.NoError(t, err)

	require.NoError(t, ws.AddToCart(apples))
	require.NoError(t, ws.SetShippingAddress("1 Orchard Lane"))

	_, err = ws.PlaceOrder(ctx)
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	require.NoError(t, ws.Session.Login(ctx, devapi.SeedBuyerEmail, devapi.SeedBuyerPassword, session.RoleBuyer))
	placed, err := ws.PlaceOrder(ctx)
	require.NoError(t, err)
	assert.Equal(t, "user-1", placed.BuyerID)
	assert.InDelta(t, 2.99, placed.TotalAmount, 1e-9)

	view := ws.Cart()
	assert.Empty(t, view.Items)
	assert.Equal(t, "", view.ShippingAddress)
	assert.Equal(t, checkout.StateSucceeded.String(), view.CheckoutState)
}

func TestWorkspace_LogoutClearsCart(t *testing.T) {
	r := newTestRegistry(newTestAPI(t), storage.NewMemory())
	ctx := context.Background()
	ws, err := r.Get(ctx, "client-a")
	require.NoError(t, err)

	require.NoError(t, ws.Session.Login(ctx, devapi.SeedBuyerEmail, devapi.SeedBuyerPassword, session.RoleBuyer))
	require.NoError(t, ws.AddToCart(apples))
	require.NoError(t, ws.SetQuantity("p1", 4))
	require.NoError(t, ws.SetShippingAddress("1 Orchard Lane"))

	ws.Logout(ctx)

	assert.False(t, ws.Session.IsAuthenticated())
	view := ws.Cart()
	assert.Empty(t, view.Items)
	assert.Equal(t, "", view.ShippingAddress)
}

func TestRegistry_SweepEvictsIdle(t *testing.T) {
	r := newTestRegistry(newTestAPI(t), storage.NewMemory())
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }
	ctx := context.Background()

	_, err := r.Get(ctx, "idle")
	require.NoError(t, err)
	now = now.Add(90 * time.Minute)
	_, err = r.Get(ctx, "busy")
	require.NoError(t, err)

	assert.Equal(t, 1, r.Sweep())
	assert.Equal(t, 1, r.Len())
}

type blockingSubmitter struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingSubmitter) SubmitOrder(_ context.Context, req order.Request) (*order.Order, error) {
	close(b.started)
	<-b.release
	return &order.Order{ID: "o-1", Request: req}, nil
}

func TestRegistry_SweepKeepsInFlightCheckout(t *testing.T) {
	r := newTestRegistry(newTestAPI(t), storage.NewMemory())
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	ws, err := r.Get(context.Background(), "client-a")
	require.NoError(t, err)

	sub := &blockingSubmitter{started: make(chan struct{}), release: make(chan struct{})}
	ws.Checkout = checkout.NewOrchestrator(cart.New(), sub, 0, logger.Component(logger.Discard(), "checkout"))
	require.NoError(t, ws.AddToCart(apples))
	require.NoError(t, ws.SetShippingAddress("1 Orchard Lane"))

	done := make(chan error, 1)
	go func() {
		_, err := ws.Checkout.Checkout(context.Background(), session.Identity{ID: "user-1", Name: "Alice", Email: "a@example.com"})
		done <- err
	}()
	<-sub.started

	now = now.Add(2 * time.Hour)
	assert.Equal(t, 0, r.Sweep())
	assert.ErrorIs(t, ws.AddToCart(apples), checkout.ErrCheckoutInProgress)

	close(sub.release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, r.Sweep())
}

func TestRegistry_StartStop(t *testing.T) {
	r := newTestRegistry(newTestAPI(t), storage.NewMemory())
	require.NoError(t, r.Start())
	r.Stop()

	bad := newTestRegistry(newTestAPI(t), storage.NewMemory())
	bad.opts.SweepSchedule = "every now and then"
	assert.Error(t, bad.Start())
}

func TestRegistry_KeepAliveDropsExpiredSession(t *testing.T) {
	backend := storage.NewMemory()
	r := newTestRegistry(newTestAPI(t), backend)
	r.opts.KeepAlive = time.Minute
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }
	ctx := context.Background()

	ws, err := r.Get(ctx, "client-a")
	require.NoError(t, err)
	require.NoError(t, ws.Login(ctx, devapi.SeedBuyerEmail, devapi.SeedBuyerPassword, session.RoleBuyer))

	now = now.Add(2 * time.Minute)
	ws, err = r.Get(ctx, "client-a")
	require.NoError(t, err)
	assert.True(t, ws.Session.IsAuthenticated())

	// storage expires the slots while the workspace stays in memory
	slots, err := backend.ForClient("client-a")
	require.NoError(t, err)
	require.NoError(t, slots.Remove(ctx, session.SlotToken))

	now = now.Add(30 * time.Second)
	ws, err = r.Get(ctx, "client-a")
	require.NoError(t, err)
	assert.True(t, ws.Session.IsAuthenticated(), "refresh is throttled")

	now = now.Add(time.Minute)
	ws, err = r.Get(ctx, "client-a")
	require.NoError(t, err)
	assert.False(t, ws.Session.IsAuthenticated())
	_, ok, err := slots.Get(ctx, session.SlotUser)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWorkspace_LoginAsAnotherUserClearsCart(t *testing.T) {
	r := newTestRegistry(newTestAPI(t), storage.NewMemory())
	ctx := context.Background()
	ws, err := r.Get(ctx, "client-a")
	require.NoError(t, err)

	// an anonymous cart survives signing in
	require.NoError(t, ws.AddToCart(apples))
	require.NoError(t, ws.Login(ctx, devapi.SeedBuyerEmail, devapi.SeedBuyerPassword, session.RoleBuyer))
	assert.Len(t, ws.Cart().Items, 1)

	// signing in again as the same user keeps it too
	require.NoError(t, ws.Login(ctx, devapi.SeedBuyerEmail, devapi.SeedBuyerPassword, session.RoleBuyer))
	assert.Len(t, ws.Cart().Items, 1)

	require.NoError(t, ws.SetShippingAddress("1 Orchard Lane"))
	require.NoError(t, ws.Signup(ctx, "Bob", "bob@example.com", "secret1", session.RoleBuyer))
	view := ws.Cart()
	assert.Empty(t, view.Items)
	assert.Empty(t, view.ShippingAddress)

	// a failed login leaves the current session and cart alone
	require.NoError(t, ws.AddToCart(apples))
	require.Error(t, ws.Login(ctx, devapi.SeedBuyerEmail, "wrong", session.RoleBuyer))
	assert.Len(t, ws.Cart().Items, 1)
}
