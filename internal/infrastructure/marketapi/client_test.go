package marketapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agri-oasis/storefront/internal/domain/order"
	"github.com/agri-oasis/storefront/internal/domain/session"
)

type recorded struct {
	method string
	path   string
	auth   string
	body   map[string]any
}

type recorder struct {
	mu    sync.Mutex
	calls []recorded
}

func (r *recorder) at(i int) recorded {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[i]
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func newRecordingServer(t *testing.T, status int, reply string) (*httptest.Server, *recorder) {
	t.Helper()
	calls := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorded{method: r.Method, path: r.URL.Path, auth: r.Header.Get("Authorization")}
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&rec.body)
		}
		calls.mu.Lock()
		calls.calls = append(calls.calls, rec)
		calls.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)
	return srv, calls
}

func TestClient_AttachesBearerExceptOnAuth(t *testing.T) {
	srv, calls := newRecordingServer(t, http.StatusOK, `{"token":"t1","user":{"id":"1"}}`)
	c := New(srv.URL+"/api/", WithTokenSource(TokenFunc(func() string { return "t1" })))

	_, err := c.Login(context.Background(), "a@b.c", "pw", session.RoleFarmer)
	require.NoError(t, err)
	_, err = c.ListProducts(context.Background())
	// Body is an object, not a list.
	require.Error(t, err)

	require.Equal(t, 2, calls.count())
	assert.Equal(t, "/api/auth/login", calls.at(0).path)
	assert.Empty(t, calls.at(0).auth)
	assert.Equal(t, "farmer", calls.at(0).body["role"])
	assert.Equal(t, "/api/products", calls.at(1).path)
	assert.Equal(t, "Bearer t1", calls.at(1).auth)
}

func TestClient_NoTokenNoHeader(t *testing.T) {
	srv, calls := newRecordingServer(t, http.StatusOK, `[]`)
	c := New(srv.URL, WithTokenSource(TokenFunc(func() string { return "" })))

	_, err := c.ListOrders(context.Background())
	require.NoError(t, err)
	assert.Empty(t, calls.at(0).auth)
}

func TestClient_WithTokensCopies(t *testing.T) {
	srv, calls := newRecordingServer(t, http.StatusOK, `[]`)
	base := New(srv.URL)
	bound := base.WithTokens(TokenFunc(func() string { return "t9" }))

	_, err := base.ListUsers(context.Background())
	require.NoError(t, err)
	_, err = bound.ListUsers(context.Background())
	require.NoError(t, err)

	assert.Empty(t, calls.at(0).auth)
	assert.Equal(t, "Bearer t9", calls.at(1).auth)
}

func TestClient_ErrorCarriesServerMessage(t *testing.T) {
	srv, _ := newRecordingServer(t, http.StatusUnauthorized, `{"message":"Invalid password"}`)
	c := New(srv.URL)

	_, err := c.Login(context.Background(), "a@b.c", "bad", session.RoleBuyer)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.StatusCode())
	assert.Equal(t, "Invalid password", apiErr.ServerMessage())
	assert.True(t, IsUnauthorized(err))
}

func TestClient_ErrorWithoutBody(t *testing.T) {
	srv, _ := newRecordingServer(t, http.StatusInternalServerError, ``)
	c := New(srv.URL)

	_, err := c.SubmitOrder(context.Background(), order.Request{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 500, apiErr.Status)
	assert.Empty(t, apiErr.ServerMessage())
	assert.Contains(t, apiErr.Error(), "Internal Server Error")
}

func TestClient_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := New(url, WithTimeout(time.Second))
	_, err := c.ListProducts(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Zero(t, apiErr.StatusCode())
	assert.NotNil(t, errors.Unwrap(err))
}

func TestClient_SubmitOrderPayload(t *testing.T) {
	srv, calls := newRecordingServer(t, http.StatusOK, `{"id":"o1","userId":"u1","totalAmount":8.97,"status":"pending"}`)
	c := New(srv.URL)

	placed, err := c.SubmitOrder(context.Background(), order.Request{
		BuyerID:     "u1",
		Items:       []order.Item{{ProductID: "p1", Name: "Apples", Quantity: 3, Price: 2.99}},
		TotalAmount: 8.97,
		Status:      order.StatusPending,
	})
	require.NoError(t, err)
	assert.Equal(t, "o1", placed.ID)
	assert.Equal(t, 8.97, placed.TotalAmount)

	body := calls.at(0).body
	assert.Equal(t, "u1", body["userId"])
	assert.Len(t, body["products"], 1)
}

func TestClient_StatusUpdatesEscapeIDs(t *testing.T) {
	srv, calls := newRecordingServer(t, http.StatusOK, `{"id":"a b"}`)
	c := New(srv.URL)

	_, err := c.UpdateOrderStatus(context.Background(), "a b", order.StatusShipped)
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, calls.at(0).method)
	assert.Equal(t, "/orders/a b/status", calls.at(0).path)
	assert.Equal(t, "shipped", calls.at(0).body["status"])
}
