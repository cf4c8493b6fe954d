package session

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agri-oasis/storefront/internal/pkg/auth"
)

type fakeSlots struct {
	mu      sync.Mutex
	data    map[string]string
	failSet string
}

func newFakeSlots() *fakeSlots {
	return &fakeSlots{data: map[string]string{}}
}

func (f *fakeSlots) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *fakeSlots) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if key == f.failSet {
		return errors.New("disk full")
	}
	f.data[key] = value
	return nil
}

func (f *fakeSlots) Remove(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func (f *fakeSlots) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.data)
}

type fakeAuth struct {
	resp  *AuthResponse
	err   error
	calls int
}

func (f *fakeAuth) Login(_ context.Context, _, _ string, _ Role) (*AuthResponse, error) {
	f.calls++
	return f.resp, f.err
}

func (f *fakeAuth) Signup(_ context.Context, _, _, _ string, _ Role) (*AuthResponse, error) {
	f.calls++
	return f.resp, f.err
}

type remoteErr struct {
	status int
	msg    string
}

func (e *remoteErr) Error() string         { return "remote failure" }
func (e *remoteErr) StatusCode() int       { return e.status }
func (e *remoteErr) ServerMessage() string { return e.msg }

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func newTestStore(slots Slots, a Authenticator) *Store {
	return NewStore(slots, a, MustIdentityValidator(), testLogger())
}

func farmerIdentity() Identity {
	return Identity{
		ID:           "f1",
		Name:         "Ana Farmer",
		Email:        "ana@farm.test",
		Role:         RoleFarmer,
		Status:       StatusActive,
		JoinDate:     "2024-03-01",
		SalesTotal:   1200.5,
		ProductCount: 4,
	}
}

func persist(t *testing.T, slots *fakeSlots, identity Identity, token string) {
	t.Helper()
	raw, err := json.Marshal(identity)
	require.NoError(t, err)
	slots.data[SlotUser] = string(raw)
	slots.data[SlotToken] = token
}

func TestStore_RestoreValidSession(t *testing.T) {
	slots := newFakeSlots()
	persist(t, slots, farmerIdentity(), "t1")

	store := newTestStore(slots, &fakeAuth{})
	require.NoError(t, store.Restore(context.Background()))

	sess := store.Current()
	require.NotNil(t, sess)
	assert.Equal(t, farmerIdentity(), sess.Identity)
	assert.Equal(t, "t1", store.Token())
	assert.Equal(t, 2, slots.len())
}

func TestStore_RestoreAbsent(t *testing.T) {
	store := newTestStore(newFakeSlots(), &fakeAuth{})
	require.NoError(t, store.Restore(context.Background()))
	assert.False(t, store.IsAuthenticated())
	assert.Nil(t, store.Current())
}

func TestStore_RestoreCorruptedPurges(t *testing.T) {
	cases := map[string]func(s *fakeSlots){
		"not json": func(s *fakeSlots) {
			s.data[SlotUser] = "{oops"
			s.data[SlotToken] = "t1"
		},
		"unknown role": func(s *fakeSlots) {
			s.data[SlotUser] = `{"id":"1","name":"a","email":"a@b","role":"root","status":"active","joinDate":"x","sales":0,"products":0,"spent":0,"orders":0}`
			s.data[SlotToken] = "t1"
		},
		"counter as string": func(s *fakeSlots) {
			s.data[SlotUser] = `{"id":"1","name":"a","email":"a@b","role":"user","status":"active","joinDate":"x","sales":"5","products":0,"spent":0,"orders":0}`
			s.data[SlotToken] = "t1"
		},
		"empty id": func(s *fakeSlots) {
			s.data[SlotUser] = `{"id":"","name":"a","email":"a@b","role":"user","status":"active","joinDate":"x","sales":0,"products":0,"spent":0,"orders":0}`
			s.data[SlotToken] = "t1"
		},
		"token missing": func(s *fakeSlots) {
			raw, _ := json.Marshal(farmerIdentity())
			s.data[SlotUser] = string(raw)
		},
		"identity missing": func(s *fakeSlots) {
			s.data[SlotToken] = "t1"
		},
		"blank identity": func(s *fakeSlots) {
			s.data[SlotUser] = "   "
			s.data[SlotToken] = "t1"
		},
	}

	for name, seed := range cases {
		t.Run(name, func(t *testing.T) {
			slots := newFakeSlots()
			seed(slots)

			store := newTestStore(slots, &fakeAuth{})
			require.NoError(t, store.Restore(context.Background()))

			assert.False(t, store.IsAuthenticated())
			assert.Equal(t, 0, slots.len(), "persisted entries must be purged")
		})
	}
}

func TestStore_RestoreExpiredJWT(t *testing.T) {
	issued := time.Now().Add(-48 * time.Hour)
	m := auth.NewJWTManager("0123456789abcdef0123456789abcdef", "test", time.Hour)
	token, err := m.GenerateToken("f1", "ana@farm.test", "farmer")
	require.NoError(t, err)

	slots := newFakeSlots()
	persist(t, slots, farmerIdentity(), token)

	store := newTestStore(slots, &fakeAuth{})
	store.now = func() time.Time { return issued.Add(72 * time.Hour) }
	require.NoError(t, store.Restore(context.Background()))

	assert.False(t, store.IsAuthenticated())
	assert.Equal(t, 0, slots.len())
}

func TestStore_LoginSuccessPersists(t *testing.T) {
	slots := newFakeSlots()
	a := &fakeAuth{resp: &AuthResponse{
		Token: "t1",
		User:  json.RawMessage(`{"id":"f1","name":"Ana Farmer","email":"ana@farm.test","role":"farmer","status":"active","joinDate":"2024-03-01","sales":"1200.5","products":4,"password":"$2a$10$hash"}`),
	}}
	store := newTestStore(slots, a)

	require.NoError(t, store.Login(context.Background(), "ana@farm.test", "secret", RoleFarmer))

	sess := store.Current()
	require.NotNil(t, sess)
	assert.Equal(t, RoleFarmer, sess.Role())
	assert.Equal(t, 1200.5, sess.Identity.SalesTotal)
	assert.Equal(t, float64(0), sess.Identity.SpendTotal)
	assert.Equal(t, float64(0), sess.Identity.OrderCount)

	assert.Equal(t, "t1", slots.data[SlotToken])
	assert.NotContains(t, slots.data[SlotUser], "password")

	// a fresh store over the same slots sees the same identity
	reloaded := newTestStore(slots, a)
	require.NoError(t, reloaded.Restore(context.Background()))
	assert.Equal(t, sess.Identity, reloaded.Current().Identity)
}

func TestStore_LoginMalformedResponse(t *testing.T) {
	cases := map[string]*AuthResponse{
		"nil":           nil,
		"missing token": {User: json.RawMessage(`{"id":"f1"}`)},
		"missing user":  {Token: "t1"},
		"null user":     {Token: "t1", User: json.RawMessage(`null`)},
		"bad status":    {Token: "t1", User: json.RawMessage(`{"id":"f1","name":"A","email":"a@b","role":"farmer","status":"banned","joinDate":"x"}`)},
		"user is array": {Token: "t1", User: json.RawMessage(`[1,2]`)},
	}

	for name, resp := range cases {
		t.Run(name, func(t *testing.T) {
			slots := newFakeSlots()
			store := newTestStore(slots, &fakeAuth{resp: resp})

			err := store.Login(context.Background(), "a@b", "pw", RoleFarmer)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidCredentialsResponse)
			assert.False(t, store.IsAuthenticated())
			assert.Equal(t, 0, slots.len())
		})
	}
}

func TestStore_LoginTransportError(t *testing.T) {
	store := newTestStore(newFakeSlots(), &fakeAuth{err: &remoteErr{status: 401, msg: "Invalid password"}})

	err := store.Login(context.Background(), "a@b", "pw", RoleBuyer)
	var authErr *AuthServiceError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "Invalid password", authErr.Message)
	assert.Equal(t, 401, authErr.Status)

	store = newTestStore(newFakeSlots(), &fakeAuth{err: errors.New("connection refused")})
	err = store.Signup(context.Background(), "A", "a@b", "pw", RoleBuyer)
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "Signup failed", authErr.Message)
	assert.Equal(t, 0, authErr.Status)
}

func TestStore_LoginRejectsUnknownRole(t *testing.T) {
	a := &fakeAuth{}
	store := newTestStore(newFakeSlots(), a)

	err := store.Login(context.Background(), "a@b", "pw", Role("buyer"))
	assert.ErrorIs(t, err, ErrInvalidRole)
	assert.Equal(t, 0, a.calls)
}

func TestStore_PersistFailureFallsBackToAnonymous(t *testing.T) {
	slots := newFakeSlots()
	persist(t, slots, farmerIdentity(), "old")
	slots.failSet = SlotToken

	store := newTestStore(slots, &fakeAuth{resp: &AuthResponse{
		Token: "new",
		User:  json.RawMessage(`{"id":"b1","name":"Bo","email":"bo@x","role":"user","status":"active","joinDate":"2025-01-01"}`),
	}})
	require.NoError(t, store.Restore(context.Background()))
	require.True(t, store.IsAuthenticated())

	err := store.Login(context.Background(), "bo@x", "pw", RoleBuyer)
	require.Error(t, err)
	assert.False(t, store.IsAuthenticated())
	assert.Equal(t, 0, slots.len())
}

func TestStore_SignupUsesServerRole(t *testing.T) {
	store := newTestStore(newFakeSlots(), &fakeAuth{resp: &AuthResponse{
		Token: "t2",
		User:  json.RawMessage(`{"id":"a1","name":"Root","email":"root@x","role":"admin","status":"pending","joinDate":"2025-01-01","sales":0,"products":0,"spent":0,"orders":0}`),
	}})

	require.NoError(t, store.Signup(context.Background(), "Root", "root@x", "pw", RoleBuyer))
	assert.Equal(t, RoleAdmin, store.Current().Role())
	assert.Equal(t, StatusPending, store.Current().Identity.Status)
}

func TestStore_Logout(t *testing.T) {
	slots := newFakeSlots()
	persist(t, slots, farmerIdentity(), "t1")
	store := newTestStore(slots, &fakeAuth{})
	require.NoError(t, store.Restore(context.Background()))

	store.Logout(context.Background())
	assert.False(t, store.IsAuthenticated())
	assert.Equal(t, "", store.Token())
	assert.Equal(t, 0, slots.len())

	// idempotent on an anonymous store
	store.Logout(context.Background())
	assert.False(t, store.IsAuthenticated())
}

func TestStore_CurrentIsACopy(t *testing.T) {
	slots := newFakeSlots()
	persist(t, slots, farmerIdentity(), "t1")
	store := newTestStore(slots, &fakeAuth{})
	require.NoError(t, store.Restore(context.Background()))

	sess := store.Current()
	sess.Identity.Role = RoleAdmin
	assert.Equal(t, RoleFarmer, store.Current().Role())
}
