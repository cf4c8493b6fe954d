package catalog

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingLister struct {
	calls    int
	products []Product
	err      error
}

func (l *countingLister) ListProducts(context.Context) ([]Product, error) {
	l.calls++
	return l.products, l.err
}

func newTestService(l ProductLister, ttl time.Duration) (*Service, *time.Time) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewService(l, ttl, logrus.NewEntry(logger))
	s.now = func() time.Time { return clock }
	return s, &clock
}

func TestService_CachesWithinTTL(t *testing.T) {
	l := &countingLister{products: []Product{{ID: "p1", FarmerID: "f1"}, {ID: "p2", FarmerID: "f2"}}}
	s, clock := newTestService(l, time.Minute)

	_, err := s.List(context.Background())
	require.NoError(t, err)
	_, err = s.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, l.calls)

	*clock = clock.Add(2 * time.Minute)
	_, err = s.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, l.calls)

	s.Invalidate()
	_, err = s.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, l.calls)
}

func TestService_Find(t *testing.T) {
	l := &countingLister{products: []Product{{ID: "p1", Name: "Apples"}}}
	s, _ := newTestService(l, time.Minute)

	p, err := s.Find(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "Apples", p.Name)

	_, err = s.Find(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestService_ByFarmer(t *testing.T) {
	l := &countingLister{products: []Product{{ID: "p1", FarmerID: "f1"}, {ID: "p2", FarmerID: "f2"}}}
	s, _ := newTestService(l, 0)

	out, err := s.ByFarmer(context.Background(), "f2")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "p2", out[0].ID)
}

func TestService_ListerError(t *testing.T) {
	boom := errors.New("boom")
	s, _ := newTestService(&countingLister{err: boom}, time.Minute)

	_, err := s.List(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestService_ReturnsCopies(t *testing.T) {
	l := &countingLister{products: []Product{{ID: "p1", Name: "Apples"}}}
	s, _ := newTestService(l, time.Minute)

	out, _ := s.List(context.Background())
	out[0].Name = "changed"
	again, _ := s.List(context.Background())
	assert.Equal(t, "Apples", again[0].Name)
}
