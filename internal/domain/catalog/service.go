// internal/domain/catalog/service.go
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrProductNotFound is returned when no listed product has the id
var ErrProductNotFound = errors.New("product not found")

// ProductLister fetches the full product listing
type ProductLister interface {
	ListProducts(ctx context.Context) ([]Product, error)
}

// Service serves the product listing from a short-lived cache
type Service struct {
	lister ProductLister
	ttl    time.Duration
	logger *logrus.Entry
	now    func() time.Time

	mu        sync.Mutex
	products  []Product
	fetchedAt time.Time
}

// NewService creates a catalog service. A zero ttl disables caching.
func NewService(lister ProductLister, ttl time.Duration, logger *logrus.Entry) *Service {
	return &Service{
		lister: lister,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// List returns all products
func (s *Service) List(ctx context.Context) ([]Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.products != nil && s.ttl > 0 && s.now().Sub(s.fetchedAt) < s.ttl {
		return s.copyProducts(), nil
	}

	products, err := s.lister.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	if products == nil {
		products = []Product{}
	}

	s.products = products
	s.fetchedAt = s.now()
	s.logger.WithField("count", len(products)).Debug("Product listing refreshed")

	return s.copyProducts(), nil
}

// Find resolves a product by id
func (s *Service) Find(ctx context.Context, id string) (Product, error) {
	products, err := s.List(ctx)
	if err != nil {
		return Product{}, err
	}
	for _, p := range products {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, fmt.Errorf("%w: %s", ErrProductNotFound, id)
}

// ByFarmer returns the products listed by farmerID
func (s *Service) ByFarmer(ctx context.Context, farmerID string) ([]Product, error) {
	products, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Product, 0)
	for _, p := range products {
		if p.FarmerID == farmerID {
			out = append(out, p)
		}
	}
	return out, nil
}

// Invalidate drops the cached listing
func (s *Service) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = nil
}

func (s *Service) copyProducts() []Product {
	out := make([]Product, len(s.products))
	copy(out, s.products)
	return out
}
