// internal/devapi/store.go
package devapi

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/agri-oasis/storefront/internal/domain/catalog"
	"github.com/agri-oasis/storefront/internal/domain/order"
	"github.com/agri-oasis/storefront/internal/domain/session"
)

var (
	ErrEmailExists     = errors.New("Email already exists")
	ErrUserNotFound    = errors.New("User not found")
	ErrOrderNotFound   = errors.New("Order not found")
	ErrProductNotFound = errors.New("Product not found")
)

// account is a user record with its password hash
type account struct {
	session.Identity
	PasswordHash string
}

// Store is the in-memory database of the development API
type Store struct {
	mu       sync.RWMutex
	accounts map[string]*account // by id
	byEmail  map[string]string   // lower-case email -> id
	products []catalog.Product
	orders   []order.Order
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		accounts: make(map[string]*account),
		byEmail:  make(map[string]string),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateAccount inserts a new account. The id is generated when empty.
func (s *Store) CreateAccount(identity session.Identity, passwordHash string) (session.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := normalizeEmail(identity.Email)
	if _, ok := s.byEmail[key]; ok {
		return session.Identity{}, ErrEmailExists
	}
	if identity.ID == "" {
		identity.ID = uuid.NewString()
	}

	s.accounts[identity.ID] = &account{Identity: identity, PasswordHash: passwordHash}
	s.byEmail[key] = identity.ID
	return identity, nil
}

// AccountByEmail returns the account and its password hash
func (s *Store) AccountByEmail(email string) (session.Identity, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[normalizeEmail(email)]
	if !ok {
		return session.Identity{}, "", ErrUserNotFound
	}
	acc := s.accounts[id]
	return acc.Identity, acc.PasswordHash, nil
}

// Users returns all identities ordered by join date then name
func (s *Store) Users() []session.Identity {
	return s.identities(func(session.Identity) bool { return true })
}

// Farmers returns the farmer identities
func (s *Store) Farmers() []session.Identity {
	return s.identities(func(i session.Identity) bool { return i.Role == session.RoleFarmer })
}

func (s *Store) identities(keep func(session.Identity) bool) []session.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]session.Identity, 0, len(s.accounts))
	for _, acc := range s.accounts {
		if keep(acc.Identity) {
			out = append(out, acc.Identity)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].JoinDate != out[j].JoinDate {
			return out[i].JoinDate < out[j].JoinDate
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// SetAccountStatus changes the moderation status of a user
func (s *Store) SetAccountStatus(id string, status session.AccountStatus) (session.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[id]
	if !ok {
		return session.Identity{}, ErrUserNotFound
	}
	acc.Status = status
	return acc.Identity, nil
}

// AddProduct appends a product to the listing
func (s *Store) AddProduct(p catalog.Product) catalog.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	s.products = append(s.products, p)
	if acc, ok := s.accounts[p.FarmerID]; ok {
		acc.ProductCount++
	}
	return p
}

// ProductByID returns a listed product
func (s *Store) ProductByID(id string) (catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.productIndex(id); i >= 0 {
		return s.products[i], nil
	}
	return catalog.Product{}, ErrProductNotFound
}

// UpdateProduct replaces a listed product, keeping its id, owner and
// moderation status
func (s *Store) UpdateProduct(id string, p catalog.Product) (catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.productIndex(id)
	if i < 0 {
		return catalog.Product{}, ErrProductNotFound
	}
	existing := s.products[i]
	p.ID = existing.ID
	p.FarmerID = existing.FarmerID
	p.Status = existing.Status
	s.products[i] = p
	return p, nil
}

// DeleteProduct removes a product from the listing
func (s *Store) DeleteProduct(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.productIndex(id)
	if i < 0 {
		return ErrProductNotFound
	}
	if acc, ok := s.accounts[s.products[i].FarmerID]; ok && acc.ProductCount > 0 {
		acc.ProductCount--
	}
	s.products = append(s.products[:i], s.products[i+1:]...)
	return nil
}

func (s *Store) productIndex(id string) int {
	for i := range s.products {
		if s.products[i].ID == id {
			return i
		}
	}
	return -1
}

// Products returns the listing
func (s *Store) Products() []catalog.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]catalog.Product, len(s.products))
	copy(out, s.products)
	return out
}

// PlaceOrder stores a new order and updates buyer and farmer counters
func (s *Store) PlaceOrder(req order.Request) order.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	o := order.Order{ID: uuid.NewString(), Request: req}
	s.orders = append(s.orders, o)

	if buyer, ok := s.accounts[req.BuyerID]; ok {
		buyer.SpendTotal += req.TotalAmount
		buyer.OrderCount++
	}
	if farmer, ok := s.accounts[req.FarmerID]; ok {
		farmer.SalesTotal += req.TotalAmount
	}
	return o
}

// Orders returns the orders matching keep, oldest first
func (s *Store) Orders(keep func(order.Order) bool) []order.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]order.Order, 0)
	for _, o := range s.orders {
		if keep == nil || keep(o) {
			out = append(out, o)
		}
	}
	return out
}

// SetOrderStatus changes the status of an order
func (s *Store) SetOrderStatus(id string, status order.Status) (order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.orders {
		if s.orders[i].ID == id {
			s.orders[i].Status = status
			return s.orders[i], nil
		}
	}
	return order.Order{}, ErrOrderNotFound
}
