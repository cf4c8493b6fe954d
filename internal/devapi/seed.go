// internal/devapi/seed.go
package devapi

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/agri-oasis/storefront/internal/domain/catalog"
	"github.com/agri-oasis/storefront/internal/domain/order"
	"github.com/agri-oasis/storefront/internal/domain/session"
	"github.com/agri-oasis/storefront/internal/pkg/auth"
)

// Seed accounts. Passwords are for local development only.
const (
	SeedAdminEmail     = "admin@agrioasis.com"
	SeedAdminPassword  = "admin123"
	SeedFarmerEmail    = "john@farm.com"
	SeedFarmerPassword = "farmer123"
	SeedBuyerEmail     = "alice@example.com"
	SeedBuyerPassword  = "user123"
)

type seedAccount struct {
	identity session.Identity
	password string
}

// Seed loads the development data set
func Seed(store *Store, passwords *auth.PasswordManager) error {
	accounts := []seedAccount{
		{
			identity: session.Identity{
				ID: "admin-1", Name: "Admin User", Email: SeedAdminEmail,
				Role: session.RoleAdmin, Status: session.StatusActive, JoinDate: "2023-01-15",
			},
			password: SeedAdminPassword,
		},
		{
			identity: session.Identity{
				ID: "farmer-1", Name: "John Farmer", Email: SeedFarmerEmail,
				Role: session.RoleFarmer, Status: session.StatusActive, JoinDate: "2023-01-15",
			},
			password: SeedFarmerPassword,
		},
		{
			identity: session.Identity{
				ID: "farmer-2", Name: "Maria Green", Email: "maria@greenacres.com",
				Role: session.RoleFarmer, Status: session.StatusPending, JoinDate: "2023-06-02",
			},
			password: SeedFarmerPassword,
		},
		{
			identity: session.Identity{
				ID: "user-1", Name: "Alice Buyer", Email: SeedBuyerEmail,
				Role: session.RoleBuyer, Status: session.StatusActive, JoinDate: "2023-03-10",
			},
			password: SeedBuyerPassword,
		},
	}

	for _, a := range accounts {
		hash, err := passwords.HashPassword(a.password)
		if err != nil {
			return fmt.Errorf("failed to hash seed password: %w", err)
		}
		if _, err := store.CreateAccount(a.identity, hash); err != nil {
			return fmt.Errorf("failed to seed %s: %w", a.identity.Email, err)
		}
	}

	products := []catalog.Product{
		{ID: "p1", Name: "Organic Apples", Description: "Crisp red apples, picked this week", Price: 2.99, Category: "Fruits", Quantity: 120, FarmerID: "farmer-1", FarmerName: "John Farmer", Rating: 4.5, CreatedAt: "2023-09-01"},
		{ID: "p2", Name: "Wildflower Honey", Description: "Raw honey in a 500g jar", Price: 8.50, Category: "Pantry", Quantity: 40, FarmerID: "farmer-1", FarmerName: "John Farmer", Rating: 4.8, CreatedAt: "2023-09-05"},
		{ID: "p3", Name: "Heirloom Tomatoes", Description: "Mixed varieties, 1kg", Price: 4.25, Category: "Vegetables", Quantity: 60, FarmerID: "farmer-2", FarmerName: "Maria Green", Rating: 4.2, CreatedAt: "2023-10-11"},
		{ID: "p4", Name: "Free-range Eggs", Description: "One dozen", Price: 5.00, Category: "Dairy & Eggs", Quantity: 0, FarmerID: "farmer-2", FarmerName: "Maria Green", CreatedAt: "2023-10-12"},
	}
	for _, p := range products {
		store.AddProduct(p)
	}

	store.PlaceOrder(order.Request{
		BuyerID:         "user-1",
		BuyerName:       "Alice Buyer",
		BuyerContact:    SeedBuyerEmail,
		ShippingAddress: "4 Orchard Lane",
		Items: []order.Item{
			{ProductID: "p1", Name: "Organic Apples", Quantity: 10, Price: 2.99},
			{ProductID: "p2", Name: "Wildflower Honey", Quantity: 2, Price: 8.50},
		},
		TotalAmount: 46.90,
		FarmerID:    "farmer-1",
		Status:      order.StatusDelivered,
		CreatedAt:   "2023-11-20T09:15:00Z",
	})
	return nil
}

// Options configures NewSeeded
type Options struct {
	JWTSecret   string
	TokenExpiry time.Duration
	BcryptCost  int
	Seed        bool
}

// NewSeeded builds a server over a fresh store, optionally seeded
func NewSeeded(opts Options, logger *logrus.Entry) (*Server, error) {
	store := NewStore()
	passwords := auth.NewPasswordManager(opts.BcryptCost)
	if opts.Seed {
		if err := Seed(store, passwords); err != nil {
			return nil, err
		}
	}
	jwtManager := auth.NewJWTManager(opts.JWTSecret, "agri-oasis-devapi", opts.TokenExpiry)
	return NewServer(store, jwtManager, passwords, logger), nil
}
