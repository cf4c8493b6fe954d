// internal/infrastructure/marketapi/endpoints.go
package marketapi

import (
	"context"
	"net/http"
	"net/url"

	"github.com/agri-oasis/storefront/internal/domain/analytics"
	"github.com/agri-oasis/storefront/internal/domain/catalog"
	"github.com/agri-oasis/storefront/internal/domain/order"
	"github.com/agri-oasis/storefront/internal/domain/session"
)

type loginRequest struct {
	Email    string       `json:"email"`
	Password string       `json:"password"`
	Role     session.Role `json:"role"`
}

type signupRequest struct {
	Name     string       `json:"name"`
	Email    string       `json:"email"`
	Password string       `json:"password"`
	Role     session.Role `json:"role"`
}

type statusRequest struct {
	Status string `json:"status"`
}

// Login calls POST /auth/login
func (c *Client) Login(ctx context.Context, email, password string, role session.Role) (*session.AuthResponse, error) {
	var out session.AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", loginRequest{Email: email, Password: password, Role: role}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Signup calls POST /auth/signup
func (c *Client) Signup(ctx context.Context, name, email, password string, role session.Role) (*session.AuthResponse, error) {
	var out session.AuthResponse
	body := signupRequest{Name: name, Email: email, Password: password, Role: role}
	if err := c.do(ctx, http.MethodPost, "/auth/signup", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListProducts calls GET /products
func (c *Client) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	var out []catalog.Product
	err := c.do(ctx, http.MethodGet, "/products", nil, &out)
	return out, err
}

// CreateProduct calls POST /products
func (c *Client) CreateProduct(ctx context.Context, p catalog.Product) (*catalog.Product, error) {
	var out catalog.Product
	if err := c.do(ctx, http.MethodPost, "/products", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProduct calls PUT /products/{id}
func (c *Client) UpdateProduct(ctx context.Context, id string, p catalog.Product) (*catalog.Product, error) {
	var out catalog.Product
	if err := c.do(ctx, http.MethodPut, "/products/"+url.PathEscape(id), p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteProduct calls DELETE /products/{id}
func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/products/"+url.PathEscape(id), nil, nil)
}

// SubmitOrder calls POST /orders
func (c *Client) SubmitOrder(ctx context.Context, req order.Request) (*order.Order, error) {
	var out order.Order
	if err := c.do(ctx, http.MethodPost, "/orders", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListOrders calls GET /orders
func (c *Client) ListOrders(ctx context.Context) ([]order.Order, error) {
	var out []order.Order
	err := c.do(ctx, http.MethodGet, "/orders", nil, &out)
	return out, err
}

// OrdersByBuyer calls GET /orders/user/{id}
func (c *Client) OrdersByBuyer(ctx context.Context, buyerID string) ([]order.Order, error) {
	var out []order.Order
	err := c.do(ctx, http.MethodGet, "/orders/user/"+url.PathEscape(buyerID), nil, &out)
	return out, err
}

// OrdersByFarmer calls GET /orders/farmer/{id}
func (c *Client) OrdersByFarmer(ctx context.Context, farmerID string) ([]order.Order, error) {
	var out []order.Order
	err := c.do(ctx, http.MethodGet, "/orders/farmer/"+url.PathEscape(farmerID), nil, &out)
	return out, err
}

// UpdateOrderStatus calls PUT /orders/{id}/status
func (c *Client) UpdateOrderStatus(ctx context.Context, orderID string, status order.Status) (*order.Order, error) {
	var out order.Order
	path := "/orders/" + url.PathEscape(orderID) + "/status"
	if err := c.do(ctx, http.MethodPut, path, statusRequest{Status: string(status)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MonthlySales calls GET /farmer/analytics/sales/monthly/{id}
func (c *Client) MonthlySales(ctx context.Context, farmerID string) ([]analytics.MonthlySales, error) {
	var out []analytics.MonthlySales
	err := c.do(ctx, http.MethodGet, "/farmer/analytics/sales/monthly/"+url.PathEscape(farmerID), nil, &out)
	return out, err
}

// ProductSales calls GET /farmer/analytics/sales/product/{id}
func (c *Client) ProductSales(ctx context.Context, farmerID string) ([]analytics.ProductSales, error) {
	var out []analytics.ProductSales
	err := c.do(ctx, http.MethodGet, "/farmer/analytics/sales/product/"+url.PathEscape(farmerID), nil, &out)
	return out, err
}

// ListFarmers calls GET /admin/farmers
func (c *Client) ListFarmers(ctx context.Context) ([]session.Identity, error) {
	var out []session.Identity
	err := c.do(ctx, http.MethodGet, "/admin/farmers", nil, &out)
	return out, err
}

// ListUsers calls GET /admin/users
func (c *Client) ListUsers(ctx context.Context) ([]session.Identity, error) {
	var out []session.Identity
	err := c.do(ctx, http.MethodGet, "/admin/users", nil, &out)
	return out, err
}

// UpdateUserStatus calls PUT /admin/users/{id}/status
func (c *Client) UpdateUserStatus(ctx context.Context, userID string, status session.AccountStatus) (*session.Identity, error) {
	var out session.Identity
	path := "/admin/users/" + url.PathEscape(userID) + "/status"
	if err := c.do(ctx, http.MethodPut, path, statusRequest{Status: string(status)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
