// Package devapi is an in-memory implementation of the marketplace REST API.
// It backs local development and the integration tests of the API client.
package devapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/agri-oasis/storefront/internal/domain/analytics"
	"github.com/agri-oasis/storefront/internal/domain/catalog"
	"github.com/agri-oasis/storefront/internal/domain/order"
	"github.com/agri-oasis/storefront/internal/domain/session"
	"github.com/agri-oasis/storefront/internal/pkg/auth"
)

// Server serves the marketplace API under /api
type Server struct {
	store     *Store
	jwt       *auth.JWTManager
	passwords *auth.PasswordManager
	logger    *logrus.Entry
	now       func() time.Time
}

// NewServer creates a server over store
func NewServer(store *Store, jwt *auth.JWTManager, passwords *auth.PasswordManager, logger *logrus.Entry) *Server {
	return &Server{
		store:     store,
		jwt:       jwt,
		passwords: passwords,
		logger:    logger,
		now:       time.Now,
	}
}

// Router builds the gin engine
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	api := router.Group("/api")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", s.login)
		authGroup.POST("/signup", s.signup)
	}

	api.GET("/products", s.listProducts)

	secured := api.Group("")
	secured.Use(s.bearerAuth())

	products := secured.Group("/products")
	{
		products.POST("", requireRole(session.RoleFarmer), s.createProduct)
		products.PUT("/:id", requireRole(session.RoleFarmer), s.updateProduct)
		products.DELETE("/:id", requireRole(session.RoleFarmer, session.RoleAdmin), s.deleteProduct)
	}

	orders := secured.Group("/orders")
	{
		orders.POST("", requireRole(session.RoleBuyer, session.RoleAdmin), s.createOrder)
		orders.GET("", requireRole(session.RoleBuyer, session.RoleFarmer, session.RoleAdmin), s.listOrders)
		orders.GET("/user/:id", requireRole(session.RoleBuyer, session.RoleAdmin), s.ordersByBuyer)
		orders.GET("/farmer/:id", requireRole(session.RoleFarmer, session.RoleAdmin), s.ordersByFarmer)
		orders.PUT("/:id/status", requireRole(session.RoleFarmer, session.RoleAdmin), s.updateOrderStatus)
	}

	farmer := secured.Group("/farmer/analytics")
	farmer.Use(requireRole(session.RoleFarmer, session.RoleAdmin))
	{
		farmer.GET("/sales/monthly/:id", s.monthlySales)
		farmer.GET("/sales/product/:id", s.productSales)
	}

	admin := secured.Group("/admin")
	admin.Use(requireRole(session.RoleAdmin))
	{
		admin.GET("/farmers", s.listFarmers)
		admin.GET("/users", s.listUsers)
		admin.PUT("/users/:id/status", s.updateUserStatus)
	}

	return router
}

type credentials struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (s *Server) login(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request data"})
		return
	}

	token, identity, err := s.authenticate(req.Email, req.Password, req.Role)
	if err != nil {
		s.logger.WithError(err).WithField("email", req.Email).Warn("Login failed")
		c.JSON(http.StatusUnauthorized, gin.H{"message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": identity})
}

func (s *Server) signup(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request data"})
		return
	}

	role := session.Role(strings.ToLower(req.Role))
	switch {
	case strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "":
		c.JSON(http.StatusBadRequest, gin.H{"message": "Name and email are required"})
		return
	case !role.Valid():
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid role"})
		return
	}
	if err := s.passwords.ValidatePassword(req.Password); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	hash, err := s.passwords.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Signup failed"})
		return
	}

	identity, err := s.store.CreateAccount(session.Identity{
		Name:     strings.TrimSpace(req.Name),
		Email:    strings.TrimSpace(req.Email),
		Role:     role,
		Status:   session.StatusActive,
		JoinDate: s.now().Format("2006-01-02"),
	}, hash)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	token, err := s.jwt.GenerateToken(identity.ID, identity.Email, string(identity.Role))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Signup failed"})
		return
	}

	s.logger.WithFields(logrus.Fields{"email": identity.Email, "role": identity.Role}).Info("Account created")
	c.JSON(http.StatusOK, gin.H{"token": token, "user": identity})
}

func (s *Server) authenticate(email, password, role string) (string, session.Identity, error) {
	identity, hash, err := s.store.AccountByEmail(email)
	if err != nil {
		return "", session.Identity{}, err
	}
	if !strings.EqualFold(string(identity.Role), role) {
		return "", session.Identity{}, errors.New("Invalid role")
	}
	if err := s.passwords.VerifyPassword(password, hash); err != nil {
		return "", session.Identity{}, errors.New("Invalid password")
	}

	token, err := s.jwt.GenerateToken(identity.ID, identity.Email, string(identity.Role))
	if err != nil {
		return "", session.Identity{}, err
	}
	return token, identity, nil
}

func (s *Server) listProducts(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.Products())
}

func (s *Server) createProduct(c *gin.Context) {
	var p catalog.Product
	if err := c.ShouldBindJSON(&p); err != nil || strings.TrimSpace(p.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request data"})
		return
	}

	p.ID = ""
	p.FarmerID = claimsFrom(c).UserID
	p.Status = "pending"
	created := s.store.AddProduct(p)
	s.logger.WithFields(logrus.Fields{"product_id": created.ID, "farmer_id": created.FarmerID}).Info("Product added")
	c.JSON(http.StatusOK, created)
}

func (s *Server) updateProduct(c *gin.Context) {
	var p catalog.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request data"})
		return
	}
	if !s.ownsProduct(c, c.Param("id")) {
		return
	}

	updated, err := s.store.UpdateProduct(c.Param("id"), p)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) deleteProduct(c *gin.Context) {
	if !s.ownsProduct(c, c.Param("id")) {
		return
	}
	if err := s.store.DeleteProduct(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
		return
	}
	s.logger.WithField("product_id", c.Param("id")).Info("Product deleted")
	c.Status(http.StatusOK)
}

// ownsProduct writes a 404 or 403 unless the product exists and the caller
// listed it or is an admin
func (s *Server) ownsProduct(c *gin.Context, id string) bool {
	p, err := s.store.ProductByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
		return false
	}
	return s.ownsOrAdmin(c, p.FarmerID)
}

func (s *Server) createOrder(c *gin.Context) {
	var req order.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request data"})
		return
	}
	if len(req.Items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Order has no products"})
		return
	}
	if strings.TrimSpace(req.ShippingAddress) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Shipping address is required"})
		return
	}
	if req.Status == "" {
		req.Status = order.StatusPending
	}
	if !req.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid status"})
		return
	}

	placed := s.store.PlaceOrder(req)
	s.logger.WithFields(logrus.Fields{"order_id": placed.ID, "total": placed.TotalAmount}).Info("Order placed")
	c.JSON(http.StatusOK, placed)
}

func (s *Server) listOrders(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.Orders(nil))
}

func (s *Server) ordersByBuyer(c *gin.Context) {
	id := c.Param("id")
	if !s.ownsOrAdmin(c, id) {
		return
	}
	c.JSON(http.StatusOK, s.store.Orders(func(o order.Order) bool { return o.BuyerID == id }))
}

func (s *Server) ordersByFarmer(c *gin.Context) {
	id := c.Param("id")
	if !s.ownsOrAdmin(c, id) {
		return
	}
	c.JSON(http.StatusOK, s.farmerOrders(id))
}

func (s *Server) updateOrderStatus(c *gin.Context) {
	var req order.StatusUpdate
	if err := c.ShouldBindJSON(&req); err != nil || !req.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid status"})
		return
	}

	updated, err := s.store.SetOrderStatus(c.Param("id"), req.Status)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) monthlySales(c *gin.Context) {
	id := c.Param("id")
	if !s.ownsOrAdmin(c, id) {
		return
	}
	c.JSON(http.StatusOK, analytics.MonthlySalesFor(s.farmerOrders(id), s.now()))
}

func (s *Server) productSales(c *gin.Context) {
	id := c.Param("id")
	if !s.ownsOrAdmin(c, id) {
		return
	}
	c.JSON(http.StatusOK, analytics.ProductSalesFor(s.farmerOrders(id)))
}

func (s *Server) listFarmers(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.Farmers())
}

func (s *Server) listUsers(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.Users())
}

func (s *Server) updateUserStatus(c *gin.Context) {
	var req struct {
		Status session.AccountStatus `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || !req.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid status"})
		return
	}

	updated, err := s.store.SetAccountStatus(c.Param("id"), req.Status)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
		return
	}
	s.logger.WithFields(logrus.Fields{"user_id": updated.ID, "status": updated.Status}).Info("User status updated")
	c.JSON(http.StatusOK, updated)
}

func (s *Server) farmerOrders(farmerID string) []order.Order {
	return s.store.Orders(func(o order.Order) bool { return o.FarmerID == farmerID })
}

// ownsOrAdmin writes a 403 unless the caller is id or an admin
func (s *Server) ownsOrAdmin(c *gin.Context, id string) bool {
	claims := claimsFrom(c)
	if claims != nil && (claims.Role == string(session.RoleAdmin) || claims.UserID == id) {
		return true
	}
	c.JSON(http.StatusForbidden, gin.H{"message": "Access denied"})
	return false
}
