// internal/interfaces/http/routes/routes.go
package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/agri-oasis/storefront/internal/config"
	"github.com/agri-oasis/storefront/internal/domain/catalog"
	"github.com/agri-oasis/storefront/internal/domain/guard"
	"github.com/agri-oasis/storefront/internal/domain/session"
	"github.com/agri-oasis/storefront/internal/interfaces/http/handlers"
	"github.com/agri-oasis/storefront/internal/interfaces/http/middleware"
	"github.com/agri-oasis/storefront/internal/pkg/logger"
	"github.com/agri-oasis/storefront/internal/pkg/pdf"
)

// Dependencies are the services shared by all routes
type Dependencies struct {
	Config     *config.Config
	Workspaces middleware.WorkspaceProvider
	Catalog    *catalog.Service
	Receipts   *pdf.Service
	Logger     *logrus.Logger
}

// SetupRoutes registers every client-facing route on rg. All of them run
// with the client workspace loaded.
func SetupRoutes(rg *gin.RouterGroup, deps Dependencies) {
	rg.Use(middleware.ClientWorkspace(deps.Workspaces, deps.Config.Session, logger.Component(deps.Logger, "workspace")))

	SetupAuthRoutes(rg, deps)
	SetupFarmerRoutes(rg, deps)
	SetupAdminRoutes(rg, deps)
	SetupBuyerRoutes(rg, deps)
}

// SetupAuthRoutes sets up the public authentication routes
func SetupAuthRoutes(rg *gin.RouterGroup, deps Dependencies) {
	authHandler := handlers.NewAuthHandler(logger.Component(deps.Logger, "auth"))

	rg.GET(guard.LoginPath, authHandler.LoginView)

	auth := rg.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/logout", authHandler.Logout)
		auth.GET("/session", authHandler.Session)
	}
}

// SetupFarmerRoutes sets up the farmer views
func SetupFarmerRoutes(rg *gin.RouterGroup, deps Dependencies) {
	farmerHandler := handlers.NewFarmerHandler(deps.Catalog, logger.Component(deps.Logger, "farmer"))

	farmer := rg.Group("/farmer")
	farmer.Use(middleware.RequireRole(session.RoleFarmer))
	{
		farmer.GET("", redirectHome(session.RoleFarmer))
		farmer.GET("/dashboard", farmerHandler.Dashboard)
		farmer.GET("/products", farmerHandler.Products)
		farmer.POST("/products", farmerHandler.CreateProduct)
		farmer.PUT("/products/:id", farmerHandler.UpdateProduct)
		farmer.DELETE("/products/:id", farmerHandler.DeleteProduct)
		farmer.GET("/orders", farmerHandler.Orders)
		farmer.PUT("/orders/:id/status", farmerHandler.UpdateOrderStatus)
		farmer.GET("/analytics", farmerHandler.Analytics)
	}
}

// SetupAdminRoutes sets up the admin views
func SetupAdminRoutes(rg *gin.RouterGroup, deps Dependencies) {
	adminHandler := handlers.NewAdminHandler(deps.Catalog, logger.Component(deps.Logger, "admin"))

	admin := rg.Group("/admin")
	admin.Use(middleware.RequireRole(session.RoleAdmin))
	{
		admin.GET("", redirectHome(session.RoleAdmin))
		admin.GET("/dashboard", adminHandler.Dashboard)
		admin.GET("/farmers", adminHandler.Farmers)
		admin.GET("/users", adminHandler.Users)
		admin.PUT("/users/:id/status", adminHandler.UpdateUserStatus)
		admin.GET("/products", adminHandler.Products)
	}
}

// SetupBuyerRoutes sets up the buyer views, cart and checkout
func SetupBuyerRoutes(rg *gin.RouterGroup, deps Dependencies) {
	buyerLogger := logger.Component(deps.Logger, "buyer")
	buyerHandler := handlers.NewBuyerHandler(deps.Catalog, deps.Receipts, buyerLogger)
	cartHandler := handlers.NewCartHandler(deps.Catalog, logger.Component(deps.Logger, "checkout"))

	user := rg.Group("/user")
	user.Use(middleware.RequireRole(session.RoleBuyer))
	{
		user.GET("", redirectHome(session.RoleBuyer))
		user.GET("/dashboard", buyerHandler.Dashboard)
		user.GET("/products", buyerHandler.Products)
		user.GET("/orders", buyerHandler.Orders)
		user.GET("/orders/:id/receipt", buyerHandler.Receipt)

		cart := user.Group("/cart")
		{
			cart.GET("", cartHandler.GetCart)
			cart.DELETE("", cartHandler.Clear)
			cart.POST("/items", cartHandler.AddItem)
			cart.PUT("/items/:id", cartHandler.UpdateItem)
			cart.DELETE("/items/:id", cartHandler.RemoveItem)
			cart.PUT("/shipping", cartHandler.SetShipping)
		}

		user.POST("/checkout", cartHandler.Checkout)
	}
}

// redirectHome sends the bare role prefix to the role's dashboard
func redirectHome(role session.Role) gin.HandlerFunc {
	home := guard.HomeFor(role)
	return func(c *gin.Context) {
		c.Redirect(http.StatusFound, home)
	}
}
