// Package routes maps HTTP paths to handlers.
package routes

import (
	"github.com/gin-gonic/gin"

	"foodorder/internal/authz"
	"foodorder/internal/handlers"
	"foodorder/internal/metrics"
	"foodorder/internal/middleware"
	"foodorder/internal/services"
)

type Services struct {
	Auth          *services.AuthService
	Profiles      *services.ProfileService
	Catalog       *services.CatalogService
	Carts         *services.CartService
	Orders        *services.OrderService
	Ratings       *services.RatingService
	Notifications *services.NotificationService
}

type Options struct {
	JWTSecret   string
	CORSOrigins []string
	// DB backs /health. Nil skips the route.
	DB handlers.Pinger
}

// NewRouter builds the engine with middleware and every route registered.
func NewRouter(svc Services, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(middleware.CORS(opts.CORSOrigins))
	r.Use(middleware.Prometheus())

	Register(r, svc, opts)
	return r
}

func Register(r *gin.Engine, svc Services, opts Options) {
	authenticate := middleware.Authenticate(opts.JWTSecret)
	optionalAuth := middleware.OptionalAuth(opts.JWTSecret)
	require := middleware.RequireCapability

	if opts.DB != nil {
		r.GET("/health", handlers.Health(opts.DB))
	}
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", handlers.Register(svc.Auth))
		authGroup.POST("/login", handlers.Login(svc.Auth))
		authGroup.POST("/refresh", handlers.Refresh(svc.Auth))
		authGroup.POST("/logout", handlers.Logout(svc.Auth))
		authGroup.GET("/me", authenticate, handlers.Me(svc.Auth))
		authGroup.GET("/owners", authenticate, require(authz.ListOwners), handlers.ListOwners(svc.Auth))
	}

	profile := r.Group("/profile", authenticate)
	{
		profile.GET("", handlers.GetProfile(svc.Profiles))
		profile.PUT("", handlers.UpdateProfile(svc.Profiles))
		profile.GET("/addresses", require(authz.ManageAddresses), handlers.ListAddresses(svc.Profiles))
		profile.POST("/addresses", require(authz.ManageAddresses), handlers.AddAddress(svc.Profiles))
		profile.PUT("/addresses/:id", require(authz.ManageAddresses), handlers.UpdateAddress(svc.Profiles))
		profile.DELETE("/addresses/:id", require(authz.ManageAddresses), handlers.DeleteAddress(svc.Profiles))
	}

	r.GET("/restaurants", handlers.ListRestaurants(svc.Catalog))
	r.GET("/restaurants/:id", handlers.GetRestaurant(svc.Catalog))
	r.GET("/restaurants/:id/ratings", handlers.RestaurantRatings(svc.Ratings))
	rating := r.Group("/restaurants/:id", authenticate, require(authz.RateRestaurants))
	{
		rating.POST("/rate", handlers.RateRestaurant(svc.Ratings))
		rating.GET("/my-rating", handlers.MyRating(svc.Ratings))
		rating.DELETE("/my-rating", handlers.DeleteMyRating(svc.Ratings))
	}

	admin := r.Group("/admin", authenticate, require(authz.ManageRestaurants))
	{
		admin.GET("/restaurants", handlers.AdminListRestaurants(svc.Catalog))
		admin.POST("/restaurants", handlers.CreateRestaurant(svc.Catalog))
		admin.POST("/restaurants/assign-owner", handlers.AssignOwner(svc.Catalog))
		admin.PUT("/restaurants/:id", handlers.UpdateRestaurant(svc.Catalog))
		admin.DELETE("/restaurants/:id", handlers.DeleteRestaurant(svc.Catalog))
	}

	owner := r.Group("/owner", authenticate, require(authz.ManageOwnMenu))
	{
		owner.GET("/restaurants", handlers.OwnerRestaurants(svc.Catalog))
		owner.PUT("/restaurants/:id", handlers.UpdateRestaurant(svc.Catalog))
		owner.POST("/restaurants/:id/menu-items", handlers.AddMenuItem(svc.Catalog))
		owner.PUT("/restaurants/:id/menu-items/:itemId", handlers.UpdateMenuItem(svc.Catalog))
		owner.DELETE("/restaurants/:id/menu-items/:itemId", handlers.DeleteMenuItem(svc.Catalog))
	}

	cart := r.Group("/cart", authenticate, require(authz.UseCart))
	{
		cart.GET("", handlers.GetCart(svc.Carts))
		cart.POST("", handlers.GetCart(svc.Carts))
		cart.POST("/add", handlers.AddToCart(svc.Carts))
		cart.POST("/remove", handlers.RemoveFromCart(svc.Carts))
		cart.POST("/clear", handlers.ClearCart(svc.Carts))
	}

	orders := r.Group("/orders")
	{
		orders.POST("/checkout", optionalAuth, handlers.Checkout(svc.Orders))
		orders.GET("", authenticate, handlers.ListOrders(svc.Orders))
		orders.GET("/owner", authenticate, require(authz.ViewOwnerOrders), handlers.OwnerOrders(svc.Orders))
		orders.PATCH("/:id/status", authenticate, require(authz.UpdateOrderStatus), handlers.UpdateOrderStatus(svc.Orders))
		orders.GET("/:id/status", handlers.TrackOrder(svc.Orders))
	}

	notifications := r.Group("/notifications", authenticate)
	{
		notifications.GET("", handlers.ListNotifications(svc.Notifications))
		notifications.GET("/latest", handlers.LatestNotification(svc.Notifications))
		notifications.GET("/unread-count", handlers.UnreadNotificationCount(svc.Notifications))
		notifications.PATCH("/mark-all-read", handlers.MarkAllNotificationsRead(svc.Notifications))
		notifications.PATCH("/:id/read", handlers.MarkNotificationRead(svc.Notifications))
	}
}
