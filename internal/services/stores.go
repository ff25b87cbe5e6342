package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"foodorder/internal/models"
)

// MenuItemLookup finds the restaurant that embeds a menu item.
type MenuItemLookup interface {
	FindMenuItem(ctx context.Context, itemID primitive.ObjectID) (*models.Restaurant, error)
}

type RestaurantFilter struct {
	Location  string
	Cuisine   string
	Available *bool
	OwnerID   *primitive.ObjectID
}

// RestaurantPatch holds the fields to overwrite; nil means unchanged.
type RestaurantPatch struct {
	Name                  *string
	Description           *string
	Location              *models.Location
	CuisineType           *string
	IsAvailable           *bool
	EstimatedDeliveryTime *models.DeliveryWindow
	DeliveryFee           *float64
	MinOrderAmount        *float64
}

type RestaurantStore interface {
	MenuItemLookup
	FindRestaurant(ctx context.Context, id primitive.ObjectID) (*models.Restaurant, error)
	ListRestaurants(ctx context.Context, filter RestaurantFilter) ([]models.Restaurant, error)
	InsertRestaurant(ctx context.Context, r *models.Restaurant) error
	UpdateRestaurant(ctx context.Context, id primitive.ObjectID, patch RestaurantPatch, at time.Time) (*models.Restaurant, error)
	DeleteRestaurant(ctx context.Context, id primitive.ObjectID) error
	SetRestaurantOwner(ctx context.Context, id, ownerID primitive.ObjectID, at time.Time) error
	PushMenuItem(ctx context.Context, restaurantID primitive.ObjectID, item models.MenuItem, at time.Time) error
	SetMenuItem(ctx context.Context, restaurantID primitive.ObjectID, item models.MenuItem, at time.Time) error
	PullMenuItem(ctx context.Context, restaurantID, itemID primitive.ObjectID, at time.Time) error
}

type CartStore interface {
	FindCart(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error)
	SaveCart(ctx context.Context, cart *models.Cart) error
	DeleteCart(ctx context.Context, userID primitive.ObjectID) error
}

// OrderFilter narrows ListOrders. A non-nil empty RestaurantIDs matches nothing.
type OrderFilter struct {
	UserID        *primitive.ObjectID
	RestaurantIDs []primitive.ObjectID
}

type OrderStore interface {
	InsertOrder(ctx context.Context, order *models.Order) error
	FindOrder(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	ListOrders(ctx context.Context, filter OrderFilter) ([]models.Order, error)
	// CompareAndSetStatus returns ErrNoRecord when the order is missing or its
	// status is no longer from.
	CompareAndSetStatus(ctx context.Context, id primitive.ObjectID, from, to models.OrderStatus, at time.Time) error
}

type Page struct {
	Page      int64
	Limit     int64
	SortBy    string
	Ascending bool
}

// RatingStore methods called inside WithTransaction must use the ctx passed
// to fn so they join the transaction.
type RatingStore interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	// TouchRestaurantRatings bumps the restaurant's rating revision so that
	// concurrent rating transactions on one restaurant conflict and serialize.
	TouchRestaurantRatings(ctx context.Context, restaurantID primitive.ObjectID) error
	FindRating(ctx context.Context, restaurantID, userID primitive.ObjectID) (*models.Rating, error)
	InsertRating(ctx context.Context, rating *models.Rating) error
	ReplaceRating(ctx context.Context, rating *models.Rating) error
	DeleteRating(ctx context.Context, id primitive.ObjectID) error
	RatingStats(ctx context.Context, restaurantID primitive.ObjectID) (models.RatingStats, error)
	SetRestaurantRating(ctx context.Context, restaurantID primitive.ObjectID, summary models.RatingSummary) error
	ListRatings(ctx context.Context, restaurantID primitive.ObjectID, page Page) ([]models.Rating, int64, error)
}

type NotificationStore interface {
	InsertNotification(ctx context.Context, n *models.Notification) error
	ListNotifications(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.Notification, error)
	LatestNotification(ctx context.Context, userID primitive.ObjectID) (*models.Notification, error)
	CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error)
	MarkNotificationRead(ctx context.Context, id, userID primitive.ObjectID, at time.Time) error
	MarkAllNotificationsRead(ctx context.Context, userID primitive.ObjectID, at time.Time) (int64, error)
}

// ProfilePatch holds profile fields to overwrite. An empty Phone or Email
// removes it.
type ProfilePatch struct {
	Name              *string
	Phone             *string
	Email             *string
	PreferredLanguage *string
}

type UserStore interface {
	FindUser(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindUserByIdentifier(ctx context.Context, identifier string) (*models.User, error)
	IdentityTaken(ctx context.Context, phone, email string, exclude primitive.ObjectID) (bool, error)
	InsertUser(ctx context.Context, user *models.User) error
	UpdateUserProfile(ctx context.Context, id primitive.ObjectID, patch ProfilePatch, at time.Time) (*models.User, error)
	SetAddresses(ctx context.Context, id primitive.ObjectID, addresses []models.Address, at time.Time) error
	ListUsersByRole(ctx context.Context, role models.Role) ([]models.User, error)
}

type RefreshTokenStore interface {
	InsertRefreshToken(ctx context.Context, token *models.RefreshToken) error
	FindActiveRefreshToken(ctx context.Context, hash string) (*models.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, id primitive.ObjectID, replacedBy *primitive.ObjectID) error
	RevokeRefreshTokenByHash(ctx context.Context, hash string) error
}
