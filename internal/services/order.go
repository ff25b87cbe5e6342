package services

import (
	"context"
	"errors"
	"log"
	"math"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"foodorder/internal/authz"
	"foodorder/internal/models"
)

// OrderNotifier receives order events. Failures are logged by the caller and
// never fail the order operation.
type OrderNotifier interface {
	NotifyOrder(ctx context.Context, order *models.Order, userID primitive.ObjectID, kind models.NotificationType) error
}

type CheckoutRequest struct {
	CustomerName  string
	CustomerPhone string
	CustomerEmail string
	Items         []models.OrderItem
	DeliveryFee   float64
	Total         float64
	PaymentMethod models.PaymentMethod
}

// OrderTracking is the time-based status shown to polling clients.
type OrderTracking struct {
	OrderID        string    `json:"orderId"`
	Status         string    `json:"status"`
	ElapsedMinutes int       `json:"elapsedMinutes"`
	CreatedAt      time.Time `json:"createdAt"`
}

type OrderService struct {
	orders      OrderStore
	restaurants RestaurantStore
	notifier    OrderNotifier
	now         func() time.Time
	// dispatch runs notification work off the request path.
	dispatch      func(func())
	notifyTimeout time.Duration
}

func NewOrderService(orders OrderStore, restaurants RestaurantStore, notifier OrderNotifier) *OrderService {
	return &OrderService{
		orders:        orders,
		restaurants:   restaurants,
		notifier:      notifier,
		now:           time.Now,
		dispatch:      func(f func()) { go f() },
		notifyTimeout: 5 * time.Second,
	}
}

// Checkout records the submitted cart snapshot as a Pending order. Prices and
// stock are not re-read from the catalog and the cart is not cleared.
func (s *OrderService) Checkout(ctx context.Context, p *models.Principal, req CheckoutRequest) (*models.Order, error) {
	if p != nil && !authz.Can(p, authz.Checkout) {
		return nil, forbidden("Access denied. Customers only.")
	}

	req.CustomerName = strings.TrimSpace(req.CustomerName)
	req.CustomerPhone = strings.TrimSpace(req.CustomerPhone)
	req.CustomerEmail = strings.TrimSpace(req.CustomerEmail)

	missing := make([]string, 0)
	if req.CustomerName == "" {
		missing = append(missing, "customerName")
	}
	if req.CustomerPhone == "" {
		missing = append(missing, "customerPhone")
	}
	if req.Total == 0 {
		missing = append(missing, "total")
	}
	if req.PaymentMethod == "" {
		missing = append(missing, "paymentMethod")
	}
	if len(missing) > 0 {
		return nil, validationError("missing required fields", missing...)
	}
	if !req.PaymentMethod.Valid() {
		return nil, validationError("invalid payment method", "paymentMethod")
	}
	if req.Total < 0 || req.DeliveryFee < 0 || math.IsNaN(req.Total) {
		return nil, validationError("total and deliveryFee must not be negative", "total")
	}

	items := make([]models.OrderItem, 0, len(req.Items))
	restaurantIDs := make([]primitive.ObjectID, 0)
	seen := map[primitive.ObjectID]struct{}{}
	for _, item := range req.Items {
		if item.MenuItemID.IsZero() {
			return nil, validationError("menuItem is required for every item", "items")
		}
		if item.Quantity == 0 {
			item.Quantity = 1
		}
		if item.Quantity < 0 || item.Price < 0 {
			return nil, validationError("item price and quantity must not be negative", "items")
		}
		item.Name = strings.TrimSpace(item.Name)
		items = append(items, item)

		if item.RestaurantID.IsZero() {
			continue
		}
		if _, ok := seen[item.RestaurantID]; !ok {
			seen[item.RestaurantID] = struct{}{}
			restaurantIDs = append(restaurantIDs, item.RestaurantID)
		}
	}

	now := s.now()
	order := &models.Order{
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		CustomerEmail: req.CustomerEmail,
		Items:         items,
		DeliveryFee:   req.DeliveryFee,
		Total:         req.Total,
		PaymentMethod: req.PaymentMethod,
		Status:        models.StatusPending,
		RestaurantIDs: restaurantIDs,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if p != nil {
		userID := p.ID
		order.UserID = &userID
	}

	if err := s.orders.InsertOrder(ctx, order); err != nil {
		return nil, internal("Internal server error", err)
	}

	if order.UserID != nil {
		s.notify(order, *order.UserID, models.NotificationOrderConfirmed)
	}
	return order, nil
}

func (s *OrderService) notify(order *models.Order, userID primitive.ObjectID, kind models.NotificationType) {
	if s.notifier == nil {
		return
	}
	snapshot := *order
	s.dispatch(func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.notifyTimeout)
		defer cancel()
		if err := s.notifier.NotifyOrder(ctx, &snapshot, userID, kind); err != nil {
			log.Printf("[ORDER] [ERROR] notification %s for order %s failed: %v", kind, snapshot.ID.Hex(), err)
		}
	})
}

// UpdateStatus moves an order along the state machine on behalf of an admin
// or an owner of one of the order's restaurants.
func (s *OrderService) UpdateStatus(ctx context.Context, p *models.Principal, orderID primitive.ObjectID, status models.OrderStatus) (*models.Order, error) {
	if p == nil {
		return nil, unauthenticated("Access denied. No token provided.")
	}
	if !status.Valid() {
		return nil, validationError("invalid status", "status")
	}

	order, err := s.orders.FindOrder(ctx, orderID)
	if errors.Is(err, ErrNoRecord) {
		return nil, notFound("Order not found")
	}
	if err != nil {
		return nil, internal("Failed to update order status", err)
	}

	owned, err := s.ownedRestaurantIDs(ctx, p)
	if err != nil {
		return nil, err
	}
	if !authz.CanUpdateOrder(p, order, owned) {
		return nil, forbidden("You do not have permission to update this order")
	}

	if err := CanTransition(order.Status, status); err != nil {
		return nil, err
	}

	now := s.now()
	err = s.orders.CompareAndSetStatus(ctx, order.ID, order.Status, status, now)
	if errors.Is(err, ErrNoRecord) {
		return nil, conflict("Order status was changed by another request")
	}
	if err != nil {
		return nil, internal("Failed to update order status", err)
	}

	order.Status = status
	order.UpdatedAt = now

	if kind, ok := notificationFor(status); ok && order.UserID != nil {
		s.notify(order, *order.UserID, kind)
	}
	return order, nil
}

func (s *OrderService) ownedRestaurantIDs(ctx context.Context, p *models.Principal) ([]primitive.ObjectID, error) {
	if p.Role != models.RoleOwner {
		return nil, nil
	}
	ownerID := p.ID
	restaurants, err := s.restaurants.ListRestaurants(ctx, RestaurantFilter{OwnerID: &ownerID})
	if err != nil {
		return nil, internal("Failed to load owned restaurants", err)
	}
	ids := make([]primitive.ObjectID, 0, len(restaurants))
	for _, r := range restaurants {
		ids = append(ids, r.ID)
	}
	return ids, nil
}

// ListOrders returns the caller's orders, or every order for admins.
func (s *OrderService) ListOrders(ctx context.Context, p *models.Principal) ([]models.Order, error) {
	if p == nil {
		return nil, unauthenticated("Access denied. No token provided.")
	}
	filter := OrderFilter{}
	if !authz.Can(p, authz.ViewAllOrders) {
		userID := p.ID
		filter.UserID = &userID
	}
	orders, err := s.orders.ListOrders(ctx, filter)
	if err != nil {
		return nil, internal("Failed to fetch orders", err)
	}
	return orders, nil
}

// OwnerOrders returns orders that contain items from the owner's restaurants.
func (s *OrderService) OwnerOrders(ctx context.Context, p *models.Principal) ([]models.Order, error) {
	if !authz.Can(p, authz.ViewOwnerOrders) {
		return nil, forbidden("Access denied. Owners only.")
	}
	owned, err := s.ownedRestaurantIDs(ctx, p)
	if err != nil {
		return nil, err
	}
	if len(owned) == 0 {
		return []models.Order{}, nil
	}
	orders, err := s.orders.ListOrders(ctx, OrderFilter{RestaurantIDs: owned})
	if err != nil {
		return nil, internal("Failed to fetch orders", err)
	}
	return orders, nil
}

// Track returns the time-derived status of an order. It does not consult the
// stored status.
func (s *OrderService) Track(ctx context.Context, orderID primitive.ObjectID) (*OrderTracking, error) {
	order, err := s.orders.FindOrder(ctx, orderID)
	if errors.Is(err, ErrNoRecord) {
		return nil, notFound("Order not found")
	}
	if err != nil {
		return nil, internal("Failed to fetch order status", err)
	}

	now := s.now()
	return &OrderTracking{
		OrderID:        order.ID.Hex(),
		Status:         DisplayStatus(order.CreatedAt, now),
		ElapsedMinutes: int(now.Sub(order.CreatedAt).Minutes()),
		CreatedAt:      order.CreatedAt,
	}, nil
}
