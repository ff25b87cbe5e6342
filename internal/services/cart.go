package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"foodorder/internal/models"
)

// CartService keeps each user's cart and its derived total. Name and price are
// snapshotted when a line is (re-)added and are never re-read on GetCart.
type CartService struct {
	carts CartStore
	menu  MenuItemLookup
	now   func() time.Time
}

func NewCartService(carts CartStore, menu MenuItemLookup) *CartService {
	return &CartService{carts: carts, menu: menu, now: time.Now}
}

func emptyCart(userID primitive.ObjectID) *models.Cart {
	return &models.Cart{UserID: userID, Items: []models.CartItem{}}
}

// GetCart returns the user's cart, or an empty one if none is stored.
func (s *CartService) GetCart(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	cart, err := s.carts.FindCart(ctx, userID)
	if errors.Is(err, ErrNoRecord) {
		return emptyCart(userID), nil
	}
	if err != nil {
		return nil, internal("Failed to fetch cart", err)
	}
	return cart, nil
}

// AddOrSetItem sets the quantity of a menu item in the cart. An existing line
// has its quantity replaced, not incremented.
func (s *CartService) AddOrSetItem(ctx context.Context, userID, menuItemID primitive.ObjectID, quantity int) (*models.Cart, error) {
	if menuItemID.IsZero() || quantity < 1 {
		return nil, validationError("Invalid item or quantity", "menuItemId", "quantity")
	}

	restaurant, err := s.menu.FindMenuItem(ctx, menuItemID)
	if errors.Is(err, ErrNoRecord) {
		return nil, notFound("Menu item not found")
	}
	if err != nil {
		return nil, internal("Failed to add to cart", err)
	}

	item, ok := restaurant.FindMenuItem(menuItemID)
	if !ok {
		return nil, notFound("Menu item not found")
	}
	if !item.IsAvailable {
		return nil, &Error{Kind: KindUnavailable, Message: "Menu item not available"}
	}
	if quantity > item.Stock {
		return nil, &Error{
			Kind:      KindInsufficientStock,
			Message:   "Not enough stock",
			Available: item.Stock,
			Requested: quantity,
		}
	}

	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	if line, ok := cart.Line(menuItemID); ok {
		line.Quantity = quantity
		line.Name = item.Name
		line.Price = item.Price
		line.RestaurantID = restaurant.ID
	} else {
		cart.Items = append(cart.Items, models.CartItem{
			MenuItemID:   menuItemID,
			Name:         item.Name,
			Price:        item.Price,
			Quantity:     quantity,
			RestaurantID: restaurant.ID,
		})
	}

	cart.DeliveryFee = restaurant.DeliveryFee
	cart.Total = CartTotal(cart.Items, cart.DeliveryFee)
	cart.UpdatedAt = s.now()

	if err := s.carts.SaveCart(ctx, cart); err != nil {
		return nil, internal("Failed to add to cart", err)
	}
	return cart, nil
}

// RemoveItem drops a line. A cart left without lines is deleted.
func (s *CartService) RemoveItem(ctx context.Context, userID, menuItemID primitive.ObjectID) (*models.Cart, error) {
	cart, err := s.carts.FindCart(ctx, userID)
	if errors.Is(err, ErrNoRecord) {
		return emptyCart(userID), nil
	}
	if err != nil {
		return nil, internal("Failed to remove from cart", err)
	}

	if !cart.Remove(menuItemID) {
		return cart, nil
	}

	if len(cart.Items) == 0 {
		if err := s.carts.DeleteCart(ctx, userID); err != nil {
			return nil, internal("Failed to remove from cart", err)
		}
		return emptyCart(userID), nil
	}

	cart.Total = CartTotal(cart.Items, cart.DeliveryFee)
	cart.UpdatedAt = s.now()
	if err := s.carts.SaveCart(ctx, cart); err != nil {
		return nil, internal("Failed to remove from cart", err)
	}
	return cart, nil
}

func (s *CartService) ClearCart(ctx context.Context, userID primitive.ObjectID) error {
	if err := s.carts.DeleteCart(ctx, userID); err != nil {
		return internal("Failed to clear cart", err)
	}
	return nil
}
