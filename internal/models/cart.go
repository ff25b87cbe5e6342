package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartItem snapshots name and price at the time the item was added.
type CartItem struct {
	MenuItemID   primitive.ObjectID `bson:"menuItem" json:"menuItem"`
	Name         string             `bson:"name" json:"name"`
	Price        float64            `bson:"price" json:"price"`
	Quantity     int                `bson:"quantity" json:"quantity"`
	RestaurantID primitive.ObjectID `bson:"restaurant" json:"restaurant"`
}

// Cart is unique per user and is deleted rather than left empty.
type Cart struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"user" json:"user"`
	Items       []CartItem         `bson:"items" json:"items"`
	DeliveryFee float64            `bson:"deliveryFee" json:"deliveryFee"`
	Total       float64            `bson:"total" json:"total"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}

func (c *Cart) indexOf(menuItemID primitive.ObjectID) int {
	for i, item := range c.Items {
		if item.MenuItemID == menuItemID {
			return i
		}
	}
	return -1
}

// Line returns the cart line for a menu item, if present.
func (c *Cart) Line(menuItemID primitive.ObjectID) (*CartItem, bool) {
	if i := c.indexOf(menuItemID); i >= 0 {
		return &c.Items[i], true
	}
	return nil, false
}

// Remove drops the line for a menu item and reports whether one was removed.
func (c *Cart) Remove(menuItemID primitive.ObjectID) bool {
	i := c.indexOf(menuItemID)
	if i < 0 {
		return false
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	return true
}
