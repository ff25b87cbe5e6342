package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationType string

const (
	NotificationOrderConfirmed NotificationType = "ORDER_CONFIRMED"
	NotificationOrderDelivered NotificationType = "ORDER_DELIVERED"
	NotificationOrderCancelled NotificationType = "ORDER_CANCELLED"
)

// NotificationTTL is how long a notification is kept after creation.
const NotificationTTL = 30 * 24 * time.Hour

type Notification struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title     string             `bson:"title" json:"title"`
	Message   string             `bson:"message" json:"message"`
	Type      NotificationType   `bson:"type" json:"type"`
	UserID    primitive.ObjectID `bson:"user" json:"user"`
	OrderID   primitive.ObjectID `bson:"order" json:"order"`
	IsRead    bool               `bson:"isRead" json:"isRead"`
	ReadAt    *time.Time         `bson:"readAt,omitempty" json:"readAt,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
