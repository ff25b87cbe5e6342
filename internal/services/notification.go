package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"foodorder/internal/models"
)

const (
	defaultNotificationLimit = 10
	maxNotificationLimit     = 50
)

type NotificationService struct {
	store NotificationStore
	now   func() time.Time
}

func NewNotificationService(store NotificationStore) *NotificationService {
	return &NotificationService{store: store, now: time.Now}
}

// notificationText renders the title and message for an order event.
func notificationText(order *models.Order, kind models.NotificationType) (string, string) {
	short := order.ShortID()
	switch kind {
	case models.NotificationOrderConfirmed:
		return "Food Order Confirmed", fmt.Sprintf(
			"Your order #%s has been confirmed and is being prepared. Total: ৳%s",
			short, strconv.FormatFloat(order.Total, 'f', -1, 64))
	case models.NotificationOrderDelivered:
		return "Order Delivered", fmt.Sprintf(
			"Your order #%s has been delivered successfully. Enjoy your meal!", short)
	case models.NotificationOrderCancelled:
		return "Order Cancelled", fmt.Sprintf(
			"Your order #%s has been cancelled. Refund will be processed if applicable.", short)
	default:
		return "Order Update", fmt.Sprintf("Your order #%s has been updated.", short)
	}
}

func (s *NotificationService) Create(ctx context.Context, order *models.Order, userID primitive.ObjectID, kind models.NotificationType) (*models.Notification, error) {
	if order == nil || order.ID.IsZero() {
		return nil, validationError("order is required", "order")
	}
	title, message := notificationText(order, kind)
	now := s.now()
	n := &models.Notification{
		Title:     title,
		Message:   message,
		Type:      kind,
		UserID:    userID,
		OrderID:   order.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.InsertNotification(ctx, n); err != nil {
		return nil, internal("Failed to create notification", err)
	}
	return n, nil
}

// NotifyOrder lets the order ledger emit notifications.
func (s *NotificationService) NotifyOrder(ctx context.Context, order *models.Order, userID primitive.ObjectID, kind models.NotificationType) error {
	_, err := s.Create(ctx, order, userID, kind)
	return err
}

// List returns the newest notifications first.
func (s *NotificationService) List(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.Notification, error) {
	if limit <= 0 {
		limit = defaultNotificationLimit
	}
	if limit > maxNotificationLimit {
		limit = maxNotificationLimit
	}
	list, err := s.store.ListNotifications(ctx, userID, limit)
	if err != nil {
		return nil, internal("Failed to fetch notifications", err)
	}
	return list, nil
}

// Latest returns nil without error when the user has no notifications.
func (s *NotificationService) Latest(ctx context.Context, userID primitive.ObjectID) (*models.Notification, error) {
	n, err := s.store.LatestNotification(ctx, userID)
	if errors.Is(err, ErrNoRecord) {
		return nil, nil
	}
	if err != nil {
		return nil, internal("Failed to fetch notification", err)
	}
	return n, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	count, err := s.store.CountUnread(ctx, userID)
	if err != nil {
		return 0, internal("Failed to count notifications", err)
	}
	return count, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID primitive.ObjectID) error {
	err := s.store.MarkNotificationRead(ctx, notificationID, userID, s.now())
	if errors.Is(err, ErrNoRecord) {
		return notFound("Notification not found")
	}
	if err != nil {
		return internal("Failed to mark notification as read", err)
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	n, err := s.store.MarkAllNotificationsRead(ctx, userID, s.now())
	if err != nil {
		return 0, internal("Failed to mark all notifications as read", err)
	}
	return n, nil
}
