package services

import (
	"strings"
	"time"

	"foodorder/internal/models"
)

// orderTransitions is the authoritative order state machine. Delivered and
// Cancelled are terminal.
var orderTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.StatusPending: {models.StatusPaid, models.StatusCancelled},
	models.StatusPaid:    {models.StatusDelivered, models.StatusCancelled},
}

// ValidTransitionsFrom returns the statuses reachable from status.
func ValidTransitionsFrom(status models.OrderStatus) []models.OrderStatus {
	return orderTransitions[status]
}

// CanTransition reports whether from → to is a legal edge.
func CanTransition(from, to models.OrderStatus) error {
	for _, next := range orderTransitions[from] {
		if next == to {
			return nil
		}
	}
	return validationError(
		"invalid transition: "+string(from)+" → "+string(to)+
			". Valid transitions from "+string(from)+" are: "+describeValidFrom(from),
		"status",
	)
}

func describeValidFrom(status models.OrderStatus) string {
	nexts := ValidTransitionsFrom(status)
	if len(nexts) == 0 {
		return "none (terminal state)"
	}
	names := make([]string, 0, len(nexts))
	for _, s := range nexts {
		names = append(names, string(s))
	}
	return strings.Join(names, ", ")
}

// notificationFor maps a new status to the notification it emits, if any.
func notificationFor(status models.OrderStatus) (models.NotificationType, bool) {
	switch status {
	case models.StatusDelivered:
		return models.NotificationOrderDelivered, true
	case models.StatusCancelled:
		return models.NotificationOrderCancelled, true
	}
	return "", false
}

// Display statuses derived purely from order age, independent of the stored
// status.
const (
	DisplayConfirmed = "Confirmed"
	DisplayPreparing = "Preparing"
	DisplayOnTheWay  = "On the way"
	DisplayDelivered = "Delivered"
)

// DisplayStatus projects elapsed time since createdAt onto a delivery status:
// <5m Confirmed, 5–15m Preparing, 15–20m On the way, ≥20m Delivered.
func DisplayStatus(createdAt, now time.Time) string {
	elapsed := now.Sub(createdAt)
	switch {
	case elapsed < 5*time.Minute:
		return DisplayConfirmed
	case elapsed < 15*time.Minute:
		return DisplayPreparing
	case elapsed < 20*time.Minute:
		return DisplayOnTheWay
	default:
		return DisplayDelivered
	}
}
