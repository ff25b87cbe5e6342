package services

import "time"

func SetCartClock(s *CartService, now func() time.Time) { s.now = now }

func SetOrderClock(s *OrderService, now func() time.Time) { s.now = now }

// RunNotificationsInline makes notification dispatch synchronous.
func RunNotificationsInline(s *OrderService) {
	s.dispatch = func(f func()) { f() }
}

func SetRatingClock(s *RatingService, now func() time.Time) { s.now = now }

func SetNotificationClock(s *NotificationService, now func() time.Time) { s.now = now }
