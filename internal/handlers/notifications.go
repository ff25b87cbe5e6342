package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"foodorder/internal/middleware"
	"foodorder/internal/services"
)

func ListNotifications(notifications *services.NotificationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "NOTIFICATION"
		defer handlePanic(c, route)

		var limit int64
		if raw := c.Query("limit"); raw != "" {
			parsed, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || parsed < 1 {
				respondWithError(c, http.StatusBadRequest, route, "limit must be a positive integer")
				return
			}
			limit = parsed
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		list, err := notifications.List(ctx, middleware.PrincipalFrom(c).ID, limit)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "notifications": list})
	}
}

func LatestNotification(notifications *services.NotificationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "NOTIFICATION"
		defer handlePanic(c, route)

		ctx, cancel := requestContext(c)
		defer cancel()

		latest, err := notifications.Latest(ctx, middleware.PrincipalFrom(c).ID)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "notification": latest})
	}
}

func UnreadNotificationCount(notifications *services.NotificationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "NOTIFICATION"
		defer handlePanic(c, route)

		ctx, cancel := requestContext(c)
		defer cancel()

		count, err := notifications.UnreadCount(ctx, middleware.PrincipalFrom(c).ID)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "count": count})
	}
}

func MarkNotificationRead(notifications *services.NotificationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "NOTIFICATION"
		defer handlePanic(c, route)

		id, ok := objectIDParam(c, route, "id")
		if !ok {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		if err := notifications.MarkRead(ctx, middleware.PrincipalFrom(c).ID, id); err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Notification marked as read"})
	}
}

func MarkAllNotificationsRead(notifications *services.NotificationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "NOTIFICATION"
		defer handlePanic(c, route)

		ctx, cancel := requestContext(c)
		defer cancel()

		modified, err := notifications.MarkAllRead(ctx, middleware.PrincipalFrom(c).ID)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"message":  "All notifications marked as read",
			"modified": modified,
		})
	}
}
