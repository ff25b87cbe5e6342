package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"foodorder/internal/middleware"
	"foodorder/internal/models"
	"foodorder/internal/services"
)

type checkoutRequest struct {
	CustomerName  string               `json:"customerName"`
	CustomerPhone string               `json:"customerPhone"`
	CustomerEmail string               `json:"customerEmail"`
	Items         []models.OrderItem   `json:"items"`
	DeliveryFee   float64              `json:"deliveryFee"`
	Total         float64              `json:"total"`
	PaymentMethod models.PaymentMethod `json:"paymentMethod"`
}

type statusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
}

// Checkout accepts guest and authenticated orders. Only authenticated
// customers receive notifications.
func Checkout(orders *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "ORDER"
		defer handlePanic(c, route)

		var req checkoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "Invalid request body")
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		order, err := orders.Checkout(ctx, middleware.PrincipalFrom(c), services.CheckoutRequest{
			CustomerName:  req.CustomerName,
			CustomerPhone: req.CustomerPhone,
			CustomerEmail: req.CustomerEmail,
			Items:         req.Items,
			DeliveryFee:   req.DeliveryFee,
			Total:         req.Total,
			PaymentMethod: req.PaymentMethod,
		})
		if recordOperation("order_checkout", err) != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"message": "Order placed successfully",
			"order":   order,
		})
	}
}

func ListOrders(orders *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "ORDER"
		defer handlePanic(c, route)

		ctx, cancel := requestContext(c)
		defer cancel()

		list, err := orders.ListOrders(ctx, middleware.PrincipalFrom(c))
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func OwnerOrders(orders *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "ORDER"
		defer handlePanic(c, route)

		ctx, cancel := requestContext(c)
		defer cancel()

		list, err := orders.OwnerOrders(ctx, middleware.PrincipalFrom(c))
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func UpdateOrderStatus(orders *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "ORDER"
		defer handlePanic(c, route)

		orderID, ok := objectIDParam(c, route, "id")
		if !ok {
			return
		}

		var req statusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		order, err := orders.UpdateStatus(ctx, middleware.PrincipalFrom(c), orderID, req.Status)
		if recordOperation("order_status", err) != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Order status updated", "order": order})
	}
}

// TrackOrder reports the time-based display status for polling clients.
func TrackOrder(orders *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "ORDER"
		defer handlePanic(c, route)

		orderID, ok := objectIDParam(c, route, "id")
		if !ok {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		tracking, err := orders.Track(ctx, orderID)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, tracking)
	}
}
