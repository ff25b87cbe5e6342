package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"foodorder/internal/middleware"
	"foodorder/internal/services"
)

type addToCartRequest struct {
	MenuItemID string `json:"menuItemId" binding:"required"`
	Quantity   int    `json:"quantity" binding:"required,min=1"`
}

// removeFromCartRequest accepts either key; older clients send menuItem.
type removeFromCartRequest struct {
	MenuItemID string `json:"menuItemId"`
	MenuItem   string `json:"menuItem"`
}

func GetCart(carts *services.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "CART"
		defer handlePanic(c, route)

		ctx, cancel := requestContext(c)
		defer cancel()

		cart, err := carts.GetCart(ctx, middleware.PrincipalFrom(c).ID)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

func AddToCart(carts *services.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "CART"
		defer handlePanic(c, route)

		var req addToCartRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "Invalid item or quantity")
			return
		}
		menuItemID, err := parseObjectID(req.MenuItemID)
		if err != nil || menuItemID.IsZero() {
			respondWithError(c, http.StatusBadRequest, route, "Invalid item or quantity")
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		cart, err := carts.AddOrSetItem(ctx, middleware.PrincipalFrom(c).ID, menuItemID, req.Quantity)
		if recordOperation("cart_add", err) != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

func RemoveFromCart(carts *services.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "CART"
		defer handlePanic(c, route)

		var req removeFromCartRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "Invalid request body")
			return
		}
		raw := req.MenuItemID
		if raw == "" {
			raw = req.MenuItem
		}
		menuItemID, err := parseObjectID(raw)
		if err != nil || menuItemID.IsZero() {
			respondWithError(c, http.StatusBadRequest, route, "Invalid menu item")
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		cart, err := carts.RemoveItem(ctx, middleware.PrincipalFrom(c).ID, menuItemID)
		if recordOperation("cart_remove", err) != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

func ClearCart(carts *services.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "CART"
		defer handlePanic(c, route)

		ctx, cancel := requestContext(c)
		defer cancel()

		if err := recordOperation("cart_clear", carts.ClearCart(ctx, middleware.PrincipalFrom(c).ID)); err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
	}
}
