package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"foodorder/internal/middleware"
	"foodorder/internal/services"
)

type menuItemRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Category    *string  `json:"category"`
	Image       *string  `json:"image"`
	IsAvailable *bool    `json:"isAvailable"`
	Stock       *int     `json:"stock"`
}

func (r menuItemRequest) input() services.MenuItemInput {
	return services.MenuItemInput{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Category:    r.Category,
		Image:       r.Image,
		IsAvailable: r.IsAvailable,
		Stock:       r.Stock,
	}
}

func OwnerRestaurants(catalog *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "OWNER"
		defer handlePanic(c, route)

		ctx, cancel := requestContext(c)
		defer cancel()

		list, err := catalog.OwnedRestaurants(ctx, middleware.PrincipalFrom(c))
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func AddMenuItem(catalog *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "MENU"
		defer handlePanic(c, route)

		restaurantID, ok := objectIDParam(c, route, "id")
		if !ok {
			return
		}

		var req menuItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		item, err := catalog.AddMenuItem(ctx, middleware.PrincipalFrom(c), restaurantID, req.input())
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "Menu item added successfully", "menuItem": item})
	}
}

func UpdateMenuItem(catalog *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "MENU"
		defer handlePanic(c, route)

		restaurantID, ok := objectIDParam(c, route, "id")
		if !ok {
			return
		}
		itemID, ok := objectIDParam(c, route, "itemId")
		if !ok {
			return
		}

		var req menuItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		item, err := catalog.UpdateMenuItem(ctx, middleware.PrincipalFrom(c), restaurantID, itemID, req.input())
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Menu item updated successfully", "menuItem": item})
	}
}

func DeleteMenuItem(catalog *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "MENU"
		defer handlePanic(c, route)

		restaurantID, ok := objectIDParam(c, route, "id")
		if !ok {
			return
		}
		itemID, ok := objectIDParam(c, route, "itemId")
		if !ok {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		if err := catalog.DeleteMenuItem(ctx, middleware.PrincipalFrom(c), restaurantID, itemID); err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Menu item deleted successfully"})
	}
}
