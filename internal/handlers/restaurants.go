package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"foodorder/internal/middleware"
	"foodorder/internal/models"
	"foodorder/internal/services"
)

type restaurantRequest struct {
	Name                  *string                `json:"name"`
	Description           *string                `json:"description"`
	Location              *models.Location       `json:"location"`
	CuisineType           *string                `json:"cuisineType"`
	IsAvailable           *bool                  `json:"isAvailable"`
	EstimatedDeliveryTime *models.DeliveryWindow `json:"estimatedDeliveryTime"`
	DeliveryFee           *float64               `json:"deliveryFee" binding:"omitempty,gte=0"`
	MinOrderAmount        *float64               `json:"minOrderAmount" binding:"omitempty,gte=0"`
}

func (r restaurantRequest) patch() services.RestaurantPatch {
	return services.RestaurantPatch{
		Name:                  r.Name,
		Description:           r.Description,
		Location:              r.Location,
		CuisineType:           r.CuisineType,
		IsAvailable:           r.IsAvailable,
		EstimatedDeliveryTime: r.EstimatedDeliveryTime,
		DeliveryFee:           r.DeliveryFee,
		MinOrderAmount:        r.MinOrderAmount,
	}
}

func (r restaurantRequest) input() services.RestaurantInput {
	in := services.RestaurantInput{
		IsAvailable:           r.IsAvailable,
		EstimatedDeliveryTime: r.EstimatedDeliveryTime,
		DeliveryFee:           r.DeliveryFee,
		MinOrderAmount:        r.MinOrderAmount,
	}
	if r.Name != nil {
		in.Name = *r.Name
	}
	if r.Description != nil {
		in.Description = *r.Description
	}
	if r.Location != nil {
		in.Location = *r.Location
	}
	if r.CuisineType != nil {
		in.CuisineType = *r.CuisineType
	}
	return in
}

type assignOwnerRequest struct {
	RestaurantID string `json:"restaurantId" binding:"required"`
	OwnerID      string `json:"ownerId" binding:"required"`
}

// ListRestaurants serves the public directory. Each query filter applies on
// its own.
func ListRestaurants(catalog *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "RESTAURANT"
		defer handlePanic(c, route)

		filter := services.RestaurantFilter{
			Location: c.Query("location"),
			Cuisine:  c.Query("cuisine"),
		}
		if raw := strings.TrimSpace(c.Query("availability")); raw != "" {
			available, err := strconv.ParseBool(raw)
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, "availability must be true or false")
				return
			}
			filter.Available = &available
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		list, err := catalog.List(ctx, filter)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func GetRestaurant(catalog *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "RESTAURANT"
		defer handlePanic(c, route)

		id, ok := objectIDParam(c, route, "id")
		if !ok {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		restaurant, err := catalog.Get(ctx, id)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, restaurant)
	}
}

func AdminListRestaurants(catalog *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "ADMIN_RESTAURANT"
		defer handlePanic(c, route)

		ctx, cancel := requestContext(c)
		defer cancel()

		list, err := catalog.AdminList(ctx, middleware.PrincipalFrom(c))
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func CreateRestaurant(catalog *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "ADMIN_RESTAURANT"
		defer handlePanic(c, route)

		var req restaurantRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		restaurant, err := catalog.Create(ctx, middleware.PrincipalFrom(c), req.input())
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "Restaurant created successfully", "restaurant": restaurant})
	}
}

// UpdateRestaurant serves both the admin and the owner edit routes; the
// service decides whether the caller may manage the restaurant.
func UpdateRestaurant(catalog *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "RESTAURANT"
		defer handlePanic(c, route)

		id, ok := objectIDParam(c, route, "id")
		if !ok {
			return
		}

		var req restaurantRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		restaurant, err := catalog.Update(ctx, middleware.PrincipalFrom(c), id, req.patch())
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Restaurant updated successfully", "restaurant": restaurant})
	}
}

func DeleteRestaurant(catalog *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "ADMIN_RESTAURANT"
		defer handlePanic(c, route)

		id, ok := objectIDParam(c, route, "id")
		if !ok {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		if err := catalog.Delete(ctx, middleware.PrincipalFrom(c), id); err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Restaurant deleted successfully"})
	}
}

func AssignOwner(catalog *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "ADMIN_RESTAURANT"
		defer handlePanic(c, route)

		var req assignOwnerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}
		restaurantID, err := parseObjectID(req.RestaurantID)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "Invalid restaurantId")
			return
		}
		ownerID, err := parseObjectID(req.OwnerID)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "Invalid ownerId")
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		restaurant, err := catalog.AssignOwner(ctx, middleware.PrincipalFrom(c), restaurantID, ownerID)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Owner assigned successfully", "restaurant": restaurant})
	}
}
