package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"foodorder/internal/middleware"
	"foodorder/internal/services"
)

type profileRequest struct {
	Name              *string `json:"name"`
	Phone             *string `json:"phone"`
	Email             *string `json:"email"`
	PreferredLanguage *string `json:"preferredLanguage"`
}

type addressRequest struct {
	Street    *string `json:"street"`
	Area      *string `json:"area"`
	District  *string `json:"district"`
	City      *string `json:"city"`
	IsDefault *bool   `json:"isDefault"`
}

func (r addressRequest) input() services.AddressInput {
	return services.AddressInput{
		Street:    r.Street,
		Area:      r.Area,
		District:  r.District,
		City:      r.City,
		IsDefault: r.IsDefault,
	}
}

func GetProfile(profiles *services.ProfileService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PROFILE"
		defer handlePanic(c, route)

		ctx, cancel := requestContext(c)
		defer cancel()

		user, err := profiles.Get(ctx, middleware.PrincipalFrom(c))
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

func UpdateProfile(profiles *services.ProfileService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PROFILE"
		defer handlePanic(c, route)

		var req profileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		user, err := profiles.Update(ctx, middleware.PrincipalFrom(c), services.ProfilePatch{
			Name:              req.Name,
			Phone:             req.Phone,
			Email:             req.Email,
			PreferredLanguage: req.PreferredLanguage,
		})
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully", "user": user})
	}
}

func ListAddresses(profiles *services.ProfileService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "ADDRESS"
		defer handlePanic(c, route)

		ctx, cancel := requestContext(c)
		defer cancel()

		addresses, err := profiles.ListAddresses(ctx, middleware.PrincipalFrom(c))
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"deliveryAddresses": addresses})
	}
}

func AddAddress(profiles *services.ProfileService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "ADDRESS"
		defer handlePanic(c, route)

		var req addressRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		addresses, err := profiles.AddAddress(ctx, middleware.PrincipalFrom(c), req.input())
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "Address added successfully", "deliveryAddresses": addresses})
	}
}

func UpdateAddress(profiles *services.ProfileService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "ADDRESS"
		defer handlePanic(c, route)

		var req addressRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		addresses, err := profiles.UpdateAddress(ctx, middleware.PrincipalFrom(c), c.Param("id"), req.input())
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Address updated successfully", "deliveryAddresses": addresses})
	}
}

func DeleteAddress(profiles *services.ProfileService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "ADDRESS"
		defer handlePanic(c, route)

		ctx, cancel := requestContext(c)
		defer cancel()

		addresses, err := profiles.DeleteAddress(ctx, middleware.PrincipalFrom(c), c.Param("id"))
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Address deleted successfully", "deliveryAddresses": addresses})
	}
}
