package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"foodorder/internal/middleware"
	"foodorder/internal/models"
	"foodorder/internal/services"
)

type rateRequest struct {
	OverallRating int                     `json:"overallRating" binding:"required,min=1,max=5"`
	Review        *string                 `json:"review" binding:"omitempty,max=500"`
	Experience    *models.Experience      `json:"experience"`
	FoodItems     []models.FoodItemRating `json:"foodItems"`
}

// RateRestaurant creates the caller's rating or updates the existing one.
func RateRestaurant(ratings *services.RatingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "RATING"
		defer handlePanic(c, route)

		restaurantID, ok := objectIDParam(c, route, "id")
		if !ok {
			return
		}

		var req rateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		result, err := ratings.SubmitOrUpdate(ctx, middleware.PrincipalFrom(c), restaurantID, services.RatingInput{
			OverallRating: req.OverallRating,
			Review:        req.Review,
			Experience:    req.Experience,
			FoodItems:     req.FoodItems,
		})
		if recordOperation("rating_submit", err) != nil {
			respondServiceError(c, route, err)
			return
		}

		status, message := http.StatusOK, "Rating updated successfully"
		if result.Created {
			status, message = http.StatusCreated, "Rating submitted successfully"
		}
		c.JSON(status, gin.H{
			"success":       true,
			"message":       message,
			"data":          result.Rating,
			"averageRating": result.Summary.AverageRating,
			"totalRatings":  result.Summary.TotalRatings,
		})
	}
}

func MyRating(ratings *services.RatingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "RATING"
		defer handlePanic(c, route)

		restaurantID, ok := objectIDParam(c, route, "id")
		if !ok {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		rating, err := ratings.MyRating(ctx, middleware.PrincipalFrom(c), restaurantID)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": rating})
	}
}

func DeleteMyRating(ratings *services.RatingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "RATING"
		defer handlePanic(c, route)

		restaurantID, ok := objectIDParam(c, route, "id")
		if !ok {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		summary, err := ratings.DeleteRating(ctx, middleware.PrincipalFrom(c), restaurantID)
		if recordOperation("rating_delete", err) != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success":       true,
			"message":       "Rating deleted successfully",
			"averageRating": summary.AverageRating,
			"totalRatings":  summary.TotalRatings,
		})
	}
}

// RestaurantRatings lists one page of ratings with the restaurant's statistics.
func RestaurantRatings(ratings *services.RatingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "RATING"
		defer handlePanic(c, route)

		restaurantID, ok := objectIDParam(c, route, "id")
		if !ok {
			return
		}
		page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"), 10)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		result, err := ratings.ListRatings(ctx, restaurantID, services.Page{
			Page:      page,
			Limit:     limit,
			SortBy:    c.Query("sortBy"),
			Ascending: c.Query("order") == "asc",
		})
		if err != nil {
			respondServiceError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":    true,
			"count":      len(result.Ratings),
			"total":      result.Total,
			"pagination": newPagination(result.Page, result.Limit, result.Total),
			"statistics": gin.H{
				"averageRating":      result.Summary.AverageRating,
				"totalRatings":       result.Summary.TotalRatings,
				"avgFood":            result.Statistics.AvgFood,
				"avgService":         result.Statistics.AvgService,
				"avgDelivery":        result.Statistics.AvgDelivery,
				"ratingDistribution": result.Statistics.Breakdown,
			},
			"data": result.Ratings,
		})
	}
}
