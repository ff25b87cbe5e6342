package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"foodorder/internal/authz"
	"foodorder/internal/models"
)

const maxReviewLength = 500

type RatingInput struct {
	OverallRating int
	// Review and Experience keep their stored values on update when nil.
	Review     *string
	Experience *models.Experience
	FoodItems  []models.FoodItemRating
}

type RatingResult struct {
	Rating  *models.Rating       `json:"rating"`
	Summary models.RatingSummary `json:"summary"`
	Created bool                 `json:"created"`
}

type RatingPageResult struct {
	Ratings    []models.Rating      `json:"data"`
	Total      int64                `json:"total"`
	Page       int64                `json:"page"`
	Limit      int64                `json:"limit"`
	Summary    models.RatingSummary `json:"summary"`
	Statistics models.RatingStats   `json:"statistics"`
}

// RatingService owns per-user restaurant ratings and keeps the restaurant's
// cached aggregate equal to the aggregate over its ratings.
type RatingService struct {
	store RatingStore
	now   func() time.Time
}

func NewRatingService(store RatingStore) *RatingService {
	return &RatingService{store: store, now: time.Now}
}

func validScore(v int) bool { return v >= 1 && v <= 5 }

func (in RatingInput) validate() error {
	if !validScore(in.OverallRating) {
		return validationError("overallRating must be between 1 and 5", "overallRating")
	}
	if in.Review != nil && utf8.RuneCountInString(*in.Review) > maxReviewLength {
		return validationError("review must be at most 500 characters", "review")
	}
	if e := in.Experience; e != nil {
		for _, v := range []int{e.Food, e.Service, e.Delivery} {
			if v != 0 && !validScore(v) {
				return validationError("experience scores must be between 1 and 5", "experience")
			}
		}
	}
	for _, item := range in.FoodItems {
		if item.MenuItemID.IsZero() || strings.TrimSpace(item.ItemName) == "" || !validScore(item.Rating) {
			return validationError("each food item needs menuItemId, itemName and a rating between 1 and 5", "foodItems")
		}
	}
	return nil
}

func requireRater(p *models.Principal) error {
	if p == nil {
		return unauthenticated("Access denied. No token provided.")
	}
	if !authz.Can(p, authz.RateRestaurants) {
		return forbidden("You cannot rate restaurants")
	}
	return nil
}

// SubmitOrUpdate inserts the caller's rating for a restaurant, or updates it
// if one exists, and re-aggregates the restaurant in the same transaction.
func (s *RatingService) SubmitOrUpdate(ctx context.Context, p *models.Principal, restaurantID primitive.ObjectID, in RatingInput) (*RatingResult, error) {
	if err := requireRater(p); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	var result *RatingResult
	err := s.store.WithTransaction(ctx, func(ctx context.Context) error {
		result = nil
		if err := s.store.TouchRestaurantRatings(ctx, restaurantID); err != nil {
			if errors.Is(err, ErrNoRecord) {
				return notFound("Restaurant not found")
			}
			return err
		}

		now := s.now()
		existing, err := s.store.FindRating(ctx, restaurantID, p.ID)
		created := errors.Is(err, ErrNoRecord)
		if err != nil && !created {
			return err
		}

		var rating *models.Rating
		if created {
			rating = &models.Rating{
				RestaurantID:  restaurantID,
				UserID:        p.ID,
				OverallRating: in.OverallRating,
				FoodItems:     in.FoodItems,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			if in.Review != nil {
				rating.Review = strings.TrimSpace(*in.Review)
			}
			if in.Experience != nil {
				rating.Experience = *in.Experience
			}
			if err := s.store.InsertRating(ctx, rating); err != nil {
				return err
			}
		} else {
			rating = existing
			rating.OverallRating = in.OverallRating
			if in.Review != nil {
				rating.Review = strings.TrimSpace(*in.Review)
			}
			if in.Experience != nil {
				rating.Experience = *in.Experience
			}
			if in.FoodItems != nil {
				rating.FoodItems = in.FoodItems
			}
			rating.UpdatedAt = now
			if err := s.store.ReplaceRating(ctx, rating); err != nil {
				return err
			}
		}

		summary, err := s.reaggregate(ctx, restaurantID)
		if err != nil {
			return err
		}
		result = &RatingResult{Rating: rating, Summary: summary, Created: created}
		return nil
	})
	if err != nil {
		return nil, passOrInternal("Server error while saving rating", err)
	}
	return result, nil
}

// DeleteRating removes the caller's rating and re-aggregates the restaurant.
func (s *RatingService) DeleteRating(ctx context.Context, p *models.Principal, restaurantID primitive.ObjectID) (models.RatingSummary, error) {
	if err := requireRater(p); err != nil {
		return models.RatingSummary{}, err
	}

	var summary models.RatingSummary
	err := s.store.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.store.TouchRestaurantRatings(ctx, restaurantID); err != nil {
			if errors.Is(err, ErrNoRecord) {
				return notFound("Restaurant not found")
			}
			return err
		}

		rating, err := s.store.FindRating(ctx, restaurantID, p.ID)
		if errors.Is(err, ErrNoRecord) {
			return notFound("Rating not found")
		}
		if err != nil {
			return err
		}

		if err := s.store.DeleteRating(ctx, rating.ID); err != nil {
			return err
		}

		summary, err = s.reaggregate(ctx, restaurantID)
		return err
	})
	if err != nil {
		return models.RatingSummary{}, passOrInternal("Server error while deleting rating", err)
	}
	return summary, nil
}

func (s *RatingService) reaggregate(ctx context.Context, restaurantID primitive.ObjectID) (models.RatingSummary, error) {
	stats, err := s.store.RatingStats(ctx, restaurantID)
	if err != nil {
		return models.RatingSummary{}, err
	}
	summary := SummarizeRatings(stats.Breakdown)
	if err := s.store.SetRestaurantRating(ctx, restaurantID, summary); err != nil {
		return models.RatingSummary{}, err
	}
	return summary, nil
}

// MyRating returns the caller's rating for a restaurant.
func (s *RatingService) MyRating(ctx context.Context, p *models.Principal, restaurantID primitive.ObjectID) (*models.Rating, error) {
	if p == nil {
		return nil, unauthenticated("Access denied. No token provided.")
	}
	rating, err := s.store.FindRating(ctx, restaurantID, p.ID)
	if errors.Is(err, ErrNoRecord) {
		return nil, notFound("Rating not found")
	}
	if err != nil {
		return nil, internal("Server error while fetching rating", err)
	}
	return rating, nil
}

// ListRatings returns one page of a restaurant's ratings with statistics.
func (s *RatingService) ListRatings(ctx context.Context, restaurantID primitive.ObjectID, page Page) (*RatingPageResult, error) {
	if page.Page < 1 {
		page.Page = 1
	}
	if page.Limit < 1 {
		page.Limit = 10
	}
	switch page.SortBy {
	case "", "createdAt":
		page.SortBy = "createdAt"
	case "overallRating":
	default:
		return nil, validationError("sortBy must be createdAt or overallRating", "sortBy")
	}

	ratings, total, err := s.store.ListRatings(ctx, restaurantID, page)
	if err != nil {
		return nil, internal("Server error while fetching ratings", err)
	}
	stats, err := s.store.RatingStats(ctx, restaurantID)
	if err != nil {
		return nil, internal("Server error while fetching ratings", err)
	}
	stats.AvgFood = roundTenth(stats.AvgFood)
	stats.AvgService = roundTenth(stats.AvgService)
	stats.AvgDelivery = roundTenth(stats.AvgDelivery)

	return &RatingPageResult{
		Ratings:    ratings,
		Total:      total,
		Page:       page.Page,
		Limit:      page.Limit,
		Summary:    SummarizeRatings(stats.Breakdown),
		Statistics: stats,
	}, nil
}
