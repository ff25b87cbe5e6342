package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Experience holds optional 1..5 sub-scores; zero means not given.
type Experience struct {
	Food     int `bson:"food,omitempty" json:"food,omitempty"`
	Service  int `bson:"service,omitempty" json:"service,omitempty"`
	Delivery int `bson:"delivery,omitempty" json:"delivery,omitempty"`
}

type FoodItemRating struct {
	MenuItemID primitive.ObjectID `bson:"menuItemId" json:"menuItemId"`
	ItemName   string             `bson:"itemName" json:"itemName"`
	Rating     int                `bson:"rating" json:"rating"`
}

// Rating is unique per (restaurant, user).
type Rating struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RestaurantID  primitive.ObjectID `bson:"restaurant" json:"restaurant"`
	UserID        primitive.ObjectID `bson:"user" json:"user"`
	FoodItems     []FoodItemRating   `bson:"foodItems,omitempty" json:"foodItems,omitempty"`
	OverallRating int                `bson:"overallRating" json:"overallRating"`
	Review        string             `bson:"review" json:"review"`
	Experience    Experience         `bson:"experience" json:"experience"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// RatingStats is the raw aggregate over every rating of one restaurant.
type RatingStats struct {
	Breakdown   RatingBreakdown `json:"ratingDistribution"`
	AvgFood     float64         `json:"avgFood"`
	AvgService  float64         `json:"avgService"`
	AvgDelivery float64         `json:"avgDelivery"`
}

// RatingSummary is the cached aggregate written back to the restaurant.
type RatingSummary struct {
	AverageRating float64         `json:"averageRating"`
	TotalRatings  int64           `json:"totalRatings"`
	Breakdown     RatingBreakdown `json:"ratingBreakdown"`
}
