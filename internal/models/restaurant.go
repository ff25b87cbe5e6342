package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DefaultDeliveryFee    = 60
	DefaultMinOrderAmount = 200
)

type Location struct {
	Street   string `bson:"street,omitempty" json:"street,omitempty"`
	Area     string `bson:"area,omitempty" json:"area,omitempty"`
	District string `bson:"district,omitempty" json:"district,omitempty"`
	City     string `bson:"city,omitempty" json:"city,omitempty"`
}

// MenuItem is embedded in its restaurant and addressed by its own id.
type MenuItem struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	Price       float64            `bson:"price" json:"price"`
	Category    string             `bson:"category" json:"category"`
	Image       string             `bson:"image,omitempty" json:"image,omitempty"`
	IsAvailable bool               `bson:"isAvailable" json:"isAvailable"`
	Stock       int                `bson:"stock" json:"stock"`
}

type DeliveryWindow struct {
	Min int `bson:"min" json:"min"`
	Max int `bson:"max" json:"max"`
}

// RatingBreakdown counts ratings per star value.
type RatingBreakdown struct {
	One   int64 `bson:"1" json:"1"`
	Two   int64 `bson:"2" json:"2"`
	Three int64 `bson:"3" json:"3"`
	Four  int64 `bson:"4" json:"4"`
	Five  int64 `bson:"5" json:"5"`
}

func (b *RatingBreakdown) slot(star int) *int64 {
	switch star {
	case 1:
		return &b.One
	case 2:
		return &b.Two
	case 3:
		return &b.Three
	case 4:
		return &b.Four
	case 5:
		return &b.Five
	}
	return nil
}

// Count returns the number of ratings with the given star value.
func (b RatingBreakdown) Count(star int) int64 {
	if p := b.slot(star); p != nil {
		return *p
	}
	return 0
}

// Add adjusts the counter for star by delta. Out of range stars are ignored.
func (b *RatingBreakdown) Add(star int, delta int64) {
	if p := b.slot(star); p != nil {
		*p += delta
	}
}

type Restaurant struct {
	ID                    primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name                  string              `bson:"name" json:"name"`
	CuisineType           string              `bson:"cuisineType" json:"cuisineType"`
	Description           string              `bson:"description" json:"description"`
	Location              Location            `bson:"location" json:"location"`
	IsAvailable           bool                `bson:"isAvailable" json:"isAvailable"`
	OwnerID               *primitive.ObjectID `bson:"owner" json:"owner"`
	MenuItems             []MenuItem          `bson:"menuItems" json:"menuItems"`
	AverageRating         float64             `bson:"averageRating" json:"averageRating"`
	TotalRatings          int64               `bson:"totalRatings" json:"totalRatings"`
	RatingBreakdown       RatingBreakdown     `bson:"ratingBreakdown" json:"ratingBreakdown"`
	RatingRevision        int64               `bson:"ratingRevision" json:"-"`
	EstimatedDeliveryTime DeliveryWindow      `bson:"estimatedDeliveryTime" json:"estimatedDeliveryTime"`
	DeliveryFee           float64             `bson:"deliveryFee" json:"deliveryFee"`
	MinOrderAmount        float64             `bson:"minOrderAmount" json:"minOrderAmount"`
	CreatedAt             time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt             time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// FindMenuItem returns a pointer into MenuItems so callers can edit in place.
func (r *Restaurant) FindMenuItem(id primitive.ObjectID) (*MenuItem, bool) {
	for i := range r.MenuItems {
		if r.MenuItems[i].ID == id {
			return &r.MenuItems[i], true
		}
	}
	return nil, false
}

func (r *Restaurant) IsOwnedBy(userID primitive.ObjectID) bool {
	return r.OwnerID != nil && *r.OwnerID == userID
}
