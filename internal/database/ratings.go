package database

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"foodorder/internal/models"
	"foodorder/internal/services"
)

// WithTransaction runs fn in a MongoDB session transaction. The driver retries
// fn on transient errors such as write conflicts, so fn must be idempotent.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := s.db.Client().StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx)
	})
	return err
}

// TouchRestaurantRatings writes the restaurant document so concurrent rating
// transactions on the same restaurant hit a write conflict.
func (s *Store) TouchRestaurantRatings(ctx context.Context, restaurantID primitive.ObjectID) error {
	return s.updateMatched(ctx, restaurantsCollection,
		bson.M{"_id": restaurantID},
		bson.M{"$inc": bson.M{"ratingRevision": 1}})
}

func (s *Store) FindRating(ctx context.Context, restaurantID, userID primitive.ObjectID) (*models.Rating, error) {
	var rating models.Rating
	err := s.col(ratingsCollection).FindOne(ctx, bson.M{"restaurant": restaurantID, "user": userID}).Decode(&rating)
	if err != nil {
		return nil, translate(err)
	}
	return &rating, nil
}

func (s *Store) InsertRating(ctx context.Context, rating *models.Rating) error {
	if rating.ID.IsZero() {
		rating.ID = primitive.NewObjectID()
	}
	_, err := s.col(ratingsCollection).InsertOne(ctx, rating)
	return translate(err)
}

func (s *Store) ReplaceRating(ctx context.Context, rating *models.Rating) error {
	res, err := s.col(ratingsCollection).ReplaceOne(ctx, bson.M{"_id": rating.ID}, rating)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return services.ErrNoRecord
	}
	return nil
}

func (s *Store) DeleteRating(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.col(ratingsCollection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return services.ErrNoRecord
	}
	return nil
}

func starCount(star int) bson.M {
	return bson.M{"$sum": bson.M{"$cond": bson.A{bson.M{"$eq": bson.A{"$overallRating", star}}, 1, 0}}}
}

// RatingStats aggregates every rating of a restaurant in one pass. $avg skips
// missing experience scores.
func (s *Store) RatingStats(ctx context.Context, restaurantID primitive.ObjectID) (models.RatingStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"restaurant": restaurantID}}},
		{{Key: "$group", Value: bson.M{
			"_id":         nil,
			"one":         starCount(1),
			"two":         starCount(2),
			"three":       starCount(3),
			"four":        starCount(4),
			"five":        starCount(5),
			"avgFood":     bson.M{"$avg": "$experience.food"},
			"avgService":  bson.M{"$avg": "$experience.service"},
			"avgDelivery": bson.M{"$avg": "$experience.delivery"},
		}}},
	}

	cursor, err := s.col(ratingsCollection).Aggregate(ctx, pipeline)
	if err != nil {
		return models.RatingStats{}, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		One         int64    `bson:"one"`
		Two         int64    `bson:"two"`
		Three       int64    `bson:"three"`
		Four        int64    `bson:"four"`
		Five        int64    `bson:"five"`
		AvgFood     *float64 `bson:"avgFood"`
		AvgService  *float64 `bson:"avgService"`
		AvgDelivery *float64 `bson:"avgDelivery"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return models.RatingStats{}, err
	}
	if len(rows) == 0 {
		return models.RatingStats{}, nil
	}

	row := rows[0]
	deref := func(v *float64) float64 {
		if v == nil {
			return 0
		}
		return *v
	}
	return models.RatingStats{
		Breakdown: models.RatingBreakdown{
			One: row.One, Two: row.Two, Three: row.Three, Four: row.Four, Five: row.Five,
		},
		AvgFood:     deref(row.AvgFood),
		AvgService:  deref(row.AvgService),
		AvgDelivery: deref(row.AvgDelivery),
	}, nil
}

func (s *Store) SetRestaurantRating(ctx context.Context, restaurantID primitive.ObjectID, summary models.RatingSummary) error {
	return s.updateMatched(ctx, restaurantsCollection,
		bson.M{"_id": restaurantID},
		bson.M{"$set": bson.M{
			"averageRating":   summary.AverageRating,
			"totalRatings":    summary.TotalRatings,
			"ratingBreakdown": summary.Breakdown,
		}})
}

func (s *Store) ListRatings(ctx context.Context, restaurantID primitive.ObjectID, page services.Page) ([]models.Rating, int64, error) {
	filter := bson.M{"restaurant": restaurantID}
	total, err := s.col(ratingsCollection).CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	direction := -1
	if page.Ascending {
		direction = 1
	}
	sort := bson.D{{Key: page.SortBy, Value: direction}}
	if page.SortBy != "createdAt" {
		sort = append(sort, bson.E{Key: "createdAt", Value: direction})
	}
	opts := options.Find().
		SetSort(sort).
		SetSkip((page.Page - 1) * page.Limit).
		SetLimit(page.Limit)

	cursor, err := s.col(ratingsCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	ratings := make([]models.Rating, 0)
	if err := cursor.All(ctx, &ratings); err != nil {
		return nil, 0, err
	}
	return ratings, total, nil
}
