package database

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"foodorder/internal/models"
	"foodorder/internal/services"
)

func (s *Store) FindRestaurant(ctx context.Context, id primitive.ObjectID) (*models.Restaurant, error) {
	var r models.Restaurant
	if err := s.col(restaurantsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&r); err != nil {
		return nil, translate(err)
	}
	return &r, nil
}

// FindMenuItem uses the menuItems._id index instead of scanning restaurants.
func (s *Store) FindMenuItem(ctx context.Context, itemID primitive.ObjectID) (*models.Restaurant, error) {
	var r models.Restaurant
	if err := s.col(restaurantsCollection).FindOne(ctx, bson.M{"menuItems._id": itemID}).Decode(&r); err != nil {
		return nil, translate(err)
	}
	return &r, nil
}

func containsPattern(v string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(v), Options: "i"}
}

func (s *Store) ListRestaurants(ctx context.Context, filter services.RestaurantFilter) ([]models.Restaurant, error) {
	query := bson.M{}
	if filter.Location != "" {
		pattern := containsPattern(filter.Location)
		query["$or"] = bson.A{
			bson.M{"location.city": pattern},
			bson.M{"location.area": pattern},
		}
	}
	if filter.Cuisine != "" {
		query["cuisineType"] = containsPattern(filter.Cuisine)
	}
	if filter.Available != nil {
		query["isAvailable"] = *filter.Available
	}
	if filter.OwnerID != nil {
		query["owner"] = *filter.OwnerID
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.col(restaurantsCollection).Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	list := make([]models.Restaurant, 0)
	if err := cursor.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *Store) InsertRestaurant(ctx context.Context, r *models.Restaurant) error {
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	_, err := s.col(restaurantsCollection).InsertOne(ctx, r)
	return translate(err)
}

func (s *Store) UpdateRestaurant(ctx context.Context, id primitive.ObjectID, patch services.RestaurantPatch, at time.Time) (*models.Restaurant, error) {
	set := bson.M{"updatedAt": at}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Location != nil {
		set["location"] = *patch.Location
	}
	if patch.CuisineType != nil {
		set["cuisineType"] = *patch.CuisineType
	}
	if patch.IsAvailable != nil {
		set["isAvailable"] = *patch.IsAvailable
	}
	if patch.EstimatedDeliveryTime != nil {
		set["estimatedDeliveryTime"] = *patch.EstimatedDeliveryTime
	}
	if patch.DeliveryFee != nil {
		set["deliveryFee"] = *patch.DeliveryFee
	}
	if patch.MinOrderAmount != nil {
		set["minOrderAmount"] = *patch.MinOrderAmount
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var r models.Restaurant
	err := s.col(restaurantsCollection).FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&r)
	if err != nil {
		return nil, translate(err)
	}
	return &r, nil
}

func (s *Store) DeleteRestaurant(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.col(restaurantsCollection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return services.ErrNoRecord
	}
	return nil
}

// updateMatched runs an update and reports ErrNoRecord when nothing matched.
func (s *Store) updateMatched(ctx context.Context, collection string, filter, update bson.M) error {
	res, err := s.col(collection).UpdateOne(ctx, filter, update)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return services.ErrNoRecord
	}
	return nil
}

func (s *Store) SetRestaurantOwner(ctx context.Context, id, ownerID primitive.ObjectID, at time.Time) error {
	return s.updateMatched(ctx, restaurantsCollection,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"owner": ownerID, "updatedAt": at}})
}

func (s *Store) PushMenuItem(ctx context.Context, restaurantID primitive.ObjectID, item models.MenuItem, at time.Time) error {
	return s.updateMatched(ctx, restaurantsCollection,
		bson.M{"_id": restaurantID},
		bson.M{
			"$push": bson.M{"menuItems": item},
			"$set":  bson.M{"updatedAt": at},
		})
}

func (s *Store) SetMenuItem(ctx context.Context, restaurantID primitive.ObjectID, item models.MenuItem, at time.Time) error {
	return s.updateMatched(ctx, restaurantsCollection,
		bson.M{"_id": restaurantID, "menuItems._id": item.ID},
		bson.M{"$set": bson.M{"menuItems.$": item, "updatedAt": at}})
}

func (s *Store) PullMenuItem(ctx context.Context, restaurantID, itemID primitive.ObjectID, at time.Time) error {
	return s.updateMatched(ctx, restaurantsCollection,
		bson.M{"_id": restaurantID, "menuItems._id": itemID},
		bson.M{
			"$pull": bson.M{"menuItems": bson.M{"_id": itemID}},
			"$set":  bson.M{"updatedAt": at},
		})
}
