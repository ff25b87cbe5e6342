package database

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"foodorder/internal/models"
)

func (s *Store) FindCart(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	var cart models.Cart
	if err := s.col(cartsCollection).FindOne(ctx, bson.M{"user": userID}).Decode(&cart); err != nil {
		return nil, translate(err)
	}
	return &cart, nil
}

// SaveCart upserts the single cart of cart.UserID.
func (s *Store) SaveCart(ctx context.Context, cart *models.Cart) error {
	set := bson.M{
		"items":       cart.Items,
		"deliveryFee": cart.DeliveryFee,
		"total":       cart.Total,
		"updatedAt":   cart.UpdatedAt,
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After).
		SetProjection(bson.M{"_id": 1})

	var saved struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	err := s.col(cartsCollection).FindOneAndUpdate(ctx, bson.M{"user": cart.UserID}, bson.M{"$set": set}, opts).Decode(&saved)
	if err != nil {
		return translate(err)
	}
	cart.ID = saved.ID
	return nil
}

func (s *Store) DeleteCart(ctx context.Context, userID primitive.ObjectID) error {
	_, err := s.col(cartsCollection).DeleteOne(ctx, bson.M{"user": userID})
	return err
}
