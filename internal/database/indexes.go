package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"foodorder/internal/models"
)

func createIndexes(db *mongo.Database, collection string, indexes ...mongo.IndexModel) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, model := range indexes {
		name := ""
		if model.Options != nil && model.Options.Name != nil {
			name = *model.Options.Name
		}
		log.Printf("EnsureIndexes: creating %s.%s index", collection, name)
		if _, err := db.Collection(collection).Indexes().CreateOne(ctx, model); err != nil {
			log.Printf("EnsureIndexes: %s.%s index error: %v", collection, name, err)
			return err
		}
	}
	return nil
}

// sparseUnique is unique only among documents where field is a string, so
// users may register with just a phone or just an email.
func sparseUnique(field string) mongo.IndexModel {
	return mongo.IndexModel{
		Keys: bson.D{{Key: field, Value: 1}},
		Options: options.Index().
			SetName(field + "_unique").
			SetUnique(true).
			SetPartialFilterExpression(bson.M{
				field: bson.M{"$type": "string"},
			}),
	}
}

func EnsureUserIndexes(db *mongo.Database) error {
	return createIndexes(db, usersCollection,
		sparseUnique("phone"),
		sparseUnique("email"),
		mongo.IndexModel{
			Keys:    bson.D{{Key: "userType", Value: 1}},
			Options: options.Index().SetName("userType_index"),
		},
	)
}

func EnsureRestaurantIndexes(db *mongo.Database) error {
	return createIndexes(db, restaurantsCollection,
		mongo.IndexModel{
			Keys:    bson.D{{Key: "menuItems._id", Value: 1}},
			Options: options.Index().SetName("menuItems_id_index"),
		},
		mongo.IndexModel{
			Keys:    bson.D{{Key: "owner", Value: 1}},
			Options: options.Index().SetName("owner_index"),
		},
	)
}

func EnsureCartIndexes(db *mongo.Database) error {
	return createIndexes(db, cartsCollection,
		mongo.IndexModel{
			Keys:    bson.D{{Key: "user", Value: 1}},
			Options: options.Index().SetName("user_unique").SetUnique(true),
		},
	)
}

func EnsureOrderIndexes(db *mongo.Database) error {
	return createIndexes(db, ordersCollection,
		mongo.IndexModel{
			Keys:    bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("user_createdAt_index"),
		},
		mongo.IndexModel{
			Keys:    bson.D{{Key: "restaurants", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("restaurants_createdAt_index"),
		},
	)
}

func EnsureRatingIndexes(db *mongo.Database) error {
	return createIndexes(db, ratingsCollection,
		mongo.IndexModel{
			Keys:    bson.D{{Key: "restaurant", Value: 1}, {Key: "user", Value: 1}},
			Options: options.Index().SetName("restaurant_user_unique").SetUnique(true),
		},
		mongo.IndexModel{
			Keys:    bson.D{{Key: "restaurant", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("restaurant_createdAt_index"),
		},
	)
}

func EnsureNotificationIndexes(db *mongo.Database) error {
	return createIndexes(db, notificationsCollection,
		mongo.IndexModel{
			Keys:    bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("user_createdAt_index"),
		},
		mongo.IndexModel{
			Keys: bson.D{{Key: "createdAt", Value: 1}},
			Options: options.Index().
				SetName("createdAt_ttl").
				SetExpireAfterSeconds(int32(models.NotificationTTL / time.Second)),
		},
	)
}

func EnsureRefreshTokenIndexes(db *mongo.Database) error {
	return createIndexes(db, refreshTokensCollection,
		mongo.IndexModel{
			Keys:    bson.D{{Key: "tokenHash", Value: 1}},
			Options: options.Index().SetName("tokenHash_unique").SetUnique(true),
		},
		mongo.IndexModel{
			Keys:    bson.D{{Key: "expiresAt", Value: 1}},
			Options: options.Index().SetName("expiresAt_ttl").SetExpireAfterSeconds(0),
		},
	)
}

// EnsureIndexes creates every index and logs failures without stopping.
func EnsureIndexes(db *mongo.Database) {
	ensure := []struct {
		name string
		fn   func(*mongo.Database) error
	}{
		{"user", EnsureUserIndexes},
		{"restaurant", EnsureRestaurantIndexes},
		{"cart", EnsureCartIndexes},
		{"order", EnsureOrderIndexes},
		{"rating", EnsureRatingIndexes},
		{"notification", EnsureNotificationIndexes},
		{"refresh token", EnsureRefreshTokenIndexes},
	}
	for _, e := range ensure {
		if err := e.fn(db); err != nil {
			log.Printf("⚠️ %s index warning: %v", e.name, err)
		}
	}
}
