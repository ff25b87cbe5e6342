package database

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"foodorder/internal/services"
)

// Connect opens a client and verifies the server answers a ping.
func Connect(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

const (
	usersCollection         = "users"
	restaurantsCollection   = "restaurants"
	cartsCollection         = "carts"
	ordersCollection        = "orders"
	ratingsCollection       = "ratings"
	notificationsCollection = "notifications"
	refreshTokensCollection = "refresh_tokens"
)

// Store implements the service store interfaces on a MongoDB database.
type Store struct {
	db *mongo.Database
}

var (
	_ services.RestaurantStore   = (*Store)(nil)
	_ services.CartStore         = (*Store)(nil)
	_ services.OrderStore        = (*Store)(nil)
	_ services.RatingStore       = (*Store)(nil)
	_ services.NotificationStore = (*Store)(nil)
	_ services.UserStore         = (*Store)(nil)
	_ services.RefreshTokenStore = (*Store)(nil)
)

func NewStore(db *mongo.Database) *Store {
	return &Store{db: db}
}

func (s *Store) col(name string) *mongo.Collection {
	return s.db.Collection(name)
}

// Ping reports whether the primary is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Client().Ping(ctx, readpref.Primary())
}

// translate maps driver errors onto the store sentinels services check for.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return services.ErrNoRecord
	case mongo.IsDuplicateKeyError(err):
		return services.ErrDuplicate
	}
	return err
}
