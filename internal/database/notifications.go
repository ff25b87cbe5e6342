package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"foodorder/internal/models"
)

func (s *Store) InsertNotification(ctx context.Context, n *models.Notification) error {
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	_, err := s.col(notificationsCollection).InsertOne(ctx, n)
	return translate(err)
}

func (s *Store) ListNotifications(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.Notification, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit)
	cursor, err := s.col(notificationsCollection).Find(ctx, bson.M{"user": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	list := make([]models.Notification, 0)
	if err := cursor.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *Store) LatestNotification(ctx context.Context, userID primitive.ObjectID) (*models.Notification, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	var n models.Notification
	if err := s.col(notificationsCollection).FindOne(ctx, bson.M{"user": userID}, opts).Decode(&n); err != nil {
		return nil, translate(err)
	}
	return &n, nil
}

func (s *Store) CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.col(notificationsCollection).CountDocuments(ctx, bson.M{"user": userID, "isRead": false})
}

func (s *Store) MarkNotificationRead(ctx context.Context, id, userID primitive.ObjectID, at time.Time) error {
	return s.updateMatched(ctx, notificationsCollection,
		bson.M{"_id": id, "user": userID},
		bson.M{"$set": bson.M{"isRead": true, "readAt": at, "updatedAt": at}})
}

func (s *Store) MarkAllNotificationsRead(ctx context.Context, userID primitive.ObjectID, at time.Time) (int64, error) {
	res, err := s.col(notificationsCollection).UpdateMany(ctx,
		bson.M{"user": userID, "isRead": false},
		bson.M{"$set": bson.M{"isRead": true, "readAt": at, "updatedAt": at}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
