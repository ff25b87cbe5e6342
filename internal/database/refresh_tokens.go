package database

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"foodorder/internal/models"
)

func (s *Store) InsertRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if token.ID.IsZero() {
		token.ID = primitive.NewObjectID()
	}
	_, err := s.col(refreshTokensCollection).InsertOne(ctx, token)
	return translate(err)
}

func (s *Store) FindActiveRefreshToken(ctx context.Context, hash string) (*models.RefreshToken, error) {
	var token models.RefreshToken
	err := s.col(refreshTokensCollection).FindOne(ctx, bson.M{
		"tokenHash": hash,
		"revoked":   false,
	}).Decode(&token)
	if err != nil {
		return nil, translate(err)
	}
	return &token, nil
}

func (s *Store) RevokeRefreshToken(ctx context.Context, id primitive.ObjectID, replacedBy *primitive.ObjectID) error {
	set := bson.M{"revoked": true}
	if replacedBy != nil {
		set["replacedByToken"] = *replacedBy
	}
	return s.updateMatched(ctx, refreshTokensCollection, bson.M{"_id": id}, bson.M{"$set": set})
}

func (s *Store) RevokeRefreshTokenByHash(ctx context.Context, hash string) error {
	return s.updateMatched(ctx, refreshTokensCollection,
		bson.M{"tokenHash": hash, "revoked": false},
		bson.M{"$set": bson.M{"revoked": true}})
}
