package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"foodorder/internal/models"
	"foodorder/internal/services"
)

func (s *Store) FindUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	if err := s.col(usersCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *Store) FindUserByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	var user models.User
	filter := bson.M{"$or": bson.A{
		bson.M{"phone": identifier},
		bson.M{"email": identifier},
	}}
	if err := s.col(usersCollection).FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *Store) IdentityTaken(ctx context.Context, phone, email string, exclude primitive.ObjectID) (bool, error) {
	or := bson.A{}
	if phone != "" {
		or = append(or, bson.M{"phone": phone})
	}
	if email != "" {
		or = append(or, bson.M{"email": email})
	}
	if len(or) == 0 {
		return false, nil
	}

	filter := bson.M{"$or": or}
	if !exclude.IsZero() {
		filter["_id"] = bson.M{"$ne": exclude}
	}
	count, err := s.col(usersCollection).CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) InsertUser(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	_, err := s.col(usersCollection).InsertOne(ctx, user)
	return translate(err)
}

// UpdateUserProfile unsets phone or email when patched to empty so the
// partial unique indexes ignore them.
func (s *Store) UpdateUserProfile(ctx context.Context, id primitive.ObjectID, patch services.ProfilePatch, at time.Time) (*models.User, error) {
	set := bson.M{"updatedAt": at}
	unset := bson.M{}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.PreferredLanguage != nil {
		set["preferredLanguage"] = *patch.PreferredLanguage
	}
	for field, value := range map[string]*string{"phone": patch.Phone, "email": patch.Email} {
		switch {
		case value == nil:
		case *value == "":
			unset[field] = ""
		default:
			set[field] = *value
		}
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user models.User
	if err := s.col(usersCollection).FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&user); err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *Store) SetAddresses(ctx context.Context, id primitive.ObjectID, addresses []models.Address, at time.Time) error {
	if addresses == nil {
		addresses = []models.Address{}
	}
	return s.updateMatched(ctx, usersCollection,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"deliveryAddresses": addresses, "updatedAt": at}})
}

func (s *Store) ListUsersByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: 1}}).
		SetProjection(bson.M{"passwordHash": 0})
	cursor, err := s.col(usersCollection).Find(ctx, bson.M{"userType": role}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := make([]models.User, 0)
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}
