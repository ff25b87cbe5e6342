package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is the account type a user registered with.
type Role string

const (
	RoleAdmin    Role = "Admin"
	RoleOwner    Role = "Owner"
	RoleCustomer Role = "Customer"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleOwner, RoleCustomer:
		return true
	}
	return false
}

// Address is a customer delivery address.
type Address struct {
	ID        string `bson:"id" json:"id"`
	Street    string `bson:"street" json:"street"`
	Area      string `bson:"area" json:"area"`
	District  string `bson:"district" json:"district"`
	City      string `bson:"city" json:"city"`
	IsDefault bool   `bson:"isDefault" json:"isDefault"`
}

// User represents the application user account. Phone and email are sparse:
// at least one is set and each is unique when present.
type User struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Role              Role               `bson:"userType" json:"userType"`
	Name              string             `bson:"name,omitempty" json:"name,omitempty"`
	Phone             string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Email             string             `bson:"email,omitempty" json:"email,omitempty"`
	PasswordHash      string             `bson:"passwordHash" json:"-"`
	PreferredLanguage string             `bson:"preferredLanguage,omitempty" json:"preferredLanguage,omitempty"`
	Addresses         []Address          `bson:"deliveryAddresses" json:"deliveryAddresses"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Principal is the authenticated caller of a request.
type Principal struct {
	ID   primitive.ObjectID
	Role Role
}

func (p *Principal) Is(role Role) bool {
	return p != nil && p.Role == role
}
