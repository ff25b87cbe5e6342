// Package authz is the single place that decides what a role may do.
// Handlers and services ask for a capability instead of comparing roles.
package authz

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"foodorder/internal/models"
)

type Capability string

const (
	ManageRestaurants Capability = "restaurants:manage"
	ListOwners        Capability = "users:list-owners"
	ManageOwnMenu     Capability = "menu:manage-own"
	UseCart           Capability = "cart:use"
	Checkout          Capability = "orders:checkout"
	ManageAddresses   Capability = "addresses:manage"
	ViewOwnerOrders   Capability = "orders:view-owner"
	UpdateOrderStatus Capability = "orders:update-status"
	ViewAllOrders     Capability = "orders:view-all"
	RateRestaurants   Capability = "ratings:write"
)

var policy = map[Capability][]models.Role{
	ManageRestaurants: {models.RoleAdmin},
	ListOwners:        {models.RoleAdmin},
	ManageOwnMenu:     {models.RoleOwner},
	UseCart:           {models.RoleCustomer},
	Checkout:          {models.RoleCustomer},
	ManageAddresses:   {models.RoleCustomer},
	ViewOwnerOrders:   {models.RoleOwner},
	UpdateOrderStatus: {models.RoleOwner, models.RoleAdmin},
	ViewAllOrders:     {models.RoleAdmin},
	RateRestaurants:   {models.RoleCustomer, models.RoleOwner, models.RoleAdmin},
}

// Allows reports whether role holds capability.
func Allows(role models.Role, capability Capability) bool {
	for _, r := range policy[capability] {
		if r == role {
			return true
		}
	}
	return false
}

// Can is Allows for a possibly nil principal.
func Can(p *models.Principal, capability Capability) bool {
	return p != nil && Allows(p.Role, capability)
}

// CanManageRestaurant is true for admins and for the owner assigned to r.
func CanManageRestaurant(p *models.Principal, r *models.Restaurant) bool {
	if p == nil || r == nil {
		return false
	}
	if Can(p, ManageRestaurants) {
		return true
	}
	return Can(p, ManageOwnMenu) && r.IsOwnedBy(p.ID)
}

// CanUpdateOrder is true for admins and for owners of at least one restaurant
// the order was placed with. owned lists the restaurants p is assigned to.
func CanUpdateOrder(p *models.Principal, order *models.Order, owned []primitive.ObjectID) bool {
	if !Can(p, UpdateOrderStatus) || order == nil {
		return false
	}
	if p.Role == models.RoleAdmin {
		return true
	}
	for _, rid := range order.RestaurantIDs {
		for _, oid := range owned {
			if rid == oid {
				return true
			}
		}
	}
	return false
}
