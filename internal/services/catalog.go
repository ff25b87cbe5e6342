package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"foodorder/internal/authz"
	"foodorder/internal/models"
)

// RestaurantInput carries the fields an admin sets when creating a restaurant.
type RestaurantInput struct {
	Name                  string
	Description           string
	Location              models.Location
	CuisineType           string
	IsAvailable           *bool
	EstimatedDeliveryTime *models.DeliveryWindow
	DeliveryFee           *float64
	MinOrderAmount        *float64
}

// MenuItemInput carries a menu item body. Pointer fields are optional on update.
type MenuItemInput struct {
	Name        *string
	Description *string
	Price       *float64
	Category    *string
	Image       *string
	IsAvailable *bool
	Stock       *int
}

// CatalogService manages restaurants and their embedded menus.
type CatalogService struct {
	restaurants RestaurantStore
	users       UserStore
	now         func() time.Time
}

func NewCatalogService(restaurants RestaurantStore, users UserStore) *CatalogService {
	return &CatalogService{restaurants: restaurants, users: users, now: time.Now}
}

func requireCapability(p *models.Principal, capability authz.Capability, message string) error {
	if p == nil {
		return unauthenticated("Access denied. No token provided.")
	}
	if !authz.Can(p, capability) {
		return forbidden(message)
	}
	return nil
}

// List returns restaurants matching every non-empty filter.
func (s *CatalogService) List(ctx context.Context, filter RestaurantFilter) ([]models.Restaurant, error) {
	filter.Location = strings.TrimSpace(filter.Location)
	filter.Cuisine = strings.TrimSpace(filter.Cuisine)
	list, err := s.restaurants.ListRestaurants(ctx, filter)
	if err != nil {
		return nil, internal("Failed to fetch restaurants", err)
	}
	return list, nil
}

func (s *CatalogService) Get(ctx context.Context, id primitive.ObjectID) (*models.Restaurant, error) {
	r, err := s.restaurants.FindRestaurant(ctx, id)
	if errors.Is(err, ErrNoRecord) {
		return nil, notFound("Restaurant not found")
	}
	if err != nil {
		return nil, internal("Failed to fetch restaurant", err)
	}
	return r, nil
}

func (s *CatalogService) AdminList(ctx context.Context, p *models.Principal) ([]models.Restaurant, error) {
	if err := requireCapability(p, authz.ManageRestaurants, "Access denied. Admins only."); err != nil {
		return nil, err
	}
	return s.List(ctx, RestaurantFilter{})
}

func (s *CatalogService) Create(ctx context.Context, p *models.Principal, in RestaurantInput) (*models.Restaurant, error) {
	if err := requireCapability(p, authz.ManageRestaurants, "Access denied. Admins only."); err != nil {
		return nil, err
	}

	in.Name = strings.TrimSpace(in.Name)
	in.CuisineType = strings.TrimSpace(in.CuisineType)
	in.Location.City = strings.TrimSpace(in.Location.City)
	missing := make([]string, 0)
	if in.Name == "" {
		missing = append(missing, "name")
	}
	if in.Location.City == "" {
		missing = append(missing, "location.city")
	}
	if in.CuisineType == "" {
		missing = append(missing, "cuisineType")
	}
	if len(missing) > 0 {
		return nil, validationError("missing required fields", missing...)
	}

	now := s.now()
	r := &models.Restaurant{
		Name:                  in.Name,
		Description:           strings.TrimSpace(in.Description),
		Location:              in.Location,
		CuisineType:           in.CuisineType,
		IsAvailable:           true,
		MenuItems:             []models.MenuItem{},
		EstimatedDeliveryTime: models.DeliveryWindow{Min: 30, Max: 45},
		DeliveryFee:           models.DefaultDeliveryFee,
		MinOrderAmount:        models.DefaultMinOrderAmount,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if in.IsAvailable != nil {
		r.IsAvailable = *in.IsAvailable
	}
	if in.EstimatedDeliveryTime != nil {
		r.EstimatedDeliveryTime = *in.EstimatedDeliveryTime
	}
	if in.DeliveryFee != nil {
		r.DeliveryFee = *in.DeliveryFee
	}
	if in.MinOrderAmount != nil {
		r.MinOrderAmount = *in.MinOrderAmount
	}
	if err := validateRestaurantNumbers(r.DeliveryFee, r.MinOrderAmount, r.EstimatedDeliveryTime); err != nil {
		return nil, err
	}

	if err := s.restaurants.InsertRestaurant(ctx, r); err != nil {
		return nil, internal("Failed to create restaurant", err)
	}
	return r, nil
}

func validateRestaurantNumbers(fee, minOrder float64, window models.DeliveryWindow) error {
	if fee < 0 {
		return validationError("deliveryFee cannot be negative", "deliveryFee")
	}
	if minOrder < 0 {
		return validationError("minOrderAmount cannot be negative", "minOrderAmount")
	}
	if window.Min < 0 || window.Max < window.Min {
		return validationError("estimatedDeliveryTime is invalid", "estimatedDeliveryTime")
	}
	return nil
}

func (patch RestaurantPatch) validate() error {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return validationError("name cannot be empty", "name")
	}
	if patch.CuisineType != nil && strings.TrimSpace(*patch.CuisineType) == "" {
		return validationError("cuisineType cannot be empty", "cuisineType")
	}
	if patch.Location != nil && strings.TrimSpace(patch.Location.City) == "" {
		return validationError("location.city cannot be empty", "location.city")
	}
	if patch.DeliveryFee != nil && *patch.DeliveryFee < 0 {
		return validationError("deliveryFee cannot be negative", "deliveryFee")
	}
	if patch.MinOrderAmount != nil && *patch.MinOrderAmount < 0 {
		return validationError("minOrderAmount cannot be negative", "minOrderAmount")
	}
	if w := patch.EstimatedDeliveryTime; w != nil && (w.Min < 0 || w.Max < w.Min) {
		return validationError("estimatedDeliveryTime is invalid", "estimatedDeliveryTime")
	}
	return nil
}

// loadManaged returns the restaurant if p may manage it: admins always, owners
// only for restaurants assigned to them.
func (s *CatalogService) loadManaged(ctx context.Context, p *models.Principal, id primitive.ObjectID) (*models.Restaurant, error) {
	if p == nil {
		return nil, unauthenticated("Access denied. No token provided.")
	}
	if !authz.Can(p, authz.ManageRestaurants) && !authz.Can(p, authz.ManageOwnMenu) {
		return nil, forbidden("Access denied")
	}
	r, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanManageRestaurant(p, r) {
		return nil, forbidden("You do not own this restaurant")
	}
	return r, nil
}

// Update applies patch to a restaurant. Admins may edit any restaurant and
// owners only their own.
func (s *CatalogService) Update(ctx context.Context, p *models.Principal, id primitive.ObjectID, patch RestaurantPatch) (*models.Restaurant, error) {
	if _, err := s.loadManaged(ctx, p, id); err != nil {
		return nil, err
	}
	if err := patch.validate(); err != nil {
		return nil, err
	}

	r, err := s.restaurants.UpdateRestaurant(ctx, id, patch, s.now())
	if errors.Is(err, ErrNoRecord) {
		return nil, notFound("Restaurant not found")
	}
	if err != nil {
		return nil, internal("Failed to update restaurant", err)
	}
	return r, nil
}

func (s *CatalogService) Delete(ctx context.Context, p *models.Principal, id primitive.ObjectID) error {
	if err := requireCapability(p, authz.ManageRestaurants, "Access denied. Admins only."); err != nil {
		return err
	}
	err := s.restaurants.DeleteRestaurant(ctx, id)
	if errors.Is(err, ErrNoRecord) {
		return notFound("Restaurant not found")
	}
	if err != nil {
		return internal("Failed to delete restaurant", err)
	}
	return nil
}

// AssignOwner hands a restaurant to a user registered as Owner.
func (s *CatalogService) AssignOwner(ctx context.Context, p *models.Principal, restaurantID, ownerID primitive.ObjectID) (*models.Restaurant, error) {
	if err := requireCapability(p, authz.ManageRestaurants, "Access denied. Admins only."); err != nil {
		return nil, err
	}

	owner, err := s.users.FindUser(ctx, ownerID)
	if errors.Is(err, ErrNoRecord) {
		return nil, notFound("Owner not found")
	}
	if err != nil {
		return nil, internal("Failed to assign owner", err)
	}
	if owner.Role != models.RoleOwner {
		return nil, validationError("User is not a restaurant owner", "ownerId")
	}

	err = s.restaurants.SetRestaurantOwner(ctx, restaurantID, ownerID, s.now())
	if errors.Is(err, ErrNoRecord) {
		return nil, notFound("Restaurant not found")
	}
	if err != nil {
		return nil, internal("Failed to assign owner", err)
	}
	return s.Get(ctx, restaurantID)
}

func (s *CatalogService) OwnedRestaurants(ctx context.Context, p *models.Principal) ([]models.Restaurant, error) {
	if err := requireCapability(p, authz.ManageOwnMenu, "Access denied. Restaurant owners only."); err != nil {
		return nil, err
	}
	owner := p.ID
	return s.List(ctx, RestaurantFilter{OwnerID: &owner})
}

func (s *CatalogService) loadOwnMenu(ctx context.Context, p *models.Principal, restaurantID primitive.ObjectID) (*models.Restaurant, error) {
	if err := requireCapability(p, authz.ManageOwnMenu, "Access denied. Restaurant owners only."); err != nil {
		return nil, err
	}
	return s.loadManaged(ctx, p, restaurantID)
}

func (in MenuItemInput) apply(item *models.MenuItem) {
	if in.Name != nil {
		item.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		item.Description = strings.TrimSpace(*in.Description)
	}
	if in.Price != nil {
		item.Price = *in.Price
	}
	if in.Category != nil {
		item.Category = strings.TrimSpace(*in.Category)
	}
	if in.Image != nil {
		item.Image = strings.TrimSpace(*in.Image)
	}
	if in.IsAvailable != nil {
		item.IsAvailable = *in.IsAvailable
	}
	if in.Stock != nil {
		item.Stock = *in.Stock
	}
}

func validateMenuItem(item models.MenuItem) error {
	missing := make([]string, 0)
	if item.Name == "" {
		missing = append(missing, "name")
	}
	if item.Description == "" {
		missing = append(missing, "description")
	}
	if item.Category == "" {
		missing = append(missing, "category")
	}
	if len(missing) > 0 {
		return validationError("missing required fields", missing...)
	}
	if item.Price <= 0 {
		return validationError("price must be greater than 0", "price")
	}
	if item.Stock < 0 {
		return validationError("stock cannot be negative", "stock")
	}
	return nil
}

// AddMenuItem appends a new item to an owned restaurant's menu.
func (s *CatalogService) AddMenuItem(ctx context.Context, p *models.Principal, restaurantID primitive.ObjectID, in MenuItemInput) (*models.MenuItem, error) {
	if _, err := s.loadOwnMenu(ctx, p, restaurantID); err != nil {
		return nil, err
	}

	item := models.MenuItem{ID: primitive.NewObjectID(), IsAvailable: true}
	in.apply(&item)
	if in.Stock == nil {
		return nil, validationError("missing required fields", "stock")
	}
	if in.Price == nil {
		return nil, validationError("missing required fields", "price")
	}
	if err := validateMenuItem(item); err != nil {
		return nil, err
	}

	err := s.restaurants.PushMenuItem(ctx, restaurantID, item, s.now())
	if errors.Is(err, ErrNoRecord) {
		return nil, notFound("Restaurant not found")
	}
	if err != nil {
		return nil, internal("Failed to add menu item", err)
	}
	return &item, nil
}

func (s *CatalogService) UpdateMenuItem(ctx context.Context, p *models.Principal, restaurantID, itemID primitive.ObjectID, in MenuItemInput) (*models.MenuItem, error) {
	r, err := s.loadOwnMenu(ctx, p, restaurantID)
	if err != nil {
		return nil, err
	}
	current, ok := r.FindMenuItem(itemID)
	if !ok {
		return nil, notFound("Menu item not found")
	}

	item := *current
	in.apply(&item)
	if err := validateMenuItem(item); err != nil {
		return nil, err
	}

	err = s.restaurants.SetMenuItem(ctx, restaurantID, item, s.now())
	if errors.Is(err, ErrNoRecord) {
		return nil, notFound("Menu item not found")
	}
	if err != nil {
		return nil, internal("Failed to update menu item", err)
	}
	return &item, nil
}

func (s *CatalogService) DeleteMenuItem(ctx context.Context, p *models.Principal, restaurantID, itemID primitive.ObjectID) error {
	r, err := s.loadOwnMenu(ctx, p, restaurantID)
	if err != nil {
		return err
	}
	if _, ok := r.FindMenuItem(itemID); !ok {
		return notFound("Menu item not found")
	}

	err = s.restaurants.PullMenuItem(ctx, restaurantID, itemID, s.now())
	if errors.Is(err, ErrNoRecord) {
		return notFound("Menu item not found")
	}
	if err != nil {
		return internal("Failed to delete menu item", err)
	}
	return nil
}
