// Package memstore is an in-memory implementation of the service store
// interfaces. It backs the service and handler tests.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"foodorder/internal/models"
	"foodorder/internal/services"
)

// Store keeps every collection in maps guarded by one mutex. Records are
// copied on the way in and out so callers never share memory with the store.
type Store struct {
	mu   sync.Mutex
	txMu sync.Mutex

	users         map[primitive.ObjectID]models.User
	restaurants   map[primitive.ObjectID]models.Restaurant
	carts         map[primitive.ObjectID]models.Cart
	orders        map[primitive.ObjectID]models.Order
	ratings       map[primitive.ObjectID]models.Rating
	notifications map[primitive.ObjectID]models.Notification
	refreshTokens map[primitive.ObjectID]models.RefreshToken

	faults map[string]error
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

func New() *Store {
	return &Store{
		users:         make(map[primitive.ObjectID]models.User),
		restaurants:   make(map[primitive.ObjectID]models.Restaurant),
		carts:         make(map[primitive.ObjectID]models.Cart),
		orders:        make(map[primitive.ObjectID]models.Order),
		ratings:       make(map[primitive.ObjectID]models.Rating),
		notifications: make(map[primitive.ObjectID]models.Notification),
		refreshTokens: make(map[primitive.ObjectID]models.RefreshToken),
		faults:        make(map[string]error),
	}
}

// Fail makes every later call of the named method return err. A nil err
// clears the fault.
func (s *Store) Fail(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.faults, op)
		return
	}
	s.faults[op] = err
}

// fault must be called with s.mu held.
func (s *Store) fault(op string) error {
	return s.faults[op]
}

// WithTransaction runs fn with transactions serialized. Ratings and
// restaurants are restored if fn fails.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	if err := s.fault("WithTransaction"); err != nil {
		s.mu.Unlock()
		return err
	}
	ratings := make(map[primitive.ObjectID]models.Rating, len(s.ratings))
	for id, r := range s.ratings {
		ratings[id] = copyRating(r)
	}
	restaurants := make(map[primitive.ObjectID]models.Restaurant, len(s.restaurants))
	for id, r := range s.restaurants {
		restaurants[id] = copyRestaurant(r)
	}
	s.mu.Unlock()

	if err := fn(ctx); err != nil {
		s.mu.Lock()
		s.ratings = ratings
		s.restaurants = restaurants
		s.mu.Unlock()
		return err
	}
	return nil
}

func copyRestaurant(r models.Restaurant) models.Restaurant {
	if r.OwnerID != nil {
		owner := *r.OwnerID
		r.OwnerID = &owner
	}
	if r.MenuItems != nil {
		r.MenuItems = append([]models.MenuItem(nil), r.MenuItems...)
	}
	return r
}

func copyCart(c models.Cart) models.Cart {
	if c.Items != nil {
		c.Items = append([]models.CartItem(nil), c.Items...)
	}
	return c
}

func copyOrder(o models.Order) models.Order {
	if o.Items != nil {
		o.Items = append([]models.OrderItem(nil), o.Items...)
	}
	if o.RestaurantIDs != nil {
		o.RestaurantIDs = append([]primitive.ObjectID(nil), o.RestaurantIDs...)
	}
	if o.UserID != nil {
		user := *o.UserID
		o.UserID = &user
	}
	return o
}

func copyRating(r models.Rating) models.Rating {
	if r.FoodItems != nil {
		r.FoodItems = append([]models.FoodItemRating(nil), r.FoodItems...)
	}
	return r
}

func copyUser(u models.User) models.User {
	if u.Addresses != nil {
		u.Addresses = append([]models.Address(nil), u.Addresses...)
	}
	return u
}

func copyNotification(n models.Notification) models.Notification {
	if n.ReadAt != nil {
		at := *n.ReadAt
		n.ReadAt = &at
	}
	return n
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// Restaurants

func (s *Store) FindRestaurant(ctx context.Context, id primitive.ObjectID) (*models.Restaurant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("FindRestaurant"); err != nil {
		return nil, err
	}
	r, ok := s.restaurants[id]
	if !ok {
		return nil, services.ErrNoRecord
	}
	out := copyRestaurant(r)
	return &out, nil
}

func (s *Store) FindMenuItem(ctx context.Context, itemID primitive.ObjectID) (*models.Restaurant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("FindMenuItem"); err != nil {
		return nil, err
	}
	for _, r := range s.restaurants {
		if _, ok := r.FindMenuItem(itemID); ok {
			out := copyRestaurant(r)
			return &out, nil
		}
	}
	return nil, services.ErrNoRecord
}

func (s *Store) ListRestaurants(ctx context.Context, filter services.RestaurantFilter) ([]models.Restaurant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("ListRestaurants"); err != nil {
		return nil, err
	}
	out := make([]models.Restaurant, 0)
	for _, r := range s.restaurants {
		if filter.Location != "" && !containsFold(r.Location.City, filter.Location) && !containsFold(r.Location.Area, filter.Location) {
			continue
		}
		if filter.Cuisine != "" && !containsFold(r.CuisineType, filter.Cuisine) {
			continue
		}
		if filter.Available != nil && r.IsAvailable != *filter.Available {
			continue
		}
		if filter.OwnerID != nil && !r.IsOwnedBy(*filter.OwnerID) {
			continue
		}
		out = append(out, copyRestaurant(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) InsertRestaurant(ctx context.Context, r *models.Restaurant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("InsertRestaurant"); err != nil {
		return err
	}
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	s.restaurants[r.ID] = copyRestaurant(*r)
	return nil
}

func (s *Store) UpdateRestaurant(ctx context.Context, id primitive.ObjectID, patch services.RestaurantPatch, at time.Time) (*models.Restaurant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("UpdateRestaurant"); err != nil {
		return nil, err
	}
	r, ok := s.restaurants[id]
	if !ok {
		return nil, services.ErrNoRecord
	}
	if patch.Name != nil {
		r.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		r.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Location != nil {
		r.Location = *patch.Location
	}
	if patch.CuisineType != nil {
		r.CuisineType = strings.TrimSpace(*patch.CuisineType)
	}
	if patch.IsAvailable != nil {
		r.IsAvailable = *patch.IsAvailable
	}
	if patch.EstimatedDeliveryTime != nil {
		r.EstimatedDeliveryTime = *patch.EstimatedDeliveryTime
	}
	if patch.DeliveryFee != nil {
		r.DeliveryFee = *patch.DeliveryFee
	}
	if patch.MinOrderAmount != nil {
		r.MinOrderAmount = *patch.MinOrderAmount
	}
	r.UpdatedAt = at
	s.restaurants[id] = r
	out := copyRestaurant(r)
	return &out, nil
}

func (s *Store) DeleteRestaurant(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("DeleteRestaurant"); err != nil {
		return err
	}
	if _, ok := s.restaurants[id]; !ok {
		return services.ErrNoRecord
	}
	delete(s.restaurants, id)
	return nil
}

func (s *Store) SetRestaurantOwner(ctx context.Context, id, ownerID primitive.ObjectID, at time.Time) error {
	return s.editRestaurant("SetRestaurantOwner", id, at, func(r *models.Restaurant) bool {
		owner := ownerID
		r.OwnerID = &owner
		return true
	})
}

func (s *Store) PushMenuItem(ctx context.Context, restaurantID primitive.ObjectID, item models.MenuItem, at time.Time) error {
	return s.editRestaurant("PushMenuItem", restaurantID, at, func(r *models.Restaurant) bool {
		r.MenuItems = append(r.MenuItems, item)
		return true
	})
}

func (s *Store) SetMenuItem(ctx context.Context, restaurantID primitive.ObjectID, item models.MenuItem, at time.Time) error {
	return s.editRestaurant("SetMenuItem", restaurantID, at, func(r *models.Restaurant) bool {
		current, ok := r.FindMenuItem(item.ID)
		if ok {
			*current = item
		}
		return ok
	})
}

func (s *Store) PullMenuItem(ctx context.Context, restaurantID, itemID primitive.ObjectID, at time.Time) error {
	return s.editRestaurant("PullMenuItem", restaurantID, at, func(r *models.Restaurant) bool {
		for i := range r.MenuItems {
			if r.MenuItems[i].ID == itemID {
				r.MenuItems = append(r.MenuItems[:i], r.MenuItems[i+1:]...)
				return true
			}
		}
		return false
	})
}

// editRestaurant applies edit to a copy and stores it when edit reports a match.
func (s *Store) editRestaurant(op string, id primitive.ObjectID, at time.Time, edit func(r *models.Restaurant) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault(op); err != nil {
		return err
	}
	stored, ok := s.restaurants[id]
	if !ok {
		return services.ErrNoRecord
	}
	r := copyRestaurant(stored)
	if !edit(&r) {
		return services.ErrNoRecord
	}
	if !at.IsZero() {
		r.UpdatedAt = at
	}
	s.restaurants[id] = r
	return nil
}

// Carts

func (s *Store) FindCart(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("FindCart"); err != nil {
		return nil, err
	}
	c, ok := s.carts[userID]
	if !ok {
		return nil, services.ErrNoRecord
	}
	out := copyCart(c)
	return &out, nil
}

func (s *Store) SaveCart(ctx context.Context, cart *models.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("SaveCart"); err != nil {
		return err
	}
	if cart.ID.IsZero() {
		if existing, ok := s.carts[cart.UserID]; ok {
			cart.ID = existing.ID
		} else {
			cart.ID = primitive.NewObjectID()
		}
	}
	s.carts[cart.UserID] = copyCart(*cart)
	return nil
}

func (s *Store) DeleteCart(ctx context.Context, userID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("DeleteCart"); err != nil {
		return err
	}
	delete(s.carts, userID)
	return nil
}

// Orders

func (s *Store) InsertOrder(ctx context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("InsertOrder"); err != nil {
		return err
	}
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	s.orders[order.ID] = copyOrder(*order)
	return nil
}

func (s *Store) FindOrder(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("FindOrder"); err != nil {
		return nil, err
	}
	o, ok := s.orders[id]
	if !ok {
		return nil, services.ErrNoRecord
	}
	out := copyOrder(o)
	return &out, nil
}

func (s *Store) ListOrders(ctx context.Context, filter services.OrderFilter) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("ListOrders"); err != nil {
		return nil, err
	}
	out := make([]models.Order, 0)
	for _, o := range s.orders {
		if filter.UserID != nil && (o.UserID == nil || *o.UserID != *filter.UserID) {
			continue
		}
		if filter.RestaurantIDs != nil && !sharesID(o.RestaurantIDs, filter.RestaurantIDs) {
			continue
		}
		out = append(out, copyOrder(o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func sharesID(a, b []primitive.ObjectID) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

func (s *Store) CompareAndSetStatus(ctx context.Context, id primitive.ObjectID, from, to models.OrderStatus, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("CompareAndSetStatus"); err != nil {
		return err
	}
	o, ok := s.orders[id]
	if !ok || o.Status != from {
		return services.ErrNoRecord
	}
	o.Status = to
	o.UpdatedAt = at
	s.orders[id] = o
	return nil
}

// Ratings

func (s *Store) TouchRestaurantRatings(ctx context.Context, restaurantID primitive.ObjectID) error {
	return s.editRestaurant("TouchRestaurantRatings", restaurantID, time.Time{}, func(r *models.Restaurant) bool {
		r.RatingRevision++
		return true
	})
}

func (s *Store) FindRating(ctx context.Context, restaurantID, userID primitive.ObjectID) (*models.Rating, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("FindRating"); err != nil {
		return nil, err
	}
	for _, r := range s.ratings {
		if r.RestaurantID == restaurantID && r.UserID == userID {
			out := copyRating(r)
			return &out, nil
		}
	}
	return nil, services.ErrNoRecord
}

func (s *Store) InsertRating(ctx context.Context, rating *models.Rating) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("InsertRating"); err != nil {
		return err
	}
	for _, r := range s.ratings {
		if r.RestaurantID == rating.RestaurantID && r.UserID == rating.UserID {
			return services.ErrDuplicate
		}
	}
	if rating.ID.IsZero() {
		rating.ID = primitive.NewObjectID()
	}
	s.ratings[rating.ID] = copyRating(*rating)
	return nil
}

func (s *Store) ReplaceRating(ctx context.Context, rating *models.Rating) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("ReplaceRating"); err != nil {
		return err
	}
	if _, ok := s.ratings[rating.ID]; !ok {
		return services.ErrNoRecord
	}
	s.ratings[rating.ID] = copyRating(*rating)
	return nil
}

func (s *Store) DeleteRating(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("DeleteRating"); err != nil {
		return err
	}
	if _, ok := s.ratings[id]; !ok {
		return services.ErrNoRecord
	}
	delete(s.ratings, id)
	return nil
}

func (s *Store) RatingStats(ctx context.Context, restaurantID primitive.ObjectID) (models.RatingStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("RatingStats"); err != nil {
		return models.RatingStats{}, err
	}
	var stats models.RatingStats
	var food, service, delivery mean
	for _, r := range s.ratings {
		if r.RestaurantID != restaurantID {
			continue
		}
		stats.Breakdown.Add(r.OverallRating, 1)
		food.add(r.Experience.Food)
		service.add(r.Experience.Service)
		delivery.add(r.Experience.Delivery)
	}
	stats.AvgFood = food.value()
	stats.AvgService = service.value()
	stats.AvgDelivery = delivery.value()
	return stats, nil
}

// mean averages the scores that were given, skipping zeros.
type mean struct {
	sum, n int
}

func (m *mean) add(v int) {
	if v > 0 {
		m.sum += v
		m.n++
	}
}

func (m mean) value() float64 {
	if m.n == 0 {
		return 0
	}
	return float64(m.sum) / float64(m.n)
}

func (s *Store) SetRestaurantRating(ctx context.Context, restaurantID primitive.ObjectID, summary models.RatingSummary) error {
	return s.editRestaurant("SetRestaurantRating", restaurantID, time.Time{}, func(r *models.Restaurant) bool {
		r.AverageRating = summary.AverageRating
		r.TotalRatings = summary.TotalRatings
		r.RatingBreakdown = summary.Breakdown
		return true
	})
}

func (s *Store) ListRatings(ctx context.Context, restaurantID primitive.ObjectID, page services.Page) ([]models.Rating, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("ListRatings"); err != nil {
		return nil, 0, err
	}
	all := make([]models.Rating, 0)
	for _, r := range s.ratings {
		if r.RestaurantID == restaurantID {
			all = append(all, copyRating(r))
		}
	}
	less := func(a, b models.Rating) bool {
		if page.SortBy == "overallRating" && a.OverallRating != b.OverallRating {
			return a.OverallRating < b.OverallRating
		}
		return a.CreatedAt.Before(b.CreatedAt)
	}
	sort.SliceStable(all, func(i, j int) bool {
		if page.Ascending {
			return less(all[i], all[j])
		}
		return less(all[j], all[i])
	})

	total := int64(len(all))
	start := (page.Page - 1) * page.Limit
	if start < 0 {
		start = 0
	}
	if start >= total {
		return []models.Rating{}, total, nil
	}
	end := start + page.Limit
	if page.Limit <= 0 || end > total {
		end = total
	}
	return all[start:end], total, nil
}

// Notifications

func (s *Store) InsertNotification(ctx context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("InsertNotification"); err != nil {
		return err
	}
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	s.notifications[n.ID] = copyNotification(*n)
	return nil
}

func (s *Store) userNotifications(userID primitive.ObjectID) []models.Notification {
	out := make([]models.Notification, 0)
	for _, n := range s.notifications {
		if n.UserID == userID {
			out = append(out, copyNotification(n))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *Store) ListNotifications(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("ListNotifications"); err != nil {
		return nil, err
	}
	out := s.userNotifications(userID)
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) LatestNotification(ctx context.Context, userID primitive.ObjectID) (*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("LatestNotification"); err != nil {
		return nil, err
	}
	out := s.userNotifications(userID)
	if len(out) == 0 {
		return nil, services.ErrNoRecord
	}
	return &out[0], nil
}

func (s *Store) CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("CountUnread"); err != nil {
		return 0, err
	}
	var count int64
	for _, n := range s.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (s *Store) MarkNotificationRead(ctx context.Context, id, userID primitive.ObjectID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("MarkNotificationRead"); err != nil {
		return err
	}
	n, ok := s.notifications[id]
	if !ok || n.UserID != userID {
		return services.ErrNoRecord
	}
	n.IsRead = true
	n.ReadAt = &at
	n.UpdatedAt = at
	s.notifications[id] = n
	return nil
}

func (s *Store) MarkAllNotificationsRead(ctx context.Context, userID primitive.ObjectID, at time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("MarkAllNotificationsRead"); err != nil {
		return 0, err
	}
	var modified int64
	for id, n := range s.notifications {
		if n.UserID != userID || n.IsRead {
			continue
		}
		readAt := at
		n.IsRead = true
		n.ReadAt = &readAt
		n.UpdatedAt = at
		s.notifications[id] = n
		modified++
	}
	return modified, nil
}

// Users

func (s *Store) FindUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("FindUser"); err != nil {
		return nil, err
	}
	u, ok := s.users[id]
	if !ok {
		return nil, services.ErrNoRecord
	}
	out := copyUser(u)
	return &out, nil
}

func (s *Store) FindUserByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("FindUserByIdentifier"); err != nil {
		return nil, err
	}
	for _, u := range s.users {
		if (u.Phone != "" && u.Phone == identifier) || (u.Email != "" && u.Email == identifier) {
			out := copyUser(u)
			return &out, nil
		}
	}
	return nil, services.ErrNoRecord
}

// identityTaken must be called with s.mu held.
func (s *Store) identityTaken(phone, email string, exclude primitive.ObjectID) bool {
	for id, u := range s.users {
		if id == exclude {
			continue
		}
		if (phone != "" && u.Phone == phone) || (email != "" && u.Email == email) {
			return true
		}
	}
	return false
}

func (s *Store) IdentityTaken(ctx context.Context, phone, email string, exclude primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("IdentityTaken"); err != nil {
		return false, err
	}
	return s.identityTaken(phone, email, exclude), nil
}

func (s *Store) InsertUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("InsertUser"); err != nil {
		return err
	}
	if s.identityTaken(user.Phone, user.Email, primitive.NilObjectID) {
		return services.ErrDuplicate
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	s.users[user.ID] = copyUser(*user)
	return nil
}

func (s *Store) UpdateUserProfile(ctx context.Context, id primitive.ObjectID, patch services.ProfilePatch, at time.Time) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("UpdateUserProfile"); err != nil {
		return nil, err
	}
	u, ok := s.users[id]
	if !ok {
		return nil, services.ErrNoRecord
	}
	if patch.Name != nil {
		u.Name = *patch.Name
	}
	if patch.Phone != nil {
		u.Phone = *patch.Phone
	}
	if patch.Email != nil {
		u.Email = *patch.Email
	}
	if patch.PreferredLanguage != nil {
		u.PreferredLanguage = *patch.PreferredLanguage
	}
	if s.identityTaken(u.Phone, u.Email, id) {
		return nil, services.ErrDuplicate
	}
	u.UpdatedAt = at
	s.users[id] = u
	out := copyUser(u)
	return &out, nil
}

func (s *Store) SetAddresses(ctx context.Context, id primitive.ObjectID, addresses []models.Address, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("SetAddresses"); err != nil {
		return err
	}
	u, ok := s.users[id]
	if !ok {
		return services.ErrNoRecord
	}
	u.Addresses = append([]models.Address{}, addresses...)
	u.UpdatedAt = at
	s.users[id] = u
	return nil
}

func (s *Store) ListUsersByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("ListUsersByRole"); err != nil {
		return nil, err
	}
	out := make([]models.User, 0)
	for _, u := range s.users {
		if u.Role == role {
			out = append(out, copyUser(u))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Refresh tokens

func (s *Store) InsertRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("InsertRefreshToken"); err != nil {
		return err
	}
	if token.ID.IsZero() {
		token.ID = primitive.NewObjectID()
	}
	s.refreshTokens[token.ID] = *token
	return nil
}

func (s *Store) FindActiveRefreshToken(ctx context.Context, hash string) (*models.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("FindActiveRefreshToken"); err != nil {
		return nil, err
	}
	for _, t := range s.refreshTokens {
		if t.TokenHash == hash && !t.Revoked {
			out := t
			return &out, nil
		}
	}
	return nil, services.ErrNoRecord
}

func (s *Store) RevokeRefreshToken(ctx context.Context, id primitive.ObjectID, replacedBy *primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("RevokeRefreshToken"); err != nil {
		return err
	}
	t, ok := s.refreshTokens[id]
	if !ok {
		return services.ErrNoRecord
	}
	t.Revoked = true
	if replacedBy != nil {
		next := *replacedBy
		t.ReplacedByToken = &next
	}
	s.refreshTokens[id] = t
	return nil
}

func (s *Store) RevokeRefreshTokenByHash(ctx context.Context, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("RevokeRefreshTokenByHash"); err != nil {
		return err
	}
	for id, t := range s.refreshTokens {
		if t.TokenHash == hash && !t.Revoked {
			t.Revoked = true
			s.refreshTokens[id] = t
			return nil
		}
	}
	return services.ErrNoRecord
}
