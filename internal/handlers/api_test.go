package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"foodorder/internal/memstore"
	"foodorder/internal/models"
	"foodorder/internal/routes"
	"foodorder/internal/services"
)

const testSecret = "handlers-secret"

type testAPI struct {
	t      *testing.T
	router *gin.Engine
	store  *memstore.Store
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memstore.New()
	notifications := services.NewNotificationService(store)
	svc := routes.Services{
		Auth: services.NewAuthService(store, store, services.TokenSettings{
			Secret:        testSecret,
			AccessTTL:     time.Hour,
			RememberMeTTL: 24 * time.Hour,
			RefreshTTL:    24 * time.Hour,
		}),
		Profiles:      services.NewProfileService(store),
		Catalog:       services.NewCatalogService(store, store),
		Carts:         services.NewCartService(store, store),
		Orders:        services.NewOrderService(store, store, notifications),
		Ratings:       services.NewRatingService(store),
		Notifications: notifications,
	}
	if err := svc.Auth.SeedAdmin(context.Background(), "admin@example.com", "admin-pass"); err != nil {
		t.Fatalf("SeedAdmin: %v", err)
	}

	router := gin.New()
	routes.Register(router, svc, routes.Options{JWTSecret: testSecret})
	return &testAPI{t: t, router: router, store: store}
}

func (a *testAPI) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	a.t.Helper()
	var payload bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&payload).Encode(body); err != nil {
			a.t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &payload)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) expect(rec *httptest.ResponseRecorder, status int, out interface{}) {
	a.t.Helper()
	if rec.Code != status {
		a.t.Fatalf("expected status %d, got %d: %s", status, rec.Code, rec.Body.String())
	}
	if out != nil {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			a.t.Fatalf("decode response: %v (%s)", err, rec.Body.String())
		}
	}
}

func (a *testAPI) login(identifier, password string) (string, models.User) {
	a.t.Helper()
	var resp struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	a.expect(a.do(http.MethodPost, "/auth/login", "", gin.H{"identifier": identifier, "password": password}), http.StatusOK, &resp)
	if resp.Token == "" {
		a.t.Fatalf("login returned no token")
	}
	return resp.Token, resp.User
}

func (a *testAPI) register(role models.Role, phone string) (string, models.User) {
	a.t.Helper()
	a.expect(a.do(http.MethodPost, "/auth/register", "", gin.H{
		"userType": role,
		"name":     string(role) + " " + phone,
		"phone":    phone,
		"password": "secret1",
	}), http.StatusCreated, nil)
	return a.login(phone, "secret1")
}

type messageResponse struct {
	Message string   `json:"message"`
	Fields  []string `json:"fields"`
}

func TestOrderingFlow(t *testing.T) {
	api := newTestAPI(t)
	adminToken, _ := api.login("admin@example.com", "admin-pass")
	ownerToken, owner := api.register(models.RoleOwner, "01710000001")
	customerToken, customer := api.register(models.RoleCustomer, "01710000002")

	var created struct {
		Restaurant models.Restaurant `json:"restaurant"`
	}
	api.expect(api.do(http.MethodPost, "/admin/restaurants", adminToken, gin.H{
		"name":        "Kacchi House",
		"cuisineType": "Bangladeshi",
		"location":    gin.H{"city": "Dhaka", "area": "Dhanmondi"},
	}), http.StatusCreated, &created)
	restaurantID := created.Restaurant.ID.Hex()

	api.expect(api.do(http.MethodPost, "/admin/restaurants/assign-owner", adminToken, gin.H{
		"restaurantId": restaurantID,
		"ownerId":      owner.ID.Hex(),
	}), http.StatusOK, nil)

	var added struct {
		MenuItem models.MenuItem `json:"menuItem"`
	}
	api.expect(api.do(http.MethodPost, "/owner/restaurants/"+restaurantID+"/menu-items", ownerToken, gin.H{
		"name": "Kacchi", "description": "Mutton kacchi", "category": "Rice", "price": 100, "stock": 5,
	}), http.StatusCreated, &added)

	var cart models.Cart
	api.expect(api.do(http.MethodPost, "/cart/add", customerToken, gin.H{
		"menuItemId": added.MenuItem.ID.Hex(), "quantity": 2,
	}), http.StatusOK, &cart)
	if cart.Total != 260 || cart.DeliveryFee != 60 {
		t.Fatalf("expected total 260 with fee 60, got %+v", cart)
	}

	items := make([]models.OrderItem, 0, len(cart.Items))
	for _, line := range cart.Items {
		items = append(items, models.OrderItem{
			MenuItemID: line.MenuItemID, RestaurantID: line.RestaurantID,
			Name: line.Name, Price: line.Price, Quantity: line.Quantity,
		})
	}
	var placed struct {
		Message string       `json:"message"`
		Order   models.Order `json:"order"`
	}
	api.expect(api.do(http.MethodPost, "/orders/checkout", customerToken, gin.H{
		"customerName":  "Rahim",
		"customerPhone": "01710000002",
		"items":         items,
		"deliveryFee":   cart.DeliveryFee,
		"total":         cart.Total,
		"paymentMethod": "bKash",
	}), http.StatusCreated, &placed)
	if placed.Order.Status != models.StatusPending || placed.Order.UserID == nil || *placed.Order.UserID != customer.ID {
		t.Fatalf("unexpected order: %+v", placed.Order)
	}
	orderPath := "/orders/" + placed.Order.ID.Hex() + "/status"

	var stillThere models.Cart
	api.expect(api.do(http.MethodGet, "/cart", customerToken, nil), http.StatusOK, &stillThere)
	if len(stillThere.Items) != 1 {
		t.Fatalf("checkout must leave the cart alone, got %+v", stillThere)
	}

	var ownerOrders []models.Order
	api.expect(api.do(http.MethodGet, "/orders/owner", ownerToken, nil), http.StatusOK, &ownerOrders)
	if len(ownerOrders) != 1 {
		t.Fatalf("expected owner to see 1 order, got %d", len(ownerOrders))
	}

	var bad messageResponse
	api.expect(api.do(http.MethodPatch, orderPath, ownerToken, gin.H{"status": "Delivered"}), http.StatusBadRequest, &bad)
	if bad.Message == "" {
		t.Fatalf("expected a message for an illegal transition")
	}
	api.expect(api.do(http.MethodPatch, orderPath, customerToken, gin.H{"status": "Paid"}), http.StatusForbidden, nil)

	for _, status := range []models.OrderStatus{models.StatusPaid, models.StatusDelivered} {
		var updated struct {
			Order models.Order `json:"order"`
		}
		api.expect(api.do(http.MethodPatch, orderPath, ownerToken, gin.H{"status": status}), http.StatusOK, &updated)
		if updated.Order.Status != status {
			t.Fatalf("expected %s, got %s", status, updated.Order.Status)
		}
	}

	var tracking services.OrderTracking
	api.expect(api.do(http.MethodGet, orderPath, "", nil), http.StatusOK, &tracking)
	if tracking.Status != services.DisplayConfirmed {
		t.Fatalf("a fresh order should track as Confirmed, got %s", tracking.Status)
	}

	var rated struct {
		AverageRating float64 `json:"averageRating"`
		TotalRatings  int64   `json:"totalRatings"`
	}
	ratePath := "/restaurants/" + restaurantID + "/rate"
	api.expect(api.do(http.MethodPost, ratePath, customerToken, gin.H{"overallRating": 5}), http.StatusCreated, &rated)
	if rated.AverageRating != 5 || rated.TotalRatings != 1 {
		t.Fatalf("unexpected first rating summary: %+v", rated)
	}
	api.expect(api.do(http.MethodPost, ratePath, customerToken, gin.H{"overallRating": 3}), http.StatusOK, &rated)
	if rated.AverageRating != 3 || rated.TotalRatings != 1 {
		t.Fatalf("unexpected updated rating summary: %+v", rated)
	}

	var restaurant models.Restaurant
	api.expect(api.do(http.MethodGet, "/restaurants/"+restaurantID, "", nil), http.StatusOK, &restaurant)
	if restaurant.AverageRating != 3 || restaurant.TotalRatings != 1 || restaurant.RatingBreakdown.Three != 1 {
		t.Fatalf("restaurant cache not updated: %+v", restaurant)
	}

	var list struct {
		Count      int `json:"count"`
		Pagination struct {
			TotalPages int64 `json:"totalPages"`
		} `json:"pagination"`
	}
	api.expect(api.do(http.MethodGet, "/restaurants/"+restaurantID+"/ratings?limit=5", "", nil), http.StatusOK, &list)
	if list.Count != 1 || list.Pagination.TotalPages != 1 {
		t.Fatalf("unexpected ratings page: %+v", list)
	}
}

func TestCartErrorsOverHTTP(t *testing.T) {
	api := newTestAPI(t)
	customerToken, _ := api.register(models.RoleCustomer, "01720000001")

	item := models.MenuItem{ID: primitive.NewObjectID(), Name: "Fuchka", Price: 40, Stock: 2, IsAvailable: true}
	if err := api.store.InsertRestaurant(context.Background(), &models.Restaurant{
		Name: "Street Food", IsAvailable: true, DeliveryFee: 30, MenuItems: []models.MenuItem{item},
	}); err != nil {
		t.Fatalf("seed restaurant: %v", err)
	}

	var stock struct {
		Message   string `json:"message"`
		Available int    `json:"available"`
		Requested int    `json:"requested"`
	}
	api.expect(api.do(http.MethodPost, "/cart/add", customerToken, gin.H{"menuItemId": item.ID.Hex(), "quantity": 3}), http.StatusBadRequest, &stock)
	if stock.Available != 2 || stock.Requested != 3 {
		t.Fatalf("unexpected stock error: %+v", stock)
	}

	var msg messageResponse
	api.expect(api.do(http.MethodPost, "/cart/add", customerToken, gin.H{"menuItemId": item.ID.Hex(), "quantity": 0}), http.StatusBadRequest, &msg)
	if msg.Message != "Invalid item or quantity" {
		t.Fatalf("unexpected message %q", msg.Message)
	}

	api.expect(api.do(http.MethodPost, "/cart/add", customerToken, gin.H{"menuItemId": primitive.NewObjectID().Hex(), "quantity": 1}), http.StatusNotFound, nil)

	var empty models.Cart
	api.expect(api.do(http.MethodGet, "/cart", customerToken, nil), http.StatusOK, &empty)
	if len(empty.Items) != 0 || empty.Total != 0 {
		t.Fatalf("expected an empty cart, got %+v", empty)
	}
}

func TestAccessControlOverHTTP(t *testing.T) {
	api := newTestAPI(t)
	customerToken, _ := api.register(models.RoleCustomer, "01730000001")
	ownerToken, _ := api.register(models.RoleOwner, "01730000002")

	var msg messageResponse
	api.expect(api.do(http.MethodGet, "/cart", "", nil), http.StatusUnauthorized, &msg)
	if msg.Message != "Access denied. No token provided." {
		t.Fatalf("unexpected message %q", msg.Message)
	}

	api.expect(api.do(http.MethodGet, "/cart", ownerToken, nil), http.StatusForbidden, nil)
	api.expect(api.do(http.MethodPost, "/admin/restaurants", customerToken, gin.H{"name": "X"}), http.StatusForbidden, nil)
	api.expect(api.do(http.MethodGet, "/auth/owners", ownerToken, nil), http.StatusForbidden, nil)
	api.expect(api.do(http.MethodGet, "/orders/not-an-id/status", "", nil), http.StatusBadRequest, nil)

	api.expect(api.do(http.MethodPost, "/auth/register", "", gin.H{
		"userType": "Admin", "email": "root@example.com", "password": "secret1",
	}), http.StatusBadRequest, nil)
}

func TestGuestCheckoutValidation(t *testing.T) {
	api := newTestAPI(t)

	var msg messageResponse
	api.expect(api.do(http.MethodPost, "/orders/checkout", "", gin.H{"customerName": "Guest"}), http.StatusBadRequest, &msg)
	if len(msg.Fields) != 3 {
		t.Fatalf("expected three missing fields, got %v", msg.Fields)
	}

	var placed struct {
		Order models.Order `json:"order"`
	}
	api.expect(api.do(http.MethodPost, "/orders/checkout", "", gin.H{
		"customerName": "Guest", "customerPhone": "01900000000", "total": 150, "paymentMethod": "COD",
	}), http.StatusCreated, &placed)
	if placed.Order.UserID != nil {
		t.Fatalf("guest order must not have a user")
	}
}

func TestNotificationsOverHTTP(t *testing.T) {
	api := newTestAPI(t)
	token, user := api.register(models.RoleCustomer, "01740000001")

	api.expect(api.do(http.MethodGet, "/notifications/latest", token, nil), http.StatusOK, nil)

	notifications := services.NewNotificationService(api.store)
	n, err := notifications.Create(context.Background(), &models.Order{ID: primitive.NewObjectID(), Total: 99}, user.ID, models.NotificationOrderConfirmed)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	var count struct {
		Count int64 `json:"count"`
	}
	api.expect(api.do(http.MethodGet, "/notifications/unread-count", token, nil), http.StatusOK, &count)
	if count.Count != 1 {
		t.Fatalf("expected 1 unread, got %d", count.Count)
	}

	api.expect(api.do(http.MethodPatch, "/notifications/"+n.ID.Hex()+"/read", token, nil), http.StatusOK, nil)
	api.expect(api.do(http.MethodGet, "/notifications/unread-count", token, nil), http.StatusOK, &count)
	if count.Count != 0 {
		t.Fatalf("expected 0 unread, got %d", count.Count)
	}

	other, _ := api.register(models.RoleCustomer, "01740000002")
	api.expect(api.do(http.MethodPatch, "/notifications/"+n.ID.Hex()+"/read", other, nil), http.StatusNotFound, nil)
}
