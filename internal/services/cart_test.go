package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"foodorder/internal/memstore"
	"foodorder/internal/models"
	"foodorder/internal/services"
)

func newCartService(store *memstore.Store) *services.CartService {
	svc := services.NewCartService(store, store)
	services.SetCartClock(svc, func() time.Time { return baseTime })
	return svc
}

func TestGetCartReturnsEmptyShapeWhenMissing(t *testing.T) {
	svc := newCartService(memstore.New())

	cart, err := svc.GetCart(context.Background(), primitive.NewObjectID())
	if err != nil {
		t.Fatalf("GetCart returned error: %v", err)
	}
	if cart.Items == nil || len(cart.Items) != 0 || cart.Total != 0 || cart.DeliveryFee != 0 {
		t.Fatalf("expected empty cart shape, got %+v", cart)
	}
}

func TestAddOrSetItemReplacesQuantity(t *testing.T) {
	store := memstore.New()
	itemA := menuItem("Kacchi", 100, 5)
	seedRestaurant(t, store, 60, itemA)
	svc := newCartService(store)
	ctx := context.Background()
	user := primitive.NewObjectID()

	cart, err := svc.AddOrSetItem(ctx, user, itemA.ID, 2)
	if err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	if cart.Total != 260 || cart.DeliveryFee != 60 {
		t.Fatalf("expected total 260 with fee 60, got total=%v fee=%v", cart.Total, cart.DeliveryFee)
	}

	cart, err = svc.AddOrSetItem(ctx, user, itemA.ID, 1)
	if err != nil {
		t.Fatalf("second add failed: %v", err)
	}
	if len(cart.Items) != 1 || cart.Items[0].Quantity != 1 {
		t.Fatalf("expected a single line with quantity 1, got %+v", cart.Items)
	}
	if cart.Total != 160 {
		t.Fatalf("expected total 160, got %v", cart.Total)
	}

	stored, err := svc.GetCart(ctx, user)
	if err != nil {
		t.Fatalf("GetCart failed: %v", err)
	}
	if stored.Total != 160 || !stored.UpdatedAt.Equal(baseTime) {
		t.Fatalf("cart not persisted: %+v", stored)
	}
}

func TestAddOrSetItemRefreshesSnapshotOnReAdd(t *testing.T) {
	store := memstore.New()
	item := menuItem("Biryani", 100, 10)
	r := seedRestaurant(t, store, 50, item)
	svc := newCartService(store)
	ctx := context.Background()
	user := primitive.NewObjectID()

	if _, err := svc.AddOrSetItem(ctx, user, item.ID, 1); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	item.Price = 120
	if err := store.SetMenuItem(ctx, r.ID, item, baseTime); err != nil {
		t.Fatalf("price change failed: %v", err)
	}

	cart, err := svc.GetCart(ctx, user)
	if err != nil {
		t.Fatalf("GetCart failed: %v", err)
	}
	if cart.Items[0].Price != 100 {
		t.Fatalf("GetCart must not re-price, got %v", cart.Items[0].Price)
	}

	cart, err = svc.AddOrSetItem(ctx, user, item.ID, 2)
	if err != nil {
		t.Fatalf("re-add failed: %v", err)
	}
	if cart.Items[0].Price != 120 || cart.Total != 290 {
		t.Fatalf("expected refreshed price 120 and total 290, got %+v", cart)
	}
}

func TestAddOrSetItemFailures(t *testing.T) {
	store := memstore.New()
	inStock := menuItem("Fuchka", 40, 3)
	unavailable := menuItem("Haleem", 80, 10)
	unavailable.IsAvailable = false
	seedRestaurant(t, store, 30, inStock, unavailable)
	svc := newCartService(store)
	ctx := context.Background()
	user := primitive.NewObjectID()

	if _, err := svc.AddOrSetItem(ctx, user, inStock.ID, 1); err != nil {
		t.Fatalf("seed add failed: %v", err)
	}

	tests := []struct {
		name     string
		itemID   primitive.ObjectID
		quantity int
		want     services.ErrorKind
	}{
		{"zero quantity", inStock.ID, 0, services.KindValidation},
		{"missing item", primitive.NewObjectID(), 1, services.KindNotFound},
		{"unavailable", unavailable.ID, 1, services.KindUnavailable},
		{"over stock", inStock.ID, 4, services.KindInsufficientStock},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddOrSetItem(ctx, user, tt.itemID, tt.quantity)
			assertKind(t, err, tt.want)

			cart, err := svc.GetCart(ctx, user)
			if err != nil {
				t.Fatalf("GetCart failed: %v", err)
			}
			if len(cart.Items) != 1 || cart.Items[0].Quantity != 1 || cart.Total != 70 {
				t.Fatalf("cart changed after failed add: %+v", cart)
			}
		})
	}
}

func TestInsufficientStockReportsQuantities(t *testing.T) {
	store := memstore.New()
	item := menuItem("Nehari", 150, 2)
	seedRestaurant(t, store, 60, item)
	svc := newCartService(store)

	_, err := svc.AddOrSetItem(context.Background(), primitive.NewObjectID(), item.ID, 5)
	var serr *services.Error
	if !errors.As(err, &serr) || serr.Available != 2 || serr.Requested != 5 {
		t.Fatalf("expected available=2 requested=5, got %v", err)
	}
}

func TestRemoveItemDeletesEmptyCart(t *testing.T) {
	store := memstore.New()
	a := menuItem("A", 100, 5)
	b := menuItem("B", 50, 5)
	seedRestaurant(t, store, 60, a, b)
	svc := newCartService(store)
	ctx := context.Background()
	user := primitive.NewObjectID()

	for _, item := range []models.MenuItem{a, b} {
		if _, err := svc.AddOrSetItem(ctx, user, item.ID, 1); err != nil {
			t.Fatalf("add failed: %v", err)
		}
	}

	cart, err := svc.RemoveItem(ctx, user, a.ID)
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if len(cart.Items) != 1 || cart.Total != 110 {
		t.Fatalf("expected one line with total 110, got %+v", cart)
	}

	cart, err = svc.RemoveItem(ctx, user, b.ID)
	if err != nil {
		t.Fatalf("remove last failed: %v", err)
	}
	if len(cart.Items) != 0 || cart.Total != 0 || cart.DeliveryFee != 0 {
		t.Fatalf("expected empty shape, got %+v", cart)
	}
	if _, err := store.FindCart(ctx, user); !errors.Is(err, services.ErrNoRecord) {
		t.Fatalf("expected cart record to be deleted, got %v", err)
	}
}

func TestRemoveItemWithoutCartIsNoop(t *testing.T) {
	svc := newCartService(memstore.New())

	cart, err := svc.RemoveItem(context.Background(), primitive.NewObjectID(), primitive.NewObjectID())
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if len(cart.Items) != 0 {
		t.Fatalf("expected empty cart, got %+v", cart)
	}
}

func TestClearCart(t *testing.T) {
	store := memstore.New()
	item := menuItem("A", 100, 5)
	seedRestaurant(t, store, 60, item)
	svc := newCartService(store)
	ctx := context.Background()
	user := primitive.NewObjectID()

	if _, err := svc.AddOrSetItem(ctx, user, item.ID, 1); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := svc.ClearCart(ctx, user); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	cart, err := svc.GetCart(ctx, user)
	if err != nil || len(cart.Items) != 0 {
		t.Fatalf("expected empty cart after clear, got %+v %v", cart, err)
	}
}

func TestCartStoreFailureIsInternal(t *testing.T) {
	store := memstore.New()
	item := menuItem("A", 100, 5)
	seedRestaurant(t, store, 60, item)
	store.Fail("SaveCart", errBoom)
	svc := newCartService(store)

	_, err := svc.AddOrSetItem(context.Background(), primitive.NewObjectID(), item.ID, 1)
	assertKind(t, err, services.KindInternal)
}
