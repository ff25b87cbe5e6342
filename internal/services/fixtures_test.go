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

var baseTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func principal(role models.Role) *models.Principal {
	return &models.Principal{ID: primitive.NewObjectID(), Role: role}
}

func seedRestaurant(t *testing.T, store *memstore.Store, fee float64, items ...models.MenuItem) *models.Restaurant {
	t.Helper()
	r := &models.Restaurant{
		Name:        "Kacchi House",
		CuisineType: "Bangladeshi",
		Location:    models.Location{City: "Dhaka", Area: "Dhanmondi"},
		IsAvailable: true,
		MenuItems:   items,
		DeliveryFee: fee,
		CreatedAt:   baseTime,
		UpdatedAt:   baseTime,
	}
	if err := store.InsertRestaurant(context.Background(), r); err != nil {
		t.Fatalf("seed restaurant: %v", err)
	}
	return r
}

func menuItem(name string, price float64, stock int) models.MenuItem {
	return models.MenuItem{
		ID:          primitive.NewObjectID(),
		Name:        name,
		Description: name,
		Price:       price,
		Category:    "Main",
		IsAvailable: true,
		Stock:       stock,
	}
}

func assertKind(t *testing.T, err error, want services.ErrorKind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", want)
	}
	if got := services.KindOf(err); got != want {
		t.Fatalf("expected %s error, got %s (%v)", want, got, err)
	}
}

var errBoom = errors.New("boom")
