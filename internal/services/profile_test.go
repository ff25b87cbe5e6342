package services_test

import (
	"context"
	"testing"

	"foodorder/internal/memstore"
	"foodorder/internal/models"
	"foodorder/internal/services"
)

func customerPrincipal(u *models.User) *models.Principal {
	return &models.Principal{ID: u.ID, Role: u.Role}
}

func address(street string) services.AddressInput {
	area, city := "Mirpur", "Dhaka"
	return services.AddressInput{Street: &street, Area: &area, City: &city}
}

func TestUpdateProfile(t *testing.T) {
	store := memstore.New()
	svc := services.NewProfileService(store)
	ctx := context.Background()
	user := seedUser(t, store, models.RoleCustomer)
	other := seedUser(t, store, models.RoleCustomer)
	p := customerPrincipal(user)

	name, email := "  Karim ", " KARIM@Example.com "
	updated, err := svc.Update(ctx, p, services.ProfilePatch{Name: &name, Email: &email})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != "Karim" || updated.Email != "karim@example.com" {
		t.Fatalf("fields not normalized: %+v", updated)
	}
	if updated.Addresses == nil {
		t.Fatalf("addresses must never be nil")
	}

	taken := other.Email
	_, err = svc.Update(ctx, p, services.ProfilePatch{Email: &taken})
	assertKind(t, err, services.KindConflict)

	empty := ""
	_, err = svc.Update(ctx, p, services.ProfilePatch{Email: &empty})
	assertKind(t, err, services.KindValidation)

	phone := "01811111111"
	updated, err = svc.Update(ctx, p, services.ProfilePatch{Phone: &phone, Email: &empty})
	if err != nil {
		t.Fatalf("switch to phone: %v", err)
	}
	if updated.Phone != phone || updated.Email != "" {
		t.Fatalf("unexpected identity: %+v", updated)
	}

	_, err = svc.Get(ctx, nil)
	assertKind(t, err, services.KindUnauthenticated)
}

func TestAddressBook(t *testing.T) {
	store := memstore.New()
	svc := services.NewProfileService(store)
	ctx := context.Background()
	p := customerPrincipal(seedUser(t, store, models.RoleCustomer))

	list, err := svc.ListAddresses(ctx, p)
	if err != nil || len(list) != 0 {
		t.Fatalf("expected empty address book, got %v %v", list, err)
	}

	list, err = svc.AddAddress(ctx, p, address("Road 1"))
	if err != nil {
		t.Fatalf("AddAddress: %v", err)
	}
	if len(list) != 1 || !list[0].IsDefault || list[0].ID == "" {
		t.Fatalf("first address must be the default: %+v", list)
	}
	first := list[0].ID

	second := address("Road 2")
	second.IsDefault = boolPtr(true)
	list, err = svc.AddAddress(ctx, p, second)
	if err != nil {
		t.Fatalf("AddAddress: %v", err)
	}
	if list[0].IsDefault || !list[1].IsDefault {
		t.Fatalf("expected the second address to be the only default: %+v", list)
	}

	street := "Road 1A"
	list, err = svc.UpdateAddress(ctx, p, first, services.AddressInput{Street: &street, IsDefault: boolPtr(true)})
	if err != nil {
		t.Fatalf("UpdateAddress: %v", err)
	}
	if list[0].Street != "Road 1A" || !list[0].IsDefault || list[1].IsDefault {
		t.Fatalf("unexpected addresses after update: %+v", list)
	}

	list, err = svc.DeleteAddress(ctx, p, first)
	if err != nil {
		t.Fatalf("DeleteAddress: %v", err)
	}
	if len(list) != 1 || !list[0].IsDefault {
		t.Fatalf("remaining address must become default: %+v", list)
	}

	stored, err := svc.ListAddresses(ctx, p)
	if err != nil || len(stored) != 1 {
		t.Fatalf("address book not persisted: %v %v", stored, err)
	}

	_, err = svc.DeleteAddress(ctx, p, first)
	assertKind(t, err, services.KindNotFound)
}

func TestAddressValidationAndAccess(t *testing.T) {
	store := memstore.New()
	svc := services.NewProfileService(store)
	ctx := context.Background()
	p := customerPrincipal(seedUser(t, store, models.RoleCustomer))

	street := "Road 9"
	_, err := svc.AddAddress(ctx, p, services.AddressInput{Street: &street})
	assertKind(t, err, services.KindValidation)
	if fields := err.(*services.Error).Fields; len(fields) != 2 {
		t.Fatalf("expected area and city to be missing, got %v", fields)
	}

	owner := customerPrincipal(seedUser(t, store, models.RoleOwner))
	_, err = svc.AddAddress(ctx, owner, address("Road 1"))
	assertKind(t, err, services.KindForbidden)
}
