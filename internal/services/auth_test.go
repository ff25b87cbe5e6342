package services_test

import (
	"context"
	"testing"
	"time"

	"foodorder/internal/auth"
	"foodorder/internal/memstore"
	"foodorder/internal/models"
	"foodorder/internal/services"
)

const testSecret = "test-secret"

func newAuthService(store *memstore.Store) *services.AuthService {
	return services.NewAuthService(store, store, services.TokenSettings{
		Secret:        testSecret,
		AccessTTL:     time.Hour,
		RememberMeTTL: 30 * 24 * time.Hour,
		RefreshTTL:    7 * 24 * time.Hour,
	})
}

func TestRegisterAndLogin(t *testing.T) {
	store := memstore.New()
	svc := newAuthService(store)
	ctx := context.Background()

	user, err := svc.Register(ctx, services.RegisterInput{
		Role: models.RoleCustomer, Name: "Nadia", Email: " Nadia@Example.com ", Password: "secret1",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Email != "nadia@example.com" || user.PasswordHash == "secret1" {
		t.Fatalf("unexpected stored user: %+v", user)
	}

	session, err := svc.Login(ctx, "NADIA@example.com", "secret1", false)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if session.ExpiresIn != int64(time.Hour.Seconds()) || session.RefreshToken == "" {
		t.Fatalf("unexpected session: %+v", session)
	}
	p, err := auth.ParseAccessToken(session.AccessToken, testSecret)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if p.ID != user.ID || p.Role != models.RoleCustomer {
		t.Fatalf("unexpected principal: %+v", p)
	}

	remembered, err := svc.Login(ctx, "nadia@example.com", "secret1", true)
	if err != nil || remembered.ExpiresIn != int64((30*24*time.Hour).Seconds()) {
		t.Fatalf("remember-me session: %+v %v", remembered, err)
	}

	_, err = svc.Login(ctx, "nadia@example.com", "wrong-password", false)
	assertKind(t, err, services.KindUnauthenticated)

	_, err = svc.Login(ctx, "nobody@example.com", "secret1", false)
	assertKind(t, err, services.KindUnauthenticated)
}

func TestRegisterRejections(t *testing.T) {
	store := memstore.New()
	svc := newAuthService(store)
	ctx := context.Background()

	if _, err := svc.Register(ctx, services.RegisterInput{Role: models.RoleOwner, Phone: "01700000001", Password: "secret1"}); err != nil {
		t.Fatalf("seed owner: %v", err)
	}

	tests := []struct {
		name string
		in   services.RegisterInput
		want services.ErrorKind
	}{
		{"admin", services.RegisterInput{Role: models.RoleAdmin, Email: "a@example.com", Password: "secret1"}, services.KindValidation},
		{"no identity", services.RegisterInput{Role: models.RoleCustomer, Password: "secret1"}, services.KindValidation},
		{"short password", services.RegisterInput{Role: models.RoleCustomer, Email: "b@example.com", Password: "123"}, services.KindValidation},
		{"duplicate phone", services.RegisterInput{Role: models.RoleCustomer, Phone: "01700000001", Password: "secret1"}, services.KindConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.in)
			assertKind(t, err, tt.want)
		})
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	store := memstore.New()
	svc := newAuthService(store)
	ctx := context.Background()

	if _, err := svc.Register(ctx, services.RegisterInput{Role: models.RoleCustomer, Phone: "01700000002", Password: "secret1"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	session, err := svc.Login(ctx, "01700000002", "secret1", false)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	next, err := svc.Refresh(ctx, session.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if next.RefreshToken == session.RefreshToken {
		t.Fatalf("refresh token was not rotated")
	}

	_, err = svc.Refresh(ctx, session.RefreshToken)
	assertKind(t, err, services.KindUnauthenticated)

	if err := svc.Logout(ctx, next.RefreshToken); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	_, err = svc.Refresh(ctx, next.RefreshToken)
	assertKind(t, err, services.KindUnauthenticated)

	if err := svc.Logout(ctx, "unknown"); err != nil {
		t.Fatalf("Logout with unknown token must be a no-op: %v", err)
	}
}

func TestSeedAdminAndListOwners(t *testing.T) {
	store := memstore.New()
	svc := newAuthService(store)
	ctx := context.Background()

	if err := svc.SeedAdmin(ctx, "admin@example.com", "admin-pass"); err != nil {
		t.Fatalf("SeedAdmin: %v", err)
	}
	if err := svc.SeedAdmin(ctx, "ADMIN@example.com", "other-pass"); err != nil {
		t.Fatalf("second SeedAdmin: %v", err)
	}

	session, err := svc.Login(ctx, "admin@example.com", "admin-pass", false)
	if err != nil {
		t.Fatalf("admin login: %v", err)
	}
	if session.User.Role != models.RoleAdmin {
		t.Fatalf("expected admin, got %s", session.User.Role)
	}

	for _, phone := range []string{"01700000010", "01700000011"} {
		if _, err := svc.Register(ctx, services.RegisterInput{Role: models.RoleOwner, Phone: phone, Password: "secret1"}); err != nil {
			t.Fatalf("Register owner: %v", err)
		}
	}
	admin := &models.Principal{ID: session.User.ID, Role: models.RoleAdmin}
	owners, err := svc.ListOwners(ctx, admin)
	if err != nil || len(owners) != 2 {
		t.Fatalf("expected 2 owners, got %d %v", len(owners), err)
	}

	_, err = svc.ListOwners(ctx, principal(models.RoleOwner))
	assertKind(t, err, services.KindForbidden)

	me, err := svc.Me(ctx, admin)
	if err != nil || me.Email != "admin@example.com" {
		t.Fatalf("Me: %+v %v", me, err)
	}
}
