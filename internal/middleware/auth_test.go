package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"foodorder/internal/auth"
	"foodorder/internal/authz"
	"foodorder/internal/models"
)

const testSecret = "middleware-secret"

func issueToken(t *testing.T, role models.Role) (string, primitive.ObjectID) {
	t.Helper()
	id := primitive.NewObjectID()
	token, err := auth.IssueAccessToken(models.Principal{ID: id, Role: role}, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}
	return token, id
}

func newTestRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers = append(handlers, func(c *gin.Context) {
		p := PrincipalFrom(c)
		if p == nil {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, p.ID.Hex())
	})
	r.GET("/", handlers...)
	return r
}

func TestAuthenticateAcceptsHeaderAndCookie(t *testing.T) {
	router := newTestRouter(Authenticate(testSecret))
	token, id := issueToken(t, models.RoleCustomer)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != id.Hex() {
		t.Fatalf("header auth: status=%d body=%s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: token})
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != id.Hex() {
		t.Fatalf("cookie auth: status=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestAuthenticateRejects(t *testing.T) {
	router := newTestRouter(Authenticate(testSecret))
	expired, err := auth.IssueAccessToken(models.Principal{ID: primitive.NewObjectID(), Role: models.RoleCustomer}, testSecret, -time.Minute)
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}

	tests := []struct {
		name   string
		header string
	}{
		{"missing", ""},
		{"malformed", "Token abc"},
		{"garbage", "Bearer abc"},
		{"expired", "Bearer " + expired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestRequireCapability(t *testing.T) {
	router := newTestRouter(Authenticate(testSecret), RequireCapability(authz.ManageRestaurants))

	admin, _ := issueToken(t, models.RoleAdmin)
	customer, _ := issueToken(t, models.RoleCustomer)

	for token, want := range map[string]int{admin: http.StatusOK, customer: http.StatusForbidden} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != want {
			t.Fatalf("expected %d, got %d", want, rec.Code)
		}
	}
}

func TestOptionalAuth(t *testing.T) {
	router := newTestRouter(OptionalAuth(testSecret))
	token, id := issueToken(t, models.RoleCustomer)

	for header, want := range map[string]string{
		"":                "anonymous",
		"Bearer garbage":  "anonymous",
		"Bearer " + token: id.Hex(),
	} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK || rec.Body.String() != want {
			t.Fatalf("header %q: status=%d body=%s", header, rec.Code, rec.Body.String())
		}
	}
}
