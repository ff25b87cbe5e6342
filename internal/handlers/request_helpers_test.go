package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"foodorder/internal/services"
)

func TestRespondServiceErrorStatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		err    error
		status int
	}{
		{&services.Error{Kind: services.KindValidation, Message: "bad"}, http.StatusBadRequest},
		{&services.Error{Kind: services.KindNotFound, Message: "missing"}, http.StatusNotFound},
		{&services.Error{Kind: services.KindUnavailable, Message: "off"}, http.StatusNotFound},
		{&services.Error{Kind: services.KindInsufficientStock, Message: "low"}, http.StatusBadRequest},
		{&services.Error{Kind: services.KindForbidden, Message: "no"}, http.StatusForbidden},
		{&services.Error{Kind: services.KindUnauthenticated, Message: "who"}, http.StatusUnauthorized},
		{&services.Error{Kind: services.KindConflict, Message: "dup"}, http.StatusBadRequest},
		{errors.New("driver exploded"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		respondServiceError(c, "TEST", tt.err)

		if rec.Code != tt.status {
			t.Fatalf("%v: expected %d, got %d", tt.err, tt.status, rec.Code)
		}
		var body map[string]interface{}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if _, ok := body["message"]; !ok {
			t.Fatalf("expected message key, got %s", rec.Body.String())
		}
	}
}

func TestRespondServiceErrorIncludesFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	respondServiceError(c, "TEST", &services.Error{
		Kind:    services.KindValidation,
		Message: "missing required fields",
		Fields:  []string{"customerName", "total"},
	})

	var body struct {
		Message string   `json:"message"`
		Fields  []string `json:"fields"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Fields) != 2 || body.Fields[0] != "customerName" {
		t.Fatalf("unexpected fields: %v", body.Fields)
	}
}

func TestParsePaginationParams(t *testing.T) {
	page, limit, err := parsePaginationParams("", "", 10)
	if err != nil || page != 1 || limit != 10 {
		t.Fatalf("defaults: page=%d limit=%d err=%v", page, limit, err)
	}

	page, limit, err = parsePaginationParams("3", "500", 10)
	if err != nil || page != 3 || limit != maxPageLimit {
		t.Fatalf("capped: page=%d limit=%d err=%v", page, limit, err)
	}

	for _, bad := range [][2]string{{"0", ""}, {"x", ""}, {"", "-1"}} {
		if _, _, err := parsePaginationParams(bad[0], bad[1], 10); err == nil {
			t.Fatalf("expected error for page=%q limit=%q", bad[0], bad[1])
		}
	}
}

func TestNewPagination(t *testing.T) {
	p := newPagination(2, 10, 25)
	if p.TotalPages != 3 || !p.HasNextPage || !p.HasPrevPage {
		t.Fatalf("unexpected pagination: %+v", p)
	}
	p = newPagination(1, 10, 0)
	if p.TotalPages != 0 || p.HasNextPage || p.HasPrevPage {
		t.Fatalf("unexpected empty pagination: %+v", p)
	}
}
