package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/julienschmidt/httprouter"

	"slotbook/pkg/logger"
)

func newSeedRouter(stub *stubSlotService, secret string) *httprouter.Router {
	log := logger.New(logger.Config{Level: "error", Output: io.Discard})
	router := httprouter.New()
	NewSeedHandler(stub, secret, log).RegisterRoutes(router)
	return router
}

func TestSeedEndpoint_Success(t *testing.T) {
	stub := &stubSlotService{
		seedFunc: func(ctx context.Context) (int, error) { return 7, nil },
	}
	router := newSeedRouter(stub, "deploy-secret")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/seed", nil)
	req.Header.Set("Authorization", "Bearer deploy-secret")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp seedResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Created != 7 {
		t.Errorf("expected 7 created, got %d", resp.Created)
	}
	if resp.Message != "Successfully seeded/verified 7 slots." {
		t.Errorf("unexpected message: %q", resp.Message)
	}
}

func TestSeedEndpoint_WrongSecret(t *testing.T) {
	stub := &stubSlotService{
		seedFunc: func(ctx context.Context) (int, error) {
			t.Fatal("service must not be called without the secret")
			return 0, nil
		},
	}
	router := newSeedRouter(stub, "deploy-secret")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/seed", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestSeedEndpoint_NoSecretConfigured(t *testing.T) {
	stub := &stubSlotService{
		seedFunc: func(ctx context.Context) (int, error) {
			t.Fatal("seeding over HTTP must be disabled without a configured secret")
			return 0, nil
		},
	}
	router := newSeedRouter(stub, "")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/seed", nil)
	req.Header.Set("Authorization", "Bearer ")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}
