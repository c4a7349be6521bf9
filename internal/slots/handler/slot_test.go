package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/julienschmidt/httprouter"

	apperrors "slotbook/pkg/errors"
	"slotbook/pkg/logger"
	"slotbook/pkg/middleware"
	"slotbook/pkg/model"
)

// stubSlotService lets each test wire just the method it exercises.
type stubSlotService struct {
	listFunc           func(ctx context.Context) ([]*model.Slot, error)
	getFunc            func(ctx context.Context, id string) (*model.Slot, error)
	bookFunc           func(ctx context.Context, slotID string, actor model.Actor) error
	cancelFunc         func(ctx context.Context, slotID string, actor model.Actor) error
	adminCancelFunc    func(ctx context.Context, slotID string, actor model.Actor) error
	setUnavailableFunc func(ctx context.Context, slotID string, unavailable bool, actor model.Actor) error
	userBookingsFunc   func(ctx context.Context, userID string) ([]*model.Slot, error)
	seedFunc           func(ctx context.Context) (int, error)
}

func (s *stubSlotService) List(ctx context.Context) ([]*model.Slot, error) {
	return s.listFunc(ctx)
}

func (s *stubSlotService) Get(ctx context.Context, id string) (*model.Slot, error) {
	return s.getFunc(ctx, id)
}

func (s *stubSlotService) Book(ctx context.Context, slotID string, actor model.Actor) error {
	return s.bookFunc(ctx, slotID, actor)
}

func (s *stubSlotService) Cancel(ctx context.Context, slotID string, actor model.Actor) error {
	return s.cancelFunc(ctx, slotID, actor)
}

func (s *stubSlotService) AdminCancel(ctx context.Context, slotID string, actor model.Actor) error {
	return s.adminCancelFunc(ctx, slotID, actor)
}

func (s *stubSlotService) SetUnavailable(ctx context.Context, slotID string, unavailable bool, actor model.Actor) error {
	return s.setUnavailableFunc(ctx, slotID, unavailable, actor)
}

func (s *stubSlotService) UserBookings(ctx context.Context, userID string) ([]*model.Slot, error) {
	return s.userBookingsFunc(ctx, userID)
}

func (s *stubSlotService) Seed(ctx context.Context) (int, error) {
	return s.seedFunc(ctx)
}

func newTestRouter(stub *stubSlotService) *httprouter.Router {
	log := logger.New(logger.Config{Level: "error", Output: io.Discard})
	router := httprouter.New()
	NewSlotHandler(stub, log).RegisterRoutes(router)
	return router
}

func doRequest(router *httprouter.Router, method, path string, body []byte, identity *middleware.Identity) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if identity != nil {
		req = req.WithContext(middleware.WithIdentity(req.Context(), *identity))
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

var testIdentity = middleware.Identity{UserID: "user-1", Name: "Alice", Role: model.RoleUser}

func TestListSlots(t *testing.T) {
	stub := &stubSlotService{
		listFunc: func(ctx context.Context) ([]*model.Slot, error) {
			return []*model.Slot{model.NewSlot(10), model.NewSlot(11)}, nil
		},
	}

	rec := doRequest(newTestRouter(stub), http.MethodGet, "/api/v1/slots", nil, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp struct {
		Data []*model.Slot `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Data) != 2 {
		t.Errorf("expected 2 slots, got %d", len(resp.Data))
	}
	if resp.Data[0].ID != "10:00" {
		t.Errorf("expected first slot 10:00, got %s", resp.Data[0].ID)
	}
}

func TestGetSlotByID_NotFound(t *testing.T) {
	stub := &stubSlotService{
		getFunc: func(ctx context.Context, id string) (*model.Slot, error) {
			return nil, apperrors.NotFoundWithID("Slot", id)
		},
	}

	rec := doRequest(newTestRouter(stub), http.MethodGet, "/api/v1/slots/id/10:00", nil, nil)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestBookSlot_Success(t *testing.T) {
	var gotSlotID string
	var gotActor model.Actor
	stub := &stubSlotService{
		bookFunc: func(ctx context.Context, slotID string, actor model.Actor) error {
			gotSlotID = slotID
			gotActor = actor
			return nil
		},
	}

	rec := doRequest(newTestRouter(stub), http.MethodPost, "/api/v1/slots/id/10:00/book", nil, &testIdentity)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotSlotID != "10:00" {
		t.Errorf("expected slot id 10:00, got %q", gotSlotID)
	}
	if gotActor.ID != testIdentity.UserID || gotActor.Name != testIdentity.Name {
		t.Errorf("actor not taken from token identity: %+v", gotActor)
	}

	var result struct {
		Success bool `json:"success"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !result.Success {
		t.Error("expected success true")
	}
}

func TestBookSlot_NoIdentity(t *testing.T) {
	stub := &stubSlotService{
		bookFunc: func(ctx context.Context, slotID string, actor model.Actor) error {
			t.Fatal("service must not be called without an identity")
			return nil
		},
	}

	rec := doRequest(newTestRouter(stub), http.MethodPost, "/api/v1/slots/id/10:00/book", nil, nil)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestBookSlot_Denied(t *testing.T) {
	stub := &stubSlotService{
		bookFunc: func(ctx context.Context, slotID string, actor model.Actor) error {
			return apperrors.AlreadyBooked()
		},
	}

	rec := doRequest(newTestRouter(stub), http.MethodPost, "/api/v1/slots/id/10:00/book", nil, &testIdentity)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", rec.Code)
	}

	var result struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
		Code    string `json:"code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result.Success {
		t.Error("expected success false")
	}
	if result.Error != "Slot is not available." {
		t.Errorf("unexpected error message: %q", result.Error)
	}
	if result.Code != apperrors.CodeAlreadyBooked {
		t.Errorf("expected code %s, got %s", apperrors.CodeAlreadyBooked, result.Code)
	}
}

func TestCancelSlot_Forbidden(t *testing.T) {
	stub := &stubSlotService{
		cancelFunc: func(ctx context.Context, slotID string, actor model.Actor) error {
			return apperrors.Forbidden("You are not authorized to cancel this booking.")
		},
	}

	rec := doRequest(newTestRouter(stub), http.MethodPost, "/api/v1/slots/id/10:00/cancel", nil, &testIdentity)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", rec.Code)
	}
}

func TestSetAvailability(t *testing.T) {
	var gotUnavailable bool
	stub := &stubSlotService{
		setUnavailableFunc: func(ctx context.Context, slotID string, unavailable bool, actor model.Actor) error {
			gotUnavailable = unavailable
			return nil
		},
	}

	admin := middleware.Identity{UserID: "admin-1", Role: model.RoleAdmin}
	body := []byte(`{"unavailable":true}`)
	rec := doRequest(newTestRouter(stub), http.MethodPut, "/api/v1/slots/id/10:00/availability", body, &admin)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !gotUnavailable {
		t.Error("expected unavailable=true passed through")
	}
}

func TestSetAvailability_BadBody(t *testing.T) {
	stub := &stubSlotService{
		setUnavailableFunc: func(ctx context.Context, slotID string, unavailable bool, actor model.Actor) error {
			t.Fatal("service must not be called on a malformed body")
			return nil
		},
	}

	admin := middleware.Identity{UserID: "admin-1", Role: model.RoleAdmin}
	rec := doRequest(newTestRouter(stub), http.MethodPut, "/api/v1/slots/id/10:00/availability", []byte("{not json"), &admin)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestUserBookings_UsesTokenIdentity(t *testing.T) {
	var gotUserID string
	stub := &stubSlotService{
		userBookingsFunc: func(ctx context.Context, userID string) ([]*model.Slot, error) {
			gotUserID = userID
			return nil, nil
		},
	}

	rec := doRequest(newTestRouter(stub), http.MethodGet, "/api/v1/bookings", nil, &testIdentity)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if gotUserID != testIdentity.UserID {
		t.Errorf("expected user id from token %q, got %q", testIdentity.UserID, gotUserID)
	}
}
