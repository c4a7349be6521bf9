package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"slotbook/internal/slots/service"
	apperrors "slotbook/pkg/errors"
	httputil "slotbook/pkg/http"
	"slotbook/pkg/logger"
	"slotbook/pkg/middleware"
	"slotbook/pkg/model"
)

type SlotHandler struct {
	service service.SlotService
	log     *logger.Logger
}

func NewSlotHandler(service service.SlotService, log *logger.Logger) *SlotHandler {
	return &SlotHandler{
		service: service,
		log:     log,
	}
}

type availabilityRequest struct {
	Unavailable bool `json:"unavailable"`
}

func (h *SlotHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	slots, err := h.service.List(r.Context())
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httputil.WriteSuccess(w, slots); err != nil {
		h.log.Error("failed to write success response", "handler", "List", "error", err)
	}
}

func (h *SlotHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	slot, err := h.service.Get(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, slot); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "error", err)
	}
}

func (h *SlotHandler) Book(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	if err := h.service.Book(r.Context(), ps.ByName("id"), actor); err != nil {
		h.writeError(w, "Book", err)
		return
	}

	h.writeResult(w, "Book")
}

func (h *SlotHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	if err := h.service.Cancel(r.Context(), ps.ByName("id"), actor); err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	h.writeResult(w, "Cancel")
}

func (h *SlotHandler) AdminCancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	if err := h.service.AdminCancel(r.Context(), ps.ByName("id"), actor); err != nil {
		h.writeError(w, "AdminCancel", err)
		return
	}

	h.writeResult(w, "AdminCancel")
}

func (h *SlotHandler) SetAvailability(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req availabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "SetAvailability", apperrors.InvalidInput("Invalid request body"))
		return
	}

	if err := h.service.SetUnavailable(r.Context(), ps.ByName("id"), req.Unavailable, actor); err != nil {
		h.writeError(w, "SetAvailability", err)
		return
	}

	h.writeResult(w, "SetAvailability")
}

// UserBookings lists the caller's own bookings; the user id comes from
// the verified token, never from the request.
func (h *SlotHandler) UserBookings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	slots, err := h.service.UserBookings(r.Context(), actor.ID)
	if err != nil {
		h.writeError(w, "UserBookings", err)
		return
	}

	if err := httputil.WriteSuccess(w, slots); err != nil {
		h.log.Error("failed to write success response", "handler", "UserBookings", "error", err)
	}
}

func (h *SlotHandler) actor(w http.ResponseWriter, r *http.Request) (model.Actor, bool) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		h.writeError(w, "actor", apperrors.Unauthorized("Authentication required"))
		return model.Actor{}, false
	}

	return model.Actor{
		ID:   identity.UserID,
		Name: identity.Name,
		Role: identity.Role,
	}, true
}

func (h *SlotHandler) writeResult(w http.ResponseWriter, handlerName string) {
	if err := httputil.WriteResult(w); err != nil {
		h.log.Error("failed to write result response", "handler", handlerName, "error", err)
	}
}

func (h *SlotHandler) writeError(w http.ResponseWriter, handlerName string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handlerName, "error", writeErr)
	}
}

func (h *SlotHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/slots", h.List)
	router.GET("/api/v1/slots/id/:id", h.GetByID)
	router.POST("/api/v1/slots/id/:id/book", h.Book)
	router.POST("/api/v1/slots/id/:id/cancel", h.Cancel)
	router.POST("/api/v1/slots/id/:id/admin-cancel", h.AdminCancel)
	router.PUT("/api/v1/slots/id/:id/availability", h.SetAvailability)
	router.GET("/api/v1/bookings", h.UserBookings)
}
