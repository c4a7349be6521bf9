package handler

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"

	"slotbook/internal/slots/service"
	httputil "slotbook/pkg/http"
	"slotbook/pkg/logger"
)

// SeedHandler exposes slot seeding as a protected deployment hook. It
// lives outside the user auth chain and checks its own bearer secret,
// so a deploy pipeline can call it without a user token.
type SeedHandler struct {
	service service.SlotService
	secret  string
	log     *logger.Logger
}

func NewSeedHandler(service service.SlotService, secret string, log *logger.Logger) *SeedHandler {
	return &SeedHandler{
		service: service,
		secret:  secret,
		log:     log,
	}
}

type seedResponse struct {
	Message string `json:"message"`
	Created int    `json:"created"`
}

func (h *SeedHandler) Seed(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if !h.authorized(r) {
		if err := httputil.WriteJSON(w, http.StatusUnauthorized, httputil.Result{
			Success: false,
			Error:   "Unauthorized",
		}); err != nil {
			h.log.Error("failed to write JSON response", "handler", "Seed", "error", err)
		}
		return
	}

	count, err := h.service.Seed(r.Context())
	if err != nil {
		h.log.Error("Seeding failed", "error", err)
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Seed", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteJSON(w, http.StatusOK, seedResponse{
		Message: fmt.Sprintf("Successfully seeded/verified %d slots.", count),
		Created: count,
	}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Seed", "error", err)
	}
}

func (h *SeedHandler) authorized(r *http.Request) bool {
	if h.secret == "" {
		// No secret configured: seeding only via the CLI binary.
		return false
	}

	header := r.Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(parts[1]), []byte(h.secret)) == 1
}

func (h *SeedHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/admin/seed", h.Seed)
}
