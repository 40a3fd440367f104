package adaptor

import (
	"net/http"

	"vacation-rental/internal/usecase"
	"vacation-rental/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type HouseHandler struct {
	service usecase.HouseService
	debug   bool
	log     *zap.Logger
}

func NewHouseHandler(service usecase.HouseService, debug bool, log *zap.Logger) *HouseHandler {
	return &HouseHandler{
		service: service,
		debug:   debug,
		log:     log.With(zap.String("handler", "house")),
	}
}

// ListHouses handles GET /api/houses
func (h *HouseHandler) ListHouses(w http.ResponseWriter, r *http.Request) {
	houses, err := h.service.ListHouses(r.Context())
	if err != nil {
		h.handleServiceError(w, err, "list houses")
		return
	}

	utils.ResponseSuccess(w, houses)
}

// GetHouse handles GET /api/houses/{slug}
func (h *HouseHandler) GetHouse(w http.ResponseWriter, r *http.Request) {
	house, err := h.service.GetHouseBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.handleServiceError(w, err, "get house")
		return
	}

	utils.ResponseSuccess(w, house)
}

// GetHousePackages handles GET /api/houses/{slug}/packages
func (h *HouseHandler) GetHousePackages(w http.ResponseWriter, r *http.Request) {
	packages, err := h.service.GetHousePackages(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.handleServiceError(w, err, "get house packages")
		return
	}

	utils.ResponseSuccess(w, packages)
}

// GetUnavailableDates handles GET /api/houses/{slug}/unavailable-dates
func (h *HouseHandler) GetUnavailableDates(w http.ResponseWriter, r *http.Request) {
	dates, err := h.service.GetUnavailableDates(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.handleServiceError(w, err, "get unavailable dates")
		return
	}

	utils.ResponseSuccess(w, dates)
}

func (h *HouseHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	handleServiceError(w, h.log, h.debug, err, operation)
}
