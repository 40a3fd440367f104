package adaptor

import (
	"encoding/json"
	"errors"
	"net/http"

	"vacation-rental/internal/usecase"
	"vacation-rental/pkg/utils"

	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

type Handler struct {
	House   *HouseHandler
	Booking *BookingHandler
	Health  *HealthHandler
}

func NewHandler(service *usecase.Service, db Pinger, config *utils.Config, log *zap.Logger) *Handler {
	return &Handler{
		House:   NewHouseHandler(service.House, config.App.Debug, log),
		Booking: NewBookingHandler(service.Booking, config.App.Debug, log),
		Health:  NewHealthHandler(db, log),
	}
}

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(dst)
}

// handleServiceError maps usecase error kinds to the failure envelope.
// Unclassified errors are logged in full and hidden unless debug is on.
func handleServiceError(w http.ResponseWriter, log *zap.Logger, debug bool, err error, operation string) {
	var vErr *usecase.ValidationError

	switch {
	case errors.As(err, &vErr):
		log.Debug(operation+" validation failed", zap.Any("errors", vErr.Fields))
		utils.ResponseBadRequest(w, "Validation failed", vErr.Fields)

	case errors.Is(err, usecase.ErrMinimumStay):
		log.Debug(operation+" rejected - minimum stay", zap.Error(err))
		utils.ResponseBadRequest(w, err.Error(), nil)

	case errors.Is(err, usecase.ErrNotFound):
		log.Debug(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, err.Error())

	case errors.Is(err, usecase.ErrDateRangeConflict):
		log.Info(operation+" rejected - dates not available", zap.Error(err))
		utils.ResponseConflict(w, err.Error(), nil)

	case errors.Is(err, usecase.ErrTimeout):
		log.Warn(operation+" timed out", zap.Error(err))
		utils.ResponseTimeout(w, "Request timed out")

	case errors.Is(err, usecase.ErrStoreUnavailable):
		log.Error(operation+" failed - store unavailable", zap.Error(err))
		utils.ResponseServiceUnavailable(w, "Service temporarily unavailable")

	case errors.Is(err, usecase.ErrIDGenerationExhausted):
		log.Error(operation+" failed - booking ID exhausted", zap.Error(err))
		utils.ResponseInternalError(w, "Could not create booking, please try again")

	default:
		log.Error("Failed to "+operation,
			zap.Error(err),
			zap.String("operation", operation))
		message := "Internal server error"
		if debug {
			message = err.Error()
		}
		utils.ResponseInternalError(w, message)
	}
}
