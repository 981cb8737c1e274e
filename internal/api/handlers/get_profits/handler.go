package get_profits

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-ParkingService/internal/api/handlers"
	"github.com/m04kA/SMC-ParkingService/internal/service/profits"
)

const (
	msgInvalidRange = "некорректный диапазон дат, ожидается YYYY-MM-DD"
)

type Handler struct {
	service ProfitService
	logger  Logger
}

func NewHandler(service ProfitService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/profits
// Query params: from, to (YYYY-MM-DD, опционально; по умолчанию последние 30 дней)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")

	result, err := h.service.List(r.Context(), from, to)
	if err != nil {
		switch {
		case errors.Is(err, profits.ErrInvalidInput):
			h.logger.Warn("GET /profits - Invalid range: from=%s, to=%s, error=%v", from, to, err)
			handlers.RespondBadRequest(w, msgInvalidRange)

		case errors.Is(err, profits.ErrUnavailable):
			h.logger.Error("GET /profits - Storage unavailable: %v", err)
			handlers.RespondUnavailable(w)

		default:
			h.logger.Error("GET /profits - Failed to list profits: %v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /profits - Profits retrieved: from=%s, to=%s, days=%d, total=%d",
		result.From, result.To, len(result.Records), result.Total)
	handlers.RespondJSON(w, http.StatusOK, result)
}
