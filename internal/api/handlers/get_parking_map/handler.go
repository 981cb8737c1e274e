package get_parking_map

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-ParkingService/internal/api/handlers"
	getParkingMap "github.com/m04kA/SMC-ParkingService/internal/usecase/get_parking_map"
)

const (
	msgInvalidParams     = "некорректная площадка или класс транспорта"
	msgPartitionNotFound = "для площадки и класса транспорта нет мест"
)

type Handler struct {
	useCase GetParkingMapUseCase
	logger  Logger
}

func NewHandler(useCase GetParkingMapUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/areas/{area}/slots
// Query params: vehicleClass (car по умолчанию)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	req := &getParkingMap.Request{
		Area:         mux.Vars(r)["area"],
		VehicleClass: r.URL.Query().Get("vehicleClass"),
	}

	result, err := h.useCase.Execute(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, getParkingMap.ErrInvalidInput):
			h.logger.Warn("GET /areas/{area}/slots - Invalid parameters: area=%s, class=%s, error=%v",
				req.Area, req.VehicleClass, err)
			handlers.RespondBadRequest(w, msgInvalidParams)

		case errors.Is(err, getParkingMap.ErrPartitionNotFound):
			h.logger.Warn("GET /areas/{area}/slots - No slots: area=%s, class=%s", req.Area, req.VehicleClass)
			handlers.RespondNotFound(w, msgPartitionNotFound)

		case errors.Is(err, getParkingMap.ErrUnavailable):
			h.logger.Error("GET /areas/{area}/slots - Storage unavailable: %v", err)
			handlers.RespondUnavailable(w)

		default:
			h.logger.Error("GET /areas/{area}/slots - Failed to get parking map: area=%s, error=%v", req.Area, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /areas/{area}/slots - Parking map retrieved: area=%s, class=%s, available=%d/%d",
		result.Area, result.VehicleClass, result.Summary.Available, result.Summary.Total)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
