package create_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-ParkingService/internal/api/handlers"
	"github.com/m04kA/SMC-ParkingService/internal/api/middleware"
	createBooking "github.com/m04kA/SMC-ParkingService/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgInvalidCheckInTime = "некорректное время заезда, ожидается RFC3339 или HH:MM"
	msgInvalidInput       = "некорректные данные бронирования"
	msgSlotNotSelected    = "слот не выбран"
	msgInvalidHours       = "длительность должна быть от 1 до 8 часов"
	msgInvalidCheckIn     = "время заезда должно быть в пределах ближайших 24 часов"
	msgUserNotFound       = "пользователь не найден"
	msgUserInactive       = "пользователь не вошел в систему"
	msgSlotNotFound       = "слот не найден"
	msgActiveBooking      = "у пользователя уже есть активное бронирование"
	msgSlotNotAvailable   = "выбранный слот уже занят"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	// Получаем userID из контекста (через middleware Auth)
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	// Конвертируем HTTP запрос в модель use case (с парсингом времени заезда)
	useCaseReq, err := req.ToUseCaseRequest(userID)
	if err != nil {
		h.logger.Warn("POST /bookings - Invalid check-in: %v", err)
		handlers.RespondBadRequest(w, msgInvalidCheckInTime)
		return
	}

	// Вызываем use case
	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createBooking.ErrSlotNotSelected):
			h.logger.Warn("POST /bookings - Slot not selected: user_id=%s", userID)
			handlers.RespondBadRequest(w, msgSlotNotSelected)

		case errors.Is(err, createBooking.ErrInvalidHours):
			h.logger.Warn("POST /bookings - Invalid hours: user_id=%s, hours=%d", userID, req.Hours)
			handlers.RespondBadRequest(w, msgInvalidHours)

		case errors.Is(err, createBooking.ErrInvalidCheckIn):
			h.logger.Warn("POST /bookings - Invalid check-in: user_id=%s, error=%v", userID, err)
			handlers.RespondBadRequest(w, msgInvalidCheckIn)

		case errors.Is(err, createBooking.ErrInvalidInput):
			h.logger.Warn("POST /bookings - Invalid input: user_id=%s, error=%v", userID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, createBooking.ErrUserNotFound):
			h.logger.Warn("POST /bookings - User not found: user_id=%s", userID)
			handlers.RespondNotFound(w, msgUserNotFound)

		case errors.Is(err, createBooking.ErrUserInactive):
			h.logger.Warn("POST /bookings - User is logged out: user_id=%s", userID)
			handlers.RespondUnauthorized(w, msgUserInactive)

		case errors.Is(err, createBooking.ErrSlotNotFound):
			h.logger.Warn("POST /bookings - Slot not found: slot_id=%s", req.SlotID)
			handlers.RespondNotFound(w, msgSlotNotFound)

		case errors.Is(err, createBooking.ErrActiveBookingExists):
			h.logger.Warn("POST /bookings - Active booking exists: user_id=%s", userID)
			handlers.RespondConflict(w, msgActiveBooking)

		case errors.Is(err, createBooking.ErrSlotConflict):
			h.logger.Warn("POST /bookings - Slot not available: user_id=%s, slot_id=%s", userID, req.SlotID)
			handlers.RespondConflict(w, msgSlotNotAvailable)

		case errors.Is(err, createBooking.ErrUnavailable):
			h.logger.Error("POST /bookings - Storage unavailable: user_id=%s, error=%v", userID, err)
			handlers.RespondUnavailable(w)

		default:
			h.logger.Error("POST /bookings - Failed to create booking: user_id=%s, error=%v", userID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings - Booking created successfully: booking_id=%s, user_id=%s, slot_id=%s",
		result.ID, userID, result.SlotID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
