package update_booking_status

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-ParkingService/internal/api/handlers"
	"github.com/m04kA/SMC-ParkingService/internal/service/bookings"
)

const (
	msgInvalidBookingID  = "некорректный ID бронирования"
	msgNotFound          = "бронирование не найдено"
	msgInvalidTransition = "операция недопустима в текущем статусе бронирования"
	msgNotPaid           = "бронирование не оплачено"
	msgSlotConflict      = "статус слота не соответствует бронированию"
	msgConcurrentUpdate  = "бронирование изменено параллельно, повторите запрос"
)

// Handler обрабатывает одну операцию жизненного цикла бронирования
type Handler struct {
	action     string
	transition TransitionFunc
	logger     Logger
}

// NewHandler action - последний сегмент пути (approve, decline, pay, unpay, checkout)
func NewHandler(action string, transition TransitionFunc, logger Logger) *Handler {
	return &Handler{
		action:     action,
		transition: transition,
		logger:     logger,
	}
}

// Handle PATCH /api/v1/bookings/{bookingId}/{action}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	// Извлекаем bookingId из URL
	bookingID, err := uuid.Parse(mux.Vars(r)["bookingId"])
	if err != nil {
		h.logger.Warn("PATCH /bookings/{id}/%s - Invalid booking ID: %v", h.action, err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	booking, err := h.transition(r.Context(), bookingID)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrBookingNotFound):
			h.logger.Warn("PATCH /bookings/{id}/%s - Booking not found: booking_id=%s", h.action, bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, bookings.ErrInvalidTransition):
			h.logger.Warn("PATCH /bookings/{id}/%s - Invalid transition: booking_id=%s, error=%v", h.action, bookingID, err)
			handlers.RespondConflict(w, msgInvalidTransition)

		case errors.Is(err, bookings.ErrNotPaid):
			h.logger.Warn("PATCH /bookings/{id}/%s - Not paid: booking_id=%s", h.action, bookingID)
			handlers.RespondConflict(w, msgNotPaid)

		case errors.Is(err, bookings.ErrSlotConflict):
			h.logger.Warn("PATCH /bookings/{id}/%s - Slot conflict: booking_id=%s, error=%v", h.action, bookingID, err)
			handlers.RespondConflict(w, msgSlotConflict)

		case errors.Is(err, bookings.ErrConcurrentUpdate):
			h.logger.Warn("PATCH /bookings/{id}/%s - Concurrent update: booking_id=%s", h.action, bookingID)
			handlers.RespondConflict(w, msgConcurrentUpdate)

		case errors.Is(err, bookings.ErrUnavailable):
			h.logger.Error("PATCH /bookings/{id}/%s - Storage unavailable: booking_id=%s, error=%v", h.action, bookingID, err)
			handlers.RespondUnavailable(w)

		default:
			h.logger.Error("PATCH /bookings/{id}/%s - Failed: booking_id=%s, error=%v", h.action, bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /bookings/{id}/%s - Done: booking_id=%s, status=%s, paid=%t",
		h.action, bookingID, booking.Status, booking.IsPaid)
	handlers.RespondJSON(w, http.StatusOK, booking)
}
