package update_booking_status

import (
	"context"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-ParkingService/internal/service/bookings/models"
)

// TransitionFunc операция жизненного цикла: Approve, Decline, MarkPaid, MarkUnpaid, Checkout
type TransitionFunc func(ctx context.Context, id uuid.UUID) (*models.BookingResponse, error)

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
