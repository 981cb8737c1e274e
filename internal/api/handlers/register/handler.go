package register

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-ParkingService/internal/api/handlers"
	"github.com/m04kA/SMC-ParkingService/internal/service/identity"
	"github.com/m04kA/SMC-ParkingService/internal/service/identity/models"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidInput       = "некорректные данные регистрации"
	msgEmailTaken         = "email уже зарегистрирован"
	msgAdminDisabled      = "регистрация администраторов отключена"
)

type Handler struct {
	service IdentityService
	logger  Logger
}

func NewHandler(service IdentityService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/auth/register
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /auth/register - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	user, err := h.service.Register(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, identity.ErrEmailTaken):
			handlers.RespondConflict(w, msgEmailTaken)

		case errors.Is(err, identity.ErrAdminRegistrationDisabled):
			handlers.RespondForbidden(w, msgAdminDisabled)

		case errors.Is(err, identity.ErrUnavailable):
			h.logger.Error("POST /auth/register - Storage unavailable: %v", err)
			handlers.RespondUnavailable(w)

		default:
			h.logger.Error("POST /auth/register - Failed to register: %v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /auth/register - User registered: user_id=%s, role=%s", user.ID, user.Role)
	handlers.RespondJSON(w, http.StatusCreated, user)
}
