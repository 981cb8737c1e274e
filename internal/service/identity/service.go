package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	userRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/user"
	"github.com/m04kA/SMC-ParkingService/internal/service/identity/models"
	"github.com/m04kA/SMC-ParkingService/pkg/pgerrors"
)

// Service регистрация, вход и выход пользователей
type Service struct {
	userRepo     UserRepository
	secret       []byte
	tokenTTL     time.Duration
	bcryptCost   int
	allowAdmins  bool
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса
func NewService(
	userRepo UserRepository,
	secret string,
	tokenTTL time.Duration,
	bcryptCost int,
	allowAdminRegistration bool,
	logger Logger,
) *Service {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		userRepo:     userRepo,
		secret:       []byte(secret),
		tokenTTL:     tokenTTL,
		bcryptCost:   bcryptCost,
		allowAdmins:  allowAdminRegistration,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Register создает пользователя. Роль по умолчанию regular.
func (s *Service) Register(ctx context.Context, req *models.RegisterRequest) (*models.UserResponse, error) {
	user, err := validateRegister(req)
	if err != nil {
		s.logger.Warn("Register: validation failed: %v", err)
		return nil, err
	}

	if user.IsAdmin() && !s.allowAdmins {
		s.logger.Warn("Register: admin registration rejected for email=%s", user.Email)
		return nil, ErrAdminRegistrationDisabled
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		s.logger.Error("Register: failed to hash password: %v", err)
		return nil, fmt.Errorf("%w: hash password: %v", ErrInternal, err)
	}
	user.PasswordHash = string(hash)

	created, err := s.userRepo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, userRepo.ErrEmailTaken) {
			s.logger.Warn("Register: email=%s already registered", user.Email)
			return nil, ErrEmailTaken
		}
		s.logger.Error("Register: failed to create user email=%s: %v", user.Email, err)
		return nil, s.storageError("Register", err)
	}

	s.logger.Info("Register: created user id=%s role=%s", created.ID, created.Role)
	resp := models.FromDomainUser(created)
	return &resp, nil
}

// Login проверяет пароль, помечает пользователя активным и выдает токен
func (s *Service) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	if req == nil || req.Email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	}

	email := normalizeEmail(req.Email)
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, userRepo.ErrUserNotFound) {
			s.logger.Warn("Login: unknown email=%s", email)
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("Login: failed to get user email=%s: %v", email, err)
		return nil, s.storageError("Login", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn("Login: wrong password for user id=%s", user.ID)
		return nil, ErrInvalidCredentials
	}

	if err := s.userRepo.SetActive(ctx, user.ID, true); err != nil {
		s.logger.Error("Login: failed to mark user id=%s active: %v", user.ID, err)
		return nil, s.storageError("Login", err)
	}
	user.Active = true

	token, expiresAt, err := s.issueToken(user, s.timeProvider.Now())
	if err != nil {
		s.logger.Error("Login: %v", err)
		return nil, err
	}

	s.logger.Info("Login: user id=%s logged in", user.ID)
	return &models.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      models.FromDomainUser(user),
	}, nil
}

// Logout помечает пользователя неактивным. Токен остается валидным до истечения срока.
func (s *Service) Logout(ctx context.Context, userID uuid.UUID) error {
	if err := s.userRepo.SetActive(ctx, userID, false); err != nil {
		if errors.Is(err, userRepo.ErrUserNotFound) {
			s.logger.Warn("Logout: user id=%s not found", userID)
			return ErrUserNotFound
		}
		s.logger.Error("Logout: failed to mark user id=%s inactive: %v", userID, err)
		return s.storageError("Logout", err)
	}

	s.logger.Info("Logout: user id=%s logged out", userID)
	return nil
}

// GetUser возвращает профиль пользователя
func (s *Service) GetUser(ctx context.Context, userID uuid.UUID) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, userRepo.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("GetUser: failed to get user id=%s: %v", userID, err)
		return nil, s.storageError("GetUser", err)
	}

	resp := models.FromDomainUser(user)
	return &resp, nil
}

func (s *Service) storageError(op string, err error) error {
	if pgerrors.IsTransient(err) {
		return fmt.Errorf("%w: %s: %v", ErrUnavailable, op, err)
	}
	return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
}
