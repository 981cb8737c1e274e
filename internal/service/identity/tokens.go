package identity

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/internal/service/identity/models"
)

const tokenIssuer = "parking-service"

// claims полезная нагрузка токена: sub - ID пользователя, role - роль
type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// issueToken подписывает HS256 токен для пользователя
func (s *Service) issueToken(user *domain.User, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(s.tokenTTL)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role: string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: sign token: %v", ErrInternal, err)
	}
	return signed, expiresAt, nil
}

// ParseToken проверяет подпись и срок действия токена и возвращает пользователя из него
func (s *Service) ParseToken(raw string) (*models.Principal, error) {
	var c claims
	_, err := jwt.ParseWithClaims(raw, &c, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(s.timeProvider.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	userID, err := uuid.Parse(c.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: bad subject: %v", ErrInvalidToken, err)
	}

	role, err := domain.ParseRole(c.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	return &models.Principal{UserID: userID, Role: role}, nil
}
