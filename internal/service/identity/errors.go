package identity

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("identity: invalid input data")

	// ErrEmailTaken возвращается, когда email уже зарегистрирован
	ErrEmailTaken = errors.New("identity: email already registered")

	// ErrInvalidCredentials возвращается при неверном email или пароле
	ErrInvalidCredentials = errors.New("identity: invalid email or password")

	// ErrInvalidToken возвращается при невалидном или просроченном токене
	ErrInvalidToken = errors.New("identity: invalid token")

	// ErrUserNotFound возвращается, когда пользователь не найден
	ErrUserNotFound = errors.New("identity: user not found")

	// ErrAdminRegistrationDisabled возвращается при попытке зарегистрировать администратора
	ErrAdminRegistrationDisabled = errors.New("identity: admin registration is disabled")

	// ErrUnavailable возвращается при временной недоступности хранилища
	ErrUnavailable = errors.New("identity: storage unavailable")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("identity: internal error")
)
