package booking

import (
	"github.com/m04kA/SMC-ParkingService/pkg/dbmetrics"
)

// Переиспользуем интерфейсы из dbmetrics для работы с БД
type DBExecutor = dbmetrics.DBExecutor
type TxExecutor = dbmetrics.TxExecutor

// Имена частичных уникальных индексов из migrations/001_init.sql
const (
	constraintOneActivePerUser = "bookings_one_active_per_user"
	constraintOneActivePerSlot = "bookings_one_active_per_slot"
)
