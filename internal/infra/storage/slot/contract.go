package slot

import "github.com/m04kA/SMC-ParkingService/pkg/dbmetrics"

// DBExecutor интерфейс для работы с БД
type DBExecutor = dbmetrics.DBExecutor
