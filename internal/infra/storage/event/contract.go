package event

import "github.com/m04kA/SMC-ParkingService/pkg/dbmetrics"

// DBExecutor интерфейс для работы с БД
type DBExecutor = dbmetrics.DBExecutor

// appendLockKey ключ advisory lock, под которым события получают seq.
// Держится до конца транзакции, поэтому порядок seq совпадает с порядком коммитов.
const appendLockKey = 0x706b6576
