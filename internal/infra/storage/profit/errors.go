package profit

import "errors"

var (
	// ErrProfitNotFound возвращается, когда записи за дату нет
	ErrProfitNotFound = errors.New("profit.repository: record not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("profit.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("profit.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("profit.repository: failed to scan row")
)
