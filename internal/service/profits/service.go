package profits

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	profitRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/profit"
	"github.com/m04kA/SMC-ParkingService/pkg/pgerrors"
)

const (
	// defaultRangeDays диапазон по умолчанию: последние 30 дней включая сегодня
	defaultRangeDays = 30
	maxRangeDays     = 366
)

// Service чтение выручки для администратора
type Service struct {
	profitRepo   ProfitRepository
	txManager    TransactionManager
	location     *time.Location
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса
func NewService(profitRepo ProfitRepository, txManager TransactionManager, location *time.Location, logger Logger) *Service {
	if location == nil {
		location = time.UTC
	}
	return &Service{
		profitRepo:   profitRepo,
		txManager:    txManager,
		location:     location,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// List возвращает выручку по дням в диапазоне [from, to] (YYYY-MM-DD, пустые значения - последние 30 дней).
// Дни без оплат в список не попадают.
func (s *Service) List(ctx context.Context, from, to string) (*ProfitListResponse, error) {
	fromDate, toDate, err := s.resolveRange(from, to)
	if err != nil {
		s.logger.Warn("List: invalid range from=%q to=%q: %v", from, to, err)
		return nil, err
	}

	var records []*domain.ProfitRecord
	err = s.txManager.DoReadOnly(ctx, func(txCtx context.Context) error {
		var err error
		records, err = s.profitRepo.List(txCtx, fromDate, toDate)
		return err
	})
	if err != nil {
		s.logger.Error("List: repository error: %v", err)
		return nil, s.storageError("List", err)
	}

	resp := &ProfitListResponse{
		From:    fromDate.Format(domain.DateFormat),
		To:      toDate.Format(domain.DateFormat),
		Records: make([]DailyProfit, 0, len(records)),
	}
	for _, r := range records {
		resp.Records = append(resp.Records, DailyProfit{
			Date:   r.Date.Format(domain.DateFormat),
			Amount: r.Amount,
		})
		resp.Total += r.Amount
	}

	s.logger.Info("List: %d days from %s to %s, total=%d", len(resp.Records), resp.From, resp.To, resp.Total)
	return resp, nil
}

// DailyTotal возвращает выручку за дату, 0 если оплат не было
func (s *Service) DailyTotal(ctx context.Context, date time.Time) (int64, error) {
	day := domain.DateOf(date.In(s.location))

	var amount int64
	err := s.txManager.DoReadOnly(ctx, func(txCtx context.Context) error {
		record, err := s.profitRepo.GetByDate(txCtx, day)
		if err != nil {
			if errors.Is(err, profitRepo.ErrProfitNotFound) {
				amount = 0
				return nil
			}
			return err
		}
		amount = record.Amount
		return nil
	})
	if err != nil {
		s.logger.Error("DailyTotal: repository error for %s: %v", day.Format(domain.DateFormat), err)
		return 0, s.storageError("DailyTotal", err)
	}

	return amount, nil
}

func (s *Service) resolveRange(from, to string) (time.Time, time.Time, error) {
	today := domain.DateOf(s.timeProvider.Now().In(s.location))

	toDate := today
	if strings.TrimSpace(to) != "" {
		d, err := time.ParseInLocation(domain.DateFormat, strings.TrimSpace(to), s.location)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: to must be YYYY-MM-DD", ErrInvalidInput)
		}
		toDate = d
	}

	fromDate := toDate.AddDate(0, 0, -(defaultRangeDays - 1))
	if strings.TrimSpace(from) != "" {
		d, err := time.ParseInLocation(domain.DateFormat, strings.TrimSpace(from), s.location)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: from must be YYYY-MM-DD", ErrInvalidInput)
		}
		fromDate = d
	}

	if fromDate.After(toDate) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: from is after to", ErrInvalidInput)
	}
	if toDate.Sub(fromDate) > maxRangeDays*24*time.Hour {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: range is longer than %d days", ErrInvalidInput, maxRangeDays)
	}

	return fromDate, toDate, nil
}

func (s *Service) storageError(op string, err error) error {
	if pgerrors.IsTransient(err) {
		return fmt.Errorf("%w: %s: %v", ErrUnavailable, op, err)
	}
	return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
}
