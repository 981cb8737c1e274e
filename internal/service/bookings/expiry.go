package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ExpireDue завершает все approved бронирования, время которых истекло.
// Каждое бронирование обрабатывается в своей транзакции: ошибка одного не мешает остальным.
func (s *Service) ExpireDue(ctx context.Context) (int, error) {
	now := s.now()

	var ids []uuid.UUID
	err := s.txManager.DoReadOnly(ctx, func(txCtx context.Context) error {
		var err error
		ids, err = s.bookingRepo.ListDueIDs(txCtx, now, s.sweepBatch)
		return err
	})
	if err != nil {
		s.logger.Error("ExpireDue: failed to list due bookings: %v", err)
		err = s.storageError("ExpireDue", err)
		s.recordSweep(0, err)
		return 0, err
	}

	if len(ids) == 0 {
		s.recordSweep(0, nil)
		return 0, nil
	}

	s.logger.Info("ExpireDue: found %d due bookings", len(ids))

	var (
		expired int
		errs    []error
	)
	for _, id := range ids {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}

		changed, err := s.Expire(ctx, id)
		if err != nil {
			errs = append(errs, fmt.Errorf("booking %s: %w", id, err))
			continue
		}
		if changed {
			expired++
		}
	}

	sweepErr := errors.Join(errs...)
	s.recordSweep(expired, sweepErr)

	if sweepErr != nil {
		s.logger.Warn("ExpireDue: expired %d of %d bookings, %d failed", expired, len(ids), len(errs))
		return expired, sweepErr
	}

	s.logger.Info("ExpireDue: expired %d bookings", expired)
	return expired, nil
}

func (s *Service) recordSweep(expired int, err error) {
	if s.metrics != nil {
		s.metrics.RecordSweep(expired, err)
	}
}
