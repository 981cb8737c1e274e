package get_parking_map

import (
	"context"
	"fmt"
	"strings"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/pkg/pgerrors"
)

// UseCase use case для получения карты парковки
type UseCase struct {
	slotRepo  SlotRepository
	txManager TransactionManager
	logger    Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(slotRepo SlotRepository, txManager TransactionManager, logger Logger) *UseCase {
	return &UseCase{
		slotRepo:  slotRepo,
		txManager: txManager,
		logger:    logger,
	}
}

// Execute возвращает слоты площадки по рядам и сводку по статусам
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	area, class, err := validateRequest(req)
	if err != nil {
		uc.logger.Warn("GetParkingMap: validation failed: %v", err)
		return nil, err
	}

	var slots []*domain.Slot
	err = uc.txManager.DoReadOnly(ctx, func(txCtx context.Context) error {
		var err error
		slots, err = uc.slotRepo.List(txCtx, area, class)
		return err
	})
	if err != nil {
		uc.logger.Error("GetParkingMap: failed to list slots for %s/%s: %v", area, class, err)
		if pgerrors.IsTransient(err) {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return nil, fmt.Errorf("%w: failed to list slots: %v", ErrInternal, err)
	}

	if len(slots) == 0 {
		uc.logger.Warn("GetParkingMap: no slots for %s/%s", area, class)
		return nil, ErrPartitionNotFound
	}

	summary := domain.Summarize(area, class, slots)

	uc.logger.Info("GetParkingMap: %s/%s total=%d available=%d reserved=%d occupied=%d",
		area, class, summary.Total, summary.Available, summary.Reserved, summary.Occupied)

	return &Response{
		Area:         string(area),
		AreaName:     area.DisplayName(),
		VehicleClass: string(class),
		Summary: Summary{
			Total:     summary.Total,
			Available: summary.Available,
			Reserved:  summary.Reserved,
			Occupied:  summary.Occupied,
		},
		Rows: groupRows(slots),
	}, nil
}

func validateRequest(req *Request) (domain.Area, domain.VehicleClass, error) {
	if req == nil {
		return "", "", fmt.Errorf("%w: request is required", ErrInvalidInput)
	}

	area, err := domain.ParseArea(req.Area)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	classValue := req.VehicleClass
	if strings.TrimSpace(classValue) == "" {
		classValue = string(domain.VehicleCar)
	}
	class, err := domain.ParseVehicleClass(classValue)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	return area, class, nil
}
