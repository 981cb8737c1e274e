package get_parking_map

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/internal/testutil/memstore"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func newUseCase(t *testing.T) (*UseCase, *memstore.Store) {
	t.Helper()

	store := memstore.New()
	layout := domain.ParkingLayout{Partitions: []domain.Partition{
		{Area: domain.AreaParking3, VehicleClass: domain.VehicleCar, Total: 142, SlotsPerRow: 10, PWDSlots: 10},
		{Area: domain.AreaRoofDeck, VehicleClass: domain.VehicleMotorcycle, Total: 90, SlotsPerRow: 15},
	}}
	_, err := store.Slots().Seed(context.Background(), layout.AllSlots())
	require.NoError(t, err)

	return NewUseCase(store.Slots(), store, nopLogger{}), store
}

func TestExecute_GroupsRowsInOrder(t *testing.T) {
	uc, store := newUseCase(t)
	store.SetSlotStatus("parking3-car-A-1", domain.SlotOccupied)
	store.SetSlotStatus("parking3-car-B-3", domain.SlotReserved)

	resp, err := uc.Execute(context.Background(), &Request{Area: "Parking 3"})
	require.NoError(t, err)

	assert.Equal(t, "parking3", resp.Area)
	assert.Equal(t, "Parking 3", resp.AreaName)
	assert.Equal(t, "car", resp.VehicleClass)
	assert.Equal(t, Summary{Total: 142, Available: 140, Reserved: 1, Occupied: 1}, resp.Summary)

	require.Len(t, resp.Rows, 15)
	assert.Equal(t, "A", resp.Rows[0].Name)
	assert.Len(t, resp.Rows[0].Slots, 10)
	assert.Equal(t, "A-1", resp.Rows[0].Slots[0].Label)
	assert.Equal(t, "occupied", resp.Rows[0].Slots[0].Status)
	assert.True(t, resp.Rows[0].Slots[9].Accessible)
	assert.False(t, resp.Rows[1].Slots[0].Accessible)

	last := resp.Rows[14]
	assert.Equal(t, "O", last.Name)
	require.Len(t, last.Slots, 2)
	assert.Equal(t, "O-2", last.Slots[1].Label)
}

func TestExecute_Motorcycles(t *testing.T) {
	uc, _ := newUseCase(t)

	resp, err := uc.Execute(context.Background(), &Request{Area: "roofdeck", VehicleClass: "Motorcycle"})
	require.NoError(t, err)
	assert.Equal(t, 90, resp.Summary.Total)
	assert.Len(t, resp.Rows, 6)
}

func TestExecute_Errors(t *testing.T) {
	uc, _ := newUseCase(t)
	ctx := context.Background()

	_, err := uc.Execute(ctx, &Request{Area: "basement"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = uc.Execute(ctx, &Request{Area: "parking3", VehicleClass: "bus"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = uc.Execute(ctx, &Request{Area: "parking4"})
	assert.ErrorIs(t, err, ErrPartitionNotFound)
}
