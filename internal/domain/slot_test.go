package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartition_Slots(t *testing.T) {
	p := Partition{Area: AreaParking3, VehicleClass: VehicleCar, Total: 142, SlotsPerRow: 10, PWDSlots: 10}

	slots := p.Slots()
	require.Len(t, slots, 142)
	assert.Equal(t, 15, p.Rows())

	first := slots[0]
	assert.Equal(t, "parking3-car-A-1", first.ID)
	assert.Equal(t, "A-1", first.Label())
	assert.True(t, first.Accessible)
	assert.Equal(t, SlotAvailable, first.Status)

	assert.True(t, slots[9].Accessible)
	assert.False(t, slots[10].Accessible)
	assert.Equal(t, "B-1", slots[10].Label())

	last := slots[141]
	assert.Equal(t, "O-2", last.Label())

	accessible := 0
	for _, s := range slots {
		if s.Accessible {
			accessible++
		}
	}
	assert.Equal(t, 10, accessible)
}

func TestRowName(t *testing.T) {
	assert.Equal(t, "A", RowName(0))
	assert.Equal(t, "Z", RowName(25))
	assert.Equal(t, "AA", RowName(26))
	assert.Equal(t, "AB", RowName(27))
}

func TestParseArea(t *testing.T) {
	for _, in := range []string{"parking3", "Parking 3", " PARKING3 "} {
		a, err := ParseArea(in)
		require.NoError(t, err, in)
		assert.Equal(t, AreaParking3, a)
	}

	a, err := ParseArea("Roof Deck")
	require.NoError(t, err)
	assert.Equal(t, AreaRoofDeck, a)
	assert.Equal(t, "Roof Deck", a.DisplayName())

	_, err = ParseArea("basement")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSummarize(t *testing.T) {
	slots := Partition{Area: AreaRoofDeck, VehicleClass: VehicleMotorcycle, Total: 5, SlotsPerRow: 15}.Slots()
	slots[0].Status = SlotReserved
	slots[1].Status = SlotOccupied

	s := Summarize(AreaRoofDeck, VehicleMotorcycle, slots)
	assert.Equal(t, OccupancySummary{
		Area:         AreaRoofDeck,
		VehicleClass: VehicleMotorcycle,
		Total:        5,
		Available:    3,
		Reserved:     1,
		Occupied:     1,
	}, s)
}

func TestParkingLayout_Partition(t *testing.T) {
	layout := ParkingLayout{Partitions: []Partition{
		{Area: AreaParking4, VehicleClass: VehicleMotorcycle, Total: 59, SlotsPerRow: 15},
	}}

	p, err := layout.Partition(AreaParking4, VehicleMotorcycle)
	require.NoError(t, err)
	assert.Equal(t, 4, p.Rows())
	assert.Len(t, layout.AllSlots(), 59)

	_, err = layout.Partition(AreaParking3, VehicleCar)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
