package domain

import "fmt"

// Partition is the fixed capacity of one vehicle class in one area.
// Slots fill rows of SlotsPerRow, rows are lettered A, B, ... and the last row
// holds the remainder. The first PWDSlots slots of the first row are accessible.
type Partition struct {
	Area         Area
	VehicleClass VehicleClass
	Total        int
	SlotsPerRow  int
	PWDSlots     int
}

// Rows returns the number of rows needed for Total slots
func (p Partition) Rows() int {
	if p.SlotsPerRow <= 0 || p.Total <= 0 {
		return 0
	}
	return (p.Total + p.SlotsPerRow - 1) / p.SlotsPerRow
}

// Slots generates the slots of the partition in row/index order, all available
func (p Partition) Slots() []*Slot {
	slots := make([]*Slot, 0, p.Total)
	for i := 0; i < p.Total; i++ {
		row := RowName(i / p.SlotsPerRow)
		index := i%p.SlotsPerRow + 1
		slots = append(slots, &Slot{
			ID:           SlotID(p.Area, p.VehicleClass, row, index),
			Area:         p.Area,
			VehicleClass: p.VehicleClass,
			Row:          row,
			Index:        index,
			Status:       SlotAvailable,
			Accessible:   i < p.PWDSlots,
		})
	}
	return slots
}

// RowName converts a zero-based row number into a letter name: 0 -> A, 25 -> Z, 26 -> AA
func RowName(n int) string {
	name := ""
	for n >= 0 {
		name = string(rune('A'+n%26)) + name
		n = n/26 - 1
	}
	return name
}

// ParkingLayout the set of partitions of all areas
type ParkingLayout struct {
	Partitions []Partition
}

// Partition returns the partition of an area and vehicle class
func (l ParkingLayout) Partition(area Area, class VehicleClass) (Partition, error) {
	for _, p := range l.Partitions {
		if p.Area == area && p.VehicleClass == class {
			return p, nil
		}
	}
	return Partition{}, fmt.Errorf("%w: no partition for %s/%s", ErrInvalidInput, area, class)
}

// AllSlots generates the slots of every partition
func (l ParkingLayout) AllSlots() []*Slot {
	var slots []*Slot
	for _, p := range l.Partitions {
		slots = append(slots, p.Slots()...)
	}
	return slots
}
