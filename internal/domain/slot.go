package domain

import (
	"fmt"
	"strings"
	"time"
)

// Area is one of the physical parking zones
type Area string

const (
	AreaParking3 Area = "parking3"
	AreaParking4 Area = "parking4"
	AreaRoofDeck Area = "roofdeck"
)

// Areas lists all areas in display order
var Areas = []Area{AreaParking3, AreaParking4, AreaRoofDeck}

var areaNames = map[Area]string{
	AreaParking3: "Parking 3",
	AreaParking4: "Parking 4",
	AreaRoofDeck: "Roof Deck",
}

// DisplayName returns the human-readable area name
func (a Area) DisplayName() string {
	if name, ok := areaNames[a]; ok {
		return name
	}
	return string(a)
}

// ParseArea accepts both the code ("parking3") and the display name ("Parking 3")
func ParseArea(s string) (Area, error) {
	normalized := Area(strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", "")))
	if _, ok := areaNames[normalized]; !ok {
		return "", fmt.Errorf("%w: unknown area %q", ErrInvalidInput, s)
	}
	return normalized, nil
}

// VehicleClass restricts which vehicles can use a slot
type VehicleClass string

const (
	VehicleCar        VehicleClass = "car"
	VehicleMotorcycle VehicleClass = "motorcycle"
)

// VehicleClasses lists all vehicle classes
var VehicleClasses = []VehicleClass{VehicleCar, VehicleMotorcycle}

// ParseVehicleClass converts a string to a VehicleClass
func ParseVehicleClass(s string) (VehicleClass, error) {
	vc := VehicleClass(strings.ToLower(strings.TrimSpace(s)))
	if vc != VehicleCar && vc != VehicleMotorcycle {
		return "", fmt.Errorf("%w: unknown vehicle class %q", ErrInvalidInput, s)
	}
	return vc, nil
}

// SlotStatus represents the occupancy of one slot
type SlotStatus string

const (
	SlotAvailable SlotStatus = "available"
	SlotReserved  SlotStatus = "reserved"
	SlotOccupied  SlotStatus = "occupied"
)

// Slot is one physical parking space
type Slot struct {
	ID           string
	Area         Area
	VehicleClass VehicleClass
	Row          string
	Index        int
	Status       SlotStatus

	// Accessible marks a PWD-designated slot, PWDInUse is set while a PWD booking holds it
	Accessible bool
	PWDInUse   bool

	UpdatedAt time.Time
}

// Label returns the row-index label shown on the map, e.g. "A-1"
func (s *Slot) Label() string {
	return fmt.Sprintf("%s-%d", s.Row, s.Index)
}

// IsAvailable returns true if the slot can be reserved
func (s *Slot) IsAvailable() bool {
	return s.Status == SlotAvailable
}

// SlotID builds the slot identifier: <area>-<class>-<row>-<index>
func SlotID(area Area, class VehicleClass, row string, index int) string {
	return fmt.Sprintf("%s-%s-%s-%d", area, class, row, index)
}

// SlotLabelFromID extracts "<row>-<index>" from a slot id, e.g. "parking3-car-A-1" -> "A-1"
func SlotLabelFromID(id string) string {
	parts := strings.Split(id, "-")
	if len(parts) < 2 {
		return id
	}
	return parts[len(parts)-2] + "-" + parts[len(parts)-1]
}

// OccupancySummary counts slots by status, computed on read
type OccupancySummary struct {
	Area         Area
	VehicleClass VehicleClass
	Total        int
	Available    int
	Reserved     int
	Occupied     int
}

// Add counts one slot with the given status
func (o *OccupancySummary) Add(status SlotStatus, n int) {
	o.Total += n
	switch status {
	case SlotAvailable:
		o.Available += n
	case SlotReserved:
		o.Reserved += n
	case SlotOccupied:
		o.Occupied += n
	}
}

// Summarize computes the summary of an ordered slot list
func Summarize(area Area, class VehicleClass, slots []*Slot) OccupancySummary {
	summary := OccupancySummary{Area: area, VehicleClass: class}
	for _, s := range slots {
		summary.Add(s.Status, 1)
	}
	return summary
}
