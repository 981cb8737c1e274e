package get_parking_map

import "github.com/m04kA/SMC-ParkingService/internal/domain"

// groupRows группирует упорядоченные слоты по рядам, сохраняя порядок
func groupRows(slots []*domain.Slot) []Row {
	rows := make([]Row, 0)

	for _, slot := range slots {
		if len(rows) == 0 || rows[len(rows)-1].Name != slot.Row {
			rows = append(rows, Row{Name: slot.Row})
		}

		current := &rows[len(rows)-1]
		current.Slots = append(current.Slots, Slot{
			ID:         slot.ID,
			Label:      slot.Label(),
			Index:      slot.Index,
			Status:     string(slot.Status),
			Accessible: slot.Accessible,
			PWDInUse:   slot.PWDInUse,
		})
	}

	return rows
}
