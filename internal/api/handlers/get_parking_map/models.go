package get_parking_map

import (
	getParkingMap "github.com/m04kA/SMC-ParkingService/internal/usecase/get_parking_map"
)

// ParkingMapResponse HTTP response model
type ParkingMapResponse struct {
	Area         string          `json:"area"`
	AreaName     string          `json:"areaName"`
	VehicleClass string          `json:"vehicleClass"`
	Summary      SummaryResponse `json:"summary"`
	Rows         []RowResponse   `json:"rows"`
}

// SummaryResponse количество слотов по статусам
type SummaryResponse struct {
	Total     int `json:"total"`
	Available int `json:"available"`
	Reserved  int `json:"reserved"`
	Occupied  int `json:"occupied"`
}

// RowResponse ряд слотов
type RowResponse struct {
	Name  string         `json:"name"`
	Slots []SlotResponse `json:"slots"`
}

// SlotResponse слот на карте
type SlotResponse struct {
	ID         string `json:"id"`
	Label      string `json:"label"`
	Status     string `json:"status"`
	Accessible bool   `json:"accessible"`
	PWDInUse   bool   `json:"pwdInUse"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getParkingMap.Response) *ParkingMapResponse {
	rows := make([]RowResponse, 0, len(resp.Rows))
	for _, row := range resp.Rows {
		slots := make([]SlotResponse, 0, len(row.Slots))
		for _, slot := range row.Slots {
			slots = append(slots, SlotResponse{
				ID:         slot.ID,
				Label:      slot.Label,
				Status:     slot.Status,
				Accessible: slot.Accessible,
				PWDInUse:   slot.PWDInUse,
			})
		}
		rows = append(rows, RowResponse{Name: row.Name, Slots: slots})
	}

	return &ParkingMapResponse{
		Area:         resp.Area,
		AreaName:     resp.AreaName,
		VehicleClass: resp.VehicleClass,
		Summary: SummaryResponse{
			Total:     resp.Summary.Total,
			Available: resp.Summary.Available,
			Reserved:  resp.Summary.Reserved,
			Occupied:  resp.Summary.Occupied,
		},
		Rows: rows,
	}
}
