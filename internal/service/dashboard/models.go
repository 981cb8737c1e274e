package dashboard

import "time"

// Response сводка для панели администратора
type Response struct {
	Occupancy     []Occupancy    `json:"occupancy"`
	TotalRevenue  int64          `json:"totalRevenue"`
	TodayRevenue  int64          `json:"todayRevenue"`
	ActiveUsers   int            `json:"activeUsers"`
	BookingCounts map[string]int `json:"bookingCounts"`
	Unpaid        []UnpaidItem   `json:"unpaid"`
	GeneratedAt   time.Time      `json:"generatedAt"`
}

// Occupancy занятость одной площадки для одного класса
type Occupancy struct {
	Area         string `json:"area"`
	AreaName     string `json:"areaName"`
	VehicleClass string `json:"vehicleClass"`
	Total        int    `json:"total"`
	Available    int    `json:"available"`
	Reserved     int    `json:"reserved"`
	Occupied     int    `json:"occupied"`
}

// UnpaidItem подтвержденное, но не оплаченное бронирование
type UnpaidItem struct {
	BookingID   string    `json:"bookingId"`
	UserName    string    `json:"userName"`
	PlateNumber string    `json:"plateNumber"`
	SlotID      string    `json:"slotId"`
	SlotLabel   string    `json:"slotLabel"`
	AreaName    string    `json:"areaName"`
	TotalAmount int64     `json:"totalAmount"`
	ExpiresAt   time.Time `json:"expiresAt"`
}
