package get_parking_map

// Request модель запроса карты парковки
type Request struct {
	Area         string // parking3, parking4, roofdeck или "Parking 3"
	VehicleClass string // car или motorcycle, по умолчанию car
}

// Response карта одной площадки для одного класса транспорта
type Response struct {
	Area         string
	AreaName     string
	VehicleClass string
	Summary      Summary // Считается при чтении
	Rows         []Row
}

// Summary количество слотов по статусам
type Summary struct {
	Total     int
	Available int
	Reserved  int
	Occupied  int
}

// Row ряд слотов (A, B, ...)
type Row struct {
	Name  string
	Slots []Slot
}

// Slot модель слота на карте
type Slot struct {
	ID         string // Например, parking3-car-A-1
	Label      string // Например, A-1
	Index      int
	Status     string
	Accessible bool // Место для людей с инвалидностью
	PWDInUse   bool
}
