package list_bookings

import (
	"net/url"
	"strconv"

	"github.com/m04kA/SMC-ParkingService/internal/service/bookings/models"
)

// ToServiceRequest собирает фильтр из query параметров: status, paid, area, vehicleClass, limit
func ToServiceRequest(query url.Values) (*models.ListBookingsRequest, error) {
	req := &models.ListBookingsRequest{}

	if v := query.Get("status"); v != "" {
		req.Status = &v
	}
	if v := query.Get("area"); v != "" {
		req.Area = &v
	}
	if v := query.Get("vehicleClass"); v != "" {
		req.VehicleClass = &v
	}

	if v := query.Get("paid"); v != "" {
		paid, err := strconv.ParseBool(v)
		if err != nil {
			return nil, err
		}
		req.IsPaid = &paid
	}

	if v := query.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return nil, err
		}
		req.Limit = limit
	}

	return req, nil
}
