package domain

import "time"

// ProfitRecord daily revenue from paid bookings
type ProfitRecord struct {
	Date      time.Time
	Amount    int64
	UpdatedAt time.Time
}

// DateOf returns midnight of t's calendar day in t's location
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
