package domain

import (
	"fmt"
	"time"
)

// ComputeFare returns hours × rate. No proration and no PWD adjustment.
func ComputeFare(hours int, rate int64) (int64, error) {
	if hours < MinHours || hours > MaxHours {
		return 0, fmt.Errorf("%w: %d not in %d..%d", ErrInvalidHours, hours, MinHours, MaxHours)
	}
	return int64(hours) * rate, nil
}

// ExpirationOf returns check-in + hours
func ExpirationOf(checkIn time.Time, hours int) time.Time {
	return checkIn.Add(time.Duration(hours) * time.Hour)
}

// ValidateCheckIn accepts check-ins from the current minute up to MaxCheckInAhead
func ValidateCheckIn(checkIn, now time.Time) error {
	if checkIn.Before(now.Truncate(time.Minute)) {
		return ErrCheckInInPast
	}
	if checkIn.After(now.Add(MaxCheckInAhead)) {
		return ErrCheckInTooFar
	}
	return nil
}

// ParseCheckInClock builds a check-in from "HH:MM" on the date of now, in now's location
func ParseCheckInClock(value string, now time.Time) (time.Time, error) {
	clock, err := time.Parse(TimeFormat, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: check-in %q is not HH:MM", ErrInvalidInput, value)
	}
	y, m, d := now.Date()
	return time.Date(y, m, d, clock.Hour(), clock.Minute(), 0, 0, now.Location()), nil
}
