package models

import "time"

// DateLayout is the wire and storage format of booking dates.
const DateLayout = "2006-01-02"

type Booking struct {
	ID          int64    `json:"booking_id" db:"booking_id"`
	CustomerID  int64    `json:"customer_id" db:"customer_id"`
	CarID       int64    `json:"car_id" db:"car_id"`
	BookingDate string   `json:"booking_date" db:"booking_date"`
	ReturnDate  string   `json:"return_date" db:"return_date"`
	TotalCost   *float64 `json:"total_cost" db:"total_cost"`
}

type NewBooking struct {
	CustomerID  int64
	CarID       int64
	BookingDate time.Time
	ReturnDate  time.Time
}

// Days is the number of whole rental days between pickup and return.
func (b NewBooking) Days() int {
	return int(b.ReturnDate.Sub(b.BookingDate).Hours() / 24)
}

type BookingResult struct {
	ID        int64
	TotalCost float64
}
