package models

const (
	AvailabilityAvailable = "Available"
	AvailabilityBooked    = "Booked"
)

type Car struct {
	ID                 int64   `json:"car_id" db:"car_id"`
	Model              string  `json:"model" db:"model"`
	RegistrationNumber string  `json:"registration_number" db:"registration_number"`
	DailyRentalRate    float64 `json:"daily_rental_rate" db:"daily_rental_rate"`
	Availability       string  `json:"availability" db:"availability"`
}

type NewCar struct {
	Model              string
	RegistrationNumber string
	DailyRentalRate    float64
}
