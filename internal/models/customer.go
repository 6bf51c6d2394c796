package models

type Customer struct {
	ID          int64  `json:"customer_id" db:"customer_id"`
	Name        string `json:"name" db:"name"`
	PhoneNumber string `json:"phone_number" db:"phone_number"`
	Email       string `json:"email" db:"email"`
}
