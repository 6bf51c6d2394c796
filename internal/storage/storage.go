package storage

import "errors"

var (
	ErrCarNotFound      = errors.New("car not found")
	ErrCarExists        = errors.New("car with this registration number already exists")
	ErrCarNotAvailable  = errors.New("car not available for booking")
	ErrCustomerNotFound = errors.New("customer not found")
	ErrInvalidDateRange = errors.New("return date is before booking date")
	ErrInvalidInput     = errors.New("value out of range for storage")
)
