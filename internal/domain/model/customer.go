package model

import "time"

// Customer places orders and ships or receives parcels.
type Customer struct {
	ID         int64
	FirstName  string
	LastName   string
	Phone      string
	Email      string
	Address    string
	City       string
	Country    string
	PostalCode string
	Status     string
	CreatedAt  time.Time
}

// FullName joins first and last name.
func (c Customer) FullName() string {
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}
