package domain

import "time"

// Passenger holds a person's identity, contact and travel-document data.
// The frequent-traveler loyalty account is an optional capability attached
// to the passenger, not a subtype.
type Passenger struct {
	ID          int64     `json:"passenger_id"`
	IDType      string    `json:"id_type"`
	IDNumber    string    `json:"id_number"`
	IDDocument  string    `json:"id_document"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	AreaCode    string    `json:"area_code"`
	PhoneNumber string    `json:"phone_number"`
	Email       string    `json:"email"`
	Birthdate   time.Time `json:"birthdate"`
	Citizenship string    `json:"citizenship,omitempty"`

	FrequentTraveler *FrequentTraveler `json:"frequent_traveler,omitempty"`
}

// FrequentTraveler is the loyalty capability keyed by passenger id.
// Points are redeemable one-to-one against a payment total.
type FrequentTraveler struct {
	PassengerID int64  `json:"passenger_id"`
	FQTVID      string `json:"fqtv_id"`
	Points      int64  `json:"points"`
}
