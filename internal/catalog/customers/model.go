package customers

import "time"

// Customer is a catalog entry for a buying party.
type Customer struct {
	ID            int64     `json:"id"`
	Name          string    `json:"customer_name"`
	Contact       string    `json:"contact"`
	Address       *string   `json:"address,omitempty"`
	ContactPerson *string   `json:"contact_person_name,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
