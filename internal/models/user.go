package models

import "time"

// User is a row of the users table (internal use only).
type User struct {
	ID              int64
	Email           string
	PasswordHash    string
	Name            string
	Nickname        string
	Phone           string
	Address         string
	DetailedAddress string
	PostalCode      string
	EmergencyCall   string
	SojuUnit        int
	SojuAmount      float64
	BeerUnit        int
	BeerAmount      float64
	Verified        bool
	CreatedAt       time.Time
}

// UserDTO is used for sign-up, profile reads and profile updates.
// Password is only read on sign-up and never written back.
type UserDTO struct {
	Email           string  `json:"email"`
	Password        string  `json:"password,omitempty"`
	Name            string  `json:"name"`
	Nickname        string  `json:"nickname,omitempty"`
	Phone           string  `json:"phone,omitempty"`
	Address         string  `json:"address,omitempty"`
	DetailedAddress string  `json:"detailedAddress,omitempty"`
	PostalCode      string  `json:"postalCode,omitempty"`
	EmergencyCall   string  `json:"emergencyCall,omitempty"`
	SojuUnit        int     `json:"sojuUnit"`
	SojuAmount      float64 `json:"sojuAmount"`
	BeerUnit        int     `json:"beerUnit"`
	BeerAmount      float64 `json:"beerAmount"`
}

// ToDTO converts a user row into its profile representation.
func (u *User) ToDTO() UserDTO {
	return UserDTO{
		Email:           u.Email,
		Name:            u.Name,
		Nickname:        u.Nickname,
		Phone:           u.Phone,
		Address:         u.Address,
		DetailedAddress: u.DetailedAddress,
		PostalCode:      u.PostalCode,
		EmergencyCall:   u.EmergencyCall,
		SojuUnit:        u.SojuUnit,
		SojuAmount:      u.SojuAmount,
		BeerUnit:        u.BeerUnit,
		BeerAmount:      u.BeerAmount,
	}
}
