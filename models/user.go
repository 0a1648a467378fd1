package models

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID          string `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	Email       string `db:"email" json:"email"`
	PhoneNumber string `db:"phone_number" json:"phone_number"`
	UpiID       string `db:"upi_id" json:"upiId"`
	Role        string `db:"role" json:"role"`
	CreatedAt   string `db:"created_at" json:"createdAt"`
	UpdatedAt   string `db:"updated_at" json:"updatedAt"`
}

// Challenge is the single live OTP record for a phone number. Only the
// bcrypt hash of the code is kept; a later request overwrites the record
// and silently invalidates any previously issued code.
type Challenge struct {
	PhoneNumber string
	CodeHash    []byte
	ExpiresAt   time.Time
}

type Movie struct {
	Name      string `db:"name" json:"name"`
	PosterURL string `db:"poster_url" json:"poster_url"`
}

type Cinema struct {
	Name    string `db:"name" json:"name"`
	City    string `db:"city" json:"city"`
	Address string `db:"address" json:"address"`
}
