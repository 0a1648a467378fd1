package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// SeatList is stored as a JSON array in a single column.
type SeatList []string

func (s SeatList) Value() (driver.Value, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (s *SeatList) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*s = nil
		return nil
	case string:
		return json.Unmarshal([]byte(v), s)
	case []byte:
		return json.Unmarshal(v, s)
	default:
		return fmt.Errorf("seat list: cannot scan %T", src)
	}
}

type Ticket struct {
	ID            string          `db:"id" json:"ticket_id"`
	UserID        string          `db:"user_id" json:"user_id"`
	SoldBy        string          `db:"sold_by" json:"sold_by"`
	BoughtBy      *string         `db:"bought_by" json:"bought_by"`
	EventName     *string         `db:"event_name" json:"event_name"`
	Venue         string          `db:"venue" json:"venue"`
	City          string          `db:"city" json:"city"`
	ShowTime      *string         `db:"show_time" json:"datetime"`
	OriginalPrice decimal.Decimal `db:"original_price" json:"original_price"`
	SellingPrice  decimal.Decimal `db:"selling_price" json:"selling_price"`
	ContactInfo   string          `db:"contact_info" json:"contact_info,omitempty"`
	TicketURL     string          `db:"ticket_url" json:"ticket_url,omitempty"`
	PosterURL     *string         `db:"poster_url" json:"poster_url"`
	SeatNumbers   SeatList        `db:"seat_numbers" json:"seat_numbers"`
	Count         int             `db:"count" json:"count"`
	IsSold        bool            `db:"is_sold" json:"is_sold"`
	Deleted       bool            `db:"deleted" json:"deleted"`
	OrderID       *string         `db:"order_id" json:"order_id,omitempty"`
	PaymentID     *string         `db:"payment_id" json:"payment_id,omitempty"`
	SoldAt        *string         `db:"sold_at" json:"sold_at,omitempty"`
	CreatedAt     string          `db:"created_at" json:"created_at"`
}

// Redacted returns a copy suitable for public browse and detail views:
// the seller's contact handle and the ticket media are stripped.
func (t Ticket) Redacted() Ticket {
	t.ContactInfo = ""
	t.TicketURL = ""
	return t
}

// TicketDraft carries the validated fields of a new listing before the
// store assigns id, flags and timestamps.
type TicketDraft struct {
	EventName     *string
	Venue         string
	City          string
	ShowTime      *string
	OriginalPrice decimal.Decimal
	SellingPrice  decimal.Decimal
	ContactInfo   string
	TicketURL     string
	PosterURL     *string
	SeatNumbers   []string
	Count         int
}

type Report struct {
	ID         int64  `db:"id" json:"id"`
	TicketID   string `db:"ticket_id" json:"ticket_id"`
	ReportedAt string `db:"reported_at" json:"reported_at"`
}

// ListFilter narrows the public listing. City is a case-insensitive
// substring match, MinCount a lower bound on the seat count.
type ListFilter struct {
	City     string
	MinCount int
	Sort     string // price_asc, price_desc, date_asc, date_desc
}
