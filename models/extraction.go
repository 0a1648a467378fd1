package models

// Extraction is the structured result the LLM collaborator produces from
// OCR text. Field names mirror the JSON contract it is prompted with.
// EventName, ShowTime and OriginalPrice may legitimately be null.
type Extraction struct {
	EventName     *string  `json:"event_name"`
	Venue         string   `json:"venue"`
	ShowTime      *string  `json:"datetime"`
	OriginalPrice *float64 `json:"original_price"`
	SeatNumbers   []string `json:"seat_numbers"`
	Count         int      `json:"count"`
	City          string   `json:"city"`
}
