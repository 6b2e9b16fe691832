package model

// Card describes the instrument a transaction was made with.
// JSON keys follow the dashboard's card shape.
type Card struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	HolderName   string `json:"userName"`
	MaskedNumber string `json:"password"`
	Expiry       string `json:"validate"` // ISO-8601 timestamp
}
