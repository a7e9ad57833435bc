package domain

// Contact is a phonebook entry.
type Contact struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Number string `json:"number"`
	Email  string `json:"email,omitempty"`
}
