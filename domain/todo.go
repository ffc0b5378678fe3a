package domain

import "time"

// Todo represents a task record that may carry one remote image and one
// remote PDF. The row stores only the access URLs returned by the object
// store, never the bytes themselves.
type Todo struct {
	ID        string     `json:"id"`
	Text      string     `json:"text"`
	DueDate   *time.Time `json:"due_date,omitempty"`
	Completed bool       `json:"completed"`
	ImageURL  string     `json:"image_url,omitempty"`
	PDFURL    string     `json:"pdf_url,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (t *Todo) HasAttachments() bool {
	return t != nil && (t.ImageURL != "" || t.PDFURL != "")
}
