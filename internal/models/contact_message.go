package models

import "time"

// ContactMessageStatusNew is the status every submission starts with.
const ContactMessageStatusNew = "New"

// ContactMessage represents a row in the contact_messages table
type ContactMessage struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Phone     string    `db:"phone" json:"phone,omitempty"`
	Subject   string    `db:"subject" json:"subject"`
	Message   string    `db:"message" json:"message"`
	Date      string    `db:"date" json:"date"` // RFC 3339, as submitted
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"-"`
}
