package types

import "time"

// Submission statuses. Pending is the initial state; approved and rejected
// are terminal.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Submission is a user-provided text item tracked through the moderation
// lifecycle. Column names and order match the legacy spreadsheet layout so
// the CSV export stays consumable by existing sheets.
type Submission struct {
	ID        uint64    `gorm:"primaryKey;column:id"`
	Text      string    `gorm:"column:text;type:text;not null"`
	Likes     int       `gorm:"column:likes;not null;default:0"`
	Status    string    `gorm:"column:status;size:16;not null;default:pending;index"`
	CreatedAt time.Time `gorm:"column:created_at"`
	Voters    string    `gorm:"column:voters;type:text"`
}
