package support

import (
	"time"
)

// Ticket statuses follow the admin workflow: a ticket opens, staff pick it
// up, and it ends resolved or closed.
const (
	StatusOpen       = "open"
	StatusInProgress = "in_progress"
	StatusResolved   = "resolved"
	StatusClosed     = "closed"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

type Ticket struct {
	ID         int64     `gorm:"primaryKey"`
	UserID     int64     `gorm:"column:user_id;not null;index"`
	Subject    string    `gorm:"column:subject;not null"`
	Message    string    `gorm:"column:message;not null"`
	Priority   string    `gorm:"column:priority;default:medium"`
	Status     string    `gorm:"column:status;default:open;index"`
	AdminReply *string   `gorm:"column:admin_reply"`
	CreatedAt  time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt  time.Time `gorm:"column:updated_at;default:now()"`
}

func (Ticket) TableName() string {
	return "support_tickets"
}
