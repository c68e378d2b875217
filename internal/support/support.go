package support

import (
	"context"

	"github.com/devrahi999/ihntopup/internal/core/datamodel/support"
)

// Repository defines the data access methods for support tickets.
type Repository interface {
	Create(ctx context.Context, ticket *support.Ticket) error
	GetByID(ctx context.Context, id int64) (*support.Ticket, error)
	ListByUser(ctx context.Context, userID int64) ([]*support.Ticket, error)
	ListAll(ctx context.Context, status string, limit, offset int) ([]*support.Ticket, error)
	CountAll(ctx context.Context, status string) (int64, error)
	Update(ctx context.Context, ticket *support.Ticket) error
}

// ServiceAPI is the support surface exposed to HTTP handlers.
type ServiceAPI interface {
	CreateTicket(ctx context.Context, userID int64, dto CreateTicketDTO) (*support.Ticket, error)
	ListForUser(ctx context.Context, userID int64) ([]*support.Ticket, error)
	ListAll(ctx context.Context, status string, limit, offset int) (*TicketListResult, error)
	UpdateTicket(ctx context.Context, id int64, dto UpdateTicketDTO) (*support.Ticket, error)
}

type TicketListResult struct {
	Tickets []*support.Ticket `json:"tickets"`
	Total   int64             `json:"total"`
	Limit   int               `json:"limit"`
	Offset  int               `json:"offset"`
}
