package support

import (
	errors "github.com/devrahi999/ihntopup/internal"
	"github.com/devrahi999/ihntopup/internal/core/common/validation"
	"github.com/devrahi999/ihntopup/internal/core/datamodel/support"
)

var (
	ticketStatuses   = []string{support.StatusOpen, support.StatusInProgress, support.StatusResolved, support.StatusClosed}
	ticketPriorities = []string{support.PriorityLow, support.PriorityMedium, support.PriorityHigh}
)

// CreateTicketDTO is the request body for opening a support ticket.
type CreateTicketDTO struct {
	Subject  string `json:"subject"`
	Message  string `json:"message"`
	Priority string `json:"priority,omitempty"`
}

func (d CreateTicketDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("subject", d.Subject).
		Required().
		MaxLen(200, errors.ErrCodeValidationFailed)
	v.Field("message", d.Message).
		Required().
		MaxLen(5000, errors.ErrCodeValidationFailed)
	v.Field("priority", d.Priority).
		OneOf(ticketPriorities, errors.ErrCodeValidationFailed)
	return v.Validate()
}

// UpdateTicketDTO is the admin request body for moving a ticket through the
// workflow. Nil fields are left unchanged.
type UpdateTicketDTO struct {
	Status     *string `json:"status,omitempty"`
	Priority   *string `json:"priority,omitempty"`
	AdminReply *string `json:"admin_reply,omitempty"`
}

func (d UpdateTicketDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	if d.Status != nil {
		v.Field("status", *d.Status).
			Required().
			OneOf(ticketStatuses, errors.ErrCodeValidationFailed)
	}
	if d.Priority != nil {
		v.Field("priority", *d.Priority).
			Required().
			OneOf(ticketPriorities, errors.ErrCodeValidationFailed)
	}
	return v.Validate()
}
