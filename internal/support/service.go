package support

import (
	"context"
	"errors"
	"log/slog"

	"gorm.io/gorm"

	internal "github.com/devrahi999/ihntopup/internal"
	"github.com/devrahi999/ihntopup/internal/core/datamodel/support"
)

// Service handles support ticket workflow: users open tickets, admins move
// them through the status lifecycle and attach replies.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) CreateTicket(ctx context.Context, userID int64, dto CreateTicketDTO) (*support.Ticket, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	priority := dto.Priority
	if priority == "" {
		priority = support.PriorityMedium
	}

	ticket := &support.Ticket{
		UserID:   userID,
		Subject:  dto.Subject,
		Message:  dto.Message,
		Priority: priority,
		Status:   support.StatusOpen,
	}
	if err := s.repo.Create(ctx, ticket); err != nil {
		s.logger.Error("failed to create support ticket", "error", err, "user_id", userID)
		return nil, internal.NewInternalError("failed to create support ticket", err)
	}

	s.logger.Info("support ticket opened",
		"ticket_id", ticket.ID,
		"user_id", userID,
		"priority", priority)

	return ticket, nil
}

func (s *Service) ListForUser(ctx context.Context, userID int64) ([]*support.Ticket, error) {
	tickets, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list support tickets", "error", err, "user_id", userID)
		return nil, err
	}
	return tickets, nil
}

func (s *Service) ListAll(ctx context.Context, status string, limit, offset int) (*TicketListResult, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	tickets, err := s.repo.ListAll(ctx, status, limit, offset)
	if err != nil {
		s.logger.Error("failed to list all support tickets", "error", err)
		return nil, err
	}

	total, err := s.repo.CountAll(ctx, status)
	if err != nil {
		s.logger.Error("failed to count support tickets", "error", err)
		return nil, err
	}

	return &TicketListResult{
		Tickets: tickets,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
	}, nil
}

func (s *Service) UpdateTicket(ctx context.Context, id int64, dto UpdateTicketDTO) (*support.Ticket, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	ticket, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrTicketNotFound
		}
		s.logger.Error("failed to load support ticket", "error", err, "ticket_id", id)
		return nil, err
	}

	if dto.Status != nil {
		ticket.Status = *dto.Status
	}
	if dto.Priority != nil {
		ticket.Priority = *dto.Priority
	}
	if dto.AdminReply != nil {
		ticket.AdminReply = dto.AdminReply
	}

	if err := s.repo.Update(ctx, ticket); err != nil {
		s.logger.Error("failed to update support ticket", "error", err, "ticket_id", id)
		return nil, internal.NewInternalError("failed to update support ticket", err)
	}

	s.logger.Info("support ticket updated",
		"ticket_id", ticket.ID,
		"status", ticket.Status)

	return ticket, nil
}
