package admin

import (
	"context"
	"log/slog"
)

const recentLimit = 5

// Service aggregates store-wide figures for the admin dashboard and user
// management screens. Read-only; nothing here mutates state.
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

func (s *Service) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	totalUsers, err := s.repo.CountUsers(ctx)
	if err != nil {
		s.logger.Error("failed to count users", "error", err)
		return nil, err
	}

	totals, err := s.repo.OrderTotals(ctx)
	if err != nil {
		s.logger.Error("failed to aggregate orders", "error", err)
		return nil, err
	}

	recentUsers, err := s.repo.RecentUsers(ctx, recentLimit)
	if err != nil {
		s.logger.Error("failed to list recent users", "error", err)
		return nil, err
	}

	recentOrders, err := s.repo.RecentOrders(ctx, recentLimit)
	if err != nil {
		s.logger.Error("failed to list recent orders", "error", err)
		return nil, err
	}

	summaries := make([]UserSummary, 0, len(recentUsers))
	for _, u := range recentUsers {
		summaries = append(summaries, summarize(u))
	}

	return &DashboardStats{
		TotalUsers:      totalUsers,
		TotalOrders:     totals.TotalOrders,
		PendingOrders:   totals.PendingOrders,
		CompletedOrders: totals.CompletedOrders,
		TotalRevenue:    totals.TotalRevenue,
		RecentUsers:     summaries,
		RecentOrders:    recentOrders,
	}, nil
}

func (s *Service) ListUsers(ctx context.Context, limit, offset int) (*UserListResult, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	users, err := s.repo.ListUsers(ctx, limit, offset)
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, err
	}

	total, err := s.repo.CountUsers(ctx)
	if err != nil {
		s.logger.Error("failed to count users", "error", err)
		return nil, err
	}

	aggregates, err := s.repo.CompletedOrderAggregates(ctx)
	if err != nil {
		s.logger.Error("failed to aggregate user orders", "error", err)
		return nil, err
	}

	summaries := make([]UserSummary, 0, len(users))
	for _, u := range users {
		summary := summarize(u)
		if agg, ok := aggregates[u.ID]; ok {
			summary.OrderCount = agg.Count
			summary.TotalSpent = agg.Spent
		}
		summaries = append(summaries, summary)
	}

	return &UserListResult{
		Users:  summaries,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}, nil
}
