package user

import (
	"fmt"
)

type Repository interface {
	GetByID(userID int64) (*User, error)
	UpdateProfile(userID int64, name, phone string) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
	}
}

func (s *Service) GetByID(userID int64) (*User, error) {
	u, err := s.repo.GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return u, nil
}

func (s *Service) UpdateProfile(userID int64, dto UpdateProfileDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateProfile(userID, dto.Name, dto.Phone); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return s.repo.GetByID(userID)
}
