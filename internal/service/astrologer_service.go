package service

import (
	"context"
	"fmt"

	"astro_consult/internal/model"
	"astro_consult/internal/repository"
)

// DirectoryLimit caps the astrologer listing
const DirectoryLimit = 50

// AstrologerService serves the public astrologer directory
type AstrologerService interface {
	ListAstrologers(ctx context.Context) ([]model.AstrologerPublic, error)
}

type astrologerService struct {
	userRepo repository.UserRepository
}

func NewAstrologerService(userRepo repository.UserRepository) AstrologerService {
	return &astrologerService{userRepo: userRepo}
}

func (s *astrologerService) ListAstrologers(ctx context.Context) ([]model.AstrologerPublic, error) {
	users, err := s.userRepo.FindByRole(ctx, model.RoleAstrologer, DirectoryLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list astrologers: %w", err)
	}

	profiles := make([]model.AstrologerPublic, 0, len(users))
	for i := range users {
		profiles = append(profiles, users[i].PublicProfile())
	}
	return profiles, nil
}
