package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/redmath/phonebook/internal/core/domain"
	"github.com/redmath/phonebook/internal/core/ports"
)

// ContactService implements phonebook operations. Field validation happens at
// the HTTP edge.
type ContactService struct {
	repo   ports.ContactRepository
	logger zerolog.Logger
}

func NewContactService(repo ports.ContactRepository, logger zerolog.Logger) *ContactService {
	return &ContactService{repo: repo, logger: logger}
}

func (s *ContactService) Save(ctx context.Context, contact domain.Contact) (*domain.Contact, error) {
	contact.ID = ""
	created, err := s.repo.Create(ctx, &contact)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to save contact")
		return nil, err
	}
	s.logger.Info().Str("id", created.ID).Msg("contact saved")
	return created, nil
}

func (s *ContactService) Update(ctx context.Context, contact domain.Contact) error {
	if contact.ID == "" {
		return domain.ErrContactNotFound
	}
	return s.repo.Update(ctx, &contact)
}

func (s *ContactService) List(ctx context.Context) ([]*domain.Contact, error) {
	return s.repo.List(ctx)
}

func (s *ContactService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *ContactService) DeleteAll(ctx context.Context) error {
	if err := s.repo.DeleteAll(ctx); err != nil {
		return err
	}
	s.logger.Info().Msg("all contacts deleted")
	return nil
}
