package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
)

type Service interface {
	Register(ctx context.Context, externalID, email, name string) (*User, error)
	GetByExternalID(ctx context.Context, externalID string) (*User, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// Register creates the local account for an identity-provider user.
// Registering the same external id twice is idempotent: the second call
// returns the row created by the first.
func (s *service) Register(ctx context.Context, externalID, email, name string) (*User, error) {
	if externalID == "" {
		return nil, errors.New("service: external id cannot be empty")
	}

	created, err := s.repo.Create(ctx, &User{
		ExternalID: externalID,
		Email:      email,
		Name:       name,
	})
	if err == nil {
		log.Info().Str("external_id", externalID).Int64("user_id", created.ID).Msg("service: user registered")
		return created, nil
	}

	if errors.Is(err, ErrDuplicateIdentity) {
		existing, getErr := s.repo.GetByExternalID(ctx, externalID)
		if getErr != nil {
			log.Error().Err(getErr).Str("external_id", externalID).Msg("service: failed to load existing user after duplicate insert")
			return nil, fmt.Errorf("service: failed to load existing user: %w", getErr)
		}
		log.Info().Str("external_id", externalID).Int64("user_id", existing.ID).Msg("service: repeated registration, returning existing user")
		return existing, nil
	}

	log.Error().Err(err).Str("external_id", externalID).Msg("service: failed to register user")
	return nil, fmt.Errorf("service: failed to register user: %w", err)
}

func (s *service) GetByExternalID(ctx context.Context, externalID string) (*User, error) {
	u, err := s.repo.GetByExternalID(ctx, externalID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Str("external_id", externalID).Msg("service: failed to fetch user by external id")
		return nil, fmt.Errorf("service: failed to fetch user: %w", err)
	}
	return u, nil
}
