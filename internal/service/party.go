package service

import (
	"context"
	"strings"

	"github.com/riftly/scrim/api/internal/model"
)

// PartyRepository defines the interface for party storage
type PartyRepository interface {
	Create(ctx context.Context, party *model.Party) error
	GetByID(ctx context.Context, id string) (*model.Party, error)
	GetByCreator(ctx context.Context, creatorID string) (*model.Party, error)
	ListByMember(ctx context.Context, userID string) ([]*model.Party, error)
	AddMember(ctx context.Context, partyID, userID string) error
	Delete(ctx context.Context, id string) error
}

// PartyService handles party operations
type PartyService struct {
	partyRepo      PartyRepository
	invitationRepo InvitationRepository
}

// PartyServiceConfig holds configuration for the party service
type PartyServiceConfig struct {
	PartyRepo      PartyRepository
	InvitationRepo InvitationRepository
}

// NewPartyService creates a new party service
func NewPartyService(cfg PartyServiceConfig) *PartyService {
	return &PartyService{
		partyRepo:      cfg.PartyRepo,
		invitationRepo: cfg.InvitationRepo,
	}
}

// Create creates a party with the creator as its first member
func (s *PartyService) Create(ctx context.Context, creatorID string, req model.CreatePartyRequest) (*model.Party, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" || len(name) > model.MaxPartyNameLength {
		return nil, ErrPartyNameInvalid
	}

	party := &model.Party{
		Name:      name,
		CreatorID: creatorID,
		Members:   []string{creatorID},
	}

	if err := s.partyRepo.Create(ctx, party); err != nil {
		return nil, err
	}
	return party, nil
}

// ListForUser retrieves every party the user belongs to
func (s *PartyService) ListForUser(ctx context.Context, userID string) ([]*model.Party, error) {
	return s.partyRepo.ListByMember(ctx, userID)
}

// GetByID retrieves a party
func (s *PartyService) GetByID(ctx context.Context, id string) (*model.Party, error) {
	party, err := s.partyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if party == nil {
		return nil, ErrPartyNotFound
	}
	return party, nil
}

// GetByCreator retrieves the party the user created, if any
func (s *PartyService) GetByCreator(ctx context.Context, creatorID string) (*model.Party, error) {
	return s.partyRepo.GetByCreator(ctx, creatorID)
}

// Delete removes a party and its outstanding invitations. Only the
// creator may delete.
func (s *PartyService) Delete(ctx context.Context, partyID, userID string) error {
	party, err := s.partyRepo.GetByID(ctx, partyID)
	if err != nil {
		return err
	}
	if party == nil {
		return ErrPartyNotFound
	}
	if party.CreatorID != userID {
		return ErrNotPartyCreator
	}

	if err := s.invitationRepo.DeleteByParty(ctx, partyID); err != nil {
		return err
	}
	return s.partyRepo.Delete(ctx, partyID)
}
