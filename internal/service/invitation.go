package service

import (
	"context"

	"github.com/riftly/scrim/api/internal/model"
)

// InvitationRepository defines the interface for invitation storage
type InvitationRepository interface {
	Create(ctx context.Context, inv *model.PartyInvitation) error
	GetByID(ctx context.Context, id string) (*model.PartyInvitation, error)
	FindPending(ctx context.Context, partyID, inviteeID string) (*model.PartyInvitation, error)
	ListPendingByInvitee(ctx context.Context, inviteeID string) ([]*model.PartyInvitation, error)
	UpdateStatus(ctx context.Context, id string, status model.InvitationStatus) error
	DeleteByParty(ctx context.Context, partyID string) error
}

// InvitationService handles party invitation operations
type InvitationService struct {
	invitationRepo InvitationRepository
	partyRepo      PartyRepository
	userRepo       UserRepository
}

// InvitationServiceConfig holds configuration for the invitation service
type InvitationServiceConfig struct {
	InvitationRepo InvitationRepository
	PartyRepo      PartyRepository
	UserRepo       UserRepository
}

// NewInvitationService creates a new invitation service
func NewInvitationService(cfg InvitationServiceConfig) *InvitationService {
	return &InvitationService{
		invitationRepo: cfg.InvitationRepo,
		partyRepo:      cfg.PartyRepo,
		userRepo:       cfg.UserRepo,
	}
}

// Invite creates a pending invitation. Only the party creator may invite,
// and only users who are not already members and have no pending invite.
func (s *InvitationService) Invite(ctx context.Context, partyID, inviterID string, req model.CreateInvitationRequest) (*model.PartyInvitation, error) {
	party, err := s.partyRepo.GetByID(ctx, partyID)
	if err != nil {
		return nil, err
	}
	if party == nil {
		return nil, ErrPartyNotFound
	}
	if party.CreatorID != inviterID {
		return nil, ErrNotPartyCreator
	}
	if req.InviteeID == inviterID {
		return nil, ErrCannotInviteSelf
	}
	if party.HasMember(req.InviteeID) {
		return nil, ErrAlreadyPartyMember
	}

	invitee, err := s.userRepo.GetByID(ctx, req.InviteeID)
	if err != nil {
		return nil, err
	}
	if invitee == nil {
		return nil, ErrUserNotFound
	}

	existing, err := s.invitationRepo.FindPending(ctx, partyID, req.InviteeID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateInvitation
	}

	inviter, err := s.userRepo.GetByID(ctx, inviterID)
	if err != nil {
		return nil, err
	}
	inviterName := ""
	if inviter != nil {
		inviterName = inviter.Name
	}

	inv := &model.PartyInvitation{
		PartyID:     partyID,
		PartyName:   party.Name,
		InviterID:   inviterID,
		InviterName: inviterName,
		InviteeID:   req.InviteeID,
		Status:      model.InvitationPending,
	}

	if err := s.invitationRepo.Create(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// ListReceived retrieves the user's pending invitations
func (s *InvitationService) ListReceived(ctx context.Context, userID string) ([]*model.PartyInvitation, error) {
	return s.invitationRepo.ListPendingByInvitee(ctx, userID)
}

// Respond records the invitee's answer. Accepting adds the invitee to the
// party's member set via union merge, so a repeated accept of a stale
// invitation cannot duplicate membership.
func (s *InvitationService) Respond(ctx context.Context, invitationID, userID string, req model.RespondToInvitationRequest) (*model.PartyInvitation, error) {
	if !req.Status.IsValidResponse() {
		return nil, ErrInvalidInviteResponse
	}

	inv, err := s.invitationRepo.GetByID(ctx, invitationID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, ErrInvitationNotFound
	}
	if inv.InviteeID != userID {
		return nil, ErrNotInvitee
	}
	if inv.Status != model.InvitationPending {
		return nil, ErrInvitationNotPending
	}

	if req.Status == model.InvitationAccepted {
		party, err := s.partyRepo.GetByID(ctx, inv.PartyID)
		if err != nil {
			return nil, err
		}
		if party == nil {
			return nil, ErrPartyNotFound
		}
		if err := s.partyRepo.AddMember(ctx, inv.PartyID, userID); err != nil {
			return nil, err
		}
	}

	if err := s.invitationRepo.UpdateStatus(ctx, invitationID, req.Status); err != nil {
		return nil, err
	}

	inv.Status = req.Status
	return inv, nil
}
