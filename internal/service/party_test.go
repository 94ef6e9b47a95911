package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/riftly/scrim/api/internal/model"
)

type mockPartyRepo struct {
	parties map[string]*model.Party
	seq     int

	createErr error
	getErr    error
}

func newMockPartyRepo() *mockPartyRepo {
	return &mockPartyRepo{parties: make(map[string]*model.Party)}
}

func (m *mockPartyRepo) Create(ctx context.Context, party *model.Party) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.seq++
	party.ID = fmt.Sprintf("party:%d", m.seq)
	m.parties[party.ID] = party
	return nil
}

func (m *mockPartyRepo) GetByID(ctx context.Context, id string) (*model.Party, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.parties[id], nil
}

func (m *mockPartyRepo) GetByCreator(ctx context.Context, creatorID string) (*model.Party, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, p := range m.parties {
		if p.CreatorID == creatorID {
			return p, nil
		}
	}
	return nil, nil
}

func (m *mockPartyRepo) ListByMember(ctx context.Context, userID string) ([]*model.Party, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	var out []*model.Party
	for _, p := range m.parties {
		if p.HasMember(userID) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockPartyRepo) AddMember(ctx context.Context, partyID, userID string) error {
	p, ok := m.parties[partyID]
	if !ok {
		return nil
	}
	// Union merge, matching the store's set semantics
	if !p.HasMember(userID) {
		p.Members = append(p.Members, userID)
	}
	return nil
}

func (m *mockPartyRepo) Delete(ctx context.Context, id string) error {
	delete(m.parties, id)
	return nil
}

type mockInvitationRepo struct {
	invitations map[string]*model.PartyInvitation
	seq         int
}

func newMockInvitationRepo() *mockInvitationRepo {
	return &mockInvitationRepo{invitations: make(map[string]*model.PartyInvitation)}
}

func (m *mockInvitationRepo) Create(ctx context.Context, inv *model.PartyInvitation) error {
	m.seq++
	inv.ID = fmt.Sprintf("party_invitation:%d", m.seq)
	m.invitations[inv.ID] = inv
	return nil
}

func (m *mockInvitationRepo) GetByID(ctx context.Context, id string) (*model.PartyInvitation, error) {
	return m.invitations[id], nil
}

func (m *mockInvitationRepo) FindPending(ctx context.Context, partyID, inviteeID string) (*model.PartyInvitation, error) {
	for _, inv := range m.invitations {
		if inv.PartyID == partyID && inv.InviteeID == inviteeID && inv.Status == model.InvitationPending {
			return inv, nil
		}
	}
	return nil, nil
}

func (m *mockInvitationRepo) ListPendingByInvitee(ctx context.Context, inviteeID string) ([]*model.PartyInvitation, error) {
	var out []*model.PartyInvitation
	for _, inv := range m.invitations {
		if inv.InviteeID == inviteeID && inv.Status == model.InvitationPending {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (m *mockInvitationRepo) UpdateStatus(ctx context.Context, id string, status model.InvitationStatus) error {
	if inv, ok := m.invitations[id]; ok {
		inv.Status = status
	}
	return nil
}

func (m *mockInvitationRepo) DeleteByParty(ctx context.Context, partyID string) error {
	for id, inv := range m.invitations {
		if inv.PartyID == partyID {
			delete(m.invitations, id)
		}
	}
	return nil
}

func setupPartyService(t *testing.T) (*PartyService, *mockPartyRepo, *mockInvitationRepo) {
	t.Helper()

	partyRepo := newMockPartyRepo()
	invitationRepo := newMockInvitationRepo()
	svc := NewPartyService(PartyServiceConfig{
		PartyRepo:      partyRepo,
		InvitationRepo: invitationRepo,
	})
	return svc, partyRepo, invitationRepo
}

func TestPartyService_Create(t *testing.T) {
	svc, _, _ := setupPartyService(t)
	ctx := context.Background()

	party, err := svc.Create(ctx, "user:alice", model.CreatePartyRequest{Name: "  The Five Stack  "})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if party.Name != "The Five Stack" {
		t.Errorf("expected trimmed name, got %q", party.Name)
	}
	if !party.HasMember("user:alice") {
		t.Error("expected creator to be a member")
	}
	if party.CreatorID != "user:alice" {
		t.Errorf("creator = %q, want user:alice", party.CreatorID)
	}
}

func TestPartyService_Create_InvalidName(t *testing.T) {
	svc, _, _ := setupPartyService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "user:alice", model.CreatePartyRequest{Name: "   "})
	if !errors.Is(err, ErrPartyNameInvalid) {
		t.Errorf("expected ErrPartyNameInvalid for blank name, got %v", err)
	}

	long := strings.Repeat("x", model.MaxPartyNameLength+1)
	_, err = svc.Create(ctx, "user:alice", model.CreatePartyRequest{Name: long})
	if !errors.Is(err, ErrPartyNameInvalid) {
		t.Errorf("expected ErrPartyNameInvalid for overlong name, got %v", err)
	}
}

func TestPartyService_Delete(t *testing.T) {
	svc, partyRepo, invitationRepo := setupPartyService(t)
	ctx := context.Background()

	party, err := svc.Create(ctx, "user:alice", model.CreatePartyRequest{Name: "Stack"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	inv := &model.PartyInvitation{
		PartyID:   party.ID,
		InviterID: "user:alice",
		InviteeID: "user:bob",
		Status:    model.InvitationPending,
	}
	if err := invitationRepo.Create(ctx, inv); err != nil {
		t.Fatalf("failed to seed invitation: %v", err)
	}

	if err := svc.Delete(ctx, party.ID, "user:bob"); !errors.Is(err, ErrNotPartyCreator) {
		t.Errorf("expected ErrNotPartyCreator, got %v", err)
	}

	if err := svc.Delete(ctx, party.ID, "user:alice"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok := partyRepo.parties[party.ID]; ok {
		t.Error("expected party to be removed")
	}
	if _, ok := invitationRepo.invitations[inv.ID]; ok {
		t.Error("expected outstanding invitations to be removed with the party")
	}

	if err := svc.Delete(ctx, party.ID, "user:alice"); !errors.Is(err, ErrPartyNotFound) {
		t.Errorf("expected ErrPartyNotFound after delete, got %v", err)
	}
}
