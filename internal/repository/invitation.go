package repository

import (
	"context"
	"errors"

	"github.com/riftly/scrim/api/internal/database"
	"github.com/riftly/scrim/api/internal/model"
)

// InvitationRepository handles party invitation data access
type InvitationRepository struct {
	db database.Database
}

// NewInvitationRepository creates a new invitation repository
func NewInvitationRepository(db database.Database) *InvitationRepository {
	return &InvitationRepository{db: db}
}

// Create creates a new invitation
func (r *InvitationRepository) Create(ctx context.Context, inv *model.PartyInvitation) error {
	query := `
		CREATE party_invitation CONTENT {
			party_id: $party_id,
			party_name: $party_name,
			inviter_id: $inviter_id,
			inviter_name: $inviter_name,
			invitee_id: $invitee_id,
			status: $status,
			created_on: time::now()
		}
	`

	vars := map[string]interface{}{
		"party_id":     inv.PartyID,
		"party_name":   inv.PartyName,
		"inviter_id":   inv.InviterID,
		"inviter_name": inv.InviterName,
		"invitee_id":   inv.InviteeID,
		"status":       inv.Status,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return err
	}

	records, ok := extractQueryResults(result)
	if !ok || len(records) == 0 {
		return errors.New("no result returned")
	}
	created, err := parseInvitationRecord(records[0])
	if err != nil {
		return err
	}
	inv.ID = created.ID
	inv.CreatedOn = created.CreatedOn
	return nil
}

// GetByID retrieves an invitation by ID
func (r *InvitationRepository) GetByID(ctx context.Context, id string) (*model.PartyInvitation, error) {
	query := `SELECT * FROM type::record($id)`
	vars := map[string]interface{}{"id": id}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	inv, err := parseInvitationRecord(result)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return inv, nil
}

// FindPending retrieves a pending invitation for the given party and invitee
func (r *InvitationRepository) FindPending(ctx context.Context, partyID, inviteeID string) (*model.PartyInvitation, error) {
	query := `
		SELECT * FROM party_invitation
		WHERE party_id = $party_id AND invitee_id = $invitee_id AND status = 'pending'
		LIMIT 1
	`
	vars := map[string]interface{}{
		"party_id":   partyID,
		"invitee_id": inviteeID,
	}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	inv, err := parseInvitationRecord(result)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return inv, nil
}

// ListPendingByInvitee retrieves all pending invitations addressed to a user
func (r *InvitationRepository) ListPendingByInvitee(ctx context.Context, inviteeID string) ([]*model.PartyInvitation, error) {
	query := `
		SELECT * FROM party_invitation
		WHERE invitee_id = $invitee_id AND status = 'pending'
		ORDER BY created_on DESC
	`
	vars := map[string]interface{}{"invitee_id": inviteeID}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	records, ok := extractQueryResults(result)
	if !ok {
		return []*model.PartyInvitation{}, nil
	}

	invitations := make([]*model.PartyInvitation, 0, len(records))
	for _, record := range records {
		inv, err := parseInvitationRecord(record)
		if err != nil {
			continue
		}
		invitations = append(invitations, inv)
	}
	return invitations, nil
}

// UpdateStatus records the invitee's response
func (r *InvitationRepository) UpdateStatus(ctx context.Context, id string, status model.InvitationStatus) error {
	query := `UPDATE type::record($id) SET status = $status`
	vars := map[string]interface{}{
		"id":     id,
		"status": status,
	}

	return r.db.Execute(ctx, query, vars)
}

// DeleteByParty removes all invitations for a party. Used when the party
// itself is deleted.
func (r *InvitationRepository) DeleteByParty(ctx context.Context, partyID string) error {
	query := `DELETE party_invitation WHERE party_id = $party_id`
	vars := map[string]interface{}{"party_id": partyID}

	return r.db.Execute(ctx, query, vars)
}

// parseInvitationRecord converts a SurrealDB record into a model.PartyInvitation
func parseInvitationRecord(result interface{}) (*model.PartyInvitation, error) {
	if result == nil {
		return nil, database.ErrNotFound
	}

	if resp, ok := result.(map[string]interface{}); ok {
		if status, ok := resp["status"].(string); ok && status == "OK" {
			if resultData, ok := resp["result"].([]interface{}); ok {
				if len(resultData) == 0 {
					return nil, database.ErrNotFound
				}
				result = resultData[0]
			}
		}
	}

	if arr, ok := result.([]interface{}); ok {
		if len(arr) == 0 {
			return nil, database.ErrNotFound
		}
		result = arr[0]
	}

	data, ok := result.(map[string]interface{})
	if !ok {
		return nil, errors.New("unexpected result format")
	}

	return &model.PartyInvitation{
		ID:          convertSurrealID(data["id"]),
		PartyID:     getString(data, "party_id"),
		PartyName:   getString(data, "party_name"),
		InviterID:   getString(data, "inviter_id"),
		InviterName: getString(data, "inviter_name"),
		InviteeID:   getString(data, "invitee_id"),
		Status:      model.InvitationStatus(getString(data, "status")),
		CreatedOn:   getTime(data, "created_on"),
	}, nil
}
