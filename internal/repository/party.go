package repository

import (
	"context"
	"errors"

	"github.com/riftly/scrim/api/internal/database"
	"github.com/riftly/scrim/api/internal/model"
)

// PartyRepository handles party data access
type PartyRepository struct {
	db database.Database
}

// NewPartyRepository creates a new party repository
func NewPartyRepository(db database.Database) *PartyRepository {
	return &PartyRepository{db: db}
}

// Create creates a new party with the creator as its first member
func (r *PartyRepository) Create(ctx context.Context, party *model.Party) error {
	query := `
		CREATE party CONTENT {
			name: $name,
			creator_id: $creator_id,
			members: $members
		}
	`

	vars := map[string]interface{}{
		"name":       party.Name,
		"creator_id": party.CreatorID,
		"members":    party.Members,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return err
	}

	records, ok := extractQueryResults(result)
	if !ok || len(records) == 0 {
		return errors.New("no result returned")
	}
	created, err := parsePartyRecord(records[0])
	if err != nil {
		return err
	}
	party.ID = created.ID
	return nil
}

// GetByID retrieves a party by ID
func (r *PartyRepository) GetByID(ctx context.Context, id string) (*model.Party, error) {
	query := `SELECT * FROM type::record($id)`
	vars := map[string]interface{}{"id": id}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	party, err := parsePartyRecord(result)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return party, nil
}

// GetByCreator retrieves the party created by the given user, if any
func (r *PartyRepository) GetByCreator(ctx context.Context, creatorID string) (*model.Party, error) {
	query := `SELECT * FROM party WHERE creator_id = $creator_id LIMIT 1`
	vars := map[string]interface{}{"creator_id": creatorID}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	party, err := parsePartyRecord(result)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return party, nil
}

// ListByMember retrieves all parties the given user belongs to
func (r *PartyRepository) ListByMember(ctx context.Context, userID string) ([]*model.Party, error) {
	query := `SELECT * FROM party WHERE members CONTAINSANY [$user_id]`
	vars := map[string]interface{}{"user_id": userID}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	records, ok := extractQueryResults(result)
	if !ok {
		return []*model.Party{}, nil
	}

	parties := make([]*model.Party, 0, len(records))
	for _, record := range records {
		party, err := parsePartyRecord(record)
		if err != nil {
			continue
		}
		parties = append(parties, party)
	}
	return parties, nil
}

// AddMember adds a user to the party's member set. The += operator on a
// set field is a union merge, so repeated adds are idempotent.
func (r *PartyRepository) AddMember(ctx context.Context, partyID, userID string) error {
	query := `UPDATE type::record($id) SET members += $user_id`
	vars := map[string]interface{}{
		"id":      partyID,
		"user_id": userID,
	}

	return r.db.Execute(ctx, query, vars)
}

// Delete deletes a party
func (r *PartyRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE type::record($id)`
	vars := map[string]interface{}{"id": id}

	return r.db.Execute(ctx, query, vars)
}

// parsePartyRecord converts a SurrealDB record into a model.Party
func parsePartyRecord(result interface{}) (*model.Party, error) {
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

	members := getStringSlice(data, "members")
	if members == nil {
		members = []string{}
	}

	return &model.Party{
		ID:        convertSurrealID(data["id"]),
		Name:      getString(data, "name"),
		CreatorID: getString(data, "creator_id"),
		Members:   members,
	}, nil
}
