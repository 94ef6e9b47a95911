package repository

import (
	"context"
	"errors"
	"time"

	"github.com/riftly/scrim/api/internal/database"
	"github.com/riftly/scrim/api/internal/model"
)

// GamePostRepository handles game post data access.
//
// Every lifecycle transition is a single conditional UPDATE: the guard
// predicate and the mutation execute as one atomic statement, so two
// concurrent writers can never both observe the precondition and both
// apply. The applied return reports whether the predicate held.
type GamePostRepository struct {
	db database.Database
}

// NewGamePostRepository creates a new game post repository
func NewGamePostRepository(db database.Database) *GamePostRepository {
	return &GamePostRepository{db: db}
}

// Create creates a new game post
func (r *GamePostRepository) Create(ctx context.Context, post *model.GamePost) error {
	query := `
		CREATE game_post CONTENT {
			party_id: $party_id,
			party_name: $party_name,
			creator_id: $creator_id,
			creator_name: $creator_name,
			format: $format,
			game_type: $game_type,
			status: $status,
			players: $players,
			ready_players: $ready_players,
			max_players: $max_players,
			team1_party_id: $team1_party_id,
			team2_party_id: $team2_party_id,
			created_on: type::datetime($created_on),
			expires_on: type::datetime($expires_on)
		}
	`

	vars := map[string]interface{}{
		"party_id":       ptrToNone(post.PartyID),
		"party_name":     post.PartyName,
		"creator_id":     post.CreatorID,
		"creator_name":   post.CreatorName,
		"format":         post.Format,
		"game_type":      post.GameType,
		"status":         post.Status,
		"players":        post.Players,
		"ready_players":  post.ReadyPlayers,
		"max_players":    post.MaxPlayers,
		"team1_party_id": ptrToNone(post.Team1PartyID),
		"team2_party_id": ptrToNone(post.Team2PartyID),
		"created_on":     post.CreatedOn.UTC().Format(time.RFC3339),
		"expires_on":     post.ExpiresOn.UTC().Format(time.RFC3339),
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return err
	}

	records, ok := extractQueryResults(result)
	if !ok || len(records) == 0 {
		return errors.New("no result returned")
	}
	created, err := parseGamePostRecord(records[0])
	if err != nil {
		return err
	}
	post.ID = created.ID
	return nil
}

// GetByID retrieves a game post by ID
func (r *GamePostRepository) GetByID(ctx context.Context, id string) (*model.GamePost, error) {
	query := `SELECT * FROM type::record($id)`
	vars := map[string]interface{}{"id": id}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	post, err := parseGamePostRecord(result)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return post, nil
}

// ListAll retrieves all game posts, newest first
func (r *GamePostRepository) ListAll(ctx context.Context) ([]*model.GamePost, error) {
	query := `SELECT * FROM game_post ORDER BY created_on DESC`

	result, err := r.db.Query(ctx, query, nil)
	if err != nil {
		return nil, err
	}
	return parseGamePostList(result)
}

// ListByParty retrieves all game posts for the given party, newest first
func (r *GamePostRepository) ListByParty(ctx context.Context, partyID string) ([]*model.GamePost, error) {
	query := `SELECT * FROM game_post WHERE party_id = $party_id ORDER BY created_on DESC`
	vars := map[string]interface{}{"party_id": partyID}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}
	return parseGamePostList(result)
}

// FindActiveByCreator retrieves a creator's open or in_progress post, if any
func (r *GamePostRepository) FindActiveByCreator(ctx context.Context, creatorID string) (*model.GamePost, error) {
	query := `
		SELECT * FROM game_post
		WHERE creator_id = $creator_id AND status IN ['open', 'in_progress']
		LIMIT 1
	`
	vars := map[string]interface{}{"creator_id": creatorID}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	post, err := parseGamePostRecord(result)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return post, nil
}

// ExpireOpen marks every open post whose deadline has passed as expired
func (r *GamePostRepository) ExpireOpen(ctx context.Context, now time.Time) error {
	query := `
		UPDATE game_post SET status = 'expired'
		WHERE status = 'open' AND expires_on < type::datetime($now)
	`
	vars := map[string]interface{}{"now": now.UTC().Format(time.RFC3339)}

	return r.db.Execute(ctx, query, vars)
}

// ExpireOpenByParty marks a party's stale open posts as expired
func (r *GamePostRepository) ExpireOpenByParty(ctx context.Context, partyID string, now time.Time) error {
	query := `
		UPDATE game_post SET status = 'expired'
		WHERE party_id = $party_id AND status = 'open' AND expires_on < type::datetime($now)
	`
	vars := map[string]interface{}{
		"party_id": partyID,
		"now":      now.UTC().Format(time.RFC3339),
	}

	return r.db.Execute(ctx, query, vars)
}

// AddPlayer atomically admits a player to an open post. The predicate
// re-checks status, deadline, capacity, and membership inside the same
// statement as the mutation, so concurrent joins on the last slot produce
// exactly one winner. The += on players is a set union merge.
func (r *GamePostRepository) AddPlayer(ctx context.Context, id, userID string, team2PartyID *string, now time.Time) (bool, error) {
	query := `
		UPDATE type::record($id) SET
			players += $user_id,
			status = 'in_progress',
			team2_party_id = IF $team2_party_id IS NOT NONE THEN $team2_party_id ELSE team2_party_id END
		WHERE status = 'open'
			AND expires_on >= type::datetime($now)
			AND array::len(players) < max_players
			AND players CONTAINSNOT $user_id
	`
	vars := map[string]interface{}{
		"id":             id,
		"user_id":        userID,
		"team2_party_id": ptrToNone(team2PartyID),
		"now":            now.UTC().Format(time.RFC3339),
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return false, err
	}
	return extractAppliedCount(result) > 0, nil
}

// MarkReady atomically records a player's ready confirmation and returns
// the post as of after the update. The union merge makes repeated
// confirmations idempotent.
func (r *GamePostRepository) MarkReady(ctx context.Context, id, userID string) (*model.GamePost, bool, error) {
	query := `
		UPDATE type::record($id) SET ready_players += $user_id
		WHERE status = 'in_progress' AND players CONTAINS $user_id
	`
	vars := map[string]interface{}{
		"id":      id,
		"user_id": userID,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, false, err
	}

	records, ok := extractQueryResults(result)
	if !ok || len(records) == 0 {
		return nil, false, nil
	}
	post, err := parseGamePostRecord(records[0])
	if err != nil {
		return nil, false, err
	}
	return post, true, nil
}

// PromoteReady atomically moves an in_progress post to ready_to_start.
// Quorum is size equality between ready_players and players, re-checked
// inside the conditional update so a join racing the last confirmation
// keeps the post in_progress.
func (r *GamePostRepository) PromoteReady(ctx context.Context, id string) (bool, error) {
	query := `
		UPDATE type::record($id) SET status = 'ready_to_start'
		WHERE status = 'in_progress'
			AND array::len(ready_players) = array::len(players)
			AND array::len(players) > 0
	`
	vars := map[string]interface{}{"id": id}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return false, err
	}
	return extractAppliedCount(result) > 0, nil
}

// CompleteMatch atomically records a match result. Only matches that have
// found an opponent (in_progress or ready_to_start) can complete.
func (r *GamePostRepository) CompleteMatch(ctx context.Context, id string, res *model.MatchResult) (bool, error) {
	query := `
		UPDATE type::record($id) SET
			status = 'completed',
			match_result = {
				winner_id: $winner_id,
				winner_name: $winner_name,
				loser_id: $loser_id,
				loser_name: $loser_name,
				score: $score,
				reported_by: $reported_by,
				reported_on: type::datetime($reported_on)
			}
		WHERE status IN ['in_progress', 'ready_to_start']
	`
	vars := map[string]interface{}{
		"id":          id,
		"winner_id":   res.WinnerID,
		"winner_name": res.WinnerName,
		"loser_id":    res.LoserID,
		"loser_name":  res.LoserName,
		"score":       res.Score,
		"reported_by": res.ReportedBy,
		"reported_on": res.ReportedOn.UTC().Format(time.RFC3339),
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return false, err
	}
	return extractAppliedCount(result) > 0, nil
}

// Delete deletes a game post
func (r *GamePostRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE type::record($id)`
	vars := map[string]interface{}{"id": id}

	return r.db.Execute(ctx, query, vars)
}

func parseGamePostList(result []interface{}) ([]*model.GamePost, error) {
	records, ok := extractQueryResults(result)
	if !ok {
		return []*model.GamePost{}, nil
	}

	posts := make([]*model.GamePost, 0, len(records))
	for _, record := range records {
		post, err := parseGamePostRecord(record)
		if err != nil {
			continue
		}
		posts = append(posts, post)
	}
	return posts, nil
}

// parseGamePostRecord converts a SurrealDB record into a model.GamePost
func parseGamePostRecord(result interface{}) (*model.GamePost, error) {
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

	players := getStringSlice(data, "players")
	if players == nil {
		players = []string{}
	}
	readyPlayers := getStringSlice(data, "ready_players")
	if readyPlayers == nil {
		readyPlayers = []string{}
	}

	post := &model.GamePost{
		ID:           convertSurrealID(data["id"]),
		PartyID:      getStringPtr(data, "party_id"),
		PartyName:    getString(data, "party_name"),
		CreatorID:    getString(data, "creator_id"),
		CreatorName:  getString(data, "creator_name"),
		Format:       model.GameFormat(getString(data, "format")),
		GameType:     model.GameType(getString(data, "game_type")),
		Status:       model.GamePostStatus(getString(data, "status")),
		Players:      players,
		ReadyPlayers: readyPlayers,
		MaxPlayers:   getInt(data, "max_players"),
		Team1PartyID: getStringPtr(data, "team1_party_id"),
		Team2PartyID: getStringPtr(data, "team2_party_id"),
		CreatedOn:    getTime(data, "created_on"),
		ExpiresOn:    getTime(data, "expires_on"),
	}

	if raw, ok := data["match_result"].(map[string]interface{}); ok {
		post.MatchResult = &model.MatchResult{
			WinnerID:   getString(raw, "winner_id"),
			WinnerName: getString(raw, "winner_name"),
			LoserID:    getString(raw, "loser_id"),
			LoserName:  getString(raw, "loser_name"),
			Score:      getString(raw, "score"),
			ReportedBy: getString(raw, "reported_by"),
			ReportedOn: getTime(raw, "reported_on"),
		}
	}

	return post, nil
}
