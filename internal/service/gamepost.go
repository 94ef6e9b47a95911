package service

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/riftly/scrim/api/internal/model"
)

// GamePostRepository defines the interface for game post storage.
//
// The transition methods (AddPlayer, MarkReady, PromoteReady,
// CompleteMatch) are atomic conditional updates: the store evaluates the
// guard and applies the mutation in one step and reports via the applied
// return whether the guard held. The service never writes a transition
// with a plain read-then-write.
type GamePostRepository interface {
	Create(ctx context.Context, post *model.GamePost) error
	GetByID(ctx context.Context, id string) (*model.GamePost, error)
	ListAll(ctx context.Context) ([]*model.GamePost, error)
	ListByParty(ctx context.Context, partyID string) ([]*model.GamePost, error)
	FindActiveByCreator(ctx context.Context, creatorID string) (*model.GamePost, error)
	ExpireOpen(ctx context.Context, now time.Time) error
	ExpireOpenByParty(ctx context.Context, partyID string, now time.Time) error
	AddPlayer(ctx context.Context, id, userID string, team2PartyID *string, now time.Time) (bool, error)
	MarkReady(ctx context.Context, id, userID string) (*model.GamePost, bool, error)
	PromoteReady(ctx context.Context, id string) (bool, error)
	CompleteMatch(ctx context.Context, id string, res *model.MatchResult) (bool, error)
	Delete(ctx context.Context, id string) error
}

// PartyDirectory is the narrow party lookup the lifecycle engine needs
type PartyDirectory interface {
	GetByID(ctx context.Context, id string) (*model.Party, error)
	GetByCreator(ctx context.Context, creatorID string) (*model.Party, error)
}

// UserDirectory resolves user display names
type UserDirectory interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// GamePostService drives game posts through their lifecycle:
// open → in_progress → ready_to_start → completed, or open → expired
// when nobody joins before the deadline. Expiry is lazy: list reads
// sweep stale open posts, and the join guard re-checks the deadline.
type GamePostService struct {
	gameRepo GamePostRepository
	parties  PartyDirectory
	users    UserDirectory
	clock    clockwork.Clock
}

// GamePostServiceConfig holds configuration for the game post service
type GamePostServiceConfig struct {
	GameRepo GamePostRepository
	Parties  PartyDirectory
	Users    UserDirectory
	Clock    clockwork.Clock
}

// NewGamePostService creates a new game post service
func NewGamePostService(cfg GamePostServiceConfig) *GamePostService {
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &GamePostService{
		gameRepo: cfg.GameRepo,
		parties:  cfg.Parties,
		users:    cfg.Users,
		clock:    clock,
	}
}

// Create posts a new game. Team formats require the creator to own a
// party meeting the format's minimum size; each creator may have at most
// one active (open or in_progress) post at a time.
func (s *GamePostService) Create(ctx context.Context, creatorID string, req model.CreateGamePostRequest) (*model.GamePost, error) {
	if !model.ValidateFormatGameType(req.Format, req.GameType) {
		return nil, ErrInvalidGameFormat
	}

	now := s.clock.Now().UTC()

	var party *model.Party
	if req.Format.IsTeamFormat() {
		if req.PartyID == nil || *req.PartyID == "" {
			return nil, ErrPartyRequired
		}
		var err error
		party, err = s.parties.GetByID(ctx, *req.PartyID)
		if err != nil {
			return nil, err
		}
		if party == nil {
			return nil, ErrPartyNotFound
		}
		if party.CreatorID != creatorID {
			return nil, ErrNotPartyCreator
		}
		if party.Size() < req.Format.MinPartySize() {
			return nil, ErrPartyTooSmall
		}
	}

	active, err := s.gameRepo.FindActiveByCreator(ctx, creatorID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		if active.Status != model.StatusOpen || !active.IsExpired(now) {
			return nil, ErrActiveGameExists
		}
		// The blocking post is open but past its deadline: expire it now
		// so the creator never holds two open posts at once.
		if err := s.gameRepo.ExpireOpen(ctx, now); err != nil {
			return nil, err
		}
	}

	creatorName := ""
	if creator, err := s.users.GetByID(ctx, creatorID); err == nil && creator != nil {
		creatorName = creator.Name
	}

	post := &model.GamePost{
		CreatorID:    creatorID,
		CreatorName:  creatorName,
		Format:       req.Format,
		GameType:     req.GameType,
		Status:       model.StatusOpen,
		Players:      []string{creatorID},
		ReadyPlayers: []string{},
		MaxPlayers:   req.Format.MaxPlayers(),
		CreatedOn:    now,
		ExpiresOn:    now.Add(model.PostTTL),
	}

	if party != nil {
		post.PartyID = req.PartyID
		post.PartyName = party.Name
		post.Team1PartyID = req.PartyID
	} else {
		post.PartyName = model.SoloPartyName
	}

	if err := s.gameRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// List returns all posts, sweeping stale open posts to expired first.
// Creator names on open posts are hidden from everyone but the creator.
func (s *GamePostService) List(ctx context.Context, viewerID string) ([]*model.GamePost, error) {
	if err := s.gameRepo.ExpireOpen(ctx, s.clock.Now().UTC()); err != nil {
		return nil, err
	}

	posts, err := s.gameRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return redactAll(posts, viewerID), nil
}

// ListByParty returns a party's posts, sweeping its stale open posts first
func (s *GamePostService) ListByParty(ctx context.Context, partyID, viewerID string) ([]*model.GamePost, error) {
	if err := s.gameRepo.ExpireOpenByParty(ctx, partyID, s.clock.Now().UTC()); err != nil {
		return nil, err
	}

	posts, err := s.gameRepo.ListByParty(ctx, partyID)
	if err != nil {
		return nil, err
	}
	return redactAll(posts, viewerID), nil
}

// Join admits a player to an open post and moves it to in_progress.
// For team formats the joiner's own party is resolved automatically;
// an explicit party_id in the request acts as an override. The final
// admission is a single conditional update, so two players racing for
// the last slot produce exactly one winner; the loser gets
// ErrTransitionConflict.
func (s *GamePostService) Join(ctx context.Context, gameID, userID string, req model.JoinGamePostRequest) (*model.GamePost, error) {
	post, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrGamePostNotFound
	}

	now := s.clock.Now().UTC()

	// Snapshot guards give precise error kinds; the conditional update
	// below re-checks all of them atomically.
	if post.HasPlayer(userID) {
		return nil, ErrAlreadyJoined
	}
	if post.Status == model.StatusExpired || (post.Status == model.StatusOpen && post.IsExpired(now)) {
		return nil, ErrGameExpired
	}
	if post.Status != model.StatusOpen {
		return nil, ErrGameNotOpen
	}
	if post.IsFull() {
		return nil, ErrGameFull
	}

	var team2PartyID *string
	if post.Format.IsTeamFormat() {
		var party *model.Party
		if req.PartyID != nil && *req.PartyID != "" {
			party, err = s.parties.GetByID(ctx, *req.PartyID)
			if err != nil {
				return nil, err
			}
			if party == nil {
				return nil, ErrPartyNotFound
			}
			if party.CreatorID != userID {
				return nil, ErrNotPartyCreator
			}
		} else {
			party, err = s.parties.GetByCreator(ctx, userID)
			if err != nil {
				return nil, err
			}
			if party == nil {
				return nil, ErrPartyRequired
			}
		}
		if party.Size() < post.Format.MinPartySize() {
			return nil, ErrPartyTooSmall
		}
		if post.Team1PartyID != nil && *post.Team1PartyID == party.ID {
			return nil, ErrSamePartyJoin
		}
		team2PartyID = &party.ID
	}

	applied, err := s.gameRepo.AddPlayer(ctx, gameID, userID, team2PartyID, now)
	if err != nil {
		return nil, err
	}
	if !applied {
		// Lost the race: someone else joined, the post expired, or it
		// was deleted between the snapshot and the update.
		return nil, ErrTransitionConflict
	}

	return s.gameRepo.GetByID(ctx, gameID)
}

// Ready records a player's ready confirmation. Confirmations are
// idempotent. When every current player has confirmed, the post is
// promoted to ready_to_start; the promotion itself re-checks the quorum
// atomically, so a join racing the last confirmation keeps the post
// in_progress until that joiner also confirms.
func (s *GamePostService) Ready(ctx context.Context, gameID, userID string) (*model.ReadyResponse, error) {
	post, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrGamePostNotFound
	}
	if !post.HasPlayer(userID) {
		return nil, ErrNotGamePlayer
	}
	if post.Status != model.StatusInProgress {
		return nil, ErrGameNotInProgress
	}

	updated, applied, err := s.gameRepo.MarkReady(ctx, gameID, userID)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, ErrTransitionConflict
	}

	if updated.QuorumReached() {
		if _, err := s.gameRepo.PromoteReady(ctx, gameID); err != nil {
			return nil, err
		}
	}

	final, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if final == nil {
		return nil, ErrGamePostNotFound
	}

	return &model.ReadyResponse{
		Post:          final,
		QuorumReached: final.Status == model.StatusReadyToStart,
	}, nil
}

// SubmitResult records the match outcome and completes the post.
// Team formats accept reports from either team captain; solo formats
// from any player named in the result.
func (s *GamePostService) SubmitResult(ctx context.Context, gameID, userID string, req model.SubmitResultRequest) (*model.GamePost, error) {
	post, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrGamePostNotFound
	}

	if post.Status != model.StatusInProgress && post.Status != model.StatusReadyToStart {
		return nil, ErrGameNotInProgress
	}

	if post.Format.IsTeamFormat() {
		if err := s.authorizeTeamResult(ctx, post, userID); err != nil {
			return nil, err
		}
	} else {
		if !post.HasPlayer(userID) {
			return nil, ErrNotGamePlayer
		}
		if userID != req.WinnerID && userID != req.LoserID {
			return nil, ErrResultNotInvolved
		}
	}

	result := &model.MatchResult{
		WinnerID:   req.WinnerID,
		WinnerName: req.WinnerName,
		LoserID:    req.LoserID,
		LoserName:  req.LoserName,
		Score:      req.Score,
		ReportedBy: userID,
		ReportedOn: s.clock.Now().UTC(),
	}

	applied, err := s.gameRepo.CompleteMatch(ctx, gameID, result)
	if err != nil {
		return nil, err
	}
	if !applied {
		// Someone else completed or the post moved on concurrently
		return nil, ErrGameNotInProgress
	}

	return s.gameRepo.GetByID(ctx, gameID)
}

// Delete removes a post. Only the creator may delete, from any status.
func (s *GamePostService) Delete(ctx context.Context, gameID, userID string) error {
	post, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return err
	}
	if post == nil {
		return ErrGamePostNotFound
	}
	if post.CreatorID != userID {
		return ErrNotGameCreator
	}
	return s.gameRepo.Delete(ctx, gameID)
}

// authorizeTeamResult allows the posting captain or the captain of the
// opposing party to report
func (s *GamePostService) authorizeTeamResult(ctx context.Context, post *model.GamePost, userID string) error {
	if userID == post.CreatorID {
		return nil
	}
	if post.Team2PartyID != nil {
		party, err := s.parties.GetByID(ctx, *post.Team2PartyID)
		if err != nil {
			return err
		}
		if party != nil && party.CreatorID == userID {
			return nil
		}
	}
	return ErrResultNotAuthorized
}

func redactAll(posts []*model.GamePost, viewerID string) []*model.GamePost {
	out := make([]*model.GamePost, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.Redacted(viewerID))
	}
	return out
}
