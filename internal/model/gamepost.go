package model

import "time"

// GameFormat represents the competitive format of a game post
type GameFormat string

const (
	Format5v5 GameFormat = "5v5"
	Format4v4 GameFormat = "4v4"
	Format1v1 GameFormat = "1v1"
)

// IsValid checks if the format is recognized
func (f GameFormat) IsValid() bool {
	switch f {
	case Format5v5, Format4v4, Format1v1:
		return true
	}
	return false
}

// MaxPlayers returns the total player capacity for the format
func (f GameFormat) MaxPlayers() int {
	switch f {
	case Format5v5:
		return 10
	case Format4v4:
		return 8
	case Format1v1:
		return 2
	}
	return 0
}

// MinPartySize returns the smallest party that may field a team in this
// format. Solo formats have no party requirement.
func (f GameFormat) MinPartySize() int {
	switch f {
	case Format5v5:
		return 5
	case Format4v4:
		return 4
	}
	return 0
}

// IsTeamFormat reports whether the format requires a backing party
func (f GameFormat) IsTeamFormat() bool {
	return f == Format5v5 || f == Format4v4
}

// GameType represents the match structure of a game post
type GameType string

const (
	TypeBestOf1    GameType = "best_of_1"
	TypeBestOf3    GameType = "best_of_3"
	TypeDeathmatch GameType = "deathmatch"
)

// IsValid checks if the game type is recognized
func (t GameType) IsValid() bool {
	switch t {
	case TypeBestOf1, TypeBestOf3, TypeDeathmatch:
		return true
	}
	return false
}

// GamePostStatus represents the lifecycle state of a game post
type GamePostStatus string

const (
	StatusOpen         GamePostStatus = "open"
	StatusInProgress   GamePostStatus = "in_progress"
	StatusReadyToStart GamePostStatus = "ready_to_start"
	StatusCompleted    GamePostStatus = "completed"
	StatusExpired      GamePostStatus = "expired"
)

// IsValid checks if the status is recognized
func (s GamePostStatus) IsValid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusReadyToStart, StatusCompleted, StatusExpired:
		return true
	}
	return false
}

// IsTerminal reports whether the status accepts no further transitions
func (s GamePostStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusExpired
}

// IsActive reports whether the status counts against the one-active-post
// limit per creator
func (s GamePostStatus) IsActive() bool {
	return s == StatusOpen || s == StatusInProgress
}

// Business constants
const (
	// PostTTL is how long an open post accepts joins before lazy expiry
	PostTTL = 30 * time.Minute

	// AnonymousCreatorName replaces the creator's name on open posts
	// read by anyone other than the creator
	AnonymousCreatorName = "Anonymous"

	// SoloPartyName is the display name stamped on 1v1 posts, which
	// have no backing party
	SoloPartyName = "Solo Queue"
)

// MatchResult records the outcome of a completed game
type MatchResult struct {
	WinnerID   string    `json:"winner_id"`
	WinnerName string    `json:"winner_name"`
	LoserID    string    `json:"loser_id"`
	LoserName  string    `json:"loser_name"`
	Score      string    `json:"score"`
	ReportedBy string    `json:"reported_by"`
	ReportedOn time.Time `json:"reported_on"`
}

// GamePost represents a posted game session moving through the
// open → in_progress → ready_to_start → completed lifecycle, or
// open → expired when nobody joins in time. Players and ReadyPlayers
// are sets: membership is added by union merge, never positional write.
type GamePost struct {
	ID           string         `json:"id"`
	PartyID      *string        `json:"party_id,omitempty"`
	PartyName    string         `json:"party_name"`
	CreatorID    string         `json:"creator_id"`
	CreatorName  string         `json:"creator_name"`
	Format       GameFormat     `json:"format"`
	GameType     GameType       `json:"game_type"`
	Status       GamePostStatus `json:"status"`
	Players      []string       `json:"players"`
	ReadyPlayers []string       `json:"ready_players"`
	MaxPlayers   int            `json:"max_players"`
	Team1PartyID *string        `json:"team1_party_id,omitempty"`
	Team2PartyID *string        `json:"team2_party_id,omitempty"`
	MatchResult  *MatchResult   `json:"match_result,omitempty"`
	CreatedOn    time.Time      `json:"created_on"`
	ExpiresOn    time.Time      `json:"expires_on"`
}

// HasPlayer reports whether the given user has joined the post
func (g *GamePost) HasPlayer(userID string) bool {
	for _, p := range g.Players {
		if p == userID {
			return true
		}
	}
	return false
}

// IsReady reports whether the given player has already confirmed
func (g *GamePost) IsReady(userID string) bool {
	for _, p := range g.ReadyPlayers {
		if p == userID {
			return true
		}
	}
	return false
}

// IsFull reports whether the post has reached capacity
func (g *GamePost) IsFull() bool {
	return len(g.Players) >= g.MaxPlayers
}

// IsExpired reports whether the join deadline has passed. Both sides are
// normalized to UTC before comparison.
func (g *GamePost) IsExpired(now time.Time) bool {
	return now.UTC().After(g.ExpiresOn.UTC())
}

// QuorumReached reports whether every current player has confirmed ready.
// Quorum is size equality against the live player set, so a player who
// joins after others readied up re-opens the quorum.
func (g *GamePost) QuorumReached() bool {
	return len(g.Players) > 0 && len(g.ReadyPlayers) == len(g.Players)
}

// Redacted returns a copy with the creator's name hidden. Open posts
// browsed by other players must not reveal who posted them.
func (g *GamePost) Redacted(viewerID string) *GamePost {
	if g.Status != StatusOpen || g.CreatorID == viewerID {
		return g
	}
	redacted := *g
	redacted.CreatorName = AnonymousCreatorName
	return &redacted
}

// ValidateFormatGameType enforces the joint constraint between format
// and game type: deathmatch is 1v1-only and 1v1 is deathmatch-only.
func ValidateFormatGameType(f GameFormat, t GameType) bool {
	if !f.IsValid() || !t.IsValid() {
		return false
	}
	if t == TypeDeathmatch {
		return f == Format1v1
	}
	return f != Format1v1
}

// CreateGamePostRequest represents a request to post a game
type CreateGamePostRequest struct {
	PartyID  *string    `json:"party_id,omitempty"`
	Format   GameFormat `json:"format"`
	GameType GameType   `json:"game_type"`
}

// Validate checks the request fields
func (r *CreateGamePostRequest) Validate() []FieldError {
	var errs []FieldError
	if !r.Format.IsValid() {
		errs = append(errs, FieldError{Field: "format", Message: "format must be one of 5v5, 4v4, 1v1"})
	}
	if !r.GameType.IsValid() {
		errs = append(errs, FieldError{Field: "game_type", Message: "game_type must be one of best_of_1, best_of_3, deathmatch"})
	}
	if len(errs) > 0 {
		return errs
	}
	if !ValidateFormatGameType(r.Format, r.GameType) {
		errs = append(errs, FieldError{Field: "game_type", Message: "deathmatch requires 1v1 format and 1v1 requires deathmatch"})
	}
	if r.Format.IsTeamFormat() && (r.PartyID == nil || *r.PartyID == "") {
		errs = append(errs, FieldError{Field: "party_id", Message: "team formats require a party"})
	}
	return errs
}

// JoinGamePostRequest carries the joiner's party for team formats
type JoinGamePostRequest struct {
	PartyID *string `json:"party_id,omitempty"`
}

// SubmitResultRequest represents a match outcome report
type SubmitResultRequest struct {
	WinnerID   string `json:"winner_id"`
	WinnerName string `json:"winner_name"`
	LoserID    string `json:"loser_id"`
	LoserName  string `json:"loser_name"`
	Score      string `json:"score"`
}

// Validate checks the request fields
func (r *SubmitResultRequest) Validate() []FieldError {
	var errs []FieldError
	if r.WinnerID == "" {
		errs = append(errs, FieldError{Field: "winner_id", Message: "winner_id is required"})
	}
	if r.LoserID == "" {
		errs = append(errs, FieldError{Field: "loser_id", Message: "loser_id is required"})
	}
	if r.WinnerID != "" && r.WinnerID == r.LoserID {
		errs = append(errs, FieldError{Field: "loser_id", Message: "winner and loser must differ"})
	}
	return errs
}

// ReadyResponse reports the post state after a ready confirmation
type ReadyResponse struct {
	Post          *GamePost `json:"post"`
	QuorumReached bool      `json:"quorum_reached"`
}
