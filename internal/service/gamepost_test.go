package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/riftly/scrim/api/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGamePostRepo is an in-memory store whose transition methods hold a
// mutex across guard evaluation and mutation, mirroring the atomicity of
// the real conditional updates.
type fakeGamePostRepo struct {
	mu    sync.Mutex
	seq   int
	posts map[string]*model.GamePost
}

func newFakeGamePostRepo() *fakeGamePostRepo {
	return &fakeGamePostRepo{posts: make(map[string]*model.GamePost)}
}

func copyPost(p *model.GamePost) *model.GamePost {
	c := *p
	c.Players = append([]string{}, p.Players...)
	c.ReadyPlayers = append([]string{}, p.ReadyPlayers...)
	if p.MatchResult != nil {
		mr := *p.MatchResult
		c.MatchResult = &mr
	}
	return &c
}

func (f *fakeGamePostRepo) Create(ctx context.Context, post *model.GamePost) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	post.ID = fmt.Sprintf("game_post:%d", f.seq)
	f.posts[post.ID] = copyPost(post)
	return nil
}

func (f *fakeGamePostRepo) GetByID(ctx context.Context, id string) (*model.GamePost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[id]
	if !ok {
		return nil, nil
	}
	return copyPost(p), nil
}

func (f *fakeGamePostRepo) ListAll(ctx context.Context) ([]*model.GamePost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*model.GamePost, 0, len(f.posts))
	for _, p := range f.posts {
		out = append(out, copyPost(p))
	}
	return out, nil
}

func (f *fakeGamePostRepo) ListByParty(ctx context.Context, partyID string) ([]*model.GamePost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.GamePost
	for _, p := range f.posts {
		if p.PartyID != nil && *p.PartyID == partyID {
			out = append(out, copyPost(p))
		}
	}
	return out, nil
}

func (f *fakeGamePostRepo) FindActiveByCreator(ctx context.Context, creatorID string) (*model.GamePost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.posts {
		if p.CreatorID == creatorID && p.Status.IsActive() {
			return copyPost(p), nil
		}
	}
	return nil, nil
}

func (f *fakeGamePostRepo) ExpireOpen(ctx context.Context, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.posts {
		if p.Status == model.StatusOpen && now.UTC().After(p.ExpiresOn.UTC()) {
			p.Status = model.StatusExpired
		}
	}
	return nil
}

func (f *fakeGamePostRepo) ExpireOpenByParty(ctx context.Context, partyID string, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.posts {
		if p.PartyID != nil && *p.PartyID == partyID &&
			p.Status == model.StatusOpen && now.UTC().After(p.ExpiresOn.UTC()) {
			p.Status = model.StatusExpired
		}
	}
	return nil
}

func (f *fakeGamePostRepo) AddPlayer(ctx context.Context, id, userID string, team2PartyID *string, now time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[id]
	if !ok {
		return false, nil
	}
	if p.Status != model.StatusOpen || now.UTC().After(p.ExpiresOn.UTC()) ||
		len(p.Players) >= p.MaxPlayers || p.HasPlayer(userID) {
		return false, nil
	}
	p.Players = append(p.Players, userID)
	p.Status = model.StatusInProgress
	if team2PartyID != nil {
		p.Team2PartyID = team2PartyID
	}
	return true, nil
}

func (f *fakeGamePostRepo) MarkReady(ctx context.Context, id, userID string) (*model.GamePost, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[id]
	if !ok {
		return nil, false, nil
	}
	if p.Status != model.StatusInProgress || !p.HasPlayer(userID) {
		return nil, false, nil
	}
	if !p.IsReady(userID) {
		p.ReadyPlayers = append(p.ReadyPlayers, userID)
	}
	return copyPost(p), true, nil
}

func (f *fakeGamePostRepo) PromoteReady(ctx context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[id]
	if !ok {
		return false, nil
	}
	if p.Status != model.StatusInProgress || !p.QuorumReached() {
		return false, nil
	}
	p.Status = model.StatusReadyToStart
	return true, nil
}

func (f *fakeGamePostRepo) CompleteMatch(ctx context.Context, id string, res *model.MatchResult) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[id]
	if !ok {
		return false, nil
	}
	if p.Status != model.StatusInProgress && p.Status != model.StatusReadyToStart {
		return false, nil
	}
	mr := *res
	p.MatchResult = &mr
	p.Status = model.StatusCompleted
	return true, nil
}

func (f *fakeGamePostRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.posts, id)
	return nil
}

// seed inserts a post directly, bypassing service guards
func (f *fakeGamePostRepo) seed(p *model.GamePost) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	if p.ID == "" {
		p.ID = fmt.Sprintf("game_post:%d", f.seq)
	}
	f.posts[p.ID] = copyPost(p)
}

type fakePartyDirectory struct {
	parties map[string]*model.Party
}

func newFakePartyDirectory() *fakePartyDirectory {
	return &fakePartyDirectory{parties: make(map[string]*model.Party)}
}

func (f *fakePartyDirectory) GetByID(ctx context.Context, id string) (*model.Party, error) {
	return f.parties[id], nil
}

func (f *fakePartyDirectory) GetByCreator(ctx context.Context, creatorID string) (*model.Party, error) {
	for _, p := range f.parties {
		if p.CreatorID == creatorID {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakePartyDirectory) add(p *model.Party) {
	f.parties[p.ID] = p
}

type fakeUserDirectory struct {
	users map[string]*model.User
}

func newFakeUserDirectory() *fakeUserDirectory {
	return &fakeUserDirectory{users: make(map[string]*model.User)}
}

func (f *fakeUserDirectory) GetByID(ctx context.Context, id string) (*model.User, error) {
	return f.users[id], nil
}

func (f *fakeUserDirectory) add(id, name string) {
	f.users[id] = &model.User{ID: id, Name: name}
}

type gamePostFixture struct {
	svc     *GamePostService
	repo    *fakeGamePostRepo
	parties *fakePartyDirectory
	users   *fakeUserDirectory
	clock   *clockwork.FakeClock
}

func setupGamePostService(t *testing.T) *gamePostFixture {
	t.Helper()

	repo := newFakeGamePostRepo()
	parties := newFakePartyDirectory()
	users := newFakeUserDirectory()
	clock := clockwork.NewFakeClockAt(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	users.add("user:alice", "Alice")
	users.add("user:bob", "Bob")
	users.add("user:carol", "Carol")

	svc := NewGamePostService(GamePostServiceConfig{
		GameRepo: repo,
		Parties:  parties,
		Users:    users,
		Clock:    clock,
	})

	return &gamePostFixture{svc: svc, repo: repo, parties: parties, users: users, clock: clock}
}

func fiveStack(id, creator string) *model.Party {
	return &model.Party{
		ID:        id,
		Name:      "Stack " + id,
		CreatorID: creator,
		Members:   []string{creator, creator + ":m2", creator + ":m3", creator + ":m4", creator + ":m5"},
	}
}

func TestGamePostService_Create_Solo(t *testing.T) {
	fx := setupGamePostService(t)
	ctx := context.Background()

	post, err := fx.svc.Create(ctx, "user:alice", model.CreateGamePostRequest{
		Format:   model.Format1v1,
		GameType: model.TypeDeathmatch,
	})
	require.NoError(t, err)

	assert.Equal(t, model.StatusOpen, post.Status)
	assert.Equal(t, []string{"user:alice"}, post.Players)
	assert.Empty(t, post.ReadyPlayers)
	assert.Equal(t, 2, post.MaxPlayers)
	assert.Equal(t, model.SoloPartyName, post.PartyName)
	assert.Equal(t, "Alice", post.CreatorName)
	assert.Equal(t, fx.clock.Now().UTC().Add(model.PostTTL), post.ExpiresOn)
}

func TestGamePostService_Create_InvalidFormatCombo(t *testing.T) {
	fx := setupGamePostService(t)
	ctx := context.Background()

	_, err := fx.svc.Create(ctx, "user:alice", model.CreateGamePostRequest{
		Format:   model.Format5v5,
		GameType: model.TypeDeathmatch,
	})
	assert.ErrorIs(t, err, ErrInvalidGameFormat)

	_, err = fx.svc.Create(ctx, "user:alice", model.CreateGamePostRequest{
		Format:   model.Format1v1,
		GameType: model.TypeBestOf3,
	})
	assert.ErrorIs(t, err, ErrInvalidGameFormat)
}

func TestGamePostService_Create_TeamRequiresParty(t *testing.T) {
	fx := setupGamePostService(t)
	ctx := context.Background()

	_, err := fx.svc.Create(ctx, "user:alice", model.CreateGamePostRequest{
		Format:   model.Format5v5,
		GameType: model.TypeBestOf1,
	})
	assert.ErrorIs(t, err, ErrPartyRequired)
}

func TestGamePostService_Create_PartyTooSmall(t *testing.T) {
	fx := setupGamePostService(t)
	ctx := context.Background()

	fx.parties.add(&model.Party{
		ID:        "party:small",
		Name:      "Duo",
		CreatorID: "user:alice",
		Members:   []string{"user:alice", "user:bob"},
	})

	partyID := "party:small"
	_, err := fx.svc.Create(ctx, "user:alice", model.CreateGamePostRequest{
		PartyID:  &partyID,
		Format:   model.Format5v5,
		GameType: model.TypeBestOf1,
	})
	assert.ErrorIs(t, err, ErrPartyTooSmall)
}

func TestGamePostService_Create_NotPartyCreator(t *testing.T) {
	fx := setupGamePostService(t)
	ctx := context.Background()

	fx.parties.add(fiveStack("party:a", "user:alice"))

	partyID := "party:a"
	_, err := fx.svc.Create(ctx, "user:bob", model.CreateGamePostRequest{
		PartyID:  &partyID,
		Format:   model.Format5v5,
		GameType: model.TypeBestOf1,
	})
	assert.ErrorIs(t, err, ErrNotPartyCreator)
}

func TestGamePostService_Create_TeamPost(t *testing.T) {
	fx := setupGamePostService(t)
	ctx := context.Background()

	fx.parties.add(fiveStack("party:a", "user:alice"))

	partyID := "party:a"
	post, err := fx.svc.Create(ctx, "user:alice", model.CreateGamePostRequest{
		PartyID:  &partyID,
		Format:   model.Format5v5,
		GameType: model.TypeBestOf3,
	})
	require.NoError(t, err)

	assert.Equal(t, 10, post.MaxPlayers)
	assert.Equal(t, "Stack party:a", post.PartyName)
	require.NotNil(t, post.Team1PartyID)
	assert.Equal(t, "party:a", *post.Team1PartyID)
}

func TestGamePostService_Create_DuplicateActivePost(t *testing.T) {
	fx := setupGamePostService(t)
	ctx := context.Background()

	_, err := fx.svc.Create(ctx, "user:alice", model.CreateGamePostRequest{
		Format:   model.Format1v1,
		GameType: model.TypeDeathmatch,
	})
	require.NoError(t, err)

	_, err = fx.svc.Create(ctx, "user:alice", model.CreateGamePostRequest{
		Format:   model.Format1v1,
		GameType: model.TypeDeathmatch,
	})
	assert.ErrorIs(t, err, ErrActiveGameExists)
}

func TestGamePostService_Create_ExpiredPostDoesNotBlock(t *testing.T) {
	fx := setupGamePostService(t)
	ctx := context.Background()

	stale, err := fx.svc.Create(ctx, "user:alice", model.CreateGamePostRequest{
		Format:   model.Format1v1,
		GameType: model.TypeDeathmatch,
	})
	require.NoError(t, err)

	fx.clock.Advance(31 * time.Minute)

	fresh, err := fx.svc.Create(ctx, "user:alice", model.CreateGamePostRequest{
		Format:   model.Format1v1,
		GameType: model.TypeDeathmatch,
	})
	require.NoError(t, err)

	// The stale post is expired as part of the create, never left open
	// alongside the new one
	swept, err := fx.repo.GetByID(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusExpired, swept.Status)

	open := 0
	posts, err := fx.repo.ListAll(ctx)
	require.NoError(t, err)
	for _, p := range posts {
		if p.CreatorID == "user:alice" && p.Status.IsActive() {
			open++
		}
	}
	assert.Equal(t, 1, open)
	assert.Equal(t, model.StatusOpen, fresh.Status)
}

func TestGamePostService_Join_Solo(t *testing.T) {
	fx := setupGamePostService(t)
	ctx := context.Background()

	post, err := fx.svc.Create(ctx, "user:alice", model.CreateGamePostRequest{
		Format:   model.Format1v1,
		GameType: model.TypeDeathmatch,
	})
	require.NoError(t, err)

	joined, err := fx.svc.Join(ctx, post.ID, "user:bob", model.JoinGamePostRequest{})
	require.NoError(t, err)

	assert.Equal(t, model.StatusInProgress, joined.Status)
	assert.ElementsMatch(t, []string{"user:alice", "user:bob"}, joined.Players)
	assert.LessOrEqual(t, len(joined.Players), joined.MaxPlayers)
}

func TestGamePostService_Join_AlreadyJoined(t *testing.T) {
	fx := setupGamePostService(t)
	ctx := context.Background()

	post, err := fx.svc.Create(ctx, "user:alice", model.CreateGamePostRequest{
		Format:   model.Format1v1,
		GameType: model.TypeDeathmatch,
	})
	require.NoError(t, err)

	_, err = fx.svc.Join(ctx, post.ID, "user:alice", model.JoinGamePostRequest{})
	assert.ErrorIs(t, err, ErrAlreadyJoined)
}

func TestGamePostService_Join_NotOpen(t *testing.T) {
	fx := setupGamePostService(t)
	ctx := context.Background()

	post, err := fx.svc.Create(ctx, "user:alice", model.CreateGamePostRequest{
		Format:   model.Format1v1,
		GameType: model.TypeDeathmatch,
	})
	require.NoError(t, err)

	_, err = fx.svc.Join(ctx, post.ID, "user:bob", model.JoinGamePostRequest{})
	require.NoError(t, err)

	_, err = fx.svc.Join(ctx, post.ID, "user:carol", model.JoinGamePostRequest{})
	assert.ErrorIs(t, err, ErrGameNotOpen)
}

func TestGamePostService_Join_Full(t *testing.T) {
	fx := setupGamePostService(t)
	ctx := context.Background()
	now := fx.clock.Now().UTC()

	fx.repo.seed(&model.GamePost{
		ID:           "game_post:full",
		PartyName:    model.SoloPartyName,
		CreatorID:    "user:alice",
		CreatorName:  "Alice",
		Format:       model.Format1v1,
		GameType:     model.TypeDeathmatch,
		Status:       model.StatusOpen,
		Players:      []string{"user:alice", "user:bob"},
		ReadyPlayers: []string{},
		MaxPlayers:   2,
		CreatedOn:    now,
		ExpiresOn:    now.Add(model.PostTTL),
	})

	_, err := fx.svc.Join(ctx, "game_post:full", "user:carol", model.JoinGamePostRequest{})
	assert.ErrorIs(t, err, ErrGameFull)
}

func TestGamePostService_Join_Expired(t *testing.T) {
	fx := setupGamePostService(t)
	ctx := context.Background()

	post, err := fx.svc.Create(ctx, "user:alice", model.CreateGamePostRequest{
		Format:   model.Format1v1,
		GameType: model.TypeDeathmatch,
	})
	require.NoError(t, err)

	// One minute past the 30-minute deadline
	fx.clock.Advance(31 * time.Minute)

	_, err = fx.svc.Join(ctx, post.ID, "user:bob", model.JoinGamePostRequest{})
	assert.ErrorIs(t, err, ErrGameExpired)
}

func TestGamePostService_Join_ExactDeadlineStillOpen(t *testing.T) {
	fx := setupGamePostService(t)
	ctx := context.Background()

	post, err := fx.svc.Create(ctx, "user:alice", model.CreateGamePostRequest{
		Format:   model.Format1v1,
		GameType: model.TypeDeathmatch,
	})
	require.NoError(t, err)

	// Joining exactly at the deadline is allowed; only after it is not
	fx.clock.Advance(30 * time.Minute)

	_, err = fx.svc.Join(ctx, post.ID, "user:bob", model.JoinGamePostRequest{})
	assert.NoError(t, err)
}

func TestGamePostService_Join_TeamGuards(t *testing.T) {
	fx := setupGamePostService(t)
	ctx := context.Background()

	fx.parties.add(fiveStack("party:a", "user:alice"))
	fx.parties.add(fiveStack("party:b", "user:bob"))
	fx.parties.add(&model.Party{
		ID:        "party:tiny",
		Name:      "Tiny",
		CreatorID: "user:carol",
		Members:   []string{"user:carol"},
	})

	partyA := "party:a"
	post, err := fx.svc.Create(ctx, "user:alice", model.CreateGamePostRequest{
		PartyID:  &partyA,
		Format:   model.Format5v5,
		GameType: model.TypeBestOf1,
	})
	require.NoError(t, err)

	// Joiner owns no party at all
	_, err = fx.svc.Join(ctx, post.ID, "user:dave", model.JoinGamePostRequest{})
	assert.ErrorIs(t, err, ErrPartyRequired)

	// Explicit party the joiner does not own
	_, err = fx.svc.Join(ctx, post.ID, "user:carol", model.JoinGamePostRequest{PartyID: &partyA})
	assert.ErrorIs(t, err, ErrNotPartyCreator)

	// Joiner's own party is too small, whether supplied or resolved
	tiny := "party:tiny"
	_, err = fx.svc.Join(ctx, post.ID, "user:carol", model.JoinGamePostRequest{PartyID: &tiny})
	assert.ErrorIs(t, err, ErrPartyTooSmall)
	_, err = fx.svc.Join(ctx, post.ID, "user:carol", model.JoinGamePostRequest{})
	assert.ErrorIs(t, err, ErrPartyTooSmall)

	// A qualifying captain joins with just the post id
	joined, err := fx.svc.Join(ctx, post.ID, "user:bob", model.JoinGamePostRequest{})
	require.NoError(t, err)
	require.NotNil(t, joined.Team2PartyID)
	assert.Equal(t, "party:b", *joined.Team2PartyID)
	assert.Equal(t, model.StatusInProgress, joined.Status)
}

func TestGamePostService_Join_ExplicitPartyOverride(t *testing.T) {
	fx := setupGamePostService(t)
	ctx := context.Background()

	fx.parties.add(fiveStack("party:a", "user:alice"))
	fx.parties.add(fiveStack("party:b", "user:bob"))

	partyA := "party:a"
	post, err := fx.svc.Create(ctx, "user:alice", model.CreateGamePostRequest{
		PartyID:  &partyA,
		Format:   model.Format5v5,
		GameType: model.TypeBestOf1,
	})
	require.NoError(t, err)

	partyB := "party:b"
	joined, err := fx.svc.Join(ctx, post.ID, "user:bob", model.JoinGamePostRequest{PartyID: &partyB})
	require.NoError(t, err)
	require.NotNil(t, joined.Team2PartyID)
	assert.Equal(t, "party:b", *joined.Team2PartyID)
}

func TestGamePostService_Join_ConcurrentSingleWinner(t *testing.T) {
	fx := setupGamePostService(t)
	ctx := context.Background()

	post, err := fx.svc.Create(ctx, "user:alice", model.CreateGamePostRequest{
		Format:   model.Format1v1,
		GameType: model.TypeDeathmatch,
	})
	require.NoError(t, err)

	errs := make([]error, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	for i, user := range []string{"user:bob", "user:carol"} {
		go func(i int, user string) {
			defer wg.Done()
			_, errs[i] = fx.svc.Join(ctx, post.ID, user, model.JoinGamePostRequest{})
		}(i, user)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			// Loser saw either the raced conditional update fail or the
			// already-transitioned snapshot
			assert.True(t, err == ErrTransitionConflict || err == ErrGameNotOpen,
				"unexpected loser error: %v", err)
		}
	}
	assert.Equal(t, 1, winners)

	final, err := fx.repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Len(t, final.Players, 2)
	assert.LessOrEqual(t, len(final.Players), final.MaxPlayers)
}

func TestGamePostService_Ready_QuorumFlow(t *testing.T) {
	fx := setupGamePostService(t)
	ctx := context.Background()

	post, err := fx.svc.Create(ctx, "user:alice", model.CreateGamePostRequest{
		Format:   model.Format1v1,
		GameType: model.TypeDeathmatch,
	})
	require.NoError(t, err)

	_, err = fx.svc.Join(ctx, post.ID, "user:bob", model.JoinGamePostRequest{})
	require.NoError(t, err)

	// First confirmation: no quorum yet
	resp, err := fx.svc.Ready(ctx, post.ID, "user:alice")
	require.NoError(t, err)
	assert.False(t, resp.QuorumReached)
	assert.Equal(t, model.StatusInProgress, resp.Post.Status)
	assert.Equal(t, []string{"user:alice"}, resp.Post.ReadyPlayers)

	// Repeat confirmation is idempotent
	resp, err = fx.svc.Ready(ctx, post.ID, "user:alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"user:alice"}, resp.Post.ReadyPlayers)
	assert.False(t, resp.QuorumReached)

	// Second player completes the quorum
	resp, err = fx.svc.Ready(ctx, post.ID, "user:bob")
	require.NoError(t, err)
	assert.True(t, resp.QuorumReached)
	assert.Equal(t, model.StatusReadyToStart, resp.Post.Status)

	// Every ready player is a player
	for _, r := range resp.Post.ReadyPlayers {
		assert.True(t, resp.Post.HasPlayer(r))
	}
}

func TestGamePostService_Ready_Guards(t *testing.T) {
	fx := setupGamePostService(t)
	ctx := context.Background()

	post, err := fx.svc.Create(ctx, "user:alice", model.CreateGamePostRequest{
		Format:   model.Format1v1,
		GameType: model.TypeDeathmatch,
	})
	require.NoError(t, err)

	// Not a player
	_, err = fx.svc.Ready(ctx, post.ID, "user:bob")
	assert.ErrorIs(t, err, ErrNotGamePlayer)

	// Still open, not in progress
	_, err = fx.svc.Ready(ctx, post.ID, "user:alice")
	assert.ErrorIs(t, err, ErrGameNotInProgress)

	// Unknown post
	_, err = fx.svc.Ready(ctx, "game_post:missing", "user:alice")
	assert.ErrorIs(t, err, ErrGamePostNotFound)
}

func TestGamePostService_SubmitResult_Solo(t *testing.T) {
	fx := setupGamePostService(t)
	ctx := context.Background()

	post, err := fx.svc.Create(ctx, "user:alice", model.CreateGamePostRequest{
		Format:   model.Format1v1,
		GameType: model.TypeDeathmatch,
	})
	require.NoError(t, err)

	_, err = fx.svc.Join(ctx, post.ID, "user:bob", model.JoinGamePostRequest{})
	require.NoError(t, err)

	completed, err := fx.svc.SubmitResult(ctx, post.ID, "user:bob", model.SubmitResultRequest{
		WinnerID:   "user:bob",
		WinnerName: "Bob",
		LoserID:    "user:alice",
		LoserName:  "Alice",
		Score:      "16-9",
	})
	require.NoError(t, err)

	assert.Equal(t, model.StatusCompleted, completed.Status)
	require.NotNil(t, completed.MatchResult)
	assert.Equal(t, "user:bob", completed.MatchResult.WinnerID)
	assert.Equal(t, "user:bob", completed.MatchResult.ReportedBy)
	assert.Equal(t, fx.clock.Now().UTC(), completed.MatchResult.ReportedOn)

	// Completed is terminal
	_, err = fx.svc.SubmitResult(ctx, post.ID, "user:alice", model.SubmitResultRequest{
		WinnerID: "user:alice",
		LoserID:  "user:bob",
	})
	assert.ErrorIs(t, err, ErrGameNotInProgress)
}

func TestGamePostService_SubmitResult_SoloGuards(t *testing.T) {
	fx := setupGamePostService(t)
	ctx := context.Background()

	post, err := fx.svc.Create(ctx, "user:alice", model.CreateGamePostRequest{
		Format:   model.Format1v1,
		GameType: model.TypeDeathmatch,
	})
	require.NoError(t, err)

	_, err = fx.svc.Join(ctx, post.ID, "user:bob", model.JoinGamePostRequest{})
	require.NoError(t, err)

	// Reporter not a player
	_, err = fx.svc.SubmitResult(ctx, post.ID, "user:carol", model.SubmitResultRequest{
		WinnerID: "user:alice",
		LoserID:  "user:bob",
	})
	assert.ErrorIs(t, err, ErrNotGamePlayer)

	// Reporter not named in the result
	_, err = fx.svc.SubmitResult(ctx, post.ID, "user:bob", model.SubmitResultRequest{
		WinnerID: "user:alice",
		LoserID:  "user:carol",
	})
	assert.ErrorIs(t, err, ErrResultNotInvolved)
}

func TestGamePostService_SubmitResult_TeamAuthorization(t *testing.T) {
	fx := setupGamePostService(t)
	ctx := context.Background()

	fx.parties.add(fiveStack("party:a", "user:alice"))
	fx.parties.add(fiveStack("party:b", "user:bob"))

	partyA := "party:a"
	partyB := "party:b"

	post, err := fx.svc.Create(ctx, "user:alice", model.CreateGamePostRequest{
		PartyID:  &partyA,
		Format:   model.Format5v5,
		GameType: model.TypeBestOf1,
	})
	require.NoError(t, err)

	_, err = fx.svc.Join(ctx, post.ID, "user:bob", model.JoinGamePostRequest{PartyID: &partyB})
	require.NoError(t, err)

	result := model.SubmitResultRequest{
		WinnerID:   "party:a",
		WinnerName: "Stack party:a",
		LoserID:    "party:b",
		LoserName:  "Stack party:b",
		Score:      "2-1",
	}

	// Bystander cannot report
	_, err = fx.svc.SubmitResult(ctx, post.ID, "user:carol", result)
	assert.ErrorIs(t, err, ErrResultNotAuthorized)

	// Opposing captain can
	completed, err := fx.svc.SubmitResult(ctx, post.ID, "user:bob", result)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, completed.Status)
}

func TestGamePostService_SubmitResult_AfterReadyToStart(t *testing.T) {
	fx := setupGamePostService(t)
	ctx := context.Background()

	post, err := fx.svc.Create(ctx, "user:alice", model.CreateGamePostRequest{
		Format:   model.Format1v1,
		GameType: model.TypeDeathmatch,
	})
	require.NoError(t, err)

	_, err = fx.svc.Join(ctx, post.ID, "user:bob", model.JoinGamePostRequest{})
	require.NoError(t, err)

	_, err = fx.svc.Ready(ctx, post.ID, "user:alice")
	require.NoError(t, err)
	resp, err := fx.svc.Ready(ctx, post.ID, "user:bob")
	require.NoError(t, err)
	require.Equal(t, model.StatusReadyToStart, resp.Post.Status)

	completed, err := fx.svc.SubmitResult(ctx, post.ID, "user:alice", model.SubmitResultRequest{
		WinnerID: "user:alice",
		LoserID:  "user:bob",
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, completed.Status)
}

func TestGamePostService_List_SweepsAndRedacts(t *testing.T) {
	fx := setupGamePostService(t)
	ctx := context.Background()

	post, err := fx.svc.Create(ctx, "user:alice", model.CreateGamePostRequest{
		Format:   model.Format1v1,
		GameType: model.TypeDeathmatch,
	})
	require.NoError(t, err)

	// Another viewer sees an anonymized open post
	posts, err := fx.svc.List(ctx, "user:bob")
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, model.AnonymousCreatorName, posts[0].CreatorName)

	// The creator sees their own name
	posts, err = fx.svc.List(ctx, "user:alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice", posts[0].CreatorName)

	// Past the deadline the sweep flips the post to expired
	fx.clock.Advance(31 * time.Minute)
	posts, err = fx.svc.List(ctx, "user:bob")
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, model.StatusExpired, posts[0].Status)

	stored, err := fx.repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusExpired, stored.Status)
}

func TestGamePostService_Delete(t *testing.T) {
	fx := setupGamePostService(t)
	ctx := context.Background()

	post, err := fx.svc.Create(ctx, "user:alice", model.CreateGamePostRequest{
		Format:   model.Format1v1,
		GameType: model.TypeDeathmatch,
	})
	require.NoError(t, err)

	err = fx.svc.Delete(ctx, post.ID, "user:bob")
	assert.ErrorIs(t, err, ErrNotGameCreator)

	err = fx.svc.Delete(ctx, post.ID, "user:alice")
	require.NoError(t, err)

	err = fx.svc.Delete(ctx, post.ID, "user:alice")
	assert.ErrorIs(t, err, ErrGamePostNotFound)
}
