package handler

import (
	"errors"
	"net/http"

	"github.com/riftly/scrim/api/internal/middleware"
	"github.com/riftly/scrim/api/internal/model"
	"github.com/riftly/scrim/api/internal/service"
)

// GamePostHandler handles game post HTTP requests
type GamePostHandler struct {
	svc *service.GamePostService
}

// NewGamePostHandler creates a new game post handler
func NewGamePostHandler(svc *service.GamePostService) *GamePostHandler {
	return &GamePostHandler{svc: svc}
}

// Create handles POST /v1/games
func (h *GamePostHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	var req model.CreateGamePostRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}
	if fieldErrs := req.Validate(); len(fieldErrs) > 0 {
		WriteError(w, model.NewValidationError(fieldErrs))
		return
	}

	post, err := h.svc.Create(ctx, userID, req)
	if err != nil {
		h.handleError(w, err)
		return
	}

	WriteData(w, http.StatusCreated, post)
}

// List handles GET /v1/games
func (h *GamePostHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	posts, err := h.svc.List(ctx, userID)
	if err != nil {
		h.handleError(w, err)
		return
	}

	WriteData(w, http.StatusOK, posts)
}

// ListByParty handles GET /v1/parties/{partyId}/games
func (h *GamePostHandler) ListByParty(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	partyID := r.PathValue("partyId")
	if partyID == "" {
		WriteError(w, model.NewBadRequestError("party ID required"))
		return
	}

	posts, err := h.svc.ListByParty(ctx, partyID, userID)
	if err != nil {
		h.handleError(w, err)
		return
	}

	WriteData(w, http.StatusOK, posts)
}

// Join handles POST /v1/games/{gameId}/join
func (h *GamePostHandler) Join(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	gameID := r.PathValue("gameId")
	if gameID == "" {
		WriteError(w, model.NewBadRequestError("game ID required"))
		return
	}

	// Body is optional for solo formats
	var req model.JoinGamePostRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := DecodeJSON(r, &req); err != nil {
			WriteError(w, model.NewBadRequestError("invalid request body"))
			return
		}
	}

	post, err := h.svc.Join(ctx, gameID, userID, req)
	if err != nil {
		h.handleError(w, err)
		return
	}

	WriteData(w, http.StatusOK, post)
}

// Ready handles POST /v1/games/{gameId}/ready
func (h *GamePostHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	gameID := r.PathValue("gameId")
	if gameID == "" {
		WriteError(w, model.NewBadRequestError("game ID required"))
		return
	}

	resp, err := h.svc.Ready(ctx, gameID, userID)
	if err != nil {
		h.handleError(w, err)
		return
	}

	WriteData(w, http.StatusOK, resp)
}

// SubmitResult handles POST /v1/games/{gameId}/result
func (h *GamePostHandler) SubmitResult(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	gameID := r.PathValue("gameId")
	if gameID == "" {
		WriteError(w, model.NewBadRequestError("game ID required"))
		return
	}

	var req model.SubmitResultRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}
	if fieldErrs := req.Validate(); len(fieldErrs) > 0 {
		WriteError(w, model.NewValidationError(fieldErrs))
		return
	}

	post, err := h.svc.SubmitResult(ctx, gameID, userID, req)
	if err != nil {
		h.handleError(w, err)
		return
	}

	WriteData(w, http.StatusOK, post)
}

// Delete handles DELETE /v1/games/{gameId}
func (h *GamePostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	gameID := r.PathValue("gameId")
	if gameID == "" {
		WriteError(w, model.NewBadRequestError("game ID required"))
		return
	}

	if err := h.svc.Delete(ctx, gameID, userID); err != nil {
		h.handleError(w, err)
		return
	}

	WriteNoContent(w)
}

func (h *GamePostHandler) handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrGamePostNotFound):
		WriteError(w, model.NewNotFoundError("game post"))
	case errors.Is(err, service.ErrPartyNotFound):
		WriteError(w, model.NewNotFoundError("party"))
	case errors.Is(err, service.ErrInvalidGameFormat):
		WriteError(w, model.NewValidationError([]model.FieldError{
			{Field: "game_type", Message: "deathmatch requires 1v1 format and 1v1 requires deathmatch"},
		}))
	case errors.Is(err, service.ErrPartyRequired):
		WriteError(w, model.NewValidationError([]model.FieldError{
			{Field: "party_id", Message: "team formats require a party"},
		}))
	case errors.Is(err, service.ErrPartyTooSmall):
		WriteError(w, model.NewValidationError([]model.FieldError{
			{Field: "party_id", Message: "party does not meet the minimum size for this format"},
		}))
	case errors.Is(err, service.ErrNotPartyCreator):
		WriteError(w, model.NewForbiddenError("only the party creator may field it in a game"))
	case errors.Is(err, service.ErrActiveGameExists):
		WriteError(w, model.NewConflictError("creator already has an active game post"))
	case errors.Is(err, service.ErrAlreadyJoined):
		WriteError(w, model.NewConflictError("already joined this game post"))
	case errors.Is(err, service.ErrSamePartyJoin):
		WriteError(w, model.NewConflictError("cannot join with the same party that posted the game"))
	case errors.Is(err, service.ErrGameFull):
		WriteError(w, model.NewFullError("game post is full"))
	case errors.Is(err, service.ErrGameNotOpen):
		WriteError(w, model.NewInvalidStateError("game post is not open for joining"))
	case errors.Is(err, service.ErrGameNotInProgress):
		WriteError(w, model.NewInvalidStateError("game post does not accept this action in its current status"))
	case errors.Is(err, service.ErrGameExpired):
		WriteError(w, model.NewExpiredError("game post has expired"))
	case errors.Is(err, service.ErrTransitionConflict):
		WriteError(w, model.NewConflictError("game post was modified concurrently, retry"))
	case errors.Is(err, service.ErrNotGameCreator):
		WriteError(w, model.NewForbiddenError("only the game creator may perform this action"))
	case errors.Is(err, service.ErrNotGamePlayer):
		WriteError(w, model.NewForbiddenError("not a player in this game post"))
	case errors.Is(err, service.ErrResultNotInvolved):
		WriteError(w, model.NewForbiddenError("result must involve the reporting player"))
	case errors.Is(err, service.ErrResultNotAuthorized):
		WriteError(w, model.NewForbiddenError("not authorized to report a result for this game"))
	default:
		WriteError(w, model.NewInternalError(""))
	}
}
