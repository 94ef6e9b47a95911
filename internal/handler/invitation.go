package handler

import (
	"errors"
	"net/http"

	"github.com/riftly/scrim/api/internal/middleware"
	"github.com/riftly/scrim/api/internal/model"
	"github.com/riftly/scrim/api/internal/service"
)

// InvitationHandler handles party invitation HTTP requests
type InvitationHandler struct {
	svc *service.InvitationService
}

// NewInvitationHandler creates a new invitation handler
func NewInvitationHandler(svc *service.InvitationService) *InvitationHandler {
	return &InvitationHandler{svc: svc}
}

// Invite handles POST /v1/parties/{partyId}/invitations
func (h *InvitationHandler) Invite(w http.ResponseWriter, r *http.Request) {
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

	var req model.CreateInvitationRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}
	if req.InviteeID == "" {
		WriteError(w, model.NewValidationError([]model.FieldError{
			{Field: "invitee_id", Message: "invitee_id is required"},
		}))
		return
	}

	inv, err := h.svc.Invite(ctx, partyID, userID, req)
	if err != nil {
		h.handleError(w, err)
		return
	}

	WriteData(w, http.StatusCreated, inv)
}

// ListReceived handles GET /v1/invitations/received
func (h *InvitationHandler) ListReceived(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	invitations, err := h.svc.ListReceived(ctx, userID)
	if err != nil {
		h.handleError(w, err)
		return
	}

	WriteData(w, http.StatusOK, invitations)
}

// Respond handles POST /v1/invitations/{invitationId}/respond
func (h *InvitationHandler) Respond(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	invitationID := r.PathValue("invitationId")
	if invitationID == "" {
		WriteError(w, model.NewBadRequestError("invitation ID required"))
		return
	}

	var req model.RespondToInvitationRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	inv, err := h.svc.Respond(ctx, invitationID, userID, req)
	if err != nil {
		h.handleError(w, err)
		return
	}

	WriteData(w, http.StatusOK, inv)
}

func (h *InvitationHandler) handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvitationNotFound):
		WriteError(w, model.NewNotFoundError("invitation"))
	case errors.Is(err, service.ErrPartyNotFound):
		WriteError(w, model.NewNotFoundError("party"))
	case errors.Is(err, service.ErrUserNotFound):
		WriteError(w, model.NewNotFoundError("user"))
	case errors.Is(err, service.ErrNotPartyCreator):
		WriteError(w, model.NewForbiddenError("only the party creator may invite"))
	case errors.Is(err, service.ErrNotInvitee):
		WriteError(w, model.NewForbiddenError("invitation is addressed to another user"))
	case errors.Is(err, service.ErrCannotInviteSelf):
		WriteError(w, model.NewConflictError("cannot invite yourself"))
	case errors.Is(err, service.ErrAlreadyPartyMember):
		WriteError(w, model.NewConflictError("user is already a member of this party"))
	case errors.Is(err, service.ErrDuplicateInvitation):
		WriteError(w, model.NewConflictError("a pending invitation already exists for this user"))
	case errors.Is(err, service.ErrInvitationNotPending):
		WriteError(w, model.NewConflictError("invitation has already been answered"))
	case errors.Is(err, service.ErrInvalidInviteResponse):
		WriteError(w, model.NewValidationError([]model.FieldError{
			{Field: "status", Message: "status must be accepted or declined"},
		}))
	default:
		WriteError(w, model.NewInternalError(""))
	}
}
