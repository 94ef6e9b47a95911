package handler

import (
	"errors"
	"net/http"

	"github.com/riftly/scrim/api/internal/middleware"
	"github.com/riftly/scrim/api/internal/model"
	"github.com/riftly/scrim/api/internal/service"
)

// PartyHandler handles party HTTP requests
type PartyHandler struct {
	svc *service.PartyService
}

// NewPartyHandler creates a new party handler
func NewPartyHandler(svc *service.PartyService) *PartyHandler {
	return &PartyHandler{svc: svc}
}

// Create handles POST /v1/parties
func (h *PartyHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	var req model.CreatePartyRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}
	if fieldErrs := req.Validate(); len(fieldErrs) > 0 {
		WriteError(w, model.NewValidationError(fieldErrs))
		return
	}

	party, err := h.svc.Create(ctx, userID, req)
	if err != nil {
		h.handleError(w, err)
		return
	}

	WriteData(w, http.StatusCreated, party)
}

// List handles GET /v1/parties - parties the caller belongs to
func (h *PartyHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	parties, err := h.svc.ListForUser(ctx, userID)
	if err != nil {
		h.handleError(w, err)
		return
	}

	WriteData(w, http.StatusOK, parties)
}

// Delete handles DELETE /v1/parties/{partyId}
func (h *PartyHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	if err := h.svc.Delete(ctx, partyID, userID); err != nil {
		h.handleError(w, err)
		return
	}

	WriteNoContent(w)
}

func (h *PartyHandler) handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrPartyNotFound):
		WriteError(w, model.NewNotFoundError("party"))
	case errors.Is(err, service.ErrNotPartyCreator):
		WriteError(w, model.NewForbiddenError("only the party creator may perform this action"))
	case errors.Is(err, service.ErrPartyNameInvalid):
		WriteError(w, model.NewValidationError([]model.FieldError{
			{Field: "name", Message: "party name is required and must not exceed maximum length"},
		}))
	default:
		WriteError(w, model.NewInternalError(""))
	}
}
