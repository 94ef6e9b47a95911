package service

import "errors"

// Centralized service layer errors.
// All errors returned by service methods are defined here for consistency
// and to make error handling in handlers predictable.

// ===== Authentication Errors =====
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailAlreadyExists = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrPasswordRequired   = errors.New("password is required")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
	ErrPasswordTooLong    = errors.New("password must be at most 128 characters")
	ErrInvalidEmail       = errors.New("invalid email format")
	ErrNameRequired       = errors.New("name is required")
)

// ===== Party Errors =====
var (
	ErrPartyNotFound    = errors.New("party not found")
	ErrNotPartyCreator  = errors.New("not the creator of this party")
	ErrPartyNameInvalid = errors.New("invalid party name")
)

// ===== Invitation Errors =====
var (
	ErrInvitationNotFound    = errors.New("invitation not found")
	ErrNotInvitee            = errors.New("invitation is addressed to another user")
	ErrInvitationNotPending  = errors.New("invitation has already been answered")
	ErrAlreadyPartyMember    = errors.New("user is already a member of this party")
	ErrDuplicateInvitation   = errors.New("a pending invitation already exists for this user")
	ErrInvalidInviteResponse = errors.New("response must be accepted or declined")
	ErrCannotInviteSelf      = errors.New("cannot invite yourself")
)

// ===== Game Post Errors =====
var (
	ErrGamePostNotFound    = errors.New("game post not found")
	ErrActiveGameExists    = errors.New("creator already has an active game post")
	ErrInvalidGameFormat   = errors.New("invalid game format and type combination")
	ErrPartyTooSmall       = errors.New("party does not meet the minimum size for this format")
	ErrPartyRequired       = errors.New("team formats require a party")
	ErrNotGameCreator      = errors.New("not the creator of this game post")
	ErrNotGamePlayer       = errors.New("not a player in this game post")
	ErrAlreadyJoined       = errors.New("already joined this game post")
	ErrGameFull            = errors.New("game post is full")
	ErrGameNotOpen         = errors.New("game post is not open for joining")
	ErrGameNotInProgress   = errors.New("game post is not in progress")
	ErrGameExpired         = errors.New("game post has expired")
	ErrTransitionConflict  = errors.New("game post was modified concurrently")
	ErrSamePartyJoin       = errors.New("cannot join with the same party that posted the game")
	ErrResultNotInvolved   = errors.New("result must involve the reporting player")
	ErrResultNotAuthorized = errors.New("not authorized to report a result for this game")
)
