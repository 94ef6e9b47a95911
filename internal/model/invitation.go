package model

import "time"

// InvitationStatus represents the state of a party invitation
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationDeclined InvitationStatus = "declined"
)

// IsValidResponse reports whether the status is a legal invitee response
func (s InvitationStatus) IsValidResponse() bool {
	return s == InvitationAccepted || s == InvitationDeclined
}

// PartyInvitation represents a pending or answered invite into a party.
// Party and inviter names are denormalized so the invitee's inbox renders
// without extra lookups.
type PartyInvitation struct {
	ID          string           `json:"id"`
	PartyID     string           `json:"party_id"`
	PartyName   string           `json:"party_name"`
	InviterID   string           `json:"inviter_id"`
	InviterName string           `json:"inviter_name"`
	InviteeID   string           `json:"invitee_id"`
	Status      InvitationStatus `json:"status"`
	CreatedOn   time.Time        `json:"created_on"`
}

// CreateInvitationRequest represents a request to invite a user to a party
type CreateInvitationRequest struct {
	InviteeID string `json:"invitee_id"`
}

// RespondToInvitationRequest represents the invitee's answer
type RespondToInvitationRequest struct {
	Status InvitationStatus `json:"status"`
}
