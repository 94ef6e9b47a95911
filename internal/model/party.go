package model

// Party represents a named group of players with one creator/owner.
// Members grow by invitation only; the creator is always a member.
type Party struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	CreatorID string   `json:"creator_id"`
	Members   []string `json:"members"`
}

// Size returns the current member count
func (p *Party) Size() int {
	return len(p.Members)
}

// HasMember reports whether the given user is a member
func (p *Party) HasMember(userID string) bool {
	for _, m := range p.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// Business constraints
const (
	MaxPartyNameLength = 100
)

// CreatePartyRequest represents a request to create a party
type CreatePartyRequest struct {
	Name string `json:"name"`
}

// Validate checks the request fields
func (r *CreatePartyRequest) Validate() []FieldError {
	var errs []FieldError
	if r.Name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "party name is required"})
	}
	if len(r.Name) > MaxPartyNameLength {
		errs = append(errs, FieldError{Field: "name", Message: "party name exceeds maximum length"})
	}
	return errs
}
