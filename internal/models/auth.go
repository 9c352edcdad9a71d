package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims carries the identity asserted by the external auth provider.
type JWTClaims struct {
	ExternalID string   `json:"oid"`
	Email      string   `json:"email,omitempty"`
	Type       UserType `json:"user_type,omitempty"`
	jwt.RegisteredClaims
}

// OrganisationContext is the single organisation membership an accessor
// acts under for the duration of a request.
type OrganisationContext struct {
	MembershipID     string       `json:"membership_id"`
	Role             AccessorRole `json:"role"`
	OrganisationID   string       `json:"organisation_id"`
	OrganisationName string       `json:"organisation_name"`
	UnitID           string       `json:"unit_id,omitempty"`
	UnitName         string       `json:"unit_name,omitempty"`
}

// Actor is the resolved request principal handed to the service layer.
type Actor struct {
	ID           string               `json:"id"`
	ExternalID   string               `json:"external_id"`
	Type         UserType             `json:"type"`
	Organisation *OrganisationContext `json:"organisation,omitempty"`
}

// IsAccessor reports whether the actor belongs to the accessor population.
func (a Actor) IsAccessor() bool {
	return a.Type == UserTypeAccessor
}

// HasUnit reports whether the actor carries a full organisation unit context.
func (a Actor) HasUnit() bool {
	return a.Organisation != nil && a.Organisation.UnitID != ""
}
