package auth

import "time"

const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
	RoleWalker = "walker"
)

type Profile struct {
	ID                 string    `json:"id"`
	Email              string    `json:"email"`
	DisplayName        string    `json:"display_name"`
	FirstName          string    `json:"first_name"`
	LastName           string    `json:"last_name"`
	Address            string    `json:"address"`
	AddressComplement  string    `json:"address_complement"`
	PostalCode         string    `json:"postal_code"`
	City               string    `json:"city"`
	PhoneMobile        string    `json:"phone_mobile"`
	PhoneFixed         string    `json:"phone_fixed"`
	IsProfileCompleted bool      `json:"is_profile_completed"`
	Role               string    `json:"role"`
	Approved           bool      `json:"approved"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// FullName prefers first/last name, then display name, then the email address.
func (p Profile) FullName() string {
	name := p.FirstName
	if p.LastName != "" {
		if name != "" {
			name += " "
		}
		name += p.LastName
	}
	if name != "" {
		return name
	}
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return p.Email
}

type MagicLinkRequest struct {
	Email string `json:"email"`
}

type VerifyRequest struct {
	TokenID string `json:"id"`
	Token   string `json:"token"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

type CompletionRequest struct {
	DisplayName       string `json:"display_name"`
	FirstName         string `json:"first_name"`
	LastName          string `json:"last_name"`
	Address           string `json:"address"`
	AddressComplement string `json:"address_complement"`
	PostalCode        string `json:"postal_code"`
	City              string `json:"city"`
	PhoneMobile       string `json:"phone_mobile"`
	PhoneFixed        string `json:"phone_fixed"`
}
