package models

// UserProfile is the identity shown to the respondent
type UserProfile struct {
	Email   string `json:"email" validate:"required,email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// IdentityExchangeRequest is posted to the identity exchange endpoint
type IdentityExchangeRequest struct {
	Token string `json:"token"`
}

// IdentityExchangeResponse is returned by a successful identity exchange.
// Profession is absent until the respondent has chosen one.
type IdentityExchangeResponse struct {
	Token        string      `json:"token" validate:"required"`
	User         UserProfile `json:"user" validate:"required"`
	HasSubmitted bool        `json:"hasSubmitted"`
	Profession   *string     `json:"profession,omitempty"`
}

// UserStatusResponse is returned by the session status endpoint
type UserStatusResponse struct {
	HasSubmitted bool    `json:"hasSubmitted"`
	Profession   *string `json:"profession,omitempty"`
}

// SaveProfessionRequest records the respondent's chosen profession
type SaveProfessionRequest struct {
	Profession Profession `json:"profession"`
}

// ErrorResponse is the error body the backend sends with non-2xx statuses
type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// SessionStatus is the reconciled view of the signed-in respondent
type SessionStatus struct {
	Profile      UserProfile
	HasSubmitted bool
	Profession   *Profession
}
