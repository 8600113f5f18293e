package models

// UserSession represents the authenticated caller, built from a verified bearer token
type UserSession struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	Role      Role   `json:"role"`
	ExpiresAt int64  `json:"exp"`
	IssuedAt  int64  `json:"iat"`

	// Token is the raw bearer token, forwarded when the profile backend is remote
	Token string `json:"-"`
}
