package dto

// LoginRequest carries staff login credentials.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"registrar@schoolgate.local"`
	Password string `json:"password" binding:"required" example:"secret123"`
}

// RefreshTokenRequest carries a refresh token exchange.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// TokenResponse is the token pair returned on login and refresh.
type TokenResponse struct {
	AccessToken      string `json:"accessToken"`
	RefreshToken     string `json:"refreshToken"`
	ExpiresIn        int    `json:"expiresIn"`
	RefreshExpiresIn int    `json:"refreshExpiresIn"`
	TokenType        string `json:"tokenType" example:"Bearer"`
}

// ProfileResponse is the authenticated user's own view.
type ProfileResponse struct {
	ID          int64    `json:"id"`
	Email       string   `json:"email"`
	FirstName   string   `json:"firstName"`
	LastName    string   `json:"lastName"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
}
