package dto

// SignupRequestDTO is the payload for POST /api/auth/signup.
type SignupRequestDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"required"`
}

// LoginRequestDTO is the payload for POST /api/auth/login.
type LoginRequestDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserResponseDTO is the identity record returned after signup.
type UserResponseDTO struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// SessionResponseDTO is the token bundle returned after login.
type SessionResponseDTO struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
}

// LoginResponseDTO wraps the session and, when the provider returns it, the
// user record.
type LoginResponseDTO struct {
	Session SessionResponseDTO `json:"session"`
	User    *UserResponseDTO   `json:"user,omitempty"`
}

// SignupResponseDTO wraps the created user.
type SignupResponseDTO struct {
	User UserResponseDTO `json:"user"`
}
