package transport

type SignUpRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Password string `json:"password" validate:"required,min=8"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	SessionToken string `json:"sessionToken" validate:"required"`
}

type SignOutRequest struct {
	SessionToken string `json:"sessionToken" validate:"required"`
}

type AuthResponse struct {
	AccessToken  string `json:"accessToken"`
	SessionToken string `json:"sessionToken"`
}
