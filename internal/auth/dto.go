// AngelaMos | 2026
// dto.go

package auth

type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email,max=64"`
	Username string `json:"username" validate:"required,min=1,max=64,username"`
	Password string `json:"password" validate:"required,min=1,max=128"`
}

type ConfirmRequest struct {
	Token string `json:"token" validate:"required"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=1,max=128"`
}

type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email,max=64"`
}

type PasswordResetConfirmRequest struct {
	Email    string `json:"email"    validate:"required,email,max=64"`
	Token    string `json:"token"    validate:"required"`
	Password string `json:"password" validate:"required,min=1,max=128"`
}

type ChangeEmailRequest struct {
	Email    string `json:"email"    validate:"required,email,max=64"`
	Password string `json:"password" validate:"required"`
}

type TokenResponse struct {
	Token      string `json:"token"`
	Expiration int    `json:"expiration"`
}

type AccountResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	Confirmed bool   `json:"confirmed"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func toAccountResponse(u *UserInfo) AccountResponse {
	return AccountResponse{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		Confirmed: u.Confirmed,
	}
}
