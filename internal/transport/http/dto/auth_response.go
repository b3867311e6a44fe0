package dto

import "github.com/electroworld/auth-service/internal/domain"

// UserView is the public user payload. It never carries the password hash
// or any reset state.
type UserView struct {
	ID     string `json:"_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone,omitempty"`
	Wilaya string `json:"wilaya"`
	Role   string `json:"role"`
}

func NewUserView(u domain.User) UserView {
	return UserView{
		ID:     u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Phone:  u.Phone,
		Wilaya: u.Wilaya,
		Role:   u.Role.String(),
	}
}

// AuthResponse is returned by signup and login.
type AuthResponse struct {
	Data  UserView `json:"data"`
	Token string   `json:"token"`
}

type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type TokenResponse struct {
	Token string `json:"token"`
}
